package main

import (
	"bufio"
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	cfgpkg "vecaddbench/internal/config"
	"vecaddbench/internal/diag"
	"vecaddbench/internal/pipeline"
	"vecaddbench/internal/probe"
	"vecaddbench/internal/report"
	"vecaddbench/pkg/contract"
)

var (
	pipelineRun = pipeline.Run
	detectCaps  = probe.Detect
	// stdout 为基准结果输出；测试中替换以捕获。
	stdout io.Writer = os.Stdout
)

// 用法：vecaddbench [flags] [N] [chunk]
// 位置参数优先级最高；旗标仅在显式给出时覆盖（flag.Visit 判定）。
func main() {
	os.Exit(run())
}

func run() int {
	start := time.Now()
	corrID := genCorrID()
	// 在任何 ENV 读取前，尝试加载工作目录下的 .env（不覆盖已有 ENV）。
	_ = loadDotEnv(".env")
	// 先占位默认，稍后在解析/合并配置后重建 logger 以使用最终 level
	logLevel := "info"
	logger := diag.NewLogger(corrID, logLevel)
	defer func() { _ = logger.Close() }()

	var (
		flagConfig       string
		flagWorkers      int
		flagDelay        int
		flagRepeat       int
		flagMode         string
		flagSample       int
		flagVerify       bool
		flagParallelInit bool
		flagInitDir      string
		flagStatus       bool
	)
	flag.StringVar(&flagConfig, "config", "", "配置文件路径（JSON）；缺省读取 ./config.json（若存在）")
	flag.IntVar(&flagWorkers, "workers", 0, "工作者数（0 表示取 GOMAXPROCS）")
	flag.IntVar(&flagDelay, "delay", cfgpkg.DefaultDelayIters, "每元素空转次数（0 关闭人工负载）")
	flag.IntVar(&flagRepeat, "repeat", 1, "计时轮数（>1 时输出分位数统计）")
	flag.StringVar(&flagMode, "mode", "auto", "执行模式：auto|parallel|serial")
	flag.IntVar(&flagSample, "sample", cfgpkg.DefaultSample, "样例表行数（0 不输出）")
	flag.BoolVar(&flagVerify, "verify", true, "运行后校验 c[i] == a[i] + b[i]")
	flag.BoolVar(&flagParallelInit, "parallel-init", false, "使用同一执行器并行初始化 a/b")
	flag.StringVar(&flagInitDir, "init-config", "", "在指定目录生成默认配置 config.json 和 .env 模板（若已存在则跳过，不覆盖）；不带值时默认当前目录")
	flag.BoolVar(&flagStatus, "status", true, "终端状态提示（stderr）。TTY 动态刷新；非 TTY 打点输出")
	normalizeInitArg()
	flag.Parse()
	explicit := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { explicit[f.Name] = true })

	// --init-config: 生成模板并退出
	if initDir := strings.TrimSpace(flagInitDir); initDir != "" {
		if err := os.MkdirAll(initDir, 0o755); err != nil {
			fprintf(os.Stderr, "生成默认配置失败: %v\n", err)
			logger.Error("config", string(diag.Classify(err)), "first error", &start)
			return 3
		}
		if err := writeConfig(filepath.Join(initDir, "config.json"), cfgpkg.DefaultTemplateConfig()); err != nil {
			fprintf(os.Stderr, "生成默认配置失败: %v\n", err)
			logger.Error("config", string(diag.Classify(err)), "first error", &start)
			return 3
		}
		if err := writeDotEnv(filepath.Join(initDir, ".env")); err != nil {
			fprintf(os.Stderr, "提示：.env 生成失败（已跳过）：%v\n", err)
		}
		return 0
	}

	// JSON 配置（文件或 ENV: VECADD_CONFIG_JSON）
	var cfgJSON []byte
	if s := os.Getenv(cfgpkg.EnvPrefix + "CONFIG_JSON"); s != "" {
		cfgJSON = []byte(s)
	}
	if flagConfig == "" {
		flagConfig = os.Getenv(cfgpkg.EnvPrefix + "CONFIG_FILE")
	}
	if flagConfig == "" {
		if _, err := os.Stat("config.json"); err == nil {
			flagConfig = "config.json"
		}
	}

	cfg := cfgpkg.Defaults()
	if flagConfig != "" || len(cfgJSON) > 0 {
		over, err := cfgpkg.LoadJSON(flagConfig, cfgJSON)
		if err != nil {
			fprintf(os.Stderr, "配置解析失败: %v\n", err)
			logger.Error("config", string(diag.Classify(err)), "first error", &start)
			return 3
		}
		cfg = cfgpkg.Merge(cfg, over)
	}

	// ENV 覆盖
	overEnv, err := cfgpkg.EnvOverlay(os.Environ())
	if err != nil {
		fprintf(os.Stderr, "环境变量解析失败: %v\n", err)
		logger.Error("config", string(diag.CodeConfig), "first error", &start)
		return 3
	}
	cfg = cfgpkg.Merge(cfg, overEnv)

	// CLI 覆盖（仅显式给出的旗标）
	overCLI := cfgpkg.Overlay()
	if explicit["workers"] {
		overCLI.Workers = flagWorkers
	}
	if explicit["delay"] {
		overCLI.DelayIters = flagDelay
	}
	if explicit["repeat"] {
		overCLI.Repeat = flagRepeat
	}
	if explicit["mode"] {
		overCLI.Mode = flagMode
	}
	if explicit["sample"] {
		overCLI.Sample = flagSample
	}
	if explicit["verify"] {
		overCLI.Verify = cfgpkg.Bool(flagVerify)
	}
	if explicit["parallel-init"] {
		overCLI.ParallelInit = cfgpkg.Bool(flagParallelInit)
	}
	cfg = cfgpkg.Merge(cfg, overCLI)

	// 位置参数 [N] [chunk]
	args := flag.Args()
	overPos, ignored := cfgpkg.ParsePositional(args)
	cfg = cfgpkg.Merge(cfg, overPos)

	// 使用最终配置中的日志级别重建 logger（非法 level 交由 Validate 报告）
	if lv := strings.TrimSpace(cfg.Logging.Level); lv != "" {
		logLevel = lv
	}
	_ = logger.Close()
	logger = diag.NewLogger(corrID, logLevel)
	for _, a := range ignored {
		logger.Warn("config", string(diag.CodeConfig), "positional argument not an integer; using default", map[string]string{"arg": a})
	}
	if len(args) > 2 {
		logger.Warn("config", string(diag.CodeConfig), "extra positional arguments ignored", map[string]string{"args": strings.Join(args[2:], " ")})
	}

	// 基本校验 & 装配
	if err := cfgpkg.Validate(cfg); err != nil {
		fprintf(os.Stderr, "配置校验失败: %v\n", err)
		_ = dumpConfig(cfg)
		logger.Error("config", string(diag.CodeConfig), "first error", &start)
		diag.IncError("config", string(diag.CodeConfig))
		return 3
	}

	caps := detectCaps()
	comp, set, err := cfgpkg.Assemble(cfg, caps)
	if err != nil {
		fprintf(os.Stderr, "装配失败: %v\n", err)
		logger.Error("config", string(diag.CodeConfig), "first error", &start)
		return 3
	}
	// GOMAXPROCS 仅在此读取一次，交给报告方
	gmp, gmpSet := os.LookupEnv("GOMAXPROCS")
	parallel := comp.Executor.Name() != "serial"
	mode := probe.ModeSerial
	if parallel {
		mode = probe.ModeParallel
	}

	// 终端信息提示（非日志）：按 CLI 启用，默认开启
	term := diag.NewTerminal(os.Stderr, flagStatus)
	diag.SetTerminal(term)
	defer diag.SetTerminal(nil)
	term.RunStart(mode, comp.Executor.Workers(), set.Repeat)

	// debug: 输出运行时配置信息
	kv := map[string]string{
		"n":           strconv.Itoa(cfg.N),
		"chunk":       strconv.Itoa(cfg.Chunk),
		"workers":     strconv.Itoa(comp.Executor.Workers()),
		"delay_iters": strconv.Itoa(cfg.DelayIters),
		"repeat":      strconv.Itoa(cfg.Repeat),
		"mode":        cfg.Mode,
		"executor":    comp.Executor.Name(),
		"cpus":        strconv.Itoa(caps.LogicalCPUs),
		"cores":       strconv.Itoa(caps.PhysicalCores),
		"cpu_brand":   caps.Brand,
		"avx2":        strconv.FormatBool(caps.AVX2),
	}
	if s, ok := comp.Clock.(interface{ Source() string }); ok {
		kv["clock_source"] = s.Source()
	}
	logger.DebugStart("config", "effective", kv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	t := logger.Start("pipeline", "run")
	res, err := pipelineRun(ctx, comp, set, logger)
	if err != nil && !errors.Is(err, contract.ErrVerifyMismatch) {
		code := string(diag.Classify(err))
		logger.Error("pipeline", code, "first error", &start)
		diag.IncOp("pipeline", "error", "error")
		if code != string(diag.CodeUnknown) {
			diag.IncError("pipeline", code)
		}
		if !errors.Is(err, context.Canceled) {
			fprintf(os.Stderr, "运行失败: %v\n", err)
		}
		term.RunFinish(false, time.Since(start))
		if errors.Is(err, contract.ErrLengthInvalid) || errors.Is(err, contract.ErrChunkInvalid) {
			return 3
		}
		return 1
	}

	// 报告（校验失败时同样输出，便于定位）
	d := report.Diagnostics{
		Parallel:    parallel,
		MaxProcsEnv: gmp,
		MaxProcsSet: gmpSet,
		Workers:     comp.Executor.Workers(),
		CPUs:        caps.LogicalCPUs,
		Cores:       caps.PhysicalCores,
	}
	if werr := writeReport(stdout, d, set, cfg.Sample, res); werr != nil {
		fprintf(os.Stderr, "输出失败: %v\n", werr)
		logger.Error("report", string(diag.Classify(werr)), "write failed", nil)
		term.RunFinish(false, time.Since(start))
		return 1
	}
	if err != nil {
		fprintf(os.Stderr, "校验失败: %v\n", err)
		logger.Error("pipeline", string(diag.CodeVerify), "first error", &start)
		diag.IncOp("pipeline", "error", "error")
		term.RunFinish(false, time.Since(start))
		return 1
	}
	t.Finish("run", int64(set.N))
	diag.IncOp("pipeline", "finish", "success")
	diag.ObserveDuration("pipeline", "finish", time.Since(start).Milliseconds())
	logMetrics(logger)
	term.RunFinish(true, time.Since(start))
	return 0
}

func writeReport(w io.Writer, d report.Diagnostics, set pipeline.Settings, sample int, res pipeline.Result) error {
	if err := report.WriteDiagnostics(w, d); err != nil {
		return err
	}
	if err := report.WriteSummary(w, set.N, set.Chunk, res); err != nil {
		return err
	}
	if set.Verify {
		if err := report.WriteVerify(w, res.Mismatch); err != nil {
			return err
		}
	}
	return report.WriteSample(w, res.A, res.B, res.C, sample)
}

// logMetrics 以 debug 事件输出进程内指标快照。
func logMetrics(l *diag.Logger) {
	snap := diag.Snapshot()
	kv := make(map[string]string, len(snap))
	for _, k := range diag.SnapshotKeys() {
		kv[k] = strconv.FormatInt(snap[k], 10)
	}
	l.DebugStart("metrics", "snapshot", kv)
}

func fprintf(w io.Writer, format string, a ...any) { _, _ = fmt.Fprintf(w, format, a...) }

func dumpConfig(c cfgpkg.Config) error {
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	_, _ = os.Stderr.Write(append([]byte("有效配置:\n"), b...))
	_, _ = os.Stderr.Write([]byte("\n"))
	return nil
}

func writeConfig(path string, c cfgpkg.Config) error {
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	if path == "-" {
		_, err = os.Stdout.Write(append(b, '\n'))
		return err
	}
	// 不覆盖已存在文件
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.Write(b); err != nil {
		return err
	}
	_, _ = f.Write([]byte("\n"))
	return nil
}

func genCorrID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return ""
	}
	return hex.EncodeToString(b[:])
}

// loadDotEnv 读取简单的 .env 文件格式并注入进程环境。
// - 忽略不存在的文件；跳过空行与 # 注释；支持可选前缀 "export "。
// - 成对单/双引号去除外层；双引号内 \n \t \" \\ 作最小转义。
// - 不覆盖已存在的环境变量。
func loadDotEnv(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()
	s := bufio.NewScanner(f)
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
		eq := strings.IndexByte(line, '=')
		if eq <= 0 {
			continue
		}
		key := strings.TrimSpace(line[:eq])
		val := strings.TrimSpace(line[eq+1:])
		if len(val) >= 2 {
			q := val[0]
			if (q == '\'' || q == '"') && val[len(val)-1] == q {
				val = val[1 : len(val)-1]
				if q == '"' {
					val = strings.NewReplacer(`\n`, "\n", `\t`, "\t", `\"`, `"`, `\\`, `\`).Replace(val)
				}
			}
		}
		if _, exists := os.LookupEnv(key); exists {
			continue
		}
		_ = os.Setenv(key, val)
	}
	return s.Err()
}

// normalizeInitArg: 允许 --init-config 不带值（等价于 --init-config .）。
func normalizeInitArg() {
	args := os.Args
	if len(args) <= 1 {
		return
	}
	out := make([]string, 0, len(args)+1)
	out = append(out, args[0])
	for i := 1; i < len(args); i++ {
		a := args[i]
		out = append(out, a)
		if a == "--init-config" || a == "-init-config" {
			if i == len(args)-1 || strings.HasPrefix(args[i+1], "-") {
				out = append(out, ".")
			}
		}
	}
	os.Args = out
}

// writeDotEnv 生成 .env 模板（若文件已存在则跳过）。
func writeDotEnv(path string) error {
	var b strings.Builder
	b.WriteString("# vecaddbench .env 模板（由 --init-config 生成）\n")
	b.WriteString("# 优先级：位置参数 > CLI > ENV(.env) > JSON\n")
	b.WriteString("# 空值表示未设置。\n\n")
	b.WriteString("# 配置来源（可二选一）\n")
	b.WriteString(cfgpkg.EnvPrefix + "CONFIG_FILE=\n")
	b.WriteString(cfgpkg.EnvPrefix + "CONFIG_JSON=\n\n")
	b.WriteString("# 运行参数覆盖\n")
	for _, k := range []string{"N", "CHUNK", "WORKERS", "DELAY", "REPEAT", "MODE", "SAMPLE", "VERIFY", "PARALLEL_INIT", "LOG_LEVEL", "CLOCK"} {
		b.WriteString(cfgpkg.EnvPrefix + k + "=\n")
	}
	b.WriteString("\n# Go 运行时并行度（由运行时读取）\n")
	b.WriteString("# GOMAXPROCS=\n")

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()
	_, err = f.WriteString(b.String())
	return err
}
