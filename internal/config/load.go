package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

// 默认值
const (
	DefaultN          = 10_000_000
	DefaultChunk      = 128
	DefaultDelayIters = 200
	DefaultSample     = 10
	DefaultClock      = "monotonic"
)

// EnvPrefix 环境变量前缀。
const EnvPrefix = "VECADD_"

// Defaults 返回带有安全默认值的 Config 雏形。
func Defaults() Config {
	return Config{
		N:            DefaultN,
		Chunk:        DefaultChunk,
		Workers:      0,
		DelayIters:   DefaultDelayIters,
		Repeat:       1,
		Mode:         "auto",
		Sample:       DefaultSample,
		Verify:       Bool(true),
		ParallelInit: Bool(false),
		Logging:      Logging{Level: "info"},
		Components:   Components{Clock: DefaultClock},
	}
}

// LoadJSON 从文件路径或原始 JSON 解析覆盖层（严格拒绝未知字段）。
// 文件中缺省的整数字段保持 Unset，不会以 0 覆盖默认值；
// 显式写出的 Unset 值与“未设置”无法区分，直接拒绝。
func LoadJSON(path string, raw []byte) (Config, error) {
	cfg := Overlay()
	switch {
	case len(raw) > 0:
	case path != "":
		b, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		raw = b
	default:
		return cfg, errors.New("no config source provided")
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return cfg, err
	}
	if err := rejectUnset(raw); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// rejectUnset 以原始键值再解一次，拒绝任何等于 Unset 的整数字段。
func rejectUnset(raw []byte) error {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return err
	}
	for _, k := range []string{"n", "chunk", "workers", "delay_iters", "repeat", "sample"} {
		v, ok := m[k]
		if !ok {
			continue
		}
		var n int64
		if err := json.Unmarshal(v, &n); err == nil && n == Unset {
			return fmt.Errorf("config: %s value %d out of range", k, n)
		}
	}
	return nil
}

// Merge 按优先级合并（后者覆盖前者）。
// 整数字段以 Unset 表示未覆盖；字符串空不覆盖；指针 nil 不覆盖。
func Merge(base, over Config) Config {
	out := base
	setInt(&out.N, over.N)
	setInt(&out.Chunk, over.Chunk)
	setInt(&out.Workers, over.Workers)
	setInt(&out.DelayIters, over.DelayIters)
	setInt(&out.Repeat, over.Repeat)
	setInt(&out.Sample, over.Sample)
	if m := strings.TrimSpace(over.Mode); m != "" {
		out.Mode = strings.ToLower(m)
	}
	if over.Verify != nil {
		out.Verify = Bool(*over.Verify)
	}
	if over.ParallelInit != nil {
		out.ParallelInit = Bool(*over.ParallelInit)
	}
	// Logging（仅 level）
	if lv := strings.TrimSpace(over.Logging.Level); lv != "" {
		out.Logging.Level = lv
	}
	if c := strings.TrimSpace(over.Components.Clock); c != "" {
		out.Components.Clock = c
	}
	return out
}

func setInt(dst *int, v int) {
	if v != Unset {
		*dst = v
	}
}

// EnvOverlay 从环境变量构建一个 Config 覆盖（仅解析有限键集合）。
// 规则：前缀 VECADD_；集合之外的键忽略。
// 支持：N, CHUNK, WORKERS, DELAY, REPEAT, MODE, SAMPLE, VERIFY, PARALLEL_INIT, LOG_LEVEL, CLOCK
// 数值无法解析时返回错误（而非静默忽略）。
func EnvOverlay(environ []string) (Config, error) {
	over := Overlay()
	for _, kv := range environ {
		if !strings.HasPrefix(kv, EnvPrefix) {
			continue
		}
		eq := strings.IndexByte(kv, '=')
		if eq <= len(EnvPrefix) {
			continue
		}
		key := kv[:eq]
		val := strings.TrimSpace(kv[eq+1:])
		nk := strings.TrimPrefix(key, EnvPrefix)
		if val == "" {
			// .env 模板中的空值表示未设置
			continue
		}
		var err error
		switch nk {
		case "N":
			over.N, err = atoi(val)
		case "CHUNK":
			over.Chunk, err = atoi(val)
		case "WORKERS":
			over.Workers, err = atoi(val)
		case "DELAY":
			over.DelayIters, err = atoi(val)
		case "REPEAT":
			over.Repeat, err = atoi(val)
		case "SAMPLE":
			over.Sample, err = atoi(val)
		case "MODE":
			over.Mode = val
		case "VERIFY", "PARALLEL_INIT":
			var b bool
			if b, err = strconv.ParseBool(val); err == nil {
				if nk == "VERIFY" {
					over.Verify = Bool(b)
				} else {
					over.ParallelInit = Bool(b)
				}
			}
		case "LOG_LEVEL":
			over.Logging.Level = val
		case "CLOCK":
			over.Components.Clock = val
		}
		if err != nil {
			return over, fmt.Errorf("env %s: %w", key, err)
		}
	}
	return over, nil
}

// ParsePositional 解析位置参数 [N] [chunk]。
// 缺省或无法解析的参数保持 Unset（回落到低优先级来源）；
// 可解析的非正数原样保留，由 Validate 拒绝。
// 第二个返回值列出被忽略的参数，供调用方记录 warn。
func ParsePositional(args []string) (Config, []string) {
	over := Overlay()
	var ignored []string
	if len(args) > 0 {
		if v, err := atoi(args[0]); err == nil {
			over.N = v
		} else {
			ignored = append(ignored, args[0])
		}
	}
	if len(args) > 1 {
		if v, err := atoi(args[1]); err == nil {
			over.Chunk = v
		} else {
			ignored = append(ignored, args[1])
		}
	}
	return over, ignored
}

func atoi(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	if n == Unset {
		return 0, fmt.Errorf("value %d out of range", n)
	}
	return n, nil
}
