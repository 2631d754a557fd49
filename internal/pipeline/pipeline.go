package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	tdigest "github.com/caio/go-tdigest"

	"vecaddbench/internal/diag"
	"vecaddbench/internal/kernel"
	"vecaddbench/internal/sequence"
	"vecaddbench/pkg/contract"
)

// - 线性流水线：初始化 → 计时并行遍历 → 校验；无重试、无断点续跑。
// - 计时只覆盖 Executor.For（屏障返回后再读第二次时钟），不含初始化与报告。
// - ctx 仅在轮与轮之间检查；一轮开始后必然跑完。

// Components 聚合运行所需的组件。
type Components struct {
	Executor contract.Executor
	Clock    contract.Clock
	// Delay: 每元素人工负载；nil 表示纯加法。
	Delay kernel.Delay
}

// Settings 运行期配置（最小必要）。
type Settings struct {
	N     int
	Chunk int
	// Repeat: 计时轮数（<1 视为 1）；每轮重写整个 C。
	Repeat int
	// Verify: 结束后校验 C[i] == A[i]+B[i]。
	Verify bool
	// ParallelInit: 使用同一执行器并行初始化 A/B（结果与顺序初始化按位一致）。
	ParallelInit bool
}

// Stats 多轮计时统计（秒）。分位数来自 t-digest。
type Stats struct {
	Runs int
	Min  float64
	Max  float64
	Mean float64
	P50  float64
	P90  float64
	P99  float64
}

// Result 一次运行的产出，交由报告方只读使用。
type Result struct {
	A, B, C []float32
	// Elapsed: 最后一轮的耗时（秒，>=0）。
	Elapsed  float64
	Stats    Stats
	Executor string
	Workers  int
	// Mismatch: 校验失败的首个索引；未校验或全部通过为 -1。
	Mismatch int
}

// Time 在 pass 前后各读一次时钟，返回非负耗时（秒）。
// 时钟若出现回退，耗时钳制为 0。
func Time(clk contract.Clock, pass func() error) (float64, error) {
	t0 := clk.Now()
	err := pass()
	t1 := clk.Now()
	d := t1 - t0
	if d < 0 || d != d {
		d = 0
	}
	return d, err
}

// Run 执行完整流水线并返回结果。配置非法时在任何分配之前返回错误。
func Run(ctx context.Context, comp Components, set Settings, logger *diag.Logger) (Result, error) {
	res := Result{Mismatch: -1}
	if err := sanity(comp, set); err != nil {
		return res, fmt.Errorf("sanity: %w", err)
	}
	if set.Repeat < 1 {
		set.Repeat = 1
	}
	res.Executor = comp.Executor.Name()
	res.Workers = comp.Executor.Workers()

	// 初始化（不计时）
	itimer := logger.Start("sequence", "fill")
	var err error
	if set.ParallelInit {
		res.A = make([]float32, set.N)
		res.B = make([]float32, set.N)
		err = sequence.FillWith(comp.Executor, set.Chunk, res.A, res.B)
	} else {
		res.A, res.B, err = sequence.New(set.N)
	}
	if err != nil {
		itimer.Fail(string(diag.Classify(err)), "fill failed", nil)
		diag.IncOp("sequence", "error", "error")
		return res, fmt.Errorf("sequence fill: %w", err)
	}
	itimer.Finish("fill", int64(set.N))
	diag.IncOp("sequence", "finish", "success")

	res.C = make([]float32, set.N)
	k := &kernel.Add{A: res.A, B: res.B, C: res.C, Delay: comp.Delay}

	// compression 100：千分之一量级的尾部精度，内存常数级
	td, err := tdigest.New(tdigest.Compression(100))
	if err != nil {
		return res, fmt.Errorf("tdigest: %w", err)
	}
	var sum float64
	for pass := 1; pass <= set.Repeat; pass++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		ptimer := logger.StartPass("executor", "for", strconv.Itoa(pass), map[string]string{
			"executor": res.Executor,
			"workers":  strconv.Itoa(res.Workers),
			"n":        strconv.Itoa(set.N),
			"chunk":    strconv.Itoa(set.Chunk),
		})
		elapsed, err := Time(comp.Clock, func() error { return comp.Executor.For(set.N, set.Chunk, k.At) })
		if err != nil {
			code := diag.Classify(err)
			ptimer.Fail(string(code), "for failed", nil)
			diag.IncOp("executor", "error", "error")
			if code != diag.CodeUnknown {
				diag.IncError("executor", string(code))
			}
			return res, fmt.Errorf("executor for: %w", err)
		}
		ptimer.FinishWithKV("for", int64(set.N), map[string]string{"elapsed_sec": strconv.FormatFloat(elapsed, 'g', -1, 64)})
		diag.IncOp("executor", "finish", "success")
		diag.ObserveDuration("executor", "for", int64(elapsed*1000))
		if t := diag.GetTerminal(); t != nil {
			t.PassFinish(pass, set.Repeat, elapsed)
		}

		if err := td.Add(elapsed); err != nil {
			return res, fmt.Errorf("tdigest add: %w", err)
		}
		sum += elapsed
		if pass == 1 || elapsed < res.Stats.Min {
			res.Stats.Min = elapsed
		}
		if elapsed > res.Stats.Max {
			res.Stats.Max = elapsed
		}
		res.Elapsed = elapsed
		res.Stats.Runs = pass
	}
	res.Stats.Mean = sum / float64(res.Stats.Runs)
	res.Stats.P50 = td.Quantile(0.50)
	res.Stats.P90 = td.Quantile(0.90)
	res.Stats.P99 = td.Quantile(0.99)

	if set.Verify {
		vtimer := logger.Start("kernel", "verify")
		if idx := kernel.Verify(res.A, res.B, res.C); idx >= 0 {
			res.Mismatch = idx
			err := fmt.Errorf("%w: index %d", contract.ErrVerifyMismatch, idx)
			vtimer.Fail(string(diag.CodeVerify), "verify failed", map[string]string{"index": strconv.Itoa(idx)})
			diag.IncError("kernel", string(diag.CodeVerify))
			return res, err
		}
		vtimer.Finish("verify", int64(set.N))
	}
	return res, nil
}

func sanity(c Components, s Settings) error {
	if c.Executor == nil || c.Clock == nil {
		return errors.New("pipeline: missing components")
	}
	if s.N <= 0 {
		return fmt.Errorf("%w: n=%d", contract.ErrLengthInvalid, s.N)
	}
	if s.Chunk <= 0 {
		return fmt.Errorf("%w: chunk=%d", contract.ErrChunkInvalid, s.Chunk)
	}
	return nil
}

// Throughput 返回百万元素/秒与有效带宽（GB/s，按每元素读 A、B 写 C 三个 float32 计）。
// elapsed<=0 时两者为 0。
func Throughput(n int, elapsed float64) (melemPerSec, gbPerSec float64) {
	if elapsed <= 0 || n <= 0 {
		return 0, 0
	}
	melemPerSec = float64(n) / elapsed / 1e6
	gbPerSec = float64(n) * 3 * 4 / elapsed / 1e9
	return melemPerSec, gbPerSec
}
