package report

import (
	"fmt"
	"io"
	"strconv"

	"vecaddbench/internal/pipeline"
)

// DefaultSample 样例表默认行数。
const DefaultSample = 10

// Diagnostics 运行环境诊断信息；由 main 在启动时采集一次后传入。
type Diagnostics struct {
	// Parallel: 是否以并行模式运行（false 时仅输出 mode=serial）。
	Parallel bool
	// MaxProcsEnv/MaxProcsSet: 环境变量 GOMAXPROCS 的原值与是否设置。
	MaxProcsEnv string
	MaxProcsSet bool
	Workers     int
	CPUs        int
	Cores       int
}

// num 与 iostream 默认格式一致：6 位有效数字、去尾零。
func num(v float64) string { return strconv.FormatFloat(v, 'g', 6, 64) }

// WriteDiagnostics 输出模式与并行环境行。
func WriteDiagnostics(w io.Writer, d Diagnostics) error {
	if !d.Parallel {
		_, err := fmt.Fprintln(w, "mode=serial")
		return err
	}
	if _, err := fmt.Fprintln(w, "mode=parallel"); err != nil {
		return err
	}
	var err error
	if d.MaxProcsSet {
		_, err = fmt.Fprintf(w, "GOMAXPROCS is set to: %s\n", d.MaxProcsEnv)
	} else {
		_, err = fmt.Fprintln(w, "GOMAXPROCS is not set. Using default")
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "workers=%d cpus=%d cores=%d\n", d.Workers, d.CPUs, d.Cores)
	return err
}

// WriteSummary 输出 N/chunk/耗时行、吞吐行，以及多轮时的分位数行。
func WriteSummary(w io.Writer, n, chunk int, res pipeline.Result) error {
	if _, err := fmt.Fprintf(w, "N=%d chunk=%d time_sec=%s\n", n, chunk, num(res.Elapsed)); err != nil {
		return err
	}
	m, g := pipeline.Throughput(n, res.Elapsed)
	if _, err := fmt.Fprintf(w, "throughput_melem_s=%s bandwidth_gb_s=%s\n", num(m), num(g)); err != nil {
		return err
	}
	if st := res.Stats; st.Runs > 1 {
		if _, err := fmt.Fprintf(w, "runs=%d min_sec=%s mean_sec=%s p50_sec=%s p90_sec=%s p99_sec=%s\n",
			st.Runs, num(st.Min), num(st.Mean), num(st.P50), num(st.P90), num(st.P99)); err != nil {
			return err
		}
	}
	return nil
}

// WriteVerify 输出校验结果；mismatch<0 表示通过。
func WriteVerify(w io.Writer, mismatch int) error {
	if mismatch < 0 {
		_, err := fmt.Fprintln(w, "verify=ok")
		return err
	}
	_, err := fmt.Fprintf(w, "verify=mismatch at %d\n", mismatch)
	return err
}

// WriteSample 输出表头与前 min(rows, len) 行；rows<=0 时不输出任何内容。
func WriteSample(w io.Writer, a, b, c []float32, rows int) error {
	if rows <= 0 {
		return nil
	}
	n := min(len(a), len(b), len(c), rows)
	if _, err := io.WriteString(w, "i\t a[i]\t\t b[i]\t\t c[i] = a[i] + b[i]\n"); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if _, err := fmt.Fprintf(w, "%d\t %s\t %s\t %s\n", i,
			num(float64(a[i])), num(float64(b[i])), num(float64(c[i]))); err != nil {
			return err
		}
	}
	return nil
}
