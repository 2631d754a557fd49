package sequence

import (
	"fmt"

	"vecaddbench/pkg/contract"
)

// A 返回输入序列 A 的第 i 个值：0.001 × (i mod 1000)。
func A(i int) float32 { return 0.001 * float32(i%1000) }

// B 返回输入序列 B 的第 i 个值：0.002 × ((7i) mod 1000)。
func B(i int) float32 { return 0.002 * float32((i*7)%1000) }

// New 分配并顺序填充长度为 n 的 A、B。n<=0 返回 ErrLengthInvalid，且不分配。
func New(n int) (a, b []float32, err error) {
	if n <= 0 {
		return nil, nil, fmt.Errorf("%w: n=%d", contract.ErrLengthInvalid, n)
	}
	a = make([]float32, n)
	b = make([]float32, n)
	Fill(a, b)
	return a, b, nil
}

// Fill 顺序填充 a、b（按较短者长度）。纯函数、逐索引独立。
func Fill(a, b []float32) {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		a[i] = A(i)
		b[i] = B(i)
	}
}

// FillWith 使用执行器并行填充；结果与 Fill 按位一致。
func FillWith(exec contract.Executor, chunk int, a, b []float32) error {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	return exec.For(n, chunk, func(i int) {
		a[i] = A(i)
		b[i] = B(i)
	})
}
