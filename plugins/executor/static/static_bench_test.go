package static

import (
	"fmt"
	"runtime"
	"testing"
)

// BenchmarkFor 比较不同块大小下的静态调度开销。
func BenchmarkFor(b *testing.B) {
	const n = 1 << 20
	a := make([]float32, n)
	c := make([]float32, n)
	for i := range a {
		a[i] = float32(i % 1000)
	}
	e := New(&Options{Workers: runtime.GOMAXPROCS(0)})
	for _, chunk := range []int{1, 128, 4096, n} {
		b.Run(fmt.Sprintf("chunk=%d", chunk), func(b *testing.B) {
			b.SetBytes(int64(n) * 8)
			for i := 0; i < b.N; i++ {
				if err := e.For(n, chunk, func(i int) { c[i] = a[i] + a[i] }); err != nil {
					b.Fatalf("For 失败: %v", err)
				}
			}
		})
	}
}
