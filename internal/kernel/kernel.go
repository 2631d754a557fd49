package kernel

import "math"

// Add 逐元素加法内核：C[i] = A[i] + B[i]。
// A、B 只读；C 由调用方预先分配，每个索引只写一次。
type Add struct {
	A, B, C []float32
	Delay   Delay
}

// At 处理索引 i：先执行人工负载（若有），再写出结果。
// 浮点语义按 IEEE 754（NaN/Inf 照常传播，无溢出检查）。
func (k *Add) At(i int) {
	if k.Delay != nil {
		k.Delay(i)
	}
	k.C[i] = k.A[i] + k.B[i]
}

// Verify 返回第一个不满足 c[i] == a[i]+b[i] 的索引；全部满足返回 -1。
// 两侧同为 NaN 视为相等。长度不一致时返回最短长度处的索引。
func Verify(a, b, c []float32) int {
	n := len(c)
	if len(a) < n {
		n = len(a)
	}
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		want := a[i] + b[i]
		got := c[i]
		if got == want {
			continue
		}
		if math.IsNaN(float64(got)) && math.IsNaN(float64(want)) {
			continue
		}
		return i
	}
	if n != len(a) || n != len(b) || n != len(c) {
		return n
	}
	return -1
}
