package kernel

import "sync/atomic"

// DefaultSpinIters 单元素默认空转次数。
// 纯加法受内存带宽限制（memory-bound），加入空转使其偏向计算受限（compute-bound），
// 以便观察并行调度本身的效果。
const DefaultSpinIters = 200

// Delay 每个元素执行前调用的人工负载；nil 表示不加负载。
type Delay func(i int)

// spinSink 接收空转结果，使循环对编译器可观察而不会被消除。
var spinSink atomic.Uint32

// Spin 返回执行 iters 步线性同余迭代的 Delay；iters<=0 返回 nil。
// 结果仅在极少数情况下写入 spinSink，避免工作者之间争用同一缓存行。
func Spin(iters int) Delay {
	if iters <= 0 {
		return nil
	}
	return func(i int) {
		x := uint32(i) | 1
		for k := 0; k < iters; k++ {
			x = x*1664525 + 1013904223
		}
		if x == 0 {
			spinSink.Store(x)
		}
	}
}
