package contract

// Body: 每个索引执行一次的操作；实现不得假设跨块的执行顺序。
type Body func(i int)

// Executor: 分块并行执行器。
// 约束：
//  1. For 对 [0, n) 中每个 i 恰好调用一次 body；
//  2. 块划分与分配在开始前一次确定（静态调度），运行期不做再平衡；
//  3. For 返回前必须等待所有工作者完成全部分配块（屏障）；
//  4. chunk<=0 返回 ErrChunkInvalid，不得静默替换为默认值；
//  5. 一次 For 开始后不可取消。
type Executor interface {
	// Name 返回实现名（例如 static / serial），用于诊断输出。
	Name() string
	// Workers 返回本执行器使用的工作者数量（>=1）。
	Workers() int
	For(n, chunk int, body Body) error
}
