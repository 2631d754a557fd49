package contract

// Chunk: 索引区间 [Start, End) 的一个连续子区间，作为一次调度的最小单元。
// 约束：
// - 除最后一块外，End-Start 恒等于配置的块大小；
// - 最后一块截断到 N；
// - 所有块按 Index 升序覆盖 [0, N)，无空洞、无重叠。
type Chunk struct {
	Index int // 块序（0..k-1）
	Start int // 包含
	End   int // 不包含
}

// Len 返回块内索引个数。
func (c Chunk) Len() int { return c.End - c.Start }

// ChunkCount 返回 ceil(n/size)；n<=0 或 size<=0 时为 0。
func ChunkCount(n, size int) int {
	if n <= 0 || size <= 0 {
		return 0
	}
	return (n + size - 1) / size
}

// ChunkAt 返回第 k 块（不做越界检查；调用方保证 0<=k<ChunkCount(n,size)）。
func ChunkAt(n, size, k int) Chunk {
	start := k * size
	end := start + size
	if end > n {
		end = n
	}
	return Chunk{Index: k, Start: start, End: end}
}

// Partition 将 [0, n) 切分为固定大小的连续块。
// size<=0 返回 ErrChunkInvalid；n<0 返回 ErrLengthInvalid；n==0 返回空切片。
func Partition(n, size int) ([]Chunk, error) {
	if size <= 0 {
		return nil, ErrChunkInvalid
	}
	if n < 0 {
		return nil, ErrLengthInvalid
	}
	k := ChunkCount(n, size)
	out := make([]Chunk, k)
	for i := 0; i < k; i++ {
		out[i] = ChunkAt(n, size, i)
	}
	return out, nil
}

// Assign 静态分配：块按 Index 升序轮转分发给 workers 个工作者（块 k → 工作者 k mod workers）。
// 返回每个工作者拥有的块序列表（升序）。workers 超过块数时多余工作者为空列表。
func Assign(chunks, workers int) [][]int {
	if workers < 1 {
		workers = 1
	}
	out := make([][]int, workers)
	if chunks <= 0 {
		return out
	}
	per := (chunks + workers - 1) / workers
	for w := range out {
		out[w] = make([]int, 0, per)
	}
	for k := 0; k < chunks; k++ {
		w := k % workers
		out[w] = append(out[w], k)
	}
	return out
}
