package static

import (
	"fmt"
	"runtime"
	"sync"

	"vecaddbench/pkg/contract"
)

// Options 为静态分块执行器的可选配置。
type Options struct {
	// Workers: 工作者数量；<=0 时采用 runtime.GOMAXPROCS(0)（由运行时按 GOMAXPROCS 环境变量决定）。
	Workers int `json:"workers"`
}

// Executor 以 schedule(static, chunk) 语义执行：块按序号轮转分给固定数量的 goroutine。
// 每个工作者只写自己块内的索引，输出天然不相交，无需加锁。
type Executor struct {
	workers int
}

// New 创建静态分块执行器。
func New(opts *Options) *Executor {
	w := 0
	if opts != nil {
		w = opts.Workers
	}
	if w <= 0 {
		w = runtime.GOMAXPROCS(0)
	}
	if w < 1 {
		w = 1
	}
	return &Executor{workers: w}
}

func (e *Executor) Name() string { return "static" }

func (e *Executor) Workers() int { return e.workers }

// For 对 [0, n) 的每个索引调用一次 body，返回前等待全部工作者结束。
// 工作者 w 依次处理块 w, w+W, w+2W, ...（与 contract.Assign 相同的分配）。
func (e *Executor) For(n, chunk int, body contract.Body) error {
	if chunk <= 0 {
		return contract.ErrChunkInvalid
	}
	if n < 0 {
		return contract.ErrLengthInvalid
	}
	total := contract.ChunkCount(n, chunk)
	if total == 0 {
		return nil
	}
	workers := e.workers
	if workers > total {
		// 多余工作者不会分到块，直接不启动
		workers = total
	}

	var (
		wg    sync.WaitGroup
		once  sync.Once
		first error
	)
	worker := func(w int) {
		defer wg.Done()
		defer func() {
			if r := recover(); r != nil {
				once.Do(func() {
					first = fmt.Errorf("%w: worker %d panic: %v", contract.ErrInvariantViolation, w, r)
				})
			}
		}()
		for k := w; k < total; k += workers {
			c := contract.ChunkAt(n, chunk, k)
			for i := c.Start; i < c.End; i++ {
				body(i)
			}
		}
	}
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go worker(w)
	}
	wg.Wait()
	return first
}
