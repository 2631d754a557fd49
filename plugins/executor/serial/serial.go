package serial

import (
	"fmt"

	"vecaddbench/pkg/contract"
)

// Options 预留（当前无可配置项）。
type Options struct{}

// Executor 单工作者执行器：按块序依次处理全部块。
// 无并行运行时可用（或显式选择 serial）时使用，输出与 static 完全一致。
type Executor struct{}

// New 创建串行执行器。
func New(_ *Options) *Executor { return &Executor{} }

func (e *Executor) Name() string { return "serial" }

func (e *Executor) Workers() int { return 1 }

// For 在调用方 goroutine 内依次执行所有块。
func (e *Executor) For(n, chunk int, body contract.Body) (err error) {
	if chunk <= 0 {
		return contract.ErrChunkInvalid
	}
	if n < 0 {
		return contract.ErrLengthInvalid
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: serial panic: %v", contract.ErrInvariantViolation, r)
		}
	}()
	total := contract.ChunkCount(n, chunk)
	for k := 0; k < total; k++ {
		c := contract.ChunkAt(n, chunk, k)
		for i := c.Start; i < c.End; i++ {
			body(i)
		}
	}
	return nil
}
