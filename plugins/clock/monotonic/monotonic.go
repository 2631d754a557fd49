package monotonic

import (
	"math"
	"sync/atomic"
	"time"
)

// Clock 单调时钟：优先使用平台单调时钟（Linux: CLOCK_MONOTONIC），
// 否则退化为 Go 运行时的单调读数（time.Since 自带 monotonic 分量）。
// 读数来源在 New 时确定一次，运行期不切换，保证同一次运行内可比。
type Clock struct {
	epoch  time.Time
	native bool
	read   func() (float64, bool)
	// last: 最近一次成功的平台读数（float64 位模式）
	last atomic.Uint64
}

// New 创建时钟并探测平台单调时钟是否可用。
func New() *Clock {
	return newWith(readNative)
}

func newWith(read func() (float64, bool)) *Clock {
	c := &Clock{epoch: time.Now(), read: read}
	if s, ok := read(); ok {
		c.native = true
		c.last.Store(math.Float64bits(s))
	}
	return c
}

// Now 返回自任意纪元起的秒数（亚毫秒精度）。
// 平台读数偶发失败时返回最近一次成功读数，不切换到另一纪元。
func (c *Clock) Now() float64 {
	if c.native {
		if s, ok := c.read(); ok {
			c.last.Store(math.Float64bits(s))
			return s
		}
		return math.Float64frombits(c.last.Load())
	}
	return time.Since(c.epoch).Seconds()
}

// Source 返回读数来源描述（诊断用）。
func (c *Clock) Source() string {
	if c.native {
		return nativeSource
	}
	return "go-runtime-monotonic"
}
