package contract

// Clock: 单调时钟，返回自任意纪元起的秒数。
// 仅可与同一次运行内的其他 Now() 读数比较。
type Clock interface {
	Now() float64
}

// ClockFunc 将普通函数适配为 Clock（测试常用）。
type ClockFunc func() float64

func (f ClockFunc) Now() float64 { return f() }
