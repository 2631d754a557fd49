package config

// Config: 运行期只读配置（一次解析，运行期不变）。
// JSON 使用 snake_case；未知字段在解析期失败。
type Config struct {
	// N: 向量长度（>0）。
	N int `json:"n"`
	// Chunk: 静态调度的块大小（>0）。
	Chunk int `json:"chunk"`
	// Workers: 工作者数；0 表示取 GOMAXPROCS。
	Workers int `json:"workers"`
	// DelayIters: 每元素空转次数；0 关闭人工负载。
	DelayIters int `json:"delay_iters"`
	// Repeat: 计时轮数（>=1）。
	Repeat int `json:"repeat"`
	// Mode: auto|parallel|serial。
	Mode string `json:"mode"`
	// Sample: 样例表行数；0 不输出表格。
	Sample int `json:"sample"`
	// Verify/ParallelInit: 指针以区分“未设置”与显式 false。
	Verify       *bool   `json:"verify,omitempty"`
	ParallelInit *bool   `json:"parallel_init,omitempty"`
	Logging      Logging `json:"logging"`

	// 组件名选择（空则使用默认名）。
	Components Components `json:"components"`
}

// Logging: 仅保留日志等级可配置；输出路径与轮转策略为固定默认。
type Logging struct {
	Level string `json:"level"`
}

// Components: 组件名选择（注册表中的实现名）。
// 执行器由 mode 与能力探测决定，不在此处选择。
type Components struct {
	Clock string `json:"clock"`
}

// Unset 是覆盖层中整数字段“未设置”的哨兵值。
// 0 与负数都可能是显式输入（需交给 Validate 拒绝），因此不能复用 0/-1。
const Unset = -1 << 31

// Overlay 返回所有整数字段均为 Unset 的空覆盖层。
func Overlay() Config {
	return Config{N: Unset, Chunk: Unset, Workers: Unset, DelayIters: Unset, Repeat: Unset, Sample: Unset}
}

// Bool 返回指向 v 的指针（便于构造覆盖层）。
func Bool(v bool) *bool { return &v }
