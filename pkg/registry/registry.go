package registry

import (
	"sort"

	"vecaddbench/pkg/contract"
	mono "vecaddbench/plugins/clock/monotonic"
	"vecaddbench/plugins/executor/serial"
	"vecaddbench/plugins/executor/static"
)

// NewExecutor 工厂签名：workers<=0 表示由实现取默认值。
type NewExecutor func(workers int) contract.Executor

// NewClock 工厂签名。
type NewClock func() contract.Clock

// Executor 工厂注册表（显式、零反射）。
var Executor = map[string]NewExecutor{
	// static: schedule(static, chunk) 语义的多工作者执行器
	"static": func(workers int) contract.Executor {
		return static.New(&static.Options{Workers: workers})
	},
	// serial: 单工作者退化实现
	"serial": func(int) contract.Executor { return serial.New(nil) },
}

// Clock 工厂注册表。
var Clock = map[string]NewClock{
	"monotonic": func() contract.Clock { return mono.New() },
}

// Names 返回注册表中的实现名（排序，用于错误提示）。
func Names[T any](m map[string]T) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
