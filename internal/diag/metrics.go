package diag

import (
	"sort"
	"strings"
	"sync"
)

// 最小进程内指标（无导出器）。名称：
// - op_total{comp,stage,result}
// - error_total{comp,code}
// - op_duration_ms{comp,stage}（累计毫秒）

var (
	metricsMu sync.Mutex
	counters  = map[string]int64{}
)

func metricKey(name string, labels ...string) string {
	return name + "{" + strings.Join(labels, ",") + "}"
}

func add(key string, v int64) {
	metricsMu.Lock()
	counters[key] += v
	metricsMu.Unlock()
}

// IncOp 累加操作计数（result=success|error）。
func IncOp(comp, stage, result string) { add(metricKey("op_total", comp, stage, result), 1) }

// IncError 按分类累加错误计数。
func IncError(comp, code string) { add(metricKey("error_total", comp, code), 1) }

// ObserveDuration 记录阶段耗时（毫秒，累加）。
func ObserveDuration(comp, stage string, durMS int64) {
	add(metricKey("op_duration_ms", comp, stage), durMS)
}

// Snapshot 返回当前全部计数的拷贝。
func Snapshot() map[string]int64 {
	metricsMu.Lock()
	defer metricsMu.Unlock()
	out := make(map[string]int64, len(counters))
	for k, v := range counters {
		out[k] = v
	}
	return out
}

// SnapshotKeys 返回排序后的指标键（调试输出用）。
func SnapshotKeys() []string {
	snap := Snapshot()
	keys := make([]string, 0, len(snap))
	for k := range snap {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ResetMetrics 清空计数（测试用）。
func ResetMetrics() {
	metricsMu.Lock()
	counters = map[string]int64{}
	metricsMu.Unlock()
}
