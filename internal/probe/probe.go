package probe

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/klauspost/cpuid/v2"
)

// 执行模式
const (
	ModeAuto     = "auto"
	ModeParallel = "parallel"
	ModeSerial   = "serial"
)

// Capabilities 启动时探测到的并行能力（一次探测，运行期只读）。
type Capabilities struct {
	LogicalCPUs    int // runtime.NumCPU
	MaxProcs       int // runtime.GOMAXPROCS(0)，已反映 GOMAXPROCS 环境变量
	PhysicalCores  int // cpuid；未知为 0
	ThreadsPerCore int // cpuid；未知为 0
	Brand          string
	AVX2           bool
}

// Detect 探测当前进程的并行能力。
func Detect() Capabilities {
	return Capabilities{
		LogicalCPUs:    runtime.NumCPU(),
		MaxProcs:       runtime.GOMAXPROCS(0),
		PhysicalCores:  cpuid.CPU.PhysicalCores,
		ThreadsPerCore: cpuid.CPU.ThreadsPerCore,
		Brand:          strings.TrimSpace(cpuid.CPU.BrandName),
		AVX2:           cpuid.CPU.Supports(cpuid.AVX2),
	}
}

// Parallel 报告运行时是否能同时运行多个工作者。
func (c Capabilities) Parallel() bool { return c.MaxProcs > 1 }

// Select 按配置模式与探测结果选择执行器名（registry 键）。
// auto: 可并行则 static，否则 serial；parallel: 总是 static；serial: 总是 serial。
func Select(mode string, c Capabilities) (string, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", ModeAuto:
		if c.Parallel() {
			return "static", nil
		}
		return "serial", nil
	case ModeParallel:
		return "static", nil
	case ModeSerial:
		return "serial", nil
	default:
		return "", fmt.Errorf("probe: unknown mode %q (want auto|parallel|serial)", mode)
	}
}

// ValidMode 报告 mode 是否为受支持的取值。
func ValidMode(mode string) bool {
	_, err := Select(mode, Capabilities{})
	return err == nil
}
