package diag

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/apoorvam/goterminal"
	"golang.org/x/term"
)

// Terminal: 终端信息提示（非日志）。
// - 输出到提供的 io.Writer（默认建议 stderr）。
// - TTY: 经 goterminal 原地刷新单行进度；非 TTY: 关键节点分行打印。
// - 并发安全；写失败后进入禁用态为 no-op。
type Terminal struct {
	w       io.Writer
	tw      *goterminal.Writer
	inlineW func(line string) error // TTY 原地刷新；默认经 goterminal
	enabled bool
	isTTY   bool

	// 运行期最小状态
	mode       string
	workers    int
	passesDone int
	runStart   time.Time

	lastFlush time.Time
	inline    bool

	mu sync.Mutex
}

// 进程级终端（可选，全局设置后供 pipeline 旁路调用）。
var (
	termMu sync.RWMutex
	term0  *Terminal
)

// SetTerminal 设置全局终端指针（nil 可清除）。
func SetTerminal(t *Terminal) { termMu.Lock(); term0 = t; termMu.Unlock() }

// GetTerminal 返回全局终端（可能为 nil）。
func GetTerminal() *Terminal { termMu.RLock(); defer termMu.RUnlock(); return term0 }

// NewTerminal 构造终端提示器。
// enabled=false 时总是 no-op。
func NewTerminal(w io.Writer, enabled bool) *Terminal {
	if w == nil {
		w = os.Stderr
	}
	t := &Terminal{w: w, enabled: enabled}
	// CI 环境视为非 TTY
	if os.Getenv("CI") == "" {
		if f, ok := w.(*os.File); ok {
			t.isTTY = term.IsTerminal(int(f.Fd()))
		}
	}
	t.tw = goterminal.New(w)
	t.inlineW = t.refresh
	return t
}

// refresh 清除上一次原地输出的行并写出新行。
func (t *Terminal) refresh(line string) error {
	t.tw.Clear()
	if _, err := io.WriteString(t.tw, line+"\n"); err != nil {
		return err
	}
	t.tw.Print()
	return nil
}

// RunStart: 记录运行上下文（执行模式、工作者数、计划轮数）。
func (t *Terminal) RunStart(mode string, workers, passes int) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.enabled {
		return
	}
	t.mode = mode
	t.workers = workers
	t.passesDone = 0
	t.runStart = time.Now()
	t.println(fmt.Sprintf("[run] mode=%s | workers=%d | 计划轮数=%d", safe(mode), workers, passes))
}

// PassFinish: 一轮计时完成。TTY 下原地刷新（≥100ms 节流，末轮强制刷新）；非 TTY 逐轮打点。
func (t *Terminal) PassFinish(pass, total int, elapsed float64) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.enabled {
		return
	}
	t.passesDone = pass
	line := fmt.Sprintf("[pass] %d/%d | 本轮 %.6fs | 总用时 %s", pass, total, elapsed, formatSince(t.runStart))
	if !t.isTTY {
		t.println(line)
		return
	}
	now := time.Now()
	if pass < total && now.Sub(t.lastFlush) < 100*time.Millisecond {
		return
	}
	t.lastFlush = now
	t.printInline(line)
}

// RunFinish: 结束总览。
func (t *Terminal) RunFinish(ok bool, dur time.Duration) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.enabled {
		return
	}
	tag := "ok"
	if !ok {
		tag = "fail"
	}
	if t.inline && t.isTTY {
		t.tw.Clear()
		t.inline = false
	}
	t.println(fmt.Sprintf("[%s] 全部完成 | 轮数 %d | 总用时 %s", tag, t.passesDone, formatDur(dur)))
}

// 内部输出工具
func (t *Terminal) println(s string) {
	if t == nil || !t.enabled {
		return
	}
	if _, err := io.WriteString(t.w, s+"\n"); err != nil {
		// 写失败即禁用
		t.enabled = false
	}
}

func (t *Terminal) printInline(s string) {
	if t == nil || !t.enabled {
		return
	}
	if err := t.inlineW(s); err != nil {
		t.enabled = false
		return
	}
	t.inline = true
}

func safe(s string) string {
	// 避免换行等控制字符污染终端
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	return s
}

func formatSince(t0 time.Time) string { return formatDur(time.Since(t0)) }

func formatDur(d time.Duration) string {
	if d < time.Second {
		ms := d.Milliseconds()
		if ms <= 0 {
			ms = 0
		}
		return fmt.Sprintf("%dms", ms)
	}
	// 秒，保留 1 位小数
	s := float64(d.Milliseconds()) / 1000.0
	return fmt.Sprintf("%.1fs", s)
}
