package diag

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"
)

// 级别定义
type Level int

const (
	Debug Level = iota
	Info
	Warn
	Error
)

func (l Level) String() string {
	switch l {
	case Debug:
		return "debug"
	case Info:
		return "info"
	case Warn:
		return "warn"
	case Error:
		return "error"
	default:
		return "info"
	}
}

// Logger 为最小结构化日志器：单行 JSON 写入轮转文件；sink 不可用时退回 stderr。
type Logger struct {
	corrID string
	level  Level
	sink   *RotatingFile
	mu     sync.Mutex
}

// NewLogger 通过配置的 level 初始化，并将日志写入默认目录 logs，10m 轮转。
func NewLogger(corrID, level string) *Logger {
	lvl := parseLevel(strings.TrimSpace(level))
	sink := NewRotatingFile("logs", 10*1024*1024)
	return &Logger{corrID: corrID, level: lvl, sink: sink}
}

// NewLoggerTo 与 NewLogger 相同，但写入指定目录（测试与嵌入场景）。
func NewLoggerTo(corrID, level, dir string) *Logger {
	return &Logger{corrID: corrID, level: parseLevel(strings.TrimSpace(level)), sink: NewRotatingFile(dir, 0)}
}

func parseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "debug":
		return Debug
	case "warn":
		return Warn
	case "error":
		return Error
	default:
		return Info
	}
}

// Event 为标准事件结构。
type Event struct {
	Level  string            `json:"level"`
	TS     string            `json:"ts"`
	CorrID string            `json:"corr_id"`
	Comp   string            `json:"comp"`
	Stage  string            `json:"stage"` // start|finish|warn|error
	Code   string            `json:"code,omitempty"`
	DurMS  int64             `json:"dur_ms,omitempty"`
	Count  int64             `json:"count,omitempty"`
	Pass   string            `json:"pass,omitempty"`
	Msg    string            `json:"msg"`
	KV     map[string]string `json:"kv,omitempty"`
}

// log 以最小开销写出事件，遵循级别。
func (l *Logger) log(lv Level, ev Event) {
	if l == nil || lv < l.level {
		return
	}
	ev.Level = lv.String()
	ev.TS = NowUTC()
	ev.CorrID = l.corrID
	b, _ := json.Marshal(ev)
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.sink == nil {
		_, _ = os.Stderr.Write(append(b, '\n'))
		return
	}
	if err := l.sink.WriteLine(b); err != nil {
		fmt.Fprintf(os.Stderr, "logger sink error: %v\n", err)
		_, _ = os.Stderr.Write(append(b, '\n'))
	}
}

// Close 关闭底层文件。
func (l *Logger) Close() error {
	if l == nil || l.sink == nil {
		return nil
	}
	return l.sink.Close()
}

// Start 记录 start 事件；返回计时器用于 Finish。
func (l *Logger) Start(comp, msg string) *Timer {
	l.log(Info, Event{Comp: comp, Stage: "start", Msg: msg})
	return &Timer{l: l, comp: comp, t0: time.Now()}
}

// StartPass 记录带 pass 序号与键值的 start。
func (l *Logger) StartPass(comp, msg, pass string, kv map[string]string) *Timer {
	l.log(Info, Event{Comp: comp, Stage: "start", Pass: pass, Msg: msg, KV: kv})
	return &Timer{l: l, comp: comp, pass: pass, t0: time.Now()}
}

// Warn 记录 warn 事件（可恢复的配置问题等）。
func (l *Logger) Warn(comp, code, msg string, kv map[string]string) {
	l.log(Warn, Event{Comp: comp, Stage: "warn", Code: code, Msg: msg, KV: kv})
}

// Error 记录 error 事件。
func (l *Logger) Error(comp, code, msg string, durSince *time.Time) {
	var dur int64
	if durSince != nil {
		dur = time.Since(*durSince).Milliseconds()
	}
	l.log(Error, Event{Comp: comp, Stage: "error", Code: code, DurMS: dur, Msg: msg})
}

// ErrorWithKV 支持附带键值对（例如出错的 pass、执行器名）。
func (l *Logger) ErrorWithKV(comp, code, msg string, durSince *time.Time, kv map[string]string) {
	var dur int64
	if durSince != nil {
		dur = time.Since(*durSince).Milliseconds()
	}
	l.log(Error, Event{Comp: comp, Stage: "error", Code: code, DurMS: dur, Msg: msg, KV: kv})
}

// DebugStart 输出调试级别的“start”类事件（仅在 level=debug 时生效）。
func (l *Logger) DebugStart(comp, msg string, kv map[string]string) {
	l.log(Debug, Event{Comp: comp, Stage: "start", Msg: msg, KV: kv})
}

// Timer 用于 start→finish 计时。
type Timer struct {
	l    *Logger
	comp string
	pass string
	t0   time.Time
}

// Finish 记录 finish；可选 count。
func (t *Timer) Finish(msg string, count int64) {
	t.FinishWithKV(msg, count, nil)
}

// FinishWithKV 记录带键值的 finish。
func (t *Timer) FinishWithKV(msg string, count int64, kv map[string]string) {
	if t == nil || t.l == nil {
		return
	}
	t.l.log(Info, Event{Comp: t.comp, Stage: "finish", DurMS: time.Since(t.t0).Milliseconds(), Count: count, Pass: t.pass, Msg: msg, KV: kv})
}

// Fail 以 error 事件结束计时（与 start 成对出现）。
func (t *Timer) Fail(code, msg string, kv map[string]string) {
	if t == nil || t.l == nil {
		return
	}
	t.l.log(Error, Event{Comp: t.comp, Stage: "error", Code: code, DurMS: time.Since(t.t0).Milliseconds(), Pass: t.pass, Msg: msg, KV: kv})
}
