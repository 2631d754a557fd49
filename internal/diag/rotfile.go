package diag

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

const (
	currentName = "vecadd-current.txt"
	// defaultKeep 默认保留的历史轮转文件数。
	defaultKeep = 5
)

// RotatingFile 将日志行写入指定目录，并按文件大小轮转。
// - 当前文件固定名：vecadd-current.txt
// - 轮转：当 size+len(line) 超过 maxBytes 时，将当前文件重命名为 vecadd-YYYYMMDD-HHMMSS.txt，重新创建 vecadd-current.txt。
// - 清理：轮转后仅保留最近 keep 个历史文件。
type RotatingFile struct {
	dir      string
	maxBytes int64
	keep     int
	mu       sync.Mutex
	f        *os.File
	curSize  int64
}

// NewRotatingFile 创建轮转写入器；maxBytes<=0 取 10 MiB，keep 取默认 5。
func NewRotatingFile(dir string, maxBytes int64) *RotatingFile {
	return NewRotatingFileKeep(dir, maxBytes, defaultKeep)
}

// NewRotatingFileKeep 同 NewRotatingFile，可指定保留的历史文件数（<=0 表示不清理）。
func NewRotatingFileKeep(dir string, maxBytes int64, keep int) *RotatingFile {
	if maxBytes <= 0 {
		maxBytes = 10 * 1024 * 1024
	}
	return &RotatingFile{dir: dir, maxBytes: maxBytes, keep: keep}
}

func (w *RotatingFile) WriteLine(b []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	lineLen := int64(len(b) + 1) // 包含换行
	if err := w.ensureOpen(); err != nil {
		return err
	}
	if w.curSize+lineLen > w.maxBytes {
		if err := w.rotate(); err != nil {
			return err
		}
	}
	n, err := w.f.Write(append(b, '\n'))
	if err != nil {
		return err
	}
	w.curSize += int64(n)
	return nil
}

func (w *RotatingFile) ensureOpen() error {
	if w.f != nil {
		return nil
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return err
	}
	name := filepath.Join(w.dir, currentName)
	f, err := os.OpenFile(name, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	w.f = f
	// 初始化当前大小
	if st, err := f.Stat(); err == nil {
		w.curSize = st.Size()
	} else {
		w.curSize = 0
	}
	return nil
}

func (w *RotatingFile) rotate() error {
	if w.f == nil {
		return w.ensureOpen()
	}
	oldPath := w.f.Name()
	_ = w.f.Close()
	w.f = nil
	// 带高精度时间戳，避免同秒冲突覆盖
	ts := time.Now().UTC().Format("20060102-150405.000000000")
	rotated := filepath.Join(filepath.Dir(oldPath), fmt.Sprintf("vecadd-%s.txt", ts))
	if err := os.Rename(oldPath, rotated); err != nil {
		return fmt.Errorf("rename rotated file: %w", err)
	}
	w.prune()
	return w.ensureOpen()
}

// prune 删除超出 keep 的最旧历史文件；失败忽略（清理不影响写入）。
func (w *RotatingFile) prune() {
	if w.keep <= 0 {
		return
	}
	ents, err := os.ReadDir(w.dir)
	if err != nil {
		return
	}
	var rotated []string
	for _, e := range ents {
		n := e.Name()
		if n == currentName || !strings.HasPrefix(n, "vecadd-") || !strings.HasSuffix(n, ".txt") {
			continue
		}
		rotated = append(rotated, n)
	}
	if len(rotated) <= w.keep {
		return
	}
	// 时间戳定宽，字典序即时间序
	sort.Strings(rotated)
	for _, n := range rotated[:len(rotated)-w.keep] {
		_ = os.Remove(filepath.Join(w.dir, n))
	}
}

// Close 关闭当前打开的文件句柄
func (w *RotatingFile) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.f != nil {
		err := w.f.Close()
		w.f = nil
		return err
	}
	return nil
}
