package contract

import (
	"errors"
	"fmt"
	"testing"
)

// UT-CON-01: N=5, chunk=2 → [0,2),[2,4),[4,5)
func TestPartitionScenario(t *testing.T) {
	got, err := Partition(5, 2)
	if err != nil {
		t.Fatalf("切分失败: %v", err)
	}
	want := []Chunk{{0, 0, 2}, {1, 2, 4}, {2, 4, 5}}
	if len(got) != len(want) {
		t.Fatalf("块数 期望 %d 实得 %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("块 %d 期望 %+v 实得 %+v", i, want[i], got[i])
		}
	}
}

// UT-CON-02: 任意 N/S 的切分完整性（无空洞、无重叠、块数 ceil(N/S)）
func TestPartitionCompleteness(t *testing.T) {
	tests := []struct{ n, s int }{
		{1, 1}, {1, 7}, {7, 1}, {10, 3}, {1000, 1000}, {1001, 1000}, {4096, 128}, {12345, 17},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("n=%d/s=%d", tt.n, tt.s), func(t *testing.T) {
			chunks, err := Partition(tt.n, tt.s)
			if err != nil {
				t.Fatalf("切分失败: %v", err)
			}
			if want := (tt.n + tt.s - 1) / tt.s; len(chunks) != want {
				t.Fatalf("块数 期望 %d 实得 %d", want, len(chunks))
			}
			next := 0
			for k, c := range chunks {
				if c.Index != k {
					t.Fatalf("块序错误: %+v", c)
				}
				if c.Start != next {
					t.Fatalf("块 %d 起点 %d, 期望 %d", k, c.Start, next)
				}
				if k < len(chunks)-1 && c.Len() != tt.s {
					t.Fatalf("非末块长度 %d != %d", c.Len(), tt.s)
				}
				if c.Len() < 1 || c.Len() > tt.s {
					t.Fatalf("块长度越界: %+v", c)
				}
				next = c.End
			}
			if next != tt.n {
				t.Fatalf("覆盖终点 %d != %d", next, tt.n)
			}
		})
	}
}

// UT-CON-03: 单块覆盖全范围
func TestPartitionSingleChunk(t *testing.T) {
	chunks, err := Partition(1000, 1000)
	if err != nil || len(chunks) != 1 {
		t.Fatalf("期望单块: %v %v", chunks, err)
	}
	if chunks[0].Start != 0 || chunks[0].End != 1000 {
		t.Fatalf("单块范围错误: %+v", chunks[0])
	}
}

// UT-CON-04: 非法输入
func TestPartitionInvalid(t *testing.T) {
	if _, err := Partition(10, 0); !errors.Is(err, ErrChunkInvalid) {
		t.Fatalf("chunk=0 应返回 ErrChunkInvalid, got %v", err)
	}
	if _, err := Partition(10, -3); !errors.Is(err, ErrChunkInvalid) {
		t.Fatalf("chunk<0 应返回 ErrChunkInvalid, got %v", err)
	}
	if _, err := Partition(-1, 4); !errors.Is(err, ErrLengthInvalid) {
		t.Fatalf("n<0 应返回 ErrLengthInvalid, got %v", err)
	}
	chunks, err := Partition(0, 4)
	if err != nil || len(chunks) != 0 {
		t.Fatalf("n=0 应为空切分: %v %v", chunks, err)
	}
}

// UT-CON-05: 静态轮转分配
func TestAssignRoundRobin(t *testing.T) {
	got := Assign(7, 3)
	want := [][]int{{0, 3, 6}, {1, 4}, {2, 5}}
	for w := range want {
		if fmt.Sprint(got[w]) != fmt.Sprint(want[w]) {
			t.Fatalf("worker %d 期望 %v 实得 %v", w, want[w], got[w])
		}
	}
	// 工作者多于块：多余者为空
	got = Assign(2, 4)
	if len(got) != 4 || len(got[2]) != 0 || len(got[3]) != 0 {
		t.Fatalf("多余工作者应为空: %v", got)
	}
	// workers<1 视为 1
	got = Assign(3, 0)
	if len(got) != 1 || len(got[0]) != 3 {
		t.Fatalf("workers=0 应退化为单工作者: %v", got)
	}
}

// 补充覆盖: ChunkCount 边界与 ClockFunc
func TestChunkCountAndClockFunc(t *testing.T) {
	if ChunkCount(0, 4) != 0 || ChunkCount(4, 0) != 0 || ChunkCount(9, 4) != 3 {
		t.Fatalf("ChunkCount 边界错误")
	}
	var c Clock = ClockFunc(func() float64 { return 1.5 })
	if c.Now() != 1.5 {
		t.Fatalf("ClockFunc 适配错误")
	}
}

func BenchmarkPartition(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := Partition(10_000_000, 128); err != nil {
			b.Fatalf("切分失败: %v", err)
		}
	}
}
