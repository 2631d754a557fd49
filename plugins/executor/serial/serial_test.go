package serial

import (
	"errors"
	"testing"

	"vecaddbench/pkg/contract"
)

// UT-SER-01: 按块序依次访问全部索引
func TestForInOrder(t *testing.T) {
	e := New(nil)
	if e.Workers() != 1 || e.Name() != "serial" {
		t.Fatalf("serial 元信息错误: %s/%d", e.Name(), e.Workers())
	}
	var seen []int
	if err := e.For(5, 2, func(i int) { seen = append(seen, i) }); err != nil {
		t.Fatalf("For 失败: %v", err)
	}
	for i, v := range seen {
		if v != i {
			t.Fatalf("顺序错误: %v", seen)
		}
	}
	if len(seen) != 5 {
		t.Fatalf("访问数量错误: %v", seen)
	}
}

// UT-SER-02: 非法参数与 panic
func TestForErrors(t *testing.T) {
	e := New(&Options{})
	if err := e.For(3, 0, func(int) {}); !errors.Is(err, contract.ErrChunkInvalid) {
		t.Fatalf("chunk=0 应失败: %v", err)
	}
	if err := e.For(-2, 1, func(int) {}); !errors.Is(err, contract.ErrLengthInvalid) {
		t.Fatalf("n<0 应失败: %v", err)
	}
	err := e.For(3, 1, func(i int) {
		if i == 2 {
			panic("boom")
		}
	})
	if !errors.Is(err, contract.ErrInvariantViolation) {
		t.Fatalf("panic 应转为不变量错误: %v", err)
	}
}
