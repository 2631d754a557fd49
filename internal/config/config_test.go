package config

import (
	"errors"
	"strings"
	"testing"

	cv "github.com/glycerine/goconvey/convey"

	"vecaddbench/internal/probe"
	"vecaddbench/pkg/contract"
)

// UT-CFG-01: 解析完整 config.json
func TestLoadJSON(t *testing.T) {
	over, err := LoadJSON("../../testdata/config/basic.json", nil)
	if err != nil {
		t.Fatalf("加载失败: %v", err)
	}
	cfg := Merge(Defaults(), over)
	if cfg.N != 5000 || cfg.Chunk != 100 || cfg.Workers != 4 || cfg.Repeat != 3 {
		t.Fatalf("字段映射错误: %+v", cfg)
	}
	if cfg.DelayIters != 0 || cfg.Mode != "parallel" || cfg.Sample != 5 || cfg.Logging.Level != "debug" {
		t.Fatalf("字段映射错误: %+v", cfg)
	}
	if err := Validate(cfg); err != nil {
		t.Fatalf("校验失败: %v", err)
	}
}

// UT-CFG-02: 部分 JSON 不以 0 覆盖默认值
func TestLoadJSONPartial(t *testing.T) {
	over, err := LoadJSON("", []byte(`{"chunk": 64}`))
	if err != nil {
		t.Fatalf("加载失败: %v", err)
	}
	cfg := Merge(Defaults(), over)
	if cfg.N != DefaultN || cfg.Chunk != 64 || cfg.DelayIters != DefaultDelayIters || cfg.Sample != DefaultSample {
		t.Fatalf("部分覆盖错误: %+v", cfg)
	}
	if cfg.Verify == nil || !*cfg.Verify {
		t.Fatalf("verify 默认应为 true")
	}
}

// UT-CFG-03: 含非法字段
func TestLoadJSONUnknown(t *testing.T) {
	if _, err := LoadJSON("", []byte(`{"unknown":1}`)); err == nil {
		t.Fatalf("应当返回错误")
	}
	if _, err := LoadJSON("", nil); err == nil {
		t.Fatalf("无来源应当返回错误")
	}
}

// UT-CFG-03b: JSON 中显式写出的哨兵值被拒绝，不会被当作“未设置”
func TestLoadJSONRejectsUnsetSentinel(t *testing.T) {
	for _, raw := range []string{`{"n": -2147483648}`, `{"chunk": -2147483648}`, `{"n": 10, "repeat": -2147483648}`} {
		if _, err := LoadJSON("", []byte(raw)); err == nil {
			t.Fatalf("%s 应当返回错误", raw)
		}
	}
	over, err := LoadJSON("", []byte(`{"n": -5}`))
	if err != nil {
		t.Fatalf("普通负数应交给 Validate: %v", err)
	}
	if err := Validate(Merge(Defaults(), over)); !errors.Is(err, contract.ErrLengthInvalid) {
		t.Fatalf("n=-5 应校验失败: %v", err)
	}
}

// UT-CFG-04: ENV 覆盖部分字段
func TestEnvOverlay(t *testing.T) {
	env := []string{
		"VECADD_N=1000",
		"VECADD_CHUNK=10",
		"VECADD_DELAY=0",
		"VECADD_MODE=serial",
		"VECADD_VERIFY=false",
		"VECADD_LOG_LEVEL=warn",
		"OTHER_N=7",
		"VECADD_=x",
	}
	over, err := EnvOverlay(env)
	if err != nil {
		t.Fatalf("EnvOverlay 错误: %v", err)
	}
	cfg := Merge(Defaults(), over)
	if cfg.N != 1000 || cfg.Chunk != 10 || cfg.DelayIters != 0 || cfg.Mode != "serial" {
		t.Fatalf("覆盖结果不正确: %+v", cfg)
	}
	if *cfg.Verify || cfg.Logging.Level != "warn" || cfg.Repeat != 1 {
		t.Fatalf("覆盖结果不正确: %+v", cfg)
	}
	if _, err := EnvOverlay([]string{"VECADD_CHUNK=abc"}); err == nil {
		t.Fatalf("非数值应返回错误")
	}
}

// UT-CFG-05: 位置参数解析
func TestParsePositional(t *testing.T) {
	cv.Convey("位置参数 [N] [chunk]", t, func() {
		cv.Convey("两个合法值均覆盖", func() {
			over, ignored := ParsePositional([]string{"5", "2"})
			cv.So(over.N, cv.ShouldEqual, 5)
			cv.So(over.Chunk, cv.ShouldEqual, 2)
			cv.So(ignored, cv.ShouldBeEmpty)
		})
		cv.Convey("无法解析的参数回落且被报告", func() {
			over, ignored := ParsePositional([]string{"abc", "2"})
			cv.So(over.N, cv.ShouldEqual, Unset)
			cv.So(Merge(Defaults(), over).N, cv.ShouldEqual, DefaultN)
			cv.So(ignored, cv.ShouldResemble, []string{"abc"})
		})
		cv.Convey("可解析的非正数保留给校验", func() {
			over, _ := ParsePositional([]string{"0", "-4"})
			cfg := Merge(Defaults(), over)
			cv.So(cfg.N, cv.ShouldEqual, 0)
			cv.So(cfg.Chunk, cv.ShouldEqual, -4)
			cv.So(errors.Is(Validate(cfg), contract.ErrLengthInvalid), cv.ShouldBeTrue)
		})
		cv.Convey("缺省参数保持默认", func() {
			over, _ := ParsePositional(nil)
			cfg := Merge(Defaults(), over)
			cv.So(cfg.N, cv.ShouldEqual, DefaultN)
			cv.So(cfg.Chunk, cv.ShouldEqual, DefaultChunk)
		})
	})
}

// UT-CFG-06: 校验错误分支
func TestValidateErrors(t *testing.T) {
	if err := Validate(DefaultTemplateConfig()); err != nil {
		t.Fatalf("模板应合法: %v", err)
	}
	cases := []struct {
		name string
		mut  func(*Config)
		want error
	}{
		{"n=0", func(c *Config) { c.N = 0 }, contract.ErrLengthInvalid},
		{"chunk=0", func(c *Config) { c.Chunk = 0 }, contract.ErrChunkInvalid},
		{"chunk<0", func(c *Config) { c.Chunk = -1 }, contract.ErrChunkInvalid},
		{"workers<0", func(c *Config) { c.Workers = -2 }, nil},
		{"delay<0", func(c *Config) { c.DelayIters = -1 }, nil},
		{"repeat=0", func(c *Config) { c.Repeat = 0 }, nil},
		{"sample<0", func(c *Config) { c.Sample = -1 }, nil},
		{"mode", func(c *Config) { c.Mode = "dynamic" }, nil},
		{"level", func(c *Config) { c.Logging.Level = "trace" }, nil},
		{"clock", func(c *Config) { c.Components.Clock = "wall" }, nil},
	}
	for _, tc := range cases {
		cfg := Defaults()
		tc.mut(&cfg)
		err := Validate(cfg)
		if err == nil {
			t.Fatalf("%s: 应失败", tc.name)
		}
		if tc.want != nil && !errors.Is(err, tc.want) {
			t.Fatalf("%s: 期望 %v 实得 %v", tc.name, tc.want, err)
		}
	}
}

// UT-CFG-07: 装配按模式选择执行器
func TestAssemble(t *testing.T) {
	multi := probe.Capabilities{MaxProcs: 4, LogicalCPUs: 4}
	single := probe.Capabilities{MaxProcs: 1, LogicalCPUs: 1}

	cfg := Defaults()
	cfg.Workers = 3
	comp, set, err := Assemble(cfg, multi)
	if err != nil {
		t.Fatalf("装配失败: %v", err)
	}
	if comp.Executor.Name() != "static" || comp.Executor.Workers() != 3 {
		t.Fatalf("执行器错误: %s/%d", comp.Executor.Name(), comp.Executor.Workers())
	}
	if comp.Clock == nil || comp.Delay == nil {
		t.Fatalf("组件缺失: %+v", comp)
	}
	if set.N != DefaultN || set.Chunk != DefaultChunk || !set.Verify || set.Repeat != 1 {
		t.Fatalf("设置错误: %+v", set)
	}

	comp, _, err = Assemble(Defaults(), single)
	if err != nil || comp.Executor.Name() != "serial" {
		t.Fatalf("单核 auto 应选择 serial: %v", err)
	}
	cfg = Defaults()
	cfg.Mode = "parallel"
	cfg.DelayIters = 0
	comp, _, err = Assemble(cfg, single)
	if err != nil || comp.Executor.Name() != "static" || comp.Delay != nil {
		t.Fatalf("parallel 应强制 static 且无负载: %v", err)
	}

	cfg = Defaults()
	cfg.Chunk = 0
	if _, _, err := Assemble(cfg, multi); !errors.Is(err, contract.ErrChunkInvalid) {
		t.Fatalf("chunk=0 装配应失败: %v", err)
	}
}

// 补充覆盖: Merge 不覆盖未设置字段
func TestMergeUnset(t *testing.T) {
	base := Defaults()
	out := Merge(base, Overlay())
	if out.N != base.N || out.Chunk != base.Chunk || out.Mode != base.Mode || out.Components.Clock != base.Components.Clock {
		t.Fatalf("空覆盖层不应改变配置: %+v", out)
	}
	over := Overlay()
	over.Mode = " Serial "
	over.Workers = 0
	over.ParallelInit = Bool(true)
	out = Merge(base, over)
	if out.Mode != "serial" || out.Workers != 0 || !*out.ParallelInit {
		t.Fatalf("覆盖错误: %+v", out)
	}
	if _, err := atoi(strings.Repeat("9", 30)); err == nil {
		t.Fatalf("溢出应失败")
	}
}
