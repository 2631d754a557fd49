package config

import (
	"errors"
	"fmt"
	"strings"

	"vecaddbench/internal/kernel"
	"vecaddbench/internal/pipeline"
	"vecaddbench/internal/probe"
	"vecaddbench/pkg/contract"
	"vecaddbench/pkg/registry"
)

// Validate 对最小必要边界做静态校验。任何非法项都使运行中止（不回退默认值）。
func Validate(cfg Config) error {
	if cfg.N <= 0 {
		return fmt.Errorf("config: %w: n must be > 0 (got %d)", contract.ErrLengthInvalid, cfg.N)
	}
	if cfg.Chunk <= 0 {
		return fmt.Errorf("config: %w: chunk must be > 0 (got %d)", contract.ErrChunkInvalid, cfg.Chunk)
	}
	if cfg.Workers < 0 {
		return fmt.Errorf("config: workers must be >= 0 (got %d)", cfg.Workers)
	}
	if cfg.DelayIters < 0 {
		return fmt.Errorf("config: delay_iters must be >= 0 (got %d)", cfg.DelayIters)
	}
	if cfg.Repeat < 1 {
		return fmt.Errorf("config: repeat must be >= 1 (got %d)", cfg.Repeat)
	}
	if cfg.Sample < 0 {
		return fmt.Errorf("config: sample must be >= 0 (got %d)", cfg.Sample)
	}
	if !probe.ValidMode(cfg.Mode) {
		return fmt.Errorf("config: mode %q invalid (want auto|parallel|serial)", cfg.Mode)
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Logging.Level)) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: logging.level %q invalid", cfg.Logging.Level)
	}
	if name := effName(cfg.Components.Clock, Defaults().Components.Clock); registry.Clock[name] == nil {
		return fmt.Errorf("config: clock %q not registered (have %v)", name, registry.Names(registry.Clock))
	}
	return nil
}

// Assemble 构造 Components 与 Settings；执行器由 mode 与能力探测共同选择。
func Assemble(cfg Config, caps probe.Capabilities) (pipeline.Components, pipeline.Settings, error) {
	if err := Validate(cfg); err != nil {
		return pipeline.Components{}, pipeline.Settings{}, err
	}
	en, err := probe.Select(cfg.Mode, caps)
	if err != nil {
		return pipeline.Components{}, pipeline.Settings{}, err
	}
	newExec := registry.Executor[en]
	if newExec == nil {
		return pipeline.Components{}, pipeline.Settings{}, errors.New("config: executor " + en + " not registered")
	}
	cn := effName(cfg.Components.Clock, Defaults().Components.Clock)

	comp := pipeline.Components{
		Executor: newExec(cfg.Workers),
		Clock:    registry.Clock[cn](),
		Delay:    kernel.Spin(cfg.DelayIters),
	}
	set := pipeline.Settings{
		N:            cfg.N,
		Chunk:        cfg.Chunk,
		Repeat:       cfg.Repeat,
		Verify:       cfg.Verify == nil || *cfg.Verify,
		ParallelInit: cfg.ParallelInit != nil && *cfg.ParallelInit,
	}
	return comp, set, nil
}

func effName(got, def string) string {
	if got == "" {
		return def
	}
	return got
}
