package report

import (
	"vecaddbench/internal/pipeline"
	"vecaddbench/pkg/contract"
	"vecaddbench/plugins/executor/serial"
)

func pipelineComp() pipeline.Components {
	return pipeline.Components{
		Executor: serial.New(nil),
		Clock:    contract.ClockFunc(func() float64 { return 0 }),
	}
}
