package orchestrator

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/BaSui01/mindflow/agent/orchestrator"

// Recorder 编排器使用的 Prometheus 指标，*metrics.Collector 满足该接口
type Recorder interface {
	RecordAgentExecution(agent, status string, duration time.Duration)
	RecordSafetyDecision(status string)
	RecordAgentStateTransition(fromState, toState string)
}

type nopRecorder struct{}

func (nopRecorder) RecordAgentExecution(string, string, time.Duration) {}
func (nopRecorder) RecordSafetyDecision(string)                        {}
func (nopRecorder) RecordAgentStateTransition(string, string)          {}

// instruments OTel 侧的 tracer 与轮次指标
type instruments struct {
	tracer       trace.Tracer
	turnTotal    metric.Int64Counter
	turnDuration metric.Float64Histogram
}

func newInstruments(tp trace.TracerProvider, mp metric.MeterProvider) *instruments {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	meter := mp.Meter(instrumentationName)

	inst := &instruments{tracer: tp.Tracer(instrumentationName)}

	// 指标创建失败时保留 nil，记录时跳过
	inst.turnTotal, _ = meter.Int64Counter("mindflow.turn.total",
		metric.WithDescription("Total number of orchestrated turns"),
		metric.WithUnit("{turn}"))
	inst.turnDuration, _ = meter.Float64Histogram("mindflow.turn.duration",
		metric.WithDescription("Turn duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.5, 1, 2.5, 5, 10, 30, 60))

	return inst
}

func (i *instruments) recordTurn(ctx context.Context, agent, status string, d time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("agent", agent),
		attribute.String("status", status),
	)
	if i.turnTotal != nil {
		i.turnTotal.Add(ctx, 1, attrs)
	}
	if i.turnDuration != nil {
		i.turnDuration.Record(ctx, d.Seconds(), attrs)
	}
}
