package otel

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "aiudexd"

// Metrics holds all aiudexd metric instruments.
type Metrics struct {
	DocumentsGenerated metric.Int64Counter
	GenerationFailures metric.Int64Counter
	TimerTicks         metric.Int64Counter
	TimersRunning      metric.Int64UpDownCounter
	GenerationDuration metric.Float64Histogram
}

// NewMetrics creates all metric instruments.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}
	var err error

	m.DocumentsGenerated, err = meter.Int64Counter("aiudex.documents.generated",
		metric.WithDescription("Number of documents generated"))
	if err != nil {
		return nil, err
	}

	m.GenerationFailures, err = meter.Int64Counter("aiudex.documents.failures",
		metric.WithDescription("Number of failed generation attempts"))
	if err != nil {
		return nil, err
	}

	m.TimerTicks, err = meter.Int64Counter("aiudex.timer.ticks",
		metric.WithDescription("Number of stopwatch ticks credited"))
	if err != nil {
		return nil, err
	}

	m.TimersRunning, err = meter.Int64UpDownCounter("aiudex.timer.running",
		metric.WithDescription("Number of stopwatches currently running"))
	if err != nil {
		return nil, err
	}

	m.GenerationDuration, err = meter.Float64Histogram("aiudex.generation.duration_seconds",
		metric.WithDescription("Document generation duration in seconds"))
	if err != nil {
		return nil, err
	}

	return m, nil
}
