package synthesis

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the synthesis instruments. A nil *Metrics is valid and
// records nothing, which keeps unit tests free of meter setup.
type Metrics struct {
	ttfb       metric.Float64Histogram
	utterances metric.Int64Counter
	errors     metric.Int64Counter
	inputChars metric.Int64Counter
}

func NewMetrics(meter metric.Meter) (*Metrics, error) {
	ttfb, err := meter.Float64Histogram("murmur.synthesis.ttfb_ms",
		metric.WithDescription("Latency from request dispatch to first audio byte"))
	if err != nil {
		return nil, err
	}
	utterances, err := meter.Int64Counter("murmur.synthesis.utterances",
		metric.WithDescription("Completed synthesis calls"))
	if err != nil {
		return nil, err
	}
	errCounter, err := meter.Int64Counter("murmur.synthesis.errors",
		metric.WithDescription("Failed synthesis calls"))
	if err != nil {
		return nil, err
	}
	chars, err := meter.Int64Counter("murmur.synthesis.input_chars",
		metric.WithDescription("Characters of input text sent for synthesis"))
	if err != nil {
		return nil, err
	}
	return &Metrics{ttfb: ttfb, utterances: utterances, errors: errCounter, inputChars: chars}, nil
}

func (m *Metrics) RecordTTFB(ctx context.Context, voice string, d time.Duration) {
	if m == nil {
		return
	}
	m.ttfb.Record(ctx, float64(d.Milliseconds()), metric.WithAttributes(attribute.String("voice", voice)))
}

func (m *Metrics) RecordUsage(ctx context.Context, voice string, chars int) {
	if m == nil {
		return
	}
	m.inputChars.Add(ctx, int64(chars), metric.WithAttributes(attribute.String("voice", voice)))
}

func (m *Metrics) RecordUtterance(ctx context.Context, voice string) {
	if m == nil {
		return
	}
	m.utterances.Add(ctx, 1, metric.WithAttributes(attribute.String("voice", voice)))
}

func (m *Metrics) RecordError(ctx context.Context, voice string) {
	if m == nil {
		return
	}
	m.errors.Add(ctx, 1, metric.WithAttributes(attribute.String("voice", voice)))
}
