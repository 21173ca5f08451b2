package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/stacklok/forward-slots/internal/filtering"
	"github.com/stacklok/forward-slots/internal/forwarding"
)

// ForwardingMetricsMeterName is the name used for the forwarding metrics meter
const ForwardingMetricsMeterName = "github.com/stacklok/forward-slots/forwarding"

const (
	decisionIncluded = "included"
	decisionExcluded = "excluded"
)

// ForwardingMetrics holds the OpenTelemetry instruments for forwarding passes
type ForwardingMetrics struct {
	channelsTotal metric.Int64Counter
	targetsTotal  metric.Int64Counter
	passDuration  metric.Float64Histogram
}

var _ forwarding.MetricsRecorder = (*ForwardingMetrics)(nil)

// NewForwardingMetrics creates the forwarding instruments on the given meter
// provider. If provider is nil, it returns nil (no-op metrics).
func NewForwardingMetrics(provider metric.MeterProvider) (*ForwardingMetrics, error) {
	if provider == nil {
		return nil, nil
	}

	meter := provider.Meter(ForwardingMetricsMeterName)

	channelsTotal, err := meter.Int64Counter(
		"fwd_slots_channels_total",
		metric.WithDescription("Channels considered for forwarding, by decision"),
		metric.WithUnit("{channel}"),
	)
	if err != nil {
		return nil, err
	}

	targetsTotal, err := meter.Int64Counter(
		"fwd_slots_targets_total",
		metric.WithDescription("Render targets channels were forwarded to"),
		metric.WithUnit("{target}"),
	)
	if err != nil {
		return nil, err
	}

	passDuration, err := meter.Float64Histogram(
		"fwd_slots_pass_duration_seconds",
		metric.WithDescription("Duration of forwarding passes in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1),
	)
	if err != nil {
		return nil, err
	}

	return &ForwardingMetrics{
		channelsTotal: channelsTotal,
		targetsTotal:  targetsTotal,
		passDuration:  passDuration,
	}, nil
}

// RecordDecisions counts the channels of one target by decision and by whether
// they were native to the target
func (m *ForwardingMetrics) RecordDecisions(ctx context.Context, decisions []filtering.Decision) {
	if m == nil || m.channelsTotal == nil {
		return
	}

	type key struct {
		included bool
		native   bool
	}
	counts := make(map[key]int64, 4)
	for _, d := range decisions {
		counts[key{included: d.Included, native: d.Native}]++
	}

	for k, n := range counts {
		decision := decisionExcluded
		if k.included {
			decision = decisionIncluded
		}
		m.channelsTotal.Add(ctx, n, metric.WithAttributes(
			attribute.String("decision", decision),
			attribute.Bool("native", k.native),
		))
	}
}

// RecordPass records one forwarding pass over targets render targets
func (m *ForwardingMetrics) RecordPass(ctx context.Context, targets int, duration time.Duration) {
	if m == nil || m.passDuration == nil {
		return
	}

	m.targetsTotal.Add(ctx, int64(targets))
	m.passDuration.Record(ctx, duration.Seconds())
}
