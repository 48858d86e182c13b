package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// AssessmentMetrics counts assessment lifecycle events and tracks the
// distribution of final scores.
type AssessmentMetrics struct {
	events metric.Int64Counter
	scores metric.Float64Histogram
}

func NewAssessmentMetrics() (*AssessmentMetrics, error) {
	meter := otel.Meter(instrumentationName)

	events, err := meter.Int64Counter(
		"pms_assessment_events_total",
		metric.WithDescription("Assessment lifecycle events by kind"),
	)
	if err != nil {
		return nil, err
	}
	scores, err := meter.Float64Histogram(
		"pms_assessment_final_score",
		metric.WithDescription("Final score of created or updated assessments"),
	)
	if err != nil {
		return nil, err
	}
	return &AssessmentMetrics{events: events, scores: scores}, nil
}

// Record counts one event; scored events also record their final score.
func (m *AssessmentMetrics) Record(ctx context.Context, kind string, score float64, scored bool) {
	attrs := metric.WithAttributes(attribute.String("kind", kind))
	m.events.Add(ctx, 1, attrs)
	if scored {
		m.scores.Record(ctx, score, attrs)
	}
}
