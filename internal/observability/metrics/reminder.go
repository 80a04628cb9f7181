package metrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	reminderMeterName = "reminder.service"
)

type ReminderMetrics struct {
	firesHandled     metric.Int64Counter
	rearms           metric.Int64Counter
	playbackItems    metric.Int64Counter
	playbackDuration metric.Float64Histogram
	armFailures      metric.Int64Counter
}

func NewReminderMetrics() (*ReminderMetrics, error) {
	meter := otel.Meter(reminderMeterName)

	firesHandled, err := meter.Int64Counter(
		"reminder_fires_total",
		metric.WithDescription("Total number of fire wake-ups handled"),
		metric.WithUnit("{fire}"),
	)
	if err != nil {
		return nil, err
	}

	rearms, err := meter.Int64Counter(
		"reminder_rearms_total",
		metric.WithDescription("Total number of interval re-arms"),
		metric.WithUnit("{rearm}"),
	)
	if err != nil {
		return nil, err
	}

	playbackItems, err := meter.Int64Counter(
		"reminder_playback_items_total",
		metric.WithDescription("Total number of sounds enqueued for playback"),
		metric.WithUnit("{item}"),
	)
	if err != nil {
		return nil, err
	}

	playbackDuration, err := meter.Float64Histogram(
		"reminder_playback_duration_seconds",
		metric.WithDescription("Time a clip actually played before finishing or being stopped"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(
			0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60,
		),
	)
	if err != nil {
		return nil, err
	}

	armFailures, err := meter.Int64Counter(
		"reminder_arm_failures_total",
		metric.WithDescription("Total number of wake timer arming failures"),
		metric.WithUnit("{failure}"),
	)
	if err != nil {
		return nil, err
	}

	return &ReminderMetrics{
		firesHandled:     firesHandled,
		rearms:           rearms,
		playbackItems:    playbackItems,
		playbackDuration: playbackDuration,
		armFailures:      armFailures,
	}, nil
}

func (m *ReminderMetrics) RecordFireHandled(ctx context.Context, outcome string) {
	m.firesHandled.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", outcome),
	))
}

func (m *ReminderMetrics) RecordRearm(ctx context.Context) {
	m.rearms.Add(ctx, 1)
}

func (m *ReminderMetrics) RecordPlaybackItem(ctx context.Context, sound string) {
	m.playbackItems.Add(ctx, 1, metric.WithAttributes(
		attribute.String("sound", sound),
	))
}

func (m *ReminderMetrics) RecordPlaybackDuration(ctx context.Context, duration time.Duration) {
	m.playbackDuration.Record(ctx, duration.Seconds())
}

func (m *ReminderMetrics) RecordArmFailure(ctx context.Context) {
	m.armFailures.Add(ctx, 1)
}
