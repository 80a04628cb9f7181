// Package fire handles wake-timer deliveries: it decides which stored
// actions are actually due, executes each at most once per occurrence,
// and hands the follow-up re-arm back to the scheduler.
package fire

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/jmhodges/clock"

	"github.com/KasumiMercury/primind-action-reminder/internal/domain"
	"github.com/KasumiMercury/primind-action-reminder/internal/infra/notify"
	"github.com/KasumiMercury/primind-action-reminder/internal/observability/metrics"
	"github.com/KasumiMercury/primind-action-reminder/internal/service/playback"
)

const (
	// DefaultLookback tolerates wake-ups delivered slightly late.
	DefaultLookback = 500 * time.Millisecond
	// DefaultWindow lets one wake-up service every action due in the
	// next few seconds, saving redundant wake-ups.
	DefaultWindow = 5 * time.Second

	// stopAfterUnit converts the caller's DurationSound hint to a
	// playback deadline.
	stopAfterUnit = 600 * time.Millisecond
)

// Rearmer schedules the next occurrence of an executed action.
type Rearmer interface {
	Rearm(ctx context.Context, action *domain.Action) error
}

// Enqueuer accepts playback items.
type Enqueuer interface {
	Enqueue(item playback.Item)
}

// Handler serializes fire processing behind one mutex: overlapping
// wake-ups re-derive what is due from the store, so running them one at
// a time is both correct and simplest.
type Handler struct {
	store    domain.ActionStore
	notifier notify.Notifier
	queue    Enqueuer
	rearmer  Rearmer
	clk      clock.Clock
	lookback time.Duration
	window   time.Duration
	metrics  *metrics.ReminderMetrics

	mu sync.Mutex
}

func NewHandler(
	store domain.ActionStore,
	notifier notify.Notifier,
	queue Enqueuer,
	rearmer Rearmer,
	clk clock.Clock,
	lookback, window time.Duration,
	reminderMetrics *metrics.ReminderMetrics,
) *Handler {
	if lookback <= 0 {
		lookback = DefaultLookback
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &Handler{
		store:    store,
		notifier: notifier,
		queue:    queue,
		rearmer:  rearmer,
		clk:      clk,
		lookback: lookback,
		window:   window,
		metrics:  reminderMetrics,
	}
}

// HandleFire processes one wake-up for requestID. The payload id is a
// hint only: the handler executes every stored action due inside the
// batch window, each at most once per occurrence.
func (h *Handler) HandleFire(ctx context.Context, requestID int) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := h.clk.Now().UnixMilli()
	lo := now - h.lookback.Milliseconds()
	hi := now + h.window.Milliseconds()
	ran := make(map[int]bool)

	first, err := h.store.Get(ctx, requestID)
	if err != nil {
		if errors.Is(err, domain.ErrActionNotFound) {
			slog.Debug("ignoring stale fire for unknown action",
				slog.Int("request_id", requestID),
			)
			h.recordOutcome(ctx, "stale")
			return nil
		}
		return err
	}

	switch {
	case first.IsExecuted:
		slog.Debug("occurrence already handled",
			slog.Int("request_id", requestID),
		)
		h.recordOutcome(ctx, "duplicate")
	case first.TriggerAtMillis < lo || first.TriggerAtMillis > hi:
		slog.Debug("fire outside the due window",
			slog.Int("request_id", requestID),
			slog.Int64("trigger_at", first.TriggerAtMillis),
			slog.Int64("now", now),
		)
		h.recordOutcome(ctx, "out_of_window")
	default:
		h.execute(ctx, first, ran)
	}

	// One wake-up services everything else due nearby.
	all, err := h.store.GetAll(ctx)
	if err != nil {
		return err
	}
	slices.SortFunc(all, func(a, b *domain.Action) int {
		switch {
		case a.TriggerAtMillis < b.TriggerAtMillis:
			return -1
		case a.TriggerAtMillis > b.TriggerAtMillis:
			return 1
		default:
			return a.RequestID - b.RequestID
		}
	})
	for _, a := range all {
		if ran[a.RequestID] || a.IsExecuted {
			continue
		}
		if a.TriggerAtMillis < lo || a.TriggerAtMillis > hi {
			continue
		}
		h.execute(ctx, a, ran)
	}
	return nil
}

// execute runs one occurrence: the dedupe flag flips first so a crash
// mid-way errs on the side of not repeating, then the reminder is
// shown, the sound queued, and the next occurrence armed. The re-arm
// must come after the flag flip: its Put resets IsExecuted for the new
// occurrence.
func (h *Handler) execute(ctx context.Context, a *domain.Action, ran map[int]bool) {
	ran[a.RequestID] = true

	if err := h.store.SetExecuted(ctx, a.RequestID, true); err != nil {
		slog.Warn("failed to mark occurrence executed",
			slog.Int("request_id", a.RequestID),
			slog.String("error", err.Error()),
		)
	}

	if err := h.notifier.ShowReminder(ctx, a.RequestID, a.Title, a.Text); err != nil {
		slog.Warn("failed to show reminder",
			slog.Int("request_id", a.RequestID),
			slog.String("error", err.Error()),
		)
	}

	h.queue.Enqueue(h.itemFrom(a))
	if h.metrics != nil {
		h.metrics.RecordPlaybackItem(ctx, a.SoundName)
	}

	if err := h.rearmer.Rearm(ctx, a); err != nil {
		slog.Warn("failed to re-arm action",
			slog.Int("request_id", a.RequestID),
			slog.String("error", err.Error()),
		)
	}

	slog.Info("reminder executed",
		slog.Int("request_id", a.RequestID),
		slog.Int64("trigger_at", a.TriggerAtMillis),
	)
	h.recordOutcome(ctx, "executed")
}

// itemFrom bounds the clip so an interval reminder's beep can never
// outlast its own repeat period. Zero means the queue default applies.
func (h *Handler) itemFrom(a *domain.Action) playback.Item {
	stopAfter := time.Duration(a.DurationSound) * stopAfterUnit
	if a.Mode.IsInterval() && a.IntervalSeconds > 0 {
		period := time.Duration(a.IntervalSeconds) * time.Second
		if stopAfter > period {
			stopAfter = period
		}
	}
	if stopAfter < 0 {
		stopAfter = 0
	}
	return playback.Item{
		RequestID: a.RequestID,
		SoundName: a.SoundName,
		Volume01:  a.Volume01,
		StopAfter: stopAfter,
	}
}

func (h *Handler) recordOutcome(ctx context.Context, outcome string) {
	if h.metrics != nil {
		h.metrics.RecordFireHandled(ctx, outcome)
	}
}
