// Package scheduler bridges stored actions to the external wake timer:
// it decides when each action fires next, arms exactly one pending
// timer per request id, and withdraws everything on cancel.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/jmhodges/clock"

	"github.com/KasumiMercury/primind-action-reminder/internal/domain"
	"github.com/KasumiMercury/primind-action-reminder/internal/infra/waketimer"
	"github.com/KasumiMercury/primind-action-reminder/internal/observability/metrics"
	"github.com/KasumiMercury/primind-action-reminder/internal/service/tick"
)

// firstFireLeadMillis delays the first interval occurrence just enough
// for the caller's transaction to settle before the timer can fire.
const firstFireLeadMillis = 250

const defaultTitle = "DailyActions"

// PlaybackCanceller is the slice of the playback queue the scheduler
// needs: dropping sound for cancelled actions.
type PlaybackCanceller interface {
	Cancel(requestID int)
	CancelAll()
}

type Service struct {
	store    domain.ActionStore
	timer    waketimer.WakeTimer
	playback PlaybackCanceller
	clk      clock.Clock
	loc      *time.Location
	metrics  *metrics.ReminderMetrics
}

func NewService(
	store domain.ActionStore,
	timer waketimer.WakeTimer,
	playback PlaybackCanceller,
	clk clock.Clock,
	loc *time.Location,
	reminderMetrics *metrics.ReminderMetrics,
) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		store:    store,
		timer:    timer,
		playback: playback,
		clk:      clk,
		loc:      loc,
		metrics:  reminderMetrics,
	}
}

// Schedule stores the action and arms its wake timer. A zero
// TriggerAtMillis means "compute it": the next daily occurrence of
// FixedTime for fixed mode, or a near-immediate first fire for interval
// mode. An arming denial is logged and swallowed; the only outward sign
// is the missing next-at value.
func (s *Service) Schedule(ctx context.Context, action *domain.Action) error {
	a := action.Clone()
	a.Normalize()
	if err := a.Validate(); err != nil {
		return err
	}
	if a.Title == "" {
		a.Title = defaultTitle
	}

	now := s.clk.Now().UnixMilli()
	if a.TriggerAtMillis <= 0 {
		if a.Mode.IsInterval() {
			// First fire lands as soon as the daily window allows.
			a.TriggerAtMillis = tick.ClampToWindow(now+firstFireLeadMillis,
				a.StartTime, a.EndTime, s.loc)
		} else {
			a.TriggerAtMillis = tick.NextFixed(now, a.FixedTime, s.loc)
		}
	}

	if a.Mode.IsInterval() {
		anchor, err := s.store.Phase(ctx, a.RequestID)
		if err != nil {
			return err
		}
		// The anchor is written once and never recomputed; every later
		// tick lands on anchor + k*interval.
		if anchor == 0 {
			if err := s.store.SetPhase(ctx, a.RequestID, a.TriggerAtMillis); err != nil {
				return err
			}
		}
	}

	if err := s.store.Put(ctx, a); err != nil {
		return err
	}

	at := time.UnixMilli(a.TriggerAtMillis)
	if err := s.timer.Arm(ctx, a.RequestID, at, waketimer.PayloadFromAction(a)); err != nil {
		slog.Warn("wake timer arming failed; action stored but will not fire",
			slog.Int("request_id", a.RequestID),
			slog.Time("at", at),
			slog.String("error", err.Error()),
		)
		if s.metrics != nil {
			s.metrics.RecordArmFailure(ctx)
		}
		return s.store.SetNextAt(ctx, a.RequestID, 0)
	}

	slog.Info("action scheduled",
		slog.Int("request_id", a.RequestID),
		slog.String("mode", a.Mode.String()),
		slog.Time("at", at),
	)
	return s.store.SetNextAt(ctx, a.RequestID, a.TriggerAtMillis)
}

// Rearm computes and schedules the next occurrence after one has been
// executed. Fixed-time actions do not repeat.
func (s *Service) Rearm(ctx context.Context, action *domain.Action) error {
	if !action.Mode.IsInterval() {
		return nil
	}

	anchor, err := s.store.Phase(ctx, action.RequestID)
	if err != nil {
		return err
	}
	if anchor == 0 {
		// Pre-anchor records from older installs: the last armed
		// trigger is on the same grid.
		anchor = action.TriggerAtMillis
	}

	now := s.clk.Now().UnixMilli()
	next := tick.Next(now+firstFireLeadMillis, action.StartTime, action.EndTime,
		action.IntervalSeconds, anchor, s.loc)
	if next <= 0 {
		slog.Warn("not re-arming action with invalid interval",
			slog.Int("request_id", action.RequestID),
			slog.Int("interval_seconds", action.IntervalSeconds),
		)
		return nil
	}

	a := action.Clone()
	a.TriggerAtMillis = next
	a.IsExecuted = false

	if s.metrics != nil {
		s.metrics.RecordRearm(ctx)
	}
	return s.Schedule(ctx, a)
}

// Cancel withdraws the timer, deletes the stored records, and drops any
// queued or playing sound for the id. Absent ids are not an error.
func (s *Service) Cancel(ctx context.Context, requestID int) error {
	if err := s.timer.Cancel(ctx, requestID); err != nil {
		slog.Warn("failed to withdraw wake timer",
			slog.Int("request_id", requestID),
			slog.String("error", err.Error()),
		)
	}
	s.playback.Cancel(requestID)
	return s.store.Remove(ctx, requestID)
}

// CancelAll cancels each given id, tolerating individual failures, and
// returns the number of cancels attempted. An empty list means every
// stored action; that full-reset path also silences the playback queue
// outright.
func (s *Service) CancelAll(ctx context.Context, ids []int) (int, error) {
	reset := len(ids) == 0
	if reset {
		all, err := s.store.GetAll(ctx)
		if err != nil {
			return 0, err
		}
		for _, a := range all {
			ids = append(ids, a.RequestID)
		}
	}

	for _, id := range ids {
		if err := s.Cancel(ctx, id); err != nil {
			slog.Warn("failed to cancel action",
				slog.Int("request_id", id),
				slog.String("error", err.Error()),
			)
		}
	}
	if reset {
		s.playback.CancelAll()
	}
	return len(ids), nil
}

// IsScheduled probes the external timer, falling back to the stored
// next-at record when the probe itself fails.
func (s *Service) IsScheduled(ctx context.Context, requestID int) bool {
	armed, err := s.timer.IsArmed(ctx, requestID)
	if err != nil {
		slog.Warn("wake timer probe failed, falling back to stored next-at",
			slog.Int("request_id", requestID),
			slog.String("error", err.Error()),
		)
		at, _ := s.store.NextAt(ctx, requestID)
		return at > 0
	}
	return armed
}

// Restore re-arms every stored action after a process restart: interval
// actions pick up their phase grid again, fixed actions only if their
// trigger is still ahead. Returns the number of actions re-armed.
func (s *Service) Restore(ctx context.Context) (int, error) {
	all, err := s.store.GetAll(ctx)
	if err != nil {
		return 0, err
	}

	now := s.clk.Now().UnixMilli()
	restored := 0
	for _, a := range all {
		var err error
		switch {
		case a.Mode.IsInterval():
			err = s.Rearm(ctx, a)
		case a.TriggerAtMillis > now:
			err = s.Schedule(ctx, a)
		default:
			continue
		}
		if err != nil {
			slog.Warn("failed to restore action",
				slog.Int("request_id", a.RequestID),
				slog.String("error", err.Error()),
			)
			continue
		}
		restored++
	}
	return restored, nil
}

// NextAt returns the epoch-ms of the next armed fire, or 0 when nothing
// is armed for the id.
func (s *Service) NextAt(ctx context.Context, requestID int) int64 {
	at, err := s.store.NextAt(ctx, requestID)
	if err != nil {
		return 0
	}
	return at
}
