package waketimer

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jmhodges/clock"
)

// InProcessTimer keeps timers in memory and invokes a bound fire
// callback when they expire. It backs local single-process deployments
// where no external tasks service is available.
type InProcessTimer struct {
	clk  clock.Clock
	mu   sync.Mutex
	fire func(payload *FirePayload)
	arms map[int]chan struct{}
}

func NewInProcessTimer(clk clock.Clock) *InProcessTimer {
	return &InProcessTimer{
		clk:  clk,
		arms: make(map[int]chan struct{}),
	}
}

// Bind installs the callback invoked when a timer expires. The fire
// handler depends on the scheduler, which depends on this timer, so the
// callback arrives after construction.
func (t *InProcessTimer) Bind(fire func(payload *FirePayload)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.fire = fire
}

func (t *InProcessTimer) Arm(ctx context.Context, requestID int, at time.Time, payload *FirePayload) error {
	t.mu.Lock()
	if prev, ok := t.arms[requestID]; ok {
		close(prev)
	}
	cancel := make(chan struct{})
	t.arms[requestID] = cancel

	d := at.Sub(t.clk.Now())
	if d < 0 {
		d = 0
	}
	expire := t.clk.After(d)
	t.mu.Unlock()

	go t.wait(expire, requestID, payload, cancel)

	slog.Debug("wake timer armed in process",
		slog.Int("request_id", requestID),
		slog.Time("at", at),
	)
	return nil
}

func (t *InProcessTimer) wait(expire <-chan time.Time, requestID int, payload *FirePayload, cancel chan struct{}) {
	select {
	case <-cancel:
		return
	case <-expire:
	}

	t.mu.Lock()
	// A replacement arm may have raced the expiry.
	if t.arms[requestID] != cancel {
		t.mu.Unlock()
		return
	}
	delete(t.arms, requestID)
	fire := t.fire
	t.mu.Unlock()

	if fire == nil {
		slog.Warn("in-process timer expired with no fire callback bound",
			slog.Int("request_id", requestID),
		)
		return
	}
	fire(payload)
}

func (t *InProcessTimer) Cancel(ctx context.Context, requestID int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if cancel, ok := t.arms[requestID]; ok {
		close(cancel)
		delete(t.arms, requestID)
		slog.Debug("wake timer cancelled", slog.Int("request_id", requestID))
	}
	return nil
}

func (t *InProcessTimer) IsArmed(ctx context.Context, requestID int) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.arms[requestID]
	return ok, nil
}
