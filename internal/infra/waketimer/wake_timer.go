package waketimer

import (
	"context"
	"time"
)

//go:generate mockgen -source=wake_timer.go -destination=wake_timer_mock.go -package=waketimer

// WakeTimer delivers a FirePayload back to the process at (or shortly
// after) the requested wall-clock time. At most one timer exists per
// request id; arming again replaces the previous one.
type WakeTimer interface {
	Arm(ctx context.Context, requestID int, at time.Time, payload *FirePayload) error
	Cancel(ctx context.Context, requestID int) error
	IsArmed(ctx context.Context, requestID int) (bool, error)
}
