package waketimer

import (
	"context"
	"testing"
	"time"

	"github.com/jmhodges/clock"
)

func TestInProcessTimerFires(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewFake()
	timer := NewInProcessTimer(clk)

	fired := make(chan *FirePayload, 1)
	timer.Bind(func(p *FirePayload) { fired <- p })

	at := clk.Now().Add(1 * time.Second)
	if err := timer.Arm(ctx, 7, at, &FirePayload{RequestID: 7}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	armed, err := timer.IsArmed(ctx, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !armed {
		t.Fatal("timer not armed after Arm")
	}

	clk.Add(2 * time.Second)

	select {
	case p := <-fired:
		if p.RequestID != 7 {
			t.Errorf("payload request id: got %d, want 7", p.RequestID)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timer never fired")
	}

	armed, err = timer.IsArmed(ctx, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if armed {
		t.Error("timer still armed after firing")
	}
}

func TestInProcessTimerCancel(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewFake()
	timer := NewInProcessTimer(clk)

	fired := make(chan *FirePayload, 1)
	timer.Bind(func(p *FirePayload) { fired <- p })

	at := clk.Now().Add(1 * time.Second)
	if err := timer.Arm(ctx, 3, at, &FirePayload{RequestID: 3}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := timer.Cancel(ctx, 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	armed, err := timer.IsArmed(ctx, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if armed {
		t.Fatal("timer still armed after cancel")
	}

	clk.Add(2 * time.Second)

	select {
	case <-fired:
		t.Error("cancelled timer fired")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestInProcessTimerRearmReplaces(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewFake()
	timer := NewInProcessTimer(clk)

	fired := make(chan *FirePayload, 2)
	timer.Bind(func(p *FirePayload) { fired <- p })

	if err := timer.Arm(ctx, 5, clk.Now().Add(1*time.Second), &FirePayload{RequestID: 5}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Re-arming further out replaces the earlier timer entirely.
	if err := timer.Arm(ctx, 5, clk.Now().Add(10*time.Second), &FirePayload{RequestID: 5}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	clk.Add(2 * time.Second)
	select {
	case <-fired:
		t.Fatal("replaced timer fired")
	case <-time.After(100 * time.Millisecond):
	}

	clk.Add(10 * time.Second)
	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("replacement timer never fired")
	}
}

func TestInProcessTimerCancelUnknownID(t *testing.T) {
	timer := NewInProcessTimer(clock.NewFake())
	if err := timer.Cancel(context.Background(), 99); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
