package wakeres

import (
	"testing"
	"time"
)

func TestAcquireRelease(t *testing.T) {
	g := NewProcessGuard()

	h := g.Acquire(time.Minute)
	if g.Active() != 1 {
		t.Fatalf("active holds: got %d, want 1", g.Active())
	}

	g.Release(h)
	if g.Active() != 0 {
		t.Errorf("active holds after release: got %d, want 0", g.Active())
	}

	// Releasing twice is harmless.
	g.Release(h)
}

func TestHoldExpires(t *testing.T) {
	g := NewProcessGuard()

	g.Acquire(20 * time.Millisecond)

	deadline := time.Now().Add(2 * time.Second)
	for g.Active() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("hold never expired")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
