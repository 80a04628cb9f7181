package playback

import (
	"sync"
	"testing"
	"time"

	"github.com/jmhodges/clock"

	"github.com/KasumiMercury/primind-action-reminder/internal/infra/audio"
	"github.com/KasumiMercury/primind-action-reminder/internal/infra/wakeres"
)

// fakePlayer hands out playback handles whose completion the test
// drives explicitly.
type fakePlayer struct {
	mu      sync.Mutex
	clips   map[string]bool
	started []*fakePlayback
}

type fakeClip struct{ name string }

func (c fakeClip) Name() string { return c.name }

type fakePlayback struct {
	clip    string
	volume  float64
	done    func(error)
	doneOne sync.Once
	mu      sync.Mutex
	stopped bool
}

func newFakePlayer(clips ...string) *fakePlayer {
	m := make(map[string]bool, len(clips))
	for _, c := range clips {
		m[c] = true
	}
	return &fakePlayer{clips: m}
}

func (p *fakePlayer) Resolve(name string) (audio.Clip, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.clips[name] {
		return nil, audio.ErrClipNotFound
	}
	return fakeClip{name: name}, nil
}

func (p *fakePlayer) Play(clip audio.Clip, volume float64, done func(error)) (audio.Playback, error) {
	pb := &fakePlayback{clip: clip.Name(), volume: volume, done: done}
	p.mu.Lock()
	p.started = append(p.started, pb)
	p.mu.Unlock()
	return pb, nil
}

func (p *fakePlayer) startedCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.started)
}

func (p *fakePlayer) playbackAt(i int) *fakePlayback {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.started[i]
}

func (pb *fakePlayback) Stop() {
	pb.mu.Lock()
	pb.stopped = true
	pb.mu.Unlock()
	pb.complete()
}

func (pb *fakePlayback) wasStopped() bool {
	pb.mu.Lock()
	defer pb.mu.Unlock()
	return pb.stopped
}

// complete simulates the clip finishing. Delivery happens on a separate
// goroutine, matching the player contract, but the call waits for it so
// tests can assert right after.
func (pb *fakePlayback) complete() {
	pb.doneOne.Do(func() {
		ch := make(chan struct{})
		go func() {
			pb.done(nil)
			close(ch)
		}()
		<-ch
	})
}

func TestSerializedPlayback(t *testing.T) {
	player := newFakePlayer("ding", "dong")
	q := NewQueue(player, wakeres.NewProcessGuard(), clock.NewFake(), "bell", time.Second, nil)

	q.Enqueue(Item{RequestID: 1, SoundName: "ding", Volume01: 0.5, StopAfter: time.Hour})
	q.Enqueue(Item{RequestID: 2, SoundName: "dong", Volume01: 0.5, StopAfter: time.Hour})

	if got := player.startedCount(); got != 1 {
		t.Fatalf("started playbacks: got %d, want 1 (second must wait)", got)
	}
	if got := q.Pending(); got != 1 {
		t.Fatalf("pending: got %d, want 1", got)
	}

	player.playbackAt(0).complete()

	if got := player.startedCount(); got != 2 {
		t.Fatalf("started playbacks after completion: got %d, want 2", got)
	}
	if player.playbackAt(1).clip != "dong" {
		t.Errorf("second clip: got %q, want %q", player.playbackAt(1).clip, "dong")
	}

	player.playbackAt(1).complete()
	if q.Playing() {
		t.Error("queue still playing after both items completed")
	}
}

func TestHardStopDeadline(t *testing.T) {
	player := newFakePlayer("ding")
	clk := clock.NewFake()
	q := NewQueue(player, wakeres.NewProcessGuard(), clk, "bell", time.Second, nil)

	q.Enqueue(Item{RequestID: 1, SoundName: "ding", Volume01: 1.0, StopAfter: 3 * time.Second})

	clk.Add(5 * time.Second)

	deadline := time.Now().Add(2 * time.Second)
	for q.Playing() {
		if time.Now().After(deadline) {
			t.Fatal("hard stop never fired")
		}
		time.Sleep(5 * time.Millisecond)
	}

	if !player.playbackAt(0).wasStopped() {
		t.Error("playback was not stopped at the deadline")
	}
}

func TestZeroVolumeSkipsPlayback(t *testing.T) {
	player := newFakePlayer("ding")
	q := NewQueue(player, wakeres.NewProcessGuard(), clock.NewFake(), "bell", time.Second, nil)

	q.Enqueue(Item{RequestID: 1, SoundName: "ding", Volume01: 0})
	q.Enqueue(Item{RequestID: 2, SoundName: "ding", Volume01: -0.5})

	if got := player.startedCount(); got != 0 {
		t.Errorf("started playbacks: got %d, want 0", got)
	}
	if q.Playing() || q.Pending() != 0 {
		t.Error("muted items must not occupy the queue")
	}
}

func TestUnknownSoundFallsBackToDefault(t *testing.T) {
	player := newFakePlayer("bell")
	q := NewQueue(player, wakeres.NewProcessGuard(), clock.NewFake(), "bell", time.Second, nil)

	q.Enqueue(Item{RequestID: 1, SoundName: "no-such-clip", Volume01: 1.0, StopAfter: time.Hour})

	if got := player.startedCount(); got != 1 {
		t.Fatalf("started playbacks: got %d, want 1", got)
	}
	if player.playbackAt(0).clip != "bell" {
		t.Errorf("clip: got %q, want fallback %q", player.playbackAt(0).clip, "bell")
	}
}

func TestUnresolvableItemIsDropped(t *testing.T) {
	player := newFakePlayer("ding") // no "bell" default registered
	q := NewQueue(player, wakeres.NewProcessGuard(), clock.NewFake(), "bell", time.Second, nil)

	q.Enqueue(Item{RequestID: 1, SoundName: "no-such-clip", Volume01: 1.0})
	q.Enqueue(Item{RequestID: 2, SoundName: "ding", Volume01: 1.0, StopAfter: time.Hour})

	// The dead item must not block the queue.
	if got := player.startedCount(); got != 1 {
		t.Fatalf("started playbacks: got %d, want 1", got)
	}
	if player.playbackAt(0).clip != "ding" {
		t.Errorf("clip: got %q, want %q", player.playbackAt(0).clip, "ding")
	}
}

func TestCancelDropsQueuedItems(t *testing.T) {
	player := newFakePlayer("ding")
	q := NewQueue(player, wakeres.NewProcessGuard(), clock.NewFake(), "bell", time.Second, nil)

	q.Enqueue(Item{RequestID: 1, SoundName: "ding", Volume01: 1.0, StopAfter: time.Hour})
	q.Enqueue(Item{RequestID: 2, SoundName: "ding", Volume01: 1.0, StopAfter: time.Hour})
	q.Enqueue(Item{RequestID: 2, SoundName: "ding", Volume01: 1.0, StopAfter: time.Hour})
	q.Enqueue(Item{RequestID: 3, SoundName: "ding", Volume01: 1.0, StopAfter: time.Hour})

	q.Cancel(2)

	if got := q.Pending(); got != 1 {
		t.Fatalf("pending after cancel: got %d, want 1", got)
	}

	player.playbackAt(0).complete()
	if player.playbackAt(1).clip != "ding" || player.startedCount() != 2 {
		t.Fatalf("unexpected playback sequence")
	}
}

func TestCancelStopsInFlightAndResumesDraining(t *testing.T) {
	player := newFakePlayer("ding")
	q := NewQueue(player, wakeres.NewProcessGuard(), clock.NewFake(), "bell", time.Second, nil)

	q.Enqueue(Item{RequestID: 1, SoundName: "ding", Volume01: 1.0, StopAfter: time.Hour})
	q.Enqueue(Item{RequestID: 2, SoundName: "ding", Volume01: 1.0, StopAfter: time.Hour})

	q.Cancel(1)

	if !player.playbackAt(0).wasStopped() {
		t.Error("in-flight playback was not stopped")
	}
	if got := player.startedCount(); got != 2 {
		t.Fatalf("started playbacks: got %d, want 2 (draining must resume)", got)
	}
	if got := q.Pending(); got != 0 {
		t.Errorf("pending: got %d, want 0", got)
	}
}

func TestCancelAll(t *testing.T) {
	player := newFakePlayer("ding")
	q := NewQueue(player, wakeres.NewProcessGuard(), clock.NewFake(), "bell", time.Second, nil)

	q.Enqueue(Item{RequestID: 1, SoundName: "ding", Volume01: 1.0, StopAfter: time.Hour})
	q.Enqueue(Item{RequestID: 2, SoundName: "ding", Volume01: 1.0, StopAfter: time.Hour})

	q.CancelAll()

	if q.Playing() || q.Pending() != 0 {
		t.Error("queue not empty after CancelAll")
	}
	if !player.playbackAt(0).wasStopped() {
		t.Error("in-flight playback was not stopped")
	}
}

func TestWakeHoldReleasedOnCompletion(t *testing.T) {
	player := newFakePlayer("ding")
	guard := wakeres.NewProcessGuard()
	q := NewQueue(player, guard, clock.NewFake(), "bell", time.Second, nil)

	q.Enqueue(Item{RequestID: 1, SoundName: "ding", Volume01: 1.0, StopAfter: time.Hour})
	if guard.Active() != 1 {
		t.Fatalf("active holds: got %d, want 1", guard.Active())
	}

	player.playbackAt(0).complete()
	if guard.Active() != 0 {
		t.Errorf("active holds after completion: got %d, want 0", guard.Active())
	}
}
