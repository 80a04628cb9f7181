package playback

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jmhodges/clock"

	"github.com/KasumiMercury/primind-action-reminder/internal/infra/audio"
	"github.com/KasumiMercury/primind-action-reminder/internal/infra/wakeres"
	"github.com/KasumiMercury/primind-action-reminder/internal/observability/metrics"
)

// Item is one playback request. StopAfter bounds how long the clip may
// run; zero means the queue default applies.
type Item struct {
	RequestID int
	SoundName string
	Volume01  float64
	StopAfter time.Duration
}

// Queue plays sounds strictly one at a time, in arrival order. A clip
// runs until it finishes, its hard-stop deadline passes, or its owning
// action is cancelled; only then does the next item start.
type Queue struct {
	player       audio.Player
	guard        wakeres.Guard
	clk          clock.Clock
	defaultSound string
	defaultStop  time.Duration
	metrics      *metrics.ReminderMetrics

	mu      sync.Mutex
	pending []Item
	current *inflight
}

// inflight tracks the single playing item. done flips exactly once, no
// matter which of completion, hard stop, or cancel gets there first.
type inflight struct {
	item      Item
	playback  audio.Playback
	wake      wakeres.Handle
	startedAt time.Time
	cancel    chan struct{}
	done      atomic.Bool
}

func NewQueue(player audio.Player, guard wakeres.Guard, clk clock.Clock, defaultSound string, defaultStop time.Duration, reminderMetrics *metrics.ReminderMetrics) *Queue {
	if defaultStop <= 0 {
		defaultStop = time.Second
	}
	return &Queue{
		player:       player,
		guard:        guard,
		clk:          clk,
		defaultSound: defaultSound,
		defaultStop:  defaultStop,
		metrics:      reminderMetrics,
	}
}

// Enqueue adds the item and starts it immediately when nothing is
// playing. Items with zero or negative volume are dropped up front: the
// reminder was already shown and there is nothing to hear.
func (q *Queue) Enqueue(item Item) {
	if item.Volume01 <= 0 {
		slog.Debug("skipping muted playback item",
			slog.Int("request_id", item.RequestID),
		)
		return
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	q.pending = append(q.pending, item)
	if q.current == nil {
		q.startNextLocked()
	}
}

// Cancel drops every queued item for the request id and stops the
// in-flight clip if it belongs to that id. Draining resumes with the
// next unrelated item.
func (q *Queue) Cancel(requestID int) {
	q.mu.Lock()
	kept := q.pending[:0]
	for _, it := range q.pending {
		if it.RequestID == requestID {
			slog.Debug("dropping queued playback item",
				slog.Int("request_id", requestID),
			)
			continue
		}
		kept = append(kept, it)
	}
	q.pending = kept
	cur := q.current
	q.mu.Unlock()

	if cur != nil && cur.item.RequestID == requestID {
		cur.playback.Stop()
		q.finish(cur)
	}
}

// CancelAll empties the queue and stops whatever is playing.
func (q *Queue) CancelAll() {
	q.mu.Lock()
	q.pending = nil
	cur := q.current
	q.mu.Unlock()

	if cur != nil {
		cur.playback.Stop()
		q.finish(cur)
	}
}

// Pending reports how many items wait behind the current one.
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Playing reports whether a clip is currently running.
func (q *Queue) Playing() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.current != nil
}

func (q *Queue) startNextLocked() {
	for q.current == nil && len(q.pending) > 0 {
		item := q.pending[0]
		q.pending = q.pending[1:]

		clip, err := q.player.Resolve(item.SoundName)
		if err != nil {
			clip, err = q.player.Resolve(q.defaultSound)
			if err != nil {
				slog.Warn("no playable clip for item, dropping",
					slog.Int("request_id", item.RequestID),
					slog.String("sound", item.SoundName),
					slog.String("error", err.Error()),
				)
				continue
			}
			slog.Debug("falling back to default sound",
				slog.Int("request_id", item.RequestID),
				slog.String("requested", item.SoundName),
				slog.String("fallback", q.defaultSound),
			)
		}

		stopAfter := item.StopAfter
		if stopAfter <= 0 {
			stopAfter = q.defaultStop
		}

		fl := &inflight{
			item:      item,
			startedAt: q.clk.Now(),
			cancel:    make(chan struct{}),
		}
		fl.wake = q.guard.Acquire(stopAfter + time.Second)

		pb, err := q.player.Play(clip, item.Volume01, func(error) {
			q.finish(fl)
		})
		if err != nil {
			slog.Warn("failed to start playback, dropping item",
				slog.Int("request_id", item.RequestID),
				slog.String("error", err.Error()),
			)
			q.guard.Release(fl.wake)
			continue
		}

		fl.playback = pb
		q.current = fl

		expire := q.clk.After(stopAfter)
		go q.watchHardStop(fl, expire)
	}
}

func (q *Queue) watchHardStop(fl *inflight, expire <-chan time.Time) {
	select {
	case <-fl.cancel:
		return
	case <-expire:
	}

	slog.Debug("hard stop deadline reached",
		slog.Int("request_id", fl.item.RequestID),
	)
	fl.playback.Stop()
	q.finish(fl)
}

// finish is the single completion path. The first caller wins; everyone
// else returns without touching shared state.
func (q *Queue) finish(fl *inflight) {
	if !fl.done.CompareAndSwap(false, true) {
		return
	}

	if q.metrics != nil {
		q.metrics.RecordPlaybackDuration(context.Background(), q.clk.Now().Sub(fl.startedAt))
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	close(fl.cancel)
	q.guard.Release(fl.wake)
	if q.current == fl {
		q.current = nil
		q.startNextLocked()
	}
}
