package wakeres

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Guard keeps the host awake while sound plays. Acquire is bounded: the
// returned handle expires on its own after the timeout even if Release
// is never called.
type Guard interface {
	Acquire(timeout time.Duration) Handle
	Release(h Handle)
}

// Handle identifies one acquisition.
type Handle string

// ProcessGuard tracks acquisitions in memory. On platforms without a
// power-management hook it only provides the bounded-hold accounting.
type ProcessGuard struct {
	mu    sync.Mutex
	holds map[Handle]time.Time
}

func NewProcessGuard() *ProcessGuard {
	return &ProcessGuard{holds: make(map[Handle]time.Time)}
}

func (g *ProcessGuard) Acquire(timeout time.Duration) Handle {
	h := Handle(uuid.NewString())

	g.mu.Lock()
	g.holds[h] = time.Now().Add(timeout)
	g.mu.Unlock()

	time.AfterFunc(timeout, func() {
		g.expire(h)
	})

	slog.Debug("wake hold acquired",
		slog.String("handle", string(h)),
		slog.Duration("timeout", timeout),
	)
	return h
}

func (g *ProcessGuard) Release(h Handle) {
	g.mu.Lock()
	_, held := g.holds[h]
	delete(g.holds, h)
	g.mu.Unlock()

	if held {
		slog.Debug("wake hold released", slog.String("handle", string(h)))
	}
}

func (g *ProcessGuard) expire(h Handle) {
	g.mu.Lock()
	_, held := g.holds[h]
	delete(g.holds, h)
	g.mu.Unlock()

	if held {
		slog.Debug("wake hold expired", slog.String("handle", string(h)))
	}
}

// Active reports the number of live holds.
func (g *ProcessGuard) Active() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.holds)
}
