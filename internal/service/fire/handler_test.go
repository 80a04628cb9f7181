package fire

import (
	"context"
	"testing"
	"time"

	"github.com/jmhodges/clock"

	"github.com/KasumiMercury/primind-action-reminder/internal/domain"
	"github.com/KasumiMercury/primind-action-reminder/internal/infra/repository"
	"github.com/KasumiMercury/primind-action-reminder/internal/service/playback"
)

type recordingNotifier struct {
	shown []int
}

func (n *recordingNotifier) ShowReminder(_ context.Context, requestID int, _, _ string) error {
	n.shown = append(n.shown, requestID)
	return nil
}

type recordingQueue struct {
	items []playback.Item
}

func (q *recordingQueue) Enqueue(item playback.Item) { q.items = append(q.items, item) }

// rearmPut mimics the real scheduler: re-arming stores a fresh action
// with the dedupe flag cleared.
type rearmPut struct {
	store   domain.ActionStore
	rearmed []int
	// executedAtRearm records whether the flag was already set when the
	// re-arm ran.
	executedAtRearm []bool
}

func (r *rearmPut) Rearm(ctx context.Context, a *domain.Action) error {
	r.rearmed = append(r.rearmed, a.RequestID)

	stored, err := r.store.Get(ctx, a.RequestID)
	if err != nil {
		return err
	}
	r.executedAtRearm = append(r.executedAtRearm, stored.IsExecuted)

	next := a.Clone()
	next.TriggerAtMillis += int64(next.IntervalSeconds) * 1000
	return r.store.Put(ctx, next)
}

type noopRearmer struct {
	rearmed []int
}

func (r *noopRearmer) Rearm(_ context.Context, a *domain.Action) error {
	r.rearmed = append(r.rearmed, a.RequestID)
	return nil
}

func fixedClock(t *testing.T) (clock.FakeClock, int64) {
	t.Helper()
	clk := clock.NewFake()
	clk.Set(time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC))
	return clk, clk.Now().UnixMilli()
}

func dueAction(id int, triggerAt int64) *domain.Action {
	return &domain.Action{
		RequestID:       id,
		TriggerAtMillis: triggerAt,
		SoundName:       "bell",
		Volume01:        0.7,
		Title:           "hydrate",
		Text:            "drink water",
		Mode:            domain.ModeInterval,
		IntervalSeconds: 60,
		DurationSound:   2,
	}
}

func TestFireExecutesDueAction(t *testing.T) {
	ctx := context.Background()
	clk, now := fixedClock(t)
	store := repository.NewActionStore(nil)
	notifier := &recordingNotifier{}
	queue := &recordingQueue{}
	rearmer := &noopRearmer{}
	h := NewHandler(store, notifier, queue, rearmer, clk, 0, 0, nil)

	if err := store.Put(ctx, dueAction(1, now)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := h.HandleFire(ctx, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(notifier.shown) != 1 || notifier.shown[0] != 1 {
		t.Errorf("shown reminders: got %v, want [1]", notifier.shown)
	}
	if len(queue.items) != 1 {
		t.Fatalf("enqueued items: got %d, want 1", len(queue.items))
	}
	item := queue.items[0]
	if item.SoundName != "bell" || item.Volume01 != 0.7 {
		t.Errorf("unexpected item: %+v", item)
	}
	if want := 2 * 600 * time.Millisecond; item.StopAfter != want {
		t.Errorf("stop after: got %v, want %v", item.StopAfter, want)
	}
	if len(rearmer.rearmed) != 1 {
		t.Errorf("rearms: got %v, want [1]", rearmer.rearmed)
	}

	got, _ := store.Get(ctx, 1)
	if !got.IsExecuted {
		t.Error("occurrence not marked executed")
	}
}

func TestDuplicateFireIsIdempotent(t *testing.T) {
	ctx := context.Background()
	clk, now := fixedClock(t)
	store := repository.NewActionStore(nil)
	notifier := &recordingNotifier{}
	queue := &recordingQueue{}
	h := NewHandler(store, notifier, queue, &noopRearmer{}, clk, 0, 0, nil)

	if err := store.Put(ctx, dueAction(1, now)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := h.HandleFire(ctx, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := h.HandleFire(ctx, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(notifier.shown) != 1 {
		t.Errorf("shown reminders: got %v, want exactly one", notifier.shown)
	}
	if len(queue.items) != 1 {
		t.Errorf("enqueued items: got %d, want 1", len(queue.items))
	}
}

func TestWindowBatchesNearbyActions(t *testing.T) {
	ctx := context.Background()
	clk, now := fixedClock(t)
	store := repository.NewActionStore(nil)
	notifier := &recordingNotifier{}
	queue := &recordingQueue{}
	h := NewHandler(store, notifier, queue, &noopRearmer{}, clk, 0, 0, nil)

	// Three due inside [now-500ms, now+5s], one too far out, one too
	// far in the past.
	for _, a := range []*domain.Action{
		dueAction(1, now),
		dueAction(2, now+1_000),
		dueAction(3, now+4_000),
		dueAction(4, now+6_000),
		dueAction(5, now-1_000),
	} {
		if err := store.Put(ctx, a); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if err := h.HandleFire(ctx, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []int{1, 2, 3}
	if len(notifier.shown) != len(want) {
		t.Fatalf("shown reminders: got %v, want %v", notifier.shown, want)
	}
	for i, id := range want {
		if notifier.shown[i] != id {
			t.Errorf("execution order[%d]: got %d, want %d", i, notifier.shown[i], id)
		}
	}
}

func TestStaleFireForUnknownActionIsIgnored(t *testing.T) {
	clk, _ := fixedClock(t)
	notifier := &recordingNotifier{}
	h := NewHandler(repository.NewActionStore(nil), notifier, &recordingQueue{}, &noopRearmer{}, clk, 0, 0, nil)

	if err := h.HandleFire(context.Background(), 42); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(notifier.shown) != 0 {
		t.Errorf("shown reminders: got %v, want none", notifier.shown)
	}
}

func TestOutOfWindowFireStillBatchesOthers(t *testing.T) {
	ctx := context.Background()
	clk, now := fixedClock(t)
	store := repository.NewActionStore(nil)
	notifier := &recordingNotifier{}
	h := NewHandler(store, notifier, &recordingQueue{}, &noopRearmer{}, clk, 0, 0, nil)

	// The fired id itself is long overdue, but another action is due.
	if err := store.Put(ctx, dueAction(1, now-60_000)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.Put(ctx, dueAction(2, now+500)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := h.HandleFire(ctx, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(notifier.shown) != 1 || notifier.shown[0] != 2 {
		t.Errorf("shown reminders: got %v, want [2]", notifier.shown)
	}
}

func TestExecutedFlagFlipsBeforeRearm(t *testing.T) {
	ctx := context.Background()
	clk, now := fixedClock(t)
	store := repository.NewActionStore(nil)
	rearmer := &rearmPut{store: store}
	h := NewHandler(store, &recordingNotifier{}, &recordingQueue{}, rearmer, clk, 0, 0, nil)

	if err := store.Put(ctx, dueAction(1, now)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := h.HandleFire(ctx, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(rearmer.executedAtRearm) != 1 || !rearmer.executedAtRearm[0] {
		t.Fatal("the executed flag must be set before the re-arm runs")
	}

	// The re-arm's Put started the next occurrence clean.
	got, err := store.Get(ctx, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.IsExecuted {
		t.Error("next occurrence must start unexecuted")
	}
	if want := now + 60_000; got.TriggerAtMillis != want {
		t.Errorf("next trigger: got %d, want %d", got.TriggerAtMillis, want)
	}
}

func TestStopAfterCappedByIntervalPeriod(t *testing.T) {
	clk, _ := fixedClock(t)
	h := NewHandler(repository.NewActionStore(nil), &recordingNotifier{}, &recordingQueue{}, &noopRearmer{}, clk, 0, 0, nil)

	tests := []struct {
		name   string
		action *domain.Action
		want   time.Duration
	}{
		{
			name: "interval caps long sounds",
			action: &domain.Action{
				RequestID: 1, Mode: domain.ModeInterval,
				IntervalSeconds: 2, DurationSound: 100,
			},
			want: 2 * time.Second,
		},
		{
			name: "fixed mode is uncapped",
			action: &domain.Action{
				RequestID: 2, Mode: domain.ModeFixed, DurationSound: 100,
			},
			want: 60 * time.Second,
		},
		{
			name:   "unset duration falls through to the queue default",
			action: &domain.Action{RequestID: 3, Mode: domain.ModeFixed},
			want:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := h.itemFrom(tt.action).StopAfter; got != tt.want {
				t.Errorf("stop after: got %v, want %v", got, tt.want)
			}
		})
	}
}
