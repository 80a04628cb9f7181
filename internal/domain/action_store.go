package domain

import "context"

//go:generate mockgen -source=action_store.go -destination=action_store_mock.go -package=domain

// ActionStore is the durable home of reminder definitions and their
// per-occurrence execution state. Implementations serialize all mutations and
// never let a persistence failure surface as an error: the in-process view
// stays authoritative for the lifetime of the process.
//
// Three records exist per request id: the action itself, the next armed fire
// time (for UI "next reminder at" queries), and the immutable phase anchor of
// interval mode. Remove deletes all three.
type ActionStore interface {
	// Put upserts the action and resets IsExecuted to false.
	Put(ctx context.Context, action *Action) error
	// Get returns ErrActionNotFound when the id is unknown.
	Get(ctx context.Context, requestID int) (*Action, error)
	// GetAll returns all stored actions in no particular order.
	GetAll(ctx context.Context) ([]*Action, error)
	// SetExecuted flips the per-occurrence flag. Unknown ids are a no-op.
	SetExecuted(ctx context.Context, requestID int, executed bool) error
	Remove(ctx context.Context, requestID int) error
	Clear(ctx context.Context) error

	// SetPhase records the interval-mode phase anchor. It is written once
	// per id, on the first arm, and never recomputed.
	SetPhase(ctx context.Context, requestID int, anchorMillis int64) error
	// Phase returns 0 when no anchor has been recorded.
	Phase(ctx context.Context, requestID int) (int64, error)

	// SetNextAt records the next armed fire time; 0 clears it.
	SetNextAt(ctx context.Context, requestID int, atMillis int64) error
	// NextAt returns 0 when nothing is armed for the id.
	NextAt(ctx context.Context, requestID int) (int64, error)
}
