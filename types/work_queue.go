package types

import "context"

// WorkQueue is the durable, crash-surviving queue of pending replication work.
//
// The assigner only appends and lists. Claiming and completing entries is the
// job of an independent worker population (see queue.Worker), potentially
// spread over many processes sharing the same queue.
type WorkQueue interface {
	// AddWork durably appends an entry under key with the given payload.
	//
	// Adding a key that is already queued must succeed without creating a
	// second entry. A returned error means the entry may not be durable and
	// the caller must not consider the work queued.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout
	//   - key: Queue key derived from the work item
	//   - payload: Full path of the file to replicate
	//
	// Returns:
	//   - error: Durability error (nil on success)
	AddWork(ctx context.Context, key string, payload string) error

	// ListQueued returns the keys of all currently queued entries.
	//
	// Order is not significant. An empty queue returns an empty slice and a
	// nil error.
	ListQueued(ctx context.Context) ([]string, error)
}
