package types

import "context"

// Assignment policy names.
const (
	// PolicyUnordered lets every queued file be claimed independently.
	PolicyUnordered = "unordered"

	// PolicyOrdered keeps at most one outstanding file per replication target.
	PolicyOrdered = "ordered"
)

// WorkAssigner turns eligible work items into queued work and reconciles
// finished work.
//
// Implementations are strategies sharing this contract; see
// internal/assigner for the unordered and ordered policies.
type WorkAssigner interface {
	// QueueWork queues the item unless its key is already tracked.
	//
	// Returns:
	//   - bool: true if a new queue entry was appended
	//   - error: ErrInvalidWorkItem for malformed items, ErrQueueWork when the
	//     durable append failed (the item is not tracked and should be retried)
	QueueWork(ctx context.Context, item WorkItem) (bool, error)

	// InitializeQueuedWork replaces the tracked set with the keys currently
	// present in the durable queue.
	InitializeQueuedWork(ctx context.Context) error

	// CleanupFinishedWork forgets every tracked key whose completion marker is
	// confirmed absent and returns the forgotten keys.
	CleanupFinishedWork(ctx context.Context) []string

	// QueuedWork returns a sorted snapshot of the tracked keys.
	QueuedWork() []string

	// Policy returns the policy name (PolicyUnordered or PolicyOrdered).
	Policy() string
}
