package assigner

import (
	"context"

	"github.com/arloliu/replwork/types"
)

// Unordered queues every work item independently.
//
// Any number of files for the same target may be outstanding at once and
// workers may complete them in any order.
type Unordered struct {
	*base
}

var _ types.WorkAssigner = (*Unordered)(nil)

// NewUnordered creates an unordered assigner.
//
// Example:
//
//	a := assigner.NewUnordered(q, coord, assigner.Config{
//	    CoordinationRoot:   "/replwork",
//	    InstanceID:         instanceID,
//	    WorkQueueNamespace: "/replication/workqueue",
//	}, assigner.WithLogger(logger))
func NewUnordered(queue types.WorkQueue, coord types.CoordinationClient, cfg Config, opts ...Option) *Unordered {
	return &Unordered{base: newBase(types.PolicyUnordered, queue, coord, cfg, opts)}
}

// QueueWork appends item to the queue unless its key is already tracked.
//
// The queue append must succeed before the key is tracked, so a failed append
// leaves the tracked set untouched and the item is offered again next tick.
//
// Returns:
//   - bool: true if a new queue entry was appended
//   - error: types.ErrInvalidWorkItem for invalid items, types.ErrQueueWork on append failure
func (a *Unordered) QueueWork(ctx context.Context, item types.WorkItem) (bool, error) {
	key, err := a.prepare(item)
	if err != nil {
		return false, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.tracked.Contains(key) {
		return false, nil
	}

	if err := a.enqueue(ctx, key, item); err != nil {
		return false, err
	}

	return true, nil
}

// InitializeQueuedWork replaces the tracked set with the queue's current keys.
// On error the previous tracked set is kept.
func (a *Unordered) InitializeQueuedWork(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	_, err := a.load(ctx)

	return err
}

// CleanupFinishedWork forgets tracked keys whose completion marker is gone.
// It never modifies the queue.
func (a *Unordered) CleanupFinishedWork(ctx context.Context) []string {
	return a.cleanup(ctx, nil)
}
