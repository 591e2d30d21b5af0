package assigner

import (
	"context"
	"sort"

	"github.com/arloliu/replwork/types"
	"github.com/arloliu/replwork/workkey"
)

// Ordered allows at most one outstanding file per replication target.
//
// A work item for a target that already has a different key outstanding is
// not appended; the caller offers it again on a later tick, after the
// outstanding file has completed. This keeps files for one target flowing to
// the peer in the order the caller offers them.
type Ordered struct {
	*base

	// outstanding keys per target, guarded by base.mu
	byTarget map[types.ReplicationTarget]map[string]struct{}
}

var _ types.WorkAssigner = (*Ordered)(nil)

// NewOrdered creates an ordered assigner.
func NewOrdered(queue types.WorkQueue, coord types.CoordinationClient, cfg Config, opts ...Option) *Ordered {
	return &Ordered{
		base:     newBase(types.PolicyOrdered, queue, coord, cfg, opts),
		byTarget: make(map[types.ReplicationTarget]map[string]struct{}),
	}
}

// QueueWork appends item unless its key is tracked or its target is busy.
//
// Returns:
//   - bool: true if a new queue entry was appended
//   - error: types.ErrInvalidWorkItem for invalid items, types.ErrQueueWork on append failure
func (a *Ordered) QueueWork(ctx context.Context, item types.WorkItem) (bool, error) {
	key, err := a.prepare(item)
	if err != nil {
		return false, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.tracked.Contains(key) {
		return false, nil
	}

	if busy := a.byTarget[item.Target]; len(busy) > 0 {
		a.logger.Debug("target has outstanding work, deferring", "key", key, "target", item.Target.String())
		return false, nil
	}

	if err := a.enqueue(ctx, key, item); err != nil {
		return false, err
	}
	a.index(key, item.Target)

	return true, nil
}

// InitializeQueuedWork replaces the tracked set with the queue's current keys
// and rebuilds the per-target index from them.
//
// Keys that cannot be decoded are tracked but block no target.
func (a *Ordered) InitializeQueuedWork(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	keys, err := a.load(ctx)
	if err != nil {
		return err
	}

	a.byTarget = make(map[types.ReplicationTarget]map[string]struct{})

	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)
	for _, key := range sorted {
		_, target, err := workkey.Decode(key)
		if err != nil {
			a.logger.Warn("queued key cannot be decoded, not indexing by target", "key", key, "error", err)
			continue
		}
		a.index(key, target)
	}

	return nil
}

// CleanupFinishedWork forgets tracked keys whose completion marker is gone
// and frees their target. It never modifies the queue.
func (a *Ordered) CleanupFinishedWork(ctx context.Context) []string {
	return a.cleanup(ctx, a.unindex)
}

// Outstanding returns the keys currently blocking target.
func (a *Ordered) Outstanding(target types.ReplicationTarget) []string {
	a.mu.Lock()
	defer a.mu.Unlock()

	keys := make([]string, 0, len(a.byTarget[target]))
	for k := range a.byTarget[target] {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return keys
}

func (a *Ordered) index(key string, target types.ReplicationTarget) {
	set, ok := a.byTarget[target]
	if !ok {
		set = make(map[string]struct{})
		a.byTarget[target] = set
	}
	set[key] = struct{}{}
}

func (a *Ordered) unindex(key string) {
	_, target, err := workkey.Decode(key)
	if err != nil {
		return
	}

	set := a.byTarget[target]
	delete(set, key)
	if len(set) == 0 {
		delete(a.byTarget, target)
	}
}
