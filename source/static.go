package source

import (
	"context"
	"sync"

	"github.com/arloliu/replwork/types"
)

// Static implements a work source with a fixed list of items.
type Static struct {
	mu    sync.RWMutex
	items []types.WorkItem
}

var _ types.WorkSource = (*Static)(nil)

// NewStatic creates a new static work source.
//
// Parameters:
//   - items: Work items returned by every ListWork call
//
// Returns:
//   - *Static: Initialized static source
//
// Example:
//
//	target := types.ReplicationTarget{PeerName: "dr", RemoteIdentifier: "2", SourceTableID: "1"}
//	src := source.NewStatic([]types.WorkItem{
//	    {File: "/wals/tserver+9997/wal1", Target: target},
//	})
//	sched, err := replwork.NewScheduler(&cfg, nc, src)
func NewStatic(items []types.WorkItem) *Static {
	s := &Static{}
	s.Update(items)

	return s
}

// ListWork returns a copy of the current items.
func (s *Static) ListWork(_ context.Context) ([]types.WorkItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]types.WorkItem, len(s.items))
	copy(result, s.items)

	return result, nil
}

// Update replaces the item list.
//
// Example:
//
//	src := source.NewStatic(nil)
//	src.Update(append(current, newItem))
func (s *Static) Update(items []types.WorkItem) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = make([]types.WorkItem, len(items))
	copy(s.items, items)
}

// Add appends items to the list.
func (s *Static) Add(items ...types.WorkItem) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = append(s.items, items...)
}
