package types

import "context"

// WorkSource discovers files that are eligible for replication.
//
// The Scheduler calls ListWork once per tick and offers every returned item
// to the WorkAssigner. Returning an item that is already queued is expected
// and harmless: the assigner ignores keys it already tracks.
type WorkSource interface {
	// ListWork returns the work items currently eligible for replication.
	//
	// Implementations should return items in the order they should be
	// queued (oldest first) since ordered assignment relies on it.
	ListWork(ctx context.Context) ([]WorkItem, error)
}
