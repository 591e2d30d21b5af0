package types

import "context"

// CoordinationClient is a read-only view over the hierarchical coordination store.
//
// The assigner uses it to observe completion markers: the absence of a
// marker is the only signal that queued work has finished.
type CoordinationClient interface {
	// Get returns the data stored at path.
	//
	// Returns:
	//   - []byte: Node data (may be empty for nodes without data)
	//   - error: ErrNodeNotFound when the node does not exist, other errors when
	//     the store could not be queried
	Get(ctx context.Context, path string) ([]byte, error)
}
