package coordination

import (
	"context"
	"fmt"
	"sync"

	"github.com/arloliu/replwork/types"
)

// Memory is an in-process CoordinationClient.
//
// Nodes are created with Put and removed with Delete. FailWith makes reads of
// one path return an error, to exercise coordination failures.
type Memory struct {
	mu       sync.RWMutex
	nodes    map[string][]byte
	failures map[string]error
	reads    map[string]int
}

var _ types.CoordinationClient = (*Memory)(nil)

// NewMemory creates an empty in-memory coordination store.
func NewMemory() *Memory {
	return &Memory{
		nodes:    make(map[string][]byte),
		failures: make(map[string]error),
		reads:    make(map[string]int),
	}
}

// Put creates or replaces the node at path.
func (m *Memory) Put(path string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nodes[path] = data
}

// Delete removes the node at path. Deleting an absent node is a no-op.
func (m *Memory) Delete(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.nodes, path)
}

// FailWith makes every read of path return err. A nil err clears the failure.
func (m *Memory) FailWith(path string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err == nil {
		delete(m.failures, path)
		return
	}
	m.failures[path] = err
}

// Reads returns how many times path has been read.
func (m *Memory) Reads(path string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.reads[path]
}

// Get returns the data stored at path, or types.ErrNodeNotFound.
func (m *Memory) Get(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.reads[path]++

	if err, ok := m.failures[path]; ok {
		return nil, err
	}

	data, ok := m.nodes[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s", types.ErrNodeNotFound, path)
	}

	return append([]byte(nil), data...), nil
}
