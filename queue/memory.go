package queue

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/arloliu/replwork/types"
)

// Memory is an in-process WorkQueue.
//
// It records every AddWork call so tests can assert how often a key was
// appended. FailAdds and FailList inject durability failures.
type Memory struct {
	mu       sync.Mutex
	entries  map[string]string
	adds     map[string]int
	addErr   error
	listErr  error
	addCalls int
}

var _ types.WorkQueue = (*Memory)(nil)

// NewMemory creates an empty in-memory queue.
func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]string),
		adds:    make(map[string]int),
	}
}

// AddWork stores payload under key unless an entry already exists.
func (m *Memory) AddWork(ctx context.Context, key string, payload string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.addCalls++
	if m.addErr != nil {
		return fmt.Errorf("failed to add work %s: %w", key, m.addErr)
	}

	m.adds[key]++
	if _, ok := m.entries[key]; !ok {
		m.entries[key] = payload
	}

	return nil
}

// ListQueued returns the queued keys in sorted order.
func (m *Memory) ListQueued(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.listErr != nil {
		return nil, m.listErr
	}

	keys := make([]string, 0, len(m.entries))
	for k := range m.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return keys, nil
}

// Payload returns the payload stored for key.
func (m *Memory) Payload(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.entries[key]

	return p, ok
}

// Complete removes the entry for key, as a worker would after processing it.
func (m *Memory) Complete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, key)
}

// Seed stores entries directly, bypassing AddWork accounting.
func (m *Memory) Seed(entries map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for k, v := range entries {
		m.entries[k] = v
	}
}

// Adds returns how many successful AddWork calls were made for key.
func (m *Memory) Adds(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.adds[key]
}

// AddCalls returns the total number of AddWork calls, failed ones included.
func (m *Memory) AddCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.addCalls
}

// FailAdds makes subsequent AddWork calls fail with err. nil restores success.
func (m *Memory) FailAdds(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.addErr = err
}

// FailList makes subsequent ListQueued calls fail with err. nil restores success.
func (m *Memory) FailList(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.listErr = err
}
