// Package hooks provides default Hooks implementations.
package hooks

import (
	"context"

	"github.com/arloliu/replwork/types"
)

// NopHooks implements Hooks with no-op callbacks.
//
// This is the default implementation used when no custom hooks are provided,
// eliminating the need for nil checks throughout the codebase.
type NopHooks struct{}

// Compile-time assertions that NopHooks implements hook callbacks.
var (
	_ func(context.Context, string, types.WorkItem) error = (*NopHooks)(nil).OnWorkQueued
	_ func(context.Context, []string) error               = (*NopHooks)(nil).OnWorkFinished
	_ func(context.Context, error) error                  = (*NopHooks)(nil).OnError
)

// NewNop creates a new no-op hooks implementation.
func NewNop() types.Hooks {
	h := &NopHooks{}

	return types.Hooks{
		OnWorkQueued:   h.OnWorkQueued,
		OnWorkFinished: h.OnWorkFinished,
		OnError:        h.OnError,
	}
}

// WithDefaults returns a copy of h where every nil callback is replaced by a no-op.
// A nil h yields NewNop().
func WithDefaults(h *types.Hooks) types.Hooks {
	out := NewNop()
	if h == nil {
		return out
	}

	if h.OnWorkQueued != nil {
		out.OnWorkQueued = h.OnWorkQueued
	}
	if h.OnWorkFinished != nil {
		out.OnWorkFinished = h.OnWorkFinished
	}
	if h.OnError != nil {
		out.OnError = h.OnError
	}

	return out
}

// OnWorkQueued is a no-op implementation.
func (h *NopHooks) OnWorkQueued(_ context.Context, _ string, _ types.WorkItem) error {
	return nil
}

// OnWorkFinished is a no-op implementation.
func (h *NopHooks) OnWorkFinished(_ context.Context, _ []string) error {
	return nil
}

// OnError is a no-op implementation.
func (h *NopHooks) OnError(_ context.Context, _ error) error {
	return nil
}
