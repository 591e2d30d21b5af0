package source

import (
	"context"

	"github.com/arloliu/replwork/types"
)

// Func adapts an ordinary function to the types.WorkSource interface.
type Func func(ctx context.Context) ([]types.WorkItem, error)

var _ types.WorkSource = Func(nil)

// ListWork calls f(ctx).
func (f Func) ListWork(ctx context.Context) ([]types.WorkItem, error) {
	return f(ctx)
}
