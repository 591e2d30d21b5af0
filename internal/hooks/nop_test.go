package hooks

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/replwork/types"
)

func TestNewNop(t *testing.T) {
	hooks := NewNop()
	ctx := context.Background()

	require.NotNil(t, hooks.OnWorkQueued)
	require.NotNil(t, hooks.OnWorkFinished)
	require.NotNil(t, hooks.OnError)

	require.NoError(t, hooks.OnWorkQueued(ctx, "wal1|cluster1|table1|1", types.WorkItem{File: "/wal/wal1"}))
	require.NoError(t, hooks.OnWorkFinished(ctx, []string{"wal1|cluster1|table1|1"}))
	require.NoError(t, hooks.OnError(ctx, errors.New("boom")))
}

func TestWithDefaults(t *testing.T) {
	t.Run("nil hooks yields nops", func(t *testing.T) {
		h := WithDefaults(nil)
		require.NotNil(t, h.OnWorkQueued)
		require.NotNil(t, h.OnWorkFinished)
		require.NotNil(t, h.OnError)
	})

	t.Run("keeps provided callbacks", func(t *testing.T) {
		var finished []string
		h := WithDefaults(&types.Hooks{
			OnWorkFinished: func(_ context.Context, keys []string) error {
				finished = append(finished, keys...)
				return nil
			},
		})

		require.NoError(t, h.OnWorkFinished(context.Background(), []string{"a", "b"}))
		require.Equal(t, []string{"a", "b"}, finished)
		require.NotNil(t, h.OnError)
		require.NoError(t, h.OnError(context.Background(), errors.New("ignored")))
	})
}
