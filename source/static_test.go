package source

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/replwork/types"
)

var target = types.ReplicationTarget{PeerName: "cluster1", RemoteIdentifier: "table1", SourceTableID: "1"}

func TestStatic_ListWork(t *testing.T) {
	t.Run("returns all items", func(t *testing.T) {
		items := []types.WorkItem{
			{File: "/wals/wal1", Target: target},
			{File: "/wals/wal2", Target: target},
		}
		src := NewStatic(items)

		result, err := src.ListWork(context.Background())
		require.NoError(t, err)
		require.Equal(t, items, result)
	})

	t.Run("returns empty list when no items", func(t *testing.T) {
		result, err := NewStatic(nil).ListWork(context.Background())
		require.NoError(t, err)
		require.Empty(t, result)
	})

	t.Run("does not alias caller or result slices", func(t *testing.T) {
		items := []types.WorkItem{{File: "/wals/wal1", Target: target}}
		src := NewStatic(items)
		items[0].File = "/changed"

		result, err := src.ListWork(context.Background())
		require.NoError(t, err)
		result[0].File = "/changed-again"

		again, err := src.ListWork(context.Background())
		require.NoError(t, err)
		require.Equal(t, "/wals/wal1", again[0].File)
	})
}

func TestStatic_UpdateAndAdd(t *testing.T) {
	src := NewStatic([]types.WorkItem{{File: "/wals/wal1", Target: target}})

	src.Add(types.WorkItem{File: "/wals/wal2", Target: target})
	result, err := src.ListWork(context.Background())
	require.NoError(t, err)
	require.Len(t, result, 2)

	src.Update([]types.WorkItem{{File: "/wals/wal3", Target: target}})
	result, err = src.ListWork(context.Background())
	require.NoError(t, err)
	require.Equal(t, []types.WorkItem{{File: "/wals/wal3", Target: target}}, result)
}

func TestFunc(t *testing.T) {
	boom := errors.New("metadata table unavailable")
	src := Func(func(context.Context) ([]types.WorkItem, error) {
		return nil, boom
	})

	_, err := src.ListWork(context.Background())
	require.ErrorIs(t, err, boom)
}
