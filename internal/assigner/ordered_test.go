package assigner

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/replwork/coordination"
	"github.com/arloliu/replwork/queue"
	"github.com/arloliu/replwork/types"
	"github.com/arloliu/replwork/workkey"
)

func TestOrdered_QueueWork(t *testing.T) {
	t.Run("one outstanding file per target", func(t *testing.T) {
		q := queue.NewMemory()
		coord := coordination.NewMemory()
		a := NewOrdered(q, coord, testConfig)

		queued, err := a.QueueWork(t.Context(), wal1)
		require.NoError(t, err)
		require.True(t, queued)

		queued, err = a.QueueWork(t.Context(), wal2)
		require.NoError(t, err)
		require.False(t, queued, "target1 is busy with wal1")
		require.Zero(t, q.Adds("wal2|cluster1|table1|1"))

		other := types.WorkItem{File: "/wals/wal2", Target: target2}
		queued, err = a.QueueWork(t.Context(), other)
		require.NoError(t, err)
		require.True(t, queued, "target2 is free")

		require.Equal(t, []string{"wal1|cluster1|table1|1"}, a.Outstanding(target1))
	})

	t.Run("finished file frees its target", func(t *testing.T) {
		q := queue.NewMemory()
		coord := coordination.NewMemory()
		a := NewOrdered(q, coord, testConfig)

		_, err := a.QueueWork(t.Context(), wal1)
		require.NoError(t, err)
		coord.Put(testConfig.MarkerPath("wal1|cluster1|table1|1"), nil)

		require.Empty(t, a.CleanupFinishedWork(t.Context()))
		queued, err := a.QueueWork(t.Context(), wal2)
		require.NoError(t, err)
		require.False(t, queued)

		coord.Delete(testConfig.MarkerPath("wal1|cluster1|table1|1"))
		require.Equal(t, []string{"wal1|cluster1|table1|1"}, a.CleanupFinishedWork(t.Context()))
		require.Empty(t, a.Outstanding(target1))

		queued, err = a.QueueWork(t.Context(), wal2)
		require.NoError(t, err)
		require.True(t, queued)
		require.Equal(t, []string{"wal2|cluster1|table1|1"}, a.Outstanding(target1))
	})

	t.Run("repeat of the outstanding file is a no-op", func(t *testing.T) {
		q := queue.NewMemory()
		a := NewOrdered(q, coordination.NewMemory(), testConfig)

		for range 3 {
			_, err := a.QueueWork(t.Context(), wal1)
			require.NoError(t, err)
		}
		require.Equal(t, 1, q.Adds("wal1|cluster1|table1|1"))
	})

	t.Run("queue failure leaves target free", func(t *testing.T) {
		q := queue.NewMemory()
		q.FailAdds(types.ErrConnectivity)
		a := NewOrdered(q, coordination.NewMemory(), testConfig)

		_, err := a.QueueWork(t.Context(), wal1)
		require.ErrorIs(t, err, types.ErrQueueWork)
		require.Empty(t, a.Outstanding(target1))

		q.FailAdds(nil)
		queued, err := a.QueueWork(t.Context(), wal2)
		require.NoError(t, err)
		require.True(t, queued)
	})

	t.Run("invalid item", func(t *testing.T) {
		a := NewOrdered(queue.NewMemory(), coordination.NewMemory(), testConfig)
		_, err := a.QueueWork(t.Context(), types.WorkItem{File: "/", Target: target1})
		require.ErrorIs(t, err, types.ErrInvalidWorkItem)
	})
}

func TestOrdered_InitializeQueuedWork(t *testing.T) {
	q := queue.NewMemory()
	q.Seed(map[string]string{
		workkey.Encode(wal1): wal1.File,
		"not-a-key":          "/wals/legacy",
	})

	a := NewOrdered(q, coordination.NewMemory(), testConfig)
	require.NoError(t, a.InitializeQueuedWork(t.Context()))

	require.Equal(t, []string{"not-a-key", "wal1|cluster1|table1|1"}, a.QueuedWork())
	require.Equal(t, []string{"wal1|cluster1|table1|1"}, a.Outstanding(target1))

	queued, err := a.QueueWork(t.Context(), wal2)
	require.NoError(t, err)
	require.False(t, queued, "rebuilt index blocks target1")

	// undecodable keys are forgotten like any other once their marker is gone
	finished := a.CleanupFinishedWork(t.Context())
	require.ElementsMatch(t, []string{"not-a-key", "wal1|cluster1|table1|1"}, finished)
	require.Empty(t, a.Outstanding(target1))
}

func TestOrdered_InitializeWithSeveralKeysPerTarget(t *testing.T) {
	q := queue.NewMemory()
	q.Seed(map[string]string{
		workkey.Encode(wal1): wal1.File,
		workkey.Encode(wal2): wal2.File,
	})
	coord := coordination.NewMemory()
	coord.Put(testConfig.MarkerPath(workkey.Encode(wal2)), nil)

	a := NewOrdered(q, coord, testConfig)
	require.NoError(t, a.InitializeQueuedWork(t.Context()))
	require.Len(t, a.Outstanding(target1), 2)

	// wal1 finishes but wal2 still blocks the target
	require.Equal(t, []string{"wal1|cluster1|table1|1"}, a.CleanupFinishedWork(t.Context()))
	require.Equal(t, []string{"wal2|cluster1|table1|1"}, a.Outstanding(target1))

	queued, err := a.QueueWork(t.Context(), types.WorkItem{File: "/wals/wal3", Target: target1})
	require.NoError(t, err)
	require.False(t, queued)
}
