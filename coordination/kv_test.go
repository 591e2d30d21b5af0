package coordination

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/replwork/internal/kvutil"
	rwtest "github.com/arloliu/replwork/testing"
	"github.com/arloliu/replwork/types"
)

func TestKV_Get(t *testing.T) {
	_, nc := rwtest.StartEmbeddedNATS(t)
	bucket := rwtest.CreateJetStreamKV(t, nc, "test-coordination")
	coord := NewKV(bucket)
	ctx := t.Context()

	path := "/replwork/instance-1/replication/workqueue/wal1|cluster1|table1|1"

	t.Run("absent node", func(t *testing.T) {
		_, err := coord.Get(ctx, path)
		require.ErrorIs(t, err, types.ErrNodeNotFound)
	})

	t.Run("present node", func(t *testing.T) {
		_, err := bucket.Put(ctx, kvutil.PathToKey(path), []byte("/wals/wal1"))
		require.NoError(t, err)

		data, err := coord.Get(ctx, path)
		require.NoError(t, err)
		require.Equal(t, []byte("/wals/wal1"), data)
	})

	t.Run("deleted node reads as absent", func(t *testing.T) {
		require.NoError(t, bucket.Delete(ctx, kvutil.PathToKey(path)))

		_, err := coord.Get(ctx, path)
		require.ErrorIs(t, err, types.ErrNodeNotFound)
	})

	t.Run("store failure is not absence", func(t *testing.T) {
		nc.Close()

		_, err := coord.Get(ctx, path)
		require.Error(t, err)
		require.NotErrorIs(t, err, types.ErrNodeNotFound)
	})
}
