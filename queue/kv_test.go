package queue

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/replwork/coordination"
	"github.com/arloliu/replwork/internal/kvutil"
	rwtest "github.com/arloliu/replwork/testing"
	"github.com/arloliu/replwork/types"
	"github.com/arloliu/replwork/workkey"
)

const testNamespace = "/replwork/instance-1/replication/workqueue"

func TestKV_AddWork(t *testing.T) {
	_, nc := rwtest.StartEmbeddedNATS(t)
	bucket := rwtest.CreateJetStreamKV(t, nc, "test-queue")
	q := NewKV(bucket, testNamespace)
	ctx := t.Context()

	key := "wal1|cluster1|table1|1"

	t.Run("creates entry with payload", func(t *testing.T) {
		require.NoError(t, q.AddWork(ctx, key, "/accumulo/wal/tserver+9997/wal1"))

		payload, err := q.Get(ctx, key)
		require.NoError(t, err)
		require.Equal(t, "/accumulo/wal/tserver+9997/wal1", payload)
	})

	t.Run("duplicate add keeps the first entry", func(t *testing.T) {
		require.NoError(t, q.AddWork(ctx, key, "/other"))

		payload, err := q.Get(ctx, key)
		require.NoError(t, err)
		require.Equal(t, "/accumulo/wal/tserver+9997/wal1", payload)

		keys, err := q.ListQueued(ctx)
		require.NoError(t, err)
		require.Equal(t, []string{key}, keys)
	})

	t.Run("entry is the completion marker", func(t *testing.T) {
		coord := coordination.NewKV(bucket)
		marker := workkey.MarkerPath("/replwork", "instance-1", "/replication/workqueue", key)

		payload, err := coord.Get(ctx, marker)
		require.NoError(t, err)
		require.Equal(t, "/accumulo/wal/tserver+9997/wal1", string(payload))

		require.NoError(t, q.Remove(ctx, key))

		_, err = coord.Get(ctx, marker)
		require.ErrorIs(t, err, types.ErrNodeNotFound)

		_, err = q.Get(ctx, key)
		require.ErrorIs(t, err, ErrEntryNotFound)
	})

	t.Run("re-add after removal", func(t *testing.T) {
		require.NoError(t, q.AddWork(ctx, key, "/again"))

		payload, err := q.Get(ctx, key)
		require.NoError(t, err)
		require.Equal(t, "/again", payload)
	})

	t.Run("closed connection fails", func(t *testing.T) {
		nc.Close()
		require.Error(t, q.AddWork(ctx, "wal2|cluster1|table1|1", "/wal2"))
	})
}

func TestKV_ListQueued(t *testing.T) {
	_, nc := rwtest.StartEmbeddedNATS(t)
	bucket := rwtest.CreateJetStreamKV(t, nc, "test-queue-list")
	q := NewKV(bucket, testNamespace)
	ctx := t.Context()

	t.Run("empty queue", func(t *testing.T) {
		keys, err := q.ListQueued(ctx)
		require.NoError(t, err)
		require.Empty(t, keys)
	})

	t.Run("lists only direct entries of the namespace", func(t *testing.T) {
		require.NoError(t, q.AddWork(ctx, "wal1|p|r|1", "/wal1"))
		require.NoError(t, q.AddWork(ctx, "wal2|p|r|1", "/wal2"))

		other := NewKV(bucket, "/replwork/instance-2/replication/workqueue")
		require.NoError(t, other.AddWork(ctx, "wal3|p|r|1", "/wal3"))

		_, err := bucket.Put(ctx, kvutil.PathToKey(testNamespace+"/nested/child"), []byte("x"))
		require.NoError(t, err)

		keys, err := q.ListQueued(ctx)
		require.NoError(t, err)
		require.ElementsMatch(t, []string{"wal1|p|r|1", "wal2|p|r|1"}, keys)
	})

	t.Run("undecodable entry is logged and skipped", func(t *testing.T) {
		// "=a" carries the escape prefix but is not valid base64
		_, err := bucket.Put(ctx, kvutil.PathToKey(testNamespace)+".=a", []byte("x"))
		require.NoError(t, err)

		logger := rwtest.NewRecordingLogger(t)
		logged := NewKV(bucket, testNamespace, WithKVLogger(logger))

		keys, err := logged.ListQueued(ctx)
		require.NoError(t, err)
		require.ElementsMatch(t, []string{"wal1|p|r|1", "wal2|p|r|1"}, keys)

		warnings := logger.Entries("WARN")
		require.Len(t, warnings, 1)
		require.Contains(t, warnings[0].KeysAndValues, kvutil.PathToKey(testNamespace)+".=a")

		// the default queue skips it too
		keys, err = q.ListQueued(ctx)
		require.NoError(t, err)
		require.Len(t, keys, 2)
	})
}
