package replwork

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/replwork/coordination"
	"github.com/arloliu/replwork/internal/kvutil"
	"github.com/arloliu/replwork/queue"
	"github.com/arloliu/replwork/source"
	rwtest "github.com/arloliu/replwork/testing"
	"github.com/arloliu/replwork/types"
)

func TestScheduler_NATS(t *testing.T) {
	_, nc := rwtest.StartEmbeddedNATS(t)

	t.Run("queue entries survive a restart", func(t *testing.T) {
		cfg := TestConfig()
		cfg.InstanceID = "restart"

		first, err := NewScheduler(&cfg, nc, source.NewStatic([]WorkItem{wal1, wal2}))
		require.NoError(t, err)
		require.NoError(t, first.Start(t.Context()))
		require.Eventually(t, func() bool {
			return len(first.QueuedWork()) == 2
		}, 5*time.Second, 20*time.Millisecond)
		require.NoError(t, first.Stop(t.Context()))

		cfg2 := TestConfig()
		cfg2.InstanceID = "restart"
		cfg2.WorkProcessorDelay = time.Hour

		second, err := NewScheduler(&cfg2, nc, source.NewStatic(nil))
		require.NoError(t, err)
		require.NoError(t, second.Start(t.Context()))
		defer func() { _ = second.Stop(context.Background()) }()

		require.Equal(t, []string{wal1Key, wal2Key}, second.QueuedWork())
	})

	t.Run("markers live at the configured path", func(t *testing.T) {
		cfg := TestConfig()
		cfg.InstanceID = "markers"

		s, err := NewScheduler(&cfg, nc, source.NewStatic([]WorkItem{wal1}))
		require.NoError(t, err)
		require.NoError(t, s.Start(t.Context()))
		defer func() { _ = s.Stop(context.Background()) }()
		require.NoError(t, s.RunOnce(t.Context()))

		js, err := jetstream.New(nc)
		require.NoError(t, err)
		kv, err := js.KeyValue(t.Context(), cfg.KVBuckets.QueueBucket)
		require.NoError(t, err)

		data, err := coordination.NewKV(kv).Get(t.Context(), "/replwork/markers/replication/workqueue/"+wal1Key)
		require.NoError(t, err)
		require.Equal(t, wal1.File, string(data))
	})

	t.Run("undecodable entry does not block start", func(t *testing.T) {
		cfg := TestConfig()
		cfg.InstanceID = "foreign"
		cfg.WorkProcessorDelay = time.Hour

		js, err := jetstream.New(nc)
		require.NoError(t, err)
		kv, err := js.CreateOrUpdateKeyValue(t.Context(), jetstream.KeyValueConfig{Bucket: cfg.KVBuckets.QueueBucket, History: 1})
		require.NoError(t, err)

		require.NoError(t, queue.NewKV(kv, cfg.NamespacePath()).AddWork(t.Context(), wal1Key, wal1.File))
		_, err = kv.Put(t.Context(), kvutil.PathToKey(cfg.NamespacePath())+".=a", []byte("manual"))
		require.NoError(t, err)

		s, err := NewScheduler(&cfg, nc, source.NewStatic(nil), WithLogger(rwtest.NewTestLogger(t)))
		require.NoError(t, err)
		require.NoError(t, s.Start(t.Context()))
		defer func() { _ = s.Stop(context.Background()) }()

		require.Equal(t, []string{wal1Key}, s.QueuedWork())
	})

	t.Run("worker pool completes queued work", func(t *testing.T) {
		cfg := TestConfig()
		cfg.InstanceID = "roundtrip"
		cfg.WorkProcessorPeriod = 50 * time.Millisecond

		src := source.NewStatic([]WorkItem{wal1, wal2})
		s, err := NewScheduler(&cfg, nc, src, WithLogger(rwtest.NewTestLogger(t)))
		require.NoError(t, err)
		require.NoError(t, s.Start(t.Context()))
		t.Cleanup(func() { _ = s.Stop(context.Background()) })

		js, err := jetstream.New(nc)
		require.NoError(t, err)
		queueKV, err := js.KeyValue(t.Context(), cfg.KVBuckets.QueueBucket)
		require.NoError(t, err)
		lockKV := rwtest.CreateLockKV(t, nc, cfg.KVBuckets.LockBucket, cfg.KVBuckets.LockTTL)

		var mu sync.Mutex
		replicated := make(map[string]int)
		proc := types.ProcessorFunc(func(_ context.Context, key string, payload string) error {
			mu.Lock()
			defer mu.Unlock()

			replicated[key]++

			// the replication status no longer lists the file once it is shipped
			var remaining []WorkItem
			items, _ := src.ListWork(context.Background())
			for _, it := range items {
				if it.File != payload {
					remaining = append(remaining, it)
				}
			}
			src.Update(remaining)

			return nil
		})

		w, err := queue.NewWorker(queueKV, lockKV, cfg.NamespacePath(), proc, queue.WorkerConfig{
			Concurrency:    cfg.Worker.Concurrency,
			RescanInterval: cfg.Worker.RescanInterval,
			LockTTL:        cfg.KVBuckets.LockTTL,
		})
		require.NoError(t, err)
		require.NoError(t, w.Start(t.Context()))
		t.Cleanup(func() { _ = w.Stop(context.Background()) })

		require.Eventually(t, func() bool {
			mu.Lock()
			defer mu.Unlock()

			return replicated[wal1Key] == 1 && replicated[wal2Key] == 1
		}, 5*time.Second, 20*time.Millisecond)

		require.Eventually(t, func() bool {
			return len(s.QueuedWork()) == 0
		}, 5*time.Second, 20*time.Millisecond)

		mu.Lock()
		require.Equal(t, 1, replicated[wal1Key])
		require.Equal(t, 1, replicated[wal2Key])
		mu.Unlock()
	})

	t.Run("start fails when the queue bucket cannot be opened", func(t *testing.T) {
		_, closed := rwtest.StartEmbeddedNATS(t)
		closed.Close()

		cfg := TestConfig()
		cfg.StartupTimeout = time.Second

		s, err := NewScheduler(&cfg, closed, source.NewStatic(nil))
		require.NoError(t, err)
		require.Error(t, s.Start(t.Context()))
		require.False(t, s.IsRunning())
	})
}
