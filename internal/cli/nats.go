package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/arloliu/replwork"
	"github.com/arloliu/replwork/internal/kvutil"
)

const bucketRetries = 5

// buckets holds the KV buckets shared by the scheduler and the workers.
type buckets struct {
	queue jetstream.KeyValue
	locks jetstream.KeyValue
}

// openQueueBucket creates or opens the queue bucket.
func openQueueBucket(ctx context.Context, js jetstream.JetStream, cfg *replwork.Config) (jetstream.KeyValue, error) {
	kv, err := kvutil.EnsureKVBucketWithRetry(ctx, js, jetstream.KeyValueConfig{
		Bucket:      cfg.KVBuckets.QueueBucket,
		Description: "replwork work queue and completion markers",
		History:     1,
	}, bucketRetries)
	if err != nil {
		return nil, fmt.Errorf("failed to open work queue bucket %s: %w", cfg.KVBuckets.QueueBucket, err)
	}

	return kv, nil
}

// openBuckets creates or opens the queue bucket and the claim lock bucket.
func openBuckets(ctx context.Context, nc *nats.Conn, cfg *replwork.Config) (*buckets, error) {
	js, err := jetstream.New(nc)
	if err != nil {
		return nil, fmt.Errorf("failed to create jetstream context: %w", err)
	}

	queueKV, err := openQueueBucket(ctx, js, cfg)
	if err != nil {
		return nil, err
	}

	lockKV, err := kvutil.EnsureKVBucketWithRetry(ctx, js, jetstream.KeyValueConfig{
		Bucket:      cfg.KVBuckets.LockBucket,
		Description: "replwork worker claim leases",
		History:     1,
		TTL:         cfg.KVBuckets.LockTTL,
	}, bucketRetries)
	if err != nil {
		return nil, fmt.Errorf("failed to open lock bucket %s: %w", cfg.KVBuckets.LockBucket, err)
	}

	return &buckets{queue: queueKV, locks: lockKV}, nil
}

// startEmbeddedNATS runs an in-process NATS server with JetStream.
//
// An empty storeDir keeps JetStream data in a temporary directory chosen by
// the server, so queue entries do not survive a restart.
func startEmbeddedNATS(host string, port int, storeDir string) (*server.Server, error) {
	ns, err := server.NewServer(&server.Options{
		Host:      host,
		Port:      port,
		JetStream: true,
		StoreDir:  storeDir,
		NoLog:     true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create embedded NATS server: %w", err)
	}

	go ns.Start()

	if !ns.ReadyForConnections(10 * time.Second) {
		ns.Shutdown()
		return nil, errors.New("embedded NATS server not ready")
	}

	return ns, nil
}
