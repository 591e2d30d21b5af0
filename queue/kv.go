package queue

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/arloliu/replwork/internal/kvutil"
	"github.com/arloliu/replwork/internal/logging"
	"github.com/arloliu/replwork/internal/natsutil"
	"github.com/arloliu/replwork/types"
)

// ErrEntryNotFound is returned by Get when no entry exists for a key.
var ErrEntryNotFound = errors.New("queue entry not found")

// KV is a WorkQueue backed by a NATS JetStream KeyValue bucket.
//
// All entries live under one namespace path; the entry for key k is stored at
// kvutil.PathToKey(namespace + "/" + k) with the payload as its value.
type KV struct {
	kv        jetstream.KeyValue
	namespace string
	prefix    string
	logger    types.Logger
}

var _ types.WorkQueue = (*KV)(nil)

// KVOption configures a KV queue.
type KVOption func(*KV)

// WithKVLogger sets the logger used to report entries that cannot be read.
func WithKVLogger(logger types.Logger) KVOption {
	return func(q *KV) {
		q.logger = logger
	}
}

// NewKV creates a queue over bucket rooted at namespace.
//
// Parameters:
//   - kv: Bucket holding queue entries (no TTL)
//   - namespace: Absolute namespace path, usually workkey.NamespacePath(...)
//   - opts: Optional configuration
//
// Example:
//
//	ns := workkey.NamespacePath("/replwork", instanceID, "/replication/workqueue")
//	q := queue.NewKV(bucket, ns)
//	err := q.AddWork(ctx, "wal1|peer|remote|1", "/wals/wal1")
func NewKV(kv jetstream.KeyValue, namespace string, opts ...KVOption) *KV {
	q := &KV{
		kv:        kv,
		namespace: strings.TrimSuffix(namespace, "/"),
		prefix:    kvutil.PathToKey(namespace),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(q)
	}

	return q
}

// Namespace returns the namespace path entries are stored under.
func (q *KV) Namespace() string {
	return q.namespace
}

// AddWork creates the entry for key. An existing entry is left untouched.
func (q *KV) AddWork(ctx context.Context, key string, payload string) error {
	_, err := q.kv.Create(ctx, q.entryKey(key), []byte(payload))
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyExists) {
			return nil
		}

		return fmt.Errorf("failed to add work %s: %w", key, err)
	}

	return nil
}

// ListQueued returns the keys of all entries directly under the namespace.
//
// Keys written out-of-band that do not decode are logged and skipped.
func (q *KV) ListQueued(ctx context.Context) ([]string, error) {
	kvKeys, err := kvutil.ListKeysWithPrefix(ctx, q.kv, q.prefix)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(kvKeys))
	for _, kvKey := range kvKeys {
		key, ok, err := q.queueKey(kvKey)
		if err != nil {
			q.logger.Warn("skipping undecodable queue entry", "kv_key", kvKey, "error", err)
			continue
		}
		if ok {
			keys = append(keys, key)
		}
	}

	return keys, nil
}

// Get returns the payload stored for key, or ErrEntryNotFound.
func (q *KV) Get(ctx context.Context, key string) (string, error) {
	entry, err := q.kv.Get(ctx, q.entryKey(key))
	if err != nil {
		if natsutil.IsNotFound(err) {
			return "", fmt.Errorf("%w: %s", ErrEntryNotFound, key)
		}

		return "", fmt.Errorf("failed to read work %s: %w", key, err)
	}

	return string(entry.Value()), nil
}

// Remove deletes the entry for key, clearing its completion marker.
func (q *KV) Remove(ctx context.Context, key string) error {
	if err := q.kv.Delete(ctx, q.entryKey(key)); err != nil {
		return fmt.Errorf("failed to remove work %s: %w", key, err)
	}

	return nil
}

func (q *KV) entryKey(key string) string {
	return kvutil.PathToKey(q.namespace + "/" + key)
}

// queueKey extracts the queue key from a KV key under the namespace.
// Keys nested deeper than one level are not entries and report ok=false.
func (q *KV) queueKey(kvKey string) (string, bool, error) {
	rest := strings.TrimPrefix(kvKey, q.prefix+".")
	if rest == kvKey || rest == "" || strings.Contains(rest, ".") {
		return "", false, nil
	}

	key, err := kvutil.LastToken(kvKey)
	if err != nil {
		return "", false, fmt.Errorf("undecodable queue entry %q: %w", kvKey, err)
	}

	return key, true, nil
}
