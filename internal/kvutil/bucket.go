// Package kvutil provides utilities for working with NATS JetStream KeyValue stores.
package kvutil

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/arloliu/replwork/types"
)

// EnsureKVBucketWithRetry creates or opens a KV bucket with retry logic.
//
// Several schedulers and workers may race to create the same bucket on a fresh
// cluster. Creation that loses the race falls back to opening the existing
// bucket; transient failures are retried with exponential backoff.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - js: JetStream context
//   - config: KV bucket configuration
//   - maxRetries: Maximum number of attempts (default: 3)
//
// Returns:
//   - jetstream.KeyValue: The KV bucket instance
//   - error: Last error after all attempts, or the context error
//
// Example:
//
//	kv, err := kvutil.EnsureKVBucketWithRetry(ctx, js, jetstream.KeyValueConfig{
//	    Bucket:  "replwork-workqueue",
//	    History: 1,
//	}, 5)
func EnsureKVBucketWithRetry(
	ctx context.Context,
	js jetstream.JetStream,
	config jetstream.KeyValueConfig,
	maxRetries int,
) (jetstream.KeyValue, error) {
	if maxRetries <= 0 {
		maxRetries = 3
	}

	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		kv, err := js.CreateKeyValue(ctx, config)
		if err == nil {
			return kv, nil
		}

		if errors.Is(err, jetstream.ErrBucketExists) {
			kv, err := js.KeyValue(ctx, config.Bucket)
			if err == nil {
				return kv, nil
			}
			lastErr = fmt.Errorf("bucket exists but failed to open: %w", err)
		} else {
			lastErr = err
		}

		if ctx.Err() != nil {
			return nil, fmt.Errorf("context cancelled during KV bucket creation: %w", ctx.Err())
		}

		// 10ms, 20ms, 40ms...
		if attempt < maxRetries-1 {
			backoff := time.Duration(1<<uint(attempt)) * 10 * time.Millisecond //nolint:gosec // attempt is bounded by maxRetries
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}
	}

	return nil, fmt.Errorf("failed to create/open KV bucket %s after %d attempts: %w",
		config.Bucket, maxRetries, lastErr)
}

// ListKeysWithPrefix returns every key stored under the dot-separated prefix.
//
// An empty bucket or prefix range returns an empty slice and a nil error.
//
// Parameters:
//   - ctx: Context for cancellation
//   - kv: Bucket to list
//   - prefix: Encoded key prefix without the trailing dot
//
// Returns:
//   - []string: Full KV keys under prefix
//   - error: Listing error
func ListKeysWithPrefix(ctx context.Context, kv jetstream.KeyValue, prefix string) ([]string, error) {
	lister, err := kv.ListKeysFiltered(ctx, prefix+".>")
	if err != nil {
		if types.IsNoKeysFoundError(err) {
			return []string{}, nil
		}

		return nil, fmt.Errorf("failed to list keys under %s: %w", prefix, err)
	}
	defer func() { _ = lister.Stop() }()

	keys := []string{}
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case key, ok := <-lister.Keys():
			if !ok {
				return keys, nil
			}
			keys = append(keys, key)
		}
	}
}
