package queue

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/arloliu/replwork/types"
)

// lease is a claim on one queue entry held in the TTL lock bucket.
//
// The lock key expires with the bucket TTL unless renewed, so a crashed
// worker's claims are released automatically.
type lease struct {
	kv       jetstream.KeyValue
	key      string
	owner    []byte
	revision atomic.Uint64
	logger   types.Logger

	stopCh chan struct{}
	doneCh chan struct{}
}

// acquireLease atomically claims key. It returns jetstream.ErrKeyExists
// (wrapped) when another worker holds the claim.
func acquireLease(ctx context.Context, kv jetstream.KeyValue, key, owner string, logger types.Logger) (*lease, error) {
	rev, err := kv.Create(ctx, key, []byte(owner))
	if err != nil {
		return nil, fmt.Errorf("failed to claim %s: %w", key, err)
	}

	l := &lease{
		kv:     kv,
		key:    key,
		owner:  []byte(owner),
		logger: logger,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
	l.revision.Store(rev)

	return l, nil
}

// keepAlive renews the claim every ttl/3 until release is called.
func (l *lease) keepAlive(ctx context.Context, ttl time.Duration) {
	go func() {
		defer close(l.doneCh)

		ticker := time.NewTicker(ttl / 3)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-l.stopCh:
				return
			case <-ticker.C:
				rev, err := l.kv.Update(ctx, l.key, l.owner, l.revision.Load())
				if err != nil {
					l.logger.Warn("failed to renew work claim", "key", l.key, "error", err)
					continue
				}
				l.revision.Store(rev)
			}
		}
	}()
}

// release stops renewal and deletes the claim if it is still ours.
func (l *lease) release() {
	close(l.stopCh)
	<-l.doneCh

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := l.kv.Delete(ctx, l.key, jetstream.LastRevision(l.revision.Load())); err != nil {
		l.logger.Debug("failed to release work claim", "key", l.key, "error", err)
	}
}
