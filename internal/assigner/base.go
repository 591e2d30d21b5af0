package assigner

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/arloliu/replwork/internal/logging"
	"github.com/arloliu/replwork/internal/metrics"
	"github.com/arloliu/replwork/internal/tracker"
	"github.com/arloliu/replwork/types"
	"github.com/arloliu/replwork/workkey"
)

// Config locates completion markers in the coordination store.
type Config struct {
	// CoordinationRoot is the store root, e.g. "/replwork".
	CoordinationRoot string

	// InstanceID separates deployments sharing one store.
	InstanceID string

	// WorkQueueNamespace is the queue namespace under the instance, e.g. "/replication/workqueue".
	WorkQueueNamespace string
}

// MarkerPath returns the completion marker path for key.
func (c Config) MarkerPath(key string) string {
	return workkey.MarkerPath(c.CoordinationRoot, c.InstanceID, c.WorkQueueNamespace, key)
}

// Option configures an assigner with optional dependencies.
type Option func(*options)

type options struct {
	logger  types.Logger
	metrics types.AssignerMetrics
}

// WithLogger sets the assigner logger.
func WithLogger(logger types.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMetrics sets the assigner metrics collector.
func WithMetrics(m types.AssignerMetrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// New creates the assigner for policy.
//
// Parameters:
//   - policy: types.PolicyUnordered or types.PolicyOrdered
//   - queue: Durable work queue
//   - coord: Coordination store holding completion markers
//   - cfg: Marker location
//   - opts: Optional logger and metrics
//
// Returns:
//   - types.WorkAssigner: Assigner for the policy
//   - error: types.ErrUnknownPolicy for any other policy name
func New(policy string, queue types.WorkQueue, coord types.CoordinationClient, cfg Config, opts ...Option) (types.WorkAssigner, error) {
	switch policy {
	case types.PolicyUnordered, "":
		return NewUnordered(queue, coord, cfg, opts...), nil
	case types.PolicyOrdered:
		return NewOrdered(queue, coord, cfg, opts...), nil
	default:
		return nil, fmt.Errorf("%w: %q", types.ErrUnknownPolicy, policy)
	}
}

// base holds the state and behavior shared by every policy.
//
// mu serializes mutations of the tracked set (and of any policy index kept
// alongside it); readers go through the tracker's own lock.
type base struct {
	policy  string
	queue   types.WorkQueue
	coord   types.CoordinationClient
	cfg     Config
	logger  types.Logger
	metrics types.AssignerMetrics

	mu      sync.Mutex
	tracked *tracker.Tracker
}

func newBase(policy string, queue types.WorkQueue, coord types.CoordinationClient, cfg Config, opts []Option) *base {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = logging.NewNop()
	}
	if o.metrics == nil {
		o.metrics = metrics.NewNop()
	}

	return &base{
		policy:  policy,
		queue:   queue,
		coord:   coord,
		cfg:     cfg,
		logger:  o.logger,
		metrics: o.metrics,
		tracked: tracker.New(),
	}
}

// Policy returns the policy name.
func (b *base) Policy() string {
	return b.policy
}

// QueuedWork returns a sorted snapshot of the tracked keys.
func (b *base) QueuedWork() []string {
	return b.tracked.Snapshot()
}

// prepare validates item and returns its queue key.
func (b *base) prepare(item types.WorkItem) (string, error) {
	if err := item.Validate(); err != nil {
		b.logger.Error("refusing to queue invalid work item",
			"file", item.File,
			"target", item.Target.String(),
			"error", err,
		)

		return "", err
	}

	return workkey.Encode(item), nil
}

// enqueue writes key to the durable queue and tracks it. Must hold b.mu.
func (b *base) enqueue(ctx context.Context, key string, item types.WorkItem) error {
	if err := b.queue.AddWork(ctx, key, item.File); err != nil {
		b.metrics.RecordQueueError(b.policy)
		b.logger.Warn("failed to queue work", "key", key, "file", item.File, "error", err)

		return fmt.Errorf("%w %s: %w", types.ErrQueueWork, key, err)
	}

	b.tracked.Add(key)
	b.metrics.RecordWorkQueued(b.policy)
	b.metrics.RecordTrackedWork(b.tracked.Len())
	b.logger.Debug("queued work", "key", key, "file", item.File, "policy", b.policy)

	return nil
}

// load reads the durable queue and replaces the tracked set. Must hold b.mu.
func (b *base) load(ctx context.Context) ([]string, error) {
	keys, err := b.queue.ListQueued(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list queued work: %w", err)
	}

	b.tracked.Replace(keys)
	b.metrics.RecordTrackedWork(b.tracked.Len())
	b.logger.Info("initialized queued work", "tracked", b.tracked.Len(), "policy", b.policy)

	return keys, nil
}

// cleanup forgets every tracked key whose completion marker is absent.
//
// Keys whose marker is present, or whose lookup fails, stay tracked. onRemove
// runs under b.mu for each forgotten key. When ctx is done the pass stops and
// the unchecked keys stay tracked.
func (b *base) cleanup(ctx context.Context, onRemove func(key string)) []string {
	var finished []string

	for _, key := range b.tracked.Snapshot() {
		if ctx.Err() != nil {
			b.logger.Debug("cleanup interrupted", "checked", len(finished), "error", ctx.Err())
			break
		}

		path := b.cfg.MarkerPath(key)
		_, err := b.coord.Get(ctx, path)
		if err == nil {
			continue
		}

		if !errors.Is(err, types.ErrNodeNotFound) {
			b.metrics.RecordCoordinationError()
			b.logger.Warn("failed to read completion marker, keeping work tracked",
				"key", key,
				"path", path,
				"error", err,
			)

			continue
		}

		b.mu.Lock()
		if b.tracked.Remove(key) {
			if onRemove != nil {
				onRemove(key)
			}
			finished = append(finished, key)
		}
		b.mu.Unlock()
	}

	if len(finished) > 0 {
		b.metrics.RecordWorkFinished(len(finished))
		b.logger.Debug("cleaned up finished work", "count", len(finished), "policy", b.policy)
	}
	b.metrics.RecordTrackedWork(b.tracked.Len())

	return finished
}
