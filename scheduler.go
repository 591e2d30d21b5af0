package replwork

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/arloliu/replwork/coordination"
	"github.com/arloliu/replwork/internal/assigner"
	"github.com/arloliu/replwork/internal/hooks"
	"github.com/arloliu/replwork/internal/kvutil"
	"github.com/arloliu/replwork/internal/logging"
	"github.com/arloliu/replwork/internal/metrics"
	"github.com/arloliu/replwork/internal/natsutil"
	"github.com/arloliu/replwork/queue"
	"github.com/arloliu/replwork/workkey"
)

// Scheduler periodically turns eligible work into queue entries and forgets
// entries whose work has finished.
//
// Each tick lists the WorkSource, offers every item to the WorkAssigner and
// then runs a cleanup pass. Ticks run on a single goroutine with fixed-delay
// semantics: the next tick starts WorkProcessorPeriod after the previous one
// ended, so ticks never overlap.
//
// Lifecycle:
//   - Create with NewScheduler()
//   - Call Start() to open the queue, rebuild the tracked set and begin ticking
//   - Call Stop() for graceful shutdown
type Scheduler struct {
	cfg    Config
	conn   *nats.Conn
	source WorkSource

	// Optional dependencies
	hooks    Hooks
	metrics  MetricsCollector
	logger   Logger
	queue    WorkQueue
	coord    CoordinationClient
	assigner WorkAssigner

	// Lifecycle management
	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	doneCh  chan struct{}

	// serializes ticks from the loop and RunOnce
	tickMu sync.Mutex
}

// NewScheduler creates a new Scheduler instance with the provided configuration.
//
// Missing configuration values are filled with defaults before validation.
// A NATS connection is required unless an assigner, or both a work queue and
// a coordination client, are injected through options.
//
// Parameters:
//   - cfg: Scheduler configuration
//   - conn: NATS connection backing the queue and coordination buckets
//   - src: Work source listing files eligible for replication
//   - opts: Optional configuration (hooks, metrics, logger, queue, coordination client, assigner)
//
// Returns:
//   - *Scheduler: Initialized scheduler instance
//   - error: ErrInvalidConfig, ErrWorkSourceRequired or ErrNATSConnectionRequired
//
// Example:
//
//	cfg := replwork.DefaultConfig()
//	cfg.InstanceID = "c8f4e1d2"
//	sched, err := replwork.NewScheduler(&cfg, nc, src, replwork.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	if err := sched.Start(ctx); err != nil {
//	    return err
//	}
//	defer sched.Stop(context.Background())
func NewScheduler(cfg *Config, conn *nats.Conn, src WorkSource, opts ...Option) (*Scheduler, error) {
	if cfg == nil {
		return nil, ErrInvalidConfig
	}
	if src == nil {
		return nil, ErrWorkSourceRequired
	}

	options := &schedulerOptions{}
	for _, opt := range opts {
		opt(options)
	}

	injected := options.assigner != nil || (options.queue != nil && options.coord != nil)
	if conn == nil && !injected {
		return nil, ErrNATSConnectionRequired
	}

	SetDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	metricsCollector := options.metrics
	if metricsCollector == nil {
		metricsCollector = metrics.NewNop()
	}

	loggerInstance := options.logger
	if loggerInstance == nil {
		loggerInstance = logging.NewNop()
	}

	cfg.ValidateWithWarnings(loggerInstance)

	return &Scheduler{
		cfg:      *cfg,
		conn:     conn,
		source:   src,
		hooks:    hooks.WithDefaults(options.hooks),
		metrics:  metricsCollector,
		logger:   loggerInstance,
		queue:    options.queue,
		coord:    options.coord,
		assigner: options.assigner,
	}, nil
}

// Start opens the work queue, rebuilds the tracked set from it and starts the
// periodic loop.
//
// Any failure here is fatal: the loop is not started and Start may be called
// again once the cause is fixed.
//
// Parameters:
//   - ctx: Context bounding startup (further limited by StartupTimeout)
//
// Returns:
//   - error: ErrAlreadyStarted, bucket creation error or queue read error
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return ErrAlreadyStarted
	}

	startupCtx, cancel := context.WithTimeout(ctx, s.cfg.StartupTimeout)
	defer cancel()

	if err := s.ensureAssigner(startupCtx); err != nil {
		return err
	}

	if err := s.assigner.InitializeQueuedWork(startupCtx); err != nil {
		return fmt.Errorf("failed to initialize queued work: %w", err)
	}

	runCtx, runCancel := context.WithCancel(context.Background())
	doneCh := make(chan struct{})

	s.started = true
	s.cancel = runCancel
	s.doneCh = doneCh

	go s.run(runCtx, doneCh)

	s.logger.Info("scheduler started",
		"instance_id", s.cfg.InstanceID,
		"namespace", s.cfg.NamespacePath(),
		"policy", s.assigner.Policy(),
		"tracked", len(s.assigner.QueuedWork()),
		"delay", s.cfg.WorkProcessorDelay,
		"period", s.cfg.WorkProcessorPeriod,
	)

	return nil
}

// Stop stops the periodic loop.
//
// An in-flight tick is cancelled and Stop waits for it to return. The
// tracked set is never left half-updated: each key is removed under the
// assigner's lock, and the queue remains the durable record.
//
// Parameters:
//   - ctx: Context for shutdown timeout (ShutdownTimeout applies when ctx has no deadline)
//
// Returns:
//   - error: ErrNotStarted if not running, or ctx.Err() on timeout
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()

		return ErrNotStarted
	}

	s.started = false
	s.cancel()
	doneCh := s.doneCh
	s.mu.Unlock()

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.ShutdownTimeout)
		defer cancel()
	}

	select {
	case <-doneCh:
		s.logger.Info("scheduler stopped", "instance_id", s.cfg.InstanceID)
		return nil
	case <-ctx.Done():
		s.logger.Error("shutdown timeout exceeded, tick still running")
		return ctx.Err()
	}
}

// RunOnce runs a single tick synchronously.
//
// It waits for any tick in progress. Useful for CLI one-shot runs and tests.
//
// Returns:
//   - error: ErrNotStarted before a successful Start, or the joined errors of the tick
func (s *Scheduler) RunOnce(ctx context.Context) error {
	s.mu.Lock()
	a := s.assigner
	started := s.started
	s.mu.Unlock()

	if !started || a == nil {
		return ErrNotStarted
	}

	return s.tick(ctx)
}

// IsRunning reports whether the periodic loop is running.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.started
}

// QueuedWork returns a sorted snapshot of the tracked queue keys.
//
// Returns nil before the first successful Start.
func (s *Scheduler) QueuedWork() []string {
	s.mu.Lock()
	a := s.assigner
	s.mu.Unlock()

	if a == nil {
		return nil
	}

	return a.QueuedWork()
}

// ensureAssigner builds the queue, coordination client and assigner that
// were not injected. Must hold s.mu.
func (s *Scheduler) ensureAssigner(ctx context.Context) error {
	if s.assigner != nil {
		return nil
	}

	if s.queue == nil || s.coord == nil {
		kv, err := s.openQueueBucket(ctx)
		if err != nil {
			return err
		}

		if s.queue == nil {
			s.queue = queue.NewKV(kv, s.cfg.NamespacePath(), queue.WithKVLogger(s.logger))
		}
		if s.coord == nil {
			s.coord = coordination.NewKV(kv)
		}
	}

	a, err := assigner.New(s.cfg.Policy, s.queue, s.coord, assigner.Config{
		CoordinationRoot:   s.cfg.CoordinationRoot,
		InstanceID:         s.cfg.InstanceID,
		WorkQueueNamespace: s.cfg.WorkQueueNamespace,
	}, assigner.WithLogger(s.logger), assigner.WithMetrics(s.metrics))
	if err != nil {
		return err
	}
	s.assigner = a

	return nil
}

// openQueueBucket creates or opens the queue bucket.
//
// Uses retry logic to handle concurrent creation by several schedulers.
func (s *Scheduler) openQueueBucket(ctx context.Context) (jetstream.KeyValue, error) {
	js, err := jetstream.New(s.conn)
	if err != nil {
		return nil, fmt.Errorf("failed to create jetstream context: %w", err)
	}

	const maxRetries = 5
	kv, err := kvutil.EnsureKVBucketWithRetry(ctx, js, jetstream.KeyValueConfig{
		Bucket:      s.cfg.KVBuckets.QueueBucket,
		Description: "replwork work queue and completion markers",
		History:     1,
	}, maxRetries)
	if err != nil {
		return nil, fmt.Errorf("failed to open work queue bucket %s: %w", s.cfg.KVBuckets.QueueBucket, err)
	}

	return kv, nil
}

// run drives ticks until ctx is cancelled.
func (s *Scheduler) run(ctx context.Context, doneCh chan struct{}) {
	defer close(doneCh)

	timer := time.NewTimer(s.cfg.WorkProcessorDelay)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		if err := s.tick(ctx); err != nil && ctx.Err() == nil {
			s.logger.Debug("tick finished with errors", "error", err)
		}

		timer.Reset(s.cfg.WorkProcessorPeriod)
	}
}

// tick runs one queue phase followed by one cleanup pass.
func (s *Scheduler) tick(ctx context.Context) error {
	s.tickMu.Lock()
	defer s.tickMu.Unlock()

	start := time.Now()
	errs := s.queuePhase(ctx)

	finished := s.assigner.CleanupFinishedWork(ctx)
	if len(finished) > 0 {
		if err := s.hooks.OnWorkFinished(ctx, finished); err != nil {
			s.logger.Warn("OnWorkFinished hook failed", "error", err)
		}
	}

	s.metrics.RecordTick(time.Since(start).Seconds(), len(errs) == 0)

	return errors.Join(errs...)
}

// queuePhase offers every eligible item to the assigner. A failed item does
// not stop the remaining ones.
func (s *Scheduler) queuePhase(ctx context.Context) []error {
	listCtx, cancel := context.WithTimeout(ctx, s.cfg.OperationTimeout)
	items, err := s.source.ListWork(listCtx)
	cancel()

	if err != nil {
		err = fmt.Errorf("failed to list work: %w", err)
		s.reportError(ctx, "failed to list eligible work, skipping queue phase", err)

		return []error{err}
	}

	var errs []error
	queued := 0

	for _, item := range items {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}

		opCtx, cancel := context.WithTimeout(ctx, s.cfg.OperationTimeout)
		ok, err := s.assigner.QueueWork(opCtx, item)
		cancel()

		if err != nil {
			s.reportError(ctx, "failed to queue work", err, "file", item.File, "target", item.Target.String())
			errs = append(errs, err)

			continue
		}
		if !ok {
			continue
		}

		queued++
		key := workkey.Encode(item)
		if err := s.hooks.OnWorkQueued(ctx, key, item); err != nil {
			s.logger.Warn("OnWorkQueued hook failed", "key", key, "error", err)
		}
	}

	if queued > 0 {
		s.logger.Debug("queued new work", "count", queued, "offered", len(items))
	}

	return errs
}

// reportError logs err and passes it to the OnError hook.
func (s *Scheduler) reportError(ctx context.Context, msg string, err error, keysAndValues ...any) {
	kv := append([]any{"error", err, "connectivity", natsutil.IsConnectivityError(err)}, keysAndValues...)
	s.logger.Error(msg, kv...)

	if hookErr := s.hooks.OnError(ctx, err); hookErr != nil {
		s.logger.Warn("OnError hook failed", "error", hookErr)
	}
}
