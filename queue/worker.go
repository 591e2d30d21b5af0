package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/puzpuzpuz/xsync/v4"
	"golang.org/x/sync/errgroup"

	"github.com/arloliu/replwork/internal/hash"
	"github.com/arloliu/replwork/internal/logging"
	"github.com/arloliu/replwork/internal/metrics"
	"github.com/arloliu/replwork/types"
)

// ErrProcessorRequired is returned by NewWorker when no processor is given.
var ErrProcessorRequired = errors.New("processor is required")

// WorkerConfig configures a Worker.
type WorkerConfig struct {
	// WorkerID identifies this worker in claim locks. Defaults to a random UUID.
	WorkerID string `yaml:"workerId"`

	// Concurrency is the number of entries processed in parallel.
	Concurrency int `yaml:"concurrency"`

	// RescanInterval is how often the whole namespace is listed to pick up
	// entries whose earlier attempts failed.
	RescanInterval time.Duration `yaml:"rescanInterval"`

	// LockTTL is the claim lease duration; claims are renewed every LockTTL/3.
	LockTTL time.Duration `yaml:"lockTtl"`
}

// SetDefaults fills zero fields with defaults.
func (c *WorkerConfig) SetDefaults() {
	if c.WorkerID == "" {
		c.WorkerID = uuid.NewString()
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 4
	}
	if c.RescanInterval <= 0 {
		c.RescanInterval = 10 * time.Second
	}
	if c.LockTTL <= 0 {
		c.LockTTL = 30 * time.Second
	}
}

// WorkerOption configures a Worker with optional dependencies.
type WorkerOption func(*workerOptions)

type workerOptions struct {
	logger  types.Logger
	metrics types.WorkerMetrics
}

// WithLogger sets the worker logger.
func WithLogger(logger types.Logger) WorkerOption {
	return func(o *workerOptions) {
		o.logger = logger
	}
}

// WithMetrics sets the worker metrics collector.
func WithMetrics(m types.WorkerMetrics) WorkerOption {
	return func(o *workerOptions) {
		o.metrics = m
	}
}

// Worker drains a queue namespace, running a Processor for each entry.
//
// Entries are discovered by watching the namespace and by periodic rescans.
// Each entry is claimed through a lease in the lock bucket so that workers in
// other processes never process the same entry at the same time. A successful
// Process removes the entry, which also clears its completion marker; a failed
// one leaves it for a later rescan.
type Worker struct {
	queue   *KV
	locks   jetstream.KeyValue
	proc    types.Processor
	cfg     WorkerConfig
	logger  types.Logger
	metrics types.WorkerMetrics

	mu      sync.Mutex
	started bool
	run     *workerRun
	cancel  context.CancelFunc
	doneCh  chan struct{}
}

// workerRun is the state owned by one Start. Goroutines of a run that outlive
// a timed out Stop keep using their own run and never touch the next one.
type workerRun struct {
	pending    *xsync.Map[string, struct{}]
	candidates chan string
}

func newWorkerRun(concurrency int) *workerRun {
	return &workerRun{
		pending:    xsync.NewMap[string, struct{}](),
		candidates: make(chan string, concurrency*16),
	}
}

// NewWorker creates a worker pool for the given namespace.
//
// Parameters:
//   - queueKV: Bucket holding queue entries
//   - lockKV: Bucket with a TTL holding claim leases
//   - namespace: Namespace path the entries live under
//   - proc: Processor invoked for each claimed entry
//   - cfg: Worker configuration; zero fields take defaults
//   - opts: Optional logger and metrics
//
// Returns:
//   - *Worker: Worker ready to Start
//   - error: ErrProcessorRequired, or an error for missing buckets
//
// Example:
//
//	w, err := queue.NewWorker(queueKV, lockKV, ns, types.ProcessorFunc(copyWAL),
//	    queue.WorkerConfig{Concurrency: 8}, queue.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	if err := w.Start(ctx); err != nil {
//	    return err
//	}
//	defer w.Stop(ctx)
func NewWorker(
	queueKV jetstream.KeyValue,
	lockKV jetstream.KeyValue,
	namespace string,
	proc types.Processor,
	cfg WorkerConfig,
	opts ...WorkerOption,
) (*Worker, error) {
	if queueKV == nil || lockKV == nil {
		return nil, errors.New("queue and lock buckets are required")
	}
	if proc == nil {
		return nil, ErrProcessorRequired
	}

	cfg.SetDefaults()

	o := &workerOptions{}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = logging.NewNop()
	}
	if o.metrics == nil {
		o.metrics = metrics.NewNop()
	}

	return &Worker{
		queue:   NewKV(queueKV, namespace, WithKVLogger(o.logger)),
		locks:   lockKV,
		proc:    proc,
		cfg:     cfg,
		logger:  o.logger,
		metrics: o.metrics,
		run:     newWorkerRun(cfg.Concurrency),
	}, nil
}

// ID returns the worker ID used in claim locks.
func (w *Worker) ID() string {
	return w.cfg.WorkerID
}

// Pending returns the number of keys waiting for or undergoing processing.
func (w *Worker) Pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.run.pending.Size()
}

// Start begins watching the namespace and processing entries in the background.
//
// The ctx only bounds setting up the watch; the pool keeps running until Stop.
//
// Returns:
//   - error: types.ErrAlreadyStarted if running, or the watch setup error
func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.started {
		return types.ErrAlreadyStarted
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))

	watcher, err := w.queue.kv.Watch(runCtx, w.queue.prefix+".*")
	if err != nil {
		cancel()
		return fmt.Errorf("failed to watch queue namespace: %w", err)
	}

	// keys left pending by a previous run would never be enqueued again
	run := newWorkerRun(w.cfg.Concurrency)

	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error { return w.watchLoop(gctx, run, watcher) })
	g.Go(func() error { return w.rescanLoop(gctx, run) })
	for range w.cfg.Concurrency {
		g.Go(func() error { return w.processLoop(gctx, run) })
	}

	doneCh := make(chan struct{})
	go func() {
		defer close(doneCh)
		if err := g.Wait(); err != nil {
			w.logger.Error("worker pool stopped with error", "worker_id", w.cfg.WorkerID, "error", err)
		}
	}()

	w.started = true
	w.run = run
	w.cancel = cancel
	w.doneCh = doneCh

	w.logger.Info("worker pool started",
		"worker_id", w.cfg.WorkerID,
		"namespace", w.queue.Namespace(),
		"concurrency", w.cfg.Concurrency,
	)

	return nil
}

// Stop cancels in-flight processing and waits for the pool to exit.
//
// Returns:
//   - error: types.ErrNotStarted if not running, or ctx.Err() on timeout
func (w *Worker) Stop(ctx context.Context) error {
	w.mu.Lock()
	if !w.started {
		w.mu.Unlock()
		return types.ErrNotStarted
	}

	w.started = false
	w.cancel()
	doneCh := w.doneCh
	w.mu.Unlock()

	select {
	case <-doneCh:
		w.logger.Info("worker pool stopped", "worker_id", w.cfg.WorkerID)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Worker) watchLoop(ctx context.Context, run *workerRun, watcher jetstream.KeyWatcher) error {
	defer func() { _ = watcher.Stop() }()

	for {
		select {
		case <-ctx.Done():
			return nil
		case entry, ok := <-watcher.Updates():
			if !ok {
				return nil
			}
			// nil marks the end of the initial values
			if entry == nil || entry.Operation() != jetstream.KeyValuePut {
				continue
			}

			key, ok, err := w.queue.queueKey(entry.Key())
			if err != nil {
				w.logger.Warn("ignoring queue entry", "error", err)
				continue
			}
			if ok {
				w.enqueue(ctx, run, key)
			}
		}
	}
}

func (w *Worker) rescanLoop(ctx context.Context, run *workerRun) error {
	ticker := time.NewTicker(w.cfg.RescanInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			keys, err := w.queue.ListQueued(ctx)
			if err != nil {
				if ctx.Err() == nil {
					w.logger.Warn("queue rescan failed", "error", err)
				}

				continue
			}

			for _, key := range hash.Order(w.cfg.WorkerID, keys) {
				w.enqueue(ctx, run, key)
			}
		}
	}
}

func (w *Worker) processLoop(ctx context.Context, run *workerRun) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case key := <-run.candidates:
			w.handle(ctx, key)
			run.pending.Delete(key)
		}
	}
}

// enqueue hands key to the processors unless it is already pending.
func (w *Worker) enqueue(ctx context.Context, run *workerRun, key string) {
	if _, loaded := run.pending.LoadOrStore(key, struct{}{}); loaded {
		return
	}

	select {
	case run.candidates <- key:
	case <-ctx.Done():
		run.pending.Delete(key)
	}
}

// handle claims key, processes it and removes the entry on success.
func (w *Worker) handle(ctx context.Context, key string) {
	l, err := acquireLease(ctx, w.locks, w.queue.entryKey(key), w.cfg.WorkerID, w.logger)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyExists) {
			w.metrics.RecordClaimConflict()
			w.logger.Debug("work claimed by another worker", "key", key)
		} else if ctx.Err() == nil {
			w.logger.Warn("failed to claim work", "key", key, "error", err)
		}

		return
	}
	l.keepAlive(ctx, w.cfg.LockTTL)
	defer l.release()

	payload, err := w.queue.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrEntryNotFound) {
			w.logger.Debug("work already finished", "key", key)
		} else if ctx.Err() == nil {
			w.logger.Warn("failed to read work", "key", key, "error", err)
		}

		return
	}

	start := time.Now()
	procErr := w.proc.Process(ctx, key, payload)
	w.metrics.RecordWorkProcessed(time.Since(start).Seconds(), procErr == nil)

	if procErr != nil {
		w.logger.Warn("work processing failed", "key", key, "file", payload, "error", procErr)
		return
	}

	if err := w.queue.Remove(ctx, key); err != nil {
		w.logger.Error("failed to remove finished work", "key", key, "error", err)
		return
	}

	w.logger.Debug("work finished", "key", key, "file", payload)
}
