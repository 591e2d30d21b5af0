package replwork

// Option configures a Scheduler with optional dependencies.
type Option func(*schedulerOptions)

// schedulerOptions holds optional Scheduler configuration.
type schedulerOptions struct {
	hooks    *Hooks
	metrics  MetricsCollector
	logger   Logger
	queue    WorkQueue
	coord    CoordinationClient
	assigner WorkAssigner
}

// WithHooks sets scheduler event hooks.
//
// Parameters:
//   - hooks: Hooks structure with callback functions; nil callbacks are ignored
//
// Returns:
//   - Option: Functional option for NewScheduler
//
// Example:
//
//	hooks := &replwork.Hooks{
//	    OnWorkQueued: func(ctx context.Context, key string, item replwork.WorkItem) error {
//	        return audit.Queued(key)
//	    },
//	}
//	sched, err := replwork.NewScheduler(&cfg, nc, src, replwork.WithHooks(hooks))
func WithHooks(hooks *Hooks) Option {
	return func(o *schedulerOptions) {
		o.hooks = hooks
	}
}

// WithMetrics sets a metrics collector.
//
// Parameters:
//   - metrics: MetricsCollector implementation
//
// Returns:
//   - Option: Functional option for NewScheduler
//
// Example:
//
//	metrics := myPrometheusCollector
//	sched, err := replwork.NewScheduler(&cfg, nc, src, replwork.WithMetrics(metrics))
func WithMetrics(metrics MetricsCollector) Option {
	return func(o *schedulerOptions) {
		o.metrics = metrics
	}
}

// WithLogger sets a logger.
//
// Parameters:
//   - logger: Logger implementation (compatible with zap.SugaredLogger)
//
// Returns:
//   - Option: Functional option for NewScheduler
func WithLogger(logger Logger) Option {
	return func(o *schedulerOptions) {
		o.logger = logger
	}
}

// WithWorkQueue replaces the NATS KV work queue.
//
// Together with WithCoordinationClient this lets a Scheduler run without a
// NATS connection, e.g. against queue.NewMemory() in tests.
func WithWorkQueue(q WorkQueue) Option {
	return func(o *schedulerOptions) {
		o.queue = q
	}
}

// WithCoordinationClient replaces the NATS KV coordination client.
func WithCoordinationClient(c CoordinationClient) Option {
	return func(o *schedulerOptions) {
		o.coord = c
	}
}

// WithAssigner sets a custom work assigner.
//
// The assigner is used as-is; Config.Policy, WithWorkQueue and
// WithCoordinationClient are then ignored.
func WithAssigner(a WorkAssigner) Option {
	return func(o *schedulerOptions) {
		o.assigner = a
	}
}
