package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/arloliu/replwork/types"
)

// PrometheusCollector implements types.MetricsCollector backed by Prometheus.
//
// Collectors are created and registered lazily on first use so that an unused
// collector never touches the registry.
type PrometheusCollector struct {
	reg       prometheus.Registerer
	namespace string
	once      sync.Once

	// Assigner metrics
	workQueued         *prometheus.CounterVec
	queueErrors        *prometheus.CounterVec
	workFinished       prometheus.Counter
	coordinationErrors prometheus.Counter
	trackedWork        prometheus.Gauge

	// Scheduler metrics
	ticks        *prometheus.CounterVec
	tickDuration prometheus.Histogram

	// Worker metrics
	processed       *prometheus.CounterVec
	processDuration prometheus.Histogram
	claimConflicts  prometheus.Counter
}

// Compile-time assertion that PrometheusCollector implements MetricsCollector.
var _ types.MetricsCollector = (*PrometheusCollector)(nil)

// NewPrometheus creates a new Prometheus-backed metrics collector.
//
// Parameters:
//   - reg: Prometheus registerer interface (uses prometheus.DefaultRegisterer if nil)
//   - namespace: Prometheus metrics namespace (defaults to "replwork" if empty)
//
// Returns:
//   - *PrometheusCollector: A MetricsCollector implementation using Prometheus
func NewPrometheus(reg prometheus.Registerer, namespace string) *PrometheusCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "replwork"
	}

	return &PrometheusCollector{reg: reg, namespace: namespace}
}

func (p *PrometheusCollector) ensureRegistered() {
	p.once.Do(func() {
		p.workQueued = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "assigner",
			Name:      "work_queued_total",
			Help:      "Total work items appended to the durable queue by policy.",
		}, []string{"policy"})

		p.queueErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "assigner",
			Name:      "queue_errors_total",
			Help:      "Total failed durable queue appends by policy.",
		}, []string{"policy"})

		p.workFinished = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "assigner",
			Name:      "work_finished_total",
			Help:      "Total tracked keys forgotten after their completion marker disappeared.",
		})

		p.coordinationErrors = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "assigner",
			Name:      "coordination_errors_total",
			Help:      "Total completion marker queries that failed.",
		})

		p.trackedWork = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "assigner",
			Name:      "tracked_work",
			Help:      "Current number of keys believed outstanding.",
		})

		p.ticks = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "scheduler",
			Name:      "ticks_total",
			Help:      "Total scheduler ticks by result (success, failure).",
		}, []string{"result"})

		p.tickDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "scheduler",
			Name:      "tick_duration_seconds",
			Help:      "Duration of scheduler ticks in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms .. ~10s
		})

		p.processed = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "worker",
			Name:      "processed_total",
			Help:      "Total processing attempts by result (success, failure).",
		}, []string{"result"})

		p.processDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "worker",
			Name:      "process_duration_seconds",
			Help:      "Duration of processing attempts in seconds.",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 30, 60, 300},
		})

		p.claimConflicts = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "worker",
			Name:      "claim_conflicts_total",
			Help:      "Total claims lost to another worker.",
		})

		p.reg.MustRegister(p.workQueued)
		p.reg.MustRegister(p.queueErrors)
		p.reg.MustRegister(p.workFinished)
		p.reg.MustRegister(p.coordinationErrors)
		p.reg.MustRegister(p.trackedWork)
		p.reg.MustRegister(p.ticks)
		p.reg.MustRegister(p.tickDuration)
		p.reg.MustRegister(p.processed)
		p.reg.MustRegister(p.processDuration)
		p.reg.MustRegister(p.claimConflicts)
	})
}

// RecordWorkQueued increments queued work for the policy.
func (p *PrometheusCollector) RecordWorkQueued(policy string) {
	p.ensureRegistered()
	p.workQueued.WithLabelValues(policy).Inc()
}

// RecordQueueError increments failed appends for the policy.
func (p *PrometheusCollector) RecordQueueError(policy string) {
	p.ensureRegistered()
	p.queueErrors.WithLabelValues(policy).Inc()
}

// RecordWorkFinished adds count to the finished work counter.
func (p *PrometheusCollector) RecordWorkFinished(count int) {
	p.ensureRegistered()
	p.workFinished.Add(float64(count))
}

// RecordCoordinationError increments failed marker queries.
func (p *PrometheusCollector) RecordCoordinationError() {
	p.ensureRegistered()
	p.coordinationErrors.Inc()
}

// RecordTrackedWork sets the tracked work gauge.
func (p *PrometheusCollector) RecordTrackedWork(count int) {
	p.ensureRegistered()
	p.trackedWork.Set(float64(count))
}

// RecordTick records a tick outcome and its duration.
func (p *PrometheusCollector) RecordTick(duration float64, success bool) {
	p.ensureRegistered()
	p.ticks.WithLabelValues(resultLabel(success)).Inc()
	p.tickDuration.Observe(duration)
}

// RecordWorkProcessed records a processing outcome and its duration.
func (p *PrometheusCollector) RecordWorkProcessed(duration float64, success bool) {
	p.ensureRegistered()
	p.processed.WithLabelValues(resultLabel(success)).Inc()
	p.processDuration.Observe(duration)
}

// RecordClaimConflict increments lost claims.
func (p *PrometheusCollector) RecordClaimConflict() {
	p.ensureRegistered()
	p.claimConflicts.Inc()
}

func resultLabel(success bool) string {
	if success {
		return "success"
	}

	return "failure"
}
