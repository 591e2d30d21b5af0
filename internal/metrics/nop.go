// Package metrics provides types.MetricsCollector implementations.
package metrics

import "github.com/arloliu/replwork/types"

// NopMetrics implements a no-op metrics collector.
//
// All metrics are discarded. Useful for testing or when external
// metrics collection is used.
type NopMetrics struct{}

// Compile-time assertion that NopMetrics implements MetricsCollector.
var _ types.MetricsCollector = (*NopMetrics)(nil)

// NewNop creates a new no-op metrics collector.
//
// Example:
//
//	s, err := replwork.NewScheduler(&cfg, nc, src, replwork.WithMetrics(metrics.NewNop()))
func NewNop() *NopMetrics {
	return &NopMetrics{}
}

// AssignerMetrics implementation

// RecordWorkQueued discards the queued work metric.
func (n *NopMetrics) RecordWorkQueued(_ /* policy */ string) {}

// RecordQueueError discards the queue error metric.
func (n *NopMetrics) RecordQueueError(_ /* policy */ string) {}

// RecordWorkFinished discards the finished work metric.
func (n *NopMetrics) RecordWorkFinished(_ /* count */ int) {}

// RecordCoordinationError discards the coordination error metric.
func (n *NopMetrics) RecordCoordinationError() {}

// RecordTrackedWork discards the tracked work gauge.
func (n *NopMetrics) RecordTrackedWork(_ /* count */ int) {}

// SchedulerMetrics implementation

// RecordTick discards the tick metric.
func (n *NopMetrics) RecordTick(_ /* duration */ float64, _ /* success */ bool) {}

// WorkerMetrics implementation

// RecordWorkProcessed discards the processing metric.
func (n *NopMetrics) RecordWorkProcessed(_ /* duration */ float64, _ /* success */ bool) {}

// RecordClaimConflict discards the claim conflict metric.
func (n *NopMetrics) RecordClaimConflict() {}
