package types

// MetricsCollector defines methods for recording operational metrics.
//
// Implementations should be non-blocking and handle failures gracefully.
// All methods may be called from multiple goroutines and must be thread-safe.
type MetricsCollector interface {
	AssignerMetrics
	SchedulerMetrics
	WorkerMetrics
}

// AssignerMetrics defines metrics for work assignment operations.
type AssignerMetrics interface {
	// RecordWorkQueued records a new queue entry appended under the given policy.
	RecordWorkQueued(policy string)

	// RecordQueueError records a failed durable append.
	RecordQueueError(policy string)

	// RecordWorkFinished records keys forgotten by a cleanup pass.
	RecordWorkFinished(count int)

	// RecordCoordinationError records a failed completion marker query.
	RecordCoordinationError()

	// RecordTrackedWork sets the number of keys currently tracked (gauge metric).
	RecordTrackedWork(count int)
}

// SchedulerMetrics defines metrics for the periodic assignment loop.
type SchedulerMetrics interface {
	// RecordTick records a completed scheduler tick.
	//
	// Parameters:
	//   - duration: Time taken in seconds
	//   - success: false if any phase of the tick reported an error
	RecordTick(duration float64, success bool)
}

// WorkerMetrics defines metrics for the worker pool processing queued entries.
type WorkerMetrics interface {
	// RecordWorkProcessed records the outcome of one processing attempt.
	RecordWorkProcessed(duration float64, success bool)

	// RecordClaimConflict records a claim lost to another worker.
	RecordClaimConflict()
}
