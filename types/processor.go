package types

import "context"

// Processor performs the actual transfer of a queued file to its target.
//
// Processors are supplied by the replication subsystem; the worker pool only
// claims entries and invokes Process. Process may be called more than once for
// the same key (for example after a crash between transfer and completion), so
// implementations must be idempotent.
type Processor interface {
	// Process replicates the file described by key and payload.
	//
	// Returning nil marks the work complete: the queue entry and its
	// completion marker are removed. Returning an error leaves the entry
	// queued for a later attempt.
	Process(ctx context.Context, key string, payload string) error
}

// ProcessorFunc adapts an ordinary function to the Processor interface.
type ProcessorFunc func(ctx context.Context, key string, payload string) error

// Process calls f(ctx, key, payload).
func (f ProcessorFunc) Process(ctx context.Context, key string, payload string) error {
	return f(ctx, key, payload)
}
