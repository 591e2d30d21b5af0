package types

import "context"

// Hooks defines callbacks for Scheduler events.
//
// All hooks are optional. They are invoked synchronously from the scheduler
// tick, so they must complete quickly and must not call back into the
// Scheduler. Hook errors are logged but never fail a tick.
//
// Example:
//
//	hooks := &replwork.Hooks{
//	    OnWorkFinished: func(ctx context.Context, keys []string) error {
//	        for _, k := range keys {
//	            audit.Record(k)
//	        }
//	        return nil
//	    },
//	}
type Hooks struct {
	// OnWorkQueued is called after a new queue entry was appended.
	OnWorkQueued func(ctx context.Context, key string, item WorkItem) error

	// OnWorkFinished is called with the keys forgotten by a cleanup pass.
	OnWorkFinished func(ctx context.Context, keys []string) error

	// OnError is called when a recoverable error occurs during a tick.
	OnError func(ctx context.Context, err error) error
}
