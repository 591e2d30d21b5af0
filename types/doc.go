// Package types provides core type definitions and interfaces for the replwork library.
//
// This package contains shared types that are used across multiple packages in the
// replwork library. By keeping these types in a separate package, we avoid import cycles
// between the main replwork package and its internal implementations.
//
// Key types:
//   - ReplicationTarget: Destination of a replicated file (peer, remote table, source table)
//   - WorkItem: Obligation to replicate one file to one target
//   - WorkQueue: Durable queue of pending work keys
//   - CoordinationClient: Read view over the coordination store holding completion markers
//   - WorkAssigner: Policy that queues work and reconciles finished work
//   - Logger: Structured logging interface
//   - MetricsCollector: Metrics recording interface
package types
