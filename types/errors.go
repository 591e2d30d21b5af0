package types

import (
	"errors"
	"strings"
)

// Sentinel errors for the replwork library.
//
// Use errors.Is() to check for these conditions. External errors are wrapped
// with context using fmt.Errorf("%s: %w", msg, err).

// Scheduler errors - Public API errors returned by the Scheduler.
var (
	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrNATSConnectionRequired is returned when NATS connection is nil.
	ErrNATSConnectionRequired = errors.New("NATS connection is required")

	// ErrWorkSourceRequired is returned when work source is nil.
	ErrWorkSourceRequired = errors.New("work source is required")

	// ErrAlreadyStarted is returned when Start is called on a running component.
	ErrAlreadyStarted = errors.New("already started")

	// ErrNotStarted is returned when operations require a started component.
	ErrNotStarted = errors.New("not started")

	// ErrUnknownPolicy is returned when the configured assignment policy is not recognized.
	ErrUnknownPolicy = errors.New("unknown assignment policy")
)

// Assignment errors - returned by WorkAssigner implementations.
var (
	// ErrInvalidWorkItem is returned when a work item cannot be turned into a queue key.
	ErrInvalidWorkItem = errors.New("invalid work item")

	// ErrInvalidTarget is returned when a replication target is malformed.
	ErrInvalidTarget = errors.New("invalid replication target")

	// ErrQueueWork is returned when the durable queue append fails.
	ErrQueueWork = errors.New("failed to queue work")
)

// Store errors - returned by queue and coordination implementations.
var (
	// ErrNodeNotFound is returned when a coordination node does not exist.
	ErrNodeNotFound = errors.New("node not found")

	// ErrConnectivity indicates a NATS/KV connectivity issue.
	ErrConnectivity = errors.New("connectivity issue")

	// ErrNoKeysFound is returned when NATS KV returns no keys (expected condition).
	ErrNoKeysFound = errors.New("no keys found")
)

// IsNoKeysFoundError checks if an error indicates that no keys were found in NATS KV.
//
// This function handles NATS-specific "no keys found" errors which may come as:
//   - Direct error: "nats: no keys found"
//   - Wrapped error: "failed to list KV keys: nats: no keys found"
func IsNoKeysFoundError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrNoKeysFound) {
		return true
	}

	return strings.Contains(err.Error(), "no keys found")
}
