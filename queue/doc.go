// Package queue provides the durable work queue and the worker pool that
// drains it.
//
// Entries are stored in a NATS JetStream KeyValue bucket at the key of their
// completion marker path (see workkey.MarkerPath), so appending an entry
// creates its marker and removing it clears the marker in one write. Workers
// claim entries through TTL leases in a separate lock bucket.
package queue
