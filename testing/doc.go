// Package testing provides test utilities for replwork.
//
// The helpers start an in-process NATS server with JetStream and create the KV
// buckets the queue, coordination client and worker locks live in, so
// integration tests need no external services.
//
//   - StartEmbeddedNATS: single NATS server with JetStream
//   - CreateJetStreamKV: persistent bucket (queue entries never expire)
//   - CreateLockKV: bucket with a TTL for claim leases
//   - NewTestLogger: types.Logger writing through t.Logf
//   - NewRecordingLogger: test logger that also keeps entries for assertions
//
// Example usage:
//
//	import (
//	    "testing"
//	    rwtest "github.com/arloliu/replwork/testing"
//	)
//
//	func TestMyComponent(t *testing.T) {
//	    _, nc := rwtest.StartEmbeddedNATS(t)
//	    kv := rwtest.CreateJetStreamKV(t, nc, "workqueue")
//	}
package testing
