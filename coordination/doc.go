// Package coordination provides types.CoordinationClient implementations.
//
// KV reads completion markers from a NATS JetStream KeyValue bucket, mapping
// slash-separated coordination paths onto KV keys. Memory is an in-process
// store for tests and single-process tooling.
package coordination
