// Package assigner implements the work assignment policies behind
// types.WorkAssigner.
//
// An assigner turns work items into queue keys, appends new keys to the
// durable queue and tracks them in memory until their completion marker
// disappears from the coordination store. Unordered lets every key proceed
// independently; Ordered allows at most one outstanding key per target.
package assigner
