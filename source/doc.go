// Package source provides built-in work source implementations.
//
// Work sources report which files are currently eligible for replication.
// The package includes:
//
//   - Static: Fixed, replaceable list of work items
//   - Func: Adapter for a plain function
//   - Dir: Files in a WAL directory paired with a fixed set of targets
//
// Custom sources can be implemented by satisfying the types.WorkSource interface.
package source
