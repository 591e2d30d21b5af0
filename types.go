package replwork

import "github.com/arloliu/replwork/types"

// Re-export types from the types package.
//
// Internal packages depend on types rather than on the root package, which
// avoids import cycles while still offering replwork.WorkItem,
// replwork.Logger, etc. to users.
type (
	ReplicationTarget = types.ReplicationTarget
	WorkItem          = types.WorkItem
)

// Re-export interfaces from the types package for convenience.
type (
	WorkQueue          = types.WorkQueue
	CoordinationClient = types.CoordinationClient
	WorkSource         = types.WorkSource
	WorkAssigner       = types.WorkAssigner
	Processor          = types.Processor
	ProcessorFunc      = types.ProcessorFunc
	MetricsCollector   = types.MetricsCollector
	Logger             = types.Logger
	Hooks              = types.Hooks
)

// Re-export assignment policy names.
const (
	PolicyUnordered = types.PolicyUnordered
	PolicyOrdered   = types.PolicyOrdered
)
