package replwork

import "github.com/arloliu/replwork/types"

// Sentinel errors returned by the Scheduler and the assigners.
//
// These re-export the definitions in the types package so callers can use
// errors.Is against replwork.ErrX without importing types.
var (
	ErrInvalidConfig          = types.ErrInvalidConfig
	ErrNATSConnectionRequired = types.ErrNATSConnectionRequired
	ErrWorkSourceRequired     = types.ErrWorkSourceRequired
	ErrAlreadyStarted         = types.ErrAlreadyStarted
	ErrNotStarted             = types.ErrNotStarted
	ErrUnknownPolicy          = types.ErrUnknownPolicy
	ErrInvalidWorkItem        = types.ErrInvalidWorkItem
	ErrInvalidTarget          = types.ErrInvalidTarget
	ErrQueueWork              = types.ErrQueueWork
	ErrNodeNotFound           = types.ErrNodeNotFound
)
