package errno

import (
	"errors"
)

var (
	ErrAborted          = errors.New("run aborted")
	ErrStepBudget       = errors.New("step budget exceeded")
	ErrMalformedReply   = errors.New("malformed backend response")
	ErrBackendFailed    = errors.New("backend unreachable")
	ErrCustomerNotFound = errors.New("customer not found")
	ErrRegistryFrozen   = errors.New("tool registry is frozen")
	ErrToolExists       = errors.New("tool already registered")
	ErrUnknownToolID    = errors.New("unknown tool identifier")
	ErrInvalidSignature = errors.New("invalid tool signature")
	ErrToolBinding      = errors.New("binding tools to the model failed")
)
