package contract

import (
	"errors"
	"fmt"
)

var (
	ErrValidation  = errors.New("validation failed")
	ErrUnknownTool = errors.New("unknown tool")
	// ErrBadState is a validation failure: the caller sent a bag we cannot read.
	ErrBadState = fmt.Errorf("%w: session gift state is unreadable", ErrValidation)
)
