package component

import (
	"errors"
	"fmt"
	"time"
)

// Code classifies an engine error.
type Code string

const (
	CodeIDConflict            Code = "id_conflict"
	CodeKeyConflict           Code = "key_conflict"
	CodeInvalidScope          Code = "invalid_scope"
	CodeForbiddenScope        Code = "forbidden_scope"
	CodeForbiddenVirtualScope Code = "forbidden_virtual_scope"
	CodeInvalidID             Code = "invalid_id"
)

// Sentinel errors, one per Code. An *Error unwraps to the sentinel of its code.
var (
	ErrIDConflict            = errors.New("component: id conflict")
	ErrKeyConflict           = errors.New("component: key conflict")
	ErrInvalidScope          = errors.New("component: invalid scope")
	ErrForbiddenScope        = errors.New("component: forbidden scope for virtual bunch")
	ErrForbiddenVirtualScope = errors.New("component: virtual scope forbidden for physical bunch")
	ErrInvalidID             = errors.New("component: invalid id")

	ErrNilElement = errors.New("component: element cannot be nil")
	ErrNilBunch   = errors.New("component: bunch cannot be nil")
)

func (c Code) sentinel() error {
	switch c {
	case CodeIDConflict:
		return ErrIDConflict
	case CodeKeyConflict:
		return ErrKeyConflict
	case CodeInvalidScope:
		return ErrInvalidScope
	case CodeForbiddenScope:
		return ErrForbiddenScope
	case CodeForbiddenVirtualScope:
		return ErrForbiddenVirtualScope
	case CodeInvalidID:
		return ErrInvalidID
	}
	return nil
}

// Error is a recoverable engine failure. Initiator is the component that raised
// it; Target is the component implicated in the failure, if any.
type Error struct {
	Code      Code
	Message   string
	Initiator Component
	Target    Component
	Time      time.Time
}

// Error implements the error interface
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the sentinel for the error's code
func (e *Error) Unwrap() error {
	return e.Code.sentinel()
}

// CodeOf extracts the Code of an engine error, or "" if err is not one.
func CodeOf(err error) Code {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ""
}
