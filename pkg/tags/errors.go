package tags

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	ErrTagDoesNotExist     = errors.New("tag does not exist")
	ErrInvalidControlValue = errors.New("invalid control value")
)

// TagError provides structured error information for tag operations.
type TagError struct {
	Op    string // Operation that failed (e.g., "Get", "Set", "Resolve")
	Tag   string // Tag name
	PLC   string // Owning PLC name (if known)
	Cause error  // Underlying error
}

// Error implements the error interface.
func (e *TagError) Error() string {
	if e.PLC != "" {
		return fmt.Sprintf("%s tag %s (plc %s): %v", e.Op, e.Tag, e.PLC, e.Cause)
	}
	return fmt.Sprintf("%s tag %s: %v", e.Op, e.Tag, e.Cause)
}

// Unwrap returns the underlying cause for error chain support.
func (e *TagError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target error matches this error or its cause.
func (e *TagError) Is(target error) bool {
	if target == nil {
		return false
	}
	return errors.Is(e.Cause, target)
}

// NotFoundError creates a tag-does-not-exist error.
func NotFoundError(op, tag, plc string) error {
	return &TagError{Op: op, Tag: tag, PLC: plc, Cause: ErrTagDoesNotExist}
}

// InvalidValueError creates an invalid-control-value error.
func InvalidValueError(tag, plc string, value any) error {
	return &TagError{
		Op:    "Set",
		Tag:   tag,
		PLC:   plc,
		Cause: fmt.Errorf("%w: %v", ErrInvalidControlValue, value),
	}
}

// IsNotFound returns true if the error is a tag-does-not-exist error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrTagDoesNotExist)
}

// IsInvalidValue returns true if the error is an invalid-control-value error.
func IsInvalidValue(err error) bool {
	return errors.Is(err, ErrInvalidControlValue)
}
