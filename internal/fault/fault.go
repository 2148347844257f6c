package fault

import (
	"errors"
	"fmt"
)

// Kind is a stable error code for programmatic handling.
type Kind string

const (
	KindInvalid            Kind = "invalid"
	KindInvalidShareCount  Kind = "invalid_share_count"
	KindInvalidPercentage  Kind = "invalid_percentage"
	KindPercentageSum      Kind = "percentage_sum"
	KindInvalidDinerCount  Kind = "invalid_diner_count"
	KindRecipeNotFound     Kind = "recipe_not_found"
	KindProjectionNotFound Kind = "projection_not_found"
	KindNotFound           Kind = "not_found"
	KindNotInTrash         Kind = "not_in_trash"
	KindRetentionHold      Kind = "retention_hold"
)

// Error is a structured domain error carrying a kind, the offending field,
// and an optional wrapped cause.
type Error struct {
	Kind    Kind
	Field   string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the wrapped cause for errors.Is/As support.
func (e *Error) Unwrap() error { return e.Err }

// New creates an Error with a kind and message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Field creates an Error naming the field that failed.
func Field(kind Kind, field, message string) *Error {
	return &Error{Kind: kind, Field: field, Message: message}
}

// Wrap attaches a kind and message to an existing error.
func Wrap(err error, kind Kind, message string) *Error {
	if err == nil {
		return New(kind, message)
	}
	return &Error{Kind: kind, Message: message, Err: err}
}

// IsKind reports whether the error carries the given kind, through unwrapping.
func IsKind(err error, kind Kind) bool {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind == kind
	}
	return false
}

// KindOf extracts the kind from an error, or the empty Kind when the error is
// not a fault.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return ""
}
