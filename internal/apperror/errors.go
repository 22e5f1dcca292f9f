// Package apperror defines the error taxonomy shared by the tile service.
// Handlers map kinds to HTTP status codes in exactly one place.
package apperror

import (
	"errors"
	"fmt"
)

type Kind int

const (
	// KindInvalidInput covers bad request parameters detected before any I/O.
	KindInvalidInput Kind = iota
	// KindNotFound covers tiles, games and metadata absent from the store.
	KindNotFound
	// KindUpstream covers cache, store and network connectivity failures.
	KindUpstream
	// KindProcessing covers decode/encode/crop failures.
	KindProcessing
	// KindUnauthorized is reserved for the auth boundary.
	KindUnauthorized
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindNotFound:
		return "not_found"
	case KindUpstream:
		return "upstream_failure"
	case KindProcessing:
		return "processing_failure"
	case KindUnauthorized:
		return "unauthorized"
	}
	return "unknown"
}

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the kind from err, unwrapping as needed.
// Errors outside the taxonomy report KindUpstream so that unclassified
// failures surface as 500s, never as client errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUpstream
}

func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}

func IsInvalidInput(err error) bool {
	return KindOf(err) == KindInvalidInput
}
