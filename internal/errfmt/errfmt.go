// Package errfmt defines the error taxonomy shared by all engines and the
// JSON error envelope printed at the command boundary.
//
// Every failure a command can hit is classified into one Kind; the root
// command converts the error into {"status":"error","message":...,"type":...}
// on stdout and exits non-zero. Errors never escape as uncaught panics.
package errfmt

import (
	"errors"
	"fmt"
)

// Kind is the stable error type name reported in the envelope.
type Kind string

const (
	// NotFound: the input path does not exist.
	NotFound Kind = "NotFound"
	// InvalidFormat: the bytes do not parse as the expected container.
	InvalidFormat Kind = "InvalidFormat"
	// OutOfRange: an index (paragraph/table/row/col/slide/shape/page) is
	// outside valid bounds. Lookups never clamp; only the insertion planner
	// clamps, by design.
	OutOfRange Kind = "OutOfRange"
	// NotFoundSemantic: a named entity (sheet, shape, style) does not exist.
	NotFoundSemantic Kind = "NotFoundSemantic"
	// ValidationError: malformed request (missing field, bad dimensions).
	ValidationError Kind = "ValidationError"
	// IOError: persistence failure.
	IOError Kind = "IOError"
	// DependencyUnavailable: an optional external tool (LibreOffice,
	// pdftoppm) is absent. Reported, never a crash.
	DependencyUnavailable Kind = "DependencyUnavailable"
)

// Error pairs a Kind with an underlying cause.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string { return e.Err.Error() }

func (e *Error) Unwrap() error { return e.Err }

// New builds a classified error from a format string.
func New(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// Wrap classifies an existing error, preserving it for errors.Is/As.
// An optional context string prefixes the message.
func Wrap(kind Kind, err error, context ...string) error {
	if err == nil {
		return nil
	}

	if len(context) > 0 && context[0] != "" {
		err = fmt.Errorf("%s: %w", context[0], err)
	}

	return &Error{Kind: kind, Err: err}
}

// KindOf extracts the Kind from err, walking the wrap chain.
// Unclassified errors report IOError, the catch-all for unexpected failures.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	return IOError
}

// Envelope is the JSON error object printed to stdout on failure.
type Envelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

// ToEnvelope converts any error into the uniform envelope.
func ToEnvelope(err error) Envelope {
	return Envelope{
		Status:  "error",
		Message: err.Error(),
		Type:    string(KindOf(err)),
	}
}
