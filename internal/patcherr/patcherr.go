// Package patcherr defines the typed error kinds shared by the patch-subset
// client and server cores.
//
// The source project modeled these as a StatusCode enum
// (common/status.h); here they're carried as a Go error with an attached
// Kind, in the same spirit as the teacher's SourceDiagnostic/typed-error
// pattern (see compile.go's diagnosticFromError).
package patcherr

import "fmt"

// Kind classifies why an operation failed.
type Kind int

const (
	// Ok is never attached to a returned error; it exists so Kind has a
	// defined zero-adjacent success value for callers that store a Kind
	// alongside an error.
	Ok Kind = iota
	InvalidArgument
	NotFound
	FailedPrecondition
	Unimplemented
	Internal
)

func (k Kind) String() string {
	switch k {
	case Ok:
		return "ok"
	case InvalidArgument:
		return "invalid_argument"
	case NotFound:
		return "not_found"
	case FailedPrecondition:
		return "failed_precondition"
	case Unimplemented:
		return "unimplemented"
	case Internal:
		return "internal"
	default:
		return "unknown"
	}
}

// Error is a typed error carrying one of the Kind values above plus an
// optional wrapped cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// New creates an *Error of the given kind.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Wrap creates an *Error of the given kind wrapping err.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf extracts the Kind from err, or Ok if err is nil, or Internal if
// err is non-nil but not a *Error.
func KindOf(err error) Kind {
	if err == nil {
		return Ok
	}
	var pe *Error
	if ok := asError(err, &pe); ok {
		return pe.Kind
	}
	return Internal
}

func asError(err error, target **Error) bool {
	for err != nil {
		if pe, ok := err.(*Error); ok {
			*target = pe
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
