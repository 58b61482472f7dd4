// Package werr carries the closed set of error kinds reported by the
// windowing backends. Failures are never retried; each one is reported
// once with a kind and a formatted description.
package werr

import (
	"errors"
	"fmt"
)

// Kind classifies a backend failure.
type Kind int

const (
	// InvalidValue marks malformed caller input, such as a partial
	// module-loader triplet or an out-of-range scancode.
	InvalidValue Kind = iota + 1
	// OutOfMemory marks a native allocation failure.
	OutOfMemory
	// ApiUnavailable marks a required subsystem, extension or library
	// that could not be obtained.
	ApiUnavailable
	// FormatUnavailable marks a request no configuration or selection
	// data can satisfy.
	FormatUnavailable
	// VersionUnavailable marks a context version/profile the driver
	// cannot create.
	VersionUnavailable
	// PlatformError marks an unexpected native call failure.
	PlatformError
	// NoWindowContext marks a context operation against a window that
	// was created without a rendering context.
	NoWindowContext
	// PlatformUnavailable marks a native-specific query made while a
	// different backend is active.
	PlatformUnavailable
	// CursorUnavailable marks an unsupported standard cursor shape.
	CursorUnavailable
)

// String returns the canonical kind name.
func (k Kind) String() string {
	switch k {
	case InvalidValue:
		return "invalid value"
	case OutOfMemory:
		return "out of memory"
	case ApiUnavailable:
		return "API unavailable"
	case FormatUnavailable:
		return "format unavailable"
	case VersionUnavailable:
		return "version unavailable"
	case PlatformError:
		return "platform error"
	case NoWindowContext:
		return "no window context"
	case PlatformUnavailable:
		return "platform unavailable"
	case CursorUnavailable:
		return "cursor unavailable"
	}
	return "unknown error"
}

// Error is a kind-tagged failure. It supports errors.Is against a bare
// Kind and unwraps to any underlying cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

// New formats a new Error of the given kind.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap formats a new Error of the given kind around an underlying cause.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error of the same kind, so sentinel comparisons
// like errors.Is(err, &Error{Kind: PlatformError}) work across wrapping.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return t.Kind == e.Kind
	}
	return false
}

// KindOf extracts the Kind from err, or zero when err carries none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
