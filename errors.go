package glwin

import (
	"errors"
	"sync"

	"github.com/1broseidon/glwin/internal/werr"
)

// ErrorKind classifies every failure this library reports.
type ErrorKind int

const (
	// InvalidValue marks malformed caller input.
	InvalidValue = ErrorKind(werr.InvalidValue)
	// OutOfMemory marks a native allocation failure.
	OutOfMemory = ErrorKind(werr.OutOfMemory)
	// ApiUnavailable marks a required subsystem, extension or library
	// that could not be obtained.
	ApiUnavailable = ErrorKind(werr.ApiUnavailable)
	// FormatUnavailable marks a request no configuration or selection
	// data can satisfy.
	FormatUnavailable = ErrorKind(werr.FormatUnavailable)
	// VersionUnavailable marks a context version or profile the driver
	// cannot create.
	VersionUnavailable = ErrorKind(werr.VersionUnavailable)
	// PlatformError marks an unexpected native call failure.
	PlatformError = ErrorKind(werr.PlatformError)
	// NoWindowContext marks a context operation against a window that
	// was created without a rendering context.
	NoWindowContext = ErrorKind(werr.NoWindowContext)
	// PlatformUnavailable marks a native-specific query made while a
	// different backend is active.
	PlatformUnavailable = ErrorKind(werr.PlatformUnavailable)
	// CursorUnavailable marks an unsupported standard cursor shape.
	CursorUnavailable = ErrorKind(werr.CursorUnavailable)
)

// String returns the canonical kind name.
func (k ErrorKind) String() string { return werr.Kind(k).String() }

// Error is a failure reported by the library: a kind from the closed
// set plus a description. It unwraps to the underlying cause.
type Error struct {
	Kind ErrorKind
	err  error
}

func (e *Error) Error() string { return e.err.Error() }

func (e *Error) Unwrap() error { return e.err }

// KindOf returns the kind carried by err, or zero when err did not
// come from this library.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

var (
	errorHandlerMu sync.Mutex
	errorHandler   func(*Error)
)

// SetErrorHandler installs a process-wide callback observing every
// error the library reports, returning the previous handler. Pass nil
// to remove it. The callback runs on whichever goroutine reported the
// error and must not call back into the library.
func SetErrorHandler(fn func(*Error)) func(*Error) {
	errorHandlerMu.Lock()
	defer errorHandlerMu.Unlock()
	prev := errorHandler
	errorHandler = fn
	return prev
}

// reportError converts an internal failure into the public error type
// and feeds the error handler.
func reportError(err error) error {
	if err == nil {
		return nil
	}
	e := &Error{Kind: ErrorKind(werr.KindOf(err)), err: err}
	errorHandlerMu.Lock()
	fn := errorHandler
	errorHandlerMu.Unlock()
	if fn != nil {
		fn(e)
	}
	return e
}
