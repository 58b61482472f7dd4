// Package dylib loads shared libraries for the rendering backends. The
// default loader uses the system dynamic linker; an application may
// replace it with a custom open/close/resolve triplet, which must be
// installed either completely or not at all.
package dylib

import (
	"fmt"

	"github.com/1broseidon/glwin/internal/werr"
)

// Module is an opaque handle to a loaded shared library.
type Module uintptr

// OpenFunc opens the named library and returns its handle.
type OpenFunc func(name string) (Module, error)

// CloseFunc releases a library handle.
type CloseFunc func(m Module)

// ResolveFunc resolves a symbol address within a loaded library.
type ResolveFunc func(m Module, symbol string) (uintptr, error)

// Loader opens shared libraries and resolves their symbols.
type Loader struct {
	open    OpenFunc
	close   CloseFunc
	resolve ResolveFunc
}

// System returns a loader backed by the platform dynamic linker.
func System() *Loader {
	return &Loader{open: systemOpen, close: systemClose, resolve: systemResolve}
}

// Custom builds a loader from a replacement triplet. Passing all nil
// functions returns the system loader; a partial triplet is rejected
// with an invalid-value error and must leave any previous loader in
// place (the caller keeps its old Loader on error).
func Custom(open OpenFunc, close CloseFunc, resolve ResolveFunc) (*Loader, error) {
	if open == nil && close == nil && resolve == nil {
		return System(), nil
	}
	if open == nil || close == nil || resolve == nil {
		return nil, werr.New(werr.InvalidValue, "module loader requires all of open, close and resolve")
	}
	return &Loader{open: open, close: close, resolve: resolve}, nil
}

// Open tries each candidate library name in order and returns the first
// handle that loads, along with the name that succeeded.
func (l *Loader) Open(names ...string) (Module, string, error) {
	var firstErr error
	for _, name := range names {
		m, err := l.open(name)
		if err == nil && m != 0 {
			return m, name, nil
		}
		if firstErr == nil && err != nil {
			firstErr = err
		}
	}
	if firstErr == nil {
		firstErr = fmt.Errorf("no candidate names given")
	}
	return 0, "", fmt.Errorf("loading %v: %w", names, firstErr)
}

// Close releases a previously opened module.
func (l *Loader) Close(m Module) {
	if m != 0 {
		l.close(m)
	}
}

// Resolve returns the address of symbol within m, or an error when the
// module does not export it.
func (l *Loader) Resolve(m Module, symbol string) (uintptr, error) {
	return l.resolve(m, symbol)
}
