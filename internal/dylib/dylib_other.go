//go:build !darwin && !freebsd && !linux

package dylib

import "github.com/1broseidon/glwin/internal/werr"

func systemOpen(name string) (Module, error) {
	return 0, werr.New(werr.ApiUnavailable, "dynamic module loading is not supported on this platform")
}

func systemClose(m Module) {}

func systemResolve(m Module, symbol string) (uintptr, error) {
	return 0, werr.New(werr.ApiUnavailable, "dynamic module loading is not supported on this platform")
}
