//go:build darwin || freebsd || linux

package dylib

import (
	"github.com/ebitengine/purego"
)

func systemOpen(name string) (Module, error) {
	h, err := purego.Dlopen(name, purego.RTLD_LAZY|purego.RTLD_GLOBAL)
	if err != nil {
		return 0, err
	}
	return Module(h), nil
}

func systemClose(m Module) {
	purego.Dlclose(uintptr(m))
}

func systemResolve(m Module, symbol string) (uintptr, error) {
	return purego.Dlsym(uintptr(m), symbol)
}
