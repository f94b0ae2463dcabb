//go:build linux || darwin || freebsd

package loader

import "github.com/ebitengine/purego"

func dlopenNative(path string) (uintptr, error) {
	return purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_LOCAL)
}

func dlsymNative(ref uintptr, symbol string) (uintptr, error) {
	return purego.Dlsym(ref, symbol)
}
