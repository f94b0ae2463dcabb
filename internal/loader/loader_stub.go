//go:build !linux && !darwin && !freebsd && !windows

package loader

import "fmt"

func dlopenNative(path string) (uintptr, error) {
	return 0, fmt.Errorf("dynamic loading not supported on this OS")
}

func dlsymNative(ref uintptr, symbol string) (uintptr, error) {
	return 0, fmt.Errorf("dynamic loading not supported on this OS")
}
