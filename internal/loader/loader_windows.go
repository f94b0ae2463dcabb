package loader

import "golang.org/x/sys/windows"

func dlopenNative(path string) (uintptr, error) {
	h, err := windows.LoadLibraryEx(path, 0, windows.LOAD_WITH_ALTERED_SEARCH_PATH)
	return uintptr(h), err
}

func dlsymNative(ref uintptr, symbol string) (uintptr, error) {
	return windows.GetProcAddress(windows.Handle(ref), symbol)
}
