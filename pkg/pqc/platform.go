package pqc

import "github.com/QudsLab/pqchub-go/internal/platform"

// PlatformTag returns the canonical platform tag for the running process,
// e.g. "linux-x86_64", or "unsupported" when no binary is published for
// this OS/arch pair.
func PlatformTag() string {
	return string(platform.Identify())
}

// PlatformSupported reports whether a prebuilt binary is published for the
// running process's platform.
func PlatformSupported() bool {
	return platform.Identify().Supported()
}
