// Package platform maps the running OS and CPU architecture onto the
// canonical platform tags used to key the binary manifest and the local
// cache. The mapping is a closed table: pairs it does not recognize come
// back as TagUnsupported rather than a guess, and callers are expected to
// treat that as terminal.
package platform

import (
	"runtime"
	"strings"
)

// Tag is a canonical platform identifier, e.g. "linux-x86_64". Tags are the
// lookup key for manifest entries and cache directories, so their spelling
// must match the published metadata exactly.
type Tag string

// Canonical platform tags for which prebuilt binaries are published.
const (
	TagLinuxX8664   Tag = "linux-x86_64"
	TagLinuxAarch64 Tag = "linux-aarch64"
	TagMacOSX8664   Tag = "macos-x86_64"
	TagMacOSArm64   Tag = "macos-arm64"
	TagWindowsX64   Tag = "windows-x64"
	TagWindowsX86   Tag = "windows-x86"

	// TagUnsupported is the sentinel for OS/arch pairs with no published
	// binary. It is a valid value, never an error or a panic.
	TagUnsupported Tag = "unsupported"
)

// tagTable keys canonical tags by GOOS/GOARCH. Note the asymmetry inherited
// from the upstream binary naming: 64-bit ARM is "aarch64" on Linux but
// "arm64" on macOS, and 64-bit x86 on Windows is spelled "x64".
var tagTable = map[[2]string]Tag{
	{"linux", "amd64"}:   TagLinuxX8664,
	{"linux", "arm64"}:   TagLinuxAarch64,
	{"darwin", "amd64"}:  TagMacOSX8664,
	{"darwin", "arm64"}:  TagMacOSArm64,
	{"windows", "amd64"}: TagWindowsX64,
	{"windows", "386"}:   TagWindowsX86,
}

// Identify returns the canonical tag for the running process.
func Identify() Tag {
	return IdentifyFrom(runtime.GOOS, runtime.GOARCH)
}

// IdentifyFrom maps an explicit GOOS/GOARCH pair onto a canonical tag. It is
// total: unknown pairs yield TagUnsupported. Tests and cross-platform
// tooling use this instead of Identify.
func IdentifyFrom(goos, goarch string) Tag {
	if tag, ok := tagTable[[2]string{goos, goarch}]; ok {
		return tag
	}
	return TagUnsupported
}

// Supported reports whether the tag names a platform with published binaries.
func (t Tag) Supported() bool {
	return t != TagUnsupported && t != ""
}

// OS returns the OS half of the tag ("linux", "macos", "windows").
func (t Tag) OS() string {
	if i := strings.IndexByte(string(t), '-'); i > 0 {
		return string(t[:i])
	}
	return ""
}

// Arch returns the architecture half of the tag.
func (t Tag) Arch() string {
	if i := strings.IndexByte(string(t), '-'); i >= 0 && i+1 < len(t) {
		return string(t[i+1:])
	}
	return ""
}

// LibraryFilename returns the native library file name published for this
// tag's OS.
func (t Tag) LibraryFilename() string {
	switch t.OS() {
	case "windows":
		return "pqc.dll"
	case "macos":
		return "libpqc.dylib"
	default:
		return "libpqc.so"
	}
}

func (t Tag) String() string { return string(t) }
