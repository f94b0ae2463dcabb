package pqc

// Version is the wrapper's semantic version, populated at build time via
// ldflags. In development it defaults to the placeholder below.
var Version = "v0.0.0-dev"

// WrapperVersion returns the version of this Go wrapper. The version of the
// native library itself is reported by Library.Version.
func WrapperVersion() string {
	return Version
}
