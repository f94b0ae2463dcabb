// Package config implements the TOML configuration consumed by the pqchub
// command line tools. All fields are optional; the zero configuration
// resolves the published binary for the host platform into the per-user
// cache.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/QudsLab/pqchub-go/pkg/pqc"
)

const (
	defaultLogLevel        = "INFO"
	defaultTimeoutSeconds  = 120
	defaultDownloadRetries = 2
)

// Cache is the binary cache configuration.
type Cache struct {
	// Dir overrides the cache root; empty selects the per-user default.
	Dir string
}

// Manifest is the binary metadata configuration.
type Manifest struct {
	// URL overrides the published metadata location.
	URL string

	// Path names a local manifest document; it takes precedence over URL.
	Path string
}

// Download bounds artifact transfers.
type Download struct {
	// TimeoutSeconds bounds each transfer attempt.
	TimeoutSeconds int

	// Retries is the number of re-attempts after a failed transfer. Omit it
	// for the default; an explicit zero disables retries.
	Retries *int
}

// Logging is the logging configuration.
type Logging struct {
	// Disable disables logging entirely.
	Disable bool

	// Level specifies the log level: ERROR, WARN, INFO or DEBUG.
	Level string
}

func (lCfg *Logging) validate() error {
	lvl := strings.ToUpper(lCfg.Level)
	switch lvl {
	case "ERROR", "WARN", "INFO", "DEBUG":
	case "":
		lvl = defaultLogLevel
	default:
		return fmt.Errorf("config: Logging: Level '%v' is invalid", lCfg.Level)
	}
	lCfg.Level = lvl
	return nil
}

// Config is the top level configuration.
type Config struct {
	Cache    Cache
	Manifest Manifest
	Download Download
	Logging  Logging

	// LibraryPath, when set, bypasses manifest and cache and loads this
	// exact file.
	LibraryPath string
}

// FixupAndValidate applies defaults and checks the configuration.
func (c *Config) FixupAndValidate() error {
	if c.Download.TimeoutSeconds == 0 {
		c.Download.TimeoutSeconds = defaultTimeoutSeconds
	}
	if c.Download.TimeoutSeconds < 0 {
		return fmt.Errorf("config: Download: TimeoutSeconds %d is invalid", c.Download.TimeoutSeconds)
	}
	if c.Download.Retries == nil {
		r := defaultDownloadRetries
		c.Download.Retries = &r
	}
	if *c.Download.Retries < 0 {
		return fmt.Errorf("config: Download: Retries %d is invalid", *c.Download.Retries)
	}
	return c.Logging.validate()
}

// Library converts the configuration into the library's Config.
func (c *Config) Library() pqc.Config {
	retries := uint64(*c.Download.Retries)
	return pqc.Config{
		LibraryPath:     c.LibraryPath,
		CacheDir:        c.Cache.Dir,
		ManifestPath:    c.Manifest.Path,
		ManifestURL:     c.Manifest.URL,
		DownloadTimeout: time.Duration(c.Download.TimeoutSeconds) * time.Second,
		DownloadRetries: &retries,
	}
}

// Load parses a configuration document.
func Load(b []byte) (*Config, error) {
	cfg := new(Config)
	md, err := toml.Decode(string(b), cfg)
	if err != nil {
		return nil, err
	}
	if undecoded := md.Undecoded(); len(undecoded) != 0 {
		return nil, fmt.Errorf("config: document contains unknown keys: %v", undecoded)
	}
	if err := cfg.FixupAndValidate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile loads and parses the configuration at path. A missing path is
// not an error; the defaults apply.
func LoadFile(path string) (*Config, error) {
	if path == "" {
		cfg := new(Config)
		if err := cfg.FixupAndValidate(); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Load(b)
}
