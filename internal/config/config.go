// Package config reads the optional --config TOML file that supplies
// defaults for flags the CLI otherwise always overrides.
package config

import (
	"os"

	"github.com/BurntSushi/toml"
)

// File mirrors the subset of CLI flags a config file may default.
// CLI flags, when explicitly set, always take precedence over these values.
type File struct {
	MaxMiB   int64    `toml:"max_mib"`
	Trust    []string `toml:"trust"`
	LogLevel string   `toml:"log_level"`
}

// Read loads path if it exists; a missing path is not an error — it simply
// yields a zero-value File so the caller falls back entirely to flag
// defaults, matching the optional nature of --config.
func Read(path string) (File, error) {
	var f File
	if path == "" {
		return f, nil
	}
	if _, err := os.Stat(path); err != nil {
		return f, nil
	}
	_, err := toml.DecodeFile(path, &f)
	return f, err
}
