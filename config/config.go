// Package config loads engine and CLI configuration from a TOML file,
// adapted from xmysql-server's ini-backed Cfg pattern (server/conf/config.go)
// but using github.com/pelletier/go-toml, matching the rest of the pack's
// direct dependency on it.
package config

import (
	"os"

	"github.com/pelletier/go-toml"
)

// Config holds the knobs this engine actually has: how chatty the tracer
// is, and where the CLI driver should look for a schema file when one
// isn't passed explicitly.
type Config struct {
	TracerVerbosity int    `toml:"tracer_verbosity"`
	SchemaPath      string `toml:"schema_path"`
}

// Default returns the configuration used when no file is supplied.
func Default() *Config {
	return &Config{
		TracerVerbosity: 1,
	}
}

// Load reads and parses a TOML file at path, starting from Default and
// overlaying whatever keys the file sets.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
