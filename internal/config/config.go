// Package config provides configuration structures and loading for jsongram.
package config

import (
	"github.com/reoring/jsongram"
	"github.com/reoring/jsongram/jsondec"
)

// Config represents the complete application configuration.
type Config struct {
	Compile CompileConfig `yaml:"compile" mapstructure:"compile"`
	Decode  DecodeConfig  `yaml:"decode" mapstructure:"decode"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`
}

// CompileConfig holds grammar generation defaults.
type CompileConfig struct {
	RootRule  string `yaml:"root_rule" mapstructure:"root_rule"`
	Separator string `yaml:"separator" mapstructure:"separator"` // "_" or "-"
	Keys      string `yaml:"keys" mapstructure:"keys"`           // relaxed or declared
	MaxDepth  int    `yaml:"max_depth" mapstructure:"max_depth"`
}

// DecodeConfig holds jsondec defaults used by check.
type DecodeConfig struct {
	Duplicates string `yaml:"duplicates" mapstructure:"duplicates"` // error, warn or ignore
	MaxDepth   int    `yaml:"max_depth" mapstructure:"max_depth"`
	MaxBytes   int64  `yaml:"max_bytes" mapstructure:"max_bytes"`
}

// ServerConfig represents HTTP server settings.
type ServerConfig struct {
	Addr            string `yaml:"addr" mapstructure:"addr"`
	MaxBodyBytes    int64  `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	ReadTimeoutSec  int    `yaml:"read_timeout_sec" mapstructure:"read_timeout_sec"`
	WriteTimeoutSec int    `yaml:"write_timeout_sec" mapstructure:"write_timeout_sec"`
	Metrics         bool   `yaml:"metrics" mapstructure:"metrics"`
}

// LoggingConfig represents logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // json or text
	Output string `yaml:"output" mapstructure:"output"` // stdout, stderr, or file path
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		Compile: CompileConfig{
			RootRule:  "root",
			Separator: "_",
			Keys:      "relaxed",
			MaxDepth:  jsongram.DefaultMaxDepth,
		},
		Decode: DecodeConfig{
			Duplicates: "error",
			MaxDepth:   512,
		},
		Server: ServerConfig{
			Addr:            ":8080",
			MaxBodyBytes:    1 << 20,
			ReadTimeoutSec:  10,
			WriteTimeoutSec: 10,
			Metrics:         true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
	}
}

// Options maps the compile section onto jsongram.CompileOpt. name is the
// rule hint for the top-level value and may be empty.
func (c CompileConfig) Options(name string) jsongram.CompileOpt {
	opt := jsongram.CompileOpt{
		Name:      name,
		RootRule:  c.RootRule,
		Separator: c.Separator,
		MaxDepth:  c.MaxDepth,
	}
	if c.Keys == "declared" {
		opt.Keys = jsongram.KeysDeclared
	}
	return opt
}

// Options maps the decode section onto jsondec options.
func (d DecodeConfig) Options() []jsondec.Option {
	dup := jsondec.DuplicatesError
	switch d.Duplicates {
	case "warn":
		dup = jsondec.DuplicatesWarn
	case "ignore":
		dup = jsondec.DuplicatesIgnore
	}
	return []jsondec.Option{
		jsondec.WithDuplicates(dup),
		jsondec.WithMaxDepth(d.MaxDepth),
		jsondec.WithMaxBytes(d.MaxBytes),
	}
}
