package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/reoring/jsongram/internal/config"
	"github.com/reoring/jsongram/internal/logger"
)

// Version information (set via ldflags at build time)
var (
	Version = "0.0.1-dev"
	Commit  = "unknown"
)

// CLI flags that override config file values
var (
	cfgFile   string
	logLevel  string
	logFormat string
	keys      string
	separator string
)

var rootCmd = &cobra.Command{
	Use:   "jsongram",
	Short: "Compile JSON shapes into GBNF grammars",
	Long: `jsongram infers the JSON shape of a type, a sample document or a shape file
and compiles it into a GBNF grammar that constrains generated text to that shape.

Features:
  - Grammars from sample JSON documents or YAML/JSON shape files
  - Relaxed (any order) or declared (fixed order) object keys
  - Grammar acceptance checks and shape-validated decoding
  - Decode method generation for Go structs
  - HTTP API with Prometheus metrics`,
	Version:      Version,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"Path to configuration file (defaults are used when empty)")

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Override log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "",
		"Override log format (json, text)")

	rootCmd.PersistentFlags().StringVar(&keys, "keys", "",
		"Override object key policy (relaxed, declared)")
	rootCmd.PersistentFlags().StringVar(&separator, "separator", "",
		"Override rule name separator (_ or -)")
}

// GetConfigFile returns the config file path
func GetConfigFile() string {
	return cfgFile
}

// setup loads configuration, applies CLI overrides and builds the logger.
func setup(name string) (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load(GetConfigFile())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg.ApplyOverrides(logLevel, logFormat, keys, separator)
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	log, err := logger.New(&cfg.Logging)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, log.WithCommand(name), nil
}
