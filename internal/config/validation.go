package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}

// Validate checks the configuration for valid values.
func (c *Config) Validate() error {
	var errs ValidationErrors

	switch c.Compile.Keys {
	case "relaxed", "declared":
	default:
		errs = append(errs, ValidationError{Field: "compile.keys", Message: "must be relaxed or declared"})
	}
	if strings.Trim(c.Compile.Separator, "_-") != "" {
		errs = append(errs, ValidationError{Field: "compile.separator", Message: "must consist of '_' or '-'"})
	}
	if c.Compile.MaxDepth < 0 {
		errs = append(errs, ValidationError{Field: "compile.max_depth", Message: "must not be negative"})
	}

	switch c.Decode.Duplicates {
	case "error", "warn", "ignore":
	default:
		errs = append(errs, ValidationError{Field: "decode.duplicates", Message: "must be error, warn or ignore"})
	}

	if c.Server.MaxBodyBytes <= 0 {
		errs = append(errs, ValidationError{Field: "server.max_body_bytes", Message: "must be positive"})
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, ValidationError{Field: "logging.level", Message: "must be debug, info, warn or error"})
	}
	switch c.Logging.Format {
	case "json", "text":
	default:
		errs = append(errs, ValidationError{Field: "logging.format", Message: "must be json or text"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
