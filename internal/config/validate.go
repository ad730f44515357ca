package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/standout/appbridge-testkit/pkg/orchestrator"
)

// ConfigError is a problem with a config file.
type ConfigError struct {
	Path    string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Path + ": " + e.Message
}

// FieldError is an invalid value for one setting.
type FieldError struct {
	Field   string
	Source  string
	Message string
}

func (e *FieldError) Error() string {
	if e.Source != "" && e.Source != SourceDefault {
		return fmt.Sprintf("%s (from %s): %s", e.Field, e.Source, e.Message)
	}
	return e.Field + ": " + e.Message
}

var validLogLevels = map[string]bool{"debug": true, "info": true, "warn": true, "warning": true, "error": true}

// Validate checks every field and returns the first invalid one as a
// *FieldError.
func (c *Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return c.fieldError("baseUrl", fmt.Sprintf("%q is not an http(s) URL", c.BaseURL))
	}
	if c.MaxAttempts < 1 {
		return c.fieldError("maxAttempts", fmt.Sprintf("must be at least 1, got %d", c.MaxAttempts))
	}
	if c.PollInterval <= 0 {
		return c.fieldError("pollInterval", fmt.Sprintf("must be positive, got %s", c.PollInterval))
	}
	if _, err := orchestrator.ParseKind(c.Orchestrator); err != nil {
		return c.fieldError("orchestrator", err.Error())
	}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		return c.fieldError("logLevel", fmt.Sprintf("unknown level %q", c.LogLevel))
	}
	if f := strings.ToLower(c.LogFormat); f != "text" && f != "json" {
		return c.fieldError("logFormat", fmt.Sprintf("unknown format %q", c.LogFormat))
	}
	return nil
}

func (c *Config) fieldError(key, msg string) error {
	return &FieldError{Field: key, Source: c.Source(key), Message: msg}
}
