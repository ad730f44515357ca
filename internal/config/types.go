// Package config loads settings for the mock server harness and its CLI.
package config

import "time"

// Config holds harness settings. Values can come from several sources with
// the following precedence:
// 1. Command-line flags (highest priority)
// 2. Environment variables
// 3. Config file (.appbridge-test.yaml, or the path in APPBRIDGE_TEST_CONFIG)
// 4. Default values (lowest priority)
type Config struct {
	// Mock server
	BaseURL      string        `yaml:"baseUrl" json:"baseUrl"`
	MaxAttempts  int           `yaml:"maxAttempts" json:"maxAttempts"`
	PollInterval time.Duration `yaml:"pollInterval" json:"pollInterval"`
	StubsGlob    string        `yaml:"stubs,omitempty" json:"stubs,omitempty"`

	// Orchestration
	Orchestrator   string `yaml:"orchestrator" json:"orchestrator"`
	SetupScript    string `yaml:"setupScript" json:"setupScript"`
	ComposeFile    string `yaml:"composeFile" json:"composeFile"`
	ContainerImage string `yaml:"containerImage" json:"containerImage"`

	// Logging
	LogLevel  string `yaml:"logLevel" json:"logLevel"`
	LogFormat string `yaml:"logFormat" json:"logFormat"`

	// Path is the config file that was read, if any.
	Path string `yaml:"-" json:"-"`

	// Sources tracks where each value came from.
	Sources map[string]string `yaml:"-" json:"-"`
}

// Value sources.
const (
	SourceDefault = "default"
	SourceFile    = "file"
	SourceEnv     = "env"
	SourceFlag    = "flag"
)

// Source reports where the value for key came from.
func (c *Config) Source(key string) string {
	if s, ok := c.Sources[key]; ok {
		return s
	}
	return SourceDefault
}
