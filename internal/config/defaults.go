package config

import (
	"github.com/standout/appbridge-testkit/pkg/mockserver"
	"github.com/standout/appbridge-testkit/pkg/orchestrator"
)

// DefaultLogLevel and DefaultLogFormat configure the CLI logger.
const (
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)

// fieldKeys lists every config key in declaration order.
var fieldKeys = []string{
	"baseUrl", "maxAttempts", "pollInterval", "stubs",
	"orchestrator", "setupScript", "composeFile", "containerImage",
	"logLevel", "logFormat",
}

// NewDefault creates a Config with default values.
func NewDefault() *Config {
	cfg := &Config{
		BaseURL:        mockserver.DefaultBaseURL,
		MaxAttempts:    mockserver.DefaultMaxAttempts,
		PollInterval:   mockserver.DefaultPollInterval,
		Orchestrator:   string(orchestrator.KindCompose),
		SetupScript:    orchestrator.DefaultSetupScript,
		ComposeFile:    orchestrator.DefaultComposeFile,
		ContainerImage: orchestrator.DefaultImage,
		LogLevel:       DefaultLogLevel,
		LogFormat:      DefaultLogFormat,
		Sources:        make(map[string]string, len(fieldKeys)),
	}
	for _, key := range fieldKeys {
		cfg.Sources[key] = SourceDefault
	}
	return cfg
}
