package config

import (
	"io"
	"log/slog"

	"github.com/standout/appbridge-testkit/pkg/logging"
	"github.com/standout/appbridge-testkit/pkg/mockserver"
	"github.com/standout/appbridge-testkit/pkg/orchestrator"
)

// NewLogger builds the logger described by LogLevel and LogFormat.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	return logging.New(logging.Config{
		Level:  logging.ParseLevel(c.LogLevel),
		Format: logging.ParseFormat(c.LogFormat),
		Output: w,
	})
}

// NewOrchestrator builds the configured orchestration backend.
func (c *Config) NewOrchestrator(logger *slog.Logger) (orchestrator.Orchestrator, error) {
	kind, err := orchestrator.ParseKind(c.Orchestrator)
	if err != nil {
		return nil, c.fieldError("orchestrator", err.Error())
	}
	return orchestrator.New(orchestrator.Config{
		Kind:        kind,
		SetupScript: c.SetupScript,
		ComposeFile: c.ComposeFile,
		Image:       c.ContainerImage,
		Logger:      logger,
	})
}

// PollOptions returns the mockserver options that only reach the admin
// API: base URL, polling and logging. No orchestration, no stub files.
func (c *Config) PollOptions(logger *slog.Logger) []mockserver.Option {
	return []mockserver.Option{
		mockserver.WithBaseURL(c.BaseURL),
		mockserver.WithMaxAttempts(c.MaxAttempts),
		mockserver.WithPollInterval(c.PollInterval),
		mockserver.WithLogger(logger),
	}
}

// ControllerOptions returns mockserver options for this configuration.
// orch may be nil to skip orchestration settings.
func (c *Config) ControllerOptions(orch orchestrator.Orchestrator, logger *slog.Logger) []mockserver.Option {
	opts := c.PollOptions(logger)
	if orch != nil {
		opts = append(opts, mockserver.WithOrchestrator(orch))
	}
	if c.StubsGlob != "" {
		opts = append(opts, mockserver.WithStubFiles(c.StubsGlob))
	}
	return opts
}
