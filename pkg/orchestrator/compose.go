package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/standout/appbridge-testkit/pkg/logging"
)

var _ Orchestrator = (*Compose)(nil)

// Compose manages the mock server through the project's docker compose
// setup. Availability is probed with `docker --version`.
type Compose struct {
	setupScript string
	composeFile string
	runner      Runner
	logger      *slog.Logger
}

// NewCompose creates a compose backend from cfg, filling in defaults.
func NewCompose(cfg Config) *Compose {
	c := &Compose{
		setupScript: cfg.SetupScript,
		composeFile: cfg.ComposeFile,
		runner:      cfg.Runner,
		logger:      logging.WithComponent(cfg.Logger, "orchestrator"),
	}
	if c.setupScript == "" {
		c.setupScript = DefaultSetupScript
	}
	if c.composeFile == "" {
		c.composeFile = DefaultComposeFile
	}
	if c.runner == nil {
		c.runner = &ExecRunner{}
	}
	return c
}

// Available implements Orchestrator.
func (c *Compose) Available(ctx context.Context) bool {
	code, err := c.runner.Run(ctx, "docker", "--version")
	if err != nil {
		c.logger.Debug("docker probe failed", "error", err)
		return false
	}
	return code == 0
}

// Up runs `<setup script> start`.
func (c *Compose) Up(ctx context.Context) error {
	if !c.Available(ctx) {
		return ErrRuntimeUnavailable
	}
	c.logger.Info("starting mock server", "script", c.setupScript)
	return c.run(ctx, c.setupScript, "start")
}

// Down runs `docker compose -f <compose file> down`.
func (c *Compose) Down(ctx context.Context) error {
	c.logger.Info("stopping mock server", "compose_file", c.composeFile)
	return c.run(ctx, "docker", "compose", "-f", c.composeFile, "down")
}

func (c *Compose) run(ctx context.Context, name string, args ...string) error {
	code, err := c.runner.Run(ctx, name, args...)
	if err != nil {
		return err
	}
	if code != 0 {
		return fmt.Errorf("%s %s exited with status %d", name, strings.Join(args, " "), code)
	}
	return nil
}
