package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// ErrRuntimeUnavailable is returned by Up when the container runtime is
// not installed or not reachable.
var ErrRuntimeUnavailable = errors.New("container runtime unavailable")

// Orchestrator starts and stops the mock server container.
type Orchestrator interface {
	// Available reports whether the container runtime can be used.
	Available(ctx context.Context) bool
	// Up starts the mock server. It does not wait for it to become healthy.
	Up(ctx context.Context) error
	// Down tears the mock server down.
	Down(ctx context.Context) error
}

// Endpointer is implemented by orchestrators that decide the address the
// server is reachable on, e.g. a randomly published host port.
type Endpointer interface {
	BaseURL() string
}

// Kind selects an Orchestrator backend.
type Kind string

const (
	KindCompose   Kind = "compose"
	KindContainer Kind = "container"
	// KindExternal leaves the server's lifecycle to someone else, such as a
	// CI service container.
	KindExternal Kind = "external"
)

// ParseKind converts a configuration string to a Kind. The empty string
// selects KindCompose.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case "", KindCompose:
		return KindCompose, nil
	case KindContainer:
		return KindContainer, nil
	case KindExternal:
		return KindExternal, nil
	default:
		return "", fmt.Errorf("unknown orchestrator %q (want %q, %q or %q)", s, KindCompose, KindContainer, KindExternal)
	}
}

// Defaults used when Config leaves a field empty.
const (
	DefaultSetupScript    = "./scripts/test-setup.sh"
	DefaultComposeFile    = "docker-compose.test.yml"
	DefaultImage          = "wiremock/wiremock:3.9.1"
	DefaultStartupTimeout = 60 * time.Second
)

// Config selects and configures a backend.
type Config struct {
	Kind Kind

	// SetupScript and ComposeFile are used by the compose backend.
	SetupScript string
	ComposeFile string
	// Runner executes commands for the compose backend. Defaults to an
	// ExecRunner that discards output.
	Runner Runner

	// Image and StartupTimeout are used by the container backend.
	Image          string
	StartupTimeout time.Duration

	Logger *slog.Logger
}

// New builds the backend named by cfg.Kind.
func New(cfg Config) (Orchestrator, error) {
	switch cfg.Kind {
	case "", KindCompose:
		return NewCompose(cfg), nil
	case KindContainer:
		return NewContainer(cfg), nil
	case KindExternal:
		return External{}, nil
	default:
		return nil, fmt.Errorf("unknown orchestrator %q", cfg.Kind)
	}
}
