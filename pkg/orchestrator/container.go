package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/standout/appbridge-testkit/pkg/logging"
)

const wiremockPort = "8080/tcp"

var (
	_ Orchestrator = (*Container)(nil)
	_ Endpointer   = (*Container)(nil)
)

// Container runs the WireMock image with testcontainers-go. The server is
// published on a random host port, reported by BaseURL once Up succeeds.
type Container struct {
	image          string
	startupTimeout time.Duration
	logger         *slog.Logger

	mu        sync.Mutex
	container testcontainers.Container
	baseURL   string
}

// NewContainer creates a container backend from cfg, filling in defaults.
func NewContainer(cfg Config) *Container {
	c := &Container{
		image:          cfg.Image,
		startupTimeout: cfg.StartupTimeout,
		logger:         logging.WithComponent(cfg.Logger, "orchestrator"),
	}
	if c.image == "" {
		c.image = DefaultImage
	}
	if c.startupTimeout <= 0 {
		c.startupTimeout = DefaultStartupTimeout
	}
	return c
}

// Available reports whether a Docker-compatible provider answers.
func (c *Container) Available(ctx context.Context) bool {
	provider, err := testcontainers.NewDockerProvider()
	if err != nil {
		c.logger.Debug("container provider unavailable", "error", err)
		return false
	}
	defer provider.Close()

	if err := provider.Health(ctx); err != nil {
		c.logger.Debug("container provider unhealthy", "error", err)
		return false
	}
	return true
}

// Up starts the image and waits until /__admin/health answers 200 on the
// published port. Calling Up while a container is running is a no-op.
func (c *Container) Up(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.container != nil {
		return nil
	}
	if !c.Available(ctx) {
		return ErrRuntimeUnavailable
	}

	c.logger.Info("starting mock server container", "image", c.image)
	req := testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        c.image,
			ExposedPorts: []string{wiremockPort},
			WaitingFor: wait.ForHTTP("/__admin/health").
				WithPort(wiremockPort).
				WithStartupTimeout(c.startupTimeout),
		},
		Started: true,
	}
	ctr, err := testcontainers.GenericContainer(ctx, req)
	if err != nil {
		if ctr != nil {
			_ = ctr.Terminate(context.WithoutCancel(ctx))
		}
		return fmt.Errorf("failed to start %s: %w", c.image, err)
	}

	host, err := ctr.Host(ctx)
	if err != nil {
		_ = ctr.Terminate(context.WithoutCancel(ctx))
		return fmt.Errorf("failed to resolve container host: %w", err)
	}
	port, err := ctr.MappedPort(ctx, wiremockPort)
	if err != nil {
		_ = ctr.Terminate(context.WithoutCancel(ctx))
		return fmt.Errorf("failed to resolve mapped port: %w", err)
	}

	c.container = ctr
	c.baseURL = "http://" + net.JoinHostPort(host, port.Port())
	c.logger.Info("mock server container started", "base_url", c.baseURL)
	return nil
}

// Down terminates the container. It is a no-op if Up never succeeded.
func (c *Container) Down(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.container == nil {
		return nil
	}
	c.logger.Info("stopping mock server container")
	err := c.container.Terminate(ctx)
	c.container = nil
	c.baseURL = ""
	if err != nil {
		return fmt.Errorf("failed to terminate container: %w", err)
	}
	return nil
}

// BaseURL returns the published server address, or "" before Up.
func (c *Container) BaseURL() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.baseURL
}
