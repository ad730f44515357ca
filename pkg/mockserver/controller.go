package mockserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/standout/appbridge-testkit/pkg/logging"
	"github.com/standout/appbridge-testkit/pkg/orchestrator"
	"github.com/standout/appbridge-testkit/pkg/wiremock"
)

// Defaults applied by New.
const (
	DefaultBaseURL      = "http://localhost:8080"
	DefaultMaxAttempts  = 30
	DefaultPollInterval = time.Second
)

// minProbeTimeout is the shortest time a single health probe may take.
const minProbeTimeout = 100 * time.Millisecond

// ErrStartupTimeout means the server did not report healthy within the
// attempt budget.
var ErrStartupTimeout = errors.New("mock server failed to start")

// errStopped is reported by Start after Stop.
var errStopped = errors.New("mock server controller is stopped")

// DefaultsFunc runs once each time the server first reports healthy.
type DefaultsFunc func(ctx context.Context, c *Controller) error

// Controller owns one mock server for a test run. It is not safe for
// concurrent use, except Endpoints, BaseURL and State which may be called
// from any goroutine.
type Controller struct {
	orch         orchestrator.Orchestrator
	httpClient   *http.Client
	maxAttempts  int
	pollInterval time.Duration
	stubsGlob    string
	defaults     DefaultsFunc
	logger       *slog.Logger

	mu        sync.Mutex
	baseURL   string
	client    *wiremock.Client
	state     State
	lastErr   error
	endpoints []EndpointConfig
}

// Option configures a Controller.
type Option func(*Controller)

// WithBaseURL sets the server address. Ignored when the orchestrator
// reports its own address after Up.
func WithBaseURL(baseURL string) Option {
	return func(c *Controller) {
		if baseURL != "" {
			c.baseURL = baseURL
		}
	}
}

// WithOrchestrator sets how the server is brought up and down. The
// default is the docker compose backend.
func WithOrchestrator(o orchestrator.Orchestrator) Option {
	return func(c *Controller) {
		c.orch = o
	}
}

// WithMaxAttempts sets how many health probes Start makes.
func WithMaxAttempts(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

// WithPollInterval sets the delay between health probes.
func WithPollInterval(d time.Duration) Option {
	return func(c *Controller) {
		if d >= 0 {
			c.pollInterval = d
		}
	}
}

// WithStubFiles registers the mappings in files matching glob once the
// server is healthy. ** matches across directories.
func WithStubFiles(glob string) Option {
	return func(c *Controller) {
		c.stubsGlob = glob
	}
}

// WithDefaultEndpoints installs a hook that registers suite-wide stubs once
// the server is healthy. It runs after WithStubFiles mappings.
func WithDefaultEndpoints(fn DefaultsFunc) Option {
	return func(c *Controller) {
		c.defaults = fn
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithHTTPClient sets the client used for admin API calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Controller) {
		c.httpClient = hc
	}
}

// New creates a Controller in StateUnstarted.
func New(opts ...Option) *Controller {
	c := &Controller{
		baseURL:      DefaultBaseURL,
		maxAttempts:  DefaultMaxAttempts,
		pollInterval: DefaultPollInterval,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.WithComponent(c.logger, "mockserver")
	if c.orch == nil {
		c.orch = orchestrator.NewCompose(orchestrator.Config{Logger: c.logger})
	}
	c.client = c.newClient(c.baseURL)
	return c
}

func (c *Controller) newClient(baseURL string) *wiremock.Client {
	var opts []wiremock.Option
	if c.httpClient != nil {
		opts = append(opts, wiremock.WithHTTPClient(c.httpClient))
	}
	return wiremock.New(baseURL, opts...)
}

// BaseURL returns the address stubs are served on.
func (c *Controller) BaseURL() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.client.BaseURL()
}

// Admin returns the admin API client bound to the current base URL.
func (c *Controller) Admin() *wiremock.Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.client
}

// State returns the lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Err returns why the last Start returned false, or nil.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

func (c *Controller) setState(s State, err error) {
	c.mu.Lock()
	c.state = s
	c.lastErr = err
	c.mu.Unlock()
}

// Start brings the server up and blocks until it is healthy, the attempt
// budget runs out, or ctx is done. It returns true only when the server
// answered /__admin/health with 200. Calling Start on a healthy
// controller returns true at once; after Stop it returns false.
func (c *Controller) Start(ctx context.Context) bool {
	switch c.State() {
	case StateHealthy:
		return true
	case StateStopped:
		c.logger.Warn("mock server controller already stopped")
		c.mu.Lock()
		c.lastErr = errStopped
		c.mu.Unlock()
		return false
	}

	c.setState(StateStarting, nil)
	c.logger.Info("starting mock server")

	if !c.orch.Available(ctx) {
		c.logger.Warn("container runtime not available, skipping mock server setup")
		c.setState(StateFailedToStart, orchestrator.ErrRuntimeUnavailable)
		return false
	}

	if err := c.orch.Up(ctx); err != nil {
		if errors.Is(err, orchestrator.ErrRuntimeUnavailable) {
			c.logger.Warn("container runtime not available, skipping mock server setup")
			c.setState(StateFailedToStart, err)
			return false
		}
		c.logger.Warn("mock server setup command failed, waiting for health anyway", "error", err)
	}

	if e, ok := c.orch.(orchestrator.Endpointer); ok {
		if url := e.BaseURL(); url != "" {
			c.mu.Lock()
			c.baseURL = url
			c.client = c.newClient(url)
			c.mu.Unlock()
		}
	}

	if err := c.waitHealthy(ctx); err != nil {
		c.setState(StateFailedToStart, err)
		return false
	}

	c.setState(StateHealthy, nil)
	c.setupDefaultEndpoints(ctx)
	return true
}

// waitHealthy probes the health endpoint up to maxAttempts times. Each
// probe is cut off after one poll interval (at least minProbeTimeout), so
// an unresponsive host cannot stretch the wait much past
// maxAttempts * pollInterval.
func (c *Controller) waitHealthy(ctx context.Context) error {
	client := c.Admin()

	probeTimeout := min(max(c.pollInterval, minProbeTimeout), wiremock.DefaultTimeout)

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		started := time.Now()
		probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
		res := client.Health(probeCtx)
		cancel()
		switch res.Status {
		case wiremock.HealthReady:
			c.logger.Info("mock server healthy", "base_url", client.BaseURL(), "attempts", attempt)
			return nil
		case wiremock.HealthError:
			c.logger.Warn("mock server health check failed", "base_url", client.BaseURL(), "error", res.Err)
			return fmt.Errorf("health check: %w", res.Err)
		}
		c.logger.Debug("mock server not ready", "attempt", attempt, "code", res.Code, "error", res.Err)

		if attempt == c.maxAttempts {
			break
		}
		// Attempts start pollInterval apart however long the probe took.
		timer := time.NewTimer(c.pollInterval - time.Since(started))
		select {
		case <-ctx.Done():
			timer.Stop()
			c.logger.Warn("mock server start canceled", "attempts", attempt)
			return ctx.Err()
		case <-timer.C:
		}
	}

	c.logger.Warn(fmt.Sprintf("mock server failed to start within %d attempts", c.maxAttempts))
	return fmt.Errorf("%w within %d attempts", ErrStartupTimeout, c.maxAttempts)
}

// setupDefaultEndpoints registers stub files and runs the defaults hook.
// Failures are logged; the server stays usable.
func (c *Controller) setupDefaultEndpoints(ctx context.Context) {
	if c.stubsGlob != "" {
		mappings, err := wiremock.LoadMappingFiles(c.stubsGlob)
		if err != nil {
			c.logger.Warn("failed to load stub files", "glob", c.stubsGlob, "error", err)
		}
		for i := range mappings {
			c.registerMapping(ctx, &mappings[i])
		}
	}
	if c.defaults != nil {
		if err := c.defaults(ctx, c); err != nil {
			c.logger.Warn("default endpoints setup failed", "error", err)
		}
	}
	c.logger.Info("mock endpoints configuration completed", "endpoints", len(c.Endpoints()))
}

func (c *Controller) registerMapping(ctx context.Context, m *wiremock.Mapping) {
	created, err := c.Admin().CreateMapping(ctx, m)
	if err != nil {
		c.logger.Warn("failed to configure mock endpoint", "endpoint", m.Request.String(), "error", err)
		return
	}
	c.record(endpointFromMapping(created))
	c.logger.Info("mock endpoint configured: " + m.Request.String())
}

// Stop tears the server down. Orchestrator errors are logged at debug
// level and otherwise ignored. The controller cannot be restarted.
func (c *Controller) Stop(ctx context.Context) {
	c.logger.Info("stopping mock server")
	if err := c.orch.Down(ctx); err != nil {
		c.logger.Debug("mock server teardown failed", "error", err)
	}
	c.setState(StateStopped, nil)
}

// MockEndpoint stubs method + exact url with a JSON body. It reports
// whether the server accepted the stub.
func (c *Controller) MockEndpoint(ctx context.Context, method Method, url string, body any, opts ...EndpointOption) bool {
	return c.mock(ctx, method, Exact(url), body, opts)
}

// MockEndpointPattern is MockEndpoint with a regular expression matched
// against the request URL.
func (c *Controller) MockEndpointPattern(ctx context.Context, method Method, urlPattern string, body any, opts ...EndpointOption) bool {
	return c.mock(ctx, method, Pattern(urlPattern), body, opts)
}

func (c *Controller) mock(ctx context.Context, method Method, match MatchRule, body any, opts []EndpointOption) bool {
	e, err := newEndpoint(method, match, body, opts...)
	if err != nil {
		c.logger.Warn("failed to configure mock endpoint", "endpoint", string(method)+" "+match.Value, "error", err)
		return false
	}
	return c.Register(ctx, e) == nil
}

// Register sends e to the admin API and records it on success. A missing
// ID is generated, a zero Status becomes 200 and the method is
// upper-cased. A rejection is returned
// as a *wiremock.StatusError.
func (c *Controller) Register(ctx context.Context, e EndpointConfig) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Status == 0 {
		e.Status = http.StatusOK
	}
	method, err := ParseMethod(string(e.Method))
	if err != nil {
		c.logger.Warn("failed to configure mock endpoint", "endpoint", e.String(), "error", err)
		return err
	}
	e.Method = method

	if c.hasRoute(e) {
		c.logger.Warn("mock endpoint registered twice", "endpoint", e.String())
	}

	if _, err := c.Admin().CreateMapping(ctx, e.Mapping()); err != nil {
		var statusErr *wiremock.StatusError
		if errors.As(err, &statusErr) {
			c.logger.Warn("failed to configure mock endpoint "+e.String(),
				"status", statusErr.StatusCode, "body", statusErr.Body)
		} else {
			c.logger.Warn("failed to configure mock endpoint "+e.String(), "error", err)
		}
		return err
	}

	c.record(e)
	c.logger.Info("mock endpoint configured: " + e.String())
	return nil
}

// ClearEndpoints deletes every mapping on the server and empties the local
// registry. The server's answer is not checked.
func (c *Controller) ClearEndpoints(ctx context.Context) {
	if err := c.Admin().ResetMappings(ctx); err != nil {
		c.logger.Debug("clearing mock endpoints failed", "error", err)
	}
	c.mu.Lock()
	c.endpoints = nil
	c.mu.Unlock()
}

// RemoveEndpoint deletes one stub by ID. It reports whether the server
// removed it.
func (c *Controller) RemoveEndpoint(ctx context.Context, id string) bool {
	err := c.Admin().DeleteMapping(ctx, id)
	if err != nil && !errors.Is(err, wiremock.ErrNotFound) {
		c.logger.Warn("failed to remove mock endpoint", "id", id, "error", err)
		return false
	}

	c.mu.Lock()
	for i, e := range c.endpoints {
		if e.ID == id {
			c.endpoints = append(c.endpoints[:i], c.endpoints[i+1:]...)
			break
		}
	}
	c.mu.Unlock()
	return err == nil
}

// Endpoints returns the registered stubs in registration order.
func (c *Controller) Endpoints() []EndpointConfig {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]EndpointConfig, len(c.endpoints))
	copy(out, c.endpoints)
	return out
}

func (c *Controller) record(e EndpointConfig) {
	c.mu.Lock()
	c.endpoints = append(c.endpoints, e)
	c.mu.Unlock()
}

func (c *Controller) hasRoute(e EndpointConfig) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, existing := range c.endpoints {
		if existing.sameRoute(e) {
			return true
		}
	}
	return false
}
