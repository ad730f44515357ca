package mockserver

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standout/appbridge-testkit/internal/wiremocktest"
	"github.com/standout/appbridge-testkit/pkg/logging"
	"github.com/standout/appbridge-testkit/pkg/orchestrator"
	"github.com/standout/appbridge-testkit/pkg/wiremock"
)

// fakeOrchestrator stands in for docker compose.
type fakeOrchestrator struct {
	mu          sync.Mutex
	unavailable bool
	upErr       error
	downErr     error
	ups         int
	downs       int
}

func (f *fakeOrchestrator) Available(context.Context) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.unavailable
}

func (f *fakeOrchestrator) Up(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ups++
	return f.upErr
}

func (f *fakeOrchestrator) Down(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.downs++
	return f.downErr
}

func (f *fakeOrchestrator) counts() (ups, downs int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ups, f.downs
}

// endpointOrchestrator publishes the server on an address of its choosing.
type endpointOrchestrator struct {
	fakeOrchestrator
	url string
}

func (e *endpointOrchestrator) BaseURL() string { return e.url }

func newController(t *testing.T, srv *wiremocktest.Server, orch orchestrator.Orchestrator, opts ...Option) *Controller {
	t.Helper()
	base := []Option{
		WithBaseURL(srv.URL()),
		WithOrchestrator(orch),
		WithPollInterval(time.Millisecond),
		WithLogger(logging.ForTest(t)),
	}
	return New(append(base, opts...)...)
}

func startedController(t *testing.T, opts ...wiremocktest.Option) (*Controller, *wiremocktest.Server) {
	t.Helper()
	srv := wiremocktest.New(t, opts...)
	ctrl := newController(t, srv, &fakeOrchestrator{})
	require.True(t, ctrl.Start(context.Background()))
	return ctrl, srv
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestNew_Defaults(t *testing.T) {
	ctrl := New()

	assert.Equal(t, DefaultBaseURL, ctrl.BaseURL())
	assert.Equal(t, DefaultMaxAttempts, ctrl.maxAttempts)
	assert.Equal(t, DefaultPollInterval, ctrl.pollInterval)
	assert.Equal(t, StateUnstarted, ctrl.State())
	assert.IsType(t, &orchestrator.Compose{}, ctrl.orch)
	assert.Empty(t, ctrl.Endpoints())
}

func TestController_MockEndpointServesBody(t *testing.T) {
	ctrl, _ := startedController(t)
	ctx := context.Background()

	ok := ctrl.MockEndpoint(ctx, MethodGet, "/users/1", map[string]any{"id": 1, "name": "Ada"})
	require.True(t, ok)

	resp, body := get(t, ctrl.BaseURL()+"/users/1")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.JSONEq(t, `{"id":1,"name":"Ada"}`, body)

	endpoints := ctrl.Endpoints()
	require.Len(t, endpoints, 1)
	assert.Equal(t, MethodGet, endpoints[0].Method)
	assert.Equal(t, Exact("/users/1"), endpoints[0].Match)
	assert.NotEmpty(t, endpoints[0].ID)
}

func TestController_ClearEndpoints(t *testing.T) {
	ctrl, srv := startedController(t)
	ctx := context.Background()

	require.True(t, ctrl.MockEndpoint(ctx, MethodGet, "/users/1", map[string]any{"id": 1}))
	ctrl.ClearEndpoints(ctx)

	resp, _ := get(t, ctrl.BaseURL()+"/users/1")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Empty(t, ctrl.Endpoints())
	assert.Empty(t, srv.Mappings())
}

func TestController_ClearEndpointsTwice(t *testing.T) {
	ctrl, srv := startedController(t)
	ctx := context.Background()

	ctrl.ClearEndpoints(ctx)
	ctrl.ClearEndpoints(ctx)

	assert.Empty(t, ctrl.Endpoints())
	assert.Equal(t, 2, countCalls(srv.AdminCalls(), "DELETE /__admin/mappings"))
}

func TestController_StartRuntimeUnavailable(t *testing.T) {
	srv := wiremocktest.New(t)
	orch := &fakeOrchestrator{unavailable: true}
	ctrl := newController(t, srv, orch)

	assert.False(t, ctrl.Start(context.Background()))
	assert.Equal(t, StateFailedToStart, ctrl.State())
	assert.ErrorIs(t, ctrl.Err(), orchestrator.ErrRuntimeUnavailable)
	assert.Zero(t, srv.HealthChecks())

	ups, _ := orch.counts()
	assert.Zero(t, ups)
}

func TestController_StartNeverHealthy(t *testing.T) {
	srv := wiremocktest.New(t, wiremocktest.WithNeverReady())
	ctrl := newController(t, srv, &fakeOrchestrator{}, WithMaxAttempts(5))

	assert.False(t, ctrl.Start(context.Background()))
	assert.Equal(t, 5, srv.HealthChecks())
	assert.Equal(t, StateFailedToStart, ctrl.State())
	assert.ErrorIs(t, ctrl.Err(), ErrStartupTimeout)
}

func TestController_StartBecomesHealthy(t *testing.T) {
	srv := wiremocktest.New(t, wiremocktest.WithReadyAfter(2))
	ctrl := newController(t, srv, &fakeOrchestrator{})

	assert.True(t, ctrl.Start(context.Background()))
	assert.Equal(t, 3, srv.HealthChecks())
	assert.Equal(t, StateHealthy, ctrl.State())
	assert.NoError(t, ctrl.Err())
}

func TestController_StartRetryAfterFailure(t *testing.T) {
	srv := wiremocktest.New(t, wiremocktest.WithReadyAfter(3))
	ctrl := newController(t, srv, &fakeOrchestrator{}, WithMaxAttempts(2))

	assert.False(t, ctrl.Start(context.Background()))
	assert.True(t, ctrl.Start(context.Background()))
	assert.Equal(t, StateHealthy, ctrl.State())
}

func TestController_StartIdempotent(t *testing.T) {
	srv := wiremocktest.New(t)
	orch := &fakeOrchestrator{}
	ctrl := newController(t, srv, orch)

	require.True(t, ctrl.Start(context.Background()))
	checks := srv.HealthChecks()

	assert.True(t, ctrl.Start(context.Background()))
	assert.Equal(t, checks, srv.HealthChecks())
	ups, _ := orch.counts()
	assert.Equal(t, 1, ups)
}

func TestController_StartUpFailureStillPolls(t *testing.T) {
	srv := wiremocktest.New(t)
	ctrl := newController(t, srv, &fakeOrchestrator{upErr: errors.New("exit status 1")})

	assert.True(t, ctrl.Start(context.Background()))
	assert.Equal(t, 1, srv.HealthChecks())
}

func TestController_StartUsesOrchestratorAddress(t *testing.T) {
	srv := wiremocktest.New(t)
	orch := &endpointOrchestrator{url: srv.URL()}
	ctrl := New(
		WithBaseURL("http://127.0.0.1:1"),
		WithOrchestrator(orch),
		WithPollInterval(time.Millisecond),
	)

	require.True(t, ctrl.Start(context.Background()))
	assert.Equal(t, srv.URL(), ctrl.BaseURL())
}

func TestController_StartMalformedURLFailsFast(t *testing.T) {
	ctrl := New(
		WithBaseURL("localhost:8080"),
		WithOrchestrator(&fakeOrchestrator{}),
		WithPollInterval(time.Second),
	)

	started := time.Now()
	assert.False(t, ctrl.Start(context.Background()))
	assert.Less(t, time.Since(started), 500*time.Millisecond)
	assert.Error(t, ctrl.Err())
	assert.NotErrorIs(t, ctrl.Err(), ErrStartupTimeout)
}

func TestController_StartCanceled(t *testing.T) {
	srv := wiremocktest.New(t, wiremocktest.WithNeverReady())
	ctrl := newController(t, srv, &fakeOrchestrator{},
		WithMaxAttempts(10000), WithPollInterval(5*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(30*time.Millisecond, cancel)

	assert.False(t, ctrl.Start(ctx))
	assert.ErrorIs(t, ctrl.Err(), context.Canceled)
	assert.Equal(t, StateFailedToStart, ctrl.State())
}

func TestController_Stop(t *testing.T) {
	srv := wiremocktest.New(t)
	orch := &fakeOrchestrator{downErr: errors.New("compose file missing")}
	ctrl := newController(t, srv, orch)
	require.True(t, ctrl.Start(context.Background()))

	ctrl.Stop(context.Background())
	assert.Equal(t, StateStopped, ctrl.State())

	_, downs := orch.counts()
	assert.Equal(t, 1, downs)

	assert.False(t, ctrl.Start(context.Background()))
	assert.Equal(t, StateStopped, ctrl.State())
}

func TestController_StopWithoutStart(t *testing.T) {
	orch := &fakeOrchestrator{}
	ctrl := New(WithOrchestrator(orch))

	ctrl.Stop(context.Background())

	_, downs := orch.counts()
	assert.Equal(t, 1, downs)
	assert.Equal(t, StateStopped, ctrl.State())
}

func TestController_DuplicateEndpoints(t *testing.T) {
	ctrl, srv := startedController(t)
	ctx := context.Background()

	require.True(t, ctrl.MockEndpoint(ctx, MethodGet, "/users/1", map[string]any{"v": 1}))
	require.True(t, ctrl.MockEndpoint(ctx, MethodGet, "/users/1", map[string]any{"v": 2}))

	assert.Len(t, ctrl.Endpoints(), 2)
	assert.Len(t, srv.Mappings(), 2)

	_, body := get(t, ctrl.BaseURL()+"/users/1")
	assert.JSONEq(t, `{"v":2}`, body)
}

func TestController_RegistrationRejected(t *testing.T) {
	srv := wiremocktest.New(t, wiremocktest.WithRejectMappings(http.StatusInternalServerError))
	ctrl := newController(t, srv, &fakeOrchestrator{})
	require.True(t, ctrl.Start(context.Background()))
	ctx := context.Background()

	assert.False(t, ctrl.MockEndpoint(ctx, MethodGet, "/users/1", map[string]any{"id": 1}))
	assert.Empty(t, ctrl.Endpoints())

	err := ctrl.Register(ctx, EndpointConfig{Method: MethodGet, Match: Exact("/users/1")})
	var statusErr *wiremock.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
}

func TestController_RegisterInvalidMethod(t *testing.T) {
	ctrl, srv := startedController(t)

	err := ctrl.Register(context.Background(), EndpointConfig{Method: "BREW", Match: Exact("/coffee")})
	assert.Error(t, err)
	assert.Empty(t, srv.Mappings())
}

func TestController_HeaderOverride(t *testing.T) {
	ctrl, srv := startedController(t)
	ctx := context.Background()

	require.True(t, ctrl.MockEndpoint(ctx, MethodGet, "/report", "plain",
		WithStatus(http.StatusAccepted),
		WithHeaders(map[string]string{"content-type": "text/plain", "X-Trace": "abc"})))

	mappings := srv.Mappings()
	require.Len(t, mappings, 1)
	assert.Equal(t, map[string]string{"content-type": "text/plain", "X-Trace": "abc"}, mappings[0].Response.Headers.Flatten())
	assert.Equal(t, http.StatusAccepted, mappings[0].Response.Status)

	resp, _ := get(t, ctrl.BaseURL()+"/report")
	assert.Equal(t, "text/plain", resp.Header.Get("Content-Type"))
}

func TestController_MockEndpointPattern(t *testing.T) {
	ctrl, srv := startedController(t)
	ctx := context.Background()

	require.True(t, ctrl.MockEndpointPattern(ctx, MethodGet, "/orders/[0-9]+", map[string]any{"ok": true}))

	resp, _ := get(t, ctrl.BaseURL()+"/orders/42")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = get(t, ctrl.BaseURL()+"/orders/abc")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	assert.Equal(t, "/orders/[0-9]+", srv.Mappings()[0].Request.URLPattern)
	assert.Empty(t, srv.Mappings()[0].Request.URL)
}

func TestController_MockEndpointInvalidBody(t *testing.T) {
	ctrl, srv := startedController(t)

	assert.False(t, ctrl.MockEndpoint(context.Background(), MethodGet, "/x", make(chan int)))
	assert.Empty(t, srv.Mappings())
}

func TestController_RemoveEndpoint(t *testing.T) {
	ctrl, srv := startedController(t)
	ctx := context.Background()

	require.True(t, ctrl.MockEndpoint(ctx, MethodGet, "/a", nil))
	require.True(t, ctrl.MockEndpoint(ctx, MethodGet, "/b", nil))
	id := ctrl.Endpoints()[0].ID

	assert.True(t, ctrl.RemoveEndpoint(ctx, id))
	require.Len(t, ctrl.Endpoints(), 1)
	assert.Equal(t, "/b", ctrl.Endpoints()[0].Match.Value)
	assert.Len(t, srv.Mappings(), 1)

	assert.False(t, ctrl.RemoveEndpoint(ctx, id))
}

func TestController_StubFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "users.json"), []byte(`{
		"request": {"method": "GET", "url": "/users"},
		"response": {"status": 200, "jsonBody": [{"id": 1}]}
	}`), 0o644))

	srv := wiremocktest.New(t)
	ctrl := newController(t, srv, &fakeOrchestrator{}, WithStubFiles(filepath.Join(dir, "*.json")))
	require.True(t, ctrl.Start(context.Background()))

	endpoints := ctrl.Endpoints()
	require.Len(t, endpoints, 1)
	assert.Equal(t, MethodGet, endpoints[0].Method)
	assert.Equal(t, `[{"id":1}]`, endpoints[0].Body)

	_, body := get(t, ctrl.BaseURL()+"/users")
	assert.JSONEq(t, `[{"id":1}]`, body)
}

func TestController_DefaultEndpointsHook(t *testing.T) {
	srv := wiremocktest.New(t)
	calls := 0
	ctrl := newController(t, srv, &fakeOrchestrator{}, WithDefaultEndpoints(func(ctx context.Context, c *Controller) error {
		calls++
		c.MockEndpoint(ctx, MethodGet, "/ping", map[string]string{"pong": "ok"})
		return errors.New("partial setup")
	}))

	assert.True(t, ctrl.Start(context.Background()))
	assert.True(t, ctrl.Start(context.Background()))
	assert.Equal(t, 1, calls)
	assert.Len(t, ctrl.Endpoints(), 1)
}

func TestController_EndpointsIsCopy(t *testing.T) {
	ctrl, _ := startedController(t)
	require.True(t, ctrl.MockEndpoint(context.Background(), MethodGet, "/a", nil))

	endpoints := ctrl.Endpoints()
	endpoints[0].Match = Exact("/changed")

	assert.Equal(t, "/a", ctrl.Endpoints()[0].Match.Value)
}

func countCalls(calls []string, want string) int {
	n := 0
	for _, c := range calls {
		if c == want {
			n++
		}
	}
	return n
}

func TestController_MockEndpointUppercasesMethod(t *testing.T) {
	ctrl, srv := startedController(t)
	ctx := context.Background()

	require.True(t, ctrl.MockEndpoint(ctx, "get", "/users/1", map[string]any{"id": 1}))

	mappings := srv.Mappings()
	require.Len(t, mappings, 1)
	assert.Equal(t, "GET", mappings[0].Request.Method)

	endpoints := ctrl.Endpoints()
	require.Len(t, endpoints, 1)
	assert.Equal(t, MethodGet, endpoints[0].Method)
	assert.True(t, ctrl.hasRoute(EndpointConfig{Method: MethodGet, Match: Exact("/users/1")}))
}

func TestController_StartConnectionRefused(t *testing.T) {
	const interval = 20 * time.Millisecond
	ctrl := New(
		WithBaseURL("http://127.0.0.1:1"),
		WithOrchestrator(&fakeOrchestrator{}),
		WithMaxAttempts(3),
		WithPollInterval(interval),
		WithLogger(logging.ForTest(t)),
	)

	started := time.Now()
	assert.False(t, ctrl.Start(context.Background()))
	elapsed := time.Since(started)

	assert.ErrorIs(t, ctrl.Err(), ErrStartupTimeout)
	assert.Equal(t, StateFailedToStart, ctrl.State())
	assert.GreaterOrEqual(t, elapsed, 2*interval)
	assert.Less(t, elapsed, 2*time.Second)
}

func TestController_StartUnresponsiveHost(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	ctrl := New(
		WithBaseURL(srv.URL),
		WithOrchestrator(&fakeOrchestrator{}),
		WithMaxAttempts(3),
		WithPollInterval(100*time.Millisecond),
		WithLogger(logging.ForTest(t)),
	)

	started := time.Now()
	assert.False(t, ctrl.Start(context.Background()))
	assert.ErrorIs(t, ctrl.Err(), ErrStartupTimeout)
	assert.Less(t, time.Since(started), 2*time.Second)
}

func TestController_CountCallsRepeatedHeaders(t *testing.T) {
	ctrl, _ := startedController(t)
	ctx := context.Background()
	require.True(t, ctrl.MockEndpoint(ctx, MethodGet, "/items", []int{1}))

	req, err := http.NewRequest(http.MethodGet, ctrl.BaseURL()+"/items", nil)
	require.NoError(t, err)
	req.Header.Add("Accept", "application/json")
	req.Header.Add("Accept", "text/plain")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	n, err := ctrl.CountCalls(ctx, MethodGet, "/items")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	events, err := ctrl.Requests(ctx)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "application/json, text/plain", events[0].Request.Headers.Get("Accept"))
}
