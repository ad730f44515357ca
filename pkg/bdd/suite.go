package bdd

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/cucumber/godog"

	"github.com/standout/appbridge-testkit/pkg/logging"
	"github.com/standout/appbridge-testkit/pkg/mockserver"
)

// Suite is the fixture shared by every scenario of a run.
type Suite struct {
	ctrl       *mockserver.Controller
	httpClient *http.Client
	logger     *slog.Logger
	extraSteps []func(*godog.ScenarioContext)
}

// Option configures a Suite.
type Option func(*Suite)

// WithHTTPClient sets the client used by the request steps.
func WithHTTPClient(hc *http.Client) Option {
	return func(s *Suite) {
		if hc != nil {
			s.httpClient = hc
		}
	}
}

// WithLogger sets the logger for suite hooks.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Suite) {
		s.logger = logger
	}
}

// WithSteps registers additional step definitions for every scenario.
func WithSteps(register func(*godog.ScenarioContext)) Option {
	return func(s *Suite) {
		s.extraSteps = append(s.extraSteps, register)
	}
}

// NewSuite creates a fixture around ctrl.
func NewSuite(ctrl *mockserver.Controller, opts ...Option) *Suite {
	s := &Suite{
		ctrl:       ctrl,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.WithComponent(s.logger, "bdd")
	return s
}

// Controller returns the mock server controller.
func (s *Suite) Controller() *mockserver.Controller {
	return s.ctrl
}

// InitializeTestSuite starts the mock server before the run and stops it
// afterwards. A server that fails to start is logged; scenarios that need
// it fail on the "the mock server is running" step.
func (s *Suite) InitializeTestSuite(ctx *godog.TestSuiteContext) {
	ctx.BeforeSuite(func() {
		if !s.ctrl.Start(context.Background()) {
			s.logger.Warn("mock server unavailable, dependent scenarios will fail", "error", s.ctrl.Err())
		}
	})
	ctx.AfterSuite(func() {
		s.ctrl.Stop(context.Background())
	})
}

// InitializeScenario resets the server before each scenario and registers
// the step library.
func (s *Suite) InitializeScenario(sc *godog.ScenarioContext) {
	state := &scenario{suite: s}

	sc.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		if s.ctrl.State() == mockserver.StateHealthy {
			s.ctrl.ClearEndpoints(ctx)
			if err := s.ctrl.ResetRequests(ctx); err != nil {
				s.logger.Debug("failed to reset request journal", "error", err)
			}
		}
		return ctx, nil
	})

	state.register(sc)
	for _, register := range s.extraSteps {
		register(sc)
	}
}

// TestSuite assembles a godog.TestSuite running this fixture.
func (s *Suite) TestSuite(name string, opts *godog.Options) godog.TestSuite {
	return godog.TestSuite{
		Name:                 name,
		TestSuiteInitializer: s.InitializeTestSuite,
		ScenarioInitializer:  s.InitializeScenario,
		Options:              opts,
	}
}
