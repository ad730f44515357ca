package bdd

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/cucumber/godog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standout/appbridge-testkit/internal/wiremocktest"
	"github.com/standout/appbridge-testkit/pkg/logging"
	"github.com/standout/appbridge-testkit/pkg/mockserver"
)

// countingOrchestrator reports how often the suite brought the server up
// and down.
type countingOrchestrator struct {
	available bool
	ups       int
	downs     int
}

func (o *countingOrchestrator) Available(context.Context) bool { return o.available }

func (o *countingOrchestrator) Up(context.Context) error {
	o.ups++
	return nil
}

func (o *countingOrchestrator) Down(context.Context) error {
	o.downs++
	return nil
}

func newTestSuite(t *testing.T, orch *countingOrchestrator) (*Suite, *wiremocktest.Server) {
	t.Helper()
	srv := wiremocktest.New(t)
	ctrl := mockserver.New(
		mockserver.WithBaseURL(srv.URL()),
		mockserver.WithOrchestrator(orch),
		mockserver.WithPollInterval(time.Millisecond),
		mockserver.WithMaxAttempts(3),
		mockserver.WithLogger(logging.ForTest(t)),
	)
	return NewSuite(ctrl, WithLogger(logging.ForTest(t))), srv
}

func TestFeatures(t *testing.T) {
	orch := &countingOrchestrator{available: true}
	suite, _ := newTestSuite(t, orch)

	status := suite.TestSuite("mock-server", &godog.Options{
		Format:   "progress",
		Paths:    []string{"testdata/features"},
		Output:   io.Discard,
		Strict:   true,
		TestingT: t,
	}).Run()

	assert.Equal(t, 0, status)
	assert.Equal(t, 1, orch.ups)
	assert.Equal(t, 1, orch.downs)
	assert.Equal(t, mockserver.StateStopped, suite.Controller().State())
}

func TestFeatures_ServerUnavailable(t *testing.T) {
	orch := &countingOrchestrator{available: false}
	suite, _ := newTestSuite(t, orch)

	status := godog.TestSuite{
		Name:                 "unavailable",
		TestSuiteInitializer: suite.InitializeTestSuite,
		ScenarioInitializer:  suite.InitializeScenario,
		Options: &godog.Options{
			Format: "progress",
			Output: io.Discard,
			FeatureContents: []godog.Feature{{
				Name: "needs server",
				Contents: []byte(`Feature: needs server
  Scenario: server required
    Given the mock server is running
`),
			}},
		},
	}.Run()

	assert.NotEqual(t, 0, status)
	assert.Zero(t, orch.ups)
}

func TestScenario_StepsWithoutRequest(t *testing.T) {
	s := &scenario{suite: &Suite{}}

	assert.ErrorIs(t, s.responseStatus(200), errNoResponse)
	assert.ErrorIs(t, s.responseHeader("X", "y"), errNoResponse)
	assert.ErrorIs(t, s.responseJSONAt("$.a", "b"), errNoResponse)
	assert.ErrorIs(t, s.responseSatisfies("true"), errNoResponse)
}

func TestScenario_Assertions(t *testing.T) {
	s := &scenario{last: &response{
		status:  200,
		headers: http.Header{"Content-Type": []string{"application/json"}},
		body:    []byte(`{"id": 1, "ok": true, "name": "Ada", "tags": null}`),
	}}

	require.NoError(t, s.responseStatus(200))
	assert.Error(t, s.responseStatus(500))

	require.NoError(t, s.responseHeader("content-type", "application/json"))
	assert.Error(t, s.responseHeader("Content-Type", "text/plain"))

	require.NoError(t, s.responseJSONAt("$.id", "1"))
	require.NoError(t, s.responseJSONAt("$.ok", "true"))
	require.NoError(t, s.responseJSONAt("$.tags", "null"))
	assert.Error(t, s.responseJSONAt("$.missing", "x"))
	assert.Error(t, s.responseJSONAt("$.name", "Grace"))

	require.NoError(t, s.responseSatisfies("status < 300 && body.ok"))
	err := s.responseSatisfies("body.name == 'Grace'")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "does not satisfy"))
	assert.Error(t, s.responseSatisfies("status +"))
}

func TestResponseEnv_NonJSONBody(t *testing.T) {
	r := &response{status: 404, headers: http.Header{}, body: []byte("Request was not matched")}
	env := r.env()

	assert.Equal(t, "Request was not matched", env["body"])
	assert.Equal(t, "Request was not matched", env["text"])
	assert.Equal(t, 404, env["status"])
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "Ada", formatValue("Ada"))
	assert.Equal(t, "1.5", formatValue(1.5))
	assert.Equal(t, "false", formatValue(false))
	assert.Equal(t, `{"a":1}`, formatValue(map[string]any{"a": float64(1)}))
}
