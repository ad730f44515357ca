package bdd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/cucumber/godog"
	"github.com/expr-lang/expr"

	"github.com/standout/appbridge-testkit/pkg/apptest"
	"github.com/standout/appbridge-testkit/pkg/httputil"
	"github.com/standout/appbridge-testkit/pkg/mockserver"
)

var errNoResponse = errors.New("no request has been sent in this scenario")

// response is the last HTTP response seen by a scenario.
type response struct {
	status  int
	headers http.Header
	body    []byte
}

// scenario holds per-scenario state.
type scenario struct {
	suite *Suite
	last  *response
}

func (s *scenario) register(sc *godog.ScenarioContext) {
	sc.Step(`^the mock server is running$`, s.mockServerIsRunning)
	sc.Step(`^the mock endpoint "([^"]*)" "([^"]*)" returns (\d+) with body:$`, s.mockEndpointWithBody)
	sc.Step(`^the mock endpoint pattern "([^"]*)" "([^"]*)" returns (\d+) with body:$`, s.mockPatternWithBody)
	sc.Step(`^the mock endpoint "([^"]*)" "([^"]*)" returns (\d+)$`, s.mockEndpoint)
	sc.Step(`^the mock endpoint "([^"]*)" "([^"]*)" should have been called (\d+) times?$`, s.calledTimes)
	sc.Step(`^I send a "([^"]*)" request to "([^"]*)"$`, s.sendRequest)
	sc.Step(`^I send a "([^"]*)" request to "([^"]*)" with body:$`, s.sendRequestWithBody)
	sc.Step(`^the response status should be (\d+)$`, s.responseStatus)
	sc.Step(`^the response header "([^"]*)" should be "([^"]*)"$`, s.responseHeader)
	sc.Step(`^the response JSON at "([^"]*)" should be "([^"]*)"$`, s.responseJSONAt)
	sc.Step(`^the response should satisfy "([^"]*)"$`, s.responseSatisfies)
}

func (s *scenario) mockServerIsRunning(ctx context.Context) error {
	ctrl := s.suite.ctrl
	if ctrl.State() == mockserver.StateHealthy || ctrl.Start(ctx) {
		return nil
	}
	return fmt.Errorf("mock server is not running: %v", ctrl.Err())
}

func (s *scenario) mockEndpointWithBody(ctx context.Context, method, path string, status int, body *godog.DocString) error {
	return s.stub(ctx, method, mockserver.Exact(path), status, body)
}

func (s *scenario) mockPatternWithBody(ctx context.Context, method, pattern string, status int, body *godog.DocString) error {
	return s.stub(ctx, method, mockserver.Pattern(pattern), status, body)
}

func (s *scenario) mockEndpoint(ctx context.Context, method, path string, status int) error {
	return s.stub(ctx, method, mockserver.Exact(path), status, nil)
}

func (s *scenario) stub(ctx context.Context, method string, match mockserver.MatchRule, status int, body *godog.DocString) error {
	m, err := mockserver.ParseMethod(method)
	if err != nil {
		return err
	}

	b := s.suite.ctrl.Stub(m, match.Value).WithStatus(status)
	if match.Kind == mockserver.MatchPattern {
		b.Pattern()
	}
	if body != nil {
		b.WithJSON(json.RawMessage(body.Content))
	}
	if err := b.Err(); err != nil {
		return err
	}
	return s.suite.ctrl.Register(ctx, b.Endpoint())
}

func (s *scenario) calledTimes(ctx context.Context, method, path string, want int) error {
	m, err := mockserver.ParseMethod(method)
	if err != nil {
		return err
	}
	got, err := s.suite.ctrl.CountCalls(ctx, m, path)
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("expected %s %s to be called %d times, but was called %d times", method, path, want, got)
	}
	return nil
}

func (s *scenario) sendRequest(ctx context.Context, method, path string) error {
	return s.send(ctx, method, path, nil)
}

func (s *scenario) sendRequestWithBody(ctx context.Context, method, path string, body *godog.DocString) error {
	return s.send(ctx, method, path, strings.NewReader(body.Content))
}

func (s *scenario) send(ctx context.Context, method, path string, body io.Reader) error {
	req, err := http.NewRequestWithContext(ctx, strings.ToUpper(method), s.suite.ctrl.BaseURL()+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.suite.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}

	data, err := httputil.ReadBody(resp)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	s.last = &response{status: resp.StatusCode, headers: resp.Header, body: data}
	return nil
}

func (s *scenario) responseStatus(want int) error {
	if s.last == nil {
		return errNoResponse
	}
	if s.last.status != want {
		return fmt.Errorf("expected status %d, got %d: %s", want, s.last.status, s.last.body)
	}
	return nil
}

func (s *scenario) responseHeader(name, want string) error {
	if s.last == nil {
		return errNoResponse
	}
	if got := s.last.headers.Get(name); got != want {
		return fmt.Errorf("expected header %s to be %q, got %q", name, want, got)
	}
	return nil
}

func (s *scenario) responseJSONAt(path, want string) error {
	if s.last == nil {
		return errNoResponse
	}
	value, ok, err := apptest.JSONPathFirst(s.last.body, path)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("nothing matched %s in %s", path, s.last.body)
	}
	if got := formatValue(value); got != want {
		return fmt.Errorf("expected %s to be %q, got %q", path, want, got)
	}
	return nil
}

func (s *scenario) responseSatisfies(expression string) error {
	if s.last == nil {
		return errNoResponse
	}
	env := s.last.env()

	program, err := expr.Compile(expression, expr.Env(env), expr.AsBool())
	if err != nil {
		return fmt.Errorf("compile %q: %w", expression, err)
	}
	result, err := expr.Run(program, env)
	if err != nil {
		return fmt.Errorf("eval %q: %w", expression, err)
	}
	if ok, _ := result.(bool); !ok {
		return fmt.Errorf("response does not satisfy %q (status %d, body %s)", expression, s.last.status, s.last.body)
	}
	return nil
}

// env exposes the response to expressions: status, headers (first value
// per canonical name), text (raw body) and body (decoded JSON, or the raw
// text when the body is not JSON).
func (r *response) env() map[string]any {
	headers := make(map[string]any, len(r.headers))
	for k := range r.headers {
		headers[k] = r.headers.Get(k)
	}

	var body any
	if err := json.Unmarshal(r.body, &body); err != nil {
		body = string(r.body)
	}

	return map[string]any{
		"status":  r.status,
		"headers": headers,
		"text":    string(r.body),
		"body":    body,
	}
}

// formatValue renders a JSON value the way a feature file writes it:
// strings bare, everything else as JSON.
func formatValue(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}
