package mockserver

import (
	"context"
	"strings"
	"testing"

	"github.com/standout/appbridge-testkit/pkg/wiremock"
)

// Requests returns the server's request journal, newest first.
func (c *Controller) Requests(ctx context.Context) ([]wiremock.ServeEvent, error) {
	return c.Admin().Requests(ctx)
}

// ResetRequests clears the request journal.
func (c *Controller) ResetRequests(ctx context.Context) error {
	return c.Admin().ResetRequests(ctx)
}

// AssertCalled asserts that an endpoint was called at least once.
func (c *Controller) AssertCalled(t testing.TB, method Method, path string) {
	t.Helper()

	count, ok := c.countCalls(t, method, path)
	if ok && count == 0 {
		t.Errorf("expected %s %s to be called, but it was not called", method, path)
	}
}

// AssertCalledTimes asserts that an endpoint was called exactly n times.
func (c *Controller) AssertCalledTimes(t testing.TB, method Method, path string, times int) {
	t.Helper()

	count, ok := c.countCalls(t, method, path)
	if ok && count != times {
		t.Errorf("expected %s %s to be called %d times, but was called %d times",
			method, path, times, count)
	}
}

// AssertNotCalled asserts that an endpoint was not called.
func (c *Controller) AssertNotCalled(t testing.TB, method Method, path string) {
	t.Helper()

	count, ok := c.countCalls(t, method, path)
	if ok && count > 0 {
		t.Errorf("expected %s %s to not be called, but it was called %d times",
			method, path, count)
	}
}

// CountCalls counts journal entries for method and path. A path segment
// written as {name} matches any value; the query string is ignored unless
// path contains one.
func (c *Controller) CountCalls(ctx context.Context, method Method, path string) (int, error) {
	events, err := c.Requests(ctx)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, ev := range events {
		if method.Matches(ev.Request.Method) && matchesPath(requestTarget(ev.Request.URL, path), path) {
			count++
		}
	}
	return count, nil
}

// countCalls is CountCalls for the assertion helpers. ok is false when the
// journal could not be read; the failure has been reported on t.
func (c *Controller) countCalls(t testing.TB, method Method, path string) (count int, ok bool) {
	t.Helper()

	count, err := c.CountCalls(context.Background(), method, path)
	if err != nil {
		t.Errorf("failed to read request journal: %v", err)
		return 0, false
	}
	return count, true
}

// requestTarget strips the query string from url unless expected carries
// one.
func requestTarget(url, expected string) string {
	if strings.Contains(expected, "?") {
		return url
	}
	if i := strings.IndexByte(url, '?'); i >= 0 {
		return url[:i]
	}
	return url
}

// matchesPath reports whether actual matches expected, where a segment
// written as {name} in expected matches any single segment.
func matchesPath(actual, expected string) bool {
	if actual == expected {
		return true
	}

	actualParts := strings.Split(actual, "/")
	expectedParts := strings.Split(expected, "/")
	if len(actualParts) != len(expectedParts) {
		return false
	}

	for i, exp := range expectedParts {
		if strings.HasPrefix(exp, "{") && strings.HasSuffix(exp, "}") {
			continue
		}
		if exp != actualParts[i] {
			return false
		}
	}
	return true
}
