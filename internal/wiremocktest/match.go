package wiremocktest

import (
	"encoding/json"
	"io"
	"net/http"
	"reflect"
	"regexp"
	"strings"

	"github.com/standout/appbridge-testkit/pkg/httputil"
	"github.com/standout/appbridge-testkit/pkg/wiremock"
)

func matchValue(m wiremock.Matcher, actual string, present bool) bool {
	if !present {
		return false
	}
	if m.CaseInsensitive {
		actual = strings.ToLower(actual)
		m.EqualTo = strings.ToLower(m.EqualTo)
		m.Contains = strings.ToLower(m.Contains)
	}
	switch {
	case m.EqualTo != "":
		return actual == m.EqualTo
	case m.Contains != "":
		return strings.Contains(actual, m.Contains)
	case m.Matches != "":
		return fullMatch(m.Matches, actual)
	case m.DoesNotMatch != "":
		return !fullMatch(m.DoesNotMatch, actual)
	}
	return true
}

func matchBody(bp wiremock.BodyPattern, body string) bool {
	switch {
	case bp.EqualTo != "":
		return body == bp.EqualTo
	case bp.Contains != "":
		return strings.Contains(body, bp.Contains)
	case bp.Matches != "":
		return fullMatch(bp.Matches, body)
	case bp.EqualToJSON != nil:
		return jsonEqual(bp.EqualToJSON, body)
	}
	return true
}

func fullMatch(pattern, s string) bool {
	re, err := regexp.Compile("^(?:" + pattern + ")$")
	return err == nil && re.MatchString(s)
}

// jsonEqual compares body with expected, which is either a JSON string or an
// already-decoded value.
func jsonEqual(expected any, body string) bool {
	if s, ok := expected.(string); ok {
		if err := json.Unmarshal([]byte(s), &expected); err != nil {
			return false
		}
	}
	var actual any
	if err := json.Unmarshal([]byte(body), &actual); err != nil {
		return false
	}
	return reflect.DeepEqual(expected, actual)
}

func readRequestBody(r *http.Request) (string, error) {
	defer func() { _ = r.Body.Close() }()
	data, err := io.ReadAll(io.LimitReader(r.Body, httputil.MaxBodySize))
	return string(data), err
}
