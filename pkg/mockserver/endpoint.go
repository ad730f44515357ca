package mockserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/standout/appbridge-testkit/pkg/wiremock"
)

// Method is an HTTP verb a stub matches. MethodAny matches every verb.
type Method string

const (
	MethodGet     Method = http.MethodGet
	MethodPost    Method = http.MethodPost
	MethodPut     Method = http.MethodPut
	MethodPatch   Method = http.MethodPatch
	MethodDelete  Method = http.MethodDelete
	MethodHead    Method = http.MethodHead
	MethodOptions Method = http.MethodOptions
	MethodAny     Method = "ANY"
)

var methods = []Method{MethodGet, MethodPost, MethodPut, MethodPatch, MethodDelete, MethodHead, MethodOptions, MethodAny}

// ParseMethod upper-cases s and checks it against the supported verbs.
func ParseMethod(s string) (Method, error) {
	m := Method(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range methods {
		if m == known {
			return m, nil
		}
	}
	return "", fmt.Errorf("unsupported HTTP method %q", s)
}

// Matches reports whether a request with the given method hits a stub
// registered for m.
func (m Method) Matches(method string) bool {
	return m == MethodAny || strings.EqualFold(string(m), method)
}

// MatchKind says how MatchRule.Value is compared with a request URL.
type MatchKind int

const (
	// MatchExact compares the full URL, query string included.
	MatchExact MatchKind = iota
	// MatchPattern treats the value as a regular expression over the URL.
	MatchPattern
)

func (k MatchKind) String() string {
	if k == MatchPattern {
		return "pattern"
	}
	return "exact"
}

// MatchRule selects the request URLs a stub answers.
type MatchRule struct {
	Kind  MatchKind
	Value string
}

// Exact matches one URL.
func Exact(url string) MatchRule {
	return MatchRule{Kind: MatchExact, Value: url}
}

// Pattern matches URLs against a regular expression.
func Pattern(expr string) MatchRule {
	return MatchRule{Kind: MatchPattern, Value: expr}
}

func (r MatchRule) String() string {
	return r.Value
}

// EndpointConfig is one registered stub. ID doubles as the WireMock
// mapping id.
type EndpointConfig struct {
	ID      string
	Method  Method
	Match   MatchRule
	Status  int
	Headers map[string]string
	Body    string
}

// String renders "METHOD url" for log lines.
func (e EndpointConfig) String() string {
	return string(e.Method) + " " + e.Match.Value
}

// Mapping converts the endpoint into an admin API mapping document.
func (e EndpointConfig) Mapping() *wiremock.Mapping {
	m := &wiremock.Mapping{
		ID: e.ID,
		Request: wiremock.Request{
			Method: string(e.Method),
		},
		Response: wiremock.Response{
			Status:  e.Status,
			Headers: wiremock.SingleHeaders(e.Headers),
			Body:    e.Body,
		},
	}
	if e.Match.Kind == MatchPattern {
		m.Request.URLPattern = e.Match.Value
	} else {
		m.Request.URL = e.Match.Value
	}
	return m
}

func (e EndpointConfig) sameRoute(other EndpointConfig) bool {
	return e.Method == other.Method && e.Match == other.Match
}

// endpointFromMapping builds the registry record for a mapping loaded from
// a stub file.
func endpointFromMapping(m *wiremock.Mapping) EndpointConfig {
	target, pattern := m.Request.Target()
	match := Exact(target)
	if pattern {
		match = Pattern(target)
	}

	body := m.Response.Body
	if body == "" && m.Response.JSONBody != nil {
		if data, err := json.Marshal(m.Response.JSONBody); err == nil {
			body = string(data)
		}
	}

	return EndpointConfig{
		ID:      m.ID,
		Method:  Method(strings.ToUpper(m.Request.Method)),
		Match:   match,
		Status:  m.Response.Status,
		Headers: m.Response.Headers.Flatten(),
		Body:    body,
	}
}

// EndpointOption customizes MockEndpoint and MockEndpointPattern.
type EndpointOption func(*EndpointConfig)

// WithStatus sets the response status. The default is 200.
func WithStatus(status int) EndpointOption {
	return func(e *EndpointConfig) {
		e.Status = status
	}
}

// WithHeaders adds response headers. They replace the default
// Content-Type when their keys collide, ignoring case.
func WithHeaders(headers map[string]string) EndpointOption {
	return func(e *EndpointConfig) {
		e.Headers = mergeHeaders(e.Headers, headers)
	}
}

func newEndpoint(method Method, match MatchRule, body any, opts ...EndpointOption) (EndpointConfig, error) {
	encoded, err := encodeBody(body)
	if err != nil {
		return EndpointConfig{}, err
	}
	e := EndpointConfig{
		ID:      uuid.NewString(),
		Method:  method,
		Match:   match,
		Status:  http.StatusOK,
		Headers: map[string]string{"Content-Type": "application/json"},
		Body:    encoded,
	}
	for _, opt := range opts {
		opt(&e)
	}
	return e, nil
}

// mergeHeaders returns base overlaid with overrides. A key in overrides
// removes every key in base that differs from it only by case.
func mergeHeaders(base, overrides map[string]string) map[string]string {
	merged := make(map[string]string, len(base)+len(overrides))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range overrides {
		for existing := range merged {
			if existing != k && strings.EqualFold(existing, k) {
				delete(merged, existing)
			}
		}
		merged[k] = v
	}
	return merged
}

var errInvalidJSONBody = errors.New("body is not valid JSON")

func rawBody(data []byte) (string, error) {
	if !json.Valid(data) {
		return "", errInvalidJSONBody
	}
	return string(data), nil
}

// encodeBody serializes a stub body as JSON. json.RawMessage and []byte
// must hold valid JSON and are sent verbatim. A nil body yields an empty body.
func encodeBody(body any) (string, error) {
	switch v := body.(type) {
	case nil:
		return "", nil
	case json.RawMessage:
		return rawBody(v)
	case []byte:
		return rawBody(v)
	}
	data, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to encode body: %w", err)
	}
	return string(data), nil
}
