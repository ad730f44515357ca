package wiremock

import (
	"errors"
	"strings"
)

// Mapping is a WireMock stub mapping.
type Mapping struct {
	ID       string         `json:"id,omitempty"`
	Name     string         `json:"name,omitempty"`
	Priority int            `json:"priority,omitempty"`
	Request  Request        `json:"request"`
	Response Response       `json:"response"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Request is the request pattern of a mapping. At most one of URL, URLPath,
// URLPattern and URLPathPattern should be set.
type Request struct {
	Method          string             `json:"method,omitempty"`
	URL             string             `json:"url,omitempty"`
	URLPath         string             `json:"urlPath,omitempty"`
	URLPattern      string             `json:"urlPattern,omitempty"`
	URLPathPattern  string             `json:"urlPathPattern,omitempty"`
	Headers         map[string]Matcher `json:"headers,omitempty"`
	QueryParameters map[string]Matcher `json:"queryParameters,omitempty"`
	BodyPatterns    []BodyPattern      `json:"bodyPatterns,omitempty"`
}

// Matcher is a WireMock value matcher.
type Matcher struct {
	EqualTo         string `json:"equalTo,omitempty"`
	Contains        string `json:"contains,omitempty"`
	Matches         string `json:"matches,omitempty"`
	DoesNotMatch    string `json:"doesNotMatch,omitempty"`
	CaseInsensitive bool   `json:"caseInsensitive,omitempty"`
}

// BodyPattern is a request body matcher.
type BodyPattern struct {
	EqualTo         string `json:"equalTo,omitempty"`
	Contains        string `json:"contains,omitempty"`
	Matches         string `json:"matches,omitempty"`
	EqualToJSON     any    `json:"equalToJson,omitempty"`
	MatchesJSONPath string `json:"matchesJsonPath,omitempty"`
}

// Response is the canned response of a mapping.
type Response struct {
	Status           int     `json:"status"`
	StatusMessage    string  `json:"statusMessage,omitempty"`
	Headers          Headers `json:"headers,omitempty"`
	Body             string  `json:"body,omitempty"`
	JSONBody         any     `json:"jsonBody,omitempty"`
	FixedDelayMillis int     `json:"fixedDelayMilliseconds,omitempty"`
}

// Target returns the URL matcher of the request and whether it is a pattern.
// It prefers url, then urlPath, then urlPattern, then urlPathPattern.
func (r Request) Target() (value string, pattern bool) {
	switch {
	case r.URL != "":
		return r.URL, false
	case r.URLPath != "":
		return r.URLPath, false
	case r.URLPattern != "":
		return r.URLPattern, true
	case r.URLPathPattern != "":
		return r.URLPathPattern, true
	}
	return "", false
}

// String renders the request pattern as "METHOD target" for log lines.
func (r Request) String() string {
	target, _ := r.Target()
	return strings.TrimSpace(r.Method + " " + target)
}

var (
	errMissingMethod  = errors.New("request.method is required")
	errMultipleURLs   = errors.New("only one of url, urlPath, urlPattern, urlPathPattern may be set")
	errInvalidStatus  = errors.New("response.status must be between 100 and 599")
	errBodyAndJSONSet = errors.New("only one of response.body and response.jsonBody may be set")
)

// Validate reports the first structural problem with the mapping.
func (m *Mapping) Validate() error {
	if m.Request.Method == "" {
		return errMissingMethod
	}
	n := 0
	for _, s := range []string{m.Request.URL, m.Request.URLPath, m.Request.URLPattern, m.Request.URLPathPattern} {
		if s != "" {
			n++
		}
	}
	if n > 1 {
		return errMultipleURLs
	}
	if m.Response.Status < 100 || m.Response.Status > 599 {
		return errInvalidStatus
	}
	if m.Response.Body != "" && m.Response.JSONBody != nil {
		return errBodyAndJSONSet
	}
	return nil
}

// MappingList is the body of GET /__admin/mappings.
type MappingList struct {
	Mappings []Mapping `json:"mappings"`
	Meta     Meta      `json:"meta"`
}

// Meta carries list totals.
type Meta struct {
	Total int `json:"total"`
}

// LoggedRequest is a request recorded in the server's journal.
type LoggedRequest struct {
	Method      string  `json:"method"`
	URL         string  `json:"url"`
	AbsoluteURL string  `json:"absoluteUrl,omitempty"`
	Headers     Headers `json:"headers,omitempty"`
	Body        string  `json:"body,omitempty"`
	LoggedDate  string  `json:"loggedDateString,omitempty"`
}

// ServeEvent is one journal entry.
type ServeEvent struct {
	ID          string        `json:"id"`
	Request     LoggedRequest `json:"request"`
	WasMatched  bool          `json:"wasMatched"`
	StubMapping *Mapping      `json:"stubMapping,omitempty"`
}

// RequestJournal is the body of GET /__admin/requests.
type RequestJournal struct {
	Requests []ServeEvent `json:"requests"`
	Meta     Meta         `json:"meta"`
}
