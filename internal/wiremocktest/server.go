// Package wiremocktest runs an in-process stand-in for a WireMock server so
// that the controller, the CLI and the step library can be tested without a
// container runtime.
//
// It implements the admin endpoints the test kit uses plus stub serving for
// url, urlPath, urlPattern and urlPathPattern rules with header, query and
// body matchers. Among matching stubs the lowest priority value wins and,
// within a priority, the most recently registered stub wins, as in WireMock.
package wiremocktest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/standout/appbridge-testkit/pkg/httputil"
	"github.com/standout/appbridge-testkit/pkg/wiremock"
)

// defaultPriority is the priority WireMock assigns to mappings without one.
const defaultPriority = 5

// NoStubsMessage is the body served for unmatched requests when no stubs are
// registered.
const NoStubsMessage = "No response could be served as there are no stub mappings in this WireMock instance."

// NotMatchedMessage is the body served for unmatched requests otherwise.
const NotMatchedMessage = "Request was not matched"

// Server is a fake WireMock server.
type Server struct {
	httpSrv *httptest.Server

	mu           sync.Mutex
	mappings     []wiremock.Mapping
	patterns     map[string]*regexp.Regexp
	journal      []wiremock.ServeEvent
	adminCalls   []string
	healthChecks int
	readyAfter   int
	neverReady   bool
	rejectStatus int
}

// Option configures a Server.
type Option func(*Server)

// WithReadyAfter makes the first n health probes answer 503.
func WithReadyAfter(n int) Option {
	return func(s *Server) {
		s.readyAfter = n
	}
}

// WithNeverReady makes every health probe answer 503.
func WithNeverReady() Option {
	return func(s *Server) {
		s.neverReady = true
	}
}

// WithRejectMappings makes POST /__admin/mappings answer status instead of 201.
func WithRejectMappings(status int) Option {
	return func(s *Server) {
		s.rejectStatus = status
	}
}

// New starts a fake server that is closed when the test finishes.
func New(t testing.TB, opts ...Option) *Server {
	t.Helper()

	s := &Server{patterns: make(map[string]*regexp.Regexp)}
	for _, opt := range opts {
		opt(s)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /__admin/health", s.handleHealth)
	mux.HandleFunc("GET /__admin/mappings", s.handleListMappings)
	mux.HandleFunc("POST /__admin/mappings", s.handleCreateMapping)
	mux.HandleFunc("DELETE /__admin/mappings", s.handleResetMappings)
	mux.HandleFunc("DELETE /__admin/mappings/{id}", s.handleDeleteMapping)
	mux.HandleFunc("GET /__admin/requests", s.handleListRequests)
	mux.HandleFunc("DELETE /__admin/requests", s.handleResetRequests)
	mux.HandleFunc("/", s.handleStub)

	s.httpSrv = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

// URL returns the base URL of the server.
func (s *Server) URL() string {
	return s.httpSrv.URL
}

// Close shuts the server down. It is safe to call more than once.
func (s *Server) Close() {
	s.httpSrv.Close()
}

// Mappings returns a copy of the registered mappings in registration order.
func (s *Server) Mappings() []wiremock.Mapping {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]wiremock.Mapping, len(s.mappings))
	copy(out, s.mappings)
	return out
}

// HealthChecks returns how many health probes the server has answered.
func (s *Server) HealthChecks() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.healthChecks
}

// AdminCalls returns "METHOD path" for every admin request received.
func (s *Server) AdminCalls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.adminCalls))
	copy(out, s.adminCalls)
	return out
}

func (s *Server) recordAdmin(r *http.Request) {
	s.adminCalls = append(s.adminCalls, r.Method+" "+r.URL.Path)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.recordAdmin(r)
	s.healthChecks++
	ready := !s.neverReady && s.healthChecks > s.readyAfter
	s.mu.Unlock()

	if !ready {
		httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "starting"})
		return
	}
	httputil.WriteOK(w, map[string]string{"status": "healthy"})
}

func (s *Server) handleListMappings(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.recordAdmin(r)
	list := wiremock.MappingList{Mappings: make([]wiremock.Mapping, len(s.mappings))}
	copy(list.Mappings, s.mappings)
	list.Meta.Total = len(list.Mappings)
	s.mu.Unlock()

	httputil.WriteOK(w, list)
}

func (s *Server) handleCreateMapping(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.recordAdmin(r)
	reject := s.rejectStatus
	s.mu.Unlock()

	if reject != 0 {
		httputil.WriteError(w, reject, "mapping rejected")
		return
	}

	var m wiremock.Mapping
	if err := httputil.DecodeJSON(r, &m); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if m.Response.Status == 0 {
		m.Response.Status = http.StatusOK
	}
	if err := m.Validate(); err != nil {
		httputil.WriteError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if m.ID == "" {
		m.ID = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range []string{m.Request.URLPattern, m.Request.URLPathPattern} {
		if p == "" {
			continue
		}
		re, err := regexp.Compile("^(?:" + p + ")$")
		if err != nil {
			httputil.WriteError(w, http.StatusUnprocessableEntity, fmt.Sprintf("invalid pattern %q: %v", p, err))
			return
		}
		s.patterns[p] = re
	}
	s.mappings = append(s.mappings, m)
	httputil.WriteCreated(w, m)
}

func (s *Server) handleResetMappings(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.recordAdmin(r)
	s.mappings = nil
	s.mu.Unlock()

	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleDeleteMapping(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	s.mu.Lock()
	defer s.mu.Unlock()
	s.recordAdmin(r)
	for i, m := range s.mappings {
		if m.ID == id {
			s.mappings = append(s.mappings[:i], s.mappings[i+1:]...)
			w.WriteHeader(http.StatusOK)
			return
		}
	}
	httputil.WriteError(w, http.StatusNotFound, "mapping not found: "+id)
}

func (s *Server) handleListRequests(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.recordAdmin(r)
	journal := wiremock.RequestJournal{Requests: make([]wiremock.ServeEvent, len(s.journal))}
	copy(journal.Requests, s.journal)
	journal.Meta.Total = len(journal.Requests)
	s.mu.Unlock()

	httputil.WriteOK(w, journal)
}

func (s *Server) handleResetRequests(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.recordAdmin(r)
	s.journal = nil
	s.mu.Unlock()

	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleStub(w http.ResponseWriter, r *http.Request) {
	body, _ := readRequestBody(r)

	s.mu.Lock()
	match := s.match(r, body)
	event := wiremock.ServeEvent{
		ID: uuid.NewString(),
		Request: wiremock.LoggedRequest{
			Method:      r.Method,
			URL:         r.URL.RequestURI(),
			AbsoluteURL: s.httpSrv.URL + r.URL.RequestURI(),
			Headers:     wiremock.HeadersFromHTTP(r.Header),
			Body:        body,
			LoggedDate:  time.Now().UTC().Format(time.RFC3339),
		},
		WasMatched:  match != nil,
		StubMapping: match,
	}
	// Newest first, like WireMock's journal.
	s.journal = append([]wiremock.ServeEvent{event}, s.journal...)
	empty := len(s.mappings) == 0
	s.mu.Unlock()

	if match == nil {
		if empty {
			httputil.WriteText(w, http.StatusNotFound, NoStubsMessage)
		} else {
			httputil.WriteText(w, http.StatusNotFound, NotMatchedMessage)
		}
		return
	}

	resp := match.Response
	if resp.FixedDelayMillis > 0 {
		time.Sleep(time.Duration(resp.FixedDelayMillis) * time.Millisecond)
	}
	out := resp.Body
	if resp.JSONBody != nil {
		data, err := json.Marshal(resp.JSONBody)
		if err != nil {
			httputil.WriteText(w, http.StatusInternalServerError, err.Error())
			return
		}
		out = string(data)
	}
	httputil.WriteRaw(w, resp.Status, resp.Headers.HTTP(), out)
}

// match returns the winning mapping for r, or nil. Callers hold s.mu.
func (s *Server) match(r *http.Request, body string) *wiremock.Mapping {
	var candidates []int
	for i := range s.mappings {
		if s.matches(&s.mappings[i], r, body) {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	sort.SliceStable(candidates, func(a, b int) bool {
		pa, pb := priority(s.mappings[candidates[a]]), priority(s.mappings[candidates[b]])
		if pa != pb {
			return pa < pb
		}
		return candidates[a] > candidates[b]
	})
	m := s.mappings[candidates[0]]
	return &m
}

func (s *Server) matches(m *wiremock.Mapping, r *http.Request, body string) bool {
	req := m.Request
	if req.Method != "ANY" && !strings.EqualFold(req.Method, r.Method) {
		return false
	}

	switch {
	case req.URL != "":
		if r.URL.RequestURI() != req.URL {
			return false
		}
	case req.URLPath != "":
		if r.URL.Path != req.URLPath {
			return false
		}
	case req.URLPattern != "":
		if re := s.patterns[req.URLPattern]; re == nil || !re.MatchString(r.URL.RequestURI()) {
			return false
		}
	case req.URLPathPattern != "":
		if re := s.patterns[req.URLPathPattern]; re == nil || !re.MatchString(r.URL.Path) {
			return false
		}
	}

	for name, matcher := range req.Headers {
		if !matchValue(matcher, r.Header.Get(name), r.Header.Values(name) != nil) {
			return false
		}
	}
	query := r.URL.Query()
	for name, matcher := range req.QueryParameters {
		if !matchValue(matcher, query.Get(name), query.Has(name)) {
			return false
		}
	}
	for _, bp := range req.BodyPatterns {
		if !matchBody(bp, body) {
			return false
		}
	}
	return true
}

func priority(m wiremock.Mapping) int {
	if m.Priority == 0 {
		return defaultPriority
	}
	return m.Priority
}
