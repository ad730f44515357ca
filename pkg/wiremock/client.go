package wiremock

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	healthPath   = "/__admin/health"
	mappingsPath = "/__admin/mappings"
	requestsPath = "/__admin/requests"
)

// DefaultTimeout bounds each admin API call.
const DefaultTimeout = 5 * time.Second

// Client is an HTTP client for the WireMock admin API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// New creates a client for the server at baseURL, e.g. http://localhost:8080.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the server base URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Health probes GET /__admin/health once.
func (c *Client) Health(ctx context.Context) HealthResult {
	resp, err := c.do(ctx, http.MethodGet, healthPath, nil)
	if err != nil {
		if IsTransient(err) {
			return HealthResult{Status: HealthNotReady, Err: err}
		}
		return HealthResult{Status: HealthError, Err: err}
	}
	defer drain(resp)

	if resp.StatusCode != http.StatusOK {
		return HealthResult{Status: HealthNotReady, Code: resp.StatusCode}
	}
	return HealthResult{Status: HealthReady, Code: resp.StatusCode}
}

// CreateMapping registers a stub mapping. The server must answer 201;
// anything else is returned as a *StatusError carrying the response body.
func (c *Client) CreateMapping(ctx context.Context, m *Mapping) (*Mapping, error) {
	resp, err := c.do(ctx, http.MethodPost, mappingsPath, m)
	if err != nil {
		return nil, err
	}
	defer drain(resp)

	if resp.StatusCode != http.StatusCreated {
		return nil, c.parseError("create mapping", resp)
	}

	var created Mapping
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		// Some servers answer 201 with an empty body; the request is the record.
		return m, nil //nolint:nilerr // a 201 is success regardless of the echo
	}
	return &created, nil
}

// ListMappings returns every mapping currently registered.
func (c *Client) ListMappings(ctx context.Context) ([]Mapping, error) {
	resp, err := c.do(ctx, http.MethodGet, mappingsPath, nil)
	if err != nil {
		return nil, err
	}
	defer drain(resp)

	if resp.StatusCode != http.StatusOK {
		return nil, c.parseError("list mappings", resp)
	}

	var list MappingList
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("failed to decode mappings: %w", err)
	}
	return list.Mappings, nil
}

// DeleteMapping removes one mapping by ID. A missing mapping yields an
// error matching ErrNotFound.
func (c *Client) DeleteMapping(ctx context.Context, id string) error {
	resp, err := c.do(ctx, http.MethodDelete, mappingsPath+"/"+url.PathEscape(id), nil)
	if err != nil {
		return err
	}
	defer drain(resp)

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return c.parseError("delete mapping", resp)
	}
	return nil
}

// ResetMappings deletes every mapping.
func (c *Client) ResetMappings(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodDelete, mappingsPath, nil)
	if err != nil {
		return err
	}
	defer drain(resp)

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return c.parseError("reset mappings", resp)
	}
	return nil
}

// Requests returns the request journal, newest first.
func (c *Client) Requests(ctx context.Context) ([]ServeEvent, error) {
	resp, err := c.do(ctx, http.MethodGet, requestsPath, nil)
	if err != nil {
		return nil, err
	}
	defer drain(resp)

	if resp.StatusCode != http.StatusOK {
		return nil, c.parseError("list requests", resp)
	}

	var journal RequestJournal
	if err := json.NewDecoder(resp.Body).Decode(&journal); err != nil {
		return nil, fmt.Errorf("failed to decode request journal: %w", err)
	}
	return journal.Requests, nil
}

// ResetRequests clears the request journal.
func (c *Client) ResetRequests(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodDelete, requestsPath, nil)
	if err != nil {
		return err
	}
	defer drain(resp)

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return c.parseError("reset requests", resp)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	return c.httpClient.Do(req)
}

func (c *Client) parseError(op string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	return &StatusError{
		Op:         op,
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(body)),
	}
}

// drain discards the rest of the body so the connection can be reused.
func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
