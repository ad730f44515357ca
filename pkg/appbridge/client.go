package appbridge

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"
)

// ConnectionData is the connection document APIClient understands.
type ConnectionData struct {
	BaseURL string            `json:"base_url"`
	Headers map[string]string `json:"headers"`
}

// ParseConnectionData decodes a Connection's SerializedData. A missing
// base_url or headers object is a CodeMisconfigured error.
func ParseConnectionData(serialized string) (ConnectionData, error) {
	var raw struct {
		BaseURL *string                    `json:"base_url"`
		Headers map[string]json.RawMessage `json:"headers"`
	}
	if err := json.Unmarshal([]byte(serialized), &raw); err != nil {
		return ConnectionData{}, Errorf(CodeMisconfigured, "invalid connection data: %v", err)
	}
	if raw.BaseURL == nil {
		return ConnectionData{}, Errorf(CodeMisconfigured, "base_url not found in connection data")
	}
	if raw.Headers == nil {
		return ConnectionData{}, Errorf(CodeMisconfigured, "headers not found in connection data")
	}

	data := ConnectionData{BaseURL: *raw.BaseURL, Headers: make(map[string]string, len(raw.Headers))}
	for k, v := range raw.Headers {
		// Non-string header values are ignored.
		var s string
		if json.Unmarshal(v, &s) == nil {
			data.Headers[k] = s
		}
	}
	return data, nil
}

// APIClient calls a JSON HTTP API on behalf of a connection. Every method
// returns the decoded response body; failures are *AppError.
type APIClient struct {
	baseURL    string
	headers    map[string]string
	httpClient *http.Client
}

// NewAPIClient builds a client from a connection.
func NewAPIClient(conn Connection) (*APIClient, error) {
	data, err := ParseConnectionData(conn.SerializedData)
	if err != nil {
		return nil, err
	}
	return &APIClient{
		baseURL:    strings.TrimRight(data.BaseURL, "/"),
		headers:    data.Headers,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// Get requires a 200 answer.
func (c *APIClient) Get(ctx context.Context, endpoint string) (any, error) {
	return c.do(ctx, http.MethodGet, endpoint, nil, func(code int) bool { return code == http.StatusOK })
}

// Post sends body as JSON and accepts any 2xx answer.
func (c *APIClient) Post(ctx context.Context, endpoint string, body any) (any, error) {
	return c.do(ctx, http.MethodPost, endpoint, body, is2xx)
}

// Put sends body as JSON and accepts any 2xx answer.
func (c *APIClient) Put(ctx context.Context, endpoint string, body any) (any, error) {
	return c.do(ctx, http.MethodPut, endpoint, body, is2xx)
}

// Patch sends body as JSON and accepts any 2xx answer.
func (c *APIClient) Patch(ctx context.Context, endpoint string, body any) (any, error) {
	return c.do(ctx, http.MethodPatch, endpoint, body, is2xx)
}

// Delete accepts any 2xx answer.
func (c *APIClient) Delete(ctx context.Context, endpoint string) (any, error) {
	return c.do(ctx, http.MethodDelete, endpoint, nil, is2xx)
}

func is2xx(code int) bool {
	return code >= 200 && code < 300
}

func (c *APIClient) do(ctx context.Context, method, endpoint string, body any, ok func(int) bool) (any, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, Errorf(CodeOther, "failed to serialize JSON body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	url := c.baseURL + endpoint
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, Errorf(CodeMisconfigured, "invalid request URL %q: %v", url, err)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, Errorf(CodeOther, "request failed: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, Errorf(CodeOther, "failed to read response: %v", err)
	}
	if !ok(resp.StatusCode) {
		return nil, Errorf(CodeOther, "API request failed with status: %d - URL: %s - Response: %s",
			resp.StatusCode, url, respBody)
	}
	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}

	var out any
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, Errorf(CodeMalformedResponse, "invalid API response format")
	}
	return out, nil
}
