package mockserver

import (
	"context"
	"fmt"
	"net/http"
)

// StubBuilder builds an endpoint stub using a fluent API. Obtain one with
// Controller.Stub.
type StubBuilder struct {
	ctrl     *Controller
	endpoint EndpointConfig
	err      error // first error encountered during building
}

// Stub starts building a stub for method and url. The response defaults
// to 200 with Content-Type application/json and an empty body.
func (c *Controller) Stub(method Method, url string) *StubBuilder {
	return &StubBuilder{
		ctrl: c,
		endpoint: EndpointConfig{
			Method:  method,
			Match:   Exact(url),
			Status:  http.StatusOK,
			Headers: map[string]string{"Content-Type": "application/json"},
		},
	}
}

func (b *StubBuilder) setError(err error) {
	if b.err == nil {
		b.err = err
	}
}

// Err returns the first error encountered during building.
func (b *StubBuilder) Err() error {
	return b.err
}

// Pattern treats the url given to Stub as a regular expression.
func (b *StubBuilder) Pattern() *StubBuilder {
	b.endpoint.Match.Kind = MatchPattern
	return b
}

// WithStatus sets the HTTP response status code.
func (b *StubBuilder) WithStatus(status int) *StubBuilder {
	b.endpoint.Status = status
	return b
}

// WithHeader sets a response header, replacing any header with the same
// name in a different case.
func (b *StubBuilder) WithHeader(key, value string) *StubBuilder {
	b.endpoint.Headers = mergeHeaders(b.endpoint.Headers, map[string]string{key: value})
	return b
}

// WithHeaders sets multiple response headers at once.
func (b *StubBuilder) WithHeaders(headers map[string]string) *StubBuilder {
	b.endpoint.Headers = mergeHeaders(b.endpoint.Headers, headers)
	return b
}

// WithJSON sets the response body to the JSON encoding of v. A
// json.RawMessage is sent as is.
func (b *StubBuilder) WithJSON(v any) *StubBuilder {
	body, err := encodeBody(v)
	if err != nil {
		b.setError(fmt.Errorf("WithJSON: %w", err))
		return b
	}
	b.endpoint.Body = body
	return b
}

// WithBody sets the response body verbatim.
func (b *StubBuilder) WithBody(body string) *StubBuilder {
	b.endpoint.Body = body
	return b
}

// WithID fixes the mapping id instead of generating one.
func (b *StubBuilder) WithID(id string) *StubBuilder {
	b.endpoint.ID = id
	return b
}

// RespondWith is a shorthand for setting status and JSON body together.
func (b *StubBuilder) RespondWith(status int, v any) *StubBuilder {
	return b.WithStatus(status).WithJSON(v)
}

// RespondError configures an error response in the AppBridge API error
// shape: {"error": message}.
func (b *StubBuilder) RespondError(status int, message string) *StubBuilder {
	return b.WithStatus(status).WithJSON(map[string]string{"error": message})
}

// Endpoint returns the stub as it would be registered.
func (b *StubBuilder) Endpoint() EndpointConfig {
	e := b.endpoint
	e.Headers = mergeHeaders(nil, b.endpoint.Headers)
	return e
}

// Reply registers the stub. It reports whether the server accepted it.
func (b *StubBuilder) Reply(ctx context.Context) bool {
	if b.err != nil {
		b.ctrl.logger.Warn("failed to configure mock endpoint", "endpoint", b.endpoint.String(), "error", b.err)
		return false
	}
	return b.ctrl.Register(ctx, b.Endpoint()) == nil
}
