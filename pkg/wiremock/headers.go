package wiremock

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// HeaderValue holds the values of one header. WireMock writes a single
// value as a JSON string and a repeated header as an array of strings.
type HeaderValue []string

// MarshalJSON writes one value as a string and several as an array.
func (v HeaderValue) MarshalJSON() ([]byte, error) {
	if len(v) == 1 {
		return json.Marshal(v[0])
	}
	return json.Marshal([]string(v))
}

// UnmarshalJSON accepts a string or an array of strings.
func (v *HeaderValue) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*v = HeaderValue{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("header value must be a string or an array of strings: %w", err)
	}
	*v = many
	return nil
}

// String joins the values the way they appear on the wire.
func (v HeaderValue) String() string {
	return strings.Join(v, ", ")
}

// Headers maps header names to their values.
type Headers map[string]HeaderValue

// SingleHeaders builds Headers with one value per name.
func SingleHeaders(m map[string]string) Headers {
	if len(m) == 0 {
		return nil
	}
	out := make(Headers, len(m))
	for k, v := range m {
		out[k] = HeaderValue{v}
	}
	return out
}

// Get returns the joined values of name, ignoring case.
func (h Headers) Get(name string) string {
	if v, ok := h[name]; ok {
		return v.String()
	}
	for k, v := range h {
		if strings.EqualFold(k, name) {
			return v.String()
		}
	}
	return ""
}

// Flatten joins every header into a single string value.
func (h Headers) Flatten() map[string]string {
	if len(h) == 0 {
		return nil
	}
	out := make(map[string]string, len(h))
	for k, v := range h {
		out[k] = v.String()
	}
	return out
}

// HTTP converts h into an http.Header, keeping every value.
func (h Headers) HTTP() http.Header {
	out := make(http.Header, len(h))
	for k, vs := range h {
		for _, v := range vs {
			out.Add(k, v)
		}
	}
	return out
}

// HeadersFromHTTP copies an http.Header.
func HeadersFromHTTP(h http.Header) Headers {
	out := make(Headers, len(h))
	for k, vs := range h {
		out[k] = append(HeaderValue(nil), vs...)
	}
	return out
}
