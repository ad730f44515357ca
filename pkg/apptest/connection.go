package apptest

import (
	"encoding/json"
	"fmt"

	"github.com/standout/appbridge-testkit/pkg/appbridge"
)

// Identity of the connection the testers hand to connectors.
const (
	TestConnectionID   = "test-connection"
	TestConnectionName = "Test Connection"
)

// DefaultBaseURL is where the mock server listens unless configured
// otherwise.
const DefaultBaseURL = "http://localhost:8080"

// BaseConnection returns the connection data connectors built on
// appbridge.APIClient expect, pointed at baseURL with a fixed bearer
// token. An empty baseURL selects DefaultBaseURL.
func BaseConnection(baseURL string) map[string]any {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return map[string]any{
		"base_url": baseURL,
		"headers": map[string]any{
			"Authorization": "Bearer test_token",
			"Content-Type":  "application/json",
		},
	}
}

// TestConnection wraps connection data in the connection the testers use.
func TestConnection(data any) (appbridge.Connection, error) {
	serialized, err := encodeJSON(data)
	if err != nil {
		return appbridge.Connection{}, fmt.Errorf("failed to encode connection data: %w", err)
	}
	return appbridge.Connection{
		ID:             TestConnectionID,
		Name:           TestConnectionName,
		SerializedData: serialized,
	}, nil
}

// encodeJSON encodes v, sending json.RawMessage verbatim and encoding nil
// as an empty object.
func encodeJSON(v any) (string, error) {
	switch val := v.(type) {
	case nil:
		return "{}", nil
	case json.RawMessage:
		if !json.Valid(val) {
			return "", fmt.Errorf("invalid JSON: %s", val)
		}
		return string(val), nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
