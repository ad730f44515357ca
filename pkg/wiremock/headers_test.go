package wiremock_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standout/appbridge-testkit/pkg/wiremock"
)

func TestRequestJournal_DecodesArrayHeaders(t *testing.T) {
	raw := `{
	  "requests": [{
	    "id": "5b1c",
	    "request": {
	      "method": "GET",
	      "url": "/items",
	      "headers": {
	        "Host": "localhost:8080",
	        "Accept": ["application/json", "text/plain"]
	      }
	    },
	    "wasMatched": true,
	    "stubMapping": {
	      "request": {"method": "GET", "url": "/items"},
	      "response": {"status": 200, "headers": {"Set-Cookie": ["a=1", "b=2"], "Content-Type": "application/json"}}
	    }
	  }],
	  "meta": {"total": 1}
	}`

	var journal wiremock.RequestJournal
	require.NoError(t, json.Unmarshal([]byte(raw), &journal))
	require.Len(t, journal.Requests, 1)

	req := journal.Requests[0].Request
	assert.Equal(t, wiremock.HeaderValue{"localhost:8080"}, req.Headers["Host"])
	assert.Equal(t, wiremock.HeaderValue{"application/json", "text/plain"}, req.Headers["Accept"])
	assert.Equal(t, "application/json, text/plain", req.Headers.Get("accept"))

	resp := journal.Requests[0].StubMapping.Response
	assert.Equal(t, wiremock.HeaderValue{"a=1", "b=2"}, resp.Headers["Set-Cookie"])
	assert.Equal(t, "application/json", resp.Headers.Get("Content-Type"))
}

func TestHeaderValue_JSON(t *testing.T) {
	data, err := json.Marshal(wiremock.Headers{
		"Content-Type": {"application/json"},
		"Set-Cookie":   {"a=1", "b=2"},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"Content-Type":"application/json","Set-Cookie":["a=1","b=2"]}`, string(data))

	var v wiremock.HeaderValue
	assert.Error(t, json.Unmarshal([]byte(`42`), &v))
	assert.Error(t, json.Unmarshal([]byte(`{"a":"b"}`), &v))
}

func TestHeaders_Conversions(t *testing.T) {
	assert.Nil(t, wiremock.SingleHeaders(nil))
	assert.Equal(t, wiremock.Headers{"X-Mock": {"yes"}}, wiremock.SingleHeaders(map[string]string{"X-Mock": "yes"}))

	h := wiremock.HeadersFromHTTP(http.Header{"Accept": {"a", "b"}})
	assert.Equal(t, map[string]string{"Accept": "a, b"}, h.Flatten())
	assert.Equal(t, []string{"a", "b"}, h.HTTP().Values("accept"))
	assert.Empty(t, h.Get("Missing"))
}
