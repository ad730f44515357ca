package httputil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSON(t *testing.T) {
	t.Parallel()

	t.Run("writes JSON with correct content type", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()

		WriteJSON(rec, http.StatusOK, map[string]string{"status": "healthy"})

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, ContentTypeJSON, rec.Header().Get("Content-Type"))

		var result map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
		assert.Equal(t, "healthy", result["status"])
	})

	t.Run("handles nil data", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()

		WriteJSON(rec, http.StatusOK, nil)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Body.String())
	})
}

func TestWriteError(t *testing.T) {
	t.Parallel()
	rec := httptest.NewRecorder()

	WriteError(rec, http.StatusUnprocessableEntity, "request method missing")

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.JSONEq(t, `{"errors":[{"title":"request method missing"}]}`, rec.Body.String())
}

func TestWriteCreated(t *testing.T) {
	t.Parallel()
	rec := httptest.NewRecorder()

	WriteCreated(rec, map[string]string{"id": "abc"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"id":"abc"}`, rec.Body.String())
}

func TestWriteRaw(t *testing.T) {
	t.Parallel()
	rec := httptest.NewRecorder()

	WriteRaw(rec, http.StatusTeapot, http.Header{"X-Mock": {"yes"}}, "short and stout")

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "yes", rec.Header().Get("X-Mock"))
	assert.Equal(t, "short and stout", rec.Body.String())
}

func TestDecodeJSON(t *testing.T) {
	t.Parallel()

	t.Run("valid", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"a":1}`))
		var v map[string]int
		require.NoError(t, DecodeJSON(req, &v))
		assert.Equal(t, 1, v["a"])
	})

	t.Run("invalid", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`))
		var v map[string]int
		assert.Error(t, DecodeJSON(req, &v))
	})
}

func TestReadBody(t *testing.T) {
	t.Parallel()
	resp := &http.Response{Body: io.NopCloser(strings.NewReader("payload"))}

	body, err := ReadBody(resp)

	require.NoError(t, err)
	assert.Equal(t, "payload", string(body))
}
