package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHeaders(t *testing.T) {
	headers, err := parseHeaders([]string{"X-Total=42", " Cache-Control =no-store", "X-Empty=", "X-Eq=a=b"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"X-Total":       "42",
		"Cache-Control": "no-store",
		"X-Empty":       "",
		"X-Eq":          "a=b",
	}, headers)

	for _, bad := range []string{"novalue", "=value"} {
		_, err := parseHeaders([]string{bad})
		assert.Error(t, err, bad)
	}
}

func TestFlagKeysCoverPersistentFlags(t *testing.T) {
	for name := range flagKeys {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(name), name)
	}
}
