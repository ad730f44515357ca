package orchestrator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{"", KindCompose, false},
		{"compose", KindCompose, false},
		{" Container ", KindContainer, false},
		{"EXTERNAL", KindExternal, false},
		{"kubernetes", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseKind(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNew(t *testing.T) {
	o, err := New(Config{})
	require.NoError(t, err)
	assert.IsType(t, &Compose{}, o)

	o, err = New(Config{Kind: KindContainer})
	require.NoError(t, err)
	c, ok := o.(*Container)
	require.True(t, ok)
	assert.Equal(t, DefaultImage, c.image)
	assert.Equal(t, DefaultStartupTimeout, c.startupTimeout)

	o, err = New(Config{Kind: KindExternal})
	require.NoError(t, err)
	assert.Equal(t, External{}, o)

	_, err = New(Config{Kind: "nomad"})
	assert.Error(t, err)
}

func TestContainer_BeforeUp(t *testing.T) {
	c := NewContainer(Config{Image: "wiremock/wiremock:3.9.1"})

	assert.Empty(t, c.BaseURL())
	assert.NoError(t, c.Down(context.Background()))
}

func TestExternal(t *testing.T) {
	var e External
	ctx := context.Background()

	assert.True(t, e.Available(ctx))
	assert.NoError(t, e.Up(ctx))
	assert.NoError(t, e.Down(ctx))
}
