package orchestrator

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRunner records invocations and answers from a table keyed by the
// command line.
type fakeRunner struct {
	mu    sync.Mutex
	calls []string
	codes map[string]int
	errs  map[string]error
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) (int, error) {
	line := strings.Join(append([]string{name}, args...), " ")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, line)
	if err := f.errs[line]; err != nil {
		return -1, err
	}
	return f.codes[line], nil
}

func (f *fakeRunner) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func TestCompose_Up(t *testing.T) {
	runner := &fakeRunner{}
	c := NewCompose(Config{Runner: runner})

	require.NoError(t, c.Up(context.Background()))
	assert.Equal(t, []string{"docker --version", "./scripts/test-setup.sh start"}, runner.Calls())
}

func TestCompose_UpRuntimeMissing(t *testing.T) {
	runner := &fakeRunner{errs: map[string]error{"docker --version": errors.New("executable file not found")}}
	c := NewCompose(Config{Runner: runner})

	err := c.Up(context.Background())
	assert.ErrorIs(t, err, ErrRuntimeUnavailable)
	assert.Equal(t, []string{"docker --version"}, runner.Calls())
}

func TestCompose_AvailableNonZeroExit(t *testing.T) {
	runner := &fakeRunner{codes: map[string]int{"docker --version": 127}}
	c := NewCompose(Config{Runner: runner})

	assert.False(t, c.Available(context.Background()))
}

func TestCompose_UpScriptFails(t *testing.T) {
	runner := &fakeRunner{codes: map[string]int{"./scripts/test-setup.sh start": 2}}
	c := NewCompose(Config{Runner: runner})

	err := c.Up(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exited with status 2")
}

func TestCompose_Down(t *testing.T) {
	runner := &fakeRunner{}
	c := NewCompose(Config{Runner: runner, ComposeFile: "compose.ci.yml"})

	require.NoError(t, c.Down(context.Background()))
	assert.Equal(t, []string{"docker compose -f compose.ci.yml down"}, runner.Calls())
}

func TestCompose_CustomSetupScript(t *testing.T) {
	runner := &fakeRunner{}
	c := NewCompose(Config{Runner: runner, SetupScript: "bin/mock-up"})

	require.NoError(t, c.Up(context.Background()))
	assert.Equal(t, "bin/mock-up start", runner.Calls()[1])
}
