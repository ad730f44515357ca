package logging

import (
	"log/slog"
	"strings"
	"testing"
)

// ForTest returns a debug-level text logger that writes through t.Log, so
// output is attached to the test that produced it and shown only on failure
// or with -v.
func ForTest(t testing.TB) *slog.Logger {
	t.Helper()
	return slog.New(slog.NewTextHandler(testWriter{t: t}, &slog.HandlerOptions{Level: LevelDebug}))
}

type testWriter struct {
	t testing.TB
}

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	w.t.Log(strings.TrimRight(string(p), "\n"))
	return len(p), nil
}
