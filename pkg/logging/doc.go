// Package logging provides structured logging configuration for the test kit.
//
// This package wraps log/slog so that the controller, the orchestrators and the
// CLI all log the same way. It supports configurable levels and output formats.
//
// # Usage
//
//	logger := logging.New(logging.Config{
//	    Level:  logging.LevelInfo,
//	    Format: logging.FormatText,
//	})
//
//	logger = logging.WithComponent(logger, "mockserver")
//	logger.Warn("mock server failed to start", "attempts", 30)
//
// # Integration
//
// Components accept a *slog.Logger through an option. If no logger is
// provided they use Nop(), so library code stays silent unless a caller
// opts in. Tests can route output through ForTest(t).
package logging
