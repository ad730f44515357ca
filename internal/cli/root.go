package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/standout/appbridge-testkit/internal/config"
	"github.com/standout/appbridge-testkit/pkg/mockserver"
	"github.com/standout/appbridge-testkit/pkg/wiremock"
)

var (
	// Version is injected during build
	Version = "dev"
	// Commit is injected during build
	Commit = "none"
	// BuildDate is injected during build
	BuildDate = "unknown"
)

var (
	jsonOutput bool

	// cfg and logger are set up by loadConfig before any command runs.
	cfg    *config.Config
	logger *slog.Logger
)

// flagKeys maps persistent flag names to config keys.
var flagKeys = map[string]string{
	"url":           "baseUrl",
	"orchestrator":  "orchestrator",
	"attempts":      "maxAttempts",
	"poll-interval": "pollInterval",
	"stubs":         "stubs",
	"log-level":     "logLevel",
	"log-format":    "logFormat",
}

var rootCmd = &cobra.Command{
	Use:   "appbridge-mock",
	Short: "Control the WireMock server used by AppBridge connector tests",
	Long: `appbridge-mock starts, stops and stubs the WireMock server that connector
tests run against.

Settings come from flags, APPBRIDGE_* environment variables, or a
.appbridge-test.yaml file in the current directory (override the path with
APPBRIDGE_TEST_CONFIG).`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("url", mockserver.DefaultBaseURL, "Mock server base URL")
	pf.String("orchestrator", "compose", "How to run the server: compose, container or external")
	pf.Int("attempts", mockserver.DefaultMaxAttempts, "Health check attempts before giving up")
	pf.Duration("poll-interval", mockserver.DefaultPollInterval, "Delay between health checks")
	pf.String("stubs", "", "Glob of mapping files to load once the server is healthy")
	pf.String("log-level", config.DefaultLogLevel, "Log level: debug, info, warn, error")
	pf.String("log-format", config.DefaultLogFormat, "Log format: text or json")
	pf.BoolVar(&jsonOutput, "json", false, "Output command results in JSON format")
}

// loadConfig layers changed flags over the file and environment settings.
func loadConfig(cmd *cobra.Command, _ []string) error {
	loaded, err := config.Resolve()
	if err != nil {
		return err
	}
	for name, key := range flagKeys {
		f := cmd.Flags().Lookup(name)
		if f == nil || !f.Changed {
			continue
		}
		if err := loaded.Set(key, f.Value.String(), config.SourceFlag); err != nil {
			return err
		}
	}
	if err := loaded.Validate(); err != nil {
		return err
	}

	cfg = loaded
	logger = cfg.NewLogger(cmd.ErrOrStderr())
	if cfg.Path != "" {
		logger.Debug("loaded config file", "path", cfg.Path)
	}
	return nil
}

// newController builds a controller for commands that talk to an already
// running server.
func newController() *mockserver.Controller {
	return mockserver.New(cfg.ControllerOptions(nil, logger)...)
}

func newAdminClient() *wiremock.Client {
	return wiremock.New(cfg.BaseURL, wiremock.WithTimeout(10*time.Second))
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(rootCmd.ErrOrStderr(), "Error:", err)
		return 1
	}
	return 0
}
