package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/standout/appbridge-testkit/pkg/mockserver"
	"github.com/standout/appbridge-testkit/pkg/orchestrator"
)

type statusResult struct {
	Status  string `json:"status"`
	BaseURL string `json:"baseUrl"`
	Error   string `json:"error,omitempty"`
}

var upWait bool

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Start the mock server and wait until it is healthy",
	Long: `Start the mock server with the configured orchestrator and poll
/__admin/health until it answers. Mapping files matched by --stubs are
loaded once the server is healthy.

The container orchestrator ties the server to this process, so up keeps
running until interrupted. Pass --wait to do the same for other
orchestrators.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		orch, err := cfg.NewOrchestrator(logger)
		if err != nil {
			return err
		}
		ctrl := mockserver.New(cfg.ControllerOptions(orch, logger)...)

		ctx := cmd.Context()
		if !ctrl.Start(ctx) {
			return fmt.Errorf("mock server failed to start: %w", ctrl.Err())
		}
		result := statusResult{Status: "healthy", BaseURL: ctrl.BaseURL()}
		if err := printResult(cmd.OutOrStdout(), result, "mock server healthy at "+result.BaseURL); err != nil {
			return err
		}

		if !upWait && cfg.Orchestrator != string(orchestrator.KindContainer) {
			return nil
		}
		<-ctx.Done()
		ctrl.Stop(context.Background())
		return nil
	},
}

var downCmd = &cobra.Command{
	Use:   "down",
	Short: "Stop the mock server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		orch, err := cfg.NewOrchestrator(logger)
		if err != nil {
			return err
		}
		if err := orch.Down(cmd.Context()); err != nil {
			return fmt.Errorf("failed to stop mock server: %w", err)
		}
		return printResult(cmd.OutOrStdout(), statusResult{Status: "stopped", BaseURL: cfg.BaseURL}, "mock server stopped")
	},
}

var healthWait bool

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check whether the mock server is healthy",
	Long: `Probe /__admin/health once and report the result. With --wait, poll
up to --attempts times, --poll-interval apart.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		result := statusResult{Status: "healthy", BaseURL: cfg.BaseURL}

		var failure error
		if healthWait {
			// Only polls. Loading --stubs is left to up and load.
			ctrl := mockserver.New(append(cfg.PollOptions(logger), mockserver.WithOrchestrator(orchestrator.External{}))...)
			if !ctrl.Start(ctx) {
				failure = ctrl.Err()
			}
		} else if res := newAdminClient().Health(ctx); !res.Ready() {
			failure = res.Err
			if failure == nil {
				failure = fmt.Errorf("health check returned status %d", res.Code)
			}
		}

		if failure == nil {
			return printResult(cmd.OutOrStdout(), result, "healthy")
		}
		result.Status = "unhealthy"
		result.Error = failure.Error()
		if jsonOutput {
			if err := printResult(cmd.OutOrStdout(), result, ""); err != nil {
				return err
			}
		}
		return fmt.Errorf("mock server is not healthy: %w", failure)
	},
}

func init() {
	upCmd.Flags().BoolVar(&upWait, "wait", false, "Keep running until interrupted, then stop the server")
	healthCmd.Flags().BoolVar(&healthWait, "wait", false, "Poll until healthy or out of attempts")
	rootCmd.AddCommand(upCmd, downCmd, healthCmd)
}
