package cli

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/standout/appbridge-testkit/pkg/mockserver"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the stubs registered on the mock server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		mappings, err := newAdminClient().ListMappings(cmd.Context())
		if err != nil {
			return err
		}
		if jsonOutput {
			return printResult(cmd.OutOrStdout(), mappings, "")
		}
		if len(mappings) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no mappings")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tMETHOD\tURL\tMATCH\tSTATUS")
		for _, m := range mappings {
			target, pattern := m.Request.Target()
			match := "exact"
			if pattern {
				match = "pattern"
			}
			method := m.Request.Method
			if method == "" {
				method = string(mockserver.MethodAny)
			}
			fmt.Fprintln(w, m.ID+"\t"+method+"\t"+target+"\t"+match+"\t"+strconv.Itoa(m.Response.Status))
		}
		return w.Flush()
	},
}

var clearRequests bool

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every stub on the mock server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newAdminClient()
		if err := client.ResetMappings(cmd.Context()); err != nil {
			return fmt.Errorf("failed to clear mappings: %w", err)
		}
		msg := "cleared mappings"
		if clearRequests {
			if err := client.ResetRequests(cmd.Context()); err != nil {
				return fmt.Errorf("failed to clear request journal: %w", err)
			}
			msg = "cleared mappings and requests"
		}
		return printResult(cmd.OutOrStdout(), map[string]string{"status": "cleared"}, msg)
	},
}

var callsExpect int

var callsCmd = &cobra.Command{
	Use:   "calls METHOD PATH",
	Short: "Count requests the mock server received for METHOD and PATH",
	Long: `Count journal entries matching METHOD and PATH. PATH segments written as
{name} match any value, and the query string is ignored unless PATH has
one. With --expect, exit non-zero when the count differs.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		method, err := mockserver.ParseMethod(args[0])
		if err != nil {
			return err
		}
		count, err := newController().CountCalls(cmd.Context(), method, args[1])
		if err != nil {
			return err
		}
		result := map[string]any{"method": string(method), "path": args[1], "count": count}
		if err := printResult(cmd.OutOrStdout(), result, strconv.Itoa(count)); err != nil {
			return err
		}
		if cmd.Flags().Changed("expect") && count != callsExpect {
			return fmt.Errorf("expected %s %s to be called %d times, but was called %d times", method, args[1], callsExpect, count)
		}
		return nil
	},
}

func init() {
	clearCmd.Flags().BoolVar(&clearRequests, "requests", false, "Also clear the request journal")
	callsCmd.Flags().IntVar(&callsExpect, "expect", 0, "Fail unless the count equals this value")
	rootCmd.AddCommand(listCmd, clearCmd, callsCmd)
}
