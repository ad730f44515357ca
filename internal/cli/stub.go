package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/standout/appbridge-testkit/pkg/mockserver"
	"github.com/standout/appbridge-testkit/pkg/wiremock"
)

var (
	stubPattern  bool
	stubStatus   int
	stubHeaders  []string
	stubBody     string
	stubBodyFile string
	stubText     string
	stubID       string
)

type stubResult struct {
	ID       string `json:"id"`
	Endpoint string `json:"endpoint"`
	Status   int    `json:"status"`
}

var stubCmd = &cobra.Command{
	Use:   "stub METHOD URL",
	Short: "Register a stub on the running mock server",
	Example: `  # JSON body
  appbridge-mock stub GET /users/1 --body '{"id":1}'

  # Regular expression on the URL, error status
  appbridge-mock stub POST '/orders/[0-9]+' --pattern --status 422 --body '{"error":"invalid"}'

  # Body from a file, extra header
  appbridge-mock stub GET /export --body-file export.json --header X-Total=42`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		method, err := mockserver.ParseMethod(args[0])
		if err != nil {
			return err
		}
		headers, err := parseHeaders(stubHeaders)
		if err != nil {
			return err
		}

		ctrl := newController()
		b := ctrl.Stub(method, args[1]).WithStatus(stubStatus).WithHeaders(headers)
		if stubPattern {
			b.Pattern()
		}
		if stubID != "" {
			b.WithID(stubID)
		}

		switch {
		case stubBodyFile != "":
			data, err := os.ReadFile(stubBodyFile)
			if err != nil {
				return fmt.Errorf("failed to read body file: %w", err)
			}
			b.WithJSON(json.RawMessage(data))
		case stubBody != "":
			b.WithJSON(json.RawMessage(stubBody))
		case stubText != "":
			b.WithBody(stubText)
		}
		if err := b.Err(); err != nil {
			return err
		}

		e := b.Endpoint()
		if err := ctrl.Register(cmd.Context(), e); err != nil {
			return fmt.Errorf("failed to register %s: %w", e, err)
		}
		registered := ctrl.Endpoints()[0]
		result := stubResult{ID: registered.ID, Endpoint: registered.String(), Status: registered.Status}
		return printResult(cmd.OutOrStdout(), result, result.ID)
	},
}

// parseHeaders turns KEY=VALUE pairs into a header map.
func parseHeaders(pairs []string) (map[string]string, error) {
	headers := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid header %q (want KEY=VALUE)", p)
		}
		headers[k] = v
	}
	return headers, nil
}

var loadCmd = &cobra.Command{
	Use:   "load GLOB",
	Short: "Register every mapping in the matching JSON or YAML files",
	Long: `Read WireMock mapping files (a single mapping, a list, or {"mappings": [...]})
and register them on the running server. The glob supports ** for
recursive matches.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mappings, err := wiremock.LoadMappingFiles(args[0])
		if err != nil {
			return err
		}
		if len(mappings) == 0 {
			return fmt.Errorf("no mapping files match %q", args[0])
		}

		client := newAdminClient()
		loaded := make([]wiremock.Mapping, 0, len(mappings))
		for i := range mappings {
			created, err := client.CreateMapping(cmd.Context(), &mappings[i])
			if err != nil {
				return fmt.Errorf("failed to register %s: %w", mappings[i].Request, err)
			}
			loaded = append(loaded, *created)
		}
		return printResult(cmd.OutOrStdout(), loaded, fmt.Sprintf("loaded %d mappings", len(loaded)))
	},
}

func init() {
	f := stubCmd.Flags()
	f.BoolVar(&stubPattern, "pattern", false, "Treat URL as a regular expression")
	f.IntVar(&stubStatus, "status", 200, "Response status code")
	f.StringArrayVarP(&stubHeaders, "header", "H", nil, "Response header as KEY=VALUE (repeatable)")
	f.StringVar(&stubBody, "body", "", "JSON response body")
	f.StringVar(&stubBodyFile, "body-file", "", "Read the JSON response body from a file")
	f.StringVar(&stubText, "text", "", "Plain text response body")
	f.StringVar(&stubID, "id", "", "Mapping ID (default: random UUID)")
	stubCmd.MarkFlagsMutuallyExclusive("body", "body-file", "text")

	rootCmd.AddCommand(stubCmd, loadCmd)
}
