package cli

import (
	"encoding/json"
	"fmt"
	"io"
)

// printResult writes v as indented JSON when --json is set and text
// otherwise.
func printResult(w io.Writer, v any, text string) error {
	if !jsonOutput {
		_, err := fmt.Fprintln(w, text)
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
