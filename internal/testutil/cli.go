package testutil

import (
	"bytes"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"
)

// ExecuteCommand runs a cobra command with args and returns what it wrote
// to its output and error streams
func ExecuteCommand(t *testing.T, cmd *cobra.Command, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	// Disable usage output on error for cleaner test output
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// ParseJSON parses one JSON object from CLI output
func ParseJSON(t *testing.T, output string) map[string]any {
	t.Helper()

	var result map[string]any
	if err := sonic.ConfigStd.UnmarshalFromString(output, &result); err != nil {
		t.Fatalf("Failed to parse JSON output: %v\nOutput: %s", err, output)
	}

	return result
}
