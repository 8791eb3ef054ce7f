// File: cmd/main_test.go
package cmd

import (
	"bytes"
	"context"

	"github.com/spf13/cobra"
)

// newPristineRootCmd builds a fresh root command without the global
// PersistentPreRunE so tests do not touch config files or the global logger.
func newPristineRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     rootCmd.Use,
		Short:   rootCmd.Short,
		Version: Version,
	}
	cmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(newProblemsCmd())
	return cmd
}

// executeCommand runs a pristine root with the given args and captures output.
func executeCommand(args ...string) (string, error) {
	cmd := newPristineRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}
