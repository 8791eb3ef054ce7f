package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gyuri2020/AIOpsLab-fork/internal/problems"
)

// newProblemsCmd creates the `problems` command group for inspecting the
// problem registry without running any episodes.
func newProblemsCmd() *cobra.Command {
	problemsCmd := &cobra.Command{
		Use:   "problems",
		Short: "Inspect the built-in problem registry",
	}
	problemsCmd.PersistentFlags().String("problems-file", "", "YAML file with additional problem definitions")

	problemsCmd.AddCommand(newProblemsListCmd())
	problemsCmd.AddCommand(newProblemsSummaryCmd())
	problemsCmd.AddCommand(newProblemsExportCmd())
	return problemsCmd
}

// problemsRegistry builds the registry for a problems subcommand, applying the
// overlay file when one is given.
func problemsRegistry(cmd *cobra.Command) (*problems.Registry, error) {
	registry := problems.NewRegistry()
	overlay, _ := cmd.Flags().GetString("problems-file")
	if overlay != "" {
		if err := registry.LoadOverlay(overlay); err != nil {
			return nil, fmt.Errorf("failed to load problems overlay: %w", err)
		}
	}
	return registry, nil
}

func newProblemsListCmd() *cobra.Command {
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List problem IDs, optionally filtered by task or application",
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := problemsRegistry(cmd)
			if err != nil {
				return err
			}

			task, _ := cmd.Flags().GetString("task")
			app, _ := cmd.Flags().GetString("app")
			if task != "" {
				if _, ok := problems.TaskTypes[problems.TaskType(task)]; !ok {
					return fmt.Errorf("unknown task type %q", task)
				}
			}

			selected := registry.Filter(func(p problems.Problem) bool {
				if task != "" && string(p.Task) != task {
					return false
				}
				if app != "" && !strings.EqualFold(p.App, app) {
					return false
				}
				return true
			})

			out := cmd.OutOrStdout()
			for _, p := range selected {
				fmt.Fprintf(out, "%-55s %-14s %s\n", p.ID, p.Task, p.App)
			}
			fmt.Fprintf(out, "\n%d problems\n", len(selected))
			return nil
		},
	}
	listCmd.Flags().String("task", "", "Filter by task type (detection, localization, analysis, mitigation)")
	listCmd.Flags().String("app", "", "Filter by application name")
	return listCmd
}

func newProblemsSummaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Print aggregate counts over the problem registry",
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := problemsRegistry(cmd)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), registry.RenderSummary())
			return nil
		},
	}
}

func newProblemsExportCmd() *cobra.Command {
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export the problem registry as JSON or CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := problemsRegistry(cmd)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if path, _ := cmd.Flags().GetString("output"); path != "" {
				f, err := os.Create(path)
				if err != nil {
					return fmt.Errorf("failed to create output file: %w", err)
				}
				defer f.Close()
				out = f
			}

			format, _ := cmd.Flags().GetString("format")
			switch strings.ToLower(format) {
			case "json":
				return registry.WriteJSON(out)
			case "csv":
				return registry.WriteCSV(out)
			default:
				return fmt.Errorf("unsupported export format %q (want 'json' or 'csv')", format)
			}
		},
	}
	exportCmd.Flags().StringP("format", "f", "json", "Export format ('json' or 'csv')")
	exportCmd.Flags().StringP("output", "o", "", "Output file path. If unset, writes to stdout.")
	return exportCmd
}
