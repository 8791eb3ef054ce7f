package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/gyuri2020/AIOpsLab-fork/internal/config"
	"github.com/gyuri2020/AIOpsLab-fork/internal/driver"
	"github.com/gyuri2020/AIOpsLab-fork/internal/evaluator"
	"github.com/gyuri2020/AIOpsLab-fork/internal/executor"
	"github.com/gyuri2020/AIOpsLab-fork/internal/llmclient"
	"github.com/gyuri2020/AIOpsLab-fork/internal/observability"
	"github.com/gyuri2020/AIOpsLab-fork/internal/problems"
)

// newRunCmd creates and configures the `run` command.
func newRunCmd() *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run [problem-ids...]",
		Short: "Runs investigation episodes against one or more problems",
		Long: `Runs one investigation episode per selected problem and grades the
submissions. Problems are selected by ID, or by --task/--app filters when no
IDs are given.`,
		// The PreRunE function is a good place to handle configuration finalization
		// before the main execution logic in RunE.
		PreRunE: func(cmd *cobra.Command, args []string) error {
			// Bind flags to their corresponding Viper keys. This is the idiomatic way
			// to ensure that command-line flags correctly override values from
			// the config file and environment variables.
			if err := viper.BindPFlag("episode.max_steps", cmd.Flags().Lookup("max-steps")); err != nil {
				return err
			}
			if err := viper.BindPFlag("driver.parallelism", cmd.Flags().Lookup("parallel")); err != nil {
				return err
			}
			if err := viper.BindPFlag("driver.results_file", cmd.Flags().Lookup("results-file")); err != nil {
				return err
			}
			return viper.BindPFlag("driver.problems_file", cmd.Flags().Lookup("problems-file"))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// Use the context passed from Execute (signal-aware).
			ctx := cmd.Context()
			logger := observability.GetLogger()

			// Re-load the config. Now that flags are bound in PreRunE, Viper
			// applies the overrides with the right precedence.
			cfg, err := config.NewConfigFromViper(viper.GetViper())
			if err != nil {
				return fmt.Errorf("failed to finalize config with flag overrides: %w", err)
			}
			appCfg = cfg

			registry := problems.NewRegistry()
			if cfg.Driver.ProblemsFile != "" {
				if err := registry.LoadOverlay(cfg.Driver.ProblemsFile); err != nil {
					return fmt.Errorf("failed to load problems overlay: %w", err)
				}
			}

			ids, err := selectProblemIDs(cmd, registry, args)
			if err != nil {
				return err
			}

			model, err := llmclient.NewClient(cfg.LLM, logger)
			if err != nil {
				return fmt.Errorf("failed to initialize model client: %w", err)
			}
			exec := executor.NewShellExecutor(logger,
				executor.WithTimeout(cfg.Executor.CommandTimeout),
				executor.WithShell(cfg.Executor.Shell),
			)

			d, err := driver.New(model, exec, evaluator.New(logger), registry, driver.Config{
				MaxSteps:    cfg.Episode.MaxSteps,
				Parallelism: cfg.Driver.Parallelism,
				ResultsFile: cfg.Driver.ResultsFile,
			}, logger)
			if err != nil {
				return err
			}

			logger.Info("Starting run",
				zap.Int("problems", len(ids)),
				zap.Int("max_steps", cfg.Episode.MaxSteps),
				zap.Int("parallelism", cfg.Driver.Parallelism),
			)

			reports, err := d.Run(ctx, ids)
			if err != nil {
				return err
			}

			printRunSummary(cmd, reports)
			if cfg.Driver.ResultsFile != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Per-episode reports appended to %s\n", cfg.Driver.ResultsFile)
			}
			return nil
		},
	}

	runCmd.Flags().String("task", "", "Run all problems of one task type (detection, localization, analysis, mitigation)")
	runCmd.Flags().String("app", "", "Run all problems targeting one application")
	runCmd.Flags().Int("max-steps", 0, "Per-episode model invocation budget. (Overrides config/env)")
	runCmd.Flags().IntP("parallel", "j", 0, "Number of episodes run concurrently. (Overrides config/env)")
	runCmd.Flags().StringP("results-file", "o", "", "File to append per-episode JSON reports to. (Overrides config/env)")
	runCmd.Flags().String("problems-file", "", "YAML file with additional problem definitions. (Overrides config/env)")

	return runCmd
}

// selectProblemIDs resolves the set of episodes to run: explicit IDs win,
// otherwise the task/app filters select from the registry.
func selectProblemIDs(cmd *cobra.Command, registry *problems.Registry, args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}

	task, _ := cmd.Flags().GetString("task")
	app, _ := cmd.Flags().GetString("app")
	if task == "" && app == "" {
		return nil, fmt.Errorf("no problems selected: pass problem IDs or use --task/--app")
	}
	if task != "" {
		if _, ok := problems.TaskTypes[problems.TaskType(task)]; !ok {
			return nil, fmt.Errorf("unknown task type %q", task)
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
	if len(selected) == 0 {
		return nil, fmt.Errorf("no problems match task=%q app=%q", task, app)
	}

	ids := make([]string, 0, len(selected))
	for _, p := range selected {
		ids = append(ids, p.ID)
	}
	return ids, nil
}

// printRunSummary writes a per-episode line and aggregate counts.
func printRunSummary(cmd *cobra.Command, reports []driver.Report) {
	out := cmd.OutOrStdout()

	var correct, unverified, exhausted, failed int
	for _, r := range reports {
		status := string(r.Outcome)
		switch {
		case r.Outcome == driver.OutcomeSubmitted && r.Verdict != nil && r.Verdict.Correct:
			status = "correct"
			correct++
		case r.Outcome == driver.OutcomeSubmitted && r.Verdict != nil && r.Verdict.Unverified:
			status = "unverified"
			unverified++
		case r.Outcome == driver.OutcomeSubmitted:
			status = "incorrect"
		case r.Outcome == driver.OutcomeExhausted:
			exhausted++
		default:
			failed++
		}
		fmt.Fprintf(out, "%-50s %-12s steps=%d\n", r.ProblemID, status, r.Steps)
		if r.FailureReason != "" {
			fmt.Fprintf(out, "  reason: %s\n", r.FailureReason)
		}
	}
	fmt.Fprintf(out, "\n%d episodes: %d correct, %d unverified, %d exhausted, %d failed\n",
		len(reports), correct, unverified, exhausted, failed)
}
