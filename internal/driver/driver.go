// Package driver runs investigation episodes over a selection of problems,
// grades the submissions, and reports one outcome per episode.
package driver

import (
	"context"
	"fmt"
	"os"
	"sync"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gyuri2020/AIOpsLab-fork/internal/agent"
	"github.com/gyuri2020/AIOpsLab-fork/internal/capability"
	"github.com/gyuri2020/AIOpsLab-fork/internal/evaluator"
	"github.com/gyuri2020/AIOpsLab-fork/internal/problems"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Outcome classifies how an episode ended from the driver's perspective.
type Outcome string

const (
	// OutcomeSubmitted means the agent submitted an answer and it was graded.
	OutcomeSubmitted Outcome = "submitted"
	// OutcomeExhausted means the step budget ran out with no submission.
	OutcomeExhausted Outcome = "exhausted"
	// OutcomeFailed means a collaborator failed unrecoverably mid-episode.
	OutcomeFailed Outcome = "failed"
)

// Report is the per-episode record the driver produces.
type Report struct {
	ProblemID     string             `json:"problem_id"`
	Task          problems.TaskType  `json:"task"`
	Outcome       Outcome            `json:"outcome"`
	Steps         int                `json:"steps"`
	Payload       string             `json:"payload,omitempty"`
	Verdict       *evaluator.Verdict `json:"verdict,omitempty"`
	FailureReason string             `json:"failure_reason,omitempty"`
}

// Config tunes a driver run.
type Config struct {
	// MaxSteps is the per-episode model-invocation budget.
	MaxSteps int
	// Parallelism bounds concurrently running episodes; 1 is sequential.
	Parallelism int
	// ResultsFile appends one JSON line per finished episode when non-empty.
	ResultsFile string
}

// Driver executes episodes for problems out of a registry. Episodes share no
// mutable state, so they can run concurrently up to the configured limit.
type Driver struct {
	runner    *agent.EpisodeRunner
	evaluator *evaluator.Evaluator
	registry  *problems.Registry
	cfg       Config
	log       *zap.Logger
}

// New wires a driver over its collaborators.
func New(
	model agent.ModelClient,
	exec agent.CommandExecutor,
	eval *evaluator.Evaluator,
	registry *problems.Registry,
	cfg Config,
	log *zap.Logger,
) (*Driver, error) {
	if cfg.MaxSteps < 1 {
		return nil, fmt.Errorf("driver: MaxSteps must be positive, got %d", cfg.MaxSteps)
	}
	if cfg.Parallelism < 1 {
		cfg.Parallelism = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Driver{
		runner:    agent.NewEpisodeRunner(model, exec, agent.EpisodeConfig{MaxSteps: cfg.MaxSteps}, log),
		evaluator: eval,
		registry:  registry,
		cfg:       cfg,
		log:       log.Named("driver"),
	}, nil
}

// Run executes one episode per problem ID and returns the reports in input
// order. A failed episode is reported, never propagated; Run errors only when
// a problem ID is unknown or the results file cannot be written.
func (d *Driver) Run(ctx context.Context, ids []string) ([]Report, error) {
	selected := make([]problems.Problem, 0, len(ids))
	for _, id := range ids {
		p, ok := d.registry.Lookup(id)
		if !ok {
			return nil, fmt.Errorf("driver: unknown problem id %q", id)
		}
		selected = append(selected, p)
	}

	var sink *resultsSink
	if d.cfg.ResultsFile != "" {
		var err error
		sink, err = newResultsSink(d.cfg.ResultsFile)
		if err != nil {
			return nil, err
		}
		defer sink.Close()
	}

	reports := make([]Report, len(selected))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.cfg.Parallelism)

	for i, p := range selected {
		i, p := i, p
		g.Go(func() error {
			report := d.runOne(gctx, p)
			reports[i] = report
			if sink != nil {
				return sink.Write(report)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

// runOne executes and grades a single episode.
func (d *Driver) runOne(ctx context.Context, p problems.Problem) Report {
	report := Report{ProblemID: p.ID, Task: p.Task}

	result, err := d.runner.Run(ctx, agent.EpisodeSpec{
		ProblemID:   p.ID,
		Description: p.Description(),
		Catalogue:   catalogueFor(p),
	})
	if err != nil {
		report.Outcome = OutcomeFailed
		report.FailureReason = err.Error()
		return report
	}

	report.Steps = result.Steps
	switch result.FinalState {
	case agent.StateSubmitted:
		report.Outcome = OutcomeSubmitted
		report.Payload = result.Payload
		verdict, err := d.evaluator.Evaluate(p, result.Payload)
		if err != nil {
			report.FailureReason = fmt.Sprintf("evaluation: %v", err)
		} else {
			report.Verdict = &verdict
		}
	case agent.StateExhausted:
		report.Outcome = OutcomeExhausted
	default:
		report.Outcome = OutcomeFailed
		report.FailureReason = result.FailureReason
	}

	d.log.Info("episode reported",
		zap.String("problem_id", p.ID),
		zap.String("outcome", string(report.Outcome)),
		zap.Int("steps", report.Steps))
	return report
}

// catalogueFor builds the capability catalogue exposed to the model for one
// problem: the shell diagnostic plus a submit capability whose doc states the
// answer format for the task. The expected solution itself never appears.
func catalogueFor(p problems.Problem) map[string]capability.Descriptor {
	info := problems.TaskTypes[p.Task]
	return map[string]capability.Descriptor{
		"exec_shell": {
			Name: "exec_shell",
			Doc: "exec_shell(command: str) -> str\n" +
				"Execute a shell command against the environment and return its output.\n" +
				"Example: exec_shell(\"kubectl get pods -n " + p.Namespace + "\")",
		},
		"submit": {
			Name: "submit",
			Doc: "submit(solution)\n" +
				"Submit your final answer and end the investigation.\n" +
				"Expected format: " + info.SolutionFormat,
		},
	}
}

// resultsSink appends JSON-line reports to a file, safe for concurrent use.
type resultsSink struct {
	mu   sync.Mutex
	file *os.File
}

func newResultsSink(path string) (*resultsSink, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open results file: %w", err)
	}
	return &resultsSink{file: f}, nil
}

func (s *resultsSink) Write(r Report) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.file.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("append report: %w", err)
	}
	return nil
}

func (s *resultsSink) Close() error {
	return s.file.Close()
}
