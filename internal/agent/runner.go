// internal/agent/runner.go
package agent

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gyuri2020/AIOpsLab-fork/internal/capability"
	"github.com/gyuri2020/AIOpsLab-fork/internal/conversation"
)

// DefaultPromptTemplate is the system prompt used when an EpisodeSpec does
// not bring its own template. Placeholders are substituted literally by the
// capability registry.
const DefaultPromptTemplate = `You are an SRE agent investigating a fault in a live distributed system.

Problem:
{problem_description}

You interact with the environment through capability calls. Reply with exactly one call per turn.

Diagnostic APIs:
{diagnostic_apis}

Submission APIs:
{submission_apis}`

// DefaultOpeningInstruction is the first user message when an EpisodeSpec
// does not override it.
const DefaultOpeningInstruction = "Begin your investigation. Issue one capability call."

// EpisodeSpec describes one episode to run: the problem text, the capability
// catalogue exposed to the model, and optional overrides for prompt assembly.
type EpisodeSpec struct {
	ProblemID   string
	Description string
	// Instruction is the opening user message; DefaultOpeningInstruction
	// when empty.
	Instruction string
	// Catalogue is the raw capability catalogue for this episode.
	Catalogue map[string]capability.Descriptor
	// Template overrides DefaultPromptTemplate when non-empty.
	Template string
	// Classifier overrides capability.DefaultClassifier when non-nil.
	Classifier capability.Classifier
}

// EpisodeRunner composes the registry, the seeded conversation, and the loop
// controller for exactly one episode. Runners share no mutable state, so
// independent episodes can run on separate runners concurrently.
type EpisodeRunner struct {
	model    ModelClient
	executor CommandExecutor
	parser   *ActionParser
	cfg      EpisodeConfig
	log      *zap.Logger
}

// NewEpisodeRunner builds a runner over the given collaborators.
func NewEpisodeRunner(model ModelClient, executor CommandExecutor, cfg EpisodeConfig, log *zap.Logger) *EpisodeRunner {
	if log == nil {
		log = zap.NewNop()
	}
	return &EpisodeRunner{
		model:    model,
		executor: executor,
		parser:   NewActionParser(),
		cfg:      cfg,
		log:      log.Named("runner"),
	}
}

// Run executes one episode to a terminal state and packages the outcome. The
// returned error is non-nil only when the episode could not be set up; loop
// failures surface as StateFailed inside the result.
func (r *EpisodeRunner) Run(ctx context.Context, spec EpisodeSpec) (EpisodeResult, error) {
	registry := capability.NewRegistry(spec.Catalogue, spec.Classifier)

	template := spec.Template
	if template == "" {
		template = DefaultPromptTemplate
	}
	instruction := spec.Instruction
	if instruction == "" {
		instruction = DefaultOpeningInstruction
	}

	history := conversation.NewHistory()
	systemPrompt := registry.BuildSystemPrompt(spec.Description, template)
	if err := history.Append(conversation.Message{Role: conversation.RoleSystem, Content: systemPrompt}); err != nil {
		return EpisodeResult{}, fmt.Errorf("seed system message: %w", err)
	}
	if err := history.Append(conversation.Message{Role: conversation.RoleUser, Content: instruction}); err != nil {
		return EpisodeResult{}, fmt.Errorf("seed opening instruction: %w", err)
	}

	episodeID := uuid.NewString()
	log := r.log.With(
		zap.String("episode_id", episodeID),
		zap.String("problem_id", spec.ProblemID))

	controller, err := NewLoopController(history, r.model, r.executor, r.parser, r.cfg, log)
	if err != nil {
		return EpisodeResult{}, fmt.Errorf("build controller: %w", err)
	}

	log.Info("episode starting", zap.Int("max_steps", r.cfg.MaxSteps))
	final := controller.Run(ctx)
	log.Info("episode finished",
		zap.String("final_state", string(final)),
		zap.Int("steps", controller.Steps()))

	return EpisodeResult{
		FinalState:    final,
		Payload:       controller.Payload(),
		Steps:         controller.Steps(),
		FailureReason: controller.FailureReason(),
		History:       history.Render(),
	}, nil
}
