// internal/agent/controller.go
package agent

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/gyuri2020/AIOpsLab-fork/internal/conversation"
)

// CorrectiveGuidance is appended as a user message when a model response
// yields no parseable action.
const CorrectiveGuidance = "Could not parse an action from your response. " +
	"Reply with exactly one capability call, for example exec_shell(\"<command>\") or submit(<solution>)."

// LoopController drives one episode's agent-environment loop: it invokes the
// model, parses the response into an action, dispatches the action, feeds the
// observation back into the conversation, and enforces the step budget.
//
// The loop is strictly sequential: one outstanding model or executor call at
// a time, since each step's input depends on the previous observation. A
// controller instance must not be shared across goroutines.
type LoopController struct {
	history  *conversation.History
	model    ModelClient
	executor CommandExecutor
	parser   *ActionParser
	cfg      EpisodeConfig
	log      *zap.Logger

	state         EpisodeState
	steps         int
	payload       string
	failureReason string
}

// NewLoopController wires a controller over an already-seeded history. The
// history must contain the initial system and user messages; MaxSteps must be
// positive.
func NewLoopController(
	history *conversation.History,
	model ModelClient,
	executor CommandExecutor,
	parser *ActionParser,
	cfg EpisodeConfig,
	log *zap.Logger,
) (*LoopController, error) {
	if history == nil || history.Len() < 2 {
		return nil, fmt.Errorf("%w: controller requires a seeded system+user history", conversation.ErrInvariantViolation)
	}
	if model == nil || executor == nil {
		return nil, fmt.Errorf("agent: model client and command executor are required")
	}
	if cfg.MaxSteps < 1 {
		return nil, fmt.Errorf("agent: MaxSteps must be positive, got %d", cfg.MaxSteps)
	}
	if parser == nil {
		parser = NewActionParser()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &LoopController{
		history:  history,
		model:    model,
		executor: executor,
		parser:   parser,
		cfg:      cfg,
		log:      log.Named("loop"),
		state:    StateAwaitingAction,
	}, nil
}

// State returns the controller's current lifecycle state.
func (c *LoopController) State() EpisodeState { return c.state }

// Steps returns the number of model invocations consumed so far.
func (c *LoopController) Steps() int { return c.steps }

// Payload returns the submitted answer once the state is StateSubmitted.
func (c *LoopController) Payload() string { return c.payload }

// FailureReason describes the collaborator fault once the state is StateFailed.
func (c *LoopController) FailureReason() string { return c.failureReason }

// Step performs one loop iteration: one model invocation plus the dispatch of
// whatever action it produced. Returns ErrEpisodeFinished when called on a
// terminal controller. Collaborator faults move the controller to StateFailed
// and are also returned to the caller.
func (c *LoopController) Step(ctx context.Context) (StepOutcome, error) {
	if c.state.Terminal() {
		return StepOutcome{State: c.state, Step: c.steps}, ErrEpisodeFinished
	}

	candidates, err := c.model.Run(ctx, c.history.Render())
	if err != nil {
		return c.fail(ErrCodeModelFailure, fmt.Errorf("model invocation: %w", err))
	}
	if len(candidates) == 0 {
		return c.fail(ErrCodeModelFailure, ErrEmptyModelResponse)
	}
	c.steps++

	response := candidates[0]
	if err := c.history.Append(conversation.Message{Role: conversation.RoleAssistant, Content: response}); err != nil {
		return c.fail(ErrCodeHistoryFailure, err)
	}

	action := c.parser.Parse(response)
	c.log.Debug("parsed action",
		zap.Int("step", c.steps),
		zap.String("kind", string(action.Kind)))

	switch action.Kind {
	case ActionSubmit:
		c.state = StateSubmitted
		c.payload = action.Payload
		c.log.Info("solution submitted", zap.Int("steps", c.steps))
		return StepOutcome{Step: c.steps, Action: action, State: c.state}, nil

	case ActionRunCommand:
		c.state = StateDispatching
		observation, err := c.executor.Execute(ctx, action.Command)
		if err != nil {
			return c.fail(ErrCodeExecutorFailure, fmt.Errorf("command dispatch: %w", err))
		}
		return c.observe(action, observation)

	default:
		c.log.Warn("unparseable model response", zap.Int("step", c.steps))
		return c.observe(action, CorrectiveGuidance)
	}
}

// Run advances the loop until a terminal state is reached. The terminal state
// is returned; collaborator faults are reflected in StateFailed rather than
// an error, so a caller can always read the outcome from the controller.
func (c *LoopController) Run(ctx context.Context) EpisodeState {
	for !c.state.Terminal() {
		if _, err := c.Step(ctx); err != nil {
			break
		}
	}
	return c.state
}

// observe appends the environment feedback for a non-terminal action and
// settles the next state: exhausted when the budget is spent, otherwise back
// to awaiting the model.
func (c *LoopController) observe(action Action, observation string) (StepOutcome, error) {
	if err := c.history.Append(conversation.Message{Role: conversation.RoleUser, Content: observation}); err != nil {
		return c.fail(ErrCodeHistoryFailure, err)
	}
	if c.steps >= c.cfg.MaxSteps {
		c.state = StateExhausted
		c.log.Info("step budget exhausted", zap.Int("steps", c.steps))
	} else {
		c.state = StateAwaitingAction
	}
	return StepOutcome{Step: c.steps, Action: action, Observation: observation, State: c.state}, nil
}

func (c *LoopController) fail(code ErrorCode, err error) (StepOutcome, error) {
	c.state = StateFailed
	c.failureReason = fmt.Sprintf("%s: %v", code, err)
	c.log.Error("episode failed",
		zap.String("code", string(code)),
		zap.Int("steps", c.steps),
		zap.Error(err))
	return StepOutcome{Step: c.steps, State: c.state}, err
}
