// internal/agent/models.go
package agent

import (
	"github.com/gyuri2020/AIOpsLab-fork/internal/conversation"
)

// ActionKind discriminates the parsed intent of a model response.
type ActionKind string

const (
	// ActionRunCommand carries a diagnostic shell command to execute.
	ActionRunCommand ActionKind = "RUN_COMMAND"
	// ActionSubmit carries the final answer payload and ends the episode.
	ActionSubmit ActionKind = "SUBMIT"
	// ActionUnparseable means no recognizable call expression was found in
	// the response text.
	ActionUnparseable ActionKind = "UNPARSEABLE"
)

// Action is the parser's verdict on one model response. Exactly one of
// Command or Payload is meaningful, selected by Kind; Raw always holds the
// original response text.
type Action struct {
	Kind    ActionKind
	Command string
	Payload string
	Raw     string
}

// EpisodeState is the controller's position in the episode lifecycle.
type EpisodeState string

const (
	// StateAwaitingAction means the controller is about to invoke the model.
	StateAwaitingAction EpisodeState = "AWAITING_ACTION"
	// StateDispatching means a parsed action is being routed to its executor.
	StateDispatching EpisodeState = "DISPATCHING"
	// StateSubmitted is terminal: the model called the submission capability.
	StateSubmitted EpisodeState = "SUBMITTED"
	// StateExhausted is terminal: the step budget ran out without a submission.
	StateExhausted EpisodeState = "EXHAUSTED"
	// StateFailed is terminal: a collaborator failed unrecoverably.
	StateFailed EpisodeState = "FAILED"
)

// Terminal reports whether the state ends the episode.
func (s EpisodeState) Terminal() bool {
	switch s {
	case StateSubmitted, StateExhausted, StateFailed:
		return true
	}
	return false
}

// EpisodeConfig bounds a single episode.
type EpisodeConfig struct {
	// MaxSteps is the model-invocation budget. Every model call consumes one
	// step, including calls whose response fails to parse.
	MaxSteps int
}

// StepOutcome reports what one controller step did.
type StepOutcome struct {
	// Step is the 1-based count of model invocations so far.
	Step int
	// Action is the parsed intent of the model response for this step.
	Action Action
	// Observation is the environment feedback appended to the history, empty
	// when the step was terminal.
	Observation string
	// State is the controller state after the step.
	State EpisodeState
}

// EpisodeResult packages the outcome of one finished episode.
type EpisodeResult struct {
	// FinalState is one of the terminal states.
	FinalState EpisodeState
	// Payload is the submitted answer; set only when FinalState is
	// StateSubmitted.
	Payload string
	// Steps is the number of model invocations consumed.
	Steps int
	// FailureReason describes the unrecoverable collaborator error when
	// FinalState is StateFailed.
	FailureReason string
	// History is the full conversation transcript of the episode.
	History []conversation.Message
}
