// internal/agent/errors.go
package agent

import "errors"

// ErrorCode is a string type used for structured failure reporting from the
// loop controller and its collaborators. Using a custom type ensures only
// predefined constants appear where an ErrorCode is expected.
type ErrorCode string

const (
	// -- Collaborator failures --
	ErrCodeModelFailure    ErrorCode = "MODEL_FAILURE"
	ErrCodeExecutorFailure ErrorCode = "EXECUTOR_FAILURE"
	ErrCodeHistoryFailure  ErrorCode = "HISTORY_FAILURE"

	// -- Episode lifecycle --
	ErrCodeBudgetExhausted ErrorCode = "BUDGET_EXHAUSTED"
	ErrCodeEpisodeAborted  ErrorCode = "EPISODE_ABORTED"
)

// ErrEpisodeFinished is returned by Step when the controller is already in a
// terminal state and cannot advance further.
var ErrEpisodeFinished = errors.New("agent: episode already finished")

// ErrEmptyModelResponse is returned by the model client when the provider
// answers with no candidate texts.
var ErrEmptyModelResponse = errors.New("agent: model returned no candidates")
