// internal/agent/interfaces.go
package agent

import (
	"context"

	"github.com/gyuri2020/AIOpsLab-fork/internal/conversation"
)

// ModelClient produces candidate completions for a rendered conversation.
// Implementations own their retry policy; an error returned here is treated
// by the controller as unrecoverable for the episode.
type ModelClient interface {
	// Run submits the full ordered message log and returns one or more
	// candidate response texts. The controller only consumes the first
	// candidate; extras exist for clients configured with n > 1.
	Run(ctx context.Context, messages []conversation.Message) ([]string, error)
}

// CommandExecutor runs a diagnostic command in the target environment.
// Ordinary command failures (nonzero exit, unknown binary, command timeout)
// are NOT errors: their text is the observation the model needs to see. The
// error return is reserved for infrastructure faults that make further
// execution pointless.
type CommandExecutor interface {
	Execute(ctx context.Context, command string) (observation string, err error)
}
