// Package executor runs the model's diagnostic commands against the local
// environment and turns everything the command did, including its failures,
// into observation text for the conversation.
package executor

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	shellwords "github.com/mattn/go-shellwords"
	"go.uber.org/zap"
)

// DefaultCommandTimeout bounds a single diagnostic command.
const DefaultCommandTimeout = 2 * time.Minute

// shellMetaChars force execution through the shell interpreter instead of a
// direct exec, so pipes, redirects and substitutions behave as the model
// expects.
const shellMetaChars = "|&;<>()$`\\\"'\n*?[]#~%"

// ShellExecutor implements agent.CommandExecutor over local process
// execution. Ordinary command failures are observations; the error return is
// reserved for the caller's context being cancelled, which means the episode
// itself is being torn down.
type ShellExecutor struct {
	shell   string
	timeout time.Duration
	log     *zap.Logger
}

// Option tunes a ShellExecutor.
type Option func(*ShellExecutor)

// WithTimeout overrides DefaultCommandTimeout.
func WithTimeout(d time.Duration) Option {
	return func(e *ShellExecutor) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithShell overrides the interpreter used for metacharacter commands.
func WithShell(shell string) Option {
	return func(e *ShellExecutor) {
		if shell != "" {
			e.shell = shell
		}
	}
}

// NewShellExecutor builds an executor with the given options.
func NewShellExecutor(log *zap.Logger, opts ...Option) *ShellExecutor {
	if log == nil {
		log = zap.NewNop()
	}
	e := &ShellExecutor{
		shell:   "/bin/sh",
		timeout: DefaultCommandTimeout,
		log:     log.Named("executor"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs command and returns its combined stdout and stderr. Nonzero
// exits, unknown binaries, tokenize failures and per-command timeouts all
// come back as observation text with a nil error; the model is expected to
// read the failure and adapt.
func (e *ShellExecutor) Execute(ctx context.Context, command string) (string, error) {
	command = strings.TrimSpace(command)
	if command == "" {
		return "error: empty command", nil
	}

	cmdCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	cmd, obs := e.buildCmd(cmdCtx, command)
	if cmd == nil {
		return obs, nil
	}

	start := time.Now()
	output, err := cmd.CombinedOutput()
	duration := time.Since(start)

	// The episode is being torn down; there is no model left to observe.
	if ctx.Err() != nil {
		return "", fmt.Errorf("execution cancelled: %w", ctx.Err())
	}

	text := string(output)
	switch {
	case errors.Is(cmdCtx.Err(), context.DeadlineExceeded):
		text = strings.TrimRight(text, "\n") + fmt.Sprintf("\nerror: command timed out after %s", e.timeout)
	case err != nil:
		// Keep the exit status visible; stderr alone can be ambiguous.
		text = strings.TrimRight(text, "\n") + "\n" + err.Error()
	}

	e.log.Debug("command executed",
		zap.String("command", command),
		zap.Duration("duration", duration),
		zap.Bool("failed", err != nil))

	return strings.TrimLeft(text, "\n"), nil
}

// buildCmd picks between a direct exec of the tokenized command and running
// it through the shell when metacharacters are present. A tokenize failure
// yields an observation instead of a command.
func (e *ShellExecutor) buildCmd(ctx context.Context, command string) (*exec.Cmd, string) {
	if strings.ContainsAny(command, shellMetaChars) {
		return exec.CommandContext(ctx, e.shell, "-c", command), ""
	}

	args, err := shellwords.Parse(command)
	if err != nil {
		return nil, fmt.Sprintf("error: could not parse command: %v", err)
	}
	if len(args) == 0 {
		return nil, "error: empty command"
	}
	return exec.CommandContext(ctx, args[0], args[1:]...), ""
}
