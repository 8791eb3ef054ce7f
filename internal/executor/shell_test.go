package executor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestExecuteSimpleCommand(t *testing.T) {
	e := NewShellExecutor(zap.NewNop())

	obs, err := e.Execute(context.Background(), "echo hello")
	require.NoError(t, err)
	assert.Contains(t, obs, "hello")
}

func TestExecuteShellPipeline(t *testing.T) {
	e := NewShellExecutor(zap.NewNop())

	obs, err := e.Execute(context.Background(), "echo hello | tr a-z A-Z")
	require.NoError(t, err)
	assert.Contains(t, obs, "HELLO")
}

func TestExecuteQuotedArguments(t *testing.T) {
	e := NewShellExecutor(zap.NewNop())

	obs, err := e.Execute(context.Background(), `echo "two words"`)
	require.NoError(t, err)
	assert.Contains(t, obs, "two words")
}

func TestNonzeroExitIsObservation(t *testing.T) {
	e := NewShellExecutor(zap.NewNop())

	obs, err := e.Execute(context.Background(), "sh -c 'echo oops >&2; exit 3'")
	require.NoError(t, err)
	assert.Contains(t, obs, "oops")
	assert.Contains(t, obs, "exit status 3")
}

func TestUnknownBinaryIsObservation(t *testing.T) {
	e := NewShellExecutor(zap.NewNop())

	obs, err := e.Execute(context.Background(), "definitely-not-a-real-binary-xyz")
	require.NoError(t, err)
	assert.Contains(t, obs, "not found")
}

func TestEmptyCommandIsObservation(t *testing.T) {
	e := NewShellExecutor(zap.NewNop())

	obs, err := e.Execute(context.Background(), "   ")
	require.NoError(t, err)
	assert.Equal(t, "error: empty command", obs)
}

func TestCommandTimeoutIsObservation(t *testing.T) {
	e := NewShellExecutor(zap.NewNop(), WithTimeout(100*time.Millisecond))

	obs, err := e.Execute(context.Background(), "sleep 5")
	require.NoError(t, err)
	assert.Contains(t, obs, "timed out")
}

func TestCancelledContextIsError(t *testing.T) {
	e := NewShellExecutor(zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Execute(ctx, "echo hello")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOptions(t *testing.T) {
	e := NewShellExecutor(nil, WithTimeout(time.Second), WithShell("/bin/bash"))
	assert.Equal(t, time.Second, e.timeout)
	assert.Equal(t, "/bin/bash", e.shell)

	// Zero values are ignored.
	e = NewShellExecutor(nil, WithTimeout(0), WithShell(""))
	assert.Equal(t, DefaultCommandTimeout, e.timeout)
	assert.Equal(t, "/bin/sh", e.shell)
}
