// File: cmd/root_test.go
package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRootCmd_VersionFlag tests if the --version flag works correctly.
func TestRootCmd_VersionFlag(t *testing.T) {
	out, err := executeCommand("--version")

	require.NoError(t, err)
	assert.Contains(t, out, Version)
}

// TestRootCmd_NoArgs tests the behavior when no arguments are provided.
func TestRootCmd_NoArgs(t *testing.T) {
	out, err := executeCommand()

	require.NoError(t, err)
	assert.Contains(t, out, "AIOpsLab drives an LLM agent")
}
