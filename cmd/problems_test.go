// File: cmd/problems_test.go
package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProblemsList(t *testing.T) {
	t.Run("lists the full registry", func(t *testing.T) {
		out, err := executeCommand("problems", "list")
		require.NoError(t, err)
		assert.Contains(t, out, "k8s_target_port-misconfig-detection-1")
		assert.Contains(t, out, "noop_detection_hotel_reservation-1")
	})

	t.Run("filters by task", func(t *testing.T) {
		out, err := executeCommand("problems", "list", "--task", "mitigation")
		require.NoError(t, err)
		for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
			if line == "" || strings.HasSuffix(line, "problems") {
				continue
			}
			assert.Contains(t, line, "mitigation")
		}
	})

	t.Run("filters by app", func(t *testing.T) {
		out, err := executeCommand("problems", "list", "--app", "flower (fl)")
		require.NoError(t, err)
		assert.Contains(t, out, "2 problems")
	})

	t.Run("rejects unknown task", func(t *testing.T) {
		_, err := executeCommand("problems", "list", "--task", "divination")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "divination")
	})
}

func TestProblemsSummary(t *testing.T) {
	out, err := executeCommand("problems", "summary")
	require.NoError(t, err)
	assert.Contains(t, out, "By Task Type:")
	assert.Contains(t, out, "By Application:")
}

func TestProblemsExport(t *testing.T) {
	t.Run("json to stdout", func(t *testing.T) {
		out, err := executeCommand("problems", "export", "--format", "json")
		require.NoError(t, err)

		var doc map[string]json.RawMessage
		require.NoError(t, json.Unmarshal([]byte(out), &doc))
		assert.Contains(t, doc, "task_types")
		assert.Contains(t, doc, "problems")
		assert.Contains(t, doc, "summary")
	})

	t.Run("csv to file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "problems.csv")
		_, err := executeCommand("problems", "export", "--format", "csv", "-o", path)
		require.NoError(t, err)

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		lines := strings.Split(strings.TrimSpace(string(content)), "\n")
		assert.True(t, strings.HasPrefix(lines[0], "id,task,app"))
		assert.Greater(t, len(lines), 50)
	})

	t.Run("rejects unknown format", func(t *testing.T) {
		_, err := executeCommand("problems", "export", "--format", "xml")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "xml")
	})
}
