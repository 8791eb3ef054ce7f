// internal/agent/parser_test.go
package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRunCommand(t *testing.T) {
	p := NewActionParser()

	cases := []struct {
		name    string
		input   string
		command string
	}{
		{
			name:    "bare call",
			input:   `exec_shell("kubectl get pods -n test-hotel")`,
			command: "kubectl get pods -n test-hotel",
		},
		{
			name:    "single quoted argument",
			input:   `exec_shell('kubectl describe pod geo-8454')`,
			command: "kubectl describe pod geo-8454",
		},
		{
			name:    "call embedded in prose",
			input:   "I will check the pods first. exec_shell(\"kubectl get pods\") should reveal the failing one.",
			command: "kubectl get pods",
		},
		{
			name:    "inner quotes survive",
			input:   `exec_shell("kubectl get pods -o jsonpath='{.items[*].metadata.name}'")`,
			command: "kubectl get pods -o jsonpath='{.items[*].metadata.name}'",
		},
		{
			name:    "unquoted argument",
			input:   `exec_shell(kubectl get events)`,
			command: "kubectl get events",
		},
		{
			name:    "nested parens inside quotes",
			input:   `exec_shell("awk '(NR>1)' /var/log/app.log")`,
			command: "awk '(NR>1)' /var/log/app.log",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			act := p.Parse(tc.input)
			require.Equal(t, ActionRunCommand, act.Kind)
			assert.Equal(t, tc.command, act.Command)
			assert.Equal(t, tc.input, act.Raw)
		})
	}
}

func TestParseSubmit(t *testing.T) {
	p := NewActionParser()

	t.Run("quoted string payload is unquoted", func(t *testing.T) {
		act := p.Parse(`submit("Yes")`)
		require.Equal(t, ActionSubmit, act.Kind)
		assert.Equal(t, "Yes", act.Payload)
	})

	t.Run("list payload passes through raw", func(t *testing.T) {
		act := p.Parse(`submit(["geo", "rate"])`)
		require.Equal(t, ActionSubmit, act.Kind)
		assert.Equal(t, `["geo", "rate"]`, act.Payload)
	})

	t.Run("object payload passes through raw", func(t *testing.T) {
		act := p.Parse(`submit({"system_level": "application", "fault_type": "misconfig"})`)
		require.Equal(t, ActionSubmit, act.Kind)
		assert.Equal(t, `{"system_level": "application", "fault_type": "misconfig"}`, act.Payload)
	})
}

func TestParseFencedBlockPreferred(t *testing.T) {
	p := NewActionParser()

	// Prose mentions submit before the block; the fenced call must win.
	input := "I could submit now, but first let me look around.\n" +
		"```python\nexec_shell(\"kubectl get pods\")\n```\n"
	act := p.Parse(input)
	require.Equal(t, ActionRunCommand, act.Kind)
	assert.Equal(t, "kubectl get pods", act.Command)
}

func TestParseFirstMatchWins(t *testing.T) {
	p := NewActionParser()

	act := p.Parse(`exec_shell("kubectl get pods") and then submit("Yes")`)
	require.Equal(t, ActionRunCommand, act.Kind)
	assert.Equal(t, "kubectl get pods", act.Command)
}

func TestParseUnparseable(t *testing.T) {
	p := NewActionParser()

	cases := []struct {
		name  string
		input string
	}{
		{"free prose", "The geo service looks unhealthy, I should investigate further."},
		{"empty", ""},
		{"keyword without call", "I will exec_shell the command next turn."},
		{"unbalanced parens", `exec_shell("kubectl get pods`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			act := p.Parse(tc.input)
			assert.Equal(t, ActionUnparseable, act.Kind)
			assert.Equal(t, tc.input, act.Raw)
		})
	}
}

func TestParseSkipsMalformedOccurrence(t *testing.T) {
	p := NewActionParser()

	// First occurrence never closes its paren; the later well-formed call
	// must still be found.
	act := p.Parse("exec_shell( broken\nexec_shell(\"kubectl get svc\")")
	require.Equal(t, ActionRunCommand, act.Kind)
	assert.Equal(t, "kubectl get svc", act.Command)
}

func TestParseDeterministic(t *testing.T) {
	p := NewActionParser()
	input := "Let me check.\n```\nexec_shell(\"kubectl logs geo-0\")\n```"

	first := p.Parse(input)
	for i := 0; i < 50; i++ {
		assert.Equal(t, first, p.Parse(input))
	}
}

func TestParseRoundTripThroughFence(t *testing.T) {
	p := NewActionParser()

	act := p.Parse("```\nexec_shell(\"kubectl get pods\")\n```")
	require.Equal(t, ActionRunCommand, act.Kind)
	assert.Equal(t, "kubectl get pods", act.Command)
}

func TestParseCustomKeywords(t *testing.T) {
	p := NewActionParserWithKeywords("run_cmd", "answer")

	act := p.Parse(`answer("root cause found")`)
	require.Equal(t, ActionSubmit, act.Kind)
	assert.Equal(t, "root cause found", act.Payload)

	act = p.Parse(`run_cmd("ls /tmp")`)
	require.Equal(t, ActionRunCommand, act.Kind)
	assert.Equal(t, "ls /tmp", act.Command)
}
