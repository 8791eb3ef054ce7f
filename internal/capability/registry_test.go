package capability

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleCatalogue() map[string]Descriptor {
	return map[string]Descriptor{
		"exec_shell": {
			Name: "exec_shell",
			Doc:  "exec_shell(command: str) -> str\nRun a shell command against the cluster.",
		},
		"submit": {
			Name: "submit",
			Doc:  "submit(solution: str)\nSubmit the final answer.",
		},
		"get_logs": {
			Name: "get_logs",
			Doc:  "get_logs(service: str) -> str",
		},
	}
}

func TestDefaultClassifier(t *testing.T) {
	cases := []struct {
		name string
		want Group
	}{
		{"exec_shell", GroupDiagnostic},
		{"exec_shell_readonly", GroupDiagnostic},
		{"submit", GroupSubmission},
		{"submit_solution", GroupSubmission},
		{"get_logs", GroupNone},
		{"", GroupNone},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DefaultClassifier(tc.name))
		})
	}
}

func TestNewRegistryPartitionsAndDrops(t *testing.T) {
	r := NewRegistry(sampleCatalogue(), nil)

	diag := r.Group(GroupDiagnostic)
	require.Len(t, diag, 1)
	assert.Contains(t, diag, "exec_shell")

	sub := r.Group(GroupSubmission)
	require.Len(t, sub, 1)
	assert.Contains(t, sub, "submit")
}

func TestNewRegistryCustomClassifier(t *testing.T) {
	everythingDiagnostic := func(string) Group { return GroupDiagnostic }
	r := NewRegistry(sampleCatalogue(), everythingDiagnostic)

	assert.Len(t, r.Group(GroupDiagnostic), 3)
	assert.Empty(t, r.Group(GroupSubmission))
}

func TestRenderSection(t *testing.T) {
	r := NewRegistry(map[string]Descriptor{
		"exec_shell_b": {Name: "exec_shell_b", Doc: "doc b"},
		"exec_shell_a": {Name: "exec_shell_a", Doc: "doc a"},
	}, nil)

	got := r.RenderSection(GroupDiagnostic)
	want := "exec_shell_a\ndoc a\n\nexec_shell_b\ndoc b"
	assert.Equal(t, want, got)

	// Rendering must be reproducible call over call.
	for i := 0; i < 10; i++ {
		assert.Equal(t, want, r.RenderSection(GroupDiagnostic))
	}
}

func TestRenderSectionEmptyGroup(t *testing.T) {
	r := NewRegistry(nil, nil)
	assert.Empty(t, r.RenderSection(GroupDiagnostic))
	assert.Empty(t, r.RenderSection(GroupSubmission))
}

func TestBuildSystemPrompt(t *testing.T) {
	r := NewRegistry(sampleCatalogue(), nil)

	template := strings.Join([]string{
		"Problem:",
		"{problem_description}",
		"",
		"Diagnostic APIs:",
		"{diagnostic_apis}",
		"",
		"Submission APIs:",
		"{submission_apis}",
	}, "\n")

	got := r.BuildSystemPrompt("pod crash loop in namespace test-hotel", template)

	assert.Contains(t, got, "pod crash loop in namespace test-hotel")
	assert.Contains(t, got, "exec_shell(command: str) -> str")
	assert.Contains(t, got, "submit(solution: str)")
	assert.NotContains(t, got, "{problem_description}")
	assert.NotContains(t, got, "{diagnostic_apis}")
	assert.NotContains(t, got, "{submission_apis}")
}

func TestBuildSystemPromptLiteralSubstitution(t *testing.T) {
	r := NewRegistry(nil, nil)

	// Substitution is literal text replacement; descriptions containing
	// brace syntax pass through untouched.
	got := r.BuildSystemPrompt(`{"weird": true}`, "desc={problem_description}")
	assert.Equal(t, `desc={"weird": true}`, got)
}
