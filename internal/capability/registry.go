// Package capability classifies the externally supplied capability catalogue
// into diagnostic and submission groups and renders them into prompt text.
package capability

import (
	"sort"
	"strings"
)

// Group tags a capability with the role it plays in the episode.
type Group string

const (
	GroupDiagnostic Group = "diagnostic"
	GroupSubmission Group = "submission"
	// GroupNone marks capabilities that belong to neither group; they are
	// dropped during classification.
	GroupNone Group = ""
)

// Descriptor describes one externally exposed capability: its callable name
// and its signature/doc text as supplied by the orchestrator.
type Descriptor struct {
	Name string
	Doc  string
}

// Classifier maps a capability name to its group. Injectable so alternate
// classification schemes can replace the default substring policy.
type Classifier func(name string) Group

// Keywords recognized by DefaultClassifier and by the action parser.
const (
	DiagnosticKeyword = "exec_shell"
	SubmissionKeyword = "submit"
)

// DefaultClassifier groups capabilities by substring match on the name.
func DefaultClassifier(name string) Group {
	switch {
	case strings.Contains(name, DiagnosticKeyword):
		return GroupDiagnostic
	case strings.Contains(name, SubmissionKeyword):
		return GroupSubmission
	default:
		return GroupNone
	}
}

// Registry holds the classified capability catalogue for one episode. It is
// built once at episode-init time and never mutated afterwards, so it is safe
// to share across concurrently running episodes.
type Registry struct {
	groups map[Group]map[string]Descriptor
}

// NewRegistry classifies the raw catalogue with the given classifier
// (DefaultClassifier when nil). Capabilities matching no group are dropped.
func NewRegistry(catalogue map[string]Descriptor, classify Classifier) *Registry {
	if classify == nil {
		classify = DefaultClassifier
	}

	groups := map[Group]map[string]Descriptor{
		GroupDiagnostic: {},
		GroupSubmission: {},
	}
	for name, desc := range catalogue {
		g := classify(name)
		if g == GroupNone {
			continue
		}
		if desc.Name == "" {
			desc.Name = name
		}
		groups[g][name] = desc
	}
	return &Registry{groups: groups}
}

// Group returns a copy of the descriptors classified into g.
func (r *Registry) Group(g Group) map[string]Descriptor {
	out := make(map[string]Descriptor, len(r.groups[g]))
	for name, d := range r.groups[g] {
		out[name] = d
	}
	return out
}

// RenderSection concatenates each descriptor in g as the capability name
// followed by its doc text, entries separated by a blank line. Entries are
// ordered by name: the order carries no meaning, but rendering must be
// reproducible and Go map iteration is not.
func (r *Registry) RenderSection(g Group) string {
	descs := r.groups[g]
	names := make([]string, 0, len(descs))
	for name := range descs {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		d := descs[name]
		parts = append(parts, d.Name+"\n"+d.Doc)
	}
	return strings.Join(parts, "\n\n")
}

// Placeholders substituted by BuildSystemPrompt. Substitution is literal; no
// escaping is applied.
const (
	PlaceholderProblemDescription = "{problem_description}"
	PlaceholderDiagnosticAPIs     = "{diagnostic_apis}"
	PlaceholderSubmissionAPIs     = "{submission_apis}"
)

// BuildSystemPrompt substitutes the problem description and both rendered
// capability sections into the template text.
func (r *Registry) BuildSystemPrompt(problemDescription, template string) string {
	return strings.NewReplacer(
		PlaceholderProblemDescription, problemDescription,
		PlaceholderDiagnosticAPIs, r.RenderSection(GroupDiagnostic),
		PlaceholderSubmissionAPIs, r.RenderSection(GroupSubmission),
	).Replace(template)
}
