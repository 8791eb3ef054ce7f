// Package evaluator grades a submitted payload against a problem's expected
// solution. Grading is structural: strings, JSON lists and JSON objects are
// compared by shape and content, nothing is re-verified against a live
// system.
package evaluator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/go-cmp/cmp"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/gyuri2020/AIOpsLab-fork/internal/problems"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Verdict is the structural grading result for one submission.
type Verdict struct {
	// Correct reports whether the submission matched the expected solution.
	// Meaningless when Unverified is set.
	Correct bool `json:"correct"`
	// Unverified marks task types whose solutions cannot be graded
	// structurally (mitigation requires a live system check).
	Unverified bool   `json:"unverified,omitempty"`
	Expected   string `json:"expected"`
	Got        string `json:"got"`
	// Detail explains a mismatch, usually as a cmp.Diff.
	Detail string `json:"detail,omitempty"`
}

// Evaluator grades submissions per task type.
type Evaluator struct {
	log *zap.Logger
}

// New builds an evaluator.
func New(log *zap.Logger) *Evaluator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Evaluator{log: log.Named("evaluator")}
}

// Evaluate grades payload against the problem's expected solution. An error
// is returned only for task types the evaluator does not know.
func (e *Evaluator) Evaluate(problem problems.Problem, payload string) (Verdict, error) {
	var v Verdict
	switch problem.Task {
	case problems.TaskDetection:
		v = evaluateDetection(problem.ExpectedSolution, payload)
	case problems.TaskLocalization:
		v = evaluateLocalization(problem.ExpectedSolution, payload)
	case problems.TaskAnalysis:
		v = evaluateAnalysis(problem.ExpectedSolution, payload)
	case problems.TaskMitigation:
		// Mitigation is verified by inspecting the target system's health
		// after the fix, which is outside structural grading.
		v = Verdict{Unverified: true, Expected: problem.ExpectedSolution, Got: payload}
	default:
		return Verdict{}, fmt.Errorf("evaluator: unknown task type %q", problem.Task)
	}

	e.log.Info("submission evaluated",
		zap.String("problem_id", problem.ID),
		zap.String("task", string(problem.Task)),
		zap.Bool("correct", v.Correct),
		zap.Bool("unverified", v.Unverified))
	return v, nil
}

// evaluateDetection compares the Yes/No answer, tolerating case and
// stray quoting.
func evaluateDetection(expected, got string) Verdict {
	norm := func(s string) string {
		s = strings.TrimSpace(s)
		s = strings.Trim(s, `"'`)
		return strings.ToLower(s)
	}
	v := Verdict{Expected: expected, Got: got}
	v.Correct = norm(expected) == norm(got)
	if !v.Correct {
		v.Detail = fmt.Sprintf("expected %q, got %q", expected, got)
	}
	return v
}

// evaluateLocalization parses both sides as JSON string lists and compares
// them order-insensitively. Pointing at the same services in a different
// order is still a correct localization.
func evaluateLocalization(expected, got string) Verdict {
	v := Verdict{Expected: expected, Got: got}

	want, err := parseServiceList(expected)
	if err != nil {
		v.Detail = fmt.Sprintf("malformed expected solution: %v", err)
		return v
	}
	have, err := parseServiceList(got)
	if err != nil {
		v.Detail = fmt.Sprintf("could not parse submission as a service list: %v", err)
		return v
	}

	sort.Strings(want)
	sort.Strings(have)
	if diff := cmp.Diff(want, have); diff != "" {
		v.Detail = diff
		return v
	}
	v.Correct = true
	return v
}

// evaluateAnalysis parses both sides as JSON objects and diffs them. Values
// are compared case-insensitively; the taxonomy labels are not case
// sensitive in practice.
func evaluateAnalysis(expected, got string) Verdict {
	v := Verdict{Expected: expected, Got: got}

	var want, have map[string]string
	if err := json.Unmarshal([]byte(expected), &want); err != nil {
		v.Detail = fmt.Sprintf("malformed expected solution: %v", err)
		return v
	}
	if err := json.Unmarshal([]byte(normalizeJSONQuotes(got)), &have); err != nil {
		v.Detail = fmt.Sprintf("could not parse submission as an object: %v", err)
		return v
	}

	lower := func(m map[string]string) map[string]string {
		out := make(map[string]string, len(m))
		for k, val := range m {
			out[strings.ToLower(k)] = strings.ToLower(val)
		}
		return out
	}
	if diff := cmp.Diff(lower(want), lower(have)); diff != "" {
		v.Detail = diff
		return v
	}
	v.Correct = true
	return v
}

func parseServiceList(s string) ([]string, error) {
	var list []string
	if err := json.Unmarshal([]byte(normalizeJSONQuotes(s)), &list); err != nil {
		return nil, err
	}
	return list, nil
}

// normalizeJSONQuotes rewrites single-quoted pseudo-JSON, which models emit
// regularly, into parseable JSON. Inputs already using double quotes pass
// through untouched.
func normalizeJSONQuotes(s string) string {
	s = strings.TrimSpace(s)
	if strings.Contains(s, `"`) {
		return s
	}
	return strings.ReplaceAll(s, "'", `"`)
}
