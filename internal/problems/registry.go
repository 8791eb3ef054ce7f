// Package problems holds the catalogue of injectable fault scenarios an
// episode can be run against: what was broken, where, and what answer the
// agent is expected to submit.
package problems

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// TaskType is the kind of question the agent must answer about a fault.
type TaskType string

const (
	TaskDetection    TaskType = "detection"
	TaskLocalization TaskType = "localization"
	TaskAnalysis     TaskType = "analysis"
	TaskMitigation   TaskType = "mitigation"
)

// TaskInfo describes a task type: what the agent does, what shape the
// submitted solution takes, and the metric the task is scored on.
type TaskInfo struct {
	Description    string   `json:"description" yaml:"description"`
	SolutionFormat string   `json:"expected_solution_format" yaml:"expected_solution_format"`
	Metric         string   `json:"metric" yaml:"metric"`
	SystemLevels   []string `json:"system_levels,omitempty" yaml:"system_levels,omitempty"`
	FaultTypes     []string `json:"fault_types,omitempty" yaml:"fault_types,omitempty"`
}

// TaskTypes maps each task type to its description and solution contract.
var TaskTypes = map[TaskType]TaskInfo{
	TaskDetection: {
		Description:    "Detect anomalies in a deployed service",
		SolutionFormat: `str: "Yes" or "No"`,
		Metric:         "TTD (Time To Detect)",
	},
	TaskLocalization: {
		Description:    "Identify the service(s) where the root cause of the fault lies",
		SolutionFormat: "list[str]: list of faulty service names",
		Metric:         "TTL (Time To Localize)",
	},
	TaskAnalysis: {
		Description:    "Root cause analysis - identify system level and fault type",
		SolutionFormat: `dict: {"system_level": "...", "fault_type": "..."}`,
		Metric:         "TTA (Time To Analyze)",
		SystemLevels:   []string{"Hardware", "Operating System", "Virtualization", "Application"},
		FaultTypes: []string{"Misconfiguration", "Code Defect", "Authentication Issue",
			"Network/Storage Issue", "Operation Error", "Dependency Problem"},
	},
	TaskMitigation: {
		Description:    "Mitigate/fix the detected anomaly",
		SolutionFormat: "None (verified by system status check)",
		Metric:         "TTM (Time To Mitigate)",
	},
}

// AllTaskTypes lists task types in their canonical reporting order.
var AllTaskTypes = []TaskType{TaskDetection, TaskLocalization, TaskAnalysis, TaskMitigation}

// Problem is one runnable fault scenario.
type Problem struct {
	ID               string   `json:"id" yaml:"id" mapstructure:"id"`
	Task             TaskType `json:"task" yaml:"task" mapstructure:"task"`
	App              string   `json:"app" yaml:"app" mapstructure:"app"`
	Namespace        string   `json:"namespace" yaml:"namespace" mapstructure:"namespace"`
	FaultyService    string   `json:"faulty_service" yaml:"faulty_service" mapstructure:"faulty_service"`
	FaultType        string   `json:"fault_type" yaml:"fault_type" mapstructure:"fault_type"`
	FaultDescription string   `json:"fault_description" yaml:"fault_description" mapstructure:"fault_description"`
	Workload         string   `json:"workload" yaml:"workload" mapstructure:"workload"`
	ExpectedSolution string   `json:"expected_solution" yaml:"expected_solution" mapstructure:"expected_solution"`
	SystemLevel      string   `json:"system_level" yaml:"system_level" mapstructure:"system_level"`
	FaultCategory    string   `json:"fault_category" yaml:"fault_category" mapstructure:"fault_category"`
	Deployment       string   `json:"deployment" yaml:"deployment" mapstructure:"deployment"`
}

// Description is the problem statement shown to the agent. It names the
// application and namespace but never the expected answer.
func (p Problem) Description() string {
	info := TaskTypes[p.Task]
	return fmt.Sprintf(
		"An anomaly may have been injected into the %s application (namespace %q, deployed on %s).\n"+
			"Task: %s.\nSubmit your answer in this format: %s.",
		p.App, p.Namespace, p.Deployment, info.Description, info.SolutionFormat)
}

// Registry is the ordered problem catalogue with ID lookup.
type Registry struct {
	ordered []Problem
	byID    map[string]Problem
}

// NewRegistry builds the registry over the built-in problem set.
func NewRegistry() *Registry {
	r := &Registry{byID: make(map[string]Problem)}
	for _, p := range builtinProblems() {
		r.add(p)
	}
	return r
}

func (r *Registry) add(p Problem) {
	if p.Deployment == "" {
		p.Deployment = "k8s"
	}
	if _, exists := r.byID[p.ID]; exists {
		// Overlay entries replace builtins with the same ID.
		for i := range r.ordered {
			if r.ordered[i].ID == p.ID {
				r.ordered[i] = p
				break
			}
		}
	} else {
		r.ordered = append(r.ordered, p)
	}
	r.byID[p.ID] = p
}

// LoadOverlay merges problem definitions from a YAML file into the registry.
// Entries with known IDs replace the built-in definition.
func (r *Registry) LoadOverlay(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read problems overlay: %w", err)
	}

	var overlay struct {
		Problems []Problem `yaml:"problems"`
	}
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return fmt.Errorf("parse problems overlay: %w", err)
	}

	for _, p := range overlay.Problems {
		if p.ID == "" {
			return fmt.Errorf("problems overlay: entry without id")
		}
		if p.Task == "" {
			return fmt.Errorf("problems overlay: entry %q without task", p.ID)
		}
		if _, known := TaskTypes[p.Task]; !known {
			return fmt.Errorf("problems overlay: entry %q has unknown task %q", p.ID, p.Task)
		}
		r.add(p)
	}
	return nil
}

// Lookup returns the problem with the given ID.
func (r *Registry) Lookup(id string) (Problem, bool) {
	p, ok := r.byID[id]
	return p, ok
}

// All returns every problem in registration order.
func (r *Registry) All() []Problem {
	out := make([]Problem, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// Filter returns the problems accepted by keep, in registration order.
func (r *Registry) Filter(keep func(Problem) bool) []Problem {
	var out []Problem
	for _, p := range r.ordered {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}

// ByTask returns the problems for one task type.
func (r *Registry) ByTask(task TaskType) []Problem {
	return r.Filter(func(p Problem) bool { return p.Task == task })
}

// ByApp returns the problems for one application.
func (r *Registry) ByApp(app string) []Problem {
	return r.Filter(func(p Problem) bool { return p.App == app })
}

// Summary aggregates registry counts for reporting.
type Summary struct {
	Total        int            `json:"total"`
	ByTask       map[string]int `json:"by_task"`
	ByApp        map[string]int `json:"by_app"`
	ByCategory   map[string]int `json:"by_category"`
	ByDeployment map[string]int `json:"by_deployment"`
}

// Summarize computes aggregate counts over the whole registry.
func (r *Registry) Summarize() Summary {
	s := Summary{
		Total:        len(r.ordered),
		ByTask:       map[string]int{},
		ByApp:        map[string]int{},
		ByCategory:   map[string]int{},
		ByDeployment: map[string]int{},
	}
	for _, p := range r.ordered {
		s.ByTask[string(p.Task)]++
		s.ByApp[p.App]++
		s.ByCategory[p.FaultCategory]++
		s.ByDeployment[p.Deployment]++
	}
	return s
}

// Apps returns the distinct application names in sorted order.
func (r *Registry) Apps() []string {
	seen := map[string]struct{}{}
	for _, p := range r.ordered {
		seen[p.App] = struct{}{}
	}
	apps := make([]string, 0, len(seen))
	for app := range seen {
		apps = append(apps, app)
	}
	sort.Strings(apps)
	return apps
}
