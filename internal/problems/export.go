package problems

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// csvHeader is the column order for CSV export.
var csvHeader = []string{
	"id", "task", "app", "namespace", "faulty_service",
	"fault_type", "fault_description", "workload",
	"expected_solution", "system_level", "fault_category", "deployment",
}

// WriteJSON exports the registry as a single JSON document carrying the task
// type contracts, every problem, and the summary counts.
func (r *Registry) WriteJSON(w io.Writer) error {
	doc := struct {
		TaskTypes map[TaskType]TaskInfo `json:"task_types"`
		Problems  []Problem             `json:"problems"`
		Summary   Summary               `json:"summary"`
	}{
		TaskTypes: TaskTypes,
		Problems:  r.All(),
		Summary:   r.Summarize(),
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode problems JSON: %w", err)
	}
	return nil
}

// WriteCSV exports one row per problem in a spreadsheet-friendly layout.
func (r *Registry) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write CSV header: %w", err)
	}
	for _, p := range r.ordered {
		row := []string{
			p.ID, string(p.Task), p.App, p.Namespace, p.FaultyService,
			p.FaultType, p.FaultDescription, p.Workload,
			p.ExpectedSolution, p.SystemLevel, p.FaultCategory, p.Deployment,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write CSV row for %s: %w", p.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// RenderSummary formats the aggregate counts for console output.
func (r *Registry) RenderSummary() string {
	s := r.Summarize()
	var b strings.Builder

	fmt.Fprintf(&b, "Total: %d problems\n\n", s.Total)

	b.WriteString("By Task Type:\n")
	for _, task := range AllTaskTypes {
		fmt.Fprintf(&b, "  - %s: %d\n", task, s.ByTask[string(task)])
	}

	b.WriteString("\nBy Application:\n")
	for _, app := range r.Apps() {
		fmt.Fprintf(&b, "  - %s: %d\n", app, s.ByApp[app])
	}

	b.WriteString("\nBy Fault Category:\n")
	categories := make([]string, 0, len(s.ByCategory))
	for cat := range s.ByCategory {
		categories = append(categories, cat)
	}
	sort.Strings(categories)
	for _, cat := range categories {
		fmt.Fprintf(&b, "  - %s: %d\n", cat, s.ByCategory[cat])
	}

	return b.String()
}
