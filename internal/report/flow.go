package report

import (
	"fmt"
	"math"
	"slices"

	"github.com/roach88/syscov/internal/config"
	"github.com/roach88/syscov/internal/eventlog"
)

// FlowStep is the population surviving one cut tag.
type FlowStep struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`

	// ByCategory splits Count by desc.CategoricalVar, keyed by category
	// label. Nil when the plot has no categorical variable.
	ByCategory map[string]int `json:"by_category,omitempty"`
}

// SelectionFlow is the number of records carrying each cut tag, in the
// order the tags are listed.
type SelectionFlow struct {
	Name  string     `json:"name"`
	Title string     `json:"title,omitempty"`
	Steps []FlowStep `json:"steps"`
}

// Flow counts the lines of the log at path bearing each of desc.Tags.
// header names the log columns and is needed only to split by
// desc.CategoricalVar.
func Flow(desc config.Plot, path string, header []string) (*SelectionFlow, error) {
	counts, err := eventlog.CountTags(path, desc.Tags)
	if err != nil {
		return nil, fmt.Errorf("flow %s: %w", desc.Name, err)
	}
	f := &SelectionFlow{Name: desc.Name, Title: desc.Title}
	for _, tag := range desc.Tags {
		step := FlowStep{Tag: tag, Count: counts[tag]}
		if desc.CategoricalVar != "" && step.Count > 0 {
			if step.ByCategory, err = splitFlow(desc, path, tag, header); err != nil {
				return nil, fmt.Errorf("flow %s: %w", desc.Name, err)
			}
		}
		f.Steps = append(f.Steps, step)
	}
	return f, nil
}

func splitFlow(desc config.Plot, path, tag string, header []string) (map[string]int, error) {
	t, err := eventlog.ReadLog(path, tag, header)
	if err != nil {
		return nil, err
	}
	cats, err := t.Floats(desc.CategoricalVar)
	if err != nil {
		return nil, err
	}
	out := make(map[string]int)
	for _, c := range cats {
		if math.IsNaN(c) {
			continue
		}
		out[categoryLabel(desc.Categories, int(c))]++
	}
	return out, nil
}

// Categories returns the category labels of a flow in sorted order.
func (f *SelectionFlow) Categories() []string {
	seen := make(map[string]bool)
	var out []string
	for _, s := range f.Steps {
		for k := range s.ByCategory {
			if !seen[k] {
				seen[k] = true
				out = append(out, k)
			}
		}
	}
	slices.Sort(out)
	return out
}
