package harness

import (
	"sort"

	"github.com/roach88/syscov/internal/engine"
	"github.com/roach88/syscov/internal/model"
)

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if every assertion holds.
	Pass bool `json:"pass"`

	// Errors contains assertion failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Summary is the engine summary. It is nil when the run failed before
	// it was recorded.
	Summary *engine.Summary `json:"summary,omitempty"`

	// RunErr is the error the run stopped with, if any.
	RunErr error `json:"-"`

	// Entries holds the archive contents after the run, keyed by name.
	Entries map[string]model.Entry `json:"-"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:    true,
		Errors:  []string{},
		Entries: make(map[string]model.Entry),
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Names returns the archived entry names in sorted order.
func (r *Result) Names() []string {
	names := make([]string, 0, len(r.Entries))
	for n := range r.Entries {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
