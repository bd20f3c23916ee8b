package harness

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/syscov/internal/engine"
)

// Snapshot renders the deterministic part of a result: the run outcome
// and every archived entry. Elapsed time is left out.
func Snapshot(name string, r *Result) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "scenario: %s\n", name)
	if s := r.Summary; s != nil {
		fmt.Fprintf(&b, "run: %s seed=%d\n", s.RunID, s.Seed)
		fmt.Fprintf(&b, "pairs: %d/%d\n", s.Pairs, s.Planned)
		if len(s.Mismatches) > 0 {
			keys := make([]string, 0, len(s.Mismatches))
			for k := range s.Mismatches {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(&b, "mismatch: %s=%d\n", k, s.Mismatches[k])
			}
		}
		for _, d := range s.Degenerate {
			fmt.Fprintf(&b, "degenerate: %s\n", d)
		}
	}
	if r.RunErr != nil {
		fmt.Fprintf(&b, "error: %s\n", engine.CodeOf(r.RunErr))
	}

	fmt.Fprintf(&b, "entries: %d\n", len(r.Entries))
	for _, n := range r.Names() {
		e := r.Entries[n]
		if e.IsVector() {
			fmt.Fprintf(&b, "  %s [%d]\n", n, e.Cols)
		} else {
			fmt.Fprintf(&b, "  %s [%dx%d]\n", n, e.Rows, e.Cols)
		}
		for row := range e.Rows {
			cells := make([]string, e.Cols)
			for c := range e.Cols {
				cells[c] = formatValue(e.Data[row*e.Cols+c])
			}
			fmt.Fprintf(&b, "    %s\n", strings.Join(cells, " "))
		}
	}
	return []byte(b.String())
}

// formatValue prints v with 10 significant digits; negative zero prints
// as 0.
func formatValue(v float64) string {
	if v == 0 {
		v = 0
	}
	return strconv.FormatFloat(v, 'g', 10, 64)
}

// RunWithGolden executes a scenario in a temporary directory, fails t on
// any assertion error, and compares the snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(t.Context(), scenario, t.TempDir())
	if err != nil {
		return nil, err
	}
	for _, msg := range result.Errors {
		t.Error(msg)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, Snapshot(scenario.Name, result))
	return result, nil
}
