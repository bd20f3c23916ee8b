package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/roach88/syscov/internal/testutil"
	"github.com/roach88/syscov/internal/weights"
)

// analysis is a CV log, a weight store and a configuration naming them.
// dir ends in a separator so it can be passed as --output.
type analysis struct {
	dir     string
	cvLog   string
	store   string
	config  string
	archive string
}

// writeAnalysis writes three selected neutrino candidates and one cosmic
// over energy bins [0,1), [1,2), [2,3). Event 1 has weights {2, 0}, the
// others {1, 1}.
func writeAnalysis(t *testing.T) analysis {
	t.Helper()
	dir := t.TempDir() + string(filepath.Separator)
	sel := "SELECTED_1MU1P"
	a := analysis{dir: dir}
	a.cvLog = testutil.WriteLog(t, dir, "cv.log", []testutil.Record{
		{Tag: "EVENT", Run: 1, Subrun: 1, Event: 0, Values: []float64{0.5, 0}},
		{Tag: "EVENT", Run: 1, Subrun: 1, Event: 1, Values: []float64{0.5, 1}},
		{Tag: "EVENT", Run: 1, Subrun: 1, Event: 2, Values: []float64{1.5, 0}},
		{Tag: "EVENT", Run: 1, Subrun: 1, Event: 3, NuID: -1, Values: []float64{2.5, 2}},
		{Tag: sel, Run: 1, Subrun: 1, Event: 0, Values: []float64{0.5, 0}},
		{Tag: sel, Run: 1, Subrun: 1, Event: 1, Values: []float64{0.5, 1}},
		{Tag: sel, Run: 1, Subrun: 1, Event: 2, Values: []float64{1.5, 0}},
		{Tag: sel, Run: 1, Subrun: 1, Event: 3, NuID: -1, Values: []float64{2.5, 2}},
	})
	nu := func(w ...float32) []weights.Neutrino {
		return []weights.Neutrino{{Index: 0, Params: [][]float32{w}}}
	}
	a.store = testutil.WriteStore(t, dir, "weights.arrow", []weights.Event{
		{Run: 1, Subrun: 1, Event: 0, Neutrinos: nu(1, 1)},
		{Run: 1, Subrun: 1, Event: 1, Neutrinos: nu(2, 0)},
		{Run: 1, Subrun: 1, Event: 2, Neutrinos: nu(1, 1)},
	})
	a.config = writeFile(t, dir, "sys.yaml", fmt.Sprintf(`
general:
  cv_log: %q
  columns: [energy, category]
  variables:
    energy: [3, 0.0, 3.0]
sys:
  flux_pi: {type: multisim, index: 0, group: [flux]}
  stats: {type: stats}
plots:
  energy:
    type: hist1d
    var: energy
    categorical_var: category
    categories: {"0": CCQE, "1": NC}
    merge: [[0], [1, 2]]
    multiplot: error
    systematics: {flux_pi: Flux}
  flow:
    type: flow
    categorical_var: category
    categories: {"0": CCQE, "1": NC}
    tags: [EVENT, %s]
`, a.cvLog, sel))
	a.archive = filepath.Join(dir, "covariances_1mu1p.db")
	return a
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// execute runs cmd with args and returns stdout.
func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}
