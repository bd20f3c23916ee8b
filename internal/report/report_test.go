package report

import (
	"context"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/roach88/syscov/internal/archive"
	"github.com/roach88/syscov/internal/binning"
	"github.com/roach88/syscov/internal/config"
	"github.com/roach88/syscov/internal/covariance"
	"github.com/roach88/syscov/internal/eventlog"
	"github.com/roach88/syscov/internal/model"
	"github.com/roach88/syscov/internal/testutil"
)

type memArchive map[string]model.Entry

func (m memArchive) Get(_ context.Context, name string) (model.Entry, error) {
	e, ok := m[name]
	if !ok {
		return model.Entry{}, fmt.Errorf("%w: %s", archive.ErrNotFound, name)
	}
	return e, nil
}

func (m memArchive) put(name string, x mat.Matrix) {
	m[name] = model.MatrixEntry(name, x)
}

func diag(v ...float64) *mat.SymDense {
	out := mat.NewSymDense(len(v), nil)
	for i, x := range v {
		out.SetSym(i, i, x)
	}
	return out
}

var header = eventlog.Header("energy", "category")

func selection(t *testing.T) *eventlog.Table {
	t.Helper()
	text := testutil.FormatLog([]testutil.Record{
		{Tag: "SELECTED_1MU1P", Run: 1, Subrun: 1, Event: 1, Values: []float64{0.5, 0}},
		{Tag: "SELECTED_1MU1P", Run: 1, Subrun: 1, Event: 2, Values: []float64{0.5, 1}},
		{Tag: "SELECTED_1MU1P", Run: 1, Subrun: 1, Event: 3, Values: []float64{1.5, 2}},
		{Tag: "SELECTED_1MU1P", Run: 1, Subrun: 1, Event: 4, Values: []float64{1.5, 0}},
	})
	tbl, err := eventlog.Read(strings.NewReader(text), "SELECTED_1MU1P", header)
	require.NoError(t, err)
	return tbl
}

func histArchive() memArchive {
	arch := memArchive{}
	arch.put("det_energy", diag(1, 4))
	arch.put("flux_energy", diag(0.25, 0))
	arch.put("det_energy_cratio", diag(0.01, 0.04))
	arch.put("det_energy_rmatrix", diag(9, 4))
	arch["det_energy_ratio"] = model.VectorEntry("det_energy_ratio", []float64{1, 1.1})
	arch["det_energy_vnominal"] = model.VectorEntry("det_energy_vnominal", []float64{0, 2})
	return arch
}

func histPlot(panel string) config.Plot {
	return config.Plot{
		Name:           "energy",
		Type:           config.PlotHist1D,
		Var:            "energy",
		Multiplot:      panel,
		CategoricalVar: "category",
		Categories:     map[string]string{"0": "CCQE", "2": "NC"},
		Merge:          [][]int{{0, 1}, {2}},
		Colors:         []int{3, 1},
		Systematics:    map[string]string{"det": "Detector", "flux": "Flux"},
		Title:          "Reco energy",
	}
}

func twoBins(t *testing.T) *binning.Spec {
	t.Helper()
	spec, err := binning.NewSpec(2, 0, 2)
	require.NoError(t, err)
	return spec
}

func TestHistogram_StacksAndBands(t *testing.T) {
	h, err := Histogram(context.Background(), histPlot(config.PanelNone), twoBins(t), selection(t), histArchive(), config.DefaultStyle())
	require.NoError(t, err)

	require.Len(t, h.Stacks, 2)
	assert.Equal(t, "CCQE", h.Stacks[0].Label)
	assert.Equal(t, "C3", h.Stacks[0].Color)
	assert.Equal(t, []float64{2, 1}, h.Stacks[0].Counts)
	assert.Equal(t, "NC", h.Stacks[1].Label)
	assert.Equal(t, []float64{0, 1}, h.Stacks[1].Counts)
	assert.Equal(t, []float64{2, 2}, h.Total)
	assert.Equal(t, []float64{0.5, 1.5}, h.Centers)

	require.Len(t, h.Bands, 2)
	det := h.Bands[0]
	assert.Equal(t, "det", det.Systematic)
	assert.Equal(t, "gray", det.Color)
	assert.Equal(t, "///", det.Hatch)
	assert.Equal(t, 0.5, det.Alpha)
	assert.Equal(t, []float64{1, 2}, det.Error)
	assert.Equal(t, []float64{1, 0}, det.Low)
	assert.Equal(t, []float64{3, 4}, det.High)
	assert.Equal(t, "rebeccapurple", h.Bands[1].Color)
	assert.Equal(t, []float64{0.5, 0}, h.Bands[1].Error)

	assert.Equal(t, []string{"CCQE (3)", "NC (1)", "Detector", "Flux"}, h.Legend)
	assert.Nil(t, h.Ratio)
	assert.Nil(t, h.Error)
}

func TestHistogram_PercentageLegend(t *testing.T) {
	p := histPlot(config.PanelNone)
	p.ShowPercentage = true
	p.Systematics = nil

	h, err := Histogram(context.Background(), p, twoBins(t), selection(t), nil, config.DefaultStyle())
	require.NoError(t, err)
	assert.Equal(t, []string{"CCQE (3, 75.00%)", "NC (1, 25.00%)"}, h.Legend)
}

func TestHistogram_RatioPanel(t *testing.T) {
	h, err := Histogram(context.Background(), histPlot(config.PanelRatio), twoBins(t), selection(t), histArchive(), config.DefaultStyle())
	require.NoError(t, err)
	require.NotNil(t, h.Ratio)

	r := h.Ratio
	assert.Equal(t, "det", r.Systematic)
	assert.Equal(t, []float64{1, 1.1}, r.Ratio)
	assert.Equal(t, []bool{true, false}, r.Undefined)
	assert.InDeltaSlice(t, []float64{0.1, 0.2}, r.Error, 1e-12)
	assert.Equal(t, [2]float64{0.8, 1.2}, r.Range)

	// Only bin 1 has a non-zero vnominal: 2*2/4.
	require.NotNil(t, r.Chi2)
	assert.InDelta(t, 1.0, r.Chi2.Chi2, 1e-12)
	assert.Equal(t, 1, r.Chi2.DOF)
	assert.InDelta(t, 0.3173105, r.Chi2.PValue, 1e-6)
}

func TestHistogram_ErrorPanel(t *testing.T) {
	h, err := Histogram(context.Background(), histPlot(config.PanelError), twoBins(t), selection(t), histArchive(), config.DefaultStyle())
	require.NoError(t, err)
	require.NotNil(t, h.Error)
	assert.Equal(t, "det", h.Error.Systematic)
	assert.Equal(t, []float64{50, 100}, h.Error.Percent)
	assert.Equal(t, [2]float64{0, 50}, h.Error.Range)
}

func TestHistogram_MissingEntry(t *testing.T) {
	arch := histArchive()
	delete(arch, "flux_energy")
	_, err := Histogram(context.Background(), histPlot(config.PanelNone), twoBins(t), selection(t), arch, config.DefaultStyle())
	assert.ErrorIs(t, err, archive.ErrNotFound)
}

func TestChi2(t *testing.T) {
	res, err := Chi2([]float64{1, 2}, diag(1, 1))
	require.NoError(t, err)
	assert.InDelta(t, 5.0, res.Chi2, 1e-12)
	assert.Equal(t, 2, res.DOF)
	// Two degrees of freedom: survival is exp(-chi2/2).
	assert.InDelta(t, math.Exp(-2.5), res.PValue, 1e-9)
}

func TestChi2_NoBins(t *testing.T) {
	res, err := Chi2([]float64{0, 0}, diag(1, 1))
	require.NoError(t, err)
	assert.Equal(t, Chi2Result{PValue: 1}, res)
}

func TestChi2_Singular(t *testing.T) {
	_, err := Chi2([]float64{1, 1}, mat.NewSymDense(2, []float64{1, 1, 1, 1}))
	assert.True(t, covariance.IsSingular(err))
}

func TestChi2_DimensionMismatch(t *testing.T) {
	_, err := Chi2([]float64{1}, diag(1, 1))
	assert.ErrorIs(t, err, covariance.ErrDimensionMismatch)
}

func TestHistogram2D(t *testing.T) {
	p := config.Plot{Name: "grid", Type: config.PlotHist2D, Var: "energy", YVar: "category"}
	yspec, err := binning.NewSpec(3, 0, 3)
	require.NoError(t, err)

	h, err := Histogram2D(p, twoBins(t), yspec, selection(t))
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1, 1, 0}, {1, 0, 1}}, h.Counts)
	assert.Equal(t, [][]float64{{0.25, 0.25, 0}, {0.25, 0, 0.25}}, h.Normalized)
	assert.Equal(t, []float64{0, 1, 2, 3}, h.YEdges)
}

func TestConfusion(t *testing.T) {
	text := testutil.FormatLog([]testutil.Record{
		{Tag: "SELECTED_1MU1P", Values: []float64{0, 0}},
		{Tag: "SELECTED_1MU1P", Values: []float64{0, 1}},
		{Tag: "SELECTED_1MU1P", Values: []float64{1, 1}},
		{Tag: "SELECTED_1MU1P", Values: []float64{1, 1}},
		{Tag: "SELECTED_1MU1P", Values: []float64{1, 0}},
	})
	tbl, err := eventlog.Read(strings.NewReader(text), "SELECTED_1MU1P", eventlog.Header("truth", "reco"))
	require.NoError(t, err)

	m, err := Confusion(config.Plot{
		Name:       "pid",
		Type:       config.PlotConfusion,
		Var:        "truth",
		YVar:       "reco",
		Categories: map[string]string{"0": "muon", "1": "proton"},
	}, tbl)
	require.NoError(t, err)

	assert.Equal(t, []int{0, 1}, m.Categories)
	assert.Equal(t, []string{"muon", "proton"}, m.Labels)
	assert.Equal(t, [][]float64{{1, 1}, {1, 2}}, m.Counts)
	assert.InDeltaSlice(t, []float64{0.5, 0.5}, m.Fractions[0], 1e-12)
	assert.InDeltaSlice(t, []float64{1.0 / 3, 2.0 / 3}, m.Fractions[1], 1e-12)
}

func TestFlow(t *testing.T) {
	path := testutil.WriteLog(t, t.TempDir(), "flow.log", []testutil.Record{
		{Tag: "NEUTRINO", Event: 1, Values: []float64{0.5, 0}},
		{Tag: "NEUTRINO", Event: 2, Values: []float64{0.5, 2}},
		{Tag: "NEUTRINO", Event: 3, Values: []float64{1.5, 2}},
		{Tag: "SELECTED_1MU1P", Event: 1, Values: []float64{0.5, 0}},
	})
	f, err := Flow(config.Plot{
		Name:           "flow",
		Type:           config.PlotFlow,
		Tags:           []string{"NEUTRINO", "SELECTED_1MU1P", "CUT_FV"},
		CategoricalVar: "category",
		Categories:     map[string]string{"0": "CCQE", "2": "NC"},
	}, path, header)
	require.NoError(t, err)

	require.Len(t, f.Steps, 3)
	assert.Equal(t, FlowStep{Tag: "NEUTRINO", Count: 3, ByCategory: map[string]int{"CCQE": 1, "NC": 2}}, f.Steps[0])
	assert.Equal(t, FlowStep{Tag: "SELECTED_1MU1P", Count: 1, ByCategory: map[string]int{"CCQE": 1}}, f.Steps[1])
	assert.Equal(t, FlowStep{Tag: "CUT_FV"}, f.Steps[2])
	assert.Equal(t, []string{"CCQE", "NC"}, f.Categories())
}

func TestSummarize(t *testing.T) {
	arch := histArchive()
	arch.put("fractional_det_energy", diag(0.25, 0.04))
	arch.put("total_energy", diag(4, 9))
	arch.put("fractional_total_energy", diag(0.01, 0))

	s, err := Summarize(context.Background(), arch, "det", "energy")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2}, s.Sigma)
	assert.InDeltaSlice(t, []float64{0.5, 0.2}, s.RelErr, 1e-12)
	assert.InDelta(t, 0.5, s.MaxRelErr(), 1e-12)
	require.NotNil(t, s.Chi2)
	assert.Equal(t, 1, s.Chi2.DOF)

	s, err = Summarize(context.Background(), arch, "total", "energy")
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 3}, s.Sigma)
	assert.Nil(t, s.Chi2)

	_, err = Summarize(context.Background(), arch, "missing", "energy")
	assert.ErrorIs(t, err, archive.ErrNotFound)
}

func TestBuilder(t *testing.T) {
	dir := t.TempDir()
	log := testutil.WriteLog(t, dir, "cv.log", []testutil.Record{
		{Tag: "NEUTRINO", Event: 1, Values: []float64{0.5, 0}},
		{Tag: "SELECTED_1MU1P", Event: 1, Values: []float64{0.5, 0}},
		{Tag: "SELECTED_1MU1P", Event: 2, Values: []float64{1.5, 2}},
	})
	cfg := &config.Config{
		CVLog:     log,
		Columns:   []string{"energy", "category"},
		Variables: map[string]config.Variable{"energy": {Name: "energy", NBins: 2, Low: 0, High: 2}},
		Plots: map[string]config.Plot{
			"b_energy": {Name: "b_energy", Type: config.PlotHist1D, Var: "energy", CategoricalVar: "category", Merge: [][]int{{0}, {2}}},
			"a_flow":   {Name: "a_flow", Type: config.PlotFlow, Tags: []string{"NEUTRINO"}},
		},
		Style: config.DefaultStyle(),
	}

	plots, err := NewBuilder(cfg, Inputs{Log: log, Channel: "1mu1p"}).Build(context.Background())
	require.NoError(t, err)
	require.Len(t, plots, 2)
	assert.Equal(t, "a_flow", plots[0].Name)
	require.NotNil(t, plots[0].Flow)
	assert.Equal(t, 1, plots[0].Flow.Steps[0].Count)
	require.NotNil(t, plots[1].Hist1D)
	assert.Equal(t, []float64{1, 1}, plots[1].Hist1D.Total)

	_, err = NewBuilder(cfg, Inputs{Log: log, Channel: "1mu1p"}).Build(context.Background(), "nope")
	assert.Error(t, err)
}
