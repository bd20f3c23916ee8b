package report

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strconv"

	"github.com/roach88/syscov/internal/binning"
	"github.com/roach88/syscov/internal/config"
	"github.com/roach88/syscov/internal/eventlog"
	"github.com/roach88/syscov/internal/model"
)

// Archive is the read side of a covariance archive.
// Implemented by *archive.Archive.
type Archive interface {
	Get(ctx context.Context, name string) (model.Entry, error)
}

// Stack is one merged category of a stacked histogram.
type Stack struct {
	Label      string    `json:"label"`
	Categories []int     `json:"categories"`
	Color      string    `json:"color"`
	Counts     []float64 `json:"counts"`
	Total      float64   `json:"total"`
}

// Band is the uncertainty of one systematic around the stacked total,
// drawn as a box per bin from Low to High.
type Band struct {
	Systematic string    `json:"systematic"`
	Label      string    `json:"label"`
	Color      string    `json:"color"`
	Hatch      string    `json:"hatch"`
	Alpha      float64   `json:"alpha"`
	Error      []float64 `json:"error"`
	Low        []float64 `json:"low"`
	High       []float64 `json:"high"`
}

// RatioPanel is the per-bin variation/CV ratio of a detector systematic.
// Undefined bins carry a ratio of exactly 1 and are not drawn.
type RatioPanel struct {
	Systematic string      `json:"systematic"`
	Ratio      []float64   `json:"ratio"`
	Error      []float64   `json:"error"`
	Undefined  []bool      `json:"undefined"`
	Range      [2]float64  `json:"range"`
	Chi2       *Chi2Result `json:"chi2,omitempty"`
}

// ErrorPanel is the relative uncertainty of one systematic, in percent of
// the stacked total.
type ErrorPanel struct {
	Systematic string     `json:"systematic"`
	Percent    []float64  `json:"percent"`
	Range      [2]float64 `json:"range"`
}

// Hist1D is the data of a stacked 1D histogram.
type Hist1D struct {
	Name   string    `json:"name"`
	Title  string    `json:"title,omitempty"`
	XLabel string    `json:"xlabel,omitempty"`
	YLabel string    `json:"ylabel,omitempty"`
	YLim   []float64 `json:"ylim,omitempty"`

	Edges   []float64 `json:"edges"`
	Centers []float64 `json:"centers"`
	Widths  []float64 `json:"widths"`

	Stacks []Stack    `json:"stacks"`
	Total  []float64  `json:"total"`
	Bands  []Band     `json:"bands,omitempty"`
	Legend []string   `json:"legend"`

	Ratio *RatioPanel `json:"ratio,omitempty"`
	Error *ErrorPanel `json:"error,omitempty"`
}

// Histogram builds a stacked histogram of desc.Var from the selected
// candidates in table, one stack per merge group of desc.CategoricalVar,
// with an uncertainty band per listed systematic read from arch.
func Histogram(ctx context.Context, desc config.Plot, spec *binning.Spec, table *eventlog.Table, arch Archive, style config.Style) (*Hist1D, error) {
	values, err := table.Floats(desc.Var)
	if err != nil {
		return nil, fmt.Errorf("histogram %s: %w", desc.Name, err)
	}
	cats, err := table.Floats(desc.CategoricalVar)
	if err != nil {
		return nil, fmt.Errorf("histogram %s: %w", desc.Name, err)
	}

	h := &Hist1D{
		Name:    desc.Name,
		Title:   desc.Title,
		XLabel:  desc.XLabel,
		YLabel:  desc.YLabel,
		YLim:    desc.YLim,
		Edges:   spec.Edges(),
		Centers: spec.Centers(),
		Widths:  spec.Widths(),
		Total:   make([]float64, spec.N),
	}

	var all float64
	for i, group := range desc.Merge {
		var picked []float64
		for r, c := range cats {
			if !math.IsNaN(c) && slices.Contains(group, int(c)) {
				picked = append(picked, values[r])
			}
		}
		s := Stack{
			Label:      categoryLabel(desc.Categories, group[0]),
			Categories: group,
			Color:      stackColor(desc.Colors, i),
			Counts:     spec.Counts(spec.Assign(picked)),
		}
		for b, n := range s.Counts {
			s.Total += n
			h.Total[b] += n
		}
		all += s.Total
		h.Stacks = append(h.Stacks, s)
	}
	for _, s := range h.Stacks {
		if desc.ShowPercentage {
			var frac float64
			if all != 0 {
				frac = s.Total / all
			}
			h.Legend = append(h.Legend, fmt.Sprintf("%s (%.0f, %.2f%%)", s.Label, s.Total, 100*frac))
		} else {
			h.Legend = append(h.Legend, fmt.Sprintf("%s (%.0f)", s.Label, s.Total))
		}
	}

	keys := desc.SystematicKeys()
	errs := make(map[string][]float64, len(keys))
	for i, key := range keys {
		sigma, err := diagonalError(ctx, arch, model.MatrixName(key, desc.Var), spec.N)
		if err != nil {
			return nil, fmt.Errorf("histogram %s: %w", desc.Name, err)
		}
		errs[key] = sigma
		color, hatch := style.Band(i)
		b := Band{
			Systematic: key,
			Label:      desc.Systematics[key],
			Color:      color,
			Hatch:      hatch,
			Alpha:      style.Alpha,
			Error:      sigma,
			Low:        make([]float64, spec.N),
			High:       make([]float64, spec.N),
		}
		for j, e := range sigma {
			b.Low[j] = h.Total[j] - e
			b.High[j] = h.Total[j] + e
		}
		h.Bands = append(h.Bands, b)
		h.Legend = append(h.Legend, b.Label)
	}

	if len(keys) == 0 {
		return h, nil
	}
	// Lower panels describe the first listed systematic.
	switch desc.Multiplot {
	case config.PanelRatio:
		if h.Ratio, err = ratioPanel(ctx, arch, keys[0], desc.Var, spec.N, style); err != nil {
			return nil, fmt.Errorf("histogram %s: %w", desc.Name, err)
		}
	case config.PanelError:
		p := &ErrorPanel{Systematic: keys[0], Percent: make([]float64, spec.N), Range: style.ErrorRange}
		for b, e := range errs[keys[0]] {
			if h.Total[b] != 0 {
				p.Percent[b] = 100 * e / h.Total[b]
			}
		}
		h.Error = p
	}
	return h, nil
}

func ratioPanel(ctx context.Context, arch Archive, key, variable string, n int, style config.Style) (*RatioPanel, error) {
	ratio, err := vector(ctx, arch, model.AuxName(key, variable, model.SuffixRatio), n)
	if err != nil {
		return nil, err
	}
	sigma, err := diagonalError(ctx, arch, model.AuxName(key, variable, model.SuffixCRatio), n)
	if err != nil {
		return nil, err
	}
	p := &RatioPanel{
		Systematic: key,
		Ratio:      ratio,
		Error:      sigma,
		Undefined:  make([]bool, n),
		Range:      style.RatioRange,
	}
	for b, r := range ratio {
		p.Undefined[b] = r == 1
	}

	vn, err := vector(ctx, arch, model.AuxName(key, variable, model.SuffixVNominal), n)
	if err != nil {
		return nil, err
	}
	re, err := arch.Get(ctx, model.AuxName(key, variable, model.SuffixRMatrix))
	if err != nil {
		return nil, err
	}
	rm, err := re.Sym()
	if err != nil {
		return nil, err
	}
	chi2, err := Chi2(vn, rm)
	if err != nil {
		return nil, err
	}
	p.Chi2 = &chi2
	return p, nil
}

// diagonalError returns the square root of the diagonal of a stored
// covariance of size n.
func diagonalError(ctx context.Context, arch Archive, name string, n int) ([]float64, error) {
	e, err := arch.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	m, err := e.Sym()
	if err != nil {
		return nil, err
	}
	if m.SymmetricDim() != n {
		return nil, fmt.Errorf("%s: %d bins, plot has %d", name, m.SymmetricDim(), n)
	}
	out := make([]float64, n)
	for b := range out {
		out[b] = math.Sqrt(m.At(b, b))
	}
	return out, nil
}

func vector(ctx context.Context, arch Archive, name string, n int) ([]float64, error) {
	e, err := arch.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	if !e.IsVector() || e.Cols != n {
		return nil, fmt.Errorf("%s: %dx%d, plot has %d bins", name, e.Rows, e.Cols, n)
	}
	return e.Data, nil
}

func categoryLabel(labels map[string]string, cat int) string {
	key := strconv.Itoa(cat)
	if l, ok := labels[key]; ok {
		return l
	}
	return key
}

// stackColor names a color of the default cycle, "C0", "C1", ...
func stackColor(colors []int, i int) string {
	if i < len(colors) {
		return "C" + strconv.Itoa(colors[i])
	}
	return "C" + strconv.Itoa(i)
}
