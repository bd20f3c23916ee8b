package report

import (
	"fmt"
	"math"
	"slices"

	"github.com/roach88/syscov/internal/binning"
	"github.com/roach88/syscov/internal/config"
	"github.com/roach88/syscov/internal/eventlog"
)

// Hist2D is the data of a 2D histogram of two binned variables.
type Hist2D struct {
	Name   string `json:"name"`
	Title  string `json:"title,omitempty"`
	XLabel string `json:"xlabel,omitempty"`
	YLabel string `json:"ylabel,omitempty"`

	XEdges []float64 `json:"xedges"`
	YEdges []float64 `json:"yedges"`

	// Counts[i][j] is the number of records in x bin i and y bin j;
	// Normalized divides it by the number of records inside the grid.
	Counts     [][]float64 `json:"counts"`
	Normalized [][]float64 `json:"normalized"`
}

// Histogram2D counts the records of table over the grid of desc.Var and
// desc.YVar. Records outside either range are left out.
func Histogram2D(desc config.Plot, xspec, yspec *binning.Spec, table *eventlog.Table) (*Hist2D, error) {
	xs, err := table.Floats(desc.Var)
	if err != nil {
		return nil, fmt.Errorf("hist2d %s: %w", desc.Name, err)
	}
	ys, err := table.Floats(desc.YVar)
	if err != nil {
		return nil, fmt.Errorf("hist2d %s: %w", desc.Name, err)
	}
	h := &Hist2D{
		Name:       desc.Name,
		Title:      desc.Title,
		XLabel:     desc.XLabel,
		YLabel:     desc.YLabel,
		XEdges:     xspec.Edges(),
		YEdges:     yspec.Edges(),
		Counts:     grid(xspec.N, yspec.N),
		Normalized: grid(xspec.N, yspec.N),
	}
	xb, yb := xspec.Assign(xs), yspec.Assign(ys)
	var total float64
	for r := range xb {
		if binning.Valid(xb[r], xspec.N) && binning.Valid(yb[r], yspec.N) {
			h.Counts[xb[r]][yb[r]]++
			total++
		}
	}
	if total > 0 {
		for i := range h.Counts {
			for j, c := range h.Counts[i] {
				h.Normalized[i][j] = c / total
			}
		}
	}
	return h, nil
}

// ConfusionMatrix relates two categorical columns of the same records.
type ConfusionMatrix struct {
	Name   string `json:"name"`
	Title  string `json:"title,omitempty"`
	XLabel string `json:"xlabel,omitempty"`
	YLabel string `json:"ylabel,omitempty"`

	Categories []int    `json:"categories"`
	Labels     []string `json:"labels"`

	// Counts[i][j] is the number of records with desc.Var in category i
	// and desc.YVar in category j. Fractions normalizes each row to one;
	// empty rows stay zero.
	Counts    [][]float64 `json:"counts"`
	Fractions [][]float64 `json:"fractions"`
}

// Confusion builds the row-normalized confusion matrix between the
// categorical columns desc.Var and desc.YVar.
func Confusion(desc config.Plot, table *eventlog.Table) (*ConfusionMatrix, error) {
	xs, err := table.Floats(desc.Var)
	if err != nil {
		return nil, fmt.Errorf("confusion %s: %w", desc.Name, err)
	}
	ys, err := table.Floats(desc.YVar)
	if err != nil {
		return nil, fmt.Errorf("confusion %s: %w", desc.Name, err)
	}

	index := make(map[int]int)
	var cats []int
	for _, col := range [][]float64{xs, ys} {
		for _, v := range col {
			if math.IsNaN(v) {
				continue
			}
			if _, ok := index[int(v)]; !ok {
				index[int(v)] = 0
				cats = append(cats, int(v))
			}
		}
	}
	slices.Sort(cats)
	for i, c := range cats {
		index[c] = i
	}

	n := len(cats)
	m := &ConfusionMatrix{
		Name:       desc.Name,
		Title:      desc.Title,
		XLabel:     desc.XLabel,
		YLabel:     desc.YLabel,
		Categories: cats,
		Counts:     grid(n, n),
		Fractions:  grid(n, n),
	}
	for _, c := range cats {
		m.Labels = append(m.Labels, categoryLabel(desc.Categories, c))
	}
	for r := range xs {
		if math.IsNaN(xs[r]) || math.IsNaN(ys[r]) {
			continue
		}
		m.Counts[index[int(xs[r])]][index[int(ys[r])]]++
	}
	for i, row := range m.Counts {
		var sum float64
		for _, c := range row {
			sum += c
		}
		if sum == 0 {
			continue
		}
		for j, c := range row {
			m.Fractions[i][j] = c / sum
		}
	}
	return m, nil
}

func grid(rows, cols int) [][]float64 {
	out := make([][]float64, rows)
	for i := range out {
		out[i] = make([]float64, cols)
	}
	return out
}
