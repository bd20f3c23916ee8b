package config

import "sort"

// PlotType selects the kind of plot data produced for a Plot.
type PlotType string

const (
	PlotHist1D    PlotType = "hist1d"
	PlotHist2D    PlotType = "hist2d"
	PlotConfusion PlotType = "confusion"
	PlotFlow      PlotType = "flow"
)

// Lower panel of a 1D histogram.
const (
	PanelNone  = "none"
	PanelRatio = "ratio"
	PanelError = "error"
)

// Plot describes one plot. Type decides which fields are required:
// hist1d needs Var and CategoricalVar, hist2d Var and YVar, confusion
// Var and YVar (both categorical), flow Tags.
type Plot struct {
	Name           string            `json:"name"`
	Type           PlotType          `json:"type"`
	Var            string            `json:"var,omitempty"`
	YVar           string            `json:"yvar,omitempty"`
	Channel        string            `json:"channel,omitempty"`
	Multiplot      string            `json:"multiplot,omitempty"`
	CategoricalVar string            `json:"categorical_var,omitempty"`
	Categories     map[string]string `json:"categories,omitempty"`
	Merge          [][]int           `json:"merge,omitempty"`
	Colors         []int             `json:"colors,omitempty"`
	Systematics    map[string]string `json:"systematics,omitempty"`
	ShowPercentage bool              `json:"show_percentage,omitempty"`
	Title          string            `json:"title,omitempty"`
	XLabel         string            `json:"xlabel,omitempty"`
	YLabel         string            `json:"ylabel,omitempty"`
	YLim           []float64         `json:"ylim,omitempty"`
	Tags           []string          `json:"tags,omitempty"`
}

// SystematicKeys returns the keys of Systematics in sorted order.
func (p Plot) SystematicKeys() []string {
	keys := make([]string, 0, len(p.Systematics))
	for k := range p.Systematics {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Style carries rendering hints attached to plot data.
type Style struct {
	Palette    []string   `json:"palette"`
	Hatches    []string   `json:"hatches"`
	Alpha      float64    `json:"alpha"`
	RatioRange [2]float64 `json:"ratio_range"`
	ErrorRange [2]float64 `json:"error_range"`
}

// DefaultStyle returns the style used when the document has none.
func DefaultStyle() Style {
	return Style{
		Palette:    []string{"gray", "rebeccapurple"},
		Hatches:    []string{"///", ""},
		Alpha:      0.5,
		RatioRange: [2]float64{0.8, 1.2},
		ErrorRange: [2]float64{0, 50},
	}
}

// Band returns the color and hatch of the i-th uncertainty band, cycling
// through the palette.
func (s Style) Band(i int) (color, hatch string) {
	if len(s.Palette) > 0 {
		color = s.Palette[i%len(s.Palette)]
	}
	if len(s.Hatches) > 0 {
		hatch = s.Hatches[i%len(s.Hatches)]
	}
	return color, hatch
}
