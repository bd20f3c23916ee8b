package report

import (
	"context"
	"fmt"

	"github.com/roach88/syscov/internal/binning"
	"github.com/roach88/syscov/internal/config"
	"github.com/roach88/syscov/internal/eventlog"
)

// Plot is the data of one configured plot. Exactly one of the payload
// fields is set, matching Type.
type Plot struct {
	Name string          `json:"name"`
	Type config.PlotType `json:"type"`

	Hist1D    *Hist1D          `json:"hist1d,omitempty"`
	Hist2D    *Hist2D          `json:"hist2d,omitempty"`
	Confusion *ConfusionMatrix `json:"confusion,omitempty"`
	Flow      *SelectionFlow   `json:"flow,omitempty"`
}

// Inputs locates the data plots are built from.
type Inputs struct {
	// Log is the analysis log holding the selected candidates.
	Log string

	// Channel is used for plots that do not name their own.
	Channel string

	// Archive is needed only by hist1d plots with systematics.
	Archive Archive
}

// Builder builds plots of one configuration, reading each channel's
// selection once.
type Builder struct {
	cfg      *config.Config
	in       Inputs
	selected map[string]*eventlog.Table
}

// NewBuilder returns a Builder for cfg.
func NewBuilder(cfg *config.Config, in Inputs) *Builder {
	return &Builder{cfg: cfg, in: in, selected: make(map[string]*eventlog.Table)}
}

// Build returns the data of the named plots, or of every plot when names
// is empty, in name order.
func (b *Builder) Build(ctx context.Context, names ...string) ([]*Plot, error) {
	var plots []config.Plot
	if len(names) == 0 {
		plots = b.cfg.SortedPlots()
	} else {
		for _, n := range names {
			p, ok := b.cfg.Plots[n]
			if !ok {
				return nil, fmt.Errorf("plot %q is not configured", n)
			}
			plots = append(plots, p)
		}
	}

	out := make([]*Plot, 0, len(plots))
	for _, p := range plots {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := b.build(ctx, p)
		if err != nil {
			return nil, err
		}
		out = append(out, data)
	}
	return out, nil
}

func (b *Builder) build(ctx context.Context, p config.Plot) (*Plot, error) {
	out := &Plot{Name: p.Name, Type: p.Type}
	switch p.Type {
	case config.PlotHist1D:
		spec, err := b.spec(p.Var)
		if err != nil {
			return nil, err
		}
		t, err := b.selection(p)
		if err != nil {
			return nil, err
		}
		if len(p.Systematics) > 0 && b.in.Archive == nil {
			return nil, fmt.Errorf("plot %s lists systematics but no archive was given", p.Name)
		}
		out.Hist1D, err = Histogram(ctx, p, spec, t, b.in.Archive, b.cfg.Style)
		if err != nil {
			return nil, err
		}
	case config.PlotHist2D:
		xspec, err := b.spec(p.Var)
		if err != nil {
			return nil, err
		}
		yspec, err := b.spec(p.YVar)
		if err != nil {
			return nil, err
		}
		t, err := b.selection(p)
		if err != nil {
			return nil, err
		}
		if out.Hist2D, err = Histogram2D(p, xspec, yspec, t); err != nil {
			return nil, err
		}
	case config.PlotConfusion:
		t, err := b.selection(p)
		if err != nil {
			return nil, err
		}
		if out.Confusion, err = Confusion(p, t); err != nil {
			return nil, err
		}
	case config.PlotFlow:
		var err error
		if out.Flow, err = Flow(p, b.in.Log, b.cfg.Header()); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("plot %s: unknown type %q", p.Name, p.Type)
	}
	return out, nil
}

func (b *Builder) spec(variable string) (*binning.Spec, error) {
	v, ok := b.cfg.Variables[variable]
	if !ok {
		return nil, fmt.Errorf("variable %q is not configured", variable)
	}
	return v.Spec()
}

func (b *Builder) selection(p config.Plot) (*eventlog.Table, error) {
	channel := p.Channel
	if channel == "" {
		channel = b.in.Channel
	}
	if t, ok := b.selected[channel]; ok {
		return t, nil
	}
	t, err := eventlog.ReadLog(b.in.Log, eventlog.SelectedTag(channel), b.cfg.Header())
	if err != nil {
		return nil, err
	}
	b.selected[channel] = t
	return t, nil
}
