package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/syscov/internal/aggregate"
	"github.com/roach88/syscov/internal/binning"
	"github.com/roach88/syscov/internal/config"
	"github.com/roach88/syscov/internal/covariance"
	"github.com/roach88/syscov/internal/detector"
	"github.com/roach88/syscov/internal/eventlog"
	"github.com/roach88/syscov/internal/model"
	"github.com/roach88/syscov/internal/weights"
)

// ErrNoWeights is returned when a multisim systematic runs without an
// event store.
var ErrNoWeights = errors.New("engine: multisim systematic needs an event store")

// compute builds the aggregation member of one unit.
func (e *Engine) compute(ctx context.Context, u unit, sum *Summary) (aggregate.Member, error) {
	spec, err := u.variable.Spec()
	if err != nil {
		return aggregate.Member{}, err
	}

	switch u.systematic.Type {
	case config.TypeMultisim:
		return e.multisim(ctx, u, spec, sum)
	case config.TypeDetector:
		return e.detector(ctx, u, spec, sum)
	case config.TypeStats:
		return e.statistical(u, spec)
	}
	return aggregate.Member{}, &config.UnknownSystematicTypeError{
		Name: u.systematic.Name,
		Type: string(u.systematic.Type),
	}
}

// selection returns the CV selected candidates, read once per run.
func (e *Engine) selection() (*eventlog.Table, error) {
	if e.selected != nil {
		return e.selected, nil
	}
	t, err := eventlog.ReadLog(e.cfg.CVLog, eventlog.SelectedTag(e.channel), e.cfg.Header())
	if err != nil {
		return nil, err
	}
	e.logger.Debug("selection loaded", "log", e.cfg.CVLog, "channel", e.channel, "rows", t.NumRows())
	e.selected = t
	return t, nil
}

// binned assigns every selected record of the CV sample to a bin.
func (e *Engine) binned(variable string, spec *binning.Spec) (*eventlog.Table, []int, error) {
	sel, err := e.selection()
	if err != nil {
		return nil, nil, err
	}
	values, err := sel.Floats(variable)
	if err != nil {
		return nil, nil, err
	}
	return sel, spec.Assign(values), nil
}

func (e *Engine) multisim(ctx context.Context, u unit, spec *binning.Spec, sum *Summary) (aggregate.Member, error) {
	if e.weightsPath == "" {
		return aggregate.Member{}, ErrNoWeights
	}
	sel, bins, err := e.binned(u.variable.Name, spec)
	if err != nil {
		return aggregate.Member{}, err
	}
	keys, err := sel.Keys()
	if err != nil {
		return aggregate.Member{}, err
	}
	cosmic := make([]bool, len(keys))
	for i, k := range keys {
		cosmic[i] = k.IsCosmic()
	}

	w, err := e.weights(ctx, u.systematic, keys)
	if err != nil {
		return aggregate.Member{}, err
	}
	name := model.MatrixName(u.systematic.Name, u.variable.Name)
	if n := len(w.Mismatches); n > 0 {
		sum.Mismatches[name] = n
		e.logger.Warn("selected events missing from store",
			"systematic", u.systematic.Name,
			"variable", u.variable.Name,
			"count", n,
			"first", w.Mismatches[0].Key.String())
	}

	res, err := covariance.Multisim(covariance.MultisimInput{
		Bins:      bins,
		Cosmic:    cosmic,
		Weights:   w.Weights,
		Matched:   w.Matched,
		NBins:     spec.N,
		Universes: w.Universes,
	})
	if err != nil {
		return aggregate.Member{}, err
	}
	frac, err := covariance.Fractional(res.Cov, res.CV)
	if err != nil {
		return aggregate.Member{}, err
	}
	return aggregate.Member{
		Systematic: u.systematic.Name,
		Variable:   u.variable.Name,
		Groups:     u.systematic.Groups,
		Cov:        res.Cov,
		Fractional: frac,
		Extras: []model.Entry{
			model.VectorEntry(model.AuxName(u.systematic.Name, u.variable.Name, model.SuffixCV), res.CV),
		},
	}, nil
}

// weights extracts the universe weights of a multisim systematic. The
// selection does not depend on the variable, so each systematic is
// extracted once per run.
func (e *Engine) weights(ctx context.Context, sys config.Systematic, keys []model.EventKey) (*weights.Result, error) {
	if w, ok := e.extracted[sys.Name]; ok {
		return w, nil
	}
	w, err := weights.Extract(ctx, e.weightsPath, keys, sys.Multisim.Index, weights.Options{
		BatchBudget: e.batchBudget,
		Allocator:   e.allocator,
		Logger:      e.logger.With("systematic", sys.Name),
	})
	if err != nil {
		return nil, err
	}
	e.extracted[sys.Name] = w
	return w, nil
}

func (e *Engine) detector(ctx context.Context, u unit, spec *binning.Spec, sum *Summary) (aggregate.Member, error) {
	p := u.systematic.Detector
	pop, err := e.population(u.systematic)
	if err != nil {
		return aggregate.Member{}, err
	}
	res, err := pop.Compute(ctx, u.variable.Name, spec, detector.Options{
		NBoots:     p.NBoots,
		NUniverses: p.NUniverses,
		StatsLimit: p.StatsLimit,
		Logger:     e.logger.With("systematic", u.systematic.Name, "variable", u.variable.Name),
	}, e.src)
	if err != nil {
		return aggregate.Member{}, err
	}
	if res.Degenerate {
		sum.Degenerate = append(sum.Degenerate, model.MatrixName(u.systematic.Name, u.variable.Name))
	}

	frac, err := covariance.Fractional(res.DMatrix, res.CV)
	if err != nil {
		return aggregate.Member{}, err
	}
	aux := func(suffix string) string {
		return model.AuxName(u.systematic.Name, u.variable.Name, suffix)
	}
	return aggregate.Member{
		Systematic: u.systematic.Name,
		Variable:   u.variable.Name,
		Groups:     u.systematic.Groups,
		Cov:        res.DMatrix,
		Fractional: frac,
		Extras: []model.Entry{
			model.VectorEntry(aux(model.SuffixCV), res.CV),
			model.VectorEntry(aux(model.SuffixVNominal), res.VNominal),
			model.MatrixEntry(aux(model.SuffixRMatrix), res.RMatrix),
			model.VectorEntry(aux(model.SuffixRatio), res.Ratio),
			model.MatrixEntry(aux(model.SuffixCRatio), res.CRatio),
		},
	}, nil
}

// population loads the paired samples of a detector systematic once per
// run; every variable reuses them.
func (e *Engine) population(sys config.Systematic) (*detector.Population, error) {
	if pop, ok := e.populations[sys.Name]; ok {
		return pop, nil
	}
	p := sys.Detector
	pop, err := detector.Load(detector.LoadConfig{
		CVLog:        e.cfg.CVLog,
		VariationLog: p.SysLog,
		Channel:      e.channel,
		SignalTag:    p.SignalTag,
		Header:       e.cfg.Header(),
		MatchNuID:    p.MatchNuID,
	})
	if err != nil {
		return nil, fmt.Errorf("detector %s: %w", sys.Name, err)
	}
	e.logger.Debug("detector population loaded",
		"systematic", sys.Name,
		"common", len(pop.Common),
		"cv", pop.CV.NumRows(),
		"variation", pop.Variation.NumRows())
	e.populations[sys.Name] = pop
	return pop, nil
}

func (e *Engine) statistical(u unit, spec *binning.Spec) (aggregate.Member, error) {
	_, bins, err := e.binned(u.variable.Name, spec)
	if err != nil {
		return aggregate.Member{}, err
	}
	counts := spec.Counts(bins)
	cov := covariance.Statistical(counts)
	frac, err := covariance.Fractional(cov, counts)
	if err != nil {
		return aggregate.Member{}, err
	}
	return aggregate.Member{
		Systematic:  u.systematic.Name,
		Variable:    u.variable.Name,
		Groups:      u.systematic.Groups,
		Cov:         cov,
		Fractional:  frac,
		Statistical: true,
	}, nil
}
