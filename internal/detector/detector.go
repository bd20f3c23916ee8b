package detector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/mat"

	"github.com/roach88/syscov/internal/binning"
	"github.com/roach88/syscov/internal/covariance"
)

// Sampler supplies the randomness of a computation.
// *random.Source satisfies it.
type Sampler interface {
	IntN(n int) int
	Normal() float64
	Normals(dst []float64) []float64
}

// Options controls the bootstrap and the universe draws.
type Options struct {
	NBoots     int
	NUniverses int

	// StatsLimit is the fraction of the common population resampled in
	// each bootstrap iteration, in (0, 1].
	StatsLimit float64

	Logger *slog.Logger
}

// ErrEmptyPopulation is returned when no signal interaction is common to
// both samples within the stats limit.
var ErrEmptyPopulation = errors.New("detector: empty common population")

// Result holds the detector covariance and its intermediates.
type Result struct {
	// CV is the count of CV selected signal candidates per bin.
	CV []float64

	VNominal []float64
	RMatrix  *mat.SymDense
	DMatrix  *mat.SymDense

	// Ratio is the mean per-bin ratio of variation to CV counts; CRatio is
	// its covariance over bootstrap iterations.
	Ratio  []float64
	CRatio *mat.SymDense

	// Mask is true for bins that carry a non-zero vnominal.
	Mask []bool

	// Degenerate is set when the masked rmatrix is identically zero, so
	// universes are pure scalings of vnominal.
	Degenerate bool
}

// Config is everything Compute needs for one variable.
type Config struct {
	LoadConfig
	Options

	// Variable is the column binned with Binning.
	Variable string
	Binning  *binning.Spec
}

// Compute loads a detector variation and computes its covariance for one
// variable.
func Compute(ctx context.Context, cfg Config, src Sampler) (*Result, error) {
	pop, err := Load(cfg.LoadConfig)
	if err != nil {
		return nil, err
	}
	return pop.Compute(ctx, cfg.Variable, cfg.Binning, cfg.Options, src)
}

// Compute bins both selections by variable and runs the bootstrap and the
// universe draws.
func (p *Population) Compute(ctx context.Context, variable string, spec *binning.Spec, opts Options, src Sampler) (*Result, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.NBoots < 1 || opts.NUniverses < 1 {
		return nil, fmt.Errorf("detector: nboots and nuniverses must be positive, got %d and %d", opts.NBoots, opts.NUniverses)
	}
	if opts.StatsLimit == 0 {
		opts.StatsLimit = 1
	}
	if opts.StatsLimit < 0 || opts.StatsLimit > 1 {
		return nil, fmt.Errorf("detector: stats limit %g outside (0, 1]", opts.StatsLimit)
	}

	cvValues, err := p.CV.Floats(variable)
	if err != nil {
		return nil, fmt.Errorf("detector: cv: %w", err)
	}
	varValues, err := p.Variation.Floats(variable)
	if err != nil {
		return nil, fmt.Errorf("detector: variation: %w", err)
	}
	cvBins := spec.Assign(cvValues)
	cvByKey, err := p.binsByKey(p.CV, cvBins)
	if err != nil {
		return nil, fmt.Errorf("detector: cv: %w", err)
	}
	varByKey, err := p.binsByKey(p.Variation, spec.Assign(varValues))
	if err != nil {
		return nil, fmt.Errorf("detector: variation: %w", err)
	}

	boots, err := p.bootstrap(ctx, spec.N, cvByKey, varByKey, opts, src)
	if err != nil {
		return nil, err
	}

	res := &Result{CV: spec.Counts(cvBins)}
	var diff mat.Dense
	diff.Sub(boots.variation, boots.cv)
	res.VNominal = covariance.RowMeans(&diff)
	res.RMatrix = covariance.Sample(&diff)
	res.Ratio, res.CRatio = ratio(boots.cv, boots.variation)

	res.Mask = make([]bool, spec.N)
	for b, v := range res.VNominal {
		res.Mask[b] = v != 0
	}
	if err := res.universes(ctx, opts, src); err != nil {
		return nil, err
	}
	return res, nil
}

// ratio returns the mean variation/CV ratio per bin and its covariance.
// Bins with a zero CV count take ratio 1.
func ratio(cv, variation *mat.Dense) ([]float64, *mat.SymDense) {
	rows, cols := cv.Dims()
	r := mat.NewDense(rows, cols, nil)
	r.Apply(func(i, j int, v float64) float64 {
		c := cv.At(i, j)
		if c == 0 {
			return 1
		}
		return v / c
	}, variation)
	return covariance.RowMeans(r), covariance.Sample(r)
}

// universes draws g*(vnominal + L*z) on the unmasked bins and stores their
// covariance, scattered back to full size, as DMatrix.
func (r *Result) universes(ctx context.Context, opts Options, src Sampler) error {
	n := len(r.VNominal)
	r.DMatrix = mat.NewSymDense(n, nil)

	var kept []int
	for b, ok := range r.Mask {
		if ok {
			kept = append(kept, b)
		}
	}
	m := len(kept)
	if m == 0 {
		opts.Logger.Warn("all detector bins masked", "bins", n)
		return nil
	}

	rm := mat.NewSymDense(m, nil)
	v := make([]float64, m)
	for i, bi := range kept {
		v[i] = r.VNominal[bi]
		for j := i; j < m; j++ {
			rm.SetSym(i, j, r.RMatrix.At(bi, kept[j]))
		}
	}

	var l *mat.TriDense
	if covariance.IsZero(rm) {
		r.Degenerate = true
		opts.Logger.Warn("detector rmatrix has no bootstrap spread", "bins", m, "nboots", opts.NBoots)
	} else {
		var err error
		if l, err = covariance.Factor(rm, "rmatrix"); err != nil {
			return err
		}
	}

	draws := mat.NewDense(m, opts.NUniverses, nil)
	z := make([]float64, m)
	lz := mat.NewVecDense(m, nil)
	for u := 0; u < opts.NUniverses; u++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if l != nil {
			lz.MulVec(l, mat.NewVecDense(m, src.Normals(z)))
		}
		g := src.Normal()
		for i := 0; i < m; i++ {
			draws.Set(i, u, g*(v[i]+lz.AtVec(i)))
		}
	}

	cov := covariance.Sample(draws)
	for i, bi := range kept {
		for j := i; j < m; j++ {
			r.DMatrix.SetSym(bi, kept[j], cov.At(i, j))
		}
	}
	return nil
}
