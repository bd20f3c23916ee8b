package detector

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/roach88/syscov/internal/binning"
	"github.com/roach88/syscov/internal/model"
)

// bootstraps holds per-bin counts (bins x boots) of both samples.
type bootstraps struct {
	cv        *mat.Dense
	variation *mat.Dense
}

// bootstrap draws k = floor(f*N) entries with replacement from the first k
// common entries and, for each draw, counts the selected candidates of
// each sample sharing its key. A key drawn twice counts twice.
func (p *Population) bootstrap(ctx context.Context, nbins int, cvByKey, varByKey map[model.EventKey][]int, opts Options, src Sampler) (*bootstraps, error) {
	k := int(opts.StatsLimit * float64(len(p.Common)))
	if k < 1 {
		return nil, fmt.Errorf("%w: %d common entries, stats limit %g", ErrEmptyPopulation, len(p.Common), opts.StatsLimit)
	}

	out := &bootstraps{
		cv:        mat.NewDense(nbins, opts.NBoots, nil),
		variation: mat.NewDense(nbins, opts.NBoots, nil),
	}
	cvCol := make([]float64, nbins)
	varCol := make([]float64, nbins)
	for boot := 0; boot < opts.NBoots; boot++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		clear(cvCol)
		clear(varCol)
		for range k {
			key := p.Common[src.IntN(k)]
			tally(cvCol, cvByKey[key])
			tally(varCol, varByKey[key])
		}
		out.cv.SetCol(boot, cvCol)
		out.variation.SetCol(boot, varCol)
	}
	opts.Logger.Debug("detector bootstrap done", "boots", opts.NBoots, "draws", k, "bins", nbins)
	return out, nil
}

func tally(counts []float64, bins []int) {
	for _, b := range bins {
		if binning.Valid(b, len(counts)) {
			counts[b]++
		}
	}
}
