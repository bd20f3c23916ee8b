package report

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/roach88/syscov/internal/archive"
	"github.com/roach88/syscov/internal/model"
)

// Summary condenses one stored covariance.
type Summary struct {
	Name     string `json:"name"`
	Variable string `json:"variable"`

	// Sigma is the absolute uncertainty per bin; RelErr is relative to
	// the central value, zero where the central value is zero.
	Sigma  []float64 `json:"sigma"`
	RelErr []float64 `json:"rel_err"`

	// Chi2 is set for detector systematics.
	Chi2 *Chi2Result `json:"chi2,omitempty"`
}

// Summarize reads the covariance of name (a systematic, group or total)
// for variable from arch.
func Summarize(ctx context.Context, arch Archive, name, variable string) (*Summary, error) {
	cov, err := arch.Get(ctx, model.MatrixName(name, variable))
	if err != nil {
		return nil, err
	}
	frac, err := arch.Get(ctx, model.FractionalName(name, variable))
	if err != nil {
		return nil, err
	}
	n := cov.Rows
	sigma, err := diagonalError(ctx, arch, cov.Name, n)
	if err != nil {
		return nil, err
	}
	rel, err := diagonalError(ctx, arch, frac.Name, n)
	if err != nil {
		return nil, err
	}
	s := &Summary{Name: name, Variable: variable, Sigma: sigma, RelErr: rel}

	vn, err := vector(ctx, arch, model.AuxName(name, variable, model.SuffixVNominal), n)
	switch {
	case errors.Is(err, archive.ErrNotFound):
		return s, nil
	case err != nil:
		return nil, err
	}
	re, err := arch.Get(ctx, model.AuxName(name, variable, model.SuffixRMatrix))
	if err != nil {
		return nil, err
	}
	rm, err := re.Sym()
	if err != nil {
		return nil, err
	}
	chi2, err := Chi2(vn, rm)
	if err != nil {
		return nil, fmt.Errorf("chi2 %s: %w", cov.Name, err)
	}
	s.Chi2 = &chi2
	return s, nil
}

// MaxRelErr returns the largest relative error over all bins.
func (s *Summary) MaxRelErr() float64 {
	var m float64
	for _, r := range s.RelErr {
		m = math.Max(m, r)
	}
	return m
}
