// Package aggregate collects per-systematic covariance matrices and derives
// the group and total matrices stored in the archive.
package aggregate

import (
	"errors"
	"fmt"
	"slices"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/roach88/syscov/internal/model"
)

// ErrReservedGroup is returned when a member declares an implicit group.
var ErrReservedGroup = errors.New("aggregate: reserved group name")

// ErrShape is returned when a member's matrices do not match the other
// members of the same variable.
var ErrShape = errors.New("aggregate: shape mismatch")

// Member is the covariance of one systematic for one variable.
type Member struct {
	Systematic string
	Variable   string
	Groups     []string

	Cov        *mat.SymDense
	Fractional *mat.SymDense

	// Statistical marks the statistical covariance: it is archived as
	// "statistical_<var>" and left out of total_syst.
	Statistical bool

	// Extras are stored alongside the member, e.g. detector intermediates.
	Extras []model.Entry
}

// Name returns the archive name stem of the member.
func (m Member) Name() string {
	if m.Statistical {
		return model.StatisticalName
	}
	return m.Systematic
}

type memberKey struct {
	name     string
	variable string
}

// Aggregator accumulates members. Group matrices are derived from the
// members on every call to Entries, so the result does not depend on the
// order members were added in.
type Aggregator struct {
	members map[memberKey]Member
	size    map[string]int
}

// New returns an empty Aggregator.
func New() *Aggregator {
	return &Aggregator{
		members: make(map[memberKey]Member),
		size:    make(map[string]int),
	}
}

// Len returns the number of members.
func (a *Aggregator) Len() int {
	return len(a.members)
}

// Add stores m, replacing an earlier member with the same name and variable.
func (a *Aggregator) Add(m Member) error {
	for _, g := range m.Groups {
		if model.IsReservedGroup(g) {
			return fmt.Errorf("%w: %s declares group %q", ErrReservedGroup, m.Name(), g)
		}
	}
	if m.Cov == nil || m.Fractional == nil {
		return fmt.Errorf("%w: %s_%s is missing a matrix", ErrShape, m.Name(), m.Variable)
	}
	n := m.Cov.SymmetricDim()
	if m.Fractional.SymmetricDim() != n {
		return fmt.Errorf("%w: %s_%s covariance is %d bins, fractional %d",
			ErrShape, m.Name(), m.Variable, n, m.Fractional.SymmetricDim())
	}
	if want, ok := a.size[m.Variable]; ok && want != n {
		return fmt.Errorf("%w: %s_%s has %d bins, variable has %d", ErrShape, m.Name(), m.Variable, n, want)
	}
	a.size[m.Variable] = n
	a.members[memberKey{name: m.Name(), variable: m.Variable}] = m
	return nil
}

// Entries returns every archive entry: each member's matrix, fractional
// matrix and extras, each declared group, total and total_syst. Entries are
// sorted by name.
func (a *Aggregator) Entries() []model.Entry {
	var out []model.Entry
	for _, variable := range a.variables() {
		members := a.sorted(variable)
		groups := make(map[string]*sum)
		add := func(group string, m Member) {
			s, ok := groups[group]
			if !ok {
				s = newSum(a.size[variable])
				groups[group] = s
			}
			s.add(m)
		}
		for _, m := range members {
			out = append(out,
				model.MatrixEntry(model.MatrixName(m.Name(), variable), m.Cov),
				model.MatrixEntry(model.FractionalName(m.Name(), variable), m.Fractional))
			out = append(out, m.Extras...)

			for _, g := range m.Groups {
				add(g, m)
			}
			add(model.GroupTotal, m)
			if !m.Statistical {
				add(model.GroupTotalSyst, m)
			}
		}
		for g, s := range groups {
			out = append(out,
				model.MatrixEntry(model.MatrixName(g, variable), s.cov),
				model.MatrixEntry(model.FractionalName(g, variable), s.frac))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (a *Aggregator) variables() []string {
	vars := make([]string, 0, len(a.size))
	for v := range a.size {
		vars = append(vars, v)
	}
	slices.Sort(vars)
	return vars
}

// sorted returns the members of variable ordered by name.
func (a *Aggregator) sorted(variable string) []Member {
	var out []Member
	for k, m := range a.members {
		if k.variable == variable {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

type sum struct {
	cov  *mat.SymDense
	frac *mat.SymDense
}

func newSum(n int) *sum {
	return &sum{cov: mat.NewSymDense(n, nil), frac: mat.NewSymDense(n, nil)}
}

func (s *sum) add(m Member) {
	s.cov.AddSym(s.cov, m.Cov)
	s.frac.AddSym(s.frac, m.Fractional)
}
