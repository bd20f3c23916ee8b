package engine

import "github.com/roach88/syscov/internal/config"

// unit is one (systematic, variable) pair of work.
type unit struct {
	systematic config.Systematic
	variable   config.Variable
}

// plan returns the units of a run: systematics sorted by name, and for each
// one the variables sorted by name.
func plan(cfg *config.Config) []unit {
	vars := cfg.SortedVariables()
	syss := cfg.SortedSystematics()
	units := make([]unit, 0, len(vars)*len(syss))
	for _, s := range syss {
		for _, v := range vars {
			units = append(units, unit{systematic: s, variable: v})
		}
	}
	return units
}
