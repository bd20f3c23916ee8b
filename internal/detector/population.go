package detector

import (
	"fmt"

	"github.com/roach88/syscov/internal/eventlog"
	"github.com/roach88/syscov/internal/model"
)

// LoadConfig locates the two samples of a detector variation.
type LoadConfig struct {
	CVLog        string
	VariationLog string

	// Channel selects the SELECTED_<CHANNEL> candidate lines.
	Channel string

	// SignalTag selects the signal interaction lines; empty means EVENT.
	SignalTag string

	// Header names the log columns positionally.
	Header []string

	// MatchNuID adds nu_id to the event identity used for joins.
	MatchNuID bool
}

// Population is the paired CV and variation selection.
type Population struct {
	// Common is the join key of every signal interaction present in both
	// samples, with join multiplicity.
	Common []model.EventKey

	// CV and Variation hold the selected signal candidates of each sample.
	CV        *eventlog.Table
	Variation *eventlog.Table

	matchNuID bool
}

// joinColumns returns the identity columns used to pair records.
func joinColumns(matchNuID bool) []string {
	if matchNuID {
		return eventlog.KeyColumns
	}
	return eventlog.KeyColumns[:3]
}

// Load reads the signal and selected tables of both samples and pairs them.
func Load(cfg LoadConfig) (*Population, error) {
	tag := cfg.SignalTag
	if tag == "" {
		tag = eventlog.EventTag
	}
	selected := eventlog.SelectedTag(cfg.Channel)

	cvSignal, err := eventlog.ReadLog(cfg.CVLog, tag, cfg.Header)
	if err != nil {
		return nil, fmt.Errorf("load cv signal: %w", err)
	}
	varSignal, err := eventlog.ReadLog(cfg.VariationLog, tag, cfg.Header)
	if err != nil {
		return nil, fmt.Errorf("load variation signal: %w", err)
	}
	cvSelected, err := eventlog.ReadLog(cfg.CVLog, selected, cfg.Header)
	if err != nil {
		return nil, fmt.Errorf("load cv selection: %w", err)
	}
	varSelected, err := eventlog.ReadLog(cfg.VariationLog, selected, cfg.Header)
	if err != nil {
		return nil, fmt.Errorf("load variation selection: %w", err)
	}
	return NewPopulation(cvSignal, varSignal, cvSelected, varSelected, cfg.MatchNuID)
}

// NewPopulation pairs already-loaded tables. The common population is the
// inner join of the two signal tables; each selected table is restricted
// to its own sample's signal interactions.
func NewPopulation(cvSignal, varSignal, cvSelected, varSelected *eventlog.Table, matchNuID bool) (*Population, error) {
	on := joinColumns(matchNuID)

	common, err := cvSignal.Join(varSignal, on...)
	if err != nil {
		return nil, fmt.Errorf("common population: %w", err)
	}
	keys, err := common.Keys()
	if err != nil {
		return nil, fmt.Errorf("common population: %w", err)
	}
	p := &Population{matchNuID: matchNuID}
	for _, k := range keys {
		p.Common = append(p.Common, p.key(k))
	}

	if p.CV, err = cvSelected.Join(cvSignal, on...); err != nil {
		return nil, fmt.Errorf("cv selection: %w", err)
	}
	if p.Variation, err = varSelected.Join(varSignal, on...); err != nil {
		return nil, fmt.Errorf("variation selection: %w", err)
	}
	return p, nil
}

// key reduces a record identity to the join identity.
func (p *Population) key(k model.EventKey) model.EventKey {
	if !p.matchNuID {
		k.NuID = 0
	}
	return k
}

// binsByKey maps each join key of tbl to the bins of its records.
func (p *Population) binsByKey(tbl *eventlog.Table, bins []int) (map[model.EventKey][]int, error) {
	keys, err := tbl.Keys()
	if err != nil {
		return nil, err
	}
	out := make(map[model.EventKey][]int, len(keys))
	for i, k := range keys {
		k = p.key(k)
		out[k] = append(out[k], bins[i])
	}
	return out, nil
}
