package config

import (
	"sort"

	"github.com/roach88/syscov/internal/binning"
	"github.com/roach88/syscov/internal/eventlog"
	"github.com/roach88/syscov/internal/model"
)

// SystematicType selects how a systematic's covariance is computed.
type SystematicType string

const (
	TypeMultisim SystematicType = "multisim"
	TypeDetector SystematicType = "detector"
	TypeStats    SystematicType = "stats"
)

// Detector defaults applied when the document omits a value.
const (
	DefaultNBoots     = 1000
	DefaultNUniverses = 1000
	DefaultStatsLimit = 1.0
)

// Config is a validated analysis configuration.
type Config struct {
	CVLog       string                `json:"cv_log"`
	Columns     []string              `json:"columns"`
	Variables   map[string]Variable   `json:"variables"`
	Systematics map[string]Systematic `json:"systematics"`
	Plots       map[string]Plot       `json:"plots"`
	Style       Style                 `json:"style"`
}

// Variable is a binned reconstructed quantity.
type Variable struct {
	Name  string  `json:"name"`
	NBins int     `json:"nbins"`
	Low   float64 `json:"low"`
	High  float64 `json:"high"`
}

// Spec returns the binning of the variable.
func (v Variable) Spec() (*binning.Spec, error) {
	return binning.NewSpec(v.NBins, v.Low, v.High)
}

// Systematic is one configured source of uncertainty. Exactly one of
// Multisim and Detector is set for those types; stats carries neither.
type Systematic struct {
	Name     string          `json:"name"`
	Type     SystematicType  `json:"type"`
	Groups   []string        `json:"groups"`
	Multisim *MultisimParams `json:"multisim,omitempty"`
	Detector *DetectorParams `json:"detector,omitempty"`
}

// MultisimParams locates the universe weights of a reweighting parameter.
type MultisimParams struct {
	Index int `json:"index"`
}

// DetectorParams describes a detector variation sample.
type DetectorParams struct {
	SysLog     string  `json:"sys_log"`
	NBoots     int     `json:"nboots"`
	NUniverses int     `json:"nuniverses"`
	StatsLimit float64 `json:"stats_limit"`
	SignalTag  string  `json:"signal_tag"`
	MatchNuID  bool    `json:"match_nu_id"`
}

// Header returns the positional column names of every log line:
// run, subrun, event, nu_id followed by the configured columns.
func (c *Config) Header() []string {
	return eventlog.Header(c.Columns...)
}

// SortedVariables returns the variables ordered by name.
func (c *Config) SortedVariables() []Variable {
	out := make([]Variable, 0, len(c.Variables))
	for _, v := range c.Variables {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// SortedSystematics returns the systematics ordered by name.
func (c *Config) SortedSystematics() []Systematic {
	out := make([]Systematic, 0, len(c.Systematics))
	for _, s := range c.Systematics {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// SortedPlots returns the plots ordered by name.
func (c *Config) SortedPlots() []Plot {
	out := make([]Plot, 0, len(c.Plots))
	for _, p := range c.Plots {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Hash returns the domain-separated fingerprint of the configuration.
func (c *Config) Hash() (string, error) {
	return model.Fingerprint(model.DomainConfig, c)
}
