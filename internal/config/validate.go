package config

import (
	"fmt"
	"math"
	"sort"

	"github.com/roach88/syscov/internal/eventlog"
	"github.com/roach88/syscov/internal/model"
)

// convert applies defaults and the per-type rules the schema cannot
// express, returning the first violation.
func convert(raw rawConfig) (*Config, error) {
	cfg := &Config{
		CVLog:       raw.General.CVLog,
		Columns:     append([]string{}, raw.General.Columns...),
		Variables:   make(map[string]Variable, len(raw.General.Variables)),
		Systematics: make(map[string]Systematic, len(raw.Sys)),
		Plots:       make(map[string]Plot, len(raw.Plots)),
		Style:       convertStyle(raw.Style),
	}
	if cfg.CVLog == "" {
		return nil, &ValidationError{Code: CodeCVLog, Field: "general.cv_log", Message: "cv_log is required"}
	}

	if len(raw.General.Variables) == 0 {
		return nil, &ValidationError{Code: CodeVariables, Field: "general.variables", Message: "at least one variable is required"}
	}
	for _, name := range sortedKeys(raw.General.Variables) {
		v, err := convertVariable(name, raw.General.Variables[name])
		if err != nil {
			return nil, err
		}
		cfg.Variables[name] = v
	}

	if len(raw.Sys) == 0 {
		return nil, &ValidationError{Code: CodeSystematics, Field: "sys", Message: "at least one systematic is required"}
	}
	stats := ""
	for _, name := range sortedKeys(raw.Sys) {
		s, err := convertSystematic(name, raw.Sys[name])
		if err != nil {
			return nil, err
		}
		if s.Type == TypeStats {
			if stats != "" {
				return nil, &ValidationError{
					Code:    CodeSystematics,
					Field:   "sys." + name,
					Message: fmt.Sprintf("only one stats systematic is allowed, %q is already declared", stats),
				}
			}
			stats = name
		}
		cfg.Systematics[name] = s
	}

	for _, name := range sortedKeys(raw.Plots) {
		p, err := convertPlot(name, raw.Plots[name], cfg)
		if err != nil {
			return nil, err
		}
		cfg.Plots[name] = p
	}
	return cfg, nil
}

func convertVariable(name string, b []float64) (Variable, error) {
	field := "general.variables." + name
	if len(b) != 3 {
		return Variable{}, &ValidationError{Code: CodeVariables, Field: field, Message: "expected [nbins, low, high]"}
	}
	if b[0] < 1 || b[0] != math.Trunc(b[0]) {
		return Variable{}, &ValidationError{Code: CodeVariables, Field: field, Message: fmt.Sprintf("nbins must be a positive integer, got %g", b[0])}
	}
	if !(b[1] < b[2]) {
		return Variable{}, &ValidationError{Code: CodeVariables, Field: field, Message: fmt.Sprintf("low %g must be below high %g", b[1], b[2])}
	}
	return Variable{Name: name, NBins: int(b[0]), Low: b[1], High: b[2]}, nil
}

func convertSystematic(name string, r rawSystematic) (Systematic, error) {
	field := "sys." + name
	s := Systematic{Name: name, Type: SystematicType(r.Type), Groups: append([]string{}, r.Group...)}
	for _, g := range s.Groups {
		if model.IsReservedGroup(g) {
			return Systematic{}, &ValidationError{
				Code:    CodeReservedGroup,
				Field:   field + ".group",
				Message: fmt.Sprintf("group %q is filled automatically", g),
			}
		}
	}

	detectorOnly := r.SysLog != nil || r.NBoots != nil || r.NUniverses != nil ||
		r.StatsLimit != nil || r.SignalTag != nil || r.MatchNuID != nil

	switch s.Type {
	case TypeMultisim:
		if r.Index == nil {
			return Systematic{}, &ValidationError{Code: CodeMultisim, Field: field + ".index", Message: "index is required"}
		}
		if detectorOnly {
			return Systematic{}, &ValidationError{Code: CodeMultisim, Field: field, Message: "detector parameters are not valid for a multisim systematic"}
		}
		s.Multisim = &MultisimParams{Index: *r.Index}

	case TypeDetector:
		if r.SysLog == nil || *r.SysLog == "" {
			return Systematic{}, &ValidationError{Code: CodeDetector, Field: field + ".sys_log", Message: "sys_log is required"}
		}
		if r.Index != nil {
			return Systematic{}, &ValidationError{Code: CodeDetector, Field: field + ".index", Message: "index is not valid for a detector systematic"}
		}
		d := &DetectorParams{
			SysLog:     *r.SysLog,
			NBoots:     DefaultNBoots,
			NUniverses: DefaultNUniverses,
			StatsLimit: DefaultStatsLimit,
			SignalTag:  eventlog.EventTag,
		}
		if r.NBoots != nil {
			d.NBoots = *r.NBoots
		}
		if r.NUniverses != nil {
			d.NUniverses = *r.NUniverses
		}
		if r.StatsLimit != nil {
			d.StatsLimit = *r.StatsLimit
		}
		if r.SignalTag != nil && *r.SignalTag != "" {
			d.SignalTag = *r.SignalTag
		}
		if r.MatchNuID != nil {
			d.MatchNuID = *r.MatchNuID
		}
		if d.NBoots < 1 || d.NUniverses < 1 {
			return Systematic{}, &ValidationError{Code: CodeDetector, Field: field, Message: "nboots and nuniverses must be at least 1"}
		}
		if !(d.StatsLimit > 0 && d.StatsLimit <= 1) {
			return Systematic{}, &ValidationError{Code: CodeDetector, Field: field + ".stats_limit", Message: fmt.Sprintf("stats_limit %g outside (0, 1]", d.StatsLimit)}
		}
		s.Detector = d

	case TypeStats:
		if r.Index != nil || detectorOnly {
			return Systematic{}, &ValidationError{Code: CodeSystematics, Field: field, Message: "a stats systematic takes no parameters"}
		}

	default:
		return Systematic{}, &UnknownSystematicTypeError{Name: name, Type: r.Type}
	}
	return s, nil
}

func convertPlot(name string, r rawPlot, cfg *Config) (Plot, error) {
	field := "plots." + name
	p := Plot{
		Name:           name,
		Type:           PlotType(r.Type),
		Var:            r.Var,
		YVar:           r.YVar,
		Channel:        r.Channel,
		Multiplot:      r.Multiplot,
		CategoricalVar: r.CategoricalVar,
		Categories:     r.Categories,
		Merge:          r.Merge,
		Colors:         r.Colors,
		Systematics:    r.Systematics,
		ShowPercentage: r.ShowPercentage,
		Title:          r.Title,
		XLabel:         r.XLabel,
		YLabel:         r.YLabel,
		YLim:           r.YLim,
		Tags:           r.Tags,
	}
	if p.Multiplot == "" {
		p.Multiplot = PanelNone
	}
	invalid := func(msg string) error {
		return &ValidationError{Code: CodePlot, Field: field, Message: msg}
	}
	binned := func(v string) error {
		if _, ok := cfg.Variables[v]; !ok {
			return invalid(fmt.Sprintf("variable %q is not configured", v))
		}
		return nil
	}

	switch p.Type {
	case PlotHist1D:
		if err := binned(p.Var); err != nil {
			return Plot{}, err
		}
		if p.CategoricalVar == "" || len(p.Merge) == 0 {
			return Plot{}, invalid("hist1d needs categorical_var and merge")
		}
		for _, m := range p.Merge {
			if len(m) == 0 {
				return Plot{}, invalid("merge groups must not be empty")
			}
		}
		if p.Multiplot == PanelRatio {
			keys := p.SystematicKeys()
			if len(keys) == 0 {
				return Plot{}, invalid("a ratio panel needs a detector systematic")
			}
			if s, ok := cfg.Systematics[keys[0]]; !ok || s.Type != TypeDetector {
				return Plot{}, invalid(fmt.Sprintf("ratio panel systematic %q is not a detector systematic", keys[0]))
			}
		}
	case PlotHist2D:
		if err := binned(p.Var); err != nil {
			return Plot{}, err
		}
		if err := binned(p.YVar); err != nil {
			return Plot{}, err
		}
	case PlotConfusion:
		if p.Var == "" || p.YVar == "" {
			return Plot{}, invalid("confusion needs var and yvar")
		}
	case PlotFlow:
		if len(p.Tags) == 0 {
			return Plot{}, invalid("flow needs tags")
		}
	default:
		return Plot{}, invalid(fmt.Sprintf("unknown plot type %q", r.Type))
	}
	return p, nil
}

func convertStyle(r *rawStyle) Style {
	s := DefaultStyle()
	if r == nil {
		return s
	}
	if len(r.Palette) > 0 {
		s.Palette = r.Palette
	}
	if len(r.Hatches) > 0 {
		s.Hatches = r.Hatches
	}
	if r.Alpha != nil {
		s.Alpha = *r.Alpha
	}
	if len(r.RatioRange) == 2 {
		s.RatioRange = [2]float64{r.RatioRange[0], r.RatioRange[1]}
	}
	if len(r.ErrorRange) == 2 {
		s.ErrorRange = [2]float64{r.ErrorRange[0], r.ErrorRange[1]}
	}
	return s
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
