package config

// Raw document shapes. Field tags serve encoding/json (CUE decode and
// encode), YAML and TOML.

type rawConfig struct {
	General rawGeneral               `json:"general" yaml:"general" toml:"general"`
	Sys     map[string]rawSystematic `json:"sys" yaml:"sys" toml:"sys"`
	Plots   map[string]rawPlot       `json:"plots,omitempty" yaml:"plots" toml:"plots"`
	Style   *rawStyle                `json:"style,omitempty" yaml:"style" toml:"style"`
}

type rawGeneral struct {
	CVLog     string               `json:"cv_log" yaml:"cv_log" toml:"cv_log"`
	Columns   []string             `json:"columns,omitempty" yaml:"columns" toml:"columns"`
	Variables map[string][]float64 `json:"variables" yaml:"variables" toml:"variables"`
}

type rawSystematic struct {
	Type       string   `json:"type" yaml:"type" toml:"type"`
	Group      []string `json:"group,omitempty" yaml:"group" toml:"group"`
	Index      *int     `json:"index,omitempty" yaml:"index" toml:"index"`
	SysLog     *string  `json:"sys_log,omitempty" yaml:"sys_log" toml:"sys_log"`
	NBoots     *int     `json:"nboots,omitempty" yaml:"nboots" toml:"nboots"`
	NUniverses *int     `json:"nuniverses,omitempty" yaml:"nuniverses" toml:"nuniverses"`
	StatsLimit *float64 `json:"stats_limit,omitempty" yaml:"stats_limit" toml:"stats_limit"`
	SignalTag  *string  `json:"signal_tag,omitempty" yaml:"signal_tag" toml:"signal_tag"`
	MatchNuID  *bool    `json:"match_nu_id,omitempty" yaml:"match_nu_id" toml:"match_nu_id"`
}

type rawPlot struct {
	Type           string            `json:"type" yaml:"type" toml:"type"`
	Var            string            `json:"var,omitempty" yaml:"var" toml:"var"`
	YVar           string            `json:"yvar,omitempty" yaml:"yvar" toml:"yvar"`
	Channel        string            `json:"channel,omitempty" yaml:"channel" toml:"channel"`
	Multiplot      string            `json:"multiplot,omitempty" yaml:"multiplot" toml:"multiplot"`
	CategoricalVar string            `json:"categorical_var,omitempty" yaml:"categorical_var" toml:"categorical_var"`
	Categories     map[string]string `json:"categories,omitempty" yaml:"categories" toml:"categories"`
	Merge          [][]int           `json:"merge,omitempty" yaml:"merge" toml:"merge"`
	Colors         []int             `json:"colors,omitempty" yaml:"colors" toml:"colors"`
	Systematics    map[string]string `json:"systematics,omitempty" yaml:"systematics" toml:"systematics"`
	ShowPercentage bool              `json:"show_percentage,omitempty" yaml:"show_percentage" toml:"show_percentage"`
	Title          string            `json:"title,omitempty" yaml:"title" toml:"title"`
	XLabel         string            `json:"xlabel,omitempty" yaml:"xlabel" toml:"xlabel"`
	YLabel         string            `json:"ylabel,omitempty" yaml:"ylabel" toml:"ylabel"`
	YLim           []float64         `json:"ylim,omitempty" yaml:"ylim" toml:"ylim"`
	Tags           []string          `json:"tags,omitempty" yaml:"tags" toml:"tags"`
}

type rawStyle struct {
	Palette    []string  `json:"palette,omitempty" yaml:"palette" toml:"palette"`
	Hatches    []string  `json:"hatches,omitempty" yaml:"hatches" toml:"hatches"`
	Alpha      *float64  `json:"alpha,omitempty" yaml:"alpha" toml:"alpha"`
	RatioRange []float64 `json:"ratio_range,omitempty" yaml:"ratio_range" toml:"ratio_range"`
	ErrorRange []float64 `json:"error_range,omitempty" yaml:"error_range" toml:"error_range"`
}
