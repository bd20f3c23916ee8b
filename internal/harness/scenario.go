package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario defines an end-to-end covariance run and its expected outcome.
type Scenario struct {
	// Name uniquely identifies this scenario; it names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Seed fixes the random source of detector bootstraps.
	Seed uint64 `yaml:"seed"`

	// RunID is recorded in the archive. Defaults to "test-run-default".
	RunID string `yaml:"run_id,omitempty"`

	// Channel selects the SELECTED_<CHANNEL> lines. Defaults to 1mu1p.
	Channel string `yaml:"channel,omitempty"`

	// Config is the analysis configuration as a YAML document.
	Config string `yaml:"config"`

	// Logs maps a log file name to its lines.
	Logs map[string][]LogLine `yaml:"logs"`

	// Store holds the weight-store events. Without it multisim
	// systematics fail.
	Store []StoreEvent `yaml:"store,omitempty"`

	// Assertions validate the run outcome and the archive.
	Assertions []Assertion `yaml:"assertions"`
}

// LogLine is one tagged line of an event log.
type LogLine struct {
	Tag    string    `yaml:"tag"`
	Run    int64     `yaml:"run,omitempty"`
	Subrun int64     `yaml:"subrun,omitempty"`
	Event  int64     `yaml:"event"`
	Nu     int64     `yaml:"nu,omitempty"`
	Values []float64 `yaml:"values"`
}

// StoreEvent is one event of the weight store.
type StoreEvent struct {
	Run       uint32          `yaml:"run,omitempty"`
	Subrun    uint32          `yaml:"subrun,omitempty"`
	Event     uint32          `yaml:"event"`
	Neutrinos []StoreNeutrino `yaml:"neutrinos"`
}

// StoreNeutrino holds the universe weights of one neutrino, one list per
// parameter.
type StoreNeutrino struct {
	Index  int32       `yaml:"index"`
	Params [][]float32 `yaml:"params"`
}

// Assertion validates the run outcome or an archived entry.
type Assertion struct {
	// Type selects the check; see the Assert constants.
	Type string `yaml:"type"`

	// Name is the archive entry (entry, entry_missing, symmetric,
	// positive_semidefinite, sum_of, mismatches).
	Name string `yaml:"name,omitempty"`

	// Rows and Cols check the entry shape when non-zero.
	Rows int `yaml:"rows,omitempty"`
	Cols int `yaml:"cols,omitempty"`

	// Values are the expected row-major entry values.
	Values []float64 `yaml:"values,omitempty"`

	// Tolerance bounds value differences. Defaults to 1e-9.
	Tolerance float64 `yaml:"tolerance,omitempty"`

	// Parts are the entries summed by sum_of.
	Parts []string `yaml:"parts,omitempty"`

	// Code is the runtime error code for error_code.
	Code string `yaml:"code,omitempty"`

	// Count is the expected number for mismatches and pairs.
	Count int `yaml:"count,omitempty"`

	// Names are the degenerate entries, in order.
	Names []string `yaml:"names,omitempty"`
}

// Assertion type constants.
const (
	AssertEntry        = "entry"
	AssertEntryMissing = "entry_missing"
	AssertSymmetric    = "symmetric"
	AssertPSD          = "positive_semidefinite"
	AssertSumOf        = "sum_of"
	AssertErrorCode    = "error_code"
	AssertMismatches   = "mismatches"
	AssertDegenerate   = "degenerate"
	AssertPairs        = "pairs"
)

// DefaultTolerance bounds value differences in entry and sum_of checks.
const DefaultTolerance = 1e-9

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses and validates a scenario document.
func ParseScenario(data []byte) (*Scenario, error) {
	// Parse YAML with strict field validation (catches typos like "assertion:" vs "assertions:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Config == "" {
		return fmt.Errorf("config is required")
	}
	if len(s.Logs) == 0 {
		return fmt.Errorf("logs are required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for file, lines := range s.Logs {
		for i, l := range lines {
			if l.Tag == "" {
				return fmt.Errorf("logs[%s][%d]: tag is required", file, i)
			}
		}
	}
	for i, ev := range s.Store {
		if len(ev.Neutrinos) == 0 {
			return fmt.Errorf("store[%d]: neutrinos list is required", i)
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertEntry, AssertEntryMissing, AssertSymmetric, AssertPSD:
		if a.Name == "" {
			return fmt.Errorf("assertions[%d]: name is required for %s", index, a.Type)
		}
	case AssertSumOf:
		if a.Name == "" || len(a.Parts) == 0 {
			return fmt.Errorf("assertions[%d]: name and parts are required for sum_of", index)
		}
	case AssertErrorCode:
		if a.Code == "" {
			return fmt.Errorf("assertions[%d]: code is required for error_code", index)
		}
	case AssertMismatches:
		if a.Name == "" {
			return fmt.Errorf("assertions[%d]: name is required for mismatches", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for mismatches", index)
		}
	case AssertPairs:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for pairs", index)
		}
	case AssertDegenerate:
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	if a.Tolerance < 0 {
		return fmt.Errorf("assertions[%d]: tolerance must be non-negative", index)
	}
	return nil
}
