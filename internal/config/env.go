package config

import (
	"fmt"
	"strconv"

	"github.com/caarlos0/env/v11"
)

// Settings are process-level options read from the environment. Command
// line flags take precedence over them.
type Settings struct {
	// Seed fixes the random source; empty draws a fresh seed.
	Seed string `env:"SYSCOV_SEED"`

	// BatchBudget caps one weight-store record batch, e.g. "1 GB".
	BatchBudget string `env:"SYSCOV_BATCH_BUDGET" envDefault:"1 GB"`

	// LogLevel is info, debug or trace.
	LogLevel string `env:"SYSCOV_LOG_LEVEL" envDefault:"info"`
}

// ParseEnv loads Settings from environment variables.
func ParseEnv() (Settings, error) {
	var s Settings
	if err := env.Parse(&s); err != nil {
		return Settings{}, fmt.Errorf("parse env: %w", err)
	}
	return s, nil
}

// SeedValue returns the configured seed and whether one was set.
func (s Settings) SeedValue() (uint64, bool, error) {
	if s.Seed == "" {
		return 0, false, nil
	}
	seed, err := strconv.ParseUint(s.Seed, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("parse SYSCOV_SEED %q: %w", s.Seed, err)
	}
	return seed, true, nil
}
