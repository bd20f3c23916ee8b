// Package config loads and validates the analysis configuration.
//
// A configuration may be written in CUE, YAML or TOML; the format is chosen
// by file extension and a directory is loaded as a CUE package. Every
// document is unified with the embedded CUE schema (#Config in schema.cue),
// whose definitions are closed, so unknown keys are rejected whatever the
// source format. YAML and TOML are also decoded strictly.
//
// After schema validation the document is converted into typed values:
// each systematic becomes a Systematic whose Type selects exactly one of
// its parameter blocks, and each plot becomes a Plot. Defaults are applied
// explicitly during conversion.
//
// Process-level settings (seed, batch budget, log level) come from the
// environment, see Settings.
package config
