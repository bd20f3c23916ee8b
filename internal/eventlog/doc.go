// Package eventlog turns tagged analysis log lines into typed event tables.
//
// A log line looks like:
//
//	<prefix>,<v1>,<v2>,...,<vN>,
//
// Lines are selected by substring match on a tag (e.g. "SELECTED_1MU1P",
// "EVENT", "NEUTRINO"), the prefix field is discarded and a single trailing
// empty field is dropped. Values are matched positionally against a caller
// supplied header. Every column is numeric: tokens that do not parse become
// NaN, and a column whose values are all integral is stored as integers.
//
// Tables are read-only once built. Row selection and joins return new
// tables that share nothing mutable with the source.
package eventlog
