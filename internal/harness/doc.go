// Package harness runs end-to-end covariance scenarios.
//
// A scenario is a YAML file holding an analysis configuration, the event
// log lines and weight-store events it reads, and assertions on the
// archive the run produces. The harness writes the fixtures into a work
// directory, runs the engine with a fixed seed and run id, and evaluates
// the assertions against the archived entries.
//
// # Scenario Format
//
//	name: multisim_flux
//	description: "One reweighting systematic plus statistics"
//	seed: 7
//	logs:
//	  cv.log:
//	    - {tag: SELECTED_1MU1P, event: 0, values: [0.5]}
//	store:
//	  - {event: 0, neutrinos: [{index: 0, params: [[1, 1]]}]}
//	config: |
//	  general:
//	    cv_log: cv.log
//	    columns: [energy]
//	    variables: {energy: [3, 0.0, 3.0]}
//	  sys:
//	    flux_pi: {type: multisim, index: 0}
//	assertions:
//	  - type: entry
//	    name: flux_pi_energy
//	    values: [2, 0, 0, 0, 0, 0, 0, 0, 0]
//
// Relative log paths in the configuration resolve against the work
// directory. Run and subrun default to 1 for log lines and store events.
//
// # Assertion Types
//
//   - entry: an archived entry exists, optionally with a shape and values
//   - entry_missing: no entry of that name was archived
//   - symmetric: a matrix entry equals its transpose
//   - positive_semidefinite: a matrix entry has no negative eigenvalue
//   - sum_of: an entry is the elementwise sum of other entries
//   - error_code: the run stopped with the given runtime error code
//   - mismatches: selected events missing from the store, per entry
//   - degenerate: detector covariances whose bootstrap had no spread
//   - pairs: the number of checkpointed (systematic, variable) pairs
//
// # Deterministic Runs
//
// Every scenario runs with its seed, a fixed run id, and a fresh archive,
// so the archived entries are byte-identical across runs. Snapshot renders
// them for golden file comparison.
package harness
