// Package engine runs the covariance pipeline of one analysis.
//
// A run walks every (systematic, variable) pair of the configuration in
// sorted order, computes the pair's covariance with the method its
// systematic type selects, adds it to the aggregator and checkpoints the
// aggregated entries to the archive.
//
// ARCHITECTURE:
//
// Single-Threaded Pipeline:
// Pairs are computed one after another in one goroutine. This ensures:
// - The random source is consumed in a fixed order, so a seed reproduces
// a run
// - Group and total matrices are rebuilt from members at every checkpoint
// - A failure leaves every earlier checkpoint intact
//
// Per-Run Caches:
// The CV selection, the universe weights of each multisim systematic and
// the paired samples of each detector systematic are loaded once and
// reused across variables.
//
// Checkpoint Sequence:
// Every checkpoint is stamped with a seq from Clock.Next(). The archive
// keeps the seq of the checkpoint that last wrote each entry.
package engine
