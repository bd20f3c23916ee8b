package harness

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/roach88/syscov/internal/archive"
	"github.com/roach88/syscov/internal/config"
	"github.com/roach88/syscov/internal/engine"
	"github.com/roach88/syscov/internal/logging"
	"github.com/roach88/syscov/internal/random"
	"github.com/roach88/syscov/internal/testutil"
	"github.com/roach88/syscov/internal/weights"
)

// storeFile is the name of the weight store written into the work directory.
const storeFile = "weights.arrow"

// Run executes a scenario in dir, which must be empty, and returns the
// result.
//
// Execution flow:
// 1. Write the event logs and the weight store into dir
// 2. Parse the configuration and resolve its log paths against dir
// 3. Run the engine into a fresh archive with a fixed seed and run id
// 4. Read back every archived entry
// 5. Evaluate the assertions
//
// A run error is part of the result, not a returned error; the returned
// error reports a scenario that could not be set up.
func Run(ctx context.Context, s *Scenario, dir string) (*Result, error) {
	if err := writeFixtures(s, dir); err != nil {
		return nil, err
	}

	cfg, err := config.Parse([]byte(s.Config), config.FormatYAML, s.Name+".yaml")
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
	}
	resolvePaths(cfg, dir)

	arch, err := archive.Open(filepath.Join(dir, "archive.db"))
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
	}
	defer arch.Close()

	opts := []engine.Option{
		engine.WithLogger(logging.Discard()), // Suppress logs in tests
		engine.WithRunIDGenerator(testutil.NewFixedRunIDGenerator(s.RunID)),
	}
	if s.Channel != "" {
		opts = append(opts, engine.WithChannel(s.Channel))
	}
	if len(s.Store) > 0 {
		opts = append(opts, engine.WithWeights(filepath.Join(dir, storeFile)))
	}

	result := NewResult()
	result.Summary, result.RunErr = engine.New(cfg, arch, random.New(s.Seed), opts...).Run(ctx)

	entries, err := arch.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
	}
	for _, e := range entries {
		result.Entries[e.Name] = e
	}

	for _, msg := range EvaluateAssertions(result, s.Assertions) {
		result.AddError(msg)
	}
	if result.RunErr != nil && !expectsError(s.Assertions) {
		result.AddError(fmt.Sprintf("run failed: %v", result.RunErr))
	}
	return result, nil
}

func writeFixtures(s *Scenario, dir string) error {
	files := make([]string, 0, len(s.Logs))
	for f := range s.Logs {
		files = append(files, f)
	}
	sort.Strings(files)
	for _, f := range files {
		records := make([]testutil.Record, len(s.Logs[f]))
		for i, l := range s.Logs[f] {
			records[i] = testutil.Record{
				Tag:    l.Tag,
				Run:    orOne(l.Run),
				Subrun: orOne(l.Subrun),
				Event:  l.Event,
				NuID:   l.Nu,
				Values: l.Values,
			}
		}
		if err := os.WriteFile(filepath.Join(dir, f), []byte(testutil.FormatLog(records)), 0o644); err != nil {
			return fmt.Errorf("write log %s: %w", f, err)
		}
	}

	if len(s.Store) == 0 {
		return nil
	}
	events := make([]weights.Event, len(s.Store))
	for i, ev := range s.Store {
		events[i] = weights.Event{
			Run:    uint32(orOne(int64(ev.Run))),
			Subrun: uint32(orOne(int64(ev.Subrun))),
			Event:  ev.Event,
		}
		for _, nu := range ev.Neutrinos {
			events[i].Neutrinos = append(events[i].Neutrinos, weights.Neutrino{Index: nu.Index, Params: nu.Params})
		}
	}
	if err := weights.WriteFile(filepath.Join(dir, storeFile), events); err != nil {
		return fmt.Errorf("write store: %w", err)
	}
	return nil
}

// resolvePaths makes the configured log paths relative to dir.
func resolvePaths(cfg *config.Config, dir string) {
	abs := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(dir, p)
	}
	cfg.CVLog = abs(cfg.CVLog)
	for name, sys := range cfg.Systematics {
		if sys.Detector != nil {
			d := *sys.Detector
			d.SysLog = abs(d.SysLog)
			sys.Detector = &d
			cfg.Systematics[name] = sys
		}
	}
}

func orOne(v int64) int64 {
	if v == 0 {
		return 1
	}
	return v
}

func expectsError(assertions []Assertion) bool {
	for _, a := range assertions {
		if a.Type == AssertErrorCode {
			return true
		}
	}
	return false
}
