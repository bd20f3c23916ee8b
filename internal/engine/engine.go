package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/apache/arrow/go/v17/arrow/memory"

	"github.com/roach88/syscov/internal/aggregate"
	"github.com/roach88/syscov/internal/archive"
	"github.com/roach88/syscov/internal/config"
	"github.com/roach88/syscov/internal/detector"
	"github.com/roach88/syscov/internal/eventlog"
	"github.com/roach88/syscov/internal/model"
	"github.com/roach88/syscov/internal/random"
	"github.com/roach88/syscov/internal/weights"
)

// Archive is where a run records itself and checkpoints its results.
// Implemented by *archive.Archive.
type Archive interface {
	BeginRun(ctx context.Context, run archive.Run) (archive.Run, error)
	Checkpoint(ctx context.Context, runID string, seq int64, entries []model.Entry) error
}

// DefaultChannel is the selection channel used when none is configured.
const DefaultChannel = "1mu1p"

// Engine drives one compute run over a validated configuration.
//
// Work is processed one (systematic, variable) pair at a time in sorted
// order. After every pair the aggregated entries are checkpointed, so an
// interrupted or failed run keeps everything computed before the failure.
//
// Thread-safety: an Engine is not safe for concurrent use. Run must be
// called from exactly one goroutine; all randomness comes from one Source.
type Engine struct {
	cfg     *config.Config
	archive Archive
	src     *random.Source
	runIDs  RunIDGenerator
	clock   *Clock
	logger  *slog.Logger

	channel     string
	weightsPath string
	batchBudget uint64
	allocator   memory.Allocator

	agg         *aggregate.Aggregator
	selected    *eventlog.Table
	extracted   map[string]*weights.Result
	populations map[string]*detector.Population
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithRunIDGenerator sets the run id source. Default: UUIDv7Generator.
func WithRunIDGenerator(g RunIDGenerator) Option {
	return func(e *Engine) { e.runIDs = g }
}

// WithClock sets the checkpoint counter.
func WithClock(c *Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithChannel sets the selection channel. Default: DefaultChannel.
func WithChannel(channel string) Option {
	return func(e *Engine) { e.channel = channel }
}

// WithWeights sets the event store read by multisim systematics.
func WithWeights(path string) Option {
	return func(e *Engine) { e.weightsPath = path }
}

// WithBatchBudget sets the expected largest store batch, in bytes.
func WithBatchBudget(n uint64) Option {
	return func(e *Engine) { e.batchBudget = n }
}

// WithAllocator sets the Arrow allocator used to read the store.
func WithAllocator(mem memory.Allocator) Option {
	return func(e *Engine) { e.allocator = mem }
}

// New creates an Engine for cfg that checkpoints into arch and draws from
// src.
func New(cfg *config.Config, arch Archive, src *random.Source, opts ...Option) *Engine {
	e := &Engine{
		cfg:         cfg,
		archive:     arch,
		src:         src,
		runIDs:      UUIDv7Generator{},
		clock:       NewClock(),
		logger:      slog.Default(),
		channel:     DefaultChannel,
		agg:         aggregate.New(),
		extracted:   make(map[string]*weights.Result),
		populations: make(map[string]*detector.Population),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Summary describes a finished or interrupted run.
type Summary struct {
	RunID  string `json:"run_id"`
	RunSeq int64  `json:"run_seq"`
	Seed   uint64 `json:"seed"`

	// Pairs is the number of (systematic, variable) pairs checkpointed,
	// out of Planned.
	Pairs   int `json:"pairs"`
	Planned int `json:"planned"`

	// Entries is the number of archive entries after the last checkpoint.
	Entries int `json:"entries"`

	// Mismatches counts selected events without weights, keyed by
	// covariance entry name.
	Mismatches map[string]int `json:"mismatches,omitempty"`

	// Degenerate names the detector covariances whose bootstrap showed
	// no spread.
	Degenerate []string `json:"degenerate,omitempty"`

	Elapsed time.Duration `json:"elapsed"`
}

// Run computes every planned pair and checkpoints after each one.
//
// On failure Run returns the summary so far together with a
// *RuntimeError; checkpointed entries stay in the archive.
func (e *Engine) Run(ctx context.Context) (*Summary, error) {
	start := time.Now()
	hash, err := e.cfg.Hash()
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	run, err := e.archive.BeginRun(ctx, archive.Run{
		ID:            e.runIDs.Generate(),
		Channel:       e.channel,
		Seed:          e.src.Seed(),
		ConfigHash:    hash,
		EngineVersion: model.EngineVersion,
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, newRuntimeError("", "", ctxErr)
		}
		return nil, &RuntimeError{Code: ErrCodeArchive, Err: err}
	}

	units := plan(e.cfg)
	sum := &Summary{
		RunID:      run.ID,
		RunSeq:     run.Seq,
		Seed:       run.Seed,
		Planned:    len(units),
		Mismatches: make(map[string]int),
	}
	e.logger.Info("run started",
		"run", run.ID,
		"seed", run.Seed,
		"channel", e.channel,
		"pairs", len(units))

	for i, u := range units {
		if err := ctx.Err(); err != nil {
			sum.Elapsed = time.Since(start)
			return sum, newRuntimeError(u.systematic.Name, u.variable.Name, err)
		}

		m, err := e.compute(ctx, u, sum)
		if err != nil {
			sum.Elapsed = time.Since(start)
			return sum, newRuntimeError(u.systematic.Name, u.variable.Name, err)
		}
		if err := e.agg.Add(m); err != nil {
			sum.Elapsed = time.Since(start)
			return sum, newRuntimeError(u.systematic.Name, u.variable.Name, err)
		}

		entries := e.agg.Entries()
		if err := e.archive.Checkpoint(ctx, run.ID, e.clock.Next(), entries); err != nil {
			sum.Elapsed = time.Since(start)
			return sum, &RuntimeError{
				Code:       ErrCodeArchive,
				Systematic: u.systematic.Name,
				Variable:   u.variable.Name,
				Err:        err,
			}
		}
		sum.Pairs++
		sum.Entries = len(entries)

		e.logger.Info("pair done",
			"step", i+1,
			"of", len(units),
			"systematic", u.systematic.Name,
			"variable", u.variable.Name,
			"entries", len(entries))
	}

	sum.Elapsed = time.Since(start)
	e.logger.Info("run finished",
		"run", run.ID,
		"pairs", sum.Pairs,
		"entries", sum.Entries,
		"elapsed", sum.Elapsed)
	return sum, nil
}
