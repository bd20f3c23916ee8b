package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/syscov/internal/archive"
	"github.com/roach88/syscov/internal/config"
	"github.com/roach88/syscov/internal/engine"
	"github.com/roach88/syscov/internal/random"
	"github.com/roach88/syscov/internal/weights"
)

// ComputeOptions holds options for the compute command.
type ComputeOptions struct {
	Config      string
	Weights     string
	Channel     string
	Output      string
	Seed        uint64
	BatchBudget string

	// RunIDs overrides the UUIDv7 run id generator (for tests).
	RunIDs engine.RunIDGenerator
}

// NewComputeCommand creates the compute command.
func NewComputeCommand(rootOpts *RootOptions) *cobra.Command {
	return newComputeCommand(rootOpts, &ComputeOptions{})
}

func newComputeCommand(rootOpts *RootOptions, opts *ComputeOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compute",
		Short: "Compute covariance matrices and write them to an archive",
		Long: `Compute every configured (systematic, variable) covariance, aggregate the
groups, and checkpoint all entries into {output}covariances_{channel}.db
after each pair. An interrupted run keeps its last checkpoint. --output is
a path prefix; directories need a trailing separator.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompute(rootOpts, opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Config, "config", "c", "", "analysis configuration (yaml, toml or cue)")
	cmd.Flags().StringVarP(&opts.Weights, "weights", "w", "", "event weight store (arrow ipc)")
	cmd.Flags().StringVar(&opts.Channel, "channel", engine.DefaultChannel, "selection channel")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "./", "archive path prefix; a directory must end in a separator")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 0, "random seed (overrides SYSCOV_SEED)")
	cmd.Flags().StringVar(&opts.BatchBudget, "batch-budget", "", "record batch budget, e.g. \"1 GB\" (overrides SYSCOV_BATCH_BUDGET)")
	_ = cmd.MarkFlagRequired("config")

	return cmd
}

func runCompute(rootOpts *RootOptions, opts *ComputeOptions, cmd *cobra.Command) error {
	formatter := newFormatter(rootOpts, cmd)

	settings, err := config.ParseEnv()
	if err != nil {
		return formatter.Fail(ExitCommandError, "invalid environment", err, nil)
	}
	logger := newLogger(rootOpts, settings.LogLevel, cmd.ErrOrStderr())

	seed, ok, err := settings.SeedValue()
	if err != nil {
		return formatter.Fail(ExitCommandError, "invalid environment", err, nil)
	}
	if cmd.Flags().Changed("seed") {
		seed, ok = opts.Seed, true
	}
	if !ok {
		seed = random.NewSeed()
	}

	budgetText := settings.BatchBudget
	if cmd.Flags().Changed("batch-budget") {
		budgetText = opts.BatchBudget
	}
	budget, err := weights.ParseBudget(budgetText)
	if err != nil {
		return formatter.Fail(ExitCommandError, "invalid batch budget", err, nil)
	}

	cfg, err := config.Load(opts.Config)
	if err != nil {
		if config.Code(err) != "" {
			return formatter.Fail(ExitFailure, "invalid configuration", err, nil)
		}
		return formatter.Fail(ExitCommandError, "failed to load configuration", err, nil)
	}

	path := archive.FileName(opts.Output, opts.Channel)
	logger.Info("opening archive", "path", path)
	arch, err := archive.Open(path)
	if err != nil {
		return formatter.Fail(ExitCommandError, "failed to open archive", err, nil)
	}
	defer func() {
		if closeErr := arch.Close(); closeErr != nil {
			logger.Error("error closing archive", "error", closeErr)
		}
	}()

	engineOpts := []engine.Option{
		engine.WithLogger(logger),
		engine.WithChannel(opts.Channel),
		engine.WithBatchBudget(budget),
	}
	if opts.Weights != "" {
		engineOpts = append(engineOpts, engine.WithWeights(opts.Weights))
	}
	if opts.RunIDs != nil {
		engineOpts = append(engineOpts, engine.WithRunIDGenerator(opts.RunIDs))
	}
	eng := engine.New(cfg, arch, random.New(seed), engineOpts...)

	// Setup signal handling for graceful shutdown
	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan) // Prevent signal handler leak

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("received signal, stopping after last checkpoint", "signal", sig)
			cancel()
		case <-ctx.Done():
			// Parent context cancelled (e.g., from test)
		}
	}()

	sum, err := eng.Run(ctx)
	if err != nil {
		var details interface{}
		if sum != nil {
			details = sum
		}
		if engine.CodeOf(err) == engine.ErrCodeCanceled {
			return formatter.Fail(ExitFailure, "run interrupted", err, details)
		}
		return formatter.Fail(ExitFailure, "run failed", err, details)
	}

	if formatter.IsJSON() {
		return formatter.SuccessRun(sum.RunID, computeResult{Summary: sum, Archive: path})
	}
	writeComputeSummary(formatter.Writer, sum, path)
	return nil
}

// computeResult is the JSON payload of a successful compute run.
type computeResult struct {
	*engine.Summary
	Archive string `json:"archive"`
}

func writeComputeSummary(w io.Writer, sum *engine.Summary, path string) {
	fmt.Fprintf(w, "✓ Run %s complete\n", sum.RunID)
	fmt.Fprintf(w, "  archive:  %s\n", path)
	fmt.Fprintf(w, "  seed:     %s\n", strconv.FormatUint(sum.Seed, 10))
	fmt.Fprintf(w, "  pairs:    %d/%d\n", sum.Pairs, sum.Planned)
	fmt.Fprintf(w, "  entries:  %d\n", sum.Entries)
	fmt.Fprintf(w, "  elapsed:  %s\n", sum.Elapsed.Round(time.Millisecond))
	if len(sum.Mismatches) > 0 {
		names := make([]string, 0, len(sum.Mismatches))
		for name := range sum.Mismatches {
			names = append(names, name)
		}
		sort.Strings(names)
		fmt.Fprintln(w, "  events missing from store:")
		for _, name := range names {
			fmt.Fprintf(w, "    %s: %d\n", name, sum.Mismatches[name])
		}
	}
	if len(sum.Degenerate) > 0 {
		fmt.Fprintf(w, "  degenerate: %s\n", strings.Join(sum.Degenerate, ", "))
	}
}
