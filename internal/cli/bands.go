package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/syscov/internal/archive"
	"github.com/roach88/syscov/internal/config"
	"github.com/roach88/syscov/internal/engine"
	"github.com/roach88/syscov/internal/report"
)

// BandsOptions holds options for the bands command.
type BandsOptions struct {
	Config  string
	Archive string
	Log     string
	Channel string
	Plots   []string
}

// NewBandsCommand creates the bands command.
func NewBandsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BandsOptions{}

	cmd := &cobra.Command{
		Use:   "bands",
		Short: "Emit plot data with uncertainty bands as JSON",
		Long: `Build the data of the configured plots: stacked histograms with one
uncertainty band per listed systematic, ratio and error panels, 2D
histograms, confusion matrices, and selection flows. Output is always JSON;
rendering is left to the caller.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBands(rootOpts, opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Config, "config", "c", "", "analysis configuration")
	cmd.Flags().StringVarP(&opts.Archive, "archive", "a", "", "covariance archive (needed for bands)")
	cmd.Flags().StringVarP(&opts.Log, "log", "l", "", "analysis log (defaults to the configured cv_log)")
	cmd.Flags().StringVar(&opts.Channel, "channel", engine.DefaultChannel, "selection channel")
	cmd.Flags().StringSliceVarP(&opts.Plots, "plot", "p", nil, "plot names (default all)")
	_ = cmd.MarkFlagRequired("config")

	return cmd
}

func runBands(rootOpts *RootOptions, opts *BandsOptions, cmd *cobra.Command) error {
	formatter := newFormatter(rootOpts, cmd)

	cfg, err := config.Load(opts.Config)
	if err != nil {
		if config.Code(err) != "" {
			return formatter.Fail(ExitFailure, "invalid configuration", err, nil)
		}
		return formatter.Fail(ExitCommandError, "failed to load configuration", err, nil)
	}

	in := report.Inputs{Log: opts.Log, Channel: opts.Channel}
	if in.Log == "" {
		in.Log = cfg.CVLog
	}
	if opts.Archive != "" {
		arch, err := openArchive(opts.Archive)
		if err != nil {
			return formatter.Fail(ExitCommandError, "failed to open archive", err, nil)
		}
		defer arch.Close()
		in.Archive = arch
	}
	formatter.VerboseLog("Building plots from %s", in.Log)

	plots, err := report.NewBuilder(cfg, in).Build(cmd.Context(), opts.Plots...)
	if err != nil {
		return formatter.Fail(ExitFailure, "failed to build plots", err, nil)
	}
	if formatter.IsJSON() {
		return formatter.Success(plots)
	}

	// Plot data has no text rendering; text format prints indented JSON.
	encoder := json.NewEncoder(formatter.Writer)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(plots); err != nil {
		return WrapExitError(ExitFailure, "failed to write plot data", fmt.Errorf("%s: %w", ErrCodeWriteFailed, err))
	}
	return nil
}

var _ report.Archive = (*archive.Archive)(nil)
