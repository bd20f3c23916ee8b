package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/syscov/internal/report"
)

// SummaryOptions holds options for the summary command.
type SummaryOptions struct {
	Systematic string
	Variable   string
}

// NewSummaryCommand creates the summary command.
func NewSummaryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SummaryOptions{}

	cmd := &cobra.Command{
		Use:   "summary <archive>",
		Short: "Print per-bin uncertainties of a stored covariance",
		Long: `Print the absolute and relative uncertainty per bin of one systematic,
group, or total for one variable. Detector systematics also report the
chi-square of the nominal variation against its bootstrap covariance.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSummary(rootOpts, opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Systematic, "systematic", "s", "", "systematic, group, or total")
	cmd.Flags().StringVar(&opts.Variable, "variable", "", "analysis variable")
	_ = cmd.MarkFlagRequired("systematic")
	_ = cmd.MarkFlagRequired("variable")

	return cmd
}

func runSummary(rootOpts *RootOptions, opts *SummaryOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(rootOpts, cmd)

	arch, err := openArchive(path)
	if err != nil {
		return formatter.Fail(ExitCommandError, "failed to open archive", err, nil)
	}
	defer arch.Close()

	s, err := report.Summarize(cmd.Context(), arch, opts.Systematic, opts.Variable)
	if err != nil {
		return formatter.Fail(ExitCommandError, "failed to summarize", err, nil)
	}
	if formatter.IsJSON() {
		return formatter.Success(s)
	}
	writeSummary(formatter.Writer, s)
	return nil
}

func writeSummary(w io.Writer, s *report.Summary) {
	fmt.Fprintf(w, "%s / %s\n", s.Name, s.Variable)
	fmt.Fprintf(w, "  %4s %12s %10s\n", "bin", "sigma", "rel_err")
	for b := range s.Sigma {
		fmt.Fprintf(w, "  %4d %12.6g %9.2f%%\n", b, s.Sigma[b], 100*s.RelErr[b])
	}
	fmt.Fprintf(w, "  max rel_err: %.2f%%\n", 100*s.MaxRelErr())
	if s.Chi2 != nil {
		fmt.Fprintf(w, "  chi2/dof: %.4g/%d  p-value: %.4g\n", s.Chi2.Chi2, s.Chi2.DOF, s.Chi2.PValue)
	}
}
