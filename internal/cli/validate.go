package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/cobra"

	"github.com/roach88/syscov/internal/config"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid       bool                `json:"valid"`
	CVLog       string              `json:"cv_log,omitempty"`
	Variables   []config.Variable   `json:"variables,omitempty"`
	Systematics []SystematicSummary `json:"systematics,omitempty"`
	Plots       []string            `json:"plots,omitempty"`
	Errors      []ValidationIssue   `json:"errors,omitempty"`
}

// SystematicSummary is one configured systematic as reported by validate.
type SystematicSummary struct {
	Name   string                `json:"name"`
	Type   config.SystematicType `json:"type"`
	Groups []string              `json:"groups,omitempty"`
}

// ValidationIssue is one configuration problem.
type ValidationIssue struct {
	Code    string `json:"code"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <config>",
		Short: "Validate an analysis configuration",
		Long: `Load an analysis configuration (YAML, TOML or CUE), check it against the
schema and the cross-field rules, and list its variables and systematics.
No event log or weight store is read.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)
	formatter.VerboseLog("Loading %s", path)

	cfg, err := config.Load(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return outputValidateError(formatter, ErrCodeNotFound, err.Error(), nil)
		}
		if config.Code(err) == "" {
			return outputValidateError(formatter, ErrCodeGeneric, err.Error(), nil)
		}
		return outputValidationErrors(formatter, []ValidationIssue{issueOf(err)})
	}

	return outputValidateSuccess(formatter, resultOf(cfg))
}

func resultOf(cfg *config.Config) ValidationResult {
	res := ValidationResult{
		Valid:     true,
		CVLog:     cfg.CVLog,
		Variables: cfg.SortedVariables(),
	}
	for _, s := range cfg.SortedSystematics() {
		res.Systematics = append(res.Systematics, SystematicSummary{Name: s.Name, Type: s.Type, Groups: s.Groups})
	}
	for _, p := range cfg.SortedPlots() {
		res.Plots = append(res.Plots, p.Name)
	}
	return res
}

func issueOf(err error) ValidationIssue {
	var ve *config.ValidationError
	if errors.As(err, &ve) {
		issue := ValidationIssue{Code: ve.Code, Field: ve.Field, Message: ve.Message}
		if ve.Pos.IsValid() {
			issue.Line = ve.Pos.Line()
		}
		return issue
	}
	return ValidationIssue{Code: config.Code(err), Message: err.Error()}
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, res ValidationResult) error {
	if formatter.IsJSON() {
		return formatter.Success(res)
	}

	w := formatter.Writer
	fmt.Fprintln(w, "✓ Configuration valid")
	fmt.Fprintf(w, "  cv_log: %s\n", res.CVLog)
	fmt.Fprintf(w, "  variables (%d):\n", len(res.Variables))
	for _, v := range res.Variables {
		fmt.Fprintf(w, "    %s: %d bins [%g, %g)\n", v.Name, v.NBins, v.Low, v.High)
	}
	fmt.Fprintf(w, "  systematics (%d):\n", len(res.Systematics))
	for _, s := range res.Systematics {
		fmt.Fprintf(w, "    %s (%s)", s.Name, s.Type)
		if len(s.Groups) > 0 {
			fmt.Fprintf(w, " groups=%v", s.Groups)
		}
		fmt.Fprintln(w)
	}
	if len(res.Plots) > 0 {
		fmt.Fprintf(w, "  plots (%d): %v\n", len(res.Plots), res.Plots)
	}
	return nil
}

// outputValidateError outputs a single load error.
func outputValidateError(formatter *OutputFormatter, code, message string, details interface{}) error {
	_ = formatter.Error(code, message, details)
	// Load errors are command-level errors (exit code 2)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

// outputValidationErrors outputs validation issues.
func outputValidationErrors(formatter *OutputFormatter, issues []ValidationIssue) error {
	if formatter.IsJSON() {
		response := CLIResponse{
			Status: "error",
			Data:   ValidationResult{Valid: false, Errors: issues},
			Error: &CLIError{
				Code:    issues[0].Code,
				Message: issues[0].Message,
			},
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}

		// Validation failures = exit code 1
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(issues)))
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, issue := range issues {
		if issue.Line > 0 {
			fmt.Fprintf(formatter.Writer, "line %d\n", issue.Line)
		}
		if issue.Field != "" {
			fmt.Fprintf(formatter.Writer, "  %s: %s: %s\n\n", issue.Code, issue.Field, issue.Message)
		} else {
			fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", issue.Code, issue.Message)
		}
	}

	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(issues)))
}
