package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/syscov/internal/config"
	"github.com/roach88/syscov/internal/covariance"
	"github.com/roach88/syscov/internal/eventlog"
	"github.com/roach88/syscov/internal/weights"
)

// RuntimeError represents a fatal error detected while computing one
// (systematic, variable) pair.
//
// Runtime errors include:
//   - Parse: an event log line could not be read
//   - Singular matrix: a bootstrap covariance is not positive definite
//   - Unknown systematic type: a systematic names no known computation
//   - Store: the event store is missing branches or cannot be read
//   - Archive: a checkpoint could not be written
//
// Results checkpointed before the error are kept in the archive.
type RuntimeError struct {
	// Code identifies the error category.
	Code RuntimeErrorCode

	// Systematic and Variable identify the failed pair. Variable is empty
	// for failures that precede binning.
	Systematic string
	Variable   string

	Err error
}

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	// ErrCodeParse indicates an event log could not be parsed.
	ErrCodeParse RuntimeErrorCode = "PARSE"

	// ErrCodeJoinMismatch indicates selected events missing from the store.
	// Mismatches are logged, not returned; the code is kept for reporting.
	ErrCodeJoinMismatch RuntimeErrorCode = "JOIN_MISMATCH"

	// ErrCodeSingularMatrix indicates a covariance that cannot be factored.
	ErrCodeSingularMatrix RuntimeErrorCode = "SINGULAR_MATRIX"

	// ErrCodeUnknownType indicates a systematic of unknown type.
	ErrCodeUnknownType RuntimeErrorCode = "UNKNOWN_SYSTEMATIC_TYPE"

	// ErrCodeStore indicates the event store could not be used.
	ErrCodeStore RuntimeErrorCode = "STORE"

	// ErrCodeArchive indicates a checkpoint failed.
	ErrCodeArchive RuntimeErrorCode = "ARCHIVE"

	// ErrCodeCanceled indicates the run was interrupted.
	ErrCodeCanceled RuntimeErrorCode = "CANCELED"

	// ErrCodeCompute covers every other computation failure.
	ErrCodeCompute RuntimeErrorCode = "COMPUTE"
)

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	if e.Variable != "" {
		return fmt.Sprintf("%s: %s/%s: %v", e.Code, e.Systematic, e.Variable, e.Err)
	}
	if e.Systematic != "" {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Systematic, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Code, e.Err)
}

func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// newRuntimeError classifies err and wraps it for the given pair.
func newRuntimeError(systematic, variable string, err error) *RuntimeError {
	return &RuntimeError{
		Code:       classify(err),
		Systematic: systematic,
		Variable:   variable,
		Err:        err,
	}
}

func classify(err error) RuntimeErrorCode {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ErrCodeCanceled
	case eventlog.IsParseError(err):
		return ErrCodeParse
	case covariance.IsSingular(err):
		return ErrCodeSingularMatrix
	case config.IsUnknownSystematicType(err):
		return ErrCodeUnknownType
	case weights.IsJoinMismatch(err):
		return ErrCodeJoinMismatch
	case errors.Is(err, weights.ErrMissingBranch),
		errors.Is(err, weights.ErrBranchType),
		errors.Is(err, weights.ErrNoOffsetTable),
		errors.Is(err, weights.ErrUnknownParameter):
		return ErrCodeStore
	}
	return ErrCodeCompute
}

// CodeOf returns the code of the RuntimeError in err's chain, or "".
// Uses errors.As to handle wrapped errors.
func CodeOf(err error) RuntimeErrorCode {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code
	}
	return ""
}

// IsSingular reports whether err stopped a run on a singular matrix.
func IsSingular(err error) bool {
	return CodeOf(err) == ErrCodeSingularMatrix
}
