package weights

import (
	"errors"
	"fmt"

	"github.com/roach88/syscov/internal/model"
)

// JoinMismatchError reports a selected event that could not be given
// weights. Such events are dropped from the ensemble, not zero-filled;
// callers count and report them.
type JoinMismatchError struct {
	// Key identifies the selected event.
	Key model.EventKey

	// Row is the position of the event among the selected neutrino events.
	Row int

	// Reason explains why no weights were found.
	Reason string
}

func (e *JoinMismatchError) Error() string {
	return fmt.Sprintf("weights: event %s (row %d): %s", e.Key, e.Row, e.Reason)
}

// IsJoinMismatch returns true if err is or wraps a *JoinMismatchError.
func IsJoinMismatch(err error) bool {
	var je *JoinMismatchError
	return errors.As(err, &je)
}

// Reasons recorded on JoinMismatchError.
const (
	ReasonNoStoreRow    = "no store row for key"
	ReasonOutsideWindow = "store row never fell inside a batch window"
	ReasonShortBlock    = "universe block exceeds the event's weight array"
)

var (
	// ErrMissingBranch is returned when the store lacks a required branch.
	ErrMissingBranch = errors.New("weights: missing branch")

	// ErrBranchType is returned when a branch has an unexpected Arrow type.
	ErrBranchType = errors.New("weights: unexpected branch type")

	// ErrNoOffsetTable is returned when no event carries a neutrino, so the
	// universe offsets cannot be derived.
	ErrNoOffsetTable = errors.New("weights: store has no offset table")

	// ErrUnknownParameter is returned for a parameter index outside the
	// offset table.
	ErrUnknownParameter = errors.New("weights: unknown systematic parameter")
)
