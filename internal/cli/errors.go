package cli

import (
	"errors"
	"io/fs"

	"github.com/roach88/syscov/internal/archive"
	"github.com/roach88/syscov/internal/config"
	"github.com/roach88/syscov/internal/engine"
)

// Error codes for CLI output. Configuration errors keep the E2xx codes of
// the config package.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeBadFlag     = "E002" // Invalid flag or environment value
	ErrCodeNotFound    = "E005" // Path or entry not found
	ErrCodeWriteFailed = "E007" // Archive or output write error

	ErrCodeCompute     = "E300" // Computation failed
	ErrCodeParse       = "E301" // Event log parse error
	ErrCodeJoin        = "E302" // Selected events missing from the store
	ErrCodeSingular    = "E303" // Covariance not positive definite
	ErrCodeStore       = "E304" // Event store unusable
	ErrCodeArchive     = "E305" // Checkpoint failed
	ErrCodeInterrupted = "E306" // Run canceled
)

var runtimeCodes = map[engine.RuntimeErrorCode]string{
	engine.ErrCodeParse:          ErrCodeParse,
	engine.ErrCodeJoinMismatch:   ErrCodeJoin,
	engine.ErrCodeSingularMatrix: ErrCodeSingular,
	engine.ErrCodeUnknownType:    config.CodeUnknownType,
	engine.ErrCodeStore:          ErrCodeStore,
	engine.ErrCodeArchive:        ErrCodeArchive,
	engine.ErrCodeCanceled:       ErrCodeInterrupted,
	engine.ErrCodeCompute:        ErrCodeCompute,
}

// ErrorCode returns the stable output code of err.
func ErrorCode(err error) string {
	if code := config.Code(err); code != "" {
		return code
	}
	if code, ok := runtimeCodes[engine.CodeOf(err)]; ok {
		return code
	}
	switch {
	case errors.Is(err, archive.ErrNotFound), errors.Is(err, fs.ErrNotExist):
		return ErrCodeNotFound
	}
	return ErrCodeGeneric
}
