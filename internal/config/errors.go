package config

import (
	"errors"
	"fmt"

	"cuelang.org/go/cue/token"
)

// Validation error codes, stable across releases.
const (
	CodeDecode          = "E201" // Malformed document or unknown key
	CodeSchema          = "E202" // Schema constraint violated
	CodeCVLog           = "E203" // Missing general.cv_log
	CodeVariables       = "E204" // No variables, or an invalid binning
	CodeSystematics     = "E205" // No systematics
	CodeMultisim        = "E206" // Invalid multisim parameters
	CodeDetector        = "E207" // Invalid detector parameters
	CodeReservedGroup   = "E208" // Group name is filled automatically
	CodeUnknownType     = "E209" // Unknown systematic type
	CodePlot            = "E210" // Invalid plot
	CodeUnsupportedFile = "E211" // Unknown file extension
)

// ValidationError reports an invalid configuration. Pos is set when the
// error can be traced to a CUE source position.
type ValidationError struct {
	Code    string
	Field   string
	Message string
	Pos     token.Pos
}

func (e *ValidationError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Field, e.Message)
	}
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: %s", e.Code, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// UnknownSystematicTypeError reports a systematic whose type is not one of
// multisim, detector or stats. It is fatal before any computation starts.
type UnknownSystematicTypeError struct {
	Name string
	Type string
}

func (e *UnknownSystematicTypeError) Error() string {
	return fmt.Sprintf("%s: sys.%s: unknown systematic type %q", CodeUnknownType, e.Name, e.Type)
}

// IsUnknownSystematicType returns true if err is or wraps an
// *UnknownSystematicTypeError.
func IsUnknownSystematicType(err error) bool {
	var ue *UnknownSystematicTypeError
	return errors.As(err, &ue)
}

// Code returns the validation code carried by err, or "" if none.
func Code(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Code
	}
	if IsUnknownSystematicType(err) {
		return CodeUnknownType
	}
	return ""
}
