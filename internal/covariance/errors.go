package covariance

import (
	"errors"
	"fmt"
)

// ErrDimensionMismatch indicates inputs whose shapes do not line up.
var ErrDimensionMismatch = errors.New("covariance: dimension mismatch")

// SingularMatrixError reports a covariance matrix that is not positive
// definite and therefore has no Cholesky factor. It is fatal: it points at
// insufficient bootstrap statistics or a configuration problem.
type SingularMatrixError struct {
	// Size is the dimension of the matrix that failed to factorize.
	Size int

	// Context names the matrix, e.g. "rmatrix".
	Context string
}

func (e *SingularMatrixError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("covariance: %s (%dx%d) is not positive definite", e.Context, e.Size, e.Size)
	}
	return fmt.Sprintf("covariance: matrix (%dx%d) is not positive definite", e.Size, e.Size)
}

// IsSingular returns true if err is or wraps a *SingularMatrixError.
func IsSingular(err error) bool {
	var se *SingularMatrixError
	return errors.As(err, &se)
}
