package harness

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/roach88/syscov/internal/engine"
	"github.com/roach88/syscov/internal/model"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)
	return buf.String()
}

func entry(r *Result, a Assertion, name string) (model.Entry, error) {
	e, ok := r.Entries[name]
	if !ok {
		return model.Entry{}, &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("entry %s in archive", name),
			Actual:   fmt.Sprintf("not found among %d entries", len(r.Entries)),
		}
	}
	return e, nil
}

func tolerance(a Assertion) float64 {
	if a.Tolerance == 0 {
		return DefaultTolerance
	}
	return a.Tolerance
}

// assertEntry checks that an entry exists with the expected shape and
// values.
func assertEntry(r *Result, a Assertion) error {
	e, err := entry(r, a, a.Name)
	if err != nil {
		return err
	}
	if (a.Rows != 0 && a.Rows != e.Rows) || (a.Cols != 0 && a.Cols != e.Cols) {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("%s shape %dx%d", a.Name, a.Rows, a.Cols),
			Actual:   fmt.Sprintf("%dx%d", e.Rows, e.Cols),
		}
	}
	if a.Values == nil {
		return nil
	}
	return compareValues(a, a.Name, a.Values, e.Data)
}

func compareValues(a Assertion, name string, want, got []float64) error {
	if len(want) != len(got) {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("%s with %d values", name, len(want)),
			Actual:   fmt.Sprintf("%d values", len(got)),
		}
	}
	tol := tolerance(a)
	for i := range want {
		if math.Abs(want[i]-got[i]) > tol {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("%s[%d] = %g (±%g)", name, i, want[i], tol),
				Actual:   fmt.Sprintf("%g", got[i]),
			}
		}
	}
	return nil
}

func assertEntryMissing(r *Result, a Assertion) error {
	if _, ok := r.Entries[a.Name]; ok {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("no entry %s", a.Name),
			Actual:   "entry present",
		}
	}
	return nil
}

func matrix(r *Result, a Assertion) (*mat.SymDense, error) {
	e, err := entry(r, a, a.Name)
	if err != nil {
		return nil, err
	}
	m, err := e.Sym()
	if err != nil {
		return nil, &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("%s to be a square matrix", a.Name),
			Actual:   err.Error(),
		}
	}
	return m, nil
}

func assertSymmetric(r *Result, a Assertion) error {
	if _, err := matrix(r, a); err != nil {
		return err
	}
	e := r.Entries[a.Name]
	n, tol := e.Rows, tolerance(a)
	for i := range n {
		for j := i + 1; j < n; j++ {
			if upper, lower := e.Data[i*n+j], e.Data[j*n+i]; math.Abs(upper-lower) > tol {
				return &AssertionError{
					Type:     a.Type,
					Expected: fmt.Sprintf("%s[%d,%d] = %s[%d,%d]", a.Name, i, j, a.Name, j, i),
					Actual:   fmt.Sprintf("%g != %g", upper, lower),
				}
			}
		}
	}
	return nil
}

func assertPSD(r *Result, a Assertion) error {
	m, err := matrix(r, a)
	if err != nil {
		return err
	}
	var eig mat.EigenSym
	if !eig.Factorize(m, false) {
		return &AssertionError{Type: a.Type, Expected: "eigen decomposition of " + a.Name, Actual: "did not converge"}
	}
	tol := tolerance(a)
	for _, v := range eig.Values(nil) {
		if v < -tol {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("%s eigenvalues >= -%g", a.Name, tol),
				Actual:   fmt.Sprintf("eigenvalue %g", v),
			}
		}
	}
	return nil
}

func assertSumOf(r *Result, a Assertion) error {
	e, err := entry(r, a, a.Name)
	if err != nil {
		return err
	}
	want := make([]float64, len(e.Data))
	for _, p := range a.Parts {
		part, err := entry(r, a, p)
		if err != nil {
			return err
		}
		if part.Rows != e.Rows || part.Cols != e.Cols {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("%s shape %dx%d", p, e.Rows, e.Cols),
				Actual:   fmt.Sprintf("%dx%d", part.Rows, part.Cols),
			}
		}
		for i, v := range part.Data {
			want[i] += v
		}
	}
	return compareValues(a, a.Name, want, e.Data)
}

func assertErrorCode(r *Result, a Assertion) error {
	got := string(engine.CodeOf(r.RunErr))
	if got != a.Code {
		actual := "run succeeded"
		if r.RunErr != nil {
			actual = fmt.Sprintf("%s (%v)", got, r.RunErr)
		}
		return &AssertionError{Type: a.Type, Expected: "run error " + a.Code, Actual: actual}
	}
	return nil
}

func assertMismatches(r *Result, a Assertion) error {
	var got int
	if r.Summary != nil {
		got = r.Summary.Mismatches[a.Name]
	}
	if got != a.Count {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("%d events of %s missing from store", a.Count, a.Name),
			Actual:   fmt.Sprintf("%d", got),
		}
	}
	return nil
}

func assertDegenerate(r *Result, a Assertion) error {
	var got []string
	if r.Summary != nil {
		got = r.Summary.Degenerate
	}
	if !slices.Equal(got, a.Names) {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("degenerate %v", a.Names),
			Actual:   fmt.Sprintf("%v", got),
		}
	}
	return nil
}

func assertPairs(r *Result, a Assertion) error {
	var got int
	if r.Summary != nil {
		got = r.Summary.Pairs
	}
	if got != a.Count {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("%d pairs checkpointed", a.Count),
			Actual:   fmt.Sprintf("%d", got),
		}
	}
	return nil
}

// EvaluateAssertions checks every assertion against result and returns
// the failure messages.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertEntry:
			err = assertEntry(result, assertion)
		case AssertEntryMissing:
			err = assertEntryMissing(result, assertion)
		case AssertSymmetric:
			err = assertSymmetric(result, assertion)
		case AssertPSD:
			err = assertPSD(result, assertion)
		case AssertSumOf:
			err = assertSumOf(result, assertion)
		case AssertErrorCode:
			err = assertErrorCode(result, assertion)
		case AssertMismatches:
			err = assertMismatches(result, assertion)
		case AssertDegenerate:
			err = assertDegenerate(result, assertion)
		case AssertPairs:
			err = assertPairs(result, assertion)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
