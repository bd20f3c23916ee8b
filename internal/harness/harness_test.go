package harness

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadTestScenario(t *testing.T, name string) *Scenario {
	t.Helper()
	s, err := LoadScenario(filepath.Join("testdata", "scenarios", name+".yaml"))
	require.NoError(t, err)
	return s
}

func TestScenarios(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("testdata", "scenarios", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, matches)

	for _, path := range matches {
		s, err := LoadScenario(path)
		require.NoError(t, err, path)
		t.Run(s.Name, func(t *testing.T) {
			result, err := Run(context.Background(), s, t.TempDir())
			require.NoError(t, err)
			assert.True(t, result.Pass, "%v", result.Errors)
		})
	}
}

func TestRunWithGolden_MultisimFlux(t *testing.T) {
	result, err := RunWithGolden(t, loadTestScenario(t, "multisim_flux"))
	require.NoError(t, err)
	assert.True(t, result.Pass)
}

func TestRun_Deterministic(t *testing.T) {
	s := loadTestScenario(t, "detector_degenerate")

	first, err := Run(context.Background(), s, t.TempDir())
	require.NoError(t, err)
	second, err := Run(context.Background(), s, t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, Snapshot(s.Name, first), Snapshot(s.Name, second))
}

func TestRun_FailingAssertion(t *testing.T) {
	s := loadTestScenario(t, "multisim_flux")
	s.Assertions = []Assertion{{Type: AssertEntry, Name: "flux_pi_energy_cv", Values: []float64{1, 1, 1}}}

	result, err := Run(context.Background(), s, t.TempDir())
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "flux_pi_energy_cv[0] = 1")
}

func TestRun_UnexpectedRunError(t *testing.T) {
	s := loadTestScenario(t, "missing_store")
	s.Assertions = []Assertion{{Type: AssertPairs, Count: 0}}

	result, err := Run(context.Background(), s, t.TempDir())
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "run failed")
}

func TestRun_InvalidConfig(t *testing.T) {
	s := loadTestScenario(t, "missing_store")
	s.Config = "general: {cv_log: cv.log, variables: {e: [2, 0.0, 2.0]}}\nsys: {x: {type: reweight}}\n"

	_, err := Run(context.Background(), s, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing_store")
}

func TestRun_DefaultRunID(t *testing.T) {
	s := loadTestScenario(t, "join_mismatch")

	result, err := Run(context.Background(), s, t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, result.Summary)
	assert.Equal(t, "test-run-default", result.Summary.RunID)
}
