package eventlog

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleLog = `INFO: starting job
SELECTED_1MU1P,1,10,100,0,1.25,3,
SELECTED_1MU1P,1,10,101,1,0.50,2,
NEUTRINO,1,10,100,0,7,
SELECTED_1MU1P,1,10,102,-1,2.00,7,
`

func TestRead_SelectsTaggedLines(t *testing.T) {
	tbl, err := Read(strings.NewReader(sampleLog), SelectedTag("1mu1p"), Header("reco_energy", "category"))
	require.NoError(t, err)

	assert.Equal(t, 3, tbl.NumRows())
	assert.Equal(t, []string{"run", "subrun", "event", "nu_id", "reco_energy", "category"}, tbl.Columns())

	nu, err := tbl.Ints(ColNuID)
	require.NoError(t, err)
	assert.Equal(t, []int64{0, 1, -1}, nu)

	energy, err := tbl.Floats("reco_energy")
	require.NoError(t, err)
	assert.Equal(t, []float64{1.25, 0.5, 2.0}, energy)
}

func TestRead_IntegralColumnsAreInts(t *testing.T) {
	tbl, err := Read(strings.NewReader(sampleLog), SelectedTag("1mu1p"), Header("reco_energy", "category"))
	require.NoError(t, err)

	cat, err := tbl.Column("category")
	require.NoError(t, err)
	assert.Equal(t, KindInt, cat.Kind)

	energy, err := tbl.Column("reco_energy")
	require.NoError(t, err)
	assert.Equal(t, KindFloat, energy.Kind)

	_, err = tbl.Ints("reco_energy")
	assert.ErrorIs(t, err, ErrNotIntegral)
}

func TestRead_HeaderTruncatedToFieldCount(t *testing.T) {
	tbl, err := Read(strings.NewReader(sampleLog), NeutrinoTag, Header("reco_energy", "category", "extra"))
	require.NoError(t, err)

	// NEUTRINO lines carry 5 values, so only the first 5 header names apply.
	assert.Equal(t, []string{"run", "subrun", "event", "nu_id", "reco_energy"}, tbl.Columns())
	assert.Equal(t, 1, tbl.NumRows())
}

func TestRead_NonNumericBecomesNaN(t *testing.T) {
	log := "SEL,1,2,3,0,abc,\nSEL,1,2,4,0,5,\n"
	tbl, err := Read(strings.NewReader(log), "SEL", Header("x"))
	require.NoError(t, err)

	x, err := tbl.Floats("x")
	require.NoError(t, err)
	assert.True(t, math.IsNaN(x[0]))
	assert.Equal(t, 5.0, x[1])

	col, err := tbl.Column("x")
	require.NoError(t, err)
	assert.Equal(t, KindFloat, col.Kind, "a NaN keeps the column float")
}

func TestRead_ShortRowsPadWithNaN(t *testing.T) {
	log := "SEL,1,2,3,0,9\nSEL,1,2,4,0\n"
	tbl, err := Read(strings.NewReader(log), "SEL", Header("x"))
	require.NoError(t, err)

	x, err := tbl.Floats("x")
	require.NoError(t, err)
	assert.Equal(t, 9.0, x[0])
	assert.True(t, math.IsNaN(x[1]))
}

func TestRead_NoMatchingLines(t *testing.T) {
	_, err := Read(strings.NewReader(sampleLog), "MISSING_TAG", Header())
	require.Error(t, err)

	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "MISSING_TAG", pe.Tag)
	assert.True(t, IsParseError(err))
}

func TestRead_EmptyFirstRow(t *testing.T) {
	_, err := Read(strings.NewReader("TAG,\n"), "TAG", Header())
	require.Error(t, err)
	assert.True(t, IsParseError(err))
	assert.Contains(t, err.Error(), "no fields")
}

func TestRead_TooManyFields(t *testing.T) {
	_, err := Read(strings.NewReader("TAG,1,2,3,4,5,6\n"), "TAG", Header())
	require.Error(t, err)
	assert.True(t, IsParseError(err))
}

func TestReadLog_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cv.log")
	require.NoError(t, os.WriteFile(path, []byte(sampleLog), 0644))

	tbl, err := ReadLog(path, SelectedTag("1mu1p"), Header("reco_energy", "category"))
	require.NoError(t, err)
	assert.Equal(t, 3, tbl.NumRows())
}

func TestReadLog_MissingFile(t *testing.T) {
	_, err := ReadLog(filepath.Join(t.TempDir(), "nope.log"), "TAG", Header())
	require.Error(t, err)
	assert.False(t, IsParseError(err))
}

func TestParseError_Message(t *testing.T) {
	err := &ParseError{Path: "a.log", Tag: "T", Line: 3, Message: "bad"}
	assert.Equal(t, `parse a.log:3 (tag "T"): bad`, err.Error())

	err = &ParseError{Tag: "T", Message: "bad"}
	assert.Equal(t, `parse <stream> (tag "T"): bad`, err.Error())
}
