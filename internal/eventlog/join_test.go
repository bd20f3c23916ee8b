package eventlog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const joinLog = `SELECTED_1MU1P,1,1,1,0,0.5,
SELECTED_1MU1P,1,1,2,0,1.5,
SELECTED_1MU1P,1,1,3,0,2.5,
EVENT,1,1,1,0,9,
EVENT,1,1,1,1,8,
EVENT,1,1,3,0,7,
EVENT,1,1,4,0,6,
`

func TestJoin_PreservesMultiplicity(t *testing.T) {
	sel, err := Read(strings.NewReader(joinLog), SelectedTag("1mu1p"), Header("x"))
	require.NoError(t, err)
	sig, err := Read(strings.NewReader(joinLog), EventTag, Header("y"))
	require.NoError(t, err)

	out, err := sel.Join(sig, ColRun, ColSubrun, ColEvent)
	require.NoError(t, err)

	// event 1 has two signal neutrinos; event 2 has none.
	assert.Equal(t, 3, out.NumRows())
	assert.Equal(t, []string{"run", "subrun", "event", "nu_id", "x", "y"}, out.Columns())

	evt, err := out.Ints(ColEvent)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 1, 3}, evt)

	y, err := out.Floats("y")
	require.NoError(t, err)
	assert.Equal(t, []float64{9, 8, 7}, y)
}

func TestJoin_OnNuID(t *testing.T) {
	sel, err := Read(strings.NewReader(joinLog), SelectedTag("1mu1p"), Header("x"))
	require.NoError(t, err)
	sig, err := Read(strings.NewReader(joinLog), EventTag, Header("y"))
	require.NoError(t, err)

	left, right, err := sel.JoinRows(sig, KeyColumns...)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2}, left)
	assert.Equal(t, []int{0, 2}, right)
}

func TestJoin_Errors(t *testing.T) {
	sel, err := Read(strings.NewReader(joinLog), SelectedTag("1mu1p"), Header("x"))
	require.NoError(t, err)

	_, err = sel.Join(sel)
	assert.Error(t, err)

	_, err = sel.Join(sel, "missing")
	assert.ErrorIs(t, err, ErrUnknownColumn)
}
