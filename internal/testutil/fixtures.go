package testutil

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/syscov/internal/weights"
)

// Record is one line of an event log.
type Record struct {
	Tag    string
	Run    int64
	Subrun int64
	Event  int64
	NuID   int64
	Values []float64
}

// FormatLog renders records in the analysis log format: the tag as the
// leading field, then run, subrun, event, nu_id and the values, each line
// ending in a trailing comma.
func FormatLog(records []Record) string {
	var b strings.Builder
	for _, r := range records {
		b.WriteString(r.Tag)
		for _, v := range []int64{r.Run, r.Subrun, r.Event, r.NuID} {
			b.WriteByte(',')
			b.WriteString(strconv.FormatInt(v, 10))
		}
		for _, v := range r.Values {
			b.WriteByte(',')
			b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
		}
		b.WriteString(",\n")
	}
	return b.String()
}

// WriteLog writes records to dir/name and returns the path.
func WriteLog(t testing.TB, dir, name string, records []Record) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(FormatLog(records)), 0o644))
	return path
}

// WriteStore writes events as an Arrow event store to dir/name and returns
// the path.
func WriteStore(t testing.TB, dir, name string, events []weights.Event, opts ...weights.WriterOption) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, weights.WriteFile(path, events, opts...))
	return path
}

// ConstantEvent returns an event with one neutrino per index whose
// parameters each carry universes copies of value.
func ConstantEvent(run, subrun, event uint32, params, universes int, value float32, nuIndices ...int32) weights.Event {
	if len(nuIndices) == 0 {
		nuIndices = []int32{0}
	}
	ev := weights.Event{Run: run, Subrun: subrun, Event: event}
	for _, idx := range nuIndices {
		nu := weights.Neutrino{Index: idx, Params: make([][]float32, params)}
		for p := range nu.Params {
			block := make([]float32, universes)
			for u := range block {
				block[u] = value
			}
			nu.Params[p] = block
		}
		ev.Neutrinos = append(ev.Neutrinos, nu)
	}
	return ev
}
