package weights

import (
	"fmt"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/dustin/go-humanize"
)

// DefaultBatchBudget caps the in-memory size of one record batch.
const DefaultBatchBudget = "1 GB"

// ParseBudget converts a human-readable size such as "1 GB" or "512MiB"
// into bytes. An empty string selects DefaultBatchBudget.
func ParseBudget(s string) (uint64, error) {
	if s == "" {
		s = DefaultBatchBudget
	}
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("parse batch budget %q: %w", s, err)
	}
	if n == 0 {
		return 0, fmt.Errorf("parse batch budget %q: must be positive", s)
	}
	return n, nil
}

// FormatBudget renders a byte count the way ParseBudget accepts it.
func FormatBudget(n uint64) string {
	return humanize.Bytes(n)
}

// recordBytes sums the buffer sizes backing every column of rec.
func recordBytes(rec arrow.Record) uint64 {
	var total uint64
	for _, col := range rec.Columns() {
		total += dataBytes(col.Data())
	}
	return total
}

func dataBytes(d arrow.ArrayData) uint64 {
	var total uint64
	for _, buf := range d.Buffers() {
		if buf != nil {
			total += uint64(buf.Len())
		}
	}
	for _, child := range d.Children() {
		total += dataBytes(child)
	}
	return total
}
