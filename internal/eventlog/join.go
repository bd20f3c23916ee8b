package eventlog

import (
	"fmt"
	"math"
	"strconv"
)

// Join returns the inner join of t and other on the named columns.
//
// Every pair of matching rows yields one output row, so duplicated keys
// multiply. Rows follow t's order, then other's order within a key.
// The result holds t's columns followed by other's columns that t lacks.
// Rows whose key holds NaN never match.
func (t *Table) Join(other *Table, on ...string) (*Table, error) {
	if len(on) == 0 {
		return nil, fmt.Errorf("join: no key columns")
	}
	left, right, err := t.JoinRows(other, on...)
	if err != nil {
		return nil, err
	}

	cols := make([]*Column, 0, len(t.columns)+len(other.columns))
	for _, c := range t.columns {
		cols = append(cols, c.pick(left))
	}
	for _, c := range other.columns {
		if t.Has(c.Name) {
			continue
		}
		cols = append(cols, c.pick(right))
	}
	out := newTable(cols)
	out.rows = len(left)
	return out, nil
}

// JoinRows returns the row pairs of the inner join of t and other on the
// named columns: left[i] in t matches right[i] in other.
func (t *Table) JoinRows(other *Table, on ...string) (left, right []int, err error) {
	lk, err := t.joinKeys(on)
	if err != nil {
		return nil, nil, fmt.Errorf("join: %w", err)
	}
	rk, err := other.joinKeys(on)
	if err != nil {
		return nil, nil, fmt.Errorf("join: %w", err)
	}

	byKey := make(map[string][]int, len(rk))
	for i, k := range rk {
		if k == "" {
			continue
		}
		byKey[k] = append(byKey[k], i)
	}
	for i, k := range lk {
		if k == "" {
			continue
		}
		for _, j := range byKey[k] {
			left = append(left, i)
			right = append(right, j)
		}
	}
	return left, right, nil
}

// joinKeys encodes the key columns of every row; "" marks a NaN key.
func (t *Table) joinKeys(on []string) ([]string, error) {
	cols := make([]*Column, len(on))
	for i, name := range on {
		c, err := t.Column(name)
		if err != nil {
			return nil, err
		}
		cols[i] = c
	}
	keys := make([]string, t.rows)
	buf := make([]byte, 0, 64)
	for r := range keys {
		buf = buf[:0]
		nan := false
		for i, c := range cols {
			v := c.Float(r)
			if math.IsNaN(v) {
				nan = true
				break
			}
			if i > 0 {
				buf = append(buf, '|')
			}
			buf = strconv.AppendFloat(buf, v, 'g', -1, 64)
		}
		if !nan {
			keys[r] = string(buf)
		}
	}
	return keys, nil
}
