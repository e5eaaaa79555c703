// Package table turns decoded JSON payloads into row-per-record tables.
//
// A Table keeps the column set as the union of every record's fields. Columns
// appear in the order of the record that first carried them, alphabetical
// among the fields one record introduces. Fields a record does not carry read as nil,
// which is the table's null marker. Nested objects and arrays are kept as-is
// in a single cell; nothing is flattened beyond the first level.
package table

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/mtgmine/mtgmine/internal/errs"
)

// Record is a single upstream object: field name to opaque value.
type Record map[string]any

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// String returns the field as a string, or "" when it is absent or not a string.
func (r Record) String(field string) string {
	s, _ := r[field].(string)
	return s
}

// Table is an ordered sequence of records sharing a column set.
type Table struct {
	columns []string
	index   map[string]int
	rows    []Record
}

// New creates an empty table with the given columns.
func New(columns ...string) *Table {
	t := &Table{index: make(map[string]int)}
	for _, c := range columns {
		t.addColumn(c)
	}
	return t
}

// FromRecords builds a table from already-typed records.
func FromRecords(records []Record) *Table {
	t := New()
	for _, r := range records {
		t.Append(r)
	}
	return t
}

// FromJSON normalizes a decoded JSON value into a table. It accepts a single
// object (one row) or a list of objects (one row each). Any other shape, or a
// list element that is not an object, fails with an *errs.FormatError.
func FromJSON(v any) (*Table, error) {
	switch val := v.(type) {
	case map[string]any:
		return FromRecords([]Record{val}), nil
	case Record:
		return FromRecords([]Record{val}), nil
	case []Record:
		return FromRecords(val), nil
	case []map[string]any:
		t := New()
		for _, r := range val {
			t.Append(r)
		}
		return t, nil
	case []any:
		t := New()
		for i, item := range val {
			obj, ok := asObject(item)
			if !ok {
				return nil, errs.Formatf("element %d is %s, not an object", i, describe(item))
			}
			t.Append(obj)
		}
		return t, nil
	default:
		return nil, errs.Formatf("expected an object or a list of objects, got %s", describe(v))
	}
}

func asObject(v any) (Record, bool) {
	switch obj := v.(type) {
	case map[string]any:
		return obj, true
	case Record:
		return obj, true
	default:
		return nil, false
	}
}

func describe(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "a string"
	case float64, json.Number, int, int64:
		return "a number"
	case bool:
		return "a boolean"
	case []any:
		return "a list"
	case map[string]any:
		return "an object"
	default:
		return fmt.Sprintf("%T", v)
	}
}

func (t *Table) addColumn(name string) bool {
	if t.index == nil {
		t.index = make(map[string]int)
	}
	if _, ok := t.index[name]; ok {
		return false
	}
	t.index[name] = len(t.columns)
	t.columns = append(t.columns, name)
	return true
}

// Append adds a row. Fields not yet known become new columns, back-filled
// with nil in earlier rows; known columns missing from r are set to nil.
func (t *Table) Append(r Record) {
	row := make(Record, len(t.columns)+len(r))
	for _, c := range t.columns {
		row[c] = nil
	}

	// Map iteration order is random; sort new keys so column order is stable.
	var fresh []string
	for k, v := range r {
		row[k] = v
		if _, ok := t.index[k]; !ok {
			fresh = append(fresh, k)
		}
	}
	slices.Sort(fresh)
	for _, k := range fresh {
		t.addColumn(k)
		for _, prev := range t.rows {
			prev[k] = nil
		}
	}

	t.rows = append(t.rows, row)
}

// Columns returns the column names in order.
func (t *Table) Columns() []string {
	return slices.Clone(t.columns)
}

// HasColumn reports whether the table has the named column.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Row returns row i. Callers must not mutate it.
func (t *Table) Row(i int) Record {
	return t.rows[i]
}

// Records returns every row in order. Callers must not mutate them.
func (t *Table) Records() []Record {
	return slices.Clone(t.rows)
}

// Value returns the cell at row i, column col; nil for the null marker or
// an unknown column.
func (t *Table) Value(i int, col string) any {
	return t.rows[i][col]
}

// Column returns every value of col in row order.
func (t *Table) Column(col string) []any {
	out := make([]any, len(t.rows))
	for i, r := range t.rows {
		out[i] = r[col]
	}
	return out
}

// Select returns a new table with exactly the given columns, in that order.
// Columns unknown to t are kept and read as nil.
func (t *Table) Select(columns ...string) *Table {
	out := New(columns...)
	for _, r := range t.rows {
		row := make(Record, len(columns))
		for _, c := range columns {
			row[c] = r[c]
		}
		out.rows = append(out.rows, row)
	}
	return out
}

// Rename returns a new table where columns named in renames are renamed.
// A rename whose target is already a column is skipped, so both columns
// keep their values.
func (t *Table) Rename(renames map[string]string) *Table {
	taken := make(map[string]bool, len(t.columns))
	for _, c := range t.columns {
		taken[c] = true
	}

	mapped := make([]string, len(t.columns))
	for i, c := range t.columns {
		mapped[i] = c
		if to, ok := renames[c]; ok && !taken[to] {
			mapped[i] = to
			taken[to] = true
		}
	}

	out := New(mapped...)
	for _, r := range t.rows {
		row := make(Record, len(mapped))
		for i, c := range t.columns {
			row[mapped[i]] = r[c]
		}
		out.rows = append(out.rows, row)
	}
	return out
}

// Apply replaces every non-nil value of col with fn(value). It stops at the
// first error. Rows are copied, t is left untouched.
func (t *Table) Apply(col string, fn func(any) (any, error)) (*Table, error) {
	out := New(t.columns...)
	for i, r := range t.rows {
		row := r.Clone()
		if v := row[col]; v != nil {
			converted, err := fn(v)
			if err != nil {
				return nil, fmt.Errorf("row %d, column %s: %w", i, col, err)
			}
			row[col] = converted
		}
		out.rows = append(out.rows, row)
	}
	return out, nil
}

// DropDuplicates returns a new table keeping only the first occurrence of
// each distinct row.
func (t *Table) DropDuplicates() *Table {
	out := New(t.columns...)
	seen := make(map[string]struct{}, len(t.rows))
	for _, r := range t.rows {
		key, err := t.rowKey(r)
		if err == nil {
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
		}
		out.rows = append(out.rows, r.Clone())
	}
	return out
}

func (t *Table) rowKey(r Record) (string, error) {
	values := make([]any, len(t.columns))
	for i, c := range t.columns {
		values[i] = r[c]
	}
	b, err := json.Marshal(values)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Concat appends every row of other to a copy of t.
func (t *Table) Concat(other *Table) *Table {
	out := New(t.columns...)
	for _, r := range t.rows {
		out.rows = append(out.rows, r.Clone())
	}
	for _, r := range other.rows {
		out.Append(r)
	}
	return out
}

// MarshalJSON encodes the table as a list of row objects.
func (t *Table) MarshalJSON() ([]byte, error) {
	if t.rows == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(t.rows)
}
