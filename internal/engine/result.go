package engine

import (
	"github.com/mtgmine/mtgmine/internal/table"
)

// Result is the output of one step. Data is usually a *table.Table; single
// card lookups yield a table.Record and catalog endpoints a []string.
type Result struct {
	ID   string            `json:"id"`
	Data any               `json:"data"`
	Meta map[string]string `json:"meta,omitempty"`
}

// Table returns the result's data in tabular form. A record becomes a single
// row and a list of strings a single "value" column.
func (r Result) Table() (*table.Table, error) {
	switch data := r.Data.(type) {
	case *table.Table:
		return data, nil
	case table.Record:
		return table.FromRecords([]table.Record{data}), nil
	case []string:
		t := table.New("value")
		for _, s := range data {
			t.Append(table.Record{"value": s})
		}
		return t, nil
	default:
		return table.FromJSON(data)
	}
}
