package searchspace

import (
	"slices"

	"github.com/XiaoConstantine/baydesign-go/pkg/errors"
)

// Table is a small in-memory numeric table with named columns, used for
// discrete candidate sets and recommendation batches.
type Table struct {
	Columns []string
	Rows    [][]float64
}

// NewTable creates a table after checking that every row matches the column
// count.
func NewTable(columns []string, rows [][]float64) (*Table, error) {
	for i, row := range rows {
		if len(row) != len(columns) {
			return nil, errors.Errorf(errors.InvalidInput,
				"row %d has %d values for %d columns", i, len(row), len(columns))
		}
	}
	return &Table{Columns: slices.Clone(columns), Rows: rows}, nil
}

// NumRows returns the number of rows.
func (t *Table) NumRows() int { return len(t.Rows) }

// Column returns the index of a named column, or -1 if absent.
func (t *Table) Column(name string) int {
	return slices.Index(t.Columns, name)
}

// Select returns the values of one row as a name-to-value mapping.
func (t *Table) Select(row int) map[string]float64 {
	out := make(map[string]float64, len(t.Columns))
	for i, name := range t.Columns {
		out[name] = t.Rows[row][i]
	}
	return out
}
