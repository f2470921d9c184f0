package boq

import (
	"strings"

	"github.com/joseph-ayodele/dqe-extractor/constants"
)

// Cell is one raw grid value. Absent cells (blank spreadsheet cells, padding
// of ragged PDF rows) have Present == false.
type Cell struct {
	Value   string
	Present bool
}

// Text builds a present cell. Blank-only strings are treated as absent.
func Text(s string) Cell {
	if strings.TrimSpace(s) == "" {
		return Cell{}
	}
	return Cell{Value: s, Present: true}
}

// Row is an ordered sequence of cells.
type Row struct {
	cells []Cell
}

// NewRow copies values into a row; empty strings become absent cells.
func NewRow(values ...string) Row {
	cells := make([]Cell, len(values))
	for i, v := range values {
		cells[i] = Text(v)
	}
	return Row{cells: cells}
}

// Len returns the number of cells, present or not.
func (r Row) Len() int { return len(r.cells) }

// Cell returns the trimmed value at idx; ok is false when absent or out of range.
func (r Row) Cell(idx int) (string, bool) {
	if idx < 0 || idx >= len(r.cells) || !r.cells[idx].Present {
		return "", false
	}
	return strings.TrimSpace(r.cells[idx].Value), true
}

// Values returns a copy of the row as strings ("" for absent cells).
func (r Row) Values() []string {
	out := make([]string, len(r.cells))
	for i, c := range r.cells {
		if c.Present {
			out[i] = strings.TrimSpace(c.Value)
		}
	}
	return out
}

// NonEmpty returns the present, non-blank values in column order.
func (r Row) NonEmpty() []string {
	out := make([]string, 0, len(r.cells))
	for _, c := range r.cells {
		if v := strings.TrimSpace(c.Value); c.Present && v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Joined concatenates the non-empty cells with single spaces.
func (r Row) Joined() string {
	return strings.Join(r.NonEmpty(), " ")
}

// IsBlank reports whether no cell carries a value.
func (r Row) IsBlank() bool {
	return len(r.NonEmpty()) == 0
}

// Grid is an immutable, fully materialized table of cells produced by a
// spreadsheet sheet or a PDF page set. The engine never mutates it.
type Grid struct {
	name string
	rows []Row
}

// NewGrid builds a grid from raw string rows; "" marks an absent cell.
func NewGrid(name string, rows [][]string) Grid {
	out := make([]Row, len(rows))
	for i, r := range rows {
		out[i] = NewRow(r...)
	}
	return Grid{name: name, rows: out}
}

// NewGridFromRows builds a grid from already-built rows.
func NewGridFromRows(name string, rows []Row) Grid {
	out := make([]Row, len(rows))
	copy(out, rows)
	return Grid{name: name, rows: out}
}

func (g Grid) Name() string { return g.name }

func (g Grid) Len() int { return len(g.rows) }

// Row returns row idx, or an empty row when out of range.
func (g Grid) Row(idx int) Row {
	if idx < 0 || idx >= len(g.rows) {
		return Row{}
	}
	return g.rows[idx]
}

// Width returns the widest row length.
func (g Grid) Width() int {
	w := 0
	for _, r := range g.rows {
		if r.Len() > w {
			w = r.Len()
		}
	}
	return w
}

// IsEmpty reports whether the grid has no row carrying a value.
func (g Grid) IsEmpty() bool {
	for _, r := range g.rows {
		if !r.IsBlank() {
			return false
		}
	}
	return true
}

// ColumnMapping is a partial function from column role to column index.
type ColumnMapping map[constants.ColumnRole]int

// Index returns the mapped column for role.
func (m ColumnMapping) Index(role constants.ColumnRole) (int, bool) {
	if m == nil {
		return 0, false
	}
	idx, ok := m[role]
	return idx, ok
}

// Value reads the cell mapped to role from row.
func (m ColumnMapping) Value(row Row, role constants.ColumnRole) (string, bool) {
	idx, ok := m.Index(role)
	if !ok {
		return "", false
	}
	return row.Cell(idx)
}

// Clone returns an independent copy.
func (m ColumnMapping) Clone() ColumnMapping {
	out := make(ColumnMapping, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
