// Package sheet reads and writes the tabular uploads behind every report.
package sheet

import (
	"strconv"
	"strings"
)

// ColumnStudent is the preferred identifier column of student sheets.
const ColumnStudent = "Student"

// Table is an in-memory spreadsheet: a header row plus string cells.
// Every row has exactly len(Headers) cells.
type Table struct {
	Headers []string
	Rows    [][]string
	index   map[string]int
}

// NewTable builds a table, trimming header whitespace and padding or
// truncating rows to the header width. Rows with no content are dropped.
func NewTable(headers []string, rows [][]string) *Table {
	t := &Table{
		Headers: make([]string, len(headers)),
		index:   make(map[string]int, len(headers)),
	}
	for i, h := range headers {
		h = strings.TrimSpace(h)
		t.Headers[i] = h
		if _, dup := t.index[h]; !dup {
			t.index[h] = i
		}
	}

	for _, row := range rows {
		if isBlankRow(row) {
			continue
		}
		cells := make([]string, len(t.Headers))
		copy(cells, row)
		t.Rows = append(t.Rows, cells)
	}
	return t
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Has reports whether the column exists.
func (t *Table) Has(column string) bool {
	_, ok := t.index[column]
	return ok
}

// Require fails with a *MissingColumnError naming every absent column.
func (t *Table) Require(columns ...string) error {
	var missing []string
	for _, c := range columns {
		if !t.Has(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return &MissingColumnError{Columns: missing}
	}
	return nil
}

// IdentifierColumn returns "Student" when present, otherwise the first column.
func (t *Table) IdentifierColumn() string {
	if t.Has(ColumnStudent) {
		return ColumnStudent
	}
	if len(t.Headers) == 0 {
		return ""
	}
	return t.Headers[0]
}

// Cell returns the raw cell value, or "" when the column does not exist.
func (t *Table) Cell(row int, column string) string {
	i, ok := t.index[column]
	if !ok {
		return ""
	}
	return t.Rows[row][i]
}

// Float parses a numeric cell. Blank cells count as 0, the way a column sum
// skips missing values.
func (t *Table) Float(row int, column string) (float64, error) {
	if !t.Has(column) {
		return 0, &MissingColumnError{Columns: []string{column}}
	}
	raw := strings.TrimSpace(t.Cell(row, column))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, &CellError{Row: row + 2, Column: column, Value: raw, Err: err}
	}
	return v, nil
}

// ColumnEmpty reports whether the column is absent or has no non-empty cell.
func (t *Table) ColumnEmpty(column string) bool {
	if !t.Has(column) {
		return true
	}
	for r := range t.Rows {
		if t.Cell(r, column) != "" {
			return false
		}
	}
	return true
}

// WithColumn returns a copy of the table with the column set to values.
// An existing column is overwritten in place; a new one is appended.
func (t *Table) WithColumn(column string, values []string) *Table {
	headers := append([]string(nil), t.Headers...)
	i, exists := t.index[column]
	if !exists {
		headers = append(headers, column)
		i = len(headers) - 1
	}

	rows := make([][]string, len(t.Rows))
	for r, row := range t.Rows {
		cells := make([]string, len(headers))
		copy(cells, row)
		if r < len(values) {
			cells[i] = values[r]
		}
		rows[r] = cells
	}
	return NewTable(headers, rows)
}

// FormatFloat renders a number the shortest way that round-trips.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
