package sheet

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported spreadsheet format")
	ErrEmptySheet        = errors.New("spreadsheet has no header row")
	ErrSheetNotFound     = errors.New("sheet not found in workbook")
	ErrInvalidWorkbook   = errors.New("file is not a readable xlsx workbook")
)

// MissingColumnError lists required columns absent from an upload.
type MissingColumnError struct {
	Columns []string
}

func (e *MissingColumnError) Error() string {
	if len(e.Columns) == 1 {
		return fmt.Sprintf("missing column: %s", e.Columns[0])
	}
	return fmt.Sprintf("missing columns: %s", strings.Join(e.Columns, ", "))
}

// CellError reports a cell that could not be read as a number.
// Row is the 1-based spreadsheet row, header included.
type CellError struct {
	Row    int
	Column string
	Value  string
	Err    error
}

func (e *CellError) Error() string {
	return fmt.Sprintf("row %d, column %s: invalid number %q", e.Row, e.Column, e.Value)
}

func (e *CellError) Unwrap() error {
	return e.Err
}
