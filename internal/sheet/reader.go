package sheet

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ReadOptions controls how an upload is parsed.
type ReadOptions struct {
	// Sheet selects a worksheet by name; empty means the first sheet.
	Sheet string
}

// Read parses an uploaded spreadsheet, choosing the parser from the file
// extension.
func Read(name string, r io.Reader, opts ReadOptions) (*Table, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		return ReadXLSX(r, opts.Sheet)
	case ".csv":
		return ReadCSV(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(name))
	}
}

// ReadXLSX reads a worksheet with raw cell values, so numbers keep full
// precision and dates arrive as Excel serial numbers.
func ReadXLSX(r io.Reader, sheetName string) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidWorkbook, err)
	}
	defer f.Close()

	if sheetName == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, ErrEmptySheet
		}
		sheetName = sheets[0]
	} else if idx, err := f.GetSheetIndex(sheetName); err != nil || idx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrSheetNotFound, sheetName)
	}

	rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheetName, err)
	}
	return fromRecords(rows)
}

// ReadCSV reads a comma separated file with a header row.
func ReadCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	if len(records) > 0 && len(records[0]) > 0 {
		records[0][0] = strings.TrimPrefix(records[0][0], "\ufeff")
	}
	return fromRecords(records)
}

func fromRecords(records [][]string) (*Table, error) {
	for i, header := range records {
		if isBlankRow(header) {
			continue
		}
		return NewTable(header, records[i+1:]), nil
	}
	return nil, ErrEmptySheet
}

// IsInputError reports whether err came from malformed upload content rather
// than an infrastructure failure.
func IsInputError(err error) bool {
	var missing *MissingColumnError
	var cell *CellError
	var parse *csv.ParseError
	return errors.As(err, &missing) ||
		errors.As(err, &cell) ||
		errors.As(err, &parse) ||
		errors.Is(err, ErrUnsupportedFormat) ||
		errors.Is(err, ErrInvalidWorkbook) ||
		errors.Is(err, ErrEmptySheet) ||
		errors.Is(err, ErrSheetNotFound)
}
