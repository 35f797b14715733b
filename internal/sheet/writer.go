package sheet

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"
)

// WriteCSV writes the header and rows without an index column.
func WriteCSV(w io.Writer, t *Table) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(t.Headers); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	if err := writer.WriteAll(t.Rows); err != nil {
		return fmt.Errorf("failed to write csv rows: %w", err)
	}
	return nil
}

type ChartKind int

const (
	LineChart ChartKind = iota
	ColumnChart
)

// ChartSpec draws one series from a worksheet: categories from
// CategoryColumn, values from ValueColumn.
type ChartSpec struct {
	Kind           ChartKind
	Title          string
	CategoryColumn string
	ValueColumn    string
	// FirstRow and LastRow are 0-based data row bounds; LastRow < 0 means the
	// last row of the table.
	FirstRow int
	LastRow  int
}

// Worksheet is one table written to a workbook.
type Worksheet struct {
	Name  string
	Table *Table
	// Numeric columns are written as numbers so charts can plot them.
	Numeric []string
	Charts  []ChartSpec
}

// WriteXLSX renders worksheets into a new workbook.
func WriteXLSX(w io.Writer, sheets []Worksheet) error {
	f := excelize.NewFile()
	defer f.Close()

	for i, ws := range sheets {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), ws.Name); err != nil {
				return fmt.Errorf("failed to name sheet %q: %w", ws.Name, err)
			}
		} else if _, err := f.NewSheet(ws.Name); err != nil {
			return fmt.Errorf("failed to add sheet %q: %w", ws.Name, err)
		}

		if err := writeWorksheet(f, ws); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeWorksheet(f *excelize.File, ws Worksheet) error {
	numeric := make(map[int]bool, len(ws.Numeric))
	for _, col := range ws.Numeric {
		if i, ok := ws.Table.index[col]; ok {
			numeric[i] = true
		}
	}

	header := make([]interface{}, len(ws.Table.Headers))
	for i, h := range ws.Table.Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(ws.Name, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header of %q: %w", ws.Name, err)
	}

	for r, row := range ws.Table.Rows {
		values := make([]interface{}, len(row))
		for c, cell := range row {
			values[c] = cell
			if numeric[c] {
				if v, err := strconv.ParseFloat(cell, 64); err == nil {
					values[c] = v
				}
			}
		}
		anchor, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(ws.Name, anchor, &values); err != nil {
			return fmt.Errorf("failed to write row %d of %q: %w", r+2, ws.Name, err)
		}
	}

	for i, spec := range ws.Charts {
		if err := addChart(f, ws, spec, i); err != nil {
			return err
		}
	}
	return nil
}

func addChart(f *excelize.File, ws Worksheet, spec ChartSpec, n int) error {
	catIdx, ok := ws.Table.index[spec.CategoryColumn]
	if !ok {
		return &MissingColumnError{Columns: []string{spec.CategoryColumn}}
	}
	valIdx, ok := ws.Table.index[spec.ValueColumn]
	if !ok {
		return &MissingColumnError{Columns: []string{spec.ValueColumn}}
	}
	last := spec.LastRow
	if last < 0 {
		last = ws.Table.Len() - 1
	}
	if ws.Table.Len() == 0 || last < spec.FirstRow {
		return nil
	}

	catCol, err := excelize.ColumnNumberToName(catIdx + 1)
	if err != nil {
		return err
	}
	valCol, err := excelize.ColumnNumberToName(valIdx + 1)
	if err != nil {
		return err
	}
	first, end := spec.FirstRow+2, last+2

	chartType := excelize.Line
	if spec.Kind == ColumnChart {
		chartType = excelize.Col
	}

	// Charts stack to the right of the data, one below another.
	anchorCol, err := excelize.ColumnNumberToName(len(ws.Table.Headers) + 2)
	if err != nil {
		return err
	}
	anchor := fmt.Sprintf("%s%d", anchorCol, 1+n*20)

	chart := &excelize.Chart{
		Type: chartType,
		Series: []excelize.ChartSeries{{
			Name:       fmt.Sprintf("'%s'!$%s$1", ws.Name, valCol),
			Categories: fmt.Sprintf("'%s'!$%s$%d:$%s$%d", ws.Name, catCol, first, catCol, end),
			Values:     fmt.Sprintf("'%s'!$%s$%d:$%s$%d", ws.Name, valCol, first, valCol, end),
		}},
		Title: []excelize.RichTextRun{{Text: spec.Title}},
	}
	if err := f.AddChart(ws.Name, anchor, chart); err != nil {
		return fmt.Errorf("failed to add chart %q: %w", spec.Title, err)
	}
	return nil
}
