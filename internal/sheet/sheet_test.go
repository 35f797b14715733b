package sheet

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestReadCSV(t *testing.T) {
	input := "\ufeffStudent, Q1,Q2\nalice,1,0\n,,\nbob,0\n"

	table, err := Read("marks.csv", strings.NewReader(input), ReadOptions{})
	require.NoError(t, err)

	assert.Equal(t, []string{"Student", "Q1", "Q2"}, table.Headers)
	require.Equal(t, 2, table.Len(), "blank rows are dropped")
	assert.Equal(t, "alice", table.Cell(0, "Student"))
	assert.Equal(t, "", table.Cell(1, "Q2"), "short rows are padded")
}

func TestReadUnsupportedFormat(t *testing.T) {
	_, err := Read("marks.pdf", strings.NewReader(""), ReadOptions{})
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.True(t, IsInputError(err))
}

func TestReadEmptySheet(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("\n\n"))
	assert.ErrorIs(t, err, ErrEmptySheet)
}

func TestReadXLSX(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"Student", "Week_Date", "Q1"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{"alice", "2024-01-15", 1}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]interface{}{"bob", "", 0.5}))
	_, err := f.NewSheet("Other")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("Other", "A1", &[]interface{}{"Question Text"}))

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	table, err := Read("marks.xlsx", bytes.NewReader(buf.Bytes()), ReadOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Student", "Week_Date", "Q1"}, table.Headers)
	require.Equal(t, 2, table.Len())

	v, err := table.Float(1, "Q1")
	require.NoError(t, err)
	assert.Equal(t, 0.5, v)

	other, err := Read("marks.xlsx", bytes.NewReader(buf.Bytes()), ReadOptions{Sheet: "Other"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Question Text"}, other.Headers)

	_, err = Read("marks.xlsx", bytes.NewReader(buf.Bytes()), ReadOptions{Sheet: "Missing"})
	assert.ErrorIs(t, err, ErrSheetNotFound)
}

func TestReadXLSXRejectsGarbage(t *testing.T) {
	_, err := Read("marks.xlsx", strings.NewReader("not a zip"), ReadOptions{})
	assert.ErrorIs(t, err, ErrInvalidWorkbook)
	assert.True(t, IsInputError(err))
}

func TestTableRequire(t *testing.T) {
	table := NewTable([]string{"Student", "Q1"}, nil)

	assert.NoError(t, table.Require("Student", "Q1"))

	err := table.Require("Q1", "Q2", "Week_Date")
	var missing *MissingColumnError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, []string{"Q2", "Week_Date"}, missing.Columns)
	assert.Equal(t, "missing columns: Q2, Week_Date", err.Error())
}

func TestTableFloat(t *testing.T) {
	table := NewTable([]string{"Q1", "Q2"}, [][]string{{"1", "1"}, {" ", "1"}, {"yes", "1"}})
	require.Equal(t, 3, table.Len())

	v, err := table.Float(0, "Q1")
	require.NoError(t, err)
	assert.Equal(t, 1.0, v)

	v, err = table.Float(1, "Q1")
	require.NoError(t, err)
	assert.Equal(t, 0.0, v, "blank cells count as zero")

	_, err = table.Float(2, "Q1")
	var cellErr *CellError
	require.True(t, errors.As(err, &cellErr))
	assert.Equal(t, 4, cellErr.Row)
	assert.Equal(t, "Q1", cellErr.Column)
	assert.True(t, IsInputError(err))

	_, err = table.Float(0, "Q3")
	var missing *MissingColumnError
	assert.True(t, errors.As(err, &missing))
}

func TestIdentifierColumn(t *testing.T) {
	assert.Equal(t, "Student", NewTable([]string{"Roll", "Student"}, nil).IdentifierColumn())
	assert.Equal(t, "Roll", NewTable([]string{"Roll", "Name"}, nil).IdentifierColumn())
	assert.Equal(t, "", NewTable(nil, nil).IdentifierColumn())
}

func TestColumnEmpty(t *testing.T) {
	table := NewTable([]string{"Question Text", "BT_Level"}, [][]string{{"Define x", ""}, {"Explain y", ""}})
	assert.True(t, table.ColumnEmpty("BT_Level"))
	assert.True(t, table.ColumnEmpty("Missing"))
	assert.False(t, table.ColumnEmpty("Question Text"))
}

func TestWithColumn(t *testing.T) {
	table := NewTable([]string{"Question Text", "BT_Level"}, [][]string{{"Define x", ""}, {"Explain y", ""}})

	tagged := table.WithColumn("BT_Level", []string{"Remember", "Understand"}).
		WithColumn("BT_Score", []string{"5", "5"})

	assert.Equal(t, []string{"Question Text", "BT_Level", "BT_Score"}, tagged.Headers)
	assert.Equal(t, "Understand", tagged.Cell(1, "BT_Level"))
	assert.Equal(t, "5", tagged.Cell(0, "BT_Score"))
	assert.Equal(t, "", table.Cell(0, "BT_Level"), "source table is untouched")
}

func TestWriteCSVRoundTrip(t *testing.T) {
	table := NewTable([]string{"Question Text", "BT_Level"}, [][]string{{"Define, then list", "Remember"}, {"Say \"hi\"", "Unknown"}})

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, table))

	back, err := ReadCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, table.Headers, back.Headers)
	assert.Equal(t, table.Rows, back.Rows)
}

func TestWriteXLSX(t *testing.T) {
	table := NewTable([]string{"Week", "Accuracy"}, [][]string{{"W1", "80"}, {"W2", "60"}})

	var buf bytes.Buffer
	err := WriteXLSX(&buf, []Worksheet{
		{
			Name:    "Trend",
			Table:   table,
			Numeric: []string{"Accuracy"},
			Charts:  []ChartSpec{{Kind: LineChart, Title: "Trend", CategoryColumn: "Week", ValueColumn: "Accuracy", LastRow: -1}},
		},
		{Name: "Notes", Table: NewTable([]string{"Note"}, [][]string{{"ok"}})},
	})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Trend", "Notes"}, f.GetSheetList())

	back, err := ReadXLSX(bytes.NewReader(buf.Bytes()), "Trend")
	require.NoError(t, err)
	assert.Equal(t, table.Rows, back.Rows)
}

func TestWriteXLSXUnknownChartColumn(t *testing.T) {
	table := NewTable([]string{"Week"}, [][]string{{"W1"}})
	err := WriteXLSX(&bytes.Buffer{}, []Worksheet{{
		Name:   "Trend",
		Table:  table,
		Charts: []ChartSpec{{Kind: LineChart, CategoryColumn: "Week", ValueColumn: "Accuracy", LastRow: -1}},
	}})
	var missing *MissingColumnError
	assert.True(t, errors.As(err, &missing))
}
