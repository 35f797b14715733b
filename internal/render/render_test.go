package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/bt-analytics-service/internal/models"
	"github.com/SAP-F-2025/bt-analytics-service/internal/sheet"
)

func TestFormatTableAlignsColumns(t *testing.T) {
	lines := formatTable(
		[]string{"Student", "Accuracy", "Note"},
		[][]string{
			{"Asha", "97.5", "Keep up the good work"},
			{"Ravindra", "8", "Declining trend — encourage revision"},
		},
		map[int]bool{1: true},
	)
	require.Len(t, lines, 3)
	assert.Equal(t, "Student   Accuracy  Note", lines[0])
	assert.Equal(t, "Asha          97.5  Keep up the good work", lines[1])
	assert.Equal(t, "Ravindra         8  Declining trend — encourage revision", lines[2])
}

func TestTableWritesEveryRow(t *testing.T) {
	tbl := sheet.NewTable([]string{"BT_Level", "Count"}, [][]string{{"Apply", "2"}, {"Create", "12"}})

	var buf bytes.Buffer
	require.NoError(t, Table(&buf, tbl, "Count"))
	assert.Equal(t, "BT_Level  Count\nApply         2\nCreate       12\n", buf.String())
}

func TestBarsScale(t *testing.T) {
	var buf bytes.Buffer
	err := Bars(&buf, "Accuracy", []Bar{{Label: "W1", Value: 100}, {Label: "W2", Value: 50}, {Label: "W3", Value: 0}}, 100, 30)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Accuracy", lines[0])

	full := strings.Count(lines[1], barGlyph)
	half := strings.Count(lines[2], barGlyph)
	assert.Greater(t, full, 0)
	assert.Equal(t, full/2, half)
	assert.Zero(t, strings.Count(lines[3], barGlyph))
	assert.True(t, strings.HasSuffix(lines[1], "100.00"))
	assert.True(t, strings.HasSuffix(lines[3], "  0.00"))
}

func TestBarsAutoMax(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Bars(&buf, "", []Bar{{Label: "Apply", Value: 4}, {Label: "Create", Value: 2}}, 0, 0))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, minBarWidth, strings.Count(lines[0], barGlyph))
	assert.Equal(t, minBarWidth/2, strings.Count(lines[1], barGlyph))
}

func TestBarsEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Bars(&buf, "nothing", nil, 100, 40))
	assert.Empty(t, buf.String())
}

func TestDifficulty(t *testing.T) {
	out := Difficulty(models.ClassifyDifficulty(160))
	assert.Contains(t, out, models.DifficultyExcellent)
	assert.Contains(t, out, "●")

	assert.Equal(t, "custom", Difficulty(models.PaperDifficulty{Label: "custom"}))
}
