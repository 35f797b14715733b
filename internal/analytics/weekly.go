// Package analytics holds the report computations: weekly BT accuracy,
// monthly aggregation with recommendations, and question-paper scoring.
// Everything here is a pure function of the parsed table.
package analytics

import (
	"fmt"

	"github.com/SAP-F-2025/bt-analytics-service/internal/models"
	"github.com/SAP-F-2025/bt-analytics-service/internal/sheet"
)

const ColumnWeekDate = "Week_Date"

// WeeklyQuestionColumns returns Q1..Q10.
func WeeklyQuestionColumns() []string {
	cols := make([]string, models.WeeklyQuestionCount)
	for i := range cols {
		cols[i] = fmt.Sprintf("Q%d", i+1)
	}
	return cols
}

// ParseWeekly validates the weekly sheet and converts it into records.
func ParseWeekly(t *sheet.Table) ([]models.WeeklyRecord, error) {
	questions := WeeklyQuestionColumns()
	if err := t.Require(append([]string{ColumnWeekDate}, questions...)...); err != nil {
		return nil, err
	}

	idCol := t.IdentifierColumn()
	records := make([]models.WeeklyRecord, 0, t.Len())
	for r := 0; r < t.Len(); r++ {
		rec := models.WeeklyRecord{
			Student: t.Cell(r, idCol),
			RawDate: t.Cell(r, ColumnWeekDate),
			Scores:  make(map[string]float64, len(questions)),
		}
		rec.Date = parseWeekDate(rec.RawDate)
		for _, q := range questions {
			v, err := t.Float(r, q)
			if err != nil {
				return nil, err
			}
			rec.Scores[q] = v
		}
		records = append(records, rec)
	}
	return records, nil
}

// ComputeWeekly derives the per-level and overall accuracy of one student.
func ComputeWeekly(rec models.WeeklyRecord) models.WeeklyResult {
	res := models.WeeklyResult{
		Student: rec.Student,
		Date:    rec.Date,
	}
	for i, lq := range models.WeeklyLevelMapping() {
		var sum float64
		for _, q := range lq.Questions {
			sum += rec.Scores[q]
		}
		res.LevelAccuracy[i] = sum / float64(len(lq.Questions)) * 100
	}
	for _, q := range WeeklyQuestionColumns() {
		res.TotalScore += rec.Scores[q]
	}
	res.OverallAccuracy = res.TotalScore / models.WeeklyQuestionCount * 100
	return res
}

// BuildWeeklyReport parses the sheet and computes every row.
func BuildWeeklyReport(t *sheet.Table) (*models.WeeklyReport, error) {
	records, err := ParseWeekly(t)
	if err != nil {
		return nil, err
	}
	report := &models.WeeklyReport{
		IdentifierColumn: t.IdentifierColumn(),
		Rows:             make([]models.WeeklyResult, 0, len(records)),
	}
	for _, rec := range records {
		report.Rows = append(report.Rows, ComputeWeekly(rec))
	}
	return report, nil
}

// WeeklyAccuracyColumn names the output column of a BT level, e.g. "BT3_Accuracy(%)".
func WeeklyAccuracyColumn(level int) string {
	return fmt.Sprintf("BT%d_Accuracy(%%)", level)
}

const (
	ColumnDate            = "Date"
	ColumnTotalScore      = "Total_Score"
	ColumnOverallAccuracy = "Overall_Accuracy(%)"
)

// WeeklyTable lays the report out with the dashboard's column names.
func WeeklyTable(report *models.WeeklyReport) *sheet.Table {
	headers := []string{report.IdentifierColumn, ColumnDate}
	for _, lq := range models.WeeklyLevelMapping() {
		headers = append(headers, WeeklyAccuracyColumn(lq.Level))
	}
	headers = append(headers, ColumnTotalScore, ColumnOverallAccuracy)

	rows := make([][]string, 0, len(report.Rows))
	for _, r := range report.Rows {
		date := ""
		if r.Date != nil {
			date = r.Date.Format("2006-01-02")
		}
		row := []string{r.Student, date}
		for _, acc := range r.LevelAccuracy {
			row = append(row, sheet.FormatFloat(acc))
		}
		row = append(row, sheet.FormatFloat(r.TotalScore), sheet.FormatFloat(r.OverallAccuracy))
		rows = append(rows, row)
	}
	return sheet.NewTable(headers, rows)
}

// WeeklyNumericColumns lists the WeeklyTable columns that hold numbers.
func WeeklyNumericColumns() []string {
	var cols []string
	for _, lq := range models.WeeklyLevelMapping() {
		cols = append(cols, WeeklyAccuracyColumn(lq.Level))
	}
	return append(cols, ColumnTotalScore, ColumnOverallAccuracy)
}
