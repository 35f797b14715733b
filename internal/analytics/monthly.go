package analytics

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/SAP-F-2025/bt-analytics-service/internal/models"
	"github.com/SAP-F-2025/bt-analytics-service/internal/predict"
	"github.com/SAP-F-2025/bt-analytics-service/internal/sheet"
)

const (
	ColumnMonth              = "Month"
	ColumnMonthlyLabel       = "Monthly_Label"
	ColumnMonthlyAvgAccuracy = "Monthly_Avg_Accuracy"
	ColumnPredictedLabel     = "Predicted_Label"
	ColumnRecommendation     = "Recommendation"

	NoticeLabelMissing = "Monthly_Label column not found for training."
)

var (
	ErrStudentNotFound = errors.New("student not found in report")
	ErrEmptyLabel      = errors.New("Monthly_Label has empty values")
)

// MonthlyQuestionColumn names W{week}_Q{question}, both 1-based.
func MonthlyQuestionColumn(week, question int) string {
	return fmt.Sprintf("W%d_Q%d", week, question)
}

// MonthlyWeekColumn names W{week}_Accuracy(%).
func MonthlyWeekColumn(week int) string {
	return fmt.Sprintf("W%d_Accuracy(%%)", week)
}

// MonthlyQuestionColumns returns the 40 feature columns, week-major.
func MonthlyQuestionColumns() []string {
	cols := make([]string, 0, models.MonthlyWeekCount*models.MonthlyQuestionCount)
	for w := 1; w <= models.MonthlyWeekCount; w++ {
		for i := 1; i <= models.MonthlyQuestionCount; i++ {
			cols = append(cols, MonthlyQuestionColumn(w, i))
		}
	}
	return cols
}

// ParseMonthly validates the combined four-week sheet.
func ParseMonthly(t *sheet.Table) ([]models.MonthlyRecord, error) {
	if err := t.Require(append([]string{ColumnMonth}, MonthlyQuestionColumns()...)...); err != nil {
		return nil, err
	}

	idCol := t.IdentifierColumn()
	hasLabel := t.Has(ColumnMonthlyLabel)
	records := make([]models.MonthlyRecord, 0, t.Len())
	for r := 0; r < t.Len(); r++ {
		rec := models.MonthlyRecord{
			Student:  t.Cell(r, idCol),
			Month:    t.Cell(r, ColumnMonth),
			HasLabel: hasLabel,
		}
		if hasLabel {
			rec.Label = t.Cell(r, ColumnMonthlyLabel)
		}
		for w := 0; w < models.MonthlyWeekCount; w++ {
			for i := 0; i < models.MonthlyQuestionCount; i++ {
				v, err := t.Float(r, MonthlyQuestionColumn(w+1, i+1))
				if err != nil {
					return nil, err
				}
				rec.Scores[w][i] = v
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

// ComputeMonthly derives weekly and average accuracy. The recommendation is
// filled from those figures alone; ApplyPredictions refreshes it.
func ComputeMonthly(rec models.MonthlyRecord) models.MonthlyResult {
	res := models.MonthlyResult{
		Student: rec.Student,
		Month:   rec.Month,
	}
	var total float64
	for w, week := range rec.Scores {
		var sum float64
		for _, v := range week {
			sum += v
		}
		res.WeekAccuracy[w] = sum / models.MonthlyQuestionCount * 100
		total += res.WeekAccuracy[w]
	}
	res.MonthlyAvgAccuracy = total / models.MonthlyWeekCount
	res.Recommendation = Recommend(res)
	return res
}

// Recommend builds the advice string for one student.
func Recommend(r models.MonthlyResult) string {
	var recos []string
	if r.MonthlyAvgAccuracy < 50 {
		recos = append(recos, models.RecommendationSupport)
	}
	if r.WeekAccuracy[models.MonthlyWeekCount-1] < r.WeekAccuracy[0] {
		recos = append(recos, models.RecommendationDecline)
	}
	if r.PredictedLabel != nil && *r.PredictedLabel == models.HighRiskLabel {
		recos = append(recos, models.RecommendationHighRisk)
	}
	if len(recos) == 0 {
		return models.RecommendationDefault
	}
	return strings.Join(recos, "; ")
}

// Trend returns the W1..W4 accuracy series of the first row matching student.
func Trend(report *models.MonthlyReport, student string) ([]models.TrendPoint, error) {
	for _, r := range report.Rows {
		if r.Student != student {
			continue
		}
		points := make([]models.TrendPoint, models.MonthlyWeekCount)
		for w := range points {
			points[w] = models.TrendPoint{Week: fmt.Sprintf("W%d", w+1), Accuracy: r.WeekAccuracy[w]}
		}
		return points, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrStudentNotFound, student)
}

// PredictLabels fits the predictor on the 40 per-question features against
// the ground-truth labels and predicts every row in-sample.
func PredictLabels(ctx context.Context, p predict.Predictor, records []models.MonthlyRecord) ([]string, error) {
	features := make([][]float64, len(records))
	raw := make([]string, len(records))
	for i, rec := range records {
		if strings.TrimSpace(rec.Label) == "" {
			return nil, fmt.Errorf("%w (row %d)", ErrEmptyLabel, i+2)
		}
		raw[i] = rec.Label
		row := make([]float64, 0, models.MonthlyWeekCount*models.MonthlyQuestionCount)
		for _, week := range rec.Scores {
			row = append(row, week[:]...)
		}
		features[i] = row
	}

	enc := predict.FitLabelEncoder(raw)
	codes, err := enc.Encode(raw)
	if err != nil {
		return nil, err
	}
	preds, err := p.Predict(ctx, features, codes)
	if err != nil {
		return nil, err
	}
	return enc.Decode(preds)
}

// ApplyPredictions attaches predicted labels and recomputes recommendations.
func ApplyPredictions(rows []models.MonthlyResult, labels []string) {
	for i := range rows {
		if i >= len(labels) {
			break
		}
		label := labels[i]
		rows[i].PredictedLabel = &label
		rows[i].Recommendation = Recommend(rows[i])
	}
}

type MonthlyOptions struct {
	// Predict runs the classifier when the label column is present.
	Predict   bool
	Predictor predict.Predictor
}

// BuildMonthlyReport computes the monthly table. Prediction problems never
// fail the report: a missing label column becomes a notice and a predictor
// error becomes a warning.
func BuildMonthlyReport(ctx context.Context, t *sheet.Table, opts MonthlyOptions) (*models.MonthlyReport, error) {
	records, err := ParseMonthly(t)
	if err != nil {
		return nil, err
	}

	report := &models.MonthlyReport{
		IdentifierColumn: t.IdentifierColumn(),
		Rows:             make([]models.MonthlyResult, 0, len(records)),
	}
	for _, rec := range records {
		report.Rows = append(report.Rows, ComputeMonthly(rec))
	}

	if !opts.Predict {
		return report, nil
	}
	if !t.Has(ColumnMonthlyLabel) {
		report.Notices = append(report.Notices, NoticeLabelMissing)
		return report, nil
	}
	if opts.Predictor == nil {
		report.Warnings = append(report.Warnings, "ML Error: no predictor configured")
		return report, nil
	}

	labels, err := PredictLabels(ctx, opts.Predictor, records)
	if err != nil {
		report.Warnings = append(report.Warnings, fmt.Sprintf("ML Error: %v", err))
		return report, nil
	}
	ApplyPredictions(report.Rows, labels)
	report.Predicted = true
	return report, nil
}

// MonthlyTable lays the report out with the dashboard's column names.
func MonthlyTable(report *models.MonthlyReport) *sheet.Table {
	headers := []string{report.IdentifierColumn, ColumnMonth}
	for w := 1; w <= models.MonthlyWeekCount; w++ {
		headers = append(headers, MonthlyWeekColumn(w))
	}
	headers = append(headers, ColumnMonthlyAvgAccuracy)
	if report.Predicted {
		headers = append(headers, ColumnPredictedLabel)
	}
	headers = append(headers, ColumnRecommendation)

	rows := make([][]string, 0, len(report.Rows))
	for _, r := range report.Rows {
		row := []string{r.Student, r.Month}
		for _, acc := range r.WeekAccuracy {
			row = append(row, sheet.FormatFloat(acc))
		}
		row = append(row, sheet.FormatFloat(r.MonthlyAvgAccuracy))
		if report.Predicted {
			label := ""
			if r.PredictedLabel != nil {
				label = *r.PredictedLabel
			}
			row = append(row, label)
		}
		row = append(row, r.Recommendation)
		rows = append(rows, row)
	}
	return sheet.NewTable(headers, rows)
}

// MonthlyNumericColumns lists the MonthlyTable columns that hold numbers.
func MonthlyNumericColumns() []string {
	var cols []string
	for w := 1; w <= models.MonthlyWeekCount; w++ {
		cols = append(cols, MonthlyWeekColumn(w))
	}
	return append(cols, ColumnMonthlyAvgAccuracy)
}

const (
	ColumnWeek     = "Week"
	ColumnAccuracy = "Accuracy"
)

// TrendTable turns a trend series into a Week/Accuracy table.
func TrendTable(points []models.TrendPoint) *sheet.Table {
	rows := make([][]string, 0, len(points))
	for _, p := range points {
		rows = append(rows, []string{p.Week, sheet.FormatFloat(p.Accuracy)})
	}
	return sheet.NewTable([]string{ColumnWeek, ColumnAccuracy}, rows)
}
