package analytics

import (
	"math"
	"sort"
	"strconv"

	"github.com/SAP-F-2025/bt-analytics-service/internal/models"
	"github.com/SAP-F-2025/bt-analytics-service/internal/sheet"
)

const (
	ColumnQuestionText = "Question Text"
	ColumnBTLevel      = "BT_Level"
	ColumnBTScore      = "BT_Score"
	ColumnCount        = "Count"
	ColumnPercentage   = "Percentage"

	NoticeAutoTagged = "BT_Level column missing or empty – auto-tagging questions."

	// ExportFileName is the download name of the tagged paper.
	ExportFileName = "BT_Analyzed_Question_Paper.csv"
)

// TagQuestions resolves the level and score of every question. Levels come
// from BT_Level when that column has any value; otherwise every question is
// classified by keyword and autoTagged is true.
func TagQuestions(t *sheet.Table) (questions []models.QuestionRecord, autoTagged bool, err error) {
	autoTagged = t.ColumnEmpty(ColumnBTLevel)
	if autoTagged {
		if err := t.Require(ColumnQuestionText); err != nil {
			return nil, false, err
		}
	}

	questions = make([]models.QuestionRecord, 0, t.Len())
	for r := 0; r < t.Len(); r++ {
		q := models.QuestionRecord{Text: t.Cell(r, ColumnQuestionText)}
		if autoTagged {
			q.Level = models.ClassifyQuestion(q.Text)
		} else {
			q.Level = models.BTLevel(t.Cell(r, ColumnBTLevel))
		}
		q.Score = q.Level.Score()
		questions = append(questions, q)
	}
	return questions, autoTagged, nil
}

// SummarizePaper groups questions by level in level-name order. Questions
// without a level count toward the total score but not toward any group or
// the percentage base.
func SummarizePaper(questions []models.QuestionRecord) models.PaperSummary {
	groups := make(map[models.BTLevel]*models.LevelSummary)
	var grouped, total int
	for _, q := range questions {
		total += q.Score
		if q.Level == "" {
			continue
		}
		g, ok := groups[q.Level]
		if !ok {
			g = &models.LevelSummary{Level: q.Level}
			groups[q.Level] = g
		}
		g.Count++
		g.TotalScore += q.Score
		grouped++
	}

	summary := models.PaperSummary{
		Levels:     make([]models.LevelSummary, 0, len(groups)),
		TotalScore: total,
		Difficulty: models.ClassifyDifficulty(total),
	}
	for _, g := range groups {
		g.Percentage = round2(float64(g.Count) / float64(grouped) * 100)
		summary.Levels = append(summary.Levels, *g)
	}
	sort.Slice(summary.Levels, func(i, j int) bool {
		return summary.Levels[i].Level < summary.Levels[j].Level
	})
	return summary
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// BuildPaperReport tags and summarizes a question paper.
func BuildPaperReport(t *sheet.Table) (*models.PaperReport, error) {
	questions, autoTagged, err := TagQuestions(t)
	if err != nil {
		return nil, err
	}
	report := &models.PaperReport{
		Questions:  questions,
		Summary:    SummarizePaper(questions),
		AutoTagged: autoTagged,
	}
	if autoTagged {
		report.Notices = append(report.Notices, NoticeAutoTagged)
	}
	return report, nil
}

// TaggedTable returns the uploaded table with BT_Level and BT_Score set,
// keeping every original column.
func TaggedTable(source *sheet.Table, questions []models.QuestionRecord) *sheet.Table {
	levels := make([]string, len(questions))
	scores := make([]string, len(questions))
	for i, q := range questions {
		levels[i] = string(q.Level)
		scores[i] = strconv.Itoa(q.Score)
	}
	return source.WithColumn(ColumnBTLevel, levels).WithColumn(ColumnBTScore, scores)
}

// SummaryTable lays out the per-level summary.
func SummaryTable(summary models.PaperSummary) *sheet.Table {
	rows := make([][]string, 0, len(summary.Levels))
	for _, l := range summary.Levels {
		rows = append(rows, []string{
			string(l.Level),
			strconv.Itoa(l.Count),
			strconv.Itoa(l.TotalScore),
			sheet.FormatFloat(l.Percentage),
		})
	}
	return sheet.NewTable([]string{ColumnBTLevel, ColumnCount, ColumnTotalScore, ColumnPercentage}, rows)
}

// SummaryNumericColumns lists the SummaryTable columns that hold numbers.
func SummaryNumericColumns() []string {
	return []string{ColumnCount, ColumnTotalScore, ColumnPercentage}
}
