package models

import (
	"time"

	"gorm.io/datatypes"
)

// ===== WEEKLY =====

// WeeklyQuestionCount is the number of Q columns in a weekly sheet.
const WeeklyQuestionCount = 10

// LevelQuestions lists the weekly question columns that belong to one BT level.
type LevelQuestions struct {
	Level     int
	Questions []string
}

// WeeklyLevelMapping returns the fixed BT level to question mapping used by
// the weekly accuracy report.
func WeeklyLevelMapping() []LevelQuestions {
	return []LevelQuestions{
		{Level: 1, Questions: []string{"Q1", "Q2"}},
		{Level: 2, Questions: []string{"Q3", "Q4"}},
		{Level: 3, Questions: []string{"Q5"}},
		{Level: 4, Questions: []string{"Q6", "Q7"}},
		{Level: 5, Questions: []string{"Q8"}},
		{Level: 6, Questions: []string{"Q9", "Q10"}},
	}
}

type WeeklyRecord struct {
	Student string
	RawDate string
	Date    *time.Time
	// Scores holds Q1..Q10 keyed by column name.
	Scores map[string]float64
}

type WeeklyResult struct {
	Student string     `json:"student"`
	Date    *time.Time `json:"date"`
	// LevelAccuracy[i] is BT{i+1}_Accuracy(%).
	LevelAccuracy   [6]float64 `json:"bt_level_accuracy"`
	TotalScore      float64    `json:"total_score"`
	OverallAccuracy float64    `json:"overall_accuracy"`
}

type WeeklyReport struct {
	IdentifierColumn string         `json:"identifier_column"`
	Rows             []WeeklyResult `json:"rows"`
}

// ===== MONTHLY =====

const (
	MonthlyWeekCount     = 4
	MonthlyQuestionCount = 10
)

// Recommendation fragments, joined with "; " in this order.
const (
	RecommendationSupport  = "Needs support on core concepts"
	RecommendationDecline  = "Declining trend — encourage revision"
	RecommendationHighRisk = "High risk student — 1-on-1 help suggested"
	RecommendationDefault  = "Keep up the good work"

	// HighRiskLabel is the predicted label that triggers RecommendationHighRisk.
	HighRiskLabel = "Poor"
)

type MonthlyRecord struct {
	Student string
	Month   string
	// Scores[w][i] is W{w+1}_Q{i+1}.
	Scores   [MonthlyWeekCount][MonthlyQuestionCount]float64
	Label    string
	HasLabel bool
}

type MonthlyResult struct {
	Student            string                    `json:"student"`
	Month              string                    `json:"month"`
	WeekAccuracy       [MonthlyWeekCount]float64 `json:"week_accuracy"`
	MonthlyAvgAccuracy float64                   `json:"monthly_avg_accuracy"`
	PredictedLabel     *string                   `json:"predicted_label,omitempty"`
	Recommendation     string                    `json:"recommendation"`
}

type TrendPoint struct {
	Week     string  `json:"week"`
	Accuracy float64 `json:"accuracy"`
}

type MonthlyReport struct {
	IdentifierColumn string          `json:"identifier_column"`
	Rows             []MonthlyResult `json:"rows"`
	Predicted        bool            `json:"predicted"`
	Notices          []string        `json:"notices,omitempty"`
	Warnings         []string        `json:"warnings,omitempty"`
}

// ===== QUESTION PAPER =====

type QuestionRecord struct {
	Text  string  `json:"question_text"`
	Level BTLevel `json:"bt_level"`
	Score int     `json:"bt_score"`
}

type LevelSummary struct {
	Level      BTLevel `json:"bt_level"`
	Count      int     `json:"count"`
	TotalScore int     `json:"total_score"`
	Percentage float64 `json:"percentage"`
}

type PaperSummary struct {
	Levels     []LevelSummary  `json:"levels"`
	TotalScore int             `json:"total_score"`
	Difficulty PaperDifficulty `json:"difficulty"`
}

type PaperReport struct {
	Questions  []QuestionRecord `json:"questions"`
	Summary    PaperSummary     `json:"summary"`
	AutoTagged bool             `json:"auto_tagged"`
	Notices    []string         `json:"notices,omitempty"`
}

// ===== RUN HISTORY =====

type ReportKind string

const (
	ReportWeekly  ReportKind = "weekly"
	ReportMonthly ReportKind = "monthly"
	ReportPaper   ReportKind = "paper"
)

// ReportRun records that a report was generated. The uploaded table itself
// is never stored.
type ReportRun struct {
	ID          string         `json:"id" gorm:"primaryKey;size:36"`
	Kind        ReportKind     `json:"kind" gorm:"not null;index;size:20"`
	SourceName  string         `json:"source_name" gorm:"size:255"`
	RowCount    int            `json:"row_count"`
	Summary     datatypes.JSON `json:"summary" gorm:"type:jsonb"`
	RequestedBy string         `json:"requested_by" gorm:"index;size:255"`
	CreatedAt   time.Time      `json:"created_at" gorm:"index"`
}

func (ReportRun) TableName() string {
	return "report_runs"
}
