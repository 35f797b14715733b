package models

import "strings"

// BTLevel is a Bloom's Taxonomy cognitive level.
type BTLevel string

const (
	LevelRemember   BTLevel = "Remember"
	LevelUnderstand BTLevel = "Understand"
	LevelApply      BTLevel = "Apply"
	LevelAnalyze    BTLevel = "Analyze"
	LevelEvaluate   BTLevel = "Evaluate"
	LevelCreate     BTLevel = "Create"

	// LevelUnknown is assigned when no keyword matches a question.
	LevelUnknown BTLevel = "Unknown"
)

// Score returns the paper weight of the level. Unknown and unmapped levels score 0.
func (l BTLevel) Score() int {
	switch l {
	case LevelRemember, LevelUnderstand:
		return 5
	case LevelApply, LevelAnalyze:
		return 10
	case LevelEvaluate, LevelCreate:
		return 20
	default:
		return 0
	}
}

func (l BTLevel) String() string {
	return string(l)
}

type keywordRule struct {
	level    BTLevel
	keywords []string
}

// Evaluated top to bottom; the first rule with a matching keyword wins.
var keywordRules = []keywordRule{
	{level: LevelRemember, keywords: []string{"define", "list", "name", "state"}},
	{level: LevelUnderstand, keywords: []string{"explain", "describe", "summarize"}},
	{level: LevelApply, keywords: []string{"apply", "use", "solve"}},
	{level: LevelAnalyze, keywords: []string{"analyze", "differentiate", "compare"}},
	{level: LevelEvaluate, keywords: []string{"evaluate", "justify", "critique"}},
	{level: LevelCreate, keywords: []string{"create", "design", "develop"}},
}

// ClassifyQuestion tags a question by plain substring match of the keyword
// sets against the lower-cased text. "Unknown" when nothing matches.
func ClassifyQuestion(text string) BTLevel {
	lower := strings.ToLower(text)
	for _, rule := range keywordRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.level
			}
		}
	}
	return LevelUnknown
}

// Paper difficulty labels.
const (
	DifficultyExcellent = "Excellent (High-order focused)"
	DifficultyModerate  = "Moderate (Balanced)"
	DifficultyLow       = "Low cognitive load"

	excellentThreshold = 150
	moderateThreshold  = 100
)

// Indicator is the traffic-light marker shown next to a difficulty label.
type Indicator string

const (
	IndicatorGreen  Indicator = "green"
	IndicatorYellow Indicator = "yellow"
	IndicatorRed    Indicator = "red"
)

type PaperDifficulty struct {
	Label     string    `json:"label"`
	Indicator Indicator `json:"indicator"`
}

// ClassifyDifficulty maps a paper's total BT score onto its cognitive load tier.
func ClassifyDifficulty(totalScore int) PaperDifficulty {
	switch {
	case totalScore >= excellentThreshold:
		return PaperDifficulty{Label: DifficultyExcellent, Indicator: IndicatorGreen}
	case totalScore >= moderateThreshold:
		return PaperDifficulty{Label: DifficultyModerate, Indicator: IndicatorYellow}
	default:
		return PaperDifficulty{Label: DifficultyLow, Indicator: IndicatorRed}
	}
}
