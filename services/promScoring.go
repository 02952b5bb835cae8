package services

import (
	"SurgiFlow/templates"
)

const (
	ScoreTypeTotal          = "total"
	ScoreTypeNotImplemented = "not_implemented"

	// defaultQuestionMax applies when the first question declares no range_max.
	defaultQuestionMax = 5
)

// Score is the scoring payload returned with a submission and stored on the
// completed schedule.
type Score struct {
	PromName    string `json:"prom_name"`
	Type        string `json:"type"`
	Value       *int   `json:"value"`
	MaxPossible *int   `json:"max_possible,omitempty"`
}

// Tally is the raw result of a submission.
type Tally struct {
	Total    int
	Answered int
}

// Scorer computes the score for one template.
type Scorer func(tmpl *templates.Template, tally Tally) Score

var scorers = map[string]Scorer{
	"OxfordKneeScore": totalScorer,
}

// ScorePROM scores a submission with the rule registered for promName.
func ScorePROM(promName string, tmpl *templates.Template, tally Tally) Score {
	scorer, ok := scorers[promName]
	if !ok {
		return Score{PromName: promName, Type: ScoreTypeNotImplemented}
	}
	score := scorer(tmpl, tally)
	score.PromName = promName
	return score
}

// totalScorer sums answers; the maximum assumes every question shares the
// first question's upper bound.
func totalScorer(tmpl *templates.Template, tally Tally) Score {
	perQuestion := defaultQuestionMax
	if len(tmpl.Questions) > 0 && tmpl.Questions[0].RangeMax != nil {
		perQuestion = *tmpl.Questions[0].RangeMax
	}
	value := tally.Total
	maxPossible := tally.Answered * perQuestion
	return Score{Type: ScoreTypeTotal, Value: &value, MaxPossible: &maxPossible}
}
