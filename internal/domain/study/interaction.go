package study

import "time"

const (
	ResultRight = "Right"
	ResultWrong = "Wrong"

	DifficultyEasy   = "Easy"
	DifficultyMedium = "Medium"
	DifficultyHard   = "Hard"

	ConfidenceHigh = "High"
	ConfidenceLow  = "Low"
)

// Interaction is the recorded outcome of one attempt at one item. Table-quiz
// items additionally carry the submitted grid and the stored validator output.
type Interaction struct {
	Result           string           `json:"result"`
	Difficulty       string           `json:"difficulty"`
	Confidence       string           `json:"confidence"`
	TimeSpentSec     int              `json:"timeSpent"`
	RecordedAt       time.Time        `json:"recordedAt"`
	UserGrid         [][]*GridCell    `json:"userGrid,omitempty"`
	PlacementResults *PlacementResult `json:"placementResults,omitempty"`
}

func ValidResult(v string) bool {
	return v == ResultRight || v == ResultWrong
}

func ValidDifficulty(v string) bool {
	return v == DifficultyEasy || v == DifficultyMedium || v == DifficultyHard
}

func ValidConfidence(v string) bool {
	return v == ConfidenceHigh || v == ConfidenceLow
}
