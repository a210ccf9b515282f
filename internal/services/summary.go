package services

import (
	_ "embed"
	"fmt"
	"math"
	"sync"

	"gopkg.in/yaml.v3"

	types "github.com/studyforge/studyforge-backend/internal/domain"
)

//go:embed summary_feedback.yaml
var summaryFeedbackYAML []byte

type feedbackBand struct {
	Min           *int   `yaml:"min"`
	MaxAvgSeconds *int   `yaml:"max_avg_seconds"`
	Label         string `yaml:"label"`
	Message       string `yaml:"message"`
}

type feedbackBands struct {
	AccuracyBands []feedbackBand `yaml:"accuracy_bands"`
	SpeedBands    []feedbackBand `yaml:"speed_bands"`
}

var (
	feedbackOnce   sync.Once
	loadedFeedback feedbackBands
	feedbackErr    error
)

func loadFeedbackBands() (feedbackBands, error) {
	feedbackOnce.Do(func() {
		feedbackErr = yaml.Unmarshal(summaryFeedbackYAML, &loadedFeedback)
	})
	return loadedFeedback, feedbackErr
}

// TableOutcome is the per-table line of a session summary.
type TableOutcome struct {
	ItemID            int64 `json:"itemId"`
	CorrectPlacements int   `json:"correctPlacements"`
	TotalCells        int   `json:"totalCells"`
	Accuracy          int   `json:"accuracy"`
	TimeSpentSec      int   `json:"timeSpent"`
	Perfect           bool  `json:"perfect"`
}

// SessionSummary aggregates the table interactions of one session. The counts
// are exact; the feedback strings are presentation heuristics driven by the
// embedded threshold bands.
type SessionSummary struct {
	SessionID          int            `json:"sessionId"`
	Tables             []TableOutcome `json:"tables"`
	CorrectPlacements  int            `json:"correctPlacements"`
	TotalCells         int            `json:"totalCells"`
	OverallAccuracy    int            `json:"overallAccuracy"`
	PerfectTables      int            `json:"perfectTables"`
	AvgSecondsPerTable int            `json:"avgSecondsPerTable"`
	Feedback           []string       `json:"feedback"`
}

// BuildSessionSummary sums placement counts across every table interaction in
// the session. Sessions with no table interactions yield an empty summary with
// zero accuracy.
func BuildSessionSummary(sess *types.StudySession) (*SessionSummary, error) {
	summary := &SessionSummary{
		SessionID: sess.SessionID,
		Tables:    []TableOutcome{},
		Feedback:  []string{},
	}

	totalSeconds := 0
	for i := range sess.Items {
		slot := &sess.Items[i]
		in, err := slot.InteractionValue()
		if err != nil {
			return nil, fmt.Errorf("decode interaction for item %d: %w", slot.ItemID, err)
		}
		if in == nil || in.PlacementResults == nil {
			continue
		}
		pr := in.PlacementResults
		outcome := TableOutcome{
			ItemID:            slot.ItemID,
			CorrectPlacements: pr.CorrectPlacements,
			TotalCells:        pr.TotalCells,
			Accuracy:          pr.Accuracy,
			TimeSpentSec:      in.TimeSpentSec,
			Perfect:           pr.Accuracy == 100,
		}
		summary.Tables = append(summary.Tables, outcome)
		summary.CorrectPlacements += pr.CorrectPlacements
		summary.TotalCells += pr.TotalCells
		if outcome.Perfect {
			summary.PerfectTables++
		}
		totalSeconds += in.TimeSpentSec
	}

	if summary.TotalCells > 0 {
		summary.OverallAccuracy = int(math.Round(float64(summary.CorrectPlacements) / float64(summary.TotalCells) * 100))
	}
	if n := len(summary.Tables); n > 0 {
		summary.AvgSecondsPerTable = totalSeconds / n
		summary.Feedback = feedbackFor(summary.OverallAccuracy, summary.AvgSecondsPerTable)
	}
	return summary, nil
}

func feedbackFor(accuracy, avgSeconds int) []string {
	out := []string{}
	bands, err := loadFeedbackBands()
	if err != nil {
		return out
	}
	for _, band := range bands.AccuracyBands {
		if band.Min == nil || accuracy >= *band.Min {
			if band.Message != "" {
				out = append(out, band.Message)
			}
			break
		}
	}
	for _, band := range bands.SpeedBands {
		if band.MaxAvgSeconds == nil || avgSeconds <= *band.MaxAvgSeconds {
			if band.Message != "" {
				out = append(out, band.Message)
			}
			break
		}
	}
	return out
}
