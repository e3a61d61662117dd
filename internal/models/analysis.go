package models

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/Conceptual-Machines/harmonia-api/internal/harmony"
	"github.com/Conceptual-Machines/harmonia-api/internal/reharm"
	"github.com/Conceptual-Machines/harmonia-api/internal/tension"
	"github.com/Conceptual-Machines/harmonia-api/internal/theory"
	"github.com/Conceptual-Machines/harmonia-api/internal/voiceleading"
)

// ChordInput accepts either a symbol ("Dm7") or an object ({"root":"D","quality":"m7"})
type ChordInput struct {
	theory.Chord
}

func (c *ChordInput) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var symbol string
		if err := json.Unmarshal(data, &symbol); err != nil {
			return err
		}
		c.Chord = theory.ParseChordLenient(symbol)
		return nil
	}

	var obj struct {
		Root    string `json:"root"`
		Quality string `json:"quality"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("chord must be a symbol string or a {root, quality} object: %w", err)
	}
	if obj.Root == "" {
		obj.Root = "C"
	}
	c.Chord = theory.Chord{Root: obj.Root, Quality: obj.Quality}
	return nil
}

// Chords unwraps a slice of inputs
func Chords(in []ChordInput) []theory.Chord {
	out := make([]theory.Chord, len(in))
	for i, c := range in {
		out[i] = c.Chord
	}
	return out
}

// ProgressionRequest is the body of the single-analyzer endpoints
type ProgressionRequest struct {
	Chords    []ChordInput `json:"chords" binding:"required"`
	Key       string       `json:"key,omitempty"`
	Mode      string       `json:"mode,omitempty"`
	JazzLevel int          `json:"jazz_level,omitempty"`
}

// ChordPairRequest is the body of the two-chord voice-leading endpoint
type ChordPairRequest struct {
	From *ChordInput `json:"from" binding:"required"`
	To   *ChordInput `json:"to" binding:"required"`
}

// BatchRequest analyzes several progressions at once
type BatchRequest struct {
	Items []ProgressionRequest `json:"items" binding:"required"`
}

// FullAnalysis combines every analyzer for one progression
type FullAnalysis struct {
	Key             string                   `json:"key"`
	Mode            theory.Mode              `json:"mode"`
	Functions       harmony.Analysis         `json:"functions"`
	Tension         tension.Curve            `json:"tension"`
	Recommendations []tension.Recommendation `json:"recommendations"`
	VoiceLeading    voiceleading.Progression `json:"voice_leading"`
	Reharmonization reharm.Result            `json:"reharmonization"`
}

// BatchItem is one entry of a batch response; Error is set when the item failed
type BatchItem struct {
	Index    int           `json:"index"`
	Analysis *FullAnalysis `json:"analysis,omitempty"`
	Error    string        `json:"error,omitempty"`
}

// ReviewRequest rates a practice session
type ReviewRequest struct {
	Quality *int `json:"quality" binding:"required"`
}

// ReviewResponse is the schedule after a review
type ReviewResponse struct {
	ExerciseID         string  `json:"exercise_id"`
	Quality            int     `json:"quality"`
	QualityDescription string  `json:"quality_description"`
	EaseFactor         float64 `json:"ease_factor"`
	IntervalDays       int     `json:"interval"`
	Repetitions        int     `json:"repetitions"`
	NextReviewAt       string  `json:"next_review_at"`
	TimesPracticed     int     `json:"times_practiced"`
}

// DueExercise is an exercise whose review date has passed
type DueExercise struct {
	ExerciseID   string  `json:"exercise_id"`
	NextReviewAt string  `json:"next_review_at"`
	IntervalDays int     `json:"interval"`
	EaseFactor   float64 `json:"ease_factor"`
	Repetitions  int     `json:"repetitions"`
	OverdueDays  int     `json:"overdue_days"`
}

// ReviewStats summarizes a user's review schedule
type ReviewStats struct {
	TotalDueToday     int     `json:"total_due_today"`
	TotalUpcomingWeek int     `json:"total_upcoming_week"`
	TotalOverdue      int     `json:"total_overdue"`
	AvgEaseFactor     float64 `json:"avg_ease_factor"`
	AvgInterval       float64 `json:"avg_interval"`
	TotalRepetitions  int     `json:"total_repetitions"`
}
