package models

import (
	"time"

	"github.com/Conceptual-Machines/harmonia-api/internal/srs"
)

// ExerciseProgress is the spaced-repetition state of one exercise for one user
type ExerciseProgress struct {
	ID             uint       `gorm:"primarykey" json:"id"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	UserID         string     `gorm:"not null;uniqueIndex:idx_user_exercise;index" json:"user_id"`
	ExerciseID     string     `gorm:"not null;uniqueIndex:idx_user_exercise" json:"exercise_id"`
	EaseFactor     float64    `gorm:"not null" json:"ease_factor"`
	IntervalDays   int        `gorm:"not null" json:"interval"`
	Repetitions    int        `gorm:"not null" json:"repetitions"`
	TimesPracticed int        `gorm:"not null" json:"times_practiced"`
	LastQuality    *int       `json:"last_quality,omitempty"`
	LastReviewedAt *time.Time `json:"last_reviewed_at,omitempty"`
	NextReviewAt   time.Time  `gorm:"not null;index" json:"next_review_at"`
}

// NewExerciseProgress returns a row in the never-reviewed state
func NewExerciseProgress(userID, exerciseID string, now time.Time) *ExerciseProgress {
	p := &ExerciseProgress{UserID: userID, ExerciseID: exerciseID}
	p.ApplySchedule(srs.NewState(now))
	return p
}

// ScheduleState extracts the scheduler state
func (p *ExerciseProgress) ScheduleState() srs.State {
	return srs.State{
		EaseFactor:     p.EaseFactor,
		IntervalDays:   p.IntervalDays,
		Repetitions:    p.Repetitions,
		LastReviewedAt: p.LastReviewedAt,
		NextReviewAt:   p.NextReviewAt,
	}
}

// ApplySchedule copies scheduler state onto the row, normalized to UTC
func (p *ExerciseProgress) ApplySchedule(s srs.State) {
	p.EaseFactor = s.EaseFactor
	p.IntervalDays = s.IntervalDays
	p.Repetitions = s.Repetitions
	p.NextReviewAt = s.NextReviewAt.UTC()
	if s.LastReviewedAt != nil {
		t := s.LastReviewedAt.UTC()
		p.LastReviewedAt = &t
	} else {
		p.LastReviewedAt = nil
	}
}
