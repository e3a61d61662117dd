// Package srs implements the SM-2 spaced-repetition recurrence.
//
// The scheduler is a pure function of the prior state and a 0-5 quality
// rating. Loading and persisting state is left to the caller.
package srs

import (
	"errors"
	"fmt"
	"math"
	"time"
)

const (
	InitialEaseFactor = 2.5
	InitialInterval   = 1
	MinEaseFactor     = 1.3
	MaxEaseFactor     = 2.5

	MinQuality  = 0
	MaxQuality  = 5
	PassQuality = 3

	day = 24 * time.Hour
)

var ErrInvalidQuality = errors.New("quality must be between 0 and 5")

// State is the scheduling state of one item
type State struct {
	EaseFactor     float64    `json:"ease_factor"`
	IntervalDays   int        `json:"interval"`
	Repetitions    int        `json:"repetitions"`
	LastReviewedAt *time.Time `json:"last_reviewed_at"`
	NextReviewAt   time.Time  `json:"next_review_at"`
}

// NewState is the state of an item that has never been reviewed; it is due now
func NewState(now time.Time) State {
	return State{
		EaseFactor:   InitialEaseFactor,
		IntervalDays: InitialInterval,
		NextReviewAt: now,
	}
}

// Next applies one review. A failed review (quality < 3) restarts the
// repetition count at a one-day interval; the ease factor is updated either way.
func Next(state State, quality int, now time.Time) (State, error) {
	if quality < MinQuality || quality > MaxQuality {
		return state, fmt.Errorf("%w: got %d", ErrInvalidQuality, quality)
	}

	next := state
	if quality < PassQuality {
		next.Repetitions = 0
		next.IntervalDays = 1
	} else {
		switch next.Repetitions {
		case 0:
			next.IntervalDays = 1
		case 1:
			next.IntervalDays = 6
		default:
			next.IntervalDays = int(math.RoundToEven(float64(state.IntervalDays) * state.EaseFactor))
		}
		next.Repetitions++
	}

	q := float64(MaxQuality - quality)
	next.EaseFactor = clamp(state.EaseFactor+(0.1-q*(0.08+q*0.02)), MinEaseFactor, MaxEaseFactor)

	reviewed := now
	next.LastReviewedAt = &reviewed
	next.NextReviewAt = now.Add(time.Duration(next.IntervalDays) * day)
	return next, nil
}

var qualityDescriptions = map[int]string{
	0: "Complete blackout - No recall whatsoever",
	1: "Incorrect - But you recognized it when shown",
	2: "Incorrect - But it felt familiar/close",
	3: "Correct - But required significant effort",
	4: "Correct - With slight hesitation",
	5: "Perfect - Instant and confident recall",
}

// QualityDescription explains a quality rating
func QualityDescription(quality int) string {
	if desc, ok := qualityDescriptions[quality]; ok {
		return desc
	}
	return "Unknown quality level"
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
