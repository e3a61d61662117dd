package srs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func TestNext_FirstSuccessSequence(t *testing.T) {
	state := NewState(now)
	expectedIntervals := []int{1, 6, 15}

	prevEase := state.EaseFactor
	for i, want := range expectedIntervals {
		var err error
		state, err = Next(state, 5, now)
		require.NoError(t, err)

		assert.Equal(t, want, state.IntervalDays, "review %d", i+1)
		assert.Equal(t, i+1, state.Repetitions)
		assert.GreaterOrEqual(t, state.EaseFactor, prevEase)
		prevEase = state.EaseFactor
	}
	assert.Equal(t, now.Add(15*24*time.Hour), state.NextReviewAt)
}

func TestNext_FailureResets(t *testing.T) {
	for quality := 0; quality < PassQuality; quality++ {
		prior := State{EaseFactor: 2.5, IntervalDays: 15, Repetitions: 3, NextReviewAt: now}

		state, err := Next(prior, quality, now)
		require.NoError(t, err)

		assert.Equal(t, 0, state.Repetitions)
		assert.Equal(t, 1, state.IntervalDays)
		assert.Equal(t, now.Add(24*time.Hour), state.NextReviewAt)
		require.NotNil(t, state.LastReviewedAt)
		assert.Equal(t, now, *state.LastReviewedAt)
	}
}

func TestNext_EaseFactor(t *testing.T) {
	tests := []struct {
		name     string
		ease     float64
		quality  int
		expected float64
	}{
		{name: "perfect recall is capped", ease: 2.5, quality: 5, expected: 2.5},
		{name: "perfect recall raises", ease: 2.0, quality: 5, expected: 2.1},
		{name: "hesitation keeps", ease: 2.0, quality: 4, expected: 2.0},
		{name: "effort lowers", ease: 2.5, quality: 3, expected: 2.36},
		{name: "failure lowers", ease: 2.5, quality: 1, expected: 1.96},
		{name: "blackout floors", ease: 1.5, quality: 0, expected: 1.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state, err := Next(State{EaseFactor: tt.ease, IntervalDays: 1}, tt.quality, now)
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, state.EaseFactor, 1e-9)
		})
	}
}

func TestNext_RoundsHalfToEven(t *testing.T) {
	state, err := Next(State{EaseFactor: 2.5, IntervalDays: 5, Repetitions: 2}, 5, now)
	require.NoError(t, err)
	assert.Equal(t, 12, state.IntervalDays)

	state, err = Next(State{EaseFactor: 2.5, IntervalDays: 7, Repetitions: 2}, 4, now)
	require.NoError(t, err)
	assert.Equal(t, 18, state.IntervalDays)
}

func TestNext_EaseStaysInBounds(t *testing.T) {
	state := NewState(now)
	for i := 0; i < 20; i++ {
		var err error
		state, err = Next(state, i%6, now)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, state.EaseFactor, MinEaseFactor)
		assert.LessOrEqual(t, state.EaseFactor, MaxEaseFactor)
	}
}

func TestNext_InvalidQuality(t *testing.T) {
	prior := NewState(now)
	for _, q := range []int{-1, 6} {
		state, err := Next(prior, q, now)
		assert.ErrorIs(t, err, ErrInvalidQuality)
		assert.Equal(t, prior, state)
	}
}

func TestQualityDescription(t *testing.T) {
	assert.Equal(t, "Complete blackout - No recall whatsoever", QualityDescription(0))
	assert.Equal(t, "Perfect - Instant and confident recall", QualityDescription(5))
	assert.Equal(t, "Unknown quality level", QualityDescription(7))
}
