package voiceleading

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Conceptual-Machines/harmonia-api/internal/theory"
)

func chord(symbol string) theory.Chord {
	return theory.ParseChordLenient(symbol)
}

func chords(symbols ...string) []theory.Chord {
	out := make([]theory.Chord, 0, len(symbols))
	for _, s := range symbols {
		out = append(out, chord(s))
	}
	return out
}

func TestAnalyzePair_ParallelFifths(t *testing.T) {
	tr := AnalyzePair(chord("C"), chord("D"))

	assert.Equal(t, "C", tr.FromChord)
	assert.Equal(t, "D", tr.ToChord)
	assert.Equal(t, []VoicePair{{0, 2}}, tr.ParallelFifths)
	assert.Empty(t, tr.ParallelOctaves)
	assert.Equal(t, []int{2, -2, -1}, tr.VoiceMovements)
	assert.Equal(t, 5, tr.TotalMovement)
	assert.InDelta(t, 1.67, tr.AvgMovement, 1e-9)
	assert.InDelta(t, 0.722, tr.SmoothnessScore, 1e-9)
	assert.Equal(t, 0, tr.CommonTones)
	assert.Equal(t, 2, tr.MotionTypes[Contrary])
	assert.Equal(t, 1, tr.MotionTypes[Similar])
}

func TestAnalyzePair_SmoothnessOrdering(t *testing.T) {
	extension := AnalyzePair(chord("Cmaj7"), chord("Cmaj9"))
	altered := AnalyzePair(chord("Cmaj7"), chord("F#7alt"))

	assert.InDelta(t, 1.0, extension.SmoothnessScore, 1e-9)
	assert.Equal(t, 4, extension.CommonTones)
	assert.Equal(t, 6, extension.MotionTypes[Static])

	assert.InDelta(t, 0.958, altered.SmoothnessScore, 1e-9)
	assert.Equal(t, []int{0, 0, 0, -1}, altered.VoiceMovements)
	assert.Equal(t, []string{"C", "E", "G"}, altered.CommonToneNotes)
	assert.Equal(t, 3, altered.MotionTypes[Oblique])
	assert.Equal(t, 3, altered.MotionTypes[Static])

	assert.Greater(t, extension.SmoothnessScore, altered.SmoothnessScore)
}

func TestVoiceMovements(t *testing.T) {
	tests := []struct {
		name     string
		from     []int
		to       []int
		expected []int
	}{
		{name: "held tone", from: []int{0}, to: []int{0}, expected: []int{0}},
		{name: "tritone resolves downward", from: []int{0}, to: []int{6}, expected: []int{-6}},
		{name: "first candidate wins a tie", from: []int{0}, to: []int{1, 11}, expected: []int{1}},
		{name: "first candidate wins a tie reversed", from: []int{0}, to: []int{11, 1}, expected: []int{-1}},
		{name: "wraps around the octave", from: []int{11}, to: []int{0}, expected: []int{1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, VoiceMovements(tt.from, tt.to))
		})
	}
}

func TestClassifyMotions(t *testing.T) {
	counts := ClassifyMotions([]int{0, 0, 2, 2, -1})

	assert.Equal(t, 1, counts[Static])
	assert.Equal(t, 6, counts[Oblique])
	assert.Equal(t, 1, counts[Parallel])
	assert.Equal(t, 0, counts[Similar])
	assert.Equal(t, 2, counts[Contrary])
}

func TestAnalyzeProgression(t *testing.T) {
	prog, err := AnalyzeProgression(chords("C", "D", "E"))
	require.NoError(t, err)

	assert.Equal(t, 2, prog.TotalTransitions)
	assert.Len(t, prog.Transitions, 2)
	assert.Equal(t, 2, prog.TotalViolations)
	assert.InDelta(t, 0.722, prog.OverallSmoothness, 1e-9)
	assert.Equal(t, "good", prog.SmoothnessRating)
	require.NotNil(t, prog.GuideTones)
	assert.Nil(t, prog.GuideTones.Sevenths)
}

func TestAnalyzeProgression_Short(t *testing.T) {
	prog, err := AnalyzeProgression(chords("Cmaj7"))
	require.NoError(t, err)

	assert.Equal(t, 1.0, prog.OverallSmoothness)
	assert.Equal(t, 0, prog.TotalViolations)
	assert.Empty(t, prog.Transitions)
	assert.Nil(t, prog.GuideTones)
}

func TestAnalyzeProgression_Empty(t *testing.T) {
	prog, err := AnalyzeProgression(nil)

	require.ErrorIs(t, err, ErrEmptyProgression)
	assert.Equal(t, "No chords provided", prog.Error)
	assert.Equal(t, 1.0, prog.OverallSmoothness)
}

func TestExtractGuideTones(t *testing.T) {
	gt := ExtractGuideTones(chords("Dm7", "G7", "Cmaj7"))
	require.NotNil(t, gt)

	assert.Equal(t, []string{"F", "B", "E"}, gt.Thirds.Notes)
	assert.Equal(t, []int{6, 5}, gt.Thirds.Movements)
	assert.InDelta(t, 5.5, gt.Thirds.AvgMovement, 1e-9)

	require.NotNil(t, gt.Sevenths)
	assert.Equal(t, []string{"C", "F", "B"}, gt.Sevenths.Notes)
	assert.Equal(t, []int{5, 6}, gt.Sevenths.Movements)
}

func TestExtractGuideTones_NormalizesDownwardMotion(t *testing.T) {
	gt := ExtractGuideTones(chords("C", "Am"))
	require.NotNil(t, gt)

	assert.Equal(t, []string{"E", "C"}, gt.Thirds.Notes)
	assert.Equal(t, []int{-4}, gt.Thirds.Movements)
	assert.InDelta(t, 4.0, gt.Thirds.AvgMovement, 1e-9)
	assert.Nil(t, gt.Sevenths)
}

func TestRating(t *testing.T) {
	tests := []struct {
		score    float64
		expected string
	}{
		{1.0, "excellent"},
		{0.9, "excellent"},
		{0.75, "good"},
		{0.5, "moderate"},
		{0.3, "rough"},
		{0.1, "very_rough"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, Rating(tt.score))
	}
}
