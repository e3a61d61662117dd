package tension

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Conceptual-Machines/harmonia-api/internal/theory"
)

func parse(symbols ...string) []theory.Chord {
	out := make([]theory.Chord, 0, len(symbols))
	for _, s := range symbols {
		out = append(out, theory.ParseChordLenient(s))
	}
	return out
}

func TestChordTension(t *testing.T) {
	tests := []struct {
		name               string
		chord              string
		prev               string
		key                string
		expectedTension    float64
		expectedDissonance float64
		expectedDistance   int
		expectedFactors    []string
	}{
		{
			name:               "tonic triad",
			chord:              "C",
			key:                "C",
			expectedTension:    0.055,
			expectedDissonance: 0.1,
			expectedDistance:   0,
			expectedFactors:    []string{"quality_tension: 0.10", "tonic_distance: 0.00", "internal_dissonance: 0.10"},
		},
		{
			name:               "dominant seventh",
			chord:              "G7",
			key:                "C",
			expectedTension:    0.358,
			expectedDissonance: 0.217,
			expectedDistance:   7,
			expectedFactors:    []string{"quality_tension: 0.40", "tonic_distance: 0.50", "internal_dissonance: 0.22"},
		},
		{
			name:               "tritone motion adds a factor",
			chord:              "Db7",
			prev:               "G7",
			key:                "C",
			expectedTension:    0.493,
			expectedDissonance: 0.217,
			expectedDistance:   1,
			expectedFactors:    []string{"quality_tension: 0.40", "tonic_distance: 0.80", "internal_dissonance: 0.22", "tritone_motion"},
		},
		{
			name:               "half step motion",
			chord:              "C",
			prev:               "B",
			key:                "C",
			expectedTension:    0.075,
			expectedDissonance: 0.1,
			expectedDistance:   0,
			expectedFactors:    []string{"quality_tension: 0.10", "tonic_distance: 0.00", "internal_dissonance: 0.10", "chromatic_motion"},
		},
		{
			name:               "unknown quality uses default tension and dissonance",
			chord:              "Cxyz",
			key:                "C",
			expectedTension:    0.2,
			expectedDissonance: 0.3,
			expectedDistance:   0,
			expectedFactors:    []string{"quality_tension: 0.40", "tonic_distance: 0.00", "internal_dissonance: 0.30"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var prev *theory.Chord
			if tt.prev != "" {
				p := theory.ParseChordLenient(tt.prev)
				prev = &p
			}

			point := ChordTension(theory.ParseChordLenient(tt.chord), tt.key, prev)

			assert.InDelta(t, tt.expectedTension, point.Tension, 1e-9)
			assert.InDelta(t, tt.expectedDissonance, point.Dissonance, 1e-9)
			assert.Equal(t, tt.expectedDistance, point.TonicDistance)
			assert.Equal(t, tt.expectedFactors, point.Factors)
		})
	}
}

func TestChordTension_UnreadableRoot(t *testing.T) {
	point := ChordTension(theory.Chord{Root: "H", Quality: "m"}, "C", nil)
	assert.InDelta(t, 0.3, point.Dissonance, 1e-9)
}

func TestChordTension_UnknownQualityDissonance(t *testing.T) {
	_, err := theory.LookupQuality("weird")
	require.Error(t, err)

	point := ChordTension(theory.Chord{Root: "C", Quality: "weird"}, "C", nil)
	assert.InDelta(t, 0.3, point.Dissonance, 1e-9)
	assert.Contains(t, point.Factors, "internal_dissonance: 0.30")
}

func TestChordTension_Bounds(t *testing.T) {
	roots := []string{"C", "C#", "Db", "D", "Eb", "E", "F", "F#", "G", "Ab", "A", "Bb", "B"}
	keys := []string{"C", "G", "F", "Bb", "E"}

	for _, key := range keys {
		for _, root := range roots {
			for _, quality := range theory.KnownQualities() {
				prev := theory.Chord{Root: "F#", Quality: "7alt"}
				point := ChordTension(theory.Chord{Root: root, Quality: quality}, key, &prev)
				require.GreaterOrEqual(t, point.Tension, 0.0, "%s%s in %s", root, quality, key)
				require.LessOrEqual(t, point.Tension, 1.0, "%s%s in %s", root, quality, key)
			}
		}
	}
}

func TestDissonance(t *testing.T) {
	assert.Equal(t, 0.0, Dissonance(nil))
	assert.Equal(t, 0.0, Dissonance([]int{0}))
	assert.InDelta(t, 0.8, Dissonance([]int{0, 1}), 1e-9)
	assert.InDelta(t, 0.6, Dissonance([]int{0, 6}), 1e-9)
	assert.InDelta(t, 0.3, Dissonance([]int{0, 10}), 1e-9)
	assert.InDelta(t, 0.1, Dissonance([]int{0, 7}), 1e-9)
}

func TestAnalyzeCurve_TwoFiveOne(t *testing.T) {
	curve, err := AnalyzeCurve(parse("Dm7", "G7", "Cmaj7"), "C", "")
	require.NoError(t, err)

	require.Len(t, curve.Points, 3)
	assert.Equal(t, theory.Major, curve.Mode)
	assert.Equal(t, []int{0, 1, 2}, []int{curve.Points[0].ChordIndex, curve.Points[1].ChordIndex, curve.Points[2].ChordIndex})
	assert.InDelta(t, 0.254, curve.Points[0].Tension, 1e-9)
	assert.InDelta(t, 0.358, curve.Points[1].Tension, 1e-9)
	assert.InDelta(t, 0.113, curve.Points[2].Tension, 1e-9)

	s := curve.Summary
	assert.Equal(t, 1, s.ClimaxPosition)
	assert.Equal(t, "G7", s.ClimaxChord)
	assert.InDelta(t, 0.358, s.MaxTension, 1e-9)
	assert.InDelta(t, 0.113, s.MinTension, 1e-9)
	assert.InDelta(t, 0.242, s.AverageTension, 1e-9)
	assert.Equal(t, 0, s.ResolutionCount)
	assert.Empty(t, s.Resolutions)
	assert.Equal(t, ArcArch, s.ArcShape)
	assert.Equal(t, "Very stable, consonant. Classic tension arc with build and release.", curve.Interpretation)

	recs := Recommendations(curve)
	require.Len(t, recs, 2)
	assert.Equal(t, "no_resolution", recs[0].Type)
	assert.Equal(t, "high", recs[0].Priority)
	assert.Equal(t, "increase_interest", recs[1].Type)
	assert.Equal(t, "low", recs[1].Priority)
}

func TestAnalyzeCurve_Empty(t *testing.T) {
	curve, err := AnalyzeCurve(nil, "C", theory.Major)

	require.ErrorIs(t, err, ErrEmptyProgression)
	assert.Equal(t, "No chords provided", curve.Error)
	assert.Empty(t, curve.Points)
}

func TestAnalyzeCurve_ShortIsFlat(t *testing.T) {
	curve, err := AnalyzeCurve(parse("C", "G7"), "C", theory.Major)
	require.NoError(t, err)
	assert.Equal(t, ArcFlat, curve.Summary.ArcShape)
}

func TestClassifyArc(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		expected ArcShape
	}{
		{name: "too short", values: []float64{0.1, 0.9}, expected: ArcFlat},
		{name: "arch", values: []float64{0.1, 0.8, 0.2}, expected: ArcArch},
		{name: "rising", values: []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6}, expected: ArcRising},
		{name: "falling", values: []float64{0.6, 0.5, 0.4, 0.3, 0.2, 0.1}, expected: ArcFalling},
		{name: "cyclic", values: []float64{0.5, 0.2, 0.5}, expected: ArcCyclic},
		{name: "complex", values: []float64{0.9, 0.1, 0.5}, expected: ArcComplex},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ClassifyArc(tt.values))
		})
	}
}

func TestResolutions(t *testing.T) {
	assert.Equal(t, []int{1, 3}, Resolutions([]float64{0.5, 0.2, 0.6, 0.3, 0.3}))
	assert.Empty(t, Resolutions([]float64{0.1, 0.2}))
}

func TestInterpret(t *testing.T) {
	assert.Equal(t, "Moderately stable. Returns to starting tension level.", Interpret(0.3, ArcCyclic))
	assert.Equal(t, "Tension-forward, dramatic. Builds tension toward the end.", Interpret(0.65, ArcRising))
	assert.Equal(t, "Highly dissonant, unresolved. No pattern detected.", Interpret(0.9, ArcShape("zigzag")))
}

func TestRecommendations_HighRisingTension(t *testing.T) {
	curve := Curve{Summary: Summary{AverageTension: 0.7, ArcShape: ArcRising}}

	recs := Recommendations(curve)

	types := make([]string, 0, len(recs))
	for _, r := range recs {
		types = append(types, r.Type)
	}
	assert.Equal(t, []string{"reduce_tension", "add_resolution", "no_resolution"}, types)
}
