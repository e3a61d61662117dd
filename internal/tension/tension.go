// Package tension scores harmonic tension per chord and summarizes the
// tension curve of a progression.
package tension

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/Conceptual-Machines/harmonia-api/internal/theory"
)

var ErrEmptyProgression = errors.New("no chords provided")

const (
	defaultQualityTension  = 0.4
	defaultIntervalTension = 0.5
	unresolvedDissonance   = 0.3

	qualityWeight    = 0.35
	intervalWeight   = 0.35
	dissonanceWeight = 0.2
	motionWeight     = 0.1

	cyclicThreshold = 0.1
)

// ArcShape classifies the overall tension curve
type ArcShape string

const (
	ArcArch    ArcShape = "arch"
	ArcRising  ArcShape = "rising"
	ArcFalling ArcShape = "falling"
	ArcCyclic  ArcShape = "cyclic"
	ArcComplex ArcShape = "complex"
	ArcFlat    ArcShape = "flat"
)

var arcDescriptions = map[ArcShape]string{
	ArcArch:    "Classic tension arc with build and release",
	ArcRising:  "Builds tension toward the end",
	ArcFalling: "Resolves tension over time",
	ArcCyclic:  "Returns to starting tension level",
	ArcComplex: "Complex tension pattern",
	ArcFlat:    "Steady tension level throughout",
}

// exact quality string -> tension
var qualityTension = map[string]float64{
	"":     0.1,
	"maj":  0.1,
	"m":    0.15,
	"min":  0.15,
	"maj7": 0.2,
	"m7":   0.25,
	"7":    0.4,
	"m7b5": 0.5,
	"dim":  0.55,
	"dim7": 0.6,
	"aug":  0.5,
	"7b9":  0.7,
	"7#9":  0.7,
	"7alt": 0.8,
	"7#5":  0.6,
	"7b5":  0.6,
	"sus4": 0.35,
	"sus2": 0.3,
}

// tension by semitone distance of the chord root from the tonic
var intervalTension = map[int]float64{
	0:  0.0,
	1:  0.8,
	2:  0.4,
	3:  0.3,
	4:  0.35,
	5:  0.2,
	6:  0.9,
	7:  0.5,
	8:  0.4,
	9:  0.25,
	10: 0.45,
	11: 0.7,
}

// Point is the tension of one chord
type Point struct {
	ChordIndex    int      `json:"chord_index"`
	Chord         string   `json:"chord"`
	Tension       float64  `json:"tension"`
	Dissonance    float64  `json:"dissonance"`
	TonicDistance int      `json:"tonic_distance"`
	Factors       []string `json:"factors"`
}

// Summary aggregates a tension curve
type Summary struct {
	AverageTension  float64  `json:"average_tension"`
	MaxTension      float64  `json:"max_tension"`
	MinTension      float64  `json:"min_tension"`
	ClimaxPosition  int      `json:"climax_position"`
	ClimaxChord     string   `json:"climax_chord"`
	ResolutionCount int      `json:"resolution_count"`
	Resolutions     []int    `json:"resolutions"`
	ArcShape        ArcShape `json:"arc_shape"`
}

// Curve is the tension analysis of a progression
type Curve struct {
	Key            string      `json:"key"`
	Mode           theory.Mode `json:"mode"`
	Points         []Point     `json:"tension_curve"`
	Summary        Summary     `json:"summary"`
	Interpretation string      `json:"interpretation"`
	Error          string      `json:"error,omitempty"`
}

// Recommendation is an advisory note derived from a Curve
type Recommendation struct {
	Type       string `json:"type"`
	Suggestion string `json:"suggestion"`
	Priority   string `json:"priority"`
}

// ChordTension scores a single chord against the key, optionally taking the
// root motion from prev into account. The result is clamped to [0, 1].
func ChordTension(chord theory.Chord, key string, prev *theory.Chord) Point {
	factors := make([]string, 0, 4)

	quality, ok := qualityTension[chord.Quality]
	if !ok {
		quality = defaultQualityTension
	}
	factors = append(factors, fmt.Sprintf("quality_tension: %.2f", quality))

	distance := theory.Mod12(chord.Semitone() - theory.NoteToSemitone(key))
	interval, ok := intervalTension[distance]
	if !ok {
		interval = defaultIntervalTension
	}
	factors = append(factors, fmt.Sprintf("tonic_distance: %.2f", interval))

	dissonance := chordDissonance(chord)
	factors = append(factors, fmt.Sprintf("internal_dissonance: %.2f", dissonance))

	motion := 0.0
	if prev != nil {
		switch theory.Interval(prev.Root, chord.Root) {
		case 1, 11:
			motion = 0.2
			factors = append(factors, "chromatic_motion")
		case 6:
			motion = 0.3
			factors = append(factors, "tritone_motion")
		}
	}

	level := quality*qualityWeight + interval*intervalWeight + dissonance*dissonanceWeight + motion*motionWeight

	return Point{
		Chord:         chord.Symbol(),
		Tension:       round3(math.Max(0, math.Min(1, level))),
		Dissonance:    round3(dissonance),
		TonicDistance: distance,
		Factors:       factors,
	}
}

// chordDissonance averages a dissonance weight over every pair of chord tones.
// A chord whose root or quality cannot be resolved scores a fixed middling value.
func chordDissonance(chord theory.Chord) float64 {
	root, err := theory.ParsePitchClass(chord.Root)
	if err != nil {
		return unresolvedDissonance
	}
	chordType, err := theory.LookupQuality(chord.Quality)
	if err != nil {
		return unresolvedDissonance
	}

	pitches := make([]int, len(chordType.Intervals))
	for i, iv := range chordType.Intervals {
		pitches[i] = theory.Mod12(root + iv)
	}
	return Dissonance(pitches)
}

// Dissonance scores a set of pitch classes: minor 2nds and major 7ths weigh 0.8,
// tritones 0.6, major 2nds and minor 7ths 0.3, everything else 0.1.
func Dissonance(pitches []int) float64 {
	if len(pitches) < 2 {
		return 0
	}

	total := 0.0
	pairs := 0
	for i := range pitches {
		for j := i + 1; j < len(pitches); j++ {
			switch theory.Mod12(pitches[j] - pitches[i]) {
			case 1, 11:
				total += 0.8
			case 6:
				total += 0.6
			case 2, 10:
				total += 0.3
			default:
				total += 0.1
			}
			pairs++
		}
	}
	return total / float64(pairs)
}

// AnalyzeCurve scores every chord in order and summarizes the curve.
// Empty input yields an error-shaped Curve together with ErrEmptyProgression.
func AnalyzeCurve(chords []theory.Chord, key string, mode theory.Mode) (Curve, error) {
	if mode == "" {
		mode = theory.Major
	}
	if len(chords) == 0 {
		return Curve{Key: key, Mode: mode, Error: "No chords provided"}, ErrEmptyProgression
	}

	points := make([]Point, len(chords))
	values := make([]float64, len(chords))
	for i := range chords {
		var prev *theory.Chord
		if i > 0 {
			prev = &chords[i-1]
		}
		points[i] = ChordTension(chords[i], key, prev)
		points[i].ChordIndex = i
		values[i] = points[i].Tension
	}

	climax := floats.MaxIdx(values)
	resolutions := Resolutions(values)
	arc := ClassifyArc(values)
	avg := stat.Mean(values, nil)

	return Curve{
		Key:    key,
		Mode:   mode,
		Points: points,
		Summary: Summary{
			AverageTension:  round3(avg),
			MaxTension:      floats.Max(values),
			MinTension:      floats.Min(values),
			ClimaxPosition:  climax,
			ClimaxChord:     points[climax].Chord,
			ResolutionCount: len(resolutions),
			Resolutions:     resolutions,
			ArcShape:        arc,
		},
		Interpretation: Interpret(avg, arc),
	}, nil
}

// Resolutions returns the interior local minima of a tension curve
func Resolutions(values []float64) []int {
	resolutions := []int{}
	for i := 1; i < len(values)-1; i++ {
		if values[i] < values[i-1] && values[i] <= values[i+1] {
			resolutions = append(resolutions, i)
		}
	}
	return resolutions
}

// ClassifyArc compares the first, middle and last thirds of the curve.
// Each third is divided by n/3+1, so the comparisons are relative only.
func ClassifyArc(values []float64) ArcShape {
	n := len(values)
	if n < 3 {
		return ArcFlat
	}

	div := float64(n/3 + 1)
	first := floats.Sum(values[:n/3]) / div
	middle := floats.Sum(values[n/3:2*n/3]) / div
	last := floats.Sum(values[2*n/3:]) / div

	switch {
	case middle > first && middle > last:
		return ArcArch
	case first < middle && middle < last:
		return ArcRising
	case first > middle && middle > last:
		return ArcFalling
	case math.Abs(first-last) < cyclicThreshold:
		return ArcCyclic
	default:
		return ArcComplex
	}
}

// Interpret renders a one-line reading of the average tension and arc
func Interpret(avg float64, arc ArcShape) string {
	var desc string
	switch {
	case avg < 0.25:
		desc = "very stable, consonant"
	case avg < 0.4:
		desc = "moderately stable"
	case avg < 0.55:
		desc = "balanced tension/release"
	case avg < 0.7:
		desc = "tension-forward, dramatic"
	default:
		desc = "highly dissonant, unresolved"
	}

	arcDesc, ok := arcDescriptions[arc]
	if !ok {
		arcDesc = "No pattern detected"
	}
	return fmt.Sprintf("%s%s. %s.", strings.ToUpper(desc[:1]), desc[1:], arcDesc)
}

// Recommendations suggests edits based on a curve's summary
func Recommendations(curve Curve) []Recommendation {
	recs := []Recommendation{}
	s := curve.Summary

	if s.AverageTension > 0.6 {
		recs = append(recs, Recommendation{
			Type:       "reduce_tension",
			Suggestion: "Consider adding more resolution points with tonic or dominant chords",
			Priority:   "high",
		})
	}
	if s.ArcShape == ArcRising {
		recs = append(recs, Recommendation{
			Type:       "add_resolution",
			Suggestion: "The progression lacks resolution. Consider ending with V-I or IV-I cadence",
			Priority:   "medium",
		})
	}
	if s.ResolutionCount == 0 {
		recs = append(recs, Recommendation{
			Type:       "no_resolution",
			Suggestion: "No clear resolution points found. Consider adding authentic or plagal cadences",
			Priority:   "high",
		})
	}
	if s.AverageTension < 0.25 {
		recs = append(recs, Recommendation{
			Type:       "increase_interest",
			Suggestion: "Progression is very consonant. Consider adding secondary dominants or borrowed chords for interest",
			Priority:   "low",
		})
	}
	return recs
}

func round3(x float64) float64 {
	return math.Round(x*1000) / 1000
}
