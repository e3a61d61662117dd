// Package voiceleading measures how individual voices move between chords.
package voiceleading

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/Conceptual-Machines/harmonia-api/internal/theory"
)

var ErrEmptyProgression = errors.New("no chords provided")

// half an octave: moving this far on average scores zero smoothness
const maxAverageMovement = 6.0

// MotionType classifies a pair of voice movements
type MotionType string

const (
	Parallel MotionType = "parallel"
	Similar  MotionType = "similar"
	Contrary MotionType = "contrary"
	Oblique  MotionType = "oblique"
	Static   MotionType = "static"
)

// VoicePair is a pair of voice indices in chord-tone order
type VoicePair [2]int

// Transition is the voice-leading analysis of two adjacent chords
type Transition struct {
	FromChord       string             `json:"from_chord"`
	ToChord         string             `json:"to_chord"`
	SmoothnessScore float64            `json:"smoothness_score"`
	TotalMovement   int                `json:"total_movement"`
	AvgMovement     float64            `json:"avg_movement"`
	CommonTones     int                `json:"common_tones"`
	CommonToneNotes []string           `json:"common_tone_notes"`
	MotionTypes     map[MotionType]int `json:"motion_types"`
	ParallelFifths  []VoicePair        `json:"parallel_fifths"`
	ParallelOctaves []VoicePair        `json:"parallel_octaves"`
	VoiceMovements  []int              `json:"voice_movements"`
}

// GuideToneLine follows one guide tone through a progression
type GuideToneLine struct {
	Notes       []string `json:"notes"`
	Movements   []int    `json:"movements"`
	AvgMovement float64  `json:"avg_movement"`
}

// GuideTones holds the 3rd and 7th lines. Sevenths is nil when no chord has a 7th.
type GuideTones struct {
	Thirds   GuideToneLine  `json:"thirds"`
	Sevenths *GuideToneLine `json:"sevenths"`
}

// Progression aggregates transitions across a progression
type Progression struct {
	OverallSmoothness float64      `json:"overall_smoothness"`
	SmoothnessRating  string       `json:"smoothness_rating"`
	TotalTransitions  int          `json:"total_transitions"`
	TotalViolations   int          `json:"total_violations"`
	Transitions       []Transition `json:"transitions"`
	GuideTones        *GuideTones  `json:"guide_tones"`
	Error             string       `json:"error,omitempty"`
}

// AnalyzePair analyzes voice leading from one chord to the next. Each tone of
// the first chord moves to its nearest tone in the second.
func AnalyzePair(from, to theory.Chord) Transition {
	notes1 := from.Notes()
	notes2 := to.Notes()
	pcs1 := pitchClasses(notes1)
	pcs2 := pitchClasses(notes2)

	movements := VoiceMovements(pcs1, pcs2)
	fifths, octaves := parallelIntervals(notes1, notes2)
	common := commonTones(pcs1, notes2)

	total := 0
	for _, m := range movements {
		total += abs(m)
	}
	avg := 0.0
	if len(movements) > 0 {
		avg = float64(total) / float64(len(movements))
	}

	return Transition{
		FromChord:       from.Symbol(),
		ToChord:         to.Symbol(),
		SmoothnessScore: round(math.Max(0, 1-avg/maxAverageMovement), 3),
		TotalMovement:   total,
		AvgMovement:     round(avg, 2),
		CommonTones:     len(common),
		CommonToneNotes: common,
		MotionTypes:     ClassifyMotions(movements),
		ParallelFifths:  fifths,
		ParallelOctaves: octaves,
		VoiceMovements:  movements,
	}
}

// VoiceMovements returns, for every pitch class in from, the signed shortest
// move (-6..+5) to its nearest pitch class in to. The first candidate wins ties.
func VoiceMovements(from, to []int) []int {
	movements := make([]int, 0, len(from))
	for _, s1 := range from {
		best := 12
		for _, s2 := range to {
			dist := theory.Mod12(s2-s1+6) - 6
			if abs(dist) < abs(best) {
				best = dist
			}
		}
		movements = append(movements, best)
	}
	return movements
}

// ClassifyMotions counts the motion type of every unordered pair of movements
func ClassifyMotions(movements []int) map[MotionType]int {
	counts := map[MotionType]int{
		Parallel: 0,
		Similar:  0,
		Contrary: 0,
		Oblique:  0,
		Static:   0,
	}

	for i, m1 := range movements {
		for _, m2 := range movements[i+1:] {
			switch {
			case m1 == 0 && m2 == 0:
				counts[Static]++
			case m1 == 0 || m2 == 0:
				counts[Oblique]++
			case m1 == m2:
				counts[Parallel]++
			case (m1 > 0) == (m2 > 0):
				counts[Similar]++
			default:
				counts[Contrary]++
			}
		}
	}
	return counts
}

// parallelIntervals compares the interval between voices i and j in both
// chords, index by index. Chord tones must be in root-first order.
func parallelIntervals(notes1, notes2 []string) (fifths, octaves []VoicePair) {
	fifths = []VoicePair{}
	octaves = []VoicePair{}

	for i := range notes1 {
		for j := i + 1; j < len(notes1); j++ {
			if i >= len(notes2) || j >= len(notes2) {
				continue
			}

			int1 := theory.Interval(notes1[i], notes1[j])
			int2 := theory.Interval(notes2[i], notes2[j])

			if int1 == 7 && int2 == 7 {
				fifths = append(fifths, VoicePair{i, j})
			}
			if int1 == 0 && int2 == 0 && notes1[i] != notes1[j] {
				octaves = append(octaves, VoicePair{i, j})
			}
		}
	}
	return fifths, octaves
}

// commonTones returns the notes of the second chord whose pitch class also
// sounds in the first
func commonTones(pcs1 []int, notes2 []string) []string {
	held := make(map[int]bool, len(pcs1))
	for _, pc := range pcs1 {
		held[pc] = true
	}

	common := []string{}
	for _, n := range notes2 {
		if held[theory.NoteToSemitone(n)] {
			common = append(common, n)
		}
	}
	return common
}

// AnalyzeProgression analyzes every adjacent pair and extracts guide-tone lines.
// A single chord has nothing to lead and scores a perfect 1.0.
func AnalyzeProgression(chords []theory.Chord) (Progression, error) {
	if len(chords) < 2 {
		p := Progression{
			OverallSmoothness: 1.0,
			SmoothnessRating:  Rating(1.0),
			Transitions:       []Transition{},
		}
		if len(chords) == 0 {
			p.Error = "No chords provided"
			return p, ErrEmptyProgression
		}
		return p, nil
	}

	transitions := make([]Transition, 0, len(chords)-1)
	scores := make([]float64, 0, len(chords)-1)
	violations := 0
	for i := 0; i < len(chords)-1; i++ {
		t := AnalyzePair(chords[i], chords[i+1])
		transitions = append(transitions, t)
		scores = append(scores, t.SmoothnessScore)
		violations += len(t.ParallelFifths) + len(t.ParallelOctaves)
	}

	avg := stat.Mean(scores, nil)
	return Progression{
		OverallSmoothness: round(avg, 3),
		SmoothnessRating:  Rating(avg),
		TotalTransitions:  len(transitions),
		TotalViolations:   violations,
		Transitions:       transitions,
		GuideTones:        ExtractGuideTones(chords),
	}, nil
}

// ExtractGuideTones follows the 3rd (second chord tone) and the 7th (fourth
// chord tone) of every chord that has one
func ExtractGuideTones(chords []theory.Chord) *GuideTones {
	if len(chords) == 0 {
		return nil
	}

	var thirds, sevenths []string
	for _, c := range chords {
		notes := c.Notes()
		if len(notes) >= 2 {
			thirds = append(thirds, notes[1])
		}
		if len(notes) >= 4 {
			sevenths = append(sevenths, notes[3])
		}
	}

	gt := &GuideTones{Thirds: guideToneLine(thirds)}
	if len(sevenths) > 0 {
		line := guideToneLine(sevenths)
		gt.Sevenths = &line
	}
	return gt
}

func guideToneLine(notes []string) GuideToneLine {
	line := GuideToneLine{Notes: notes, Movements: []int{}}
	if line.Notes == nil {
		line.Notes = []string{}
	}

	sizes := make([]float64, 0, len(notes))
	for i := 0; i < len(notes)-1; i++ {
		movement := theory.Interval(notes[i], notes[i+1])
		if movement > 6 {
			movement -= 12
		}
		line.Movements = append(line.Movements, movement)
		sizes = append(sizes, float64(abs(movement)))
	}
	if len(sizes) > 0 {
		line.AvgMovement = stat.Mean(sizes, nil)
	}
	return line
}

// Rating buckets a smoothness score
func Rating(score float64) string {
	switch {
	case score >= 0.9:
		return "excellent"
	case score >= 0.7:
		return "good"
	case score >= 0.5:
		return "moderate"
	case score >= 0.3:
		return "rough"
	default:
		return "very_rough"
	}
}

func pitchClasses(notes []string) []int {
	pcs := make([]int, len(notes))
	for i, n := range notes {
		pcs[i] = theory.NoteToSemitone(n)
	}
	return pcs
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func round(x float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(x*p) / p
}
