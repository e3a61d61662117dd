// Package reharm proposes reharmonizations for chords and progressions.
package reharm

import (
	"errors"

	"github.com/Conceptual-Machines/harmonia-api/internal/theory"
)

var ErrEmptyProgression = errors.New("no chords provided")

const (
	MinJazzLevel     = 1
	MaxJazzLevel     = 5
	DefaultJazzLevel = 3
)

// stage gates a generator in the pipeline. Each suggestion it produces is
// still filtered by its own jazz level.
type stage struct {
	minLevel  int
	needsNext bool
	generate  Generator
}

var pipeline = []stage{
	{generate: TritoneSubstitution},
	{generate: DiatonicSubstitutes},
	{minLevel: 2, generate: ModalInterchangeOptions},
	{needsNext: true, generate: BackdoorSubstitution},
	{minLevel: 3, needsNext: true, generate: PassingChords},
	{minLevel: 5, generate: UpperStructureTriad},
}

// ChordOptions lists the suggestions for one chord of a progression
type ChordOptions struct {
	ChordIndex  int          `json:"chord_index"`
	Original    string       `json:"original"`
	Suggestions []Suggestion `json:"suggestions"`
}

// Result is the reharmonization of a progression
type Result struct {
	Key                 string         `json:"key"`
	JazzLevel           int            `json:"jazz_level"`
	OriginalProgression []string       `json:"original_progression"`
	Options             []ChordOptions `json:"reharmonization_options"`
	TotalSuggestions    int            `json:"total_suggestions"`
	Error               string         `json:"error,omitempty"`
}

// ClampJazzLevel maps 0 to the default and everything else into 1..5
func ClampJazzLevel(level int) int {
	switch {
	case level == 0:
		return DefaultJazzLevel
	case level < MinJazzLevel:
		return MinJazzLevel
	case level > MaxJazzLevel:
		return MaxJazzLevel
	default:
		return level
	}
}

// SuggestionsForChord runs the pipeline for one chord. next may be nil.
func SuggestionsForChord(chord theory.Chord, key string, next *theory.Chord, jazzLevel int) []Suggestion {
	jazzLevel = ClampJazzLevel(jazzLevel)
	ctx := Context{Key: key, Next: next}

	out := []Suggestion{}
	for _, st := range pipeline {
		if jazzLevel < st.minLevel || (st.needsNext && next == nil) {
			continue
		}
		for _, s := range st.generate(chord, ctx) {
			if s.JazzLevel <= jazzLevel {
				out = append(out, s)
			}
		}
	}
	return out
}

// Reharmonize collects suggestions for every chord in order, without ranking
// or deduplication. Empty input yields an error-shaped Result together with
// ErrEmptyProgression.
func Reharmonize(chords []theory.Chord, key string, jazzLevel int) (Result, error) {
	jazzLevel = ClampJazzLevel(jazzLevel)
	if len(chords) == 0 {
		return Result{Key: key, JazzLevel: jazzLevel, Error: "No chords provided"}, ErrEmptyProgression
	}

	result := Result{
		Key:                 key,
		JazzLevel:           jazzLevel,
		OriginalProgression: make([]string, 0, len(chords)),
		Options:             make([]ChordOptions, 0, len(chords)),
	}

	for i, chord := range chords {
		var next *theory.Chord
		if i < len(chords)-1 {
			next = &chords[i+1]
		}

		suggestions := SuggestionsForChord(chord, key, next, jazzLevel)
		result.OriginalProgression = append(result.OriginalProgression, chord.Symbol())
		result.Options = append(result.Options, ChordOptions{
			ChordIndex:  i,
			Original:    chord.Symbol(),
			Suggestions: suggestions,
		})
		result.TotalSuggestions += len(suggestions)
	}
	return result, nil
}
