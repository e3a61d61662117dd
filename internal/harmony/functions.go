// Package harmony classifies chords by harmonic function relative to a key.
package harmony

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/Conceptual-Machines/harmonia-api/internal/theory"
)

var ErrEmptyProgression = errors.New("no chords provided")

const emptyProgressionMessage = "No chords provided"

// Function is a harmonic function tag
type Function string

const (
	Tonic             Function = "T"
	Subdominant       Function = "S"
	Dominant          Function = "D"
	SecondaryDominant Function = "V/x"
	Borrowed          Function = "borrowed"
	Chromatic         Function = "chromatic"
)

// Key estimation sources
const (
	KeyProvided  = "provided"
	KeyCadence   = "cadence"
	KeyFrequency = "frequency"
)

// ChordFunction is the analysis of one chord
type ChordFunction struct {
	ChordSymbol  string   `json:"chord_symbol"`
	RomanNumeral string   `json:"roman_numeral"`
	Function     Function `json:"function"`
	Detail       string   `json:"detail"`
	IsDiatonic   bool     `json:"is_diatonic"`
	AppliedTo    string   `json:"applied_to,omitempty"`
}

// Analysis summarizes a whole progression
type Analysis struct {
	Key                  string           `json:"key"`
	Mode                 theory.Mode      `json:"mode"`
	KeySource            string           `json:"key_source,omitempty"`
	ChordFunctions       []ChordFunction  `json:"chord_functions"`
	FunctionDistribution map[Function]int `json:"function_distribution"`
	DiatonicPercentage   float64          `json:"diatonic_percentage"`
	SecondaryDominants   int              `json:"secondary_dominants"`
	FunctionSequence     []Function       `json:"function_sequence"`
	HarmonicRhythm       string           `json:"harmonic_rhythm_pattern"`
	Error                string           `json:"error,omitempty"`
}

type degree struct {
	roman     string
	function  Function
	qualities []string
}

var majorKeyFunctions = map[int]degree{
	0:  {"I", Tonic, []string{"", "maj", "maj7"}},
	2:  {"ii", Subdominant, []string{"m", "m7", "min"}},
	4:  {"iii", Tonic, []string{"m", "m7", "min"}},
	5:  {"IV", Subdominant, []string{"", "maj", "maj7"}},
	7:  {"V", Dominant, []string{"", "7", "maj"}},
	9:  {"vi", Tonic, []string{"m", "m7", "min"}},
	11: {"vii°", Dominant, []string{"dim", "m7b5", "°"}},
}

var minorKeyFunctions = map[int]degree{
	0:  {"i", Tonic, []string{"m", "m7", "min"}},
	2:  {"ii°", Subdominant, []string{"dim", "m7b5", "°"}},
	3:  {"III", Tonic, []string{"", "maj", "maj7"}},
	5:  {"iv", Subdominant, []string{"m", "m7", "min"}},
	7:  {"V", Dominant, []string{"", "7", "maj"}},
	8:  {"VI", Subdominant, []string{"", "maj", "maj7"}},
	10: {"VII", Dominant, []string{"", "7", "maj"}},
}

type borrowedChord struct {
	roman  string
	source string
}

var borrowedChords = map[int]borrowedChord{
	3:  {"♭III", "Parallel minor"},
	8:  {"♭VI", "Parallel minor"},
	10: {"♭VII", "Parallel minor/Mixolydian"},
	1:  {"♭II", "Neapolitan"},
}

// secondary dominant targets, keyed by the interval of the resolution chord
var secondaryTargets = map[int]string{
	2: "ii",
	4: "iii",
	5: "IV",
	7: "V",
	9: "vi",
}

var chromaticNumerals = [12]string{"I", "♭II", "II", "♭III", "III", "IV", "♯IV/♭V", "V", "♭VI", "VI", "♭VII", "VII"}

// AnalyzeChord classifies a single chord in key/mode.
// Secondary dominants are detected before diatonic matching.
func AnalyzeChord(chord theory.Chord, key string, mode theory.Mode) ChordFunction {
	interval := theory.Mod12(chord.Semitone() - theory.NoteToSemitone(key))
	symbol := chord.Symbol()

	if target, ok := secondaryDominantTarget(interval, chord.Quality); ok {
		return ChordFunction{
			ChordSymbol:  symbol,
			RomanNumeral: "V/" + target,
			Function:     SecondaryDominant,
			Detail:       "Secondary dominant to " + target,
			IsDiatonic:   false,
			AppliedTo:    target,
		}
	}

	functions := majorKeyFunctions
	if mode == theory.Minor {
		functions = minorKeyFunctions
	}

	if deg, ok := functions[interval]; ok && qualityMatches(chord.Quality, deg.qualities) {
		return ChordFunction{
			ChordSymbol:  symbol,
			RomanNumeral: deg.roman,
			Function:     deg.function,
			Detail:       fmt.Sprintf("%s function", deg.function),
			IsDiatonic:   true,
		}
	}

	if b, ok := borrowedChords[interval]; ok {
		return ChordFunction{
			ChordSymbol:  symbol,
			RomanNumeral: b.roman,
			Function:     Borrowed,
			Detail:       "Borrowed from " + b.source,
		}
	}

	numeral := chromaticNumerals[interval]
	if theory.IsMinorQuality(chord.Quality) {
		numeral = strings.ToLower(numeral)
	}
	return ChordFunction{
		ChordSymbol:  symbol,
		RomanNumeral: numeral,
		Function:     Chromatic,
		Detail:       "Chromatic chord",
	}
}

func secondaryDominantTarget(interval int, quality string) (string, bool) {
	if !theory.IsPlainDominant7(quality) {
		return "", false
	}
	target, ok := secondaryTargets[theory.Mod12(interval+5)]
	return target, ok
}

// qualityMatches accepts a quality when either string contains the other
func qualityMatches(quality string, accepted []string) bool {
	for _, q := range accepted {
		if strings.Contains(quality, q) || strings.Contains(q, quality) {
			return true
		}
	}
	return false
}

// AnalyzeProgression classifies every chord and summarizes the progression.
// An empty key is estimated from the chords. Empty input yields an
// error-shaped Analysis together with ErrEmptyProgression.
func AnalyzeProgression(chords []theory.Chord, key string, mode theory.Mode) (Analysis, error) {
	if mode == "" {
		mode = theory.Major
	}
	if len(chords) == 0 {
		return Analysis{Mode: mode, Error: emptyProgressionMessage}, ErrEmptyProgression
	}

	source := KeyProvided
	if key == "" {
		key, source = EstimateKey(chords)
	}

	analysis := Analysis{
		Key:                  key,
		Mode:                 mode,
		KeySource:            source,
		ChordFunctions:       make([]ChordFunction, 0, len(chords)),
		FunctionDistribution: make(map[Function]int),
		FunctionSequence:     make([]Function, 0, len(chords)),
	}

	diatonic := 0
	for _, chord := range chords {
		cf := AnalyzeChord(chord, key, mode)
		analysis.ChordFunctions = append(analysis.ChordFunctions, cf)
		analysis.FunctionDistribution[cf.Function]++
		analysis.FunctionSequence = append(analysis.FunctionSequence, cf.Function)
		if cf.IsDiatonic {
			diatonic++
		}
		if cf.Function == SecondaryDominant {
			analysis.SecondaryDominants++
		}
	}

	pct := float64(diatonic) / float64(len(chords)) * 100
	analysis.DiatonicPercentage = math.Round(pct*10) / 10
	analysis.HarmonicRhythm = HarmonicRhythm(analysis.FunctionSequence)

	return analysis, nil
}

// EstimateKey returns the target of the first V-I root motion (a perfect fourth up),
// falling back to the most frequent root. Ties go to the root that occurs first.
func EstimateKey(chords []theory.Chord) (string, string) {
	if len(chords) == 0 {
		return "C", KeyFrequency
	}

	for i := 0; i < len(chords)-1; i++ {
		if theory.Interval(chords[i].Root, chords[i+1].Root) == 5 {
			return chords[i+1].Root, KeyCadence
		}
	}

	counts := make(map[int]int)
	for _, c := range chords {
		counts[c.Semitone()]++
	}

	best := chords[0].Root
	bestCount := 0
	for _, c := range chords {
		if n := counts[c.Semitone()]; n > bestCount {
			best, bestCount = c.Root, n
		}
	}
	return best, KeyFrequency
}

var rhythmPatterns = []struct {
	sequence []Function
	name     string
}{
	{[]Function{Tonic, Subdominant, Dominant, Tonic}, "classical_cadence"},
	{[]Function{Tonic, Dominant, Tonic}, "simple_resolution"},
	{[]Function{Subdominant, Dominant, Tonic}, "cadential"},
	{[]Function{Tonic, Subdominant, Tonic}, "plagal_motion"},
}

// HarmonicRhythm labels the T-S-D flow. The last four functions (or all of
// them, when shorter) are matched against known patterns first.
func HarmonicRhythm(sequence []Function) string {
	if len(sequence) == 0 {
		return "empty"
	}

	tail := sequence
	if len(tail) > 4 {
		tail = tail[len(tail)-4:]
	}
	for _, p := range rhythmPatterns {
		if equalSequence(tail, p.sequence) {
			return p.name
		}
	}

	resolving, building := false, false
	for i := 0; i < len(sequence)-1; i++ {
		switch {
		case sequence[i] == Dominant && sequence[i+1] == Tonic:
			resolving = true
		case sequence[i] == Subdominant && sequence[i+1] == Dominant:
			building = true
		}
	}

	switch {
	case resolving:
		return "resolving"
	case building:
		return "building_tension"
	default:
		return "static"
	}
}

func equalSequence(a, b []Function) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
