package theory

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
)

const minSuggestionScore = 0.6

// Chord is a root spelling plus a quality tag, e.g. {"Db", "m7"}
type Chord struct {
	Root    string `json:"root"`
	Quality string `json:"quality"`
}

// NewChord validates root and quality
func NewChord(root, quality string) (Chord, error) {
	if _, err := ParsePitchClass(root); err != nil {
		return Chord{}, err
	}
	if _, err := LookupQuality(quality); err != nil {
		return Chord{}, err
	}
	return Chord{Root: root, Quality: quality}, nil
}

// Symbol renders the chord as written, e.g. "Dbm7"
func (c Chord) Symbol() string {
	return c.Root + c.Quality
}

func (c Chord) String() string {
	return c.Symbol()
}

// Semitone returns the root pitch class (C if the root is unrecognized)
func (c Chord) Semitone() int {
	return NoteToSemitone(c.Root)
}

// Notes returns the chord tones using sharps, with lenient fallbacks
func (c Chord) Notes() []string {
	return ChordNotes(c.Root, c.Quality, true)
}

// ParseChordSymbol splits "F#m7/C#" into root "F#", quality "m7" and bass "C#"
func ParseChordSymbol(symbol string) (root, quality, bass string, err error) {
	symbol = strings.TrimSpace(symbol)
	if idx := strings.Index(symbol, "/"); idx >= 0 && !strings.HasSuffix(symbol[:idx], "6") {
		bass = strings.TrimSpace(symbol[idx+1:])
		symbol = strings.TrimSpace(symbol[:idx])
	}

	if symbol == "" {
		return "", "", "", ErrEmptyChordSymbol
	}

	first, size := utf8.DecodeRuneInString(symbol)
	root = strings.ToUpper(string(first))
	i := size
	for i < len(symbol) && (symbol[i] == '#' || symbol[i] == 'b') {
		root += symbol[i : i+1]
		i++
	}
	quality = symbol[i:]

	if _, perr := ParsePitchClass(root); perr != nil {
		return "", "", "", fmt.Errorf("invalid chord root in %q: %w", symbol, perr)
	}
	return root, quality, bass, nil
}

// ParseChord parses a symbol strictly: the root and the quality must both be known
func ParseChord(symbol string) (Chord, error) {
	root, quality, _, err := ParseChordSymbol(symbol)
	if err != nil {
		return Chord{}, err
	}
	return NewChord(root, quality)
}

// ParseChordLenient never fails: an unreadable symbol becomes a C chord and
// unknown qualities are kept as written (they resolve to a major triad on use)
func ParseChordLenient(symbol string) Chord {
	root, quality, _, err := ParseChordSymbol(symbol)
	if err != nil {
		return Chord{Root: "C"}
	}
	return Chord{Root: root, Quality: quality}
}

// ChordToneMIDI converts a chord symbol into MIDI note numbers (C4 = 60).
// A slash bass is prepended one octave below the chord.
func ChordToneMIDI(symbol string, octave int) ([]int, error) {
	root, quality, bass, err := ParseChordSymbol(symbol)
	if err != nil {
		return nil, err
	}

	rootMIDI := (octave+1)*12 + NoteToSemitone(root)
	notes := make([]int, 0, 8)
	for _, interval := range QualityIntervals(quality) {
		midi := rootMIDI + interval
		if midi < 0 || midi > 127 {
			continue
		}
		notes = append(notes, midi)
	}

	if bass != "" {
		if bassSemitone, err := ParsePitchClass(bass); err == nil {
			bassMIDI := octave*12 + bassSemitone
			if bassMIDI >= 0 && bassMIDI <= 127 {
				notes = append([]int{bassMIDI}, notes...)
			}
		}
	}

	if len(notes) == 0 {
		return nil, fmt.Errorf("no valid MIDI notes generated for chord: %s", symbol)
	}
	return notes, nil
}

// suggestQuality returns the closest known spelling for an unrecognized quality
func suggestQuality(quality string) string {
	if quality == "" {
		return ""
	}

	best := ""
	bestScore := 0.0
	metric := metrics.NewJaroWinkler()
	for _, e := range qualityTable {
		if e.symbol == "" {
			continue
		}
		score := strutil.Similarity(quality, e.symbol, metric)
		if score > bestScore {
			best, bestScore = e.symbol, score
		}
	}

	if bestScore < minSuggestionScore {
		return ""
	}
	return best
}
