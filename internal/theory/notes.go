package theory

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

var (
	ErrInvalidPitchClass   = errors.New("invalid pitch class")
	ErrInvalidChordQuality = errors.New("invalid chord quality")
	ErrEmptyChordSymbol    = errors.New("empty chord symbol")
)

// Mode is the scale mode a key is analysed in
type Mode string

const (
	Major Mode = "major"
	Minor Mode = "minor"
)

// ParseMode normalizes a user supplied mode, defaulting to major
func ParseMode(s string) Mode {
	if strings.EqualFold(strings.TrimSpace(s), string(Minor)) {
		return Minor
	}
	return Major
}

// Note semitone offsets from C, including double accidentals
var noteSemitones = map[string]int{
	"C": 0, "B#": 0, "Dbb": 0,
	"C#": 1, "Db": 1, "B##": 1,
	"D": 2, "C##": 2, "Ebb": 2,
	"D#": 3, "Eb": 3, "Fbb": 3,
	"E": 4, "Fb": 4, "D##": 4,
	"F": 5, "E#": 5, "Gbb": 5,
	"F#": 6, "Gb": 6, "E##": 6,
	"G": 7, "F##": 7, "Abb": 7,
	"G#": 8, "Ab": 8,
	"A": 9, "G##": 9, "Bbb": 9,
	"A#": 10, "Bb": 10, "Cbb": 10,
	"B": 11, "Cb": 11, "A##": 11,
}

var (
	sharpNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}
	flatNames  = [12]string{"C", "Db", "D", "Eb", "E", "F", "Gb", "G", "Ab", "A", "Bb", "B"}
)

var intervalShortNames = [13]string{"P1", "m2", "M2", "m3", "M3", "P4", "TT", "P5", "m6", "M6", "m7", "M7", "P8"}

var intervalFullNames = [13]string{
	"Unison", "Minor Second", "Major Second", "Minor Third", "Major Third",
	"Perfect Fourth", "Tritone", "Perfect Fifth", "Minor Sixth", "Major Sixth",
	"Minor Seventh", "Major Seventh", "Octave",
}

// Mod12 reduces any integer to a pitch class in 0-11
func Mod12(n int) int {
	return ((n % 12) + 12) % 12
}

// ParsePitchClass returns the semitone (0-11) of a note name.
// Octave digits are stripped, so "C4" and "C" are equivalent.
func ParsePitchClass(name string) (int, error) {
	clean := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) || r == '-' {
			return -1
		}
		return r
	}, strings.TrimSpace(name))

	semitone, ok := noteSemitones[clean]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPitchClass, name)
	}
	return semitone, nil
}

// NoteToSemitone is the lenient form of ParsePitchClass: unknown names map to C (0)
func NoteToSemitone(name string) int {
	semitone, err := ParsePitchClass(name)
	if err != nil {
		return 0
	}
	return semitone
}

// SemitoneToNote spells a pitch class using sharps or flats
func SemitoneToNote(semitone int, preferSharps bool) string {
	if preferSharps {
		return sharpNames[Mod12(semitone)]
	}
	return flatNames[Mod12(semitone)]
}

// Interval returns the ascending distance in semitones (0-11) from a to b
func Interval(a, b string) int {
	return Mod12(NoteToSemitone(b) - NoteToSemitone(a))
}

// Transpose moves a note by the given number of semitones
func Transpose(name string, semitones int, preferSharps bool) string {
	return SemitoneToNote(NoteToSemitone(name)+semitones, preferSharps)
}

// IsEnharmonic reports whether two spellings name the same pitch class
func IsEnharmonic(a, b string) bool {
	return NoteToSemitone(a) == NoteToSemitone(b)
}

// IntervalName returns "P5" style (short) or "Perfect Fifth" style names.
// 12 is reported as an octave, anything else is reduced mod 12.
func IntervalName(semitones int, short bool) string {
	idx := semitones
	if idx != 12 {
		idx = Mod12(semitones)
	}
	if short {
		return intervalShortNames[idx]
	}
	return intervalFullNames[idx]
}

var circlePositions = map[int]int{0: 0, 7: 1, 2: 2, 9: 3, 4: 4, 11: 5, 6: 6, 1: 7, 8: -4, 3: -3, 10: -2, 5: -1}

// CircleOfFifthsPosition returns C=0, G=1, ... F=-1, Bb=-2
func CircleOfFifthsPosition(note string) int {
	return circlePositions[NoteToSemitone(note)]
}

type signature struct {
	count      int
	accidental string
}

var majorKeySignatures = map[string]signature{
	"C": {0, "sharps"}, "G": {1, "sharps"}, "D": {2, "sharps"},
	"A": {3, "sharps"}, "E": {4, "sharps"}, "B": {5, "sharps"},
	"F#": {6, "sharps"}, "C#": {7, "sharps"},
	"F": {1, "flats"}, "Bb": {2, "flats"}, "Eb": {3, "flats"},
	"Ab": {4, "flats"}, "Db": {5, "flats"}, "Gb": {6, "flats"},
	"Cb": {7, "flats"},
}

var relativeMajor = map[string]string{
	"A": "C", "E": "G", "B": "D", "F#": "A", "C#": "E", "G#": "B",
	"D#": "F#", "A#": "C#", "D": "F", "G": "Bb", "C": "Eb",
	"F": "Ab", "Bb": "Db", "Eb": "Gb", "Ab": "Cb",
}

// KeySignature returns the number of accidentals and whether they are sharps or flats.
// Unknown keys report C major.
func KeySignature(key string, mode Mode) (int, string) {
	if mode == Minor {
		if major, ok := relativeMajor[key]; ok {
			key = major
		}
	}
	sig, ok := majorKeySignatures[key]
	if !ok {
		return 0, "sharps"
	}
	return sig.count, sig.accidental
}

// PrefersSharps decides the spelling used for notes derived from a key
func PrefersSharps(key string) bool {
	if strings.Contains(key, "b") {
		return false
	}
	_, accidental := KeySignature(key, Major)
	return accidental == "sharps"
}

// NoteToMIDI converts a note name and octave to a MIDI number (C4 = 60).
// A trailing octave in the name ("E1", "C-1") overrides the octave argument.
func NoteToMIDI(note string, octave int) (int, error) {
	name := strings.TrimSpace(note)
	idx := strings.IndexFunc(name, func(r rune) bool { return unicode.IsDigit(r) || r == '-' })
	if idx > 0 {
		if _, err := fmt.Sscanf(name[idx:], "%d", &octave); err != nil {
			return 0, fmt.Errorf("invalid octave in note name %s: %w", note, err)
		}
		name = name[:idx]
	}

	semitone, err := ParsePitchClass(name)
	if err != nil {
		return 0, err
	}

	midi := (octave+1)*12 + semitone
	if midi < 0 || midi > 127 {
		return 0, fmt.Errorf("note %s out of MIDI range: %d", note, midi)
	}
	return midi, nil
}

// MIDIToNote converts a MIDI number to a note name with octave, e.g. 60 -> "C4"
func MIDIToNote(midi int, preferSharps bool) string {
	octave := midi/12 - 1
	return fmt.Sprintf("%s%d", SemitoneToNote(midi, preferSharps), octave)
}
