package theory

import (
	"fmt"
	"sort"
	"strings"
)

// ChordType describes a chord quality by its intervals above the root
type ChordType struct {
	Name      string `json:"name"`
	Symbol    string `json:"symbol"`
	Intervals []int  `json:"intervals"`
	Category  string `json:"category"`
}

var (
	majorTriad      = ChordType{"Major Triad", "", []int{0, 4, 7}, "triad"}
	minorTriad      = ChordType{"Minor Triad", "m", []int{0, 3, 7}, "triad"}
	diminishedTriad = ChordType{"Diminished Triad", "dim", []int{0, 3, 6}, "triad"}
	augmentedTriad  = ChordType{"Augmented Triad", "aug", []int{0, 4, 8}, "triad"}
	sus2            = ChordType{"Suspended 2nd", "sus2", []int{0, 2, 7}, "triad"}
	sus4            = ChordType{"Suspended 4th", "sus4", []int{0, 5, 7}, "triad"}

	major7          = ChordType{"Major 7th", "maj7", []int{0, 4, 7, 11}, "seventh"}
	minor7          = ChordType{"Minor 7th", "m7", []int{0, 3, 7, 10}, "seventh"}
	dominant7       = ChordType{"Dominant 7th", "7", []int{0, 4, 7, 10}, "seventh"}
	minorMajor7     = ChordType{"Minor-Major 7th", "mMaj7", []int{0, 3, 7, 11}, "seventh"}
	halfDiminished7 = ChordType{"Half-Diminished 7th", "m7b5", []int{0, 3, 6, 10}, "seventh"}
	diminished7     = ChordType{"Fully Diminished 7th", "dim7", []int{0, 3, 6, 9}, "seventh"}
	augmentedMajor7 = ChordType{"Augmented Major 7th", "augMaj7", []int{0, 4, 8, 11}, "seventh"}
	augmented7      = ChordType{"Augmented 7th", "7#5", []int{0, 4, 8, 10}, "seventh"}

	major9     = ChordType{"Major 9th", "maj9", []int{0, 4, 7, 11, 14}, "extended"}
	minor9     = ChordType{"Minor 9th", "m9", []int{0, 3, 7, 10, 14}, "extended"}
	dominant9  = ChordType{"Dominant 9th", "9", []int{0, 4, 7, 10, 14}, "extended"}
	major11    = ChordType{"Major 11th", "maj11", []int{0, 4, 7, 11, 14, 17}, "extended"}
	minor11    = ChordType{"Minor 11th", "m11", []int{0, 3, 7, 10, 14, 17}, "extended"}
	dominant11 = ChordType{"Dominant 11th", "11", []int{0, 4, 7, 10, 14, 17}, "extended"}
	major13    = ChordType{"Major 13th", "maj13", []int{0, 4, 7, 11, 14, 21}, "extended"}
	minor13    = ChordType{"Minor 13th", "m13", []int{0, 3, 7, 10, 14, 21}, "extended"}
	dominant13 = ChordType{"Dominant 13th", "13", []int{0, 4, 7, 10, 14, 21}, "extended"}

	dominant7b9    = ChordType{"Dominant 7 flat 9", "7b9", []int{0, 4, 7, 10, 13}, "altered"}
	dominant7s9    = ChordType{"Dominant 7 sharp 9", "7#9", []int{0, 4, 7, 10, 15}, "altered"}
	dominant7b5    = ChordType{"Dominant 7 flat 5", "7b5", []int{0, 4, 6, 10}, "altered"}
	dominant7s11   = ChordType{"Dominant 7 sharp 11", "7#11", []int{0, 4, 7, 10, 18}, "altered"}
	alteredDom     = ChordType{"Altered Dominant", "7alt", []int{0, 4, 6, 8, 10, 13, 15}, "altered"}
	dominant13b9   = ChordType{"Dominant 13 flat 9", "13b9", []int{0, 4, 7, 10, 13, 21}, "altered"}
	dominant13s11  = ChordType{"Dominant 13 sharp 11", "13#11", []int{0, 4, 7, 10, 14, 18, 21}, "altered"}
	dominant7b9s9  = ChordType{"Dominant 7 flat 9 sharp 9", "7b9#9", []int{0, 4, 7, 10, 13, 15}, "altered"}
	dominant7b9s5  = ChordType{"Dominant 7 flat 9 sharp 5", "7b9#5", []int{0, 4, 8, 10, 13}, "altered"}
	dominant7s9s5  = ChordType{"Dominant 7 sharp 9 sharp 5", "7#9#5", []int{0, 4, 8, 10, 15}, "altered"}
	augmented9     = ChordType{"Augmented 9th", "aug9", []int{0, 4, 8, 14}, "altered"}
	minor11b5      = ChordType{"Minor 11 flat 5", "m11b5", []int{0, 3, 6, 10, 14, 17}, "extended"}
	add9           = ChordType{"Add 9", "add9", []int{0, 4, 7, 14}, "add"}
	add11          = ChordType{"Add 11", "add11", []int{0, 4, 7, 17}, "add"}
	minorAdd9      = ChordType{"Minor Add 9", "madd9", []int{0, 3, 7, 14}, "add"}
	add13          = ChordType{"Add 13", "add13", []int{0, 4, 7, 21}, "add"}
	minorAdd13     = ChordType{"Minor Add 13", "madd13", []int{0, 3, 7, 21}, "add"}
	sixNine        = ChordType{"6/9", "6/9", []int{0, 4, 7, 9, 14}, "add"}
	major6         = ChordType{"Major 6th", "6", []int{0, 4, 7, 9}, "sixth"}
	minor6         = ChordType{"Minor 6th", "m6", []int{0, 3, 7, 9}, "sixth"}
	dominant7sus4  = ChordType{"Dominant 7 sus4", "7sus4", []int{0, 5, 7, 10}, "suspended"}
	dominant9sus4  = ChordType{"Dominant 9 sus4", "9sus4", []int{0, 5, 7, 10, 14}, "suspended"}
	major7s11      = ChordType{"Major 7 sharp 11", "maj7#11", []int{0, 4, 7, 11, 18}, "lydian"}
	major9s11      = ChordType{"Major 9 sharp 11", "maj9#11", []int{0, 4, 7, 11, 14, 18}, "lydian"}
	quartal        = ChordType{"Quartal Chord", "quartal", []int{0, 5, 10}, "quartal"}
	quintal        = ChordType{"Quintal Chord", "quintal", []int{0, 7, 14}, "quartal"}
	minorCluster   = ChordType{"Minor 2nd Cluster", "cluster", []int{0, 1, 7}, "cluster"}
	powerChord     = ChordType{"Power Chord", "5", []int{0, 7}, "special"}
	defaultQuality = majorTriad
)

type qualityEntry struct {
	symbol string
	chord  ChordType
}

// qualityTable lists every accepted quality spelling. Root qualities come
// before extended ones; prefix matching uses prefixOrder below.
var qualityTable = []qualityEntry{
	{"", majorTriad}, {"maj", majorTriad}, {"M", majorTriad},
	{"m", minorTriad}, {"min", minorTriad}, {"-", minorTriad},
	{"dim", diminishedTriad}, {"°", diminishedTriad}, {"o", diminishedTriad},
	{"aug", augmentedTriad}, {"+", augmentedTriad},
	{"sus2", sus2}, {"sus4", sus4}, {"sus", sus4},

	{"maj7", major7}, {"Δ7", major7}, {"M7", major7}, {"Δ", major7},
	{"m7", minor7}, {"min7", minor7}, {"-7", minor7},
	{"7", dominant7}, {"dom7", dominant7},
	{"mMaj7", minorMajor7}, {"m(M7)", minorMajor7},
	{"m7b5", halfDiminished7}, {"ø7", halfDiminished7}, {"ø", halfDiminished7},
	{"dim7", diminished7}, {"°7", diminished7}, {"o7", diminished7},
	{"augMaj7", augmentedMajor7}, {"Maj7#5", augmentedMajor7},
	{"7#5", augmented7}, {"aug7", augmented7}, {"7+", augmented7},

	{"maj9", major9}, {"Δ9", major9}, {"M9", major9},
	{"m9", minor9}, {"min9", minor9}, {"-9", minor9},
	{"9", dominant9}, {"dom9", dominant9},
	{"maj11", major11}, {"Δ11", major11},
	{"m11", minor11}, {"min11", minor11}, {"-11", minor11},
	{"11", dominant11},
	{"maj13", major13}, {"Δ13", major13},
	{"m13", minor13}, {"min13", minor13}, {"-13", minor13},
	{"13", dominant13},

	{"7b9", dominant7b9}, {"7#9", dominant7s9}, {"7b5", dominant7b5}, {"7#11", dominant7s11},
	{"7alt", alteredDom}, {"alt", alteredDom},
	{"13b9", dominant13b9}, {"13#11", dominant13s11},
	{"7b9#9", dominant7b9s9}, {"7b9#5", dominant7b9s5}, {"7#9#5", dominant7s9s5},
	{"aug9", augmented9}, {"+9", augmented9},
	{"m11b5", minor11b5}, {"ø11", minor11b5},

	{"add9", add9}, {"add2", add9}, {"add11", add11}, {"add4", add11},
	{"madd9", minorAdd9}, {"add13", add13}, {"add6", add13}, {"madd13", minorAdd13},
	{"6/9", sixNine}, {"69", sixNine},
	{"6", major6}, {"M6", major6},
	{"m6", minor6}, {"min6", minor6}, {"-6", minor6},

	{"7sus4", dominant7sus4}, {"7sus", dominant7sus4},
	{"9sus", dominant9sus4}, {"9sus4", dominant9sus4},
	{"maj7#11", major7s11}, {"Δ7#11", major7s11}, {"Maj7#11", major7s11},
	{"maj9#11", major9s11}, {"Δ9#11", major9s11},

	{"quartal", quartal}, {"quintal", quintal}, {"5stacked", quintal},
	{"cluster", minorCluster},
	{"5", powerChord}, {"no3", powerChord},
}

// prefixOrder is qualityTable ordered longest symbol first (stable), so the
// first prefix hit is also the most specific one ("m7b5(add11)" -> "m7b5", not "m").
var prefixOrder = func() []qualityEntry {
	ordered := make([]qualityEntry, 0, len(qualityTable))
	for _, e := range qualityTable {
		if e.symbol != "" {
			ordered = append(ordered, e)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return len(ordered[i].symbol) > len(ordered[j].symbol)
	})
	return ordered
}()

// QualityError reports an unrecognized chord quality
type QualityError struct {
	Quality    string
	Suggestion string
}

func (e *QualityError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%v: %q (did you mean %q?)", ErrInvalidChordQuality, e.Quality, e.Suggestion)
	}
	return fmt.Sprintf("%v: %q", ErrInvalidChordQuality, e.Quality)
}

func (e *QualityError) Unwrap() error {
	return ErrInvalidChordQuality
}

// LookupQuality resolves a quality string to its chord type.
// Exact spellings win, then a case-insensitive retry, then the first prefix hit.
func LookupQuality(quality string) (ChordType, error) {
	for _, e := range qualityTable {
		if e.symbol == quality {
			return e.chord, nil
		}
	}

	lower := strings.ToLower(quality)
	for _, e := range qualityTable {
		if e.symbol == lower {
			return e.chord, nil
		}
	}

	for _, e := range prefixOrder {
		if strings.HasPrefix(quality, e.symbol) {
			return e.chord, nil
		}
	}

	return defaultQuality, &QualityError{Quality: quality, Suggestion: suggestQuality(quality)}
}

// QualityIntervals is the lenient lookup: unknown qualities are a major triad
func QualityIntervals(quality string) []int {
	chord, _ := LookupQuality(quality)
	return chord.Intervals
}

// KnownQualities lists the accepted quality spellings in table order
func KnownQualities() []string {
	symbols := make([]string, 0, len(qualityTable))
	for _, e := range qualityTable {
		symbols = append(symbols, e.symbol)
	}
	return symbols
}

// IsPlainDominant7 reports a dominant seventh quality: contains "7" but no "maj" and no "m"
func IsPlainDominant7(quality string) bool {
	return strings.Contains(quality, "7") && !strings.Contains(quality, "maj") && !strings.Contains(quality, "m")
}

// IsMinorQuality reports an "m" quality that is not a "maj" one
func IsMinorQuality(quality string) bool {
	return strings.Contains(quality, "m") && !strings.Contains(quality, "maj")
}

// ChordNotes returns the chord tones root first, in ascending interval order.
// Unknown roots fall back to C and unknown qualities to a major triad.
func ChordNotes(root, quality string, preferSharps bool) []string {
	return spell(NoteToSemitone(root), QualityIntervals(quality), preferSharps)
}

// ChordNotesStrict is ChordNotes without any fallback
func ChordNotesStrict(root, quality string, preferSharps bool) ([]string, error) {
	rootSemitone, err := ParsePitchClass(root)
	if err != nil {
		return nil, err
	}
	chord, err := LookupQuality(quality)
	if err != nil {
		return nil, err
	}
	return spell(rootSemitone, chord.Intervals, preferSharps), nil
}

func spell(root int, intervals []int, preferSharps bool) []string {
	notes := make([]string, 0, len(intervals))
	for _, interval := range intervals {
		notes = append(notes, SemitoneToNote(root+interval, preferSharps))
	}
	return notes
}
