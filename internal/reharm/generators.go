package reharm

import (
	"fmt"

	"github.com/Conceptual-Machines/harmonia-api/internal/theory"
)

// Kind tags a suggestion
type Kind string

const (
	TritoneSub        Kind = "tritone_substitution"
	DiatonicSub       Kind = "diatonic_substitution"
	PassingChord      Kind = "passing_chord"
	ApproachChord     Kind = "approach_chord"
	Backdoor          Kind = "backdoor"
	ModalInterchange  Kind = "modal_interchange"
	UpperStructure    Kind = "upper_structure"
	DiminishedPassing Kind = "diminished_passing"
)

// voice-leading qualities
const (
	Smooth   = "smooth"
	Moderate = "moderate"
	Dramatic = "dramatic"
)

// Suggestion is one proposed replacement or insertion
type Suggestion struct {
	OriginalChord  string `json:"original_chord"`
	SuggestedChord string `json:"chord"`
	Kind           Kind   `json:"type"`
	Explanation    string `json:"explanation"`
	JazzLevel      int    `json:"jazz_level"`
	VoiceLeading   string `json:"voice_leading"`
}

// Context is what a generator may look at besides the chord itself.
// Next is nil for the last chord of a progression.
type Context struct {
	Key  string
	Next *theory.Chord
}

// Generator proposes suggestions for a chord. It returns nil when it does not apply.
type Generator func(chord theory.Chord, ctx Context) []Suggestion

// TritoneSubstitution replaces a dominant 7th with the dominant a tritone away
func TritoneSubstitution(chord theory.Chord, _ Context) []Suggestion {
	if !theory.IsPlainDominant7(chord.Quality) {
		return nil
	}

	newRoot := theory.SemitoneToNote(chord.Semitone()+6, false)
	return []Suggestion{{
		OriginalChord:  chord.Symbol(),
		SuggestedChord: newRoot + "7",
		Kind:           TritoneSub,
		Explanation:    fmt.Sprintf("Tritone substitution: %s7 and %s7 share the same tritone (3rd and 7th swapped)", chord.Root, newRoot),
		JazzLevel:      3,
		VoiceLeading:   Smooth,
	}}
}

type diatonicSub struct {
	offset      int
	quality     string
	explanation string
	level       int
	voicing     string
}

// substitutes by the chord's distance from the key
var diatonicSubs = map[int][]diatonicSub{
	0: {
		{9, "m7", "vi is a common tonic substitute (relative minor)", 1, Smooth},
		{4, "m7", "iii is a tonic substitute (mediant)", 2, Moderate},
	},
	5: {{2, "m7", "ii is a common subdominant substitute", 1, Smooth}},
	2: {{5, "maj7", "IV is a common subdominant substitute", 1, Smooth}},
	7: {{11, "m7b5", "vii° shares dominant function with V", 2, Moderate}},
}

// DiatonicSubstitutes proposes chords sharing the function of I, ii, IV or V.
// Roots are spelled the way the key spells them.
func DiatonicSubstitutes(chord theory.Chord, ctx Context) []Suggestion {
	keySemitone := theory.NoteToSemitone(ctx.Key)
	interval := theory.Mod12(chord.Semitone() - keySemitone)
	sharps := theory.PrefersSharps(ctx.Key)

	subs := diatonicSubs[interval]
	if len(subs) == 0 {
		return nil
	}

	out := make([]Suggestion, 0, len(subs))
	for _, s := range subs {
		out = append(out, Suggestion{
			OriginalChord:  chord.Symbol(),
			SuggestedChord: theory.SemitoneToNote(keySemitone+s.offset, sharps) + s.quality,
			Kind:           DiatonicSub,
			Explanation:    s.explanation,
			JazzLevel:      s.level,
			VoiceLeading:   s.voicing,
		})
	}
	return out
}

// PassingChords proposes chords to insert between chord and ctx.Next: a
// chromatic dominant a half step below the target, a diminished 7th when the
// roots are a whole step apart, and the target's secondary dominant.
func PassingChords(chord theory.Chord, ctx Context) []Suggestion {
	if ctx.Next == nil {
		return nil
	}

	next := *ctx.Next
	s1, s2 := chord.Semitone(), next.Semitone()
	from, to := chord.Symbol(), next.Symbol()
	original := from + " → " + to

	approach := theory.SemitoneToNote(s2-1, false)
	out := []Suggestion{{
		OriginalChord:  original,
		SuggestedChord: fmt.Sprintf("%s7 → %s", approach, to),
		Kind:           ApproachChord,
		Explanation:    fmt.Sprintf("Chromatic approach: %s7 resolves up a half step", approach),
		JazzLevel:      3,
		VoiceLeading:   Smooth,
	}}

	if theory.Mod12(s2-s1) == 2 {
		passing := theory.SemitoneToNote(s1+1, true)
		out = append(out, Suggestion{
			OriginalChord:  original,
			SuggestedChord: fmt.Sprintf("%s → %sdim7 → %s", from, passing, to),
			Kind:           DiminishedPassing,
			Explanation:    "Chromatic diminished passing chord",
			JazzLevel:      3,
			VoiceLeading:   Smooth,
		})
	}

	secondary := theory.SemitoneToNote(s2+7, true)
	out = append(out, Suggestion{
		OriginalChord:  original,
		SuggestedChord: fmt.Sprintf("%s → %s7 → %s", from, secondary, to),
		Kind:           ApproachChord,
		Explanation:    "Secondary dominant: V7/" + next.Root,
		JazzLevel:      2,
		VoiceLeading:   Moderate,
	})
	return out
}

// BackdoorSubstitution replaces a V7 that resolves up a fourth with the bVII7 of its target
func BackdoorSubstitution(chord theory.Chord, ctx Context) []Suggestion {
	if ctx.Next == nil || !theory.IsPlainDominant7(chord.Quality) {
		return nil
	}
	if theory.Mod12(ctx.Next.Semitone()-chord.Semitone()) != 5 {
		return nil
	}

	root := theory.SemitoneToNote(ctx.Next.Semitone()-2, false)
	return []Suggestion{{
		OriginalChord:  chord.Symbol(),
		SuggestedChord: root + "7",
		Kind:           Backdoor,
		Explanation:    fmt.Sprintf("Backdoor resolution: %s7 (bVII7) resolves to %s", root, ctx.Next.Root),
		JazzLevel:      4,
		VoiceLeading:   Smooth,
	}}
}

type borrowing struct {
	offset  int
	numeral string
	quality string
	desc    string
}

var parallelMinorBorrowings = []borrowing{
	{3, "♭III", "maj7", "Parallel minor - bright minor quality"},
	{8, "♭VI", "maj7", "Parallel minor - surprise major"},
	{10, "♭VII", "7", "Mixolydian/parallel minor - rock sound"},
	{5, "iv", "m7", "Minor subdominant - darker pre-dominant"},
}

// ModalInterchangeOptions proposes the common parallel-minor borrowings of the key,
// whatever the chord is
func ModalInterchangeOptions(chord theory.Chord, ctx Context) []Suggestion {
	keySemitone := theory.NoteToSemitone(ctx.Key)

	out := make([]Suggestion, 0, len(parallelMinorBorrowings))
	for _, b := range parallelMinorBorrowings {
		out = append(out, Suggestion{
			OriginalChord:  chord.Symbol(),
			SuggestedChord: theory.SemitoneToNote(keySemitone+b.offset, false) + b.quality,
			Kind:           ModalInterchange,
			Explanation:    fmt.Sprintf("%s borrowed chord: %s", b.numeral, b.desc),
			JazzLevel:      2,
			VoiceLeading:   Moderate,
		})
	}
	return out
}

// UpperStructureTriad voices a dominant 7th with the major triad a whole step
// above its root, which adds the 9th, #11th and 13th
func UpperStructureTriad(chord theory.Chord, _ Context) []Suggestion {
	if !theory.IsPlainDominant7(chord.Quality) {
		return nil
	}

	triad := theory.SemitoneToNote(chord.Semitone()+2, theory.PrefersSharps(chord.Root))
	return []Suggestion{{
		OriginalChord:  chord.Symbol(),
		SuggestedChord: fmt.Sprintf("%s/%s7", triad, chord.Root),
		Kind:           UpperStructure,
		Explanation:    fmt.Sprintf("Upper structure II: %s major over %s7 adds the 9th, #11th and 13th", triad, chord.Root),
		JazzLevel:      5,
		VoiceLeading:   Dramatic,
	}}
}
