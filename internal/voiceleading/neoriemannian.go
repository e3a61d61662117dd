package voiceleading

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/Conceptual-Machines/harmonia-api/internal/theory"
)

var ErrNotMajorMinor = errors.New("PLR transforms need a major or minor chord")

// PathSearchDepth bounds the Tonnetz search used for pair analysis
const PathSearchDepth = 6

// Transform is a neo-Riemannian operation on a triad
type Transform string

const (
	// TransformP keeps root and fifth and moves the third by a semitone
	TransformP Transform = "P"
	// TransformL moves the root of a major triad up to the third of a minor one, and back
	TransformL Transform = "L"
	// TransformR relates a triad to its relative major or minor
	TransformR Transform = "R"
)

// search order of the Tonnetz walk
var transforms = []Transform{TransformP, TransformL, TransformR}

// Triad is a node of the Tonnetz: a root pitch class and a major/minor flag
type Triad struct {
	Root  int
	Minor bool
}

// TriadOf reduces a chord to its Tonnetz node. Extended chords count by their
// third; chords with neither a minor nor a major third are rejected.
func TriadOf(chord theory.Chord) (Triad, error) {
	root, err := theory.ParsePitchClass(chord.Root)
	if err != nil {
		return Triad{}, err
	}
	chordType, err := theory.LookupQuality(chord.Quality)
	if err != nil {
		return Triad{}, fmt.Errorf("%w: %v", ErrNotMajorMinor, err)
	}

	switch {
	case slices.Contains(chordType.Intervals, 3):
		return Triad{Root: root, Minor: true}, nil
	case slices.Contains(chordType.Intervals, 4):
		return Triad{Root: root}, nil
	}
	return Triad{}, fmt.Errorf("%w: %q", ErrNotMajorMinor, chord.Symbol())
}

// Apply performs one transform. Every transform flips major and minor.
func (t Triad) Apply(op Transform) Triad {
	next := Triad{Root: t.Root, Minor: !t.Minor}
	switch op {
	case TransformL:
		if t.Minor {
			next.Root = theory.Mod12(t.Root - 4)
		} else {
			next.Root = theory.Mod12(t.Root + 4)
		}
	case TransformR:
		if t.Minor {
			next.Root = theory.Mod12(t.Root + 3)
		} else {
			next.Root = theory.Mod12(t.Root - 3)
		}
	}
	return next
}

// Chord spells the triad with sharps, "" for major and "m" for minor
func (t Triad) Chord() theory.Chord {
	quality := ""
	if t.Minor {
		quality = "m"
	}
	return theory.Chord{Root: theory.SemitoneToNote(t.Root, true), Quality: quality}
}

// ParseTransforms reads a sequence such as "PLR" (case-insensitive)
func ParseTransforms(seq string) ([]Transform, error) {
	ops := make([]Transform, 0, len(seq))
	for _, r := range strings.ToUpper(seq) {
		op := Transform(string(r))
		if !slices.Contains(transforms, op) {
			return nil, fmt.Errorf("invalid PLR operation %q: use P, L or R", string(r))
		}
		ops = append(ops, op)
	}
	return ops, nil
}

// ApplySequence walks ops from start and returns every chord reached, in order
func ApplySequence(start theory.Chord, ops []Transform) ([]theory.Chord, error) {
	t, err := TriadOf(start)
	if err != nil {
		return nil, err
	}
	out := make([]theory.Chord, 0, len(ops))
	for _, op := range ops {
		t = t.Apply(op)
		out = append(out, t.Chord())
	}
	return out, nil
}

// Neighbors returns the three chords one transform away
func Neighbors(chord theory.Chord) (map[Transform]theory.Chord, error) {
	t, err := TriadOf(chord)
	if err != nil {
		return nil, err
	}
	out := make(map[Transform]theory.Chord, len(transforms))
	for _, op := range transforms {
		out[op] = t.Apply(op).Chord()
	}
	return out, nil
}

// TonnetzPath finds a shortest transform sequence from one chord to another by
// breadth-first search, trying P, L, R in that order. ok is false when no path
// of at most maxSteps exists. Equal chords yield an empty path.
func TonnetzPath(from, to theory.Chord, maxSteps int) (path []Transform, ok bool, err error) {
	start, err := TriadOf(from)
	if err != nil {
		return nil, false, err
	}
	target, err := TriadOf(to)
	if err != nil {
		return nil, false, err
	}
	if start == target {
		return []Transform{}, true, nil
	}

	type node struct {
		triad Triad
		path  []Transform
	}
	queue := []node{{triad: start}}
	visited := map[Triad]bool{start: true}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if len(current.path) >= maxSteps {
			continue
		}

		for _, op := range transforms {
			next := current.triad.Apply(op)
			nextPath := append(slices.Clone(current.path), op)
			if next == target {
				return nextPath, true, nil
			}
			if !visited[next] {
				visited[next] = true
				queue = append(queue, node{triad: next, path: nextPath})
			}
		}
	}
	return nil, false, nil
}

// NeoRiemannian places a chord change on the Tonnetz. Distance and path are
// nil when either chord is not major or minor, or no path fits the search depth.
type NeoRiemannian struct {
	TonnetzDistance *int        `json:"tonnetz_distance"`
	PLRPath         []Transform `json:"plr_path"`
	IsParsimonious  bool        `json:"is_parsimonious"`
}

// AnalyzeNeoRiemannian measures the Tonnetz distance of a chord change.
// A single transform counts as parsimonious.
func AnalyzeNeoRiemannian(from, to theory.Chord) NeoRiemannian {
	path, ok, err := TonnetzPath(from, to, PathSearchDepth)
	if err != nil || !ok {
		return NeoRiemannian{}
	}
	distance := len(path)
	return NeoRiemannian{
		TonnetzDistance: &distance,
		PLRPath:         path,
		IsParsimonious:  distance == 1,
	}
}

// PairAnalysis combines voice movement with the Tonnetz view of a chord change
type PairAnalysis struct {
	Transition
	NeoRiemannian
}

// AnalyzePairComprehensive is AnalyzePair plus AnalyzeNeoRiemannian
func AnalyzePairComprehensive(from, to theory.Chord) PairAnalysis {
	return PairAnalysis{
		Transition:    AnalyzePair(from, to),
		NeoRiemannian: AnalyzeNeoRiemannian(from, to),
	}
}
