// Package embedded ships the built-in practice progressions.
package embedded

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

//go:embed data/progressions.json
var ProgressionsJSON []byte

// Progression is one practice progression; its ID doubles as the exercise id for reviews
type Progression struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Style       string   `json:"style"`
	Key         string   `json:"key"`
	Mode        string   `json:"mode"`
	Difficulty  int      `json:"difficulty"`
	Chords      []string `json:"chords"`
	Description string   `json:"description"`
}

var (
	loadOnce     sync.Once
	progressions []Progression
	loadErr      error
)

// Progressions decodes the catalogue once
func Progressions() ([]Progression, error) {
	loadOnce.Do(func() {
		if err := json.Unmarshal(ProgressionsJSON, &progressions); err != nil {
			loadErr = fmt.Errorf("failed to decode progressions: %w", err)
		}
	})
	return progressions, loadErr
}

// FindProgression looks a progression up by id
func FindProgression(id string) (Progression, bool) {
	all, err := Progressions()
	if err != nil {
		return Progression{}, false
	}
	for _, p := range all {
		if p.ID == id {
			return p, true
		}
	}
	return Progression{}, false
}

// FilterByStyle returns the progressions of one style; an empty style returns all
func FilterByStyle(style string) ([]Progression, error) {
	all, err := Progressions()
	if err != nil || style == "" {
		return all, err
	}
	out := []Progression{}
	for _, p := range all {
		if strings.EqualFold(p.Style, style) {
			out = append(out, p)
		}
	}
	return out, nil
}
