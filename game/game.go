// Package game holds the pure state-transition rules for both party games.
// Nothing here touches rooms, sessions or timers: callers feed inputs in and
// persist whatever comes out.
package game

import (
	"math/rand"
	"time"
)

// Color is one of the palette colors both games are played with.
type Color string

var Palette = []Color{"red", "green", "blue", "yellow", "purple", "orange"}

// Type discriminates the two game variants.
type Type string

const (
	TypeRace     Type = "race"
	TypeSequence Type = "sequence"
)

// ValidType reports whether t names a known game variant.
func ValidType(t Type) bool {
	return t == TypeRace || t == TypeSequence
}

// State is the tagged union of per-variant game state. Exactly one of the
// variant pointers is non-nil, matching Type.
type State struct {
	Type     Type           `json:"type"`
	Race     *RaceState     `json:"race,omitempty"`
	Sequence *SequenceState `json:"sequence,omitempty"`
}

// Answer is one race-game submission with its server-assigned receive time.
type Answer struct {
	PlayerID string    `json:"player_id"`
	Color    Color     `json:"color"`
	At       time.Time `json:"at"`
}

func randomColor(rng *rand.Rand) Color {
	return Palette[rng.Intn(len(Palette))]
}

func randomSequence(rng *rand.Rand, length int) []Color {
	seq := make([]Color, length)
	for i := range seq {
		seq[i] = randomColor(rng)
	}
	return seq
}
