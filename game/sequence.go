package game

import (
	"math/rand"
)

// SeqStatus is a player's standing within a sequence match.
type SeqStatus string

const (
	SeqPlaying    SeqStatus = "playing"
	SeqEliminated SeqStatus = "eliminated"
	SeqWinner     SeqStatus = "winner"
)

// SeqPlayer tracks one player's standing and per-step progress pointer.
type SeqPlayer struct {
	Status   SeqStatus `json:"status"`
	Progress int       `json:"progress"`
}

// SequenceState is the authoritative state of one sequence match.
type SequenceState struct {
	Round      int                   `json:"round"`
	BaseLength int                   `json:"base_length"`
	Sequence   []Color               `json:"sequence"`
	Players    map[string]*SeqPlayer `json:"players"`
}

// NewSequence initializes a sequence match at round one.
func NewSequence(playerIDs []string, baseLength int, rng *rand.Rand) *State {
	players := make(map[string]*SeqPlayer, len(playerIDs))
	for _, id := range playerIDs {
		players[id] = &SeqPlayer{Status: SeqPlaying}
	}
	return &State{
		Type: TypeSequence,
		Sequence: &SequenceState{
			Round:      1,
			BaseLength: baseLength,
			Sequence:   randomSequence(rng, baseLength),
			Players:    players,
		},
	}
}

// NextRound generates a fresh, one-longer sequence and resets every surviving
// player's progress pointer.
func NextRound(s *SequenceState, rng *rand.Rand) {
	s.Round++
	s.Sequence = randomSequence(rng, s.BaseLength+s.Round-1)
	for _, p := range s.Players {
		if p.Status == SeqPlaying {
			p.Progress = 0
		}
	}
}

// ValidateWhole judges a full candidate sequence against the generated one.
func ValidateWhole(s *SequenceState, candidate []Color) bool {
	if len(candidate) != len(s.Sequence) {
		return false
	}
	for i, c := range candidate {
		if c != s.Sequence[i] {
			return false
		}
	}
	return true
}

// ValidateStep judges a single color against the player's current progress
// pointer. A pointer already past the sequence end never validates.
func ValidateStep(s *SequenceState, playerID string, c Color) bool {
	p, ok := s.Players[playerID]
	if !ok || p.Progress >= len(s.Sequence) {
		return false
	}
	return s.Sequence[p.Progress] == c
}

// AdvanceProgress moves the player's progress pointer one step and reports
// whether the player has now completed the round's sequence.
func AdvanceProgress(s *SequenceState, playerID string) (completed bool) {
	p, ok := s.Players[playerID]
	if !ok {
		return false
	}
	p.Progress++
	return p.Progress >= len(s.Sequence)
}

// Eliminate marks a player out of the match.
func Eliminate(s *SequenceState, playerID string) {
	if p, ok := s.Players[playerID]; ok {
		p.Status = SeqEliminated
	}
}

// PlayingCount returns how many players are still in the match.
func PlayingCount(s *SequenceState) int {
	n := 0
	for _, p := range s.Players {
		if p.Status == SeqPlaying {
			n++
		}
	}
	return n
}

// RoundComplete reports whether every still-playing player has walked the
// whole sequence this round.
func RoundComplete(s *SequenceState) bool {
	for _, p := range s.Players {
		if p.Status == SeqPlaying && p.Progress < len(s.Sequence) {
			return false
		}
	}
	return true
}

// ShouldEnd reports whether the match is over: fewer than minPlayers are
// still playing.
func ShouldEnd(s *SequenceState, minPlayers int) bool {
	return PlayingCount(s) < minPlayers
}

// SequenceWinner crowns the last player standing, falling back to the highest
// progress pointer when nobody is left playing. Returns the winner's ID, or
// the empty string for a drawn match.
func SequenceWinner(s *SequenceState) string {
	var winner string
	for id, p := range s.Players {
		if p.Status == SeqPlaying {
			if winner != "" {
				return "" // more than one survivor, no single winner
			}
			winner = id
		}
	}
	if winner != "" {
		if p := s.Players[winner]; p != nil {
			p.Status = SeqWinner
		}
		return winner
	}

	best, tied := -1, false
	for id, p := range s.Players {
		switch {
		case p.Progress > best:
			best, winner, tied = p.Progress, id, false
		case p.Progress == best:
			tied = true
		}
	}
	if tied {
		return ""
	}
	return winner
}
