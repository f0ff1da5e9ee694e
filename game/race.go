package game

import (
	"math/rand"
)

// RacePhase is the race game's round phase.
type RacePhase string

const (
	RaceInRound  RacePhase = "in_round"
	RaceFinished RacePhase = "finished"
)

// RaceState is the authoritative state of one race match.
type RaceState struct {
	Round       int            `json:"round"`
	TotalRounds int            `json:"total_rounds"`
	Target      Color          `json:"target"`
	Scores      map[string]int `json:"scores"`
	RoundWinner string         `json:"round_winner,omitempty"`
	Phase       RacePhase      `json:"phase"`
}

// NewRace initializes a race match for the given players.
func NewRace(playerIDs []string, totalRounds int, rng *rand.Rand) *State {
	scores := make(map[string]int, len(playerIDs))
	for _, id := range playerIDs {
		scores[id] = 0
	}
	return &State{
		Type: TypeRace,
		Race: &RaceState{
			Round:       1,
			TotalRounds: totalRounds,
			Target:      randomColor(rng),
			Scores:      scores,
			Phase:       RaceInRound,
		},
	}
}

// ResolveRound scores a completed round from the full ordered answer list and
// advances to the next round, or to the finished phase after the last one.
// The round winner is the earliest answer matching the target color; a round
// where nobody hit the target has no winner and awards no points.
func ResolveRound(s *RaceState, answers []Answer, rng *rand.Rand) {
	s.RoundWinner = ""
	for _, a := range answers {
		if a.Color == s.Target {
			s.RoundWinner = a.PlayerID
			s.Scores[a.PlayerID]++
			break
		}
	}

	if s.Round >= s.TotalRounds {
		s.Phase = RaceFinished
		return
	}
	s.Round++
	s.Target = randomColor(rng)
}

// RaceWinner returns the player with the highest score. Ties go to the empty
// string so the caller can announce a draw.
func RaceWinner(s *RaceState) string {
	best, winner, tied := -1, "", false
	for id, score := range s.Scores {
		switch {
		case score > best:
			best, winner, tied = score, id, false
		case score == best:
			tied = true
		}
	}
	if tied {
		return ""
	}
	return winner
}
