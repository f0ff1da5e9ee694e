package game

import (
	"math/rand"
	"testing"
	"time"
)

func raceRng() *rand.Rand {
	return rand.New(rand.NewSource(42))
}

func TestNewRace(t *testing.T) {
	g := NewRace([]string{"p1", "p2"}, 5, raceRng())

	if g.Type != TypeRace || g.Race == nil || g.Sequence != nil {
		t.Fatalf("Expected a race-tagged state, got %+v", g)
	}
	rs := g.Race
	if rs.Round != 1 || rs.TotalRounds != 5 || rs.Phase != RaceInRound {
		t.Errorf("Unexpected initial state: %+v", rs)
	}
	if rs.Target == "" {
		t.Error("A target color must be drawn at creation")
	}
	if len(rs.Scores) != 2 || rs.Scores["p1"] != 0 || rs.Scores["p2"] != 0 {
		t.Errorf("Scores should start at zero for every player: %v", rs.Scores)
	}
}

func TestResolveRound_EarliestMatchWins(t *testing.T) {
	g := NewRace([]string{"p1", "p2", "p3"}, 5, raceRng())
	rs := g.Race
	target := rs.Target

	now := time.Now()
	answers := []Answer{
		{PlayerID: "p1", Color: wrong(target), At: now},
		{PlayerID: "p2", Color: target, At: now.Add(time.Millisecond)},
		{PlayerID: "p3", Color: target, At: now.Add(2 * time.Millisecond)},
	}
	ResolveRound(rs, answers, raceRng())

	if rs.RoundWinner != "p2" {
		t.Errorf("Expected p2 (earliest match) to win, got %q", rs.RoundWinner)
	}
	if rs.Scores["p2"] != 1 || rs.Scores["p3"] != 0 {
		t.Errorf("Only the round winner scores: %v", rs.Scores)
	}
	if rs.Round != 2 || rs.Phase != RaceInRound {
		t.Errorf("Expected advance to round 2, got round %d phase %s", rs.Round, rs.Phase)
	}
}

func TestResolveRound_NobodyHitsTarget(t *testing.T) {
	g := NewRace([]string{"p1", "p2"}, 3, raceRng())
	rs := g.Race
	miss := wrong(rs.Target)

	ResolveRound(rs, []Answer{
		{PlayerID: "p1", Color: miss},
		{PlayerID: "p2", Color: miss},
	}, raceRng())

	if rs.RoundWinner != "" {
		t.Errorf("Expected no winner, got %q", rs.RoundWinner)
	}
	if rs.Scores["p1"] != 0 || rs.Scores["p2"] != 0 {
		t.Errorf("No points awarded on an all-miss round: %v", rs.Scores)
	}
	if rs.Round != 2 {
		t.Errorf("The round still advances, got round %d", rs.Round)
	}
}

func TestResolveRound_LastRoundFinishes(t *testing.T) {
	g := NewRace([]string{"p1", "p2"}, 1, raceRng())
	rs := g.Race

	ResolveRound(rs, []Answer{{PlayerID: "p1", Color: rs.Target}}, raceRng())

	if rs.Phase != RaceFinished {
		t.Errorf("Expected finished phase, got %s", rs.Phase)
	}
	if rs.Round != 1 {
		t.Errorf("The round counter must not pass the total, got %d", rs.Round)
	}
}

func TestRaceWinner(t *testing.T) {
	rs := &RaceState{Scores: map[string]int{"p1": 3, "p2": 1, "p3": 2}}
	if w := RaceWinner(rs); w != "p1" {
		t.Errorf("Expected p1, got %q", w)
	}

	rs.Scores["p2"] = 3
	if w := RaceWinner(rs); w != "" {
		t.Errorf("A tied top score is a draw, got %q", w)
	}
}

func wrong(c Color) Color {
	for _, candidate := range Palette {
		if candidate != c {
			return candidate
		}
	}
	return c
}
