package game

import (
	"math/rand"
	"testing"
)

func seqRng() *rand.Rand {
	return rand.New(rand.NewSource(7))
}

func newSeqState(players ...string) *SequenceState {
	return NewSequence(players, 3, seqRng()).Sequence
}

func TestNewSequence(t *testing.T) {
	g := NewSequence([]string{"p1", "p2"}, 3, seqRng())

	if g.Type != TypeSequence || g.Sequence == nil || g.Race != nil {
		t.Fatalf("Expected a sequence-tagged state, got %+v", g)
	}
	ss := g.Sequence
	if ss.Round != 1 || ss.BaseLength != 3 || len(ss.Sequence) != 3 {
		t.Errorf("Unexpected initial state: %+v", ss)
	}
	for id, p := range ss.Players {
		if p.Status != SeqPlaying || p.Progress != 0 {
			t.Errorf("Player %s should start playing at progress 0: %+v", id, p)
		}
	}
}

func TestNextRound_GrowsAndResetsProgress(t *testing.T) {
	ss := newSeqState("p1", "p2")
	ss.Players["p1"].Progress = 3
	Eliminate(ss, "p2")
	ss.Players["p2"].Progress = 2

	NextRound(ss, seqRng())

	if ss.Round != 2 || len(ss.Sequence) != 4 {
		t.Errorf("Expected round 2 with 4 colors, got round %d length %d", ss.Round, len(ss.Sequence))
	}
	if ss.Players["p1"].Progress != 0 {
		t.Error("Surviving player's progress should reset")
	}
	if ss.Players["p2"].Progress != 2 {
		t.Error("Eliminated player's progress is left alone")
	}
}

func TestValidateWhole(t *testing.T) {
	ss := newSeqState("p1")

	exact := append([]Color(nil), ss.Sequence...)
	if !ValidateWhole(ss, exact) {
		t.Error("Exact candidate should validate")
	}

	deviant := append([]Color(nil), ss.Sequence...)
	deviant[1] = wrong(deviant[1])
	if ValidateWhole(ss, deviant) {
		t.Error("A single deviation must fail")
	}

	if ValidateWhole(ss, exact[:2]) {
		t.Error("A short candidate must fail")
	}
	if ValidateWhole(ss, append(exact, "red")) {
		t.Error("A long candidate must fail")
	}
}

func TestValidateStep_FollowsProgressPointer(t *testing.T) {
	ss := newSeqState("p1")

	if !ValidateStep(ss, "p1", ss.Sequence[0]) {
		t.Error("First color should validate at progress 0")
	}
	if ValidateStep(ss, "p1", wrong(ss.Sequence[0])) {
		t.Error("Wrong color must not validate")
	}

	AdvanceProgress(ss, "p1")
	if !ValidateStep(ss, "p1", ss.Sequence[1]) {
		t.Error("Validation should track the advanced pointer")
	}
	if ValidateStep(ss, "unknown", ss.Sequence[0]) {
		t.Error("Unknown player must not validate")
	}
}

func TestAdvanceProgress_ReportsCompletion(t *testing.T) {
	ss := newSeqState("p1")

	for i := 0; i < len(ss.Sequence)-1; i++ {
		if AdvanceProgress(ss, "p1") {
			t.Fatalf("Completion reported early at step %d", i)
		}
	}
	if !AdvanceProgress(ss, "p1") {
		t.Error("Final step should report completion")
	}
}

func TestRoundComplete_IgnoresEliminated(t *testing.T) {
	ss := newSeqState("p1", "p2")

	for range ss.Sequence {
		AdvanceProgress(ss, "p1")
	}
	if RoundComplete(ss) {
		t.Fatal("p2 is still typing, round incomplete")
	}

	Eliminate(ss, "p2")
	if !RoundComplete(ss) {
		t.Error("Eliminated seats must not block round completion")
	}
}

func TestShouldEnd(t *testing.T) {
	ss := newSeqState("p1", "p2", "p3")

	if ShouldEnd(ss, 2) {
		t.Error("Three playing, minimum two: should not end")
	}
	Eliminate(ss, "p1")
	if ShouldEnd(ss, 2) {
		t.Error("Two playing, minimum two: should not end")
	}
	Eliminate(ss, "p2")
	if !ShouldEnd(ss, 2) {
		t.Error("One playing, minimum two: should end")
	}
}

func TestSequenceWinner_SoleSurvivor(t *testing.T) {
	ss := newSeqState("p1", "p2")
	Eliminate(ss, "p1")

	if w := SequenceWinner(ss); w != "p2" {
		t.Fatalf("Expected p2, got %q", w)
	}
	if ss.Players["p2"].Status != SeqWinner {
		t.Error("Sole survivor should be marked the winner")
	}
}

func TestSequenceWinner_MultipleSurvivorsIsDraw(t *testing.T) {
	ss := newSeqState("p1", "p2")
	if w := SequenceWinner(ss); w != "" {
		t.Errorf("Two survivors means no single winner, got %q", w)
	}
}

func TestSequenceWinner_FallsBackToProgress(t *testing.T) {
	ss := newSeqState("p1", "p2")
	Eliminate(ss, "p1")
	Eliminate(ss, "p2")
	ss.Players["p1"].Progress = 2
	ss.Players["p2"].Progress = 1

	if w := SequenceWinner(ss); w != "p1" {
		t.Errorf("Deepest progress breaks the no-survivor case, got %q", w)
	}

	ss.Players["p2"].Progress = 2
	if w := SequenceWinner(ss); w != "" {
		t.Errorf("Equal progress is a draw, got %q", w)
	}
}
