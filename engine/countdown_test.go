package engine

import (
	"testing"
	"time"

	"github.com/wfunc/colorparty/game"
	"github.com/wfunc/colorparty/network"
	"github.com/wfunc/colorparty/state"
)

func TestCountdownRunsToGameStart(t *testing.T) {
	f := newFixture(t)
	r, sessions, _ := f.setupRoom(game.TypeRace, "alice", "bob")

	f.eng.HandleStart(sessions[0])

	if r.GetStatus() != state.StatusCountdown {
		t.Fatalf("Expected countdown status, got %s", r.GetStatus())
	}
	msg, ok := f.rec.lastRoom(network.MsgTypeCountdownTick)
	if !ok {
		t.Fatal("First tick should broadcast immediately")
	}
	if count := msg.Payload.(CountdownTickPayload).Count; count != 3 {
		t.Fatalf("Expected first tick 3, got %d", count)
	}

	for want := 2; want >= 0; want-- {
		f.clock.Advance(time.Second)
		waitFor(t, func() bool {
			last, ok := f.rec.lastRoom(network.MsgTypeCountdownTick)
			return ok && last.Payload.(CountdownTickPayload).Count == want
		}, "countdown tick")
	}

	waitFor(t, func() bool {
		return f.rec.roomCount(r.Code, network.MsgTypeGameStarted) == 1
	}, "game start after zero tick")
	if r.GetStatus() != state.StatusActive {
		t.Errorf("Expected active status, got %s", r.GetStatus())
	}
	if n := f.rec.roomCount(r.Code, network.MsgTypeRaceRoundStart); n != 1 {
		t.Errorf("Race variant should announce round 1, got %d starts", n)
	}
	g := r.GetGame()
	if g == nil || g.Type != game.TypeRace || g.Race.Round != 1 {
		t.Errorf("Expected a race game at round 1, got %+v", g)
	}
}

func TestCountdownStartsSequenceVariant(t *testing.T) {
	f := newFixture(t)
	r, sessions, _ := f.setupRoom(game.TypeSequence, "alice", "bob")

	f.eng.HandleStart(sessions[0])
	for want := 2; want >= 0; want-- {
		f.clock.Advance(time.Second)
		waitFor(t, func() bool {
			last, ok := f.rec.lastRoom(network.MsgTypeCountdownTick)
			return ok && last.Payload.(CountdownTickPayload).Count == want
		}, "countdown tick")
	}
	waitFor(t, func() bool {
		return f.rec.roomCount(r.Code, network.MsgTypeSeqRoundStart) == 1
	}, "sequence round reveal after countdown")

	msg, _ := f.rec.lastRoom(network.MsgTypeGameStarted)
	if gt := msg.Payload.(GameStartedPayload).GameType; gt != game.TypeSequence {
		t.Errorf("Expected sequence game, got %s", gt)
	}
	if g := r.GetGame(); g == nil || g.Sequence == nil || len(g.Sequence.Sequence) != 3 {
		t.Errorf("Expected a base-length sequence, got %+v", g)
	}
}

func TestStartRejectedForNonHost(t *testing.T) {
	f := newFixture(t)
	r, sessions, _ := f.setupRoom(game.TypeRace, "alice", "bob")

	f.eng.HandleStart(sessions[1])

	errs := f.rec.sessionMsgs(sessions[1].ID, network.MsgTypeError)
	if len(errs) != 1 {
		t.Fatalf("Expected one error notice, got %d", len(errs))
	}
	if code := errs[0].Payload.(ErrorNotice).Code; code != "not_host" {
		t.Errorf("Expected not_host, got %s", code)
	}
	if r.GetStatus() != state.StatusWaiting {
		t.Errorf("Room must stay waiting, is %s", r.GetStatus())
	}
}

func TestStartIgnoredOutsideWaiting(t *testing.T) {
	f := newFixture(t)
	r, sessions, _ := f.setupRoom(game.TypeRace, "alice", "bob")

	f.eng.HandleStart(sessions[0])
	ticks := f.rec.roomCount(r.Code, network.MsgTypeCountdownTick)

	// A duplicate start during the countdown must not fork a second chain.
	f.eng.HandleStart(sessions[0])
	settle()
	if n := f.rec.roomCount(r.Code, network.MsgTypeCountdownTick); n != ticks {
		t.Errorf("Duplicate start produced extra ticks: %d -> %d", ticks, n)
	}
}

func TestCountdownStopsWhenRoomCloses(t *testing.T) {
	f := newFixture(t)
	r, sessions, _ := f.setupRoom(game.TypeRace, "alice")

	f.eng.HandleStart(sessions[0])
	f.eng.HandleLeave(sessions[0])

	if _, exists := f.rooms.GetRoom(r.Code); exists {
		t.Fatal("Room should close when its last player leaves")
	}

	// The armed tick fires into a missing room and the chain dies there.
	f.clock.Advance(5 * time.Second)
	settle()
	if n := f.rec.roomCount(r.Code, network.MsgTypeGameStarted); n != 0 {
		t.Errorf("Closed room must never start a game, got %d", n)
	}
}
