package engine

import (
	"github.com/wfunc/colorparty/game"
	"github.com/wfunc/colorparty/logger"
	"github.com/wfunc/colorparty/models"
	"github.com/wfunc/colorparty/network"
	"github.com/wfunc/colorparty/room"
	"github.com/wfunc/colorparty/session"
	"github.com/wfunc/colorparty/state"
)

// HandleSubmitAnswer records one race answer. Duplicates from the same
// player and submissions against the wrong room status or game variant are
// silently discarded.
func (e *Engine) HandleSubmitAnswer(sess *session.Session, req AnswerRequest) {
	e.mu.Lock()
	defer e.mu.Unlock()

	roomCode, playerID := sess.Identity()
	if roomCode == "" {
		return
	}
	r, exists := e.rooms.GetRoom(roomCode)
	if !exists || r.GetStatus() != state.StatusActive {
		return
	}
	g := r.GetGame()
	if g == nil || g.Type != game.TypeRace || g.Race.Phase != game.RaceInRound {
		return
	}
	if _, found := r.FindPlayer(playerID); !found {
		return
	}

	if !e.store.AppendAnswer(roomCode, game.Answer{
		PlayerID: playerID,
		Color:    req.Color,
		At:       e.clock.Now(),
	}) {
		return // duplicate within the round, idempotent no-op
	}
	e.maybeResolveRaceLocked(r)
}

// maybeResolveRaceLocked resolves the round once every currently-connected
// player has answered. Called on answer acceptance and whenever the connected
// count drops, so a round never stalls on a seat that went away.
func (e *Engine) maybeResolveRaceLocked(r *room.Room) {
	if r.GetStatus() != state.StatusActive {
		return
	}
	g := r.GetGame()
	if g == nil || g.Type != game.TypeRace || g.Race.Phase != game.RaceInRound {
		return
	}

	answers := e.store.Answers(r.Code)
	if len(answers) == 0 || len(answers) < r.ConnectedCount() {
		return
	}

	rs := g.Race
	resolvedRound := rs.Round
	target := rs.Target
	game.ResolveRound(rs, answers, e.rng)
	r.SetGame(g)
	e.store.ClearAnswers(r.Code)
	e.roundResolved()

	if rs.Phase == game.RaceFinished {
		e.bcast.ToRoom(r.Code, network.MsgTypeRaceRoundResult, RaceRoundResultPayload{
			Round:  resolvedRound,
			Winner: rs.RoundWinner,
			Target: target,
			Scores: rs.Scores,
		})
		e.finishRaceLocked(r, rs)
		return
	}

	// Arm the next round before announcing the result so the schedule is in
	// place by the time any observer reacts.
	nextRound := rs.Round
	e.sched.After(e.cfg.RaceResultDelay, func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		e.startRaceRoundLocked(r.Code, nextRound)
	})
	e.bcast.ToRoom(r.Code, network.MsgTypeRaceRoundResult, RaceRoundResultPayload{
		Round:  resolvedRound,
		Winner: rs.RoundWinner,
		Target: target,
		Scores: rs.Scores,
	})
	logger.Log.Infof("Room %s race round %d resolved, winner=%q", r.Code, resolvedRound, rs.RoundWinner)
}

// startRaceRoundLocked announces a round's parameters after the result-display
// delay, re-checking that the room is still running that exact round.
func (e *Engine) startRaceRoundLocked(roomCode string, round int) {
	r, exists := e.rooms.GetRoom(roomCode)
	if !exists || r.GetStatus() != state.StatusActive {
		return
	}
	g := r.GetGame()
	if g == nil || g.Type != game.TypeRace || g.Race.Phase != game.RaceInRound || g.Race.Round != round {
		return
	}
	e.bcast.ToRoom(roomCode, network.MsgTypeRaceRoundStart, RaceRoundStartPayload{
		Round:       g.Race.Round,
		TotalRounds: g.Race.TotalRounds,
		Target:      g.Race.Target,
	})
}

func (e *Engine) finishRaceLocked(r *room.Room, rs *game.RaceState) {
	winner := game.RaceWinner(rs)
	e.bcast.ToRoom(r.Code, network.MsgTypeRaceFinished, RaceFinishedPayload{
		Winner: winner,
		Scores: rs.Scores,
	})
	r.SetStatus(state.StatusFinished)
	e.persistRoomState(r)
	logger.Log.Infof("Room %s race finished, winner=%q", r.Code, winner)

	if e.records != nil {
		results := make(map[string]any, len(rs.Scores))
		for id, score := range rs.Scores {
			results[id] = score
		}
		e.records.SaveMatch(models.MatchRecord{
			RoomCode:   r.Code,
			GameType:   string(game.TypeRace),
			Winner:     winner,
			Results:    results,
			FinishedAt: e.clock.Now(),
		})
	}
}
