package engine

import (
	"time"

	"github.com/wfunc/colorparty/game"
	"github.com/wfunc/colorparty/logger"
	"github.com/wfunc/colorparty/models"
	"github.com/wfunc/colorparty/network"
	"github.com/wfunc/colorparty/room"
	"github.com/wfunc/colorparty/session"
	"github.com/wfunc/colorparty/state"
)

// showDuration is how long the room watches the sequence play out: per-color
// show time plus inter-color gap for each element, plus a fixed tail.
func (e *Engine) showDuration(length int) time.Duration {
	per := e.cfg.SeqShowPerColor + e.cfg.SeqShowGap
	return time.Duration(length)*per + e.cfg.SeqShowTail
}

// startSeqRoundLocked runs one round's reveal lifecycle: broadcast the
// sequence, wait out the show, announce show-complete, then open the input
// phase after a short extra delay. Submissions before the input phase opens
// are never accepted.
func (e *Engine) startSeqRoundLocked(r *room.Room) {
	g := r.GetGame()
	if g == nil || g.Type != game.TypeSequence {
		return
	}
	ss := g.Sequence
	e.store.SetInputOpen(r.Code, false)

	round := ss.Round
	e.sched.After(e.showDuration(len(ss.Sequence)), func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		e.onSeqShowDone(r.Code, round)
	})
	e.bcast.ToRoom(r.Code, network.MsgTypeSeqRoundStart, SeqRoundStartPayload{
		Round:    round,
		Sequence: ss.Sequence,
		Length:   len(ss.Sequence),
	})
	logger.Log.Infof("Room %s sequence round %d revealed (%d colors)", r.Code, round, len(ss.Sequence))
}

func (e *Engine) onSeqShowDone(roomCode string, round int) {
	r, ss := e.seqRoundStateLocked(roomCode, round)
	if ss == nil {
		return
	}
	e.sched.After(e.cfg.SeqInputDelay, func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		e.onSeqInputOpen(roomCode, round)
	})
	e.bcast.ToRoom(r.Code, network.MsgTypeSeqShowComplete, SeqPhasePayload{Round: round})
}

func (e *Engine) onSeqInputOpen(roomCode string, round int) {
	r, ss := e.seqRoundStateLocked(roomCode, round)
	if ss == nil {
		return
	}
	e.store.SetInputOpen(roomCode, true)
	e.bcast.ToRoom(r.Code, network.MsgTypeSeqInputOpen, SeqPhasePayload{Round: round})
}

// seqRoundStateLocked re-validates a pacing timer's preconditions: room still
// present, still active, still playing the sequence variant, still on the
// round the timer was armed for.
func (e *Engine) seqRoundStateLocked(roomCode string, round int) (*room.Room, *game.SequenceState) {
	r, exists := e.rooms.GetRoom(roomCode)
	if !exists || r.GetStatus() != state.StatusActive {
		return nil, nil
	}
	g := r.GetGame()
	if g == nil || g.Type != game.TypeSequence || g.Sequence.Round != round {
		return nil, nil
	}
	return r, g.Sequence
}

// HandleSubmitSequence handles whole-sequence mode: one full candidate per
// player per round. The submission resolves the round for the room: correct
// advances everyone, incorrect eliminates the submitter.
func (e *Engine) HandleSubmitSequence(sess *session.Session, req SequenceRequest) {
	e.mu.Lock()
	defer e.mu.Unlock()

	r, ss, playerID := e.seqSubmissionLocked(sess)
	if ss == nil {
		return
	}

	correct := game.ValidateWhole(ss, req.Colors)
	// Close the input phase while the result is on display.
	e.store.SetInputOpen(r.Code, false)

	round := ss.Round
	e.sched.After(e.cfg.SeqResultDelay, func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		e.onSeqWholeResolved(r.Code, round, playerID, correct)
	})
	e.bcast.ToRoom(r.Code, network.MsgTypeSeqResult, SeqResultPayload{
		PlayerID: playerID,
		Correct:  correct,
		Sequence: ss.Sequence,
	})
	logger.Log.Infof("Room %s sequence round %d: player %s submitted %v", r.Code, round, playerID, correct)
}

// onSeqWholeResolved applies a whole-sequence verdict after the result
// display delay.
func (e *Engine) onSeqWholeResolved(roomCode string, round int, playerID string, correct bool) {
	r, ss := e.seqRoundStateLocked(roomCode, round)
	if ss == nil {
		return
	}

	if correct {
		e.advanceSeqRoundLocked(r, ss)
		return
	}

	game.Eliminate(ss, playerID)
	e.bcast.ToRoom(roomCode, network.MsgTypeSeqElimination, SeqEliminationPayload{
		PlayerID: playerID,
		Reason:   "wrong_sequence",
		Sequence: ss.Sequence,
	})
	if e.evaluateSeqEndLocked(r) {
		return
	}
	// Survivors get a fresh round rather than replaying a burned sequence.
	e.advanceSeqRoundLocked(r, ss)
}

// HandleSubmitStep handles per-step mode: one color at the player's current
// progress pointer. A mismatch eliminates immediately; completing the
// sequence parks the player until the whole room is done.
func (e *Engine) HandleSubmitStep(sess *session.Session, req StepRequest) {
	e.mu.Lock()
	defer e.mu.Unlock()

	r, ss, playerID := e.seqSubmissionLocked(sess)
	if ss == nil {
		return
	}
	p := ss.Players[playerID]
	if p.Progress >= len(ss.Sequence) {
		return // already completed this round; extra submissions are no-ops
	}

	if !game.ValidateStep(ss, playerID, req.Color) {
		game.Eliminate(ss, playerID)
		e.bcast.ToRoom(r.Code, network.MsgTypeSeqElimination, SeqEliminationPayload{
			PlayerID: playerID,
			Reason:   "wrong_color",
			Sequence: ss.Sequence,
		})
		e.evaluateSeqEndLocked(r)
		return
	}

	completed := game.AdvanceProgress(ss, playerID)
	e.bcast.ToRoom(r.Code, network.MsgTypeSeqStepAck, SeqStepAckPayload{
		PlayerID: playerID,
		Index:    p.Progress - 1,
		Progress: p.Progress,
	})
	if completed && game.RoundComplete(ss) {
		e.scheduleSeqAdvanceLocked(r, ss)
	}
}

// seqSubmissionLocked validates the shared submission preconditions for both
// modes: bound session, active room, sequence variant, input phase open, and
// a submitter still in playing status. Failures resolve silently.
func (e *Engine) seqSubmissionLocked(sess *session.Session) (*room.Room, *game.SequenceState, string) {
	roomCode, playerID := sess.Identity()
	if roomCode == "" {
		return nil, nil, ""
	}
	r, exists := e.rooms.GetRoom(roomCode)
	if !exists || r.GetStatus() != state.StatusActive {
		return nil, nil, ""
	}
	g := r.GetGame()
	if g == nil || g.Type != game.TypeSequence {
		return nil, nil, ""
	}
	if !e.store.InputOpen(roomCode) {
		return nil, nil, ""
	}
	p, ok := g.Sequence.Players[playerID]
	if !ok || p.Status != game.SeqPlaying {
		return nil, nil, ""
	}
	return r, g.Sequence, playerID
}

// scheduleSeqAdvanceLocked arms the between-round pause once a round is done.
func (e *Engine) scheduleSeqAdvanceLocked(r *room.Room, ss *game.SequenceState) {
	round := ss.Round
	e.sched.After(e.cfg.SeqResultDelay, func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		r2, ss2 := e.seqRoundStateLocked(r.Code, round)
		if ss2 == nil {
			return
		}
		e.advanceSeqRoundLocked(r2, ss2)
	})
}

// advanceSeqRoundLocked moves the match to the next, longer sequence.
func (e *Engine) advanceSeqRoundLocked(r *room.Room, ss *game.SequenceState) {
	game.NextRound(ss, e.rng)
	e.roundResolved()
	e.startSeqRoundLocked(r)
}

// evaluateSeqEndLocked asks the end predicate after any elimination and
// finishes the match if it holds. Returns true when the game ended. When the
// game continues it also unblocks a round that the elimination completed.
func (e *Engine) evaluateSeqEndLocked(r *room.Room) bool {
	g := r.GetGame()
	if g == nil || g.Type != game.TypeSequence {
		return false
	}
	ss := g.Sequence

	if game.ShouldEnd(ss, e.cfg.SeqMinPlayers) {
		winner := game.SequenceWinner(ss)
		e.bcast.ToRoom(r.Code, network.MsgTypeSeqFinished, SeqFinishedPayload{
			Winner: winner,
			Round:  ss.Round,
		})
		r.SetStatus(state.StatusFinished)
		e.persistRoomState(r)
		e.store.SetInputOpen(r.Code, false)
		logger.Log.Infof("Room %s sequence finished at round %d, winner=%q", r.Code, ss.Round, winner)

		if e.records != nil {
			results := make(map[string]any, len(ss.Players))
			for id, p := range ss.Players {
				results[id] = map[string]any{"status": string(p.Status), "progress": p.Progress}
			}
			e.records.SaveMatch(models.MatchRecord{
				RoomCode:   r.Code,
				GameType:   string(game.TypeSequence),
				Winner:     winner,
				Results:    results,
				FinishedAt: e.clock.Now(),
			})
		}
		return true
	}

	if game.RoundComplete(ss) {
		e.scheduleSeqAdvanceLocked(r, ss)
	}
	return false
}
