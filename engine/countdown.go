package engine

import (
	"github.com/wfunc/colorparty/game"
	"github.com/wfunc/colorparty/logger"
	"github.com/wfunc/colorparty/network"
	"github.com/wfunc/colorparty/room"
	"github.com/wfunc/colorparty/session"
	"github.com/wfunc/colorparty/state"
)

// HandleStart begins the match countdown. Host-only, and only from a waiting
// room; a stale start against any other status is one of the races that
// resolve silently.
func (e *Engine) HandleStart(sess *session.Session) {
	e.mu.Lock()
	defer e.mu.Unlock()

	roomCode, playerID := sess.Identity()
	if roomCode == "" {
		return
	}
	r, exists := e.rooms.GetRoom(roomCode)
	if !exists {
		return
	}
	player, found := r.FindPlayer(playerID)
	if !found {
		return
	}
	if !player.Host {
		e.errorTo(sess, "not_host", "only the host can start the game")
		return
	}
	if r.GetStatus() != state.StatusWaiting {
		return
	}
	if err := r.SetStatus(state.StatusCountdown); err != nil {
		return
	}

	e.persistRoomState(r)
	logger.Log.Infof("Room %s countdown started by %s", roomCode, playerID)
	e.countdownTickLocked(roomCode, e.cfg.CountdownFrom)
}

// countdownTickLocked emits one tick and schedules the next, or starts the
// game at zero. Each invocation re-fetches the room: if it vanished between
// ticks, the chain just stops.
func (e *Engine) countdownTickLocked(roomCode string, count int) {
	r, exists := e.rooms.GetRoom(roomCode)
	if !exists || r.GetStatus() != state.StatusCountdown {
		return
	}

	if count > 0 {
		e.sched.After(e.cfg.CountdownTick, func() {
			e.mu.Lock()
			defer e.mu.Unlock()
			e.countdownTickLocked(roomCode, count-1)
		})
		e.bcast.ToRoom(roomCode, network.MsgTypeCountdownTick, CountdownTickPayload{Count: count})
		return
	}

	e.bcast.ToRoom(roomCode, network.MsgTypeCountdownTick, CountdownTickPayload{Count: 0})
	if err := r.SetStatus(state.StatusActive); err != nil {
		return
	}
	e.persistRoomState(r)
	e.startGameLocked(r)
}

// startGameLocked initializes the room's configured variant and kicks off its
// first round.
func (e *Engine) startGameLocked(r *room.Room) {
	ids := r.PlayerIDs()

	var g *game.State
	switch r.GameType {
	case game.TypeSequence:
		g = game.NewSequence(ids, e.cfg.SeqBaseLength, e.rng)
	default:
		g = game.NewRace(ids, e.cfg.RaceRounds, e.rng)
	}
	r.SetGame(g)

	e.bcast.ToRoom(r.Code, network.MsgTypeGameStarted, GameStartedPayload{GameType: g.Type})
	logger.Log.Infof("Room %s started %s game with %d players", r.Code, g.Type, len(ids))

	switch g.Type {
	case game.TypeRace:
		e.bcast.ToRoom(r.Code, network.MsgTypeRaceRoundStart, RaceRoundStartPayload{
			Round:       g.Race.Round,
			TotalRounds: g.Race.TotalRounds,
			Target:      g.Race.Target,
		})
	case game.TypeSequence:
		e.startSeqRoundLocked(r)
	}
}
