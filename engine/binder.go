package engine

import (
	"github.com/google/uuid"

	"github.com/wfunc/colorparty/game"
	"github.com/wfunc/colorparty/logger"
	"github.com/wfunc/colorparty/network"
	"github.com/wfunc/colorparty/room"
	"github.com/wfunc/colorparty/session"
	"github.com/wfunc/colorparty/state"
)

// HandleCreate opens a fresh room with the requested game variant and seats
// the creator as host.
func (e *Engine) HandleCreate(sess *session.Session, req CreateRequest) {
	e.mu.Lock()
	defer e.mu.Unlock()

	gameType := req.GameType
	if gameType == "" {
		gameType = game.TypeRace
	}
	if !game.ValidType(gameType) {
		e.errorTo(sess, "bad_game_type", "unknown game type")
		return
	}
	if req.Name == "" {
		e.errorTo(sess, "bad_name", "a display name is required")
		return
	}

	r := e.rooms.CreateRoom(gameType)
	player := &room.Player{ID: uuid.New().String(), Name: req.Name}
	if err := r.AddPlayer(player); err != nil {
		e.errorTo(sess, "join_failed", err.Error())
		return
	}
	r.BindConn(player.ID, sess)
	sess.Bind(r.Code, player.ID)
	e.bcast.Subscribe(r.Code, sess)

	tok, err := e.tokens.Issue(r.Code, player.ID, e.clock.Now())
	if err != nil {
		logger.Log.Errorf("Failed to issue token for room %s: %v", r.Code, err)
	}
	e.bcast.ToSession(sess, network.MsgTypeCreateRoom, WelcomePayload{
		PlayerID: player.ID,
		Token:    tok,
		Room:     r.Snapshot(),
	})
	e.roomCountChanged()
	logger.Log.Infof("Session %s created room %s (%s)", sess.ID, r.Code, gameType)
}

// HandleJoin binds a connection to a room explicitly. Membership changed, so
// besides welcoming the joiner it notifies the others and broadcasts the
// updated snapshot to everyone.
func (e *Engine) HandleJoin(sess *session.Session, req JoinRequest) {
	e.mu.Lock()
	defer e.mu.Unlock()

	r, exists := e.rooms.GetRoom(req.RoomCode)
	if !exists {
		e.errorTo(sess, "not_found", "no such room")
		return
	}
	// Membership is fixed once the countdown starts; a mid-game joiner would
	// hold no seat in the running game and stall round resolution.
	if r.GetStatus() != state.StatusWaiting {
		e.errorTo(sess, "room_started", "room is no longer accepting players")
		return
	}
	if req.Name == "" {
		e.errorTo(sess, "bad_name", "a display name is required")
		return
	}

	player := &room.Player{ID: uuid.New().String(), Name: req.Name}
	if err := r.AddPlayer(player); err != nil {
		e.errorTo(sess, "join_failed", err.Error())
		return
	}
	r.BindConn(player.ID, sess)
	sess.Bind(r.Code, player.ID)

	// Notify current members before the joiner subscribes, then bring
	// everyone (joiner included) to the same snapshot.
	e.bcast.ToRoom(r.Code, network.MsgTypePlayerJoined, PlayerEvent{PlayerID: player.ID, Name: player.Name})
	e.bcast.Subscribe(r.Code, sess)

	tok, err := e.tokens.Issue(r.Code, player.ID, e.clock.Now())
	if err != nil {
		logger.Log.Errorf("Failed to issue token for room %s: %v", r.Code, err)
	}
	e.bcast.ToSession(sess, network.MsgTypeJoinRoom, WelcomePayload{
		PlayerID: player.ID,
		Token:    tok,
		Room:     r.Snapshot(),
	})
	e.snapshotUpdate(r)
	logger.Log.Infof("Player %s joined room %s", player.ID, r.Code)
}

// HandleResume rebinds a fresh connection to its old seat using a session
// token. Absent rooms or players fail silently: the token may simply have
// outlived the room.
func (e *Engine) HandleResume(sess *session.Session, req ResumeRequest) {
	e.mu.Lock()
	defer e.mu.Unlock()

	roomCode, playerID, err := e.tokens.Verify(req.Token)
	if err != nil {
		e.errorTo(sess, "bad_token", "session token rejected")
		return
	}

	r, exists := e.rooms.GetRoom(roomCode)
	if !exists {
		return
	}
	if _, found := r.FindPlayer(playerID); !found {
		return
	}

	// Rebinding cancels any pending grace timer for this seat; the cancelled
	// timer must produce no further side effects.
	e.store.DropGrace(graceKey{room: roomCode, player: playerID})

	r.BindConn(playerID, sess)
	sess.Bind(roomCode, playerID)

	// Membership did not change: the rebinder alone gets a full snapshot to
	// rebuild its view, the others just hear about the reconnection.
	e.bcast.ToRoom(roomCode, network.MsgTypePlayerReconnected, PlayerEvent{PlayerID: playerID})
	e.bcast.Subscribe(roomCode, sess)
	e.bcast.ToSession(sess, network.MsgTypeRoomSnapshot, r.Snapshot())
	logger.Log.Infof("Player %s reconnected to room %s", playerID, roomCode)
}

// HandleLeave removes the player from the room on explicit request.
func (e *Engine) HandleLeave(sess *session.Session) {
	e.mu.Lock()
	defer e.mu.Unlock()

	roomCode, playerID := sess.Identity()
	if roomCode == "" {
		return
	}
	sess.Bind("", "")
	e.bcast.Unsubscribe(roomCode, sess.ID)
	e.store.DropGrace(graceKey{room: roomCode, player: playerID})

	r, exists := e.rooms.GetRoom(roomCode)
	if !exists {
		return
	}
	e.removePlayerLocked(r, playerID)
}

// removePlayerLocked performs the shared membership-removal consequences for
// explicit leaves and grace-period evictions.
func (e *Engine) removePlayerLocked(r *room.Room, playerID string) {
	if !r.RemovePlayer(playerID) {
		return
	}

	if r.PlayerCount() == 0 {
		e.closeRoomLocked(r.Code)
		return
	}

	// A still-running sequence game must not wait forever on a seat that no
	// longer exists.
	if g := r.GetGame(); g != nil && g.Type == game.TypeSequence && r.GetStatus() == state.StatusActive {
		if p, ok := g.Sequence.Players[playerID]; ok && p.Status == game.SeqPlaying {
			game.Eliminate(g.Sequence, playerID)
			e.evaluateSeqEndLocked(r)
		}
	}

	e.bcast.ToRoom(r.Code, network.MsgTypePlayerLeft, PlayerEvent{PlayerID: playerID})
	e.snapshotUpdate(r)
	e.maybeResolveRaceLocked(r)
	logger.Log.Infof("Player %s left room %s", playerID, r.Code)
}
