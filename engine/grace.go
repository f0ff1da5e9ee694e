package engine

import (
	"github.com/wfunc/colorparty/logger"
	"github.com/wfunc/colorparty/network"
	"github.com/wfunc/colorparty/session"
)

// HandleDisconnect is called when a bound connection's read loop ends. It
// starts the two-stage grace state machine: a short silent buffer (so a page
// navigation produces no visible churn), then a disconnect notice plus a
// longer removal window, then eviction.
func (e *Engine) HandleDisconnect(sess *session.Session) {
	e.mu.Lock()
	defer e.mu.Unlock()

	roomCode, playerID := sess.Identity()
	if roomCode == "" {
		return
	}
	e.bcast.Unsubscribe(roomCode, sess.ID)

	r, exists := e.rooms.GetRoom(roomCode)
	if !exists {
		return
	}
	player, found := r.FindPlayer(playerID)
	if !found {
		return
	}
	// A newer connection may already hold this seat; the stale drop is noise.
	if player.Sess != sess {
		return
	}

	key := graceKey{room: roomCode, player: playerID}
	entry := &graceEntry{state: graceBuffering, sess: sess}
	entry.handle = e.sched.After(e.cfg.GraceBuffer, func() {
		e.onGraceBufferExpired(key, entry)
	})
	// SetGrace stops any prior timer for the key, keeping the
	// one-live-timer-per-key invariant.
	e.store.SetGrace(key, entry)
	logger.Log.Infof("Player %s in room %s lost connection, buffering", playerID, roomCode)
}

// onGraceBufferExpired moves buffering -> disconnected-pending-removal. The
// world may have moved on since scheduling: the entry may have been cancelled
// by a rebind, or the room may be gone entirely.
func (e *Engine) onGraceBufferExpired(key graceKey, entry *graceEntry) {
	e.mu.Lock()
	defer e.mu.Unlock()

	current, exists := e.store.Grace(key)
	if !exists || current != entry || entry.state != graceBuffering {
		return
	}

	r, exists := e.rooms.GetRoom(key.room)
	if !exists {
		e.store.DropGrace(key)
		return
	}
	if !r.MarkDisconnected(key.player, entry.sess) {
		// Rebound to a newer connection in the meantime.
		e.store.DropGrace(key)
		return
	}

	entry.state = gracePendingRemoval
	entry.handle = e.sched.After(e.cfg.GraceRemoval, func() {
		e.onGraceRemovalExpired(key, entry)
	})
	e.bcast.ToRoom(key.room, network.MsgTypePlayerDisconnected, PlayerEvent{PlayerID: key.player})
	e.snapshotUpdate(r)

	// One fewer connected player can complete a race round that was waiting
	// on this seat.
	e.maybeResolveRaceLocked(r)
	logger.Log.Infof("Player %s in room %s marked disconnected", key.player, key.room)
}

// onGraceRemovalExpired moves disconnected-pending-removal -> removed.
func (e *Engine) onGraceRemovalExpired(key graceKey, entry *graceEntry) {
	e.mu.Lock()
	defer e.mu.Unlock()

	current, exists := e.store.Grace(key)
	if !exists || current != entry || entry.state != gracePendingRemoval {
		return
	}
	e.store.DropGrace(key)

	r, exists := e.rooms.GetRoom(key.room)
	if !exists {
		return
	}
	logger.Log.Infof("Player %s in room %s evicted after grace period", key.player, key.room)
	e.removePlayerLocked(r, key.player)
}
