package engine

import (
	"github.com/wfunc/colorparty/logger"
	"github.com/wfunc/colorparty/network"
)

// StartSweeper begins the periodic dead-room pass.
func (e *Engine) StartSweeper() {
	if e.sweep != nil {
		return
	}
	e.sweep = e.sched.Every(e.cfg.SweepInterval, e.SweepOnce)
}

// StopSweeper halts the periodic pass.
func (e *Engine) StopSweeper() {
	if e.sweep != nil {
		e.sweep.Stop()
		e.sweep = nil
	}
}

// SweepOnce delegates eviction to the registry, then tears down each swept
// room's transient state and tells lingering subscribers the room is gone.
// Dropping the transient state cancels any grace timers still pending, so a
// removal timer can never fire against a room that was swept out from under
// it.
func (e *Engine) SweepOnce() {
	e.mu.Lock()
	defer e.mu.Unlock()

	swept := e.rooms.Sweep()
	for _, code := range swept {
		e.store.DropRoom(code)
		if e.records != nil {
			e.records.DropRoomState(code)
		}
		e.bcast.ToRoom(code, network.MsgTypeRoomClosed, RoomClosedPayload{Code: code})
		e.bcast.DropRoom(code)
	}
	e.roomCountChanged()
	if len(swept) > 0 {
		logger.Log.Infof("Swept %d dead rooms", len(swept))
	}
}
