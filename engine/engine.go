// Package engine is the real-time room/game orchestration core: it binds
// connections to player identities, runs the disconnect grace-period state
// machine, drives the match countdown and both round orchestrators, and fans
// authoritative state out to every subscriber.
//
// All inbound events and timer callbacks serialize on one mutex, a single
// logical thread of control. Timers are the only concurrency: every timer
// callback re-fetches the room and re-validates its preconditions before
// acting, because the world it captured at schedule time may be gone.
package engine

import (
	"math/rand"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/wfunc/colorparty/config"
	"github.com/wfunc/colorparty/logger"
	"github.com/wfunc/colorparty/models"
	"github.com/wfunc/colorparty/network"
	"github.com/wfunc/colorparty/room"
	"github.com/wfunc/colorparty/session"
	"github.com/wfunc/colorparty/timer"
)

// Broadcaster is the single path by which notifications leave the engine:
// either to one session or to every session subscribed to a room.
type Broadcaster interface {
	Subscribe(roomCode string, s *session.Session)
	Unsubscribe(roomCode, sessionID string)
	DropRoom(roomCode string)
	ToRoom(roomCode string, msgID uint16, v any) error
	ToSession(s *session.Session, msgID uint16, v any) error
}

// Tokens is the external session-identity collaborator.
type Tokens interface {
	Issue(roomCode, playerID string, now time.Time) (string, error)
	Verify(token string) (roomCode, playerID string, err error)
}

// Recorder receives finished-match records and room snapshots, best-effort.
type Recorder interface {
	SaveMatch(rec models.MatchRecord)
	SaveRoomState(st models.RoomState)
	DropRoomState(roomCode string)
}

// Metrics is the slice of the monitoring surface the engine feeds.
type Metrics interface {
	IncRoundsResolved()
	SetActiveRooms(count int)
}

type Engine struct {
	mu sync.Mutex

	rooms  *room.Manager
	bcast  Broadcaster
	sched  *timer.Scheduler
	clock  clockwork.Clock
	tokens Tokens
	cfg    config.EngineConfig
	store  *Store
	rng    *rand.Rand

	records Recorder // optional
	metrics Metrics  // optional
	sweep   *timer.Handle
}

func New(rooms *room.Manager, bcast Broadcaster, sched *timer.Scheduler, tokens Tokens, cfg config.EngineConfig) *Engine {
	return &Engine{
		rooms:  rooms,
		bcast:  bcast,
		sched:  sched,
		clock:  sched.Clock(),
		tokens: tokens,
		cfg:    cfg,
		store:  NewStore(),
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// SetRecorder attaches a match-record sink. Must be called before serving.
func (e *Engine) SetRecorder(r Recorder) {
	e.records = r
}

// SetMetrics attaches a monitoring sink. Must be called before serving.
func (e *Engine) SetMetrics(m Metrics) {
	e.metrics = m
}

func (e *Engine) roundResolved() {
	if e.metrics != nil {
		e.metrics.IncRoundsResolved()
	}
}

func (e *Engine) roomCountChanged() {
	if e.metrics != nil {
		e.metrics.SetActiveRooms(e.rooms.Count())
	}
}

// errorTo sends a generic error notice to the acting connection only.
func (e *Engine) errorTo(sess *session.Session, code, msg string) {
	e.bcast.ToSession(sess, network.MsgTypeError, ErrorNotice{Code: code, Message: msg})
}

// snapshotUpdate pushes the room's current view to every subscriber.
func (e *Engine) snapshotUpdate(r *room.Room) {
	e.bcast.ToRoom(r.Code, network.MsgTypeRoomUpdate, r.Snapshot())
}

// persistRoomState saves a best-effort room snapshot on status transitions.
func (e *Engine) persistRoomState(r *room.Room) {
	if e.records == nil {
		return
	}
	view := r.Snapshot()
	players := make(map[string]any, len(view.Players))
	for _, p := range view.Players {
		players[p.ID] = map[string]any{
			"name":      p.Name,
			"host":      p.Host,
			"connected": p.Connected,
		}
	}
	e.records.SaveRoomState(models.RoomState{
		RoomCode:  view.Code,
		GameType:  string(view.GameType),
		Status:    string(view.Status),
		Players:   players,
		UpdatedAt: e.clock.Now(),
	})
}

// closeRoomLocked evicts a room entirely: registry entry, transient state
// (cancelling any grace timers), and the fan-out set, after telling the
// remaining subscribers the room is gone.
func (e *Engine) closeRoomLocked(code string) {
	e.rooms.RemoveRoom(code)
	e.store.DropRoom(code)
	if e.records != nil {
		e.records.DropRoomState(code)
	}
	e.bcast.ToRoom(code, network.MsgTypeRoomClosed, RoomClosedPayload{Code: code})
	e.bcast.DropRoom(code)
	e.roomCountChanged()
	logger.Log.Infof("Room %s closed", code)
}
