package engine

import (
	"math/rand"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/wfunc/colorparty/config"
	"github.com/wfunc/colorparty/game"
	"github.com/wfunc/colorparty/logger"
	"github.com/wfunc/colorparty/models"
	"github.com/wfunc/colorparty/network"
	"github.com/wfunc/colorparty/room"
	"github.com/wfunc/colorparty/session"
	"github.com/wfunc/colorparty/state"
	"github.com/wfunc/colorparty/timer"
	"github.com/wfunc/colorparty/token"
)

// MockConnection is a test double for the network.Connection interface.
type MockConnection struct{}

func (m *MockConnection) Send(msgID uint16, data []byte) error { return nil }
func (m *MockConnection) Close() error                         { return nil }
func (m *MockConnection) RemoteAddr() net.Addr                 { return &net.TCPAddr{} }
func (m *MockConnection) SetHeartbeat(interval time.Duration)  {}
func (m *MockConnection) ReadPacket() (*network.Packet, error) { return nil, nil }

// fakeClock narrows clockwork's fake to what the tests drive.
type fakeClock interface {
	clockwork.Clock
	Advance(d time.Duration)
}

// sentToRoom captures one room-wide send together with who was subscribed at
// the moment of delivery, so fan-out mode can be asserted exactly.
type sentToRoom struct {
	Room       string
	MsgID      uint16
	Payload    any
	Recipients []string
}

type sentToSession struct {
	SessionID string
	MsgID     uint16
	Payload   any
}

// recorder is a Broadcaster double that records every delivery.
type recorder struct {
	mu     sync.Mutex
	subs   map[string]map[string]*session.Session
	room   []sentToRoom
	direct []sentToSession
}

func newRecorder() *recorder {
	return &recorder{subs: make(map[string]map[string]*session.Session)}
}

func (r *recorder) Subscribe(roomCode string, s *session.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.subs[roomCode] == nil {
		r.subs[roomCode] = make(map[string]*session.Session)
	}
	r.subs[roomCode][s.ID] = s
}

func (r *recorder) Unsubscribe(roomCode, sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.subs[roomCode], sessionID)
}

func (r *recorder) DropRoom(roomCode string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.subs, roomCode)
}

func (r *recorder) ToRoom(roomCode string, msgID uint16, v any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var recipients []string
	for id := range r.subs[roomCode] {
		recipients = append(recipients, id)
	}
	r.room = append(r.room, sentToRoom{Room: roomCode, MsgID: msgID, Payload: v, Recipients: recipients})
	return nil
}

func (r *recorder) ToSession(s *session.Session, msgID uint16, v any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.direct = append(r.direct, sentToSession{SessionID: s.ID, MsgID: msgID, Payload: v})
	return nil
}

func (r *recorder) roomCount(roomCode string, msgID uint16) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, msg := range r.room {
		if msg.Room == roomCode && msg.MsgID == msgID {
			n++
		}
	}
	return n
}

func (r *recorder) lastRoom(msgID uint16) (sentToRoom, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.room) - 1; i >= 0; i-- {
		if r.room[i].MsgID == msgID {
			return r.room[i], true
		}
	}
	return sentToRoom{}, false
}

func (r *recorder) sessionMsgs(sessionID string, msgID uint16) []sentToSession {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []sentToSession
	for _, msg := range r.direct {
		if msg.SessionID == sessionID && msg.MsgID == msgID {
			result = append(result, msg)
		}
	}
	return result
}

func (r *recorder) subscribed(roomCode, sessionID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.subs[roomCode][sessionID]
	return ok
}

// waitFor polls for a condition the fake clock's timer goroutines will
// eventually establish.
func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", msg)
}

// settle gives any stray timer goroutine a chance to run before a negative
// assertion.
func settle() {
	time.Sleep(20 * time.Millisecond)
}

func testConfig() config.EngineConfig {
	return config.EngineConfig{
		GraceBuffer:     2 * time.Second,
		GraceRemoval:    30 * time.Second,
		CountdownFrom:   3,
		CountdownTick:   time.Second,
		RaceRounds:      2,
		RaceResultDelay: 3 * time.Second,
		SeqShowPerColor: 600 * time.Millisecond,
		SeqShowGap:      200 * time.Millisecond,
		SeqShowTail:     time.Second,
		SeqInputDelay:   500 * time.Millisecond,
		SeqResultDelay:  2 * time.Second,
		SeqBaseLength:   3,
		SeqMinPlayers:   2,
		SweepInterval:   time.Minute,
	}
}

type fixture struct {
	t     *testing.T
	eng   *Engine
	rooms *room.Manager
	rec   *recorder
	clock fakeClock
}

func newFixture(t *testing.T) *fixture {
	logger.InitNop()
	clk := clockwork.NewFakeClock()
	rooms := room.NewManager()
	rec := newRecorder()
	tokens := token.NewManager("test-secret", time.Hour)
	eng := New(rooms, rec, timer.NewScheduler(clk), tokens, testConfig())
	return &fixture{t: t, eng: eng, rooms: rooms, rec: rec, clock: clk}
}

func (f *fixture) newSession(id string) *session.Session {
	return session.NewSession(id, &MockConnection{})
}

// setupRoom creates a room through the engine and joins the remaining names,
// returning the room, the bound sessions, and each player's welcome payload.
func (f *fixture) setupRoom(gameType game.Type, names ...string) (*room.Room, []*session.Session, []WelcomePayload) {
	f.t.Helper()

	sessions := make([]*session.Session, len(names))
	welcomes := make([]WelcomePayload, len(names))

	sessions[0] = f.newSession("sess-" + names[0])
	f.eng.HandleCreate(sessions[0], CreateRequest{Name: names[0], GameType: gameType})
	msgs := f.rec.sessionMsgs(sessions[0].ID, network.MsgTypeCreateRoom)
	if len(msgs) != 1 {
		f.t.Fatalf("Expected 1 create reply, got %d", len(msgs))
	}
	welcomes[0] = msgs[0].Payload.(WelcomePayload)
	code := welcomes[0].Room.Code

	for i := 1; i < len(names); i++ {
		sessions[i] = f.newSession("sess-" + names[i])
		f.eng.HandleJoin(sessions[i], JoinRequest{RoomCode: code, Name: names[i]})
		joined := f.rec.sessionMsgs(sessions[i].ID, network.MsgTypeJoinRoom)
		if len(joined) != 1 {
			f.t.Fatalf("Expected 1 join reply for %s, got %d", names[i], len(joined))
		}
		welcomes[i] = joined[0].Payload.(WelcomePayload)
	}

	r, exists := f.rooms.GetRoom(code)
	if !exists {
		f.t.Fatal("Room should exist after setup")
	}
	return r, sessions, welcomes
}

// forceActive skips the countdown and installs a game directly.
func (f *fixture) forceActive(r *room.Room, g *game.State) {
	if err := r.SetStatus(state.StatusCountdown); err != nil {
		f.t.Fatalf("to countdown: %v", err)
	}
	if err := r.SetStatus(state.StatusActive); err != nil {
		f.t.Fatalf("to active: %v", err)
	}
	r.SetGame(g)
}

// startSeqRound drives the engine's sequence round lifecycle from a test.
func (f *fixture) startSeqRound(r *room.Room) {
	f.eng.mu.Lock()
	defer f.eng.mu.Unlock()
	f.eng.startSeqRoundLocked(r)
}

// openSeqInput walks the fake clock through reveal, show-complete and
// input-open for the current round.
func (f *fixture) openSeqInput(r *room.Room) {
	f.t.Helper()
	ss := r.GetGame().Sequence

	shows := f.rec.roomCount(r.Code, network.MsgTypeSeqShowComplete)
	f.clock.Advance(f.eng.showDuration(len(ss.Sequence)))
	waitFor(f.t, func() bool {
		return f.rec.roomCount(r.Code, network.MsgTypeSeqShowComplete) > shows
	}, "sequence show complete")

	opens := f.rec.roomCount(r.Code, network.MsgTypeSeqInputOpen)
	f.clock.Advance(500 * time.Millisecond)
	waitFor(f.t, func() bool {
		return f.rec.roomCount(r.Code, network.MsgTypeSeqInputOpen) > opens
	}, "sequence input open")
}

// captureRecorder is a Recorder double collecting saved match records.
type captureRecorder struct {
	mu      sync.Mutex
	records []models.MatchRecord
	states  []models.RoomState
	dropped []string
}

func (c *captureRecorder) SaveMatch(record models.MatchRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = append(c.records, record)
}

func (c *captureRecorder) SaveRoomState(st models.RoomState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.states = append(c.states, st)
}

func (c *captureRecorder) DropRoomState(roomCode string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dropped = append(c.dropped, roomCode)
}

func (c *captureRecorder) all() []models.MatchRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.MatchRecord(nil), c.records...)
}

func testRng() *rand.Rand {
	return rand.New(rand.NewSource(1))
}

// wrongColor returns a palette color different from the given one.
func wrongColor(c game.Color) game.Color {
	for _, candidate := range game.Palette {
		if candidate != c {
			return candidate
		}
	}
	return c
}
