// room/room.go
package room

import (
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/wfunc/colorparty/game"
	"github.com/wfunc/colorparty/session"
	"github.com/wfunc/colorparty/state"
)

var (
	ErrRoomNotFound   = errors.New("room not found")
	ErrPlayerNotFound = errors.New("player not found")
	ErrNameTaken      = errors.New("player name already taken")
)

// Player is one room member. Connected and Sess are the only fields the
// engine mutates after join; membership changes go through Add/RemovePlayer.
type Player struct {
	ID        string
	Name      string
	Host      bool
	Connected bool
	Sess      *session.Session
	JoinedAt  time.Time
}

// Room 是游戏房间的核心结构
type Room struct {
	Code      string
	GameType  game.Type
	Status    state.RoomStatus
	Players   []*Player
	Game      *game.State
	CreatedAt time.Time

	mutex sync.RWMutex
}

// PlayerView is the wire shape of a player inside a snapshot.
type PlayerView struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Host      bool   `json:"host"`
	Connected bool   `json:"connected"`
}

// View is a consistent copy of a room for broadcasting.
type View struct {
	Code     string           `json:"code"`
	GameType game.Type        `json:"game_type"`
	Status   state.RoomStatus `json:"status"`
	Players  []PlayerView     `json:"players"`
	Game     *game.State      `json:"game,omitempty"`
}

func (r *Room) Snapshot() View {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	players := make([]PlayerView, 0, len(r.Players))
	for _, p := range r.Players {
		players = append(players, PlayerView{
			ID:        p.ID,
			Name:      p.Name,
			Host:      p.Host,
			Connected: p.Connected,
		})
	}
	return View{
		Code:     r.Code,
		GameType: r.GameType,
		Status:   r.Status,
		Players:  players,
		Game:     r.Game,
	}
}

// AddPlayer appends a member; the first member becomes host.
func (r *Room) AddPlayer(p *Player) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for _, existing := range r.Players {
		if existing.Name == p.Name {
			return ErrNameTaken
		}
	}
	if len(r.Players) == 0 {
		p.Host = true
	}
	p.JoinedAt = time.Now()
	r.Players = append(r.Players, p)
	return nil
}

// RemovePlayer drops a member. When the host leaves, the oldest remaining
// member inherits the flag.
func (r *Room) RemovePlayer(playerID string) bool {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for i, p := range r.Players {
		if p.ID == playerID {
			wasHost := p.Host
			r.Players = append(r.Players[:i], r.Players[i+1:]...)
			if wasHost && len(r.Players) > 0 {
				r.Players[0].Host = true
			}
			return true
		}
	}
	return false
}

func (r *Room) FindPlayer(playerID string) (*Player, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	for _, p := range r.Players {
		if p.ID == playerID {
			return p, true
		}
	}
	return nil, false
}

// BindConn updates a player's connection reference and marks them connected.
func (r *Room) BindConn(playerID string, sess *session.Session) bool {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for _, p := range r.Players {
		if p.ID == playerID {
			p.Sess = sess
			p.Connected = true
			return true
		}
	}
	return false
}

// MarkDisconnected clears the connected flag, keeping membership intact.
func (r *Room) MarkDisconnected(playerID string, sess *session.Session) bool {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for _, p := range r.Players {
		if p.ID == playerID {
			// A newer connection may have already rebound this player.
			if sess != nil && p.Sess != sess {
				return false
			}
			p.Connected = false
			return true
		}
	}
	return false
}

// SetStatus validates the transition against the closed status table.
func (r *Room) SetStatus(to state.RoomStatus) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	next, err := state.Transition(r.Status, to)
	if err != nil {
		return err
	}
	r.Status = next
	return nil
}

func (r *Room) GetStatus() state.RoomStatus {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return r.Status
}

func (r *Room) SetGame(g *game.State) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.Game = g
}

func (r *Room) GetGame() *game.State {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return r.Game
}

// ConnectedCount returns how many members currently hold a live connection.
func (r *Room) ConnectedCount() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	n := 0
	for _, p := range r.Players {
		if p.Connected {
			n++
		}
	}
	return n
}

func (r *Room) PlayerIDs() []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	ids := make([]string, 0, len(r.Players))
	for _, p := range r.Players {
		ids = append(ids, p.ID)
	}
	return ids
}

func (r *Room) PlayerCount() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.Players)
}

// --- 房间管理器 ---

const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// Manager owns every live room, keyed by short code.
type Manager struct {
	rooms map[string]*Room
	rng   *rand.Rand
	mutex sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		rooms: make(map[string]*Room),
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (m *Manager) generateCode() string {
	code := make([]byte, 5)
	for i := range code {
		code[i] = codeAlphabet[m.rng.Intn(len(codeAlphabet))]
	}
	return string(code)
}

// CreateRoom allocates a room with a fresh unused code.
func (m *Manager) CreateRoom(gameType game.Type) *Room {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	code := m.generateCode()
	for _, exists := m.rooms[code]; exists; _, exists = m.rooms[code] {
		code = m.generateCode()
	}

	room := &Room{
		Code:      code,
		GameType:  gameType,
		Status:    state.StatusWaiting,
		CreatedAt: time.Now(),
	}
	m.rooms[code] = room
	return room
}

func (m *Manager) GetRoom(code string) (*Room, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	room, exists := m.rooms[code]
	return room, exists
}

func (m *Manager) RemoveRoom(code string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.rooms, code)
}

func (m *Manager) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.rooms)
}

// Sweep evicts rooms with no viable state: empty rooms, and finished rooms
// with nobody connected. Returns the evicted codes.
func (m *Manager) Sweep() []string {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	var swept []string
	for code, room := range m.rooms {
		if room.PlayerCount() == 0 ||
			(room.GetStatus() == state.StatusFinished && room.ConnectedCount() == 0) {
			delete(m.rooms, code)
			swept = append(swept, code)
		}
	}
	return swept
}
