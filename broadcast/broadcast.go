// broadcast/broadcast.go
package broadcast

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/wfunc/colorparty/session"
)

var ErrNoSubscribers = errors.New("no subscribers for room")

// RoomBroadcaster delivers JSON payloads to either one session or every
// session subscribed to a room. Subscription is explicit: a room-closed
// notice must still reach sessions whose player was already evicted from the
// room's member list.
type RoomBroadcaster struct {
	subscribers map[string]map[string]*session.Session // roomCode -> sessionID -> session
	mutex       sync.RWMutex
}

func NewRoomBroadcaster() *RoomBroadcaster {
	return &RoomBroadcaster{
		subscribers: make(map[string]map[string]*session.Session),
	}
}

// Subscribe attaches a session to a room's fan-out set.
func (b *RoomBroadcaster) Subscribe(roomCode string, s *session.Session) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	subs, exists := b.subscribers[roomCode]
	if !exists {
		subs = make(map[string]*session.Session)
		b.subscribers[roomCode] = subs
	}
	subs[s.ID] = s
}

// Unsubscribe detaches a session; the room's set is dropped when it empties.
func (b *RoomBroadcaster) Unsubscribe(roomCode, sessionID string) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if subs, exists := b.subscribers[roomCode]; exists {
		delete(subs, sessionID)
		if len(subs) == 0 {
			delete(b.subscribers, roomCode)
		}
	}
}

// DropRoom removes a room's whole fan-out set.
func (b *RoomBroadcaster) DropRoom(roomCode string) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	delete(b.subscribers, roomCode)
}

// ToRoom sends a payload to every session subscribed to the room.
func (b *RoomBroadcaster) ToRoom(roomCode string, msgID uint16, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	b.mutex.RLock()
	subs := make([]*session.Session, 0, len(b.subscribers[roomCode]))
	for _, s := range b.subscribers[roomCode] {
		subs = append(subs, s)
	}
	b.mutex.RUnlock()

	for _, s := range subs {
		if err := s.Send(msgID, data); err != nil {
			// A dead connection surfaces through its own read loop.
			continue
		}
	}
	return nil
}

// ToSession sends a payload to the one given session.
func (b *RoomBroadcaster) ToSession(s *session.Session, msgID uint16, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.Send(msgID, data)
}
