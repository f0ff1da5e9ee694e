package engine

import (
	"github.com/wfunc/colorparty/game"
	"github.com/wfunc/colorparty/session"
	"github.com/wfunc/colorparty/timer"
)

type graceState int

const (
	graceBuffering graceState = iota
	gracePendingRemoval
)

type graceKey struct {
	room   string
	player string
}

// graceEntry is the one live timer allowed per (room, player) key.
type graceEntry struct {
	state  graceState
	handle *timer.Handle
	sess   *session.Session // the connection whose loss started this entry
}

// Store is the engine-owned transient state: per-round answer lists, the
// sequence game's input-phase flag, and the grace-timer table. It is not a
// second source of room truth; everything here is torn down on round
// completion, rebind, or room eviction. Callers hold the engine mutex; the
// store itself is unsynchronized.
type Store struct {
	answers   map[string][]game.Answer
	inputOpen map[string]bool
	grace     map[graceKey]*graceEntry
}

func NewStore() *Store {
	return &Store{
		answers:   make(map[string][]game.Answer),
		inputOpen: make(map[string]bool),
		grace:     make(map[graceKey]*graceEntry),
	}
}

// AppendAnswer records an answer, refusing duplicates from the same player.
func (s *Store) AppendAnswer(roomCode string, a game.Answer) bool {
	for _, existing := range s.answers[roomCode] {
		if existing.PlayerID == a.PlayerID {
			return false
		}
	}
	s.answers[roomCode] = append(s.answers[roomCode], a)
	return true
}

func (s *Store) Answers(roomCode string) []game.Answer {
	return s.answers[roomCode]
}

func (s *Store) ClearAnswers(roomCode string) {
	delete(s.answers, roomCode)
}

func (s *Store) SetInputOpen(roomCode string, open bool) {
	if open {
		s.inputOpen[roomCode] = true
	} else {
		delete(s.inputOpen, roomCode)
	}
}

func (s *Store) InputOpen(roomCode string) bool {
	return s.inputOpen[roomCode]
}

// SetGrace installs a grace entry, stopping and replacing any prior entry for
// the key so at most one timer is ever live per (room, player).
func (s *Store) SetGrace(key graceKey, e *graceEntry) {
	if prev, exists := s.grace[key]; exists && prev.handle != nil {
		prev.handle.Stop()
	}
	s.grace[key] = e
}

func (s *Store) Grace(key graceKey) (*graceEntry, bool) {
	e, exists := s.grace[key]
	return e, exists
}

// DropGrace cancels and removes the key's entry, if any.
func (s *Store) DropGrace(key graceKey) {
	if e, exists := s.grace[key]; exists {
		if e.handle != nil {
			e.handle.Stop()
		}
		delete(s.grace, key)
	}
}

// GraceCount reports live grace entries for a room; used by tests and sweep
// accounting.
func (s *Store) GraceCount(roomCode string) int {
	n := 0
	for key := range s.grace {
		if key.room == roomCode {
			n++
		}
	}
	return n
}

// DropRoom tears down every transient trace of a room, cancelling any
// outstanding grace timers so they can never act on a room that is gone.
func (s *Store) DropRoom(roomCode string) {
	delete(s.answers, roomCode)
	delete(s.inputOpen, roomCode)
	for key, e := range s.grace {
		if key.room == roomCode {
			if e.handle != nil {
				e.handle.Stop()
			}
			delete(s.grace, key)
		}
	}
}
