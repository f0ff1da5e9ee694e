// services/record_service.go
package services

import (
	"github.com/wfunc/colorparty/logger"
	"github.com/wfunc/colorparty/models"
	"github.com/wfunc/colorparty/persistence"
)

// RecordService persists finished matches and answers record queries. Writes
// are asynchronous and best-effort: a storage failure never touches a live
// game.
type RecordService struct {
	db persistence.Database
}

func NewRecordService(db persistence.Database) *RecordService {
	return &RecordService{db: db}
}

// SaveMatch implements the engine's Recorder interface.
func (s *RecordService) SaveMatch(rec models.MatchRecord) {
	if s.db == nil {
		return
	}
	go func() {
		if err := s.db.SaveMatchRecord(rec); err != nil {
			logger.Log.Errorf("Failed to save match record for room %s: %v", rec.RoomCode, err)
		}
	}()
}

// SaveRoomState snapshots a room's externally visible state.
func (s *RecordService) SaveRoomState(st models.RoomState) {
	if s.db == nil {
		return
	}
	go func() {
		if err := s.db.SaveRoomState(st); err != nil {
			logger.Log.Errorf("Failed to save room state for room %s: %v", st.RoomCode, err)
		}
	}()
}

// DropRoomState removes a closed room's stored snapshot.
func (s *RecordService) DropRoomState(roomCode string) {
	if s.db == nil {
		return
	}
	go func() {
		if err := s.db.DeleteRoomState(roomCode); err != nil {
			logger.Log.Errorf("Failed to delete room state for room %s: %v", roomCode, err)
		}
	}()
}

// LoadRoomState fetches a stored room snapshot.
func (s *RecordService) LoadRoomState(roomCode string) (models.RoomState, error) {
	if s.db == nil {
		return models.RoomState{}, persistence.ErrRecordNotFound
	}
	return s.db.LoadRoomState(roomCode)
}

// RecentMatches returns the latest finished matches, newest first.
func (s *RecordService) RecentMatches(limit int) ([]models.MatchRecord, error) {
	if s.db == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 20
	}
	return s.db.RecentMatchRecords(limit)
}
