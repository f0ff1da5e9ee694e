// models/models.go
package models

import (
	"time"
)

// MatchRecord 对局记录模型
type MatchRecord struct {
	RoomCode   string         `json:"room_code"`
	GameType   string         `json:"game_type"`
	Winner     string         `json:"winner"`
	Results    map[string]any `json:"results"`
	FinishedAt time.Time      `json:"finished_at"`
}

// RoomState 房间状态快照模型
type RoomState struct {
	RoomCode  string         `json:"room_code"`
	GameType  string         `json:"game_type"`
	Status    string         `json:"status"`
	Players   map[string]any `json:"players"`
	UpdatedAt time.Time      `json:"updated_at"`
}
