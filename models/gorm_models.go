// models/gorm_models.go
package models

import (
	"time"

	"gorm.io/gorm"
)

// GormMatchRecord 对局记录模型
type GormMatchRecord struct {
	gorm.Model
	RoomCode   string                 `gorm:"index;not null"`
	GameType   string                 `gorm:"not null"`
	Winner     string                 `gorm:""`
	Results    map[string]interface{} `gorm:"type:jsonb"`
	FinishedAt time.Time
}

// GormRoomState 房间状态快照模型
type GormRoomState struct {
	gorm.Model
	RoomCode string                 `gorm:"uniqueIndex;not null"`
	GameType string                 `gorm:"not null"`
	Status   string                 `gorm:"not null"`
	Players  map[string]interface{} `gorm:"type:jsonb"`
}
