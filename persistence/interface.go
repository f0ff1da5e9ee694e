// persistence/interface.go
package persistence

import (
	"fmt"

	"github.com/wfunc/colorparty/models"
)

// Database 数据库接口
type Database interface {
	SaveMatchRecord(rec models.MatchRecord) error
	RecentMatchRecords(limit int) ([]models.MatchRecord, error)
	SaveRoomState(st models.RoomState) error
	LoadRoomState(roomCode string) (models.RoomState, error)
	DeleteRoomState(roomCode string) error
	Close() error
}

// 错误定义
var (
	ErrRecordNotFound = fmt.Errorf("record not found")
)
