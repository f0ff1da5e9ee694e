// persistence/gorm_postgresql.go
package persistence

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/wfunc/colorparty/models"
)

// GormPostgreSQL 使用GORM的PostgreSQL实现
type GormPostgreSQL struct {
	db *gorm.DB
}

// NewGormPostgreSQL 创建GORM PostgreSQL数据库连接
func NewGormPostgreSQL(host string, port int, user, password, dbname string) (*GormPostgreSQL, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: time.Second,
			LogLevel:      logger.Silent,
			Colorful:      false,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&models.GormMatchRecord{}, &models.GormRoomState{}); err != nil {
		return nil, err
	}

	return &GormPostgreSQL{db: db}, nil
}

// SaveMatchRecord 保存对局记录
func (p *GormPostgreSQL) SaveMatchRecord(rec models.MatchRecord) error {
	row := models.GormMatchRecord{
		RoomCode:   rec.RoomCode,
		GameType:   rec.GameType,
		Winner:     rec.Winner,
		Results:    rec.Results,
		FinishedAt: rec.FinishedAt,
	}
	return p.db.Create(&row).Error
}

// RecentMatchRecords 查询最近的对局记录
func (p *GormPostgreSQL) RecentMatchRecords(limit int) ([]models.MatchRecord, error) {
	var rows []models.GormMatchRecord
	if err := p.db.Order("finished_at DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}

	records := make([]models.MatchRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, models.MatchRecord{
			RoomCode:   row.RoomCode,
			GameType:   row.GameType,
			Winner:     row.Winner,
			Results:    row.Results,
			FinishedAt: row.FinishedAt,
		})
	}
	return records, nil
}

// SaveRoomState 保存房间状态快照（UPSERT）
func (p *GormPostgreSQL) SaveRoomState(st models.RoomState) error {
	var row models.GormRoomState
	result := p.db.Where("room_code = ?", st.RoomCode).First(&row)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		row = models.GormRoomState{
			RoomCode: st.RoomCode,
			GameType: st.GameType,
			Status:   st.Status,
			Players:  st.Players,
		}
		return p.db.Create(&row).Error
	} else if result.Error != nil {
		return result.Error
	}

	row.Status = st.Status
	row.Players = st.Players
	return p.db.Save(&row).Error
}

// LoadRoomState 加载房间状态快照
func (p *GormPostgreSQL) LoadRoomState(roomCode string) (models.RoomState, error) {
	var row models.GormRoomState
	if err := p.db.Where("room_code = ?", roomCode).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.RoomState{}, ErrRecordNotFound
		}
		return models.RoomState{}, err
	}
	return models.RoomState{
		RoomCode:  row.RoomCode,
		GameType:  row.GameType,
		Status:    row.Status,
		Players:   row.Players,
		UpdatedAt: row.UpdatedAt,
	}, nil
}

// DeleteRoomState 删除房间状态快照
func (p *GormPostgreSQL) DeleteRoomState(roomCode string) error {
	return p.db.Where("room_code = ?", roomCode).Delete(&models.GormRoomState{}).Error
}

// Close 关闭数据库连接
func (p *GormPostgreSQL) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
