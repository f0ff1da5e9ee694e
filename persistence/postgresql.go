// persistence/postgresql.go
package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	// PostgreSQL 驱动
	_ "github.com/lib/pq"

	"github.com/wfunc/colorparty/models"
)

// PostgreSQL 数据库实现 (database/sql)
type PostgreSQL struct {
	db *sql.DB
}

// NewPostgreSQL 创建 PostgreSQL 数据库连接
func NewPostgreSQL(host string, port int, user, password, dbname string) (*PostgreSQL, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := initTables(db); err != nil {
		return nil, err
	}

	return &PostgreSQL{db: db}, nil
}

// initTables 初始化数据库表结构
func initTables(db *sql.DB) error {
	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS match_records (
            id SERIAL PRIMARY KEY,
            room_code TEXT NOT NULL,
            game_type TEXT NOT NULL,
            winner TEXT,
            results JSONB NOT NULL,
            finished_at TIMESTAMP NOT NULL
        )`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
        CREATE TABLE IF NOT EXISTS room_states (
            id SERIAL PRIMARY KEY,
            room_code TEXT UNIQUE NOT NULL,
            game_type TEXT NOT NULL,
            status TEXT NOT NULL,
            players JSONB,
            updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
        )`)
	return err
}

// SaveMatchRecord 保存对局记录
func (p *PostgreSQL) SaveMatchRecord(rec models.MatchRecord) error {
	results, err := json.Marshal(rec.Results)
	if err != nil {
		return err
	}
	_, err = p.db.Exec(
		`INSERT INTO match_records (room_code, game_type, winner, results, finished_at)
         VALUES ($1, $2, $3, $4, $5)`,
		rec.RoomCode, rec.GameType, rec.Winner, results, rec.FinishedAt,
	)
	return err
}

// RecentMatchRecords 查询最近的对局记录
func (p *PostgreSQL) RecentMatchRecords(limit int) ([]models.MatchRecord, error) {
	rows, err := p.db.Query(
		`SELECT room_code, game_type, winner, results, finished_at
         FROM match_records ORDER BY finished_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.MatchRecord
	for rows.Next() {
		var rec models.MatchRecord
		var results []byte
		if err := rows.Scan(&rec.RoomCode, &rec.GameType, &rec.Winner, &results, &rec.FinishedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(results, &rec.Results); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// SaveRoomState 保存房间状态快照（UPSERT）
func (p *PostgreSQL) SaveRoomState(st models.RoomState) error {
	players, err := json.Marshal(st.Players)
	if err != nil {
		return err
	}
	_, err = p.db.Exec(
		`INSERT INTO room_states (room_code, game_type, status, players, updated_at)
         VALUES ($1, $2, $3, $4, CURRENT_TIMESTAMP)
         ON CONFLICT (room_code) DO UPDATE
         SET status = $3, players = $4, updated_at = CURRENT_TIMESTAMP`,
		st.RoomCode, st.GameType, st.Status, players,
	)
	return err
}

// LoadRoomState 加载房间状态快照
func (p *PostgreSQL) LoadRoomState(roomCode string) (models.RoomState, error) {
	var st models.RoomState
	var players []byte
	err := p.db.QueryRow(
		`SELECT room_code, game_type, status, players, updated_at
         FROM room_states WHERE room_code = $1`, roomCode,
	).Scan(&st.RoomCode, &st.GameType, &st.Status, &players, &st.UpdatedAt)
	if err == sql.ErrNoRows {
		return models.RoomState{}, ErrRecordNotFound
	}
	if err != nil {
		return models.RoomState{}, err
	}
	if err := json.Unmarshal(players, &st.Players); err != nil {
		return models.RoomState{}, err
	}
	return st, nil
}

// DeleteRoomState 删除房间状态快照
func (p *PostgreSQL) DeleteRoomState(roomCode string) error {
	_, err := p.db.Exec(`DELETE FROM room_states WHERE room_code = $1`, roomCode)
	return err
}

// Close 关闭数据库连接
func (p *PostgreSQL) Close() error {
	return p.db.Close()
}
