package main

import (
	"github.com/jonboulle/clockwork"

	"github.com/wfunc/colorparty/broadcast"
	"github.com/wfunc/colorparty/config"
	"github.com/wfunc/colorparty/engine"
	"github.com/wfunc/colorparty/logger"
	"github.com/wfunc/colorparty/monitor"
	"github.com/wfunc/colorparty/persistence"
	"github.com/wfunc/colorparty/room"
	"github.com/wfunc/colorparty/server"
	"github.com/wfunc/colorparty/services"
	"github.com/wfunc/colorparty/timer"
	"github.com/wfunc/colorparty/token"
)

func main() {
	// Initialize logger
	logger.Init()

	// Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Log.Fatalf("Failed to load configuration: %v", err)
	}

	// Match-record storage is optional; the engine runs fine without it.
	var db persistence.Database
	if cfg.Database.Enabled {
		pg := cfg.Database.Postgres
		switch cfg.Database.Driver {
		case "sql":
			db, err = persistence.NewPostgreSQL(pg.Host, pg.Port, pg.User, pg.Password, pg.DBName)
		default:
			db, err = persistence.NewGormPostgreSQL(pg.Host, pg.Port, pg.User, pg.Password, pg.DBName)
		}
		if err != nil {
			logger.Log.Fatalf("Failed to connect to database: %v", err)
		}
		logger.Log.Info("Database connection successful.")
	}

	rooms := room.NewManager()
	bcast := broadcast.NewRoomBroadcaster()
	sched := timer.NewScheduler(clockwork.NewRealClock())
	tokens := token.NewManager(cfg.Token.Secret, cfg.Token.MaxAge)
	records := services.NewRecordService(db)
	mon := monitor.NewMonitor("colorparty")
	mon.StartServer(cfg.Server.MetricsAddress)

	eng := engine.New(rooms, bcast, sched, tokens, cfg.Engine)
	eng.SetRecorder(records)
	eng.SetMetrics(mon)

	gameServer := server.NewGameServer(cfg.Server.HTTPAddress, cfg.Server.RPCAddress, eng, rooms, records, mon)

	logger.Log.Infof("Starting colorparty server on %s", cfg.Server.HTTPAddress)
	if err := gameServer.Start(); err != nil {
		logger.Log.Fatalf("Failed to start server: %v", err)
	}
}
