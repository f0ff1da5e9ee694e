package server

import (
	"encoding/json"
	"net/http"
	"net/rpc"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/wfunc/colorparty/engine"
	"github.com/wfunc/colorparty/logger"
	"github.com/wfunc/colorparty/monitor"
	"github.com/wfunc/colorparty/network"
	"github.com/wfunc/colorparty/room"
	colorparty_rpc "github.com/wfunc/colorparty/rpc"
	"github.com/wfunc/colorparty/services"
	"github.com/wfunc/colorparty/session"
)

type GameServer struct {
	addr           string
	upgrader       websocket.Upgrader
	engine         *engine.Engine
	roomManager    *room.Manager
	sessionManager *session.Manager
	monitor        *monitor.Monitor
	rpcServer      *colorparty_rpc.Server
	shutdownChan   chan struct{}
}

func NewGameServer(addr, rpcAddr string, eng *engine.Engine, rooms *room.Manager, records *services.RecordService, mon *monitor.Monitor) *GameServer {
	s := &GameServer{
		addr:           addr,
		engine:         eng,
		roomManager:    rooms,
		sessionManager: session.NewManager(),
		monitor:        mon,
		shutdownChan:   make(chan struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // 允许所有跨域请求
			},
		},
	}

	rpcServer, err := colorparty_rpc.NewServer(rpcAddr)
	if err != nil {
		logger.Log.Fatalf("Failed to create RPC server: %v", err)
	}
	s.rpcServer = rpcServer
	rpc.Register(colorparty_rpc.NewAdminService(rooms, records))

	return s
}

func (s *GameServer) Start() error {
	go s.rpcServer.Start()
	s.engine.StartSweeper()

	http.HandleFunc("/ws", s.handleWebSocket)
	logger.Log.Infof("Game server listening on %s", s.addr)
	return http.ListenAndServe(s.addr, nil)
}

func (s *GameServer) Shutdown() {
	close(s.shutdownChan)
	s.engine.StopSweeper()
	s.rpcServer.Stop()
}

func (s *GameServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Infof("Failed to upgrade connection: %v", err)
		return
	}
	// A fresh connection arriving with a session token rebinds implicitly.
	s.handleConnection(conn, r.URL.Query().Get("token"))
}

func (s *GameServer) handleConnection(conn *websocket.Conn, resumeToken string) {
	wsConn := network.NewWSConnection(conn)
	sess := session.NewSession(uuid.New().String(), wsConn)
	s.sessionManager.Add(sess)
	s.monitor.IncOnlinePlayers()

	logger.Log.Infof("New connection from %s, session ID: %s", wsConn.RemoteAddr(), sess.GetID())

	defer func() {
		logger.Log.Infof("Connection closed from %s, session ID: %s", wsConn.RemoteAddr(), sess.GetID())
		s.sessionManager.Remove(sess.GetID())
		s.monitor.DecOnlinePlayers()
		s.engine.HandleDisconnect(sess)
		wsConn.Close()
	}()

	if resumeToken != "" {
		s.engine.HandleResume(sess, engine.ResumeRequest{Token: resumeToken})
	}

	for {
		select {
		case <-s.shutdownChan:
			return
		default:
			packet, err := wsConn.ReadPacket()
			if err != nil {
				return
			}
			start := time.Now()
			s.handlePacket(sess, packet)
			s.monitor.IncMessagesReceived()
			s.monitor.ObserveMessageLatency(time.Since(start))
		}
	}
}

func (s *GameServer) handlePacket(sess *session.Session, packet *network.Packet) {
	switch packet.MsgID {
	case network.MsgTypeHeartbeat:
		sess.LastActive = time.Now()
	case network.MsgTypeCreateRoom:
		var req engine.CreateRequest
		if unmarshal(packet.Data, &req) {
			s.engine.HandleCreate(sess, req)
		}
	case network.MsgTypeJoinRoom:
		var req engine.JoinRequest
		if unmarshal(packet.Data, &req) {
			s.engine.HandleJoin(sess, req)
		}
	case network.MsgTypeResume:
		var req engine.ResumeRequest
		if unmarshal(packet.Data, &req) {
			s.engine.HandleResume(sess, req)
		}
	case network.MsgTypeLeaveRoom:
		s.engine.HandleLeave(sess)
	case network.MsgTypeStartGame:
		s.engine.HandleStart(sess)
	case network.MsgTypeSubmitAnswer:
		var req engine.AnswerRequest
		if unmarshal(packet.Data, &req) {
			s.engine.HandleSubmitAnswer(sess, req)
		}
	case network.MsgTypeSubmitSequence:
		var req engine.SequenceRequest
		if unmarshal(packet.Data, &req) {
			s.engine.HandleSubmitSequence(sess, req)
		}
	case network.MsgTypeSubmitStep:
		var req engine.StepRequest
		if unmarshal(packet.Data, &req) {
			s.engine.HandleSubmitStep(sess, req)
		}
	default:
		logger.Log.Infof("Unknown message type: %d", packet.MsgID)
	}
}

func unmarshal(data []byte, v any) bool {
	if err := json.Unmarshal(data, v); err != nil {
		logger.Log.Warnf("Malformed payload: %v", err)
		return false
	}
	return true
}
