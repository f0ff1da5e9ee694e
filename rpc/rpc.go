package rpc

import (
	"net"
	"net/rpc"

	"github.com/wfunc/colorparty/logger"
	"github.com/wfunc/colorparty/models"
	"github.com/wfunc/colorparty/room"
	"github.com/wfunc/colorparty/services"
)

// Server manages the RPC listener for ops tooling.
type Server struct {
	listener net.Listener
	address  string
}

// NewServer creates a new RPC server.
func NewServer(addr string) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Server{
		listener: listener,
		address:  addr,
	}, nil
}

// Start begins listening for RPC requests.
func (s *Server) Start() {
	logger.Log.Infof("RPC server listening on %s", s.address)
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if _, ok := err.(*net.OpError); ok {
				logger.Log.Info("RPC server listener closed.")
				return
			}
			logger.Log.Errorf("RPC server accept error: %v", err)
			continue
		}
		go rpc.ServeConn(conn)
	}
}

// Stop closes the RPC listener.
func (s *Server) Stop() {
	if s.listener != nil {
		logger.Log.Info("Stopping RPC server.")
		s.listener.Close()
	}
}

// AdminService exposes room and match-record lookups over net/rpc.
type AdminService struct {
	rooms   *room.Manager
	records *services.RecordService
}

func NewAdminService(rooms *room.Manager, records *services.RecordService) *AdminService {
	return &AdminService{rooms: rooms, records: records}
}

type RoomInfoArgs struct {
	Code string
}

type RoomInfoReply struct {
	Found  bool
	Stored bool // true when the info came from the snapshot store
	Room   room.View
	State  models.RoomState
}

func (a *AdminService) RoomInfo(args *RoomInfoArgs, reply *RoomInfoReply) error {
	r, exists := a.rooms.GetRoom(args.Code)
	if exists {
		reply.Found = true
		reply.Room = r.Snapshot()
		return nil
	}

	// Not live any more; the snapshot store may still know it.
	st, err := a.records.LoadRoomState(args.Code)
	if err != nil {
		reply.Found = false
		return nil
	}
	reply.Found = true
	reply.Stored = true
	reply.State = st
	return nil
}

type RecentMatchesArgs struct {
	Limit int
}

type RecentMatchesReply struct {
	Records []models.MatchRecord
}

func (a *AdminService) RecentMatches(args *RecentMatchesArgs, reply *RecentMatchesReply) error {
	records, err := a.records.RecentMatches(args.Limit)
	if err != nil {
		return err
	}
	reply.Records = records
	return nil
}
