package network

// Message IDs for every inbound and outbound packet. Inbound IDs live in the
// 1xx/2xx ranges, outbound notices in 3xx-6xx.
const (
	MsgTypeHeartbeat = 1

	// Room membership (inbound)
	MsgTypeCreateRoom = 101
	MsgTypeJoinRoom   = 102
	MsgTypeLeaveRoom  = 103
	MsgTypeResume     = 104
	MsgTypeStartGame  = 105

	// Game submissions (inbound)
	MsgTypeSubmitAnswer   = 201
	MsgTypeSubmitSequence = 202
	MsgTypeSubmitStep     = 203

	// Room notices (outbound)
	MsgTypeRoomSnapshot       = 301
	MsgTypeRoomUpdate         = 302
	MsgTypePlayerJoined       = 303
	MsgTypePlayerLeft         = 304
	MsgTypePlayerReconnected  = 305
	MsgTypePlayerDisconnected = 306
	MsgTypeRoomClosed         = 307
	MsgTypeError              = 308

	// Match lifecycle (outbound)
	MsgTypeCountdownTick = 401
	MsgTypeGameStarted   = 402

	// Race game (outbound)
	MsgTypeRaceRoundStart  = 501
	MsgTypeRaceRoundResult = 502
	MsgTypeRaceFinished    = 503

	// Sequence game (outbound)
	MsgTypeSeqRoundStart   = 601
	MsgTypeSeqShowComplete = 602
	MsgTypeSeqInputOpen    = 603
	MsgTypeSeqResult       = 604
	MsgTypeSeqStepAck      = 605
	MsgTypeSeqElimination  = 606
	MsgTypeSeqFinished     = 607
)
