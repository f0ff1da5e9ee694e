package engine

import (
	"github.com/wfunc/colorparty/game"
	"github.com/wfunc/colorparty/room"
)

// Inbound request payloads.

type CreateRequest struct {
	Name     string    `json:"name"`
	GameType game.Type `json:"game_type,omitempty"`
}

type JoinRequest struct {
	RoomCode string `json:"room_code"`
	Name     string `json:"name"`
}

type ResumeRequest struct {
	Token string `json:"token"`
}

type AnswerRequest struct {
	Color game.Color `json:"color"`
}

type SequenceRequest struct {
	Colors []game.Color `json:"colors"`
}

type StepRequest struct {
	Index int        `json:"index"`
	Color game.Color `json:"color"`
}

// Outbound notice payloads.

type ErrorNotice struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WelcomePayload answers a successful create or join, carrying the session
// token the client needs to reconnect later.
type WelcomePayload struct {
	PlayerID string    `json:"player_id"`
	Token    string    `json:"token"`
	Room     room.View `json:"room"`
}

type PlayerEvent struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name,omitempty"`
}

type RoomClosedPayload struct {
	Code string `json:"code"`
}

type CountdownTickPayload struct {
	Count int `json:"count"`
}

type GameStartedPayload struct {
	GameType game.Type `json:"game_type"`
}

type RaceRoundStartPayload struct {
	Round       int        `json:"round"`
	TotalRounds int        `json:"total_rounds"`
	Target      game.Color `json:"target"`
}

type RaceRoundResultPayload struct {
	Round  int            `json:"round"`
	Winner string         `json:"winner,omitempty"`
	Target game.Color     `json:"target"`
	Scores map[string]int `json:"scores"`
}

type RaceFinishedPayload struct {
	Winner string         `json:"winner,omitempty"`
	Scores map[string]int `json:"scores"`
}

type SeqRoundStartPayload struct {
	Round    int          `json:"round"`
	Sequence []game.Color `json:"sequence"`
	Length   int          `json:"length"`
}

type SeqPhasePayload struct {
	Round int `json:"round"`
}

type SeqResultPayload struct {
	PlayerID string       `json:"player_id"`
	Correct  bool         `json:"correct"`
	Sequence []game.Color `json:"sequence"`
}

type SeqStepAckPayload struct {
	PlayerID string `json:"player_id"`
	Index    int    `json:"index"`
	Progress int    `json:"progress"`
}

type SeqEliminationPayload struct {
	PlayerID string       `json:"player_id"`
	Reason   string       `json:"reason"`
	Sequence []game.Color `json:"sequence,omitempty"`
}

type SeqFinishedPayload struct {
	Winner string `json:"winner,omitempty"`
	Round  int    `json:"round"`
}
