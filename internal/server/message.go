package server

import (
	"encoding/json"
	"time"
)

// MessageType identifies a wire message.
type MessageType string

// Client → server commands. Each mirrors one registry or session operation.
const (
	MessageTypeStart  MessageType = "start"
	MessageTypeJoin   MessageType = "join"
	MessageTypeLeave  MessageType = "leave"
	MessageTypeEnd    MessageType = "end"
	MessageTypeSubmit MessageType = "submit"
	MessageTypeJudge  MessageType = "judge"
	MessageTypeState  MessageType = "state"
)

// Server → client messages.
const (
	MessageTypeWelcome     MessageType = "welcome"
	MessageTypeRoomState   MessageType = "room_state"
	MessageTypePlayerState MessageType = "player_state"
	MessageTypeRoundResult MessageType = "round_result"
	MessageTypeGameOver    MessageType = "game_over"
	MessageTypeError       MessageType = "error"
)

// Message is the envelope for every WebSocket message.
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewMessage creates a message with the current timestamp.
func NewMessage(messageType MessageType, data interface{}) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}

// Client → Server payloads

// StartData starts a new game in a room, seating the sender as first czar.
type StartData struct {
	Room string `json:"room"`
	Name string `json:"name"`
}

// JoinData joins the sender to an existing room.
type JoinData struct {
	Room string `json:"room"`
	Name string `json:"name"`
}

// EndData terminates the game in a room.
type EndData struct {
	Room string `json:"room"`
}

// SubmitData plays the card at Index from the sender's hand.
type SubmitData struct {
	Index int `json:"index"`
}

// JudgeData selects the winning submission at Index. Czar only.
type JudgeData struct {
	Index int `json:"index"`
}

// Server → Client payloads

// WelcomeData is sent once on connect with the minted player identity.
type WelcomeData struct {
	PlayerID string `json:"player_id"`
}

// PlayerSummary is one roster entry in a room broadcast.
type PlayerSummary struct {
	Name   string `json:"name"`
	Score  int    `json:"score"`
	IsCzar bool   `json:"is_czar"`
}

// RoomStateData is broadcast to every connection in a room after each
// accepted mutation. Submissions stay hidden until everyone has played.
type RoomStateData struct {
	Room        string          `json:"room"`
	Prompt      string          `json:"prompt"`
	Outstanding int             `json:"outstanding"`
	Players     []PlayerSummary `json:"players"`
	Submissions []string        `json:"submissions,omitempty"`
}

// PlayerStateData is the private per-player view.
type PlayerStateData struct {
	Room   string   `json:"room"`
	Hand   []string `json:"hand"`
	Score  int      `json:"score"`
	IsCzar bool     `json:"is_czar"`
}

// RoundResultData announces a judged round.
type RoundResultData struct {
	Room        string `json:"room"`
	Winner      string `json:"winner"`
	WinningCard string `json:"winning_card"`
	Prompt      string `json:"prompt"`
	Score       int    `json:"score"`
	NextPrompt  string `json:"next_prompt"`
	NextCzar    string `json:"next_czar"`
}

// GameOverData announces a terminated game.
type GameOverData struct {
	Room   string `json:"room"`
	Reason string `json:"reason"`
}

// ErrorData carries a rejection back to the issuing connection.
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
