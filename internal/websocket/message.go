package websocket

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rfox/draftroom/internal/service"
)

type MessageType string

const (
	// Client to server. The feed is read-only: these are the only accepted
	// inbound messages, and every mutation goes through the REST API.
	MessageTypeJoinLeague MessageType = "JOIN_LEAGUE"
	MessageTypeSyncState  MessageType = "SYNC_STATE"
	MessageTypePing       MessageType = "PING"

	// Server to client
	MessageTypeStateSync       MessageType = "STATE_SYNC"
	MessageTypeDraftStarted    MessageType = "DRAFT_STARTED"
	MessageTypeDraftPaused     MessageType = "DRAFT_PAUSED"
	MessageTypeDraftResumed    MessageType = "DRAFT_RESUMED"
	MessageTypeDraftRestarted  MessageType = "DRAFT_RESTARTED"
	MessageTypeDraftCompleted  MessageType = "DRAFT_COMPLETED"
	MessageTypePickCommitted   MessageType = "PICK_COMMITTED"
	MessageTypePickUndone      MessageType = "PICK_UNDONE"
	MessageTypeOrderChanged    MessageType = "ORDER_CHANGED"
	MessageTypeAutoPickToggled MessageType = "AUTOPICK_TOGGLED"
	MessageTypeTimerTick       MessageType = "TIMER_TICK"
	MessageTypePong            MessageType = "PONG"
	MessageTypeError           MessageType = "ERROR"
)

type Message struct {
	Type      MessageType     `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

func NewMessage(msgType MessageType, payload interface{}) (*Message, error) {
	msg := &Message{
		Type:      msgType,
		Timestamp: time.Now().UnixMilli(),
	}
	if payload != nil {
		payloadBytes, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		msg.Payload = payloadBytes
	}
	return msg, nil
}

// Client to server payloads

type JoinLeaguePayload struct {
	LeagueID string `json:"leagueId"`
	// Token is a captain access token or the league spectator token.
	// Managers authenticate with their JWT on the upgrade request instead.
	Token string `json:"token,omitempty"`
}

// Server to client payloads

// StateSyncPayload carries the full authoritative snapshot. Event messages
// are hints; this is what clients render.
type StateSyncPayload struct {
	Snapshot      *service.DraftSnapshot `json:"snapshot"`
	YourRole      string                 `json:"yourRole"`
	YourCaptainID *uuid.UUID             `json:"yourCaptainId,omitempty"`
}

type TimerTickPayload struct {
	PickIndex        int     `json:"pickIndex"`
	RemainingSeconds float64 `json:"remainingSeconds"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
