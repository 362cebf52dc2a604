package ws

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/studentcouncil/portal/internal/domain"
)

// Event types - Client → Server
const (
	EventTypeJoinMeeting  = "meeting.join"
	EventTypeLeaveMeeting = "meeting.leave"
	EventTypeTypingStart  = "typing.start"
	EventTypeTypingStop   = "typing.stop"
	EventTypePing         = "ping"
)

// Event types - Server → Client
const (
	EventTypeMessageNew     = "message.new"
	EventTypeMessageDeleted = "message.deleted"
	EventTypeTyping         = "typing"
	EventTypePong           = "pong"
	EventTypeError          = "error"
)

// Event is the base envelope for all WebSocket messages. MeetingID
// scopes the event to one meeting's discussion room.
type Event struct {
	Type      string          `json:"type"`
	MeetingID *uuid.UUID      `json:"meeting_id,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"ts,omitempty"`
}

// --- Client → Server payloads ---

type MeetingPayload struct {
	MeetingID uuid.UUID `json:"meeting_id"`
}

// --- Server → Client payloads ---

type MessagePayload struct {
	domain.DiscussionMessage
}

type MessageDeletedPayload struct {
	ID uuid.UUID `json:"id"`
}

type TypingPayload struct {
	UserID uuid.UUID `json:"user_id"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewEvent creates a server→client event with the current timestamp.
func NewEvent(eventType string, meetingID *uuid.UUID, payload any) (*Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Event{
		Type:      eventType,
		MeetingID: meetingID,
		Payload:   data,
		Timestamp: time.Now().Unix(),
	}, nil
}
