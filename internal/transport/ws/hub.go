package ws

import (
	"encoding/json"
	"log"

	"github.com/google/uuid"
)

// Hub manages all active WebSocket clients and routes discussion
// events to the meeting rooms they joined.
type Hub struct {
	// clients maps userID → client.
	clients map[uuid.UUID]*Client

	register   chan *Client
	unregister chan *Client
	broadcast  chan *broadcastMsg
}

type broadcastMsg struct {
	meetingID uuid.UUID
	data      []byte
	excludeID *uuid.UUID // optional: skip this user (e.g. sender)
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *broadcastMsg, 256),
	}
}

// Run starts the Hub's main event loop. Call this in a goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client.userID] = client
			log.Printf("ws hub: user %s connected (%d total)", client.userID, len(h.clients))

		case client := <-h.unregister:
			if _, ok := h.clients[client.userID]; ok {
				delete(h.clients, client.userID)
				close(client.send)
				close(client.done)
				log.Printf("ws hub: user %s disconnected (%d total)", client.userID, len(h.clients))
			}

		case msg := <-h.broadcast:
			for _, client := range h.clients {
				if msg.excludeID != nil && client.userID == *msg.excludeID {
					continue
				}
				// Only send to clients that joined this meeting room.
				if !client.InMeeting(msg.meetingID) {
					continue
				}
				select {
				case client.send <- msg.data:
				default:
					// Client buffer full - disconnect
					delete(h.clients, client.userID)
					close(client.send)
					close(client.done)
				}
			}
		}
	}
}

// BroadcastToMeeting sends an event to everyone in a meeting room.
func (h *Hub) BroadcastToMeeting(meetingID uuid.UUID, event *Event, excludeUserID *uuid.UUID) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("ws hub: marshal error: %v", err)
		return
	}
	h.broadcast <- &broadcastMsg{
		meetingID: meetingID,
		data:      data,
		excludeID: excludeUserID,
	}
}

// HandleTyping relays typing indicators to a meeting room, excluding
// the sender.
func (h *Hub) HandleTyping(sender *Client, event *Event) {
	if event.Type != EventTypeTypingStart {
		return // typing.stop is handled by a frontend timeout
	}
	meetingID := *event.MeetingID

	evt, err := NewEvent(EventTypeTyping, &meetingID, TypingPayload{UserID: sender.userID})
	if err != nil {
		return
	}

	h.BroadcastToMeeting(meetingID, evt, &sender.userID)
}
