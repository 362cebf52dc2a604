package ws

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const (
	writeWait    = 10 * time.Second
	pingInterval = 30 * time.Second
	sendBufSize  = 256
)

// Client represents a single WebSocket connection.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	userID uuid.UUID

	// joinedMeetings tracks which discussion rooms this client is in.
	joinedMeetings map[uuid.UUID]struct{}
	mu             sync.RWMutex

	send chan []byte
	done chan struct{}
}

func NewClient(hub *Hub, conn *websocket.Conn, userID uuid.UUID) *Client {
	return &Client{
		hub:            hub,
		conn:           conn,
		userID:         userID,
		joinedMeetings: make(map[uuid.UUID]struct{}),
		send:           make(chan []byte, sendBufSize),
		done:           make(chan struct{}),
	}
}

// InMeeting checks if this client has joined a meeting room.
func (c *Client) InMeeting(meetingID uuid.UUID) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.joinedMeetings[meetingID]
	return ok
}

// Join adds a meeting room membership.
func (c *Client) Join(meetingID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.joinedMeetings[meetingID] = struct{}{}
}

// Leave removes a meeting room membership.
func (c *Client) Leave(meetingID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.joinedMeetings, meetingID)
}

// ReadPump reads messages from the WebSocket and routes them to the Hub.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		var event Event
		err := wsjson.Read(context.Background(), c.conn, &event)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				log.Printf("ws: client %s disconnected", c.userID)
			} else {
				log.Printf("ws: read error from %s: %v", c.userID, err)
			}
			return
		}

		c.handleEvent(&event)
	}
}

// WritePump writes messages from the send channel to the WebSocket.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				return
			}
			ctx, cancel := context.WithTimeout(context.Background(), writeWait)
			err := c.conn.Write(ctx, websocket.MessageText, message)
			cancel()
			if err != nil {
				log.Printf("ws: write error to %s: %v", c.userID, err)
				return
			}

		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), writeWait)
			err := c.conn.Ping(ctx)
			cancel()
			if err != nil {
				log.Printf("ws: ping error to %s: %v", c.userID, err)
				return
			}

		case <-c.done:
			return
		}
	}
}

// handleEvent routes an incoming client event.
func (c *Client) handleEvent(event *Event) {
	switch event.Type {
	case EventTypeJoinMeeting:
		var p MeetingPayload
		if err := json.Unmarshal(event.Payload, &p); err != nil {
			c.sendError("INVALID_PAYLOAD", "invalid meeting.join payload")
			return
		}
		c.Join(p.MeetingID)
		log.Printf("ws: %s joined meeting room %s", c.userID, p.MeetingID)

	case EventTypeLeaveMeeting:
		var p MeetingPayload
		if err := json.Unmarshal(event.Payload, &p); err != nil {
			c.sendError("INVALID_PAYLOAD", "invalid meeting.leave payload")
			return
		}
		c.Leave(p.MeetingID)
		log.Printf("ws: %s left meeting room %s", c.userID, p.MeetingID)

	case EventTypeTypingStart, EventTypeTypingStop:
		if event.MeetingID == nil {
			c.sendError("INVALID_PAYLOAD", "meeting_id required for typing events")
			return
		}
		c.hub.HandleTyping(c, event)

	case EventTypePing:
		c.sendPong()

	default:
		c.sendError("UNKNOWN_EVENT", "unknown event type: "+event.Type)
	}
}

func (c *Client) sendPong() {
	data, _ := json.Marshal(Event{Type: EventTypePong})
	select {
	case c.send <- data:
	default:
	}
}

func (c *Client) sendError(code, message string) {
	evt, err := NewEvent(EventTypeError, nil, ErrorPayload{Code: code, Message: message})
	if err != nil {
		return
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}
