package ws

import (
	"log"

	"github.com/google/uuid"

	"github.com/studentcouncil/portal/internal/domain"
)

// HubBroadcaster implements service.Broadcaster using the WebSocket Hub.
type HubBroadcaster struct {
	hub *Hub
}

func NewHubBroadcaster(hub *Hub) *HubBroadcaster {
	return &HubBroadcaster{hub: hub}
}

func (b *HubBroadcaster) BroadcastNewMessage(msg *domain.DiscussionMessage) {
	evt, err := NewEvent(EventTypeMessageNew, &msg.MeetingID, MessagePayload{DiscussionMessage: *msg})
	if err != nil {
		log.Printf("ws broadcaster: marshal error: %v", err)
		return
	}
	b.hub.BroadcastToMeeting(msg.MeetingID, evt, nil)
}

func (b *HubBroadcaster) BroadcastDeletedMessage(meetingID, messageID uuid.UUID) {
	evt, err := NewEvent(EventTypeMessageDeleted, &meetingID, MessageDeletedPayload{ID: messageID})
	if err != nil {
		log.Printf("ws broadcaster: marshal error: %v", err)
		return
	}
	b.hub.BroadcastToMeeting(meetingID, evt, nil)
}
