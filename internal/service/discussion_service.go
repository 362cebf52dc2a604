package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/studentcouncil/portal/internal/domain"
	"github.com/studentcouncil/portal/internal/repository"
)

var (
	ErrMessageNotFound = errors.New("message not found")
	ErrNotMessageOwner = errors.New("only the message sender can perform this action")
)

// Broadcaster pushes discussion events to connected clients in real
// time. Nil broadcaster means REST-only operation.
type Broadcaster interface {
	BroadcastNewMessage(msg *domain.DiscussionMessage)
	BroadcastDeletedMessage(meetingID, messageID uuid.UUID)
}

// DiscussionService owns the per-meeting chat thread.
type DiscussionService struct {
	messages    repository.DiscussionRepository
	meetings    repository.MeetingRepository
	broadcaster Broadcaster
}

func NewDiscussionService(messages repository.DiscussionRepository, meetings repository.MeetingRepository) *DiscussionService {
	return &DiscussionService{
		messages: messages,
		meetings: meetings,
	}
}

// SetBroadcaster sets the real-time sink (optional dependency).
func (s *DiscussionService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

type PostMessageInput struct {
	Content string `json:"content"`
}

type MessageListResponse struct {
	Messages []domain.DiscussionMessage `json:"messages"`
	HasMore  bool                       `json:"has_more"`
}

func (s *DiscussionService) Post(ctx context.Context, userID, meetingID uuid.UUID, input PostMessageInput) (*domain.DiscussionMessage, error) {
	meeting, err := s.meetings.GetByID(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	if meeting == nil {
		return nil, ErrMeetingNotFound
	}

	msg := &domain.DiscussionMessage{
		ID:        uuid.New(),
		MeetingID: meetingID,
		SenderID:  userID,
		Content:   input.Content,
		CreatedAt: time.Now(),
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("creating message: %w", err)
	}

	// Re-read for sender info joined from users.
	full, err := s.messages.GetByID(ctx, msg.ID)
	if err != nil {
		return nil, err
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastNewMessage(full)
	}
	return full, nil
}

func (s *DiscussionService) List(ctx context.Context, meetingID uuid.UUID, before *uuid.UUID, limit int) (*MessageListResponse, error) {
	meeting, err := s.meetings.GetByID(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	if meeting == nil {
		return nil, ErrMeetingNotFound
	}

	if limit <= 0 || limit > 100 {
		limit = 50
	}

	// Fetch limit+1 to know whether older messages remain.
	messages, err := s.messages.ListByMeeting(ctx, meetingID, before, limit+1)
	if err != nil {
		return nil, err
	}

	hasMore := len(messages) > limit
	if hasMore {
		messages = messages[len(messages)-limit:]
	}
	if messages == nil {
		messages = []domain.DiscussionMessage{}
	}

	return &MessageListResponse{Messages: messages, HasMore: hasMore}, nil
}

func (s *DiscussionService) Delete(ctx context.Context, userID uuid.UUID, role domain.Role, messageID uuid.UUID) error {
	msg, err := s.messages.GetByID(ctx, messageID)
	if err != nil {
		return err
	}
	if msg == nil {
		return ErrMessageNotFound
	}
	if msg.SenderID != userID && role != domain.RoleController {
		return ErrNotMessageOwner
	}

	if err := s.messages.SoftDelete(ctx, messageID); err != nil {
		return err
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastDeletedMessage(msg.MeetingID, messageID)
	}
	return nil
}
