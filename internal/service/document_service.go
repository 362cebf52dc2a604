package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/studentcouncil/portal/internal/domain"
	"github.com/studentcouncil/portal/internal/repository"
)

var ErrNotPublished = errors.New("meeting minutes have not been published")

// DocumentRenderer turns a meeting record into a downloadable minutes
// document. The formatting itself lives behind this interface.
type DocumentRenderer interface {
	Render(m *domain.Meeting, attendees []domain.User) ([]byte, string, error)
}

// DocumentService produces the minutes document for published meetings.
type DocumentService struct {
	meetings repository.MeetingRepository
	userRepo repository.UserRepository
	renderer DocumentRenderer
}

func NewDocumentService(meetings repository.MeetingRepository, userRepo repository.UserRepository, renderer DocumentRenderer) *DocumentService {
	return &DocumentService{
		meetings: meetings,
		userRepo: userRepo,
		renderer: renderer,
	}
}

// Render returns the document bytes, its content type, and a suggested
// filename. Only published meetings can be exported.
func (s *DocumentService) Render(ctx context.Context, id uuid.UUID) ([]byte, string, string, error) {
	m, err := s.meetings.GetByID(ctx, id)
	if err != nil {
		return nil, "", "", err
	}
	if m == nil {
		return nil, "", "", ErrMeetingNotFound
	}
	if !m.Published {
		return nil, "", "", ErrNotPublished
	}

	attendees := make([]domain.User, 0, len(m.Attendees))
	for _, a := range m.Attendees {
		user, err := s.userRepo.GetByID(ctx, a.UserID)
		if err != nil {
			return nil, "", "", err
		}
		if user != nil {
			attendees = append(attendees, *user)
		}
	}

	data, contentType, err := s.renderer.Render(m, attendees)
	if err != nil {
		return nil, "", "", fmt.Errorf("rendering minutes document: %w", err)
	}

	ext := "txt"
	if contentType == "application/pdf" {
		ext = "pdf"
	}
	filename := fmt.Sprintf("minutes-%s.%s", m.MeetingID, ext)
	return data, contentType, filename, nil
}
