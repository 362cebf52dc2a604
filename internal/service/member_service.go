package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/studentcouncil/portal/internal/domain"
	"github.com/studentcouncil/portal/internal/repository"
)

var ErrMemberNotFound = errors.New("member not found")

// MemberService exposes council member profiles and their participation
// counters. It consumes attendance events from the meeting service.
type MemberService struct {
	userRepo repository.UserRepository
	perfRepo repository.PerformanceRepository
}

func NewMemberService(userRepo repository.UserRepository, perfRepo repository.PerformanceRepository) *MemberService {
	return &MemberService{
		userRepo: userRepo,
		perfRepo: perfRepo,
	}
}

func (s *MemberService) List(ctx context.Context) ([]domain.User, error) {
	return s.userRepo.List(ctx)
}

func (s *MemberService) Get(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrMemberNotFound
	}
	return user, nil
}

// GetPerformance returns the member's counters, zero-valued when the
// member has never been marked present.
func (s *MemberService) GetPerformance(ctx context.Context, id uuid.UUID) (*domain.MemberPerformance, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrMemberNotFound
	}

	perf, err := s.perfRepo.GetByUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if perf == nil {
		perf = &domain.MemberPerformance{UserID: id}
	}
	perf.Username = user.Username
	perf.DisplayName = user.DisplayName
	return perf, nil
}

func (s *MemberService) ListPerformance(ctx context.Context) ([]domain.MemberPerformance, error) {
	return s.perfRepo.List(ctx)
}

// AttendeeMarkedPresent implements PerformanceTracker for the meeting
// service's attendance events.
func (s *MemberService) AttendeeMarkedPresent(ctx context.Context, userID uuid.UUID, meetingID string) error {
	if err := s.perfRepo.IncrementAttendance(ctx, userID); err != nil {
		return fmt.Errorf("incrementing attendance for %s (meeting %s): %w", userID, meetingID, err)
	}
	return nil
}
