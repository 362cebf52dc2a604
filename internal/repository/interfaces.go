package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/studentcouncil/portal/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
}

type MeetingRepository interface {
	Create(ctx context.Context, meeting *domain.Meeting) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Meeting, error)
	GetByMeetingID(ctx context.Context, meetingID string) (*domain.Meeting, error)
	List(ctx context.Context, filter domain.MeetingFilter) ([]domain.Meeting, error)
	// UpdateByID applies mutate to the current stored record atomically
	// (row lock held for the duration of the read-modify-write).
	// Returns (nil, nil) when no record matches. An error from mutate
	// aborts the update and is returned unwrapped.
	UpdateByID(ctx context.Context, id uuid.UUID, mutate func(*domain.Meeting) error) (*domain.Meeting, error)
	// Delete reports whether a row was removed.
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	// NextSequence atomically increments and returns the per-day
	// counter used to mint business keys. day is YYYY-MM-DD.
	NextSequence(ctx context.Context, day string) (int, error)
}

type ArchiveRepository interface {
	// Write persists a retention snapshot. Callers must not proceed
	// with deletion until Write has returned successfully.
	Write(ctx context.Context, rec *domain.ArchivedMeeting) (uuid.UUID, error)
	GetByMeetingID(ctx context.Context, meetingID string) (*domain.ArchivedMeeting, error)
	List(ctx context.Context, limit int) ([]domain.ArchivedMeeting, error)
}

type PerformanceRepository interface {
	// IncrementAttendance bumps the member's attended counter,
	// creating the row on first attendance.
	IncrementAttendance(ctx context.Context, userID uuid.UUID) error
	GetByUser(ctx context.Context, userID uuid.UUID) (*domain.MemberPerformance, error)
	List(ctx context.Context) ([]domain.MemberPerformance, error)
}

type DiscussionRepository interface {
	Create(ctx context.Context, msg *domain.DiscussionMessage) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.DiscussionMessage, error)
	ListByMeeting(ctx context.Context, meetingID uuid.UUID, before *uuid.UUID, limit int) ([]domain.DiscussionMessage, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
}
