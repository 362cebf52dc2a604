package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/studentcouncil/portal/internal/domain"
	"github.com/studentcouncil/portal/internal/repository"
)

var (
	ErrMeetingNotFound     = errors.New("meeting not found")
	ErrNotMeetingOwner     = errors.New("only the meeting creator, chairperson or a controller can perform this action")
	ErrNotController       = errors.New("only a controller can perform this action")
	ErrMeetingNotCompleted = errors.New("only completed meetings can be archived")
	ErrMeetingArchived     = errors.New("archived meetings cannot be modified")
	ErrMinutesMissing      = errors.New("meeting has no minutes summary to publish")
	ErrActionItemNotFound  = errors.New("action item not found")
)

// Notifier delivers one formatted message to one recipient. Delivery
// failures are the caller's to log; they never abort sibling sends.
type Notifier interface {
	Send(ctx context.Context, recipient, subject, body string) error
}

// PerformanceTracker consumes attendance events emitted when a member
// is marked present on a meeting roster.
type PerformanceTracker interface {
	AttendeeMarkedPresent(ctx context.Context, userID uuid.UUID, meetingID string) error
}

type MeetingService struct {
	meetings repository.MeetingRepository
	archive  repository.ArchiveRepository
	userRepo repository.UserRepository
	notifier Notifier
	tracker  PerformanceTracker
}

func NewMeetingService(
	meetings repository.MeetingRepository,
	archive repository.ArchiveRepository,
	userRepo repository.UserRepository,
) *MeetingService {
	return &MeetingService{
		meetings: meetings,
		archive:  archive,
		userRepo: userRepo,
	}
}

// SetNotifier sets the publish-notification sink (optional dependency).
func (s *MeetingService) SetNotifier(n Notifier) {
	s.notifier = n
}

// SetPerformanceTracker sets the attendance event consumer (optional
// dependency).
func (s *MeetingService) SetPerformanceTracker(t PerformanceTracker) {
	s.tracker = t
}

type AttendeeInput struct {
	UserID uuid.UUID               `json:"user_id"`
	Status domain.AttendanceStatus `json:"status,omitempty"`
	Time   string                  `json:"time,omitempty"`
	Notes  string                  `json:"notes,omitempty"`
	// Email is nil for "use the default" (opted in).
	Email *bool `json:"email,omitempty"`
}

type CreateMeetingInput struct {
	Title        string              `json:"title"`
	Venue        string              `json:"venue"`
	Objective    string              `json:"objective"`
	Type         domain.MeetingType  `json:"type"`
	Date         string              `json:"date"`
	StartTime    string              `json:"start_time"`
	EndTime      string              `json:"end_time"`
	Chairperson  uuid.UUID           `json:"chairperson"`
	MinutesTaker *uuid.UUID          `json:"minutes_taker,omitempty"`
	Agenda       []domain.AgendaItem `json:"agenda,omitempty"`
	Attendees    []AttendeeInput     `json:"attendees,omitempty"`
}

type UpdateMeetingInput struct {
	Title        *string               `json:"title,omitempty"`
	Venue        *string               `json:"venue,omitempty"`
	Objective    *string               `json:"objective,omitempty"`
	Type         *domain.MeetingType   `json:"type,omitempty"`
	Date         *string               `json:"date,omitempty"`
	StartTime    *string               `json:"start_time,omitempty"`
	EndTime      *string               `json:"end_time,omitempty"`
	Chairperson  *uuid.UUID            `json:"chairperson,omitempty"`
	MinutesTaker *uuid.UUID            `json:"minutes_taker,omitempty"`
	Agenda       *[]domain.AgendaItem  `json:"agenda,omitempty"`
	Status       *domain.MeetingStatus `json:"status,omitempty"`
}

type UpdateMinutesInput struct {
	Summary     *string              `json:"summary,omitempty"`
	Decisions   *[]string            `json:"decisions,omitempty"`
	ActionItems *[]domain.ActionItem `json:"action_items,omitempty"`
	Attachments *[]string            `json:"attachments,omitempty"`
	NextMeeting *string              `json:"next_meeting,omitempty"`
}

// Create assigns the business key from the creation day's atomic
// sequence counter and persists the meeting as scheduled, version 1.
func (s *MeetingService) Create(ctx context.Context, actorID uuid.UUID, input CreateMeetingInput) (*domain.Meeting, error) {
	now := time.Now()
	day := now.Format("2006-01-02")

	seq, err := s.meetings.NextSequence(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("allocating meeting sequence: %w", err)
	}

	m := &domain.Meeting{
		ID:           uuid.New(),
		MeetingID:    fmt.Sprintf("SC-%s-%03d", day, seq),
		Title:        input.Title,
		Venue:        input.Venue,
		Objective:    input.Objective,
		Type:         input.Type,
		Date:         input.Date,
		StartTime:    input.StartTime,
		EndTime:      input.EndTime,
		Chairperson:  input.Chairperson,
		MinutesTaker: input.MinutesTaker,
		Attendees:    normalizeAttendees(input.Attendees, input.StartTime),
		Agenda:       input.Agenda,
		Status:       domain.MeetingScheduled,
		Version:      1,
		CreatedBy:    actorID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if m.Type == "" {
		m.Type = domain.MeetingTypeRegular
	}

	if err := s.meetings.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("creating meeting: %w", err)
	}
	return m, nil
}

func (s *MeetingService) Get(ctx context.Context, id uuid.UUID) (*domain.Meeting, error) {
	m, err := s.meetings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, ErrMeetingNotFound
	}
	return m, nil
}

func (s *MeetingService) List(ctx context.Context, filter domain.MeetingFilter) ([]domain.Meeting, error) {
	if filter.Limit <= 0 || filter.Limit > 200 {
		filter.Limit = 50
	}
	return s.meetings.List(ctx, filter)
}

// Update applies a shallow patch. The pre-patch record is snapshotted
// into the revision history and the version incremented, as part of the
// same atomic write.
func (s *MeetingService) Update(ctx context.Context, actorID uuid.UUID, role domain.Role, id uuid.UUID, input UpdateMeetingInput) (*domain.Meeting, error) {
	return s.mutate(ctx, id, actorID, func(m *domain.Meeting) error {
		if !canModify(m, actorID, role) {
			return ErrNotMeetingOwner
		}
		if m.Archived {
			return ErrMeetingArchived
		}

		if input.Title != nil {
			m.Title = *input.Title
		}
		if input.Venue != nil {
			m.Venue = *input.Venue
		}
		if input.Objective != nil {
			m.Objective = *input.Objective
		}
		if input.Type != nil {
			m.Type = *input.Type
		}
		if input.Date != nil {
			m.Date = *input.Date
		}
		if input.StartTime != nil {
			m.StartTime = *input.StartTime
		}
		if input.EndTime != nil {
			m.EndTime = *input.EndTime
		}
		if input.Chairperson != nil {
			m.Chairperson = *input.Chairperson
		}
		if input.MinutesTaker != nil {
			m.MinutesTaker = input.MinutesTaker
		}
		if input.Agenda != nil {
			m.Agenda = *input.Agenda
		}
		if input.Status != nil {
			m.Status = *input.Status
		}
		return nil
	})
}

// UpdateMinutes merges the provided minutes fields over the existing
// ones and forces the meeting to completed. Attaching minutes always
// marks the meeting done; there is no way back through this path.
func (s *MeetingService) UpdateMinutes(ctx context.Context, actorID uuid.UUID, role domain.Role, id uuid.UUID, input UpdateMinutesInput) (*domain.Meeting, error) {
	return s.mutate(ctx, id, actorID, func(m *domain.Meeting) error {
		if !canModify(m, actorID, role) {
			return ErrNotMeetingOwner
		}
		if m.Archived {
			return ErrMeetingArchived
		}

		if m.Minutes == nil {
			m.Minutes = &domain.Minutes{
				Decisions:   []string{},
				ActionItems: []domain.ActionItem{},
			}
		}
		if input.Summary != nil {
			m.Minutes.Summary = *input.Summary
		}
		if input.Decisions != nil {
			m.Minutes.Decisions = *input.Decisions
		}
		if input.ActionItems != nil {
			items := *input.ActionItems
			for i := range items {
				if items[i].ID == uuid.Nil {
					items[i].ID = uuid.New()
				}
				if items[i].Status == "" {
					items[i].Status = domain.ActionItemPending
				}
			}
			m.Minutes.ActionItems = items
		}
		if input.Attachments != nil {
			m.Minutes.Attachments = *input.Attachments
		}
		if input.NextMeeting != nil {
			m.Minutes.NextMeeting = *input.NextMeeting
		}

		m.Status = domain.MeetingCompleted
		return nil
	})
}

// Publish marks the meeting published and fans out one notification per
// opted-in attendee. Returns the number of notifications delivered;
// individual delivery failures are logged and excluded from the count,
// never failing the publish itself.
func (s *MeetingService) Publish(ctx context.Context, actorID uuid.UUID, id uuid.UUID) (*domain.Meeting, int, error) {
	m, err := s.mutate(ctx, id, actorID, func(m *domain.Meeting) error {
		if m.Minutes == nil || m.Minutes.Summary == "" {
			return ErrMinutesMissing
		}
		now := time.Now()
		m.Published = true
		m.PublishedAt = &now
		m.PublishedBy = &actorID
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	sent := s.notifyPublished(ctx, m)
	return m, sent, nil
}

// Archive is only reachable from completed; it never touches status.
func (s *MeetingService) Archive(ctx context.Context, actorID uuid.UUID, role domain.Role, id uuid.UUID) (*domain.Meeting, error) {
	if role != domain.RoleController {
		return nil, ErrNotController
	}
	return s.mutate(ctx, id, actorID, func(m *domain.Meeting) error {
		if m.Status != domain.MeetingCompleted {
			return ErrMeetingNotCompleted
		}
		now := time.Now()
		m.Archived = true
		m.ArchivedAt = &now
		return nil
	})
}

// Restore clears the archived flag. Idempotent: restoring a meeting
// that is not archived succeeds and changes nothing but the version.
func (s *MeetingService) Restore(ctx context.Context, actorID uuid.UUID, role domain.Role, id uuid.UUID) (*domain.Meeting, error) {
	if role != domain.RoleController {
		return nil, ErrNotController
	}
	return s.mutate(ctx, id, actorID, func(m *domain.Meeting) error {
		m.Archived = false
		m.ArchivedAt = nil
		return nil
	})
}

// Delete writes a retention snapshot to the archive store and only then
// removes the record. If the archive write fails the meeting stays
// untouched; a meeting must never vanish without an archival trace.
func (s *MeetingService) Delete(ctx context.Context, actorID uuid.UUID, role domain.Role, id uuid.UUID, reason string) error {
	if role != domain.RoleController {
		return ErrNotController
	}

	m, err := s.meetings.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if m == nil {
		return ErrMeetingNotFound
	}

	raw, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encoding meeting snapshot: %w", err)
	}

	rec := &domain.ArchivedMeeting{
		ID:        uuid.New(),
		MeetingID: m.MeetingID,
		Snapshot:  *m,
		DeletedBy: actorID,
		Reason:    reason,
		SizeBytes: int64(len(raw)),
		DeletedAt: time.Now(),
	}
	if _, err := s.archive.Write(ctx, rec); err != nil {
		return fmt.Errorf("archiving meeting before delete: %w", err)
	}

	deleted, err := s.meetings.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrMeetingNotFound
	}
	return nil
}

// AddAttendee upserts a roster entry keyed by user. When the final
// status is present, an attendance event is emitted to the performance
// tracker; tracker failures are logged, never surfaced.
func (s *MeetingService) AddAttendee(ctx context.Context, actorID uuid.UUID, role domain.Role, id uuid.UUID, input AttendeeInput) (*domain.Meeting, error) {
	m, err := s.mutate(ctx, id, actorID, func(m *domain.Meeting) error {
		if !canModify(m, actorID, role) {
			return ErrNotMeetingOwner
		}
		if m.Archived {
			return ErrMeetingArchived
		}
		upsertAttendee(m, input)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if i := m.FindAttendee(input.UserID); i >= 0 && m.Attendees[i].Status == domain.AttendancePresent {
		s.trackPresent(ctx, input.UserID, m.MeetingID)
	}
	return m, nil
}

// CompleteActionItem marks one minutes action item completed. The
// assignee may complete their own item; anyone who can modify the
// meeting may complete any item.
func (s *MeetingService) CompleteActionItem(ctx context.Context, actorID uuid.UUID, role domain.Role, id, itemID uuid.UUID, completionDate *time.Time) (*domain.Meeting, error) {
	return s.mutate(ctx, id, actorID, func(m *domain.Meeting) error {
		if m.Archived {
			return ErrMeetingArchived
		}
		if m.Minutes == nil {
			return ErrActionItemNotFound
		}
		for i := range m.Minutes.ActionItems {
			item := &m.Minutes.ActionItems[i]
			if item.ID != itemID {
				continue
			}
			if item.Assignee != actorID && !canModify(m, actorID, role) {
				return ErrNotMeetingOwner
			}
			done := time.Now()
			if completionDate != nil {
				done = *completionDate
			}
			item.Status = domain.ActionItemCompleted
			item.CompletionDate = &done
			return nil
		}
		return ErrActionItemNotFound
	})
}

// mutate is the single write path for existing meetings: the pre-update
// state is snapshotted into the revision history and the version bumped
// inside the same atomic read-modify-write as the update itself. An
// error from fn aborts the whole write, snapshot included.
func (s *MeetingService) mutate(ctx context.Context, id, actorID uuid.UUID, fn func(*domain.Meeting) error) (*domain.Meeting, error) {
	m, err := s.meetings.UpdateByID(ctx, id, func(m *domain.Meeting) error {
		m.RecordVersion(actorID, time.Now())
		return fn(m)
	})
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, ErrMeetingNotFound
	}
	return m, nil
}

func (s *MeetingService) notifyPublished(ctx context.Context, m *domain.Meeting) int {
	if s.notifier == nil {
		return 0
	}

	subject := fmt.Sprintf("Minutes published: %s (%s)", m.Title, m.MeetingID)
	body := m.Minutes.Summary

	var (
		mu   sync.Mutex
		sent int
	)
	var g errgroup.Group
	for _, a := range m.Attendees {
		if !a.EmailOnNotify {
			continue
		}
		g.Go(func() error {
			user, err := s.userRepo.GetByID(ctx, a.UserID)
			if err != nil || user == nil {
				log.Printf("meeting %s: resolving attendee %s for notification: %v", m.MeetingID, a.UserID, err)
				return nil
			}
			if err := s.notifier.Send(ctx, user.Email, subject, body); err != nil {
				log.Printf("meeting %s: notifying %s: %v", m.MeetingID, user.Email, err)
				return nil
			}
			mu.Lock()
			sent++
			mu.Unlock()
			return nil
		})
	}
	g.Wait()
	return sent
}

func (s *MeetingService) trackPresent(ctx context.Context, userID uuid.UUID, meetingID string) {
	if s.tracker == nil {
		return
	}
	if err := s.tracker.AttendeeMarkedPresent(ctx, userID, meetingID); err != nil {
		log.Printf("meeting %s: recording attendance for %s: %v", meetingID, userID, err)
	}
}

func canModify(m *domain.Meeting, actorID uuid.UUID, role domain.Role) bool {
	return role == domain.RoleController || actorID == m.CreatedBy || actorID == m.Chairperson
}

// normalizeAttendees converts caller-supplied roster entries to the
// canonical shape: status defaults to present, time to the meeting's
// start time, email opt-in to true. Duplicate user refs collapse to the
// last entry.
func normalizeAttendees(inputs []AttendeeInput, startTime string) []domain.Attendee {
	out := make([]domain.Attendee, 0, len(inputs))
	index := make(map[uuid.UUID]int, len(inputs))

	for _, in := range inputs {
		a := domain.Attendee{
			UserID:        in.UserID,
			Status:        in.Status,
			Time:          in.Time,
			Notes:         in.Notes,
			EmailOnNotify: true,
		}
		if a.Status == "" {
			a.Status = domain.AttendancePresent
		}
		if a.Time == "" {
			a.Time = startTime
		}
		if in.Email != nil {
			a.EmailOnNotify = *in.Email
		}

		if i, ok := index[in.UserID]; ok {
			out[i] = a
			continue
		}
		index[in.UserID] = len(out)
		out = append(out, a)
	}
	return out
}

func upsertAttendee(m *domain.Meeting, input AttendeeInput) {
	i := m.FindAttendee(input.UserID)
	if i < 0 {
		a := domain.Attendee{
			UserID:        input.UserID,
			Status:        input.Status,
			Time:          input.Time,
			Notes:         input.Notes,
			EmailOnNotify: true,
		}
		if a.Status == "" {
			a.Status = domain.AttendancePresent
		}
		if a.Time == "" {
			a.Time = m.StartTime
		}
		if input.Email != nil {
			a.EmailOnNotify = *input.Email
		}
		m.Attendees = append(m.Attendees, a)
		return
	}

	// Existing entry: omitted fields keep their prior value.
	if input.Status != "" {
		m.Attendees[i].Status = input.Status
	}
	if input.Time != "" {
		m.Attendees[i].Time = input.Time
	}
	if input.Notes != "" {
		m.Attendees[i].Notes = input.Notes
	}
	if input.Email != nil {
		m.Attendees[i].EmailOnNotify = *input.Email
	}
}
