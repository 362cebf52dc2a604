package domain

import (
	"time"

	"github.com/google/uuid"
)

type MeetingStatus string

const (
	MeetingDraft      MeetingStatus = "draft"
	MeetingScheduled  MeetingStatus = "scheduled"
	MeetingInProgress MeetingStatus = "in-progress"
	MeetingCompleted  MeetingStatus = "completed"
	MeetingCancelled  MeetingStatus = "cancelled"
	MeetingPostponed  MeetingStatus = "postponed"
)

type MeetingType string

const (
	MeetingTypeRegular   MeetingType = "regular"
	MeetingTypeRandom    MeetingType = "random"
	MeetingTypeSpecial   MeetingType = "special"
	MeetingTypeCommittee MeetingType = "committee"
)

type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceAbsent  AttendanceStatus = "absent"
	AttendanceLate    AttendanceStatus = "late"
	AttendanceExcused AttendanceStatus = "excused"
)

type ActionItemStatus string

const (
	ActionItemPending    ActionItemStatus = "pending"
	ActionItemInProgress ActionItemStatus = "in-progress"
	ActionItemCompleted  ActionItemStatus = "completed"
	ActionItemCancelled  ActionItemStatus = "cancelled"
)

type ActionItemPriority string

const (
	PriorityLow    ActionItemPriority = "low"
	PriorityMedium ActionItemPriority = "medium"
	PriorityHigh   ActionItemPriority = "high"
)

// MaxPreviousVersions bounds the embedded revision history. Oldest
// snapshots are evicted first.
const MaxPreviousVersions = 5

type Meeting struct {
	ID        uuid.UUID `json:"id"`
	MeetingID string    `json:"meeting_id"` // business key, SC-YYYY-MM-DD-NNN, immutable

	Title     string      `json:"title"`
	Venue     string      `json:"venue"`
	Objective string      `json:"objective,omitempty"`
	Type      MeetingType `json:"type"`

	Date      string `json:"date"`       // YYYY-MM-DD
	StartTime string `json:"start_time"` // HH:MM, 24h
	EndTime   string `json:"end_time"`   // HH:MM, 24h

	Chairperson  uuid.UUID  `json:"chairperson"`
	MinutesTaker *uuid.UUID `json:"minutes_taker,omitempty"`

	Attendees []Attendee   `json:"attendees"`
	Agenda    []AgendaItem `json:"agenda"`
	Minutes   *Minutes     `json:"minutes,omitempty"`

	Status MeetingStatus `json:"status"`

	Archived   bool       `json:"archived"`
	ArchivedAt *time.Time `json:"archived_at,omitempty"`

	Published   bool       `json:"published"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	PublishedBy *uuid.UUID `json:"published_by,omitempty"`

	Version          int              `json:"version"`
	PreviousVersions []MeetingVersion `json:"previous_versions,omitempty"`

	CreatedBy uuid.UUID  `json:"created_by"`
	UpdatedBy *uuid.UUID `json:"updated_by,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Attendee is one roster entry. A meeting holds at most one entry per
// user; AddAttendee upserts by UserID.
type Attendee struct {
	UserID        uuid.UUID        `json:"user_id"`
	Status        AttendanceStatus `json:"status"`
	Time          string           `json:"time,omitempty"` // HH:MM arrival time
	Notes         string           `json:"notes,omitempty"`
	EmailOnNotify bool             `json:"email_on_notify"`
}

type AgendaItem struct {
	Title       string    `json:"title"`
	Presenter   uuid.UUID `json:"presenter"`
	Duration    int       `json:"duration"` // minutes, 1-120
	Description string    `json:"description,omitempty"`
	Status      string    `json:"status,omitempty"`
}

// Minutes is populated only after the meeting has been conducted.
// Attaching minutes forces the meeting to completed.
type Minutes struct {
	Summary     string       `json:"summary"`
	Decisions   []string     `json:"decisions"`
	ActionItems []ActionItem `json:"action_items"`
	Attachments []string     `json:"attachments,omitempty"`
	NextMeeting string       `json:"next_meeting,omitempty"`
}

type ActionItem struct {
	ID             uuid.UUID          `json:"id"`
	Task           string             `json:"task"`
	Assignee       uuid.UUID          `json:"assignee"`
	Deadline       *time.Time         `json:"deadline,omitempty"`
	Status         ActionItemStatus   `json:"status"`
	Priority       ActionItemPriority `json:"priority,omitempty"`
	CompletionDate *time.Time         `json:"completion_date,omitempty"`
}

// MeetingVersion is one entry in the revision history. The snapshot is
// the full pre-update record with its own history stripped, so the
// embedded array never nests.
type MeetingVersion struct {
	Version   int       `json:"version"`
	Snapshot  Meeting   `json:"snapshot"`
	UpdatedAt time.Time `json:"updated_at"`
	UpdatedBy uuid.UUID `json:"updated_by"`
}

// RecordVersion pushes the current state onto the revision history and
// bumps Version. Must be called before applying an update, as part of
// the same atomic write as the update itself. History keeps the
// MaxPreviousVersions most recent snapshots, oldest evicted first.
func (m *Meeting) RecordVersion(updatedBy uuid.UUID, at time.Time) {
	snap := *m
	snap.PreviousVersions = nil

	m.PreviousVersions = append(m.PreviousVersions, MeetingVersion{
		Version:   m.Version,
		Snapshot:  snap,
		UpdatedAt: at,
		UpdatedBy: updatedBy,
	})
	if n := len(m.PreviousVersions); n > MaxPreviousVersions {
		m.PreviousVersions = m.PreviousVersions[n-MaxPreviousVersions:]
	}

	m.Version++
	m.UpdatedBy = &updatedBy
}

// FindAttendee returns the roster entry for a user, or -1.
func (m *Meeting) FindAttendee(userID uuid.UUID) int {
	for i := range m.Attendees {
		if m.Attendees[i].UserID == userID {
			return i
		}
	}
	return -1
}

// MeetingFilter narrows List queries.
type MeetingFilter struct {
	Status    MeetingStatus
	Type      MeetingType
	Archived  *bool
	Published *bool
	FromDate  string
	ToDate    string
	Limit     int
}
