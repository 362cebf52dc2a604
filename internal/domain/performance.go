package domain

import (
	"time"

	"github.com/google/uuid"
)

// MemberPerformance tracks per-member participation counters. Updated
// out-of-band when a member is marked present on a meeting roster.
type MemberPerformance struct {
	UserID           uuid.UUID  `json:"user_id"`
	MeetingsAttended int        `json:"meetings_attended"`
	LastAttendedAt   *time.Time `json:"last_attended_at,omitempty"`
	UpdatedAt        time.Time  `json:"updated_at"`

	// Joined fields
	Username    string `json:"username,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
}
