package domain

import (
	"time"

	"github.com/google/uuid"
)

// ArchivedMeeting is the write-once retention record produced before a
// meeting is hard-deleted. A meeting must never vanish without one.
type ArchivedMeeting struct {
	ID        uuid.UUID `json:"id"`
	MeetingID string    `json:"meeting_id"` // business key of the deleted meeting
	Snapshot  Meeting   `json:"snapshot"`
	DeletedBy uuid.UUID `json:"deleted_by"`
	Reason    string    `json:"reason,omitempty"`
	SizeBytes int64     `json:"size_bytes"`
	DeletedAt time.Time `json:"deleted_at"`
}
