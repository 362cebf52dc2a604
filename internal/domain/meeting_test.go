package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordVersion(t *testing.T) {
	editor := uuid.New()
	m := &Meeting{
		ID:        uuid.New(),
		MeetingID: "SC-2025-11-04-001",
		Title:     "v1",
		Version:   1,
	}

	at := time.Date(2025, 11, 4, 12, 0, 0, 0, time.UTC)
	m.RecordVersion(editor, at)
	m.Title = "v2"

	assert.Equal(t, 2, m.Version)
	require.Len(t, m.PreviousVersions, 1)

	v := m.PreviousVersions[0]
	assert.Equal(t, 1, v.Version)
	assert.Equal(t, "v1", v.Snapshot.Title, "snapshot taken before the update")
	assert.Equal(t, editor, v.UpdatedBy)
	assert.True(t, v.UpdatedAt.Equal(at))
	require.NotNil(t, m.UpdatedBy)
	assert.Equal(t, editor, *m.UpdatedBy)
}

func TestRecordVersionCapsHistory(t *testing.T) {
	editor := uuid.New()
	m := &Meeting{Version: 1, Title: "v1"}

	for i := 2; i <= 9; i++ {
		m.RecordVersion(editor, time.Now())
	}

	assert.Equal(t, 9, m.Version)
	require.Len(t, m.PreviousVersions, MaxPreviousVersions)

	// Oldest evicted first: versions 4..8 remain, in order.
	for i, v := range m.PreviousVersions {
		assert.Equal(t, 4+i, v.Version)
	}
}

func TestRecordVersionSnapshotsDoNotNest(t *testing.T) {
	m := &Meeting{Version: 1}
	editor := uuid.New()

	m.RecordVersion(editor, time.Now())
	m.RecordVersion(editor, time.Now())

	require.Len(t, m.PreviousVersions, 2)
	assert.Empty(t, m.PreviousVersions[1].Snapshot.PreviousVersions)
}

func TestFindAttendee(t *testing.T) {
	alice := uuid.New()
	m := &Meeting{Attendees: []Attendee{{UserID: alice, Status: AttendancePresent}}}

	assert.Equal(t, 0, m.FindAttendee(alice))
	assert.Equal(t, -1, m.FindAttendee(uuid.New()))
}
