package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studentcouncil/portal/internal/domain"
)

var errSendFailed = errors.New("smtp connection refused")

type meetingFixture struct {
	svc      *MeetingService
	meetings *mockMeetingRepo
	archive  *mockArchiveRepo
	users    *mockUserRepo
	notifier *mockNotifier
	tracker  *mockTracker

	creator uuid.UUID
	chair   uuid.UUID
}

func newMeetingFixture(t *testing.T) *meetingFixture {
	t.Helper()

	f := &meetingFixture{
		meetings: newMockMeetingRepo(),
		archive:  newMockArchiveRepo(),
		users:    newMockUserRepo(),
		notifier: newMockNotifier(),
		tracker:  newMockTracker(),
		creator:  uuid.New(),
		chair:    uuid.New(),
	}
	f.svc = NewMeetingService(f.meetings, f.archive, f.users)
	f.svc.SetNotifier(f.notifier)
	f.svc.SetPerformanceTracker(f.tracker)
	return f
}

func (f *meetingFixture) addUser(t *testing.T, email string) uuid.UUID {
	t.Helper()
	u := &domain.User{
		ID:          uuid.New(),
		Email:       email,
		Username:    email,
		DisplayName: email,
		Role:        domain.RoleMember,
	}
	require.NoError(t, f.users.Create(context.Background(), u))
	return u.ID
}

func (f *meetingFixture) createMeeting(t *testing.T, attendees ...AttendeeInput) *domain.Meeting {
	t.Helper()
	m, err := f.svc.Create(context.Background(), f.creator, CreateMeetingInput{
		Title:       "Budget Review",
		Venue:       "Room 204",
		Type:        domain.MeetingTypeRegular,
		Date:        "2025-11-04",
		StartTime:   "11:40",
		EndTime:     "12:40",
		Chairperson: f.chair,
		Attendees:   attendees,
	})
	require.NoError(t, err)
	return m
}

func (f *meetingFixture) completeMeeting(t *testing.T, id uuid.UUID) *domain.Meeting {
	t.Helper()
	summary := "Handover complete"
	m, err := f.svc.UpdateMinutes(context.Background(), f.creator, domain.RoleMember, id, UpdateMinutesInput{
		Summary: &summary,
	})
	require.NoError(t, err)
	return m
}

func TestCreateAssignsSequentialBusinessKeys(t *testing.T) {
	f := newMeetingFixture(t)
	ctx := context.Background()

	day := time.Now().Format("2006-01-02")

	first := f.createMeeting(t)
	second := f.createMeeting(t)

	assert.Equal(t, fmt.Sprintf("SC-%s-001", day), first.MeetingID)
	assert.Equal(t, fmt.Sprintf("SC-%s-002", day), second.MeetingID)
	assert.Equal(t, domain.MeetingScheduled, first.Status)
	assert.Equal(t, 1, first.Version)
	assert.Equal(t, f.creator, first.CreatedBy)

	stored, err := f.meetings.GetByMeetingID(ctx, first.MeetingID)
	require.NoError(t, err)
	require.NotNil(t, stored)
}

func TestCreateNormalizesAttendees(t *testing.T) {
	f := newMeetingFixture(t)
	alice := uuid.New()
	bob := uuid.New()

	m := f.createMeeting(t,
		AttendeeInput{UserID: alice},
		AttendeeInput{UserID: bob, Status: domain.AttendanceLate, Time: "11:55"},
		AttendeeInput{UserID: alice, Status: domain.AttendanceExcused}, // duplicate collapses
	)

	require.Len(t, m.Attendees, 2)

	require.GreaterOrEqual(t, m.FindAttendee(alice), 0)
	a := m.Attendees[m.FindAttendee(alice)]
	assert.Equal(t, domain.AttendanceExcused, a.Status)
	assert.Equal(t, "11:40", a.Time) // defaults to the meeting's start time
	assert.True(t, a.EmailOnNotify)

	b := m.Attendees[m.FindAttendee(bob)]
	assert.Equal(t, domain.AttendanceLate, b.Status)
	assert.Equal(t, "11:55", b.Time)
}

func TestConcurrentCreatesMintUniqueBusinessKeys(t *testing.T) {
	f := newMeetingFixture(t)
	ctx := context.Background()

	const n = 25
	ids := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m, err := f.svc.Create(ctx, f.creator, CreateMeetingInput{
				Title:       "Concurrent",
				Venue:       "Hall",
				Date:        "2025-11-04",
				StartTime:   "09:00",
				EndTime:     "10:00",
				Chairperson: f.chair,
			})
			if err != nil {
				t.Error(err)
				return
			}
			ids <- m.MeetingID
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]bool)
	for id := range ids {
		assert.False(t, seen[id], "duplicate business key %s", id)
		seen[id] = true
	}
	assert.Len(t, seen, n)
}

func TestUpdateIncrementsVersionAndCapsHistory(t *testing.T) {
	f := newMeetingFixture(t)
	ctx := context.Background()

	m := f.createMeeting(t)
	require.Equal(t, 1, m.Version)

	for i := 1; i <= 10; i++ {
		title := fmt.Sprintf("rev-%d", i)
		var err error
		m, err = f.svc.Update(ctx, f.creator, domain.RoleMember, m.ID, UpdateMeetingInput{Title: &title})
		require.NoError(t, err)
	}

	assert.Equal(t, 11, m.Version)
	require.Len(t, m.PreviousVersions, domain.MaxPreviousVersions)

	// History holds the 5 most recent prior states, oldest first.
	versions := make([]int, 0, len(m.PreviousVersions))
	for _, v := range m.PreviousVersions {
		versions = append(versions, v.Version)
	}
	assert.Equal(t, []int{6, 7, 8, 9, 10}, versions)
	assert.Equal(t, "rev-5", m.PreviousVersions[0].Snapshot.Title)
	assert.Equal(t, "rev-9", m.PreviousVersions[4].Snapshot.Title)
	assert.Empty(t, m.PreviousVersions[0].Snapshot.PreviousVersions, "snapshots must not nest history")
}

func TestUpdateAuthorization(t *testing.T) {
	f := newMeetingFixture(t)
	ctx := context.Background()
	m := f.createMeeting(t)

	title := "Renamed"
	stranger := uuid.New()

	_, err := f.svc.Update(ctx, stranger, domain.RoleMember, m.ID, UpdateMeetingInput{Title: &title})
	assert.ErrorIs(t, err, ErrNotMeetingOwner)

	// Chairperson and controller both may update.
	_, err = f.svc.Update(ctx, f.chair, domain.RoleMember, m.ID, UpdateMeetingInput{Title: &title})
	assert.NoError(t, err)
	_, err = f.svc.Update(ctx, stranger, domain.RoleController, m.ID, UpdateMeetingInput{Title: &title})
	assert.NoError(t, err)
}

func TestUpdateNotFound(t *testing.T) {
	f := newMeetingFixture(t)
	title := "x"
	_, err := f.svc.Update(context.Background(), f.creator, domain.RoleMember, uuid.New(), UpdateMeetingInput{Title: &title})
	assert.ErrorIs(t, err, ErrMeetingNotFound)
}

func TestUpdateMinutesForcesCompletedAndMerges(t *testing.T) {
	f := newMeetingFixture(t)
	ctx := context.Background()
	m := f.createMeeting(t)

	summary := "Handover complete"
	m, err := f.svc.UpdateMinutes(ctx, f.creator, domain.RoleMember, m.ID, UpdateMinutesInput{Summary: &summary})
	require.NoError(t, err)
	assert.Equal(t, domain.MeetingCompleted, m.Status)
	require.NotNil(t, m.Minutes)
	assert.Equal(t, "Handover complete", m.Minutes.Summary)

	// A later partial update must not clobber the summary.
	decisions := []string{"Approve budget"}
	m, err = f.svc.UpdateMinutes(ctx, f.creator, domain.RoleMember, m.ID, UpdateMinutesInput{Decisions: &decisions})
	require.NoError(t, err)
	assert.Equal(t, "Handover complete", m.Minutes.Summary)
	assert.Equal(t, decisions, m.Minutes.Decisions)
}

func TestUpdateMinutesAssignsActionItemIDs(t *testing.T) {
	f := newMeetingFixture(t)
	ctx := context.Background()
	m := f.createMeeting(t)

	summary := "Done"
	items := []domain.ActionItem{{Task: "Book the hall", Assignee: uuid.New()}}
	m, err := f.svc.UpdateMinutes(ctx, f.creator, domain.RoleMember, m.ID, UpdateMinutesInput{
		Summary:     &summary,
		ActionItems: &items,
	})
	require.NoError(t, err)
	require.Len(t, m.Minutes.ActionItems, 1)
	assert.NotEqual(t, uuid.Nil, m.Minutes.ActionItems[0].ID)
	assert.Equal(t, domain.ActionItemPending, m.Minutes.ActionItems[0].Status)
}

func TestPublishRequiresMinutesSummary(t *testing.T) {
	f := newMeetingFixture(t)
	ctx := context.Background()
	m := f.createMeeting(t)

	_, _, err := f.svc.Publish(ctx, f.creator, m.ID)
	assert.ErrorIs(t, err, ErrMinutesMissing)
	assert.Zero(t, f.notifier.attempts, "no notifications on a failed publish")
}

func TestPublishNotifiesOptedInAttendees(t *testing.T) {
	f := newMeetingFixture(t)
	ctx := context.Background()

	alice := f.addUser(t, "alice@school.test")
	bob := f.addUser(t, "bob@school.test")
	carol := f.addUser(t, "carol@school.test")

	optOut := false
	m := f.createMeeting(t,
		AttendeeInput{UserID: alice},
		AttendeeInput{UserID: bob},
		AttendeeInput{UserID: carol, Email: &optOut},
	)
	f.completeMeeting(t, m.ID)

	// One delivery fails; siblings must still go out.
	f.notifier.failFor["bob@school.test"] = true

	m, sent, err := f.svc.Publish(ctx, f.creator, m.ID)
	require.NoError(t, err)

	assert.True(t, m.Published)
	require.NotNil(t, m.PublishedAt)
	require.NotNil(t, m.PublishedBy)
	assert.Equal(t, f.creator, *m.PublishedBy)

	assert.Equal(t, 2, f.notifier.attempts, "one attempt per opted-in attendee")
	assert.Equal(t, 1, sent, "failed delivery excluded from the count")
	assert.Equal(t, []string{"alice@school.test"}, f.notifier.sent)
}

func TestArchiveOnlyFromCompleted(t *testing.T) {
	f := newMeetingFixture(t)
	ctx := context.Background()
	m := f.createMeeting(t)

	_, err := f.svc.Archive(ctx, f.creator, domain.RoleController, m.ID)
	assert.ErrorIs(t, err, ErrMeetingNotCompleted)

	f.completeMeeting(t, m.ID)

	archived, err := f.svc.Archive(ctx, f.creator, domain.RoleController, m.ID)
	require.NoError(t, err)
	assert.True(t, archived.Archived)
	assert.NotNil(t, archived.ArchivedAt)
	assert.Equal(t, domain.MeetingCompleted, archived.Status, "archive never touches status")

	// Idempotent: a second archive succeeds and stays archived.
	again, err := f.svc.Archive(ctx, f.creator, domain.RoleController, m.ID)
	require.NoError(t, err)
	assert.True(t, again.Archived)
}

func TestArchiveRequiresController(t *testing.T) {
	f := newMeetingFixture(t)
	m := f.createMeeting(t)
	f.completeMeeting(t, m.ID)

	_, err := f.svc.Archive(context.Background(), f.creator, domain.RoleMember, m.ID)
	assert.ErrorIs(t, err, ErrNotController)
}

func TestRestoreIsIdempotent(t *testing.T) {
	f := newMeetingFixture(t)
	ctx := context.Background()
	m := f.createMeeting(t)
	f.completeMeeting(t, m.ID)

	// Restoring a non-archived meeting is a harmless no-op.
	restored, err := f.svc.Restore(ctx, f.creator, domain.RoleController, m.ID)
	require.NoError(t, err)
	assert.False(t, restored.Archived)

	_, err = f.svc.Archive(ctx, f.creator, domain.RoleController, m.ID)
	require.NoError(t, err)

	restored, err = f.svc.Restore(ctx, f.creator, domain.RoleController, m.ID)
	require.NoError(t, err)
	assert.False(t, restored.Archived)
	assert.Nil(t, restored.ArchivedAt)
	assert.Equal(t, domain.MeetingCompleted, restored.Status)
}

func TestDeleteWritesArchiveRecordFirst(t *testing.T) {
	f := newMeetingFixture(t)
	ctx := context.Background()
	m := f.createMeeting(t)

	err := f.svc.Delete(ctx, f.creator, domain.RoleController, m.ID, "duplicate entry")
	require.NoError(t, err)

	require.Len(t, f.archive.records, 1)
	rec := f.archive.records[0]
	assert.Equal(t, m.MeetingID, rec.MeetingID)
	assert.Equal(t, m.MeetingID, rec.Snapshot.MeetingID)
	assert.Equal(t, f.creator, rec.DeletedBy)
	assert.Equal(t, "duplicate entry", rec.Reason)
	assert.Positive(t, rec.SizeBytes)

	gone, err := f.meetings.GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestDeleteFailsClosedWhenArchiveWriteFails(t *testing.T) {
	f := newMeetingFixture(t)
	ctx := context.Background()
	m := f.createMeeting(t)

	f.archive.writeErr = errors.New("archive store unavailable")

	err := f.svc.Delete(ctx, f.creator, domain.RoleController, m.ID, "")
	require.Error(t, err)

	// The meeting must remain untouched.
	still, err := f.meetings.GetByID(ctx, m.ID)
	require.NoError(t, err)
	require.NotNil(t, still)
	assert.Empty(t, f.archive.records)
}

func TestDeleteRequiresController(t *testing.T) {
	f := newMeetingFixture(t)
	m := f.createMeeting(t)

	err := f.svc.Delete(context.Background(), f.creator, domain.RoleMember, m.ID, "")
	assert.ErrorIs(t, err, ErrNotController)
}

func TestAddAttendeeUpserts(t *testing.T) {
	f := newMeetingFixture(t)
	ctx := context.Background()
	m := f.createMeeting(t)
	alice := uuid.New()

	m, err := f.svc.AddAttendee(ctx, f.creator, domain.RoleMember, m.ID, AttendeeInput{
		UserID: alice,
		Status: domain.AttendanceLate,
		Notes:  "bus delay",
	})
	require.NoError(t, err)
	require.Len(t, m.Attendees, 1)

	// Second call for the same user updates in place.
	m, err = f.svc.AddAttendee(ctx, f.creator, domain.RoleMember, m.ID, AttendeeInput{
		UserID: alice,
		Status: domain.AttendancePresent,
	})
	require.NoError(t, err)
	require.Len(t, m.Attendees, 1)
	assert.Equal(t, domain.AttendancePresent, m.Attendees[0].Status)
	assert.Equal(t, "bus delay", m.Attendees[0].Notes, "omitted fields keep their prior value")
}

func TestAddAttendeePresentEmitsPerformanceEvent(t *testing.T) {
	f := newMeetingFixture(t)
	ctx := context.Background()
	m := f.createMeeting(t)
	alice := uuid.New()
	bob := uuid.New()

	_, err := f.svc.AddAttendee(ctx, f.creator, domain.RoleMember, m.ID, AttendeeInput{UserID: alice, Status: domain.AttendancePresent})
	require.NoError(t, err)
	_, err = f.svc.AddAttendee(ctx, f.creator, domain.RoleMember, m.ID, AttendeeInput{UserID: bob, Status: domain.AttendanceAbsent})
	require.NoError(t, err)

	assert.Equal(t, 1, f.tracker.counts[alice])
	assert.Zero(t, f.tracker.counts[bob])
}

func TestAddAttendeeTrackerFailureDoesNotFailUpsert(t *testing.T) {
	f := newMeetingFixture(t)
	ctx := context.Background()
	m := f.createMeeting(t)
	f.tracker.err = errors.New("performance store down")

	m, err := f.svc.AddAttendee(ctx, f.creator, domain.RoleMember, m.ID, AttendeeInput{UserID: uuid.New(), Status: domain.AttendancePresent})
	require.NoError(t, err)
	assert.Len(t, m.Attendees, 1)
}

func TestCompleteActionItem(t *testing.T) {
	f := newMeetingFixture(t)
	ctx := context.Background()
	m := f.createMeeting(t)

	assignee := uuid.New()
	summary := "Done"
	items := []domain.ActionItem{{Task: "Print agendas", Assignee: assignee}}
	m, err := f.svc.UpdateMinutes(ctx, f.creator, domain.RoleMember, m.ID, UpdateMinutesInput{
		Summary:     &summary,
		ActionItems: &items,
	})
	require.NoError(t, err)
	itemID := m.Minutes.ActionItems[0].ID

	done := time.Date(2025, 11, 10, 9, 0, 0, 0, time.UTC)
	m, err = f.svc.CompleteActionItem(ctx, assignee, domain.RoleMember, m.ID, itemID, &done)
	require.NoError(t, err)

	item := m.Minutes.ActionItems[0]
	assert.Equal(t, domain.ActionItemCompleted, item.Status)
	require.NotNil(t, item.CompletionDate)
	assert.True(t, item.CompletionDate.Equal(done))
}

func TestCompleteActionItemNotFound(t *testing.T) {
	f := newMeetingFixture(t)
	ctx := context.Background()
	m := f.createMeeting(t)

	// No minutes at all.
	_, err := f.svc.CompleteActionItem(ctx, f.creator, domain.RoleMember, m.ID, uuid.New(), nil)
	assert.ErrorIs(t, err, ErrActionItemNotFound)

	f.completeMeeting(t, m.ID)

	// Minutes exist, item does not.
	_, err = f.svc.CompleteActionItem(ctx, f.creator, domain.RoleMember, m.ID, uuid.New(), nil)
	assert.ErrorIs(t, err, ErrActionItemNotFound)
}

func TestArchivedMeetingRejectsMutation(t *testing.T) {
	f := newMeetingFixture(t)
	ctx := context.Background()
	m := f.createMeeting(t)
	f.completeMeeting(t, m.ID)
	_, err := f.svc.Archive(ctx, f.creator, domain.RoleController, m.ID)
	require.NoError(t, err)

	title := "Too late"
	_, err = f.svc.Update(ctx, f.creator, domain.RoleMember, m.ID, UpdateMeetingInput{Title: &title})
	assert.ErrorIs(t, err, ErrMeetingArchived)

	_, err = f.svc.AddAttendee(ctx, f.creator, domain.RoleMember, m.ID, AttendeeInput{UserID: uuid.New()})
	assert.ErrorIs(t, err, ErrMeetingArchived)
}

// Full lifecycle: create → minutes → publish → archive → restore.
func TestMeetingLifecycle(t *testing.T) {
	f := newMeetingFixture(t)
	ctx := context.Background()

	alice := f.addUser(t, "alice@school.test")

	m := f.createMeeting(t, AttendeeInput{UserID: alice})
	day := time.Now().Format("2006-01-02")
	assert.Equal(t, fmt.Sprintf("SC-%s-001", day), m.MeetingID)
	assert.Equal(t, domain.MeetingScheduled, m.Status)

	m = f.completeMeeting(t, m.ID)
	assert.Equal(t, domain.MeetingCompleted, m.Status)

	m, sent, err := f.svc.Publish(ctx, f.creator, m.ID)
	require.NoError(t, err)
	assert.True(t, m.Published)
	assert.Equal(t, 1, sent)

	m, err = f.svc.Archive(ctx, f.creator, domain.RoleController, m.ID)
	require.NoError(t, err)
	assert.True(t, m.Archived)

	m, err = f.svc.Restore(ctx, f.creator, domain.RoleController, m.ID)
	require.NoError(t, err)
	assert.False(t, m.Archived)
	assert.Equal(t, domain.MeetingCompleted, m.Status)
	assert.True(t, m.Published, "restore does not unpublish")
}
