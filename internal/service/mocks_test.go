package service

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"

	"github.com/studentcouncil/portal/internal/domain"
)

// Map-backed in-memory fakes for the repository interfaces. Cloning on
// every read/write keeps callers from aliasing stored records, which is
// what the real store guarantees.

func cloneMeeting(m *domain.Meeting) *domain.Meeting {
	raw, err := json.Marshal(m)
	if err != nil {
		panic(err)
	}
	var out domain.Meeting
	if err := json.Unmarshal(raw, &out); err != nil {
		panic(err)
	}
	return &out
}

type mockMeetingRepo struct {
	mu       sync.Mutex
	meetings map[uuid.UUID]*domain.Meeting
	seqs     map[string]int

	createErr error
	updateErr error
}

func newMockMeetingRepo() *mockMeetingRepo {
	return &mockMeetingRepo{
		meetings: make(map[uuid.UUID]*domain.Meeting),
		seqs:     make(map[string]int),
	}
}

func (r *mockMeetingRepo) Create(ctx context.Context, m *domain.Meeting) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.meetings[m.ID] = cloneMeeting(m)
	return nil
}

func (r *mockMeetingRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Meeting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.meetings[id]
	if !ok {
		return nil, nil
	}
	return cloneMeeting(m), nil
}

func (r *mockMeetingRepo) GetByMeetingID(ctx context.Context, meetingID string) (*domain.Meeting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.meetings {
		if m.MeetingID == meetingID {
			return cloneMeeting(m), nil
		}
	}
	return nil, nil
}

func (r *mockMeetingRepo) List(ctx context.Context, filter domain.MeetingFilter) ([]domain.Meeting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Meeting
	for _, m := range r.meetings {
		if filter.Status != "" && m.Status != filter.Status {
			continue
		}
		out = append(out, *cloneMeeting(m))
	}
	return out, nil
}

func (r *mockMeetingRepo) UpdateByID(ctx context.Context, id uuid.UUID, mutate func(*domain.Meeting) error) (*domain.Meeting, error) {
	if r.updateErr != nil {
		return nil, r.updateErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.meetings[id]
	if !ok {
		return nil, nil
	}
	m := cloneMeeting(stored)
	if err := mutate(m); err != nil {
		return nil, err
	}
	r.meetings[id] = cloneMeeting(m)
	return m, nil
}

func (r *mockMeetingRepo) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.meetings[id]; !ok {
		return false, nil
	}
	delete(r.meetings, id)
	return true, nil
}

func (r *mockMeetingRepo) NextSequence(ctx context.Context, day string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seqs[day]++
	return r.seqs[day], nil
}

type mockArchiveRepo struct {
	mu       sync.Mutex
	records  []*domain.ArchivedMeeting
	writeErr error
}

func newMockArchiveRepo() *mockArchiveRepo {
	return &mockArchiveRepo{}
}

func (r *mockArchiveRepo) Write(ctx context.Context, rec *domain.ArchivedMeeting) (uuid.UUID, error) {
	if r.writeErr != nil {
		return uuid.Nil, r.writeErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
	return rec.ID, nil
}

func (r *mockArchiveRepo) GetByMeetingID(ctx context.Context, meetingID string) (*domain.ArchivedMeeting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.records) - 1; i >= 0; i-- {
		if r.records[i].MeetingID == meetingID {
			return r.records[i], nil
		}
	}
	return nil, nil
}

func (r *mockArchiveRepo) List(ctx context.Context, limit int) ([]domain.ArchivedMeeting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.ArchivedMeeting
	for _, rec := range r.records {
		out = append(out, *rec)
	}
	return out, nil
}

type mockUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*domain.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[uuid.UUID]*domain.User)}
}

func (r *mockUserRepo) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := *user
	r.users[user.ID] = &u
	return nil
}

func (r *mockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	copied := *u
	return &copied, nil
}

func (r *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *mockUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *mockUserRepo) List(ctx context.Context) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.User
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, nil
}

type mockNotifier struct {
	mu       sync.Mutex
	sent     []string
	attempts int
	failFor  map[string]bool
}

func newMockNotifier() *mockNotifier {
	return &mockNotifier{failFor: make(map[string]bool)}
}

func (n *mockNotifier) Send(ctx context.Context, recipient, subject, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.attempts++
	if n.failFor[recipient] {
		return errSendFailed
	}
	n.sent = append(n.sent, recipient)
	return nil
}

type mockTracker struct {
	mu     sync.Mutex
	counts map[uuid.UUID]int
	err    error
}

func newMockTracker() *mockTracker {
	return &mockTracker{counts: make(map[uuid.UUID]int)}
}

func (t *mockTracker) AttendeeMarkedPresent(ctx context.Context, userID uuid.UUID, meetingID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.err != nil {
		return t.err
	}
	t.counts[userID]++
	return nil
}

type mockDiscussionRepo struct {
	mu       sync.Mutex
	messages map[uuid.UUID]*domain.DiscussionMessage
	order    []uuid.UUID
}

func newMockDiscussionRepo() *mockDiscussionRepo {
	return &mockDiscussionRepo{messages: make(map[uuid.UUID]*domain.DiscussionMessage)}
}

func (r *mockDiscussionRepo) Create(ctx context.Context, msg *domain.DiscussionMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m := *msg
	r.messages[msg.ID] = &m
	r.order = append(r.order, msg.ID)
	return nil
}

func (r *mockDiscussionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.DiscussionMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.messages[id]
	if !ok || m.DeletedAt != nil {
		return nil, nil
	}
	copied := *m
	return &copied, nil
}

func (r *mockDiscussionRepo) ListByMeeting(ctx context.Context, meetingID uuid.UUID, before *uuid.UUID, limit int) ([]domain.DiscussionMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.DiscussionMessage
	for _, id := range r.order {
		m := r.messages[id]
		if m.MeetingID != meetingID || m.DeletedAt != nil {
			continue
		}
		out = append(out, *m)
	}
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (r *mockDiscussionRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.messages[id]; ok {
		now := m.CreatedAt
		m.DeletedAt = &now
	}
	return nil
}

type mockBroadcaster struct {
	mu      sync.Mutex
	posted  []uuid.UUID
	deleted []uuid.UUID
}

func (b *mockBroadcaster) BroadcastNewMessage(msg *domain.DiscussionMessage) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.posted = append(b.posted, msg.ID)
}

func (b *mockBroadcaster) BroadcastDeletedMessage(meetingID, messageID uuid.UUID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.deleted = append(b.deleted, messageID)
}
