package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/studentcouncil/portal/internal/domain"
)

type MeetingRepo struct {
	pool *pgxpool.Pool
}

func NewMeetingRepo(pool *pgxpool.Pool) *MeetingRepo {
	return &MeetingRepo{pool: pool}
}

const meetingColumns = `id, business_key, title, venue, objective, type, date, start_time, end_time,
	chairperson, minutes_taker, attendees, agenda, minutes, status,
	archived, archived_at, published, published_at, published_by,
	version, previous_versions, created_by, updated_by, created_at, updated_at`

func (r *MeetingRepo) Create(ctx context.Context, m *domain.Meeting) error {
	query := `
		INSERT INTO meetings (` + meetingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
			$16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26)`

	_, err := r.pool.Exec(ctx, query,
		m.ID, m.MeetingID, m.Title, m.Venue, m.Objective, m.Type, m.Date, m.StartTime, m.EndTime,
		m.Chairperson, m.MinutesTaker, m.Attendees, m.Agenda, m.Minutes, m.Status,
		m.Archived, m.ArchivedAt, m.Published, m.PublishedAt, m.PublishedBy,
		m.Version, m.PreviousVersions, m.CreatedBy, m.UpdatedBy, m.CreatedAt, m.UpdatedAt,
	)
	return err
}

func (r *MeetingRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Meeting, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+meetingColumns+` FROM meetings WHERE id = $1`, id)
	return scanMeeting(row)
}

func (r *MeetingRepo) GetByMeetingID(ctx context.Context, meetingID string) (*domain.Meeting, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+meetingColumns+` FROM meetings WHERE business_key = $1`, meetingID)
	return scanMeeting(row)
}

func (r *MeetingRepo) List(ctx context.Context, filter domain.MeetingFilter) ([]domain.Meeting, error) {
	query := `SELECT ` + meetingColumns + ` FROM meetings WHERE 1=1`
	var args []any

	add := func(clause string, arg any) {
		args = append(args, arg)
		query += fmt.Sprintf(clause, len(args))
	}

	if filter.Status != "" {
		add(" AND status = $%d", filter.Status)
	}
	if filter.Type != "" {
		add(" AND type = $%d", filter.Type)
	}
	if filter.Archived != nil {
		add(" AND archived = $%d", *filter.Archived)
	}
	if filter.Published != nil {
		add(" AND published = $%d", *filter.Published)
	}
	if filter.FromDate != "" {
		add(" AND date >= $%d", filter.FromDate)
	}
	if filter.ToDate != "" {
		add(" AND date <= $%d", filter.ToDate)
	}

	add(" ORDER BY date DESC, start_time DESC LIMIT $%d", filter.Limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var meetings []domain.Meeting
	for rows.Next() {
		m, err := scanMeeting(rows)
		if err != nil {
			return nil, err
		}
		meetings = append(meetings, *m)
	}
	return meetings, rows.Err()
}

// UpdateByID runs mutate against the current row under a row lock, so
// the revision history and the primary fields commit as one write.
func (r *MeetingRepo) UpdateByID(ctx context.Context, id uuid.UUID, mutate func(*domain.Meeting) error) (*domain.Meeting, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `SELECT `+meetingColumns+` FROM meetings WHERE id = $1 FOR UPDATE`, id)
	m, err := scanMeeting(row)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, nil
	}

	if err := mutate(m); err != nil {
		return nil, err
	}
	m.UpdatedAt = time.Now()

	query := `
		UPDATE meetings SET
			title = $2, venue = $3, objective = $4, type = $5, date = $6,
			start_time = $7, end_time = $8, chairperson = $9, minutes_taker = $10,
			attendees = $11, agenda = $12, minutes = $13, status = $14,
			archived = $15, archived_at = $16, published = $17, published_at = $18,
			published_by = $19, version = $20, previous_versions = $21,
			updated_by = $22, updated_at = $23
		WHERE id = $1`

	_, err = tx.Exec(ctx, query,
		m.ID, m.Title, m.Venue, m.Objective, m.Type, m.Date,
		m.StartTime, m.EndTime, m.Chairperson, m.MinutesTaker,
		m.Attendees, m.Agenda, m.Minutes, m.Status,
		m.Archived, m.ArchivedAt, m.Published, m.PublishedAt,
		m.PublishedBy, m.Version, m.PreviousVersions,
		m.UpdatedBy, m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return m, tx.Commit(ctx)
}

func (r *MeetingRepo) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM meetings WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// NextSequence is the atomic per-day counter behind business keys. The
// upsert increments and reads in one statement, so concurrent creations
// on the same day can never observe the same value.
func (r *MeetingRepo) NextSequence(ctx context.Context, day string) (int, error) {
	query := `
		INSERT INTO meeting_sequences (day, seq) VALUES ($1, 1)
		ON CONFLICT (day) DO UPDATE SET seq = meeting_sequences.seq + 1
		RETURNING seq`

	var seq int
	if err := r.pool.QueryRow(ctx, query, day).Scan(&seq); err != nil {
		return 0, err
	}
	return seq, nil
}

func scanMeeting(row pgx.Row) (*domain.Meeting, error) {
	var m domain.Meeting
	err := row.Scan(
		&m.ID, &m.MeetingID, &m.Title, &m.Venue, &m.Objective, &m.Type, &m.Date, &m.StartTime, &m.EndTime,
		&m.Chairperson, &m.MinutesTaker, &m.Attendees, &m.Agenda, &m.Minutes, &m.Status,
		&m.Archived, &m.ArchivedAt, &m.Published, &m.PublishedAt, &m.PublishedBy,
		&m.Version, &m.PreviousVersions, &m.CreatedBy, &m.UpdatedBy, &m.CreatedAt, &m.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}
