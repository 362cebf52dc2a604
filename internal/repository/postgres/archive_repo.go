package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/studentcouncil/portal/internal/domain"
)

// ArchiveRepo is the write-once retention store for deleted meetings.
type ArchiveRepo struct {
	pool *pgxpool.Pool
}

func NewArchiveRepo(pool *pgxpool.Pool) *ArchiveRepo {
	return &ArchiveRepo{pool: pool}
}

func (r *ArchiveRepo) Write(ctx context.Context, rec *domain.ArchivedMeeting) (uuid.UUID, error) {
	query := `
		INSERT INTO meeting_archive (id, business_key, snapshot, deleted_by, reason, size_bytes, deleted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.pool.Exec(ctx, query,
		rec.ID, rec.MeetingID, rec.Snapshot, rec.DeletedBy, rec.Reason, rec.SizeBytes, rec.DeletedAt,
	)
	if err != nil {
		return uuid.Nil, err
	}
	return rec.ID, nil
}

func (r *ArchiveRepo) GetByMeetingID(ctx context.Context, meetingID string) (*domain.ArchivedMeeting, error) {
	query := `
		SELECT id, business_key, snapshot, deleted_by, reason, size_bytes, deleted_at
		FROM meeting_archive WHERE business_key = $1
		ORDER BY deleted_at DESC LIMIT 1`

	var rec domain.ArchivedMeeting
	err := r.pool.QueryRow(ctx, query, meetingID).Scan(
		&rec.ID, &rec.MeetingID, &rec.Snapshot, &rec.DeletedBy, &rec.Reason, &rec.SizeBytes, &rec.DeletedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return &rec, err
}

func (r *ArchiveRepo) List(ctx context.Context, limit int) ([]domain.ArchivedMeeting, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	query := `
		SELECT id, business_key, snapshot, deleted_by, reason, size_bytes, deleted_at
		FROM meeting_archive ORDER BY deleted_at DESC LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []domain.ArchivedMeeting
	for rows.Next() {
		var rec domain.ArchivedMeeting
		if err := rows.Scan(
			&rec.ID, &rec.MeetingID, &rec.Snapshot, &rec.DeletedBy, &rec.Reason, &rec.SizeBytes, &rec.DeletedAt,
		); err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}
