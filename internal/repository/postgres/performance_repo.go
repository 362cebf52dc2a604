package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/studentcouncil/portal/internal/domain"
)

type PerformanceRepo struct {
	pool *pgxpool.Pool
}

func NewPerformanceRepo(pool *pgxpool.Pool) *PerformanceRepo {
	return &PerformanceRepo{pool: pool}
}

func (r *PerformanceRepo) IncrementAttendance(ctx context.Context, userID uuid.UUID) error {
	query := `
		INSERT INTO member_performance (user_id, meetings_attended, last_attended_at, updated_at)
		VALUES ($1, 1, now(), now())
		ON CONFLICT (user_id) DO UPDATE SET
			meetings_attended = member_performance.meetings_attended + 1,
			last_attended_at = now(),
			updated_at = now()`

	_, err := r.pool.Exec(ctx, query, userID)
	return err
}

func (r *PerformanceRepo) GetByUser(ctx context.Context, userID uuid.UUID) (*domain.MemberPerformance, error) {
	query := `
		SELECT user_id, meetings_attended, last_attended_at, updated_at
		FROM member_performance WHERE user_id = $1`

	var p domain.MemberPerformance
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&p.UserID, &p.MeetingsAttended, &p.LastAttendedAt, &p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return &p, err
}

func (r *PerformanceRepo) List(ctx context.Context) ([]domain.MemberPerformance, error) {
	query := `
		SELECT mp.user_id, mp.meetings_attended, mp.last_attended_at, mp.updated_at,
			u.username, u.display_name
		FROM member_performance mp
		JOIN users u ON mp.user_id = u.id
		ORDER BY mp.meetings_attended DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var perfs []domain.MemberPerformance
	for rows.Next() {
		var p domain.MemberPerformance
		if err := rows.Scan(
			&p.UserID, &p.MeetingsAttended, &p.LastAttendedAt, &p.UpdatedAt,
			&p.Username, &p.DisplayName,
		); err != nil {
			return nil, err
		}
		perfs = append(perfs, p)
	}
	return perfs, rows.Err()
}
