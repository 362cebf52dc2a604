package postgres

import (
	"context"
	"errors"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/studentcouncil/portal/internal/domain"
)

type DiscussionRepo struct {
	pool *pgxpool.Pool
}

func NewDiscussionRepo(pool *pgxpool.Pool) *DiscussionRepo {
	return &DiscussionRepo{pool: pool}
}

func (r *DiscussionRepo) Create(ctx context.Context, msg *domain.DiscussionMessage) error {
	query := `
		INSERT INTO discussion_messages (id, meeting_id, sender_id, content, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.pool.Exec(ctx, query, msg.ID, msg.MeetingID, msg.SenderID, msg.Content, msg.CreatedAt)
	return err
}

func (r *DiscussionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.DiscussionMessage, error) {
	query := `
		SELECT m.id, m.meeting_id, m.sender_id, m.content, m.edited_at, m.deleted_at, m.created_at,
			u.username, u.display_name
		FROM discussion_messages m
		JOIN users u ON m.sender_id = u.id
		WHERE m.id = $1 AND m.deleted_at IS NULL`

	var msg domain.DiscussionMessage
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&msg.ID, &msg.MeetingID, &msg.SenderID, &msg.Content, &msg.EditedAt, &msg.DeletedAt, &msg.CreatedAt,
		&msg.SenderUsername, &msg.SenderDisplayName,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return &msg, err
}

// ListByMeeting returns up to limit messages in chronological order,
// optionally only those older than the before message.
func (r *DiscussionRepo) ListByMeeting(ctx context.Context, meetingID uuid.UUID, before *uuid.UUID, limit int) ([]domain.DiscussionMessage, error) {
	query := `
		SELECT m.id, m.meeting_id, m.sender_id, m.content, m.edited_at, m.deleted_at, m.created_at,
			u.username, u.display_name
		FROM discussion_messages m
		JOIN users u ON m.sender_id = u.id
		WHERE m.meeting_id = $1 AND m.deleted_at IS NULL`
	args := []any{meetingID}

	if before != nil {
		query += ` AND m.created_at < (SELECT created_at FROM discussion_messages WHERE id = $2)`
		args = append(args, *before)
	}
	args = append(args, limit)
	query += ` ORDER BY m.created_at DESC LIMIT $` + strconv.Itoa(len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []domain.DiscussionMessage
	for rows.Next() {
		var msg domain.DiscussionMessage
		if err := rows.Scan(
			&msg.ID, &msg.MeetingID, &msg.SenderID, &msg.Content, &msg.EditedAt, &msg.DeletedAt, &msg.CreatedAt,
			&msg.SenderUsername, &msg.SenderDisplayName,
		); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Reverse into chronological order.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

func (r *DiscussionRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `UPDATE discussion_messages SET deleted_at = now() WHERE id = $1`, id)
	return err
}
