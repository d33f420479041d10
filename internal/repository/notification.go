package repository

import (
	"context"
	"fmt"
	"time"

	"selapp/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

type Notification struct {
	ID        uuid.UUID `db:"id"`
	UserID    uuid.UUID `db:"user_id"`
	Type      string    `db:"type"`
	Title     string    `db:"title"`
	Message   string    `db:"message"`
	Icon      string    `db:"icon"`
	Link      string    `db:"link"`
	Read      bool      `db:"read"`
	CreatedAt time.Time `db:"created_at"`
}

func (n *Notification) toModel() *model.Notification {
	return &model.Notification{
		ID:        n.ID,
		UserID:    n.UserID,
		Type:      model.NotificationType(n.Type),
		Title:     n.Title,
		Message:   n.Message,
		Icon:      n.Icon,
		Link:      n.Link,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
}

func (r *Repository) CreateNotification(ctx context.Context, n *model.Notification) error {
	return r.CreateNotifications(ctx, []*model.Notification{n})
}

// CreateNotifications bulk-inserts notification rows in one statement.
func (r *Repository) CreateNotifications(ctx context.Context, ns []*model.Notification) error {
	if len(ns) == 0 {
		return nil
	}

	builder := squirrel.
		Insert("notifications").
		Columns("id", "user_id", "type", "title", "message", "icon", "link", "read", "created_at")

	for _, n := range ns {
		builder = builder.Values(n.ID, n.UserID, string(n.Type), n.Title, n.Message,
			n.Icon, n.Link, n.Read, n.CreatedAt)
	}

	query, args, err := builder.PlaceholderFormat(squirrel.Dollar).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build notification insert query: %w", err)
	}

	_, err = r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to insert notifications: %w", err)
	}

	return nil
}

func (r *Repository) GetNotifications(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]*model.Notification, error) {
	builder := squirrel.
		Select("id", "user_id", "type", "title", "message", "icon", "link", "read", "created_at").
		From("notifications").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("created_at DESC").
		PlaceholderFormat(squirrel.Dollar)

	if unreadOnly {
		builder = builder.Where(squirrel.Eq{"read": false})
	}
	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	var rows []Notification
	err = r.db.SelectContext(ctx, &rows, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select notifications: %w", err)
	}

	out := make([]*model.Notification, len(rows))
	for i := range rows {
		out[i] = rows[i].toModel()
	}

	return out, nil
}

func (r *Repository) CountUnreadNotifications(ctx context.Context, userID uuid.UUID) (int, error) {
	query, args, err := squirrel.
		Select("COUNT(*)").
		From("notifications").
		Where(squirrel.Eq{"user_id": userID, "read": false}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, err
	}

	var count int
	err = r.db.GetContext(ctx, &count, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}

	return count, nil
}

// MarkNotificationsRead flips the given notifications of the user to
// read. A nil id list marks everything unread for the user.
func (r *Repository) MarkNotificationsRead(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) error {
	builder := squirrel.
		Update("notifications").
		Set("read", true).
		Where(squirrel.Eq{"user_id": userID, "read": false}).
		PlaceholderFormat(squirrel.Dollar)

	if len(ids) > 0 {
		builder = builder.Where(squirrel.Eq{"id": ids})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to mark notifications read: %w", err)
	}

	return nil
}

func (r *Repository) DeleteNotification(ctx context.Context, userID, id uuid.UUID) error {
	query, args, err := squirrel.
		Delete("notifications").
		Where(squirrel.Eq{"user_id": userID, "id": id}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

// DeleteReadNotifications removes every already-read notification of
// the user and reports how many were deleted.
func (r *Repository) DeleteReadNotifications(ctx context.Context, userID uuid.UUID) (int64, error) {
	query, args, err := squirrel.
		Delete("notifications").
		Where(squirrel.Eq{"user_id": userID, "read": true}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, err
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete read notifications: %w", err)
	}

	return result.RowsAffected()
}
