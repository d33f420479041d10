package repository

import (
	"context"
	"fmt"

	"selapp/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

type PushSubscription struct {
	ID       uuid.UUID `db:"id"`
	UserID   uuid.UUID `db:"user_id"`
	Endpoint string    `db:"endpoint"`
	P256dh   string    `db:"p256dh"`
	Auth     string    `db:"auth"`
}

// UpsertPushSubscription creates a subscription row or refreshes the
// keys of an existing one. Endpoints are unique across all users.
func (r *Repository) UpsertPushSubscription(ctx context.Context, sub *model.PushSubscription) error {
	query := `INSERT INTO push_subscriptions (id, user_id, endpoint, p256dh, auth)
	          VALUES ($1, $2, $3, $4, $5)
	          ON CONFLICT (endpoint)
	          DO UPDATE SET user_id = $2, p256dh = $4, auth = $5`

	_, err := r.db.ExecContext(ctx, query, sub.ID, sub.UserID, sub.Endpoint, sub.P256dh, sub.Auth)
	if err != nil {
		return fmt.Errorf("failed to upsert push subscription: %w", err)
	}

	return nil
}

func (r *Repository) GetPushSubscriptions(ctx context.Context, userID uuid.UUID) ([]*model.PushSubscription, error) {
	query, args, err := squirrel.
		Select("id", "user_id", "endpoint", "p256dh", "auth").
		From("push_subscriptions").
		Where(squirrel.Eq{"user_id": userID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var rows []PushSubscription
	err = r.db.SelectContext(ctx, &rows, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select push subscriptions: %w", err)
	}

	subs := make([]*model.PushSubscription, len(rows))
	for i, row := range rows {
		subs[i] = &model.PushSubscription{
			ID:       row.ID,
			UserID:   row.UserID,
			Endpoint: row.Endpoint,
			P256dh:   row.P256dh,
			Auth:     row.Auth,
		}
	}

	return subs, nil
}

func (r *Repository) DeletePushSubscription(ctx context.Context, id uuid.UUID) error {
	query, args, err := squirrel.
		Delete("push_subscriptions").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete push subscription: %w", err)
	}

	return nil
}

func (r *Repository) DeletePushSubscriptionByEndpoint(ctx context.Context, userID uuid.UUID, endpoint string) error {
	query, args, err := squirrel.
		Delete("push_subscriptions").
		Where(squirrel.Eq{"user_id": userID, "endpoint": endpoint}).
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

// DeletePushSubscriptionsForUser removes every subscription of the
// user and reports how many were deleted.
func (r *Repository) DeletePushSubscriptionsForUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	query, args, err := squirrel.
		Delete("push_subscriptions").
		Where(squirrel.Eq{"user_id": userID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, err
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete push subscriptions: %w", err)
	}

	return result.RowsAffected()
}
