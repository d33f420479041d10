package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"selapp/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
)

type User struct {
	ID               uuid.UUID `db:"id"`
	Email            string    `db:"email"`
	Name             string    `db:"name"`
	PasswordHash     string    `db:"password_hash"`
	IsAdmin          bool      `db:"is_admin"`
	RegistrationDate time.Time `db:"registration_date"`
	LastLoginDate    time.Time `db:"last_login_date"`
}

func (u *User) toModel() *model.User {
	return &model.User{
		ID:               u.ID,
		Email:            u.Email,
		Name:             u.Name,
		PasswordHash:     u.PasswordHash,
		IsAdmin:          u.IsAdmin,
		RegistrationDate: u.RegistrationDate,
		LastLoginDate:    u.LastLoginDate,
	}
}

// CreateUser inserts the user and seeds the welcome notification in
// one transaction.
func (r *Repository) CreateUser(ctx context.Context, user *model.User) error {
	return r.Transaction(ctx, func(tx *sqlx.Tx) error {
		query, args, err := squirrel.
			Insert("users").
			SetMap(map[string]interface{}{
				"id":                user.ID,
				"email":             user.Email,
				"name":              user.Name,
				"password_hash":     user.PasswordHash,
				"is_admin":          user.IsAdmin,
				"registration_date": user.RegistrationDate,
				"last_login_date":   user.LastLoginDate,
			}).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build user insert query: %w", err)
		}

		_, err = tx.ExecContext(ctx, query, args...)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return ErrEmailTaken
			}
			return fmt.Errorf("failed to insert user: %w", err)
		}

		welcomeQuery, welcomeArgs, err := squirrel.
			Insert("notifications").
			SetMap(map[string]interface{}{
				"id":         uuid.New(),
				"user_id":    user.ID,
				"type":       string(model.NotificationCustom),
				"title":      "🌱 ¡Bienvenido a Selapp!",
				"message":    "Marca tu primera lectura de hoy para empezar a sembrar semillas de fe.",
				"icon":       "🌱",
				"link":       "/",
				"read":       false,
				"created_at": user.RegistrationDate,
			}).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build welcome notification query: %w", err)
		}

		_, err = tx.ExecContext(ctx, welcomeQuery, welcomeArgs...)
		if err != nil {
			return fmt.Errorf("failed to insert welcome notification: %w", err)
		}

		return nil
	})
}

func (r *Repository) GetUserByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return r.getUser(ctx, squirrel.Eq{"id": id})
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getUser(ctx, squirrel.Eq{"email": email})
}

func (r *Repository) getUser(ctx context.Context, pred squirrel.Eq) (*model.User, error) {
	query, args, err := squirrel.
		Select("id", "email", "name", "password_hash", "is_admin",
			"registration_date", "last_login_date").
		From("users").
		Where(pred).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var user User
	err = r.db.GetContext(ctx, &user, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return user.toModel(), nil
}

func (r *Repository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	query, args, err := squirrel.
		Update("users").
		Set("last_login_date", at).
		Where(squirrel.Eq{"id": id}).
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

func (r *Repository) GetAllUserIDs(ctx context.Context) ([]uuid.UUID, error) {
	query, args, err := squirrel.
		Select("id").
		From("users").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var ids []uuid.UUID
	err = r.db.SelectContext(ctx, &ids, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select user ids: %w", err)
	}

	return ids, nil
}
