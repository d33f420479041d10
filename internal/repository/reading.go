package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"selapp/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

type Reading struct {
	ID      uuid.UUID `db:"id"`
	UserID  uuid.UUID `db:"user_id"`
	Date    time.Time `db:"date"`
	Passage string    `db:"passage"`
	Seeds   int       `db:"seeds"`
}

func (r *Repository) CreateReading(ctx context.Context, reading *model.Reading) error {
	query, args, err := squirrel.
		Insert("daily_readings").
		SetMap(map[string]interface{}{
			"id":      reading.ID,
			"user_id": reading.UserID,
			"date":    reading.Date,
			"passage": reading.Passage,
			"seeds":   reading.Seeds,
		}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build reading insert query: %w", err)
	}

	_, err = r.db.ExecContext(ctx, query, args...)
	if err != nil {
		// unique (user_id, date) guards the one-record-per-day invariant
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrAlreadyMarked
		}
		return fmt.Errorf("failed to insert reading: %w", err)
	}

	return nil
}

func (r *Repository) GetReadings(ctx context.Context, userID uuid.UUID, limit int) ([]*model.Reading, error) {
	builder := squirrel.
		Select("id", "user_id", "date", "passage", "seeds").
		From("daily_readings").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("date DESC").
		PlaceholderFormat(squirrel.Dollar)

	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	var rows []Reading
	err = r.db.SelectContext(ctx, &rows, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select readings: %w", err)
	}

	readings := make([]*model.Reading, len(rows))
	for i, row := range rows {
		readings[i] = &model.Reading{
			ID:      row.ID,
			UserID:  row.UserID,
			Date:    row.Date,
			Passage: row.Passage,
			Seeds:   row.Seeds,
		}
	}

	return readings, nil
}

// GetUserIDsWithoutReadingOn returns, out of the given candidates, the
// users that have no reading record on the given day.
func (r *Repository) GetUserIDsWithoutReadingOn(ctx context.Context, candidates []uuid.UUID, day time.Time) ([]uuid.UUID, error) {
	return r.usersWithoutRecordOn(ctx, "daily_readings", candidates, day)
}

func (r *Repository) GetUserIDsWithoutDiaryOn(ctx context.Context, candidates []uuid.UUID, day time.Time) ([]uuid.UUID, error) {
	return r.usersWithoutRecordOn(ctx, "diary_entries", candidates, day)
}

func (r *Repository) usersWithoutRecordOn(ctx context.Context, table string, candidates []uuid.UUID, day time.Time) ([]uuid.UUID, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	ids := make(pq.StringArray, len(candidates))
	for i, id := range candidates {
		ids[i] = id.String()
	}

	query := fmt.Sprintf(
		`SELECT u.id FROM users u
		 WHERE u.id = ANY($1::uuid[])
		 AND NOT EXISTS (
		   SELECT 1 FROM %s t WHERE t.user_id = u.id AND t.date = $2
		 )`, table)

	var out []uuid.UUID
	err := r.db.SelectContext(ctx, &out, query, ids, day)
	if err != nil {
		return nil, fmt.Errorf("failed to select users without %s record: %w", table, err)
	}

	return out, nil
}
