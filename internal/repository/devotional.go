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
)

type Devotional struct {
	ID             uuid.UUID `db:"id"`
	Date           time.Time `db:"date"`
	Title          string    `db:"title"`
	Theme          string    `db:"theme"`
	VerseReference string    `db:"verse_reference"`
	VerseText      string    `db:"verse_text"`
	Reflection     string    `db:"reflection"`
	CreatedAt      time.Time `db:"created_at"`
}

func (d *Devotional) toModel() *model.Devotional {
	return &model.Devotional{
		ID:             d.ID,
		Date:           d.Date,
		Title:          d.Title,
		Theme:          d.Theme,
		VerseReference: d.VerseReference,
		VerseText:      d.VerseText,
		Reflection:     d.Reflection,
		CreatedAt:      d.CreatedAt,
	}
}

var ErrDevotionalExists = errors.New("devotional already exists for this date")

func (r *Repository) CreateDevotional(ctx context.Context, d *model.Devotional) error {
	query, args, err := squirrel.
		Insert("devotionals").
		SetMap(map[string]interface{}{
			"id":              d.ID,
			"date":            d.Date,
			"title":           d.Title,
			"theme":           d.Theme,
			"verse_reference": d.VerseReference,
			"verse_text":      d.VerseText,
			"reflection":      d.Reflection,
			"created_at":      d.CreatedAt,
		}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build devotional insert query: %w", err)
	}

	_, err = r.db.ExecContext(ctx, query, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDevotionalExists
		}
		return fmt.Errorf("failed to insert devotional: %w", err)
	}

	return nil
}

func (r *Repository) GetDevotionalByDate(ctx context.Context, day time.Time) (*model.Devotional, error) {
	query, args, err := squirrel.
		Select("id", "date", "title", "theme", "verse_reference", "verse_text", "reflection", "created_at").
		From("devotionals").
		Where(squirrel.Eq{"date": day}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var row Devotional
	err = r.db.GetContext(ctx, &row, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return row.toModel(), nil
}

func (r *Repository) ListDevotionals(ctx context.Context, limit int) ([]*model.Devotional, error) {
	builder := squirrel.
		Select("id", "date", "title", "theme", "verse_reference", "verse_text", "reflection", "created_at").
		From("devotionals").
		OrderBy("date DESC").
		PlaceholderFormat(squirrel.Dollar)

	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	var rows []Devotional
	err = r.db.SelectContext(ctx, &rows, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select devotionals: %w", err)
	}

	out := make([]*model.Devotional, len(rows))
	for i := range rows {
		out[i] = rows[i].toModel()
	}

	return out, nil
}
