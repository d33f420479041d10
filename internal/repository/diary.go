package repository

import (
	"context"
	"fmt"
	"time"

	"selapp/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

type DiaryEntry struct {
	ID        uuid.UUID `db:"id"`
	UserID    uuid.UUID `db:"user_id"`
	Date      time.Time `db:"date"`
	Title     string    `db:"title"`
	Content   string    `db:"content"`
	Mood      string    `db:"mood"`
	CreatedAt time.Time `db:"created_at"`
}

func (r *Repository) CreateDiaryEntry(ctx context.Context, entry *model.DiaryEntry) error {
	query, args, err := squirrel.
		Insert("diary_entries").
		SetMap(map[string]interface{}{
			"id":         entry.ID,
			"user_id":    entry.UserID,
			"date":       entry.Date,
			"title":      entry.Title,
			"content":    entry.Content,
			"mood":       entry.Mood,
			"created_at": entry.CreatedAt,
		}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build diary insert query: %w", err)
	}

	_, err = r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to insert diary entry: %w", err)
	}

	return nil
}

func (r *Repository) GetDiaryEntries(ctx context.Context, userID uuid.UUID, limit int) ([]*model.DiaryEntry, error) {
	builder := squirrel.
		Select("id", "user_id", "date", "title", "content", "mood", "created_at").
		From("diary_entries").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("date DESC", "created_at DESC").
		PlaceholderFormat(squirrel.Dollar)

	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	var rows []DiaryEntry
	err = r.db.SelectContext(ctx, &rows, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select diary entries: %w", err)
	}

	entries := make([]*model.DiaryEntry, len(rows))
	for i, row := range rows {
		entries[i] = &model.DiaryEntry{
			ID:        row.ID,
			UserID:    row.UserID,
			Date:      row.Date,
			Title:     row.Title,
			Content:   row.Content,
			Mood:      row.Mood,
			CreatedAt: row.CreatedAt,
		}
	}

	return entries, nil
}
