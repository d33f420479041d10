package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"selapp/internal/model"
	"selapp/internal/streak"

	"github.com/google/uuid"
)

type DiaryService struct {
	repo DiaryRepository
	now  func() time.Time
}

func NewDiaryService(repo DiaryRepository) *DiaryService {
	return &DiaryService{
		repo: repo,
		now:  time.Now,
	}
}

func (s *DiaryService) CreateEntry(ctx context.Context, entry *model.DiaryEntry) error {
	if strings.TrimSpace(entry.Content) == "" {
		return errors.New("content is required")
	}

	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	now := s.now().UTC()
	if entry.Date.IsZero() {
		entry.Date = streak.Day(now)
	} else {
		entry.Date = streak.Day(entry.Date)
	}
	entry.CreatedAt = now

	err := s.repo.CreateDiaryEntry(ctx, entry)
	if err != nil {
		return fmt.Errorf("failed to create diary entry: %w", err)
	}

	return nil
}

func (s *DiaryService) Entries(ctx context.Context, userID uuid.UUID, limit int) ([]*model.DiaryEntry, error) {
	entries, err := s.repo.GetDiaryEntries(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get diary entries: %w", err)
	}
	return entries, nil
}
