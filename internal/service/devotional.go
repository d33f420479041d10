package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"selapp/internal/model"
	"selapp/internal/repository"
	"selapp/internal/streak"

	"github.com/google/uuid"
)

var ErrDevotionalExists = errors.New("devotional already exists for this date")

type DevotionalService struct {
	repo DevotionalRepository
	now  func() time.Time
}

func NewDevotionalService(repo DevotionalRepository) *DevotionalService {
	return &DevotionalService{
		repo: repo,
		now:  time.Now,
	}
}

// Ingest stores a devotional produced by the external generator. One
// devotional per calendar day.
func (s *DevotionalService) Ingest(ctx context.Context, d *model.Devotional) error {
	if d.Title == "" || d.VerseReference == "" {
		return errors.New("title and verse reference are required")
	}

	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	if d.Date.IsZero() {
		d.Date = streak.Day(s.now())
	} else {
		d.Date = streak.Day(d.Date)
	}
	d.CreatedAt = s.now().UTC()

	err := s.repo.CreateDevotional(ctx, d)
	if err != nil {
		if errors.Is(err, repository.ErrDevotionalExists) {
			return ErrDevotionalExists
		}
		return fmt.Errorf("failed to create devotional: %w", err)
	}

	return nil
}

func (s *DevotionalService) Today(ctx context.Context) (*model.Devotional, error) {
	d, err := s.repo.GetDevotionalByDate(ctx, streak.Day(s.now()))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get devotional: %w", err)
	}
	return d, nil
}

func (s *DevotionalService) List(ctx context.Context, limit int) ([]*model.Devotional, error) {
	devotionals, err := s.repo.ListDevotionals(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list devotionals: %w", err)
	}
	return devotionals, nil
}
