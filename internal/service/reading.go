package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"selapp/internal/model"
	"selapp/internal/repository"
	"selapp/internal/streak"

	"github.com/google/uuid"
)

type ReadingService struct {
	repo ReadingRepository

	// now is swappable so streak boundaries are deterministic in tests.
	now func() time.Time
}

func NewReadingService(repo ReadingRepository) *ReadingService {
	return &ReadingService{
		repo: repo,
		now:  time.Now,
	}
}

func (s *ReadingService) MarkToday(ctx context.Context, userID uuid.UUID, passage string) (*model.Reading, error) {
	passage = strings.TrimSpace(passage)
	if passage == "" {
		return nil, errors.New("passage is required")
	}

	reading := &model.Reading{
		ID:      uuid.New(),
		UserID:  userID,
		Date:    streak.Day(s.now()),
		Passage: passage,
		Seeds:   model.SeedsPerReading,
	}

	err := s.repo.CreateReading(ctx, reading)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyMarked) {
			return nil, ErrAlreadyMarkedToday
		}
		return nil, fmt.Errorf("failed to create reading: %w", err)
	}

	return reading, nil
}

func (s *ReadingService) History(ctx context.Context, userID uuid.UUID, limit int) ([]*model.Reading, error) {
	readings, err := s.repo.GetReadings(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get readings: %w", err)
	}
	return readings, nil
}

// Stats aggregates the full reading history into streak counters and
// level progress. An empty history yields the level-1 empty state.
func (s *ReadingService) Stats(ctx context.Context, userID uuid.UUID) (*model.ReadingStats, error) {
	readings, err := s.repo.GetReadings(ctx, userID, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to get readings: %w", err)
	}

	today := streak.Day(s.now())

	totalSeeds := 0
	readToday := false
	dates := make([]time.Time, len(readings))
	for i, r := range readings {
		dates[i] = r.Date
		totalSeeds += r.Seeds
		if streak.Day(r.Date).Equal(today) {
			readToday = true
		}
	}

	current, max := streak.CalculateStreaks(dates, today)
	progress := streak.ProgressToNextLevel(totalSeeds)

	return &model.ReadingStats{
		TotalDays:          len(readings),
		TotalSeeds:         totalSeeds,
		CurrentStreak:      current,
		MaxStreak:          max,
		ReadToday:          readToday,
		CurrentLevel:       progress.CurrentLevel,
		NextLevel:          progress.NextLevel,
		SeedsToNextLevel:   progress.SeedsToNextLevel,
		ProgressPercentage: progress.ProgressPercentage,
	}, nil
}
