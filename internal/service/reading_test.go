package service

import (
	"context"
	"testing"
	"time"

	"selapp/internal/model"
	"selapp/internal/repository"
	"selapp/internal/service/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestReadingService(repo *mocks.MockReadingRepository) *ReadingService {
	s := NewReadingService(repo)
	s.now = func() time.Time {
		return time.Date(2024, 1, 7, 15, 30, 0, 0, time.UTC)
	}
	return s
}

func TestReadingService_MarkToday(t *testing.T) {
	userID := uuid.New()

	t.Run("creates day-truncated record with fixed award", func(t *testing.T) {
		mockRepo := &mocks.MockReadingRepository{}
		service := newTestReadingService(mockRepo)

		mockRepo.On("CreateReading", mock.Anything, mock.MatchedBy(func(r *model.Reading) bool {
			return r.UserID == userID &&
				r.Date.Equal(time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC)) &&
				r.Seeds == model.SeedsPerReading &&
				r.Passage == "Salmos 23"
		})).Return(nil)

		reading, err := service.MarkToday(context.Background(), userID, "  Salmos 23 ")

		require.NoError(t, err)
		assert.Equal(t, "Salmos 23", reading.Passage)
		mockRepo.AssertExpectations(t)
	})

	t.Run("second mark on same day rejected", func(t *testing.T) {
		mockRepo := &mocks.MockReadingRepository{}
		service := newTestReadingService(mockRepo)

		mockRepo.On("CreateReading", mock.Anything, mock.Anything).
			Return(repository.ErrAlreadyMarked)

		_, err := service.MarkToday(context.Background(), userID, "Salmos 23")
		assert.ErrorIs(t, err, ErrAlreadyMarkedToday)
	})

	t.Run("empty passage rejected", func(t *testing.T) {
		mockRepo := &mocks.MockReadingRepository{}
		service := newTestReadingService(mockRepo)

		_, err := service.MarkToday(context.Background(), userID, "   ")
		assert.Error(t, err)
		mockRepo.AssertNotCalled(t, "CreateReading", mock.Anything, mock.Anything)
	})
}

func TestReadingService_Stats(t *testing.T) {
	userID := uuid.New()

	t.Run("empty history renders level one empty state", func(t *testing.T) {
		mockRepo := &mocks.MockReadingRepository{}
		service := newTestReadingService(mockRepo)

		mockRepo.On("GetReadings", mock.Anything, userID, 0).
			Return([]*model.Reading{}, nil)

		stats, err := service.Stats(context.Background(), userID)

		require.NoError(t, err)
		assert.Equal(t, 0, stats.TotalDays)
		assert.Equal(t, 0, stats.TotalSeeds)
		assert.Equal(t, 0, stats.CurrentStreak)
		assert.Equal(t, 0, stats.MaxStreak)
		assert.False(t, stats.ReadToday)
		assert.Equal(t, 1, stats.CurrentLevel.Level)
	})

	t.Run("aggregates streaks seeds and level progress", func(t *testing.T) {
		mockRepo := &mocks.MockReadingRepository{}
		service := newTestReadingService(mockRepo)

		// Jan 1-5 run, gap on Jan 6, read again today Jan 7.
		dates := []string{"2024-01-07", "2024-01-05", "2024-01-04", "2024-01-03", "2024-01-02", "2024-01-01"}
		readings := make([]*model.Reading, len(dates))
		for i, d := range dates {
			day, _ := time.Parse("2006-01-02", d)
			readings[i] = &model.Reading{UserID: userID, Date: day, Seeds: 10}
		}
		mockRepo.On("GetReadings", mock.Anything, userID, 0).Return(readings, nil)

		stats, err := service.Stats(context.Background(), userID)

		require.NoError(t, err)
		assert.Equal(t, 6, stats.TotalDays)
		assert.Equal(t, 60, stats.TotalSeeds)
		assert.Equal(t, 1, stats.CurrentStreak)
		assert.Equal(t, 5, stats.MaxStreak)
		assert.True(t, stats.ReadToday)
		assert.Equal(t, 1, stats.CurrentLevel.Level)
		require.NotNil(t, stats.NextLevel)
		assert.Equal(t, 2, stats.NextLevel.Level)
		assert.Equal(t, 40, stats.SeedsToNextLevel)
		assert.InDelta(t, 60.0, stats.ProgressPercentage, 0.001)
	})
}
