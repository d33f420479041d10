package model

import (
	"time"

	"github.com/google/uuid"
)

// SeedsPerReading is the fixed award for marking one day of reading.
const SeedsPerReading = 10

type Reading struct {
	ID      uuid.UUID
	UserID  uuid.UUID
	Date    time.Time
	Passage string
	Seeds   int
}

// ReadingStats is the aggregate returned to the reading dashboard.
type ReadingStats struct {
	TotalDays          int
	TotalSeeds         int
	CurrentStreak      int
	MaxStreak          int
	ReadToday          bool
	CurrentLevel       Level
	NextLevel          *Level
	SeedsToNextLevel   int
	ProgressPercentage float64
}

type Level struct {
	Level         int
	Name          string
	Icon          string
	SeedsRequired int
	Description   string
}
