package model

import (
	"time"

	"github.com/google/uuid"
)

type Devotional struct {
	ID             uuid.UUID
	Date           time.Time
	Title          string
	Theme          string
	VerseReference string
	VerseText      string
	Reflection     string
	CreatedAt      time.Time
}
