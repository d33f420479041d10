package model

import (
	"time"

	"github.com/google/uuid"
)

type DiaryEntry struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Date      time.Time
	Title     string
	Content   string
	Mood      string
	CreatedAt time.Time
}
