package model

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationVerseOfDay      NotificationType = "verse_of_day"
	NotificationReadingReminder NotificationType = "reading_reminder"
	NotificationDiaryReminder   NotificationType = "diary_reminder"
	NotificationAchievement     NotificationType = "achievement"
	NotificationCustom          NotificationType = "custom"
)

type Notification struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Type      NotificationType
	Title     string
	Message   string
	Icon      string
	Link      string
	Read      bool
	CreatedAt time.Time
}

type PushSubscription struct {
	ID       uuid.UUID
	UserID   uuid.UUID
	Endpoint string
	P256dh   string
	Auth     string
}
