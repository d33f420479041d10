package service

import (
	"context"
	"errors"
	"time"

	"selapp/internal/model"
	"selapp/pkg/webpush"

	"github.com/google/uuid"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrAlreadyMarkedToday = errors.New("reading already marked today")
	ErrUnknownTask        = errors.New("unknown task")
)

type Service struct {
	*UserService
	*ReadingService
	*DiaryService
	*DevotionalService
	*NotificationService
}

func NewService(
	userService *UserService,
	readingService *ReadingService,
	diaryService *DiaryService,
	devotionalService *DevotionalService,
	notificationService *NotificationService,
) *Service {
	return &Service{
		UserService:         userService,
		ReadingService:      readingService,
		DiaryService:        diaryService,
		DevotionalService:   devotionalService,
		NotificationService: notificationService,
	}
}

type UserServiceI interface {
	Register(ctx context.Context, email, name, password string) (*model.User, error)
	Login(ctx context.Context, email, password string) (*model.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*model.User, error)
}

type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

type ReadingServiceI interface {
	MarkToday(ctx context.Context, userID uuid.UUID, passage string) (*model.Reading, error)
	History(ctx context.Context, userID uuid.UUID, limit int) ([]*model.Reading, error)
	Stats(ctx context.Context, userID uuid.UUID) (*model.ReadingStats, error)
}

type ReadingRepository interface {
	CreateReading(ctx context.Context, reading *model.Reading) error
	GetReadings(ctx context.Context, userID uuid.UUID, limit int) ([]*model.Reading, error)
}

type DiaryServiceI interface {
	CreateEntry(ctx context.Context, entry *model.DiaryEntry) error
	Entries(ctx context.Context, userID uuid.UUID, limit int) ([]*model.DiaryEntry, error)
}

type DiaryRepository interface {
	CreateDiaryEntry(ctx context.Context, entry *model.DiaryEntry) error
	GetDiaryEntries(ctx context.Context, userID uuid.UUID, limit int) ([]*model.DiaryEntry, error)
}

type DevotionalServiceI interface {
	Ingest(ctx context.Context, d *model.Devotional) error
	Today(ctx context.Context) (*model.Devotional, error)
	List(ctx context.Context, limit int) ([]*model.Devotional, error)
}

type DevotionalRepository interface {
	CreateDevotional(ctx context.Context, d *model.Devotional) error
	GetDevotionalByDate(ctx context.Context, day time.Time) (*model.Devotional, error)
	ListDevotionals(ctx context.Context, limit int) ([]*model.Devotional, error)
}

type NotificationServiceI interface {
	Notifications(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]*model.Notification, int, error)
	CreateCustom(ctx context.Context, userID uuid.UUID, tpl Template) (*model.Notification, error)
	MarkRead(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
	DeleteRead(ctx context.Context, userID uuid.UUID) (int64, error)

	Subscribe(ctx context.Context, sub *model.PushSubscription) error
	Unsubscribe(ctx context.Context, userID uuid.UUID, endpoint string) error
	ResetSubscriptions(ctx context.Context, userID uuid.UUID) (int64, error)

	NotifyCohort(ctx context.Context, cohort Cohort, tpl Template) (int, error)
	DeliverPush(ctx context.Context, userID uuid.UUID, payload PushPayload) (successful, failed int)
	CheckStreaks(ctx context.Context) error
	RunTask(ctx context.Context, task string) (string, error)
}

type NotificationRepository interface {
	CreateNotifications(ctx context.Context, ns []*model.Notification) error
	GetNotifications(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]*model.Notification, error)
	CountUnreadNotifications(ctx context.Context, userID uuid.UUID) (int, error)
	MarkNotificationsRead(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) error
	DeleteNotification(ctx context.Context, userID, id uuid.UUID) error
	DeleteReadNotifications(ctx context.Context, userID uuid.UUID) (int64, error)

	UpsertPushSubscription(ctx context.Context, sub *model.PushSubscription) error
	GetPushSubscriptions(ctx context.Context, userID uuid.UUID) ([]*model.PushSubscription, error)
	DeletePushSubscription(ctx context.Context, id uuid.UUID) error
	DeletePushSubscriptionByEndpoint(ctx context.Context, userID uuid.UUID, endpoint string) error
	DeletePushSubscriptionsForUser(ctx context.Context, userID uuid.UUID) (int64, error)

	GetAllUserIDs(ctx context.Context) ([]uuid.UUID, error)
	GetUserIDsWithoutReadingOn(ctx context.Context, candidates []uuid.UUID, day time.Time) ([]uuid.UUID, error)
	GetUserIDsWithoutDiaryOn(ctx context.Context, candidates []uuid.UUID, day time.Time) ([]uuid.UUID, error)
	GetReadings(ctx context.Context, userID uuid.UUID, limit int) ([]*model.Reading, error)
}

// PushSender delivers one payload to one endpoint. Implemented by
// pkg/webpush; mocked in tests.
type PushSender interface {
	Send(ctx context.Context, sub webpush.Subscription, payload []byte) error
}

// FeedPublisher pushes live events to connected websocket clients.
type FeedPublisher interface {
	Publish(userID uuid.UUID, event interface{})
}
