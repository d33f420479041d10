package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"selapp/internal/model"
	"selapp/internal/streak"
	"selapp/pkg/logger"
	"selapp/pkg/webpush"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Cohort selects the recipients of one fan-out invocation.
type Cohort int

const (
	CohortAllUsers Cohort = iota
	CohortWithoutReadingToday
	CohortWithoutDiaryToday
)

// Template holds the fields stamped onto every notification created by
// one fan-out.
type Template struct {
	Type    model.NotificationType
	Title   string
	Message string
	Icon    string
	Link    string
}

// PushPayload is the JSON body handed to the push service.
type PushPayload struct {
	Title   string `json:"title"`
	Message string `json:"message"`
	Icon    string `json:"icon"`
	Link    string `json:"link"`
	Tag     string `json:"tag"`
}

// fanOutWidth caps concurrent per-user push deliveries during a cohort
// fan-out.
const fanOutWidth = 16

type NotificationService struct {
	repo NotificationRepository
	push PushSender
	feed FeedPublisher
	now  func() time.Time
}

// NewNotificationService builds the fan-out service. push and feed may
// be nil; persistence then still happens and delivery is skipped.
func NewNotificationService(repo NotificationRepository, push PushSender, feed FeedPublisher) *NotificationService {
	return &NotificationService{
		repo: repo,
		push: push,
		feed: feed,
		now:  time.Now,
	}
}

func (s *NotificationService) Notifications(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]*model.Notification, int, error) {
	notifications, err := s.repo.GetNotifications(ctx, userID, unreadOnly, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get notifications: %w", err)
	}

	unread, err := s.repo.CountUnreadNotifications(ctx, userID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}

	return notifications, unread, nil
}

// CreateCustom persists a single user-created notification and
// best-effort pushes it.
func (s *NotificationService) CreateCustom(ctx context.Context, userID uuid.UUID, tpl Template) (*model.Notification, error) {
	if tpl.Type == "" {
		tpl.Type = model.NotificationCustom
	}

	n := s.buildNotification(userID, tpl)
	err := s.repo.CreateNotifications(ctx, []*model.Notification{n})
	if err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}

	s.publishToFeed(n)
	s.DeliverPush(ctx, userID, payloadFromTemplate(tpl))

	return n, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) error {
	err := s.repo.MarkNotificationsRead(ctx, userID, ids)
	if err != nil {
		return fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return nil
}

func (s *NotificationService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return s.repo.DeleteNotification(ctx, userID, id)
}

func (s *NotificationService) DeleteRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.DeleteReadNotifications(ctx, userID)
}

func (s *NotificationService) Subscribe(ctx context.Context, sub *model.PushSubscription) error {
	if sub.Endpoint == "" || sub.P256dh == "" || sub.Auth == "" {
		return errors.New("endpoint and keys are required")
	}
	if sub.ID == uuid.Nil {
		sub.ID = uuid.New()
	}

	err := s.repo.UpsertPushSubscription(ctx, sub)
	if err != nil {
		return fmt.Errorf("failed to save push subscription: %w", err)
	}

	return nil
}

func (s *NotificationService) Unsubscribe(ctx context.Context, userID uuid.UUID, endpoint string) error {
	return s.repo.DeletePushSubscriptionByEndpoint(ctx, userID, endpoint)
}

func (s *NotificationService) ResetSubscriptions(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.DeletePushSubscriptionsForUser(ctx, userID)
}

// NotifyCohort persists one unread notification per cohort member,
// then best-effort pushes to every member's registered endpoints. The
// bulk insert must succeed; push failures are counted only. Returns
// the cohort size.
func (s *NotificationService) NotifyCohort(ctx context.Context, cohort Cohort, tpl Template) (int, error) {
	users, err := s.resolveCohort(ctx, cohort)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve cohort: %w", err)
	}
	if len(users) == 0 {
		return 0, nil
	}

	notifications := make([]*model.Notification, len(users))
	for i, userID := range users {
		notifications[i] = s.buildNotification(userID, tpl)
	}

	err = s.repo.CreateNotifications(ctx, notifications)
	if err != nil {
		return 0, fmt.Errorf("failed to create notifications: %w", err)
	}

	for _, n := range notifications {
		s.publishToFeed(n)
	}

	payload := payloadFromTemplate(tpl)

	var (
		wg                 sync.WaitGroup
		mu                 sync.Mutex
		successful, failed int
	)
	sem := make(chan struct{}, fanOutWidth)

	for _, userID := range users {
		wg.Add(1)
		sem <- struct{}{}
		go func(id uuid.UUID) {
			defer wg.Done()
			defer func() { <-sem }()

			ok, bad := s.DeliverPush(ctx, id, payload)

			mu.Lock()
			successful += ok
			failed += bad
			mu.Unlock()
		}(userID)
	}
	wg.Wait()

	logger.Logger().Info("cohort fan-out complete",
		zap.Int("users", len(users)),
		zap.Int("push_successful", successful),
		zap.Int("push_failed", failed))

	return len(users), nil
}

// DeliverPush attempts delivery to every subscription the user had at
// call time. Gone endpoints (404/410/401) are pruned; other failures
// leave the subscription for the next occasion. Never returns an
// error: push is best-effort by contract.
func (s *NotificationService) DeliverPush(ctx context.Context, userID uuid.UUID, payload PushPayload) (successful, failed int) {
	log := logger.Logger()

	if s.push == nil {
		return 0, 0
	}

	subs, err := s.repo.GetPushSubscriptions(ctx, userID)
	if err != nil {
		log.Error("failed to load push subscriptions",
			zap.String("user_id", userID.String()), zap.Error(err))
		return 0, 0
	}
	if len(subs) == 0 {
		return 0, 0
	}

	body, err := json.Marshal(payload)
	if err != nil {
		log.Error("failed to marshal push payload", zap.Error(err))
		return 0, len(subs)
	}

	for _, sub := range subs {
		err := s.push.Send(ctx, webpush.Subscription{
			Endpoint: sub.Endpoint,
			P256dh:   sub.P256dh,
			Auth:     sub.Auth,
		}, body)
		if err == nil {
			successful++
			continue
		}

		failed++
		if errors.Is(err, webpush.ErrSubscriptionGone) {
			log.Info("pruning gone push subscription",
				zap.String("subscription_id", sub.ID.String()))
			if delErr := s.repo.DeletePushSubscription(ctx, sub.ID); delErr != nil {
				log.Error("failed to delete gone subscription",
					zap.String("subscription_id", sub.ID.String()), zap.Error(delErr))
			}
		} else {
			log.Warn("push delivery failed",
				zap.String("subscription_id", sub.ID.String()), zap.Error(err))
		}
	}

	return successful, failed
}

// CheckStreaks scans every user's reading history and produces
// achievement notifications for a fresh 7-day streak and for seed
// milestones.
func (s *NotificationService) CheckStreaks(ctx context.Context) error {
	users, err := s.repo.GetAllUserIDs(ctx)
	if err != nil {
		return fmt.Errorf("failed to get users: %w", err)
	}

	today := streak.Day(s.now())

	for _, userID := range users {
		readings, err := s.repo.GetReadings(ctx, userID, 0)
		if err != nil {
			return fmt.Errorf("failed to get readings: %w", err)
		}
		if len(readings) == 0 {
			continue
		}

		totalSeeds := 0
		dates := make([]time.Time, len(readings))
		for i, r := range readings {
			dates[i] = r.Date
			totalSeeds += r.Seeds
		}

		current, _ := streak.CalculateStreaks(dates, today)
		if current == 7 {
			_, err = s.CreateCustom(ctx, userID, Template{
				Type:    model.NotificationAchievement,
				Title:   "🔥 ¡Racha de 7 días!",
				Message: "¡Increíble! Has leído la Biblia durante 7 días consecutivos. ¡Sigue así!",
				Icon:    "🔥",
				Link:    "/",
			})
			if err != nil {
				return err
			}
		}

		if tpl, ok := seedMilestone(totalSeeds); ok {
			_, err = s.CreateCustom(ctx, userID, tpl)
			if err != nil {
				return err
			}
		}
	}

	return nil
}

func seedMilestone(totalSeeds int) (Template, bool) {
	switch totalSeeds {
	case 100:
		return Template{
			Type:    model.NotificationAchievement,
			Title:   "🌱 ¡100 Semillas de Fe!",
			Message: "Has alcanzado 100 semillas de fe. ¡Tu crecimiento espiritual está floreciendo!",
			Icon:    "🌱",
			Link:    "/",
		}, true
	case 500:
		return Template{
			Type:    model.NotificationAchievement,
			Title:   "🌳 ¡500 Semillas de Fe!",
			Message: "¡Impresionante! 500 semillas de fe. Eres un ejemplo de dedicación.",
			Icon:    "🌳",
			Link:    "/",
		}, true
	case 1000:
		return Template{
			Type:    model.NotificationAchievement,
			Title:   "🏆 ¡1000 Semillas de Fe!",
			Message: "¡Increíble logro! Has alcanzado 1000 semillas de fe. ¡Eres un verdadero discípulo!",
			Icon:    "🏆",
			Link:    "/",
		}, true
	}
	return Template{}, false
}

// Task names accepted by RunTask. The HTTP cron trigger and the
// in-process scheduler both dispatch through here.
const (
	TaskVerseOfDay      = "verse-of-day"
	TaskReadingReminder = "reading-reminder"
	TaskDiaryReminder   = "diary-reminder"
	TaskCheckStreaks    = "check-streaks"
	TaskNightReminders  = "night-reminders"
	TaskAll             = "all"
)

func (s *NotificationService) RunTask(ctx context.Context, task string) (string, error) {
	switch task {
	case TaskVerseOfDay:
		n, err := s.NotifyCohort(ctx, CohortAllUsers, Template{
			Type:    model.NotificationVerseOfDay,
			Title:   "📖 Nuevo Versículo del Día",
			Message: "Ya está disponible el versículo del día. ¡No te lo pierdas!",
			Icon:    "📖",
			Link:    "/",
		})
		return fmt.Sprintf("verse of the day sent to %d users", n), err

	case TaskReadingReminder:
		n, err := s.NotifyCohort(ctx, CohortWithoutReadingToday, Template{
			Type:    model.NotificationReadingReminder,
			Title:   "📚 Recordatorio de Lectura",
			Message: "Aún no has registrado tu lectura bíblica de hoy. ¡Tómate un momento para leer!",
			Icon:    "📚",
			Link:    "/",
		})
		return fmt.Sprintf("reading reminder sent to %d users", n), err

	case TaskDiaryReminder:
		n, err := s.NotifyCohort(ctx, CohortWithoutDiaryToday, Template{
			Type:    model.NotificationDiaryReminder,
			Title:   "✍️ ¿Cómo estuvo tu día?",
			Message: "Tómate un momento para escribir en tu diario espiritual. Reflexiona sobre tu día.",
			Icon:    "✍️",
			Link:    "/notes",
		})
		return fmt.Sprintf("diary reminder sent to %d users", n), err

	case TaskCheckStreaks:
		err := s.CheckStreaks(ctx)
		return "streak check complete", err

	case TaskNightReminders:
		for _, t := range []string{TaskReadingReminder, TaskDiaryReminder, TaskCheckStreaks} {
			if _, err := s.RunTask(ctx, t); err != nil {
				return "", err
			}
		}
		return "night reminders sent", nil

	case TaskAll:
		for _, t := range []string{TaskVerseOfDay, TaskReadingReminder, TaskDiaryReminder, TaskCheckStreaks} {
			if _, err := s.RunTask(ctx, t); err != nil {
				return "", err
			}
		}
		return "all tasks executed", nil

	default:
		return "", ErrUnknownTask
	}
}

func (s *NotificationService) resolveCohort(ctx context.Context, cohort Cohort) ([]uuid.UUID, error) {
	users, err := s.repo.GetAllUserIDs(ctx)
	if err != nil {
		return nil, err
	}

	switch cohort {
	case CohortAllUsers:
		return users, nil
	case CohortWithoutReadingToday:
		return s.repo.GetUserIDsWithoutReadingOn(ctx, users, streak.Day(s.now()))
	case CohortWithoutDiaryToday:
		return s.repo.GetUserIDsWithoutDiaryOn(ctx, users, streak.Day(s.now()))
	default:
		return nil, fmt.Errorf("unknown cohort %d", cohort)
	}
}

func (s *NotificationService) buildNotification(userID uuid.UUID, tpl Template) *model.Notification {
	return &model.Notification{
		ID:        uuid.New(),
		UserID:    userID,
		Type:      tpl.Type,
		Title:     tpl.Title,
		Message:   tpl.Message,
		Icon:      tpl.Icon,
		Link:      tpl.Link,
		Read:      false,
		CreatedAt: s.now().UTC(),
	}
}

func (s *NotificationService) publishToFeed(n *model.Notification) {
	if s.feed == nil {
		return
	}
	s.feed.Publish(n.UserID, map[string]interface{}{
		"type":    "notification",
		"payload": notificationEvent(n),
	})
}

func notificationEvent(n *model.Notification) map[string]interface{} {
	return map[string]interface{}{
		"id":         n.ID,
		"type":       n.Type,
		"title":      n.Title,
		"message":    n.Message,
		"icon":       n.Icon,
		"link":       n.Link,
		"created_at": n.CreatedAt,
	}
}

func payloadFromTemplate(tpl Template) PushPayload {
	icon := tpl.Icon
	if icon == "" {
		icon = "/icon-192x192.png"
	}
	link := tpl.Link
	if link == "" {
		link = "/"
	}
	return PushPayload{
		Title:   tpl.Title,
		Message: tpl.Message,
		Icon:    icon,
		Link:    link,
		Tag:     string(tpl.Type),
	}
}
