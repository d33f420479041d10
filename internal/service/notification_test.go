package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"selapp/internal/model"
	"selapp/internal/service/mocks"
	"selapp/pkg/webpush"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestNotificationService(repo *mocks.MockNotificationRepository, push PushSender) *NotificationService {
	s := NewNotificationService(repo, push, nil)
	s.now = func() time.Time {
		return time.Date(2024, 1, 7, 21, 0, 0, 0, time.UTC)
	}
	return s
}

func TestNotifyCohort_CreatesOneRowPerMember(t *testing.T) {
	mockRepo := &mocks.MockNotificationRepository{}
	service := newTestNotificationService(mockRepo, nil)

	users := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	mockRepo.On("GetAllUserIDs", mock.Anything).Return(users, nil)
	mockRepo.On("CreateNotifications", mock.Anything, mock.MatchedBy(func(ns []*model.Notification) bool {
		if len(ns) != len(users) {
			return false
		}
		for i, n := range ns {
			if n.UserID != users[i] || n.Read || n.Type != model.NotificationVerseOfDay {
				return false
			}
		}
		return true
	})).Return(nil)

	count, err := service.NotifyCohort(context.Background(), CohortAllUsers, Template{
		Type:    model.NotificationVerseOfDay,
		Title:   "📖 Nuevo Versículo del Día",
		Message: "Ya está disponible el versículo del día.",
	})

	require.NoError(t, err)
	assert.Equal(t, 3, count)
	mockRepo.AssertExpectations(t)
}

func TestNotifyCohort_EmptyCohort(t *testing.T) {
	mockRepo := &mocks.MockNotificationRepository{}
	service := newTestNotificationService(mockRepo, nil)

	mockRepo.On("GetAllUserIDs", mock.Anything).Return([]uuid.UUID{}, nil)

	count, err := service.NotifyCohort(context.Background(), CohortAllUsers, Template{Title: "x"})

	require.NoError(t, err)
	assert.Equal(t, 0, count)
	mockRepo.AssertNotCalled(t, "CreateNotifications", mock.Anything, mock.Anything)
}

func TestNotifyCohort_PersistenceFailurePropagates(t *testing.T) {
	mockRepo := &mocks.MockNotificationRepository{}
	mockPush := &mocks.MockPushSender{}
	service := newTestNotificationService(mockRepo, mockPush)

	users := []uuid.UUID{uuid.New()}
	dbErr := errors.New("database unavailable")
	mockRepo.On("GetAllUserIDs", mock.Anything).Return(users, nil)
	mockRepo.On("CreateNotifications", mock.Anything, mock.Anything).Return(dbErr)

	_, err := service.NotifyCohort(context.Background(), CohortAllUsers, Template{Title: "x"})

	require.Error(t, err)
	assert.ErrorIs(t, err, dbErr)
	mockPush.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

func TestNotifyCohort_ReminderCohortUsesAbsenceFilter(t *testing.T) {
	mockRepo := &mocks.MockNotificationRepository{}
	service := newTestNotificationService(mockRepo, nil)

	all := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	lagging := all[:2]
	today := time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC)

	mockRepo.On("GetAllUserIDs", mock.Anything).Return(all, nil)
	mockRepo.On("GetUserIDsWithoutReadingOn", mock.Anything, all, today).Return(lagging, nil)
	mockRepo.On("CreateNotifications", mock.Anything, mock.MatchedBy(func(ns []*model.Notification) bool {
		return len(ns) == 2
	})).Return(nil)

	count, err := service.NotifyCohort(context.Background(), CohortWithoutReadingToday, Template{
		Type:  model.NotificationReadingReminder,
		Title: "📚 Recordatorio de Lectura",
	})

	require.NoError(t, err)
	assert.Equal(t, 2, count)
	mockRepo.AssertExpectations(t)
}

func TestNotifyCohort_DeliversPushToEveryMember(t *testing.T) {
	mockRepo := &mocks.MockNotificationRepository{}
	mockPush := &mocks.MockPushSender{}
	service := newTestNotificationService(mockRepo, mockPush)

	// More members than the delivery worker limit, with a mix of
	// successful and failing endpoints.
	const members = 20
	users := make([]uuid.UUID, members)
	for i := range users {
		users[i] = uuid.New()
	}

	mockRepo.On("GetAllUserIDs", mock.Anything).Return(users, nil)
	mockRepo.On("CreateNotifications", mock.Anything, mock.MatchedBy(func(ns []*model.Notification) bool {
		return len(ns) == members
	})).Return(nil)

	for i, userID := range users {
		endpoint := fmt.Sprintf("https://push.example/%d", i)
		sub := &model.PushSubscription{
			ID:       uuid.New(),
			UserID:   userID,
			Endpoint: endpoint,
			P256dh:   "p256dh-key",
			Auth:     "auth-key",
		}
		mockRepo.On("GetPushSubscriptions", mock.Anything, userID).
			Return([]*model.PushSubscription{sub}, nil).Once()

		var sendErr error
		if i%3 == 0 {
			sendErr = errors.New("push service returned status 500")
		}
		mockPush.On("Send", mock.Anything, mock.MatchedBy(func(s webpush.Subscription) bool {
			return s.Endpoint == endpoint
		}), mock.Anything).Return(sendErr).Once()
	}

	count, err := service.NotifyCohort(context.Background(), CohortAllUsers, Template{
		Type:    model.NotificationVerseOfDay,
		Title:   "📖 Nuevo Versículo del Día",
		Message: "Ya está disponible el versículo del día.",
	})

	require.NoError(t, err)
	assert.Equal(t, members, count)
	mockPush.AssertNumberOfCalls(t, "Send", members)
	mockRepo.AssertNotCalled(t, "DeletePushSubscription", mock.Anything, mock.Anything)
	mockPush.AssertExpectations(t)
	mockRepo.AssertExpectations(t)
}

func TestDeliverPush_GoneEndpointIsPruned(t *testing.T) {
	mockRepo := &mocks.MockNotificationRepository{}
	mockPush := &mocks.MockPushSender{}
	service := newTestNotificationService(mockRepo, mockPush)

	userID := uuid.New()
	sub := &model.PushSubscription{
		ID:       uuid.New(),
		UserID:   userID,
		Endpoint: "https://push.example/abc",
		P256dh:   "p256dh-key",
		Auth:     "auth-key",
	}

	mockRepo.On("GetPushSubscriptions", mock.Anything, userID).
		Return([]*model.PushSubscription{sub}, nil)
	mockPush.On("Send", mock.Anything, mock.Anything, mock.Anything).
		Return(fmt.Errorf("endpoint rejected with status 410: %w", webpush.ErrSubscriptionGone))
	mockRepo.On("DeletePushSubscription", mock.Anything, sub.ID).Return(nil)

	successful, failed := service.DeliverPush(context.Background(), userID, PushPayload{Title: "t"})

	assert.Equal(t, 0, successful)
	assert.Equal(t, 1, failed)
	mockRepo.AssertExpectations(t)
}

func TestDeliverPush_TransientFailureKeepsSubscription(t *testing.T) {
	mockRepo := &mocks.MockNotificationRepository{}
	mockPush := &mocks.MockPushSender{}
	service := newTestNotificationService(mockRepo, mockPush)

	userID := uuid.New()
	subs := []*model.PushSubscription{
		{ID: uuid.New(), UserID: userID, Endpoint: "https://push.example/a", P256dh: "k", Auth: "a"},
		{ID: uuid.New(), UserID: userID, Endpoint: "https://push.example/b", P256dh: "k", Auth: "a"},
	}

	mockRepo.On("GetPushSubscriptions", mock.Anything, userID).Return(subs, nil)
	mockPush.On("Send", mock.Anything, mock.MatchedBy(func(s webpush.Subscription) bool {
		return s.Endpoint == subs[0].Endpoint
	}), mock.Anything).Return(errors.New("push service returned status 500"))
	mockPush.On("Send", mock.Anything, mock.MatchedBy(func(s webpush.Subscription) bool {
		return s.Endpoint == subs[1].Endpoint
	}), mock.Anything).Return(nil)

	successful, failed := service.DeliverPush(context.Background(), userID, PushPayload{Title: "t"})

	assert.Equal(t, 1, successful)
	assert.Equal(t, 1, failed)
	mockRepo.AssertNotCalled(t, "DeletePushSubscription", mock.Anything, mock.Anything)
}

func TestDeliverPush_NoSubscriptions(t *testing.T) {
	mockRepo := &mocks.MockNotificationRepository{}
	mockPush := &mocks.MockPushSender{}
	service := newTestNotificationService(mockRepo, mockPush)

	userID := uuid.New()
	mockRepo.On("GetPushSubscriptions", mock.Anything, userID).
		Return([]*model.PushSubscription{}, nil)

	successful, failed := service.DeliverPush(context.Background(), userID, PushPayload{Title: "t"})

	assert.Equal(t, 0, successful)
	assert.Equal(t, 0, failed)
	mockPush.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

func TestDeliverPush_NilSenderSkipsDelivery(t *testing.T) {
	mockRepo := &mocks.MockNotificationRepository{}
	service := newTestNotificationService(mockRepo, nil)

	successful, failed := service.DeliverPush(context.Background(), uuid.New(), PushPayload{Title: "t"})

	assert.Equal(t, 0, successful)
	assert.Equal(t, 0, failed)
	mockRepo.AssertNotCalled(t, "GetPushSubscriptions", mock.Anything, mock.Anything)
}

func TestCheckStreaks(t *testing.T) {
	mockRepo := &mocks.MockNotificationRepository{}
	service := newTestNotificationService(mockRepo, nil)

	streakUser := uuid.New()
	milestoneUser := uuid.New()
	quietUser := uuid.New()

	mockRepo.On("GetAllUserIDs", mock.Anything).
		Return([]uuid.UUID{streakUser, milestoneUser, quietUser}, nil)

	// seven consecutive days ending today
	streakReadings := make([]*model.Reading, 7)
	for i := 0; i < 7; i++ {
		streakReadings[i] = &model.Reading{
			UserID: streakUser,
			Date:   time.Date(2024, 1, 7-i, 0, 0, 0, 0, time.UTC),
			Seeds:  model.SeedsPerReading,
		}
	}
	mockRepo.On("GetReadings", mock.Anything, streakUser, 0).Return(streakReadings, nil)
	mockRepo.On("CreateNotifications", mock.Anything, mock.MatchedBy(func(ns []*model.Notification) bool {
		return len(ns) == 1 && ns[0].UserID == streakUser &&
			ns[0].Type == model.NotificationAchievement &&
			ns[0].Title == "🔥 ¡Racha de 7 días!"
	})).Return(nil).Once()

	// exactly 100 seeds, streak broken
	milestoneReadings := make([]*model.Reading, 10)
	for i := 0; i < 10; i++ {
		milestoneReadings[i] = &model.Reading{
			UserID: milestoneUser,
			Date:   time.Date(2023, 12, 20-2*i, 0, 0, 0, 0, time.UTC),
			Seeds:  10,
		}
	}
	mockRepo.On("GetReadings", mock.Anything, milestoneUser, 0).Return(milestoneReadings, nil)
	mockRepo.On("CreateNotifications", mock.Anything, mock.MatchedBy(func(ns []*model.Notification) bool {
		return len(ns) == 1 && ns[0].UserID == milestoneUser &&
			ns[0].Title == "🌱 ¡100 Semillas de Fe!"
	})).Return(nil).Once()

	mockRepo.On("GetReadings", mock.Anything, quietUser, 0).Return([]*model.Reading{}, nil)

	err := service.CheckStreaks(context.Background())

	require.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestRunTask_Unknown(t *testing.T) {
	mockRepo := &mocks.MockNotificationRepository{}
	service := newTestNotificationService(mockRepo, nil)

	_, err := service.RunTask(context.Background(), "bogus")
	assert.ErrorIs(t, err, ErrUnknownTask)
}

func TestRunTask_VerseOfDay(t *testing.T) {
	mockRepo := &mocks.MockNotificationRepository{}
	service := newTestNotificationService(mockRepo, nil)

	users := []uuid.UUID{uuid.New(), uuid.New()}
	mockRepo.On("GetAllUserIDs", mock.Anything).Return(users, nil)
	mockRepo.On("CreateNotifications", mock.Anything, mock.MatchedBy(func(ns []*model.Notification) bool {
		return len(ns) == 2 && ns[0].Type == model.NotificationVerseOfDay
	})).Return(nil)

	msg, err := service.RunTask(context.Background(), TaskVerseOfDay)

	require.NoError(t, err)
	assert.Equal(t, "verse of the day sent to 2 users", msg)
}
