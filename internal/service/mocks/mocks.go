// Package mocks contains testify mocks for the repository and
// collaborator interfaces consumed by the service layer.
package mocks

import (
	"context"
	"time"

	"selapp/internal/model"
	"selapp/pkg/webpush"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateUser(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

type MockReadingRepository struct {
	mock.Mock
}

func (m *MockReadingRepository) CreateReading(ctx context.Context, reading *model.Reading) error {
	args := m.Called(ctx, reading)
	return args.Error(0)
}

func (m *MockReadingRepository) GetReadings(ctx context.Context, userID uuid.UUID, limit int) ([]*model.Reading, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Reading), args.Error(1)
}

type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) CreateNotifications(ctx context.Context, ns []*model.Notification) error {
	args := m.Called(ctx, ns)
	return args.Error(0)
}

func (m *MockNotificationRepository) GetNotifications(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]*model.Notification, error) {
	args := m.Called(ctx, userID, unreadOnly, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Notification), args.Error(1)
}

func (m *MockNotificationRepository) CountUnreadNotifications(ctx context.Context, userID uuid.UUID) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockNotificationRepository) MarkNotificationsRead(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) error {
	args := m.Called(ctx, userID, ids)
	return args.Error(0)
}

func (m *MockNotificationRepository) DeleteNotification(ctx context.Context, userID, id uuid.UUID) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

func (m *MockNotificationRepository) DeleteReadNotifications(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationRepository) UpsertPushSubscription(ctx context.Context, sub *model.PushSubscription) error {
	args := m.Called(ctx, sub)
	return args.Error(0)
}

func (m *MockNotificationRepository) GetPushSubscriptions(ctx context.Context, userID uuid.UUID) ([]*model.PushSubscription, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.PushSubscription), args.Error(1)
}

func (m *MockNotificationRepository) DeletePushSubscription(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockNotificationRepository) DeletePushSubscriptionByEndpoint(ctx context.Context, userID uuid.UUID, endpoint string) error {
	args := m.Called(ctx, userID, endpoint)
	return args.Error(0)
}

func (m *MockNotificationRepository) DeletePushSubscriptionsForUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationRepository) GetAllUserIDs(ctx context.Context) ([]uuid.UUID, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockNotificationRepository) GetUserIDsWithoutReadingOn(ctx context.Context, candidates []uuid.UUID, day time.Time) ([]uuid.UUID, error) {
	args := m.Called(ctx, candidates, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockNotificationRepository) GetUserIDsWithoutDiaryOn(ctx context.Context, candidates []uuid.UUID, day time.Time) ([]uuid.UUID, error) {
	args := m.Called(ctx, candidates, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockNotificationRepository) GetReadings(ctx context.Context, userID uuid.UUID, limit int) ([]*model.Reading, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Reading), args.Error(1)
}

type MockPushSender struct {
	mock.Mock
}

func (m *MockPushSender) Send(ctx context.Context, sub webpush.Subscription, payload []byte) error {
	args := m.Called(ctx, sub, payload)
	return args.Error(0)
}
