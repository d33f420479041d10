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
	"golang.org/x/crypto/bcrypt"
)

func TestUserService_Register(t *testing.T) {
	t.Run("hashes password and normalizes email", func(t *testing.T) {
		mockRepo := &mocks.MockUserRepository{}
		service := NewUserService(mockRepo)

		mockRepo.On("CreateUser", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
			return u.Email == "ana@example.com" &&
				u.Name == "Ana" &&
				u.PasswordHash != "secret-password" &&
				bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("secret-password")) == nil
		})).Return(nil)

		user, err := service.Register(context.Background(), "  Ana@Example.com ", "Ana", "secret-password")

		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, user.ID)
		mockRepo.AssertExpectations(t)
	})

	t.Run("duplicate email", func(t *testing.T) {
		mockRepo := &mocks.MockUserRepository{}
		service := NewUserService(mockRepo)

		mockRepo.On("CreateUser", mock.Anything, mock.Anything).
			Return(repository.ErrEmailTaken)

		_, err := service.Register(context.Background(), "ana@example.com", "Ana", "secret-password")
		assert.ErrorIs(t, err, ErrEmailTaken)
	})
}

func TestUserService_Login(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret-password"), bcrypt.MinCost)
	require.NoError(t, err)

	stored := &model.User{
		ID:           uuid.New(),
		Email:        "ana@example.com",
		Name:         "Ana",
		PasswordHash: string(hash),
	}

	t.Run("success", func(t *testing.T) {
		mockRepo := &mocks.MockUserRepository{}
		service := NewUserService(mockRepo)

		mockRepo.On("GetUserByEmail", mock.Anything, "ana@example.com").Return(stored, nil)
		mockRepo.On("UpdateLastLogin", mock.Anything, stored.ID, mock.MatchedBy(func(at time.Time) bool {
			return time.Since(at) < 2*time.Second
		})).Return(nil)

		user, err := service.Login(context.Background(), "ana@example.com", "secret-password")

		require.NoError(t, err)
		assert.Equal(t, stored.ID, user.ID)
		mockRepo.AssertExpectations(t)
	})

	t.Run("wrong password", func(t *testing.T) {
		mockRepo := &mocks.MockUserRepository{}
		service := NewUserService(mockRepo)

		mockRepo.On("GetUserByEmail", mock.Anything, "ana@example.com").Return(stored, nil)

		_, err := service.Login(context.Background(), "ana@example.com", "wrong")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		mockRepo.AssertNotCalled(t, "UpdateLastLogin", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown email maps to invalid credentials", func(t *testing.T) {
		mockRepo := &mocks.MockUserRepository{}
		service := NewUserService(mockRepo)

		mockRepo.On("GetUserByEmail", mock.Anything, "nobody@example.com").
			Return(nil, repository.ErrNotFound)

		_, err := service.Login(context.Background(), "nobody@example.com", "secret-password")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}
