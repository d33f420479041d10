package model

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID               uuid.UUID
	Email            string
	Name             string
	PasswordHash     string
	IsAdmin          bool
	RegistrationDate time.Time
	LastLoginDate    time.Time
}
