package entity

import (
	"time"

	"github.com/google/uuid"
)

type UserRole string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"
)

// User mirrors an identity issued by the external auth provider.
// Rows are provisioned lazily on the first authenticated request.
type User struct {
	Id                    uuid.UUID
	Email                 string
	Role                  UserRole
	CreatedAt             time.Time
	UpdatedAt             time.Time
	AiDailyUsage          int
	AiDailyUsageLastReset time.Time
	AiDailyLimitOverride  *int
}
