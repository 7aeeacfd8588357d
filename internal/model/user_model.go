package model

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	Id                    uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email                 string    `gorm:"type:varchar(255);index"`
	Role                  string    `gorm:"type:varchar(20);not null;default:user"`
	CreatedAt             time.Time `gorm:"autoCreateTime"`
	UpdatedAt             time.Time `gorm:"autoUpdateTime"`
	AiDailyUsage          int       `gorm:"not null;default:0"`
	AiDailyUsageLastReset time.Time
	AiDailyLimitOverride  *int
}

func (User) TableName() string {
	return "users"
}
