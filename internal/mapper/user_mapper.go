package mapper

import (
	"ai-fitcoach-be/internal/entity"
	"ai-fitcoach-be/internal/model"
)

type UserMapper struct{}

func NewUserMapper() *UserMapper {
	return &UserMapper{}
}

func (m *UserMapper) ToEntity(u *model.User) *entity.User {
	if u == nil {
		return nil
	}
	return &entity.User{
		Id:                    u.Id,
		Email:                 u.Email,
		Role:                  entity.UserRole(u.Role),
		CreatedAt:             u.CreatedAt,
		UpdatedAt:             u.UpdatedAt,
		AiDailyUsage:          u.AiDailyUsage,
		AiDailyUsageLastReset: u.AiDailyUsageLastReset,
		AiDailyLimitOverride:  u.AiDailyLimitOverride,
	}
}

func (m *UserMapper) ToModel(u *entity.User) *model.User {
	if u == nil {
		return nil
	}
	role := string(u.Role)
	if role == "" {
		role = string(entity.UserRoleUser)
	}
	return &model.User{
		Id:                    u.Id,
		Email:                 u.Email,
		Role:                  role,
		CreatedAt:             u.CreatedAt,
		UpdatedAt:             u.UpdatedAt,
		AiDailyUsage:          u.AiDailyUsage,
		AiDailyUsageLastReset: u.AiDailyUsageLastReset,
		AiDailyLimitOverride:  u.AiDailyLimitOverride,
	}
}
