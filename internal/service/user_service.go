package service

import (
	"context"

	"ai-fitcoach-be/internal/dto"
	"ai-fitcoach-be/internal/entity"
	"ai-fitcoach-be/internal/repository/unitofwork"
	"ai-fitcoach-be/pkg/access"
)

type IUserService interface {
	GetProfile(ctx context.Context, caller dto.Caller) (*dto.UserProfileResponse, error)
}

type userService struct {
	uowFactory unitofwork.RepositoryFactory
	verifier   *access.Verifier
}

func NewUserService(uowFactory unitofwork.RepositoryFactory, verifier *access.Verifier) IUserService {
	return &userService{
		uowFactory: uowFactory,
		verifier:   verifier,
	}
}

// GetProfile returns the local record for the token's identity, provisioning it on first call.
func (s *userService) GetProfile(ctx context.Context, caller dto.Caller) (*dto.UserProfileResponse, error) {
	if caller.IsGuest {
		return nil, dto.NewAuthenticationError("login required")
	}
	user, err := s.verifier.EnsureUser(ctx, s.uowFactory.NewUnitOfWork(ctx), caller)
	if err != nil {
		return nil, err
	}
	return userToProfile(user), nil
}

func userToProfile(u *entity.User) *dto.UserProfileResponse {
	return &dto.UserProfileResponse{
		Id:                   u.Id,
		Email:                u.Email,
		Role:                 string(u.Role),
		AiDailyUsage:         u.AiDailyUsage,
		AiDailyLimitOverride: u.AiDailyLimitOverride,
		CreatedAt:            u.CreatedAt,
	}
}
