package unitofwork

import (
	"context"

	"ai-fitcoach-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	ConversationRepository() contract.ConversationRepository
	ChatMessageRepository() contract.ChatMessageRepository
	SubscriptionRepository() contract.SubscriptionRepository
	KnowledgeRepository() contract.KnowledgeRepository
	ExerciseRepository() contract.ExerciseRepository
}
