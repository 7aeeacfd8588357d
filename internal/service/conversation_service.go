package service

import (
	"context"

	"ai-fitcoach-be/internal/dto"
	"ai-fitcoach-be/internal/entity"
	"ai-fitcoach-be/internal/pkg/logger"
	"ai-fitcoach-be/internal/repository/memory"
	"ai-fitcoach-be/internal/repository/specification"
	"ai-fitcoach-be/internal/repository/unitofwork"
	"ai-fitcoach-be/pkg/events"
	"ai-fitcoach-be/pkg/lock"

	"github.com/google/uuid"
)

type IConversationService interface {
	List(ctx context.Context, caller dto.Caller) (*dto.ListConversationsResponse, error)
	GetMessages(ctx context.Context, caller dto.Caller, conversationId string) (*dto.ConversationMessagesResponse, error)
	Delete(ctx context.Context, caller dto.Caller, conversationId string) error
}

type conversationService struct {
	uowFactory unitofwork.RepositoryFactory
	guests     *memory.GuestConversationRepository
	locks      *lock.Keyed
	publisher  events.Publisher
	logger     logger.ILogger
}

func NewConversationService(
	uowFactory unitofwork.RepositoryFactory,
	guests *memory.GuestConversationRepository,
	locks *lock.Keyed,
	publisher events.Publisher,
	log logger.ILogger,
) IConversationService {
	return &conversationService{
		uowFactory: uowFactory,
		guests:     guests,
		locks:      locks,
		publisher:  publisher,
		logger:     log,
	}
}

// List returns the caller's conversations, most recently active first.
func (s *conversationService) List(ctx context.Context, caller dto.Caller) (*dto.ListConversationsResponse, error) {
	if caller.IsGuest {
		return nil, dto.NewAuthenticationError("sign in to see your conversations")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	conversations, err := uow.ConversationRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: caller.UserId},
		specification.OrderBy{Field: "updated_at", Desc: true},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	res := &dto.ListConversationsResponse{Conversations: make([]*dto.ConversationDTO, 0, len(conversations))}
	for _, c := range conversations {
		res.Conversations = append(res.Conversations, ConversationToDTO(c))
	}
	return res, nil
}

func (s *conversationService) GetMessages(ctx context.Context, caller dto.Caller, conversationId string) (*dto.ConversationMessagesResponse, error) {
	id, err := uuid.Parse(conversationId)
	if err != nil {
		return nil, dto.NewNotFoundError("conversation not found")
	}

	if caller.IsGuest {
		conv, found := s.guests.Get(id)
		if !found {
			return nil, dto.NewNotFoundError("conversation not found")
		}
		messages := make([]*entity.ChatMessage, len(conv.Messages))
		for i := range conv.Messages {
			messages[i] = &conv.Messages[i]
		}
		return buildMessagesResponse(&conv.Conversation, messages), nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	conversation, err := uow.ConversationRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.UserOwnedBy{UserID: caller.UserId},
	)
	if err != nil {
		return nil, err
	}
	if conversation == nil {
		return nil, dto.NewNotFoundError("conversation not found")
	}

	messages, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByConversationID{ConversationID: conversation.Id},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}
	return buildMessagesResponse(conversation, messages), nil
}

// Delete removes a conversation together with its messages.
func (s *conversationService) Delete(ctx context.Context, caller dto.Caller, conversationId string) error {
	id, err := uuid.Parse(conversationId)
	if err != nil {
		return dto.NewNotFoundError("conversation not found")
	}

	if caller.IsGuest {
		unlock, err := s.locks.Lock(ctx, "chat:guest:"+id.String())
		if err != nil {
			return err
		}
		defer unlock()

		if !s.guests.Delete(id) {
			return dto.NewNotFoundError("conversation not found")
		}
		return nil
	}

	// wait for an in-flight exchange so its reply is not written into a deleted thread
	unlock, err := s.locks.Lock(ctx, "chat:user:"+caller.UserId.String())
	if err != nil {
		return err
	}
	defer unlock()

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	conversation, err := uow.ConversationRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.UserOwnedBy{UserID: caller.UserId},
	)
	if err != nil {
		return err
	}
	if conversation == nil {
		return dto.NewNotFoundError("conversation not found")
	}

	if err := uow.ChatMessageRepository().DeleteByConversationId(ctx, conversation.Id); err != nil {
		return err
	}
	if err := uow.ConversationRepository().Delete(ctx, conversation.Id); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, events.New(events.TypeConversationDeleted, map[string]interface{}{
			"user_id":         caller.UserId.String(),
			"conversation_id": conversation.Id.String(),
		})); err != nil {
			s.logger.Warn("EVENTS", "failed to publish event", map[string]interface{}{"error": err.Error()})
		}
	}
	return nil
}

func buildMessagesResponse(conversation *entity.Conversation, messages []*entity.ChatMessage) *dto.ConversationMessagesResponse {
	out := &dto.ConversationWithMessagesDTO{
		ConversationDTO: *ConversationToDTO(conversation),
		Messages:        make([]*dto.ChatMessageDTO, 0, len(messages)),
	}
	for _, m := range messages {
		out.Messages = append(out.Messages, ChatMessageToDTO(m))
	}
	return &dto.ConversationMessagesResponse{Conversation: out}
}
