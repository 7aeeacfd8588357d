package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"strings"
	"time"

	"ai-fitcoach-be/internal/config"
	"ai-fitcoach-be/internal/constant"
	"ai-fitcoach-be/internal/dto"
	"ai-fitcoach-be/internal/entity"
	"ai-fitcoach-be/internal/pkg/logger"
	"ai-fitcoach-be/internal/repository/memory"
	"ai-fitcoach-be/internal/repository/specification"
	"ai-fitcoach-be/internal/repository/unitofwork"
	"ai-fitcoach-be/pkg/access"
	"ai-fitcoach-be/pkg/events"
	"ai-fitcoach-be/pkg/llm"
	"ai-fitcoach-be/pkg/lock"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

var allowedChatImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

type IChatService interface {
	SendMessage(ctx context.Context, caller dto.Caller, request *dto.SendChatRequest) (*dto.SendChatResponse, error)
}

type chatService struct {
	uowFactory unitofwork.RepositoryFactory
	guests     *memory.GuestConversationRepository
	provider   llm.LLMProvider
	verifier   *access.Verifier
	locks      *lock.Keyed
	publisher  events.Publisher
	logger     logger.ILogger
	chatCfg    config.ChatConfig
	aiCfg      config.AIConfig
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	guests *memory.GuestConversationRepository,
	provider llm.LLMProvider,
	verifier *access.Verifier,
	locks *lock.Keyed,
	publisher events.Publisher,
	log logger.ILogger,
	chatCfg config.ChatConfig,
	aiCfg config.AIConfig,
) IChatService {
	return &chatService{
		uowFactory: uowFactory,
		guests:     guests,
		provider:   provider,
		verifier:   verifier,
		locks:      locks,
		publisher:  publisher,
		logger:     log,
		chatCfg:    chatCfg,
		aiCfg:      aiCfg,
	}
}

// SendMessage appends one user/assistant pair, creating the conversation on the first message.
func (cs *chatService) SendMessage(ctx context.Context, caller dto.Caller, request *dto.SendChatRequest) (*dto.SendChatResponse, error) {
	text := strings.TrimSpace(request.Message)
	if text == "" && request.Image == nil {
		return nil, dto.NewValidationError("message cannot be empty")
	}
	if request.Image != nil {
		if err := cs.validateImage(request.Image); err != nil {
			return nil, err
		}
	}

	if caller.IsGuest {
		return cs.sendAsGuest(ctx, text, request)
	}
	return cs.sendAsUser(ctx, caller, text, request)
}

func (cs *chatService) validateImage(img *dto.ChatImage) error {
	if len(img.Data) == 0 {
		return dto.NewFileUploadError("image is empty", "empty")
	}
	if cs.chatCfg.MaxImageBytes > 0 && len(img.Data) > cs.chatCfg.MaxImageBytes {
		return dto.NewFileTooLargeError(fmt.Sprintf("image exceeds %d MB", cs.chatCfg.MaxImageBytes/(1024*1024)))
	}

	detected, _, _ := mime.ParseMediaType(mimetype.Detect(img.Data).String())
	if !allowedChatImageTypes[detected] {
		return dto.NewFileUploadError("unsupported image type", detected)
	}
	img.MimeType = detected
	return nil
}

func (cs *chatService) sendAsUser(ctx context.Context, caller dto.Caller, text string, request *dto.SendChatRequest) (*dto.SendChatResponse, error) {
	// one exchange per user at a time keeps appends ordered and the quota exact
	unlock, err := cs.locks.Lock(ctx, "chat:user:"+caller.UserId.String())
	if err != nil {
		return nil, err
	}
	defer unlock()

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	user, err := cs.verifier.EnsureUser(ctx, uow, caller)
	if err != nil {
		return nil, err
	}
	if _, err := cs.verifier.VerifyAccessAndLimits(ctx, uow, user); err != nil {
		return nil, err
	}

	var conversation *entity.Conversation
	var history []*entity.ChatMessage
	isNew := request.ConversationId == ""

	if !isNew {
		conversationId, err := uuid.Parse(request.ConversationId)
		if err != nil {
			return nil, dto.NewNotFoundError("conversation not found")
		}
		conversation, err = uow.ConversationRepository().FindOne(ctx,
			specification.ByID{ID: conversationId},
			specification.UserOwnedBy{UserID: user.Id},
		)
		if err != nil {
			return nil, err
		}
		if conversation == nil {
			return nil, dto.NewNotFoundError("conversation not found")
		}

		history, err = uow.ChatMessageRepository().FindAll(ctx,
			specification.ByConversationID{ConversationID: conversation.Id},
			specification.RecentFirst{Limit: cs.chatCfg.HistoryWindow},
		)
		if err != nil {
			return nil, err
		}
		reverseMessages(history)
	}

	userMessage := cs.newUserMessage(text, request.Image)
	reply, err := cs.generate(ctx, history, userMessage)
	if err != nil {
		return nil, err
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if isNew {
		conversation = &entity.Conversation{
			UserId:    user.Id,
			Title:     conversationTitle(text),
			CreatedAt: userMessage.CreatedAt,
		}
		if err := uow.ConversationRepository().Create(ctx, conversation); err != nil {
			return nil, err
		}
	}

	userMessage.ConversationId = conversation.Id
	if err := uow.ChatMessageRepository().Create(ctx, userMessage); err != nil {
		return nil, err
	}

	assistantMessage := &entity.ChatMessage{
		ConversationId: conversation.Id,
		Role:           constant.ChatMessageRoleAssistant,
		Content:        reply,
		CreatedAt:      laterThan(userMessage.CreatedAt),
	}
	if err := uow.ChatMessageRepository().Create(ctx, assistantMessage); err != nil {
		return nil, err
	}

	preview := truncateRunes(reply, constant.ConversationPreviewMaxRunes)
	updatedAt := assistantMessage.CreatedAt
	conversation.LastMessage = &preview
	conversation.MessageCount += 2
	conversation.UpdatedAt = &updatedAt
	if err := uow.ConversationRepository().Update(ctx, conversation); err != nil {
		return nil, err
	}

	if err := cs.verifier.IncrementUserUsage(ctx, uow, user.Id); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	cs.emit(ctx, events.New(events.TypeChatSent, map[string]interface{}{
		"user_id":          user.Id.String(),
		"conversation_id":  conversation.Id.String(),
		"new_conversation": isNew,
		"has_image":        userMessage.HasImage(),
	}))

	return &dto.SendChatResponse{
		ConversationId:   conversation.Id,
		Title:            conversation.Title,
		Content:          reply,
		UserMessage:      ChatMessageToDTO(userMessage),
		AssistantMessage: ChatMessageToDTO(assistantMessage),
	}, nil
}

// sendAsGuest keeps the whole exchange in memory. Guest quota is tracked by the client.
func (cs *chatService) sendAsGuest(ctx context.Context, text string, request *dto.SendChatRequest) (*dto.SendChatResponse, error) {
	var conv *entity.GuestConversation

	if request.ConversationId == "" {
		now := time.Now()
		conv = &entity.GuestConversation{
			Conversation: entity.Conversation{
				Id:        uuid.New(),
				Title:     conversationTitle(text),
				CreatedAt: now,
			},
		}
	} else {
		conversationId, err := uuid.Parse(request.ConversationId)
		if err != nil {
			return nil, dto.NewNotFoundError("conversation not found")
		}
		unlock, err := cs.locks.Lock(ctx, "chat:guest:"+conversationId.String())
		if err != nil {
			return nil, err
		}
		defer unlock()

		var found bool
		conv, found = cs.guests.Get(conversationId)
		if !found {
			return nil, dto.NewNotFoundError("conversation not found")
		}
	}

	history := make([]*entity.ChatMessage, 0, len(conv.Messages))
	start := 0
	if window := cs.chatCfg.HistoryWindow; window > 0 && len(conv.Messages) > window {
		start = len(conv.Messages) - window
	}
	for i := start; i < len(conv.Messages); i++ {
		history = append(history, &conv.Messages[i])
	}

	userMessage := cs.newUserMessage(text, request.Image)
	reply, err := cs.generate(ctx, history, userMessage)
	if err != nil {
		return nil, err
	}

	userMessage.Id = uuid.New()
	userMessage.ConversationId = conv.Conversation.Id
	assistantMessage := &entity.ChatMessage{
		Id:             uuid.New(),
		ConversationId: conv.Conversation.Id,
		Role:           constant.ChatMessageRoleAssistant,
		Content:        reply,
		CreatedAt:      laterThan(userMessage.CreatedAt),
	}

	preview := truncateRunes(reply, constant.ConversationPreviewMaxRunes)
	updatedAt := assistantMessage.CreatedAt
	conv.Messages = append(conv.Messages, *userMessage, *assistantMessage)
	conv.Conversation.LastMessage = &preview
	conv.Conversation.MessageCount = len(conv.Messages)
	conv.Conversation.UpdatedAt = &updatedAt
	cs.guests.Save(conv)

	return &dto.SendChatResponse{
		ConversationId:   conv.Conversation.Id,
		Title:            conv.Conversation.Title,
		Content:          reply,
		UserMessage:      ChatMessageToDTO(userMessage),
		AssistantMessage: ChatMessageToDTO(assistantMessage),
	}, nil
}

func (cs *chatService) newUserMessage(text string, image *dto.ChatImage) *entity.ChatMessage {
	msg := &entity.ChatMessage{
		Role:      constant.ChatMessageRoleUser,
		Content:   text,
		CreatedAt: time.Now(),
	}
	if image != nil {
		data := base64.StdEncoding.EncodeToString(image.Data)
		mimeType := image.MimeType
		msg.ImageData = &data
		msg.ImageMimeType = &mimeType
	}
	return msg
}

// generate builds the prompt from the system message, prior turns and the new message.
// Only the new message carries its image; earlier images are not resent.
func (cs *chatService) generate(ctx context.Context, history []*entity.ChatMessage, current *entity.ChatMessage) (string, error) {
	prompt := make([]llm.Message, 0, len(history)+2)
	prompt = append(prompt, llm.Message{Role: llm.RoleSystem, Content: constant.CoachSystemPromptV1})
	for _, m := range history {
		content := m.Content
		if content == "" && m.HasImage() {
			content = constant.ImageOnlyUserPrompt
		}
		prompt = append(prompt, llm.Message{Role: m.Role, Content: content})
	}

	next := llm.Message{Role: llm.RoleUser, Content: current.Content}
	if current.HasImage() {
		next.Images = []string{*current.ImageData}
		if next.Content == "" {
			next.Content = constant.ImageOnlyUserPrompt
		}
	}
	prompt = append(prompt, next)

	started := time.Now()
	reply, err := cs.provider.Chat(ctx, prompt, llm.WithTemperature(cs.aiCfg.Temperature))
	if err != nil {
		cs.logger.Error("CHAT", "generation failed", map[string]interface{}{
			"error":       err.Error(),
			"duration_ms": time.Since(started).Milliseconds(),
		})
		return "", dto.NewNetworkError("the coach is unavailable right now, please try again", err)
	}
	cs.logger.Debug("CHAT", "generation finished", map[string]interface{}{
		"history":     len(history),
		"duration_ms": time.Since(started).Milliseconds(),
	})
	return strings.TrimSpace(reply), nil
}

func (cs *chatService) emit(ctx context.Context, event events.Event) {
	if cs.publisher == nil {
		return
	}
	if err := cs.publisher.Publish(ctx, event); err != nil {
		cs.logger.Warn("EVENTS", "failed to publish event", map[string]interface{}{
			"type":  event.EventType(),
			"error": err.Error(),
		})
	}
}
