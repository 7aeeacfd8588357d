package service

import (
	"context"
	"errors"
	"testing"

	"ai-fitcoach-be/internal/dto"
	"ai-fitcoach-be/internal/model"
	"ai-fitcoach-be/pkg/events"
	"ai-fitcoach-be/pkg/llm"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countRows(t *testing.T, f *chatFixture, m interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(m).Count(&n).Error)
	return n
}

func TestSendMessageCreatesConversationOnceAndReusesId(t *testing.T) {
	ctx := context.Background()
	f := newChatFixture(t, 10)
	caller := dto.Caller{UserId: uuid.New(), Email: "a@fit.io"}

	first, err := f.chat.SendMessage(ctx, caller, &dto.SendChatRequest{Message: "  How do I   start squatting? "})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, first.ConversationId)
	assert.Equal(t, "How do I start squatting?", first.Title)
	assert.Equal(t, "Do three sets of ten.", first.Content)
	require.NotNil(t, first.AssistantMessage)
	assert.NotEqual(t, uuid.Nil, first.AssistantMessage.Id)
	assert.Equal(t, "user", first.UserMessage.Role)

	second, err := f.chat.SendMessage(ctx, caller, &dto.SendChatRequest{
		Message:        "And how often?",
		ConversationId: first.ConversationId.String(),
	})
	require.NoError(t, err)
	assert.Equal(t, first.ConversationId, second.ConversationId)

	assert.Equal(t, int64(1), countRows(t, f, &model.Conversation{}))
	assert.Equal(t, int64(4), countRows(t, f, &model.ChatMessage{}))

	var conv model.Conversation
	require.NoError(t, f.db.First(&conv, "id = ?", first.ConversationId).Error)
	assert.Equal(t, 4, conv.MessageCount)
	require.NotNil(t, conv.LastMessage)
	assert.Equal(t, "Do three sets of ten.", *conv.LastMessage)

	// second call saw the first exchange as history
	require.Equal(t, 2, f.llm.CallCount())
	prompt := f.llm.Calls[1]
	require.Len(t, prompt, 4)
	assert.Equal(t, llm.RoleSystem, prompt[0].Role)
	assert.Equal(t, "How do I start squatting?", prompt[1].Content)
	assert.Equal(t, llm.RoleAssistant, prompt[2].Role)
	assert.Equal(t, "And how often?", prompt[3].Content)

	var user model.User
	require.NoError(t, f.db.First(&user, "id = ?", caller.UserId).Error)
	assert.Equal(t, 2, user.AiDailyUsage)

	assert.Equal(t, []string{events.TypeChatSent, events.TypeChatSent}, f.publisher.Types())
}

func TestSendMessageRejectsEmptyText(t *testing.T) {
	f := newChatFixture(t, 10)

	for _, caller := range []dto.Caller{dto.GuestCaller(), {UserId: uuid.New()}} {
		_, err := f.chat.SendMessage(context.Background(), caller, &dto.SendChatRequest{Message: "   \n"})
		var appErr *dto.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, dto.ErrorKindValidation, appErr.Kind)
	}
	assert.Equal(t, 0, f.llm.CallCount())
}

func TestSendMessageGenerationFailurePersistsNothing(t *testing.T) {
	f := newChatFixture(t, 10)
	f.llm.Err = errors.New("connection refused")

	_, err := f.chat.SendMessage(context.Background(), dto.Caller{UserId: uuid.New()}, &dto.SendChatRequest{Message: "hi"})
	var appErr *dto.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, dto.ErrorKindNetwork, appErr.Kind)

	assert.Equal(t, int64(0), countRows(t, f, &model.Conversation{}))
	assert.Equal(t, int64(0), countRows(t, f, &model.ChatMessage{}))
	assert.Empty(t, f.publisher.Types())
}

func TestSendMessageStopsAtDailyLimit(t *testing.T) {
	ctx := context.Background()
	f := newChatFixture(t, 1)
	caller := dto.Caller{UserId: uuid.New()}

	_, err := f.chat.SendMessage(ctx, caller, &dto.SendChatRequest{Message: "one"})
	require.NoError(t, err)

	_, err = f.chat.SendMessage(ctx, caller, &dto.SendChatRequest{Message: "two"})
	var limitErr *dto.LimitExceededError
	require.ErrorAs(t, err, &limitErr)
	assert.Equal(t, 1, limitErr.Limit)
	assert.Equal(t, 1, f.llm.CallCount())
	assert.Equal(t, int64(2), countRows(t, f, &model.ChatMessage{}))
}

func TestSendMessageUnknownOrForeignConversation(t *testing.T) {
	ctx := context.Background()
	f := newChatFixture(t, 10)
	owner := dto.Caller{UserId: uuid.New()}

	res, err := f.chat.SendMessage(ctx, owner, &dto.SendChatRequest{Message: "mine"})
	require.NoError(t, err)

	for _, id := range []string{uuid.NewString(), "not-a-uuid", res.ConversationId.String()} {
		_, err := f.chat.SendMessage(ctx, dto.Caller{UserId: uuid.New()}, &dto.SendChatRequest{Message: "x", ConversationId: id})
		var appErr *dto.AppError
		require.ErrorAs(t, err, &appErr, id)
		assert.Equal(t, dto.ErrorKindNotFound, appErr.Kind)
	}
}

func TestSendMessageWithImage(t *testing.T) {
	ctx := context.Background()
	f := newChatFixture(t, 10)
	caller := dto.Caller{UserId: uuid.New()}

	res, err := f.chat.SendMessage(ctx, caller, &dto.SendChatRequest{
		Image: &dto.ChatImage{FileName: "meal.png", Data: pngBytes},
	})
	require.NoError(t, err)
	assert.Equal(t, "Photo check-in", res.Title)
	require.NotNil(t, res.UserMessage.Image)
	assert.Equal(t, "image/png", res.UserMessage.Image.MimeType)

	prompt := f.llm.Calls[0]
	last := prompt[len(prompt)-1]
	require.Len(t, last.Images, 1)
	assert.Equal(t, res.UserMessage.Image.Data, last.Images[0])
	assert.NotEmpty(t, last.Content)

	t.Run("unsupported type", func(t *testing.T) {
		_, err := f.chat.SendMessage(ctx, caller, &dto.SendChatRequest{
			Message: "look",
			Image:   &dto.ChatImage{FileName: "notes.txt", Data: []byte("just some text")},
		})
		var appErr *dto.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, dto.ErrorKindFileUpload, appErr.Kind)
	})

	t.Run("too large", func(t *testing.T) {
		big := append(append([]byte{}, pngBytes...), make([]byte, 2048)...)
		_, err := f.chat.SendMessage(ctx, caller, &dto.SendChatRequest{Image: &dto.ChatImage{Data: big}})
		var appErr *dto.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, dto.FileTooLargeDetail, appErr.Detail)
	})
}

func TestSendMessageHistoryWindow(t *testing.T) {
	ctx := context.Background()
	f := newChatFixture(t, -1)
	caller := dto.Caller{UserId: uuid.New()}

	res, err := f.chat.SendMessage(ctx, caller, &dto.SendChatRequest{Message: "m1"})
	require.NoError(t, err)
	for _, m := range []string{"m2", "m3", "m4"} {
		_, err := f.chat.SendMessage(ctx, caller, &dto.SendChatRequest{Message: m, ConversationId: res.ConversationId.String()})
		require.NoError(t, err)
	}

	// system + 4 most recent stored messages + the new one
	prompt := f.llm.Calls[3]
	require.Len(t, prompt, 6)
	assert.Equal(t, "m2", prompt[1].Content)
	assert.Equal(t, "m4", prompt[5].Content)
}

func TestGuestConversationLivesInMemory(t *testing.T) {
	ctx := context.Background()
	f := newChatFixture(t, 10)
	guest := dto.GuestCaller()

	first, err := f.chat.SendMessage(ctx, guest, &dto.SendChatRequest{Message: "hello", IsGuest: true})
	require.NoError(t, err)
	second, err := f.chat.SendMessage(ctx, guest, &dto.SendChatRequest{Message: "again", IsGuest: true, ConversationId: first.ConversationId.String()})
	require.NoError(t, err)
	assert.Equal(t, first.ConversationId, second.ConversationId)

	assert.Equal(t, int64(0), countRows(t, f, &model.Conversation{}))
	stored, ok := f.guests.Get(first.ConversationId)
	require.True(t, ok)
	assert.Len(t, stored.Messages, 4)
	assert.Equal(t, 4, stored.Conversation.MessageCount)

	_, err = f.chat.SendMessage(ctx, guest, &dto.SendChatRequest{Message: "x", ConversationId: uuid.NewString()})
	var appErr *dto.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, dto.ErrorKindNotFound, appErr.Kind)
}
