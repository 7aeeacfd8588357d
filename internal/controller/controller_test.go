package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"ai-fitcoach-be/internal/dto"
	"ai-fitcoach-be/internal/pkg/logger"
	"ai-fitcoach-be/internal/pkg/serverutils"
	"ai-fitcoach-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test_secret"

func newApp(register func(api fiber.Router, jwt, optionalJwt fiber.Handler)) *fiber.App {
	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware(logger.NewNopLogger()))
	register(app.Group("/api"), serverutils.NewJwtMiddleware(secret, false), serverutils.NewJwtMiddleware(secret, true))
	return app
}

func token(t *testing.T, caller dto.Caller) string {
	t.Helper()
	tok, err := serverutils.SignToken(secret, caller, jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()})
	require.NoError(t, err)
	return tok
}

func do(t *testing.T, app *fiber.App, req *http.Request, bearer string) *http.Response {
	t.Helper()
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

type stubChat struct {
	caller dto.Caller
	req    *dto.SendChatRequest
}

func (s *stubChat) SendMessage(_ context.Context, caller dto.Caller, req *dto.SendChatRequest) (*dto.SendChatResponse, error) {
	s.caller, s.req = caller, req
	if req.Message == "" {
		return nil, dto.NewValidationError("message is required")
	}
	return &dto.SendChatResponse{ConversationId: uuid.New(), Content: "ok"}, nil
}

func TestChatController(t *testing.T) {
	chat := &stubChat{}
	app := newApp(func(api fiber.Router, _, optionalJwt fiber.Handler) {
		NewChatController(chat).RegisterRoutes(api, optionalJwt)
	})

	t.Run("guest flag required without token", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/chat", strings.NewReader(`{"message":"hi"}`))
		req.Header.Set("Content-Type", "application/json")
		resp := do(t, app, req, "")
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("guest json", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/chat", strings.NewReader(`{"message":"hi","isGuest":true}`))
		req.Header.Set("Content-Type", "application/json")
		resp := do(t, app, req, "")
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.True(t, chat.caller.IsGuest)

		var body dto.SendChatResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "ok", body.Content)
	})

	t.Run("authenticated multipart with image", func(t *testing.T) {
		userId := uuid.New()
		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)
		require.NoError(t, w.WriteField("message", "check my form"))
		part, err := w.CreateFormFile("image", "squat.png")
		require.NoError(t, err)
		_, _ = part.Write([]byte("\x89PNG\r\n\x1a\n"))
		require.NoError(t, w.Close())

		req := httptest.NewRequest("POST", "/api/chat", &buf)
		req.Header.Set("Content-Type", w.FormDataContentType())
		resp := do(t, app, req, token(t, dto.Caller{UserId: userId, Role: "user"}))
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, userId, chat.caller.UserId)
		assert.Equal(t, "check my form", chat.req.Message)
		require.NotNil(t, chat.req.Image)
		assert.Equal(t, "squat.png", chat.req.Image.FileName)
	})

	t.Run("service error is mapped", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/chat", strings.NewReader(`{"isGuest":true}`))
		req.Header.Set("Content-Type", "application/json")
		resp := do(t, app, req, "")
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})
}

type stubConversations struct {
	deleted string
}

func (s *stubConversations) List(context.Context, dto.Caller) (*dto.ListConversationsResponse, error) {
	return &dto.ListConversationsResponse{Conversations: []*dto.ConversationDTO{{Id: uuid.New(), Title: "Leg day"}}}, nil
}

func (s *stubConversations) GetMessages(_ context.Context, _ dto.Caller, id string) (*dto.ConversationMessagesResponse, error) {
	return nil, dto.NewNotFoundError("conversation not found")
}

func (s *stubConversations) Delete(_ context.Context, _ dto.Caller, id string) error {
	s.deleted = id
	return nil
}

func TestConversationController(t *testing.T) {
	convs := &stubConversations{}
	app := newApp(func(api fiber.Router, _, optionalJwt fiber.Handler) {
		NewConversationController(convs).RegisterRoutes(api, optionalJwt)
	})

	resp := do(t, app, httptest.NewRequest("GET", "/api/conversations", nil), "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var list dto.ListConversationsResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	require.Len(t, list.Conversations, 1)
	assert.Equal(t, "Leg day", list.Conversations[0].Title)

	resp = do(t, app, httptest.NewRequest("GET", "/api/conversations/abc/messages", nil), "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp = do(t, app, httptest.NewRequest("DELETE", "/api/conversations/abc", nil), "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "abc", convs.deleted)
	raw, _ := io.ReadAll(resp.Body)
	assert.JSONEq(t, `{"success":true}`, string(raw))
}

type stubKnowledge struct {
	service.IKnowledgeService
	download *dto.KnowledgeDownload
	owner    uuid.UUID
}

func (s *stubKnowledge) Download(_ context.Context, userId, _ uuid.UUID) (*dto.KnowledgeDownload, error) {
	if userId != s.owner {
		return nil, dto.NewNotFoundError("document not found")
	}
	return s.download, nil
}

func TestKnowledgeDownloadHeaders(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blob")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4 plan"), 0o600))
	owner := uuid.New()
	knowledge := &stubKnowledge{
		owner:    owner,
		download: &dto.KnowledgeDownload{FileName: "my plan.pdf", MimeType: "application/pdf", Size: 13, Path: path},
	}
	app := newApp(func(api fiber.Router, jwt, _ fiber.Handler) {
		NewKnowledgeController(knowledge).RegisterRoutes(api, jwt)
	})
	url := "/api/knowledge/" + uuid.NewString() + "/download"

	resp := do(t, app, httptest.NewRequest("GET", url, nil), "")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp = do(t, app, httptest.NewRequest("GET", url, nil), token(t, dto.Caller{UserId: uuid.New(), Role: "user"}))
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	tok := token(t, dto.Caller{UserId: owner, Role: "user"})
	resp = do(t, app, httptest.NewRequest("GET", url, nil), tok)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Disposition"), "attachment;"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "filename*=UTF-8''my%20plan.pdf")
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "%PDF-1.4 plan", string(body))

	resp = do(t, app, httptest.NewRequest("GET", url+"?inline=true", nil), tok)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Disposition"), "inline;"))

	resp = do(t, app, httptest.NewRequest("GET", "/api/knowledge/not-a-uuid/download", nil), tok)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestEncodeExtValue(t *testing.T) {
	cases := map[string]string{
		"plan.pdf":           "plan.pdf",
		"my plan.pdf":        "my%20plan.pdf",
		"coach's plan*.pdf":  "coach%27s%20plan%2A.pdf",
		"a/b%c;d.txt":        "a%2Fb%25c%3Bd.txt",
		"latihan-kaki_#1.md": "latihan-kaki_#1.md",
		"séance.pdf":         "s%C3%A9ance.pdf",
	}
	for in, want := range cases {
		assert.Equal(t, want, encodeExtValue(in), in)
	}
}

type stubExercises struct {
	service.IExerciseService
	created *dto.CategoryRequest
}

func (s *stubExercises) CreateCategory(_ context.Context, req *dto.CategoryRequest) (*dto.CategoryResponse, error) {
	s.created = req
	return &dto.CategoryResponse{Id: uuid.New(), Name: req.Name, Slug: req.Slug}, nil
}

func (s *stubExercises) ListCategories(context.Context) ([]*dto.CategoryResponse, error) {
	return []*dto.CategoryResponse{}, nil
}

func TestExerciseAdminGuard(t *testing.T) {
	exercises := &stubExercises{}
	app := newApp(func(api fiber.Router, jwt, _ fiber.Handler) {
		NewExerciseController(exercises).RegisterRoutes(api, jwt)
	})
	body := `{"name":"Legs","slug":"legs"}`
	post := func() *http.Request {
		req := httptest.NewRequest("POST", "/api/admin/exercise-categories", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		return req
	}

	resp := do(t, app, httptest.NewRequest("GET", "/api/exercise-categories", nil), "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = do(t, app, post(), "")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp = do(t, app, post(), token(t, dto.Caller{UserId: uuid.New(), Role: "user"}))
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.Nil(t, exercises.created)

	resp = do(t, app, post(), token(t, dto.Caller{UserId: uuid.New(), Role: "admin"}))
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	require.NotNil(t, exercises.created)
	assert.Equal(t, "legs", exercises.created.Slug)

	req := httptest.NewRequest("POST", "/api/admin/exercise-categories", strings.NewReader(`{"slug":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	resp = do(t, app, req, token(t, dto.Caller{UserId: uuid.New(), Role: "admin"}))
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
