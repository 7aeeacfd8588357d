package chatclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"
)

type Image struct {
	FileName string
	MimeType string
	Data     []byte
}

type SendRequest struct {
	Message        string
	ConversationID string
	IsGuest        bool
	Image          *Image
}

type MessageImage struct {
	Data     string `json:"data"`
	MimeType string `json:"mimeType"`
}

type Message struct {
	ID        string        `json:"id"`
	Role      string        `json:"role"`
	Content   string        `json:"content"`
	Image     *MessageImage `json:"image,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
}

type SendResponse struct {
	ConversationID   string   `json:"conversationId"`
	Title            string   `json:"title"`
	Content          string   `json:"content"`
	UserMessage      *Message `json:"userMessage,omitempty"`
	AssistantMessage *Message `json:"assistantMessage,omitempty"`
}

type Conversation struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    *time.Time `json:"updatedAt,omitempty"`
	LastMessage  *string    `json:"lastMessage,omitempty"`
	MessageCount int        `json:"messageCount"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithToken authenticates every request with a bearer token.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Authenticated() bool {
	return c.token != ""
}

// SendMessage posts one user turn: JSON, or multipart when an image is attached.
func (c *Client) SendMessage(ctx context.Context, req SendRequest) (*SendResponse, error) {
	var body io.Reader
	var contentType string

	if req.Image == nil {
		payload, err := json.Marshal(map[string]interface{}{
			"message":        req.Message,
			"conversationId": req.ConversationID,
			"isGuest":        req.IsGuest,
		})
		if err != nil {
			return nil, &Error{Kind: KindValidation, Message: "cannot encode request", Detail: err.Error()}
		}
		body = bytes.NewReader(payload)
		contentType = "application/json"
	} else {
		buf, ct, err := multipartBody(req)
		if err != nil {
			return nil, &Error{Kind: KindFileUpload, Message: "cannot encode image", Detail: err.Error()}
		}
		body = buf
		contentType = ct
	}

	var res SendResponse
	if err := c.do(ctx, http.MethodPost, "/api/chat", body, contentType, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func multipartBody(req SendRequest) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fields := map[string]string{
		"message":        req.Message,
		"conversationId": req.ConversationID,
		"isGuest":        strconv.FormatBool(req.IsGuest),
	}
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, "", err
		}
	}

	name := req.Image.FileName
	if name == "" {
		name = "image"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, name))
	mimeType := req.Image.MimeType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	h.Set("Content-Type", mimeType)
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(req.Image.Data); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

func (c *Client) ListConversations(ctx context.Context) ([]Conversation, error) {
	var res struct {
		Conversations []Conversation `json:"conversations"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/conversations", nil, "", &res); err != nil {
		return nil, err
	}
	return res.Conversations, nil
}

func (c *Client) GetMessages(ctx context.Context, conversationID string) ([]Message, error) {
	var res struct {
		Conversation struct {
			Messages []Message `json:"messages"`
		} `json:"conversation"`
	}
	path := "/api/conversations/" + url.PathEscape(conversationID) + "/messages"
	if err := c.do(ctx, http.MethodGet, path, nil, "", &res); err != nil {
		return nil, err
	}
	return res.Conversation.Messages, nil
}

func (c *Client) DeleteConversation(ctx context.Context, conversationID string) error {
	return c.do(ctx, http.MethodDelete, "/api/conversations/"+url.PathEscape(conversationID), nil, "", nil)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &Error{Kind: KindValidation, Message: "cannot build request", Detail: err.Error()}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return networkError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return networkError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return parseError(resp.StatusCode, raw)
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &Error{Kind: KindInternal, Message: "unexpected response from server", Detail: err.Error(), Status: resp.StatusCode}
	}
	return nil
}
