package chatclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeServer plays the chat API: it creates conversations and can be told to fail.
type fakeServer struct {
	mu            sync.Mutex
	conversations map[string]int
	created       int
	failWith      func(w http.ResponseWriter) bool
	requests      []map[string]interface{}
	block         chan struct{}
	entered       chan struct{}
	deleted       []string
	sends         int32
}

func newFakeServer(t *testing.T) (*fakeServer, *httptest.Server) {
	t.Helper()
	fs := &fakeServer{conversations: map[string]int{}}
	srv := httptest.NewServer(http.HandlerFunc(fs.handle))
	t.Cleanup(srv.Close)
	return fs, srv
}

func (fs *fakeServer) setFail(f func(w http.ResponseWriter) bool) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.failWith = f
}

func (fs *fakeServer) handle(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/api/chat":
		fs.chat(w, r)
	case r.Method == http.MethodDelete && strings.HasPrefix(r.URL.Path, "/api/conversations/"):
		id := strings.TrimPrefix(r.URL.Path, "/api/conversations/")
		fs.mu.Lock()
		_, ok := fs.conversations[id]
		delete(fs.conversations, id)
		fs.deleted = append(fs.deleted, id)
		fs.mu.Unlock()
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"success":false,"error":"NOT_FOUND","message":"conversation not found"}`))
			return
		}
		_, _ = w.Write([]byte(`{"success":true}`))
	case r.Method == http.MethodGet && r.URL.Path == "/api/conversations":
		if r.Header.Get("Authorization") == "" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"success":false,"error":"AUTHENTICATION","message":"login required"}`))
			return
		}
		_, _ = w.Write([]byte(`{"conversations":[{"id":"c1","title":"Leg day","messageCount":4,"lastMessage":"Rest 90s"}]}`))
	case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/messages"):
		_, _ = w.Write([]byte(`{"conversation":{"messages":[{"id":"m1","role":"user","content":"hi"},{"id":"m2","role":"assistant","content":"hello"}]}}`))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (fs *fakeServer) chat(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt32(&fs.sends, 1)
	if fs.entered != nil {
		fs.entered <- struct{}{}
	}
	if fs.block != nil {
		<-fs.block
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.failWith != nil && fs.failWith(w) {
		return
	}

	body := map[string]interface{}{}
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		_ = r.ParseMultipartForm(1 << 20)
		body["message"] = r.FormValue("message")
		body["conversationId"] = r.FormValue("conversationId")
		_, fh, err := r.FormFile("image")
		body["hasImage"] = err == nil && fh != nil
	} else {
		_ = json.NewDecoder(r.Body).Decode(&body)
	}
	fs.requests = append(fs.requests, body)

	id, _ := body["conversationId"].(string)
	if id == "" {
		id = uuid.NewString()
		fs.created++
	}
	fs.conversations[id] += 2
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"conversationId":   id,
		"content":          "Keep your back straight.",
		"userMessage":      map[string]string{"id": uuid.NewString(), "role": "user"},
		"assistantMessage": map[string]string{"id": uuid.NewString(), "role": "assistant"},
	})
}

func TestFirstSendAssignsConversationOnce(t *testing.T) {
	fs, srv := newFakeServer(t)
	s := NewSession(New(srv.URL, WithToken("token")))
	ctx := context.Background()

	res, err := s.Send(ctx, "How do I squat?", nil)
	require.NoError(t, err)
	require.NotEmpty(t, res.ConversationID)
	assert.Equal(t, res.ConversationID, s.ConversationID())

	res2, err := s.Send(ctx, "And deadlift?", nil)
	require.NoError(t, err)
	assert.Equal(t, res.ConversationID, res2.ConversationID)
	assert.Equal(t, 1, fs.created)
	assert.Equal(t, res.ConversationID, fs.requests[1]["conversationId"])

	entries := s.Transcript()
	require.Len(t, entries, 4)
	for _, e := range entries {
		assert.Equal(t, EntryConfirmed, e.Status)
		assert.NotEmpty(t, e.ID)
	}
	assert.Equal(t, RoleAssistant, entries[3].Role)

	assert.Error(t, s.SetConversationID(uuid.NewString()))
	assert.NoError(t, s.SetConversationID(res.ConversationID))
}

func TestLimitReachedKeepsCounters(t *testing.T) {
	fs, srv := newFakeServer(t)
	s := NewSession(New(srv.URL))
	ctx := context.Background()

	_, err := s.Send(ctx, "one", nil)
	require.NoError(t, err)
	before := s.Transcript()
	left := s.GuestMessagesLeft()

	fs.setFail(func(w http.ResponseWriter) bool {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"success":false,"code":429,"error":"MESSAGE_LIMIT_REACHED","message":"Daily limit reached"}`))
		return true
	})
	_, err = s.Send(ctx, "two", nil)
	require.Error(t, err)
	assert.True(t, IsLimitReached(err))

	var cerr *Error
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, http.StatusTooManyRequests, cerr.Status)
	assert.Equal(t, "Daily limit reached", cerr.Message)

	assert.Equal(t, before, s.Transcript())
	assert.Equal(t, left, s.GuestMessagesLeft())
	assert.True(t, s.LimitReached())
	for _, e := range s.Transcript() {
		assert.NotEqual(t, "two", e.Content)
	}

	// sending is disabled without another round trip
	sends := atomic.LoadInt32(&fs.sends)
	_, err = s.Send(ctx, "three", nil)
	assert.True(t, IsLimitReached(err))
	assert.Equal(t, sends, atomic.LoadInt32(&fs.sends))
}

func TestFailureRollsBackPendingEntry(t *testing.T) {
	cases := []struct {
		name     string
		status   int
		body     string
		wantKind ErrorKind
		wantMsg  string
	}{
		{"structured", http.StatusBadGateway, `{"error":"NETWORK","message":"coach unavailable"}`, KindNetwork, "coach unavailable"},
		{"raw body", http.StatusInternalServerError, "upstream exploded", KindInternal, "upstream exploded"},
		{"empty body", http.StatusServiceUnavailable, "", KindNetwork, "Service Unavailable"},
		{"unknown code", http.StatusBadRequest, `{"error":"WHATEVER","message":""}`, KindValidation, "Bad Request"},
		{"unknown status", 599, "", KindInternal, fallbackMessage},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fs, srv := newFakeServer(t)
			s := NewSession(New(srv.URL, WithToken("token")))
			ctx := context.Background()

			_, err := s.Send(ctx, "warm up", nil)
			require.NoError(t, err)
			before := len(s.Transcript())

			fs.setFail(func(w http.ResponseWriter) bool {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
				return true
			})
			_, err = s.Send(ctx, "next set", nil)
			var cerr *Error
			require.ErrorAs(t, err, &cerr)
			assert.Equal(t, tc.wantKind, cerr.Kind)
			assert.Equal(t, tc.wantMsg, cerr.Message)
			assert.Len(t, s.Transcript(), before)
			assert.False(t, s.LimitReached())
		})
	}
}

func TestNetworkFailureRollsBack(t *testing.T) {
	_, srv := newFakeServer(t)
	s := NewSession(New(srv.URL))
	srv.Close()

	_, err := s.Send(context.Background(), "hello", nil)
	var cerr *Error
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, KindNetwork, cerr.Kind)
	assert.Empty(t, s.Transcript())
	assert.Equal(t, GuestQuota, s.GuestMessagesLeft())
}

func TestGuestQuota(t *testing.T) {
	fs, srv := newFakeServer(t)
	s := NewSession(New(srv.URL))
	ctx := context.Background()

	for i := 0; i < GuestQuota; i++ {
		_, err := s.Send(ctx, "rep", nil)
		require.NoError(t, err)
	}
	assert.Equal(t, 0, s.GuestMessagesLeft())

	_, err := s.Send(ctx, "fifth", nil)
	assert.ErrorIs(t, err, ErrGuestQuotaExhausted)
	assert.Equal(t, int32(GuestQuota), atomic.LoadInt32(&fs.sends))
	assert.Equal(t, true, fs.requests[0]["isGuest"])
}

func TestDeleteActiveConversationClearsState(t *testing.T) {
	fs, srv := newFakeServer(t)
	s := NewSession(New(srv.URL, WithToken("token")))
	ctx := context.Background()

	res, err := s.Send(ctx, "plan my week", nil)
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, res.ConversationID))
	assert.Empty(t, s.ConversationID())
	assert.Empty(t, s.Transcript())
	assert.Equal(t, []string{res.ConversationID}, fs.deleted)

	// a second delete surfaces NOT_FOUND
	err = s.Delete(ctx, res.ConversationID)
	var cerr *Error
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, KindNotFound, cerr.Kind)
}

func TestDeleteOtherConversationKeepsState(t *testing.T) {
	fs, srv := newFakeServer(t)
	s := NewSession(New(srv.URL, WithToken("token")))
	ctx := context.Background()

	res, err := s.Send(ctx, "hi", nil)
	require.NoError(t, err)
	fs.mu.Lock()
	fs.conversations["other"] = 2
	fs.mu.Unlock()

	require.NoError(t, s.Delete(ctx, "other"))
	assert.Equal(t, res.ConversationID, s.ConversationID())
	assert.Len(t, s.Transcript(), 2)
}

func TestEmptyMessageNeverSent(t *testing.T) {
	for _, token := range []string{"", "token"} {
		fs, srv := newFakeServer(t)
		s := NewSession(New(srv.URL, WithToken(token)))

		_, err := s.Send(context.Background(), "   \n\t", nil)
		var cerr *Error
		require.ErrorAs(t, err, &cerr)
		assert.Equal(t, KindValidation, cerr.Kind)
		assert.Zero(t, atomic.LoadInt32(&fs.sends))
		assert.Empty(t, s.Transcript())
	}
}

func TestImageOnlyMessageUsesMultipart(t *testing.T) {
	fs, srv := newFakeServer(t)
	s := NewSession(New(srv.URL, WithToken("token")))

	_, err := s.Send(context.Background(), "", &Image{FileName: "form.png", MimeType: "image/png", Data: []byte("\x89PNG\r\n\x1a\n")})
	require.NoError(t, err)
	require.Len(t, fs.requests, 1)
	assert.Equal(t, true, fs.requests[0]["hasImage"])
	assert.Equal(t, "", fs.requests[0]["message"])
}

func TestConcurrentFirstSendIsRejected(t *testing.T) {
	fs, srv := newFakeServer(t)
	fs.block = make(chan struct{})
	fs.entered = make(chan struct{}, 1)
	s := NewSession(New(srv.URL, WithToken("token")))
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := s.Send(ctx, "first", nil)
		done <- err
	}()
	<-fs.entered

	_, err := s.Send(ctx, "second", nil)
	assert.ErrorIs(t, err, ErrConversationNotReady)

	close(fs.block)
	require.NoError(t, <-done)
	assert.Equal(t, 1, fs.created)

	// once the id is known a concurrent send is merely busy
	fs.block = make(chan struct{})
	go func() {
		_, err := s.Send(ctx, "third", nil)
		done <- err
	}()
	<-fs.entered
	_, err = s.Send(ctx, "fourth", nil)
	var cerr *Error
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, KindValidation, cerr.Kind)
	assert.Equal(t, "busy", cerr.Detail)
	close(fs.block)
	require.NoError(t, <-done)
}

func TestCancelledContextRollsBack(t *testing.T) {
	fs, srv := newFakeServer(t)
	fs.block = make(chan struct{})
	fs.entered = make(chan struct{}, 1)
	t.Cleanup(func() { close(fs.block) })
	s := NewSession(New(srv.URL, WithToken("token")))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := s.Send(ctx, "slow", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, &Error{Kind: KindNetwork}))
	assert.Empty(t, s.Transcript())
}

func TestOpenLoadsTranscript(t *testing.T) {
	_, srv := newFakeServer(t)
	s := NewSession(New(srv.URL, WithToken("token")))

	require.NoError(t, s.Open(context.Background(), "abc"))
	assert.Equal(t, "abc", s.ConversationID())
	entries := s.Transcript()
	require.Len(t, entries, 2)
	assert.Equal(t, "hello", entries[1].Content)
}

func TestListConversations(t *testing.T) {
	_, srv := newFakeServer(t)
	ctx := context.Background()

	list, err := NewSession(New(srv.URL, WithToken("token"))).Conversations(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Leg day", list[0].Title)
	assert.Equal(t, 4, list[0].MessageCount)
	require.NotNil(t, list[0].LastMessage)

	_, err = NewSession(New(srv.URL)).Conversations(ctx)
	var cerr *Error
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, KindAuthentication, cerr.Kind)
	assert.Equal(t, http.StatusUnauthorized, cerr.Status)
}

func TestPlainThrottlingDoesNotLockSession(t *testing.T) {
	fs, srv := newFakeServer(t)
	s := NewSession(New(srv.URL, WithToken("token")))
	ctx := context.Background()

	fs.setFail(func(w http.ResponseWriter) bool {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte("Too Many Requests"))
		return true
	})
	_, err := s.Send(ctx, "squat depth?", nil)
	var cerr *Error
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, KindRateLimited, cerr.Kind)
	assert.False(t, IsLimitReached(err))
	assert.False(t, s.LimitReached())
	assert.Empty(t, s.Transcript())

	// an unknown code on a 429 is not the plan quota either
	fs.setFail(func(w http.ResponseWriter) bool {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"SLOW_DOWN","message":"try later"}`))
		return true
	})
	_, err = s.Send(ctx, "squat depth?", nil)
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, KindRateLimited, cerr.Kind)
	assert.False(t, s.LimitReached())

	fs.setFail(nil)
	_, err = s.Send(ctx, "squat depth?", nil)
	require.NoError(t, err)
	assert.Len(t, s.Transcript(), 2)
}

func TestSwitchingConversationWhileSendingIsRefused(t *testing.T) {
	fs, srv := newFakeServer(t)
	fs.entered = make(chan struct{}, 1)
	s := NewSession(New(srv.URL, WithToken("token")))
	ctx := context.Background()

	res, err := s.Send(ctx, "first", nil)
	require.NoError(t, err)
	<-fs.entered
	active := res.ConversationID

	fs.block = make(chan struct{})
	done := make(chan error, 1)
	go func() {
		_, err := s.Send(ctx, "second", nil)
		done <- err
	}()
	<-fs.entered

	var cerr *Error
	err = s.NewConversation()
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "busy", cerr.Detail)

	err = s.Delete(ctx, active)
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "busy", cerr.Detail)
	fs.mu.Lock()
	assert.Empty(t, fs.deleted)
	fs.mu.Unlock()

	close(fs.block)
	require.NoError(t, <-done)
	assert.Equal(t, active, s.ConversationID())
	entries := s.Transcript()
	require.Len(t, entries, 4)
	for _, e := range entries {
		assert.Equal(t, EntryConfirmed, e.Status)
	}

	require.NoError(t, s.NewConversation())
	assert.Empty(t, s.ConversationID())
	assert.Empty(t, s.Transcript())
}

func TestStaleReplyIsDropped(t *testing.T) {
	fs, srv := newFakeServer(t)
	s := NewSession(New(srv.URL, WithToken("token")))
	ctx := context.Background()

	res, err := s.Send(ctx, "first", nil)
	require.NoError(t, err)

	// the view is reset between the pre-flight check and the reply
	fs.setFail(func(http.ResponseWriter) bool {
		s.mu.Lock()
		s.generation++
		s.mu.Unlock()
		return false
	})
	_, err = s.Send(ctx, "second", nil)
	var cerr *Error
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "stale", cerr.Detail)
	assert.Equal(t, res.ConversationID, s.ConversationID())
	require.Len(t, s.Transcript(), 2)
	for _, e := range s.Transcript() {
		assert.NotEqual(t, "second", e.Content)
	}
}
