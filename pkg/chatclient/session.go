package chatclient

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// GuestQuota is the number of messages a guest may send per session.
// The server does not enforce it.
const GuestQuota = 4

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Session holds the state of one chat view: the active conversation, its
// transcript and the client-side quotas. Only one Send runs at a time; while it
// is outstanding, switching or clearing the active conversation is rejected
// with a busy error.
type Session struct {
	client *Client

	mu             sync.Mutex
	conversationID string
	transcript     Transcript
	guestSent      int
	limitReached   bool
	inFlight       bool
	creating       bool
	// generation changes whenever the active conversation is switched or cleared
	generation uint64
}

func NewSession(client *Client) *Session {
	return &Session{client: client}
}

func (s *Session) IsGuest() bool {
	return !s.client.Authenticated()
}

func (s *Session) ConversationID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conversationID
}

// SetConversationID assigns the active conversation once. Re-assigning the same
// id is a no-op; a different id is rejected until the session is reset.
func (s *Session) SetConversationID(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setConversationIDLocked(id)
}

func (s *Session) setConversationIDLocked(id string) error {
	if id == "" {
		return &Error{Kind: KindValidation, Message: "conversation id is empty"}
	}
	if s.conversationID != "" && s.conversationID != id {
		return &Error{Kind: KindValidation, Message: "conversation id already assigned", Detail: fmt.Sprintf("have %s, got %s", s.conversationID, id)}
	}
	s.conversationID = id
	return nil
}

func errBusy() *Error {
	return &Error{Kind: KindValidation, Message: "a message is already being sent", Detail: "busy"}
}

// resetLocked drops the active conversation and its transcript.
func (s *Session) resetLocked() {
	s.conversationID = ""
	s.transcript.Reset()
	s.generation++
}

func (s *Session) Transcript() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transcript.Entries()
}

func (s *Session) GuestMessagesLeft() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if left := GuestQuota - s.guestSent; left > 0 {
		return left
	}
	return 0
}

// LimitReached reports whether the server said the daily plan quota is used up.
func (s *Session) LimitReached() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.limitReached
}

// Send appends the user message optimistically and posts it. On success the
// entry is confirmed and the assistant reply appended; on failure the entry is
// removed and the transcript is left as it was before the call.
func (s *Session) Send(ctx context.Context, text string, image *Image) (*SendResponse, error) {
	text = strings.TrimSpace(text)
	if text == "" && image == nil {
		return nil, &Error{Kind: KindValidation, Message: "message cannot be empty"}
	}

	s.mu.Lock()
	if s.inFlight {
		creating := s.creating
		s.mu.Unlock()
		if creating {
			return nil, ErrConversationNotReady
		}
		return nil, errBusy()
	}
	guest := s.IsGuest()
	if guest && s.guestSent >= GuestQuota {
		s.mu.Unlock()
		return nil, ErrGuestQuotaExhausted
	}
	if s.limitReached {
		s.mu.Unlock()
		return nil, ErrMessageLimitReached
	}

	conversationID := s.conversationID
	generation := s.generation
	pendingID := s.transcript.AppendPending(RoleUser, text, image)
	s.inFlight = true
	s.creating = conversationID == ""
	s.mu.Unlock()

	res, err := s.client.SendMessage(ctx, SendRequest{
		Message:        text,
		ConversationID: conversationID,
		IsGuest:        guest,
		Image:          image,
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight = false
	s.creating = false

	if s.generation != generation {
		// the view moved on; the reply belongs to a conversation no longer shown
		s.transcript.Remove(pendingID)
		if err == nil {
			err = &Error{Kind: KindValidation, Message: "the active conversation changed while sending", Detail: "stale"}
		}
		if IsLimitReached(err) {
			s.limitReached = true
		}
		return nil, err
	}

	if err == nil && res.ConversationID == "" {
		err = &Error{Kind: KindInternal, Message: "server returned no conversation id"}
	}
	if err == nil {
		err = s.setConversationIDLocked(res.ConversationID)
	}
	if err != nil {
		s.transcript.Remove(pendingID)
		if IsLimitReached(err) {
			s.limitReached = true
		}
		return nil, err
	}

	userID := ""
	if res.UserMessage != nil {
		userID = res.UserMessage.ID
	}
	s.transcript.Confirm(pendingID, userID)
	assistantID := ""
	if res.AssistantMessage != nil {
		assistantID = res.AssistantMessage.ID
	}
	s.transcript.AppendConfirmed(assistantID, RoleAssistant, res.Content)
	if guest {
		s.guestSent++
	}
	return res, nil
}

// Open switches to an existing conversation and loads its messages.
func (s *Session) Open(ctx context.Context, conversationID string) error {
	messages, err := s.client.GetMessages(ctx, conversationID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight {
		return errBusy()
	}
	s.resetLocked()
	s.conversationID = conversationID
	for _, m := range messages {
		s.transcript.AppendConfirmed(m.ID, m.Role, m.Content)
	}
	return nil
}

// NewConversation clears the active conversation so the next Send starts a new one.
// It fails while a Send is outstanding.
func (s *Session) NewConversation() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight {
		return errBusy()
	}
	s.resetLocked()
	return nil
}

// Delete removes a conversation on the server. Deleting the active one also
// clears the local state, and is refused while a Send is outstanding.
func (s *Session) Delete(ctx context.Context, conversationID string) error {
	s.mu.Lock()
	if s.inFlight && s.conversationID == conversationID {
		s.mu.Unlock()
		return errBusy()
	}
	s.mu.Unlock()

	if err := s.client.DeleteConversation(ctx, conversationID); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conversationID == conversationID {
		s.resetLocked()
	}
	return nil
}

func (s *Session) Conversations(ctx context.Context) ([]Conversation, error) {
	return s.client.ListConversations(ctx)
}
