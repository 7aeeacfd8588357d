package memory

import (
	"time"

	"ai-fitcoach-be/internal/entity"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// GuestConversationRepository keeps guest threads in process memory.
// Entries expire after ttl of inactivity and are never persisted.
type GuestConversationRepository struct {
	cache *cache.Cache
}

func NewGuestConversationRepository(ttl time.Duration) *GuestConversationRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &GuestConversationRepository{
		cache: cache.New(ttl, 10*time.Minute),
	}
}

// Save stores a copy so callers cannot mutate the cached value in place.
func (r *GuestConversationRepository) Save(conv *entity.GuestConversation) {
	r.cache.Set(conv.Conversation.Id.String(), clone(conv), cache.DefaultExpiration)
}

func (r *GuestConversationRepository) Get(id uuid.UUID) (*entity.GuestConversation, bool) {
	x, found := r.cache.Get(id.String())
	if !found {
		return nil, false
	}
	return clone(x.(*entity.GuestConversation)), true
}

func (r *GuestConversationRepository) Delete(id uuid.UUID) bool {
	if _, found := r.cache.Get(id.String()); !found {
		return false
	}
	r.cache.Delete(id.String())
	return true
}

func clone(conv *entity.GuestConversation) *entity.GuestConversation {
	out := &entity.GuestConversation{
		Conversation: conv.Conversation,
		Messages:     make([]entity.ChatMessage, len(conv.Messages)),
	}
	copy(out.Messages, conv.Messages)
	return out
}
