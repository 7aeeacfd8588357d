package service

import (
	"testing"
	"time"

	"ai-fitcoach-be/internal/config"
	"ai-fitcoach-be/internal/pkg/logger"
	"ai-fitcoach-be/internal/repository/memory"
	"ai-fitcoach-be/internal/repository/unitofwork"
	"ai-fitcoach-be/internal/testutil"
	"ai-fitcoach-be/pkg/access"
	"ai-fitcoach-be/pkg/lock"

	"gorm.io/gorm"
)

type chatFixture struct {
	db        *gorm.DB
	factory   unitofwork.RepositoryFactory
	llm       *testutil.FakeLLM
	publisher *testutil.RecordingPublisher
	guests    *memory.GuestConversationRepository
	chat      IChatService
	convs     IConversationService
}

func newChatFixture(t *testing.T, freeLimit int) *chatFixture {
	t.Helper()
	db := testutil.NewTestDB(t)
	f := &chatFixture{
		db:        db,
		factory:   unitofwork.NewRepositoryFactory(db),
		llm:       &testutil.FakeLLM{Reply: "Do three sets of ten."},
		publisher: &testutil.RecordingPublisher{},
		guests:    memory.NewGuestConversationRepository(time.Minute),
	}
	locks := lock.NewKeyed()
	log := logger.NewNopLogger()
	f.chat = NewChatService(f.factory, f.guests, f.llm, access.NewVerifier(freeLimit), locks, f.publisher, log,
		config.ChatConfig{FreeDailyLimit: freeLimit, HistoryWindow: 4, MaxImageBytes: 1024},
		config.AIConfig{Temperature: 0.5},
	)
	f.convs = NewConversationService(f.factory, f.guests, locks, f.publisher, log)
	return f
}

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 32)...)
