package bootstrap

import (
	"context"
	"time"

	"ai-fitcoach-be/internal/config"
	"ai-fitcoach-be/internal/controller"
	"ai-fitcoach-be/internal/pkg/logger"
	"ai-fitcoach-be/internal/pkg/mailer"
	"ai-fitcoach-be/internal/repository/memory"
	"ai-fitcoach-be/internal/repository/unitofwork"
	"ai-fitcoach-be/internal/service"
	"ai-fitcoach-be/pkg/access"
	"ai-fitcoach-be/pkg/events"
	"ai-fitcoach-be/pkg/llm/factory"
	"ai-fitcoach-be/pkg/lock"
	"ai-fitcoach-be/pkg/storage"

	pktNats "ai-fitcoach-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ChatController         controller.IChatController
	ConversationController controller.IConversationController
	KnowledgeController    controller.IKnowledgeController
	PaymentController      controller.IPaymentController
	PlanController         controller.PlanController
	ExerciseController     controller.IExerciseController
	UserController         controller.IUserController
	AdminController        controller.IAdminController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	Logger logger.ILogger

	closers []func()
}

func NewContainer(db *gorm.DB, cfg *config.Config) (*Container, error) {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	c := &Container{Logger: sysLogger}

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderName,
		cfg.App.ClientURL,
		sysLogger,
	)

	// 2. Work queue
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	// 3. Infrastructure
	llmProvider, err := factory.NewLLMProvider(cfg.Ai.LLMProvider, cfg.Ai.LLMModel, cfg.Ai.OllamaBaseURL)
	if err != nil {
		return nil, err
	}
	sysLogger.Info("BOOT", "LLM provider ready", map[string]interface{}{"provider": cfg.Ai.LLMProvider, "model": cfg.Ai.LLMModel})

	// NATS is optional; without it domain events are dropped
	var eventPublisher events.Publisher
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		sysLogger.Warn("BOOT", "NATS unavailable, domain events disabled", map[string]interface{}{"error": err.Error()})
	} else {
		eventPublisher = natsPub
		c.closers = append(c.closers, natsPub.Close)
	}

	// Redis is optional; without it the plan catalogue is read from the database every time
	var rdb *redis.Client
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		sysLogger.Warn("BOOT", "failed to parse Redis URL, using it as address", map[string]interface{}{"error": err.Error()})
		opt = &redis.Options{Addr: cfg.App.RedisURL}
	}
	client := redis.NewClient(opt)
	pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	if err := client.Ping(pingCtx).Err(); err != nil {
		sysLogger.Warn("BOOT", "Redis unavailable, plan cache disabled", map[string]interface{}{"error": err.Error()})
		_ = client.Close()
	} else {
		rdb = client
		c.closers = append(c.closers, func() { _ = client.Close() })
	}
	cancel()

	knowledgeStore, err := storage.NewLocalStorage(cfg.Storage.KnowledgeDir)
	if err != nil {
		return nil, err
	}

	guestRepo := memory.NewGuestConversationRepository(time.Duration(cfg.Chat.GuestSessionTTLM) * time.Minute)
	locks := lock.NewKeyed()
	verifier := access.NewVerifier(cfg.Chat.FreeDailyLimit)

	// 4. Services
	chatService := service.NewChatService(
		uowFactory,
		guestRepo,
		llmProvider,
		verifier,
		locks,
		eventPublisher,
		sysLogger,
		cfg.Chat,
		cfg.Ai,
	)
	conversationService := service.NewConversationService(uowFactory, guestRepo, locks, eventPublisher, sysLogger)

	queue := service.NewPublisherService(cfg.Storage.KnowledgeTopic, pubSub)
	knowledgeService := service.NewKnowledgeService(
		uowFactory,
		knowledgeStore,
		queue,
		eventPublisher,
		sysLogger,
		int64(cfg.Storage.MaxUploadBytes),
	)
	consumerService := service.NewConsumerService(pubSub, cfg.Storage.KnowledgeTopic, knowledgeService, sysLogger)

	paymentService := service.NewPaymentService(
		uowFactory,
		verifier,
		service.NewMidtransSnapGateway(cfg.Payment.MidtransServerKey, cfg.Payment.MidtransIsProduction),
		eventPublisher,
		emailService,
		sysLogger,
		cfg.Payment.MidtransServerKey,
		cfg.App.ClientURL,
	)
	planService := service.NewPlanService(uowFactory, verifier, rdb, sysLogger)
	exerciseService := service.NewExerciseService(uowFactory, sysLogger)
	userService := service.NewUserService(uowFactory, verifier)
	adminService := service.NewAdminService(uowFactory, planService, sysLogger)

	// 5. Controllers
	c.ChatController = controller.NewChatController(chatService)
	c.ConversationController = controller.NewConversationController(conversationService)
	c.KnowledgeController = controller.NewKnowledgeController(knowledgeService)
	c.PaymentController = controller.NewPaymentController(paymentService)
	c.PlanController = controller.NewPlanController(planService)
	c.ExerciseController = controller.NewExerciseController(exerciseService)
	c.UserController = controller.NewUserController(userService)
	c.AdminController = controller.NewAdminController(adminService)
	c.ConsumerService = consumerService

	return c, nil
}

// Close releases broker and cache connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}
