package server

import (
	"ai-fitcoach-be/internal/bootstrap"
	"ai-fitcoach-be/internal/config"
	"ai-fitcoach-be/internal/pkg/serverutils"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

type Server struct {
	app       *fiber.App
	cfg       *config.Config
	container *bootstrap.Container
}

func New(cfg *config.Config, container *bootstrap.Container) *Server {
	// Room for the largest knowledge upload plus multipart overhead
	bodyLimit := cfg.Storage.MaxUploadBytes + 1024*1024
	if bodyLimit < 10*1024*1024 {
		bodyLimit = 10 * 1024 * 1024
	}
	app := fiber.New(fiber.Config{
		BodyLimit: bodyLimit,
	})

	// Middleware
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.App.CorsAllowedOrigins,
		AllowCredentials: true,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		ExposeHeaders:    "Content-Length, Content-Type, Content-Disposition",
	}))

	// OpenTelemetry tracing middleware (traces all HTTP requests)
	app.Use(otelfiber.Middleware())

	app.Use(serverutils.ErrorHandlerMiddleware(container.Logger))

	// Routes
	registerRoutes(app, cfg, container)

	return &Server{
		app:       app,
		cfg:       cfg,
		container: container,
	}
}

func (s *Server) GetApp() *fiber.App {
	return s.app
}

func (s *Server) Run() error {
	s.container.Logger.Info("SERVER", "listening", map[string]interface{}{"port": s.cfg.App.Port})
	return s.app.Listen(":" + s.cfg.App.Port)
}

func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func registerRoutes(app *fiber.App, cfg *config.Config, c *bootstrap.Container) {
	api := app.Group("/api")
	jwt := serverutils.NewJwtMiddleware(cfg.Auth.JwtSecret, false)
	optionalJwt := serverutils.NewJwtMiddleware(cfg.Auth.JwtSecret, true)

	c.ChatController.RegisterRoutes(api, optionalJwt)
	c.ConversationController.RegisterRoutes(api, optionalJwt)
	c.KnowledgeController.RegisterRoutes(api, jwt)

	c.PlanController.RegisterRoutes(api, jwt)
	c.PaymentController.RegisterRoutes(api, jwt)
	c.ExerciseController.RegisterRoutes(api, jwt)
	c.UserController.RegisterRoutes(api, jwt)
	c.AdminController.RegisterRoutes(api, jwt)
}
