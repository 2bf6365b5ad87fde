package server

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"github.com/tastegent/tastegent/internal/config"
	"github.com/tastegent/tastegent/internal/domain"
	"github.com/tastegent/tastegent/internal/handler"
	"github.com/tastegent/tastegent/internal/middleware"
	"github.com/tastegent/tastegent/internal/repository"
	"github.com/tastegent/tastegent/internal/service"
	"github.com/tastegent/tastegent/internal/telemetry"
	"go.mongodb.org/mongo-driver/mongo"
)

// Idempotency cache lifetime for admin mutations
const idempotencyTTL = 10 * time.Minute

// AppDependencies holds the dependencies required to start the application
type AppDependencies struct {
	Config      *config.Config
	MongoDB     *mongo.Database
	RedisClient *redis.Client
	MongoClient *mongo.Client

	// FileRepo overrides the default S3-backed store when set (used by tests)
	FileRepo domain.FileRepository
	// ChatService overrides the default OpenRouter client when set
	ChatService domain.ChatService
}

// NewApp creates and configures the Fiber application with the given dependencies
func NewApp(deps AppDependencies) *fiber.App {
	// Initialize repositories
	mongoMenuRepo := repository.NewMongoMenuRepository(deps.MongoDB)
	refreshTokenRepo := repository.NewMongoRefreshTokenRepository(deps.MongoDB)

	var menuRepo domain.MenuRepository = mongoMenuRepo
	if deps.RedisClient != nil {
		cacheRepo := repository.NewRedisCacheRepository(deps.RedisClient)
		menuRepo = repository.NewCachedMenuRepository(mongoMenuRepo, cacheRepo)
	}

	fileRepo := deps.FileRepo
	if fileRepo == nil {
		s3Repo, err := repository.NewSeaweedS3Repository(context.Background(), deps.Config.S3)
		if err != nil {
			log.Printf("Warning: Failed to initialize S3 repository: %v", err)
		} else {
			fileRepo = s3Repo
		}
	}

	// Initialize services
	raster := service.NewRasterizer()
	menuService := service.NewMenuService(menuRepo)
	uploadService := service.NewUploadService(raster, fileRepo)
	tokenService := service.NewTokenService(deps.Config.JWT, deps.Config.Admin, refreshTokenRepo)

	chatService := deps.ChatService
	if chatService == nil {
		chatService = service.NewOpenRouterChat(
			deps.Config.OpenRouter.APIKey,
			deps.Config.OpenRouter.Model,
			deps.Config.OpenRouter.BaseURL,
			menuRepo,
		)
	}

	// Initialize handlers
	menuHandler := handler.NewMenuHandler(menuService)
	uploadHandler := handler.NewUploadHandler(uploadService, deps.Config.Server.MaxUploadSizeMB)
	chatHandler := handler.NewChatHandler(chatService)
	authHandler := handler.NewAuthHandler(tokenService)
	healthHandler := handler.NewHealthHandler(deps.MongoClient, deps.RedisClient)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Tastegent API",
		BodyLimit:    int(deps.Config.Server.MaxUploadSizeMB * 1024 * 1024),
		ErrorHandler: customErrorHandler,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New())
	if deps.Config.OTEL.Enabled {
		app.Use(telemetry.FiberMiddleware())
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: deps.Config.Server.AllowedOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Correlation-ID",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Tastegent backend is running",
		})
	})

	app.Get("/health", healthHandler.Health)

	// Public endpoints
	app.Get("/menu", menuHandler.ListMenu)
	app.Get("/menu/:id", menuHandler.GetMenuItem)
	app.Get("/uploads/:filename", uploadHandler.Serve)
	app.Post("/chat", chatHandler.Chat)
	app.Post("/token", authHandler.Login)
	app.Post("/token/refresh", authHandler.Refresh)

	// Upload requires an authenticated admin
	app.Post("/upload",
		middleware.VerifyTastegentToken(deps.Config.JWT.Secret),
		middleware.AuthorizeRole(domain.RoleAdmin),
		uploadHandler.Upload,
	)

	// Admin catalog management
	admin := app.Group("/admin")
	admin.Use(middleware.VerifyTastegentToken(deps.Config.JWT.Secret))
	admin.Use(middleware.AuthorizeRole(domain.RoleAdmin))
	if deps.RedisClient != nil {
		admin.Use(middleware.IdempotencyMiddleware(deps.RedisClient, idempotencyTTL))
	}

	admin.Post("/menu", menuHandler.CreateMenuItem)
	admin.Put("/menu/:id", menuHandler.UpdateMenuItem)
	admin.Put("/menu/:id/image", menuHandler.AssociateImage)
	admin.Delete("/menu/:id", menuHandler.DeleteMenuItem)

	return app
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}
	log.Printf("Error: %v", err)
	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}
