package router

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/tahmidr/glowfeed/backend/internal/chat"
	"github.com/tahmidr/glowfeed/backend/internal/ephemeral"
	"github.com/tahmidr/glowfeed/backend/internal/fanout"
	"github.com/tahmidr/glowfeed/backend/internal/handlers"
	"github.com/tahmidr/glowfeed/backend/internal/middleware"
	"github.com/tahmidr/glowfeed/backend/internal/models"
	"github.com/tahmidr/glowfeed/backend/internal/repositories"
	"github.com/tahmidr/glowfeed/backend/pkg/config"
)

// SetupMiddleware attaches the global middleware stack
func SetupMiddleware(e *echo.Echo) {
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())
	e.Use(echomw.CORS())
}

// SetupRoutes migrates the schema, wires repositories through the fan-out and
// ephemeral layers, and registers every route. The returned manager is handed
// to the background sweep loop.
func SetupRoutes(e *echo.Echo, db *config.DB, cfg *config.Config, mailer fanout.Mailer, chatClient chat.Client) (*ephemeral.Manager, error) {
	if err := db.Postgres.AutoMigrate(
		&models.User{},
		&models.Follow{},
		&models.Comment{},
		&models.CommentLike{},
		&models.Like{},
		&models.SavedPost{},
		&models.StoryView{},
		&models.Note{},
		&models.Notification{},
		&models.NotificationPreference{},
		&models.Media{},
	); err != nil {
		return nil, err
	}

	mongoDB := db.Mongo.Database("glowfeed")

	userRepo := repositories.NewPostgresUserRepository(db.Postgres)
	followRepo := repositories.NewPostgresFollowRepository(db.Postgres)
	postRepo := repositories.NewMongoPostRepository(mongoDB)
	commentRepo := repositories.NewPostgresCommentRepository(db.Postgres)
	commentLikeRepo := repositories.NewPostgresCommentLikeRepository(db.Postgres)
	likeRepo := repositories.NewPostgresLikeRepository(db.Postgres)
	savedRepo := repositories.NewPostgresSavedPostRepository(db.Postgres)
	storyRepo := repositories.NewStoryRepository(mongoDB, db.Postgres)
	noteRepo := repositories.NewPostgresNoteRepository(db.Postgres)
	notifRepo := repositories.NewPostgresNotificationRepository(db.Postgres)
	prefRepo := repositories.NewPostgresPreferenceRepository(db.Postgres)
	mediaRepo := repositories.NewPostgresMediaRepository(db.Postgres)

	resolver := fanout.NewResolver(userRepo, followRepo)
	gate := fanout.NewGate(prefRepo, userRepo)
	orchestrator := fanout.NewOrchestrator(resolver, gate, notifRepo, mailer)

	manager := ephemeral.NewManager(mediaRepo, storyRepo, noteRepo, followRepo)

	authHandler := handlers.NewAuthHandler(userRepo, cfg.JWTSecret)
	userHandler := handlers.NewUserHandler(userRepo, followRepo)
	followHandler := handlers.NewFollowHandler(followRepo, userRepo, orchestrator)
	postHandler := handlers.NewPostHandler(postRepo, userRepo, likeRepo, savedRepo, orchestrator)
	commentHandler := handlers.NewCommentHandler(commentRepo, commentLikeRepo, postRepo, userRepo, orchestrator)
	likeHandler := handlers.NewLikeHandler(likeRepo, postRepo, userRepo, orchestrator)
	feedHandler := handlers.NewFeedHandler(postRepo, followRepo, userRepo, likeRepo, savedRepo)
	savedHandler := handlers.NewSavedPostHandler(savedRepo, postRepo, userRepo)
	storyHandler := handlers.NewStoryHandler(manager, userRepo, orchestrator)
	noteHandler := handlers.NewNoteHandler(manager, userRepo)
	notifHandler := handlers.NewNotificationHandler(notifRepo, userRepo)
	settingsHandler := handlers.NewSettingsHandler(prefRepo)
	mediaHandler := handlers.NewMediaHandler(mediaRepo)
	fanoutHandler := handlers.NewFanoutHandler(orchestrator, chatClient, userRepo, cfg.WebhookSecret)
	cleanupHandler := handlers.NewCleanupHandler(manager, cfg.CronSecret)

	e.GET("/health", handlers.HealthCheck)

	api := e.Group("/api/v1")

	// Public surface: signup/signin, the chat provider webhook (shared-secret
	// header) and the scheduler's sweep endpoint (bearer cron secret).
	authHandler.RegisterAuthRoutes(api.Group("/auth"))
	fanoutHandler.RegisterWebhookRoutes(e.Group(""))
	cleanupHandler.RegisterCleanupRoutes(e.Group("/internal"))

	protected := api.Group("", middleware.JWTAuthMiddleware(cfg.JWTSecret))
	userHandler.RegisterUserRoutes(protected)
	followHandler.RegisterFollowRoutes(protected)
	postHandler.RegisterPostRoutes(protected)
	commentHandler.RegisterCommentRoutes(protected)
	likeHandler.RegisterLikeRoutes(protected)
	feedHandler.RegisterFeedRoutes(protected)
	savedHandler.RegisterSavedPostRoutes(protected)
	storyHandler.RegisterStoryRoutes(protected)
	noteHandler.RegisterNoteRoutes(protected)
	notifHandler.RegisterNotificationRoutes(protected)
	settingsHandler.RegisterSettingsRoutes(protected)
	mediaHandler.RegisterMediaRoutes(protected)
	fanoutHandler.RegisterFanoutRoutes(protected)

	return manager, nil
}
