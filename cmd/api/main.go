package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/toolindex/toolindex-api/internal/config"
	"github.com/toolindex/toolindex-api/internal/domain/activity"
	"github.com/toolindex/toolindex-api/internal/domain/content"
	"github.com/toolindex/toolindex-api/internal/domain/moderation"
	"github.com/toolindex/toolindex-api/internal/domain/notification"
	"github.com/toolindex/toolindex-api/internal/domain/user"
	"github.com/toolindex/toolindex-api/internal/middleware"
	"github.com/toolindex/toolindex-api/internal/pkg/database"
	"github.com/toolindex/toolindex-api/internal/pkg/jwt"
	"github.com/toolindex/toolindex-api/internal/pkg/logger"
	pkgresponse "github.com/toolindex/toolindex-api/internal/pkg/response"
	"github.com/toolindex/toolindex-api/internal/pkg/storage"
)

func main() {
	cfg := config.Load()
	if err := logger.Init(logger.Config{Level: cfg.LogLevel, Environment: cfg.Env, LogFile: cfg.LogFile}); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize logger")
	}

	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Msg("Starting ToolIndex API")

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	redis, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer database.CloseRedis(redis)

	jwtService := jwt.NewService(cfg.JWTSecret, cfg.JWTAccessTTL)

	// ---------- Repositories ----------
	userRepo := user.NewRepository(db)
	contentStore := content.NewStore(db)
	activityRepo := activity.NewRepository(db)
	notificationRepo := notification.NewRepository(db)
	moderationRepo := moderation.NewRepository(db)
	actionRepo := moderation.NewActionRepository(db)
	statusRepo := moderation.NewStatusRepository(db)

	// ---------- Services ----------
	activityRecorder := activity.NewRecorder(activityRepo)
	notificationService := notification.NewService(notificationRepo)
	statusCache := moderation.NewRedisStatusCache(redis)
	moderationService := moderation.NewService(
		moderationRepo,
		actionRepo,
		statusRepo,
		contentStore,
		userRepo,
		notificationService,
		activityRecorder,
		statusCache,
	)

	exportStorage, err := storage.NewS3Storage(storage.Config{
		Endpoint:  cfg.S3Endpoint,
		Region:    cfg.S3Region,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
		Bucket:    cfg.S3ExportBucket,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create export storage")
	}
	activityExporter := activity.NewExporter(activityRepo, exportStorage)

	// ---------- Handlers ----------
	moderationHandler := moderation.NewHandler(moderationService)
	notificationHandler := notification.NewHandler(notificationService)
	activityHandler := activity.NewHandler(activityRepo, activityExporter)

	authMiddleware := middleware.Auth(jwtService)

	// ---------- Router ----------
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.CORSHandler(cfg.AllowedOrigins))
	r.Use(chimw.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		pkgresponse.OK(w, map[string]string{
			"status":  "ok",
			"version": "1.0.0",
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/moderation", moderationHandler.Routes(authMiddleware, moderationService))
		r.Mount("/notifications", notificationHandler.Routes(authMiddleware))
		r.Mount("/activity", activityHandler.Routes(authMiddleware))
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}
