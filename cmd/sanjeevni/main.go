package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sanjeevni-health/sanjeevni/db"
	"github.com/sanjeevni-health/sanjeevni/internal/auth"
	"github.com/sanjeevni-health/sanjeevni/internal/config"
	"github.com/sanjeevni-health/sanjeevni/internal/handlers"
	"github.com/sanjeevni-health/sanjeevni/internal/logger"
	"github.com/sanjeevni-health/sanjeevni/internal/router"
	"github.com/sanjeevni-health/sanjeevni/internal/services"
	"github.com/sanjeevni-health/sanjeevni/internal/storage"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading configuration from the environment")
	}

	cfg := config.Load()

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	sugar, err := logger.New(cfg.Env, cfg.LogLevel)

	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer sugar.Sync()

	logger.Set(sugar)

	auth.Configure(cfg.JWTSecret, cfg.TokenTTL, cfg.ResetTokenTTL)

	if err := db.ConnectDatabase(cfg.DatabaseURL, cfg.LogLevel == "debug"); err != nil {
		sugar.Fatalw("Failed to connect to database", "error", err)
	}

	if err := db.MigrateDatabase(); err != nil {
		sugar.Fatalw("Failed to migrate database", "error", err)
	}

	ctx := context.Background()

	services.Configure(services.Collaborators{
		Pusher:  newPusher(ctx, cfg),
		Mailer:  newMailer(cfg),
		Objects: newObjectStore(ctx, cfg),
	})

	handlers.Configure(handlers.Settings{
		CookieDomain:  cfg.CookieDomain,
		SecureCookies: cfg.IsProduction(),
		ClientURL:     cfg.ClientURL,
	})

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router.NewRouter(cfg.AllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		sugar.Infow("Server starting", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sugar.Fatalw("Server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	sugar.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		sugar.Errorw("Forced shutdown", "error", err)
	}
}

func newPusher(ctx context.Context, cfg *config.Config) services.Pusher {
	switch {
	case cfg.FirebaseCredentialsFile != "":
		pusher, err := services.NewFirebasePusher(ctx, cfg.FirebaseCredentialsFile)
		if err != nil {
			logger.L().Errorw("Firebase push disabled", "error", err)
			return services.NoopPusher{}
		}
		logger.L().Info("Push notifications via Firebase Cloud Messaging")
		return pusher
	case cfg.PushWebhookURL != "":
		logger.L().Info("Push notifications via webhook")
		return services.NewWebhookPusher(cfg.PushWebhookURL)
	default:
		logger.L().Warn("No push provider configured, notifications stay pending")
		return services.NoopPusher{}
	}
}

func newMailer(cfg *config.Config) services.Mailer {
	if !cfg.SMTPEnabled() {
		logger.L().Warn("SMTP not configured, emails are logged only")
		return services.LogMailer{}
	}

	return services.SMTPMailer{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	}
}

func newObjectStore(ctx context.Context, cfg *config.Config) storage.ObjectStore {
	if !cfg.S3Enabled() {
		logger.L().Warn("S3 not configured, profile picture uploads disabled")
		return nil
	}

	store, err := storage.NewS3Store(ctx, storage.S3Options{
		Bucket:        cfg.S3Bucket,
		Region:        cfg.S3Region,
		Endpoint:      cfg.S3Endpoint,
		PublicBaseURL: cfg.S3PublicBaseURL,
	})

	if err != nil {
		logger.L().Errorw("S3 storage disabled", "error", err)
		return nil
	}

	return store
}
