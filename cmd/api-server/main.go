package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"yamdb/database"
	"yamdb/internal/config"
	"yamdb/internal/logging"
	"yamdb/internal/mail"
	"yamdb/internal/metrics"
	"yamdb/internal/microservices/http-api/handler"
	"yamdb/internal/microservices/http-api/repository"
	"yamdb/internal/microservices/http-api/service"
	"yamdb/internal/permission"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := run(cfg, logger); err != nil {
		logger.WithError(err).Fatal("api server stopped")
	}
}

func run(cfg *config.Config, logger *logrus.Logger) error {
	db, err := database.Connect(cfg.DatabaseURL, logger)
	if err != nil {
		return err
	}
	defer database.Close(db)

	if err := database.Migrate(db, logger); err != nil {
		return err
	}

	mailer, closeMailer, err := newMailer(cfg, logger)
	if err != nil {
		return err
	}
	defer closeMailer()

	var m *metrics.Metrics
	if cfg.PrometheusEnabled {
		m = metrics.New()
	}

	router := handler.NewRouter(newServices(db, mailer, cfg, logger, m), handler.RouterOptions{
		Logger:           logger,
		Metrics:          m,
		SignupRatePerMin: cfg.SignupRatePerMin,
		Health:           pingDB(db),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.WithField("addr", srv.Addr).Info("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newServices(db *gorm.DB, mailer service.Mailer, cfg *config.Config, logger *logrus.Logger, m *metrics.Metrics) handler.Services {
	perm := permission.NewEvaluator()
	tokens := service.NewJWTIssuer(cfg.JWTSecret, cfg.AccessTokenTTL)

	users := repository.NewUserRepository(db)
	categories := repository.NewCategoryRepository(db)
	genres := repository.NewGenreRepository(db)
	titles := repository.NewTitleRepo(db)
	reviews := repository.NewReviewRepository(db)
	comments := repository.NewCommentRepository(db)

	return handler.Services{
		Auth:       service.NewAuthService(users, mailer, tokens, logger, m),
		Users:      service.NewUserService(users, perm, logger),
		Categories: service.NewCategoryService(categories, perm, logger),
		Genres:     service.NewGenreService(genres, perm, logger),
		Titles:     service.NewTitleService(titles, categories, genres, perm, logger),
		Reviews:    service.NewReviewService(reviews, titles, perm, logger),
		Comments:   service.NewCommentService(comments, reviews, perm, logger),
	}
}

// newMailer picks the confirmation code transport from MAIL_BACKEND.
func newMailer(cfg *config.Config, logger *logrus.Logger) (service.Mailer, func(), error) {
	switch cfg.MailBackend {
	case "redis":
		client, err := mail.NewRedisClient(cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("confirmation codes go to the redis outbox")
		return mail.NewRedisOutbox(client), func() { _ = client.Close() }, nil
	default:
		return mail.NewLogMailer(logger), func() {}, nil
	}
}

func pingDB(db *gorm.DB) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
}
