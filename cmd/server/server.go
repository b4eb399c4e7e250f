package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	gormlogger "gorm.io/gorm/logger"

	"github.com/shadefast/moderation-api/internal/config"
	moderation "github.com/shadefast/moderation-api/internal/domain/moderation"
	trending "github.com/shadefast/moderation-api/internal/domain/trending"
	"github.com/shadefast/moderation-api/internal/infrastructure/auth"
	"github.com/shadefast/moderation-api/internal/infrastructure/database"
	"github.com/shadefast/moderation-api/internal/infrastructure/enforcement"
	"github.com/shadefast/moderation-api/internal/infrastructure/logger"
	"github.com/shadefast/moderation-api/internal/infrastructure/observability"
	"github.com/shadefast/moderation-api/internal/infrastructure/policywebhook"
	policycheckrepo "github.com/shadefast/moderation-api/internal/infrastructure/repository/policycheck"
	trendingrepo "github.com/shadefast/moderation-api/internal/infrastructure/repository/trending"
	"github.com/shadefast/moderation-api/internal/infrastructure/storage"
	"github.com/shadefast/moderation-api/internal/interfaces/httpserver"
)

type Application struct {
	httpServer *httpserver.HttpServer
	log        zerolog.Logger
}

func NewApplication(httpServer *httpserver.HttpServer, log zerolog.Logger) *Application {
	return &Application{
		httpServer: httpServer,
		log:        log,
	}
}

func (a *Application) Start(ctx context.Context) error {
	return a.httpServer.Run(ctx)
}

func main() {
	loadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := observability.Setup(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize observability")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown telemetry")
		}
	}()

	db, err := database.Connect(database.Config{
		DSN:             cfg.DatabaseURL,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
		LogLevel:        gormlogger.Warn,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}

	if err := database.AutoMigrate(ctx, db, log); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	storageClient, err := provideStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize storage")
	}

	authValidator, err := auth.NewValidator(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize auth validator")
	}

	checkRepository := policycheckrepo.NewRepository(db)
	enforcementChecker := enforcement.NewChecker(db)
	policyClient := policywebhook.NewClient(cfg, storageClient, log)
	moderationService := moderation.NewService(cfg, checkRepository, storageClient, enforcementChecker, policyClient, log)

	trendingRepository := trendingrepo.NewRepository(db)
	trendingService := trending.NewService(trendingRepository, log)

	httpServer := httpserver.New(cfg, log, moderationService, trendingService, authValidator)
	app := NewApplication(httpServer, log)

	if err := app.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("application stopped with error")
	}

	log.Info().Msg("application exited cleanly")
}

// provideStorage creates the appropriate storage backend based on configuration.
func provideStorage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (moderation.ObjectStorage, error) {
	if cfg.IsLocalStorage() {
		return storage.NewLocalStorage(cfg, log)
	}
	return storage.NewS3Storage(ctx, cfg, log)
}

func loadEnvFiles() {
	paths := []string{".env", "../.env"}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Overload(path); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
			}
		}
	}
}
