//go:build wireinject

package main

import (
	"context"

	"github.com/google/wire"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/shadefast/moderation-api/internal/config"
	moderation "github.com/shadefast/moderation-api/internal/domain/moderation"
	trending "github.com/shadefast/moderation-api/internal/domain/trending"
	"github.com/shadefast/moderation-api/internal/infrastructure/auth"
	"github.com/shadefast/moderation-api/internal/infrastructure/database"
	"github.com/shadefast/moderation-api/internal/infrastructure/enforcement"
	"github.com/shadefast/moderation-api/internal/infrastructure/logger"
	"github.com/shadefast/moderation-api/internal/infrastructure/policywebhook"
	policycheckrepo "github.com/shadefast/moderation-api/internal/infrastructure/repository/policycheck"
	trendingrepo "github.com/shadefast/moderation-api/internal/infrastructure/repository/trending"
	"github.com/shadefast/moderation-api/internal/interfaces/httpserver"
)

var moderationSet = wire.NewSet(
	policycheckrepo.NewRepository,
	wire.Bind(new(moderation.CheckRepository), new(*policycheckrepo.Repository)),
	provideStorage,
	wire.Bind(new(policywebhook.Presigner), new(moderation.ObjectStorage)),
	enforcement.NewChecker,
	wire.Bind(new(moderation.Enforcement), new(*enforcement.Checker)),
	policywebhook.NewClient,
	wire.Bind(new(moderation.PolicyProvider), new(*policywebhook.Client)),
	moderation.NewService,
)

var trendingSet = wire.NewSet(
	trendingrepo.NewRepository,
	wire.Bind(new(trending.Repository), new(*trendingrepo.Repository)),
	trending.NewService,
)

// BuildApplication assembles the moderation API with Wire.
func BuildApplication(ctx context.Context) (*Application, error) {
	wire.Build(
		config.Load,
		logger.New,
		auth.NewValidator,
		newDatabaseConfig,
		newGormDB,
		moderationSet,
		trendingSet,
		httpserver.New,
		NewApplication,
	)
	return nil, nil
}

func newDatabaseConfig(cfg *config.Config) database.Config {
	return database.Config{
		DSN:             cfg.DatabaseURL,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
		LogLevel:        gormlogger.Warn,
	}
}

func newGormDB(ctx context.Context, cfg database.Config, log zerolog.Logger) (*gorm.DB, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.AutoMigrate(ctx, db, log); err != nil {
		return nil, err
	}
	return db, nil
}
