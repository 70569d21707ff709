package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/placium/places-api/internal/config"
	"github.com/placium/places-api/pkg/database"
	"github.com/placium/places-api/pkg/observability"
)

type Infrastructure interface {
	Postgres() *database.Postgres
	Redis() *database.Redis
	Logger() *zap.Logger
	MetricsHandler() http.Handler

	Shutdown(ctx context.Context) error
}

type infrastructure struct {
	postgres  *database.Postgres
	redis     *database.Redis
	logger    *zap.Logger
	telemetry *observability.Telemetry
}

var _ Infrastructure = &infrastructure{}

func NewInfrastructure(ctx context.Context, cfg config.Config) (*infrastructure, error) {
	i := &infrastructure{}

	logger, err := observability.NewLogger(cfg.Env)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	i.logger = logger

	postgres, err := database.NewPostgres(cfg.Postgres.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	i.postgres = postgres

	if err := postgres.Migrate(cfg.Postgres.Migrations); err != nil {
		_ = i.postgres.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	redis, err := database.NewRedis(cfg.Redis.Address(), cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		_ = i.postgres.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	i.redis = redis

	telemetry, err := observability.NewTelemetry("places-api")
	if err != nil {
		_ = i.postgres.Close()
		_ = i.redis.Close()
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	i.telemetry = telemetry

	return i, nil
}

func (i *infrastructure) Postgres() *database.Postgres {
	return i.postgres
}

func (i *infrastructure) Redis() *database.Redis {
	return i.redis
}

func (i *infrastructure) Logger() *zap.Logger {
	return i.logger
}

func (i *infrastructure) MetricsHandler() http.Handler {
	return i.telemetry.Handler()
}

func (i *infrastructure) Shutdown(ctx context.Context) error {
	errs := make(chan error, 4)

	go func() { errs <- i.postgres.Close() }()
	go func() { errs <- i.redis.Close() }()
	go func() { errs <- i.logger.Sync() }()
	go func() { errs <- i.telemetry.Shutdown(ctx) }()

	return errors.Join(<-errs, <-errs, <-errs, <-errs)
}
