package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/placium/places-api/internal/app"
	"github.com/placium/places-api/internal/config"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	infra, err := app.NewInfrastructure(ctx, *cfg)
	if err != nil {
		log.Fatalf("Failed to initialize infrastructure: %v", err)
	}

	application, err := app.NewApp(infra, cfg)
	if err != nil {
		infra.Logger().Fatal("Failed to initialize application", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		infra.Logger().Info("Received shutdown signal")
		cancel()
	}()

	if err := application.Run(ctx); err != nil {
		infra.Logger().Fatal("Application failed", zap.Error(err))
	}
}
