// backend-go/cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/demandiq/backend-go/internal/api"
	"github.com/demandiq/backend-go/internal/artifact"
	"github.com/demandiq/backend-go/internal/cache"
	"github.com/demandiq/backend-go/internal/config"
	"github.com/demandiq/backend-go/internal/forecast"
	"github.com/demandiq/backend-go/internal/repository"
	"github.com/demandiq/backend-go/internal/repository/postgres"
	"github.com/demandiq/backend-go/internal/service"
	"github.com/demandiq/backend-go/pkg/logger"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	logger.SetLevel(cfg.Server.Mode)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	repo, cleanup, err := newSalesRepository(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize sales repository: %v", err)
	}
	defer cleanup()

	store, err := artifact.NewFSStore(cfg.App.ModelsDir)
	if err != nil {
		log.Fatalf("Failed to initialize artifact store: %v", err)
	}

	forecastCache, err := cache.NewForecastCache(cfg.Cache)
	if err != nil {
		log.Fatalf("Failed to initialize forecast cache: %v", err)
	}

	trainer := forecast.NewTrainer(store, forecast.DefaultGBTParams())
	registry := forecast.NewRegistry(
		forecast.NewLagModelStrategy(store),
		forecast.NewSeasonalStrategy(),
	)
	forecastService := service.NewForecastService(repo, registry, trainer, forecastCache)

	// Initialize HTTP server
	router := api.NewRouter(forecastService, cfg.Server.AllowedOrigins)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}

func newSalesRepository(cfg *config.Config) (repository.SalesRepository, func(), error) {
	switch cfg.App.DataSource {
	case "postgres":
		db, err := postgres.NewDB(&cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		return postgres.NewSalesRepository(db), func() { db.Close() }, nil
	default:
		dataset, err := repository.LoadCSVDataset(cfg.App.DatasetPath)
		if err != nil {
			return nil, nil, err
		}
		return dataset, func() {}, nil
	}
}
