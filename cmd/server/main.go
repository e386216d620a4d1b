package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/modaflow/retail-insights/internal/api"
	"github.com/modaflow/retail-insights/internal/api/handlers"
	"github.com/modaflow/retail-insights/internal/cache"
	"github.com/modaflow/retail-insights/internal/config"
	"github.com/modaflow/retail-insights/internal/database"
	"github.com/modaflow/retail-insights/internal/logging"
	"github.com/modaflow/retail-insights/internal/services"
)

func main() {
	// Optional .env for local development
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logrus.SetLevel(logging.ParseLogrusLevel(cfg.LogLevel))
	logger := logging.NewLogger(cfg.LogLevel)

	db, err := database.NewPostgresConnection(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	redis, err := database.NewRedisConnection(cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redis.Close()

	repo := database.NewBusinessRepository(db)
	forecastCache := cache.NewRedisForecastCache(redis.Client, cfg.Analytics.CacheTTL)
	forecastService := services.NewForecastService(cfg.Analytics, logging.WithComponent(logger, "forecast"))
	insightService := services.NewInsightService(cfg.Analytics, logging.WithComponent(logger, "insights"))

	if cfg.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	forecastHandler := handlers.NewForecastHandler(repo, forecastService, forecastCache, cfg.Analytics, logging.WithComponent(logger, "api"))
	insightsHandler := handlers.NewInsightsHandler(repo, insightService, cfg.Analytics, logging.WithComponent(logger, "api"))
	api.SetupRoutes(router, db, redis, forecastHandler, insightsHandler)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on port %d", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
