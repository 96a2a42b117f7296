package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"promptlab/internal"
	"promptlab/internal/api"
	"promptlab/internal/config"
	"promptlab/internal/container"
	"promptlab/ui"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := internal.NewLogger(appConfig.Log.Level).WithComponent("server")
	gin.SetMode(appConfig.Server.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appContainer, err := container.New(appConfig, logger)
	if err != nil {
		log.Fatalf("Failed to create application container: %v", err)
	}
	if err := appContainer.InitSource(ctx); err != nil {
		log.Fatalf("Failed to open comparison source: %v", err)
	}
	defer appContainer.Shutdown(context.Background())

	apiRouter := api.NewRouter(
		api.NewStatsHandler(appContainer.Engine, logger.WithComponent("api")),
		api.NewComparisonHandler(appContainer.ComparisonService, appContainer.Source, logger.WithComponent("api")),
		logger.WithComponent("api"),
	)

	handler, err := ui.NewApp(ui.Config{API: apiRouter, Source: appContainer.Source}, appContainer.ComparisonService, logger)
	if err != nil {
		log.Fatalf("Failed to initialize server: %v", err)
	}

	server := &http.Server{
		Addr:    ":" + appConfig.Server.Port,
		Handler: handler,
	}

	go func() {
		logger.Info("starting promptlab server on port %s", appConfig.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), appConfig.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed: %v", err)
	}
}
