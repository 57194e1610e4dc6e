package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/eGGnogSC/qbconnect/config"
	"github.com/eGGnogSC/qbconnect/infrastructure"
	"github.com/eGGnogSC/qbconnect/internal/logger"
	"github.com/eGGnogSC/qbconnect/routes"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Init(logger.Config{
		Env:         cfg.App.Env,
		Level:       cfg.App.LogLevel,
		ServiceName: "qbconnect",
	})
	defer func() { _ = logger.Sync() }()
	zlog := logger.Named("main")

	// Create context that can be cancelled
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Create dependency container
	container, err := infrastructure.NewContainer(ctx, cfg)
	if err != nil {
		zlog.Fatal("failed to initialize dependencies", logger.Err(err))
	}
	defer container.Shutdown()

	// Create router and set up routes
	router := mux.NewRouter()
	routes.SetupRoutes(router, container)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.Timeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.Timeout) * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		zlog.Info("server starting", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatal("server failed", logger.Err(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// Shutdown gracefully
	zlog.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zlog.Fatal("server shutdown failed", logger.Err(err))
	}

	zlog.Info("server gracefully stopped")
}
