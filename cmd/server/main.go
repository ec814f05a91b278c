package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/dhruvtx07/Movie-Booking-System-sub000/internal/api"
	"github.com/dhruvtx07/Movie-Booking-System-sub000/internal/app"
	"github.com/dhruvtx07/Movie-Booking-System-sub000/internal/config"
)

func main() {
	configPath := flag.String("config", ".", "directory containing config.yaml")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load(*configPath, logger)
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	a, err := app.Open(ctx, cfg, true, logger)
	if err != nil {
		logger.Fatal("failed to initialise report service", zap.Error(err))
	}
	defer a.Close()

	handler := api.NewRouter(api.NewHandler(a.Service, logger), api.RouterConfig{
		CORSOrigins:  cfg.Server.CORSOrigins,
		TenantHeader: cfg.Auth.TenantHeader,
		Explain:      cfg.Server.Explain,
	}, logger)

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Report.Timeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("starting report server", zap.String("addr", cfg.Server.Addr), zap.String("driver", cfg.Database.Driver))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}
	logger.Info("server exited")
}
