package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"transaction-analyzer/internal/app"
	"transaction-analyzer/internal/config"
	"transaction-analyzer/internal/handler/rest"
	"transaction-analyzer/internal/logger"
	"transaction-analyzer/internal/service"
)

func main() {
	cfg, envLoaded := config.Load()

	zlog, err := logger.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zlog.Sync()

	if !envLoaded {
		zlog.Debug("no .env file found, using process environment")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	analyzer, err := app.NewAnalyzer(ctx, cfg, zlog)
	if err != nil {
		zlog.Fatal("failed to load transactions", zap.Error(err))
	}

	handler := rest.NewTransactionRestHandler(analyzer, service.NewReportService(analyzer), zlog)
	srv := handler.NewServer(cfg.HTTPAddr, cfg.CORSOrigins)

	go func() {
		zlog.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("http server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zlog.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("graceful shutdown failed", zap.Error(err))
		os.Exit(1)
	}
	zlog.Info("server stopped")
}
