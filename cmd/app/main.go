package main

import (
	"context"
	"log"
	"os"

	"go.uber.org/zap"

	"transaction-analyzer/internal/app"
	"transaction-analyzer/internal/config"
	"transaction-analyzer/internal/logger"
	"transaction-analyzer/internal/menu"
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

	analyzer, err := app.NewAnalyzer(context.Background(), cfg, zlog)
	if err != nil {
		zlog.Fatal("failed to load transactions", zap.Error(err))
	}

	m := menu.New(analyzer, service.NewReportService(analyzer), os.Stdin, os.Stdout, zlog)
	if err := m.Run(); err != nil {
		zlog.Fatal("menu stopped", zap.Error(err))
	}
}
