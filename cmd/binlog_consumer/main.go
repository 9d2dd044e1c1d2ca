package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"transaction-analyzer/internal/app"
	"transaction-analyzer/internal/binlog"
	"transaction-analyzer/internal/config"
	"transaction-analyzer/internal/db"
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
	if err := cfg.ValidateBinlog(); err != nil {
		zlog.Fatal("invalid binlog configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	analyzer, err := app.NewAnalyzer(ctx, cfg, zlog)
	if err != nil {
		zlog.Fatal("failed to load transactions", zap.Error(err))
	}

	conn, err := db.Connect(ctx, cfg.DatabaseDSN, zlog)
	if err != nil {
		zlog.Fatal("failed to connect to MySQL", zap.Error(err))
	}
	defer conn.Close()

	handler := rest.NewTransactionRestHandler(analyzer, service.NewReportService(analyzer), zlog)
	srv := handler.NewServer(cfg.HTTPAddr, cfg.CORSOrigins)
	consumer := binlog.NewConsumer(cfg.Binlog, cfg.TableName, analyzer, zlog)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		zlog.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		return consumer.Run(gctx, conn)
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		zlog.Error("binlog consumer stopped with error", zap.Error(err))
		return
	}
	zlog.Info("binlog consumer exited")
}
