package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"transaction-analyzer/internal/config"
	"transaction-analyzer/internal/db"
	"transaction-analyzer/internal/service"
	"transaction-analyzer/internal/util"
	"transaction-analyzer/models"
	"transaction-analyzer/repository"
)

// LoadTransactions reads the initial transaction set from the configured source.
func LoadTransactions(ctx context.Context, cfg config.AppConfig, log *zap.Logger) ([]models.Transaction, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("LoadTransactions: %w", err)
	}

	switch cfg.Source {
	case config.SourceMySQL:
		conn, err := db.Connect(ctx, cfg.DatabaseDSN, log)
		if err != nil {
			return nil, err
		}
		defer conn.Close()
		repo, err := repository.NewMySQLTransactionRepository(conn, cfg.TableName)
		if err != nil {
			return nil, err
		}
		return repo.GetAllTransactions(ctx)

	case config.SourcePostgres:
		pool, err := db.ConnectPostgres(ctx, cfg.DatabaseDSN, log)
		if err != nil {
			return nil, err
		}
		defer pool.Close()
		repo, err := repository.NewPostgresTransactionRepository(pool, cfg.TableName)
		if err != nil {
			return nil, err
		}
		return repo.GetAllTransactions(ctx)

	default:
		return util.NewDataLoaderForFile(cfg.TransactionsFile, log).LoadTransactions(cfg.TransactionsFile)
	}
}

// NewAnalyzer loads the initial set and wraps it in a TransactionAnalyzer.
func NewAnalyzer(ctx context.Context, cfg config.AppConfig, log *zap.Logger) (*service.TransactionAnalyzer, error) {
	transactions, err := LoadTransactions(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	log.Info("transactions loaded",
		zap.String("source", string(cfg.Source)),
		zap.Int("count", len(transactions)))
	return service.NewTransactionAnalyzer(transactions), nil
}
