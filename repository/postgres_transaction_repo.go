package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"transaction-analyzer/models"
)

// postgresTransactionRepository implements TransactionRepository for PostgreSQL.
type postgresTransactionRepository struct {
	pool  *pgxpool.Pool
	table string
}

// NewPostgresTransactionRepository creates a new PostgreSQL transaction
// repository reading from table.
func NewPostgresTransactionRepository(pool *pgxpool.Pool, table string) (TransactionRepository, error) {
	if !tableNameRe.MatchString(table) {
		return nil, fmt.Errorf("NewPostgresTransactionRepository: invalid table name %q", table)
	}
	return &postgresTransactionRepository{pool: pool, table: table}, nil
}

// GetAllTransactions retrieves every transaction in insertion order.
func (r *postgresTransactionRepository) GetAllTransactions(ctx context.Context) ([]models.Transaction, error) {
	query := fmt.Sprintf(`
        SELECT
            transaction_id, to_char(transaction_date, 'YYYY-MM-DD'), transaction_amount::float8,
            transaction_type, transaction_description, merchant_name, card_type
        FROM %s
        ORDER BY seq`, r.table)

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("GetAllTransactions: %w", err)
	}

	transactions, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Transaction, error) {
		var tx models.Transaction
		var txType string
		err := row.Scan(&tx.ID, &tx.Date, &tx.Amount, &txType, &tx.Description, &tx.MerchantName, &tx.CardType)
		tx.Type = models.TransactionType(txType)
		return tx, err
	})
	if err != nil {
		return nil, fmt.Errorf("GetAllTransactions: scan error: %w", err)
	}
	return transactions, nil
}
