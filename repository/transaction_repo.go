package repository

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	"transaction-analyzer/models"
)

var tableNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// mysqlTransactionRepository implements TransactionRepository for MySQL.
type mysqlTransactionRepository struct {
	db    *sql.DB
	table string
}

// NewMySQLTransactionRepository creates a new MySQL transaction repository
// reading from table.
func NewMySQLTransactionRepository(db *sql.DB, table string) (TransactionRepository, error) {
	if !tableNameRe.MatchString(table) {
		return nil, fmt.Errorf("NewMySQLTransactionRepository: invalid table name %q", table)
	}
	return &mysqlTransactionRepository{db: db, table: table}, nil
}

// GetAllTransactions retrieves every transaction in insertion order.
func (r *mysqlTransactionRepository) GetAllTransactions(ctx context.Context) ([]models.Transaction, error) {
	query := fmt.Sprintf(`
        SELECT
            transaction_id, DATE_FORMAT(transaction_date, '%%Y-%%m-%%d'), transaction_amount,
            transaction_type, transaction_description, merchant_name, card_type
        FROM %s
        ORDER BY seq`, r.table)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("GetAllTransactions: %w", err)
	}
	defer rows.Close()

	transactions := []models.Transaction{}
	for rows.Next() {
		var tx models.Transaction
		var txType string
		if err := rows.Scan(&tx.ID, &tx.Date, &tx.Amount, &txType, &tx.Description, &tx.MerchantName, &tx.CardType); err != nil {
			return nil, fmt.Errorf("GetAllTransactions: scan error: %w", err)
		}
		tx.Type = models.TransactionType(txType)
		transactions = append(transactions, tx)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("GetAllTransactions: rows iteration error: %w", err)
	}
	return transactions, nil
}
