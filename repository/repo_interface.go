package repository

import (
	"context"

	"transaction-analyzer/models"
)

// TransactionRepository defines the read side of a transaction table used to
// seed the in-memory store.
type TransactionRepository interface {
	GetAllTransactions(ctx context.Context) ([]models.Transaction, error)
}
