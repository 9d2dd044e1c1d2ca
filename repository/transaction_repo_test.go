package repository

import (
	"context"
	"database/sql"
	"os"
	"testing"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transaction-analyzer/models"
)

func TestTableNameValidation(t *testing.T) {
	for _, name := range []string{"transactions", "ledger.transactions", "_tx2"} {
		_, err := NewMySQLTransactionRepository(nil, name)
		assert.NoError(t, err, name)
		_, err = NewPostgresTransactionRepository(nil, name)
		assert.NoError(t, err, name)
	}

	for _, name := range []string{"", "tx; DROP TABLE x", "1tx", "a.b.c", "tx`"} {
		_, err := NewMySQLTransactionRepository(nil, name)
		assert.Error(t, err, name)
		_, err = NewPostgresTransactionRepository(nil, name)
		assert.Error(t, err, name)
	}
}

var seedRows = []models.Transaction{
	{ID: "1", Date: "2019-01-01", Amount: 100, Type: models.TransactionTypeDebit, Description: "groceries", MerchantName: "SuperMart", CardType: "Visa"},
	{ID: "2", Date: "2019-02-01", Amount: 50.25, Type: models.TransactionTypeCredit, Description: "refund", MerchantName: "Shop", CardType: "Amex"},
}

func TestMySQLTransactionRepositoryIntegration(t *testing.T) {
	dsn := os.Getenv("TEST_MYSQL_DSN")
	if dsn == "" {
		t.Skip("TEST_MYSQL_DSN not set")
	}
	ctx := context.Background()

	db, err := sql.Open("mysql", dsn)
	require.NoError(t, err)
	defer db.Close()

	schema, err := os.ReadFile("../schema/mysql.sql")
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, "DROP TABLE IF EXISTS transactions")
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, string(schema))
	require.NoError(t, err)
	for _, tx := range seedRows {
		_, err = db.ExecContext(ctx,
			"INSERT INTO transactions (transaction_id, transaction_date, transaction_amount, transaction_type, transaction_description, merchant_name, card_type) VALUES (?, ?, ?, ?, ?, ?, ?)",
			tx.ID, tx.Date, tx.Amount, tx.Type, tx.Description, tx.MerchantName, tx.CardType)
		require.NoError(t, err)
	}

	repo, err := NewMySQLTransactionRepository(db, "transactions")
	require.NoError(t, err)
	got, err := repo.GetAllTransactions(ctx)

	require.NoError(t, err)
	assert.Equal(t, seedRows, got)
}

func TestPostgresTransactionRepositoryIntegration(t *testing.T) {
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	defer pool.Close()

	schema, err := os.ReadFile("../schema/postgres.sql")
	require.NoError(t, err)
	_, err = pool.Exec(ctx, "DROP TABLE IF EXISTS transactions")
	require.NoError(t, err)
	_, err = pool.Exec(ctx, string(schema))
	require.NoError(t, err)
	for _, tx := range seedRows {
		_, err = pool.Exec(ctx,
			"INSERT INTO transactions (transaction_id, transaction_date, transaction_amount, transaction_type, transaction_description, merchant_name, card_type) VALUES ($1, $2::date, $3, $4, $5, $6, $7)",
			tx.ID, tx.Date, tx.Amount, string(tx.Type), tx.Description, tx.MerchantName, tx.CardType)
		require.NoError(t, err)
	}

	repo, err := NewPostgresTransactionRepository(pool, "transactions")
	require.NoError(t, err)
	got, err := repo.GetAllTransactions(ctx)

	require.NoError(t, err)
	assert.Equal(t, seedRows, got)
}
