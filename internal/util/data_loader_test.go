package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"transaction-analyzer/models"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const sampleJSON = `[
  {
    "transaction_id": "1",
    "transaction_date": "2019-01-01",
    "transaction_amount": 100.0,
    "transaction_type": "debit",
    "transaction_description": "Payment for groceries",
    "merchant_name": "SuperMart",
    "card_type": "Visa"
  },
  {
    "transaction_id": "2",
    "transaction_date": "2019-01-02",
    "transaction_amount": 50,
    "transaction_type": "credit",
    "transaction_description": "Refund for returned item",
    "merchant_name": "OnlineShop",
    "card_type": "MasterCard"
  }
]`

func TestJSONDataLoader(t *testing.T) {
	path := writeFile(t, "transaction.json", sampleJSON)

	got, err := NewJSONDataLoader().LoadTransactions(path)

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, models.Transaction{
		ID:           "1",
		Date:         "2019-01-01",
		Amount:       100,
		Type:         models.TransactionTypeDebit,
		Description:  "Payment for groceries",
		MerchantName: "SuperMart",
		CardType:     "Visa",
	}, got[0])
	assert.Equal(t, models.TransactionTypeCredit, got[1].Type)
}

func TestJSONDataLoaderErrors(t *testing.T) {
	_, err := NewJSONDataLoader().LoadTransactions(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	_, err = NewJSONDataLoader().LoadTransactions(writeFile(t, "bad.json", `{"not": "an array"`))
	assert.Error(t, err)
}

func TestJSONDataLoaderEmptyArray(t *testing.T) {
	got, err := NewJSONDataLoader().LoadTransactions(writeFile(t, "empty.json", `[]`))

	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestCSVDataLoader(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	path := writeFile(t, "transactions.csv", ""+
		"card_type,transaction_id,transaction_date,transaction_amount,transaction_type,transaction_description,merchant_name\n"+
		"Visa,1,2019-01-01,100.5,debit,Groceries,SuperMart\n"+
		"Visa,2,2019-01-02\n"+
		"Amex,3,2019-01-03,abc,credit,Refund,Shop\n"+
		" MasterCard , 4 ,2019-02-01, 20 ,credit,Cashback,Bank\n")

	got, err := NewCSVDataLoader(zap.New(core)).LoadTransactions(path)

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].ID)
	assert.Equal(t, 100.5, got[0].Amount)
	assert.Equal(t, "Visa", got[0].CardType)
	assert.Equal(t, "4", got[1].ID)
	assert.Equal(t, "MasterCard", got[1].CardType)
	assert.Equal(t, 20.0, got[1].Amount)
	assert.Equal(t, 2, logs.Len())
}

func TestCSVDataLoaderHeaderOnly(t *testing.T) {
	got, err := NewCSVDataLoader(nil).LoadTransactions(writeFile(t, "empty.csv", ""))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCSVDataLoaderMissingColumn(t *testing.T) {
	path := writeFile(t, "short.csv", "transaction_id,transaction_date\n1,2019-01-01\n")

	_, err := NewCSVDataLoader(nil).LoadTransactions(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "transaction_amount")
}

func TestNewDataLoaderForFile(t *testing.T) {
	assert.IsType(t, &csvDataLoader{}, NewDataLoaderForFile("data/x.CSV", nil))
	assert.IsType(t, &jsonDataLoader{}, NewDataLoaderForFile("data/transaction.json", nil))
}
