package service

import (
	"math"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"transaction-analyzer/models"
)

// TransactionQuerier is the read and append surface of the transaction store.
type TransactionQuerier interface {
	UniqueTransactionTypes() []models.TransactionType
	TotalAmount() float64
	TotalAmountByPeriod(filter models.PeriodFilter) float64
	TransactionsByType(t models.TransactionType) []models.Transaction
	TransactionsInDateRange(start, end time.Time) []models.Transaction
	TransactionsByMerchant(merchantName string) []models.Transaction
	AverageAmount() float64
	TransactionsByAmountRange(minAmount, maxAmount float64) []models.Transaction
	TotalDebitAmount() float64
	MonthWithMostTransactions() int
	MonthWithMostDebitTransactions() int
	DominantType() models.DominantType
	TransactionsBeforeDate(cutoff time.Time) []models.Transaction
	FindTransactionByID(id string) (models.Transaction, bool)
	TransactionDescriptions() []string
	AddTransaction(in models.TransactionInput) error
	AllTransactions() []models.Transaction
	NextTransactionID() string
	Count() int
}

// TransactionAnalyzer is an ordered in-memory set of transactions. Insertion
// order is the only ordering guarantee. AddTransaction is the only mutation.
type TransactionAnalyzer struct {
	mu           sync.RWMutex
	transactions []models.Transaction
}

var _ TransactionQuerier = (*TransactionAnalyzer)(nil)

// NewTransactionAnalyzer builds a store from an initial set. The records are
// copied and never validated.
func NewTransactionAnalyzer(transactions []models.Transaction) *TransactionAnalyzer {
	return &TransactionAnalyzer{transactions: slices.Clone(transactions)}
}

// Count returns the number of stored transactions.
func (a *TransactionAnalyzer) Count() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.transactions)
}

// UniqueTransactionTypes returns each type once, in order of first appearance.
func (a *TransactionAnalyzer) UniqueTransactionTypes() []models.TransactionType {
	a.mu.RLock()
	defer a.mu.RUnlock()

	seen := make(map[models.TransactionType]bool)
	types := []models.TransactionType{}
	for _, tx := range a.transactions {
		if seen[tx.Type] {
			continue
		}
		seen[tx.Type] = true
		types = append(types, tx.Type)
	}
	return types
}

func (a *TransactionAnalyzer) TotalAmount() float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return sumAmounts(a.transactions, func(models.Transaction) bool { return true })
}

// TotalAmountByPeriod sums transactions whose date matches every component
// present in filter. An empty filter yields the grand total.
func (a *TransactionAnalyzer) TotalAmountByPeriod(filter models.PeriodFilter) float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()

	year, month, day := provided(filter.Year), provided(filter.Month), provided(filter.Day)
	if year == nil && month == nil && day == nil {
		return sumAmounts(a.transactions, func(models.Transaction) bool { return true })
	}

	return sumAmounts(a.transactions, func(tx models.Transaction) bool {
		d, ok := tx.Time()
		if !ok {
			return false
		}
		return (year == nil || d.Year() == *year) &&
			(month == nil || int(d.Month()) == *month) &&
			(day == nil || d.Day() == *day)
	})
}

func (a *TransactionAnalyzer) TransactionsByType(t models.TransactionType) []models.Transaction {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return filter(a.transactions, func(tx models.Transaction) bool { return tx.Type == t })
}

// TransactionsInDateRange returns transactions dated within [start, end].
func (a *TransactionAnalyzer) TransactionsInDateRange(start, end time.Time) []models.Transaction {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return filter(a.transactions, func(tx models.Transaction) bool {
		d, ok := tx.Time()
		return ok && !d.Before(start) && !d.After(end)
	})
}

func (a *TransactionAnalyzer) TransactionsByMerchant(merchantName string) []models.Transaction {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return filter(a.transactions, func(tx models.Transaction) bool { return tx.MerchantName == merchantName })
}

// AverageAmount returns 0 for an empty store.
func (a *TransactionAnalyzer) AverageAmount() float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if len(a.transactions) == 0 {
		return 0
	}
	total := sumAmounts(a.transactions, func(models.Transaction) bool { return true })
	return total / float64(len(a.transactions))
}

// TransactionsByAmountRange returns transactions with minAmount <= amount <= maxAmount.
func (a *TransactionAnalyzer) TransactionsByAmountRange(minAmount, maxAmount float64) []models.Transaction {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return filter(a.transactions, func(tx models.Transaction) bool {
		return tx.Amount >= minAmount && tx.Amount <= maxAmount
	})
}

func (a *TransactionAnalyzer) TotalDebitAmount() float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return sumAmounts(a.transactions, func(tx models.Transaction) bool { return tx.Type == models.TransactionTypeDebit })
}

// MonthWithMostTransactions returns the month (1-12) with the highest count.
// Ties go to the lower month; an empty store yields 1.
func (a *TransactionAnalyzer) MonthWithMostTransactions() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return busiestMonth(a.transactions)
}

func (a *TransactionAnalyzer) MonthWithMostDebitTransactions() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return busiestMonth(filter(a.transactions, func(tx models.Transaction) bool {
		return tx.Type == models.TransactionTypeDebit
	}))
}

// DominantType compares counts, not amounts.
func (a *TransactionAnalyzer) DominantType() models.DominantType {
	a.mu.RLock()
	defer a.mu.RUnlock()

	var debits, credits int
	for _, tx := range a.transactions {
		switch tx.Type {
		case models.TransactionTypeDebit:
			debits++
		case models.TransactionTypeCredit:
			credits++
		}
	}

	switch {
	case debits > credits:
		return models.DominantDebit
	case credits > debits:
		return models.DominantCredit
	default:
		return models.DominantEqual
	}
}

// TransactionsBeforeDate returns transactions dated strictly before cutoff.
func (a *TransactionAnalyzer) TransactionsBeforeDate(cutoff time.Time) []models.Transaction {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return filter(a.transactions, func(tx models.Transaction) bool {
		d, ok := tx.Time()
		return ok && d.Before(cutoff)
	})
}

// FindTransactionByID returns the first transaction with the given id.
func (a *TransactionAnalyzer) FindTransactionByID(id string) (models.Transaction, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	for _, tx := range a.transactions {
		if tx.ID == id {
			return tx, true
		}
	}
	return models.Transaction{}, false
}

func (a *TransactionAnalyzer) TransactionDescriptions() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	descriptions := make([]string, 0, len(a.transactions))
	for _, tx := range a.transactions {
		descriptions = append(descriptions, tx.Description)
	}
	return descriptions
}

// AddTransaction validates in and appends it. On error the store is unchanged.
// Ids are not checked for uniqueness and dates are stored as given.
func (a *TransactionAnalyzer) AddTransaction(in models.TransactionInput) error {
	tx, err := validateTransaction(in)
	if err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.transactions = append(a.transactions, tx)
	return nil
}

// AllTransactions returns a copy of the stored sequence.
func (a *TransactionAnalyzer) AllTransactions() []models.Transaction {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := make([]models.Transaction, len(a.transactions))
	copy(out, a.transactions)
	return out
}

// NextTransactionID returns one past the highest numeric id. Stores whose ids
// are all non-numeric get a random UUID instead.
func (a *TransactionAnalyzer) NextTransactionID() string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if len(a.transactions) == 0 {
		return "1"
	}

	maxID, found := int64(0), false
	for _, tx := range a.transactions {
		n, err := strconv.ParseInt(tx.ID, 10, 64)
		if err != nil {
			continue
		}
		if !found || n > maxID {
			maxID, found = n, true
		}
	}
	if !found {
		return uuid.NewString()
	}
	return strconv.FormatInt(maxID+1, 10)
}

func validateTransaction(in models.TransactionInput) (models.Transaction, error) {
	required := []struct {
		name    string
		present bool
	}{
		{models.FieldID, in.ID != nil},
		{models.FieldDate, in.Date != nil},
		{models.FieldAmount, in.Amount != nil},
		{models.FieldType, in.Type != nil},
		{models.FieldDescription, in.Description != nil},
		{models.FieldMerchantName, in.MerchantName != nil},
		{models.FieldCardType, in.CardType != nil},
	}
	for _, f := range required {
		if !f.present {
			return models.Transaction{}, &ValidationError{Field: f.name, Err: ErrMissingField}
		}
	}

	txType := models.TransactionType(*in.Type)
	if !txType.IsValid() {
		return models.Transaction{}, &ValidationError{Field: models.FieldType, Err: ErrInvalidType}
	}

	amount, ok := numericAmount(in.Amount)
	if !ok || amount < 0 {
		return models.Transaction{}, &ValidationError{Field: models.FieldAmount, Err: ErrInvalidAmount}
	}

	return models.Transaction{
		ID:           *in.ID,
		Date:         *in.Date,
		Amount:       amount,
		Type:         txType,
		Description:  *in.Description,
		MerchantName: *in.MerchantName,
		CardType:     *in.CardType,
	}, nil
}

// numericAmount accepts Go numeric kinds, decimals and json.Number-like
// values. Strings are not numbers here, even if they look like one.
func numericAmount(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint32:
		f = float64(n)
	case uint64:
		f = float64(n)
	case decimal.Decimal:
		f = n.InexactFloat64()
	case interface{ Float64() (float64, error) }:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func provided(v *int) *int {
	if v == nil || *v == 0 {
		return nil
	}
	return v
}

func filter(transactions []models.Transaction, keep func(models.Transaction) bool) []models.Transaction {
	out := []models.Transaction{}
	for _, tx := range transactions {
		if keep(tx) {
			out = append(out, tx)
		}
	}
	return out
}

func sumAmounts(transactions []models.Transaction, keep func(models.Transaction) bool) float64 {
	var total float64
	for _, tx := range transactions {
		if keep(tx) {
			total += tx.Amount
		}
	}
	return total
}

func busiestMonth(transactions []models.Transaction) int {
	var counts [13]int
	for _, tx := range transactions {
		d, ok := tx.Time()
		if !ok {
			continue
		}
		counts[d.Month()]++
	}

	maxMonth, maxCount := 1, 0
	for month := 1; month <= 12; month++ {
		if counts[month] > maxCount {
			maxMonth, maxCount = month, counts[month]
		}
	}
	return maxMonth
}
