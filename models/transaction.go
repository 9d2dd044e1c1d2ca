package models

import (
	"time"
)

// TransactionType is the direction of a transaction.
type TransactionType string

const (
	TransactionTypeDebit  TransactionType = "debit"
	TransactionTypeCredit TransactionType = "credit"
)

// IsValid reports whether t is one of the two accepted types.
func (t TransactionType) IsValid() bool {
	return t == TransactionTypeDebit || t == TransactionTypeCredit
}

// DominantType is the answer to "which type occurs more often".
type DominantType string

const (
	DominantDebit  DominantType = "debit"
	DominantCredit DominantType = "credit"
	DominantEqual  DominantType = "equal"
)

// Wire names shared by the JSON file, the CSV header and the database columns.
const (
	FieldID           = "transaction_id"
	FieldDate         = "transaction_date"
	FieldAmount       = "transaction_amount"
	FieldType         = "transaction_type"
	FieldDescription  = "transaction_description"
	FieldMerchantName = "merchant_name"
	FieldCardType     = "card_type"
)

// Fields lists the wire names in canonical column order.
var Fields = []string{
	FieldID,
	FieldDate,
	FieldAmount,
	FieldType,
	FieldDescription,
	FieldMerchantName,
	FieldCardType,
}

const DateLayout = "2006-01-02"

type Transaction struct {
	ID           string          `json:"transaction_id"`
	Date         string          `json:"transaction_date"` // stored as given, parsed on demand
	Amount       float64         `json:"transaction_amount"`
	Type         TransactionType `json:"transaction_type"`
	Description  string          `json:"transaction_description"`
	MerchantName string          `json:"merchant_name"`
	CardType     string          `json:"card_type"`
}

// Time parses the stored date. ok is false when the date is not parseable.
func (t Transaction) Time() (time.Time, bool) {
	d, err := ParseDate(t.Date)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// Input converts a stored transaction back into a candidate for AddTransaction.
func (t Transaction) Input() TransactionInput {
	id, date, typ := t.ID, t.Date, string(t.Type)
	desc, merchant, card := t.Description, t.MerchantName, t.CardType
	return TransactionInput{
		ID:           &id,
		Date:         &date,
		Amount:       t.Amount,
		Type:         &typ,
		Description:  &desc,
		MerchantName: &merchant,
		CardType:     &card,
	}
}

// TransactionInput is an unvalidated candidate record. A nil field is absent.
// Amount holds whatever the caller decoded, so a non-numeric value can be
// reported as such rather than failing at decode time.
type TransactionInput struct {
	ID           *string `json:"transaction_id"`
	Date         *string `json:"transaction_date"`
	Amount       any     `json:"transaction_amount"`
	Type         *string `json:"transaction_type"`
	Description  *string `json:"transaction_description"`
	MerchantName *string `json:"merchant_name"`
	CardType     *string `json:"card_type"`
}

// PeriodFilter selects transactions by calendar components. A nil or zero
// component is not applied.
type PeriodFilter struct {
	Year  *int
	Month *int // 1-12
	Day   *int
}

// ParseDate parses a YYYY-MM-DD date, falling back to RFC3339 timestamps.
// The result is midnight UTC of the calendar day.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, s)
	if err == nil {
		return d, nil
	}
	ts, tsErr := time.Parse(time.RFC3339, s)
	if tsErr != nil {
		return time.Time{}, err
	}
	return time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC), nil
}
