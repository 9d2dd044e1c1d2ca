package binlog

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"transaction-analyzer/models"
)

// DefaultColumns is the column order of schema/mysql.sql, used when the
// server does not ship column names (binlog_row_metadata=MINIMAL).
var DefaultColumns = append([]string{"seq"}, models.Fields...)

// RowToInput maps one binlog row image to a candidate transaction. NULL or
// absent columns stay nil so validation reports them as missing.
func RowToInput(columns []string, row []any) models.TransactionInput {
	var in models.TransactionInput
	for i, col := range columns {
		if i >= len(row) || row[i] == nil {
			continue
		}
		v := row[i]
		switch strings.ToLower(col) {
		case models.FieldID:
			in.ID = stringPtr(v)
		case models.FieldDate:
			in.Date = datePtr(v)
		case models.FieldAmount:
			in.Amount = amountValue(v)
		case models.FieldType:
			in.Type = stringPtr(v)
		case models.FieldDescription:
			in.Description = stringPtr(v)
		case models.FieldMerchantName:
			in.MerchantName = stringPtr(v)
		case models.FieldCardType:
			in.CardType = stringPtr(v)
		}
	}
	return in
}

func stringPtr(v any) *string {
	var s string
	switch x := v.(type) {
	case string:
		s = x
	case []byte:
		s = string(x)
	default:
		s = fmt.Sprint(x)
	}
	return &s
}

func datePtr(v any) *string {
	if t, ok := v.(time.Time); ok {
		s := t.Format(models.DateLayout)
		return &s
	}
	return stringPtr(v)
}

// amountValue keeps numeric values as they are and turns textual DECIMAL
// payloads into decimals; anything else is passed through for validation.
func amountValue(v any) any {
	var s string
	switch x := v.(type) {
	case string:
		s = x
	case []byte:
		s = string(x)
	default:
		return v
	}
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return s
	}
	return d
}
