package service

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"transaction-analyzer/models"
)

// Summary collects every aggregate the store can answer without arguments.
type Summary struct {
	Count                 int                      `json:"count"`
	TotalAmount           float64                  `json:"total_amount"`
	AverageAmount         float64                  `json:"average_amount"`
	TotalDebitAmount      float64                  `json:"total_debit_amount"`
	TotalCreditAmount     float64                  `json:"total_credit_amount"`
	BusiestMonth          int                      `json:"busiest_month"`
	BusiestDebitMonth     int                      `json:"busiest_debit_month"`
	DominantType          models.DominantType      `json:"dominant_type"`
	UniqueTransactionType []models.TransactionType `json:"unique_transaction_types"`
}

// ReportService defines the interface for summary reporting.
type ReportService interface {
	Summarize() Summary
	PrintSummary(w io.Writer) error
}

// reportServiceImpl implements ReportService.
type reportServiceImpl struct {
	analyzer TransactionQuerier
}

// NewReportService creates a new report service.
func NewReportService(analyzer TransactionQuerier) ReportService {
	return &reportServiceImpl{analyzer: analyzer}
}

func (s *reportServiceImpl) Summarize() Summary {
	total := s.analyzer.TotalAmount()
	debit := s.analyzer.TotalDebitAmount()
	return Summary{
		Count:                 s.analyzer.Count(),
		TotalAmount:           total,
		AverageAmount:         s.analyzer.AverageAmount(),
		TotalDebitAmount:      debit,
		TotalCreditAmount:     total - debit,
		BusiestMonth:          s.analyzer.MonthWithMostTransactions(),
		BusiestDebitMonth:     s.analyzer.MonthWithMostDebitTransactions(),
		DominantType:          s.analyzer.DominantType(),
		UniqueTransactionType: s.analyzer.UniqueTransactionTypes(),
	}
}

// PrintSummary writes a plain-text summary report.
func (s *reportServiceImpl) PrintSummary(w io.Writer) error {
	sum := s.Summarize()

	types := make([]string, 0, len(sum.UniqueTransactionType))
	for _, t := range sum.UniqueTransactionType {
		types = append(types, string(t))
	}
	if len(types) == 0 {
		types = append(types, "None")
	}

	lines := []string{
		"\n--- Transaction Summary ---",
		fmt.Sprintf("  Transactions:         %d", sum.Count),
		fmt.Sprintf("  Total amount:         %s", FormatAmount(sum.TotalAmount)),
		fmt.Sprintf("  Average amount:       %s", FormatAmount(sum.AverageAmount)),
		fmt.Sprintf("  Debit total:          %s", FormatAmount(sum.TotalDebitAmount)),
		fmt.Sprintf("  Credit total:         %s", FormatAmount(sum.TotalCreditAmount)),
		fmt.Sprintf("  Busiest month:        %s", MonthName(sum.BusiestMonth)),
		fmt.Sprintf("  Busiest debit month:  %s", MonthName(sum.BusiestDebitMonth)),
		fmt.Sprintf("  Dominant type:        %s", sum.DominantType),
		fmt.Sprintf("  Transaction types:    %s", strings.Join(types, ", ")),
		"--- End of Summary ---",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("PrintSummary: %w", err)
		}
	}
	return nil
}

// FormatAmount renders an amount with two decimals.
func FormatAmount(amount float64) string {
	return decimal.NewFromFloat(amount).StringFixed(2)
}

// MonthName renders a month number as "3 (March)".
func MonthName(month int) string {
	if month < 1 || month > 12 {
		return fmt.Sprintf("%d", month)
	}
	return fmt.Sprintf("%d (%s)", month, time.Month(month))
}
