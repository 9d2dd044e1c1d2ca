package menu

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"transaction-analyzer/internal/service"
	"transaction-analyzer/models"
)

const prompt = `
Choose an action (enter its number):
1.  Show unique transaction types
2.  Show total amount of all transactions
3.  Show total amount for a period (2019, 1, 1)
4.  Show transactions of a type (debit)
5.  Show transactions in a date range (2019-01-01 to 2019-01-31)
6.  Show transactions by merchant (SuperMart)
7.  Show average transaction amount
8.  Show transactions in an amount range (100-200)
9.  Show total debit amount
10. Show month with the most transactions
11. Show month with the most debit transactions
12. Show dominant transaction type
13. Show transactions before a date (2019-01-15)
14. Find transaction by ID (1)
15. Show transaction descriptions (first 5)
16. Add a new transaction
17. Show all transactions
18. Show summary report
0.  Exit

Your choice: `

// Menu is the interactive text front end over a transaction store.
type Menu struct {
	analyzer service.TransactionQuerier
	report   service.ReportService
	in       *bufio.Scanner
	out      io.Writer
	log      *zap.Logger
	eof      bool
}

func New(analyzer service.TransactionQuerier, report service.ReportService, in io.Reader, out io.Writer, log *zap.Logger) *Menu {
	if log == nil {
		log = zap.NewNop()
	}
	return &Menu{
		analyzer: analyzer,
		report:   report,
		in:       bufio.NewScanner(in),
		out:      out,
		log:      log,
	}
}

// Run loops until the user picks 0 or the input is exhausted.
func (m *Menu) Run() error {
	for {
		fmt.Fprint(m.out, prompt)
		choice, ok := m.readLine()
		if !ok {
			return m.in.Err()
		}
		if choice == "0" {
			fmt.Fprintln(m.out, "\nGoodbye!")
			return nil
		}
		if !m.dispatch(choice) {
			fmt.Fprintln(m.out, "\nInvalid choice. Try again.")
		}
	}
}

func (m *Menu) dispatch(choice string) bool {
	a := m.analyzer
	switch choice {
	case "1":
		fmt.Fprintln(m.out, "\nUnique transaction types:", a.UniqueTransactionTypes())
	case "2":
		fmt.Fprintln(m.out, "\nTotal amount of all transactions:", service.FormatAmount(a.TotalAmount()))
	case "3":
		year, month, dayOfMonth := 2019, 1, 1
		total := a.TotalAmountByPeriod(models.PeriodFilter{Year: &year, Month: &month, Day: &dayOfMonth})
		fmt.Fprintln(m.out, "\nTotal amount for 2019-01-01:", service.FormatAmount(total))
	case "4":
		fmt.Fprintf(m.out, "\nDebit transactions: %d\n", len(a.TransactionsByType(models.TransactionTypeDebit)))
	case "5":
		start, _ := models.ParseDate("2019-01-01")
		end, _ := models.ParseDate("2019-01-31")
		fmt.Fprintf(m.out, "\nTransactions from 2019-01-01 to 2019-01-31: %d\n", len(a.TransactionsInDateRange(start, end)))
	case "6":
		fmt.Fprintln(m.out, "\nSuperMart transactions:")
		m.printTransactions(a.TransactionsByMerchant("SuperMart"))
	case "7":
		fmt.Fprintln(m.out, "\nAverage transaction amount:", service.FormatAmount(a.AverageAmount()))
	case "8":
		fmt.Fprintf(m.out, "\nTransactions from 100 to 200: %d\n", len(a.TransactionsByAmountRange(100, 200)))
	case "9":
		fmt.Fprintln(m.out, "\nTotal debit amount:", service.FormatAmount(a.TotalDebitAmount()))
	case "10":
		fmt.Fprintln(m.out, "\nMonth with the most transactions:", service.MonthName(a.MonthWithMostTransactions()))
	case "11":
		fmt.Fprintln(m.out, "\nMonth with the most debit transactions:", service.MonthName(a.MonthWithMostDebitTransactions()))
	case "12":
		fmt.Fprintln(m.out, "\nDominant transaction type:", a.DominantType())
	case "13":
		cutoff, _ := models.ParseDate("2019-01-15")
		fmt.Fprintf(m.out, "\nTransactions before 2019-01-15: %d\n", len(a.TransactionsBeforeDate(cutoff)))
	case "14":
		tx, ok := a.FindTransactionByID("1")
		if !ok {
			fmt.Fprintln(m.out, "\nTransaction with ID 1: not found")
			break
		}
		fmt.Fprintln(m.out, "\nTransaction with ID 1:")
		m.printTransactions([]models.Transaction{tx})
	case "15":
		descriptions := a.TransactionDescriptions()
		if len(descriptions) > 5 {
			descriptions = descriptions[:5]
		}
		fmt.Fprintf(m.out, "\nFirst 5 transaction descriptions: %q\n", descriptions)
	case "16":
		m.addTransaction()
	case "17":
		fmt.Fprintln(m.out, "\nAll transactions:")
		m.printTransactions(a.AllTransactions())
	case "18":
		if err := m.report.PrintSummary(m.out); err != nil {
			m.log.Error("failed to print summary", zap.Error(err))
		}
	default:
		return false
	}
	return true
}

func (m *Menu) addTransaction() {
	fmt.Fprintln(m.out, "\nAdding a new transaction:")
	id := m.analyzer.NextTransactionID()
	fmt.Fprintf(m.out, "\nGenerated transaction ID: %s\n", id)

	date := m.ask("Enter date (YYYY-MM-DD): ")
	amountRaw := m.ask("Enter amount: ")

	var typ string
	for {
		typ = m.ask("Enter type (debit/credit): ")
		if models.TransactionType(typ).IsValid() {
			break
		}
		if !m.hasInput() {
			fmt.Fprintln(m.out, "\nInput closed, transaction discarded.")
			return
		}
	}

	description := m.ask("Enter description: ")
	merchant := m.ask("Enter merchant name: ")
	card := m.ask("Enter card type: ")

	var amount any = amountRaw
	if f, err := strconv.ParseFloat(amountRaw, 64); err == nil {
		amount = f
	}

	in := models.TransactionInput{
		ID:           &id,
		Date:         &date,
		Amount:       amount,
		Type:         &typ,
		Description:  &description,
		MerchantName: &merchant,
		CardType:     &card,
	}
	if err := m.analyzer.AddTransaction(in); err != nil {
		m.log.Info("transaction rejected", zap.Error(err))
		fmt.Fprintln(m.out, "\nFailed to add transaction:", err)
		return
	}
	fmt.Fprintln(m.out, "\nTransaction added successfully!")
}

func (m *Menu) printTransactions(txs []models.Transaction) {
	if len(txs) == 0 {
		fmt.Fprintln(m.out, "  (none)")
		return
	}
	for _, tx := range txs {
		fmt.Fprintf(m.out, "  ID: %s, Date: %s, Amount: %s, Type: %s, Desc: %s, Merchant: %s, Card: %s\n",
			tx.ID, tx.Date, service.FormatAmount(tx.Amount), tx.Type, tx.Description, tx.MerchantName, tx.CardType)
	}
}

func (m *Menu) ask(question string) string {
	fmt.Fprint(m.out, question)
	answer, _ := m.readLine()
	return answer
}

func (m *Menu) readLine() (string, bool) {
	if !m.in.Scan() {
		m.eof = true
		return "", false
	}
	return strings.TrimSpace(m.in.Text()), true
}

func (m *Menu) hasInput() bool {
	return !m.eof
}
