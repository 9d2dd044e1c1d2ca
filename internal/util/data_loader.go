package util

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"transaction-analyzer/models"
)

// DataLoader defines the interface for loading the initial transaction set.
type DataLoader interface {
	LoadTransactions(filePath string) ([]models.Transaction, error)
}

// NewDataLoaderForFile picks a loader from the file extension: .csv files get
// the CSV loader, everything else is read as JSON.
func NewDataLoaderForFile(filePath string, log *zap.Logger) DataLoader {
	if strings.EqualFold(filepath.Ext(filePath), ".csv") {
		return NewCSVDataLoader(log)
	}
	return NewJSONDataLoader()
}

// jsonDataLoader reads a JSON array of transaction objects.
type jsonDataLoader struct{}

// NewJSONDataLoader creates a new JSON data loader.
func NewJSONDataLoader() DataLoader {
	return &jsonDataLoader{}
}

func (l *jsonDataLoader) LoadTransactions(filePath string) ([]models.Transaction, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("LoadTransactions: failed to read file %s: %w", filePath, err)
	}

	var transactions []models.Transaction
	if err := json.Unmarshal(data, &transactions); err != nil {
		return nil, fmt.Errorf("LoadTransactions: failed to parse %s: %w", filePath, err)
	}
	if transactions == nil {
		transactions = []models.Transaction{}
	}
	return transactions, nil
}

// csvDataLoader implements DataLoader for CSV files whose header row names
// the transaction columns.
type csvDataLoader struct {
	log *zap.Logger
}

// NewCSVDataLoader creates a new CSV data loader.
func NewCSVDataLoader(log *zap.Logger) DataLoader {
	if log == nil {
		log = zap.NewNop()
	}
	return &csvDataLoader{log: log}
}

// LoadTransactions reads transactions from a CSV file. Rows that are too short
// or carry a non-numeric amount are skipped with a warning.
func (l *csvDataLoader) LoadTransactions(filePath string) ([]models.Transaction, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("LoadTransactions: failed to open file %s: %w", filePath, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return []models.Transaction{}, nil
		}
		return nil, fmt.Errorf("LoadTransactions: failed to read header: %w", err)
	}
	columns, err := columnIndex(header)
	if err != nil {
		return nil, fmt.Errorf("LoadTransactions: %w", err)
	}

	transactions := []models.Transaction{}
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("LoadTransactions: error reading record: %w", err)
		}
		if len(record) < len(header) {
			l.log.Warn("skipping malformed CSV record", zap.Int("line", line), zap.Strings("record", record))
			continue
		}

		get := func(field string) string { return strings.TrimSpace(record[columns[field]]) }

		amount, err := strconv.ParseFloat(get(models.FieldAmount), 64)
		if err != nil {
			l.log.Warn("skipping CSV record with invalid amount",
				zap.Int("line", line), zap.String("amount", get(models.FieldAmount)), zap.Error(err))
			continue
		}

		transactions = append(transactions, models.Transaction{
			ID:           get(models.FieldID),
			Date:         get(models.FieldDate),
			Amount:       amount,
			Type:         models.TransactionType(get(models.FieldType)),
			Description:  get(models.FieldDescription),
			MerchantName: get(models.FieldMerchantName),
			CardType:     get(models.FieldCardType),
		})
	}
	return transactions, nil
}

func columnIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, field := range models.Fields {
		if _, ok := index[field]; !ok {
			return nil, fmt.Errorf("header is missing column %q", field)
		}
	}
	return index, nil
}
