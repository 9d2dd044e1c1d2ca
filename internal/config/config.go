package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Source selects where the initial transaction set is read from.
type Source string

const (
	SourceFile     Source = "file"
	SourceMySQL    Source = "mysql"
	SourcePostgres Source = "postgres"
)

var (
	ErrMissingDSN              = errors.New("DATABASE_DSN must be set for database sources")
	ErrMissingReplicatorSecret = errors.New("MYSQL_REPLICATOR_PASSWORD must be set for the binlog consumer")
	ErrUnknownSource           = errors.New("unknown TRANSACTIONS_SOURCE")
)

type AppConfig struct {
	Source           Source
	TransactionsFile string
	DatabaseDSN      string
	TableName        string

	HTTPAddr    string
	CORSOrigins []string

	LogLevel string
	LogFile  string

	Binlog BinlogConfig
}

type BinlogConfig struct {
	Host     string
	Port     uint16
	User     string
	Password string
	ServerID uint32
	Schema   string
	GTIDFile string // checkpoint; empty starts from the current master position
}

// Load reads a .env file if one exists, then the environment.
func Load() (AppConfig, bool) {
	envLoaded := godotenv.Load() == nil

	return AppConfig{
		Source:           Source(strings.ToLower(getEnv("TRANSACTIONS_SOURCE", string(SourceFile)))),
		TransactionsFile: getEnv("TRANSACTIONS_FILE", "data/transaction.json"),
		DatabaseDSN:      os.Getenv("DATABASE_DSN"),
		TableName:        getEnv("TRANSACTIONS_TABLE", "transactions"),
		HTTPAddr:         getEnv("HTTP_ADDR", ":8080"),
		CORSOrigins:      getEnvSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFile:          os.Getenv("LOG_FILE"),
		Binlog: BinlogConfig{
			Host:     getEnv("BINLOG_HOST", "127.0.0.1"),
			Port:     uint16(getEnvInt("BINLOG_PORT", 3306)),
			User:     getEnv("BINLOG_USER", "replicator"),
			Password: os.Getenv("MYSQL_REPLICATOR_PASSWORD"),
			ServerID: uint32(getEnvInt("BINLOG_SERVER_ID", 101)),
			Schema:   os.Getenv("BINLOG_SCHEMA"),
			GTIDFile: os.Getenv("BINLOG_GTID_FILE"),
		},
	}, envLoaded
}

// Validate checks the settings the selected source needs.
func (c AppConfig) Validate() error {
	switch c.Source {
	case SourceFile:
		return nil
	case SourceMySQL, SourcePostgres:
		if c.DatabaseDSN == "" {
			return ErrMissingDSN
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownSource, c.Source)
	}
}

// ValidateBinlog checks the settings the binlog consumer needs.
func (c AppConfig) ValidateBinlog() error {
	if c.Source != SourceMySQL {
		return fmt.Errorf("binlog consumer requires TRANSACTIONS_SOURCE=mysql, got %q", c.Source)
	}
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Binlog.Password == "" {
		return ErrMissingReplicatorSecret
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}
