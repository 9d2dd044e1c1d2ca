package binlog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-mysql-org/go-mysql/mysql"
	"github.com/go-mysql-org/go-mysql/replication"
	"go.uber.org/zap"

	"transaction-analyzer/internal/config"
	"transaction-analyzer/models"
)

// Appender receives transactions decoded from INSERT row events.
type Appender interface {
	AddTransaction(in models.TransactionInput) error
}

// Consumer tails the MySQL binlog and appends rows inserted into the
// transactions table to the store. Updates and deletes are logged and ignored;
// the store has no operation for them.
type Consumer struct {
	cfg      config.BinlogConfig
	table    string
	store    Appender
	log      *zap.Logger
	gtidFile string
}

func NewConsumer(cfg config.BinlogConfig, table string, store Appender, log *zap.Logger) *Consumer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Consumer{
		cfg:      cfg,
		table:    table,
		store:    store,
		log:      log,
		gtidFile: cfg.GTIDFile,
	}
}

// Run streams events until ctx is canceled. db is used to look up the
// starting position when no GTID checkpoint exists.
func (c *Consumer) Run(ctx context.Context, db *sql.DB) error {
	syncer := replication.NewBinlogSyncer(replication.BinlogSyncerConfig{
		ServerID:   c.cfg.ServerID,
		Flavor:     mysql.MySQLFlavor,
		Host:       c.cfg.Host,
		Port:       c.cfg.Port,
		User:       c.cfg.User,
		Password:   c.cfg.Password,
		UseDecimal: true,
	})
	defer syncer.Close()

	streamer, err := c.start(ctx, syncer, db)
	if err != nil {
		return err
	}
	c.log.Info("binlog streamer started, waiting for events")

	for {
		ev, err := streamer.GetEvent(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				c.log.Info("context canceled, exiting event loop")
				return nil
			}
			return fmt.Errorf("binlog: error getting event from stream: %w", err)
		}
		c.handleEvent(ev)
	}
}

func (c *Consumer) start(ctx context.Context, syncer *replication.BinlogSyncer, db *sql.DB) (*replication.BinlogStreamer, error) {
	if c.gtidFile != "" {
		raw, err := os.ReadFile(c.gtidFile)
		if err != nil {
			c.log.Info("no saved GTID found, starting from current master GTID set", zap.String("file", c.gtidFile))
			raw, err = fetchMasterGTID(ctx, db)
			if err != nil {
				return nil, fmt.Errorf("binlog: failed to get master GTID: %w", err)
			}
		}
		gtidSet, err := mysql.ParseGTIDSet(mysql.MySQLFlavor, strings.TrimSpace(string(raw)))
		if err != nil {
			return nil, fmt.Errorf("binlog: invalid GTID format: %w", err)
		}
		c.log.Info("resuming replication at GTID set", zap.String("gtid_set", gtidSet.String()))
		streamer, err := syncer.StartSyncGTID(gtidSet)
		if err != nil {
			return nil, fmt.Errorf("binlog: failed to start GTID sync: %w", err)
		}
		return streamer, nil
	}

	pos, err := fetchMasterPosition(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("binlog: failed to get master status: %w", err)
	}
	c.log.Info("starting binlog stream", zap.String("file", pos.Name), zap.Uint32("pos", pos.Pos))
	streamer, err := syncer.StartSync(pos)
	if err != nil {
		return nil, fmt.Errorf("binlog: failed to start binlog sync: %w", err)
	}
	return streamer, nil
}

func (c *Consumer) handleEvent(ev *replication.BinlogEvent) {
	switch e := ev.Event.(type) {
	case *replication.RotateEvent:
		c.log.Info("rotated to new binlog file",
			zap.String("file", string(e.NextLogName)), zap.Uint64("pos", e.Position))
	case *replication.RowsEvent:
		c.handleRowsEvent(ev.Header.EventType, e)
	case *replication.XIDEvent:
		if e.GSet != nil {
			c.saveCheckpoint(e.GSet.String())
		}
	}
}

// handleRowsEvent applies INSERTs on the watched table to the store.
func (c *Consumer) handleRowsEvent(eventType replication.EventType, e *replication.RowsEvent) {
	if e.Table == nil || !c.watches(string(e.Table.Schema), string(e.Table.Table)) {
		return
	}

	switch eventType {
	case replication.WRITE_ROWS_EVENTv0, replication.WRITE_ROWS_EVENTv1, replication.WRITE_ROWS_EVENTv2:
	default:
		c.log.Warn("ignoring non-insert row event",
			zap.String("table", string(e.Table.Table)), zap.String("event", eventType.String()))
		return
	}

	columns := e.Table.ColumnNameString()
	if len(columns) == 0 {
		columns = DefaultColumns
	}

	for _, row := range e.Rows {
		in := RowToInput(columns, row)
		if err := c.store.AddTransaction(in); err != nil {
			c.log.Warn("skipping invalid transaction row", zap.Error(err), zap.Any("row", row))
			continue
		}
		c.log.Info("transaction appended from binlog", zap.String("transaction_id", *in.ID))
	}
}

func (c *Consumer) watches(schema, table string) bool {
	if c.cfg.Schema != "" && !strings.EqualFold(schema, c.cfg.Schema) {
		return false
	}
	name := c.table
	if i := strings.LastIndex(name, "."); i >= 0 {
		if !strings.EqualFold(schema, name[:i]) {
			return false
		}
		name = name[i+1:]
	}
	return strings.EqualFold(table, name)
}

func (c *Consumer) saveCheckpoint(gtid string) {
	if c.gtidFile == "" {
		return
	}
	tmp := filepath.Join(filepath.Dir(c.gtidFile), "."+filepath.Base(c.gtidFile)+".tmp")
	if err := os.WriteFile(tmp, []byte(gtid), 0o600); err != nil {
		c.log.Error("failed to write GTID checkpoint", zap.Error(err))
		return
	}
	if err := os.Rename(tmp, c.gtidFile); err != nil {
		c.log.Error("failed to replace GTID checkpoint", zap.Error(err))
	}
}

// fetchMasterPosition reads the current binlog file and offset.
func fetchMasterPosition(ctx context.Context, db *sql.DB) (mysql.Position, error) {
	var lastErr error
	for _, query := range []string{"SHOW BINARY LOG STATUS", "SHOW MASTER STATUS"} {
		pos, err := queryPosition(ctx, db, query)
		if err == nil {
			return pos, nil
		}
		lastErr = err
	}
	return mysql.Position{}, lastErr
}

func queryPosition(ctx context.Context, db *sql.DB, query string) (mysql.Position, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return mysql.Position{}, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return mysql.Position{}, err
	}
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return mysql.Position{}, err
		}
		return mysql.Position{}, errors.New("binary logging is not enabled")
	}

	values := make([]sql.NullString, len(cols))
	dest := make([]any, len(cols))
	for i := range values {
		dest[i] = &values[i]
	}
	if err := rows.Scan(dest...); err != nil {
		return mysql.Position{}, err
	}
	if len(values) < 2 {
		return mysql.Position{}, fmt.Errorf("unexpected %s result with %d columns", query, len(values))
	}

	offset, err := strconv.ParseUint(values[1].String, 10, 32)
	if err != nil {
		return mysql.Position{}, fmt.Errorf("invalid binlog position %q: %w", values[1].String, err)
	}
	return mysql.Position{Name: values[0].String, Pos: uint32(offset)}, nil
}

// fetchMasterGTID reads @@global.gtid_executed.
func fetchMasterGTID(ctx context.Context, db *sql.DB) ([]byte, error) {
	var gtid string
	if err := db.QueryRowContext(ctx, "SELECT @@global.gtid_executed").Scan(&gtid); err != nil {
		return nil, err
	}
	return []byte(gtid), nil
}
