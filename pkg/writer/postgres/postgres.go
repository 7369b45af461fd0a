// Package postgres provides a PostgreSQL writer for the Koinly ledger.
//
// Rows are keyed by a name-based UUID derived from their content, so writing
// the same statement twice leaves the table unchanged.
package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ArionMiles/mynt2koinly/pkg/api"
	"github.com/ArionMiles/mynt2koinly/pkg/logging"
	"github.com/ArionMiles/mynt2koinly/pkg/writer/buffered"
)

//go:embed 001_create_koinly_ledger.sql
var migrationSQL string

// ledgerNamespace scopes the row identifiers generated by RecordIDs.
var ledgerNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://koinly.io/import/mynt"))

const upsertSQL = `
	INSERT INTO koinly_ledger (
		id, date, sent_amount, sent_currency, received_amount, received_currency,
		fee_amount, fee_currency, net_worth_amount, net_worth_currency,
		label, description, txhash
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	ON CONFLICT (id) DO UPDATE SET
		updated_at = NOW()
`

// Config holds the PostgreSQL writer configuration. DSN, when set, takes
// precedence over the individual connection fields.
type Config struct {
	DSN      string
	Host     string
	Port     int
	Database string
	User     string
	Password string
	SSLMode  string

	// BatchSize is the number of rows sent per transaction.
	BatchSize int
	// MaxPoolSize is the maximum number of connections in the pool.
	MaxPoolSize int
}

// ConnString returns the libpq connection string for cfg.
func (cfg Config) ConnString() string {
	if cfg.DSN != "" {
		return cfg.DSN
	}

	port := cfg.Port
	if port == 0 {
		port = 5432
	}
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, port, cfg.User, cfg.Password, cfg.Database, sslMode,
	)
}

// Writer upserts ledger rows into PostgreSQL.
type Writer struct {
	pool      *pgxpool.Pool
	batchSize int
	logger    *slog.Logger
}

// New connects to the database and applies the embedded migration.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Writer, error) {
	logger = logging.OrNop(logger).With("component", "postgres_writer")

	if cfg.DSN == "" && cfg.Host == "" {
		return nil, errors.New("postgres dsn or host is required")
	}
	if cfg.MaxPoolSize == 0 {
		cfg.MaxPoolSize = 4
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.ConnString())
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.MaxPoolSize)
	poolConfig.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	if _, err := pool.Exec(ctx, migrationSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("running migration: %w", err)
	}

	logger.Info("connected to PostgreSQL", "host", poolConfig.ConnConfig.Host, "database", poolConfig.ConnConfig.Database)

	return &Writer{pool: pool, batchSize: cfg.BatchSize, logger: logger}, nil
}

// Write upserts records in batches, one transaction per batch.
func (w *Writer) Write(ctx context.Context, records []api.Record) error {
	// IDs depend on the whole ledger, so they are computed up front and
	// consumed in step with the batches.
	ids := RecordIDs(records)
	offset := 0
	batcher := buffered.New(func(ctx context.Context, batch []api.Record) error {
		err := w.writeRows(ctx, ids[offset:offset+len(batch)], batch)
		offset += len(batch)
		return err
	}, buffered.Config{BatchSize: w.batchSize}, w.logger)

	if err := batcher.Write(ctx, records); err != nil {
		return err
	}

	w.logger.Info("upserted ledger", "rows", len(records))
	return nil
}

func (w *Writer) writeRows(ctx context.Context, ids []uuid.UUID, records []api.Record) error {
	tx, err := w.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	batch := &pgx.Batch{}
	for i, r := range records {
		batch.Queue(upsertSQL,
			ids[i], r.Date, r.SentAmount, r.SentCurrency, r.ReceivedAmount, r.ReceivedCurrency,
			r.FeeAmount, r.FeeCurrency, r.NetWorthAmount, r.NetWorthCurrency,
			r.Label, r.Description, r.TxHash,
		)
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("upserting rows: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// RecordIDs returns a stable identifier for every record. Identical rows
// are told apart by how many identical rows precede them.
func RecordIDs(records []api.Record) []uuid.UUID {
	seen := make(map[string]int, len(records))
	ids := make([]uuid.UUID, len(records))
	for i, r := range records {
		key := strings.Join(r.Row(), "\x1f")
		n := seen[key]
		seen[key] = n + 1
		ids[i] = uuid.NewSHA1(ledgerNamespace, []byte(key+"\x1e"+strconv.Itoa(n)))
	}
	return ids
}

// Close closes the database connection pool.
func (w *Writer) Close() {
	if w.pool != nil {
		w.pool.Close()
		w.logger.Info("closed PostgreSQL connection pool")
	}
}
