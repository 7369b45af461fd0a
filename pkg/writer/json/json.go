// Package json implements a Writer that writes the ledger as a JSON array.
package json

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/ArionMiles/mynt2koinly/pkg/api"
	"github.com/ArionMiles/mynt2koinly/pkg/logging"
)

// Config holds configuration for the JSON writer.
type Config struct {
	// FilePath is the path to the JSON output file. It is replaced on
	// every write.
	FilePath string
}

// Writer writes ledger records to a JSON file. Each record is an object
// keyed by the Koinly column names.
type Writer struct {
	filePath string
	logger   *slog.Logger
}

// New creates a new JSON writer.
func New(cfg Config, logger *slog.Logger) (*Writer, error) {
	if cfg.FilePath == "" {
		return nil, errors.New("json file path is required")
	}

	return &Writer{
		filePath: cfg.FilePath,
		logger:   logging.OrNop(logger).With("component", "json_writer"),
	}, nil
}

// Write replaces the file with records. An empty ledger is written as [].
func (w *Writer) Write(ctx context.Context, records []api.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if records == nil {
		records = []api.Record{}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling json: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(w.filePath, data, 0o644); err != nil {
		return fmt.Errorf("writing json file: %w", err)
	}

	w.logger.Debug("wrote json ledger", "file", w.filePath, "rows", len(records))
	return nil
}
