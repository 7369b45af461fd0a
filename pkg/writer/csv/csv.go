// Package csv implements a Writer that writes the ledger as a Koinly CSV file.
package csv

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/ArionMiles/mynt2koinly/pkg/api"
	"github.com/ArionMiles/mynt2koinly/pkg/logging"
)

// Stdout is the FilePath that sends the ledger to standard output.
const Stdout = "-"

// Config holds configuration for the CSV writer.
type Config struct {
	// FilePath is the output file. It is truncated on every write.
	FilePath string
	// CRLF terminates rows with "\r\n" instead of "\n".
	CRLF bool
}

// Writer writes ledger records to a CSV file.
type Writer struct {
	cfg    Config
	stdout io.Writer
	logger *slog.Logger
}

// New creates a new CSV writer.
func New(cfg Config, logger *slog.Logger) (*Writer, error) {
	if cfg.FilePath == "" {
		return nil, errors.New("csv file path is required")
	}

	return &Writer{
		cfg:    cfg,
		stdout: os.Stdout,
		logger: logging.OrNop(logger).With("component", "csv_writer"),
	}, nil
}

// Write replaces the file contents with the header row followed by records.
func (w *Writer) Write(ctx context.Context, records []api.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if w.cfg.FilePath == Stdout {
		return Encode(w.stdout, records, w.cfg.CRLF)
	}

	file, err := os.OpenFile(w.cfg.FilePath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("opening csv file: %w", err)
	}

	if err := Encode(file, records, w.cfg.CRLF); err != nil {
		if closeErr := file.Close(); closeErr != nil {
			return fmt.Errorf("%w (close error: %w)", err, closeErr)
		}
		return err
	}

	if err := file.Close(); err != nil {
		return fmt.Errorf("closing csv file: %w", err)
	}

	w.logger.Debug("wrote csv ledger", "file", w.cfg.FilePath, "rows", len(records))
	return nil
}

// Encode writes the header row and records to out.
func Encode(out io.Writer, records []api.Record, crlf bool) error {
	cw := csv.NewWriter(out)
	cw.UseCRLF = crlf

	if err := cw.Write(api.Header); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for _, r := range records {
		if err := cw.Write(r.Row()); err != nil {
			return fmt.Errorf("writing csv record: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing csv: %w", err)
	}
	return nil
}
