// Package xlsx implements a Writer that writes the ledger to an Excel workbook.
package xlsx

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/ArionMiles/mynt2koinly/pkg/api"
	"github.com/ArionMiles/mynt2koinly/pkg/logging"
)

// SheetName is the worksheet that holds the ledger.
const SheetName = "Koinly"

// Config holds configuration for the XLSX writer.
type Config struct {
	// FilePath is the workbook path. It is replaced on every write.
	FilePath string
}

// Writer writes ledger records to a single-sheet workbook. Every cell is
// stored as text so amounts keep the exact digits of the ledger.
type Writer struct {
	filePath string
	logger   *slog.Logger
}

// New creates a new XLSX writer.
func New(cfg Config, logger *slog.Logger) (*Writer, error) {
	if cfg.FilePath == "" {
		return nil, errors.New("xlsx file path is required")
	}
	return &Writer{
		filePath: cfg.FilePath,
		logger:   logging.OrNop(logger).With("component", "xlsx_writer"),
	}, nil
}

// Write builds the workbook and saves it next to the target before renaming
// it into place.
func (w *Writer) Write(ctx context.Context, records []api.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	if err := setRow(f, 1, api.Header); err != nil {
		return err
	}
	for i, r := range records {
		if err := setRow(f, i+2, r.Row()); err != nil {
			return err
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(w.filePath), ".koinly-*.xlsx")
	if err != nil {
		return fmt.Errorf("creating temp workbook: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if _, err := f.WriteTo(tmp); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing workbook: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing workbook: %w", err)
	}
	if err := os.Rename(tmpPath, w.filePath); err != nil {
		return fmt.Errorf("replacing workbook: %w", err)
	}

	w.logger.Debug("wrote xlsx ledger", "file", w.filePath, "rows", len(records))
	return nil
}

func setRow(f *excelize.File, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("resolving cell: %w", err)
	}

	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}
	if err := f.SetSheetRow(SheetName, cell, &cells); err != nil {
		return fmt.Errorf("writing row %d: %w", row, err)
	}
	return nil
}
