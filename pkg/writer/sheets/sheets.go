// Package sheets implements a Writer that publishes the ledger to a Google Sheet.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/avast/retry-go"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/ArionMiles/mynt2koinly/pkg/api"
	"github.com/ArionMiles/mynt2koinly/pkg/logging"
	"github.com/ArionMiles/mynt2koinly/pkg/writer/buffered"
)

// Default configuration values.
const (
	DefaultSheetName     = "Sheet1"
	DefaultRetryAttempts = 3
	DefaultRetryDelay    = 60 * time.Second
)

// Config holds configuration for the Sheets writer.
type Config struct {
	// SheetTitle is the title for a new spreadsheet (if SheetID is empty).
	SheetTitle string
	// SheetID is the ID of an existing spreadsheet to use.
	SheetID string
	// SheetName is the tab within the spreadsheet. Defaults to DefaultSheetName.
	SheetName string
	// BatchSize is the number of rows per append call.
	BatchSize int
	// RetryAttempts bounds calls per batch when the API rate limits.
	RetryAttempts uint
	// RetryDelay is the wait between rate-limited attempts.
	RetryDelay time.Duration
}

// Writer replaces the contents of one sheet tab with the ledger.
type Writer struct {
	client      *sheets.Service
	spreadsheet *sheets.Spreadsheet
	sheetName   string
	attempts    uint
	delay       time.Duration
	batcher     *buffered.Batcher
	logger      *slog.Logger
}

// New creates a Sheets writer and resolves, or creates, the target
// spreadsheet. Extra client options are passed to the Sheets service.
func New(ctx context.Context, httpClient *http.Client, cfg Config, logger *slog.Logger, opts ...option.ClientOption) (*Writer, error) {
	if cfg.SheetID == "" && cfg.SheetTitle == "" {
		return nil, errors.New("either sheet id or sheet title is required")
	}
	if cfg.SheetName == "" {
		cfg.SheetName = DefaultSheetName
	}
	if cfg.RetryAttempts == 0 {
		cfg.RetryAttempts = DefaultRetryAttempts
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}
	logger = logging.OrNop(logger).With("component", "sheets_writer")

	opts = append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)
	client, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating sheets service: %w", err)
	}

	w := &Writer{
		client:    client,
		sheetName: cfg.SheetName,
		attempts:  cfg.RetryAttempts,
		delay:     cfg.RetryDelay,
		logger:    logger,
	}

	spreadsheet, err := w.initSpreadsheet(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("initializing spreadsheet: %w", err)
	}
	w.spreadsheet = spreadsheet
	w.batcher = buffered.New(w.appendBatch, buffered.Config{BatchSize: cfg.BatchSize}, logger)

	logger.Info("sheets writer initialized",
		"spreadsheet_id", spreadsheet.SpreadsheetId,
		"sheet", cfg.SheetName,
		"batch_size", w.batcher.BatchSize(),
	)
	return w, nil
}

func (w *Writer) initSpreadsheet(ctx context.Context, cfg Config) (*sheets.Spreadsheet, error) {
	if cfg.SheetID != "" {
		spreadsheet, err := w.client.Spreadsheets.Get(cfg.SheetID).Context(ctx).Do()
		if err == nil {
			w.logger.Info("using existing spreadsheet", "id", cfg.SheetID)
			return spreadsheet, nil
		}
		if cfg.SheetTitle == "" {
			return nil, fmt.Errorf("getting spreadsheet %s: %w", cfg.SheetID, err)
		}
		w.logger.Warn("failed to get spreadsheet, will create new one", "id", cfg.SheetID, "error", err)
	}

	spreadsheet, err := w.client.Spreadsheets.Create(&sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{Title: cfg.SheetTitle},
		Sheets: []*sheets.Sheet{
			{Properties: &sheets.SheetProperties{Title: cfg.SheetName}},
		},
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("creating spreadsheet: %w", err)
	}

	w.logger.Info("created new spreadsheet", "title", cfg.SheetTitle, "id", spreadsheet.SpreadsheetId)
	return spreadsheet, nil
}

// Write clears the tab, writes the header row and appends records in batches.
func (w *Writer) Write(ctx context.Context, records []api.Record) error {
	id := w.spreadsheet.SpreadsheetId

	if _, err := w.client.Spreadsheets.Values.Clear(id, w.sheetName, &sheets.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return fmt.Errorf("clearing sheet: %w", err)
	}

	header := &sheets.ValueRange{Values: [][]any{toValues(api.Header)}}
	if _, err := w.client.Spreadsheets.Values.Update(id, w.sheetName+"!A1", header).
		ValueInputOption("RAW").
		Context(ctx).
		Do(); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	if err := w.batcher.Write(ctx, records); err != nil {
		return err
	}

	w.logger.Info("wrote ledger to sheet", "rows", len(records))
	return nil
}

func (w *Writer) appendBatch(ctx context.Context, batch []api.Record) error {
	values := make([][]any, 0, len(batch))
	for _, r := range batch {
		values = append(values, toValues(r.Row()))
	}
	req := &sheets.ValueRange{Values: values}

	return retry.Do(
		func() error {
			_, err := w.client.Spreadsheets.Values.Append(w.spreadsheet.SpreadsheetId, w.sheetName+"!A2", req).
				ValueInputOption("RAW").
				InsertDataOption("INSERT_ROWS").
				Context(ctx).
				Do()
			return err
		},
		retry.RetryIf(func(err error) bool {
			var apiErr *googleapi.Error
			if errors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests {
				w.logger.Warn("rate limited, will retry", "error", err)
				return true
			}
			return false
		}),
		retry.Context(ctx),
		retry.Attempts(w.attempts),
		retry.Delay(w.delay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
	)
}

// SpreadsheetID returns the ID of the spreadsheet being written to.
func (w *Writer) SpreadsheetID() string {
	if w.spreadsheet == nil {
		return ""
	}
	return w.spreadsheet.SpreadsheetId
}

func toValues(row []string) []any {
	out := make([]any, len(row))
	for i, v := range row {
		out[i] = v
	}
	return out
}
