package plugins

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"google.golang.org/api/sheets/v4"

	"github.com/ArionMiles/mynt2koinly/pkg/api"
	"github.com/ArionMiles/mynt2koinly/pkg/config"
	pdfreader "github.com/ArionMiles/mynt2koinly/pkg/reader/pdf"
	textreader "github.com/ArionMiles/mynt2koinly/pkg/reader/text"
	csvwriter "github.com/ArionMiles/mynt2koinly/pkg/writer/csv"
	jsonwriter "github.com/ArionMiles/mynt2koinly/pkg/writer/json"
	pgwriter "github.com/ArionMiles/mynt2koinly/pkg/writer/postgres"
	sheetswriter "github.com/ArionMiles/mynt2koinly/pkg/writer/sheets"
	xlsxwriter "github.com/ArionMiles/mynt2koinly/pkg/writer/xlsx"
)

// Default returns a registry holding every built-in plugin.
func Default() *Registry {
	r := NewRegistry()
	for _, p := range []ReaderPlugin{pdfPlugin{}, textPlugin{}} {
		_ = r.RegisterReader(p)
	}
	for _, p := range []WriterPlugin{csvPlugin{}, jsonPlugin{}, xlsxPlugin{}, sheetsPlugin{}, postgresPlugin{}} {
		_ = r.RegisterWriter(p)
	}
	return r
}

type pdfPlugin struct{}

func (pdfPlugin) Name() string         { return "pdf" }
func (pdfPlugin) Description() string  { return "Mynt statement as a PDF document" }
func (pdfPlugin) Extensions() []string { return []string{".pdf"} }
func (pdfPlugin) NewReader(logger *slog.Logger) api.Reader {
	return pdfreader.New(logger)
}

type textPlugin struct{}

func (textPlugin) Name() string         { return "text" }
func (textPlugin) Description() string  { return "Extracted statement text, pages separated by form feeds" }
func (textPlugin) Extensions() []string { return []string{".txt"} }
func (textPlugin) NewReader(logger *slog.Logger) api.Reader {
	return textreader.New(logger)
}

type csvPlugin struct{}

func (csvPlugin) Name() string             { return "csv" }
func (csvPlugin) Description() string      { return "Koinly universal CSV file" }
func (csvPlugin) RequiredScopes() []string { return nil }
func (csvPlugin) NewWriter(_ context.Context, _ *http.Client, cfg *config.Config, logger *slog.Logger) (api.Writer, error) {
	return csvwriter.New(csvwriter.Config{FilePath: cfg.Output, CRLF: cfg.CRLF}, logger)
}

type jsonPlugin struct{}

func (jsonPlugin) Name() string             { return "json" }
func (jsonPlugin) Description() string      { return "Ledger rows as a JSON array" }
func (jsonPlugin) RequiredScopes() []string { return nil }
func (jsonPlugin) NewWriter(_ context.Context, _ *http.Client, cfg *config.Config, logger *slog.Logger) (api.Writer, error) {
	return jsonwriter.New(jsonwriter.Config{FilePath: cfg.JSONOutput}, logger)
}

type xlsxPlugin struct{}

func (xlsxPlugin) Name() string             { return "xlsx" }
func (xlsxPlugin) Description() string      { return "Excel workbook with one ledger sheet" }
func (xlsxPlugin) RequiredScopes() []string { return nil }
func (xlsxPlugin) NewWriter(_ context.Context, _ *http.Client, cfg *config.Config, logger *slog.Logger) (api.Writer, error) {
	return xlsxwriter.New(xlsxwriter.Config{FilePath: cfg.XLSXOutput}, logger)
}

type sheetsPlugin struct{}

func (sheetsPlugin) Name() string             { return "sheets" }
func (sheetsPlugin) Description() string      { return "Google Sheets tab replaced with the ledger" }
func (sheetsPlugin) RequiredScopes() []string { return []string{sheets.SpreadsheetsScope} }
func (sheetsPlugin) NewWriter(ctx context.Context, httpClient *http.Client, cfg *config.Config, logger *slog.Logger) (api.Writer, error) {
	if httpClient == nil {
		return nil, errors.New("sheets writer requires an authenticated http client")
	}
	return sheetswriter.New(ctx, httpClient, sheetswriter.Config{
		SheetTitle: cfg.GSheetsTitle,
		SheetID:    cfg.GSheetsID,
		SheetName:  cfg.GSheetsName,
		BatchSize:  cfg.BatchSize,
	}, logger)
}

type postgresPlugin struct{}

func (postgresPlugin) Name() string             { return "postgres" }
func (postgresPlugin) Description() string      { return "PostgreSQL koinly_ledger table, upserted" }
func (postgresPlugin) RequiredScopes() []string { return nil }
func (postgresPlugin) NewWriter(ctx context.Context, _ *http.Client, cfg *config.Config, logger *slog.Logger) (api.Writer, error) {
	return pgwriter.New(ctx, pgwriter.Config{
		DSN:       cfg.PostgresDSN,
		Host:      cfg.PostgresHost,
		Port:      cfg.PostgresPort,
		Database:  cfg.PostgresDB,
		User:      cfg.PostgresUser,
		Password:  cfg.PostgresPassword,
		SSLMode:   cfg.PostgresSSLMode,
		BatchSize: cfg.BatchSize,
	}, logger)
}
