package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/ArionMiles/mynt2koinly/internal/plugins"
	"github.com/ArionMiles/mynt2koinly/pkg/client"
	"github.com/ArionMiles/mynt2koinly/pkg/config"
	"github.com/ArionMiles/mynt2koinly/pkg/orchestrator"
	"github.com/ArionMiles/mynt2koinly/pkg/storage"
)

// runConvert converts one statement and writes it to every selected writer.
func runConvert(ctx context.Context, logger *slog.Logger, args []string) error {
	var opts options
	fs := newFlagSet("convert", &opts)
	fs.StringVar(&opts.out, "out", "", `CSV output path, "-" for stdout (KOINLY_OUTPUT)`)
	fs.StringVar(&opts.writers, "writers", "", "comma-separated writers: csv, json, xlsx, sheets, postgres (KOINLY_WRITERS)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger = configureLogging(cfg)
	input, err := statementArg(fs, cfg)
	if err != nil {
		return err
	}

	registry := plugins.Default()
	names := cfg.WriterNames()
	if len(names) == 0 {
		return fmt.Errorf("no writers selected")
	}

	httpClient, err := googleClient(ctx, registry, cfg, names)
	if err != nil {
		return err
	}

	outputs, err := registry.CreateWriters(ctx, names, httpClient, cfg, logger)
	if err != nil {
		return err
	}
	defer plugins.Close(outputs)

	router := newRouter(cfg, logger)
	defer closeRouter(router, logger)

	converter, err := orchestrator.New(orchestrator.Config{
		Fetcher: router,
		Readers: registry.CreateReaders(logger),
		Outputs: outputs,
	}, logger)
	if err != nil {
		return err
	}

	stats, err := converter.Run(ctx, input)
	if err != nil {
		return err
	}
	if stats.Recognized == 0 {
		logger.Warn("no transactions recognized", "statement", input)
	}
	return nil
}

// googleClient returns an authenticated client when a selected writer
// needs OAuth scopes, and nil otherwise.
func googleClient(ctx context.Context, registry *plugins.Registry, cfg *config.Config, names []string) (*http.Client, error) {
	scopes, err := registry.Scopes(names...)
	if err != nil {
		return nil, err
	}
	if len(scopes) == 0 {
		return nil, nil
	}

	httpClient, err := client.New(ctx, client.Config{
		SecretFile: cfg.ClientSecretFile,
		TokenFile:  cfg.TokenFile,
		Scopes:     scopes,
	})
	if err != nil {
		return nil, fmt.Errorf("creating http client: %w", err)
	}
	return httpClient, nil
}

func newRouter(cfg *config.Config, logger *slog.Logger) *storage.Router {
	router := storage.NewRouter(logger)
	router.Register(storage.SchemeS3, storage.S3Opener(storage.S3Config{
		Region:    cfg.S3Region,
		Endpoint:  cfg.S3Endpoint,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
	}))
	router.Register(storage.SchemeGCS, storage.GCSOpener())
	return router
}

func closeRouter(router *storage.Router, logger *slog.Logger) {
	if err := router.Close(); err != nil {
		logger.Warn("closing storage backends", "error", err)
	}
}

// newConverter builds a converter without outputs, for commands that only
// read statements.
func newConverter(cfg *config.Config, logger *slog.Logger) (*orchestrator.Converter, *storage.Router, error) {
	router := newRouter(cfg, logger)
	converter, err := orchestrator.New(orchestrator.Config{
		Fetcher: router,
		Readers: plugins.Default().CreateReaders(logger),
	}, logger)
	if err != nil {
		return nil, nil, err
	}
	return converter, router, nil
}
