package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ArionMiles/mynt2koinly/pkg/api"
	"github.com/ArionMiles/mynt2koinly/pkg/reader/text"
)

const (
	defaultDumpDir = "testdata/dump"
	combinedFile   = "statement.txt"
)

// runPageDump writes the text extracted from a statement to dir, one file
// per page plus a combined file the text reader accepts.
func runPageDump(ctx context.Context, logger *slog.Logger, args []string) error {
	var opts options
	var dir string
	fs := newFlagSet("pagedump", &opts)
	fs.StringVar(&dir, "dir", defaultDumpDir, "directory for the dumped pages")
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

	converter, router, err := newConverter(cfg, logger)
	if err != nil {
		return err
	}
	defer closeRouter(router, logger)

	pages, err := converter.Load(ctx, input)
	if err != nil {
		return err
	}

	if err := dumpPages(dir, pages); err != nil {
		return err
	}
	logger.Info("page dump complete", "pages", len(pages), "directory", dir)
	return nil
}

func dumpPages(dir string, pages []api.Page) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating dump directory: %w", err)
	}

	for _, page := range pages {
		name := filepath.Join(dir, fmt.Sprintf("page-%03d.txt", page.Number))
		body := strings.Join(page.Lines, "\n") + "\n"
		if err := os.WriteFile(name, []byte(body), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", name, err)
		}
	}

	combined := filepath.Join(dir, combinedFile)
	if err := os.WriteFile(combined, text.Encode(pages), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", combined, err)
	}
	return nil
}
