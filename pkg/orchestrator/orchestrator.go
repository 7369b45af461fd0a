// Package orchestrator drives one statement conversion: fetch the document,
// extract its text, classify and map every candidate line, sort the ledger
// and hand it to each configured writer.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/ArionMiles/mynt2koinly/pkg/api"
	"github.com/ArionMiles/mynt2koinly/pkg/extract"
	"github.com/ArionMiles/mynt2koinly/pkg/koinly"
	"github.com/ArionMiles/mynt2koinly/pkg/logging"
	"github.com/ArionMiles/mynt2koinly/pkg/normalize"
	"github.com/ArionMiles/mynt2koinly/pkg/storage"
)

// ErrUnsupportedFormat is returned when no reader handles the input's extension.
var ErrUnsupportedFormat = errors.New("unsupported statement format")

// Stats counts what happened to the lines of one statement.
type Stats struct {
	Pages      int
	Lines      int
	Candidates int
	Recognized int
	// Skipped candidates did not match any transaction shape.
	Skipped int
	// InvalidDates counts recognized rows whose date fell back to
	// normalize.InvalidDate.
	InvalidDates int
}

// LogValue implements slog.LogValuer.
func (s Stats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("pages", s.Pages),
		slog.Int("lines", s.Lines),
		slog.Int("candidates", s.Candidates),
		slog.Int("recognized", s.Recognized),
		slog.Int("skipped", s.Skipped),
		slog.Int("invalid_dates", s.InvalidDates),
	)
}

// Output is a named ledger destination.
type Output struct {
	Name   string
	Writer api.Writer
}

// Config holds the collaborators of a Converter.
type Config struct {
	// Fetcher loads the statement bytes.
	Fetcher storage.Fetcher
	// Readers maps a lower-case file extension, including the dot, to the
	// reader for that format.
	Readers map[string]api.Reader
	// Outputs receive the sorted ledger in order.
	Outputs []Output
}

// Converter turns statements into Koinly ledgers.
type Converter struct {
	fetcher storage.Fetcher
	readers map[string]api.Reader
	outputs []Output
	logger  *slog.Logger
}

// New creates a Converter. A nil logger discards output.
func New(cfg Config, logger *slog.Logger) (*Converter, error) {
	if cfg.Fetcher == nil {
		return nil, errors.New("fetcher is required")
	}
	if len(cfg.Readers) == 0 {
		return nil, errors.New("at least one reader is required")
	}

	readers := make(map[string]api.Reader, len(cfg.Readers))
	for ext, r := range cfg.Readers {
		readers[strings.ToLower(ext)] = r
	}

	return &Converter{
		fetcher: cfg.Fetcher,
		readers: readers,
		outputs: cfg.Outputs,
		logger:  logging.OrNop(logger).With("component", "converter"),
	}, nil
}

// Run converts the statement at location and writes the ledger to every
// output. Only structural failures are returned; lines that cannot be
// recognized are counted in Stats and skipped.
func (c *Converter) Run(ctx context.Context, location string) (Stats, error) {
	pages, err := c.Load(ctx, location)
	if err != nil {
		return Stats{}, err
	}

	records, stats := c.Convert(pages)

	for _, out := range c.outputs {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		if err := out.Writer.Write(ctx, records); err != nil {
			return stats, fmt.Errorf("writing %s ledger: %w", out.Name, err)
		}
		c.logger.Info("ledger written", "writer", out.Name, "rows", len(records))
	}

	c.logger.Info("conversion finished", "location", location, "stats", stats)
	return stats, nil
}

// Load fetches the statement at location and extracts its pages with the
// reader registered for its extension.
func (c *Converter) Load(ctx context.Context, location string) ([]api.Page, error) {
	loc, err := storage.ParseLocation(location)
	if err != nil {
		return nil, fmt.Errorf("parsing location: %w", err)
	}

	reader, ok := c.readers[loc.Ext()]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, loc.Ext())
	}

	data, err := c.fetcher.Fetch(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("fetching statement: %w", err)
	}

	pages, err := reader.Read(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("reading statement: %w", err)
	}

	c.logger.Info("statement loaded", "location", location, "pages", len(pages))
	return pages, nil
}

// Convert classifies and maps every candidate line of pages and returns the
// ledger sorted by date. Rows with equal dates keep statement order.
func (c *Converter) Convert(pages []api.Page) ([]api.Record, Stats) {
	var records []api.Record
	stats := c.Walk(pages, func(l Line) {
		if l.Matched {
			records = append(records, l.Record)
		}
	})

	slices.SortStableFunc(records, func(a, b api.Record) int {
		return strings.Compare(a.Date, b.Date)
	})
	return records, stats
}

// Line is the outcome of one candidate line.
type Line struct {
	Page int
	Text string
	// Matched is false when the line looked like a transaction but fit
	// neither shape. Fields and Record are then empty.
	Matched bool
	Fields  api.Fields
	Record  api.Record
}

// Walk visits every candidate line of pages in statement order and returns
// the counts. Lines without an operation keyword are not visited.
func (c *Converter) Walk(pages []api.Page, visit func(Line)) Stats {
	var stats Stats
	for _, page := range pages {
		stats.Pages++
		c.logger.Debug("processing page", "page", page.Number, "lines", len(page.Lines))

		for _, raw := range page.Lines {
			stats.Lines++
			if !extract.IsCandidate(raw) {
				continue
			}
			stats.Candidates++

			line := Line{Page: page.Number, Text: raw}
			line.Fields, line.Matched = extract.Classify(raw)
			if !line.Matched {
				stats.Skipped++
				c.logger.Debug("line skipped", "page", page.Number, "line", extract.CollapseSpaces(raw))
				visit(line)
				continue
			}

			line.Record = koinly.Map(line.Fields)
			stats.Recognized++
			if line.Record.Date == normalize.InvalidDate {
				stats.InvalidDates++
				c.logger.Warn("transaction has invalid date", "page", page.Number, "date", line.Fields.Date)
			}
			c.logger.Debug("line classified",
				"page", page.Number,
				"operation", line.Fields.Operation,
				"date", line.Record.Date,
				"asset", line.Fields.Asset,
			)
			visit(line)
		}
	}
	return stats
}
