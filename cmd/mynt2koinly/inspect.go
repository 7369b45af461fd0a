package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/ArionMiles/mynt2koinly/pkg/api"
	"github.com/ArionMiles/mynt2koinly/pkg/extract"
	"github.com/ArionMiles/mynt2koinly/pkg/orchestrator"
)

// runInspect prints the classification of every candidate line without
// writing a ledger.
func runInspect(ctx context.Context, logger *slog.Logger, args []string) error {
	var opts options
	fs := newFlagSet("inspect", &opts)
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
	return inspect(os.Stdout, converter, pages)
}

func inspect(out io.Writer, converter *orchestrator.Converter, pages []api.Page) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PAGE\tSTATUS\tOPERATION\tDATE\tASSET\tROW")

	stats := converter.Walk(pages, func(l orchestrator.Line) {
		if !l.Matched {
			fmt.Fprintf(tw, "%d\tskipped\t\t\t\t%s\n", l.Page, extract.CollapseSpaces(l.Text))
			return
		}
		fmt.Fprintf(tw, "%d\tok\t%s\t%s\t%s\t%s\n",
			l.Page, l.Fields.Operation, l.Record.Date, l.Fields.Asset, strings.Join(l.Record.Row(), ","))
	})

	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(out, "\n%d pages, %d lines, %d candidates, %d recognized, %d skipped, %d invalid dates\n",
		stats.Pages, stats.Lines, stats.Candidates, stats.Recognized, stats.Skipped, stats.InvalidDates)
	return err
}
