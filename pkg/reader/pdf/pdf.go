// Package pdf implements an api.Reader that extracts line-ordered text from
// PDF statements.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/dslipak/pdf"

	"github.com/ArionMiles/mynt2koinly/pkg/api"
	"github.com/ArionMiles/mynt2koinly/pkg/logging"
)

const (
	// rowTolerance is how far apart, as a fraction of font size, two
	// baselines may be and still belong to the same line.
	rowTolerance = 0.5
	// wordGap is the horizontal gap, as a fraction of font size, above which
	// two fragments are separated by a space.
	wordGap = 0.15
)

// Reader reads PDF documents.
type Reader struct {
	logger *slog.Logger
}

// New creates a PDF reader. A nil logger discards output.
func New(logger *slog.Logger) *Reader {
	return &Reader{logger: logging.OrNop(logger).With("component", "pdf_reader")}
}

// Read parses data as a PDF and returns the text of every page, top to
// bottom. A page whose content stream cannot be decoded is logged and
// returned without lines.
func (r *Reader) Read(ctx context.Context, data []byte) ([]api.Page, error) {
	doc, err := open(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("opening pdf: %w", err)
	}

	total := doc.NumPage()
	pages := make([]api.Page, 0, total)
	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page := api.Page{Number: i}
		p := doc.Page(i)
		if p.V.IsNull() {
			pages = append(pages, page)
			continue
		}

		texts, err := pageTexts(p)
		if err != nil {
			r.logger.Warn("skipping undecodable page", "page", i, "error", err)
			pages = append(pages, page)
			continue
		}

		page.Lines = groupRows(texts)
		r.logger.Debug("extracted page", "page", i, "lines", len(page.Lines))
		pages = append(pages, page)
	}

	return pages, nil
}

// open parses the document trailer in its own goroutine. NewReader can spin
// forever on a corrupt cross-reference offset; ctx bounds the wait.
func open(ctx context.Context, data []byte) (*pdf.Reader, error) {
	type result struct {
		doc *pdf.Reader
		err error
	}
	done := make(chan result, 1)

	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				done <- result{err: fmt.Errorf("parsing document: %v", rec)}
			}
		}()
		doc, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
		done <- result{doc: doc, err: err}
	}()

	select {
	case res := <-done:
		return res.doc, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// pageTexts returns the positioned text fragments of p. The pdf library
// panics on malformed content streams.
func pageTexts(p pdf.Page) (texts []pdf.Text, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("decoding page content: %v", rec)
		}
	}()
	return p.Content().Text, nil
}

// groupRows assembles positioned fragments into lines. Fragments whose
// baselines lie within rowTolerance of each other form one line; lines are
// ordered top to bottom and fragments left to right.
func groupRows(texts []pdf.Text) []string {
	if len(texts) == 0 {
		return nil
	}

	sorted := make([]pdf.Text, len(texts))
	copy(sorted, texts)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Y > sorted[j].Y })

	var (
		lines []string
		row   []pdf.Text
	)
	flush := func() {
		if line := joinRow(row); strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
		row = row[:0]
	}

	for _, t := range sorted {
		if len(row) > 0 && math.Abs(row[0].Y-t.Y) > tolerance(row[0], t) {
			flush()
		}
		row = append(row, t)
	}
	flush()

	return lines
}

// joinRow concatenates the fragments of one line left to right, inserting
// a single space where the gap between fragments looks like a word break.
func joinRow(row []pdf.Text) string {
	sorted := make([]pdf.Text, len(row))
	copy(sorted, row)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].X < sorted[j].X })

	var b strings.Builder
	for i, t := range sorted {
		if i > 0 {
			prev := sorted[i-1]
			gap := t.X - (prev.X + prev.W)
			if gap > wordGap*fontSize(prev, t) && !strings.HasSuffix(b.String(), " ") && !strings.HasPrefix(t.S, " ") {
				b.WriteByte(' ')
			}
		}
		b.WriteString(t.S)
	}
	return b.String()
}

func tolerance(a, b pdf.Text) float64 {
	return rowTolerance * fontSize(a, b)
}

func fontSize(a, b pdf.Text) float64 {
	size := math.Max(a.FontSize, b.FontSize)
	if size <= 0 {
		return 1
	}
	return size
}
