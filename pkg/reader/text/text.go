// Package text implements an api.Reader for statements whose text was
// already extracted, such as the combined file written by pagedump.
package text

import (
	"context"
	"log/slog"
	"strings"

	"github.com/ArionMiles/mynt2koinly/pkg/api"
	"github.com/ArionMiles/mynt2koinly/pkg/logging"
)

// PageSeparator separates pages in a text statement.
const PageSeparator = "\f"

// Reader reads plain text statements.
type Reader struct {
	logger *slog.Logger
}

// New creates a text reader. A nil logger discards output.
func New(logger *slog.Logger) *Reader {
	return &Reader{logger: logging.OrNop(logger).With("component", "text_reader")}
}

// Read splits data into pages on form feeds and pages into lines on "\n".
// A trailing "\r" is removed from each line. A trailing separator does not
// start an extra page.
func (r *Reader) Read(ctx context.Context, data []byte) ([]api.Page, error) {
	body := strings.TrimSuffix(string(data), PageSeparator)
	if body == "" {
		return nil, nil
	}

	chunks := strings.Split(body, PageSeparator)
	pages := make([]api.Page, 0, len(chunks))
	for i, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pages = append(pages, api.Page{Number: i + 1, Lines: splitLines(chunk)})
	}

	r.logger.Debug("split text statement", "pages", len(pages))
	return pages, nil
}

func splitLines(chunk string) []string {
	chunk = strings.TrimSuffix(chunk, "\n")
	if chunk == "" {
		return nil
	}

	lines := strings.Split(chunk, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// Encode renders pages in the format Read accepts: lines end with "\n" and
// pages after the first are preceded by PageSeparator.
func Encode(pages []api.Page) []byte {
	var b strings.Builder
	for i, page := range pages {
		if i > 0 {
			b.WriteString(PageSeparator)
		}
		for _, line := range page.Lines {
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}
	return []byte(b.String())
}
