// Package gallery builds arranged galleries without a terminal: it pulls a
// fixed number of pages for one query and lays the results out in rows.
// The search command and the HTTP server share it.
package gallery

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/five82/skylight/internal/layout"
	"github.com/five82/skylight/internal/logging"
	"github.com/five82/skylight/internal/photo"
	"github.com/five82/skylight/internal/stream"
)

var (
	// ErrEmptyQuery is returned for blank queries.
	ErrEmptyQuery = errors.New("gallery: empty query")
	// ErrUnknownWidth is returned when the row width is not a positive number.
	ErrUnknownWidth = errors.New("gallery: unknown row width")
)

// Options controls Collect.
type Options struct {
	Query     string
	Pages     int
	PageSize  int
	RowWidth  float64
	RowHeight float64
	Viewport  photo.Size
	Scale     float64
}

// Result is an arranged gallery.
type Result struct {
	Query string        `json:"query"`
	Pages int           `json:"pages"`
	Done  bool          `json:"done"`
	Rows  []layout.Row  `json:"rows"`
	Tiles []layout.Tile `json:"tiles"`
}

// Collect fetches up to opts.Pages pages (at least one) and arranges them.
func Collect(ctx context.Context, fetcher stream.PageFetcher, opts Options) (Result, error) {
	query := strings.TrimSpace(opts.Query)
	if query == "" {
		return Result{}, ErrEmptyQuery
	}
	if photo.UnknownLength(opts.RowWidth) {
		return Result{}, ErrUnknownWidth
	}
	pages := opts.Pages
	if pages <= 0 {
		pages = 1
	}

	logger := logging.FromContext(ctx).WithPrefix("gallery")
	s := stream.New(fetcher, query, opts.PageSize)

	res := Result{Query: query}
	var items []photo.Item
	for res.Pages < pages {
		next, err := s.Next(ctx)
		if err != nil {
			return Result{}, fmt.Errorf("collect %q: %w", query, err)
		}
		if next.Done {
			res.Done = true
			break
		}
		res.Pages++
		items = append(items, next.Items...)
		logger.Debug("page collected", "query", query, "page", res.Pages, "items", len(next.Items))
	}
	if !res.Done {
		n, total := s.Position()
		res.Done = n > total
	}

	rows, tiles, err := layout.Arrange(items, layout.ArrangeOptions{
		RowWidth:  opts.RowWidth,
		RowHeight: opts.RowHeight,
		Viewport:  opts.Viewport,
		Scale:     opts.Scale,
	})
	if err != nil {
		return Result{}, fmt.Errorf("arrange %q: %w", query, err)
	}
	res.Rows = rows
	res.Tiles = tiles
	logger.Info("gallery arranged", "query", query, "pages", res.Pages, "items", len(tiles), "rows", len(rows))
	return res, nil
}
