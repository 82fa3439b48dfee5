// Package stream exposes paginated search results as a pull-based sequence.
//
// A Stream is created per query. Each Next call fetches the following page
// until the remote side reports no more pages. A Stream is not safe for
// concurrent Next calls; callers serialize access.
package stream

import (
	"context"
	"fmt"

	"github.com/five82/skylight/internal/photo"
)

// DefaultPageSize is used when New is given a non-positive page size.
const DefaultPageSize = 10

// PageFetcher fetches one page of results for a query.
type PageFetcher interface {
	FetchPage(ctx context.Context, query string, page, perPage int) (photo.Page, error)
}

// Result is the outcome of one Next call: either more items or Done.
type Result struct {
	Done  bool
	Items []photo.Item
}

// Stream iterates the pages of one query.
type Stream struct {
	fetcher  PageFetcher
	query    string
	pageSize int

	next  int
	total int
}

// New creates a stream positioned before the first page. The total is
// assumed to be 1 until the first response says otherwise.
func New(fetcher PageFetcher, query string, pageSize int) *Stream {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Stream{
		fetcher:  fetcher,
		query:    query,
		pageSize: pageSize,
		next:     1,
		total:    1,
	}
}

// Query returns the query this stream was created for.
func (s *Stream) Query() string {
	return s.query
}

// Position returns the next page to fetch and the last known page count.
func (s *Stream) Position() (next, total int) {
	return s.next, s.total
}

// Next fetches the next page. A failed fetch leaves the position untouched so
// the same page is requested again on the following call.
func (s *Stream) Next(ctx context.Context) (Result, error) {
	if s.next > s.total {
		return Result{Done: true}, nil
	}
	page, err := s.fetcher.FetchPage(ctx, s.query, s.next, s.pageSize)
	if err != nil {
		return Result{}, fmt.Errorf("fetch page %d: %w", s.next, err)
	}
	s.next++
	s.total = page.Pages
	return Result{Items: page.Items}, nil
}
