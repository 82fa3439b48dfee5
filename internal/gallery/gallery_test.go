package gallery

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/skylight/internal/flickr"
	"github.com/five82/skylight/internal/photo"
)

type pagedFetcher struct {
	pages int
	err   error
	calls int
}

func (f *pagedFetcher) FetchPage(_ context.Context, query string, page, perPage int) (photo.Page, error) {
	f.calls++
	if f.err != nil {
		return photo.Page{}, f.err
	}
	items := make([]photo.Item, perPage)
	for i := range items {
		items[i] = photo.Item{
			ID:    fmt.Sprintf("%s-%d-%d", query, page, i),
			Sizes: []photo.Candidate{{Source: "s", Width: 300 + 40*i, Height: 200}},
		}
	}
	return photo.Page{Items: items, Page: page, Pages: f.pages}, nil
}

func TestCollect_StopsAtRequestedPages(t *testing.T) {
	f := &pagedFetcher{pages: 5}
	res, err := Collect(context.Background(), f, Options{Query: " cat ", Pages: 2, PageSize: 4, RowWidth: 960, RowHeight: 180})
	require.NoError(t, err)

	assert.Equal(t, "cat", res.Query)
	assert.Equal(t, 2, res.Pages)
	assert.False(t, res.Done)
	assert.Len(t, res.Tiles, 8)
	assert.Equal(t, 2, f.calls)
}

func TestCollect_StopsWhenExhausted(t *testing.T) {
	f := &pagedFetcher{pages: 2}
	res, err := Collect(context.Background(), f, Options{Query: "cat", Pages: 10, PageSize: 3, RowWidth: 960, RowHeight: 180})
	require.NoError(t, err)

	assert.Equal(t, 2, res.Pages)
	assert.True(t, res.Done)
	assert.Len(t, res.Tiles, 6)
	assert.Equal(t, 2, f.calls, "done is detected without another request")
}

func TestCollect_RowsJustified(t *testing.T) {
	f := &pagedFetcher{pages: 1}
	res, err := Collect(context.Background(), f, Options{Query: "cat", PageSize: 10, RowWidth: 960, RowHeight: 180})
	require.NoError(t, err)
	require.NotEmpty(t, res.Rows)

	for i, row := range res.Rows[:len(res.Rows)-1] {
		sum := 0.0
		for _, tile := range res.Tiles[row.Start:row.End] {
			sum += tile.Width
		}
		assert.InDelta(t, 960.0, sum, 1e-6, "row %d", i)
	}
}

func TestCollect_Validation(t *testing.T) {
	f := &pagedFetcher{pages: 1}

	_, err := Collect(context.Background(), f, Options{Query: "  ", RowWidth: 960, RowHeight: 180})
	assert.ErrorIs(t, err, ErrEmptyQuery)

	_, err = Collect(context.Background(), f, Options{Query: "cat", RowWidth: 0, RowHeight: 180})
	assert.ErrorIs(t, err, ErrUnknownWidth)
	assert.Zero(t, f.calls)
}

func TestCollect_PropagatesFetchError(t *testing.T) {
	boom := errors.New("boom")
	_, err := Collect(context.Background(), &pagedFetcher{err: boom}, Options{Query: "cat", RowWidth: 960, RowHeight: 180})
	assert.ErrorIs(t, err, boom)
}

type bodyCaller []byte

func (b bodyCaller) Call(context.Context, string, url.Values) ([]byte, error) {
	return b, nil
}

func TestCollect_SkipsPhotosWithoutSizes(t *testing.T) {
	body := bodyCaller(`{"stat":"ok","photos":{"page":1,"pages":1,"photo":[
		{"id":"1","url_m":"https://img/1.jpg","width_m":500,"height_m":375},
		{"id":"2","title":"no renditions"},
		{"id":"3","url_m":"https://img/3.jpg","width_m":400,"height_m":400}
	]}}`)

	res, err := Collect(context.Background(), flickr.NewClient(body), Options{Query: "cat", Pages: 1, PageSize: 3, RowWidth: 960, RowHeight: 180})
	require.NoError(t, err)
	require.Len(t, res.Tiles, 2)
	assert.Equal(t, "1", res.Tiles[0].Item.ID)
	assert.Equal(t, "3", res.Tiles[1].Item.ID)
}
