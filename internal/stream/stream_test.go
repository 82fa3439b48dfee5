package stream

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/skylight/internal/photo"
)

type fakeFetcher struct {
	pages   int
	fail    map[int]error
	calls   []int
	perPage int
}

func (f *fakeFetcher) FetchPage(_ context.Context, query string, page, perPage int) (photo.Page, error) {
	f.calls = append(f.calls, page)
	f.perPage = perPage
	if err := f.fail[page]; err != nil {
		return photo.Page{}, err
	}
	return photo.Page{
		Items: []photo.Item{{ID: fmt.Sprintf("%s-%d", query, page)}},
		Page:  page,
		Pages: f.pages,
	}, nil
}

func TestStream_ThreePagesThenDone(t *testing.T) {
	f := &fakeFetcher{pages: 3}
	s := New(f, "cat", 10)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		res, err := s.Next(ctx)
		require.NoError(t, err)
		assert.False(t, res.Done, "page %d", i)
		require.Len(t, res.Items, 1)
		assert.Equal(t, fmt.Sprintf("cat-%d", i), res.Items[0].ID)
	}

	res, err := s.Next(ctx)
	require.NoError(t, err)
	assert.True(t, res.Done)
	assert.Equal(t, []int{1, 2, 3}, f.calls, "done must not issue a request")
}

func TestStream_EmptyResultSetIsDoneAfterFirstPage(t *testing.T) {
	f := &fakeFetcher{pages: 0}
	s := New(f, "zzz", 10)

	res, err := s.Next(context.Background())
	require.NoError(t, err)
	assert.False(t, res.Done)

	res, err = s.Next(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Done)
}

func TestStream_FailureDoesNotAdvance(t *testing.T) {
	boom := errors.New("boom")
	f := &fakeFetcher{pages: 3, fail: map[int]error{2: boom}}
	s := New(f, "cat", 10)
	ctx := context.Background()

	_, err := s.Next(ctx)
	require.NoError(t, err)

	_, err = s.Next(ctx)
	require.ErrorIs(t, err, boom)
	next, total := s.Position()
	assert.Equal(t, 2, next)
	assert.Equal(t, 3, total)

	delete(f.fail, 2)
	res, err := s.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, "cat-2", res.Items[0].ID)
	assert.Equal(t, []int{1, 2, 2}, f.calls)
}

func TestStream_DefaultPageSize(t *testing.T) {
	f := &fakeFetcher{pages: 1}
	s := New(f, "cat", 0)
	_, err := s.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, DefaultPageSize, f.perPage)
	assert.Equal(t, "cat", s.Query())
}
