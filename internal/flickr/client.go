package flickr

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/five82/skylight/internal/logging"
	"github.com/five82/skylight/internal/photo"
)

const (
	// SearchMethod is the REST method used for photo search.
	SearchMethod = "flickr.photos.search"
	// EchoMethod is a cheap method used to probe connectivity.
	EchoMethod = "flickr.test.echo"
)

// Client translates search calls into normalized pages.
type Client struct {
	caller Caller
}

// NewClient wraps caller.
func NewClient(caller Caller) *Client {
	return &Client{caller: caller}
}

// FetchPage runs one relevance-sorted, safe search for query and returns the
// requested page. No retries are attempted.
func (c *Client) FetchPage(ctx context.Context, query string, page, perPage int) (photo.Page, error) {
	if c == nil || c.caller == nil {
		return photo.Page{}, fmt.Errorf("client is nil")
	}
	params := url.Values{}
	params.Set("text", query)
	params.Set("page", strconv.Itoa(page))
	params.Set("per_page", strconv.Itoa(perPage))
	params.Set("sort", "relevance")
	params.Set("safe_search", "1")
	params.Set("extras", Extras())

	body, err := c.caller.Call(ctx, SearchMethod, params)
	if err != nil {
		return photo.Page{}, err
	}
	return decodeSearch(ctx, body)
}

// Ping calls the echo method. Any transport or remote failure is returned.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.caller == nil {
		return fmt.Errorf("client is nil")
	}
	body, err := c.caller.Call(ctx, EchoMethod, url.Values{})
	if err != nil {
		return err
	}
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return &TransportError{Op: EchoMethod, Err: fmt.Errorf("decode response: %w", err)}
	}
	if env.Stat != "ok" {
		return &RemoteAPIError{Code: int(env.Code), Message: env.Message}
	}
	return nil
}

// decodeSearch normalizes a search response. Photos without a single usable
// rendition are dropped, so every returned Item has at least one candidate.
func decodeSearch(ctx context.Context, body []byte) (photo.Page, error) {
	var payload searchResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return photo.Page{}, &TransportError{Op: SearchMethod, Err: fmt.Errorf("decode response: %w", err)}
	}
	if payload.Stat != "ok" {
		return photo.Page{}, &RemoteAPIError{Code: int(payload.Code), Message: payload.Message}
	}

	items := make([]photo.Item, 0, len(payload.Photos.Photo))
	for _, raw := range payload.Photos.Photo {
		item := normalize(raw)
		if len(item.Sizes) == 0 {
			logging.FromContext(ctx).Debug("skipping photo without usable sizes", "id", item.ID)
			continue
		}
		items = append(items, item)
	}
	return photo.Page{
		Items: items,
		Page:  int(payload.Photos.Page),
		Pages: int(payload.Photos.Pages),
	}, nil
}

// normalize extracts every present size triple, sorted by area.
func normalize(raw rawPhoto) photo.Item {
	var cands []photo.Candidate
	for _, s := range sizeSuffixes {
		if !raw.has("url_" + s) {
			continue
		}
		c := photo.Candidate{
			Source: raw.str("url_" + s),
			Width:  raw.num("width_" + s),
			Height: raw.num("height_" + s),
		}
		if !c.Valid() {
			continue
		}
		cands = append(cands, c)
	}
	return photo.Item{
		ID:    raw.str("id"),
		Title: raw.str("title"),
		Owner: raw.str("owner"),
		Sizes: photo.SortByArea(cands),
	}
}

// stat extracts the envelope status from a raw response.
func stat(body []byte) string {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return ""
	}
	return env.Stat
}
