package layout

import (
	"fmt"

	"github.com/five82/skylight/internal/photo"
)

// ArrangeOptions describes the space photos are laid out in.
type ArrangeOptions struct {
	RowWidth  float64
	RowHeight float64
	// Viewport bounds the full-size rendition. Zero falls back to the row box.
	Viewport photo.Size
	Scale    float64
}

// Tile is the render data for one item.
type Tile struct {
	Index  int             `json:"index"`
	Item   photo.Item      `json:"item"`
	Thumb  photo.Candidate `json:"thumb"`
	Full   photo.Candidate `json:"full"`
	Width  float64         `json:"width"`
	Height float64         `json:"height"`
}

// Arrange selects renditions for every item and packs the thumbnails into rows.
// Items without candidates are reported as an error wrapping
// ErrEmptyCandidateSet.
func Arrange(items []photo.Item, opts ArrangeOptions) ([]Row, []Tile, error) {
	if len(items) == 0 {
		return nil, nil, nil
	}

	rowBox := photo.Size{Width: opts.RowWidth, Height: opts.RowHeight}
	fullBox := opts.Viewport
	if fullBox.Width <= 0 || fullBox.Height <= 0 {
		fullBox = rowBox
	}

	tiles := make([]Tile, len(items))
	thumbs := make([]photo.Size, len(items))
	for i, it := range items {
		thumb, err := SelectBestSize(it.Sizes, rowBox, opts.Scale)
		if err != nil {
			return nil, nil, fmt.Errorf("item %s: %w", it.ID, err)
		}
		full, err := SelectBestSize(it.Sizes, fullBox, opts.Scale)
		if err != nil {
			return nil, nil, fmt.Errorf("item %s: %w", it.ID, err)
		}
		tiles[i] = Tile{Index: i, Item: it, Thumb: thumb, Full: full}
		thumbs[i] = thumb.Size()
	}

	sized, rows := pack(thumbs, opts.RowWidth, opts.RowHeight)
	for i := range tiles {
		tiles[i].Width = sized[i].Width
		tiles[i].Height = sized[i].Height
	}
	return rows, tiles, nil
}
