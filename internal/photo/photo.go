package photo

import (
	"math"
	"slices"
)

// Candidate is one rendition of a photo.
type Candidate struct {
	Source string `json:"source"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Area returns width × height.
func (c Candidate) Area() int {
	return c.Width * c.Height
}

// Valid reports whether both dimensions are positive.
func (c Candidate) Valid() bool {
	return c.Width > 0 && c.Height > 0
}

// Size returns the candidate dimensions as a Size.
func (c Candidate) Size() Size {
	return Size{Width: float64(c.Width), Height: float64(c.Height)}
}

// SortByArea returns a copy of cands sorted ascending by area. Ties keep
// their input order.
func SortByArea(cands []Candidate) []Candidate {
	sorted := slices.Clone(cands)
	slices.SortStableFunc(sorted, func(a, b Candidate) int {
		return a.Area() - b.Area()
	})
	return sorted
}

// Item is a single search result.
type Item struct {
	ID    string      `json:"id"`
	Title string      `json:"title"`
	Owner string      `json:"owner,omitempty"`
	Sizes []Candidate `json:"sizes"`
}

// Largest returns the biggest candidate, or false when the item has none.
func (i Item) Largest() (Candidate, bool) {
	if len(i.Sizes) == 0 {
		return Candidate{}, false
	}
	return i.Sizes[len(i.Sizes)-1], true
}

// Clone returns a copy whose Sizes slice is independent of i.
func (i Item) Clone() Item {
	i.Sizes = slices.Clone(i.Sizes)
	return i
}

// Page is one batch of results plus pagination counters.
type Page struct {
	Items []Item
	Page  int
	Pages int
}

// HasMore reports whether the remote API has pages after this one.
func (p Page) HasMore() bool {
	return p.Page < p.Pages
}

// Size is a width/height pair in pixels.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Aspect returns width / height.
func (s Size) Aspect() float64 {
	return s.Width / s.Height
}

// Unknown reports whether the width cannot be used for layout.
func (s Size) Unknown() bool {
	return UnknownLength(s.Width)
}

// UnknownLength reports whether v is zero, negative, NaN or infinite.
func UnknownLength(v float64) bool {
	return v <= 0 || math.IsNaN(v) || math.IsInf(v, 0)
}
