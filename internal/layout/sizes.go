package layout

import (
	"errors"

	"github.com/five82/skylight/internal/photo"
)

// ErrEmptyCandidateSet is returned when SelectBestSize has nothing to choose from.
var ErrEmptyCandidateSet = errors.New("layout: empty candidate set")

// SelectBestSize returns the smallest candidate whose width or height exceeds
// the box scaled by scale. When none does, the largest candidate is returned.
// A non-positive scale is treated as 1.
func SelectBestSize(cands []photo.Candidate, box photo.Size, scale float64) (photo.Candidate, error) {
	if len(cands) == 0 {
		return photo.Candidate{}, ErrEmptyCandidateSet
	}
	if scale <= 0 {
		scale = 1
	}

	limitW := box.Width * scale
	limitH := box.Height * scale

	sorted := photo.SortByArea(cands)
	for _, c := range sorted {
		if float64(c.Width) > limitW || float64(c.Height) > limitH {
			return c, nil
		}
	}
	return sorted[len(sorted)-1], nil
}
