package layout

import (
	"github.com/five82/skylight/internal/photo"
)

// Row is a contiguous run of packed items, [Start, End).
type Row struct {
	Start     int     `json:"start"`
	End       int     `json:"end"`
	Height    float64 `json:"height"`
	Justified bool    `json:"justified"`
}

// Len returns the number of items in the row.
func (r Row) Len() int {
	return r.End - r.Start
}

// PackRows resizes items into justified rows of rowWidth. Output order and
// length always match the input.
func PackRows(items []photo.Size, rowWidth, targetRowHeight float64) []photo.Size {
	out, _ := pack(items, rowWidth, targetRowHeight)
	return out
}

// Pack is PackRows returning the row partition instead of the sizes.
func Pack(items []photo.Size, rowWidth, targetRowHeight float64) []Row {
	_, rows := pack(items, rowWidth, targetRowHeight)
	return rows
}

func pack(items []photo.Size, rowWidth, targetRowHeight float64) ([]photo.Size, []Row) {
	if len(items) == 0 {
		return nil, nil
	}

	out := make([]photo.Size, 0, len(items))

	if photo.UnknownLength(rowWidth) || photo.UnknownLength(targetRowHeight) {
		out = append(out, items...)
		return out, []Row{{Start: 0, End: len(items), Height: naturalHeight(items)}}
	}

	maxAspectSum := rowWidth / targetRowHeight

	var rows []Row
	start := 0
	sum := 0.0

	flush := func(end int, height float64, justified bool) {
		for _, it := range items[start:end] {
			out = append(out, resizeToHeight(it, height))
		}
		rows = append(rows, Row{Start: start, End: end, Height: height, Justified: justified})
	}

	for i, it := range items {
		aspect := it.Aspect()
		if sum+aspect < maxAspectSum || i == start {
			sum += aspect
			continue
		}
		flush(i, rowWidth/sum, true)
		start = i
		sum = aspect
	}
	flush(len(items), targetRowHeight, false)

	return out, rows
}

func resizeToHeight(s photo.Size, height float64) photo.Size {
	return photo.Size{Width: height * s.Aspect(), Height: height}
}

func naturalHeight(items []photo.Size) float64 {
	h := 0.0
	for _, it := range items {
		if it.Height > h {
			h = it.Height
		}
	}
	return h
}
