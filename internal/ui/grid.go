package ui

import (
	"math"

	"github.com/five82/skylight/internal/layout"
)

// cellTile is a tile placed on the terminal grid, in columns.
type cellTile struct {
	index int
	x     int
	width int
}

// cellRow is a packed row placed on the terminal grid.
type cellRow struct {
	y      int
	height int
	tiles  []cellTile
}

// grid maps a pixel layout onto terminal cells.
type grid struct {
	rows  []cellRow
	lines int
}

// buildGrid converts packed rows to cells. Justified rows span exactly cols
// columns; the trailing row keeps its natural width, clamped to cols.
func buildGrid(rows []layout.Row, tiles []layout.Tile, cols, cellWidth, cellHeight int) grid {
	var g grid
	if cols <= 0 || cellWidth <= 0 || cellHeight <= 0 {
		return g
	}
	for _, r := range rows {
		if r.Start < 0 || r.End > len(tiles) || r.Len() <= 0 {
			continue
		}
		widths := make([]float64, 0, r.Len())
		for _, t := range tiles[r.Start:r.End] {
			widths = append(widths, t.Width)
		}

		var cells []int
		if r.Justified {
			cells = distribute(widths, cols)
		} else {
			cells = scaleCells(widths, float64(cellWidth), cols)
		}

		row := cellRow{
			y:      g.lines,
			height: max(1, int(math.Round(r.Height/float64(cellHeight)))),
		}
		x := 0
		for i, w := range cells {
			row.tiles = append(row.tiles, cellTile{index: r.Start + i, x: x, width: w})
			x += w
		}
		g.rows = append(g.rows, row)
		g.lines += row.height
	}
	return g
}

// distribute splits total columns in proportion to widths. Rounding error is
// carried forward, so the result always sums to total.
func distribute(widths []float64, total int) []int {
	out := make([]int, len(widths))
	var sum float64
	for _, w := range widths {
		sum += w
	}
	if sum <= 0 || total <= 0 {
		return out
	}
	var acc float64
	used := 0
	for i, w := range widths {
		acc += w / sum * float64(total)
		end := int(math.Round(acc))
		if i == len(widths)-1 {
			end = total
		}
		end = min(max(end, used), total)
		out[i] = end - used
		used = end
	}
	return out
}

// scaleCells converts pixel widths at cellWidth pixels per column, carrying
// rounding error forward and never exceeding limit columns in total.
func scaleCells(widths []float64, cellWidth float64, limit int) []int {
	out := make([]int, len(widths))
	var acc float64
	used := 0
	for i, w := range widths {
		acc += w / cellWidth
		end := min(max(int(math.Round(acc)), used), limit)
		out[i] = end - used
		used = end
	}
	return out
}

// locate returns the row and position of the tile with index.
func (g grid) locate(index int) (row, pos int, ok bool) {
	for ri, r := range g.rows {
		for ti, t := range r.tiles {
			if t.index == index {
				return ri, ti, true
			}
		}
	}
	return 0, 0, false
}

// nearest returns the tile index in row ri whose horizontal center is closest
// to x.
func (g grid) nearest(ri, x int) int {
	r := g.rows[ri]
	best, bestDist := r.tiles[0].index, math.MaxInt
	for _, t := range r.tiles {
		d := abs(t.x + t.width/2 - x)
		if d < bestDist {
			best, bestDist = t.index, d
		}
	}
	return best
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
