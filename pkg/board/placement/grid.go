package placement

import (
	"math"

	"github.com/matzehuels/corkboard/pkg/board"
)

// Grid partitions a canvas into cells the size of one item.
type Grid struct {
	Cols, Rows int
	Cell       board.Size
}

// NewGrid returns the grid for dims and an item footprint.
// A degenerate footprint yields an empty grid.
func NewGrid(dims board.Dimensions, item board.Size) Grid {
	if item.Width <= 0 || item.Height <= 0 {
		return Grid{Cell: item}
	}
	return Grid{
		Cols: int(math.Floor(dims.Width / item.Width)),
		Rows: int(math.Floor(dims.Height / item.Height)),
		Cell: item,
	}
}

// Cells returns the number of cells.
func (g Grid) Cells() int { return g.Cols * g.Rows }

// Origin returns the top-left corner of cell i.
func (g Grid) Origin(i int) board.Position {
	col, row := i%g.Cols, i/g.Cols
	return board.Position{
		Top:  float64(row) * g.Cell.Height,
		Left: float64(col) * g.Cell.Width,
	}
}

// CellOf returns the cell whose origin is nearest to p, or -1 for an empty grid.
// Jittered positions produced by a Placer always map back to their own cell.
func (g Grid) CellOf(p board.Position) int {
	if g.Cells() == 0 {
		return -1
	}
	col := clampInt(int(math.Round(p.Left/g.Cell.Width)), 0, g.Cols-1)
	row := clampInt(int(math.Round(p.Top/g.Cell.Height)), 0, g.Rows-1)
	return row*g.Cols + col
}

func clampInt(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
