package imaging

import (
	"errors"
	"fmt"
	"image"
	"math"
)

// ErrInvalidGrid is returned by NewGrid for non-positive cell sizes or column counts.
var ErrInvalidGrid = errors.New("invalid grid")

// Grid is the fixed-cell layout of a collage.
//
// Cells are filled row-major: cell i sits at column i%Columns and row
// i/Columns, so cell index always equals the position of the image in the
// selection.
type Grid struct {
	// Count is the number of images laid out.
	Count int `json:"count"`

	// Columns is the number of cells per row.
	Columns int `json:"columns"`

	// Rows is ceil(Count / Columns).
	Rows int `json:"rows"`

	// CellSize is the side length of each square cell in pixels.
	CellSize int `json:"cell_size"`
}

// NewGrid computes the layout for count images.
//
// When there are fewer images than columns the grid collapses to a single
// row exactly as wide as the images, so one image yields a single
// cellSize × cellSize cell. A count of zero yields a grid with zero rows;
// callers that need at least one image must check separately.
func NewGrid(count, columns, cellSize int) (Grid, error) {
	if columns < 1 {
		return Grid{}, fmt.Errorf("%w: columns must be >= 1, got %d", ErrInvalidGrid, columns)
	}
	if cellSize <= 0 {
		return Grid{}, fmt.Errorf("%w: cell size must be > 0, got %d", ErrInvalidGrid, cellSize)
	}
	if count < 0 {
		return Grid{}, fmt.Errorf("%w: negative image count %d", ErrInvalidGrid, count)
	}

	if count > 0 && count < columns {
		columns = count
	}

	return Grid{
		Count:    count,
		Columns:  columns,
		Rows:     (count + columns - 1) / columns,
		CellSize: cellSize,
	}, nil
}

// Width is the surface width in pixels.
func (g Grid) Width() int { return g.CellSize * g.Columns }

// Height is the surface height in pixels.
func (g Grid) Height() int { return g.CellSize * g.Rows }

// Bounds is the full surface rectangle anchored at the origin.
func (g Grid) Bounds() image.Rectangle {
	return image.Rect(0, 0, g.Width(), g.Height())
}

// Pixels returns the surface area, or an error if the width, the height or
// the area does not fit in an int.
func (g Grid) Pixels() (int, error) {
	if g.CellSize < 0 || g.Columns < 0 || g.Rows < 0 {
		return 0, fmt.Errorf("%w: negative dimensions", ErrInvalidGrid)
	}
	if g.Columns > 0 && g.CellSize > math.MaxInt/g.Columns {
		return 0, fmt.Errorf("%w: width %d×%d overflows", ErrInvalidGrid, g.CellSize, g.Columns)
	}
	if g.Rows > 0 && g.CellSize > math.MaxInt/g.Rows {
		return 0, fmt.Errorf("%w: height %d×%d overflows", ErrInvalidGrid, g.CellSize, g.Rows)
	}
	w, h := g.Width(), g.Height()
	if w > 0 && h > math.MaxInt/w {
		return 0, fmt.Errorf("%w: surface %dx%d overflows", ErrInvalidGrid, w, h)
	}
	return w * h, nil
}

// Origin returns the top-left corner of cell i.
func (g Grid) Origin(i int) image.Point {
	return image.Pt((i%g.Columns)*g.CellSize, (i/g.Columns)*g.CellSize)
}

// Cell returns the rectangle of cell i.
func (g Grid) Cell(i int) image.Rectangle {
	o := g.Origin(i)
	return image.Rect(o.X, o.Y, o.X+g.CellSize, o.Y+g.CellSize)
}
