package regrid

import (
	"math"
	"slices"
	"strconv"
)

// A Grid is a rectangular grid with strictly ascending, possibly non-uniform,
// coordinates on each axis and optional values at each node. Each node holds
// one value per channel.
type Grid struct {
	ys       []float64
	xs       []float64
	channels int
	samples  []float64
	values   [][]float64
}

// A GridOption sets an option on a Grid.
type GridOption func(*Grid)

// WithValues sets single channel values on a Grid. values must have one row
// per y coordinate and one column per x coordinate.
func WithValues(values [][]float64) GridOption {
	return func(g *Grid) {
		g.values = values
	}
}

// WithSamples sets the values of a Grid from row-major samples with channels
// interleaved.
func WithSamples(channels int, samples []float64) GridOption {
	return func(g *Grid) {
		g.channels = channels
		g.samples = samples
	}
}

// NewGrid returns a new Grid with the given coordinates. The coordinates are
// copied. At most one of WithValues and WithSamples may be given.
func NewGrid(ys, xs []float64, options ...GridOption) (*Grid, error) {
	g := &Grid{}
	for _, option := range options {
		option(g)
	}

	if len(ys) == 0 || len(xs) == 0 {
		return nil, &ShapeError{Rows: len(ys), Cols: len(xs), Reason: "empty grid"}
	}
	if err := checkAscending("y", ys); err != nil {
		return nil, err
	}
	if err := checkAscending("x", xs); err != nil {
		return nil, err
	}
	g.ys = slices.Clone(ys)
	g.xs = slices.Clone(xs)

	switch {
	case g.values != nil && g.samples != nil:
		return nil, &ShapeError{Rows: len(ys), Cols: len(xs), Reason: "both values and samples"}
	case g.values != nil:
		values := g.values
		g.values = nil
		if err := g.SetValues(values); err != nil {
			return nil, err
		}
	case g.samples != nil:
		channels, samples := g.channels, g.samples
		g.channels, g.samples = 0, nil
		if err := g.SetSamples(channels, samples); err != nil {
			return nil, err
		}
	}

	return g, nil
}

// Coords returns copies of g's y and x coordinates.
func (g *Grid) Coords() ([]float64, []float64) {
	return slices.Clone(g.ys), slices.Clone(g.xs)
}

// Shape returns the number of rows and columns in g.
func (g *Grid) Shape() (int, int) {
	return len(g.ys), len(g.xs)
}

// Channels returns the number of values at each node of g, or zero if g has
// no values.
func (g *Grid) Channels() int {
	return g.channels
}

// HasValues returns whether g has values.
func (g *Grid) HasValues() bool {
	return g.samples != nil
}

// Samples returns a copy of g's row-major, channel-interleaved samples.
func (g *Grid) Samples() ([]float64, error) {
	if g.samples == nil {
		return nil, ErrNoValues
	}
	return slices.Clone(g.samples), nil
}

// SetSamples replaces g's values with samples, which must be row-major with
// channels interleaved.
func (g *Grid) SetSamples(channels int, samples []float64) error {
	rows, cols := g.Shape()
	if channels < 1 {
		return &ShapeError{Rows: rows, Cols: cols, Reason: strconv.Itoa(channels) + " channels"}
	}
	if len(samples) != rows*cols*channels {
		return &ShapeError{
			Rows:   rows,
			Cols:   cols,
			Reason: strconv.Itoa(len(samples)) + " samples, expected " + strconv.Itoa(rows*cols*channels),
		}
	}
	g.channels = channels
	g.samples = slices.Clone(samples)
	return nil
}

// SetValues replaces g's values with the single channel values.
func (g *Grid) SetValues(values [][]float64) error {
	rows, cols := g.Shape()
	if len(values) != rows {
		return &ShapeError{Rows: rows, Cols: cols, Reason: "values have " + strconv.Itoa(len(values)) + " rows"}
	}
	samples := make([]float64, 0, rows*cols)
	for i, row := range values {
		if len(row) != cols {
			return &ShapeError{
				Rows:   rows,
				Cols:   cols,
				Reason: "values row " + strconv.Itoa(i) + " has " + strconv.Itoa(len(row)) + " columns",
			}
		}
		samples = append(samples, row...)
	}
	g.channels = 1
	g.samples = samples
	return nil
}

// Values returns the values of a single channel of g.
func (g *Grid) Values(channel int) ([][]float64, error) {
	if g.samples == nil {
		return nil, ErrNoValues
	}
	if channel < 0 || channel >= g.channels {
		rows, cols := g.Shape()
		return nil, &ShapeError{Rows: rows, Cols: cols, Reason: "no channel " + strconv.Itoa(channel)}
	}
	rows, cols := g.Shape()
	values := make([][]float64, rows)
	for iy := range rows {
		values[iy] = make([]float64, cols)
		for ix := range cols {
			values[iy][ix] = g.samples[g.offset(iy, ix)+channel]
		}
	}
	return values, nil
}

// Value returns the values at the node of g at exactly (y, x).
func (g *Grid) Value(y, x float64) ([]float64, error) {
	if g.samples == nil {
		return nil, ErrNoValues
	}
	iy, okY := slices.BinarySearch(g.ys, y)
	ix, okX := slices.BinarySearch(g.xs, x)
	if !okY || !okX {
		return nil, &NotFoundError{Y: y, X: x}
	}
	return slices.Clone(g.node(iy, ix)), nil
}

// BoundingCell returns the cell of g's grid lines that encloses (y, x).
// Points on the boundary of g are inside g. When a coordinate coincides with
// a grid line the cell collapses onto that line.
func (g *Grid) BoundingCell(y, x float64) (Cell, error) {
	c, err := g.locate(y, x)
	if err != nil {
		return Cell{}, err
	}
	return Cell{
		Left:  g.xs[c.left],
		Down:  g.ys[c.down],
		Right: g.xs[c.right],
		Up:    g.ys[c.up],
	}, nil
}

// A cellIndex is a Cell expressed as indexes into a grid's coordinates.
type cellIndex struct {
	left, down, right, up int
}

func (g *Grid) locate(y, x float64) (cellIndex, error) {
	left, right, err := locateAxis("x", g.xs, x)
	if err != nil {
		return cellIndex{}, err
	}
	down, up, err := locateAxis("y", g.ys, y)
	if err != nil {
		return cellIndex{}, err
	}
	return cellIndex{left: left, down: down, right: right, up: up}, nil
}

// locateAxis returns the indexes of the coordinates enclosing value. The
// indexes are equal if value is a coordinate.
func locateAxis(axis string, coords []float64, value float64) (int, int, error) {
	lo, hi := coords[0], coords[len(coords)-1]
	if !(lo <= value && value <= hi) {
		return 0, 0, &OutOfBoundsError{Axis: axis, Value: value, Min: lo, Max: hi}
	}
	i, found := slices.BinarySearch(coords, value)
	if found {
		return i, i, nil
	}
	return i - 1, i, nil
}

// node returns the values at the node (iy, ix) without copying.
func (g *Grid) node(iy, ix int) []float64 {
	offset := g.offset(iy, ix)
	return g.samples[offset : offset+g.channels]
}

func (g *Grid) offset(iy, ix int) int {
	return (iy*len(g.xs) + ix) * g.channels
}

func checkAscending(axis string, coords []float64) error {
	for i, c := range coords {
		if math.IsNaN(c) || math.IsInf(c, 0) || i > 0 && !(coords[i-1] < c) {
			return &CoordsError{Axis: axis, Index: i, Value: c}
		}
	}
	return nil
}
