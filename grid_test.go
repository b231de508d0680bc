package regrid_test

import (
	"errors"
	"math"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/twpayne/go-regrid"
)

func newTestGrid(t *testing.T) *regrid.Grid {
	t.Helper()
	grid, err := regrid.NewGrid(
		[]float64{0, 1, 2},
		[]float64{0, 1, 2},
		regrid.WithValues([][]float64{
			{1, 2, 3},
			{4, 5, 6},
			{7, 8, 9},
		}),
	)
	assert.NoError(t, err)
	return grid
}

func TestNewGrid(t *testing.T) {
	grid, err := regrid.NewGrid([]float64{0, 1}, []float64{0, 1})
	assert.NoError(t, err)
	rows, cols := grid.Shape()
	assert.Equal(t, 2, rows)
	assert.Equal(t, 2, cols)
	assert.False(t, grid.HasValues())
	assert.Equal(t, 0, grid.Channels())
}

func TestNewGrid_Errors(t *testing.T) {
	for _, tc := range []struct {
		name    string
		ys      []float64
		xs      []float64
		options []regrid.GridOption
		check   func(*testing.T, error)
	}{
		{
			name: "empty_y",
			xs:   []float64{0},
			check: func(t *testing.T, err error) {
				t.Helper()
				var shapeErr *regrid.ShapeError
				assert.True(t, errors.As(err, &shapeErr))
				assert.Equal(t, 0, shapeErr.Rows)
			},
		},
		{
			name: "empty_x",
			ys:   []float64{0},
			check: func(t *testing.T, err error) {
				t.Helper()
				var shapeErr *regrid.ShapeError
				assert.True(t, errors.As(err, &shapeErr))
			},
		},
		{
			name: "values_rows",
			ys:   []float64{0, 1},
			xs:   []float64{0, 1},
			options: []regrid.GridOption{
				regrid.WithValues([][]float64{{1, 2}}),
			},
			check: func(t *testing.T, err error) {
				t.Helper()
				var shapeErr *regrid.ShapeError
				assert.True(t, errors.As(err, &shapeErr))
			},
		},
		{
			name: "values_cols",
			ys:   []float64{0, 1},
			xs:   []float64{0, 1},
			options: []regrid.GridOption{
				regrid.WithValues([][]float64{{1, 2}, {3}}),
			},
			check: func(t *testing.T, err error) {
				t.Helper()
				var shapeErr *regrid.ShapeError
				assert.True(t, errors.As(err, &shapeErr))
			},
		},
		{
			name: "values_and_samples",
			ys:   []float64{0, 1},
			xs:   []float64{0, 1},
			options: []regrid.GridOption{
				regrid.WithValues([][]float64{{1, 2}, {3, 4}}),
				regrid.WithSamples(1, []float64{1, 2, 3, 4}),
			},
			check: func(t *testing.T, err error) {
				t.Helper()
				var shapeErr *regrid.ShapeError
				assert.True(t, errors.As(err, &shapeErr))
				assert.Equal(t, "both values and samples", shapeErr.Reason)
			},
		},
		{
			name: "samples",
			ys:   []float64{0, 1},
			xs:   []float64{0, 1},
			options: []regrid.GridOption{
				regrid.WithSamples(3, make([]float64, 4)),
			},
			check: func(t *testing.T, err error) {
				t.Helper()
				var shapeErr *regrid.ShapeError
				assert.True(t, errors.As(err, &shapeErr))
			},
		},
		{
			name: "descending",
			ys:   []float64{0, 1},
			xs:   []float64{1, 0},
			check: func(t *testing.T, err error) {
				t.Helper()
				var coordsErr *regrid.CoordsError
				assert.True(t, errors.As(err, &coordsErr))
				assert.Equal(t, &regrid.CoordsError{Axis: "x", Index: 1, Value: 0}, coordsErr)
			},
		},
		{
			name: "duplicate",
			ys:   []float64{0, 1, 1},
			xs:   []float64{0},
			check: func(t *testing.T, err error) {
				t.Helper()
				var coordsErr *regrid.CoordsError
				assert.True(t, errors.As(err, &coordsErr))
				assert.Equal(t, "y", coordsErr.Axis)
				assert.Equal(t, 2, coordsErr.Index)
			},
		},
		{
			name: "nan",
			ys:   []float64{math.NaN()},
			xs:   []float64{0},
			check: func(t *testing.T, err error) {
				t.Helper()
				var coordsErr *regrid.CoordsError
				assert.True(t, errors.As(err, &coordsErr))
			},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			grid, err := regrid.NewGrid(tc.ys, tc.xs, tc.options...)
			assert.Error(t, err)
			assert.Zero(t, grid)
			tc.check(t, err)
		})
	}
}

func TestGrid_CoordsAreCopied(t *testing.T) {
	ys, xs := []float64{0, 1}, []float64{0, 1}
	grid, err := regrid.NewGrid(ys, xs)
	assert.NoError(t, err)
	ys[0], xs[0] = 5, 5
	actualYs, actualXs := grid.Coords()
	assert.Equal(t, []float64{0, 1}, actualYs)
	assert.Equal(t, []float64{0, 1}, actualXs)
	actualYs[1] = 5
	actualYs, _ = grid.Coords()
	assert.Equal(t, []float64{0, 1}, actualYs)
}

func TestGrid_Value(t *testing.T) {
	grid := newTestGrid(t)
	ys, xs := grid.Coords()
	values, err := grid.Values(0)
	assert.NoError(t, err)
	for iy, y := range ys {
		for ix, x := range xs {
			actual, err := grid.Value(y, x)
			assert.NoError(t, err)
			assert.Equal(t, []float64{values[iy][ix]}, actual)
		}
	}

	var notFoundErr *regrid.NotFoundError
	_, err = grid.Value(0.5, 0)
	assert.True(t, errors.As(err, &notFoundErr))
	assert.Equal(t, &regrid.NotFoundError{Y: 0.5, X: 0}, notFoundErr)

	_, err = grid.Value(3, 3)
	assert.True(t, errors.As(err, &notFoundErr))

	empty, err := regrid.NewGrid([]float64{0}, []float64{0})
	assert.NoError(t, err)
	_, err = empty.Value(0, 0)
	assert.IsError(t, err, regrid.ErrNoValues)
}

func TestGrid_SetSamples(t *testing.T) {
	grid, err := regrid.NewGrid([]float64{0, 1}, []float64{0, 1, 2})
	assert.NoError(t, err)

	_, err = grid.Samples()
	assert.IsError(t, err, regrid.ErrNoValues)
	_, err = grid.Values(0)
	assert.IsError(t, err, regrid.ErrNoValues)

	var shapeErr *regrid.ShapeError
	assert.True(t, errors.As(grid.SetSamples(2, make([]float64, 6)), &shapeErr))
	assert.True(t, errors.As(grid.SetSamples(0, nil), &shapeErr))
	assert.False(t, grid.HasValues())

	samples := []float64{
		0, 10, 1, 11, 2, 12,
		3, 13, 4, 14, 5, 15,
	}
	assert.NoError(t, grid.SetSamples(2, samples))
	assert.Equal(t, 2, grid.Channels())

	value, err := grid.Value(1, 2)
	assert.NoError(t, err)
	assert.Equal(t, []float64{5, 15}, value)

	values, err := grid.Values(1)
	assert.NoError(t, err)
	assert.Equal(t, [][]float64{{10, 11, 12}, {13, 14, 15}}, values)

	_, err = grid.Values(2)
	assert.True(t, errors.As(err, &shapeErr))

	samples[0] = 100
	actual, err := grid.Samples()
	assert.NoError(t, err)
	assert.Equal(t, 0., actual[0])
}

func TestGrid_BoundingCell(t *testing.T) {
	grid, err := regrid.NewGrid([]float64{0, 1, 3}, []float64{-2, 0, 4, 8})
	assert.NoError(t, err)

	for _, tc := range []struct {
		name     string
		y        float64
		x        float64
		expected regrid.Cell
	}{
		{
			name:     "inside",
			y:        0.5,
			x:        1,
			expected: regrid.Cell{Left: 0, Down: 0, Right: 4, Up: 1},
		},
		{
			name:     "non_uniform",
			y:        2,
			x:        5,
			expected: regrid.Cell{Left: 4, Down: 1, Right: 8, Up: 3},
		},
		{
			name:     "vertical_line",
			y:        2,
			x:        4,
			expected: regrid.Cell{Left: 4, Down: 1, Right: 4, Up: 3},
		},
		{
			name:     "horizontal_line",
			y:        1,
			x:        -1,
			expected: regrid.Cell{Left: -2, Down: 1, Right: 0, Up: 1},
		},
		{
			name:     "node",
			y:        3,
			x:        8,
			expected: regrid.Cell{Left: 8, Down: 3, Right: 8, Up: 3},
		},
		{
			name:     "first_node",
			y:        0,
			x:        -2,
			expected: regrid.Cell{Left: -2, Down: 0, Right: -2, Up: 0},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			actual, err := grid.BoundingCell(tc.y, tc.x)
			assert.NoError(t, err)
			assert.Equal(t, tc.expected, actual)
		})
	}
}

func TestGrid_BoundingCell_OutOfBounds(t *testing.T) {
	grid, err := regrid.NewGrid([]float64{0, 1, 3}, []float64{-2, 0, 4, 8})
	assert.NoError(t, err)

	for _, tc := range []struct {
		name     string
		y        float64
		x        float64
		expected *regrid.OutOfBoundsError
	}{
		{
			name:     "left",
			y:        1,
			x:        -2.5,
			expected: &regrid.OutOfBoundsError{Axis: "x", Value: -2.5, Min: -2, Max: 8},
		},
		{
			name:     "right",
			y:        1,
			x:        9,
			expected: &regrid.OutOfBoundsError{Axis: "x", Value: 9, Min: -2, Max: 8},
		},
		{
			name:     "below",
			y:        -1,
			x:        0,
			expected: &regrid.OutOfBoundsError{Axis: "y", Value: -1, Min: 0, Max: 3},
		},
		{
			name:     "above",
			y:        3.5,
			x:        0,
			expected: &regrid.OutOfBoundsError{Axis: "y", Value: 3.5, Min: 0, Max: 3},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := grid.BoundingCell(tc.y, tc.x)
			var outOfBoundsErr *regrid.OutOfBoundsError
			assert.True(t, errors.As(err, &outOfBoundsErr))
			assert.Equal(t, tc.expected, outOfBoundsErr)
		})
	}

	_, err = grid.BoundingCell(math.NaN(), 0)
	var outOfBoundsErr *regrid.OutOfBoundsError
	assert.True(t, errors.As(err, &outOfBoundsErr))
}

func TestGrid_SetValues(t *testing.T) {
	grid, err := regrid.NewGrid([]float64{0, 1}, []float64{0, 1})
	assert.NoError(t, err)

	var shapeErr *regrid.ShapeError
	assert.True(t, errors.As(grid.SetValues([][]float64{{1, 2}}), &shapeErr))
	assert.True(t, errors.As(grid.SetValues([][]float64{{1, 2}, {3}}), &shapeErr))
	assert.False(t, grid.HasValues())

	assert.NoError(t, grid.SetValues([][]float64{{1, 2}, {3, 4}}))
	assert.Equal(t, 1, grid.Channels())
	value, err := grid.Value(1, 0)
	assert.NoError(t, err)
	assert.Equal(t, []float64{3}, value)
}
