package regrid

import (
	"context"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var interpolatedPoints = promauto.NewCounter(prometheus.CounterOpts{
	Name: "regrid_interpolated_points_total",
	Help: "The total number of points interpolated",
})

// A BilinearInterpolator interpolates values from a source Grid.
type BilinearInterpolator struct {
	source      *Grid
	parallelism int
}

// An InterpolatorOption sets an option on a BilinearInterpolator.
type InterpolatorOption func(*BilinearInterpolator)

// WithParallelism sets the number of rows that are interpolated concurrently.
func WithParallelism(parallelism int) InterpolatorOption {
	return func(b *BilinearInterpolator) {
		b.parallelism = parallelism
	}
}

// NewBilinearInterpolator returns a new BilinearInterpolator that reads values
// from source. source must have values when it is interpolated.
func NewBilinearInterpolator(source *Grid, options ...InterpolatorOption) *BilinearInterpolator {
	b := &BilinearInterpolator{
		source:      source,
		parallelism: 1,
	}
	for _, option := range options {
		option(b)
	}
	b.parallelism = max(b.parallelism, 1)
	return b
}

// Interpolate returns the values of b's source interpolated at each node of
// target. Only target's coordinates are used. The result is row-major with
// one value for each channel of the source, and can be passed to
// target.SetSamples.
//
// Every node of target must lie within the source. If several do not, the
// error for the first in row-major order is returned.
func (b *BilinearInterpolator) Interpolate(ctx context.Context, target *Grid) ([]float64, error) {
	if !b.source.HasValues() {
		return nil, ErrNoValues
	}

	channels := b.source.channels
	rows, cols := target.Shape()
	samples := make([]float64, rows*cols*channels)

	// x cells are the same for every row.
	xCells := make([]axisCell, cols)
	for ix, x := range target.xs {
		xCells[ix].lo, xCells[ix].hi, xCells[ix].err = locateAxis("x", b.source.xs, x)
	}

	interpolateRow := func(iy int) error {
		y := target.ys[iy]
		down, up, yErr := locateAxis("y", b.source.ys, y)
		for ix, x := range target.xs {
			switch {
			case xCells[ix].err != nil:
				return xCells[ix].err
			case yErr != nil:
				return yErr
			}
			c := cellIndex{left: xCells[ix].lo, down: down, right: xCells[ix].hi, up: up}
			offset := (iy*cols + ix) * channels
			b.blend(samples[offset:offset+channels], c, y, x)
		}
		return nil
	}

	rowErrs := make([]error, rows)
	if b.parallelism == 1 || rows == 1 {
		for iy := range rows {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if err := interpolateRow(iy); err != nil {
				return nil, err
			}
		}
	} else {
		rowCh := make(chan int)
		var wg sync.WaitGroup
		for range min(b.parallelism, rows) {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for iy := range rowCh {
					if err := ctx.Err(); err != nil {
						rowErrs[iy] = err
						continue
					}
					rowErrs[iy] = interpolateRow(iy)
				}
			}()
		}
		for iy := range rows {
			rowCh <- iy
		}
		close(rowCh)
		wg.Wait()
		for _, err := range rowErrs {
			if err != nil {
				return nil, err
			}
		}
	}

	interpolatedPoints.Add(float64(rows * cols))
	return samples, nil
}

// InterpolatePoints returns the values of b's source interpolated at each of
// coords, where each coord is an {x, y} pair. The result has one value for
// each channel of the source for each coord.
func (b *BilinearInterpolator) InterpolatePoints(ctx context.Context, coords [][]float64) ([]float64, error) {
	if !b.source.HasValues() {
		return nil, ErrNoValues
	}
	channels := b.source.channels
	samples := make([]float64, len(coords)*channels)
	for i, coord := range coords {
		if err := checkCoord(i, coord); err != nil {
			return nil, err
		}
		if err := b.interpolatePoint(samples[i*channels:(i+1)*channels], coord[1], coord[0]); err != nil {
			return nil, err
		}
	}
	interpolatedPoints.Add(float64(len(coords)))
	return samples, nil
}

// interpolatePoint writes the values of b's source interpolated at (y, x) to
// dst.
func (b *BilinearInterpolator) interpolatePoint(dst []float64, y, x float64) error {
	c, err := b.source.locate(y, x)
	if err != nil {
		return err
	}
	b.blend(dst, c, y, x)
	return nil
}

// blend writes the bilinear blend of the corners of c at (y, x) to dst.
func (b *BilinearInterpolator) blend(dst []float64, c cellIndex, y, x float64) {
	src := b.source
	left, right := src.xs[c.left], src.xs[c.right]
	down, up := src.ys[c.down], src.ys[c.up]
	q11 := src.node(c.down, c.left)
	q12 := src.node(c.up, c.left)
	q21 := src.node(c.down, c.right)
	q22 := src.node(c.up, c.right)

	switch {
	case c.left == c.right && c.down == c.up: // Node.
		copy(dst, q11)
	case c.left == c.right: // Vertical grid line.
		for i := range dst {
			dst[i] = (q11[i]*(up-y) + q12[i]*(y-down)) / (up - down)
		}
	case c.down == c.up: // Horizontal grid line.
		for i := range dst {
			dst[i] = (q11[i]*(right-x) + q21[i]*(x-left)) / (right - left)
		}
	default:
		area := (right - left) * (up - down)
		for i := range dst {
			dst[i] = (q11[i]*(right-x)*(up-y) +
				q21[i]*(x-left)*(up-y) +
				q12[i]*(right-x)*(y-down) +
				q22[i]*(x-left)*(y-down)) / area
		}
	}
}

// checkCoord returns an error if coord, the ith coord, has no y value.
func checkCoord(i int, coord []float64) error {
	if len(coord) < 2 {
		return &ParameterError{Name: "coord " + strconv.Itoa(i) + " length", Value: len(coord), Reason: "must be at least 2"}
	}
	return nil
}

type axisCell struct {
	lo, hi int
	err    error
}
