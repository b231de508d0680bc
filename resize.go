package regrid

import (
	"context"
	"image"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var resizes = promauto.NewCounter(prometheus.CounterOpts{
	Name: "regrid_resizes_total",
	Help: "The total number of successful resizes",
})

type resizeOptions struct {
	algorithm   Algorithm
	parallelism int
}

// A ResizeOption sets an option on a resize.
type ResizeOption func(*resizeOptions)

// WithAlgorithm sets the interpolation algorithm.
func WithAlgorithm(algorithm Algorithm) ResizeOption {
	return func(o *resizeOptions) {
		o.algorithm = algorithm
	}
}

// WithResizeParallelism sets the number of output rows that are interpolated
// concurrently.
func WithResizeParallelism(parallelism int) ResizeOption {
	return func(o *resizeOptions) {
		o.parallelism = parallelism
	}
}

// Resize returns img resized to width x height.
func Resize(ctx context.Context, img image.Image, width, height int, options ...ResizeOption) (image.Image, error) {
	if err := checkSize(width, height); err != nil {
		return nil, err
	}
	source, err := FromImage(img)
	if err != nil {
		return nil, err
	}
	resized, err := ResizeGrid(ctx, source, width, height, options...)
	if err != nil {
		return nil, err
	}
	return resized.ToImage()
}

// ResizeGrid returns a new Grid with height rows and width columns whose
// values are interpolated from source.
//
// The new coordinates on each axis step from the first source coordinate
// towards the last in increments of span/size. The last source coordinate is
// excluded.
func ResizeGrid(ctx context.Context, source *Grid, width, height int, options ...ResizeOption) (*Grid, error) {
	o := resizeOptions{
		algorithm:   AlgorithmBilinear,
		parallelism: 1,
	}
	for _, option := range options {
		option(&o)
	}

	if err := checkSize(width, height); err != nil {
		return nil, err
	}
	if o.algorithm != AlgorithmBilinear {
		return nil, &UnsupportedAlgorithmError{Algorithm: o.algorithm}
	}
	rows, cols := source.Shape()
	if rows < 2 {
		return nil, &ParameterError{Name: "source height", Value: rows, Reason: "must be at least 2"}
	}
	if cols < 2 {
		return nil, &ParameterError{Name: "source width", Value: cols, Reason: "must be at least 2"}
	}

	target, err := NewGrid(
		stepCoords(source.ys[0], source.ys[rows-1], height),
		stepCoords(source.xs[0], source.xs[cols-1], width),
	)
	if err != nil {
		return nil, err
	}

	interpolator := NewBilinearInterpolator(source, WithParallelism(o.parallelism))
	samples, err := interpolator.Interpolate(ctx, target)
	if err != nil {
		return nil, err
	}
	if err := target.SetSamples(source.Channels(), samples); err != nil {
		return nil, err
	}

	resizes.Inc()
	return target, nil
}

func checkSize(width, height int) error {
	if width <= 0 {
		return &ParameterError{Name: "width", Value: width, Reason: "must be positive"}
	}
	if height <= 0 {
		return &ParameterError{Name: "height", Value: height, Reason: "must be positive"}
	}
	return nil
}

// stepCoords returns n coordinates starting at start in steps of
// (stop-start)/n. stop itself is excluded.
func stepCoords(start, stop float64, n int) []float64 {
	step := (stop - start) / float64(n)
	coords := make([]float64, n)
	for i := range coords {
		coords[i] = start + float64(i)*step
	}
	return coords
}
