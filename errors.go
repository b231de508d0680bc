package regrid

import (
	"errors"
	"fmt"
)

// ErrNoValues is returned when values are requested from a grid that has
// none.
var ErrNoValues = errors.New("grid has no values")

// A ShapeError is returned when a grid would be empty or when its values do
// not match its shape.
type ShapeError struct {
	Rows   int
	Cols   int
	Reason string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("grid shape (%d, %d): %s", e.Rows, e.Cols, e.Reason)
}

// A CoordsError is returned when grid coordinates are not finite and strictly
// ascending.
type CoordsError struct {
	Axis  string
	Index int
	Value float64
}

func (e *CoordsError) Error() string {
	return fmt.Sprintf("%s coordinate %d (%g) is not finite and strictly ascending", e.Axis, e.Index, e.Value)
}

// A NotFoundError is returned when there is no grid node at a coordinate.
type NotFoundError struct {
	Y float64
	X float64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("point (%g, %g) not found in grid nodes", e.Y, e.X)
}

// An OutOfBoundsError is returned when a coordinate lies outside a grid.
type OutOfBoundsError struct {
	Axis  string
	Value float64
	Min   float64
	Max   float64
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("%s=%g is out of grid bounds, required %g <= %s <= %g", e.Axis, e.Value, e.Min, e.Axis, e.Max)
}

// An UnsupportedAlgorithmError is returned for an unknown interpolation
// algorithm.
type UnsupportedAlgorithmError struct {
	Algorithm Algorithm
}

func (e *UnsupportedAlgorithmError) Error() string {
	return fmt.Sprintf("%s: unsupported interpolation algorithm", e.Algorithm)
}

// A ParameterError is returned for an invalid caller-supplied parameter.
type ParameterError struct {
	Name   string
	Value  int
	Reason string
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("invalid %s %d: %s", e.Name, e.Value, e.Reason)
}
