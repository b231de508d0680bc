// Package regrid resamples values on rectangular grids with bilinear
// interpolation and uses this to resize images and sample gridded rasters.
package regrid

// An Algorithm is an interpolation algorithm.
type Algorithm string

// Algorithms.
const (
	AlgorithmBilinear Algorithm = "bilinear"
)

// Algorithms returns all supported algorithms.
func Algorithms() []Algorithm {
	return []Algorithm{AlgorithmBilinear}
}

// A TileCoord is a tile coordinate.
type TileCoord struct {
	C int // Column.
	R int // Row.
}

// A Cell is the rectangle of grid lines enclosing a point. If the point lies
// on a vertical grid line then Left == Right, and if it lies on a horizontal
// grid line then Down == Up.
type Cell struct {
	Left  float64
	Down  float64
	Right float64
	Up    float64
}
