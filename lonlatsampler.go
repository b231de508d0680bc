package regrid

import (
	"context"
	"errors"
	"strconv"

	"github.com/twpayne/go-proj/v10"
)

var errNoSRID = errors.New("tile set has no SRID")

// A LonLatSampler samples a TileSet at longitudes and latitudes.
type LonLatSampler struct {
	tileSet *TileSet
	pj      *proj.PJ
}

// NewLonLatSampler returns a new LonLatSampler that samples tileSet, which
// must have an SRID.
func NewLonLatSampler(tileSet *TileSet) (*LonLatSampler, error) {
	if tileSet.SRID() == 0 {
		return nil, errNoSRID
	}
	pj, err := proj.NewCRSToCRS("epsg:4326", "epsg:"+strconv.Itoa(tileSet.SRID()), nil)
	if err != nil {
		return nil, err
	}
	defer pj.Destroy()

	// Use longitude, latitude and easting, northing axis order.
	normalizedPJ, err := pj.NormalizeForVisualization()
	if err != nil {
		return nil, err
	}

	return &LonLatSampler{
		tileSet: tileSet,
		pj:      normalizedPJ,
	}, nil
}

// Close releases the resources associated with s.
func (s *LonLatSampler) Close() {
	s.pj.Destroy()
}

// Samples returns the samples at coords, where each coord is a {longitude,
// latitude} pair.
func (s *LonLatSampler) Samples(ctx context.Context, coords [][]float64) ([]float64, error) {
	projectedCoords := make([][]float64, len(coords))
	for i, coord := range coords {
		if err := checkCoord(i, coord); err != nil {
			return nil, err
		}
		projectedCoord, err := s.pj.Forward(proj.NewCoord(coord[0], coord[1], 0, 0))
		if err != nil {
			return nil, err
		}
		projectedCoords[i] = []float64{projectedCoord.X(), projectedCoord.Y()}
	}
	return s.tileSet.Samples(ctx, projectedCoords)
}
