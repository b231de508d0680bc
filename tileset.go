package regrid

import (
	"context"
	"errors"
	"io/fs"
	"math"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	missingTileCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "regrid_missing_tile_cache_hits_total",
		Help: "The total number of hits on the missing tile cache",
	})
	missingTileCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "regrid_missing_tile_cache_misses_total",
		Help: "The total number of misses on the missing tile cache",
	})
	tileCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "regrid_tile_cache_hits_total",
		Help: "The total number of hits on the tile cache",
	})
	tileCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "regrid_tile_cache_misses_total",
		Help: "The total number of misses on the tile cache",
	})
	tileCacheEvictions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "regrid_tile_cache_evictions_total",
		Help: "The total number of evictions from the tile cache",
	})
)

var errNoTileFilenameFunc = errors.New("no tile filename func")

// A TileCoordFunc returns the tile coordinate for the point (x, y).
type TileCoordFunc func(x, y float64) (TileCoord, bool)

// A TileFilenameFunc returns the tile filename for a tile coordinate.
type TileFilenameFunc func(TileCoord) string

// A TileSet is a set of GeoTIFF tiles that can be sampled as one raster.
type TileSet struct {
	mutex            sync.Mutex
	fsys             fs.FS
	srid             int
	tileCoordFunc    TileCoordFunc
	tileFilenameFunc TileFilenameFunc
	missingTiles     sync.Map
	geoTIFFOptions   []GeoTIFFOption
	cacheSize        int
	tileCache        *lru.Cache[TileCoord, *GeoTIFF]
}

// A TileSetOption sets an option on a TileSet.
type TileSetOption func(*TileSet)

// NewTileSet returns a new TileSet with the given options. A tile filename
// func is required. Without a tile coord func, every point is in the tile
// with coordinate zero.
func NewTileSet(options ...TileSetOption) (*TileSet, error) {
	s := &TileSet{
		cacheSize: 32,
		tileCoordFunc: func(float64, float64) (TileCoord, bool) {
			return TileCoord{}, true
		},
	}
	for _, option := range options {
		option(s)
	}

	if s.tileFilenameFunc == nil {
		return nil, errNoTileFilenameFunc
	}

	var err error
	s.tileCache, err = lru.New[TileCoord, *GeoTIFF](s.cacheSize)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func WithCacheSize(cacheSize int) TileSetOption {
	return func(s *TileSet) {
		s.cacheSize = cacheSize
	}
}

func WithFS(fsys fs.FS) TileSetOption {
	return func(s *TileSet) {
		s.fsys = fsys
	}
}

func WithGeoTIFFOptions(geoTIFFOptions ...GeoTIFFOption) TileSetOption {
	return func(s *TileSet) {
		s.geoTIFFOptions = geoTIFFOptions
	}
}

func WithSRID(srid int) TileSetOption {
	return func(s *TileSet) {
		s.srid = srid
	}
}

func WithTileCoordFunc(tileCoordFunc TileCoordFunc) TileSetOption {
	return func(s *TileSet) {
		s.tileCoordFunc = tileCoordFunc
	}
}

func WithTileFilenameFunc(tileFilenameFunc TileFilenameFunc) TileSetOption {
	return func(s *TileSet) {
		s.tileFilenameFunc = tileFilenameFunc
	}
}

// Samples returns the bilinearly interpolated samples at coords, where each
// coord is an {x, y} pair. Samples at points with no tile, or outside the
// nodes of their tile, or that interpolate missing data are NaN.
func (s *TileSet) Samples(ctx context.Context, coords [][]float64) ([]float64, error) {
	samples := make([]float64, len(coords))

	// Group indexes by tile coord.
	indexesByTileCoord := make(map[TileCoord][]int)
	for index, coord := range coords {
		if err := checkCoord(index, coord); err != nil {
			return nil, err
		}
		tileCoord, ok := s.tileCoordFunc(coord[0], coord[1])
		if !ok {
			samples[index] = math.NaN()
			continue
		}
		indexesByTileCoord[tileCoord] = append(indexesByTileCoord[tileCoord], index)
	}

	// Populate samples one tile at a time.
	for tileCoord, indexes := range indexesByTileCoord {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		tile, err := s.getTileCached(tileCoord)
		if err != nil {
			return nil, err
		}
		if tile == nil {
			for _, index := range indexes {
				samples[index] = math.NaN()
			}
			continue
		}
		interpolator := NewBilinearInterpolator(tile.Grid)
		for _, index := range indexes {
			coord := coords[index]
			var outOfBoundsErr *OutOfBoundsError
			switch err := interpolator.interpolatePoint(samples[index:index+1], coord[1], coord[0]); {
			case errors.As(err, &outOfBoundsErr):
				samples[index] = math.NaN()
			case err != nil:
				return nil, err
			}
		}
		interpolatedPoints.Add(float64(len(indexes)))
	}

	return samples, nil
}

// SRID returns s's SRID.
func (s *TileSet) SRID() int {
	return s.srid
}

// getTile returns the tile at the given tile coordinate, or nil if it does
// not exist.
func (s *TileSet) getTile(tileCoord TileCoord) (*GeoTIFF, error) {
	filename := s.tileFilenameFunc(tileCoord)
	switch geoTIFF, err := LoadGeoTIFF(s.fsys, filename, s.geoTIFFOptions...); {
	case errors.Is(err, fs.ErrNotExist):
		s.missingTiles.Store(tileCoord, struct{}{})
		missingTileCacheMisses.Inc()
		return nil, nil
	case err != nil:
		return nil, err
	default:
		return geoTIFF, nil
	}
}

// getTileCached returns the tile at the given tile coordinate, using the cache
// if possible.
func (s *TileSet) getTileCached(tileCoord TileCoord) (*GeoTIFF, error) {
	if _, ok := s.missingTiles.Load(tileCoord); ok {
		missingTileCacheHits.Inc()
		return nil, nil
	}

	if tile, ok := s.tileCache.Get(tileCoord); ok {
		tileCacheHits.Inc()
		return tile, nil
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, ok := s.missingTiles.Load(tileCoord); ok {
		missingTileCacheHits.Inc()
		return nil, nil
	}

	if tile, ok := s.tileCache.Get(tileCoord); ok {
		tileCacheHits.Inc()
		return tile, nil
	}

	tileCacheMisses.Inc()

	tile, err := s.getTile(tileCoord)
	if err != nil || tile == nil {
		return nil, err
	}

	if eviction := s.tileCache.Add(tileCoord, tile); eviction {
		tileCacheEvictions.Inc()
	}

	return tile, nil
}
