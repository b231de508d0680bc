package regrid

import (
	"fmt"
	"math"
)

// WithRegularTiling sets the tile coord and tile filename funcs for tiles of
// tileWidth by tileHeight model units laid out from (originX, originY).
// filenameFormat is formatted with the tile's column and row, for example
// "tile_%d_%d.tif". Points left of or below the origin are in no tile.
func WithRegularTiling(originX, originY, tileWidth, tileHeight float64, filenameFormat string) TileSetOption {
	return func(s *TileSet) {
		s.tileCoordFunc = func(x, y float64) (TileCoord, bool) {
			if !(x >= originX && y >= originY) || math.IsInf(x, 0) || math.IsInf(y, 0) {
				return TileCoord{}, false
			}
			return TileCoord{
				C: int((x - originX) / tileWidth),
				R: int((y - originY) / tileHeight),
			}, true
		}
		s.tileFilenameFunc = func(tileCoord TileCoord) string {
			return fmt.Sprintf(filenameFormat, tileCoord.C, tileCoord.R)
		}
	}
}
