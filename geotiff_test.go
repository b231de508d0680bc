package regrid

import (
	"errors"
	"io/fs"
	"math"
	"os"
	"slices"
	"testing"
	"testing/fstest"

	"github.com/alecthomas/assert/v2"

	"github.com/twpayne/go-regrid/internal/geotifftest"
)

func newTestGeoTIFF() geotifftest.GeoTIFF {
	return geotifftest.GeoTIFF{
		Width:         3,
		Length:        2,
		BitsPerSample: 32,
		Scale:         [2]float64{10, 10},
		Tiepoint:      [2]float64{100, 200},
		GeoKeys: []uint16{
			1, 1, 0, 3,
			1024, 0, 1, ModelTypeProjected,
			1025, 0, 1, RasterTypePixelIsArea,
			3072, 0, 1, 3035,
		},
		Rows: [][]float32{
			{1, 2, 3},
			{4, 5, geotifftest.NoData},
		},
	}
}

func TestDecodeGeoTIFF(t *testing.T) {
	geoTIFF, err := DecodeGeoTIFF(newTestGeoTIFF().Encode())
	assert.NoError(t, err)
	assert.Equal(t, 3035, geoTIFF.SRID)

	ys, xs := geoTIFF.Coords()
	assert.Equal(t, []float64{185, 195}, ys)
	assert.Equal(t, []float64{105, 115, 125}, xs)

	values, err := geoTIFF.Values(0)
	assert.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, values[1])
	assert.Equal(t, []float64{4, 5}, values[0][:2])
	assert.True(t, math.IsNaN(values[0][2]))
}

func TestDecodeGeoTIFF_PixelIsPoint(t *testing.T) {
	testGeoTIFF := newTestGeoTIFF()
	testGeoTIFF.GeoKeys = []uint16{
		1, 1, 0, 3,
		1024, 0, 1, ModelTypeGeographic,
		1025, 0, 1, RasterTypePixelIsPoint,
		2048, 0, 1, 4326,
	}
	geoTIFF, err := DecodeGeoTIFF(testGeoTIFF.Encode())
	assert.NoError(t, err)
	assert.Equal(t, 4326, geoTIFF.SRID)

	ys, xs := geoTIFF.Coords()
	assert.Equal(t, []float64{190, 200}, ys)
	assert.Equal(t, []float64{100, 110, 120}, xs)
}

func TestDecodeGeoTIFF_NoData(t *testing.T) {
	geoTIFF, err := DecodeGeoTIFF(newTestGeoTIFF().Encode(), WithNoData(5))
	assert.NoError(t, err)
	values, err := geoTIFF.Values(0)
	assert.NoError(t, err)
	assert.True(t, math.IsNaN(values[0][1]))
	assert.Equal(t, geotifftest.NoData, values[0][2])
}

func TestDecodeGeoTIFF_Unsupported(t *testing.T) {
	testGeoTIFF := newTestGeoTIFF()
	testGeoTIFF.BitsPerSample = 16
	_, err := DecodeGeoTIFF(testGeoTIFF.Encode())
	assert.IsError(t, err, errors.ErrUnsupported)

	bigEndian := newTestGeoTIFF().Encode()
	copy(bigEndian, "MM")
	_, err = DecodeGeoTIFF(bigEndian)
	assert.IsError(t, err, errors.ErrUnsupported)
}

func TestLoadGeoTIFF(t *testing.T) {
	fsys := fstest.MapFS{
		"tile.tif": &fstest.MapFile{Data: newTestGeoTIFF().Encode()},
	}

	geoTIFF, err := LoadGeoTIFF(fsys, "tile.tif")
	assert.NoError(t, err)
	rows, cols := geoTIFF.Shape()
	assert.Equal(t, 2, rows)
	assert.Equal(t, 3, cols)

	_, err = LoadGeoTIFF(fsys, "missing.tif")
	assert.IsError(t, err, fs.ErrNotExist)
}

func TestLoadGeoTIFF_Testdata(t *testing.T) {
	fsys := os.DirFS("testdata/dem")
	filenames, err := fs.Glob(fsys, "*.tif")
	if err != nil || len(filenames) == 0 {
		t.Skip("missing dem test data")
	}
	for _, filename := range filenames {
		t.Run(filename, func(t *testing.T) {
			geoTIFF, err := LoadGeoTIFF(fsys, filename)
			if errors.Is(err, errors.ErrUnsupported) {
				t.Skip(err)
			}
			assert.NoError(t, err)
			ys, xs := geoTIFF.Coords()
			assert.True(t, slices.IsSorted(ys))
			assert.True(t, slices.IsSorted(xs))
		})
	}
}

func TestDecompressTileData(t *testing.T) {
	_, err := decompressTileData([]byte{0, 0}, compressionNone, 4)
	assert.IsError(t, err, errShortRead)

	_, err = decompressTileData(nil, 7, 4)
	assert.IsError(t, err, errors.ErrUnsupported)

	tileData, err := decompressTileData([]byte{0, 0, 0x80, 0x3f, 0xff}, compressionNone, 4)
	assert.NoError(t, err)
	assert.Equal(t, []float32{1}, decodeTileData(tileData, 1))
}
