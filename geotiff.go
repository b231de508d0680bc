package regrid

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"strconv"
	"strings"

	"github.com/google/tiff"
	_ "github.com/google/tiff/bigtiff"
	_ "github.com/google/tiff/geotiff"
	"golang.org/x/image/tiff/lzw"
)

// TIFF compression schemes.
const (
	compressionNone = 1
	compressionLZW  = 5
)

var errShortRead = errors.New("short read")

// A GeoTIFF is a single band GeoTIFF raster loaded as a Grid. The grid's
// coordinates are model coordinates with y ascending, so the first row of the
// grid is the last row of the raster.
type GeoTIFF struct {
	*Grid
	SRID int // Zero if unknown.
}

type geoTIFFOptions struct {
	noData    float64
	hasNoData bool
}

// A GeoTIFFOption sets an option on loading a GeoTIFF.
type GeoTIFFOption func(*geoTIFFOptions)

// WithNoData sets the value of missing samples, overriding any GDAL no data
// value in the file. Missing samples are loaded as NaN.
func WithNoData(noData float64) GeoTIFFOption {
	return func(o *geoTIFFOptions) {
		o.noData = noData
		o.hasNoData = true
	}
}

// A geoTIFFIFD is a struct into which github.com/google/tiff can unmarshal an
// IFD.
type geoTIFFIFD struct {
	ImageWidth                uint16    `tiff:"field,tag=256"`
	ImageLength               uint16    `tiff:"field,tag=257"`
	BitsPerSample             uint16    `tiff:"field,tag=258"`
	Compression               uint16    `tiff:"field,tag=259"`
	PhotometricInterpretation uint16    `tiff:"field,tag=262"`
	SamplesPerPixel           uint16    `tiff:"field,tag=277"`
	PlanarConfiguration       uint16    `tiff:"field,tag=284"`
	Predictor                 uint16    `tiff:"field,tag=317"`
	TileWidth                 uint16    `tiff:"field,tag=322"`
	TileLength                uint16    `tiff:"field,tag=323"`
	TileOffsets               []uint64  `tiff:"field,tag=324"`
	TileByteCounts            []uint64  `tiff:"field,tag=325"`
	SampleFormat              uint16    `tiff:"field,tag=339"`
	ModelPixelScaleTag        []float64 `tiff:"field,tag=33550"`
	ModelTiepointTag          []float64 `tiff:"field,tag=33922"`
	GeoKeyDirectoryTag        []uint16  `tiff:"field,tag=34735"`
	GeoDoubleParamsTag        []float64 `tiff:"field,tag=34736"`
	GeoASCIIParamsTag         string    `tiff:"field,tag=34737"`
	GDALNoData                string    `tiff:"field,tag=42113"`
}

// LoadGeoTIFF loads filename from fsys. Only single band, 32-bit float, tiled,
// little-endian GeoTIFFs that are uncompressed or LZW-compressed without a
// predictor are supported.
func LoadGeoTIFF(fsys fs.FS, filename string, options ...GeoTIFFOption) (*GeoTIFF, error) {
	data, err := fs.ReadFile(fsys, filename)
	if err != nil {
		return nil, err
	}
	return DecodeGeoTIFF(data, options...)
}

// DecodeGeoTIFF decodes a GeoTIFF from data. See LoadGeoTIFF.
func DecodeGeoTIFF(data []byte, options ...GeoTIFFOption) (*GeoTIFF, error) {
	var o geoTIFFOptions
	for _, option := range options {
		option(&o)
	}

	if len(data) < 2 || string(data[:2]) != "II" {
		return nil, errors.ErrUnsupported
	}

	tiffTIFF, err := tiff.Parse(bytes.NewReader(data), tiff.GetTagSpace("GeoTIFF"), nil)
	if err != nil {
		return nil, err
	}

	if len(tiffTIFF.IFDs()) != 1 {
		return nil, fmt.Errorf("found %d IFDs, expected 1", len(tiffTIFF.IFDs()))
	}

	var ifd geoTIFFIFD
	if err := tiff.UnmarshalIFD(tiffTIFF.IFDs()[0], &ifd); err != nil {
		return nil, err
	}

	return newGeoTIFF(&ifd, data, o)
}

func newGeoTIFF(ifd *geoTIFFIFD, data []byte, o geoTIFFOptions) (*GeoTIFF, error) {
	if ifd.BitsPerSample != 32 ||
		ifd.Compression != compressionNone && ifd.Compression != compressionLZW ||
		ifd.SamplesPerPixel != 1 ||
		ifd.PlanarConfiguration > 1 ||
		ifd.Predictor > 1 ||
		ifd.SampleFormat != 3 ||
		ifd.TileWidth == 0 || ifd.TileLength == 0 ||
		len(ifd.ModelPixelScaleTag) != 3 ||
		len(ifd.ModelTiepointTag) != 6 {
		return nil, errors.ErrUnsupported
	}

	scaleX, scaleY := ifd.ModelPixelScaleTag[0], ifd.ModelPixelScaleTag[1]
	if !(scaleX > 0) || !(scaleY > 0) {
		return nil, errors.ErrUnsupported
	}
	i, j, k := ifd.ModelTiepointTag[0], ifd.ModelTiepointTag[1], ifd.ModelTiepointTag[2]
	if i != 0 || j != 0 || k != 0 {
		return nil, errors.ErrUnsupported
	}
	translateX, translateY := ifd.ModelTiepointTag[3], ifd.ModelTiepointTag[4]

	srid := 0
	rasterType := RasterTypePixelIsArea
	if len(ifd.GeoKeyDirectoryTag) != 0 {
		geoKeys, err := ParseGeoKeys(ifd.GeoKeyDirectoryTag, ifd.GeoDoubleParamsTag, []byte(ifd.GeoASCIIParamsTag))
		if err != nil {
			return nil, err
		}
		switch srid, err = geoKeys.SRID(); {
		case errors.Is(err, errors.ErrUnsupported):
			srid = 0
		case err != nil:
			return nil, err
		}
		rasterType = geoKeys.RasterType()
	}

	noData := float32(math.NaN())
	switch {
	case o.hasNoData:
		noData = float32(o.noData)
	case ifd.GDALNoData != "":
		value, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimRight(ifd.GDALNoData, "\x00")), 64)
		if err != nil {
			return nil, err
		}
		noData = float32(value)
	}

	samples, err := decodeTiles(ifd, data, noData)
	if err != nil {
		return nil, err
	}

	// Nodes are at pixel centers unless pixels are points.
	offset := 0.5
	if rasterType == RasterTypePixelIsPoint {
		offset = 0
	}
	width, length := int(ifd.ImageWidth), int(ifd.ImageLength)
	xs := make([]float64, width)
	for c := range xs {
		xs[c] = translateX + (float64(c)+offset)*scaleX
	}
	ys := make([]float64, length)
	for r := range ys {
		ys[length-1-r] = translateY - (float64(r)+offset)*scaleY
	}

	grid, err := NewGrid(ys, xs, WithSamples(1, samples))
	if err != nil {
		return nil, err
	}
	return &GeoTIFF{
		Grid: grid,
		SRID: srid,
	}, nil
}

// decodeTiles returns the samples of all tiles in ifd in bottom-up row order.
// Samples equal to noData are returned as NaN.
func decodeTiles(ifd *geoTIFFIFD, data []byte, noData float32) ([]float64, error) {
	width, length := int(ifd.ImageWidth), int(ifd.ImageLength)
	tileWidth, tileLength := int(ifd.TileWidth), int(ifd.TileLength)
	tilesAcross := (width + tileWidth - 1) / tileWidth
	tilesDown := (length + tileLength - 1) / tileLength
	tilesPerImage := tilesAcross * tilesDown
	if len(ifd.TileByteCounts) != tilesPerImage || len(ifd.TileOffsets) != tilesPerImage {
		return nil, errors.New("incorrect number of tile byte counts or offsets")
	}
	tileSampleCount := tileWidth * tileLength

	samples := make([]float64, width*length)
	for tileIndex := range tilesPerImage {
		offset, byteCount := ifd.TileOffsets[tileIndex], ifd.TileByteCounts[tileIndex]
		if offset+byteCount > uint64(len(data)) {
			return nil, errShortRead
		}
		tileData, err := decompressTileData(data[offset:offset+byteCount], int(ifd.Compression), 4*tileSampleCount)
		if err != nil {
			return nil, err
		}
		tileSamples := decodeTileData(tileData, tileSampleCount)

		tileC, tileR := tileIndex%tilesAcross, tileIndex/tilesAcross
		for tr := range tileLength {
			r := tileR*tileLength + tr
			if r >= length {
				break
			}
			for tc := range tileWidth {
				c := tileC*tileWidth + tc
				if c >= width {
					break
				}
				sample := tileSamples[tr*tileWidth+tc]
				value := float64(sample)
				if sample == noData {
					value = math.NaN()
				}
				samples[(length-1-r)*width+c] = value
			}
		}
	}
	return samples, nil
}

// decompressTileData returns size bytes of decompressed tile data.
func decompressTileData(compressedData []byte, compression, size int) ([]byte, error) {
	switch compression {
	case compressionNone:
		if len(compressedData) < size {
			return nil, errShortRead
		}
		return compressedData[:size], nil
	case compressionLZW:
		tileData := make([]byte, size)
		r := lzw.NewReader(bytes.NewReader(compressedData), lzw.MSB, 8)
		defer r.Close()
		if _, err := io.ReadFull(r, tileData); err != nil {
			return nil, err
		}
		return tileData, nil
	default:
		return nil, errors.ErrUnsupported
	}
}

// decodeTileData decodes little-endian float32 samples from tileData.
func decodeTileData(tileData []byte, tileSampleCount int) []float32 {
	tileSamples := make([]float32, tileSampleCount)
	for i := range tileSampleCount {
		b := binary.LittleEndian.Uint32(tileData[i*4 : (i+1)*4])
		tileSamples[i] = math.Float32frombits(b)
	}
	return tileSamples
}
