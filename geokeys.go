package regrid

import (
	"errors"
	"fmt"
)

var errGeoKeyParse = errors.New("geokey directory parse error")

// A GeoKey is a GeoTIFF key.
type GeoKey uint16

// GeoKeys.
const (
	GeoKeyGTModelType  GeoKey = 1024
	GeoKeyGTRasterType GeoKey = 1025
	GeoKeyGTCitation   GeoKey = 1026

	GeoKeyGeodeticCRS            GeoKey = 2048
	GeoKeyGeogCitation           GeoKey = 2049
	GeoKeyGeodeticDatum          GeoKey = 2050
	GeoKeyPrimeMeridian          GeoKey = 2051
	GeoKeyAngularUnits           GeoKey = 2054
	GeoKeyGeogAngularUnitSize    GeoKey = 2055
	GeoKeyEllipsoid              GeoKey = 2056
	GeoKeyEllipsoidSemiMajorAxis GeoKey = 2057
	GeoKeyEllipsoidInvFlattening GeoKey = 2059
	GeoKeyPrimeMeridianLongitude GeoKey = 2061

	GeoKeyProjectedCRS GeoKey = 3072
	GeoKeyPCSCitation  GeoKey = 3073
	GeoKeyProjection   GeoKey = 3074
	GeoKeyProjMethod   GeoKey = 3075
	GeoKeyLinearUnits  GeoKey = 3076

	GeoKeyVertical GeoKey = 4096
)

// Model types.
const (
	ModelTypeProjected  = 1
	ModelTypeGeographic = 2
)

// Raster types.
const (
	RasterTypePixelIsArea  = 1
	RasterTypePixelIsPoint = 2
)

// userDefined is the GeoTIFF value for a user-defined CRS.
const userDefined = 32767

// ParsedGeoKeys are the values in a GeoTIFF key directory.
type ParsedGeoKeys struct {
	Params       map[GeoKey]int
	DoubleParams map[GeoKey]float64
	ASCIIParams  map[GeoKey]string
}

// ParseGeoKeys parses a GeoKeyDirectoryTag and its associated
// GeoDoubleParamsTag and GeoASCIIParamsTag.
func ParseGeoKeys(directory []uint16, doubleParams []float64, asciiParams []byte) (*ParsedGeoKeys, error) {
	if len(directory) < 4 {
		return nil, errGeoKeyParse
	}

	if keyDirectoryVersion := int(directory[0]); keyDirectoryVersion != 1 {
		return nil, errGeoKeyParse
	}
	if keyRevision := int(directory[1]); keyRevision != 1 {
		return nil, errGeoKeyParse
	}
	if minorRevision := int(directory[2]); minorRevision != 0 && minorRevision != 1 {
		return nil, errGeoKeyParse
	}
	numberOfKeys := int(directory[3])
	if len(directory) != 4+4*numberOfKeys {
		return nil, errGeoKeyParse
	}

	parsedGeoKeys := &ParsedGeoKeys{
		Params:       make(map[GeoKey]int),
		DoubleParams: make(map[GeoKey]float64),
		ASCIIParams:  make(map[GeoKey]string),
	}
	for i := range numberOfKeys {
		keyValues := directory[4+4*i : 4+4*(i+1)]
		key := GeoKey(keyValues[0])
		tiffTagLocation := int(keyValues[1])
		numberOfValues := int(keyValues[2])
		valueOffset := int(keyValues[3])
		switch tiffTagLocation {
		case 0:
			if numberOfValues != 1 {
				return nil, errGeoKeyParse
			}
			parsedGeoKeys.Params[key] = valueOffset
		case 34736: // GeoDoubleParamsTag
			if numberOfValues != 1 {
				return nil, errors.ErrUnsupported
			}
			if valueOffset >= len(doubleParams) {
				return nil, errGeoKeyParse
			}
			parsedGeoKeys.DoubleParams[key] = doubleParams[valueOffset]
		case 34737: // GeoASCIIParamsTag
			if valueOffset+numberOfValues > len(asciiParams) {
				return nil, errGeoKeyParse
			}
			parsedGeoKeys.ASCIIParams[key] = string(asciiParams[valueOffset : valueOffset+numberOfValues])
		default:
			return nil, errors.ErrUnsupported
		}
	}
	return parsedGeoKeys, nil
}

// SRID returns the EPSG code of the CRS described by k.
func (k *ParsedGeoKeys) SRID() (int, error) {
	var key GeoKey
	switch modelType := k.Params[GeoKeyGTModelType]; modelType {
	case ModelTypeProjected:
		key = GeoKeyProjectedCRS
	case ModelTypeGeographic:
		key = GeoKeyGeodeticCRS
	default:
		return 0, fmt.Errorf("model type %d: %w", modelType, errors.ErrUnsupported)
	}
	switch srid, ok := k.Params[key]; {
	case !ok:
		return 0, errGeoKeyParse
	case srid == userDefined:
		return 0, fmt.Errorf("user-defined CRS: %w", errors.ErrUnsupported)
	default:
		return srid, nil
	}
}

// RasterType returns the raster type of k, defaulting to
// RasterTypePixelIsArea.
func (k *ParsedGeoKeys) RasterType() int {
	if rasterType, ok := k.Params[GeoKeyGTRasterType]; ok {
		return rasterType
	}
	return RasterTypePixelIsArea
}
