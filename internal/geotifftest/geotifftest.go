// Package geotifftest writes small GeoTIFFs for tests.
package geotifftest

import (
	"encoding/binary"
	"math"
)

// NoData is the GDAL no data value written to every GeoTIFF.
const NoData = -9999

// A GeoTIFF describes a single tile, uncompressed GeoTIFF.
type GeoTIFF struct {
	Width         int
	Length        int
	BitsPerSample uint16
	Scale         [2]float64
	Tiepoint      [2]float64
	GeoKeys       []uint16    // Omitted if nil.
	Rows          [][]float32 // Top-down.
}

// Encode returns t encoded as a little-endian TIFF with one 16x16 tile.
func (t GeoTIFF) Encode() []byte {
	const tileSize = 16
	le := binary.LittleEndian

	tileData := make([]byte, 4*tileSize*tileSize)
	for r, row := range t.Rows {
		for c, sample := range row {
			le.PutUint32(tileData[4*(r*tileSize+c):], math.Float32bits(sample))
		}
	}

	type entry struct {
		tag   uint16
		typ   uint16
		count uint32
		value []byte
	}
	short := func(tag uint16, values ...uint16) entry {
		value := make([]byte, 2*len(values))
		for i, v := range values {
			le.PutUint16(value[2*i:], v)
		}
		return entry{tag: tag, typ: 3, count: uint32(len(values)), value: value}
	}
	long := func(tag uint16, values ...uint32) entry {
		value := make([]byte, 4*len(values))
		for i, v := range values {
			le.PutUint32(value[4*i:], v)
		}
		return entry{tag: tag, typ: 4, count: uint32(len(values)), value: value}
	}
	double := func(tag uint16, values ...float64) entry {
		value := make([]byte, 8*len(values))
		for i, v := range values {
			le.PutUint64(value[8*i:], math.Float64bits(v))
		}
		return entry{tag: tag, typ: 12, count: uint32(len(values)), value: value}
	}
	ascii := func(tag uint16, s string) entry {
		value := append([]byte(s), 0)
		return entry{tag: tag, typ: 2, count: uint32(len(value)), value: value}
	}

	const tileOffset = 8
	entries := []entry{
		short(256, uint16(t.Width)),
		short(257, uint16(t.Length)),
		short(258, t.BitsPerSample),
		short(259, 1),
		short(262, 1),
		short(277, 1),
		short(284, 1),
		short(317, 1),
		short(322, tileSize),
		short(323, tileSize),
		long(324, tileOffset),
		long(325, uint32(len(tileData))),
		short(339, 3),
		double(33550, t.Scale[0], t.Scale[1], 0),
		double(33922, 0, 0, 0, t.Tiepoint[0], t.Tiepoint[1], 0),
	}
	if t.GeoKeys != nil {
		entries = append(entries, short(34735, t.GeoKeys...))
	}
	entries = append(entries, ascii(42113, "-9999"))

	ifdOffset := tileOffset + len(tileData)
	extraOffset := ifdOffset + 2 + 12*len(entries) + 4

	data := make([]byte, 8, extraOffset)
	copy(data, "II")
	le.PutUint16(data[2:], 42)
	le.PutUint32(data[4:], uint32(ifdOffset))
	data = append(data, tileData...)

	var extra []byte
	data = le.AppendUint16(data, uint16(len(entries)))
	for _, e := range entries {
		data = le.AppendUint16(data, e.tag)
		data = le.AppendUint16(data, e.typ)
		data = le.AppendUint32(data, e.count)
		if len(e.value) <= 4 {
			value := make([]byte, 4)
			copy(value, e.value)
			data = append(data, value...)
		} else {
			data = le.AppendUint32(data, uint32(extraOffset+len(extra)))
			extra = append(extra, e.value...)
			if len(extra)%2 == 1 {
				extra = append(extra, 0)
			}
		}
	}
	data = le.AppendUint32(data, 0)
	return append(data, extra...)
}
