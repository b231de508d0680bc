package regrid

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
)

// FromImage returns a new Grid with the pixels of img as values. The
// coordinates are the pixel indexes 0..height-1 and 0..width-1. Gray images
// have one channel, opaque images have three (RGB), and all others have four
// (non-premultiplied RGBA).
func FromImage(img image.Image) (*Grid, error) {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width == 0 || height == 0 {
		return nil, &ShapeError{Rows: height, Cols: width, Reason: "empty image"}
	}

	var channels int
	var samples []float64
	switch img := img.(type) {
	case *image.Gray:
		channels = 1
		samples = make([]float64, 0, width*height)
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				samples = append(samples, float64(img.GrayAt(x, y).Y))
			}
		}
	case *image.Gray16:
		channels = 1
		samples = make([]float64, 0, width*height)
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				samples = append(samples, float64(img.Gray16At(x, y).Y>>8))
			}
		}
	default:
		channels = 4
		if opaque, ok := img.(interface{ Opaque() bool }); ok && opaque.Opaque() {
			channels = 3
		}
		nrgba := imaging.Clone(img)
		samples = make([]float64, 0, width*height*channels)
		for i := 0; i < len(nrgba.Pix); i += 4 {
			for c := range channels {
				samples = append(samples, float64(nrgba.Pix[i+c]))
			}
		}
	}

	return &Grid{
		ys:       indexCoords(height),
		xs:       indexCoords(width),
		channels: channels,
		samples:  samples,
	}, nil
}

// Pixels returns g's samples converted to 8-bit values. Samples are clipped to
// the range 0..255 and their fractional parts are truncated. NaNs become
// zero.
func (g *Grid) Pixels() ([]uint8, error) {
	if g.samples == nil {
		return nil, ErrNoValues
	}
	pixels := make([]uint8, len(g.samples))
	for i, sample := range g.samples {
		pixels[i] = toUint8(sample)
	}
	return pixels, nil
}

// ToImage returns an image with g's values as pixels. Grids with one channel
// become gray images, two channels are gray and alpha, and three and four
// channels are RGB and RGBA.
func (g *Grid) ToImage() (image.Image, error) {
	pixels, err := g.Pixels()
	if err != nil {
		return nil, err
	}
	rows, cols := g.Shape()
	rect := image.Rect(0, 0, cols, rows)
	switch g.channels {
	case 1:
		img := image.NewGray(rect)
		copy(img.Pix, pixels)
		return img, nil
	case 2, 3, 4:
		img := image.NewNRGBA(rect)
		for i := range rows * cols {
			node := pixels[i*g.channels : (i+1)*g.channels]
			var c color.NRGBA
			switch g.channels {
			case 2:
				c = color.NRGBA{R: node[0], G: node[0], B: node[0], A: node[1]}
			case 3:
				c = color.NRGBA{R: node[0], G: node[1], B: node[2], A: 0xff}
			case 4:
				c = color.NRGBA{R: node[0], G: node[1], B: node[2], A: node[3]}
			}
			img.Pix[4*i+0] = c.R
			img.Pix[4*i+1] = c.G
			img.Pix[4*i+2] = c.B
			img.Pix[4*i+3] = c.A
		}
		return img, nil
	default:
		return nil, fmt.Errorf("%d channels: %w", g.channels, errors.ErrUnsupported)
	}
}

func indexCoords(n int) []float64 {
	coords := make([]float64, n)
	for i := range coords {
		coords[i] = float64(i)
	}
	return coords
}

func toUint8(sample float64) uint8 {
	switch {
	case math.IsNaN(sample), sample <= 0:
		return 0
	case sample >= math.MaxUint8:
		return math.MaxUint8
	default:
		return uint8(sample)
	}
}
