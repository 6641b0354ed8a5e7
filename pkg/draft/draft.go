// Package draft turns a subject into a grayscale raster.
package draft

import (
	"image"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Draft is the raster of a subject. PixelData holds Width*Height 8-bit
// intensities, row-major.
type Draft struct {
	PixelData []byte
	Width     uint64
	Height    uint64
}

// Face is the bitmap face subjects are drawn with.
var Face = basicfont.Face7x13

// New draws the subject on a black canvas sized to fit it exactly.
func New(subject string) *Draft {
	metrics := Face.Metrics()
	width := font.MeasureString(Face, subject).Ceil()
	height := metrics.Height.Ceil()
	img := image.NewGray(image.Rect(0, 0, width, height))
	d := font.Drawer{
		Dst:  img,
		Src:  image.White,
		Face: Face,
		Dot:  fixed.P(0, metrics.Ascent.Ceil()),
	}
	d.DrawString(subject)

	pixels := make([]byte, width*height)
	for y := 0; y < height; y++ {
		copy(pixels[y*width:(y+1)*width], img.Pix[y*img.Stride:y*img.Stride+width])
	}
	return &Draft{PixelData: pixels, Width: uint64(width), Height: uint64(height)}
}
