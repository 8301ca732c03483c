// Package sample reads single-pixel luminance values at marker sample sites.
package sample

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/laundrywatch/laundrywatch/internal/marker"
)

// ErrOutOfBounds is returned when a sample site maps to a pixel outside the
// image. Callers treat it as a per-marker failure, not a fatal one.
var ErrOutOfBounds = errors.New("sample point outside image bounds")

// Luminance samples the pixel nearest to the given normalized position and
// returns its relative luminance in [0,1].
//
// The weighting 0.2126 R + 0.7152 G + 0.0722 B is applied to the
// gamma-encoded channel values directly, not to linearized ones. The sample
// size is ignored: sampling is a single pixel, no area averaging.
func Luminance(img image.Image, pt marker.SamplePoint) (float32, error) {
	bounds := img.Bounds()
	x := int(math.Round(pt.Pos.X * float64(bounds.Dx())))
	y := int(math.Round(pt.Pos.Y * float64(bounds.Dy())))

	if x < 0 || x >= bounds.Dx() || y < 0 || y >= bounds.Dy() {
		return 0, fmt.Errorf("%w: pixel (%d,%d) in %dx%d image", ErrOutOfBounds, x, y, bounds.Dx(), bounds.Dy())
	}

	// RGBA returns 16-bit premultiplied channels; shift down to 8 bit.
	r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
	rf := float32(r>>8) / 255
	gf := float32(g>>8) / 255
	bf := float32(b>>8) / 255

	return 0.2126*rf + 0.7152*gf + 0.0722*bf, nil
}

// Collect samples every point in order and returns the luminance sequence.
// Index i of the result corresponds to points[i].
func Collect(img image.Image, points []marker.SamplePoint) ([]float32, error) {
	samples := make([]float32, 0, len(points))
	for _, pt := range points {
		l, err := Luminance(img, pt)
		if err != nil {
			return nil, err
		}
		samples = append(samples, l)
	}
	return samples, nil
}
