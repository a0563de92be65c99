// Package grayscale turns arbitrary images into 8-bit single channel rasters.
package grayscale

import (
	"image"

	"golang.org/x/image/draw"
)

// FromImage returns an 8-bit grayscale copy of src with the same bounds.
// Gray inputs are copied row by row; anything else (RGBA, YCbCr, paletted,
// 16-bit) is converted with the standard luma weights of color.GrayModel.
func FromImage(src image.Image) *image.Gray {
	if g, ok := src.(*image.Gray); ok {
		return Clone(g)
	}
	dst := image.NewGray(src.Bounds())
	draw.Draw(dst, dst.Rect, src, src.Bounds().Min, draw.Src)
	return dst
}

// Clone copies src into a new image whose stride equals its width.
func Clone(src *image.Gray) *image.Gray {
	dst := image.NewGray(src.Rect)
	w := src.Rect.Dx()
	for y := src.Rect.Min.Y; y < src.Rect.Max.Y; y++ {
		so := src.PixOffset(src.Rect.Min.X, y)
		do := dst.PixOffset(dst.Rect.Min.X, y)
		copy(dst.Pix[do:do+w], src.Pix[so:so+w])
	}
	return dst
}

// Uniform returns a w x h image with every pixel set to v.
func Uniform(w, h int, v uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = v
	}
	return img
}
