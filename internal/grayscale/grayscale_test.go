package grayscale

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromImageRGBA(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 3, 2))
	src.Set(0, 0, color.RGBA{255, 255, 255, 255})
	src.Set(1, 0, color.RGBA{0, 0, 0, 255})
	src.Set(2, 1, color.RGBA{128, 128, 128, 255})

	g := FromImage(src)
	require.Equal(t, src.Bounds(), g.Bounds())
	assert.Equal(t, uint8(255), g.GrayAt(0, 0).Y)
	assert.Equal(t, uint8(0), g.GrayAt(1, 0).Y)
	assert.Equal(t, uint8(128), g.GrayAt(2, 1).Y)
}

func TestFromImagePaletted(t *testing.T) {
	pal := color.Palette{color.Black, color.White}
	src := image.NewPaletted(image.Rect(0, 0, 2, 1), pal)
	src.SetColorIndex(1, 0, 1)

	g := FromImage(src)
	assert.Equal(t, []uint8{0, 255}, g.Pix)
}

func TestFromImageGrayIsCopied(t *testing.T) {
	src := Uniform(4, 4, 9)
	g := FromImage(src)
	require.Equal(t, src.Pix, g.Pix)

	g.Pix[0] = 1
	assert.Equal(t, uint8(9), src.Pix[0], "source must not alias result")
}

func TestCloneDropsPadding(t *testing.T) {
	// 3x2 image stored with a stride of 5.
	src := &image.Gray{
		Pix:    []uint8{1, 2, 3, 99, 99, 4, 5, 6, 99, 99},
		Stride: 5,
		Rect:   image.Rect(0, 0, 3, 2),
	}
	g := Clone(src)
	assert.Equal(t, 3, g.Stride)
	assert.Equal(t, []uint8{1, 2, 3, 4, 5, 6}, g.Pix)
}

func TestCloneSubImage(t *testing.T) {
	src := Uniform(6, 6, 0)
	src.SetGray(3, 3, color.Gray{Y: 200})
	sub := src.SubImage(image.Rect(2, 2, 5, 5)).(*image.Gray)

	g := Clone(sub)
	assert.Equal(t, sub.Rect, g.Rect)
	assert.Equal(t, uint8(200), g.GrayAt(3, 3).Y)
	assert.Len(t, g.Pix, 9)
}
