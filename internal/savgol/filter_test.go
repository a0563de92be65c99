package savgol

import (
	"bytes"
	"image"
	"image/color"
	"math/rand"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"savgol-image-filter/internal/grayscale"
)

func noisyImage(w, h int, seed int64) *image.Gray {
	rng := rand.New(rand.NewSource(seed))
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = uint8(rng.Intn(256))
	}
	return img
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}

func TestFlatImageStaysFlat(t *testing.T) {
	windows := []Window{
		{Width: 3, Height: 3, Order: 0},
		{Width: 3, Height: 3, Order: 1},
		{Width: 5, Height: 5, Order: 2},
		{Width: 7, Height: 4, Order: 1},
		{Width: 3, Height: 3, Order: 2},
	}
	for _, w := range windows {
		for _, v := range []uint8{0, 37, 128, 255} {
			src := grayscale.Uniform(13, 11, v)
			f, err := New(w)
			require.NoError(t, err)

			dst, err := f.ApplyGray(src)
			require.NoError(t, err)
			for i, p := range dst.Pix {
				require.LessOrEqual(t, absDiff(p, v), 1, "window %s value %d pixel %d got %d", w, v, i, p)
			}
		}
	}
}

func TestIsolatedPixelSpreadsEvenly(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 10, 10))
	src.SetGray(5, 5, color.Gray{Y: 255})

	dst, err := Smooth(src, image.Pt(3, 3), 0)
	require.NoError(t, err)

	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			got := dst.GrayAt(x, y).Y
			if x >= 4 && x <= 6 && y >= 4 && y <= 6 {
				assert.Equal(t, uint8(255/9), got, "(%d,%d)", x, y)
			} else {
				assert.Equal(t, uint8(0), got, "(%d,%d)", x, y)
			}
		}
	}
}

func TestRejectsOrderTooHigh(t *testing.T) {
	src := grayscale.Uniform(10, 10, 1)
	dst, err := Smooth(src, image.Pt(3, 3), 3)
	assert.Nil(t, dst)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.ErrorIs(t, err, ErrOrderTooHigh)

	_, err = Smooth(src, image.Pt(0, 3), 0)
	assert.ErrorIs(t, err, ErrInvalidWindow)
}

func TestWindowLargerThanImage(t *testing.T) {
	src := noisyImage(5, 5, 7)
	dst, err := Smooth(src, image.Pt(7, 7), 1)
	require.NoError(t, err)
	assert.Equal(t, src.Pix, dst.Pix)

	dst.Pix[0]++
	assert.NotEqual(t, src.Pix[0], dst.Pix[0], "result must not alias the source")

	dst, err = Smooth(src, image.Pt(3, 6), 1)
	require.NoError(t, err)
	assert.Equal(t, src.Pix, dst.Pix)
}

func TestWindowEqualToImage(t *testing.T) {
	src := noisyImage(5, 5, 3)
	dst, err := Smooth(src, image.Pt(5, 5), 1)
	require.NoError(t, err)
	assert.Equal(t, src.Rect, dst.Rect)
	assert.NotEqual(t, src.Pix, dst.Pix)
}

func TestInteriorReusesCenterKernel(t *testing.T) {
	w := Window{Width: 5, Height: 5, Order: 2}
	src := noisyImage(14, 12, 11)

	f, err := New(w)
	require.NoError(t, err)
	dst, err := f.ApplyGray(src)
	require.NoError(t, err)

	for y := 2; y < 12-2; y++ {
		for x := 2; x < 14-2; x++ {
			k, err := f.Builder().KernelFor(w.Center())
			require.NoError(t, err)
			want := k.Convolve(src, image.Pt(x-2, y-2))
			require.Equal(t, want, dst.GrayAt(x, y).Y, "(%d,%d)", x, y)
		}
	}
}

func TestBorderPixelsUseShiftedOrigin(t *testing.T) {
	w := Window{Width: 5, Height: 3, Order: 1}
	src := noisyImage(9, 6, 5)

	f, err := New(w)
	require.NoError(t, err)
	dst, err := f.ApplyGray(src)
	require.NoError(t, err)

	// Right edge pixel (8, 2): window clamped to x in [4, 9), origin (4, 1).
	k, err := f.Builder().KernelFor(image.Pt(4, 1))
	require.NoError(t, err)
	assert.Equal(t, k.Convolve(src, image.Pt(4, 1)), dst.GrayAt(8, 2).Y)

	// Top-left corner pixel (0, 0): window at (0, 0), origin (0, 0).
	k, err = f.Builder().KernelFor(image.Pt(0, 0))
	require.NoError(t, err)
	assert.Equal(t, k.Convolve(src, image.Pt(0, 0)), dst.GrayAt(0, 0).Y)

	// Bottom-right corner pixel (7, 5): window at (4, 3), origin (3, 2).
	k, err = f.Builder().KernelFor(image.Pt(3, 2))
	require.NoError(t, err)
	assert.Equal(t, k.Convolve(src, image.Pt(4, 3)), dst.GrayAt(7, 5).Y)
}

func TestTopRightCornerCountsOriginDown(t *testing.T) {
	w := Window{Width: 5, Height: 5, Order: 2}
	src := noisyImage(12, 12, 3)

	f, err := New(w)
	require.NoError(t, err)
	dst, err := f.ApplyGray(src)
	require.NoError(t, err)

	// The window sits at (7, 0) for the whole corner; the origin column
	// starts at 4 and decreases to the right.
	for y := 0; y < 2; y++ {
		for x, ox := 10, 4; x < 12; x, ox = x+1, ox-1 {
			k, err := f.Builder().KernelFor(image.Pt(ox, y))
			require.NoError(t, err)
			assert.Equal(t, k.Convolve(src, image.Pt(7, 0)), dst.GrayAt(x, y).Y, "(%d,%d)", x, y)
		}
	}
}

func TestParallelMatchesSequential(t *testing.T) {
	w := Window{Width: 5, Height: 7, Order: 2}
	src := noisyImage(37, 23, 42)

	seq, err := New(w)
	require.NoError(t, err)
	par, err := New(w, WithWorkers(4))
	require.NoError(t, err)

	want, err := seq.ApplyGray(src)
	require.NoError(t, err)
	got, err := par.ApplyGray(src)
	require.NoError(t, err)
	assert.Equal(t, want.Pix, got.Pix)
}

// With one column right of the origin the top-right corner's descending
// origin coincides with the clamped-window origin, so the filter is
// left-right symmetric.
func TestMirroredInputGivesMirroredOutputForNarrowWindow(t *testing.T) {
	const width, height = 17, 12
	src := noisyImage(width, height, 99)
	mirror := image.NewGray(src.Rect)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			mirror.SetGray(width-1-x, y, src.GrayAt(x, y))
		}
	}

	f, err := New(Window{Width: 3, Height: 5, Order: 1})
	require.NoError(t, err)
	a, err := f.ApplyGray(src)
	require.NoError(t, err)
	b, err := f.ApplyGray(mirror)
	require.NoError(t, err)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			d := absDiff(a.GrayAt(x, y).Y, b.GrayAt(width-1-x, y).Y)
			require.LessOrEqual(t, d, 1, "(%d,%d)", x, y)
		}
	}
}

func TestStrideAndSubImage(t *testing.T) {
	base := noisyImage(20, 16, 8)
	sub := base.SubImage(image.Rect(3, 2, 17, 13)).(*image.Gray)
	require.NotEqual(t, sub.Rect.Dx(), sub.Stride)

	f, err := New(Window{Width: 3, Height: 5, Order: 1})
	require.NoError(t, err)

	got, err := f.ApplyGray(sub)
	require.NoError(t, err)
	want, err := f.ApplyGray(grayscale.Clone(sub))
	require.NoError(t, err)

	assert.Equal(t, sub.Rect, got.Rect)
	assert.Equal(t, want.Pix, got.Pix)
}

func TestApplyConvertsColorImages(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 6, 6))
	for i := range src.Pix {
		src.Pix[i] = 200
	}

	f, err := New(Window{Width: 3, Height: 3, Order: 1})
	require.NoError(t, err)
	dst, err := f.Apply(src)
	require.NoError(t, err)
	for _, p := range dst.Pix {
		assert.LessOrEqual(t, absDiff(p, 200), 1)
	}

	_, err = f.Apply(nil)
	assert.Error(t, err)
}

func TestSmoothingReducesNoise(t *testing.T) {
	src := noisyImage(32, 32, 1)
	dst, err := Smooth(src, image.Pt(5, 5), 1)
	require.NoError(t, err)

	variance := func(img *image.Gray) float64 {
		var sum, sq float64
		for _, p := range img.Pix {
			sum += float64(p)
			sq += float64(p) * float64(p)
		}
		n := float64(len(img.Pix))
		mean := sum / n
		return sq/n - mean*mean
	}
	assert.Less(t, variance(dst), variance(src)/2)
}

func TestFilterLogsAtDebugLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetLevel(logrus.DebugLevel)

	f, err := New(Window{Width: 3, Height: 3, Order: 1}, WithLogger(logger))
	require.NoError(t, err)
	_, err = f.ApplyGray(grayscale.Uniform(8, 8, 1))
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "Factorized regression equations")
	assert.Contains(t, buf.String(), "Savitzky-Golay filter applied")
}
