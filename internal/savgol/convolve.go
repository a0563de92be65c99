package savgol

import (
	"fmt"
	"image"
)

// Kernel is the convolution kernel of one (Window, origin) pair. Weights are
// stored row by row, the same order the regression equations use; Convolve
// depends on that order.
type Kernel struct {
	width  int
	height int
	origin image.Point

	weights []float64

	// Scratch space for KernelBuilder.Recalc.
	dp     []float64
	coeffs []float64
}

// Origin returns the origin the kernel was last computed for.
func (k *Kernel) Origin() image.Point {
	return k.origin
}

// Size returns the kernel dimensions.
func (k *Kernel) Size() image.Point {
	return image.Pt(k.width, k.height)
}

// Weights returns a copy of the kernel weights.
func (k *Kernel) Weights() []float64 {
	out := make([]float64, len(k.weights))
	copy(out, k.weights)
	return out
}

// At returns the weight of the window pixel (x, y), 0-based.
func (k *Kernel) At(x, y int) float64 {
	return k.weights[y*k.width+x]
}

// Sum returns the sum of all weights. It is 1 for any kernel that preserves
// constant images.
func (k *Kernel) Sum() float64 {
	var sum float64
	for _, w := range k.weights {
		sum += w
	}
	return sum
}

// Convolve returns the weighted sum of the neighborhood of src whose top-left
// pixel is topLeft. The sum is truncated toward zero and then clamped to
// [0, 255]. The neighborhood must lie inside src.Rect.
func (k *Kernel) Convolve(src *image.Gray, topLeft image.Point) uint8 {
	nb := image.Rectangle{Min: topLeft, Max: topLeft.Add(image.Pt(k.width, k.height))}
	if !nb.In(src.Rect) {
		panic(fmt.Sprintf("savgol: neighborhood %v outside of image %v", nb, src.Rect))
	}

	var sum float64
	ki := 0
	for y := nb.Min.Y; y < nb.Max.Y; y++ {
		off := src.PixOffset(nb.Min.X, y)
		row := src.Pix[off : off+k.width]
		for _, p := range row {
			sum += float64(p) * k.weights[ki]
			ki++
		}
	}
	return clampToByte(int(sum))
}

func clampToByte(v int) uint8 {
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	}
	return uint8(v)
}
