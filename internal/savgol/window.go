// Package savgol implements a two-dimensional Savitzky-Golay smoothing filter
// for 8-bit grayscale images.
//
// Every output pixel is the value, at the pixel's own position, of a polynomial
// surface fitted by least squares to the pixel's neighborhood. The fit is
// solved once per window with a Givens QR factorization; the logged rotations
// let the convolution kernel be re-derived cheaply for any origin inside the
// window, which is how borders are handled: the window keeps its full size and
// the origin moves toward the image edge.
package savgol

import (
	"fmt"
	"image"
)

// Window describes the regression neighborhood and the polynomial order.
type Window struct {
	Width  int
	Height int
	Order  int
}

// NewWindow builds a Window from a size and an order.
func NewWindow(size image.Point, order int) Window {
	return Window{Width: size.X, Height: size.Y, Order: order}
}

// Size returns the window dimensions.
func (w Window) Size() image.Point {
	return image.Pt(w.Width, w.Height)
}

// NumVars is the number of polynomial coefficients, (order+1)^2.
func (w Window) NumVars() int {
	return (w.Order + 1) * (w.Order + 1)
}

// NumDataPoints is the number of pixels covered by the window.
func (w Window) NumDataPoints() int {
	return w.Width * w.Height
}

// Center is the origin used for pixels whose window fits inside the image.
func (w Window) Center() image.Point {
	return image.Pt(w.Width/2, w.Height/2)
}

// Validate checks that the window is non-empty and that the regression is
// not under-determined.
func (w Window) Validate() error {
	if w.Width <= 0 || w.Height <= 0 {
		return fmt.Errorf("%w: %w: %dx%d", ErrInvalidConfig, ErrInvalidWindow, w.Width, w.Height)
	}
	if w.Order < 0 {
		return fmt.Errorf("%w: %w: %d", ErrInvalidConfig, ErrNegativeOrder, w.Order)
	}
	if w.NumVars() > w.NumDataPoints() {
		return fmt.Errorf("%w: %w: order %d needs %d samples, %dx%d window has %d",
			ErrInvalidConfig, ErrOrderTooHigh, w.Order, w.NumVars(), w.Width, w.Height, w.NumDataPoints())
	}
	return nil
}

func (w Window) String() string {
	return fmt.Sprintf("%dx%d/order=%d", w.Width, w.Height, w.Order)
}
