package savgol

import "errors"

// Sentinel errors of the savgol package. Match them with errors.Is.
var (
	// ErrInvalidConfig wraps every configuration failure, so callers can
	// reject bad parameters without caring which check tripped.
	ErrInvalidConfig = errors.New("savgol: invalid configuration")

	// ErrInvalidWindow is returned for a window with a non-positive side.
	ErrInvalidWindow = errors.New("savgol: invalid window size")

	// ErrNegativeOrder is returned for a polynomial order below zero.
	ErrNegativeOrder = errors.New("savgol: negative polynomial order")

	// ErrOrderTooHigh is returned when the regression would be under-determined,
	// i.e. (order+1)^2 exceeds the number of pixels in the window.
	ErrOrderTooHigh = errors.New("savgol: order is too big for that window")

	// ErrSingularFit indicates a zero pivot in the triangular factor.
	// It cannot happen for a validated window and signals an internal defect.
	ErrSingularFit = errors.New("savgol: degenerate least-squares fit")

	// ErrOriginOutOfRange is returned when a kernel origin lies outside the window.
	ErrOriginOutOfRange = errors.New("savgol: origin outside of window")
)
