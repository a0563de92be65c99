package metrics

import "errors"

var (
	// ErrUnknownMetric is returned for names missing from the evaluator.
	ErrUnknownMetric = errors.New("metrics: metric not found")

	// ErrDimensionMismatch is returned when the two images differ in size.
	ErrDimensionMismatch = errors.New("metrics: image dimensions mismatch")

	// ErrEmptyImage is returned for nil or zero-area images.
	ErrEmptyImage = errors.New("metrics: empty image")
)
