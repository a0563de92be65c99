package algorithms

import "errors"

var (
	// ErrUnknownAlgorithm is returned for names missing from the registry.
	ErrUnknownAlgorithm = errors.New("algorithms: algorithm not found")

	// ErrEmptyInput is returned when an algorithm receives an empty Mat.
	ErrEmptyInput = errors.New("algorithms: input image is empty")

	// ErrUnsupportedChannels is returned for Mats that are not 1, 3 or 4 channel 8-bit.
	ErrUnsupportedChannels = errors.New("algorithms: unsupported channel layout")
)
