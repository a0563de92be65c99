package io

import "errors"

var (
	ErrUnsupportedFormat = errors.New("io: unsupported image format")
	ErrLoadFailed        = errors.New("io: failed to load image")
	ErrSaveFailed        = errors.New("io: failed to save image")
)
