// Core image data structure with thread-safe operations
package core

import (
	"fmt"
	"image"
	"sync"

	"savgol-image-filter/internal/grayscale"
)

// ImageData manages the grayscale source and the latest filtered result
type ImageData struct {
	mu        sync.RWMutex
	original  *image.Gray
	processed *image.Gray
	filepath  string
	metadata  ImageMetadata
}

// ImageMetadata contains image information
type ImageMetadata struct {
	Width  int
	Height int
	Format string
}

// NewImageData creates a new thread-safe image data container
func NewImageData() *ImageData {
	return &ImageData{}
}

// SetOriginal stores a grayscale copy of img as the new source
func (img *ImageData) SetOriginal(src image.Image, filepath string) error {
	if src == nil {
		return fmt.Errorf("cannot set empty image")
	}

	bounds := src.Bounds()
	if err := ValidateSize(bounds.Dx(), bounds.Dy()); err != nil {
		return err
	}

	gray := grayscale.FromImage(src)

	img.mu.Lock()
	defer img.mu.Unlock()

	img.original = gray
	img.processed = grayscale.Clone(gray) // Start with original as processed
	img.filepath = filepath
	img.metadata = ImageMetadata{
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
		Format: getFormatFromPath(filepath),
	}
	return nil
}

// SetProcessed stores a filtered result; it must match the source size
func (img *ImageData) SetProcessed(processed *image.Gray) error {
	img.mu.Lock()
	defer img.mu.Unlock()

	if img.original == nil {
		return fmt.Errorf("no original image loaded")
	}
	if processed == nil {
		return fmt.Errorf("cannot set empty processed image")
	}
	if processed.Rect.Size() != img.original.Rect.Size() {
		return fmt.Errorf("processed image is %v, original is %v",
			processed.Rect.Size(), img.original.Rect.Size())
	}

	img.processed = processed
	return nil
}

// GetOriginal returns the source image. It is shared, callers must not modify it.
func (img *ImageData) GetOriginal() *image.Gray {
	img.mu.RLock()
	defer img.mu.RUnlock()
	return img.original
}

// GetProcessed returns a copy of the processed image
func (img *ImageData) GetProcessed() *image.Gray {
	img.mu.RLock()
	defer img.mu.RUnlock()

	if img.processed == nil {
		return nil
	}
	return grayscale.Clone(img.processed)
}

// HasImage returns true if an image is loaded
func (img *ImageData) HasImage() bool {
	img.mu.RLock()
	defer img.mu.RUnlock()
	return img.original != nil
}

// GetMetadata returns image metadata
func (img *ImageData) GetMetadata() ImageMetadata {
	img.mu.RLock()
	defer img.mu.RUnlock()
	return img.metadata
}

// GetFilepath returns the current file path
func (img *ImageData) GetFilepath() string {
	img.mu.RLock()
	defer img.mu.RUnlock()
	return img.filepath
}

// Clear clears all image data
func (img *ImageData) Clear() {
	img.mu.Lock()
	defer img.mu.Unlock()

	img.original = nil
	img.processed = nil
	img.filepath = ""
	img.metadata = ImageMetadata{}
}

// ResetToOriginal resets processed image to original
func (img *ImageData) ResetToOriginal() error {
	img.mu.Lock()
	defer img.mu.Unlock()

	if img.original == nil {
		return fmt.Errorf("no original image available")
	}

	img.processed = grayscale.Clone(img.original)
	return nil
}

// getFormatFromPath extracts image format from file path
func getFormatFromPath(filepath string) string {
	if filepath == "" {
		return "unknown"
	}

	for i := len(filepath) - 1; i >= 0; i-- {
		if filepath[i] == '.' {
			return filepath[i+1:]
		}
		if filepath[i] == '/' || filepath[i] == '\\' {
			break
		}
	}
	return "unknown"
}

// ValidateSize checks image dimensions for basic requirements
func ValidateSize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid dimensions: %dx%d", width, height)
	}

	// Check for reasonable size limits (prevent memory issues)
	const maxDimension = 16384
	if width > maxDimension || height > maxDimension {
		return fmt.Errorf("image too large: %dx%d (max: %d)", width, height, maxDimension)
	}

	return nil
}
