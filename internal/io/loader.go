// Image loading and saving through OpenCV
package io

import (
	"fmt"
	"image"
	"strings"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"savgol-image-filter/internal/algorithms"
)

var supportedFormats = []string{".jpg", ".jpeg", ".png", ".tiff", ".tif", ".bmp", ".pgm"}

// ImageLoader handles image file operations
type ImageLoader struct {
	logger logrus.FieldLogger
}

func NewImageLoader(logger logrus.FieldLogger) *ImageLoader {
	return &ImageLoader{
		logger: logger,
	}
}

// LoadImage reads a color image as a BGR Mat. The caller owns the Mat.
func (il *ImageLoader) LoadImage(filepath string) (gocv.Mat, error) {
	return il.load(filepath, gocv.IMReadColor)
}

// LoadImageGrayscale reads an image and lets OpenCV convert it to 8-bit gray.
func (il *ImageLoader) LoadImageGrayscale(filepath string) (gocv.Mat, error) {
	return il.load(filepath, gocv.IMReadGrayScale)
}

// LoadGray reads an image file straight into an *image.Gray.
func (il *ImageLoader) LoadGray(filepath string) (*image.Gray, error) {
	mat, err := il.LoadImageGrayscale(filepath)
	if err != nil {
		return nil, err
	}
	defer mat.Close()

	return algorithms.ToGrayImage(mat)
}

func (il *ImageLoader) load(filepath string, flags gocv.IMReadFlag) (gocv.Mat, error) {
	il.logger.WithField("filepath", filepath).Debug("Loading image")

	if !IsSupportedImageFormat(filepath) {
		return gocv.NewMat(), fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath)
	}

	mat := gocv.IMRead(filepath, flags)
	if mat.Empty() {
		return gocv.NewMat(), fmt.Errorf("%w: %s", ErrLoadFailed, filepath)
	}

	il.logger.WithFields(logrus.Fields{
		"filepath": filepath,
		"width":    mat.Cols(),
		"height":   mat.Rows(),
		"channels": mat.Channels(),
	}).Info("Image loaded successfully")

	return mat, nil
}

// SaveImage writes a Mat to disk; the format follows the file extension.
func (il *ImageLoader) SaveImage(mat gocv.Mat, filepath string) error {
	il.logger.WithField("filepath", filepath).Debug("Saving image")

	if mat.Empty() {
		return fmt.Errorf("cannot save empty image")
	}

	if !IsSupportedImageFormat(filepath) {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath)
	}

	if ok := gocv.IMWrite(filepath, mat); !ok {
		return fmt.Errorf("%w: %s", ErrSaveFailed, filepath)
	}

	il.logger.WithFields(logrus.Fields{
		"filepath": filepath,
		"width":    mat.Cols(),
		"height":   mat.Rows(),
		"channels": mat.Channels(),
	}).Info("Image saved successfully")

	return nil
}

// SaveGray writes a gray image to disk.
func (il *ImageLoader) SaveGray(img *image.Gray, filepath string) error {
	mat, err := algorithms.FromGrayImage(img)
	if err != nil {
		return err
	}
	defer mat.Close()

	return il.SaveImage(mat, filepath)
}

// IsSupportedImageFormat reports whether the extension of filepath is one
// OpenCV can read and write here.
func IsSupportedImageFormat(filepath string) bool {
	ext := strings.ToLower(getFileExtension(filepath))
	for _, format := range supportedFormats {
		if ext == format {
			return true
		}
	}
	return false
}

func getFileExtension(filepath string) string {
	for i := len(filepath) - 1; i >= 0; i-- {
		if filepath[i] == '.' {
			return filepath[i:]
		}
		if filepath[i] == '/' || filepath[i] == '\\' {
			break
		}
	}
	return ""
}

func (il *ImageLoader) GetSupportedFormats() []string {
	return []string{"JPEG", "PNG", "TIFF", "BMP", "PGM"}
}
