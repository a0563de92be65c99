package algorithms

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"savgol-image-filter/internal/grayscale"
)

// Grayscale converts BGR, BGRA or gray Mats to a single 8-bit channel
type Grayscale struct{}

func NewGrayscale() *Grayscale {
	return &Grayscale{}
}

func (g *Grayscale) Apply(input gocv.Mat, params map[string]interface{}) (gocv.Mat, error) {
	return ToGrayMat(input)
}

func (g *Grayscale) GetDefaultParams() map[string]interface{} {
	return map[string]interface{}{}
}

func (g *Grayscale) GetName() string {
	return "Grayscale"
}

func (g *Grayscale) GetDescription() string {
	return "Converts color images to 8-bit grayscale"
}

func (g *Grayscale) Validate(params map[string]interface{}) error {
	return nil
}

func (g *Grayscale) GetParameterInfo() []ParameterInfo {
	return nil
}

// ToGrayMat returns a new single channel 8-bit copy of input. The caller
// owns the result and must Close it.
func ToGrayMat(input gocv.Mat) (gocv.Mat, error) {
	if input.Empty() {
		return gocv.NewMat(), ErrEmptyInput
	}

	gray := gocv.NewMat()
	switch input.Type() {
	case gocv.MatTypeCV8UC1:
		input.CopyTo(&gray)
	case gocv.MatTypeCV8UC3:
		gocv.CvtColor(input, &gray, gocv.ColorBGRToGray)
	case gocv.MatTypeCV8UC4:
		gocv.CvtColor(input, &gray, gocv.ColorBGRAToGray)
	default:
		gray.Close()
		return gocv.NewMat(), fmt.Errorf("%w: %d channels, type %v", ErrUnsupportedChannels, input.Channels(), input.Type())
	}
	return gray, nil
}

// ToGrayImage converts input to an *image.Gray the savgol filter can read.
func ToGrayImage(input gocv.Mat) (*image.Gray, error) {
	gray, err := ToGrayMat(input)
	if err != nil {
		return nil, err
	}
	defer gray.Close()

	img, err := gray.ToImage()
	if err != nil {
		return nil, fmt.Errorf("failed to convert Mat to image: %w", err)
	}
	if g, ok := img.(*image.Gray); ok {
		return g, nil
	}
	return grayscale.FromImage(img), nil
}

// FromGrayImage wraps a gray image into a new CV_8UC1 Mat.
func FromGrayImage(img *image.Gray) (gocv.Mat, error) {
	if img.Rect.Min != (image.Point{}) || img.Stride != img.Rect.Dx() {
		img = normalize(img)
	}
	mat, err := gocv.ImageGrayToMatGray(img)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("failed to convert image to Mat: %w", err)
	}
	return mat, nil
}

// normalize moves img to the origin with a tight stride.
func normalize(img *image.Gray) *image.Gray {
	c := grayscale.Clone(img)
	c.Rect = c.Rect.Sub(c.Rect.Min)
	return c
}
