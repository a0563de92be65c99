// Reference smoothers used as baselines for the Savitzky-Golay filter
package algorithms

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// GaussianFilter implements Gaussian blur on the gray channel
type GaussianFilter struct{}

// NewGaussianFilter creates a new Gaussian filter algorithm
func NewGaussianFilter() *GaussianFilter {
	return &GaussianFilter{}
}

func (g *GaussianFilter) Apply(input gocv.Mat, params map[string]interface{}) (gocv.Mat, error) {
	gray, err := ToGrayMat(input)
	if err != nil {
		return gocv.NewMat(), err
	}
	defer gray.Close()

	kernelSize := oddKernelSize(params, 5)
	sigma := 0.0
	if v, ok := params["sigma"].(float64); ok {
		sigma = v
	}

	// sigma 0 lets OpenCV derive it from the kernel size
	output := gocv.NewMat()
	gocv.GaussianBlur(gray, &output, image.Pt(kernelSize, kernelSize), sigma, sigma, gocv.BorderReflect101)
	return output, nil
}

func (g *GaussianFilter) GetDefaultParams() map[string]interface{} {
	return map[string]interface{}{
		"kernel_size": 5.0,
		"sigma":       0.0,
	}
}

func (g *GaussianFilter) GetName() string {
	return "Gaussian Filter"
}

func (g *GaussianFilter) GetDescription() string {
	return "Gaussian blur, a baseline for comparing smoothing strength"
}

func (g *GaussianFilter) Validate(params map[string]interface{}) error {
	if v, ok := intParam(params, "kernel_size"); ok && (v < 3 || v > maxWindowSide) {
		return fmt.Errorf("kernel_size must be between 3 and %d", maxWindowSide)
	}
	if v, ok := params["sigma"].(float64); ok && (v < 0 || v > 10.0) {
		return fmt.Errorf("sigma must be between 0 and 10.0")
	}
	return nil
}

func (g *GaussianFilter) GetParameterInfo() []ParameterInfo {
	return []ParameterInfo{
		{
			Name:        "kernel_size",
			Type:        "int",
			Min:         3.0,
			Max:         float64(maxWindowSide),
			Default:     5.0,
			Description: "Size of the Gaussian kernel, rounded up to odd",
		},
		{
			Name:        "sigma",
			Type:        "float",
			Min:         0.0,
			Max:         10.0,
			Default:     0.0,
			Description: "Standard deviation, 0 derives it from the kernel size",
		},
	}
}

// MedianFilter implements median filter on the gray channel
type MedianFilter struct{}

// NewMedianFilter creates a new median filter algorithm
func NewMedianFilter() *MedianFilter {
	return &MedianFilter{}
}

func (m *MedianFilter) Apply(input gocv.Mat, params map[string]interface{}) (gocv.Mat, error) {
	gray, err := ToGrayMat(input)
	if err != nil {
		return gocv.NewMat(), err
	}
	defer gray.Close()

	output := gocv.NewMat()
	gocv.MedianBlur(gray, &output, oddKernelSize(params, 5))
	return output, nil
}

func (m *MedianFilter) GetDefaultParams() map[string]interface{} {
	return map[string]interface{}{
		"kernel_size": 5.0,
	}
}

func (m *MedianFilter) GetName() string {
	return "Median Filter"
}

func (m *MedianFilter) GetDescription() string {
	return "Median filter, a baseline that removes salt-and-pepper noise"
}

func (m *MedianFilter) Validate(params map[string]interface{}) error {
	if v, ok := intParam(params, "kernel_size"); ok && (v < 3 || v > 15) {
		return fmt.Errorf("kernel_size must be between 3 and 15")
	}
	return nil
}

func (m *MedianFilter) GetParameterInfo() []ParameterInfo {
	return []ParameterInfo{
		{
			Name:        "kernel_size",
			Type:        "int",
			Min:         3.0,
			Max:         15.0,
			Default:     5.0,
			Description: "Size of the median filter kernel, rounded up to odd",
		},
	}
}

// oddKernelSize reads kernel_size and rounds even values up
func oddKernelSize(params map[string]interface{}, fallback int) int {
	size := fallback
	if v, ok := intParam(params, "kernel_size"); ok {
		size = v
	}
	if size%2 == 0 {
		size++
	}
	return size
}
