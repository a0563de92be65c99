// Savitzky-Golay smoothing exposed through the algorithm registry
package algorithms

import (
	"fmt"

	"gocv.io/x/gocv"

	"savgol-image-filter/internal/savgol"
)

const (
	maxWindowSide = 51
	maxOrder      = 6
)

// SavitzkyGolay implements 2D Savitzky-Golay smoothing
type SavitzkyGolay struct{}

// NewSavitzkyGolay creates a new Savitzky-Golay algorithm
func NewSavitzkyGolay() *SavitzkyGolay {
	return &SavitzkyGolay{}
}

func (s *SavitzkyGolay) Apply(input gocv.Mat, params map[string]interface{}) (gocv.Mat, error) {
	if input.Empty() {
		return gocv.NewMat(), ErrEmptyInput
	}

	window, workers := s.window(params)
	filter, err := savgol.New(window, savgol.WithWorkers(workers))
	if err != nil {
		return gocv.NewMat(), err
	}

	gray, err := ToGrayImage(input)
	if err != nil {
		return gocv.NewMat(), err
	}

	smoothed, err := filter.ApplyGray(gray)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("savitzky-golay failed: %w", err)
	}

	return FromGrayImage(smoothed)
}

// window reads the filter parameters, falling back to the defaults
func (s *SavitzkyGolay) window(params map[string]interface{}) (savgol.Window, int) {
	w := savgol.Window{Width: 5, Height: 5, Order: 2}
	workers := 1

	if v, ok := intParam(params, "window_width"); ok {
		w.Width = v
	}
	if v, ok := intParam(params, "window_height"); ok {
		w.Height = v
	}
	if v, ok := intParam(params, "order"); ok {
		w.Order = v
	}
	if v, ok := intParam(params, "workers"); ok {
		workers = v
	}
	return w, workers
}

func (s *SavitzkyGolay) GetDefaultParams() map[string]interface{} {
	return map[string]interface{}{
		"window_width":  5.0,
		"window_height": 5.0,
		"order":         2.0,
		"workers":       1.0,
	}
}

func (s *SavitzkyGolay) GetName() string {
	return "Savitzky-Golay Filter"
}

func (s *SavitzkyGolay) GetDescription() string {
	return "Local polynomial least-squares smoothing that preserves gradients"
}

func (s *SavitzkyGolay) Validate(params map[string]interface{}) error {
	window, workers := s.window(params)
	if err := window.Validate(); err != nil {
		return err
	}
	if window.Width > maxWindowSide || window.Height > maxWindowSide {
		return fmt.Errorf("window must be at most %dx%d, got %dx%d",
			maxWindowSide, maxWindowSide, window.Width, window.Height)
	}
	if window.Order > maxOrder {
		return fmt.Errorf("order must be at most %d, got %d", maxOrder, window.Order)
	}
	if workers < 1 || workers > 64 {
		return fmt.Errorf("workers must be between 1 and 64")
	}
	return nil
}

func (s *SavitzkyGolay) GetParameterInfo() []ParameterInfo {
	return []ParameterInfo{
		{
			Name:        "window_width",
			Type:        "int",
			Min:         1.0,
			Max:         float64(maxWindowSide),
			Default:     5.0,
			Description: "Width of the regression window",
		},
		{
			Name:        "window_height",
			Type:        "int",
			Min:         1.0,
			Max:         float64(maxWindowSide),
			Default:     5.0,
			Description: "Height of the regression window",
		},
		{
			Name:        "order",
			Type:        "int",
			Min:         0.0,
			Max:         float64(maxOrder),
			Default:     2.0,
			Description: "Polynomial order; (order+1)^2 must not exceed the window area",
		},
		{
			Name:        "workers",
			Type:        "int",
			Min:         1.0,
			Max:         64.0,
			Default:     1.0,
			Description: "Regions processed in parallel",
		},
	}
}

// intParam accepts the float64 values produced by UI sliders and JSON as
// well as plain ints.
func intParam(params map[string]interface{}, name string) (int, bool) {
	val, ok := params[name]
	if !ok {
		return 0, false
	}
	switch v := val.(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	}
	return 0, false
}
