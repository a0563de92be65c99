// Algorithm registry for gocv based processing pipelines
package algorithms

import (
	"fmt"
	"sort"

	"gocv.io/x/gocv"
)

// Algorithm defines the interface for image processing algorithms
type Algorithm interface {
	Apply(input gocv.Mat, params map[string]interface{}) (gocv.Mat, error)
	GetDefaultParams() map[string]interface{}
	GetName() string
	GetDescription() string
	Validate(params map[string]interface{}) error
	GetParameterInfo() []ParameterInfo
}

// ParameterInfo describes a parameter for UI generation
type ParameterInfo struct {
	Name        string      `json:"name"`
	Type        string      `json:"type"` // "int", "float", "bool", "string", "enum"
	Min         interface{} `json:"min,omitempty"`
	Max         interface{} `json:"max,omitempty"`
	Default     interface{} `json:"default"`
	Description string      `json:"description"`
	Options     []string    `json:"options,omitempty"` // For enum type
}

var algorithms = make(map[string]Algorithm)

func Register(name string, algorithm Algorithm) {
	algorithms[name] = algorithm
}

func Get(name string) (Algorithm, bool) {
	algorithm, exists := algorithms[name]
	return algorithm, exists
}

func Apply(name string, input gocv.Mat, params map[string]interface{}) (gocv.Mat, error) {
	algorithm, exists := algorithms[name]
	if !exists {
		return gocv.NewMat(), fmt.Errorf("%w: %s", ErrUnknownAlgorithm, name)
	}

	if err := algorithm.Validate(params); err != nil {
		return gocv.NewMat(), fmt.Errorf("invalid parameters for %s: %w", name, err)
	}

	return algorithm.Apply(input, params)
}

func ValidateParameters(name string, params map[string]interface{}) error {
	algorithm, exists := algorithms[name]
	if !exists {
		return fmt.Errorf("%w: %s", ErrUnknownAlgorithm, name)
	}

	return algorithm.Validate(params)
}

func IsValidAlgorithm(name string) bool {
	_, exists := algorithms[name]
	return exists
}

// Names returns the registered algorithm names in sorted order
func Names() []string {
	names := make([]string, 0, len(algorithms))
	for name := range algorithms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func GetAlgorithmsByCategory() map[string][]string {
	return map[string][]string{
		"Conversion": {
			"grayscale",
		},
		"Smoothing": {
			"savitzky_golay",
		},
		"Baseline": {
			"gaussian_blur",
			"median_blur",
		},
	}
}

func init() {
	Register("grayscale", NewGrayscale())
	Register("savitzky_golay", NewSavitzkyGolay())
	Register("gaussian_blur", NewGaussianFilter())
	Register("median_blur", NewMedianFilter())
}
