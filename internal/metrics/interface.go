// Quality metrics comparing a source raster with its smoothed version
package metrics

import (
	"fmt"
	"image"
	"sort"
	"time"
)

// Metric defines the interface for quality metrics
type Metric interface {
	// Calculate computes the metric value
	Calculate(original, processed *image.Gray) (float64, error)

	// GetName returns the metric name
	GetName() string

	// GetDescription returns the metric description
	GetDescription() string

	// GetRange returns the value range (min, max)
	GetRange() (float64, float64)

	// IsHigherBetter returns true if higher values indicate better quality
	IsHigherBetter() bool
}

// Evaluator manages and calculates multiple metrics
type Evaluator struct {
	metrics map[string]Metric
}

// NewEvaluator creates a new metrics evaluator
func NewEvaluator() *Evaluator {
	e := &Evaluator{
		metrics: make(map[string]Metric),
	}

	e.RegisterDefaultMetrics()

	return e
}

// RegisterDefaultMetrics registers all default metrics
func (e *Evaluator) RegisterDefaultMetrics() {
	e.Register("mse", NewMSE())
	e.Register("psnr", NewPSNR())
	e.Register("mae", NewMAE())
	e.Register("ssim", NewSSIM())
	e.Register("sharpness_ratio", NewSharpnessRatio())
}

// Register registers a metric
func (e *Evaluator) Register(name string, metric Metric) {
	e.metrics[name] = metric
}

// Names returns the registered metric names in sorted order
func (e *Evaluator) Names() []string {
	names := make([]string, 0, len(e.metrics))
	for name := range e.metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Calculate calculates a specific metric
func (e *Evaluator) Calculate(name string, original, processed *image.Gray) (float64, error) {
	metric, exists := e.metrics[name]
	if !exists {
		return 0, fmt.Errorf("%w: %s", ErrUnknownMetric, name)
	}

	return metric.Calculate(original, processed)
}

// CalculateAll calculates all registered metrics, skipping the ones that fail
func (e *Evaluator) CalculateAll(original, processed *image.Gray) map[string]float64 {
	results := make(map[string]float64)

	for name, metric := range e.metrics {
		if value, err := metric.Calculate(original, processed); err == nil {
			results[name] = value
		}
	}

	return results
}

// GetMetricInfo returns information about all metrics
func (e *Evaluator) GetMetricInfo() map[string]MetricInfo {
	info := make(map[string]MetricInfo)

	for name, metric := range e.metrics {
		lo, hi := metric.GetRange()
		info[name] = MetricInfo{
			Name:         metric.GetName(),
			Description:  metric.GetDescription(),
			Range:        [2]float64{lo, hi},
			HigherBetter: metric.IsHigherBetter(),
		}
	}

	return info
}

// MetricInfo provides metadata about a metric
type MetricInfo struct {
	Name         string
	Description  string
	Range        [2]float64 // [min, max]
	HigherBetter bool
}

// Report summarizes how much a filter changed an image
type Report struct {
	Metrics   map[string]float64 `json:"metrics" yaml:"metrics"`
	Level     string             `json:"level" yaml:"level"` // "subtle", "moderate", "strong"
	Timestamp string             `json:"timestamp" yaml:"timestamp"`
}

// GenerateReport calculates every metric and classifies the strength of the
// smoothing from the PSNR between input and output
func (e *Evaluator) GenerateReport(original, processed *image.Gray) Report {
	values := e.CalculateAll(original, processed)

	level := "unknown"
	if psnr, ok := values["psnr"]; ok {
		switch {
		case psnr >= 40:
			level = "subtle"
		case psnr >= 28:
			level = "moderate"
		default:
			level = "strong"
		}
	}

	return Report{
		Metrics:   values,
		Level:     level,
		Timestamp: time.Now().Format("2006-01-02 15:04:05"),
	}
}
