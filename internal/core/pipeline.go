// Smoothing pipeline with debounced preview processing
package core

import (
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"savgol-image-filter/internal/metrics"
	"savgol-image-filter/internal/savgol"
)

// Pipeline runs the Savitzky-Golay filter over the loaded image whenever the
// window changes. The factorization is cached and only redone when the
// window itself changes.
type Pipeline struct {
	mu          sync.Mutex
	imageData   *ImageData
	metricsEval *metrics.Evaluator
	logger      logrus.FieldLogger

	window  savgol.Window
	workers int
	filter  *savgol.Filter

	// Real-time processing
	previewTimer *time.Timer
	previewDelay time.Duration
	generation   uint64 // bumped by every SetWindow and by Close

	// Callbacks are invoked from a worker goroutine; GUI callers must hop
	// back to their UI thread.
	onPreviewUpdate func(preview *image.Gray, values map[string]float64)
	onError         func(error)
}

func NewPipeline(imageData *ImageData, logger logrus.FieldLogger) *Pipeline {
	return &Pipeline{
		imageData:    imageData,
		metricsEval:  metrics.NewEvaluator(),
		logger:       logger,
		window:       savgol.Window{Width: 5, Height: 5, Order: 2},
		workers:      1,
		previewDelay: 200 * time.Millisecond,
	}
}

// SetCallbacks sets preview update and error callbacks
func (p *Pipeline) SetCallbacks(
	onPreviewUpdate func(*image.Gray, map[string]float64),
	onError func(error),
) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onPreviewUpdate = onPreviewUpdate
	p.onError = onError
}

// SetPreviewDelay changes the debounce delay of SetWindow
func (p *Pipeline) SetPreviewDelay(d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.previewDelay = d
}

// SetWorkers sets how many regions the filter processes concurrently
func (p *Pipeline) SetWorkers(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if n != p.workers {
		p.workers = n
		p.filter = nil
	}
}

// Window returns the current window
func (p *Pipeline) Window() savgol.Window {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.window
}

// SetWindow validates w, stores it and schedules a preview run
func (p *Pipeline) SetWindow(w savgol.Window) error {
	if err := w.Validate(); err != nil {
		return err
	}

	p.mu.Lock()
	if w != p.window {
		p.window = w
		p.filter = nil
	}
	p.mu.Unlock()

	p.logger.WithField("window", w.String()).Debug("PIPELINE: Window changed")
	p.triggerPreviewProcessing()
	return nil
}

// Process filters the loaded image synchronously and stores the result
func (p *Pipeline) Process() (*image.Gray, map[string]float64, error) {
	result, values, err := p.compute()
	if err != nil {
		return nil, nil, err
	}
	if err := p.imageData.SetProcessed(result); err != nil {
		return nil, nil, err
	}
	return result, values, nil
}

// compute filters the loaded image and measures the result without storing
// it
func (p *Pipeline) compute() (*image.Gray, map[string]float64, error) {
	original := p.imageData.GetOriginal()
	if original == nil {
		return nil, nil, fmt.Errorf("no image loaded")
	}

	filter, err := p.currentFilter()
	if err != nil {
		return nil, nil, err
	}

	start := time.Now()
	result, err := filter.ApplyGray(original)
	if err != nil {
		return nil, nil, fmt.Errorf("processing failed: %w", err)
	}

	values := p.metricsEval.CalculateAll(original, result)
	p.logger.WithFields(logrus.Fields{
		"window":   filter.Window().String(),
		"duration": time.Since(start),
		"psnr":     values["psnr"],
	}).Info("PIPELINE: Processing completed")

	return result, values, nil
}

// currentFilter returns the cached filter, building it when the window or
// worker count changed since the last run
func (p *Pipeline) currentFilter() (*savgol.Filter, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.filter != nil {
		return p.filter, nil
	}

	filter, err := savgol.New(p.window, savgol.WithWorkers(p.workers), savgol.WithLogger(p.logger))
	if err != nil {
		return nil, err
	}
	p.filter = filter
	return filter, nil
}

// triggerPreviewProcessing starts debounced preview processing
func (p *Pipeline) triggerPreviewProcessing() {
	if !p.imageData.HasImage() {
		p.logger.Debug("PIPELINE: No image available for preview processing")
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.previewTimer != nil {
		p.previewTimer.Stop()
	}
	p.generation++
	gen := p.generation
	p.previewTimer = time.AfterFunc(p.previewDelay, func() {
		p.processPreview(gen)
	})
}

// processPreview runs one preview pass. The result is committed only while
// gen is still the latest generation; superseded passes are dropped without
// touching ImageData.
func (p *Pipeline) processPreview(gen uint64) {
	if p.stale(gen) {
		p.logger.Debug("PIPELINE: Skipping superseded preview")
		return
	}

	result, values, err := p.compute()

	p.mu.Lock()
	if gen != p.generation {
		p.mu.Unlock()
		p.logger.Debug("PIPELINE: Dropping stale preview")
		return
	}
	if err == nil {
		err = p.imageData.SetProcessed(result)
	}
	onUpdate, onError := p.onPreviewUpdate, p.onError
	p.mu.Unlock()

	if err != nil {
		p.logger.WithError(err).Error("PIPELINE: Preview processing failed")
		if onError != nil {
			onError(err)
		}
		return
	}
	if onUpdate != nil {
		onUpdate(result, values)
	}
}

func (p *Pipeline) stale(gen uint64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return gen != p.generation
}

// Close stops pending preview work
func (p *Pipeline) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.previewTimer != nil {
		p.previewTimer.Stop()
	}
	p.generation++
}
