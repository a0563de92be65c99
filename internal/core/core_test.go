package core

import (
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"savgol-image-filter/internal/grayscale"
	"savgol-image-filter/internal/savgol"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func TestImageData(t *testing.T) {
	data := NewImageData()
	assert.False(t, data.HasImage())
	assert.Error(t, data.SetProcessed(grayscale.Uniform(2, 2, 0)))
	assert.Error(t, data.ResetToOriginal())

	src := image.NewRGBA(image.Rect(0, 0, 4, 3))
	src.Set(1, 1, color.White)
	require.NoError(t, data.SetOriginal(src, "/tmp/scan.page.png"))

	assert.True(t, data.HasImage())
	assert.Equal(t, ImageMetadata{Width: 4, Height: 3, Format: "png"}, data.GetMetadata())
	assert.Equal(t, "/tmp/scan.page.png", data.GetFilepath())
	assert.Equal(t, uint8(255), data.GetOriginal().GrayAt(1, 1).Y)

	assert.Error(t, data.SetProcessed(grayscale.Uniform(5, 5, 0)))
	require.NoError(t, data.SetProcessed(grayscale.Uniform(4, 3, 7)))
	assert.Equal(t, uint8(7), data.GetProcessed().GrayAt(0, 0).Y)

	require.NoError(t, data.ResetToOriginal())
	assert.Equal(t, data.GetOriginal().Pix, data.GetProcessed().Pix)

	data.Clear()
	assert.False(t, data.HasImage())
	assert.Nil(t, data.GetProcessed())
}

func TestValidateSize(t *testing.T) {
	assert.NoError(t, ValidateSize(1, 1))
	assert.Error(t, ValidateSize(0, 5))
	assert.Error(t, ValidateSize(20000, 5))
}

func TestGetFormatFromPath(t *testing.T) {
	assert.Equal(t, "tif", getFormatFromPath("a/b.tif"))
	assert.Equal(t, "unknown", getFormatFromPath("dir.d/file"))
	assert.Equal(t, "unknown", getFormatFromPath(""))
}

func TestPipelineProcess(t *testing.T) {
	data := NewImageData()
	p := NewPipeline(data, quietLogger())
	defer p.Close()

	_, _, err := p.Process()
	assert.Error(t, err, "no image loaded")

	require.NoError(t, data.SetOriginal(grayscale.Uniform(12, 10, 60), "flat.png"))
	result, values, err := p.Process()
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 12, 10), result.Rect)
	assert.Contains(t, values, "psnr")
	assert.Equal(t, result.Pix, data.GetProcessed().Pix)
}

func TestPipelineRejectsInvalidWindow(t *testing.T) {
	p := NewPipeline(NewImageData(), quietLogger())
	defer p.Close()

	err := p.SetWindow(savgol.Window{Width: 3, Height: 3, Order: 3})
	assert.ErrorIs(t, err, savgol.ErrOrderTooHigh)
	assert.Equal(t, savgol.Window{Width: 5, Height: 5, Order: 2}, p.Window())
}

func TestPipelinePreview(t *testing.T) {
	data := NewImageData()
	require.NoError(t, data.SetOriginal(grayscale.Uniform(16, 16, 100), "flat.png"))

	p := NewPipeline(data, quietLogger())
	defer p.Close()
	p.SetPreviewDelay(time.Millisecond)
	p.SetWorkers(2)

	updates := make(chan *image.Gray, 4)
	p.SetCallbacks(func(img *image.Gray, _ map[string]float64) {
		updates <- img
	}, func(err error) {
		t.Errorf("unexpected error: %v", err)
	})

	require.NoError(t, p.SetWindow(savgol.Window{Width: 3, Height: 3, Order: 1}))

	select {
	case img := <-updates:
		require.NotNil(t, img)
		assert.Equal(t, data.GetOriginal().Rect, img.Rect)
	case <-time.After(5 * time.Second):
		t.Fatal("preview was not produced")
	}
}

func TestSupersededPreviewLeavesResultUntouched(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 9, 9))
	src.SetGray(4, 4, color.Gray{Y: 255})

	data := NewImageData()
	require.NoError(t, data.SetOriginal(src, "dot.png"))

	p := NewPipeline(data, quietLogger())
	defer p.Close()
	p.window = savgol.Window{Width: 3, Height: 3, Order: 0}

	var updates int
	p.SetCallbacks(func(*image.Gray, map[string]float64) { updates++ }, nil)

	p.mu.Lock()
	p.generation = 2
	p.mu.Unlock()

	p.processPreview(1)
	assert.Equal(t, uint8(255), data.GetProcessed().GrayAt(4, 4).Y)
	assert.Zero(t, updates)

	p.processPreview(2)
	assert.Equal(t, uint8(255/9), data.GetProcessed().GrayAt(4, 4).Y)
	assert.Equal(t, 1, updates)
}

func TestClosedPipelineDropsPendingPreview(t *testing.T) {
	data := NewImageData()
	require.NoError(t, data.SetOriginal(grayscale.Uniform(8, 8, 50), "flat.png"))

	p := NewPipeline(data, quietLogger())
	p.mu.Lock()
	gen := p.generation
	p.mu.Unlock()

	before := data.GetProcessed()
	p.Close()
	p.processPreview(gen)
	assert.Equal(t, before.Pix, data.GetProcessed().Pix)
}
