// Preview window showing the source image next to its smoothed version
package gui

import (
	"fmt"
	"image"
	"math"
	"sort"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"github.com/sirupsen/logrus"

	"savgol-image-filter/internal/core"
	"savgol-image-filter/internal/savgol"
)

// Application is the live preview window
type Application struct {
	app    fyne.App
	window fyne.Window
	logger logrus.FieldLogger

	imageData *core.ImageData
	pipeline  *core.Pipeline

	originalImage *canvas.Image
	previewImage  *canvas.Image
	controls      *ControlPanel
	metricsLabel  *widget.Label
	statusLabel   *widget.Label
}

func NewApplication(app fyne.App, imageData *core.ImageData, pipeline *core.Pipeline, logger logrus.FieldLogger) *Application {
	window := app.NewWindow("Savitzky-Golay Preview")
	window.Resize(fyne.NewSize(1400, 800))
	window.CenterOnScreen()

	a := &Application{
		app:       app,
		window:    window,
		logger:    logger,
		imageData: imageData,
		pipeline:  pipeline,
	}

	a.initializeGUI()
	a.setupCallbacks()
	return a
}

func (a *Application) initializeGUI() {
	a.originalImage = newImageView(a.imageData.GetOriginal())
	a.previewImage = newImageView(a.imageData.GetProcessed())

	a.metricsLabel = widget.NewLabel("")
	a.statusLabel = widget.NewLabel("Ready")
	a.controls = NewControlPanel(a.pipeline.Window(), func(w savgol.Window) {
		if err := a.pipeline.SetWindow(w); err != nil {
			a.setStatus(err.Error())
			return
		}
		a.setStatus("Processing " + w.String())
	})

	split := container.NewHSplit(
		widget.NewCard("Original", "", a.originalImage),
		widget.NewCard("Smoothed", "", a.previewImage),
	)
	split.SetOffset(0.5)

	side := container.NewVBox(
		widget.NewCard("Window", "", a.controls.GetContainer()),
		widget.NewCard("Metrics", "", a.metricsLabel),
		widget.NewSeparator(),
		a.statusLabel,
	)

	a.window.SetContent(container.NewBorder(nil, nil, nil, side, split))
}

func (a *Application) setupCallbacks() {
	a.pipeline.SetCallbacks(
		func(preview *image.Gray, values map[string]float64) {
			fyne.Do(func() {
				a.previewImage.Image = preview
				a.previewImage.Refresh()
				a.metricsLabel.SetText(formatMetrics(values))
				a.statusLabel.SetText("Done")
			})
		},
		func(err error) {
			fyne.Do(func() {
				a.statusLabel.SetText("Error: " + err.Error())
			})
		},
	)
	a.window.SetOnClosed(a.pipeline.Close)
}

func (a *Application) setStatus(message string) {
	a.logger.WithField("status", message).Debug("GUI: Status updated")
	a.statusLabel.SetText(message)
}

// ShowAndRun runs the first filter pass and enters the fyne event loop
func (a *Application) ShowAndRun() {
	if _, values, err := a.pipeline.Process(); err == nil {
		a.previewImage.Image = a.imageData.GetProcessed()
		a.metricsLabel.SetText(formatMetrics(values))
	} else {
		a.statusLabel.SetText("Error: " + err.Error())
	}
	a.window.ShowAndRun()
}

func newImageView(img image.Image) *canvas.Image {
	view := canvas.NewImageFromImage(img)
	view.FillMode = canvas.ImageFillContain
	view.ScaleMode = canvas.ImageScalePixels
	view.SetMinSize(fyne.NewSize(320, 240))
	return view
}

// formatMetrics renders metric values one per line, sorted by name
func formatMetrics(values map[string]float64) string {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for i, name := range names {
		if i > 0 {
			b.WriteByte('\n')
		}
		v := values[name]
		if math.IsInf(v, 1) {
			fmt.Fprintf(&b, "%s: inf", name)
			continue
		}
		fmt.Fprintf(&b, "%s: %.3f", name, v)
	}
	return b.String()
}
