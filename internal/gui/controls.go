package gui

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"savgol-image-filter/internal/savgol"
)

const (
	maxWindowSide = 25
	maxOrder      = 6
)

// windowSettings mirrors the slider positions
type windowSettings struct {
	width, height, order int
}

func (s windowSettings) toWindow() savgol.Window {
	return savgol.Window{Width: s.width, Height: s.height, Order: s.order}
}

// ControlPanel holds the window width, height and order sliders
type ControlPanel struct {
	container *fyne.Container

	widthSlider  *widget.Slider
	heightSlider *widget.Slider
	orderSlider  *widget.Slider
	summary      *widget.Label

	settings windowSettings
	onChange func(savgol.Window)
}

func NewControlPanel(initial savgol.Window, onChange func(savgol.Window)) *ControlPanel {
	cp := &ControlPanel{
		settings: windowSettings{width: initial.Width, height: initial.Height, order: initial.Order},
		onChange: onChange,
	}

	cp.widthSlider = cp.newSlider(1, maxWindowSide, &cp.settings.width)
	cp.heightSlider = cp.newSlider(1, maxWindowSide, &cp.settings.height)
	cp.orderSlider = cp.newSlider(0, maxOrder, &cp.settings.order)
	cp.summary = widget.NewLabel(cp.describe())

	cp.container = container.NewVBox(
		widget.NewLabel("Width"), cp.widthSlider,
		widget.NewLabel("Height"), cp.heightSlider,
		widget.NewLabel("Order"), cp.orderSlider,
		cp.summary,
	)
	return cp
}

// newSlider binds an integer slider to field; OnChanged fires for every
// drag event, so unchanged positions are ignored
func (cp *ControlPanel) newSlider(lo, hi int, field *int) *widget.Slider {
	slider := widget.NewSlider(float64(lo), float64(hi))
	slider.Step = 1
	slider.Value = float64(*field)
	slider.OnChanged = func(v float64) {
		if int(v) == *field {
			return
		}
		*field = int(v)
		cp.summary.SetText(cp.describe())
		if cp.onChange != nil {
			cp.onChange(cp.settings.toWindow())
		}
	}
	return slider
}

func (cp *ControlPanel) describe() string {
	w := cp.settings.toWindow()
	if err := w.Validate(); err != nil {
		return fmt.Sprintf("%s (invalid)", w)
	}
	return fmt.Sprintf("%s, %d coefficients", w, w.NumVars())
}

// Settings returns the current window as selected in the sliders
func (cp *ControlPanel) Settings() savgol.Window {
	return cp.settings.toWindow()
}

func (cp *ControlPanel) GetContainer() fyne.CanvasObject {
	return cp.container
}
