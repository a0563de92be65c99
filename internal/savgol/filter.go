package savgol

import (
	"fmt"
	"image"
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"savgol-image-filter/internal/grayscale"
)

// Filter applies Savitzky-Golay smoothing with one fixed window. The QR
// factorization happens once in New; a Filter can then be applied to any
// number of images, concurrently if desired.
type Filter struct {
	window  Window
	builder *KernelBuilder
	workers int
	logger  logrus.FieldLogger
}

// Option configures a Filter.
type Option func(*Filter)

// WithLogger sets the logger used for debug output.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(f *Filter) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithWorkers sets how many regions may be processed at once. Values below 2
// keep the filter sequential.
func WithWorkers(n int) Option {
	return func(f *Filter) {
		f.workers = n
	}
}

// New validates the window and factorizes its regression equations.
func New(w Window, opts ...Option) (*Filter, error) {
	f := &Filter{
		window:  w,
		workers: 1,
		logger:  discardLogger(),
	}
	for _, opt := range opts {
		opt(f)
	}

	start := time.Now()
	builder, err := NewKernelBuilder(w)
	if err != nil {
		return nil, err
	}
	f.builder = builder

	f.logger.WithFields(logrus.Fields{
		"window":    w.String(),
		"variables": w.NumVars(),
		"rotations": builder.NumRotations(),
		"duration":  time.Since(start),
	}).Debug("Factorized regression equations")

	return f, nil
}

// Smooth converts src to grayscale and filters it with a window of the given
// size and polynomial order. The parameters are checked before any pixel is
// touched.
func Smooth(src image.Image, size image.Point, order int) (*image.Gray, error) {
	f, err := New(NewWindow(size, order))
	if err != nil {
		return nil, err
	}
	return f.Apply(src)
}

// Window returns the filter's window.
func (f *Filter) Window() Window {
	return f.window
}

// Builder returns the factorization shared by all applications of f.
func (f *Filter) Builder() *KernelBuilder {
	return f.builder
}

// Apply converts src to 8-bit grayscale and filters it.
func (f *Filter) Apply(src image.Image) (*image.Gray, error) {
	if src == nil {
		return nil, fmt.Errorf("savgol: nil source image")
	}
	return f.ApplyGray(grayscale.FromImage(src))
}

// ApplyGray filters a grayscale image into a newly allocated one with the
// same bounds. When the window is larger than the image in either direction
// the result is an unmodified copy of src.
func (f *Filter) ApplyGray(src *image.Gray) (*image.Gray, error) {
	if src == nil {
		return nil, fmt.Errorf("savgol: nil source image")
	}

	l := newLayout(src.Rect.Size(), f.window)
	if !l.fits() {
		f.logger.WithFields(logrus.Fields{
			"window": f.window.String(),
			"image":  src.Rect.Size().String(),
		}).Debug("Window larger than image, returning source unchanged")
		return grayscale.Clone(src), nil
	}

	start := time.Now()
	dst := image.NewGray(src.Rect)

	var jobs []region
	for _, r := range l.regions() {
		if r.empty() {
			continue
		}
		jobs = append(jobs, r.split(f.workers)...)
	}

	if f.workers > 1 {
		g := new(errgroup.Group)
		g.SetLimit(f.workers)
		for _, r := range jobs {
			g.Go(func() error {
				return f.filterRegion(src, dst, l, r)
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for _, r := range jobs {
			if err := f.filterRegion(src, dst, l, r); err != nil {
				return nil, err
			}
		}
	}

	f.logger.WithFields(logrus.Fields{
		"window":   f.window.String(),
		"image":    src.Rect.Size().String(),
		"jobs":     len(jobs),
		"workers":  f.workers,
		"duration": time.Since(start),
	}).Debug("Savitzky-Golay filter applied")

	return dst, nil
}

// filterRegion writes every output pixel of r. It owns its kernel, so
// several regions can run at the same time against one builder.
func (f *Filter) filterRegion(src, dst *image.Gray, l layout, r region) error {
	k := f.builder.NewKernel()
	base := src.Rect.Min

	var err error
	r.walk(func(x, y int) {
		if err != nil {
			return
		}
		if origin := l.originIn(r, x, y); origin != k.origin {
			if err = f.builder.Recalc(origin, k); err != nil {
				err = fmt.Errorf("region %s: %w", r.name, err)
				return
			}
		}
		dst.Pix[dst.PixOffset(base.X+x, base.Y+y)] = k.Convolve(src, base.Add(l.topLeft(x, y)))
	})
	return err
}

func discardLogger() logrus.FieldLogger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
