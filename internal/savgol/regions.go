package savgol

import "image"

// originRule tells how often the kernel origin changes inside a region and,
// therefore, in which order the region is walked.
type originRule int

const (
	// originFixed: one origin for the whole region (the interior).
	originFixed originRule = iota
	// originPerRow: the origin changes with y only (top and bottom edges).
	originPerRow
	// originPerColumn: the origin changes with x only (left and right edges).
	originPerColumn
	// originPerPixel: every pixel has its own origin (corners).
	originPerPixel
)

func (r originRule) String() string {
	switch r {
	case originFixed:
		return "fixed"
	case originPerRow:
		return "per-row"
	case originPerColumn:
		return "per-column"
	case originPerPixel:
		return "per-pixel"
	}
	return "unknown"
}

// span is a half-open interval [lo, hi).
type span struct {
	lo, hi int
}

func (s span) empty() bool { return s.hi <= s.lo }

func (s span) len() int {
	if s.empty() {
		return 0
	}
	return s.hi - s.lo
}

// region is one of the nine zones of the output image. Coordinates are
// relative to the image's top-left corner.
type region struct {
	name string
	rows span
	cols span
	rule originRule

	// descendingX makes the origin column count down from kw-1 as the
	// output column moves right, starting at the region's first column.
	descendingX bool
}

func (r region) empty() bool {
	return r.rows.empty() || r.cols.empty()
}

func (r region) area() int {
	return r.rows.len() * r.cols.len()
}

// layout captures the image and window geometry the partition is built from.
type layout struct {
	width, height int // image
	kw, kh        int // window
	kt, kb        int // rows above and below the origin of a centered window
	kl, kr        int // columns left and right of it
}

func newLayout(imgSize image.Point, w Window) layout {
	kt := w.Height / 2
	kl := w.Width / 2
	return layout{
		width:  imgSize.X,
		height: imgSize.Y,
		kw:     w.Width,
		kh:     w.Height,
		kt:     kt,
		kb:     w.Height - kt - 1,
		kl:     kl,
		kr:     w.Width - kl - 1,
	}
}

// fits reports whether the window fits inside the image at all.
func (l layout) fits() bool {
	return l.kw <= l.width && l.kh <= l.height
}

// regions returns the nine disjoint regions covering the image. Empty
// regions are kept; callers skip them.
func (l layout) regions() []region {
	top := span{0, l.kt}
	middle := span{l.kt, l.height - l.kb}
	bottom := span{l.height - l.kb, l.height}
	left := span{0, l.kl}
	center := span{l.kl, l.width - l.kr}
	right := span{l.width - l.kr, l.width}

	return []region{
		{name: "top-left", rows: top, cols: left, rule: originPerPixel},
		{name: "top", rows: top, cols: center, rule: originPerRow},
		{name: "top-right", rows: top, cols: right, rule: originPerPixel, descendingX: true},
		{name: "left", rows: middle, cols: left, rule: originPerColumn},
		{name: "interior", rows: middle, cols: center, rule: originFixed},
		{name: "right", rows: middle, cols: right, rule: originPerColumn},
		{name: "bottom-left", rows: bottom, cols: left, rule: originPerPixel},
		{name: "bottom", rows: bottom, cols: center, rule: originPerRow},
		{name: "bottom-right", rows: bottom, cols: right, rule: originPerPixel},
	}
}

// topLeft returns the top-left corner of the window used for output pixel
// (x, y), clamped into [0, W-kw] x [0, H-kh].
func (l layout) topLeft(x, y int) image.Point {
	return image.Pt(clamp(x-l.kl, 0, l.width-l.kw), clamp(y-l.kt, 0, l.height-l.kh))
}

// origin returns the position of output pixel (x, y) inside its clamped
// window.
func (l layout) origin(x, y int) image.Point {
	return image.Pt(x, y).Sub(l.topLeft(x, y))
}

// originIn returns the kernel origin used for output pixel (x, y) of r.
// The window stays where topLeft puts it in every region; only the top-right
// corner pairs it with an origin that counts down from the window's last
// column.
func (l layout) originIn(r region, x, y int) image.Point {
	o := l.origin(x, y)
	if r.descendingX {
		o.X = l.kw - 1 - (x - r.cols.lo)
	}
	return o
}

// split cuts a region into at most n bands of whole rows. Only fixed-origin
// regions are split; the others are cheap compared to the interior.
func (r region) split(n int) []region {
	if n <= 1 || r.rule != originFixed || r.rows.len() < 2*n {
		return []region{r}
	}
	bands := make([]region, 0, n)
	step := (r.rows.len() + n - 1) / n
	for lo := r.rows.lo; lo < r.rows.hi; lo += step {
		band := r
		band.rows = span{lo, min(lo+step, r.rows.hi)}
		bands = append(bands, band)
	}
	return bands
}

// walk visits every pixel of the region, row-major or column-major according
// to the region's rule, so that consecutive pixels share an origin for as
// long as possible.
func (r region) walk(fn func(x, y int)) {
	if r.rule == originPerColumn {
		for x := r.cols.lo; x < r.cols.hi; x++ {
			for y := r.rows.lo; y < r.rows.hi; y++ {
				fn(x, y)
			}
		}
		return
	}
	for y := r.rows.lo; y < r.rows.hi; y++ {
		for x := r.cols.lo; x < r.cols.hi; x++ {
			fn(x, y)
		}
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
