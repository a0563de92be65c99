package savgol

import (
	"fmt"
	"image"
	"math"
)

// rotation is one Givens rotation applied during the factorization.
type rotation struct {
	sin float64
	cos float64
}

// KernelBuilder holds the QR factorization of the regression equations for
// one Window. It is immutable once NewKernelBuilder returns and may be shared
// by several goroutines, each recomputing its own Kernel.
type KernelBuilder struct {
	window    Window
	numVars   int
	numPoints int

	// r starts as the equation matrix (numPoints rows, numVars columns, row
	// by row) and holds R in its upper numVars x numVars block after qr.
	r []float64

	// rotations are stored in the order they were applied, so the same
	// sequence can later be replayed against a new right-hand side.
	rotations []rotation
}

// NewKernelBuilder validates the window, builds the regression equations and
// factorizes them.
func NewKernelBuilder(w Window) (*KernelBuilder, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}

	kb := &KernelBuilder{
		window:    w,
		numVars:   w.NumVars(),
		numPoints: w.NumDataPoints(),
	}
	kb.buildEquations()
	kb.qr()

	for i := 0; i < kb.numVars; i++ {
		if kb.r[i*kb.numVars+i] == 0 {
			return nil, fmt.Errorf("%w: zero pivot at %d for window %s", ErrSingularFit, i, w)
		}
	}
	return kb, nil
}

// Window returns the window the builder was factorized for.
func (kb *KernelBuilder) Window() Window {
	return kb.window
}

// NumRotations returns the length of the rotation log.
func (kb *KernelBuilder) NumRotations() int {
	return len(kb.rotations)
}

func (kb *KernelBuilder) buildEquations() {
	order := kb.window.Order
	kb.r = make([]float64, 0, kb.numPoints*kb.numVars)
	for y := 1; y <= kb.window.Height; y++ {
		for x := 1; x <= kb.window.Width; x++ {
			pow1 := 1.0
			for i := 0; i <= order; i++ {
				pow2 := pow1
				for j := 0; j <= order; j++ {
					kb.r = append(kb.r, pow2)
					pow2 *= float64(x)
				}
				pow1 *= float64(y)
			}
		}
	}
}

// qr factorizes the equation matrix in place by Givens rotations, column by
// column, zeroing every entry below the diagonal. Q is never formed.
func (kb *KernelBuilder) qr() {
	n, m := kb.numVars, kb.numPoints
	kb.rotations = make([]rotation, 0, n*(n-1)/2+(m-n)*n)

	for j := 0; j < n; j++ {
		jj := j*n + j
		for i := j + 1; i < m; i++ {
			ij := i*n + j
			a, b := kb.r[jj], kb.r[ij]
			radius := math.Sqrt(a*a + b*b)

			rot := rotation{sin: 0, cos: 1}
			if radius != 0 {
				rot = rotation{sin: b / radius, cos: a / radius}
			}
			kb.rotations = append(kb.rotations, rot)
			if radius == 0 {
				continue
			}

			kb.r[jj] = radius
			kb.r[ij] = 0
			for k := j + 1; k < n; k++ {
				jk, ik := j*n+k, i*n+k
				t := rot.cos*kb.r[jk] + rot.sin*kb.r[ik]
				kb.r[ik] = rot.cos*kb.r[ik] - rot.sin*kb.r[jk]
				kb.r[jk] = t
			}
		}
	}
}

// KernelFor returns a freshly allocated kernel for the given origin.
func (kb *KernelBuilder) KernelFor(origin image.Point) (*Kernel, error) {
	k := kb.NewKernel()
	if err := kb.Recalc(origin, k); err != nil {
		return nil, err
	}
	return k, nil
}

// NewKernel allocates an empty kernel sized for the builder's window. It must
// go through Recalc before use.
func (kb *KernelBuilder) NewKernel() *Kernel {
	return &Kernel{
		width:   kb.window.Width,
		height:  kb.window.Height,
		origin:  image.Pt(-1, -1),
		weights: make([]float64, kb.numPoints),
		dp:      make([]float64, kb.numPoints),
		coeffs:  make([]float64, kb.numVars),
	}
}

// Recalc overwrites k with the convolution kernel for origin. Weights
// previously read from k are invalidated. Only the right-hand side changes
// between origins, so the stored rotations are replayed instead of
// factorizing again.
func (kb *KernelBuilder) Recalc(origin image.Point, k *Kernel) error {
	w := kb.window
	if !origin.In(image.Rect(0, 0, w.Width, w.Height)) {
		return fmt.Errorf("%w: %v not in %dx%d", ErrOriginOutOfRange, origin, w.Width, w.Height)
	}
	if len(k.weights) != kb.numPoints || len(k.coeffs) != kb.numVars {
		return fmt.Errorf("savgol: kernel %dx%d does not match window %s", k.width, k.height, w)
	}

	n, m := kb.numVars, kb.numPoints
	dp := k.dp
	for i := range dp {
		dp[i] = 0
	}
	dp[origin.Y*w.Width+origin.X] = 1

	// Apply Q^t to the unit vector.
	rot := 0
	for j := 0; j < n; j++ {
		for i := j + 1; i < m; i++ {
			r := kb.rotations[rot]
			rot++
			t := r.cos*dp[j] + r.sin*dp[i]
			dp[i] = r.cos*dp[i] - r.sin*dp[j]
			dp[j] = t
		}
	}

	// Solve R*coeffs = dp by back-substitution.
	coeffs := k.coeffs
	for i := n - 1; i >= 0; i-- {
		sum := dp[i]
		for c := i + 1; c < n; c++ {
			sum -= kb.r[i*n+c] * coeffs[c]
		}
		coeffs[i] = sum / kb.r[i*n+i]
	}

	// Evaluate the fitted polynomial's dependence on every data point.
	order := w.Order
	ki := 0
	for y := 1; y <= w.Height; y++ {
		for x := 1; x <= w.Width; x++ {
			sum := 0.0
			pow1 := 1.0
			ci := 0
			for i := 0; i <= order; i++ {
				pow2 := pow1
				for j := 0; j <= order; j++ {
					sum += pow2 * coeffs[ci]
					ci++
					pow2 *= float64(x)
				}
				pow1 *= float64(y)
			}
			k.weights[ki] = sum
			ki++
		}
	}

	k.origin = origin
	return nil
}
