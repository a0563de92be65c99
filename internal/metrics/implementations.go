// Concrete implementations of quality metrics
package metrics

import (
	"image"
	"math"

	"gocv.io/x/gocv"

	"savgol-image-filter/internal/algorithms"
)

// MSE implements Mean Squared Error
type MSE struct{}

// NewMSE creates a new MSE metric
func NewMSE() *MSE {
	return &MSE{}
}

func (m *MSE) Calculate(original, processed *image.Gray) (float64, error) {
	return withMats(original, processed, meanSquaredError)
}

func (m *MSE) GetName() string {
	return "MSE"
}

func (m *MSE) GetDescription() string {
	return "Mean Squared Error between original and processed pixels"
}

func (m *MSE) GetRange() (float64, float64) {
	return 0, 255 * 255
}

func (m *MSE) IsHigherBetter() bool {
	return false
}

// PSNR implements Peak Signal-to-Noise Ratio metric
type PSNR struct{}

// NewPSNR creates a new PSNR metric
func NewPSNR() *PSNR {
	return &PSNR{}
}

func (p *PSNR) Calculate(original, processed *image.Gray) (float64, error) {
	return withMats(original, processed, func(a, b gocv.Mat) float64 {
		mse := meanSquaredError(a, b)
		if mse == 0 {
			return math.Inf(1) // Perfect match
		}

		maxVal := 255.0
		return 20 * math.Log10(maxVal/math.Sqrt(mse))
	})
}

func (p *PSNR) GetName() string {
	return "PSNR"
}

func (p *PSNR) GetDescription() string {
	return "Peak Signal-to-Noise Ratio - measures image quality"
}

func (p *PSNR) GetRange() (float64, float64) {
	return 0, 100 // Practical range, can go higher
}

func (p *PSNR) IsHigherBetter() bool {
	return true
}

// MAE implements Mean Absolute Error
type MAE struct{}

// NewMAE creates a new MAE metric
func NewMAE() *MAE {
	return &MAE{}
}

func (m *MAE) Calculate(original, processed *image.Gray) (float64, error) {
	return withMats(original, processed, func(a, b gocv.Mat) float64 {
		return gocv.NormWithMats(a, b, gocv.NormL1) / float64(a.Total())
	})
}

func (m *MAE) GetName() string {
	return "MAE"
}

func (m *MAE) GetDescription() string {
	return "Mean Absolute Error between original and processed pixels"
}

func (m *MAE) GetRange() (float64, float64) {
	return 0, 255
}

func (m *MAE) IsHigherBetter() bool {
	return false
}

// SSIM implements Structural Similarity Index metric
type SSIM struct{}

// NewSSIM creates a new SSIM metric
func NewSSIM() *SSIM {
	return &SSIM{}
}

func (s *SSIM) Calculate(original, processed *image.Gray) (float64, error) {
	return withMats(original, processed, s.calculateSSIM)
}

func (s *SSIM) calculateSSIM(img1, img2 gocv.Mat) float64 {
	// SSIM constants
	const (
		C1 = 6.5025  // (0.01 * 255)^2
		C2 = 58.5225 // (0.03 * 255)^2
	)

	f1 := gocv.NewMat()
	defer f1.Close()
	img1.ConvertTo(&f1, gocv.MatTypeCV32F)

	f2 := gocv.NewMat()
	defer f2.Close()
	img2.ConvertTo(&f2, gocv.MatTypeCV32F)

	mu1 := gaussianMean(f1)
	defer mu1.Close()
	mu2 := gaussianMean(f2)
	defer mu2.Close()

	mu1Sq := product(mu1, mu1)
	defer mu1Sq.Close()
	mu2Sq := product(mu2, mu2)
	defer mu2Sq.Close()
	mu1Mu2 := product(mu1, mu2)
	defer mu1Mu2.Close()

	sigma1Sq := localCovariance(f1, f1, mu1Sq)
	defer sigma1Sq.Close()
	sigma2Sq := localCovariance(f2, f2, mu2Sq)
	defer sigma2Sq.Close()
	sigma12 := localCovariance(f1, f2, mu1Mu2)
	defer sigma12.Close()

	// (2*mu1*mu2 + C1) * (2*sigma12 + C2)
	mu1Mu2.MultiplyFloat(2)
	mu1Mu2.AddFloat(C1)
	sigma12.MultiplyFloat(2)
	sigma12.AddFloat(C2)
	numerator := product(mu1Mu2, sigma12)
	defer numerator.Close()

	// (mu1^2 + mu2^2 + C1) * (sigma1^2 + sigma2^2 + C2)
	denominator1 := gocv.NewMat()
	defer denominator1.Close()
	gocv.Add(mu1Sq, mu2Sq, &denominator1)
	denominator1.AddFloat(C1)

	denominator2 := gocv.NewMat()
	defer denominator2.Close()
	gocv.Add(sigma1Sq, sigma2Sq, &denominator2)
	denominator2.AddFloat(C2)

	denominator := product(denominator1, denominator2)
	defer denominator.Close()

	ssimMap := gocv.NewMat()
	defer ssimMap.Close()
	gocv.Divide(numerator, denominator, &ssimMap)

	return ssimMap.Mean().Val1
}

func (s *SSIM) GetName() string {
	return "SSIM"
}

func (s *SSIM) GetDescription() string {
	return "Structural Similarity Index - measures perceptual quality"
}

func (s *SSIM) GetRange() (float64, float64) {
	return 0, 1
}

func (s *SSIM) IsHigherBetter() bool {
	return true
}

// SharpnessRatio compares the mean gradient magnitude of the processed image
// with that of the original. Smoothing lowers it; values close to 1 mean
// edges were preserved.
type SharpnessRatio struct{}

// NewSharpnessRatio creates a new sharpness ratio metric
func NewSharpnessRatio() *SharpnessRatio {
	return &SharpnessRatio{}
}

func (s *SharpnessRatio) Calculate(original, processed *image.Gray) (float64, error) {
	return withMats(original, processed, func(a, b gocv.Mat) float64 {
		before := meanGradient(a)
		if before == 0 {
			return 1 // Flat original, nothing to lose
		}
		return meanGradient(b) / before
	})
}

func (s *SharpnessRatio) GetName() string {
	return "Sharpness Ratio"
}

func (s *SharpnessRatio) GetDescription() string {
	return "Mean gradient magnitude of processed image relative to original"
}

func (s *SharpnessRatio) GetRange() (float64, float64) {
	return 0, 1
}

func (s *SharpnessRatio) IsHigherBetter() bool {
	return true
}

func checkPair(original, processed *image.Gray) error {
	if original == nil || processed == nil || original.Rect.Empty() || processed.Rect.Empty() {
		return ErrEmptyImage
	}
	if original.Rect.Size() != processed.Rect.Size() {
		return ErrDimensionMismatch
	}
	return nil
}

// withMats validates the pair, wraps both images into CV_8UC1 Mats and
// hands them to fn. The Mats are closed when fn returns.
func withMats(original, processed *image.Gray, fn func(a, b gocv.Mat) float64) (float64, error) {
	if err := checkPair(original, processed); err != nil {
		return 0, err
	}

	a, err := algorithms.FromGrayImage(original)
	if err != nil {
		return 0, err
	}
	defer a.Close()

	b, err := algorithms.FromGrayImage(processed)
	if err != nil {
		return 0, err
	}
	defer b.Close()

	return fn(a, b), nil
}

func meanSquaredError(a, b gocv.Mat) float64 {
	norm := gocv.NormWithMats(a, b, gocv.NormL2)
	return norm * norm / float64(a.Total())
}

// meanGradient is the mean absolute forward difference in x and y
func meanGradient(img gocv.Mat) float64 {
	w, h := img.Cols(), img.Rows()

	var sum float64
	var n int
	if w > 1 {
		sum += absDiffSum(img, image.Rect(1, 0, w, h), image.Rect(0, 0, w-1, h))
		n += (w - 1) * h
	}
	if h > 1 {
		sum += absDiffSum(img, image.Rect(0, 1, w, h), image.Rect(0, 0, w, h-1))
		n += w * (h - 1)
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// absDiffSum sums |img[r1] - img[r2]| over two same-sized regions
func absDiffSum(img gocv.Mat, r1, r2 image.Rectangle) float64 {
	a := img.Region(r1)
	defer a.Close()
	b := img.Region(r2)
	defer b.Close()

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(a, b, &diff)
	return diff.Sum().Val1
}

// gaussianMean is the local mean used by SSIM. Borders are replicated so
// images smaller than the 11x11 kernel still work.
func gaussianMean(src gocv.Mat) gocv.Mat {
	dst := gocv.NewMat()
	gocv.GaussianBlur(src, &dst, image.Pt(11, 11), 1.5, 1.5, gocv.BorderReplicate)
	return dst
}

// localCovariance returns E[a*b] - mean, with E taken over the Gaussian window
func localCovariance(a, b, mean gocv.Mat) gocv.Mat {
	ab := product(a, b)
	defer ab.Close()

	dst := gaussianMean(ab)
	gocv.Subtract(dst, mean, &dst)
	return dst
}

func product(a, b gocv.Mat) gocv.Mat {
	dst := gocv.NewMat()
	gocv.Multiply(a, b, &dst)
	return dst
}
