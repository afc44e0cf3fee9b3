package sptest

import (
	"math"

	vec2d "github.com/flywave/go3d/float64/vec2"
	"gonum.org/v1/gonum/mat"
)

type KernelType string

const (
	Normal       KernelType = "normal"
	Epanechnikov KernelType = "epanechnikov"
	Cosine       KernelType = "cosine"
	Uniform      KernelType = "uniform"
)

const defaultTruncation = 1.5

// Diagnostic is a non-fatal data-sufficiency warning raised while the
// computation proceeds on the data that fits.
type Diagnostic struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

const (
	DiagPartialWindows = "partial-windows-dropped"
	DiagEmptyLagBin    = "empty-lag-bin"
	DiagSparseWindow   = "sparse-window-skipped"
)

// LagEstimate pairs a semivariogram point estimate with the lag it was
// computed at.
type LagEstimate struct {
	Lag   vec2d.T `json:"lag"`
	Gamma float64 `json:"gamma"`
}

// TestResult holds every quantity returned by an isotropy test. It is built
// once per invocation and never mutated afterwards.
type TestResult struct {
	GammaHat     []LagEstimate `json:"gamma.hat"`
	SigmaHat     *mat.SymDense `json:"sigma.hat"`
	NSubblocks   int           `json:"n.subblocks"`
	TestStat     float64       `json:"test.stat"`
	PValueFinite float64       `json:"pvalue.finite"`
	PValueChiSq  float64       `json:"pvalue.chisq"`
	Warnings     []Diagnostic  `json:"warnings,omitempty"`
}

// EdgeCorrection returns the weight applied to every pair contribution at the
// given lag, from the extent of the estimation region in grid cells. The
// weighted pair sum is normalized by the location count rather than the pair
// count, so a weight equal to the inverse pair availability leaves a fully
// observed lattice unchanged and compensates for pairs thinned out by missing
// cells near the boundary.
type EdgeCorrection func(lag vec2d.T, ncols, nrows int) float64

// TranslationWeight is the reciprocal fraction of lattice translates of the
// lag that keep both endpoints inside an ncols x nrows region. Lags comparable
// to the region extent receive the largest weight.
func TranslationWeight(lag vec2d.T, ncols, nrows int) float64 {
	fx := float64(ncols) - math.Abs(lag[0])
	fy := float64(nrows) - math.Abs(lag[1])
	if fx <= 0 || fy <= 0 {
		return 0
	}
	return float64(ncols) * float64(nrows) / (fx * fy)
}

// GridOptions configures a test on lattice data with spacing Delta. Lags are
// displacements in grid units. WindowDims is the subblock width and height in
// grid cells.
type GridOptions struct {
	Delta             float64
	Lags              *mat.Dense
	Contrast          *mat.Dense
	Df                int
	WindowDims        [2]int
	EdgeCorrectPoint  bool
	EdgeCorrectSigma  bool
	FiniteSampleSigma bool

	// Correction overrides the boundary weight used when edge correction
	// is requested. Nil selects TranslationWeight.
	Correction EdgeCorrection
}

// UniformOptions configures a test on irregularly located data inside the
// rectangle XLims x YLims. Lags are displacements in coordinate units and the
// subblock extent along each axis is GridSpacing[j] * WindowDims[j].
type UniformOptions struct {
	Lags              *mat.Dense
	Contrast          *mat.Dense
	Df                int
	Bandwidth         float64
	Kernel            KernelType
	Truncation        float64
	XLims             [2]float64
	YLims             [2]float64
	GridSpacing       [2]float64
	WindowDims        [2]int
	SubblockBandwidth float64
	FiniteSampleSigma bool
}
