// Package sptest implements nonparametric hypothesis tests of second-order
// spatial isotropy for two-dimensional geostatistical data, following the
// semivariogram subsampling approach of Guan, Sherman and Chu. Sample
// semivariogram estimates along chosen lags are contrasted under the null,
// with the asymptotic covariance estimated by moving-window subsampling.
package sptest

import (
	"fmt"
	"math"

	vec2d "github.com/flywave/go3d/float64/vec2"
	vec3d "github.com/flywave/go3d/float64/vec3"
	"gonum.org/v1/gonum/mat"
)

// GridIsotropyTest tests isotropy for data on a regular lattice with spacing
// opts.Delta. Coordinates are rescaled onto unit spacing, gamma is estimated
// by exact lag matching, and its covariance by re-estimation over
// non-overlapping windows of opts.WindowDims grid cells.
func GridIsotropyTest(spdata *mat.Dense, opts GridOptions) (*TestResult, error) {
	lags, err := validateDesign(spdata, opts.Lags, opts.Contrast, opts.Df)
	if err != nil {
		return nil, err
	}

	pos, err := normalizeCoordinates(sampleTriples(spdata), opts.Delta)
	if err != nil {
		return nil, err
	}
	idx, err := newLatticeIndex(pos)
	if err != nil {
		return nil, err
	}
	ncols, nrows := idx.extent()
	if opts.WindowDims[0] < 1 || opts.WindowDims[1] < 1 ||
		opts.WindowDims[0] >= ncols || opts.WindowDims[1] >= nrows {
		return nil, fmt.Errorf("%w: windows (%d,%d) against %dx%d grid",
			ErrWindowDims, opts.WindowDims[0], opts.WindowDims[1], ncols, nrows)
	}

	edge := opts.Correction
	if edge == nil {
		edge = TranslationWeight
	}
	pointEst := &gridEstimator{idx: idx}
	if opts.EdgeCorrectPoint {
		pointEst.edge = edge
	}
	sigmaEst := &gridEstimator{idx: idx}
	if opts.EdgeCorrectSigma {
		sigmaEst.edge = edge
	}

	var warnings []Diagnostic
	gamma, _, diags := pointEst.gammas(nil, lags)
	warnings = append(warnings, diags...)

	windows, diags := tileGrid(idx, opts.WindowDims)
	warnings = append(warnings, diags...)

	return finishTest(sigmaEst, windows, lags, gamma, warnings, opts.Contrast, opts.Df, float64(len(pos)), opts.FiniteSampleSigma)
}

// UniformIsotropyTest tests isotropy for irregularly located data inside the
// rectangle opts.XLims x opts.YLims, which the caller must choose wide enough
// to contain every observation. Gamma is a kernel-weighted average over all
// pairs; windows of extent GridSpacing[j]*WindowDims[j] drive the covariance
// estimate, re-smoothed at opts.SubblockBandwidth (the top-level bandwidth
// when zero).
func UniformIsotropyTest(spdata *mat.Dense, opts UniformOptions) (*TestResult, error) {
	lags, err := validateDesign(spdata, opts.Lags, opts.Contrast, opts.Df)
	if err != nil {
		return nil, err
	}
	if opts.Bandwidth <= 0 {
		return nil, fmt.Errorf("%w: bandwidth=%v", ErrBandwidth, opts.Bandwidth)
	}
	kt := opts.Kernel
	if kt == "" {
		kt = Normal
	}
	kern, err := kernelFor(kt)
	if err != nil {
		return nil, err
	}
	trunc := opts.Truncation
	if trunc == 0 {
		trunc = defaultTruncation
	}
	if opts.XLims[1] <= opts.XLims[0] || opts.YLims[1] <= opts.YLims[0] {
		return nil, fmt.Errorf("%w: xlims=%v ylims=%v", ErrDomainLims, opts.XLims, opts.YLims)
	}
	wext := [2]float64{
		opts.GridSpacing[0] * float64(opts.WindowDims[0]),
		opts.GridSpacing[1] * float64(opts.WindowDims[1]),
	}
	if wext[0] <= 0 || wext[1] <= 0 ||
		wext[0] >= opts.XLims[1]-opts.XLims[0] || wext[1] >= opts.YLims[1]-opts.YLims[0] {
		return nil, fmt.Errorf("%w: window extents (%g,%g)", ErrWindowDims, wext[0], wext[1])
	}
	subbw := opts.SubblockBandwidth
	if subbw == 0 {
		subbw = opts.Bandwidth
	}

	pos := sampleTriples(spdata)
	pointEst := &kernelEstimator{pos: pos, kern: kern, bw: opts.Bandwidth, cutoff: kernelCutoff(kt, opts.Bandwidth, trunc)}
	sigmaEst := &kernelEstimator{pos: pos, kern: kern, bw: subbw, cutoff: kernelCutoff(kt, subbw, trunc)}

	var warnings []Diagnostic
	gamma, _, diags := pointEst.gammas(nil, lags)
	warnings = append(warnings, diags...)

	windows, diags := tileDomain(opts.XLims, opts.YLims, wext)
	warnings = append(warnings, diags...)

	return finishTest(sigmaEst, windows, lags, gamma, warnings, opts.Contrast, opts.Df, float64(len(pos)), opts.FiniteSampleSigma)
}

// kernelCutoff bounds the pair-weight support: one bandwidth for the
// finite-support kernels, trunc bandwidths for the normal kernel.
func kernelCutoff(k KernelType, bw, trunc float64) float64 {
	if k == Normal {
		return trunc * bw
	}
	return bw
}

func finishTest(sigmaEst gammaEstimator, windows []vec2d.Rect, lags []vec2d.T,
	gamma []float64, warnings []Diagnostic, A *mat.Dense, df int, n float64, finiteSample bool) (*TestResult, error) {

	ghats, pairs, b, diags, err := blockGammas(sigmaEst, windows, lags)
	if err != nil {
		return nil, err
	}
	warnings = append(warnings, diags...)

	_, fullPairs, _ := sigmaEst.gammas(nil, lags)
	center := blockCenter(ghats, gamma, finiteSample)
	sigma := assembleSigma(ghats, pairs, center, fullPairs, n)

	tstat, pfinite, pchisq, err := testStatistics(gamma, sigma, ghats, A, df, b, n)
	if err != nil {
		return nil, err
	}

	estimates := make([]LagEstimate, len(lags))
	for i := range lags {
		estimates[i] = LagEstimate{Lag: lags[i], Gamma: gamma[i]}
	}
	return &TestResult{
		GammaHat:     estimates,
		SigmaHat:     sigma,
		NSubblocks:   len(ghats),
		TestStat:     tstat,
		PValueFinite: pfinite,
		PValueChiSq:  pchisq,
		Warnings:     warnings,
	}, nil
}

func validateDesign(spdata, lagmat, A *mat.Dense, df int) ([]vec2d.T, error) {
	if spdata == nil {
		return nil, fmt.Errorf("%w: nil sample", ErrSampleShape)
	}
	nr, nc := spdata.Dims()
	if nc != 3 {
		return nil, fmt.Errorf("%w: got %d", ErrSampleShape, nc)
	}
	if nr < 4 {
		return nil, fmt.Errorf("%w: got %d", ErrTooFewLocations, nr)
	}
	for i := 0; i < nr; i++ {
		if !allFinite([]float64{spdata.At(i, 0), spdata.At(i, 1)}) {
			return nil, fmt.Errorf("%w: row %d", ErrNonFiniteCoord, i)
		}
	}
	if lagmat == nil {
		return nil, fmt.Errorf("%w: nil lag matrix", ErrLagShape)
	}
	k, lc := lagmat.Dims()
	if lc != 2 {
		return nil, fmt.Errorf("%w: got %d", ErrLagShape, lc)
	}
	if A == nil {
		return nil, fmt.Errorf("%w: nil contrast", ErrContrastShape)
	}
	d, ak := A.Dims()
	if ak != k {
		return nil, fmt.Errorf("%w: %d lags, %d contrast columns", ErrContrastShape, k, ak)
	}
	if df < 1 || df > d {
		return nil, fmt.Errorf("%w: df=%d, rows(A)=%d", ErrContrastRank, df, d)
	}
	lags := make([]vec2d.T, k)
	for i := 0; i < k; i++ {
		lags[i] = vec2d.T{lagmat.At(i, 0), lagmat.At(i, 1)}
	}
	return lags, nil
}

func sampleTriples(spdata *mat.Dense) []vec3d.T {
	nr, _ := spdata.Dims()
	pos := make([]vec3d.T, nr)
	for i := 0; i < nr; i++ {
		pos[i] = vec3d.T{spdata.At(i, 0), spdata.At(i, 1), spdata.At(i, 2)}
	}
	return pos
}

// IsotropyContrast builds the canonical isotropy contrast for lagmat: one row
// per lag pair related by a 90 degree rotation (dx,dy) -> (-dy,dx), encoding
// equality of gamma at the two lags. Each lag enters at most one row, so the
// matrix has full row rank, returned alongside it.
func IsotropyContrast(lagmat *mat.Dense) (*mat.Dense, int, error) {
	if lagmat == nil {
		return nil, 0, fmt.Errorf("%w: nil lag matrix", ErrLagShape)
	}
	k, lc := lagmat.Dims()
	if lc != 2 {
		return nil, 0, fmt.Errorf("%w: got %d", ErrLagShape, lc)
	}
	const tol = 1e-9
	used := make([]bool, k)
	var rows []float64
	df := 0
	for i := 0; i < k; i++ {
		if used[i] {
			continue
		}
		rx, ry := -lagmat.At(i, 1), lagmat.At(i, 0)
		for j := 0; j < k; j++ {
			if j == i || used[j] {
				continue
			}
			if math.Abs(lagmat.At(j, 0)-rx) < tol && math.Abs(lagmat.At(j, 1)-ry) < tol {
				row := make([]float64, k)
				row[i] = 1
				row[j] = -1
				rows = append(rows, row...)
				used[i], used[j] = true, true
				df++
				break
			}
		}
	}
	if df == 0 {
		return nil, 0, fmt.Errorf("%w: no rotation-related lag pairs", ErrContrastShape)
	}
	return mat.NewDense(df, k, rows), df, nil
}
