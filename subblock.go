package sptest

import (
	"fmt"
	"math"
	"runtime"
	"sync"

	vec2d "github.com/flywave/go3d/float64/vec2"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// tileGrid partitions the lattice into non-overlapping windows of dims grid
// cells, anchored at the lattice origin. Trailing cells that do not fill a
// whole window are dropped with a diagnostic.
func tileGrid(idx *latticeIndex, dims [2]int) ([]vec2d.Rect, []Diagnostic) {
	ncols, nrows := idx.extent()
	nwx := ncols / dims[0]
	nwy := nrows / dims[1]
	var diags []Diagnostic
	if ncols%dims[0] != 0 || nrows%dims[1] != 0 {
		diags = append(diags, Diagnostic{
			Code: DiagPartialWindows,
			Message: fmt.Sprintf("window dims (%d,%d) do not evenly divide the %dx%d grid; trailing cells dropped",
				dims[0], dims[1], ncols, nrows),
		})
	}
	windows := make([]vec2d.Rect, 0, nwx*nwy)
	x0 := float64(idx.min.x)
	y0 := float64(idx.min.y)
	for iy := 0; iy < nwy; iy++ {
		for ix := 0; ix < nwx; ix++ {
			windows = append(windows, vec2d.Rect{
				Min: vec2d.T{x0 + float64(ix*dims[0]), y0 + float64(iy*dims[1])},
				Max: vec2d.T{x0 + float64((ix+1)*dims[0]), y0 + float64((iy+1)*dims[1])},
			})
		}
	}
	return windows, diags
}

// tileDomain partitions the rectangle xlims x ylims into non-overlapping
// windows of extent w along each axis, dropping any remainder strip with a
// diagnostic.
func tileDomain(xlims, ylims [2]float64, w [2]float64) ([]vec2d.Rect, []Diagnostic) {
	const tol = 1e-9
	xext := xlims[1] - xlims[0]
	yext := ylims[1] - ylims[0]
	nwx := int((xext + tol) / w[0])
	nwy := int((yext + tol) / w[1])
	var diags []Diagnostic
	if xext-float64(nwx)*w[0] > tol*xext || yext-float64(nwy)*w[1] > tol*yext {
		diags = append(diags, Diagnostic{
			Code: DiagPartialWindows,
			Message: fmt.Sprintf("window extents (%g,%g) do not evenly divide the %gx%g domain; remainder dropped",
				w[0], w[1], xext, yext),
		})
	}
	windows := make([]vec2d.Rect, 0, nwx*nwy)
	for iy := 0; iy < nwy; iy++ {
		for ix := 0; ix < nwx; ix++ {
			windows = append(windows, vec2d.Rect{
				Min: vec2d.T{xlims[0] + float64(ix)*w[0], ylims[0] + float64(iy)*w[1]},
				Max: vec2d.T{xlims[0] + float64(ix+1)*w[0], ylims[0] + float64(iy+1)*w[1]},
			})
		}
	}
	return windows, diags
}

// blockGammas runs the estimator once per window, each window writing into
// its own slot, and reports the retained per-window estimates with their pair
// masses and the mean number of observations per retained window. Windows too
// sparse to form a pair are skipped with a diagnostic; a retained window whose
// estimate is not finite fails the whole call.
func blockGammas(est gammaEstimator, windows []vec2d.Rect, lags []vec2d.T) ([][]float64, [][]float64, float64, []Diagnostic, error) {
	type slot struct {
		ghat  []float64
		pairs []float64
		count int
		diags []Diagnostic
	}
	slots := make([]slot, len(windows))

	workers := runtime.NumCPU()
	if workers > len(windows) {
		workers = len(windows)
	}
	jobs := make(chan int)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range jobs {
				rg := windows[i]
				slots[i].count = est.countIn(&rg)
				if slots[i].count < 2 {
					slots[i].diags = []Diagnostic{{
						Code: DiagSparseWindow,
						Message: fmt.Sprintf("window [%g,%g)x[%g,%g) holds %d observations; skipped",
							rg.Min[0], rg.Max[0], rg.Min[1], rg.Max[1], slots[i].count),
					}}
					continue
				}
				slots[i].ghat, slots[i].pairs, slots[i].diags = est.gammas(&rg, lags)
			}
		}()
	}
	for i := range windows {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	var (
		ghats  [][]float64
		pairs  [][]float64
		counts []float64
		diags  []Diagnostic
	)
	for i := range slots {
		diags = append(diags, slots[i].diags...)
		if slots[i].ghat == nil {
			continue
		}
		if !allFinite(slots[i].ghat) {
			return nil, nil, 0, nil, fmt.Errorf("%w: subblock %d", ErrEmptyLagBin, i)
		}
		ghats = append(ghats, slots[i].ghat)
		pairs = append(pairs, slots[i].pairs)
		counts = append(counts, float64(slots[i].count))
	}
	if len(ghats) == 0 {
		return nil, nil, 0, nil, fmt.Errorf("%w: no usable subblocks", ErrSingularSigma)
	}
	return ghats, pairs, stat.Mean(counts, nil), diags, nil
}

// blockCenter is the recentering target: the grand mean of the block
// estimates, or gamma itself under the finite-sample policy.
func blockCenter(ghats [][]float64, gamma []float64, finiteSample bool) []float64 {
	if finiteSample {
		return gamma
	}
	center := make([]float64, len(gamma))
	for _, g := range ghats {
		floats.Add(center, g)
	}
	floats.Scale(1/float64(len(ghats)), center)
	return center
}

// assembleSigma builds the subsampling covariance estimate from the windowed
// deviations, symmetric by construction. A window's estimate at a lag
// converges at the square root of the pair mass behind it, not the window's
// location count, so each deviation entry is standardized by its window-to-
// full-sample pair ratio before the outer products are averaged and restored
// to the n scale:
//
//	Sigma = (n/k) * sum_i u_i u_i^T,  u_i(l) = sqrt(pairs_i(l)/fullPairs(l)) (g_i(l) - center(l))
func assembleSigma(ghats, pairs [][]float64, center, fullPairs []float64, n float64) *mat.SymDense {
	k := len(center)
	sigma := mat.NewSymDense(k, nil)
	scale := n / float64(len(ghats))
	u := make([]float64, k)
	for bi, g := range ghats {
		for l := 0; l < k; l++ {
			u[l] = math.Sqrt(pairs[bi][l]/fullPairs[l]) * (g[l] - center[l])
		}
		for i := 0; i < k; i++ {
			for j := i; j < k; j++ {
				sigma.SetSym(i, j, sigma.At(i, j)+scale*u[i]*u[j])
			}
		}
	}
	return sigma
}
