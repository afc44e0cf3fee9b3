package sptest

import (
	"fmt"
	"math"

	vec2d "github.com/flywave/go3d/float64/vec2"
	vec3d "github.com/flywave/go3d/float64/vec3"
)

// gammaEstimator produces one semivariogram estimate per requested lag from
// the observations inside a rectangular region, together with the pair mass
// behind each estimate: the matched-pair count for the lattice design, the
// accumulated kernel weight for the irregular design.
type gammaEstimator interface {
	gammas(rg *vec2d.Rect, lags []vec2d.T) ([]float64, []float64, []Diagnostic)
	countIn(rg *vec2d.Rect) int
}

// gridEstimator averages half squared differences over exact lag matches.
// A non-nil edge correction switches to the boundary-weighted pair sum over
// the region's location count.
type gridEstimator struct {
	idx  *latticeIndex
	edge EdgeCorrection
}

func (e *gridEstimator) countIn(rg *vec2d.Rect) int {
	return e.idx.countIn(rg)
}

func (e *gridEstimator) gammas(rg *vec2d.Rect, lags []vec2d.T) ([]float64, []float64, []Diagnostic) {
	out := make([]float64, len(lags))
	pairs := make([]float64, len(lags))
	var diags []Diagnostic
	n := e.idx.countIn(rg)
	ncols, nrows := e.idx.regionExtent(rg)
	for li, lag := range lags {
		sum := 0.0
		npairs := e.idx.pairsAt(lag, rg, func(z0, z1 float64) {
			sum += 0.5 * pow2(z1-z0)
		})
		pairs[li] = float64(npairs)
		if npairs == 0 {
			out[li] = math.NaN()
			diags = append(diags, Diagnostic{
				Code:    DiagEmptyLagBin,
				Message: fmt.Sprintf("no matchable pairs at lag (%g,%g)", lag[0], lag[1]),
			})
			continue
		}
		if e.edge != nil {
			out[li] = e.edge(lag, ncols, nrows) * sum / float64(n)
			continue
		}
		out[li] = sum / float64(npairs)
	}
	return out, pairs, diags
}

// kernelEstimator averages half squared differences over every pair inside
// the region, weighting each by K(||(u-v)-lag|| / bw). Both orientations of a
// pair are scored so gamma keeps its lag-sign symmetry; the kernel support is
// the only boundary handling this design needs.
type kernelEstimator struct {
	pos    []vec3d.T
	kern   kernelFunc
	bw     float64
	cutoff float64
}

func (e *kernelEstimator) countIn(rg *vec2d.Rect) int {
	return len(pointsIn(e.pos, rg))
}

func (e *kernelEstimator) gammas(rg *vec2d.Rect, lags []vec2d.T) ([]float64, []float64, []Diagnostic) {
	pts := pointsIn(e.pos, rg)
	num := make([]float64, len(lags))
	den := make([]float64, len(lags))
	for i := 0; i < len(pts); i++ {
		for j := i + 1; j < len(pts); j++ {
			ddx := pts[j][0] - pts[i][0]
			ddy := pts[j][1] - pts[i][1]
			half := 0.5 * pow2(pts[j][2]-pts[i][2])
			for li, lag := range lags {
				e.accumulate(ddx-lag[0], ddy-lag[1], half, li, num, den)
				e.accumulate(-ddx-lag[0], -ddy-lag[1], half, li, num, den)
			}
		}
	}
	out := make([]float64, len(lags))
	var diags []Diagnostic
	for li, lag := range lags {
		if den[li] == 0 {
			out[li] = math.NaN()
			diags = append(diags, Diagnostic{
				Code:    DiagEmptyLagBin,
				Message: fmt.Sprintf("kernel support is empty at lag (%g,%g)", lag[0], lag[1]),
			})
			continue
		}
		out[li] = num[li] / den[li]
	}
	return out, den, diags
}

func (e *kernelEstimator) accumulate(gx, gy, half float64, li int, num, den []float64) {
	gap := math.Hypot(gx, gy)
	if e.cutoff > 0 && gap > e.cutoff {
		return
	}
	w := e.kern(gap / e.bw)
	num[li] += w * half
	den[li] += w
}
