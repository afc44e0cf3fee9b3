package sptest

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// contrastQuadForm evaluates (A g)^T inv (A g).
func contrastQuadForm(A, inv *mat.Dense, g []float64) float64 {
	d, k := A.Dims()
	ag := mat.NewVecDense(d, nil)
	ag.MulVec(A, mat.NewVecDense(k, g))
	var tmp mat.VecDense
	tmp.MulVec(inv, ag)
	return mat.Dot(ag, &tmp)
}

// testStatistics forms the contrast statistic T = n (A gamma)^T (A Sigma A^T)^-1 (A gamma),
// the per-block statistics T_i = b (A g_i)^T (A Sigma A^T)^-1 (A g_i), the
// empirical tail probability of T under the subsampling distribution, and the
// chi-squared upper tail at T with df degrees of freedom.
func testStatistics(gamma []float64, sigma *mat.SymDense, blocks [][]float64, A *mat.Dense, df int, b, n float64) (tstat, pfinite, pchisq float64, err error) {
	if !allFinite(gamma) {
		return 0, 0, 0, fmt.Errorf("%w: gamma.hat=%v", ErrDegenerateGamma, gamma)
	}

	var asa mat.Dense
	asa.Product(A, sigma, A.T())
	var inv mat.Dense
	if invErr := inv.Inverse(&asa); invErr != nil {
		return 0, 0, 0, fmt.Errorf("%w: %v", ErrSingularSigma, invErr)
	}

	tstat = n * contrastQuadForm(A, &inv, gamma)

	ge := 0
	for _, g := range blocks {
		if b*contrastQuadForm(A, &inv, g) >= tstat {
			ge++
		}
	}
	pfinite = float64(ge) / float64(len(blocks))
	pchisq = distuv.ChiSquared{K: float64(df)}.Survival(tstat)
	return tstat, pfinite, pchisq, nil
}
