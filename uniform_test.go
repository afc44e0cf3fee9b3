package sptest

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"
)

func uniformSample(n int, xmax, ymax float64, rng *rand.Rand) *mat.Dense {
	data := make([]float64, 0, n*3)
	for i := 0; i < n; i++ {
		data = append(data, xmax*rng.Float64(), ymax*rng.Float64(), rng.NormFloat64())
	}
	return mat.NewDense(n, 3, data)
}

// correlatedSample draws one realization of a mean-zero Gaussian field with
// exponential covariance exp(-dist/rangePar) at n uniform locations.
func correlatedSample(n int, xmax, ymax, rangePar float64, rng *rand.Rand) *mat.Dense {
	xs := make([]float64, n)
	ys := make([]float64, n)
	for i := 0; i < n; i++ {
		xs[i] = xmax * rng.Float64()
		ys[i] = ymax * rng.Float64()
	}
	cov := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			d := math.Hypot(xs[i]-xs[j], ys[i]-ys[j])
			cov.SetSym(i, j, math.Exp(-d/rangePar))
		}
	}
	field, ok := distmv.NewNormal(make([]float64, n), cov, rng)
	if !ok {
		panic("covariance not positive definite")
	}
	z := field.Rand(nil)

	data := make([]float64, 0, n*3)
	for i := 0; i < n; i++ {
		data = append(data, xs[i], ys[i], z[i])
	}
	return mat.NewDense(n, 3, data)
}

func twoLags() *mat.Dense {
	return mat.NewDense(2, 2, []float64{1, 0, 0, 1})
}

func TestUniformIsotropyEndToEnd(t *testing.T) {
	a := assert.New(t)

	spdata := uniformSample(150, 12, 12, rand.New(rand.NewSource(101)))
	res, err := UniformIsotropyTest(spdata, UniformOptions{
		Lags:        twoLags(),
		Contrast:    mat.NewDense(1, 2, []float64{1, -1}),
		Df:          1,
		Bandwidth:   0.8,
		Kernel:      Normal,
		XLims:       [2]float64{0, 12},
		YLims:       [2]float64{0, 12},
		GridSpacing: [2]float64{1, 1},
		WindowDims:  [2]int{3, 3},
	})
	require.NoError(t, err)

	a.LessOrEqual(res.NSubblocks, 16)
	a.GreaterOrEqual(res.NSubblocks, 14)
	a.Len(res.GammaHat, 2)
	for _, g := range res.GammaHat {
		a.InDelta(1.0, g.Gamma, 0.5)
	}
	a.True(res.PValueFinite >= 0 && res.PValueFinite <= 1)
	a.True(res.PValueChiSq >= 0 && res.PValueChiSq <= 1)
}

func TestUniformIsotropyKernels(t *testing.T) {
	a := assert.New(t)

	spdata := uniformSample(120, 10, 10, rand.New(rand.NewSource(55)))
	for _, k := range []KernelType{Normal, Epanechnikov, Cosine, Uniform} {
		res, err := UniformIsotropyTest(spdata, UniformOptions{
			Lags:        twoLags(),
			Contrast:    mat.NewDense(1, 2, []float64{1, -1}),
			Df:          1,
			Bandwidth:   1.2,
			Kernel:      k,
			XLims:       [2]float64{0, 10},
			YLims:       [2]float64{0, 10},
			GridSpacing: [2]float64{1, 1},
			WindowDims:  [2]int{5, 5},
		})
		require.NoError(t, err, "kernel %s", k)
		a.True(res.PValueChiSq >= 0 && res.PValueChiSq <= 1)
	}
}

func TestUniformIsotropyCorrelatedField(t *testing.T) {
	a := assert.New(t)

	spdata := correlatedSample(80, 10, 10, 2, rand.New(rand.NewSource(23)))
	res, err := UniformIsotropyTest(spdata, UniformOptions{
		Lags:              twoLags(),
		Contrast:          mat.NewDense(1, 2, []float64{1, -1}),
		Df:                1,
		Bandwidth:         1.0,
		Kernel:            Normal,
		Truncation:        1.5,
		XLims:             [2]float64{0, 10},
		YLims:             [2]float64{0, 10},
		GridSpacing:       [2]float64{1, 1},
		WindowDims:        [2]int{4, 4},
		SubblockBandwidth: 1.2,
		FiniteSampleSigma: true,
	})
	require.NoError(t, err)

	// An exponential field has gamma strictly between 0 and the unit sill
	// at a one-unit lag.
	for _, g := range res.GammaHat {
		a.Greater(g.Gamma, 0.0)
		a.Less(g.Gamma, 1.5)
	}
	a.True(res.PValueChiSq >= 0 && res.PValueChiSq <= 1)
}

func TestUniformIsotropyValidation(t *testing.T) {
	a := assert.New(t)

	spdata := uniformSample(20, 10, 10, rand.New(rand.NewSource(2)))
	base := UniformOptions{
		Lags:        twoLags(),
		Contrast:    mat.NewDense(1, 2, []float64{1, -1}),
		Df:          1,
		Bandwidth:   1,
		Kernel:      Normal,
		XLims:       [2]float64{0, 10},
		YLims:       [2]float64{0, 10},
		GridSpacing: [2]float64{1, 1},
		WindowDims:  [2]int{4, 4},
	}

	opts := base
	opts.Bandwidth = 0
	_, err := UniformIsotropyTest(spdata, opts)
	a.ErrorIs(err, ErrBandwidth)

	opts = base
	opts.Kernel = KernelType("triangular")
	_, err = UniformIsotropyTest(spdata, opts)
	a.ErrorIs(err, ErrUnknownKernel)

	opts = base
	opts.XLims = [2]float64{10, 0}
	_, err = UniformIsotropyTest(spdata, opts)
	a.ErrorIs(err, ErrDomainLims)

	opts = base
	opts.WindowDims = [2]int{20, 4}
	_, err = UniformIsotropyTest(spdata, opts)
	a.ErrorIs(err, ErrWindowDims)

	opts = base
	opts.GridSpacing = [2]float64{0, 1}
	_, err = UniformIsotropyTest(spdata, opts)
	a.ErrorIs(err, ErrWindowDims)
}
