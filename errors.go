package sptest

import "errors"

var (
	ErrInvalidSpacing  = errors.New("sptest: grid spacing must be positive")
	ErrSampleShape     = errors.New("sptest: sample matrix must have exactly 3 columns")
	ErrTooFewLocations = errors.New("sptest: need at least 4 sampling locations")
	ErrNonFiniteCoord  = errors.New("sptest: sampling coordinates must be finite")
	ErrDuplicateCell   = errors.New("sptest: multiple observations on the same lattice cell")
	ErrLagShape        = errors.New("sptest: lag matrix must have exactly 2 columns")
	ErrContrastShape   = errors.New("sptest: contrast columns must match the number of lags")
	ErrContrastRank    = errors.New("sptest: declared contrast rank must lie in [1, rows(A)]")
	ErrWindowDims      = errors.New("sptest: window dimensions must be positive and smaller than the domain extent")
	ErrDomainLims      = errors.New("sptest: domain limits must span a positive extent")
	ErrBandwidth       = errors.New("sptest: kernel bandwidth must be positive")
	ErrUnknownKernel   = errors.New("sptest: unknown smoothing kernel")
	ErrEmptyLagBin     = errors.New("sptest: no matchable pairs at requested lag")
	ErrDegenerateGamma = errors.New("sptest: semivariogram estimate is not finite")
	ErrSingularSigma   = errors.New("sptest: contrast covariance matrix is singular")
)
