package sptest

import (
	"fmt"
	"math"
)

type kernelFunc func(u float64) float64

func kernelNormal(u float64) float64 {
	return math.Exp(-0.5 * u * u)
}

func kernelEpanechnikov(u float64) float64 {
	if u > 1 {
		return 0
	}
	return 1 - u*u
}

func kernelCosine(u float64) float64 {
	if u > 1 {
		return 0
	}
	return math.Cos(math.Pi * u / 2)
}

func kernelUniform(u float64) float64 {
	if u > 1 {
		return 0
	}
	return 1
}

func kernelFor(k KernelType) (kernelFunc, error) {
	switch k {
	case Normal:
		return kernelNormal, nil
	case Epanechnikov:
		return kernelEpanechnikov, nil
	case Cosine:
		return kernelCosine, nil
	case Uniform:
		return kernelUniform, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKernel, k)
}
