package sptest

import (
	"math"
)

func pow2(x float64) float64 {
	return x * x
}

func allFinite(xs []float64) bool {
	for _, x := range xs {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}
