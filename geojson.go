package sptest

import (
	"fmt"

	"github.com/flywave/go-geom"
	"github.com/flywave/go-geom/general"
	"gonum.org/v1/gonum/mat"
)

// SampleFromFeatureCollection flattens Point and MultiPoint features into the
// n x 3 sample matrix the tests consume, reading the observed value from each
// point's third coordinate. Other geometry types are ignored.
func SampleFromFeatureCollection(fc *geom.FeatureCollection) (*mat.Dense, error) {
	var rows []float64
	for _, fea := range fc.Features {
		switch g := fea.Geometry.(type) {
		case *general.Point:
			if len(g.Data()) < 3 {
				return nil, fmt.Errorf("%w: point feature carries no observed value", ErrSampleShape)
			}
			rows = append(rows, g.X(), g.Y(), g.Data()[2])
		case *general.MultiPoint:
			for _, p := range g.Points() {
				if len(p.Data()) < 3 {
					return nil, fmt.Errorf("%w: point feature carries no observed value", ErrSampleShape)
				}
				rows = append(rows, p.X(), p.Y(), p.Data()[2])
			}
		}
	}
	if len(rows) < 4*3 {
		return nil, fmt.Errorf("%w: collection yields %d locations", ErrTooFewLocations, len(rows)/3)
	}
	return mat.NewDense(len(rows)/3, 3, rows), nil
}
