package sptest

import (
	"fmt"

	vec3d "github.com/flywave/go3d/float64/vec3"
)

// normalizeCoordinates maps the sampling lattice onto unit spacing by
// dividing x and y by delta. The value column is untouched.
func normalizeCoordinates(pos []vec3d.T, delta float64) ([]vec3d.T, error) {
	if delta <= 0 {
		return nil, fmt.Errorf("%w: delta=%v", ErrInvalidSpacing, delta)
	}
	out := make([]vec3d.T, len(pos))
	for i := range pos {
		out[i] = vec3d.T{pos[i][0] / delta, pos[i][1] / delta, pos[i][2]}
	}
	return out, nil
}
