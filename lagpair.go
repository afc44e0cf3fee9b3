package sptest

import (
	"fmt"
	"math"

	vec2d "github.com/flywave/go3d/float64/vec2"
	vec3d "github.com/flywave/go3d/float64/vec3"
)

type cellKey struct {
	x, y int
}

// latticeIndex locates lattice observations by their integer cell so that
// matching a lag is a single lookup instead of a scan. Regions are half-open
// rectangles over the normalized coordinates; a nil region means the whole
// sample.
type latticeIndex struct {
	pos   []vec3d.T
	cells map[cellKey]int
	min   cellKey
	max   cellKey
}

func newLatticeIndex(pos []vec3d.T) (*latticeIndex, error) {
	idx := &latticeIndex{
		pos:   pos,
		cells: make(map[cellKey]int, len(pos)),
	}
	for i := range pos {
		k := cellKey{
			x: int(math.Round(pos[i][0])),
			y: int(math.Round(pos[i][1])),
		}
		if _, dup := idx.cells[k]; dup {
			return nil, fmt.Errorf("%w: cell (%d,%d)", ErrDuplicateCell, k.x, k.y)
		}
		if i == 0 {
			idx.min, idx.max = k, k
		}
		if k.x < idx.min.x {
			idx.min.x = k.x
		}
		if k.y < idx.min.y {
			idx.min.y = k.y
		}
		if k.x > idx.max.x {
			idx.max.x = k.x
		}
		if k.y > idx.max.y {
			idx.max.y = k.y
		}
		idx.cells[k] = i
	}
	return idx, nil
}

// extent reports the number of grid columns and rows covered by the sample.
func (idx *latticeIndex) extent() (ncols, nrows int) {
	return idx.max.x - idx.min.x + 1, idx.max.y - idx.min.y + 1
}

// regionExtent reports the columns and rows of rg, or of the whole sample
// when rg is nil.
func (idx *latticeIndex) regionExtent(rg *vec2d.Rect) (ncols, nrows int) {
	if rg == nil {
		return idx.extent()
	}
	return int(math.Round(rg.Max[0] - rg.Min[0])), int(math.Round(rg.Max[1] - rg.Min[1]))
}

func inRect(rg *vec2d.Rect, x, y float64) bool {
	if rg == nil {
		return true
	}
	return x >= rg.Min[0] && x < rg.Max[0] && y >= rg.Min[1] && y < rg.Max[1]
}

// countIn reports how many observations fall inside rg.
func (idx *latticeIndex) countIn(rg *vec2d.Rect) int {
	if rg == nil {
		return len(idx.pos)
	}
	n := 0
	for i := range idx.pos {
		if inRect(rg, idx.pos[i][0], idx.pos[i][1]) {
			n++
		}
	}
	return n
}

// pairsAt visits every value pair (Z(s), Z(s+lag)) with both s and s+lag
// observed inside rg. The visit order follows the sample order of s.
func (idx *latticeIndex) pairsAt(lag vec2d.T, rg *vec2d.Rect, visit func(z0, z1 float64)) int {
	dx := int(math.Round(lag[0]))
	dy := int(math.Round(lag[1]))
	npairs := 0
	for i := range idx.pos {
		if !inRect(rg, idx.pos[i][0], idx.pos[i][1]) {
			continue
		}
		k := cellKey{
			x: int(math.Round(idx.pos[i][0])) + dx,
			y: int(math.Round(idx.pos[i][1])) + dy,
		}
		j, ok := idx.cells[k]
		if !ok || !inRect(rg, idx.pos[j][0], idx.pos[j][1]) {
			continue
		}
		visit(idx.pos[i][2], idx.pos[j][2])
		npairs++
	}
	return npairs
}

// pointsIn returns the observations inside rg, preserving sample order.
func pointsIn(pos []vec3d.T, rg *vec2d.Rect) []vec3d.T {
	if rg == nil {
		return pos
	}
	out := make([]vec3d.T, 0, len(pos))
	for i := range pos {
		if inRect(rg, pos[i][0], pos[i][1]) {
			out = append(out, pos[i])
		}
	}
	return out
}
