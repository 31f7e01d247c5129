// Package geometry implements the planar math behind the cleaning
// passes: polygon orientation, mitre-join offsetting, and arc center
// construction.
package geometry

import (
	"math"

	"github.com/jbeda/geom"

	"carousel-go-migration/pkg/errors"
)

// Round3 rounds to the 3-decimal grid used for pass geometry.
func Round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// Round4 rounds to the 4-decimal grid used for emitted coordinates.
func Round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

// Polygon is a closed polygon given by its vertices in order. The
// closing edge from the last vertex back to the first is implicit.
type Polygon []geom.Coord

// SignedArea returns the shoelace area, positive for counter-clockwise
// winding.
func (p Polygon) SignedArea() float64 {
	area := 0.0
	n := len(p)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		area += p[i].X*p[j].Y - p[j].X*p[i].Y
	}
	return area / 2
}

// IsCCW reports whether the polygon winds counter-clockwise.
func (p Polygon) IsCCW() bool {
	return p.SignedArea() > 0
}

// Buffer offsets every edge of the polygon outward by the given
// distance and rebuilds each vertex as the intersection of its two
// adjacent offset edges (a mitre join). The result has exactly one
// vertex per input vertex, at the same index.
//
// A negative distance shrinks the polygon. Orientation does not have
// to be normalized first: outward is derived from the winding.
func (p Polygon) Buffer(distance float64) (Polygon, error) {
	n := len(p)
	if n < 3 {
		return nil, errors.DegenerateError("polygon needs at least 3 vertices")
	}

	// Outward for CCW winding is the right-hand normal. For CW input
	// flip the sign so positive distance still expands.
	sign := 1.0
	if !p.IsCCW() {
		sign = -1.0
	}

	result := make(Polygon, n)
	for i := 0; i < n; i++ {
		prev := p[(i+n-1)%n]
		curr := p[i]
		next := p[(i+1)%n]

		d1 := curr.Minus(prev)
		d2 := next.Minus(curr)
		l1 := math.Hypot(d1.X, d1.Y)
		l2 := math.Hypot(d2.X, d2.Y)
		if l1 == 0 || l2 == 0 {
			return nil, errors.DegenerateError("polygon has a zero-length edge")
		}

		// Right-hand normals of the incoming and outgoing edges.
		n1 := geom.Coord{X: d1.Y / l1, Y: -d1.X / l1}
		n2 := geom.Coord{X: d2.Y / l2, Y: -d2.X / l2}
		off := sign * distance

		// Offset edge lines: prev+n1*off along d1, curr+n2*off along d2.
		a := prev.Plus(n1.Times(off))
		b := curr.Plus(n2.Times(off))

		cross := d1.X*d2.Y - d1.Y*d2.X
		if math.Abs(cross) < 1e-12*l1*l2 {
			if d1.X*d2.X+d1.Y*d2.Y < 0 {
				// Anti-parallel edges: the contour doubles back on
				// itself and no finite mitre exists.
				return nil, errors.DegenerateError("polygon reverses direction at a vertex")
			}
			// Same-direction collinear edges share a normal; the
			// vertex just shifts.
			result[i] = curr.Plus(n1.Times(off))
			continue
		}

		// Solve a + t*d1 = b + s*d2 for t.
		t := ((b.X-a.X)*d2.Y - (b.Y-a.Y)*d2.X) / cross
		result[i] = geom.Coord{X: a.X + t*d1.X, Y: a.Y + t*d1.Y}
	}

	return result, nil
}

// RoundTo3 returns a copy of the polygon with every coordinate on the
// 3-decimal grid.
func (p Polygon) RoundTo3() Polygon {
	result := make(Polygon, len(p))
	for i, pt := range p {
		result[i] = geom.Coord{X: Round3(pt.X), Y: Round3(pt.Y)}
	}
	return result
}
