package geometry

import (
	"math"

	"github.com/jbeda/geom"

	"carousel-go-migration/pkg/errors"
)

// ArcCenter computes the center of an R-format arc from its start and
// end points. The chord midpoint is pushed along the chord's
// perpendicular by sqrt(r² − (chord/2)²); clockwise arcs take one side
// and counter-clockwise arcs the other, matching GRBL's choice.
func ArcCenter(start, end geom.Coord, radius float64, cw bool) (geom.Coord, error) {
	if radius <= 0 {
		return geom.Coord{}, errors.RadiusError(radius)
	}

	d := end.Minus(start)
	chord := math.Hypot(d.X, d.Y)
	if chord == 0 {
		return geom.Coord{}, errors.DegenerateError("arc start and end points coincide")
	}
	if chord > 2*radius {
		return geom.Coord{}, errors.ArcError(chord, radius)
	}

	mid := geom.Coord{X: (start.X + end.X) / 2, Y: (start.Y + end.Y) / 2}
	h := math.Sqrt(radius*radius - (chord/2)*(chord/2))
	perp := geom.Coord{X: -d.Y / chord, Y: d.X / chord}

	if cw {
		return mid.Minus(perp.Times(h)), nil
	}
	return mid.Plus(perp.Times(h)), nil
}

// ValidateArc reports whether an arc of the given radius can span the
// start and end points. The winding does not matter for feasibility,
// only whether a center exists.
func ValidateArc(start, end geom.Coord, radius float64) error {
	_, err := ArcCenter(start, end, radius, true)
	return err
}
