// Package calibrate solves for the rigid transform between a
// generated toolpath's expected frame and the machine's measured
// frame, from fiducial points probed on the carousel rim.
package calibrate

import (
	"math"

	"github.com/jbeda/geom"

	"carousel-go-migration/pkg/errors"
	"carousel-go-migration/pkg/log"
)

var logger = log.GetLogger("calibrate")

// Result is a one-shot correction: rotate the program by Rotation
// about the origin, then translate by Center.
type Result struct {
	// Center is the measured carousel center in machine coordinates
	Center geom.Coord

	// Rotation is the measured yaw misalignment in radians
	Rotation float64

	// Degraded is set when the fiducial chord exceeded the expected
	// diameter and the radius was replaced by half the chord
	Degraded bool

	// Residuals holds each fiducial's distance-from-center error
	// against the expected radius, in input order
	Residuals []float64
}

// RotationDegrees returns the rotation in degrees for reporting.
func (r *Result) RotationDegrees() float64 {
	return r.Rotation * 180 / math.Pi
}

// TwoPoint computes the correction from two fiducials: the expected
// points as generated, and the matching actual points as probed.
//
// The two actual points are treated as a chord of the carousel rim
// circle. The center sits on the chord's perpendicular bisector at
// sqrt(r² − (chord/2)²) from the midpoint, on the side away from the
// rim (the fiducials sit below the carousel axis, so the center is
// taken on the +(-dy, dx) side of the chord direction). The rotation
// is the signed angle from the expected chord direction to the actual
// one.
func TwoPoint(expected, actual [2]geom.Coord) (*Result, error) {
	eChord := expected[1].Minus(expected[0])
	aChord := actual[1].Minus(actual[0])

	eLen := math.Hypot(eChord.X, eChord.Y)
	aLen := math.Hypot(aChord.X, aChord.Y)
	if eLen == 0 || aLen == 0 {
		return nil, errors.ChordError(0, 0)
	}

	// Each fiducial's expected distance from the carousel axis.
	radius := (distFromOrigin(expected[0]) + distFromOrigin(expected[1])) / 2
	if radius == 0 {
		return nil, errors.New(errors.ErrCalibrateChord, "expected fiducials coincide with the origin")
	}

	// Chord longer than the diameter: no circle of the expected
	// radius passes through both points. Degrade to the half-chord
	// radius, which puts the center on the chord midpoint.
	degraded := false
	if aLen > 2*radius {
		logger.WithField("chord", aLen).
			WithField("radius", radius).
			Warn("fiducial chord exceeds expected diameter, degrading to half-chord radius")
		radius = aLen / 2
		degraded = true
	}

	mid := geom.Coord{X: (actual[0].X + actual[1].X) / 2, Y: (actual[0].Y + actual[1].Y) / 2}
	h := math.Sqrt(radius*radius - (aLen/2)*(aLen/2))
	perp := geom.Coord{X: -aChord.Y / aLen, Y: aChord.X / aLen}
	center := mid.Plus(perp.Times(h))

	// Signed angle from expected to actual chord direction.
	cross := eChord.X*aChord.Y - eChord.Y*aChord.X
	dot := eChord.X*aChord.X + eChord.Y*aChord.Y
	rotation := math.Atan2(cross, dot)

	res := &Result{
		Center:   center,
		Rotation: rotation,
		Degraded: degraded,
		Residuals: []float64{
			actual[0].DistanceFrom(center) - radius,
			actual[1].DistanceFrom(center) - radius,
		},
	}

	logger.WithField("center_x", center.X).
		WithField("center_y", center.Y).
		WithField("rotation_deg", res.RotationDegrees()).
		Info("two-point calibration solved")

	return res, nil
}

func distFromOrigin(p geom.Coord) float64 {
	return math.Hypot(p.X, p.Y)
}
