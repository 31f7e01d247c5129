// Package transform applies rigid transforms (rotation about the
// origin followed by translation) to motion commands: once at
// generation time to place a pad's passes at a carousel slot, and
// again at calibration time to correct a whole program.
package transform

import (
	"math"

	"github.com/jbeda/geom"

	"carousel-go-migration/pkg/gcode"
	"carousel-go-migration/pkg/geometry"
)

// Rotate rotates a point about the coordinate origin by the given
// angle in radians, right-handed.
func Rotate(p geom.Coord, angle float64) geom.Coord {
	sin, cos := math.Sincos(angle)
	return geom.Coord{
		X: p.X*cos - p.Y*sin,
		Y: p.X*sin + p.Y*cos,
	}
}

// Apply rotates a point about the origin and then translates it.
func Apply(p geom.Coord, angle float64, translation geom.Coord) geom.Coord {
	return Rotate(p, angle).Plus(translation)
}

// Place transforms a template command to its slot position: the
// endpoint is rotated by the slot's yaw angle and translated by the
// section origin, landing on the 3-decimal grid. R-format arc radii
// are rotation-invariant and pass through unchanged.
//
// Template arcs are centered on the coordinate origin in the pad's
// local frame, so the placed arc center is the translation itself; a
// point at the origin is unmoved by rotation.
func Place(cmd *gcode.Command, yawDeg float64, origin geom.Coord) *gcode.Command {
	placed := cmd.Clone()
	p := Apply(cmd.Target(), yawDeg*math.Pi/180, origin)
	placed.X = geometry.Round3(p.X)
	placed.Y = geometry.Round3(p.Y)
	return placed
}

// PlaceContour transforms every command of a pass contour.
func PlaceContour(ct gcode.Contour, yawDeg float64, origin geom.Coord) gcode.Contour {
	placed := make(gcode.Contour, len(ct))
	for i, cmd := range ct {
		placed[i] = Place(cmd, yawDeg, origin)
	}
	return placed
}
