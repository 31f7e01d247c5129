package gcode

import (
	"github.com/jbeda/geom"

	"carousel-go-migration/pkg/geometry"
)

// Contour is a closed pad outline traced by a move sequence. The last
// command's target is the start point of the first, so the command
// targets alone enumerate the polygon vertices.
type Contour []*Command

// Points returns the polygon vertices in command order, rounded to the
// 3-decimal grid used for pass geometry.
func (ct Contour) Points() []geom.Coord {
	pts := make([]geom.Coord, 0, len(ct))
	for _, cmd := range ct {
		pts = append(pts, geom.Coord{
			X: geometry.Round3(cmd.X),
			Y: geometry.Round3(cmd.Y),
		})
	}
	return pts
}

// Clone returns a deep copy of the contour.
func (ct Contour) Clone() Contour {
	dup := make(Contour, len(ct))
	for i, cmd := range ct {
		dup[i] = cmd.Clone()
	}
	return dup
}

// Start returns the entry point of the contour, which is the target of
// its final command.
func (ct Contour) Start() geom.Coord {
	if len(ct) == 0 {
		return geom.Coord{}
	}
	return ct[len(ct)-1].Target()
}
