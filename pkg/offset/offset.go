// Package offset builds the cleaning passes for a pad: each pass is
// the pad outline buffered outward by a spacing, re-expressed as the
// same command sequence with adjusted coordinates and arc radii.
package offset

import (
	"fmt"

	"carousel-go-migration/pkg/errors"
	"carousel-go-migration/pkg/gcode"
	"carousel-go-migration/pkg/geometry"
	"carousel-go-migration/pkg/log"
)

var logger = log.GetLogger("offset")

// Pass is one cleaning loop at a fixed outward offset from the pad
// outline.
type Pass struct {
	// Offset is the buffer distance in mm
	Offset float64

	// Commands traces the buffered outline, one command per template
	// command
	Commands gcode.Contour
}

// Passes buffers the pad template by each spacing in order. Every pass
// keeps the template's command count, kinds, and comments; only the
// coordinates and arc radii change. Coordinates land on the 3-decimal
// grid.
func Passes(template gcode.Contour, spacings []float64) ([]Pass, error) {
	if len(template) < 3 {
		return nil, errors.DegenerateError(fmt.Sprintf("pad template has %d commands, need at least 3", len(template)))
	}

	source := geometry.Polygon(template.Points())
	passes := make([]Pass, 0, len(spacings))

	for _, spacing := range spacings {
		buffered, err := source.Buffer(spacing)
		if err != nil {
			return nil, err
		}
		buffered = buffered.RoundTo3()
		if len(buffered) != len(template) {
			return nil, errors.VertexCountError(len(template), len(buffered))
		}

		pass := Pass{Offset: spacing, Commands: make(gcode.Contour, len(template))}
		for i, cmd := range template {
			moved := cmd.Clone()
			moved.X = buffered[i].X
			moved.Y = buffered[i].Y
			if cmd.Kind.IsArc() && cmd.HasRadius {
				moved.Radius = geometry.Round3(adjustRadius(cmd.Kind, cmd.Radius, spacing))
				if moved.Radius <= 0 {
					return nil, errors.RadiusError(moved.Radius)
				}
			}
			pass.Commands[i] = moved
		}

		downgraded := downgradeInfeasibleArcs(pass.Commands, spacing)
		passes = append(passes, pass)

		logger.WithFields(log.Fields{
			"offset":     spacing,
			"vertices":   len(buffered),
			"downgraded": downgraded,
		}).Debug("buffered cleaning pass")
	}

	return passes, nil
}

// adjustRadius grows CW arc radii and shrinks CCW arc radii on outward
// expansion: the pad's outer edge is a G2 and its inner edge a G3, so
// both move away from the carousel center.
func adjustRadius(kind gcode.Kind, radius, spacing float64) float64 {
	if kind == gcode.ArcCW {
		return radius + spacing
	}
	return radius - spacing
}

// downgradeInfeasibleArcs replaces every R-format arc that cannot span
// its chord with a straight segment between the same endpoints, and
// returns how many were downgraded. The start of command i is the
// target of command i-1, with the last command feeding the first.
func downgradeInfeasibleArcs(ct gcode.Contour, spacing float64) int {
	n := len(ct)
	downgraded := 0
	for i, cmd := range ct {
		if !cmd.Kind.IsArc() || !cmd.HasRadius {
			continue
		}
		start := ct[(i+n-1)%n].Target()
		if err := geometry.ValidateArc(start, cmd.Target(), cmd.Radius); err != nil {
			logger.WithFields(log.Fields{
				"offset": spacing,
				"index":  i,
				"radius": cmd.Radius,
			}).Warn("arc cannot span its chord, downgrading to a straight segment")
			cmd.Kind = gcode.Linear
			cmd.Radius = 0
			cmd.HasRadius = false
			downgraded++
		}
	}
	return downgraded
}
