package transform

import (
	"strings"

	"github.com/jbeda/geom"

	"carousel-go-migration/pkg/errors"
	"carousel-go-migration/pkg/gcode"
)

// Correct applies a calibration transform to a complete G-code
// program; angle is in radians. Every move line is parsed, its target
// rotated and translated, and re-serialized at 4 decimals. Arcs
// additionally get their I/J center offsets re-derived: the absolute
// arc center is transformed and re-expressed relative to the arc's
// transformed start point. Non-move lines (comments, modal codes,
// M codes) pass through byte-identical. Malformed move lines pass
// through unchanged and are collected into the returned error.
func Correct(program string, angle float64, translation geom.Coord) (string, error) {
	lines := strings.Split(program, "\n")
	out := make([]string, 0, len(lines))
	var errList errors.List

	// Position in the source frame, tracked across lines so a modal
	// rapid or an arc knows its start point.
	last := geom.Coord{}
	for i, line := range lines {
		cmd, ok, err := gcode.ParseLine(line, i+1)
		if err != nil {
			if e, isE := err.(*errors.Error); isE {
				errList.Add(e)
			} else {
				errList.Add(errors.Wrap(err, errors.ErrParseLine, "unexpected parse failure").SetLine(i + 1))
			}
			out = append(out, line)
			continue
		}
		if !ok || (!cmd.HasX && !cmd.HasY) {
			// Not a move, or a Z-only rapid with no XY motion.
			out = append(out, line)
			continue
		}

		out = append(out, correctCommand(cmd, angle, translation, last).Format(4))

		if cmd.HasX {
			last.X = cmd.X
		}
		if cmd.HasY {
			last.Y = cmd.Y
		}
	}

	return strings.Join(out, "\n"), errList.Err()
}

// correctCommand transforms one move. A rapid that omits X or Y
// inherits the tracked coordinate, and both words are emitted on the
// corrected line because rotation couples the axes.
func correctCommand(cmd *gcode.Command, angle float64, translation, start geom.Coord) *gcode.Command {
	end := start
	if cmd.HasX {
		end.X = cmd.X
	}
	if cmd.HasY {
		end.Y = cmd.Y
	}

	moved := cmd.Clone()
	p := Apply(end, angle, translation)
	moved.X, moved.HasX = p.X, true
	moved.Y, moved.HasY = p.Y, true

	// I/J are offsets from the start point, so the absolute center is
	// transformed and re-expressed against the transformed start.
	// R-format radii are rotation-invariant and pass through.
	if cmd.HasCenter {
		center := Apply(start.Plus(geom.Coord{X: cmd.I, Y: cmd.J}), angle, translation)
		offset := center.Minus(Apply(start, angle, translation))
		moved.I, moved.J = offset.X, offset.Y
	}
	return moved
}
