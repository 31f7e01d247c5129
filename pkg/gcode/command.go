// Package gcode provides the motion command model for the carousel
// cleaning toolpaths: parsing G0/G1/G2/G3 move lines into structured
// commands and serializing them back to G-code text.
package gcode

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jbeda/geom"
)

// Kind identifies the motion type of a command.
type Kind int

const (
	Rapid  Kind = iota // G0
	Linear             // G1
	ArcCW              // G2, clockwise arc
	ArcCCW             // G3, counter-clockwise arc
)

// String returns the G-code word for the kind.
func (k Kind) String() string {
	switch k {
	case Rapid:
		return "G0"
	case Linear:
		return "G1"
	case ArcCW:
		return "G2"
	case ArcCCW:
		return "G3"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// IsArc reports whether the kind is a circular move.
func (k Kind) IsArc() bool {
	return k == ArcCW || k == ArcCCW
}

// Command is a single parsed move. Optional words carry a presence
// flag so a missing coordinate is distinguishable from zero.
type Command struct {
	Kind Kind

	// Target coordinates
	X, Y       float64
	HasX, HasY bool

	// Z height, used by rapid moves to the laser focus plane
	Z    float64
	HasZ bool

	// Arc radius (R-format arcs)
	Radius    float64
	HasRadius bool

	// Arc center offsets relative to the start point (I/J-format arcs)
	I, J      float64
	HasCenter bool

	// Feedrate in mm/min
	Feed    float64
	HasFeed bool

	// Trailing ; comment, without the separator
	Comment string
}

// Target returns the command's XY target point.
func (c *Command) Target() geom.Coord {
	return geom.Coord{X: c.X, Y: c.Y}
}

// Clone returns a copy of the command.
func (c *Command) Clone() *Command {
	dup := *c
	return &dup
}

// Format serializes the command as a G-code line with the given
// coordinate precision. Word order follows the generator output:
// X, Y, Z, F, then R or I/J, then the comment.
func (c *Command) Format(prec int) string {
	var b strings.Builder
	b.WriteString(c.Kind.String())
	if c.HasX {
		fmt.Fprintf(&b, " X%.*f", prec, c.X)
	}
	if c.HasY {
		fmt.Fprintf(&b, " Y%.*f", prec, c.Y)
	}
	if c.HasZ {
		fmt.Fprintf(&b, " Z%.*f", prec, c.Z)
	}
	if c.HasFeed {
		b.WriteString(" F")
		b.WriteString(strconv.FormatFloat(c.Feed, 'f', -1, 64))
	}
	if c.HasRadius {
		fmt.Fprintf(&b, " R%.*f", prec, c.Radius)
	} else if c.HasCenter {
		fmt.Fprintf(&b, " I%.*f J%.*f", prec, c.I, prec, c.J)
	}
	if c.Comment != "" {
		b.WriteString(" ; ")
		b.WriteString(c.Comment)
	}
	return b.String()
}

// String serializes the command with the standard 4-decimal precision
// used for emitted programs.
func (c *Command) String() string {
	return c.Format(4)
}
