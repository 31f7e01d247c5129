package carousel

import (
	"github.com/jbeda/geom"

	"carousel-go-migration/pkg/config"
	"carousel-go-migration/pkg/gcode"
	"carousel-go-migration/pkg/log"
)

var logger = log.GetLogger("carousel")

// Defaults for a section's numeric settings. Missing or unparsable
// options fall back to these with a warning, except laser power which
// is a hard error: running the laser at a guessed power is not safe.
const (
	DefaultPower    = 10
	DefaultFeedrate = 1500
	DefaultZ        = 0.0
)

// DefaultSpacings are the production cleaning pass offsets in mm.
func DefaultSpacings() []float64 {
	return []float64{0.10, 0.18, 0.26, 0.34, 0.42}
}

// Section describes one machine section: which pads it cleans, where
// its coordinate origin sits on the table, and the laser settings and
// wrapper text for its program. Callers own the struct; nothing
// downstream mutates it.
type Section struct {
	// Name identifies the section ("1&3", "2")
	Name string

	// Pads lists pad ids in cleaning order
	Pads []string

	// Origin is the section's translation from the machine origin
	Origin geom.Coord

	// Power is the laser power for the M4 directive
	Power int

	// Feedrate in mm/min applied to every cleaning move
	Feedrate int

	// Z is the laser focus height for the initial rapid
	Z float64

	// Preamble and Postscript wrap the generated moves
	Preamble   []string
	Postscript []string
}

// SectionFromConfig reads a section's settings from a config section
// named "section <name>". Numeric settings other than power fall back
// to defaults with a warning when missing or unparsable.
func SectionFromConfig(cfg *config.Config, name string) (*Section, error) {
	sec, err := cfg.GetSection("section " + name)
	if err != nil {
		return nil, err
	}

	pads, err := sec.GetList("pads", ",")
	if err != nil {
		return nil, err
	}

	// Power has no fallback
	power, err := sec.GetInt("power")
	if err != nil {
		return nil, err
	}

	origin, err := sec.GetCoord("origin", defaultOrigin(name))
	if err != nil {
		logger.WithError(err).Warn("invalid origin, using section default")
		origin = defaultOrigin(name)
	}
	feedrate, err := sec.GetInt("feedrate", DefaultFeedrate)
	if err != nil {
		logger.WithError(err).Warn("invalid feedrate, using default")
		feedrate = DefaultFeedrate
	}
	z, err := sec.GetFloat("zlaser", DefaultZ)
	if err != nil {
		logger.WithError(err).Warn("invalid zlaser, using default")
		z = DefaultZ
	}

	preamble, _ := sec.GetLines("preamble", nil)
	postscript, _ := sec.GetLines("postscript", nil)

	return &Section{
		Name:       name,
		Pads:       pads,
		Origin:     origin,
		Power:      power,
		Feedrate:   feedrate,
		Z:          z,
		Preamble:   preamble,
		Postscript: postscript,
	}, nil
}

func defaultOrigin(name string) geom.Coord {
	if name == "2" {
		return geom.Coord{X: 0, Y: 50}
	}
	return geom.Coord{X: 0, Y: -50}
}

// DefaultSections returns the production layout: sections 1 and 3
// share the top origin and one continuous pad run, section 2 sits at
// the bottom origin.
func DefaultSections() []*Section {
	return []*Section{
		{
			Name: "1&3",
			Pads: []string{
				"3-16", "3-15", "3-14", "3-13", "3-12", "3-11", "3-10", "3-9",
				"3-8", "3-7", "3-6", "3-5", "3-4", "3-3", "3-2", "3-1",
				"1-1", "1-2", "1-3", "1-4", "1-5", "1-6", "1-7", "1-8",
				"1-9", "1-10", "1-11", "1-12", "1-13", "1-14", "1-15", "1-16",
			},
			Origin:   geom.Coord{X: 0, Y: -50},
			Power:    DefaultPower,
			Feedrate: DefaultFeedrate,
			Z:        DefaultZ,
			Preamble: []string{
				"; Cleaning G-code for Carousel - top: sections 1 and 3",
				"; Reference points are the bottom outside corners of S3P1 and S1P16",
				"; reference_point1 = (-199.2901, -152.4163)",
				"; reference_point2 = (199.2901, -152.4163)",
				"G90 ; absolute coordinates",
				"G21 ; metric units",
				"G17 ; arcs in XY plane",
			},
			Postscript: []string{"M5", "G0 X0 Y0 Z0"},
		},
		{
			Name: "2",
			Pads: []string{
				"2-1", "2-2", "2-3", "2-4", "2-5", "2-6", "2-7", "2-8",
				"2-9", "2-10", "2-11", "2-12", "2-13", "2-14", "2-15", "2-16",
			},
			Origin:   geom.Coord{X: 0, Y: 50},
			Power:    DefaultPower,
			Feedrate: DefaultFeedrate,
			Z:        DefaultZ,
			Preamble: []string{
				"; Cleaning G-code for Carousel - bottom: section 2",
				"; Reference points are the bottom outside corners of S3P1 and S1P16",
				"; reference_point1 = (-199.2901, -52.4163)",
				"; reference_point2 = (199.2901, -52.4163)",
				"G90 ; absolute coordinates",
				"G21 ; metric units",
				"G17 ; arcs in XY plane",
			},
			Postscript: []string{"M5", "G0 X0 Y0 Z0"},
		},
	}
}

// DefaultTemplate returns the production pad outline as linear
// segments. The two curved pad edges are approximated with three
// points each; the controller handles exact linear moves better than
// arcs whose endpoints land slightly off the true circle.
func DefaultTemplate() gcode.Contour {
	return gcode.Contour{
		linear(224.0336, 3.8105, "G2 arc approx."),
		linear(224.0660, 0.0000, ""),
		linear(224.0336, -3.8105, ""),
		linear(223.94, -7.62, "pt2"),
		linear(213.69, -7.62, "Linear pt2->pt3"),
		linear(213.7960, -3.8107, "G3 arc approx."),
		linear(213.8300, 0.0000, ""),
		linear(213.7960, 3.8107, ""),
		linear(213.69, 7.62, ""),
		linear(223.94, 7.62, "Linear pt4->pt1"),
	}
}

// DefaultArcTemplate returns the same pad outline as two arcs and two
// linear segments, centered on the local origin.
func DefaultArcTemplate() gcode.Contour {
	return gcode.Contour{
		arc(gcode.ArcCW, 223.94, -7.62, 224.066, "CW arc pt1->pt2"),
		linear(213.69, -7.62, "Linear pt2->pt3"),
		arc(gcode.ArcCCW, 213.69, 7.62, 213.83, "CCW arc pt3->pt4"),
		linear(223.94, 7.62, "Linear pt4->pt1"),
	}
}

func linear(x, y float64, comment string) *gcode.Command {
	return &gcode.Command{
		Kind: gcode.Linear,
		X:    x, Y: y,
		HasX: true, HasY: true,
		Comment: comment,
	}
}

func arc(kind gcode.Kind, x, y, radius float64, comment string) *gcode.Command {
	return &gcode.Command{
		Kind: kind,
		X:    x, Y: y,
		HasX: true, HasY: true,
		Radius: radius, HasRadius: true,
		Comment: comment,
	}
}
