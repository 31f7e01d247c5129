package transform

import (
	"math"
	"strings"
	"testing"

	"github.com/jbeda/geom"

	"carousel-go-migration/pkg/errors"
)

func correct(t *testing.T, program string, angle float64, translation geom.Coord) string {
	t.Helper()
	got, err := Correct(program, angle, translation)
	if err != nil {
		t.Fatalf("Correct failed: %v", err)
	}
	return got
}

func TestCorrectIdentity(t *testing.T) {
	program := strings.Join([]string{
		"; Cleaning G-code for Carousel",
		"G90",
		"G0 X10.0000 Y20.0000",
		"G1 X30.0000 Y40.0000 F1500",
		"M5",
	}, "\n")

	got := correct(t, program, 0, geom.Coord{})
	if got != program {
		t.Errorf("identity transform changed program:\n got %q\nwant %q", got, program)
	}
}

func TestCorrectTranslationOnly(t *testing.T) {
	got := correct(t, "G1 X1.0000 Y2.0000 F1500", 0, geom.Coord{X: 0.5, Y: -0.25})
	if got != "G1 X1.5000 Y1.7500 F1500" {
		t.Errorf("unexpected line: %q", got)
	}
}

func TestCorrectRotation(t *testing.T) {
	got := correct(t, "G1 X10.0000 Y0.0000", math.Pi/2, geom.Coord{})
	if got != "G1 X0.0000 Y10.0000" && got != "G1 X-0.0000 Y10.0000" {
		t.Errorf("unexpected line: %q", got)
	}
}

func TestCorrectKeepsNonMoveLinesIntact(t *testing.T) {
	program := strings.Join([]string{
		"; reference_point1 = (-199.2901, -152.4163)",
		"G21 ; metric units",
		"M4 S20",
		"G28 X0 Y0",
		"G0 X1.0000 Y1.0000",
	}, "\n")

	got := strings.Split(correct(t, program, 0.3, geom.Coord{X: 1, Y: 2}), "\n")
	if got[0] != "; reference_point1 = (-199.2901, -152.4163)" {
		t.Errorf("comment line changed: %q", got[0])
	}
	if got[1] != "G21 ; metric units" {
		t.Errorf("modal line changed: %q", got[1])
	}
	if got[2] != "M4 S20" {
		t.Errorf("M-code line changed: %q", got[2])
	}
	if got[3] != "G28 X0 Y0" {
		t.Errorf("homing line changed: %q", got[3])
	}
}

func TestCorrectLeavesCommentCoordinatesAlone(t *testing.T) {
	// A coordinate-looking word inside the comment must survive while
	// the real X word moves.
	got := correct(t, "G1 X10.0000 Y0.0000 F1500 ; X10 is the datum", 0, geom.Coord{X: 5, Y: 0})
	if got != "G1 X15.0000 Y0.0000 F1500 ; X10 is the datum" {
		t.Errorf("unexpected line: %q", got)
	}
}

func TestCorrectModalRapid(t *testing.T) {
	// A rapid that omits Y inherits the tracked position, and the
	// corrected line carries both words since rotation couples them.
	program := strings.Join([]string{
		"G0 X10.0000 Y5.0000",
		"G0 X20.0000",
	}, "\n")

	got := strings.Split(correct(t, program, math.Pi/2, geom.Coord{}), "\n")
	if got[1] != "G0 X-5.0000 Y20.0000" {
		t.Errorf("unexpected modal rapid: %q", got[1])
	}
}

func TestCorrectZOnlyRapidUntouched(t *testing.T) {
	got := correct(t, "G0 Z5.0000", math.Pi/2, geom.Coord{X: 3, Y: 4})
	if got != "G0 Z5.0000" {
		t.Errorf("unexpected line: %q", got)
	}
}

func TestCorrectArcCenterOffsets(t *testing.T) {
	// Quarter circle from (1,0) to (0,1) around the origin: I/J point
	// from the start back to the center, so I=-1 J=0. Rotating the
	// whole program 90 degrees moves the start to (0,1) and the center
	// stays at the origin, giving I=0 J=-1.
	program := strings.Join([]string{
		"G0 X1.0000 Y0.0000",
		"G3 X0.0000 Y1.0000 I-1.0000 J0.0000",
	}, "\n")

	got := strings.Split(correct(t, program, math.Pi/2, geom.Coord{}), "\n")

	g3 := got[1]
	for _, want := range []string{"X-1.0000", "I0.0000", "J-1.0000"} {
		if !strings.Contains(g3, want) && !strings.Contains(g3, strings.Replace(want, "0.0000", "-0.0000", 1)) {
			t.Errorf("arc line missing %s: %q", want, g3)
		}
	}
}

func TestCorrectArcAfterTranslation(t *testing.T) {
	// Pure translation must leave I/J untouched in value: the center
	// and the start move together.
	program := strings.Join([]string{
		"G0 X1.0000 Y0.0000",
		"G2 X0.0000 Y1.0000 I-1.0000 J0.0000 F1500",
	}, "\n")

	got := strings.Split(correct(t, program, 0, geom.Coord{X: 7, Y: -3}), "\n")
	if got[0] != "G0 X8.0000 Y-3.0000" {
		t.Errorf("unexpected rapid: %q", got[0])
	}
	if got[1] != "G2 X7.0000 Y-2.0000 F1500 I-1.0000 J0.0000" {
		t.Errorf("unexpected arc: %q", got[1])
	}
}

func TestCorrectCollectsMalformedLines(t *testing.T) {
	program := strings.Join([]string{
		"G1 X1.0000 Y1.0000 F1500",
		"G1 X2.0000 F1500",
		"M5",
	}, "\n")

	got, err := Correct(program, 0, geom.Coord{X: 1, Y: 0})
	if !errors.Is(err, errors.ErrParseMissingCoord) {
		t.Fatalf("expected PARSE_MISSING_COORD, got %v", err)
	}
	lines := strings.Split(got, "\n")
	if lines[0] != "G1 X2.0000 Y1.0000 F1500" {
		t.Errorf("good line not corrected: %q", lines[0])
	}
	if lines[1] != "G1 X2.0000 F1500" {
		t.Errorf("malformed line changed: %q", lines[1])
	}
}
