package offset

import (
	"math"
	"testing"

	"carousel-go-migration/pkg/errors"
	"carousel-go-migration/pkg/gcode"
)

// arcTemplate is the arc form of the pad outline: outer CW edge, two
// radial lines, inner CCW edge. Entry point is the last command's
// target (223.94, 7.62).
func arcTemplate() gcode.Contour {
	return gcode.Contour{
		{Kind: gcode.ArcCW, X: 223.94, HasX: true, Y: -7.62, HasY: true, Radius: 224.066, HasRadius: true, Comment: "CW arc pt1->pt2"},
		{Kind: gcode.Linear, X: 213.69, HasX: true, Y: -7.62, HasY: true, Comment: "Linear pt2->pt3"},
		{Kind: gcode.ArcCCW, X: 213.69, HasX: true, Y: 7.62, HasY: true, Radius: 213.83, HasRadius: true, Comment: "CCW arc pt3->pt4"},
		{Kind: gcode.Linear, X: 223.94, HasX: true, Y: 7.62, HasY: true, Comment: "Linear pt4->pt1"},
	}
}

func TestPassesRectangle(t *testing.T) {
	template := arcTemplate()
	passes, err := Passes(template, []float64{0.1, 0.18})
	if err != nil {
		t.Fatalf("Passes failed: %v", err)
	}
	if len(passes) != 2 {
		t.Fatalf("expected 2 passes, got %d", len(passes))
	}

	first := passes[0]
	if first.Offset != 0.1 {
		t.Errorf("unexpected offset: %v", first.Offset)
	}
	if len(first.Commands) != len(template) {
		t.Fatalf("expected %d commands, got %d", len(template), len(first.Commands))
	}

	// The vertices are a rectangle, so a 0.1 buffer moves each corner
	// out by 0.1 on both axes.
	want := [][2]float64{
		{224.04, -7.72},
		{213.59, -7.72},
		{213.59, 7.72},
		{224.04, 7.72},
	}
	for i, cmd := range first.Commands {
		if cmd.X != want[i][0] || cmd.Y != want[i][1] {
			t.Errorf("command %d: expected (%v, %v), got (%v, %v)",
				i, want[i][0], want[i][1], cmd.X, cmd.Y)
		}
		if cmd.Kind != template[i].Kind {
			t.Errorf("command %d: kind changed from %s to %s", i, template[i].Kind, cmd.Kind)
		}
		if cmd.Comment != template[i].Comment {
			t.Errorf("command %d: comment changed to %q", i, cmd.Comment)
		}
	}

	// Outward expansion: the CW outer arc grows, the CCW inner arc
	// shrinks.
	if r := first.Commands[0].Radius; math.Abs(r-224.166) > 1e-9 {
		t.Errorf("expected G2 radius 224.166, got %v", r)
	}
	if r := first.Commands[2].Radius; math.Abs(r-213.73) > 1e-9 {
		t.Errorf("expected G3 radius 213.73, got %v", r)
	}

	if r := passes[1].Commands[0].Radius; math.Abs(r-224.246) > 1e-9 {
		t.Errorf("expected second pass G2 radius 224.246, got %v", r)
	}
}

func TestPassesTemplateUnchanged(t *testing.T) {
	template := arcTemplate()
	if _, err := Passes(template, []float64{0.42}); err != nil {
		t.Fatalf("Passes failed: %v", err)
	}
	if template[0].X != 223.94 || template[0].Radius != 224.066 {
		t.Error("template was mutated")
	}
}

func TestPassesLinearTemplate(t *testing.T) {
	// The default pad template approximates the arcs with 10 linear
	// segments; no radii to adjust, but counts and order still hold.
	pts := [][2]float64{
		{224.0336, 3.8105},
		{224.0660, 0.0000},
		{224.0336, -3.8105},
		{223.94, -7.62},
		{213.69, -7.62},
		{213.7960, -3.8107},
		{213.8300, 0.0000},
		{213.7960, 3.8107},
		{213.69, 7.62},
		{223.94, 7.62},
	}
	template := make(gcode.Contour, len(pts))
	for i, pt := range pts {
		template[i] = &gcode.Command{Kind: gcode.Linear, X: pt[0], HasX: true, Y: pt[1], HasY: true}
	}

	passes, err := Passes(template, []float64{0.10, 0.18, 0.26, 0.34, 0.42})
	if err != nil {
		t.Fatalf("Passes failed: %v", err)
	}
	if len(passes) != 5 {
		t.Fatalf("expected 5 passes, got %d", len(passes))
	}
	for _, pass := range passes {
		if len(pass.Commands) != len(template) {
			t.Fatalf("offset %v: expected %d commands, got %d",
				pass.Offset, len(template), len(pass.Commands))
		}
		for i, cmd := range pass.Commands {
			if cmd.Kind != gcode.Linear {
				t.Fatalf("offset %v command %d: unexpected kind %s", pass.Offset, i, cmd.Kind)
			}
			// Larger offsets push every vertex further from the pad.
			dx := cmd.X - template[i].X
			dy := cmd.Y - template[i].Y
			dist := math.Hypot(dx, dy)
			if dist < pass.Offset-1e-3 {
				t.Errorf("offset %v command %d moved only %v", pass.Offset, i, dist)
			}
		}
	}
}

func TestPassesInfeasibleArcDowngraded(t *testing.T) {
	// CCW square, 10 mm sides. The G3 edge shrinks to R 5.1 on a 0.5
	// buffer while its chord grows to 11 mm, so the arc can no longer
	// span its endpoints. The G2 edge grows and stays comfortable.
	template := gcode.Contour{
		{Kind: gcode.Linear, X: 0, HasX: true, Y: 0, HasY: true},
		{Kind: gcode.ArcCCW, X: 10, HasX: true, Y: 0, HasY: true, Radius: 5.6, HasRadius: true},
		{Kind: gcode.Linear, X: 10, HasX: true, Y: 10, HasY: true},
		{Kind: gcode.ArcCW, X: 0, HasX: true, Y: 10, HasY: true, Radius: 20, HasRadius: true},
	}
	passes, err := Passes(template, []float64{0.5})
	if err != nil {
		t.Fatalf("Passes failed: %v", err)
	}
	got := passes[0].Commands
	if got[1].Kind != gcode.Linear {
		t.Errorf("expected infeasible arc downgraded to G1, got %s", got[1].Kind)
	}
	if got[1].HasRadius {
		t.Errorf("downgraded command kept radius %v", got[1].Radius)
	}
	if got[1].X != 10.5 || got[1].Y != -0.5 {
		t.Errorf("downgraded command moved to (%v, %v)", got[1].X, got[1].Y)
	}
	if got[3].Kind != gcode.ArcCW || got[3].Radius != 20.5 {
		t.Errorf("feasible arc changed: kind %s radius %v", got[3].Kind, got[3].Radius)
	}
}

func TestPassesErrors(t *testing.T) {
	short := gcode.Contour{
		{Kind: gcode.Linear, X: 1, HasX: true, Y: 1, HasY: true},
		{Kind: gcode.Linear, X: 2, HasX: true, Y: 2, HasY: true},
	}
	if _, err := Passes(short, []float64{0.1}); !errors.Is(err, errors.ErrGeometryDegenerate) {
		t.Errorf("expected GEOMETRY_DEGENERATE, got %v", err)
	}

	// Shrinking a CCW arc radius through zero is an error.
	tiny := gcode.Contour{
		{Kind: gcode.ArcCCW, X: 1, HasX: true, Y: 0, HasY: true, Radius: 0.05, HasRadius: true},
		{Kind: gcode.Linear, X: 1, HasX: true, Y: 1, HasY: true},
		{Kind: gcode.Linear, X: 0, HasX: true, Y: 1, HasY: true},
		{Kind: gcode.Linear, X: 0, HasX: true, Y: 0, HasY: true},
	}
	if _, err := Passes(tiny, []float64{0.1}); !errors.Is(err, errors.ErrGeometryRadius) {
		t.Errorf("expected GEOMETRY_RADIUS, got %v", err)
	}
}
