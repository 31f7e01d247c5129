package gcode

import (
	"testing"
)

func TestCommandFormat(t *testing.T) {
	cmd := &Command{
		Kind: Rapid,
		X:    0, HasX: true,
		Y: 0, HasY: true,
		Z: -28, HasZ: true,
	}
	if got := cmd.String(); got != "G0 X0.0000 Y0.0000 Z-28.0000" {
		t.Errorf("unexpected G0 format: %q", got)
	}

	arc := &Command{
		Kind: ArcCW,
		X:    223.94, HasX: true,
		Y: -7.62, HasY: true,
		Feed: 1500, HasFeed: true,
		Radius: 224.066, HasRadius: true,
		Comment: "pad 1-1, offset 0.1",
	}
	want := "G2 X223.9400 Y-7.6200 F1500 R224.0660 ; pad 1-1, offset 0.1"
	if got := arc.String(); got != want {
		t.Errorf("unexpected arc format:\n got %q\nwant %q", got, want)
	}

	ij := &Command{
		Kind: ArcCCW,
		X:    213.69, HasX: true,
		Y: 7.62, HasY: true,
		I: -213.69, J: -7.62, HasCenter: true,
	}
	if got := ij.String(); got != "G3 X213.6900 Y7.6200 I-213.6900 J-7.6200" {
		t.Errorf("unexpected I/J format: %q", got)
	}
}

func TestCommandFormatPrecision(t *testing.T) {
	cmd := &Command{Kind: Linear, X: 224.0336, HasX: true, Y: 3.8105, HasY: true}
	if got := cmd.Format(3); got != "G1 X224.034 Y3.811" {
		t.Errorf("unexpected 3-decimal format: %q", got)
	}
}

func TestContour(t *testing.T) {
	ct := Contour{
		{Kind: Linear, X: 224.03361, HasX: true, Y: 3.81049, HasY: true},
		{Kind: Linear, X: 224.066, HasX: true, Y: 0, HasY: true},
		{Kind: Linear, X: 223.94, HasX: true, Y: 7.62, HasY: true},
	}

	pts := ct.Points()
	if len(pts) != 3 {
		t.Fatalf("expected 3 points, got %d", len(pts))
	}
	if pts[0].X != 224.034 || pts[0].Y != 3.81 {
		t.Errorf("expected rounded (224.034, 3.81), got (%v, %v)", pts[0].X, pts[0].Y)
	}

	// A contour enters at its last command's target.
	start := ct.Start()
	if start.X != 223.94 || start.Y != 7.62 {
		t.Errorf("unexpected start: (%v, %v)", start.X, start.Y)
	}

	dup := ct.Clone()
	dup[0].X = 0
	if ct[0].X == 0 {
		t.Error("Clone did not copy commands")
	}
}
