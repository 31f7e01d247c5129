package calibrate

import (
	"math"
	"testing"

	"github.com/jbeda/geom"

	"carousel-go-migration/pkg/errors"
)

func TestFitCircleExact(t *testing.T) {
	// Points sampled exactly on a circle: the fit must recover the
	// center with near-zero residuals.
	center := geom.Coord{X: 3, Y: -2}
	const r = 224.0661

	var points []geom.Coord
	for _, deg := range []float64{200, 235, 270, 305, 340} {
		a := deg * math.Pi / 180
		points = append(points, geom.Coord{
			X: center.X + r*math.Cos(a),
			Y: center.Y + r*math.Sin(a),
		})
	}

	res, err := FitCircle(points, r)
	if err != nil {
		t.Fatalf("FitCircle failed: %v", err)
	}
	if math.Abs(res.Center.X-center.X) > 1e-3 || math.Abs(res.Center.Y-center.Y) > 1e-3 {
		t.Errorf("expected center (%v, %v), got (%v, %v)",
			center.X, center.Y, res.Center.X, res.Center.Y)
	}
	if res.RMS > 1e-3 || res.Max > 1e-2 {
		t.Errorf("expected near-zero residuals, got rms=%v max=%v", res.RMS, res.Max)
	}
	if len(res.Residuals) != len(points) {
		t.Errorf("expected %d residuals, got %d", len(points), len(res.Residuals))
	}
}

func TestFitCircleMeasuredRim(t *testing.T) {
	// Three probed rim points from a bench measurement. The fit lands
	// near the geometric circumcenter with sub-tenth-millimeter
	// residuals.
	points := []geom.Coord{
		{X: -226.0750, Y: 50.0000},
		{X: 0.0000, Y: -174.4750},
		{X: 222.2750, Y: 50.0000},
	}

	res, err := FitCircle(points, 224.0661)
	if err != nil {
		t.Fatalf("FitCircle failed: %v", err)
	}
	if math.Abs(res.Center.X-(-1.9)) > 0.5 || math.Abs(res.Center.Y-49.7) > 0.5 {
		t.Errorf("center far from circumcenter: (%v, %v)", res.Center.X, res.Center.Y)
	}
	if res.Max > 0.25 {
		t.Errorf("unexpectedly large residual: %v", res.Max)
	}
}

func TestFitCircleErrors(t *testing.T) {
	two := []geom.Coord{{X: 0, Y: 1}, {X: 1, Y: 0}}
	if _, err := FitCircle(two, 1.0); !errors.Is(err, errors.ErrCalibrateFit) {
		t.Errorf("expected CALIBRATE_FIT for 2 points, got %v", err)
	}

	three := []geom.Coord{{X: 0, Y: 1}, {X: 1, Y: 0}, {X: -1, Y: 0}}
	if _, err := FitCircle(three, -1.0); !errors.Is(err, errors.ErrGeometryRadius) {
		t.Errorf("expected GEOMETRY_RADIUS, got %v", err)
	}
}
