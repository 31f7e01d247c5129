package calibrate

import (
	"math"

	"github.com/jbeda/geom"
	"gonum.org/v1/gonum/optimize"

	"carousel-go-migration/pkg/errors"
)

// FitResult holds a least-squares circle fit and its quality measures.
type FitResult struct {
	Center geom.Coord

	// Residuals is each point's distance-from-center minus the known
	// radius, in input order
	Residuals []float64

	// RMS and Max summarize the residuals
	RMS float64
	Max float64
}

// FitCircle solves for the center that best fits the measured points
// onto a circle of the known radius, minimizing the sum of squared
// radial residuals. Used as an offline verification of a two-point
// calibration when three or more fiducials were probed.
func FitCircle(points []geom.Coord, radius float64) (*FitResult, error) {
	if len(points) < 3 {
		return nil, errors.FitError("circle fit needs at least 3 points")
	}
	if radius <= 0 {
		return nil, errors.RadiusError(radius)
	}

	cost := func(x []float64) float64 {
		sum := 0.0
		for _, p := range points {
			d := math.Hypot(p.X-x[0], p.Y-x[1]) - radius
			sum += d * d
		}
		return sum
	}

	// Start from the centroid; for rim fiducials it lands well inside
	// the basin of the true center.
	var cx, cy float64
	for _, p := range points {
		cx += p.X
		cy += p.Y
	}
	initial := []float64{cx / float64(len(points)), cy / float64(len(points))}

	problem := optimize.Problem{Func: cost}
	solution, err := optimize.Minimize(problem, initial, nil, &optimize.NelderMead{})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCalibrateFit, "circle fit did not converge")
	}

	center := geom.Coord{X: solution.X[0], Y: solution.X[1]}
	res := &FitResult{Center: center, Residuals: make([]float64, len(points))}
	sum := 0.0
	for i, p := range points {
		r := p.DistanceFrom(center) - radius
		res.Residuals[i] = r
		sum += r * r
		if a := math.Abs(r); a > res.Max {
			res.Max = a
		}
	}
	res.RMS = math.Sqrt(sum / float64(len(points)))

	logger.WithField("center_x", center.X).
		WithField("center_y", center.Y).
		WithField("rms", res.RMS).
		Info("circle fit solved")

	return res, nil
}
