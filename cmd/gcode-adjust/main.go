// gcode-adjust corrects a generated cleaning program against two
// probed fiducial points and writes the adjusted program.
//
// Usage:
//
//	gcode-adjust -in program.gcode -p1 x,y -p2 x,y [options]
//
// Options:
//
//	-in string     Input program (required)
//	-out string    Output path (default: input with .adjusted.gcode suffix)
//	-p1 string     First probed fiducial "x,y" (required)
//	-p2 string     Second probed fiducial "x,y" (required)
//	-e1 string     First expected fiducial "x,y" (default: from the
//	               program's reference_point comments)
//	-e2 string     Second expected fiducial "x,y"
//
// The expected points default to the reference_point comments the
// generator wrote into the program's preamble.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/jbeda/geom"

	"carousel-go-migration/pkg/calibrate"
	"carousel-go-migration/pkg/log"
	"carousel-go-migration/pkg/metrics"
)

var logger = log.GetLogger("gcode-adjust")

func main() {
	inFile := flag.String("in", "", "Input program (required)")
	outFile := flag.String("out", "", "Output path")
	p1 := flag.String("p1", "", `First probed fiducial "x,y" (required)`)
	p2 := flag.String("p2", "", `Second probed fiducial "x,y" (required)`)
	e1 := flag.String("e1", "", `First expected fiducial "x,y"`)
	e2 := flag.String("e2", "", `Second expected fiducial "x,y"`)
	flag.Parse()

	if *inFile == "" || *p1 == "" || *p2 == "" {
		fmt.Fprintln(os.Stderr, "Error: -in, -p1, and -p2 are required")
		flag.Usage()
		os.Exit(1)
	}

	data, err := os.ReadFile(*inFile)
	if err != nil {
		logger.Error("reading %s: %v", *inFile, err)
		os.Exit(1)
	}
	program := string(data)

	actual, err := parsePair(*p1, *p2)
	if err != nil {
		logger.Error("probed points: %v", err)
		os.Exit(1)
	}

	var expected [2]geom.Coord
	if *e1 != "" || *e2 != "" {
		expected, err = parsePair(*e1, *e2)
		if err != nil {
			logger.Error("expected points: %v", err)
			os.Exit(1)
		}
	} else {
		points, n := calibrate.ParseReferencePoints(program)
		if n < 2 {
			logger.Error("%s carries no reference_point comments; pass -e1 and -e2", *inFile)
			os.Exit(1)
		}
		expected = points
	}

	result, err := calibrate.TwoPoint(expected, actual)
	if err != nil {
		logger.Error("calibration failed: %v", err)
		os.Exit(1)
	}
	metrics.Global().ObserveCalibration(result.RotationDegrees(), result.Degraded)

	logger.WithFields(log.Fields{
		"rotation_deg": fmt.Sprintf("%.4f", result.RotationDegrees()),
		"center_x":     fmt.Sprintf("%.4f", result.Center.X),
		"center_y":     fmt.Sprintf("%.4f", result.Center.Y),
		"degraded":     result.Degraded,
	}).Info("solved correction")
	for i, r := range result.Residuals {
		logger.Debug("fiducial %d residual: %.4f mm", i+1, r)
	}
	if result.Degraded {
		logger.Warn("fiducial chord exceeded the expected diameter; center accuracy is reduced")
	}

	corrected, err := result.Apply(program, actual)
	if err != nil {
		logger.Error("correcting %s: %v", *inFile, err)
		os.Exit(1)
	}

	out := *outFile
	if out == "" {
		out = strings.TrimSuffix(*inFile, ".gcode") + ".adjusted.gcode"
	}
	if err := os.WriteFile(out, []byte(corrected), 0644); err != nil {
		logger.Error("writing %s: %v", out, err)
		os.Exit(1)
	}
	logger.Info("wrote %s", out)
}

// parsePair parses two "x,y" strings.
func parsePair(a, b string) ([2]geom.Coord, error) {
	var pair [2]geom.Coord
	for i, s := range []string{a, b} {
		p, err := parsePoint(s)
		if err != nil {
			return pair, err
		}
		pair[i] = p
	}
	return pair, nil
}

func parsePoint(s string) (geom.Coord, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return geom.Coord{}, fmt.Errorf("bad point %q: want \"x,y\"", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return geom.Coord{}, fmt.Errorf("bad point %q: %w", s, err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return geom.Coord{}, fmt.Errorf("bad point %q: %w", s, err)
	}
	return geom.Coord{X: x, Y: y}, nil
}
