package api

import (
	"encoding/json"
	"strings"

	"github.com/jbeda/geom"

	"carousel-go-migration/pkg/calibrate"
	"carousel-go-migration/pkg/carousel"
	"carousel-go-migration/pkg/gcode"
	"carousel-go-migration/pkg/metrics"
	"carousel-go-migration/pkg/offset"
)

// decodeParams fills a typed params struct; nil params leave it zero.
func decodeParams(params json.RawMessage, v any) *rpcError {
	if len(params) == 0 {
		return nil
	}
	if err := json.Unmarshal(params, v); err != nil {
		return &rpcError{Code: codeInvalidParams, Message: "invalid params: " + err.Error()}
	}
	return nil
}

func appError(err error) *rpcError {
	return &rpcError{Code: codeAppError, Message: err.Error()}
}

func coordOf(p [2]float64) geom.Coord {
	return geom.Coord{X: p[0], Y: p[1]}
}

func coordPayload(c geom.Coord) [2]float64 {
	return [2]float64{c.X, c.Y}
}

// resolveTemplate parses a template from request lines, or falls back
// to the default pad outline.
func resolveTemplate(lines []string) (gcode.Contour, *rpcError) {
	if len(lines) == 0 {
		return carousel.DefaultTemplate(), nil
	}
	cmds, err := gcode.ParseLines(lines)
	if err != nil {
		return nil, appError(err)
	}
	return gcode.Contour(cmds), nil
}

type passesParams struct {
	Template []string  `json:"template,omitempty"`
	Spacings []float64 `json:"spacings,omitempty"`
}

type passPayload struct {
	Offset float64  `json:"offset"`
	GCode  []string `json:"gcode"`
}

func (s *Server) methodPasses(params json.RawMessage) (any, *rpcError) {
	var p passesParams
	if rerr := decodeParams(params, &p); rerr != nil {
		return nil, rerr
	}

	template, rerr := resolveTemplate(p.Template)
	if rerr != nil {
		return nil, rerr
	}
	spacings := p.Spacings
	if len(spacings) == 0 {
		spacings = carousel.DefaultSpacings()
	}

	passes, err := offset.Passes(template, spacings)
	if err != nil {
		return nil, appError(err)
	}

	payload := make([]passPayload, len(passes))
	for i, pass := range passes {
		lines := make([]string, len(pass.Commands))
		for j, cmd := range pass.Commands {
			lines[j] = cmd.Format(4)
		}
		payload[i] = passPayload{Offset: pass.Offset, GCode: lines}
	}
	return map[string]any{"passes": payload}, nil
}

type generateParams struct {
	Section  string    `json:"section"`
	Template []string  `json:"template,omitempty"`
	Spacings []float64 `json:"spacings,omitempty"`
}

func (s *Server) methodGenerate(params json.RawMessage) (any, *rpcError) {
	var p generateParams
	if rerr := decodeParams(params, &p); rerr != nil {
		return nil, rerr
	}
	if p.Section == "" {
		return nil, &rpcError{Code: codeInvalidParams, Message: "missing 'section' parameter"}
	}

	var sec *carousel.Section
	for _, candidate := range carousel.DefaultSections() {
		if candidate.Name == p.Section {
			sec = candidate
			break
		}
	}
	if sec == nil {
		return nil, &rpcError{Code: codeInvalidParams, Message: "unknown section: " + p.Section}
	}

	template, rerr := resolveTemplate(p.Template)
	if rerr != nil {
		return nil, rerr
	}
	spacings := p.Spacings
	if len(spacings) == 0 {
		spacings = carousel.DefaultSpacings()
	}

	passes, err := offset.Passes(template, spacings)
	if err != nil {
		return nil, appError(err)
	}

	done := s.metrics.GenerateDuration.Timer(metrics.Labels{"section": sec.Name})
	prog, err := carousel.Generate(sec, carousel.DefaultSlotTable(), passes)
	done()
	if err != nil {
		return nil, appError(err)
	}

	r := prog.Report
	s.metrics.ObserveGeneration(r.Section, r.PadsPlaced, len(r.Skipped), r.Lines, len(r.Warnings))

	return map[string]any{
		"lines":  prog.Lines,
		"report": r,
	}, nil
}

type twoPointParams struct {
	Expected *[2][2]float64 `json:"expected"`
	Actual   *[2][2]float64 `json:"actual"`
}

func calibrationPayload(res *calibrate.Result) map[string]any {
	return map[string]any{
		"center":           coordPayload(res.Center),
		"rotation":         res.Rotation,
		"rotation_degrees": res.RotationDegrees(),
		"degraded":         res.Degraded,
		"residuals":        res.Residuals,
	}
}

func (s *Server) methodTwoPoint(params json.RawMessage) (any, *rpcError) {
	var p twoPointParams
	if rerr := decodeParams(params, &p); rerr != nil {
		return nil, rerr
	}
	if p.Expected == nil || p.Actual == nil {
		return nil, &rpcError{Code: codeInvalidParams, Message: "missing 'expected' or 'actual' parameter"}
	}

	expected := [2]geom.Coord{coordOf(p.Expected[0]), coordOf(p.Expected[1])}
	actual := [2]geom.Coord{coordOf(p.Actual[0]), coordOf(p.Actual[1])}

	res, err := calibrate.TwoPoint(expected, actual)
	if err != nil {
		return nil, appError(err)
	}
	s.metrics.ObserveCalibration(res.RotationDegrees(), res.Degraded)

	return calibrationPayload(res), nil
}

type fitCircleParams struct {
	Points [][2]float64 `json:"points"`
	Radius float64      `json:"radius"`
}

func (s *Server) methodFitCircle(params json.RawMessage) (any, *rpcError) {
	var p fitCircleParams
	if rerr := decodeParams(params, &p); rerr != nil {
		return nil, rerr
	}

	points := make([]geom.Coord, len(p.Points))
	for i, pt := range p.Points {
		points[i] = coordOf(pt)
	}

	fit, err := calibrate.FitCircle(points, p.Radius)
	if err != nil {
		return nil, appError(err)
	}

	return map[string]any{
		"center":    coordPayload(fit.Center),
		"residuals": fit.Residuals,
		"rms":       fit.RMS,
		"max":       fit.Max,
	}, nil
}

type adjustParams struct {
	Program  string         `json:"program"`
	Expected *[2][2]float64 `json:"expected,omitempty"`
	Actual   *[2][2]float64 `json:"actual"`
}

// methodAdjust solves the calibration and applies it to a whole
// program. When the caller omits the expected points they are read
// from the program's reference_point comments.
func (s *Server) methodAdjust(params json.RawMessage) (any, *rpcError) {
	var p adjustParams
	if rerr := decodeParams(params, &p); rerr != nil {
		return nil, rerr
	}
	if strings.TrimSpace(p.Program) == "" {
		return nil, &rpcError{Code: codeInvalidParams, Message: "missing 'program' parameter"}
	}
	if p.Actual == nil {
		return nil, &rpcError{Code: codeInvalidParams, Message: "missing 'actual' parameter"}
	}

	var expected [2]geom.Coord
	if p.Expected != nil {
		expected = [2]geom.Coord{coordOf(p.Expected[0]), coordOf(p.Expected[1])}
	} else {
		points, n := calibrate.ParseReferencePoints(p.Program)
		if n < 2 {
			return nil, &rpcError{Code: codeInvalidParams, Message: "program carries no reference_point comments and no 'expected' parameter was given"}
		}
		expected = points
	}
	actual := [2]geom.Coord{coordOf((*p.Actual)[0]), coordOf((*p.Actual)[1])}

	res, err := calibrate.TwoPoint(expected, actual)
	if err != nil {
		return nil, appError(err)
	}
	s.metrics.ObserveCalibration(res.RotationDegrees(), res.Degraded)

	corrected, err := res.Apply(p.Program, actual)
	if err != nil {
		return nil, appError(err)
	}

	payload := calibrationPayload(res)
	payload["program"] = corrected
	return payload, nil
}
