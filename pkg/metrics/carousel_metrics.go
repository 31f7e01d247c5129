// Carousel run metrics
//
// The metric set recorded by the generator and calibration tools:
// pads placed and skipped, program lines emitted, warnings, and
// operation latencies. Exposed through the exposition server and the
// API's server.info method.
//
// Copyright (C) 2026  Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package metrics

import "sync"

// RunMetrics is the carousel tool metric set.
type RunMetrics struct {
	// Generation
	Generations      *Counter
	PadsPlaced       *Counter
	PadsSkipped      *Counter
	LinesEmitted     *Counter
	Warnings         *Counter
	GenerateDuration *Histogram

	// Calibration
	Calibrations        *Counter
	CalibrationDegraded *Counter
	CalibrationRotation *Gauge

	// API
	Requests        *Counter
	RequestErrors   *Counter
	RequestDuration *Histogram
}

// NewRunMetrics creates the metric set and registers it.
func NewRunMetrics(reg *Registry) *RunMetrics {
	m := &RunMetrics{
		Generations:      NewCounter("carousel_generations_total", "Section programs generated"),
		PadsPlaced:       NewCounter("carousel_pads_placed_total", "Pads placed into programs"),
		PadsSkipped:      NewCounter("carousel_pads_skipped_total", "Pads skipped as unknown slots"),
		LinesEmitted:     NewCounter("carousel_lines_emitted_total", "G-code lines emitted"),
		Warnings:         NewCounter("carousel_warnings_total", "Warnings raised during generation"),
		GenerateDuration: NewHistogram("carousel_generate_duration_seconds", "Section generation latency", DefaultBuckets()),

		Calibrations:        NewCounter("carousel_calibrations_total", "Two-point calibration solves"),
		CalibrationDegraded: NewCounter("carousel_calibrations_degraded_total", "Calibrations on the half-chord fallback"),
		CalibrationRotation: NewGauge("carousel_calibration_rotation_degrees", "Most recent solved rotation"),

		Requests:        NewCounter("carousel_api_requests_total", "API requests by method"),
		RequestErrors:   NewCounter("carousel_api_request_errors_total", "API requests that returned an error"),
		RequestDuration: NewHistogram("carousel_api_request_duration_seconds", "API request latency", DefaultBuckets()),
	}
	reg.MustRegister(m.Generations)
	reg.MustRegister(m.PadsPlaced)
	reg.MustRegister(m.PadsSkipped)
	reg.MustRegister(m.LinesEmitted)
	reg.MustRegister(m.Warnings)
	reg.MustRegister(m.GenerateDuration)
	reg.MustRegister(m.Calibrations)
	reg.MustRegister(m.CalibrationDegraded)
	reg.MustRegister(m.CalibrationRotation)
	reg.MustRegister(m.Requests)
	reg.MustRegister(m.RequestErrors)
	reg.MustRegister(m.RequestDuration)
	return m
}

// ObserveGeneration records one section render.
func (m *RunMetrics) ObserveGeneration(section string, placed, skipped, lines, warnings int) {
	labels := Labels{"section": section}
	m.Generations.Inc(labels)
	m.PadsPlaced.Add(labels, uint64(placed))
	m.PadsSkipped.Add(labels, uint64(skipped))
	m.LinesEmitted.Add(labels, uint64(lines))
	m.Warnings.Add(labels, uint64(warnings))
}

// ObserveCalibration records one two-point solve.
func (m *RunMetrics) ObserveCalibration(rotationDegrees float64, degraded bool) {
	m.Calibrations.Inc(nil)
	if degraded {
		m.CalibrationDegraded.Inc(nil)
	}
	m.CalibrationRotation.Set(nil, rotationDegrees)
}

var (
	globalOnce    sync.Once
	globalMetrics *RunMetrics
	globalReg     *Registry
)

// Global returns the process-wide metric set on its own registry.
func Global() *RunMetrics {
	globalOnce.Do(func() {
		globalReg = NewRegistry()
		globalMetrics = NewRunMetrics(globalReg)
	})
	return globalMetrics
}

// GlobalRegistry returns the registry behind Global.
func GlobalRegistry() *Registry {
	Global()
	return globalReg
}
