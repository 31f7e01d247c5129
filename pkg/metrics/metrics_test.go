package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCounter(t *testing.T) {
	c := NewCounter("test_total", "test counter")
	c.Inc(Labels{"section": "2"})
	c.Add(Labels{"section": "2"}, 4)
	c.Inc(Labels{"section": "1&3"})

	if got := c.Get(Labels{"section": "2"}); got != 5 {
		t.Errorf("Get = %d, want 5", got)
	}
	if got := c.Get(Labels{"section": "1&3"}); got != 1 {
		t.Errorf("Get = %d, want 1", got)
	}
	if got := c.Get(Labels{"section": "none"}); got != 0 {
		t.Errorf("Get for unseen labels = %d, want 0", got)
	}

	var sb strings.Builder
	c.Write(&sb)
	out := sb.String()
	if !strings.Contains(out, "# TYPE test_total counter") {
		t.Errorf("missing TYPE line:\n%s", out)
	}
	if !strings.Contains(out, `test_total{section="2"} 5`) {
		t.Errorf("missing sample:\n%s", out)
	}
}

func TestGauge(t *testing.T) {
	g := NewGauge("test_rotation", "test gauge")
	g.Set(nil, 1.5)
	g.Add(nil, -0.5)
	if got := g.Get(nil); got != 1.0 {
		t.Errorf("Get = %v, want 1.0", got)
	}
}

func TestHistogram(t *testing.T) {
	h := NewHistogram("test_duration", "test histogram", []float64{0.1, 1, 10})
	h.Observe(nil, 0.05)
	h.Observe(nil, 0.5)
	h.Observe(nil, 50)

	var sb strings.Builder
	h.Write(&sb)
	out := sb.String()
	for _, want := range []string{
		`test_duration_bucket{le="0.1"} 1`,
		`test_duration_bucket{le="1"} 2`,
		`test_duration_bucket{le="10"} 2`,
		`test_duration_bucket{le="+Inf"} 3`,
		"test_duration_count 3",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

func TestRegistryDuplicate(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Register(NewCounter("dup", "")); err != nil {
		t.Fatalf("first Register failed: %v", err)
	}
	if err := reg.Register(NewCounter("dup", "")); err == nil {
		t.Error("duplicate Register should fail")
	}
}

func TestRunMetrics(t *testing.T) {
	reg := NewRegistry()
	m := NewRunMetrics(reg)

	m.ObserveGeneration("2", 16, 1, 890, 1)
	m.ObserveCalibration(0.21, false)
	m.ObserveCalibration(-1.4, true)

	if got := m.PadsPlaced.Get(Labels{"section": "2"}); got != 16 {
		t.Errorf("PadsPlaced = %d, want 16", got)
	}
	if got := m.Calibrations.Get(nil); got != 2 {
		t.Errorf("Calibrations = %d, want 2", got)
	}
	if got := m.CalibrationDegraded.Get(nil); got != 1 {
		t.Errorf("CalibrationDegraded = %d, want 1", got)
	}
	if got := m.CalibrationRotation.Get(nil); got != -1.4 {
		t.Errorf("CalibrationRotation = %v, want -1.4", got)
	}

	out := reg.Gather()
	if !strings.Contains(out, "carousel_pads_placed_total") {
		t.Errorf("Gather missing pad counter:\n%s", out)
	}
}

func TestServerEndpoints(t *testing.T) {
	reg := NewRegistry()
	m := NewRunMetrics(reg)
	m.ObserveGeneration("1&3", 32, 0, 1700, 0)

	s := NewServer(reg, ":0")
	s.running = true

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	s.handleMetrics(w, req)
	if w.Code != 200 {
		t.Fatalf("/metrics status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "carousel_generations_total") {
		t.Errorf("missing metric in /metrics body")
	}

	w = httptest.NewRecorder()
	s.handleMetrics(w, httptest.NewRequest("POST", "/metrics", nil))
	if w.Code != 405 {
		t.Errorf("POST /metrics status = %d, want 405", w.Code)
	}

	w = httptest.NewRecorder()
	s.handleReady(w, httptest.NewRequest("GET", "/ready", nil))
	if w.Code != 200 {
		t.Errorf("/ready status = %d, want 200", w.Code)
	}
}
