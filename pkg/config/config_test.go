package config

import (
	"testing"

	"carousel-go-migration/pkg/errors"
)

func TestLoadString(t *testing.T) {
	data := `
[carousel]
radius: 224.0
feedrate: 6000
passes: 5

[section 1&3]
origin: 0, -50
power: 20
`

	cfg, err := LoadString(data)
	if err != nil {
		t.Fatalf("LoadString failed: %v", err)
	}

	// Test HasSection
	if !cfg.HasSection("carousel") {
		t.Error("expected [carousel] section to exist")
	}
	if !cfg.HasSection("section 1&3") {
		t.Error("expected [section 1&3] section to exist")
	}
	if cfg.HasSection("nonexistent") {
		t.Error("expected [nonexistent] section to not exist")
	}

	// Test GetSection
	car, err := cfg.GetSection("carousel")
	if err != nil {
		t.Fatalf("GetSection(carousel) failed: %v", err)
	}
	if car.GetName() != "carousel" {
		t.Errorf("expected name 'carousel', got '%s'", car.GetName())
	}

	// Test GetFloat
	radius, err := car.GetFloat("radius")
	if err != nil {
		t.Fatalf("GetFloat(radius) failed: %v", err)
	}
	if radius != 224.0 {
		t.Errorf("expected 224.0, got %f", radius)
	}

	// Test GetInt
	passes, err := car.GetInt("passes")
	if err != nil {
		t.Fatalf("GetInt(passes) failed: %v", err)
	}
	if passes != 5 {
		t.Errorf("expected 5, got %d", passes)
	}
}

func TestSectionGet(t *testing.T) {
	data := `
[test]
string_val: hello
int_val: 42
float_val: 3.14
list_val: a, b, c
spacings: 0.10, 0.18, 0.26, 0.34, 0.42
`

	cfg, err := LoadString(data)
	if err != nil {
		t.Fatalf("LoadString failed: %v", err)
	}

	sec, _ := cfg.GetSection("test")

	// Test Get with fallback
	val, _ := sec.Get("missing", "default")
	if val != "default" {
		t.Errorf("expected 'default', got '%s'", val)
	}

	// Test GetInt
	i, _ := sec.GetInt("int_val")
	if i != 42 {
		t.Errorf("expected 42, got %d", i)
	}

	// Test GetInt with fallback
	i, _ = sec.GetInt("missing", 99)
	if i != 99 {
		t.Errorf("expected 99, got %d", i)
	}

	// Test GetList
	list, _ := sec.GetList("list_val", ",")
	if len(list) != 3 || list[0] != "a" || list[2] != "c" {
		t.Errorf("unexpected list: %v", list)
	}

	// Test GetFloatList
	spacings, err := sec.GetFloatList("spacings", ",")
	if err != nil {
		t.Fatalf("GetFloatList(spacings) failed: %v", err)
	}
	if len(spacings) != 5 || spacings[0] != 0.10 || spacings[4] != 0.42 {
		t.Errorf("unexpected spacings: %v", spacings)
	}

	// Missing option without fallback is a config error
	_, err = sec.Get("missing")
	if !errors.Is(err, errors.ErrConfigOption) {
		t.Errorf("expected CONFIG_OPTION error, got %v", err)
	}
}

func TestGetCoord(t *testing.T) {
	data := `
[section 1&3]
origin: 0, -50

[section 2]
origin: 0, 50

[bad]
origin: 1, two
`

	cfg, err := LoadString(data)
	if err != nil {
		t.Fatalf("LoadString failed: %v", err)
	}

	sec, _ := cfg.GetSection("section 1&3")
	origin, err := sec.GetCoord("origin")
	if err != nil {
		t.Fatalf("GetCoord(origin) failed: %v", err)
	}
	if origin.X != 0 || origin.Y != -50 {
		t.Errorf("expected (0, -50), got (%v, %v)", origin.X, origin.Y)
	}

	sec2, _ := cfg.GetSection("section 2")
	origin2, _ := sec2.GetCoord("origin")
	if origin2.Y != 50 {
		t.Errorf("expected Y=50, got %v", origin2.Y)
	}

	bad, _ := cfg.GetSection("bad")
	if _, err := bad.GetCoord("origin"); !errors.Is(err, errors.ErrConfigValue) {
		t.Errorf("expected CONFIG_VALUE error, got %v", err)
	}
}

func TestMultilineBlock(t *testing.T) {
	data := `
[template]
commands:
    G1 X224.0336 Y3.8105
    G1 X224.0336 Y-3.8105
    G2 X224.0336 Y3.8105 R224.066
`

	cfg, err := LoadString(data)
	if err != nil {
		t.Fatalf("LoadString failed: %v", err)
	}

	sec, _ := cfg.GetSection("template")
	lines, err := sec.GetLines("commands")
	if err != nil {
		t.Fatalf("GetLines(commands) failed: %v", err)
	}
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %v", len(lines), lines)
	}
	if lines[0] != "G1 X224.0336 Y3.8105" {
		t.Errorf("unexpected first line: %q", lines[0])
	}
	if lines[2] != "G2 X224.0336 Y3.8105 R224.066" {
		t.Errorf("unexpected last line: %q", lines[2])
	}
}

func TestCommentsAndAccessTracking(t *testing.T) {
	data := `
# generator settings
[carousel]
radius: 224.0  # carousel radius in mm
unused_opt: 1
`

	cfg, err := LoadString(data)
	if err != nil {
		t.Fatalf("LoadString failed: %v", err)
	}

	sec, _ := cfg.GetSection("carousel")
	radius, _ := sec.GetFloat("radius")
	if radius != 224.0 {
		t.Errorf("comment not stripped: got %f", radius)
	}

	unused := sec.GetUnusedOptions()
	if len(unused) != 1 || unused[0] != "unused_opt" {
		t.Errorf("expected [unused_opt], got %v", unused)
	}
	if err := cfg.CheckUnusedOptions(); err == nil {
		t.Error("expected CheckUnusedOptions to report unused_opt")
	}
}
