// carousel-gen renders the per-section laser cleaning programs for
// the pad carousel.
//
// Usage:
//
//	carousel-gen [options]
//
// Options:
//
//	-config string    Settings file (INI); defaults used when omitted
//	-section string   Section to render: "1&3", "2", or "all" (default "all")
//	-template string  Pad template G-code file (default: built-in pad outline)
//	-spacings string  Comma-separated pass offsets in mm (default "0.10,0.18,0.26,0.34,0.42")
//	-out string       Output directory (default ".")
//
// Examples:
//
//	# Render both sections with the built-in layout
//	carousel-gen
//
//	# Render section 2 from a settings file
//	carousel-gen -config carousel.cfg -section 2
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"carousel-go-migration/pkg/carousel"
	"carousel-go-migration/pkg/config"
	"carousel-go-migration/pkg/gcode"
	"carousel-go-migration/pkg/log"
	"carousel-go-migration/pkg/metrics"
	"carousel-go-migration/pkg/offset"
)

var logger = log.GetLogger("carousel-gen")

func main() {
	configFile := flag.String("config", "", "Settings file (INI)")
	sectionName := flag.String("section", "all", `Section to render: "1&3", "2", or "all"`)
	templateFile := flag.String("template", "", "Pad template G-code file")
	spacingsFlag := flag.String("spacings", "", "Comma-separated pass offsets in mm")
	outDir := flag.String("out", ".", "Output directory")
	flag.Parse()

	var cfg *config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			logger.Error("loading %s: %v", *configFile, err)
			os.Exit(1)
		}
	}

	sections, err := resolveSections(cfg, *sectionName)
	if err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
	table, err := resolveSlotTable(cfg)
	if err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
	template, err := resolveTemplate(cfg, *templateFile)
	if err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
	spacings, err := resolveSpacings(cfg, *spacingsFlag)
	if err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}

	// Every option has been read by now; anything left over is a
	// misspelled or misplaced setting.
	if cfg != nil {
		if err := cfg.CheckUnusedOptions(); err != nil {
			logger.Warn("%v", err)
		}
		if unused := cfg.GetUnusedSections(); len(unused) > 0 {
			logger.Warn("config sections never read: %v", unused)
		}
	}

	passes, err := offset.Passes(template, spacings)
	if err != nil {
		logger.Error("calculating passes: %v", err)
		os.Exit(1)
	}

	for _, sec := range sections {
		done := metrics.Global().GenerateDuration.Timer(metrics.Labels{"section": sec.Name})
		prog, err := carousel.Generate(sec, table, passes)
		done()
		if err != nil {
			logger.Error("section %s: %v", sec.Name, err)
			os.Exit(1)
		}

		r := prog.Report
		metrics.Global().ObserveGeneration(r.Section, r.PadsPlaced, len(r.Skipped), r.Lines, len(r.Warnings))

		path := filepath.Join(*outDir, outputName(sec.Name))
		if err := os.WriteFile(path, []byte(prog.Text()+"\n"), 0644); err != nil {
			logger.Error("writing %s: %v", path, err)
			os.Exit(1)
		}

		logger.WithFields(log.Fields{
			"section": sec.Name,
			"file":    path,
			"pads":    r.PadsPlaced,
			"skipped": len(r.Skipped),
			"lines":   r.Lines,
		}).Info("wrote section program")
	}
}

// resolveSections picks sections from config or the built-in layout.
func resolveSections(cfg *config.Config, name string) ([]*carousel.Section, error) {
	names := []string{"1&3", "2"}
	if name != "all" {
		names = []string{name}
	}

	if cfg == nil {
		var picked []*carousel.Section
		for _, sec := range carousel.DefaultSections() {
			for _, n := range names {
				if sec.Name == n {
					picked = append(picked, sec)
				}
			}
		}
		if len(picked) == 0 {
			return nil, fmt.Errorf("unknown section %q", name)
		}
		return picked, nil
	}

	sections := make([]*carousel.Section, 0, len(names))
	for _, n := range names {
		sec, err := carousel.SectionFromConfig(cfg, n)
		if err != nil {
			return nil, fmt.Errorf("section %s: %w", n, err)
		}
		sections = append(sections, sec)
	}
	return sections, nil
}

func resolveSlotTable(cfg *config.Config) (carousel.SlotTable, error) {
	if cfg == nil || !cfg.HasSection("slots") {
		return carousel.DefaultSlotTable(), nil
	}
	sec, err := cfg.GetSection("slots")
	if err != nil {
		return nil, err
	}
	return carousel.SlotTableFromSection(sec)
}

func resolveTemplate(cfg *config.Config, path string) (gcode.Contour, error) {
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading template: %w", err)
		}
		cmds, err := gcode.ParseText(string(data))
		if err != nil {
			return nil, fmt.Errorf("parsing template: %w", err)
		}
		return gcode.Contour(cmds), nil
	}

	if cfg != nil && cfg.HasSection("template") {
		sec, err := cfg.GetSection("template")
		if err != nil {
			return nil, err
		}
		lines, err := sec.GetLines("commands")
		if err != nil {
			return nil, err
		}
		cmds, err := gcode.ParseLines(lines)
		if err != nil {
			return nil, fmt.Errorf("parsing template: %w", err)
		}
		return gcode.Contour(cmds), nil
	}

	return carousel.DefaultTemplate(), nil
}

func resolveSpacings(cfg *config.Config, flagValue string) ([]float64, error) {
	if flagValue != "" {
		parts := strings.Split(flagValue, ",")
		spacings := make([]float64, 0, len(parts))
		for _, part := range parts {
			v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
			if err != nil {
				return nil, fmt.Errorf("bad spacing %q: %w", part, err)
			}
			spacings = append(spacings, v)
		}
		return spacings, nil
	}

	if cfg != nil && cfg.HasSection("carousel") {
		sec, err := cfg.GetSection("carousel")
		if err != nil {
			return nil, err
		}
		if sec.HasOption("spacings") {
			return sec.GetFloatList("spacings", ",")
		}
	}

	return carousel.DefaultSpacings(), nil
}

// outputName maps a section name to a file name ("1&3" is not a
// filesystem-friendly string).
func outputName(section string) string {
	name := strings.NewReplacer("&", "_", " ", "_", "/", "_").Replace(section)
	return "section_" + name + ".gcode"
}
