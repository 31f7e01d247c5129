package carousel

import (
	"fmt"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"carousel-go-migration/pkg/errors"
	"carousel-go-migration/pkg/gcode"
	"carousel-go-migration/pkg/log"
	"carousel-go-migration/pkg/offset"
	"carousel-go-migration/pkg/pool"
	"carousel-go-migration/pkg/transform"
)

// Report summarizes one section render: what was placed, what was
// skipped, and every warning raised along the way.
type Report struct {
	Section    string   `json:"section"`
	PadsPlaced int      `json:"pads_placed"`
	Skipped    []string `json:"skipped,omitempty"`
	Passes     int      `json:"passes"`
	Lines      int      `json:"lines"`
	Warnings   []string `json:"warnings,omitempty"`
}

// Program is a rendered per-section cleaning program. Commands holds
// the result of re-parsing Lines, so it reflects exactly what a
// controller reading the text would execute.
type Program struct {
	Lines    []string
	Commands []*gcode.Command
	Report   Report
}

// Text renders the program as a single newline-joined string.
func (p *Program) Text() string {
	buf := pool.GetByteBuffer()
	defer pool.PutByteBuffer(buf)
	for i, line := range p.Lines {
		if i > 0 {
			buf.WriteByte('\n')
		}
		buf.WriteString(line)
	}
	return buf.String()
}

// Generate renders the cleaning program for one section. Every pad in
// the section's list gets every pass, rotated to the pad's slot and
// translated to the section origin. A pad id missing from the slot
// table is skipped with a SLOT_UNKNOWN warning; the run continues.
//
// The emitted lines are re-parsed before returning so that malformed
// output surfaces here, not on the machine. All re-parse errors are
// collected; on failure the program is returned alongside the error
// list so callers can inspect the offending lines.
func Generate(sec *Section, table SlotTable, passes []offset.Pass) (*Program, error) {
	report := Report{Section: sec.Name, Passes: len(passes)}

	lines := make([]string, 0, programSizeHint(sec, passes))
	lines = append(lines, sec.Preamble...)
	lines = append(lines, fmt.Sprintf("M4 S%d", sec.Power))
	lines = append(lines, fmt.Sprintf("G0 X0.0000 Y0.0000 Z%.4f", sec.Z))

	// Resolve yaw angles up front so warnings come out in pad order
	// before any placement work is dispatched.
	type padJob struct {
		index int
		id    string
		yaw   float64
	}
	jobs := make([]padJob, 0, len(sec.Pads))
	for i, id := range sec.Pads {
		id = strings.TrimSpace(id)
		yaw, ok := table.Yaw(id)
		if id == "" || !ok {
			warn := errors.SlotUnknownError(id)
			logger.WithField("pad", id).Warn(warn.Message)
			report.Skipped = append(report.Skipped, id)
			report.Warnings = append(report.Warnings, warn.Message)
			continue
		}
		jobs = append(jobs, padJob{index: i, id: id, yaw: yaw})
	}

	// Placement is independent per pad; run it on a bounded pool and
	// reassemble in pad order so output stays deterministic.
	rendered := make([][]string, len(jobs))
	var wg sync.WaitGroup
	sem := make(chan struct{}, runtime.GOMAXPROCS(0))
	for i, job := range jobs {
		wg.Add(1)
		sem <- struct{}{}
		go func(slot int, job padJob) {
			defer wg.Done()
			defer func() { <-sem }()
			rendered[slot] = renderPad(sec, job.id, job.yaw, passes)
		}(i, job)
	}
	wg.Wait()

	for _, padLines := range rendered {
		lines = append(lines, padLines...)
	}
	report.PadsPlaced = len(jobs)

	lines = append(lines, sec.Postscript...)
	report.Lines = len(lines)

	prog := &Program{Lines: lines, Report: report}

	commands, err := ParseProgram(lines)
	prog.Commands = commands
	if err != nil {
		return prog, err
	}

	logger.WithFields(log.Fields{
		"section": sec.Name,
		"pads":    report.PadsPlaced,
		"skipped": len(report.Skipped),
		"passes":  report.Passes,
		"lines":   report.Lines,
	}).Info("rendered section program")
	return prog, nil
}

// ParseProgram reconstructs the motion commands of a rendered program
// for verification or re-rendering. Non-motion lines are skipped; every
// malformed motion line is collected before reporting, so a bad program
// surfaces all of its defects at once.
func ParseProgram(lines []string) (gcode.Contour, error) {
	return gcode.ParseLines(lines)
}

// renderPad emits the lines for every pass at one pad: a rapid to the
// pass's entry point, then the transformed commands. The entry point
// is the transformed target of the pass's last command, which closes
// the loop back to the first command's start.
func renderPad(sec *Section, pad string, yaw float64, passes []offset.Pass) []string {
	var lines []string
	for _, pass := range passes {
		placed := transform.PlaceContour(pass.Commands, yaw, sec.Origin)

		entry := placed[len(placed)-1].Target()
		rapid := gcode.Command{Kind: gcode.Rapid, X: entry.X, Y: entry.Y, HasX: true, HasY: true}
		lines = append(lines, rapid.Format(4))

		for i, cmd := range placed {
			cmd.Feed = float64(sec.Feedrate)
			cmd.HasFeed = true
			if i == 0 {
				cmd.Comment = fmt.Sprintf("pad %s, offset %s", pad, formatOffset(pass.Offset))
			}
			lines = append(lines, cmd.Format(4))
		}
	}
	return lines
}

// formatOffset renders an offset the way it was configured: shortest
// decimal form, no trailing zeros.
func formatOffset(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func programSizeHint(sec *Section, passes []offset.Pass) int {
	perPass := 1
	if len(passes) > 0 {
		perPass += len(passes[0].Commands)
	}
	return len(sec.Preamble) + len(sec.Postscript) + 2 + len(sec.Pads)*len(passes)*perPass
}
