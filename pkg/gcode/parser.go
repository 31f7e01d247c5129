package gcode

import (
	"strconv"
	"strings"

	"carousel-go-migration/pkg/errors"
)

// movePrefix maps the exact "Gn " line prefixes to command kinds. The
// trailing space matters: modal lines like G17, G21 and G90 must never
// be read as moves.
var movePrefix = []struct {
	prefix string
	kind   Kind
}{
	{"G0 ", Rapid},
	{"G1 ", Linear},
	{"G2 ", ArcCW},
	{"G3 ", ArcCCW},
}

// ParseLine parses a single G-code line. Non-move lines (comments,
// blank lines, modal codes, M codes) return ok=false with no error.
// lineNum is 1-based and only used for error context.
func ParseLine(line string, lineNum int) (cmd *Command, ok bool, err error) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, ";") || strings.HasPrefix(line, "(") {
		return nil, false, nil
	}

	var kind Kind
	matched := false
	for _, mp := range movePrefix {
		if strings.HasPrefix(line, mp.prefix) {
			kind = mp.kind
			matched = true
			break
		}
	}
	if !matched {
		return nil, false, nil
	}

	// Split off the trailing comment before tokenizing.
	body := line
	comment := ""
	if idx := strings.IndexByte(line, ';'); idx >= 0 {
		body = strings.TrimSpace(line[:idx])
		comment = strings.TrimSpace(line[idx+1:])
	}

	// Tolerate comma-separated words from hand-edited programs.
	body = strings.ReplaceAll(body, ",", " ")
	parts := strings.Fields(body)
	if len(parts) < 2 {
		return nil, false, errors.ParseLineError(lineNum, "move command has no coordinates: "+line)
	}

	cmd = &Command{Kind: kind, Comment: comment}
	for _, part := range parts[1:] {
		value, err := strconv.ParseFloat(part[1:], 64)
		if err != nil {
			return nil, false, errors.ParseTokenError(lineNum, part, "not a number")
		}
		switch part[0] {
		case 'X':
			cmd.X, cmd.HasX = value, true
		case 'Y':
			cmd.Y, cmd.HasY = value, true
		case 'Z':
			cmd.Z, cmd.HasZ = value, true
		case 'R':
			cmd.Radius, cmd.HasRadius = value, true
		case 'F':
			cmd.Feed, cmd.HasFeed = value, true
		case 'I':
			cmd.I, cmd.HasCenter = value, true
		case 'J':
			cmd.J, cmd.HasCenter = value, true
		default:
			return nil, false, errors.ParseTokenError(lineNum, part, "unknown word")
		}
	}

	// Cutting moves need a full XY target.
	if kind != Rapid && (!cmd.HasX || !cmd.HasY) {
		return nil, false, errors.MissingCoordError(lineNum, kind.String())
	}
	// Arcs need a radius or a center offset.
	if kind.IsArc() && !cmd.HasRadius && !cmd.HasCenter {
		return nil, false, errors.MissingRadiusError(lineNum, kind.String())
	}

	return cmd, true, nil
}

// ParseLines parses a whole program, skipping non-move lines. Every
// malformed move line is collected so the caller sees all problems in
// one report rather than the first.
func ParseLines(lines []string) ([]*Command, error) {
	var cmds []*Command
	var errList errors.List

	for i, line := range lines {
		cmd, ok, err := ParseLine(line, i+1)
		if err != nil {
			if e, isE := err.(*errors.Error); isE {
				errList.Add(e)
			} else {
				errList.Add(errors.Wrap(err, errors.ErrParseLine, "unexpected parse failure").SetLine(i + 1))
			}
			continue
		}
		if ok {
			cmds = append(cmds, cmd)
		}
	}

	return cmds, errList.Err()
}

// ParseText parses a program given as a single string.
func ParseText(text string) ([]*Command, error) {
	return ParseLines(strings.Split(text, "\n"))
}
