package calibrate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/jbeda/geom"

	"carousel-go-migration/pkg/transform"
)

// Generated programs carry their expected fiducials in header
// comments, e.g. "; reference_point1 = (-199.2901, -152.4163)".
var refPointRe = regexp.MustCompile(`(?i)reference_point\d+\s*=\s*\(\s*([-+]?\d+\.?\d*)\s*,\s*([-+]?\d+\.?\d*)\s*\)`)

// ParseReferencePoints extracts the first two reference points from a
// program's comments. Missing points stay zero; n reports how many
// were found.
func ParseReferencePoints(program string) (points [2]geom.Coord, n int) {
	for _, line := range strings.Split(program, "\n") {
		m := refPointRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		x, errX := strconv.ParseFloat(m[1], 64)
		y, errY := strconv.ParseFloat(m[2], 64)
		if errX != nil || errY != nil {
			continue
		}
		points[n] = geom.Coord{X: x, Y: y}
		n++
		if n == 2 {
			break
		}
	}
	return points, n
}

// UpdateReferencePoints rewrites the reference_point1/2 comment lines
// with the actual probed coordinates, so a corrected program documents
// the measurement it was corrected against.
func UpdateReferencePoints(program string, actual [2]geom.Coord) string {
	lines := strings.Split(program, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, ";") {
			continue
		}
		lower := strings.ToLower(trimmed)
		if strings.Contains(lower, "reference_point1") {
			lines[i] = fmt.Sprintf("; reference_point1 = (%.4f, %.4f)", actual[0].X, actual[0].Y)
		} else if strings.Contains(lower, "reference_point2") {
			lines[i] = fmt.Sprintf("; reference_point2 = (%.4f, %.4f)", actual[1].X, actual[1].Y)
		}
	}
	return strings.Join(lines, "\n")
}

// Apply corrects a whole program with this result and stamps the
// actual fiducials into its reference-point comments. The corrected
// text is returned alongside any parse errors collected from
// malformed move lines, which pass through uncorrected.
func (r *Result) Apply(program string, actual [2]geom.Coord) (string, error) {
	corrected, err := transform.Correct(program, r.Rotation, r.Center)
	return UpdateReferencePoints(corrected, actual), err
}
