// Unified error handling for the carousel toolpath generator
//
// Copyright (C) 2026  Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package errors

import (
	"fmt"
	"strings"
)

// ErrorCode represents the category of error
type ErrorCode string

const (
	// G-code parse errors
	ErrParseLine          ErrorCode = "PARSE_LINE"
	ErrParseToken         ErrorCode = "PARSE_TOKEN"
	ErrParseMissingCoord  ErrorCode = "PARSE_MISSING_COORD"
	ErrParseMissingRadius ErrorCode = "PARSE_MISSING_RADIUS"

	// Geometry errors
	ErrGeometryArc         ErrorCode = "GEOMETRY_ARC"
	ErrGeometryDegenerate  ErrorCode = "GEOMETRY_DEGENERATE"
	ErrGeometryVertexCount ErrorCode = "GEOMETRY_VERTEX_COUNT"
	ErrGeometryRadius      ErrorCode = "GEOMETRY_RADIUS"

	// Configuration errors
	ErrConfigSection ErrorCode = "CONFIG_SECTION"
	ErrConfigOption  ErrorCode = "CONFIG_OPTION"
	ErrConfigValue   ErrorCode = "CONFIG_VALUE"

	// Placement and calibration errors
	ErrSlotUnknown    ErrorCode = "SLOT_UNKNOWN"
	ErrCalibrateChord ErrorCode = "CALIBRATE_CHORD"
	ErrCalibrateFit   ErrorCode = "CALIBRATE_FIT"
)

// Error is the unified error type for the toolpath pipeline
type Error struct {
	// Code is the error category
	Code ErrorCode

	// Message is a human-readable error description
	Message string

	// Line is the 1-based source line of a G-code program (if applicable)
	Line int

	// Token is the offending G-code token (if applicable)
	Token string

	// Section is the config section or slot identifier context
	Section string

	// Option is the config option name (if applicable)
	Option string

	// Err wraps the underlying error
	Err error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s", e.Code, e.Line, e.Message)
	}
	if e.Section != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Section, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Err
}

// SetLine sets the source line number
func (e *Error) SetLine(line int) *Error {
	e.Line = line
	return e
}

// SetToken sets the offending token
func (e *Error) SetToken(token string) *Error {
	e.Token = token
	return e
}

// SetSection sets the context section
func (e *Error) SetSection(section string) *Error {
	e.Section = section
	return e
}

// SetOption sets the config option
func (e *Error) SetOption(option string) *Error {
	e.Option = option
	return e
}

// New creates a new Error
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(err error, code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Parse errors

// ParseLineError creates an error for a malformed G-code line
func ParseLineError(line int, reason string) *Error {
	return New(ErrParseLine, reason).SetLine(line)
}

// ParseTokenError creates an error for an unparseable token within a line
func ParseTokenError(line int, token, reason string) *Error {
	return New(ErrParseToken, fmt.Sprintf("invalid token %q: %s", token, reason)).
		SetLine(line).
		SetToken(token)
}

// MissingCoordError creates an error for a move command without X or Y
func MissingCoordError(line int, command string) *Error {
	return New(ErrParseMissingCoord, fmt.Sprintf("%s command missing X or Y coordinate", command)).
		SetLine(line)
}

// MissingRadiusError creates an error for an arc command without R or I/J
func MissingRadiusError(line int, command string) *Error {
	return New(ErrParseMissingRadius, fmt.Sprintf("%s arc missing radius and center offset", command)).
		SetLine(line)
}

// Geometry errors

// ArcError creates an error for a geometrically infeasible arc
func ArcError(chord, radius float64) *Error {
	return New(ErrGeometryArc, fmt.Sprintf("chord %.4f exceeds arc diameter %.4f", chord, 2*radius))
}

// DegenerateError creates an error for degenerate offset input
func DegenerateError(reason string) *Error {
	return New(ErrGeometryDegenerate, reason)
}

// VertexCountError creates an error for an offset pass whose buffered polygon
// does not match the source polygon vertex-for-vertex
func VertexCountError(want, got int) *Error {
	return New(ErrGeometryVertexCount, fmt.Sprintf("buffered polygon has %d vertices, template has %d", got, want))
}

// RadiusError creates an error for a non-positive derived arc radius
func RadiusError(radius float64) *Error {
	return New(ErrGeometryRadius, fmt.Sprintf("derived arc radius %.4f is not positive", radius))
}

// Configuration errors

// ConfigSectionError creates an error for a missing config section
func ConfigSectionError(section string) *Error {
	return New(ErrConfigSection, fmt.Sprintf("section '%s' not found", section)).
		SetSection(section)
}

// ConfigOptionError creates an error for a missing config option
func ConfigOptionError(section, option string) *Error {
	return New(ErrConfigOption, fmt.Sprintf("option '%s' not found in section '%s'", option, section)).
		SetSection(section).
		SetOption(option)
}

// ConfigValueError creates an error for an unparseable config value
func ConfigValueError(section, option, value, targetType string) *Error {
	return New(ErrConfigValue, fmt.Sprintf("option '%s' in section '%s': cannot parse '%s' as %s", option, section, value, targetType)).
		SetSection(section).
		SetOption(option)
}

// Placement errors

// SlotUnknownError creates a warning-grade error for a pad id absent from the slot table
func SlotUnknownError(pad string) *Error {
	return New(ErrSlotUnknown, fmt.Sprintf("pad '%s' not present in slot table", pad)).
		SetSection(pad)
}

// Calibration errors

// ChordError creates an error for fiducials too far apart for the expected radius
func ChordError(chord, radius float64) *Error {
	return New(ErrCalibrateChord, fmt.Sprintf("fiducial chord %.4f exceeds expected diameter %.4f", chord, 2*radius))
}

// FitError creates an error for a failed least-squares circle fit
func FitError(reason string) *Error {
	return New(ErrCalibrateFit, reason)
}

// Is checks if error matches the given error code
func Is(err error, code ErrorCode) bool {
	if e, ok := err.(*Error); ok {
		return e.Code == code
	}
	return false
}

// IsParse checks if error is a G-code parse error
func IsParse(err error) bool {
	return Is(err, ErrParseLine) ||
		Is(err, ErrParseToken) ||
		Is(err, ErrParseMissingCoord) ||
		Is(err, ErrParseMissingRadius)
}

// IsGeometry checks if error is a geometry error
func IsGeometry(err error) bool {
	return Is(err, ErrGeometryArc) ||
		Is(err, ErrGeometryDegenerate) ||
		Is(err, ErrGeometryVertexCount) ||
		Is(err, ErrGeometryRadius)
}

// IsConfig checks if error is a config error
func IsConfig(err error) bool {
	return Is(err, ErrConfigSection) ||
		Is(err, ErrConfigOption) ||
		Is(err, ErrConfigValue)
}

// List collects line-level errors so a program re-parse can be reported
// exhaustively instead of stopping at the first bad line.
type List struct {
	Errors []*Error
}

// Add appends an error to the list. nil is ignored.
func (l *List) Add(err *Error) {
	if err != nil {
		l.Errors = append(l.Errors, err)
	}
}

// Empty reports whether the list holds no errors.
func (l *List) Empty() bool {
	return len(l.Errors) == 0
}

// Err returns the list as an error, or nil if the list is empty.
func (l *List) Err() error {
	if l.Empty() {
		return nil
	}
	return l
}

// Error implements the error interface, one collected error per line.
func (l *List) Error() string {
	msgs := make([]string, len(l.Errors))
	for i, e := range l.Errors {
		msgs[i] = e.Error()
	}
	return fmt.Sprintf("%d error(s):\n%s", len(l.Errors), strings.Join(msgs, "\n"))
}
