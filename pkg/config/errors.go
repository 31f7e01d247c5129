package config

import (
	"carousel-go-migration/pkg/errors"
)

// ErrMissingSection returns an error for a missing section.
func ErrMissingSection(section string) *errors.Error {
	return errors.ConfigSectionError(section)
}

// ErrMissingOption returns an error for a required but missing option.
func ErrMissingOption(section, option string) *errors.Error {
	return errors.ConfigOptionError(section, option)
}

// ErrInvalidValue returns an error for an unparseable value.
func ErrInvalidValue(section, option, value, expected string) *errors.Error {
	return errors.ConfigValueError(section, option, value, expected)
}
