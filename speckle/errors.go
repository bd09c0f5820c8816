package speckle

import (
	"github.com/pkg/errors"
)

var (
	// ErrStructural marks an upstream data-format breach: unsorted frames, rows shorter
	// than the header, unterminated speckle blocks. Processing of the affected file stops.
	ErrStructural = errors.New("structural violation")
	// ErrMalformed marks a file that can't be interpreted (missing columns, bad numbers).
	// Batch pipelines skip such files and keep going.
	ErrMalformed = errors.New("malformed input")
	// ErrMissingParam is returned by filters called without a required parameter
	ErrMissingParam = errors.New("missing filter parameter")
	// ErrInvalidArgument is returned for out-of-domain numeric arguments
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNegativeMultiplier is returned when the Brownian margin multiplier is below zero
	ErrNegativeMultiplier = errors.New("multiplier must be non-negative")
	// ErrNoControl is returned when a directory holds no usable control file
	ErrNoControl = errors.New("no control file")
	// ErrUnknownFormat is returned for an unsupported input format name
	ErrUnknownFormat = errors.New("unknown file format")
)

// IsStructural reports whether err (or any error it wraps) is a structural violation
func IsStructural(err error) bool {
	return errors.Is(err, ErrStructural)
}

// IsMalformed reports whether err (or any error it wraps) is a malformed-input error
func IsMalformed(err error) bool {
	return errors.Is(err, ErrMalformed)
}
