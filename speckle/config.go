package speckle

import (
	"github.com/pkg/errors"
)

// FileFormat is for type of trajectory file to be loaded
type FileFormat uint16

const (
	// FormatTracks is the per-track summary table (one row per track)
	FormatTracks FileFormat = iota
	// FormatSpeckles is the raw position log (one block of samples per track)
	FormatSpeckles
)

func (format FileFormat) String() string {
	switch format {
	case FormatTracks:
		return "tracks"
	case FormatSpeckles:
		return "speckles"
	default:
		return "unknown"
	}
}

// ParseFileFormat parses format name as used on the command line
func ParseFileFormat(name string) (FileFormat, error) {
	switch name {
	case "tracks", "track":
		return FormatTracks, nil
	case "speckles", "speckle":
		return FormatSpeckles, nil
	default:
		return 0, errors.Wrapf(ErrUnknownFormat, "'%s'", name)
	}
}

// Config holds loader settings. It is passed explicitly to every loader; there is no package-level state.
type Config struct {
	// Tracks spanning fewer frames are dropped while parsing raw position logs. Zero disables the check
	DurationThreshold int
	// Multiplier applied to distance-like statistics when converting raw logs.
	// Compensates for downscaled footage: original width / processed width
	AdjustmentCoefficient float64
	// Kalman smoothing of raw positions. Nil disables smoothing
	Smoothing *SmoothingConfig
}

// DefaultConfig returns default loader settings: no duration threshold and no rescaling
func DefaultConfig() Config {
	return Config{
		DurationThreshold:     0,
		AdjustmentCoefficient: 1.0,
	}
}

// ScaleCoefficient returns adjustment coefficient for footage downscaled from originalWidth to processedWidth pixels
func ScaleCoefficient(originalWidth, processedWidth int) (float64, error) {
	if originalWidth <= 0 || processedWidth <= 0 {
		return 0, errors.Wrapf(ErrInvalidArgument, "widths must be positive: original=%d, processed=%d", originalWidth, processedWidth)
	}
	return float64(originalWidth) / float64(processedWidth), nil
}

// Validate checks loader settings
func (cfg Config) Validate() error {
	if cfg.DurationThreshold < 0 {
		return errors.Wrapf(ErrInvalidArgument, "duration threshold must be non-negative, got %d", cfg.DurationThreshold)
	}
	if cfg.AdjustmentCoefficient <= 0 {
		return errors.Wrapf(ErrInvalidArgument, "adjustment coefficient must be positive, got %f", cfg.AdjustmentCoefficient)
	}
	return nil
}
