// Package config loads command line settings from speckle.yaml, SPECKLE_* environment variables and defaults.
package config

import (
	"github.com/LdDl/speckle-go/speckle"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	fileName  = "speckle"
	fileType  = "yaml"
	envPrefix = "SPECKLE"
)

// Setting keys. Flags are bound to the same names
const (
	KeyK                 = "k"
	KeyDurationThreshold = "duration_threshold"
	KeyOriginalWidth     = "original_width"
	KeyProcessedWidth    = "processed_width"
	KeyRadius            = "radius"
	KeyRadiusMultiplier  = "radius_multiplier"
	KeyLedger            = "ledger"
	KeySmooth            = "smooth"
)

// Keys returns every setting key
func Keys() []string {
	return []string{KeyK, KeyDurationThreshold, KeyOriginalWidth, KeyProcessedWidth, KeyRadius, KeyRadiusMultiplier, KeyLedger, KeySmooth}
}

// Settings is resolved run configuration
type Settings struct {
	// Margin above Brownian motion in standard deviations
	K float64
	// Minimum frame span of a raw track
	DurationThreshold int
	// Footage widths used to derive the adjustment coefficient
	OriginalWidth  int
	ProcessedWidth int
	// Proximity radius and the largest multiplier to sweep
	Radius           float64
	RadiusMultiplier int
	// Path to sqlite run ledger. Empty disables recording
	Ledger string
	// Run raw positions through Kalman filter before summarizing
	Smooth bool
}

// New returns viper instance with defaults and environment binding, without reading any file
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyK, 0.0)
	v.SetDefault(KeyDurationThreshold, 30)
	v.SetDefault(KeyOriginalWidth, 1028)
	v.SetDefault(KeyProcessedWidth, 256)
	v.SetDefault(KeyRadius, 1.0)
	v.SetDefault(KeyRadiusMultiplier, 2)
	v.SetDefault(KeyLedger, "")
	v.SetDefault(KeySmooth, false)
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	return v
}

// Load reads speckle.yaml from configDir on top of defaults.
// Missing file (or empty configDir) is not an error
func Load(configDir string) (*viper.Viper, error) {
	v := New()
	if configDir == "" {
		return v, nil
	}
	v.SetConfigName(fileName)
	v.SetConfigType(fileType)
	v.AddConfigPath(configDir)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return v, nil
		}
		return nil, errors.Wrapf(err, "can't read config in '%s'", configDir)
	}
	return v, nil
}

// Resolve extracts Settings from viper instance and validates them
func Resolve(v *viper.Viper) (Settings, error) {
	settings := Settings{
		K:                 v.GetFloat64(KeyK),
		DurationThreshold: v.GetInt(KeyDurationThreshold),
		OriginalWidth:     v.GetInt(KeyOriginalWidth),
		ProcessedWidth:    v.GetInt(KeyProcessedWidth),
		Radius:            v.GetFloat64(KeyRadius),
		RadiusMultiplier:  v.GetInt(KeyRadiusMultiplier),
		Ledger:            v.GetString(KeyLedger),
		Smooth:            v.GetBool(KeySmooth),
	}
	if settings.K < 0 {
		return Settings{}, errors.Wrapf(speckle.ErrNegativeMultiplier, "k=%v", settings.K)
	}
	if settings.Radius < 0 || settings.RadiusMultiplier < 0 {
		return Settings{}, errors.Wrapf(speckle.ErrInvalidArgument, "radius=%v, multiplier=%d", settings.Radius, settings.RadiusMultiplier)
	}
	return settings, nil
}

// LoaderConfig converts settings into loader configuration
func (settings Settings) LoaderConfig() (speckle.Config, error) {
	coefficient, err := speckle.ScaleCoefficient(settings.OriginalWidth, settings.ProcessedWidth)
	if err != nil {
		return speckle.Config{}, err
	}
	cfg := speckle.DefaultConfig()
	cfg.DurationThreshold = settings.DurationThreshold
	cfg.AdjustmentCoefficient = coefficient
	if settings.Smooth {
		smoothing := speckle.DefaultSmoothingConfig()
		cfg.Smoothing = &smoothing
	}
	return cfg, cfg.Validate()
}
