package speckle

import (
	kalman_filter "github.com/LdDl/kalman-filter"
	"github.com/pkg/errors"
)

// SmoothingConfig holds props of the 2D Kalman filter applied to raw positions
type SmoothingConfig struct {
	// Time step between consecutive frames
	Dt float64
	// Control input (acceleration) along axes
	Ux float64
	Uy float64
	// Standard deviation of the acceleration (process noise)
	StdDevA float64
	// Standard deviation of the position measurements
	StdDevMx float64
	StdDevMy float64
}

// DefaultSmoothingConfig returns the same filter props as used for detection smoothing
func DefaultSmoothingConfig() SmoothingConfig {
	return SmoothingConfig{
		Dt:       1.0,
		Ux:       1.0,
		Uy:       1.0,
		StdDevA:  2.0,
		StdDevMx: 0.1,
		StdDevMy: 0.1,
	}
}

// Smoothed returns a new track with every position passed through a 2D Kalman filter.
// Frames are preserved; gaps between frames are bridged by extra prediction steps.
func (track *Track) Smoothed(cfg SmoothingConfig) (*Track, error) {
	if len(track.samples) == 0 {
		return &Track{}, nil
	}
	if cfg.Dt <= 0 {
		return nil, errors.Wrapf(ErrInvalidArgument, "smoothing time step must be positive, got %f", cfg.Dt)
	}
	first := track.samples[0]
	kf := kalman_filter.NewKalman2D(cfg.Dt, cfg.Ux, cfg.Uy, cfg.StdDevA, cfg.StdDevMx, cfg.StdDevMy, kalman_filter.WithState2D(first.X, first.Y))
	smoothed := &Track{
		samples: make([]Sample, 0, len(track.samples)),
	}
	smoothed.samples = append(smoothed.samples, first)
	for i := 1; i < len(track.samples); i++ {
		sample := track.samples[i]
		// Missing frames: advance the filter without measurements
		for gap := sample.Frame - track.samples[i-1].Frame; gap > 0; gap-- {
			kf.Predict()
		}
		err := kf.Update(sample.X, sample.Y)
		if err != nil {
			return nil, errors.Wrapf(err, "can't update smoothing filter on frame %d", sample.Frame)
		}
		stateX, stateY := kf.GetState()
		smoothed.samples = append(smoothed.samples, NewSample(stateX, stateY, sample.Frame))
	}
	return smoothed, nil
}
