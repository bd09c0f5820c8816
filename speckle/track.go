package speckle

import (
	"github.com/pkg/errors"
)

// Track is a raw trajectory of a single tracked particle.
// Samples are kept sorted by frame in strictly ascending order.
// It implements TrackStats interface.
type Track struct {
	samples []Sample
}

// NewTrack creates a track from parallel coordinate and frame slices
func NewTrack(xs, ys []float64, frames []int) (*Track, error) {
	if len(xs) != len(ys) || len(xs) != len(frames) {
		return nil, errors.Wrapf(ErrStructural, "mismatched sample columns: x=%d, y=%d, frames=%d", len(xs), len(ys), len(frames))
	}
	track := &Track{
		samples: make([]Sample, 0, len(frames)),
	}
	for i := range frames {
		err := track.Append(xs[i], ys[i], frames[i])
		if err != nil {
			return nil, err
		}
	}
	return track, nil
}

// NewTrackFromSamples creates a track from already built samples. Input slice is copied
func NewTrackFromSamples(samples []Sample) (*Track, error) {
	track := &Track{
		samples: make([]Sample, 0, len(samples)),
	}
	for _, sample := range samples {
		err := track.Append(sample.X, sample.Y, sample.Frame)
		if err != nil {
			return nil, err
		}
	}
	return track, nil
}

// Append adds a position to the end of the track.
// The frame must be greater than the frame of the last sample.
func (track *Track) Append(x, y float64, frame int) error {
	if n := len(track.samples); n > 0 && frame <= track.samples[n-1].Frame {
		return errors.Wrapf(ErrStructural, "frame %d does not follow frame %d", frame, track.samples[n-1].Frame)
	}
	track.samples = append(track.samples, NewSample(x, y, frame))
	return nil
}

// Len returns number of samples
func (track *Track) Len() int {
	return len(track.samples)
}

// Samples returns copy of track's samples
func (track *Track) Samples() []Sample {
	samples := make([]Sample, len(track.samples))
	copy(samples, track.samples)
	return samples
}

// Frames returns frame numbers of track's samples
func (track *Track) Frames() []int {
	frames := make([]int, len(track.samples))
	for i, sample := range track.samples {
		frames[i] = sample.Frame
	}
	return frames
}

// FirstFrame returns frame of the first sample or -1 for an empty track
func (track *Track) FirstFrame() int {
	if len(track.samples) == 0 {
		return -1
	}
	return track.samples[0].Frame
}

// LastFrame returns frame of the last sample or -1 for an empty track
func (track *Track) LastFrame() int {
	if len(track.samples) == 0 {
		return -1
	}
	return track.samples[len(track.samples)-1].Frame
}

// elapsedFrames is the number of frame steps between first and last sample
func (track *Track) elapsedFrames() int {
	return track.LastFrame() - track.FirstFrame()
}

// travelled is the sum of distances between consecutive samples
func (track *Track) travelled() float64 {
	sum := 0.0
	for i := 1; i < len(track.samples); i++ {
		sum += euclideanDistance(track.samples[i-1].Point(), track.samples[i].Point())
	}
	return sum
}

// Displacement returns straight line distance from first to last sample
func (track *Track) Displacement() float64 {
	if len(track.samples) == 0 {
		return 0.0
	}
	return euclideanDistance(track.samples[0].Point(), track.samples[len(track.samples)-1].Point())
}

// SLS returns mean straight line speed: displacement per elapsed frame
func (track *Track) SLS() float64 {
	if len(track.samples) < 2 {
		return 0.0
	}
	return track.Displacement() / float64(track.elapsedFrames())
}

// MDTS returns mean distance traveled speed: path length per elapsed frame
func (track *Track) MDTS() float64 {
	if len(track.samples) < 2 {
		return 0.0
	}
	return track.travelled() / float64(track.elapsedFrames())
}

// MV returns mean magnitude of the per-step velocity vectors
func (track *Track) MV() float64 {
	if len(track.samples) < 2 {
		return 0.0
	}
	return track.travelled() / float64(len(track.samples)-1)
}

// Duration returns inclusive number of frames the track spans
func (track *Track) Duration() int {
	if len(track.samples) == 0 {
		return 0
	}
	return track.elapsedFrames() + 1
}

// MSD returns mean squared displacement from the first sample over every later sample
func (track *Track) MSD() float64 {
	if len(track.samples) < 2 {
		return 0.0
	}
	first := track.samples[0].Point()
	sum := 0.0
	for _, sample := range track.samples[1:] {
		sum += squaredDistance(first, sample.Point())
	}
	return sum / float64(len(track.samples)-1)
}
