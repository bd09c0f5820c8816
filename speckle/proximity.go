package speckle

import (
	"math"
	"sort"

	"github.com/pkg/errors"
)

// frameSnapshot holds positions of every particle on a single frame.
// present[i] is false when particle i was not tracked on that frame.
type frameSnapshot struct {
	positions []Point
	present   []bool
}

// buildFrameIndex maps each frame present in any track to a snapshot of all particles. O(t*p)
func buildFrameIndex(tracks []*Track) (map[int]*frameSnapshot, []int) {
	index := make(map[int]*frameSnapshot)
	frames := make([]int, 0)
	for trackIdx, track := range tracks {
		for _, sample := range track.samples {
			snapshot, ok := index[sample.Frame]
			if !ok {
				snapshot = &frameSnapshot{
					positions: make([]Point, len(tracks)),
					present:   make([]bool, len(tracks)),
				}
				index[sample.Frame] = snapshot
				frames = append(frames, sample.Frame)
			}
			snapshot.positions[trackIdx] = sample.Point()
			snapshot.present[trackIdx] = true
		}
	}
	sort.Ints(frames)
	return index, frames
}

// tooClose reports whether particle idx is closer than cutoff to any other particle present in the snapshot. O(p)
func (snapshot *frameSnapshot) tooClose(idx int, cutoff float64) bool {
	p := snapshot.positions[idx]
	for otherIdx, other := range snapshot.positions {
		if otherIdx == idx || !snapshot.present[otherIdx] {
			continue
		}
		if euclideanDistance(p, other) < cutoff {
			return true
		}
	}
	return false
}

// SplitByRadius breaks simultaneous tracks, removing any region wherein a particle is closer
// than k radii to another particle. Tracks must share the frame axis.
//
// A particle never within the cutoff yields a single track equal to its input;
// each proximity interval cuts the track in two with the interval's samples dropped.
// Output holds tracks in the order they were closed during the frame sweep, followed by
// tracks still open at the end (by input index).
//
// Runs in O(t*p^2) for p particles over t frames. A neighbor grid could bring this down
// without changing the result.
func SplitByRadius(tracks []*Track, r float64, k int) ([]*Track, error) {
	if r < 0 || math.IsNaN(r) {
		return nil, errors.Wrapf(ErrInvalidArgument, "radius must be non-negative, got %f", r)
	}
	if k < 0 {
		return nil, errors.Wrapf(ErrInvalidArgument, "radius multiplier must be non-negative, got %d", k)
	}
	cutoff := float64(k) * r

	index, frames := buildFrameIndex(tracks)

	// Currently open output track per input particle (nil when closed)
	open := make([]*Track, len(tracks))
	out := make([]*Track, 0, len(tracks))

	for _, frame := range frames {
		snapshot := index[frame]
		for particleIdx := range tracks {
			if !snapshot.present[particleIdx] {
				continue
			}
			crowded := snapshot.tooClose(particleIdx, cutoff)
			current := open[particleIdx]
			switch {
			case current != nil && crowded:
				// Some particle is too close: deactivate
				out = append(out, current)
				open[particleIdx] = nil
			case current != nil:
				p := snapshot.positions[particleIdx]
				err := current.Append(p.X, p.Y, frame)
				if err != nil {
					return nil, errors.Wrapf(err, "can't extend track of particle %d", particleIdx)
				}
			case !crowded:
				// Nothing is too close: activate
				p := snapshot.positions[particleIdx]
				open[particleIdx] = &Track{
					samples: []Sample{NewSample(p.X, p.Y, frame)},
				}
			}
		}
	}

	for _, track := range open {
		if track != nil {
			out = append(out, track)
		}
	}
	return out, nil
}

// RadiusSweep is the outcome of splitting with a single radius multiplier
type RadiusSweep struct {
	K       int
	Tracks  []*Track
	MSDMean float64
	MSDStd  float64
}

// SweepRadii splits tracks for every multiplier in [0, kMax] and collects MSD statistics of the result
func SweepRadii(tracks []*Track, r float64, kMax int) ([]RadiusSweep, error) {
	if kMax < 0 {
		return nil, errors.Wrapf(ErrInvalidArgument, "max radius multiplier must be non-negative, got %d", kMax)
	}
	sweeps := make([]RadiusSweep, 0, kMax+1)
	for k := 0; k <= kMax; k++ {
		split, err := SplitByRadius(tracks, r, k)
		if err != nil {
			return nil, errors.Wrapf(err, "k=%d", k)
		}
		freqFile := NewFreqFile()
		for _, track := range split {
			freqFile.Add(track)
		}
		sweeps = append(sweeps, RadiusSweep{
			K:       k,
			Tracks:  split,
			MSDMean: freqFile.MSDMean(),
			MSDStd:  freqFile.MSDStd(),
		})
	}
	return sweeps, nil
}
