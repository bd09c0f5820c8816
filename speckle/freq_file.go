package speckle

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/stat"
)

// FreqFile is a set of tracks recorded under a single experimental condition
// (one field frequency), together with data about where it came from.
// Tracks are either kept or erased; erased tracks can be restored or purged.
type FreqFile struct {
	// Source file
	Path string
	// Pattern used to discover the source file
	Pattern string
	// Human readable frequency label, e.g. "25khz" or "control"
	FrequencyLabel string
	// Free-form tags
	Tags []string

	kept   []TrackStats
	erased []TrackStats
}

// FreqFileOption configures a FreqFile on creation
type FreqFileOption func(*FreqFile)

// WithPath sets source path
func WithPath(path string) FreqFileOption {
	return func(freqFile *FreqFile) {
		freqFile.Path = path
	}
}

// WithPattern sets discovery pattern
func WithPattern(pattern string) FreqFileOption {
	return func(freqFile *FreqFile) {
		freqFile.Pattern = pattern
	}
}

// WithLabel sets frequency label
func WithLabel(label string) FreqFileOption {
	return func(freqFile *FreqFile) {
		freqFile.FrequencyLabel = label
	}
}

// WithTags sets tags
func WithTags(tags ...string) FreqFileOption {
	return func(freqFile *FreqFile) {
		freqFile.Tags = append([]string(nil), tags...)
	}
}

// NewFreqFile creates an empty FreqFile
func NewFreqFile(options ...FreqFileOption) *FreqFile {
	freqFile := &FreqFile{
		kept:   make([]TrackStats, 0),
		erased: make([]TrackStats, 0),
	}
	for _, option := range options {
		option(freqFile)
	}
	return freqFile
}

// Add appends tracks to the kept list
func (freqFile *FreqFile) Add(tracks ...TrackStats) {
	freqFile.kept = append(freqFile.kept, tracks...)
}

// Len returns number of kept tracks
func (freqFile *FreqFile) Len() int {
	return len(freqFile.kept)
}

// Tracks returns copy of the kept list
func (freqFile *FreqFile) Tracks() []TrackStats {
	tracks := make([]TrackStats, len(freqFile.kept))
	copy(tracks, freqFile.kept)
	return tracks
}

// Erased returns copy of the erased list
func (freqFile *FreqFile) Erased() []TrackStats {
	tracks := make([]TrackStats, len(freqFile.erased))
	copy(tracks, freqFile.erased)
	return tracks
}

// Filter moves every kept track for which fn returns true to the erased list.
// Returns number of tracks erased by this call and number of tracks remaining.
// If fn fails on any track nothing is moved.
func (freqFile *FreqFile) Filter(fn FilterFunc, params FilterParams) (int, int, error) {
	remove := make([]bool, len(freqFile.kept))
	for i, track := range freqFile.kept {
		drop, err := fn(track, params)
		if err != nil {
			return 0, len(freqFile.kept), err
		}
		remove[i] = drop
	}
	kept := make([]TrackStats, 0, len(freqFile.kept))
	erasedCount := 0
	for i, track := range freqFile.kept {
		if remove[i] {
			freqFile.erased = append(freqFile.erased, track)
			erasedCount++
			continue
		}
		kept = append(kept, track)
	}
	freqFile.kept = kept
	return erasedCount, len(freqFile.kept), nil
}

// RestoreErased appends every erased track back onto the kept list (keeping their relative order)
func (freqFile *FreqFile) RestoreErased() {
	freqFile.kept = append(freqFile.kept, freqFile.erased...)
	freqFile.erased = make([]TrackStats, 0)
}

// PurgeErased discards the erased list and returns it
func (freqFile *FreqFile) PurgeErased() []TrackStats {
	purged := freqFile.erased
	freqFile.erased = make([]TrackStats, 0)
	return purged
}

func (freqFile *FreqFile) slsValues() []float64 {
	values := make([]float64, len(freqFile.kept))
	for i, track := range freqFile.kept {
		values[i] = track.SLS()
	}
	return values
}

func (freqFile *FreqFile) msdValues() []float64 {
	values := make([]float64, len(freqFile.kept))
	for i, track := range freqFile.kept {
		values[i] = track.MSD()
	}
	return values
}

// popMeanStd returns population mean and standard deviation. Both are zero for empty input
func popMeanStd(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0.0, 0.0
	}
	return stat.PopMeanStdDev(values, nil)
}

// SLSMean returns mean SLS over kept tracks
func (freqFile *FreqFile) SLSMean() float64 {
	mean, _ := popMeanStd(freqFile.slsValues())
	return mean
}

// SLSStd returns population standard deviation of SLS over kept tracks
func (freqFile *FreqFile) SLSStd() float64 {
	_, std := popMeanStd(freqFile.slsValues())
	return std
}

// MSDMean returns mean MSD over kept tracks
func (freqFile *FreqFile) MSDMean() float64 {
	mean, _ := popMeanStd(freqFile.msdValues())
	return mean
}

// MSDStd returns population standard deviation of MSD over kept tracks
func (freqFile *FreqFile) MSDStd() float64 {
	_, std := popMeanStd(freqFile.msdValues())
	return std
}

func (freqFile *FreqFile) String() string {
	var sb strings.Builder
	sb.WriteString("FreqFile{")
	if freqFile.FrequencyLabel != "" {
		fmt.Fprintf(&sb, "label: %s, ", freqFile.FrequencyLabel)
	}
	if freqFile.Path != "" {
		fmt.Fprintf(&sb, "path: %s, ", freqFile.Path)
	}
	if freqFile.Pattern != "" {
		fmt.Fprintf(&sb, "pattern: %s, ", freqFile.Pattern)
	}
	if len(freqFile.Tags) > 0 {
		fmt.Fprintf(&sb, "tags: [%s], ", strings.Join(freqFile.Tags, ", "))
	}
	fmt.Fprintf(&sb, "kept: %d, erased: %d, sls: %.5f±%.5f}", len(freqFile.kept), len(freqFile.erased), freqFile.SLSMean(), freqFile.SLSStd())
	return sb.String()
}
