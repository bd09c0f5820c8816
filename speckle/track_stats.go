package speckle

// TrackStats is the capability set shared by every track variant.
// Consumers (FreqFile, filters, pipelines) must only rely on these methods,
// so raw-sample tracks and precomputed summaries are interchangeable.
type TrackStats interface {
	// Mean straight line speed
	SLS() float64
	// Straight line distance from first to last position
	Displacement() float64
	// Inclusive number of frames
	Duration() int
	// Mean squared displacement
	MSD() float64
}

// BasicTrack is a precomputed-statistic stand-in for Track.
// It is loaded from trajectory-summary files where raw positions are unavailable.
// It implements TrackStats interface.
type BasicTrack struct {
	duration     int
	displacement float64
	sls          float64
	msd          float64
}

// NewBasicTrack creates new instance of BasicTrack
func NewBasicTrack(duration int, displacement, sls, msd float64) BasicTrack {
	return BasicTrack{
		duration:     duration,
		displacement: displacement,
		sls:          sls,
		msd:          msd,
	}
}

// BasicTrackFrom snapshots statistics of any track variant
func BasicTrackFrom(track TrackStats) BasicTrack {
	return NewBasicTrack(track.Duration(), track.Displacement(), track.SLS(), track.MSD())
}

// SLS returns stored mean straight line speed
func (track BasicTrack) SLS() float64 {
	return track.sls
}

// Displacement returns stored displacement
func (track BasicTrack) Displacement() float64 {
	return track.displacement
}

// Duration returns stored duration
func (track BasicTrack) Duration() int {
	return track.duration
}

// MSD returns stored mean squared displacement. Equals MissingMSD when the source had no such column
func (track BasicTrack) MSD() float64 {
	return track.msd
}
