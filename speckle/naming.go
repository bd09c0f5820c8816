package speckle

import (
	"path/filepath"
	"regexp"
	"strings"
)

// FilteredMarker is added to names of files written by filters
const FilteredMarker = "filtered"

var (
	// ControlPattern matches base names of control-condition summary files:
	// "control_tracks.csv", "0khz_tracks.csv", "0 KHz-2_tracks.csv", "t0khz.csv" and such
	ControlPattern = regexp.MustCompile(`(?i)^(((^|.*[^0-9.])0[ _-]?khz|.*control).*track.*|.*t(0[ _-]?khz|control).*)\.csv$`)
	// TrackFilePattern matches base names of trajectory-summary files
	TrackFilePattern = regexp.MustCompile(`(?i)track.*\.csv$`)
)

// IsControlFile reports whether path names a control-condition summary file
func IsControlFile(path string) bool {
	return ControlPattern.MatchString(filepath.Base(path))
}

// IsTrackFile reports whether path names a trajectory-summary file
func IsTrackFile(path string) bool {
	return TrackFilePattern.MatchString(filepath.Base(path))
}

// IsFilteredOutput reports whether path names an output of a previous filter run
func IsFilteredOutput(path string) bool {
	return strings.HasSuffix(strings.ToLower(filepath.Base(path)), "."+FilteredMarker+".csv")
}

// FilteredName returns output path for the filtered version of path
func FilteredName(path string) string {
	return path + "." + FilteredMarker + ".csv"
}

// canonicalPath resolves path to an absolute, symlink-free form used as visited-set key
func canonicalPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}

// visitedSet guarantees at-most-once processing of paths
type visitedSet map[string]struct{}

// mark records canonical path and reports whether it was seen for the first time
func (set visitedSet) mark(canonical string) bool {
	if _, ok := set[canonical]; ok {
		return false
	}
	set[canonical] = struct{}{}
	return true
}
