package speckle

import (
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// Name suffixes of raw position logs and the summaries produced from them
const (
	SpecklesSuffix = "_speckles.csv"
	TracksSuffix   = "_tracks.csv"
)

// Summarize turns raw tracks into summary rows. Distance-like statistics are scaled
// by the adjustment coefficient (MSD by its square).
func Summarize(tracks []*Track, coefficient float64) []TrackStats {
	summary := make([]TrackStats, 0, len(tracks))
	for _, track := range tracks {
		summary = append(summary, NewBasicTrack(
			track.Duration(),
			track.Displacement()*coefficient,
			track.SLS()*coefficient,
			track.MSD()*coefficient*coefficient,
		))
	}
	return summary
}

// ConvertSpeckles reads the raw position log at src and writes its trajectory summary to dst
func ConvertSpeckles(src, dst string, cfg Config) (int, error) {
	err := cfg.Validate()
	if err != nil {
		return 0, err
	}
	tracks, err := LoadSpeckleTracks(src, cfg)
	if err != nil {
		return 0, err
	}
	freqFile := NewFreqFile(WithPath(dst), WithLabel(FrequencyLabelFromPath(src)))
	freqFile.Add(Summarize(tracks, cfg.AdjustmentCoefficient)...)
	err = freqFile.SaveTracks(dst)
	if err != nil {
		return 0, err
	}
	return freqFile.Len(), nil
}

// ConvertResult is the outcome of converting a single raw position log
type ConvertResult struct {
	Source string
	Output string
	Tracks int
	Err    error
}

// ConvertTree converts every raw position log below root into a summary file next to it.
// Files failing to convert are logged and skipped; structural violations are reported via the returned error.
func ConvertTree(root string, cfg Config) ([]ConvertResult, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, err
	}
	visited := make(visitedSet)
	results := make([]ConvertResult, 0)
	failed := 0
	err = filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			Logf("Can't walk '%s': %v\n", path, walkErr)
			return nil
		}
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), SpecklesSuffix) {
			return nil
		}
		canonical, err := canonicalPath(path)
		if err != nil {
			Logf("Can't resolve '%s': %v\n", path, err)
			return nil
		}
		if !visited.mark(canonical) {
			return nil
		}
		Logf("On file %s\n", canonical)
		output := strings.TrimSuffix(canonical, SpecklesSuffix) + TracksSuffix
		count, err := ConvertSpeckles(canonical, output, cfg)
		result := ConvertResult{
			Source: canonical,
			Tracks: count,
			Err:    err,
		}
		if err != nil {
			Logf("Failure in %s: %v\n", canonical, err)
			if IsStructural(err) {
				failed++
			}
		} else {
			result.Output = output
		}
		results = append(results, result)
		return nil
	})
	if err != nil {
		return results, errors.Wrapf(err, "can't walk '%s'", root)
	}
	if failed > 0 {
		return results, errors.Wrapf(ErrStructural, "%d file(s) failed", failed)
	}
	return results, nil
}
