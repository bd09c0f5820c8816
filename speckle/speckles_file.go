package speckle

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Markers of the raw position log produced by speckle tracking
const (
	SpecklesHeader = "#speckles csv ver 1.2\n#x(double)\ty(double)\tsize(double)\tframe(int)\ttype(int)\n"
	StartSpeckle   = "#%start speckle%"
	StopSpeckle    = "#%stop speckle%"
)

// ParseSpeckles parses a raw position log into tracks.
// Each track is a block of "x y frame" (or "x y size frame type") rows between start and stop markers.
// Tracks spanning fewer than cfg.DurationThreshold frames are dropped; cfg.Smoothing (if set) is applied to the rest.
func ParseSpeckles(r io.Reader, cfg Config) ([]*Track, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	tracks := make([]*Track, 0)
	var current *Track
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		lower := strings.ToLower(line)
		switch {
		case strings.Contains(lower, "start speckle"):
			if current != nil {
				return nil, errors.Wrapf(ErrStructural, "line %d: block started before previous one stopped", lineNum)
			}
			current = &Track{}
			continue
		case strings.Contains(lower, "stop speckle"):
			if current == nil {
				return nil, errors.Wrapf(ErrStructural, "line %d: stop marker outside of block", lineNum)
			}
			tracks = append(tracks, current)
			current = nil
			continue
		case strings.HasPrefix(line, "#"):
			// Header or comment
			continue
		}
		if current == nil {
			return nil, errors.Wrapf(ErrStructural, "line %d: sample outside of block", lineNum)
		}
		sample, err := parseSpeckleRow(line)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", lineNum)
		}
		err = current.Append(sample.X, sample.Y, sample.Frame)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", lineNum)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(ErrMalformed, "can't scan speckles: %v", err)
	}
	if current != nil {
		return nil, errors.Wrap(ErrStructural, "last block is not terminated")
	}

	tracks = DropShortTracks(tracks, cfg.DurationThreshold)
	result := make([]*Track, 0, len(tracks))
	for _, track := range tracks {
		if cfg.Smoothing != nil {
			smoothed, err := track.Smoothed(*cfg.Smoothing)
			if err != nil {
				return nil, err
			}
			track = smoothed
		}
		result = append(result, track)
	}
	return result, nil
}

// DropShortTracks returns tracks spanning at least threshold frames. Non-positive threshold keeps every track
func DropShortTracks(tracks []*Track, threshold int) []*Track {
	if threshold <= 0 {
		return tracks
	}
	kept := make([]*Track, 0, len(tracks))
	for _, track := range tracks {
		if track.Duration() >= threshold {
			kept = append(kept, track)
		}
	}
	return kept
}

func parseSpeckleRow(line string) (Sample, error) {
	fields := strings.FieldsFunc(line, func(r rune) bool {
		return r == '\t' || r == ',' || r == ' '
	})
	frameIdx := 2
	switch len(fields) {
	case 3:
	case 5:
		// x, y, size, frame, type
		frameIdx = 3
	default:
		return Sample{}, errors.Wrapf(ErrStructural, "expected 3 or 5 fields, got %d", len(fields))
	}
	x, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return Sample{}, errors.Wrapf(ErrMalformed, "bad x '%s'", fields[0])
	}
	y, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return Sample{}, errors.Wrapf(ErrMalformed, "bad y '%s'", fields[1])
	}
	frame, err := parseFrame(fields[frameIdx])
	if err != nil {
		return Sample{}, err
	}
	return NewSample(x, y, frame), nil
}

func parseFrame(field string) (int, error) {
	frame, err := strconv.Atoi(field)
	if err == nil {
		return frame, nil
	}
	// Some exporters write frames as floats
	value, err := strconv.ParseFloat(field, 64)
	if err != nil || value != math.Trunc(value) {
		return 0, errors.Wrapf(ErrMalformed, "bad frame '%s'", field)
	}
	return int(value), nil
}

// WriteSpeckles writes tracks as a raw position log
func WriteSpeckles(w io.Writer, tracks []*Track) error {
	writer := bufio.NewWriter(w)
	_, err := writer.WriteString(SpecklesHeader)
	if err != nil {
		return errors.Wrap(err, "can't write header")
	}
	for _, track := range tracks {
		writer.WriteString(StartSpeckle + "\n")
		for _, sample := range track.samples {
			fmt.Fprintf(writer, "%s\t%s\t%d\n", formatFloat(sample.X), formatFloat(sample.Y), sample.Frame)
		}
		writer.WriteString(StopSpeckle + "\n")
	}
	return errors.Wrap(writer.Flush(), "can't flush speckles")
}

// LoadSpecklesFile loads a raw position log as a FreqFile of Tracks
func LoadSpecklesFile(path string, cfg Config) (*FreqFile, error) {
	tracks, err := LoadSpeckleTracks(path, cfg)
	if err != nil {
		return nil, err
	}
	freqFile := NewFreqFile(WithPath(path), WithLabel(FrequencyLabelFromPath(path)))
	for _, track := range tracks {
		freqFile.Add(track)
	}
	return freqFile, nil
}

// LoadSpeckleTracks loads a raw position log as a plain list of tracks, e.g. for splitting
func LoadSpeckleTracks(path string, cfg Config) ([]*Track, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(ErrMalformed, "can't open '%s': %v", path, err)
	}
	defer file.Close()
	tracks, err := ParseSpeckles(file, cfg)
	if err != nil {
		return nil, errors.Wrapf(err, "can't load '%s'", path)
	}
	return tracks, nil
}

// SaveSpeckles writes tracks to path as a raw position log
func SaveSpeckles(path string, tracks []*Track) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "can't create '%s'", path)
	}
	err = WriteSpeckles(file, tracks)
	if err != nil {
		file.Close()
		return errors.Wrapf(err, "can't save '%s'", path)
	}
	return errors.Wrapf(file.Close(), "can't close '%s'", path)
}

// LoadFreqFile loads a trajectory file of the given format
func LoadFreqFile(path string, format FileFormat, cfg Config) (*FreqFile, error) {
	switch format {
	case FormatTracks:
		return LoadTracksFile(path)
	case FormatSpeckles:
		return LoadSpecklesFile(path, cfg)
	default:
		return nil, errors.Wrapf(ErrUnknownFormat, "%d", format)
	}
}
