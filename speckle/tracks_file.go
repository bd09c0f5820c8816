package speckle

import (
	"encoding/csv"
	"io"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Column names of the trajectory-summary table
const (
	ColumnTrackIndex   = "TRACK_INDEX"
	ColumnDuration     = "TRACK_DURATION"
	ColumnDisplacement = "TRACK_DISPLACEMENT"
	ColumnSLS          = "MEAN_STRAIGHT_LINE_SPEED"
	ColumnMSD          = "MEAN_SQUARED_DISPLACEMENT"
)

// MissingMSD is stored as MSD of tracks loaded from tables without MSD column
const MissingMSD = -1.0

// placeholderRows is number of non-data rows following the header row
const placeholderRows = 3

// placeholder fills the non-data rows on save
const placeholder = "_"

var requiredColumns = []string{ColumnDuration, ColumnDisplacement, ColumnSLS}

var frequencyLabelPattern = regexp.MustCompile(`(?i)(control|[0-9]+(?:\.[0-9]+)? ?k?hz)`)

// FrequencyLabelFromPath extracts a frequency label ("control", "25khz", ...) from file name
func FrequencyLabelFromPath(path string) string {
	base := strings.ToLower(filepath.Base(path))
	return strings.ReplaceAll(frequencyLabelPattern.FindString(base), " ", "")
}

// ReadTracks parses a trajectory-summary table: header row, three placeholder rows, one row per track
func ReadTracks(r io.Reader) ([]BasicTrack, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.Wrap(ErrMalformed, "empty table")
	}
	if err != nil {
		return nil, errors.Wrapf(ErrMalformed, "can't read header: %v", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}
	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			return nil, errors.Wrapf(ErrMalformed, "missing column '%s'", name)
		}
	}
	msdIdx, hasMSD := columns[ColumnMSD]

	for i := 0; i < placeholderRows; i++ {
		_, err := reader.Read()
		if err == io.EOF {
			return nil, errors.Wrapf(ErrStructural, "expected %d placeholder rows, got %d", placeholderRows, i)
		}
		if err != nil {
			return nil, errors.Wrapf(ErrMalformed, "can't read placeholder row %d: %v", i+1, err)
		}
	}

	tracks := make([]BasicTrack, 0)
	for row := placeholderRows + 2; ; row++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(ErrMalformed, "row %d: %v", row, err)
		}
		if len(record) != len(header) {
			return nil, errors.Wrapf(ErrStructural, "row %d: expected %d fields, got %d", row, len(header), len(record))
		}
		duration, err := parseFloatField(record, columns[ColumnDuration])
		if err != nil {
			return nil, errors.Wrapf(err, "row %d: %s", row, ColumnDuration)
		}
		displacement, err := parseFloatField(record, columns[ColumnDisplacement])
		if err != nil {
			return nil, errors.Wrapf(err, "row %d: %s", row, ColumnDisplacement)
		}
		sls, err := parseFloatField(record, columns[ColumnSLS])
		if err != nil {
			return nil, errors.Wrapf(err, "row %d: %s", row, ColumnSLS)
		}
		msd := MissingMSD
		if hasMSD {
			msd, err = parseFloatField(record, msdIdx)
			if err != nil {
				return nil, errors.Wrapf(err, "row %d: %s", row, ColumnMSD)
			}
		}
		tracks = append(tracks, NewBasicTrack(int(math.Round(duration)), displacement, sls, msd))
	}
	return tracks, nil
}

func parseFloatField(record []string, idx int) (float64, error) {
	value, err := strconv.ParseFloat(strings.TrimSpace(record[idx]), 64)
	if err != nil {
		return 0, errors.Wrapf(ErrMalformed, "can't parse '%s'", record[idx])
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, errors.Wrapf(ErrMalformed, "non-finite value '%s'", record[idx])
	}
	return value, nil
}

// LoadTracksFile loads a trajectory-summary file as a FreqFile of BasicTracks
func LoadTracksFile(path string) (*FreqFile, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(ErrMalformed, "can't open '%s': %v", path, err)
	}
	defer file.Close()

	tracks, err := ReadTracks(file)
	if err != nil {
		return nil, errors.Wrapf(err, "can't load '%s'", path)
	}
	freqFile := NewFreqFile(WithPath(path), WithLabel(FrequencyLabelFromPath(path)))
	for _, track := range tracks {
		freqFile.Add(track)
	}
	return freqFile, nil
}

// WriteTracks writes tracks as a trajectory-summary table
func WriteTracks(w io.Writer, tracks []TrackStats) error {
	writer := csv.NewWriter(w)
	header := []string{ColumnTrackIndex, ColumnDuration, ColumnDisplacement, ColumnSLS, ColumnMSD}
	err := writer.Write(header)
	if err != nil {
		return errors.Wrap(err, "can't write header")
	}
	dummy := make([]string, len(header))
	for i := range dummy {
		dummy[i] = placeholder
	}
	for i := 0; i < placeholderRows; i++ {
		err = writer.Write(dummy)
		if err != nil {
			return errors.Wrap(err, "can't write placeholder row")
		}
	}
	for idx, track := range tracks {
		err = writer.Write([]string{
			strconv.Itoa(idx),
			strconv.Itoa(track.Duration()),
			formatFloat(track.Displacement()),
			formatFloat(track.SLS()),
			formatFloat(track.MSD()),
		})
		if err != nil {
			return errors.Wrapf(err, "can't write track %d", idx)
		}
	}
	writer.Flush()
	return errors.Wrap(writer.Error(), "can't flush tracks")
}

func formatFloat(value float64) string {
	return strconv.FormatFloat(value, 'g', -1, 64)
}

// SaveTracks writes the kept tracks (never the erased ones) to path as a trajectory-summary table
func (freqFile *FreqFile) SaveTracks(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "can't create '%s'", path)
	}
	err = WriteTracks(file, freqFile.kept)
	if err != nil {
		file.Close()
		return errors.Wrapf(err, "can't save '%s'", path)
	}
	return errors.Wrapf(file.Close(), "can't close '%s'", path)
}
