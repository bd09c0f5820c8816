package speckle

import (
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// FileStatus is for outcome of filtering a single file
type FileStatus string

const (
	// StatusFiltered means filtered tracks were written to the output file
	StatusFiltered FileStatus = "filtered"
	// StatusOverFiltered means no tracks survived; no output was written
	StatusOverFiltered FileStatus = "over-filtered"
	// StatusMalformed means the file could not be read and was skipped
	StatusMalformed FileStatus = "malformed"
	// StatusFailed means a structural violation (or a write failure) aborted the file
	StatusFailed FileStatus = "failed"
)

// FileResult is the outcome of filtering a single condition file
type FileResult struct {
	Path      string
	Control   string
	Output    string
	Threshold float64
	Dropped   int
	Remaining int
	Status    FileStatus
	Err       error
}

// ThresholdReport summarizes a control-relative threshold run
type ThresholdReport struct {
	RunID     uuid.UUID
	Root      string
	K         float64
	StartedAt time.Time
	// Every processed condition file, in processing order
	Files []FileResult
	// Directories skipped for lack of a usable control file
	NoControl []string
	// Sums over successfully loaded files
	TotalDropped   int
	TotalRemaining int
}

// DroppedPercent returns share of dropped tracks in percents. Zero when nothing was loaded
func (report *ThresholdReport) DroppedPercent() float64 {
	total := report.TotalDropped + report.TotalRemaining
	if total == 0 {
		return 0.0
	}
	return 100.0 * float64(report.TotalDropped) / float64(total)
}

// withStatus returns results with the given status
func (report *ThresholdReport) withStatus(status FileStatus) []FileResult {
	results := make([]FileResult, 0)
	for _, result := range report.Files {
		if result.Status == status {
			results = append(results, result)
		}
	}
	return results
}

// Skipped returns files which were filtered down to nothing
func (report *ThresholdReport) Skipped() []FileResult {
	return report.withStatus(StatusOverFiltered)
}

// Failed returns files aborted by structural violations
func (report *ThresholdReport) Failed() []FileResult {
	return report.withStatus(StatusFailed)
}

// Malformed returns files skipped as unreadable
func (report *ThresholdReport) Malformed() []FileResult {
	return report.withStatus(StatusMalformed)
}

// Written returns files for which output was written
func (report *ThresholdReport) Written() []FileResult {
	return report.withStatus(StatusFiltered)
}

// ThresholdPipeline walks an experiment tree and, per directory, removes every track
// slower than the Brownian threshold derived from that directory's control file:
// threshold = mean(control SLS) + k * std(control SLS)
type ThresholdPipeline struct {
	// Margin above Brownian motion in standard deviations
	k float64
	// Loads a trajectory-summary file
	loader func(path string) (*FreqFile, error)
	// Per-run bookkeeping
	visitedDirs  visitedSet
	visitedFiles visitedSet
}

// PipelineOption configures ThresholdPipeline
type PipelineOption func(*ThresholdPipeline)

// WithLoader replaces the summary file loader (LoadTracksFile by default)
func WithLoader(loader func(path string) (*FreqFile, error)) PipelineOption {
	return func(pipeline *ThresholdPipeline) {
		pipeline.loader = loader
	}
}

// NewThresholdPipeline creates new instance of ThresholdPipeline. k must be non-negative
func NewThresholdPipeline(k float64, options ...PipelineOption) (*ThresholdPipeline, error) {
	if k < 0 || math.IsNaN(k) {
		return nil, errors.Wrapf(ErrNegativeMultiplier, "got %f", k)
	}
	pipeline := &ThresholdPipeline{
		k:      k,
		loader: LoadTracksFile,
	}
	for _, option := range options {
		option(pipeline)
	}
	return pipeline, nil
}

// K returns margin multiplier
func (pipeline *ThresholdPipeline) K() float64 {
	return pipeline.k
}

// Threshold derives the Brownian SLS threshold from a control FreqFile
func (pipeline *ThresholdPipeline) Threshold(control *FreqFile) float64 {
	return control.SLSMean() + pipeline.k*control.SLSStd()
}

// Run processes root and every directory below it.
// Unreadable files, over-filtered files and directories without control are recorded and skipped.
// If any file hit a structural violation the walk still completes, and the returned error wraps ErrStructural.
func (pipeline *ThresholdPipeline) Run(root string) (*ThresholdReport, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, errors.Wrapf(err, "can't stat root '%s'", root)
	}
	if !info.IsDir() {
		return nil, errors.Wrapf(ErrInvalidArgument, "root '%s' is not a directory", root)
	}
	pipeline.visitedDirs = make(visitedSet)
	pipeline.visitedFiles = make(visitedSet)
	report := &ThresholdReport{
		RunID:     uuid.New(),
		Root:      root,
		K:         pipeline.k,
		StartedAt: time.Now(),
		Files:     make([]FileResult, 0),
		NoControl: make([]string, 0),
	}

	pipeline.filterDirectory(root, report)

	if failed := report.Failed(); len(failed) > 0 {
		return report, errors.Wrapf(ErrStructural, "%d file(s) failed, first: %v", len(failed), failed[0].Err)
	}
	return report, nil
}

// filterDirectory handles subdirectories first, then the directory's own files
func (pipeline *ThresholdPipeline) filterDirectory(dir string, report *ThresholdReport) {
	canonical, err := canonicalPath(dir)
	if err != nil {
		Logf("Can't resolve directory '%s': %v\n", dir, err)
		return
	}
	if !pipeline.visitedDirs.mark(canonical) {
		return
	}
	Logf("Filtering directory %s...\n", canonical)

	entries, err := os.ReadDir(canonical)
	if err != nil {
		Logf("Can't read directory '%s': %v\n", canonical, err)
		return
	}

	trackFiles := make([]string, 0)
	seen := make(map[string]struct{})
	for _, entry := range entries {
		name := entry.Name()
		path := filepath.Join(canonical, name)
		isDir, isFile := entryKind(path, entry)
		if isDir {
			if strings.HasPrefix(name, ".") {
				continue
			}
			pipeline.filterDirectory(path, report)
			continue
		}
		if !isFile || !IsTrackFile(name) || IsFilteredOutput(name) {
			continue
		}
		// Files are filtered only by the directory holding them, with that directory's control
		resolved, err := canonicalPath(path)
		if err != nil {
			Logf("Can't resolve file '%s': %v\n", path, err)
			continue
		}
		if filepath.Dir(resolved) != canonical {
			Logf("Skipping '%s': links to '%s' outside of '%s'\n", path, resolved, canonical)
			continue
		}
		if _, ok := seen[resolved]; ok {
			continue
		}
		seen[resolved] = struct{}{}
		trackFiles = append(trackFiles, path)
	}

	controlLink, err := pickControl(trackFiles)
	if err != nil {
		Logf("Failed to find control file in '%s'\n", canonical)
		report.NoControl = append(report.NoControl, canonical)
		return
	}
	controlPath, err := canonicalPath(controlLink)
	if err != nil {
		Logf("Can't resolve control file '%s': %v\n", controlLink, err)
		report.NoControl = append(report.NoControl, canonical)
		return
	}
	control, err := pipeline.loader(controlPath)
	if err != nil {
		Logf("Can't load control file '%s': %v\n", controlPath, err)
		report.Files = append(report.Files, failureResult(controlPath, controlPath, err))
		report.NoControl = append(report.NoControl, canonical)
		return
	}
	if control.Len() == 0 {
		Logf("Control file '%s' has no tracks\n", controlPath)
		report.NoControl = append(report.NoControl, canonical)
		return
	}
	threshold := pipeline.Threshold(control)

	for _, path := range trackFiles {
		if IsControlFile(path) {
			continue
		}
		pipeline.filterFile(path, controlPath, threshold, report)
	}
}

// filterFile applies the threshold to a single condition file
func (pipeline *ThresholdPipeline) filterFile(path, controlPath string, threshold float64, report *ThresholdReport) {
	canonical, err := canonicalPath(path)
	if err != nil {
		Logf("Can't resolve file '%s': %v\n", path, err)
		return
	}
	if !pipeline.visitedFiles.mark(canonical) {
		return
	}
	Logf("Operating on file '%s'\n", canonical)

	contents, err := pipeline.loader(canonical)
	if err != nil {
		Logf("Skipping '%s': %v\n", canonical, err)
		report.Files = append(report.Files, failureResult(canonical, controlPath, err))
		return
	}
	result := FileResult{
		Path:      canonical,
		Control:   controlPath,
		Threshold: threshold,
	}
	dropped, remaining, err := contents.Filter(SLSThresholdFilter, FilterParams{ParamSLSThreshold: threshold})
	if err != nil {
		result.Status = StatusFailed
		result.Err = err
		report.Files = append(report.Files, result)
		return
	}
	result.Dropped = dropped
	result.Remaining = remaining
	report.TotalDropped += dropped
	report.TotalRemaining += remaining

	if remaining == 0 {
		Logf("Every track of '%s' is below threshold %f; no output written\n", canonical, threshold)
		result.Status = StatusOverFiltered
		report.Files = append(report.Files, result)
		return
	}

	output := FilteredName(canonical)
	err = contents.SaveTracks(output)
	if err != nil {
		Logf("Can't save '%s': %v\n", output, err)
		result.Status = StatusFailed
		result.Err = err
		report.Files = append(report.Files, result)
		return
	}
	result.Output = output
	result.Status = StatusFiltered
	report.Files = append(report.Files, result)
}

// pickControl returns the control file among the given summary files.
// Several candidates are tolerated: the first one in lexical order wins.
func pickControl(paths []string) (string, error) {
	controls := make([]string, 0, 1)
	for _, path := range paths {
		if IsControlFile(path) {
			controls = append(controls, path)
		}
	}
	if len(controls) == 0 {
		return "", ErrNoControl
	}
	sort.Strings(controls)
	if len(controls) > 1 {
		Logf("Found %d control files, using '%s'\n", len(controls), controls[0])
	}
	return controls[0], nil
}

func failureResult(path, controlPath string, err error) FileResult {
	status := StatusMalformed
	if IsStructural(err) {
		status = StatusFailed
	}
	return FileResult{
		Path:    path,
		Control: controlPath,
		Status:  status,
		Err:     err,
	}
}

// entryKind reports whether entry is a directory or a regular file, following symlinks
func entryKind(path string, entry os.DirEntry) (bool, bool) {
	if entry.Type()&os.ModeSymlink == 0 {
		return entry.IsDir(), entry.Type().IsRegular()
	}
	info, err := os.Stat(path)
	if err != nil {
		return false, false
	}
	return info.IsDir(), info.Mode().IsRegular()
}
