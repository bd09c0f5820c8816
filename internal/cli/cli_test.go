package cli

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/LdDl/speckle-go/internal/ledger"
	"github.com/LdDl/speckle-go/speckle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const specklesFixture = `#speckles csv ver 1.2
#%start speckle%
-5	0	0
-5	1	1
-5	2	2
-0.5	3	3
-5	4	4
#%stop speckle%
#%start speckle%
5	0	0
5	1	1
5	2	2
0.5	3	3
5	4	4
#%stop speckle%
`

func execute(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	t.Cleanup(func() { speckle.SetLogger(log.Printf) })
	var stdout, stderr bytes.Buffer
	code := Run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func writeTracks(t *testing.T, path string, slsValues ...float64) {
	t.Helper()
	freqFile := speckle.NewFreqFile()
	for _, sls := range slsValues {
		freqFile.Add(speckle.NewBasicTrack(10, sls*9, sls, sls*sls))
	}
	require.NoError(t, freqFile.SaveTracks(path))
}

func TestVersion(t *testing.T) {
	code, stdout, _ := execute(t, "version")
	assert.Equal(t, exitSuccess, code)
	assert.Contains(t, stdout, "speckle v"+Version)
	assert.Contains(t, stdout, modulePath)
}

func TestUsageErrors(t *testing.T) {
	code, _, stderr := execute(t, "filter")
	assert.Equal(t, exitUserError, code)
	assert.Contains(t, stderr, "Error:")

	code, _, _ = execute(t, "no-such-command")
	assert.Equal(t, exitUserError, code)
}

func TestFilter(t *testing.T) {
	root := t.TempDir()
	writeTracks(t, filepath.Join(root, "control_tracks.csv"), 0.4, 0.6)
	writeTracks(t, filepath.Join(root, "25khz_tracks.csv"), 0.3, 0.5, 0.7)
	ledgerPath := filepath.Join(t.TempDir(), "runs.db")

	code, stdout, _ := execute(t, "filter", root, "--k", "1", "--ledger", ledgerPath, "--quiet")
	require.Equal(t, exitSuccess, code)
	assert.Contains(t, stdout, "dropped 2 of 3 tracks")

	filtered, err := speckle.LoadTracksFile(filepath.Join(root, "25khz_tracks.csv.filtered.csv"))
	require.NoError(t, err)
	require.Equal(t, 1, filtered.Len())
	assert.InDelta(t, 0.7, filtered.Tracks()[0].SLS(), 1e-9)

	store, err := ledger.Open(ledgerPath)
	require.NoError(t, err)
	defer store.Close()
	runs, err := store.Runs()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 1.0, runs[0].K)
	assert.Equal(t, 2, runs[0].TotalDropped)
}

func TestFilterConfigFile(t *testing.T) {
	root := t.TempDir()
	writeTracks(t, filepath.Join(root, "control_tracks.csv"), 0.4, 0.6)
	writeTracks(t, filepath.Join(root, "25khz_tracks.csv"), 0.3, 0.5, 0.7)
	configDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "speckle.yaml"), []byte("k: 1\n"), 0o644))

	code, stdout, _ := execute(t, "filter", root, "--config-dir", configDir, "-q")
	require.Equal(t, exitSuccess, code)
	assert.Contains(t, stdout, "dropped 2 of 3 tracks")
}

func TestFilterExitCodes(t *testing.T) {
	t.Run("negative multiplier", func(t *testing.T) {
		code, _, _ := execute(t, "filter", t.TempDir(), "--k", "-1", "-q")
		assert.Equal(t, exitUserError, code)
	})
	t.Run("structural violation", func(t *testing.T) {
		root := t.TempDir()
		writeTracks(t, filepath.Join(root, "control_tracks.csv"), 0.4, 0.6)
		broken := "TRACK_DURATION,TRACK_DISPLACEMENT,MEAN_STRAIGHT_LINE_SPEED\n_,_,_\n_,_,_\n_,_,_\n10,1\n"
		require.NoError(t, os.WriteFile(filepath.Join(root, "25khz_tracks.csv"), []byte(broken), 0o644))
		code, stdout, _ := execute(t, "filter", root, "-q")
		assert.Equal(t, exitSysError, code)
		assert.Contains(t, stdout, "failed")
	})
}

func TestConvert(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "25khz_speckles.csv"), []byte(specklesFixture), 0o644))

	code, stdout, _ := execute(t, "convert", root, "--duration-threshold", "0", "--processed-width", "1028", "-q")
	require.Equal(t, exitSuccess, code)
	assert.Contains(t, stdout, "converted 1 of 1 files")

	converted, err := speckle.LoadTracksFile(filepath.Join(root, "25khz_tracks.csv"))
	require.NoError(t, err)
	assert.Equal(t, 2, converted.Len())
	assert.InDelta(t, 1.0, converted.Tracks()[0].SLS(), 1e-9)
}

func TestSplitAndSweep(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "25khz_speckles.csv")
	require.NoError(t, os.WriteFile(path, []byte(specklesFixture), 0o644))

	code, stdout, _ := execute(t, "split", path, "--radius", "1", "--radius-multiplier", "2", "-q")
	require.Equal(t, exitSuccess, code)
	assert.Contains(t, stdout, "split 2 tracks into 4")

	split, err := speckle.LoadSpeckleTracks(filepath.Join(dir, "25khz_speckles_split.csv"), speckle.DefaultConfig())
	require.NoError(t, err)
	require.Len(t, split, 4)
	assert.Equal(t, 3, split[0].Len())
	assert.Equal(t, 1, split[2].Len())

	code, stdout, _ = execute(t, "sweep", path, "--radius-multiplier", "2", "-q")
	require.Equal(t, exitSuccess, code)
	assert.Contains(t, stdout, "k\ttracks\tmsd_mean\tmsd_std\n")
	assert.Contains(t, stdout, "\n0\t2\t")
	assert.Contains(t, stdout, "\n2\t4\t")
}

// longNeighbourLog holds a long-lived particle visited by a short-lived neighbour on frames 10-14
func longNeighbourLog() string {
	var sb strings.Builder
	sb.WriteString("#speckles csv ver 1.2\n#%start speckle%\n")
	for frame := 0; frame < 40; frame++ {
		fmt.Fprintf(&sb, "0\t%d\t%d\n", frame, frame)
	}
	sb.WriteString("#%stop speckle%\n#%start speckle%\n")
	for frame := 10; frame < 15; frame++ {
		fmt.Fprintf(&sb, "0.5\t%d\t%d\n", frame, frame)
	}
	sb.WriteString("#%stop speckle%\n")
	return sb.String()
}

func TestSplitDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "25khz_speckles.csv")
	require.NoError(t, os.WriteFile(path, []byte(longNeighbourLog()), 0o644))

	code, stdout, _ := execute(t, "split", path, "-q")
	require.Equal(t, exitSuccess, code)
	assert.Contains(t, stdout, "split 2 tracks into 2")

	split, err := speckle.LoadSpeckleTracks(filepath.Join(dir, "25khz_speckles_split.csv"), speckle.DefaultConfig())
	require.NoError(t, err)
	require.Len(t, split, 2)
	assert.Equal(t, 0, split[0].FirstFrame())
	assert.Equal(t, 9, split[0].LastFrame())
	assert.Equal(t, 15, split[1].FirstFrame())
	assert.Equal(t, 39, split[1].LastFrame())

	t.Run("min duration", func(t *testing.T) {
		code, stdout, _ := execute(t, "split", path, "--min-duration", "20", "-q")
		require.Equal(t, exitSuccess, code)
		assert.Contains(t, stdout, "split 2 tracks into 1")
	})
	t.Run("sweep", func(t *testing.T) {
		code, stdout, _ := execute(t, "sweep", path, "-q")
		require.Equal(t, exitSuccess, code)
		assert.Contains(t, stdout, "\n0\t2\t")
		assert.Contains(t, stdout, "\n2\t2\t")
	})
	t.Run("duration threshold is not a proximity flag", func(t *testing.T) {
		code, _, _ := execute(t, "split", path, "--duration-threshold", "0", "-q")
		assert.Equal(t, exitUserError, code)
	})
}

func TestStats(t *testing.T) {
	path := filepath.Join(t.TempDir(), "25khz_tracks.csv")
	writeTracks(t, path, 0.4, 0.6)

	code, stdout, _ := execute(t, "stats", path, "-q")
	require.Equal(t, exitSuccess, code)
	assert.Contains(t, stdout, "tracks\t2\n")
	assert.Contains(t, stdout, "sls\t0.50000\t0.10000\n")

	code, stdout, _ = execute(t, "stats", path, "--filter", "sls", "--param", "sls_threshold=0.5", "-q")
	require.Equal(t, exitSuccess, code)
	assert.Contains(t, stdout, "filter sls: erased 1, remaining 1")
	assert.Contains(t, stdout, "sls\t0.60000\t0.00000\n")

	code, _, _ = execute(t, "stats", path, "--filter", "sls", "-q")
	assert.Equal(t, exitUserError, code, "missing parameter")

	code, _, _ = execute(t, "stats", path, "--format", "video", "-q")
	assert.Equal(t, exitUserError, code)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, exitSuccess, exitCode(nil))
	assert.Equal(t, exitUserError, exitCode(speckle.ErrMalformed))
	assert.Equal(t, exitSysError, exitCode(speckle.ErrStructural))
	assert.Equal(t, exitSysError, exitCode(systemError{os.ErrPermission}))
}
