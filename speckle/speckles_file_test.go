package speckle

import (
	"bytes"
	"math"
	"path/filepath"
	"strings"
	"testing"
)

const specklesFixture = `#speckles csv ver 1.2
#x(double)	y(double)	size(double)	frame(int)	type(int)
#%start speckle%
0	0	0
-3	-4	1
3	4	2
#%stop speckle%
#%start speckle%
10.5	2.0	4
11.5	2.0	5
#%stop speckle%
`

func TestParseSpeckles(t *testing.T) {
	tracks, err := ParseSpeckles(strings.NewReader(specklesFixture), DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if len(tracks) != 2 {
		t.Fatalf("Wrong number of tracks: %d, expected: %d", len(tracks), 2)
	}
	if math.Abs(tracks[0].MSD()-25.0) > eps || math.Abs(tracks[0].SLS()-2.5) > eps {
		t.Errorf("Wrong statistics of the first track: msd=%v sls=%v", tracks[0].MSD(), tracks[0].SLS())
	}
	if tracks[1].FirstFrame() != 4 || tracks[1].Duration() != 2 {
		t.Errorf("Wrong frames of the second track: first=%d duration=%d", tracks[1].FirstFrame(), tracks[1].Duration())
	}
}

func TestParseSpecklesDurationThreshold(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DurationThreshold = 3
	tracks, err := ParseSpeckles(strings.NewReader(specklesFixture), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if len(tracks) != 1 || tracks[0].Duration() != 3 {
		t.Errorf("Only the 3-frame track must survive, got %d tracks", len(tracks))
	}
}

func TestParseSpecklesFiveColumns(t *testing.T) {
	data := "#%start speckle%\n1,2,0.5,7,0\n2,2,0.5,8,0\n#%stop speckle%\n"
	tracks, err := ParseSpeckles(strings.NewReader(data), DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if len(tracks) != 1 || tracks[0].FirstFrame() != 7 || tracks[0].LastFrame() != 8 {
		t.Errorf("Frame must be taken from the fourth column")
	}
}

func TestParseSpecklesErrors(t *testing.T) {
	cases := []struct {
		name       string
		data       string
		structural bool
	}{
		{"outside block", "1\t2\t3\n", true},
		{"unterminated", "#%start speckle%\n1\t2\t3\n", true},
		{"nested", "#%start speckle%\n#%start speckle%\n", true},
		{"stray stop", "#%stop speckle%\n", true},
		{"unsorted", "#%start speckle%\n1\t2\t3\n1\t2\t2\n#%stop speckle%\n", true},
		{"wrong width", "#%start speckle%\n1\t2\n#%stop speckle%\n", true},
		{"bad number", "#%start speckle%\nx\t2\t3\n#%stop speckle%\n", false},
		{"bad frame", "#%start speckle%\n1\t2\t3.5\n#%stop speckle%\n", false},
	}
	for _, c := range cases {
		_, err := ParseSpeckles(strings.NewReader(c.data), DefaultConfig())
		if err == nil {
			t.Errorf("%s: expected error", c.name)
			continue
		}
		if IsStructural(err) != c.structural {
			t.Errorf("%s: structural=%v, expected %v (%v)", c.name, IsStructural(err), c.structural, err)
		}
	}
}

func TestSpecklesRoundTrip(t *testing.T) {
	tracks, err := ParseSpeckles(strings.NewReader(specklesFixture), DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	err = WriteSpeckles(&buf, tracks)
	if err != nil {
		t.Fatal(err)
	}
	again, err := ParseSpeckles(&buf, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if len(again) != len(tracks) {
		t.Fatalf("Wrong number of tracks: %d, expected: %d", len(again), len(tracks))
	}
	for i := range tracks {
		a, b := tracks[i].Samples(), again[i].Samples()
		if len(a) != len(b) {
			t.Fatalf("Track %d: wrong number of samples", i)
		}
		for j := range a {
			if a[j] != b[j] {
				t.Errorf("Track %d sample %d differs: %+v vs %+v", i, j, a[j], b[j])
			}
		}
	}

	path := filepath.Join(t.TempDir(), "control_speckles.csv")
	err = SaveSpeckles(path, tracks)
	if err != nil {
		t.Fatal(err)
	}
	freqFile, err := LoadFreqFile(path, FormatSpeckles, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if freqFile.Len() != 2 || freqFile.FrequencyLabel != "control" {
		t.Errorf("Wrong FreqFile: %s", freqFile)
	}
}

func TestParseFileFormat(t *testing.T) {
	format, err := ParseFileFormat("speckles")
	if err != nil || format != FormatSpeckles {
		t.Errorf("Wrong format: %v, %v", format, err)
	}
	if format.String() != "speckles" {
		t.Errorf("Wrong format name: %s", format)
	}
	_, err = ParseFileFormat("xlsx")
	if err == nil {
		t.Errorf("Expected error for unknown format")
	}
}

func TestWriteSpecklesMarkers(t *testing.T) {
	track, err := NewTrack([]float64{1, 2}, []float64{3, 4}, []int{0, 1})
	if err != nil {
		t.Fatal(err)
	}
	var sb strings.Builder
	err = WriteSpeckles(&sb, []*Track{track})
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(sb.String()), "\n")
	correct := []string{"#speckles csv ver 1.2", "#x(double)\ty(double)\tsize(double)\tframe(int)\ttype(int)", StartSpeckle, "1\t3\t0", "2\t4\t1", StopSpeckle}
	if len(lines) != len(correct) {
		t.Fatalf("Wrong number of lines: %d, correct: %d\n%s", len(lines), len(correct), sb.String())
	}
	for i := range correct {
		if lines[i] != correct[i] {
			t.Errorf("Wrong answer on line %d: %q, correct answer: %q", i, lines[i], correct[i])
		}
	}
}

func TestDropShortTracks(t *testing.T) {
	tracks, err := ParseSpeckles(strings.NewReader(specklesFixture), DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if len(DropShortTracks(tracks, 0)) != 2 {
		t.Errorf("Zero threshold must keep every track")
	}
	kept := DropShortTracks(tracks, 3)
	if len(kept) != 1 || kept[0].Duration() != 3 {
		t.Errorf("Only the 3-frame track must survive, got %d tracks", len(kept))
	}
	if len(DropShortTracks(tracks, 4)) != 0 {
		t.Errorf("Every track is shorter than 4 frames")
	}
}
