package speckle

import (
	"math"
	"testing"
)

func fixtureTrack(t *testing.T) *Track {
	t.Helper()
	track, err := NewTrack([]float64{0, -3, 3}, []float64{0, -4, 4}, []int{0, 1, 2})
	if err != nil {
		t.Fatal(err)
	}
	return track
}

func TestTrackStatistics(t *testing.T) {
	track := fixtureTrack(t)
	correctAnswers := map[string]float64{
		"displacement": 5.0,
		"sls":          2.5,
		"mdts":         7.5,
		"mv":           7.5,
		"msd":          25.0,
	}
	answers := map[string]float64{
		"displacement": track.Displacement(),
		"sls":          track.SLS(),
		"mdts":         track.MDTS(),
		"mv":           track.MV(),
		"msd":          track.MSD(),
	}
	for name, correctAnswer := range correctAnswers {
		if math.Abs(answers[name]-correctAnswer) > eps {
			t.Errorf("Wrong %s: %v, correct answer: %v", name, answers[name], correctAnswer)
		}
	}
	if track.Duration() != 3 {
		t.Errorf("Wrong duration: %d, correct answer: %d", track.Duration(), 3)
	}
}

func TestTrackDegenerate(t *testing.T) {
	empty := &Track{}
	single, err := NewTrack([]float64{4}, []float64{2}, []int{7})
	if err != nil {
		t.Fatal(err)
	}
	for _, track := range []*Track{empty, single} {
		if track.SLS() != 0.0 || track.MDTS() != 0.0 || track.MV() != 0.0 || track.MSD() != 0.0 {
			t.Errorf("Degenerate track with %d samples must have zero speeds: sls=%v mdts=%v mv=%v msd=%v",
				track.Len(), track.SLS(), track.MDTS(), track.MV(), track.MSD())
		}
	}
	if single.Duration() != 1 {
		t.Errorf("Single sample track must span one frame, got %d", single.Duration())
	}
	if empty.Duration() != 0 {
		t.Errorf("Empty track must span zero frames, got %d", empty.Duration())
	}
	if single.Displacement() != 0.0 {
		t.Errorf("Single sample track can't be displaced, got %v", single.Displacement())
	}
}

func TestTrackGappedFrames(t *testing.T) {
	// Frames 10 and 14: four frame steps
	track, err := NewTrack([]float64{0, 8}, []float64{0, 0}, []int{10, 14})
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(track.SLS()-2.0) > eps {
		t.Errorf("Wrong sls: %v, correct answer: %v", track.SLS(), 2.0)
	}
	if math.Abs(track.MV()-8.0) > eps {
		t.Errorf("Wrong mv: %v, correct answer: %v", track.MV(), 8.0)
	}
	if track.Duration() != 5 {
		t.Errorf("Wrong duration: %d, correct answer: %d", track.Duration(), 5)
	}
}

func TestTrackOrdering(t *testing.T) {
	_, err := NewTrack([]float64{0, 1}, []float64{0, 1}, []int{3, 2})
	if !IsStructural(err) {
		t.Errorf("Unsorted frames must be a structural violation, got %v", err)
	}
	_, err = NewTrack([]float64{0, 1}, []float64{0, 1}, []int{2, 2})
	if !IsStructural(err) {
		t.Errorf("Repeated frames must be a structural violation, got %v", err)
	}
	_, err = NewTrack([]float64{0, 1}, []float64{0}, []int{1, 2})
	if !IsStructural(err) {
		t.Errorf("Mismatched columns must be a structural violation, got %v", err)
	}
	track := fixtureTrack(t)
	err = track.Append(1, 1, 2)
	if !IsStructural(err) {
		t.Errorf("Append must reject stale frame, got %v", err)
	}
	if track.Len() != 3 {
		t.Errorf("Rejected sample must not be stored, len=%d", track.Len())
	}
}

func TestTrackSamplesCopy(t *testing.T) {
	track := fixtureTrack(t)
	samples := track.Samples()
	samples[0].X = 100
	if track.Samples()[0].X != 0 {
		t.Errorf("Samples must return a copy")
	}
	copied, err := NewTrackFromSamples(track.Samples())
	if err != nil {
		t.Fatal(err)
	}
	if copied.FirstFrame() != 0 || copied.LastFrame() != 2 {
		t.Errorf("Wrong frame range: [%d, %d]", copied.FirstFrame(), copied.LastFrame())
	}
	frames := copied.Frames()
	for i, frame := range []int{0, 1, 2} {
		if frames[i] != frame {
			t.Errorf("Wrong frame at %d: %d, correct answer: %d", i, frames[i], frame)
		}
	}
}

func TestBasicTrack(t *testing.T) {
	track := NewBasicTrack(5, 10.0, 4.0, 2.5)
	if track.Duration() != 5 || track.Displacement() != 10.0 || track.SLS() != 4.0 || track.MSD() != 2.5 {
		t.Errorf("BasicTrack must return stored values, got %+v", track)
	}
	snapshot := BasicTrackFrom(fixtureTrack(t))
	if snapshot.Duration() != 3 || math.Abs(snapshot.SLS()-2.5) > eps || math.Abs(snapshot.MSD()-25.0) > eps {
		t.Errorf("Wrong snapshot: %+v", snapshot)
	}
}
