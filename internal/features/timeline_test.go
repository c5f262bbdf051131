package features

import (
	"errors"
	"testing"

	"savo/internal/services"
)

func testFrame(t *testing.T, at, loudness float64) Frame {
	t.Helper()
	return Frame{
		Time: at,
		Scalars: map[string]float64{
			Loudness:   loudness,
			Brightness: 1000,
		},
		Vectors: map[string][]float64{
			Chroma: make([]float64, 12),
		},
	}
}

func testTimeline(t *testing.T, times ...float64) *Timeline {
	t.Helper()
	frames := make([]Frame, 0, len(times))
	for i, at := range times {
		frames = append(frames, testFrame(t, at, float64(i)))
	}
	tl, err := NewTimeline(frames, times[len(times)-1]+1)
	if err != nil {
		t.Fatalf("NewTimeline: %v", err)
	}
	return tl
}

func TestNewTimelineRejectsEmpty(t *testing.T) {
	if _, err := NewTimeline(nil, 10); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestNewTimelineRejectsNonMonotonicTime(t *testing.T) {
	frames := []Frame{testFrame(t, 0, 0), testFrame(t, 1, 0), testFrame(t, 1, 0)}
	if _, err := NewTimeline(frames, 5); !errors.Is(err, services.ErrNonMonotonicTime) {
		t.Fatalf("expected ErrNonMonotonicTime, got %v", err)
	}
}

func TestNewTimelineRejectsSchemaMismatch(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Frame)
	}{
		{"missing scalar", func(f *Frame) { delete(f.Scalars, Brightness) }},
		{"renamed scalar", func(f *Frame) {
			delete(f.Scalars, Brightness)
			f.Scalars["sharpness"] = 1
		}},
		{"extra vector", func(f *Frame) { f.Vectors[Mel] = make([]float64, 4) }},
		{"vector length change", func(f *Frame) { f.Vectors[Chroma] = make([]float64, 11) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frames := []Frame{testFrame(t, 0, 0), testFrame(t, 1, 0)}
			tt.mutate(&frames[1])
			if _, err := NewTimeline(frames, 5); !errors.Is(err, services.ErrSchemaMismatch) {
				t.Fatalf("expected ErrSchemaMismatch, got %v", err)
			}
		})
	}
}

func TestSampleAtNearestPreceding(t *testing.T) {
	tl := testTimeline(t, 0, 1, 2, 3)
	tests := []struct {
		at   float64
		want float64
	}{
		{-1, 0},   // clamp-low
		{0, 0},    // exact hit
		{0.5, 0},  // between frames: preceding, not interpolated
		{1, 1},    // exact hit
		{2.99, 2}, // preceding
		{3, 3},    // last frame
		{100, 3},  // clamp-high
	}
	for _, tt := range tests {
		if got := tl.SampleAt(tt.at).Time; got != tt.want {
			t.Errorf("SampleAt(%v).Time = %v, want %v", tt.at, got, tt.want)
		}
	}
}

func TestSampleAtClampMatchesEdges(t *testing.T) {
	tl := testTimeline(t, 0, 1, 2)
	if tl.SampleAt(-1).Time != tl.SampleAt(0).Time {
		t.Error("SampleAt(-1) should equal SampleAt(0) for a timeline starting at 0")
	}
	if tl.SampleAt(tl.Duration()+100).Time != tl.SampleAt(2).Time {
		t.Error("SampleAt far past the end should return the last frame")
	}
}

func TestSampleAtMonotonic(t *testing.T) {
	tl := testTimeline(t, 0, 0.7, 1.3, 2.9, 4.2)
	prev := -1.0
	for q := -1.0; q < 6; q += 0.05 {
		got := tl.SampleAt(q)
		if got.Time > q && q >= 0 {
			t.Fatalf("SampleAt(%v) returned later frame %v", q, got.Time)
		}
		if got.Time < prev {
			t.Fatalf("SampleAt not monotonic: %v after %v", got.Time, prev)
		}
		prev = got.Time
	}
}

func TestWindow(t *testing.T) {
	tl := testTimeline(t, 0, 1, 2, 3, 4)
	tests := []struct {
		from, to float64
		wantLen  int
	}{
		{1, 3, 3},
		{0.5, 2.5, 2},
		{-5, 100, 5},
		{2.1, 2.9, 0},
		{3, 1, 0}, // inverted
	}
	for _, tt := range tests {
		if got := len(tl.Window(tt.from, tt.to)); got != tt.wantLen {
			t.Errorf("Window(%v, %v) len = %d, want %d", tt.from, tt.to, got, tt.wantLen)
		}
	}
}

func TestScalarNamesSorted(t *testing.T) {
	tl := testTimeline(t, 0, 1)
	names := tl.ScalarNames()
	if len(names) != 2 || names[0] != Brightness || names[1] != Loudness {
		t.Errorf("ScalarNames = %v", names)
	}
	if tl.VectorDim(Chroma) != 12 {
		t.Errorf("VectorDim(chroma) = %d", tl.VectorDim(Chroma))
	}
}
