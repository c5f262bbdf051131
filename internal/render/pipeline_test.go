package render

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"testing"

	"savo/internal/commentary"
	"savo/internal/compose"
	"savo/internal/config"
	"savo/internal/features"
	"savo/internal/logging"
	"savo/internal/services"
)

// fakeEncoder records appended frame indexes and enforces ordering like the
// real encoder does.
type fakeEncoder struct {
	mu      sync.Mutex
	indexes []int
	closed  bool
	aborted bool

	failAppendAt int // -1 disables
}

func newFakeEncoder() *fakeEncoder {
	return &fakeEncoder{failAppendAt: -1}
}

func (f *fakeEncoder) Append(frame *compose.Frame) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAppendAt >= 0 && frame.Index == f.failAppendAt {
		return services.Wrap(services.ErrEncode, "encode", "append", "injected failure", nil)
	}
	if len(f.indexes) > 0 && frame.Index != f.indexes[len(f.indexes)-1]+1 {
		return services.Wrap(services.ErrEncode, "encode", "append", "out of order", nil)
	}
	f.indexes = append(f.indexes, frame.Index)
	return nil
}

func (f *fakeEncoder) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeEncoder) Abort() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.aborted = true
}

// fakeCompositor produces tiny frames and can fail specific indexes.
type fakeCompositor struct {
	failAt map[int]bool
}

func (f *fakeCompositor) Frame(index int, timeline *features.Timeline, cue commentary.Cue) (*compose.Frame, error) {
	if f.failAt[index] {
		return nil, services.Wrap(services.ErrFrameComposition, "compose", "overlay",
			fmt.Sprintf("frame %d: injected", index), nil)
	}
	return tinyFrame(index, false), nil
}

func (f *fakeCompositor) Degraded(index int, timeline *features.Timeline) *compose.Frame {
	return tinyFrame(index, true)
}

func tinyFrame(index int, degraded bool) *compose.Frame {
	return &compose.Frame{
		Index:    index,
		Degraded: degraded,
		Image:    image.NewRGBA(image.Rect(0, 0, 2, 2)),
	}
}

func pipelineTimeline(t *testing.T, duration float64) *features.Timeline {
	t.Helper()
	var frames []features.Frame
	for at := 0.0; at < duration; at += 0.25 {
		frames = append(frames, features.Frame{
			Time:    at,
			Scalars: map[string]float64{features.Loudness: 0.1},
			Vectors: map[string][]float64{},
		})
	}
	tl, err := features.NewTimeline(frames, duration)
	if err != nil {
		t.Fatalf("NewTimeline: %v", err)
	}
	return tl
}

func testLayout(t *testing.T) compose.Layout {
	t.Helper()
	cfg := config.Default()
	layout, err := compose.NewLayout(config.Video{
		Width:              cfg.Video.Width,
		Height:             cfg.Video.Height,
		FrameRate:          30,
		HoldSeconds:        10,
		LookbackSeconds:    8,
		WrapWidth:          980,
		VUBars:             20,
		SpectrogramFloorDB: -80,
		VUMinDB:            -60,
		VUMaxDB:            0,
	})
	if err != nil {
		t.Fatalf("NewLayout: %v", err)
	}
	return layout
}

func newTestPipeline(t *testing.T, duration float64, comp Compositor, enc *fakeEncoder) *Pipeline {
	t.Helper()
	scheduler, err := commentary.NewScheduler(nil, 10)
	if err != nil {
		t.Fatalf("NewScheduler: %v", err)
	}
	p, err := New(Params{
		Timeline:   pipelineTimeline(t, duration),
		Scheduler:  scheduler,
		Compositor: comp,
		Layout:     testLayout(t),
		Encoder:    enc,
		Logger:     logging.NewNop(),
		Workers:    4,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return p
}

func TestTotalFrames(t *testing.T) {
	tests := []struct {
		duration float64
		fps      int
		want     int
	}{
		{9.5, 30, 285},
		{10, 30, 300},
		{0.01, 30, 1},
		{1, 1, 1},
	}
	for _, tt := range tests {
		if got := TotalFrames(tt.duration, tt.fps); got != tt.want {
			t.Errorf("TotalFrames(%v, %d) = %d, want %d", tt.duration, tt.fps, got, tt.want)
		}
	}
}

func TestRunEmitsAllFramesInOrder(t *testing.T) {
	enc := newFakeEncoder()
	p := newTestPipeline(t, 9.5, &fakeCompositor{}, enc)

	result, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Frames != 285 {
		t.Errorf("Frames = %d, want 285", result.Frames)
	}
	if result.Degraded != 0 {
		t.Errorf("Degraded = %d", result.Degraded)
	}
	if len(enc.indexes) != 285 {
		t.Fatalf("encoder received %d frames", len(enc.indexes))
	}
	for i, idx := range enc.indexes {
		if idx != i {
			t.Fatalf("frame %d arrived at position %d", idx, i)
		}
	}
	if !enc.closed {
		t.Error("encoder not closed")
	}
	if enc.aborted {
		t.Error("encoder aborted on success")
	}
}

func TestRunFailSoftSingleFrame(t *testing.T) {
	enc := newFakeEncoder()
	p := newTestPipeline(t, 2, &fakeCompositor{failAt: map[int]bool{17: true}}, enc)

	result, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Degraded != 1 {
		t.Errorf("Degraded = %d, want 1", result.Degraded)
	}
	if len(enc.indexes) != result.Frames {
		t.Errorf("encoder received %d of %d frames", len(enc.indexes), result.Frames)
	}
}

func TestRunEncoderFailureAborts(t *testing.T) {
	enc := newFakeEncoder()
	enc.failAppendAt = 10
	p := newTestPipeline(t, 2, &fakeCompositor{}, enc)

	_, err := p.Run(context.Background())
	if !errors.Is(err, services.ErrEncode) {
		t.Fatalf("expected ErrEncode, got %v", err)
	}
	if !enc.aborted {
		t.Error("encoder should be aborted on fatal failure")
	}
	if enc.closed {
		t.Error("encoder must not be closed after abort")
	}
}

func TestRunCancellation(t *testing.T) {
	enc := newFakeEncoder()
	p := newTestPipeline(t, 60, &fakeCompositor{}, enc)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.Run(ctx)
	if !IsCanceled(err) {
		t.Fatalf("expected cancellation, got %v", err)
	}
	if !enc.aborted {
		t.Error("cancelled render must discard partial output")
	}
}

func TestNewRequiresCollaborators(t *testing.T) {
	_, err := New(Params{})
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}
