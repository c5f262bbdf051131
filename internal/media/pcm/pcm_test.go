package pcm

import (
	"context"
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"savo/internal/services"
)

func TestSamplesFromBytes(t *testing.T) {
	want := []float32{0, 0.5, -1, 0.25}
	raw := make([]byte, len(want)*4)
	for i, v := range want {
		binary.LittleEndian.PutUint32(raw[i*4:], math.Float32bits(v))
	}

	got, err := SamplesFromBytes(raw)
	if err != nil {
		t.Fatalf("SamplesFromBytes: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("got %d samples, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestSamplesFromBytesRejectsRaggedStream(t *testing.T) {
	if _, err := SamplesFromBytes(make([]byte, 7)); !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected ErrExternalTool, got %v", err)
	}
}

func TestClipDuration(t *testing.T) {
	clip := Clip{Samples: make([]float32, 44100), SampleRate: 22050}
	if clip.Duration() != 2 {
		t.Fatalf("Duration = %v, want 2", clip.Duration())
	}
	if (Clip{}).Duration() != 0 {
		t.Fatal("empty clip should report zero duration")
	}
}

func TestDecodeValidatesArguments(t *testing.T) {
	tests := []struct {
		name string
		path string
		rate int
	}{
		{"empty path", "", 22050},
		{"bad rate", "in.wav", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(context.Background(), "ffmpeg", tt.path, tt.rate)
			if !errors.Is(err, services.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}
}
