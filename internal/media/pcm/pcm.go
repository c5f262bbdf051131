package pcm

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"os/exec"
	"strings"

	"savo/internal/services"
)

// Clip holds a decoded mono audio signal.
type Clip struct {
	Samples    []float32
	SampleRate int
}

// Duration returns the clip length in seconds.
func (c Clip) Duration() float64 {
	if c.SampleRate <= 0 {
		return 0
	}
	return float64(len(c.Samples)) / float64(c.SampleRate)
}

// Decode runs ffmpeg to resample the input into mono f32le at the requested
// rate and returns the sample buffer. The entire clip is held in memory; at
// 22050 Hz that is about 85 MB per hour of audio.
func Decode(ctx context.Context, binary string, path string, sampleRate int) (Clip, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return Clip{}, services.Wrap(services.ErrValidation, "media", "pcm-decode", "empty input path", nil)
	}
	if sampleRate <= 0 {
		return Clip{}, services.Wrap(services.ErrValidation, "media", "pcm-decode",
			fmt.Sprintf("invalid sample rate %d", sampleRate), nil)
	}

	args := []string{
		"-hide_banner", "-v", "error",
		"-i", path,
		"-map", "0:a:0",
		"-ac", "1",
		"-ar", fmt.Sprintf("%d", sampleRate),
		"-f", "f32le",
		"pipe:1",
	}
	cmd := exec.CommandContext(ctx, binary, args...)
	var out bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return Clip{}, services.Wrap(services.ErrExternalTool, "media", "pcm-decode",
			strings.TrimSpace(stderr.String()), err)
	}

	samples, err := SamplesFromBytes(out.Bytes())
	if err != nil {
		return Clip{}, err
	}
	if len(samples) == 0 {
		return Clip{}, services.Wrap(services.ErrValidation, "media", "pcm-decode",
			fmt.Sprintf("%s decoded to zero samples", path), nil)
	}
	return Clip{Samples: samples, SampleRate: sampleRate}, nil
}

// SamplesFromBytes interprets a little-endian float32 byte stream as a
// sample slice.
func SamplesFromBytes(raw []byte) ([]float32, error) {
	if len(raw)%4 != 0 {
		return nil, services.Wrap(services.ErrExternalTool, "media", "pcm-parse",
			fmt.Sprintf("pcm stream length %d is not a multiple of 4", len(raw)), nil)
	}
	samples := make([]float32, len(raw)/4)
	for i := range samples {
		u := uint32(raw[i*4]) | uint32(raw[i*4+1])<<8 | uint32(raw[i*4+2])<<16 | uint32(raw[i*4+3])<<24
		samples[i] = math.Float32frombits(u)
	}
	return samples, nil
}
