package ffprobe

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"

	"savo/internal/services"
)

// Result represents the parsed output from an ffprobe inspection.
type Result struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
}

// Stream describes a single stream in the media container.
type Stream struct {
	Index      int    `json:"index"`
	CodecName  string `json:"codec_name"`
	CodecType  string `json:"codec_type"`
	Duration   string `json:"duration"`
	SampleRate string `json:"sample_rate"`
	Channels   int    `json:"channels"`
	BitRate    string `json:"bit_rate"`
}

// Format captures container-level metadata extracted by ffprobe.
type Format struct {
	Filename   string `json:"filename"`
	NBStreams  int    `json:"nb_streams"`
	Duration   string `json:"duration"`
	Size       string `json:"size"`
	FormatName string `json:"format_name"`
}

// Inspect executes ffprobe against the provided path and decodes the JSON
// response.
func Inspect(ctx context.Context, binary string, path string) (Result, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return Result{}, services.Wrap(services.ErrValidation, "media", "ffprobe-inspect", "empty input path", nil)
	}

	cmd := exec.CommandContext(ctx, binary, "-v", "error", "-hide_banner", "-show_format", "-show_streams", "-of", "json", "--", path)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return Result{}, services.Wrap(services.ErrExternalTool, "media", "ffprobe-inspect",
			strings.TrimSpace(string(output)), err)
	}

	var result Result
	if err := json.Unmarshal(output, &result); err != nil {
		return Result{}, services.Wrap(services.ErrExternalTool, "media", "ffprobe-parse", "", err)
	}
	return result, nil
}

// AudioStreamCount returns the number of audio streams discovered.
func (r Result) AudioStreamCount() int {
	count := 0
	for _, stream := range r.Streams {
		if strings.EqualFold(stream.CodecType, "audio") {
			count++
		}
	}
	return count
}

// PrimaryAudio returns the first audio stream in container order, which is
// the stream ffmpeg's default mapping selects.
func (r Result) PrimaryAudio() (Stream, bool) {
	for _, stream := range r.Streams {
		if strings.EqualFold(stream.CodecType, "audio") {
			return stream, true
		}
	}
	return Stream{}, false
}

// DurationSeconds returns the container duration in seconds. When the
// container header omits it (common for raw streams), the primary audio
// stream's own duration is used instead.
func (r Result) DurationSeconds() float64 {
	if d := parseFloat(r.Format.Duration); d > 0 {
		return d
	}
	if stream, ok := r.PrimaryAudio(); ok {
		if d := parseFloat(stream.Duration); d > 0 {
			return d
		}
	}
	return 0
}

// SampleRateHz returns the stream's sample rate, or 0 when unavailable.
func (s Stream) SampleRateHz() int {
	rate := parseFloat(s.SampleRate)
	if math.IsNaN(rate) || rate <= 0 {
		return 0
	}
	return int(rate)
}

// Validate checks that the probed file can feed the renderer: at least one
// audio stream with a positive duration.
func (r Result) Validate() error {
	if r.AudioStreamCount() == 0 {
		return services.Wrap(services.ErrValidation, "media", "ffprobe-validate",
			fmt.Sprintf("%s contains no audio stream", r.Format.Filename), nil)
	}
	if r.DurationSeconds() <= 0 {
		return services.Wrap(services.ErrValidation, "media", "ffprobe-validate",
			fmt.Sprintf("%s reports no usable duration", r.Format.Filename), nil)
	}
	return nil
}

func parseFloat(value string) float64 {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return 0
	}
	if parsed, err := strconv.ParseFloat(cleaned, 64); err == nil {
		return parsed
	}
	return math.NaN()
}
