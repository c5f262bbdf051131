package gemini

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/stat"

	"savo/internal/analysis"
	"savo/internal/features"
)

var pitchClasses = []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// BuildPrompt renders the analysis prompt: a fixed instruction block followed
// by one downsampled data point per commentary interval. Each point carries
// the instantaneous values plus per-segment linear-regression trends for
// loudness and brightness.
func BuildPrompt(pieceName string, tl *features.Timeline, summary analysis.Summary, intervalSeconds float64) string {
	tonality := "atonal or non-traditional"
	if summary.Tonal {
		tonality = "tonal"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are an expert audio commentator and music analyst. Your task is to provide two types of analysis for a music track named %q.\n", pieceName)
	fmt.Fprintf(&b, "The music has been identified as %s.\n\n", tonality)
	b.WriteString(`Part 1: Commentary for Visualization
Provide time-stamped commentary in a JSON array. Each entry should have a "time" (in seconds) and a "commentary" string. The commentary should be educational and describe musical events based on the provided data.

Part 2: High-Level Narrative for Textual Report
Provide a high-level, narrative analysis in a paragraph format. This analysis should describe the overall dynamics (RMS), timbre (Spectral Centroid, ZCR, MFCCs), and rhythmic structure.

The final output must be a single JSON object with two keys: "commentary_data" (containing the JSON array from Part 1) and "report_narrative" (containing the string from Part 2).

Musicological Definitions:
- RMS (Loudness): Overall intensity. A rising RMS indicates a crescendo.
- Spectral Centroid (Brightness): Perceived brightness. A rising value means the sound is getting brighter.
- ZCR (Noisiness): The degree of noisiness or percussiveness. A higher value suggests a noisier texture.
- Key: The strongest detected pitch class. Changes may indicate harmonic shifts.
- MFCCs (Timbre): Mel-Frequency Cepstral Coefficients. They represent the tonal color or texture of the sound. Changes often indicate new instruments or vocal events.

Here is the audio analysis data:
`)
	for _, point := range analysisPoints(tl, intervalSeconds) {
		b.WriteString(point)
		b.WriteByte('\n')
	}
	return b.String()
}

// analysisPoints downsamples the timeline to roughly one point per interval.
func analysisPoints(tl *features.Timeline, intervalSeconds float64) []string {
	frames := tl.Window(0, tl.Duration())
	if len(frames) == 0 {
		return nil
	}
	frameDuration := tl.Duration() / float64(len(frames))
	step := 1
	if frameDuration > 0 {
		if s := int(intervalSeconds / frameDuration); s > 1 {
			step = s
		}
	}

	var points []string
	for start := 0; start < len(frames); start += step {
		end := start + step
		if end > len(frames) {
			end = len(frames)
		}
		points = append(points, formatPoint(frames[start], frames[start:end]))
	}
	return points
}

func formatPoint(frame features.Frame, segment []features.Frame) string {
	loudTrend := segmentSlope(segment, features.Loudness)
	brightTrend := segmentSlope(segment, features.Brightness)

	key := "?"
	if chroma := frame.Vector(features.Chroma); len(chroma) == len(pitchClasses) {
		best := 0
		for i, v := range chroma {
			if v > chroma[best] {
				best = i
			}
		}
		key = pitchClasses[best]
	}

	timbre := 0.0
	if coeffs := frame.Vector(features.Timbre); len(coeffs) >= 3 {
		timbre = (coeffs[0] + coeffs[1] + coeffs[2]) / 3
	}

	return fmt.Sprintf("Time: %.2fs, RMS (Loudness): %.4f (Trend: %.4f), Spectral Centroid (Brightness): %.2f (Trend: %.2f), ZCR (Noisiness): %.4f, Key: %s, MFCCs (Timbre): %.2f",
		frame.Time,
		frame.Scalar(features.Loudness), loudTrend,
		frame.Scalar(features.Brightness), brightTrend,
		frame.Scalar(features.Noisiness),
		key, timbre,
	)
}

// segmentSlope fits value = alpha + beta*time over the segment and returns
// beta, the per-second trend.
func segmentSlope(segment []features.Frame, name string) float64 {
	if len(segment) < 2 {
		return 0
	}
	times := make([]float64, len(segment))
	values := make([]float64, len(segment))
	for i, frame := range segment {
		times[i] = frame.Time
		values[i] = frame.Scalar(name)
	}
	_, beta := stat.LinearRegression(times, values, nil, false)
	return beta
}
