package analysis

import (
	"fmt"
	"math"

	"savo/internal/config"
	"savo/internal/features"
	"savo/internal/media/pcm"
	"savo/internal/services"
)

// Options controls feature extraction. FromConfig derives them from the
// analysis configuration section.
type Options struct {
	SampleRate  int
	FrameLength int
	HopLength   int
	MelBands    int
	MFCCCount   int
}

func FromConfig(cfg config.Analysis) Options {
	return Options{
		SampleRate:  cfg.SampleRate,
		FrameLength: cfg.FrameLength,
		HopLength:   cfg.HopLength,
		MelBands:    cfg.MelBands,
		MFCCCount:   cfg.MFCCCount,
	}
}

func (o Options) validate() error {
	if o.SampleRate <= 0 || o.FrameLength <= 0 || o.HopLength <= 0 {
		return fmt.Errorf("sample rate, frame length, and hop length must be positive")
	}
	if o.HopLength > o.FrameLength {
		return fmt.Errorf("hop length %d exceeds frame length %d", o.HopLength, o.FrameLength)
	}
	if o.MelBands <= 0 {
		return fmt.Errorf("mel band count must be positive")
	}
	if o.MFCCCount <= 0 || o.MFCCCount > o.MelBands {
		return fmt.Errorf("mfcc count %d must lie in 1..%d", o.MFCCCount, o.MelBands)
	}
	return nil
}

// Extract computes the full feature timeline for a decoded clip. One frame
// is emitted per hop; the timeline duration is the clip duration.
func Extract(clip pcm.Clip, opts Options) (*features.Timeline, error) {
	if err := opts.validate(); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "analysis", "extract", "", err)
	}
	if len(clip.Samples) == 0 {
		return nil, services.Wrap(services.ErrValidation, "analysis", "extract", "empty clip", nil)
	}
	if clip.SampleRate != opts.SampleRate {
		return nil, services.Wrap(services.ErrValidation, "analysis", "extract",
			fmt.Sprintf("clip sample rate %d does not match configured %d", clip.SampleRate, opts.SampleRate), nil)
	}

	plan := newSTFTPlan(opts.FrameLength, opts.HopLength)
	count := plan.frameCount(len(clip.Samples))
	filters := melFilterbank(opts.MelBands, opts.FrameLength, opts.SampleRate)

	loudness := make([]float64, count)
	brightness := make([]float64, count)
	noisiness := make([]float64, count)
	chroma := make([][]float64, count)
	melPower := make([][]float64, count)

	mags := make([]float64, opts.FrameLength/2+1)
	for i := 0; i < count; i++ {
		start := i * opts.HopLength
		mags = plan.magnitudes(clip.Samples, start, mags)

		loudness[i] = rms(clip.Samples, start, opts.FrameLength)
		brightness[i] = spectralCentroid(plan, mags, opts.SampleRate)
		noisiness[i] = zeroCrossingRate(clip.Samples, start, opts.FrameLength)
		chroma[i] = chromaProfile(plan, mags, opts.SampleRate)
		melPower[i] = applyFilterbank(filters, mags)
	}

	// dB conversion is relative to the clip-wide peak, so it runs after the
	// full spectrogram exists.
	powerToDB(melPower)

	frames := make([]features.Frame, count)
	for i := 0; i < count; i++ {
		novelty := 0.0
		if i > 0 {
			novelty = spectralFlux(melPower[i-1], melPower[i])
		}
		frames[i] = features.Frame{
			Time: float64(i*opts.HopLength) / float64(opts.SampleRate),
			Scalars: map[string]float64{
				features.Loudness:   loudness[i],
				features.Brightness: brightness[i],
				features.Noisiness:  noisiness[i],
				features.Novelty:    novelty,
			},
			Vectors: map[string][]float64{
				features.Chroma: chroma[i],
				features.Mel:    melPower[i],
				features.Timbre: mfcc(melPower[i], opts.MFCCCount),
			},
		}
	}
	return features.NewTimeline(frames, clip.Duration())
}

// rms is the root-mean-square amplitude of one analysis frame.
func rms(signal []float32, start, length int) float64 {
	var sum float64
	n := 0
	for k := 0; k < length && start+k < len(signal); k++ {
		v := float64(signal[start+k])
		sum += v * v
		n++
	}
	if n == 0 {
		return 0
	}
	return math.Sqrt(sum / float64(n))
}

// spectralCentroid is the magnitude-weighted mean frequency in Hz.
func spectralCentroid(plan *stftPlan, mags []float64, sampleRate int) float64 {
	var weighted, total float64
	for i, m := range mags {
		weighted += plan.binHz(i, sampleRate) * m
		total += m
	}
	if total == 0 {
		return 0
	}
	return weighted / total
}

// zeroCrossingRate is the fraction of adjacent sample pairs that change sign.
func zeroCrossingRate(signal []float32, start, length int) float64 {
	crossings := 0
	pairs := 0
	for k := 1; k < length && start+k < len(signal); k++ {
		pairs++
		if (signal[start+k-1] >= 0) != (signal[start+k] >= 0) {
			crossings++
		}
	}
	if pairs == 0 {
		return 0
	}
	return float64(crossings) / float64(pairs)
}

// spectralFlux is the mean positive dB increase across mel bands between
// consecutive spectrogram columns, the onset-strength novelty signal.
func spectralFlux(prev, curr []float64) float64 {
	var sum float64
	for i := range curr {
		if d := curr[i] - prev[i]; d > 0 {
			sum += d
		}
	}
	return sum / float64(len(curr))
}
