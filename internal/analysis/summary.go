package analysis

import (
	"gonum.org/v1/gonum/stat"

	"savo/internal/features"
)

// Tonality heuristic thresholds: sustained pitch content shows a low
// zero-crossing rate and an uneven chroma profile.
const (
	tonalMaxNoisiness = 0.15
	tonalMinChromaStd = 0.2
)

// ScalarStats holds clip-wide moments of one scalar feature.
type ScalarStats struct {
	Mean float64
	Std  float64
}

// Summary condenses a feature timeline into the global statistics consumed
// by the commentary prompt and the analysis report.
type Summary struct {
	Duration     float64
	Scalars      map[string]ScalarStats
	ChromaMean   []float64
	ChromaStd    float64
	NoveltyPeaks []float64
	Tonal        bool
}

// Summarize computes clip-wide statistics over every frame of the timeline.
func Summarize(tl *features.Timeline) Summary {
	frames := tl.Window(0, tl.Duration())
	summary := Summary{
		Duration: tl.Duration(),
		Scalars:  make(map[string]ScalarStats, len(tl.ScalarNames())),
	}

	values := make([]float64, len(frames))
	for _, name := range tl.ScalarNames() {
		for i, frame := range frames {
			values[i] = frame.Scalar(name)
		}
		summary.Scalars[name] = ScalarStats{
			Mean: stat.Mean(values, nil),
			Std:  stat.StdDev(values, nil),
		}
	}

	if dim := tl.VectorDim(features.Chroma); dim > 0 {
		mean := make([]float64, dim)
		for _, frame := range frames {
			for i, v := range frame.Vector(features.Chroma) {
				mean[i] += v
			}
		}
		for i := range mean {
			mean[i] /= float64(len(frames))
		}
		summary.ChromaMean = mean
		summary.ChromaStd = stat.StdDev(mean, nil)
	}

	summary.NoveltyPeaks = noveltyPeaks(frames, summary.Scalars[features.Novelty])
	summary.Tonal = summary.Scalars[features.Noisiness].Mean < tonalMaxNoisiness &&
		summary.ChromaStd > tonalMinChromaStd
	return summary
}

// noveltyPeaks returns the times of local novelty maxima that rise more than
// one standard deviation above the mean, candidate section boundaries.
func noveltyPeaks(frames []features.Frame, stats ScalarStats) []float64 {
	threshold := stats.Mean + stats.Std
	var peaks []float64
	for i := 1; i < len(frames)-1; i++ {
		v := frames[i].Scalar(features.Novelty)
		if v <= threshold {
			continue
		}
		if v > frames[i-1].Scalar(features.Novelty) && v >= frames[i+1].Scalar(features.Novelty) {
			peaks = append(peaks, frames[i].Time)
		}
	}
	return peaks
}
