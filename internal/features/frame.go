package features

// Canonical scalar feature names emitted by analysis.
const (
	Loudness   = "loudness"   // RMS energy
	Brightness = "brightness" // spectral centroid, Hz
	Noisiness  = "noisiness"  // zero-crossing rate
	Novelty    = "novelty"    // onset strength
)

// Canonical vector feature names emitted by analysis.
const (
	Chroma = "chroma" // 12 pitch-class energies, 0..1
	Mel    = "mel"    // mel spectrogram column, dB relative to peak
	Timbre = "timbre" // MFCC vector
)

// Frame is one sample of extracted audio features at a source timestamp.
// Frames are treated as immutable once handed to a Timeline.
type Frame struct {
	Time    float64
	Scalars map[string]float64
	Vectors map[string][]float64
}

// Scalar returns the named scalar value, or zero when absent.
func (f Frame) Scalar(name string) float64 {
	return f.Scalars[name]
}

// Vector returns the named vector, or nil when absent. Callers must not
// mutate the returned slice.
func (f Frame) Vector(name string) []float64 {
	return f.Vectors[name]
}
