package analysis

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
)

// stftPlan reuses the FFT plan and window across frames; a fresh plan per
// frame dominates extraction time on long clips.
type stftPlan struct {
	frameLength int
	hopLength   int
	window      []float64
	fft         *fourier.FFT
}

func newSTFTPlan(frameLength, hopLength int) *stftPlan {
	return &stftPlan{
		frameLength: frameLength,
		hopLength:   hopLength,
		window:      hannWindow(frameLength),
		fft:         fourier.NewFFT(frameLength),
	}
}

// frameCount returns how many hops cover the signal. Like the windowed
// analysis it mirrors, a signal shorter than one frame still yields one
// zero-padded frame.
func (p *stftPlan) frameCount(samples int) int {
	if samples <= 0 {
		return 0
	}
	return 1 + (samples-1)/p.hopLength
}

// magnitudes computes the windowed magnitude spectrum of the frame starting
// at the given sample, zero-padding past the end of the signal. The result
// holds frameLength/2+1 non-negative frequency bins.
func (p *stftPlan) magnitudes(signal []float32, start int, dst []float64) []float64 {
	buf := make([]float64, p.frameLength)
	for k := 0; k < p.frameLength; k++ {
		if start+k < len(signal) {
			buf[k] = float64(signal[start+k]) * p.window[k]
		}
	}
	coeffs := p.fft.Coefficients(nil, buf)
	if dst == nil {
		dst = make([]float64, len(coeffs))
	}
	for i, c := range coeffs {
		dst[i] = math.Hypot(real(c), imag(c))
	}
	return dst
}

// binHz returns the center frequency of FFT bin i.
func (p *stftPlan) binHz(i, sampleRate int) float64 {
	return float64(i) * float64(sampleRate) / float64(p.frameLength)
}

func hannWindow(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
	}
	return w
}
