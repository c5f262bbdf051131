package analysis

import "math"

const (
	powerFloor = 1e-10
	dbRange    = 80.0
)

// melFilterbank builds triangular filters mapping FFT magnitude bins to mel
// bands between 0 Hz and Nyquist. Each row holds one filter over the
// frameLength/2+1 bins of the magnitude spectrum.
func melFilterbank(bands, frameLength, sampleRate int) [][]float64 {
	bins := frameLength/2 + 1
	nyquist := float64(sampleRate) / 2

	// Band edges are evenly spaced on the mel scale; each filter spans three
	// consecutive edges.
	edges := make([]float64, bands+2)
	maxMel := hzToMel(nyquist)
	for i := range edges {
		edges[i] = melToHz(maxMel * float64(i) / float64(bands+1))
	}

	filters := make([][]float64, bands)
	for b := 0; b < bands; b++ {
		filters[b] = make([]float64, bins)
		lo, center, hi := edges[b], edges[b+1], edges[b+2]
		for i := 0; i < bins; i++ {
			hz := float64(i) * float64(sampleRate) / float64(frameLength)
			switch {
			case hz <= lo || hz >= hi:
				// outside the triangle
			case hz < center:
				filters[b][i] = (hz - lo) / (center - lo)
			default:
				filters[b][i] = (hi - hz) / (hi - center)
			}
		}
	}
	return filters
}

func hzToMel(hz float64) float64 {
	return 2595 * math.Log10(1+hz/700)
}

func melToHz(mel float64) float64 {
	return 700 * (math.Pow(10, mel/2595) - 1)
}

// applyFilterbank projects one magnitude spectrum onto the mel bands as
// power (squared magnitude) values.
func applyFilterbank(filters [][]float64, mags []float64) []float64 {
	out := make([]float64, len(filters))
	for b, filter := range filters {
		var sum float64
		for i, w := range filter {
			if w != 0 {
				sum += w * mags[i] * mags[i]
			}
		}
		out[b] = sum
	}
	return out
}

// powerToDB converts power values to decibels relative to the clip-wide
// peak, clamped to a fixed dynamic range below the peak.
func powerToDB(power [][]float64) {
	ref := powerFloor
	for _, column := range power {
		for _, v := range column {
			if v > ref {
				ref = v
			}
		}
	}
	for _, column := range power {
		for i, v := range column {
			db := 10 * math.Log10(math.Max(v, powerFloor)/ref)
			if db < -dbRange {
				db = -dbRange
			}
			column[i] = db
		}
	}
}
