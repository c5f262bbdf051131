package analysis

import "math"

// mfcc computes cepstral coefficients as the orthonormal DCT-II of the
// log-mel column. count coefficients are returned, including the 0th
// (overall log energy).
func mfcc(melDB []float64, count int) []float64 {
	n := len(melDB)
	out := make([]float64, count)
	for k := 0; k < count; k++ {
		var sum float64
		for i := 0; i < n; i++ {
			sum += melDB[i] * math.Cos(math.Pi*float64(k)*(float64(i)+0.5)/float64(n))
		}
		scale := math.Sqrt(2 / float64(n))
		if k == 0 {
			scale = math.Sqrt(1 / float64(n))
		}
		out[k] = scale * sum
	}
	return out
}
