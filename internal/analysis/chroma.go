package analysis

import "math"

const (
	chromaBins = 12
	// Bins below ~32 Hz (below C1) carry no usable pitch information and
	// alias into arbitrary pitch classes, so the fold skips them.
	chromaMinHz = 32.0
)

// chromaProfile folds STFT magnitude energy into 12 pitch classes. Each FFT
// bin contributes its energy to the pitch class of its center frequency;
// the profile is normalized so the strongest class is 1.
func chromaProfile(plan *stftPlan, mags []float64, sampleRate int) []float64 {
	profile := make([]float64, chromaBins)
	for i := 1; i < len(mags); i++ {
		hz := plan.binHz(i, sampleRate)
		if hz < chromaMinHz {
			continue
		}
		profile[pitchClass(hz)] += mags[i] * mags[i]
	}
	peak := 0.0
	for _, v := range profile {
		if v > peak {
			peak = v
		}
	}
	if peak > 0 {
		for i := range profile {
			profile[i] /= peak
		}
	}
	return profile
}

// pitchClass maps a frequency to its chromatic pitch class, 0 = C.
func pitchClass(hz float64) int {
	// MIDI note number; A4 (440 Hz) is note 69.
	note := 69 + 12*math.Log2(hz/440)
	class := int(math.Round(note)) % chromaBins
	if class < 0 {
		class += chromaBins
	}
	return class
}
