// Package analysis extracts a feature timeline from a decoded audio clip.
//
// The extractor runs a single windowed STFT pass and derives every feature
// from it: RMS loudness, spectral centroid, zero-crossing rate, a 12-bin
// chroma profile, a mel spectrogram in dB, MFCC timbre coefficients, and an
// onset-strength novelty curve. One feature frame is emitted per hop, so the
// timeline's native resolution is hop/sample-rate seconds.
package analysis
