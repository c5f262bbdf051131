// Package compose draws the layered visualization frames.
//
// The compositor is stateless: every call produces a fresh raster from the
// query time, a bounded feature window, the scheduled commentary cue, and an
// immutable layout. Layers are painted back-to-front in a fixed order —
// background, spectrogram strip, VU meter, chroma bands, timeline bar,
// commentary overlay. Every feature-to-color mapping is a fixed monotonic
// function of the feature value so that identical inputs yield byte-identical
// frames.
package compose
