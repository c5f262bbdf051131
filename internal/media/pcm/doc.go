// Package pcm decodes audio files into mono float32 sample buffers via
// ffmpeg. Every downstream stage (feature extraction, rendering) works from
// the Clip this package produces, so the whole pipeline sees one canonical
// sample rate regardless of the input container.
package pcm
