// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// The renderer only needs container duration and the primary audio stream's
// properties, so the surface is deliberately small: Inspect runs the binary
// and helper methods on Result answer the ingest questions (is there audio,
// how long is it, what sample rate does it carry).
package ffprobe
