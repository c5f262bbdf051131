// Package encode streams composited frames into ffmpeg and muxes the
// original audio track against them.
//
// The encoder accepts frames in strictly increasing index order; out-of-order
// submission is a hard error, so the pipeline must re-serialize worker output
// before calling Append. On any failure or abort the partially written output
// file is removed — a failed render never leaves a playable-looking but
// truncated artifact behind.
package encode
