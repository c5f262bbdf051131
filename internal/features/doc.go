// Package features holds the per-frame audio descriptors produced by
// analysis and the immutable timeline the renderer samples from.
//
// A Timeline is constructed once from collaborator output, validated for a
// fixed schema and strictly increasing timestamps, and is then safe for
// concurrent reads. Sampling is nearest-preceding, never interpolated: the
// discrete stepping of the source analysis is a deliberate fidelity choice.
package features
