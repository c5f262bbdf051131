// Package render walks output frame indices at the target rate, fans frame
// composition out across a bounded worker pool, and re-serializes the
// results into the encoder in strict index order.
//
// Composition is embarrassingly parallel because every input — feature
// timeline, commentary scheduler, layout — is immutable and queried by time.
// The encoder is the single sequential sink and the pipeline's natural
// backpressure point: dispatch tickets cap how many frames can exist between
// composition and encode, so long renders never buffer the whole video.
//
// A frame whose composition fails is logged and replaced by a degraded frame
// with the overlay layers suppressed; the render continues and the final
// result reports how many frames were degraded. Encoder failures are fatal
// and leave no partial output behind.
package render
