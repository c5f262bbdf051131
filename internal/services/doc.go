// Package services defines shared utilities consumed by the rendering
// pipeline and external integrations.
//
// Key responsibilities:
//   - Structured error markers plus the Wrap helper that keep stage and
//     operation context attached to failures as they cross package
//     boundaries.
//   - Classification helpers so callers can distinguish pre-flight input
//     failures from per-frame recoverable ones without string matching.
//
// Use these helpers when wiring new pipeline logic so operational behaviour
// (error handling, observability) stays uniform across the renderer.
package services
