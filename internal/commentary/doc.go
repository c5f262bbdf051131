// Package commentary models the externally generated annotation script and
// schedules its events against render time.
//
// The scheduler is a pure function of the query time: per-event state
// (pending, active, expired) is derived from t rather than mutated as time
// advances, which keeps frame composition parallel-safe and lets tests probe
// arbitrary instants without replaying the whole timeline.
package commentary
