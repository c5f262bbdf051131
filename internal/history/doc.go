// Package history persists one row per render run in a SQLite database under
// the state directory. Runs are recorded when a render starts and finalized
// with the outcome, so an interrupted process leaves a visibly unfinished
// row instead of nothing.
package history
