// Package report writes the three analysis artifacts that accompany a
// rendered video: a textual report built around the generated narrative and
// global feature statistics, a CSV dump of the raw feature timeline, and a
// PNG of stacked feature plots.
package report
