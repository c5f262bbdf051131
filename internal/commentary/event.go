package commentary

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Event is a single timestamped annotation. End is optional: a value at or
// below Start means the event is instantaneous and displays for the
// scheduler's default hold duration.
type Event struct {
	Start float64
	End   float64
	Text  string
}

// HasEnd reports whether the event carries an explicit end time.
func (e Event) HasEnd() bool {
	return e.End > e.Start
}

// Script is the full collaborator output for one piece: the timed events
// plus the global narrative. The narrative is not time-indexed and is
// consumed only by reporting; rendering accepts and ignores it.
type Script struct {
	Events    []Event
	Narrative string
}

// NormalizeText canonicalizes annotation text for display: NFC composition
// and trimmed whitespace. Invalid UTF-8 passes through untouched so the
// compositor can apply its own fail-soft policy.
func NormalizeText(text string) string {
	return strings.TrimSpace(norm.NFC.String(text))
}
