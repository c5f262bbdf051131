package commentary

import (
	"fmt"
	"sort"

	"savo/internal/services"
)

// State is a per-event lifecycle phase at a given query time.
type State int

const (
	StatePending State = iota
	StateActive
	StateExpired
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateActive:
		return "active"
	case StateExpired:
		return "expired"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Cue is the scheduler's answer for one render frame: the event occupying
// the display slot, whether one is displayed at all, and whether this is the
// frame where it first appeared (for one-shot effects).
type Cue struct {
	Event     Event
	Displayed bool
	Entered   bool
}

// Scheduler resolves which annotation, if any, owns the display slot at a
// render time. Overlapping events are legal: the one with the later start
// wins the slot, while every event still expires on its own schedule, so an
// overshadowed event can reclaim the slot after the later one ends. State is
// derived from t, never stored, so concurrent queries need no locking.
type Scheduler struct {
	events []Event
	hold   float64
	// maxEnd is a segment tree over effective end times, used to find the
	// latest-started event still active at t in logarithmic time.
	maxEnd []float64
	size   int
}

// NewScheduler validates and indexes the events. hold is the display
// duration applied to events without an explicit end.
func NewScheduler(events []Event, hold float64) (*Scheduler, error) {
	if hold <= 0 {
		return nil, services.Wrap(services.ErrConfiguration, "commentary", "scheduler",
			fmt.Sprintf("hold duration %v not positive", hold), nil)
	}

	owned := make([]Event, len(events))
	copy(owned, events)
	for i := range owned {
		owned[i].Text = NormalizeText(owned[i].Text)
	}
	sort.SliceStable(owned, func(i, j int) bool { return owned[i].Start < owned[j].Start })

	s := &Scheduler{events: owned, hold: hold}
	for i, event := range owned {
		if event.Start < 0 {
			return nil, services.Wrap(services.ErrValidation, "commentary", "scheduler",
				fmt.Sprintf("event %d starts at %v before zero", i, event.Start), nil)
		}
		if event.End != 0 && !event.HasEnd() {
			return nil, services.Wrap(services.ErrValidation, "commentary", "scheduler",
				fmt.Sprintf("event %d ends at %v, at or before its start %v", i, event.End, event.Start), nil)
		}
	}
	s.buildIndex()
	return s, nil
}

// Len returns the number of scheduled events.
func (s *Scheduler) Len() int { return len(s.events) }

// Events returns the sorted events. Callers must not mutate the result.
func (s *Scheduler) Events() []Event { return s.events }

// EffectiveEnd returns the time at which the event expires: its explicit end
// when present, otherwise start plus the default hold duration.
func (s *Scheduler) EffectiveEnd(e Event) float64 {
	if e.HasEnd() {
		return e.End
	}
	return e.Start + s.hold
}

// StateAt derives the lifecycle state of the i-th event at time t.
func (s *Scheduler) StateAt(i int, t float64) State {
	event := s.events[i]
	switch {
	case t < event.Start:
		return StatePending
	case t >= s.EffectiveEnd(event):
		return StateExpired
	default:
		return StateActive
	}
}

// Cue resolves the display slot for the frame whose window starts at t.
// interval is the frame duration (1/fps); the Entered flag is set when the
// displayed event's start falls inside (t-interval, t], i.e. this is the
// first frame on which it is shown. An event reclaiming the slot after a
// later overlapping event expired does not count as entering again.
func (s *Scheduler) Cue(t, interval float64) Cue {
	started := sort.Search(len(s.events), func(i int) bool {
		return s.events[i].Start > t
	})
	idx, ok := s.latestActive(started, t)
	if !ok {
		return Cue{}
	}
	event := s.events[idx]
	return Cue{
		Event:     event,
		Displayed: true,
		Entered:   interval > 0 && event.Start > t-interval,
	}
}

// buildIndex fills a flat segment tree with per-event effective end times so
// latestActive can descend it instead of scanning.
func (s *Scheduler) buildIndex() {
	n := len(s.events)
	size := 1
	for size < n {
		size *= 2
	}
	if n == 0 {
		size = 0
	}
	s.size = size
	s.maxEnd = make([]float64, 2*size)
	for i := range s.maxEnd {
		s.maxEnd[i] = negativeInfinity
	}
	for i, event := range s.events {
		s.maxEnd[size+i] = s.EffectiveEnd(event)
	}
	for i := size - 1; i >= 1; i-- {
		s.maxEnd[i] = maxFloat(s.maxEnd[2*i], s.maxEnd[2*i+1])
	}
}

// latestActive returns the largest index below limit whose event is still
// active at t, descending the max-end tree right-first.
func (s *Scheduler) latestActive(limit int, t float64) (int, bool) {
	if limit <= 0 || s.size == 0 {
		return 0, false
	}
	var descend func(node, lo, hi int) (int, bool)
	descend = func(node, lo, hi int) (int, bool) {
		if lo >= limit || s.maxEnd[node] <= t {
			return 0, false
		}
		if hi-lo == 1 {
			return lo, true
		}
		mid := (lo + hi) / 2
		if idx, ok := descend(2*node+1, mid, hi); ok {
			return idx, true
		}
		return descend(2*node, lo, mid)
	}
	return descend(1, 0, s.size)
}

const negativeInfinity = -1.0e308

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
