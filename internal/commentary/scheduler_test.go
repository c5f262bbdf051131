package commentary

import (
	"errors"
	"math"
	"testing"

	"savo/internal/services"
)

const frameInterval = 1.0 / 30

func mustScheduler(t *testing.T, hold float64, events ...Event) *Scheduler {
	t.Helper()
	s, err := NewScheduler(events, hold)
	if err != nil {
		t.Fatalf("NewScheduler: %v", err)
	}
	return s
}

func TestNewSchedulerRejectsBadInput(t *testing.T) {
	if _, err := NewScheduler(nil, 0); !errors.Is(err, services.ErrConfiguration) {
		t.Errorf("zero hold: got %v", err)
	}
	if _, err := NewScheduler([]Event{{Start: -1, Text: "x"}}, 10); !errors.Is(err, services.ErrValidation) {
		t.Errorf("negative start: got %v", err)
	}
	if _, err := NewScheduler([]Event{{Start: 5, End: 5, Text: "x"}}, 10); !errors.Is(err, services.ErrValidation) {
		t.Errorf("end at start: got %v", err)
	}
}

func TestSchedulerSortsEvents(t *testing.T) {
	s := mustScheduler(t, 10,
		Event{Start: 30, Text: "late"},
		Event{Start: 5, Text: "early"},
	)
	if got := s.Events()[0].Text; got != "early" {
		t.Errorf("first event = %q, want early", got)
	}
}

func TestStateAtLifecycle(t *testing.T) {
	s := mustScheduler(t, 10, Event{Start: 20, Text: "hello"})
	tests := []struct {
		at   float64
		want State
	}{
		{0, StatePending},
		{19.999, StatePending},
		{20, StateActive},
		{29.999, StateActive},
		{30, StateExpired}, // start + default hold
		{1000, StateExpired},
	}
	for _, tt := range tests {
		if got := s.StateAt(0, tt.at); got != tt.want {
			t.Errorf("StateAt(0, %v) = %v, want %v", tt.at, got, tt.want)
		}
	}
}

func TestEffectiveEnd(t *testing.T) {
	s := mustScheduler(t, 10,
		Event{Start: 5, End: 8, Text: "explicit"},
		Event{Start: 20, Text: "instantaneous"},
	)
	if got := s.EffectiveEnd(s.Events()[0]); got != 8 {
		t.Errorf("explicit end = %v", got)
	}
	if got := s.EffectiveEnd(s.Events()[1]); got != 30 {
		t.Errorf("default hold end = %v", got)
	}
}

func TestCueDisplaysActiveEvent(t *testing.T) {
	s := mustScheduler(t, 10, Event{Start: 20, End: 25, Text: "hello"})
	if cue := s.Cue(19, frameInterval); cue.Displayed {
		t.Error("event displayed before start")
	}
	cue := s.Cue(20, frameInterval)
	if !cue.Displayed || cue.Event.Text != "hello" {
		t.Fatalf("expected display at start, got %+v", cue)
	}
	if !cue.Entered {
		t.Error("first frame should report Entered")
	}
	if cue := s.Cue(20+frameInterval, frameInterval); !cue.Displayed || cue.Entered {
		t.Errorf("second frame: %+v", cue)
	}
	if cue := s.Cue(25, frameInterval); cue.Displayed {
		t.Error("event displayed at its expiry")
	}
}

func TestCueOverlapTieBreak(t *testing.T) {
	s := mustScheduler(t, 10,
		Event{Start: 10, End: 15, Text: "first"},
		Event{Start: 12, End: 14, Text: "second"},
	)
	// While both are active the later start wins the slot.
	if cue := s.Cue(13, frameInterval); !cue.Displayed || cue.Event.Text != "second" {
		t.Fatalf("at t=13 want second, got %+v", cue)
	}
	// Both remain logically active at t=13.
	if s.StateAt(0, 13) != StateActive || s.StateAt(1, 13) != StateActive {
		t.Error("both events should be active at t=13")
	}
	// After the later event expires the earlier one reclaims the slot,
	// without re-triggering the entered flash.
	cue := s.Cue(14.5, frameInterval)
	if !cue.Displayed || cue.Event.Text != "first" {
		t.Fatalf("at t=14.5 want first, got %+v", cue)
	}
	if cue.Entered {
		t.Error("reclaimed slot should not report Entered")
	}
	// Nothing displays once every event has expired.
	if cue := s.Cue(15, frameInterval); cue.Displayed {
		t.Errorf("at t=15 nothing should display, got %+v", cue)
	}
}

func TestSchedulerLiveness(t *testing.T) {
	events := []Event{
		{Start: 0, Text: "a"},
		{Start: 9.2, End: 12.4, Text: "b"},
		{Start: 11, Text: "c"},
		{Start: 40, End: 41, Text: "d"},
	}
	s := mustScheduler(t, 10, events...)

	seen := make(map[string]bool)
	for i := 0; ; i++ {
		t0 := float64(i) * frameInterval
		if t0 > 60 {
			break
		}
		cue := s.Cue(t0, frameInterval)
		if !cue.Displayed {
			continue
		}
		seen[cue.Event.Text] = true
		if end := s.EffectiveEnd(cue.Event); t0 >= end {
			t.Fatalf("event %q displayed at %v past its expiry %v", cue.Event.Text, t0, end)
		}
	}
	for _, event := range events {
		if !seen[event.Text] {
			t.Errorf("event %q never displayed", event.Text)
		}
	}
}

func TestCueBeforeAnyEvent(t *testing.T) {
	s := mustScheduler(t, 10, Event{Start: 5, Text: "x"})
	if cue := s.Cue(0, frameInterval); cue.Displayed {
		t.Errorf("no event should display at t=0, got %+v", cue)
	}
	empty := mustScheduler(t, 10)
	if cue := empty.Cue(3, frameInterval); cue.Displayed {
		t.Error("empty scheduler displayed an event")
	}
}

func TestCueLongGapAfterShortOverlap(t *testing.T) {
	// A short event buried under many expired later ones must still be
	// found when it is the only active event.
	events := []Event{{Start: 0, End: 100, Text: "backdrop"}}
	for i := 1; i <= 16; i++ {
		start := float64(i)
		events = append(events, Event{Start: start, End: start + 0.5, Text: "blip"})
	}
	s := mustScheduler(t, 10, events...)
	cue := s.Cue(50, frameInterval)
	if !cue.Displayed || cue.Event.Text != "backdrop" {
		t.Fatalf("want backdrop at t=50, got %+v", cue)
	}
}

func TestNormalizeText(t *testing.T) {
	// Combining acute accent composes to a single rune under NFC.
	decomposed := "café  "
	if got := NormalizeText(decomposed); got != "café" {
		t.Errorf("NormalizeText = %q", got)
	}
}

func TestStateDerivedNotMutated(t *testing.T) {
	s := mustScheduler(t, 10, Event{Start: 10, End: 20, Text: "x"})
	// Querying out of order must not change answers.
	late := s.Cue(15, frameInterval)
	early := s.Cue(5, frameInterval)
	again := s.Cue(15, frameInterval)
	if early.Displayed {
		t.Error("t=5 should display nothing")
	}
	if late.Displayed != again.Displayed || math.Abs(late.Event.Start-again.Event.Start) > 0 {
		t.Error("repeated query at t=15 changed its answer")
	}
}
