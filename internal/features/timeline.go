package features

import (
	"fmt"
	"sort"

	"savo/internal/services"
)

// Timeline is an ordered, schema-homogeneous sequence of feature frames plus
// the originating audio's total duration. It owns its frames and is immutable
// after construction, so queries are safe from multiple goroutines.
type Timeline struct {
	frames     []Frame
	duration   float64
	scalarKeys []string
	vectorDims map[string]int
}

// NewTimeline validates and wraps the provided frames. It fails when the
// feature names differ across frames, when a vector changes length, or when
// timestamps are not strictly increasing.
func NewTimeline(frames []Frame, duration float64) (*Timeline, error) {
	if len(frames) == 0 {
		return nil, services.Wrap(services.ErrValidation, "features", "timeline", "no frames", nil)
	}
	if duration <= 0 {
		return nil, services.Wrap(services.ErrValidation, "features", "timeline", fmt.Sprintf("duration %v not positive", duration), nil)
	}

	owned := make([]Frame, len(frames))
	copy(owned, frames)

	scalarKeys := sortedKeys(owned[0].Scalars)
	vectorDims := make(map[string]int, len(owned[0].Vectors))
	for name, vec := range owned[0].Vectors {
		vectorDims[name] = len(vec)
	}

	for i, frame := range owned {
		if i > 0 && frame.Time <= owned[i-1].Time {
			return nil, services.Wrap(services.ErrNonMonotonicTime, "features", "timeline",
				fmt.Sprintf("frame %d at %.4fs does not advance past %.4fs", i, frame.Time, owned[i-1].Time), nil)
		}
		if err := matchSchema(frame, scalarKeys, vectorDims); err != nil {
			return nil, services.Wrap(services.ErrSchemaMismatch, "features", "timeline",
				fmt.Sprintf("frame %d at %.4fs", i, frame.Time), err)
		}
	}

	return &Timeline{
		frames:     owned,
		duration:   duration,
		scalarKeys: scalarKeys,
		vectorDims: vectorDims,
	}, nil
}

// Duration returns the originating audio's total duration in seconds.
func (t *Timeline) Duration() float64 { return t.duration }

// Len returns the number of source frames.
func (t *Timeline) Len() int { return len(t.frames) }

// ScalarNames returns the scalar feature schema in sorted order.
func (t *Timeline) ScalarNames() []string {
	return append([]string(nil), t.scalarKeys...)
}

// VectorDim returns the fixed length of the named vector feature, or zero
// when the timeline does not carry it.
func (t *Timeline) VectorDim(name string) int { return t.vectorDims[name] }

// SampleAt returns the last frame whose timestamp is at or before the query
// time. Queries before the first frame clamp to it; queries at or past the
// last frame clamp to the last. Lookup is logarithmic.
func (t *Timeline) SampleAt(at float64) Frame {
	idx := sort.Search(len(t.frames), func(i int) bool {
		return t.frames[i].Time > at
	})
	if idx == 0 {
		return t.frames[0]
	}
	return t.frames[idx-1]
}

// Window returns the frames whose timestamps fall inside [from, to]. The
// returned slice views the timeline's own storage and must not be mutated.
func (t *Timeline) Window(from, to float64) []Frame {
	if to < from {
		return nil
	}
	lo := sort.Search(len(t.frames), func(i int) bool {
		return t.frames[i].Time >= from
	})
	hi := sort.Search(len(t.frames), func(i int) bool {
		return t.frames[i].Time > to
	})
	if lo >= hi {
		return nil
	}
	return t.frames[lo:hi]
}

func matchSchema(frame Frame, scalarKeys []string, vectorDims map[string]int) error {
	if len(frame.Scalars) != len(scalarKeys) {
		return fmt.Errorf("expected %d scalar features, found %d", len(scalarKeys), len(frame.Scalars))
	}
	for _, key := range scalarKeys {
		if _, ok := frame.Scalars[key]; !ok {
			return fmt.Errorf("missing scalar feature %q", key)
		}
	}
	if len(frame.Vectors) != len(vectorDims) {
		return fmt.Errorf("expected %d vector features, found %d", len(vectorDims), len(frame.Vectors))
	}
	for name, dim := range vectorDims {
		vec, ok := frame.Vectors[name]
		if !ok {
			return fmt.Errorf("missing vector feature %q", name)
		}
		if len(vec) != dim {
			return fmt.Errorf("vector feature %q has length %d, expected %d", name, len(vec), dim)
		}
	}
	return nil
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
