package compose

import (
	"reflect"
	"testing"
)

// charWidth measures 7 pixels per rune, matching the fixed test face.
func charWidth(s string) float64 {
	return float64(len([]rune(s)) * 7)
}

func TestWrapText(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		maxWidth float64
		want     []string
	}{
		{"empty", "", 100, nil},
		{"single line", "one two", 100, []string{"one two"}},
		{"splits", "alpha beta gamma", 80, []string{"alpha beta", "gamma"}},
		{"long word kept whole", "supercalifragilistic on", 70, []string{"supercalifragilistic", "on"}},
		{"collapses whitespace", "  a   b  ", 100, []string{"a b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := wrapText(tt.text, tt.maxWidth, charWidth)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("wrapText = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTruncateLines(t *testing.T) {
	lines := []string{"a", "b", "c", "d"}
	got := truncateLines(lines, 2)
	if !reflect.DeepEqual(got, []string{"a", "b…"}) {
		t.Errorf("truncateLines = %v", got)
	}
	if lines[1] != "b" {
		t.Error("truncateLines must not mutate its input")
	}
	if got := truncateLines(lines, 4); !reflect.DeepEqual(got, lines) {
		t.Errorf("no truncation expected, got %v", got)
	}
	if got := truncateLines(lines, 0); got != nil {
		t.Errorf("zero budget should drop everything, got %v", got)
	}
}
