package compose

import "strings"

// measurer reports the rendered width of a string in pixels.
type measurer func(s string) float64

// wrapText greedily packs words into lines no wider than maxWidth. A single
// word wider than the limit gets a line of its own rather than being split.
func wrapText(text string, maxWidth float64, measure measurer) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	var lines []string
	current := words[0]
	for _, word := range words[1:] {
		candidate := current + " " + word
		if measure(candidate) < maxWidth {
			current = candidate
			continue
		}
		lines = append(lines, current)
		current = word
	}
	return append(lines, current)
}

// truncateLines keeps at most maxLines lines, marking truncation with an
// ellipsis on the final kept line. Overflowing text is cut, never resized.
func truncateLines(lines []string, maxLines int) []string {
	if maxLines <= 0 {
		return nil
	}
	if len(lines) <= maxLines {
		return lines
	}
	kept := append([]string(nil), lines[:maxLines]...)
	kept[maxLines-1] += "…"
	return kept
}
