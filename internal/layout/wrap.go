package layout

import (
	"fmt"
	"strings"
)

// MeasureFunc returns the rendered width of s at a fixed font and size.
type MeasureFunc func(s string) (float64, error)

// Wrap greedily packs the whitespace-separated words of text into lines whose
// measured width stays strictly below maxWidth. A word that is too wide on its
// own is emitted alone; words are never split or dropped.
func Wrap(text string, measure MeasureFunc, maxWidth float64) ([]string, error) {
	if measure == nil {
		panic("layout: Wrap called with nil MeasureFunc")
	}

	var (
		lines   []string
		current string
	)
	for _, word := range strings.Fields(text) {
		candidate := word
		if current != "" {
			candidate = current + " " + word
		}

		width, err := measure(candidate)
		if err != nil {
			return nil, fmt.Errorf("failed to measure %q: %w", candidate, err)
		}

		if width < maxWidth {
			current = candidate
			continue
		}
		if current != "" {
			lines = append(lines, current)
		}
		current = word
	}

	if current != "" {
		lines = append(lines, current)
	}
	return lines, nil
}
