// Package changes counts status flips in a spec's result history to flag
// intermittent specs and to filter views down to specs whose status changed.
package changes

import (
	"github.com/Sumatoshi-tech/bidiboard/pkg/results"
)

// Intermittency thresholds.
const (
	// IntermittentWindow is the length in days of the trailing window.
	IntermittentWindow = 29
	// IntermittentMinChanges is the number of flips that makes a spec intermittent.
	IntermittentMinChanges = 2
)

// Window is an inclusive range of day indices.
type Window struct {
	First int
	Last  int
}

// FullWindow covers every slot of series.
func FullWindow(series results.Series) Window {
	return Window{First: 0, Last: len(series) - 1}
}

// TrailingWindow covers size days ending at last.
func TrailingWindow(last, size int) Window {
	return Window{First: last - size + 1, Last: last}
}

// Len returns the number of days in w.
func (w Window) Len() int {
	return max(0, w.Last-w.First+1)
}

// Days lists the day indices of w in order.
func (w Window) Days() []int {
	days := make([]int, 0, w.Len())

	for day := w.First; day <= w.Last; day++ {
		days = append(days, day)
	}

	return days
}

// CountStatusChanges walks the window in order and counts how often the
// normalized status differs from the last informative one. Skipped and
// missing days carry no information: they neither count nor reset the last
// seen status, and the first informative day never counts.
func CountStatusChanges(series results.Series, window Window) int {
	previous := results.OutcomeNone
	count := 0

	for day := window.First; day <= window.Last; day++ {
		current := results.Normalize(series.At(day))
		if current == results.OutcomeNone {
			continue
		}

		if previous != results.OutcomeNone && previous != current {
			count++
		}

		previous = current
	}

	return count
}

// IsIntermittent reports whether the status flipped at least
// IntermittentMinChanges times in the trailing window ending at the last
// recorded day of series.
func IsIntermittent(series results.Series) bool {
	return IsIntermittentAt(series, series.LastIndex())
}

// IsIntermittentAt is IsIntermittent with the window ending at day.
func IsIntermittentAt(series results.Series, day int) bool {
	if day < 0 {
		return false
	}

	return CountStatusChanges(series, TrailingWindow(day, IntermittentWindow)) >= IntermittentMinChanges
}

// HasStatusChanged reports whether the status flipped at least minChanges
// times over the whole series.
func HasStatusChanged(series results.Series, minChanges int) bool {
	return HasStatusChangedIn(series, FullWindow(series), minChanges)
}

// HasStatusChangedIn reports whether the status flipped at least minChanges
// times within window. A minChanges below 1 is treated as 1.
func HasStatusChangedIn(series results.Series, window Window, minChanges int) bool {
	return CountStatusChanges(series, window) >= max(1, minChanges)
}

// Change is a spec whose status flipped within a window.
type Change struct {
	Path    string
	Changes int
}

// Select returns, in the order of paths, the specs whose history flipped at
// least minChanges times within window.
func Select(paths []string, history func(path string) results.Series, window Window, minChanges int) []Change {
	var selected []Change

	for _, path := range paths {
		count := CountStatusChanges(history(path), window)
		if count >= max(1, minChanges) {
			selected = append(selected, Change{Path: path, Changes: count})
		}
	}

	return selected
}
