package changes_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Sumatoshi-tech/bidiboard/pkg/changes"
	"github.com/Sumatoshi-tech/bidiboard/pkg/results"
)

const (
	p = results.Passed
	s = results.Skipped
	f = results.Failed
	o = results.TimedOut
	n = results.None
)

func TestCountStatusChanges(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		series results.Series
		want   int
	}{
		{name: "pass fail pass", series: results.Series{p, p, s, f, f, p}, want: 2},
		{name: "stable", series: results.Series{p, p, p, p}, want: 0},
		{name: "only skipped", series: results.Series{s, s, s}, want: 0},
		{name: "empty", series: nil, want: 0},
		{name: "first status never counts", series: results.Series{f}, want: 0},
		{name: "timed out folds into failed", series: results.Series{f, o, f, o}, want: 0},
		{name: "holes are ignored", series: results.Series{p, n, n, s, p, n, f}, want: 1},
		{name: "leading holes", series: results.Series{n, n, f, p}, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := changes.CountStatusChanges(tt.series, changes.FullWindow(tt.series))

			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCountStatusChanges_WindowBeyondSeries(t *testing.T) {
	t.Parallel()

	series := results.Series{p, f, p}

	assert.Equal(t, 2, changes.CountStatusChanges(series, changes.Window{First: -10, Last: 40}))
	assert.Equal(t, 1, changes.CountStatusChanges(series, changes.Window{First: 1, Last: 2}))
	assert.Equal(t, 0, changes.CountStatusChanges(series, changes.Window{First: 2, Last: 1}))
}

func TestIsIntermittent(t *testing.T) {
	t.Parallel()

	assert.True(t, changes.IsIntermittent(results.Series{p, p, s, f, f, p}))
	assert.False(t, changes.IsIntermittent(results.Series{p, p, p, p}))
	assert.False(t, changes.IsIntermittent(nil))

	old := make(results.Series, 40)
	for i := range old {
		old[i] = n
	}

	old[0], old[1], old[2] = p, f, p
	old[39] = p

	assert.False(t, changes.IsIntermittent(old), "flips older than the window are ignored")
	assert.True(t, changes.IsIntermittentAt(old, 2))
	assert.False(t, changes.IsIntermittentAt(old, -1))
}

func TestHasStatusChanged(t *testing.T) {
	t.Parallel()

	series := results.Series{p, f, f, p}

	assert.True(t, changes.HasStatusChanged(series, 1))
	assert.True(t, changes.HasStatusChanged(series, 2))
	assert.False(t, changes.HasStatusChanged(series, 3))
	assert.True(t, changes.HasStatusChanged(series, 0))
	assert.False(t, changes.HasStatusChangedIn(series, changes.Window{First: 1, Last: 2}, 1))
}

func TestWindow(t *testing.T) {
	t.Parallel()

	w := changes.TrailingWindow(10, 3)

	assert.Equal(t, changes.Window{First: 8, Last: 10}, w)
	assert.Equal(t, []int{8, 9, 10}, w.Days())
	assert.Equal(t, 0, changes.Window{First: 3, Last: 1}.Len())
	assert.Equal(t, changes.Window{First: 0, Last: -1}, changes.FullWindow(nil))
}

func TestSelect(t *testing.T) {
	t.Parallel()

	histories := map[string]results.Series{
		"a > flaky":  {p, f, p, f},
		"a > broken": {p, p, f, f},
		"a > stable": {p, p, p, p},
		"b > early":  {f, p, p, p},
	}

	history := func(path string) results.Series { return histories[path] }
	paths := []string{"a > broken", "a > flaky", "a > stable", "b > early"}

	got := changes.Select(paths, history, changes.Window{First: 1, Last: 3}, 0)
	assert.Equal(t, []changes.Change{
		{Path: "a > broken", Changes: 1},
		{Path: "a > flaky", Changes: 2},
	}, got)

	got = changes.Select(paths, history, changes.Window{First: 0, Last: 3}, 2)
	assert.Equal(t, []changes.Change{{Path: "a > flaky", Changes: 3}}, got)

	assert.Empty(t, changes.Select(nil, history, changes.Window{First: 0, Last: 3}, 1))
}
