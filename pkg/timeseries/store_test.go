package timeseries_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/bidiboard/pkg/results"
	"github.com/Sumatoshi-tech/bidiboard/pkg/timeseries"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func run(flat results.Flat) *results.Run {
	r := &results.Run{Suites: make(map[string]results.Counters), Flat: flat}

	for path, code := range flat {
		suite, _ := results.SplitPath(path)
		c := r.Suites[suite]

		switch results.Normalize(code) {
		case results.OutcomePassing:
			c.Passing++
		case results.OutcomeFailing:
			c.Failing++
		case results.OutcomeNone:
			c.Skipping++
		}

		r.Suites[suite] = c
	}

	return r
}

func TestDayIndex(t *testing.T) {
	t.Parallel()

	s := timeseries.NewStore(epoch.Add(15 * time.Hour))

	assert.Equal(t, 0, s.DayIndex(epoch))
	assert.Equal(t, 0, s.DayIndex(epoch.Add(23*time.Hour)))
	assert.Equal(t, 121, s.DayIndex(time.Date(2024, 5, 1, 18, 30, 0, 0, time.UTC)))
	assert.Equal(t, -1, s.DayIndex(epoch.Add(-time.Minute)))
	assert.Equal(t, "2024-05-01", s.DayLabel(121))

	shifted := time.Date(2024, 5, 1, 23, 0, 0, 0, time.FixedZone("UTC-3", -3*3600))
	assert.Equal(t, 122, s.DayIndex(shifted))
}

func TestMergeDay_Idempotent(t *testing.T) {
	t.Parallel()

	s := timeseries.NewStore(epoch)
	flat := results.Flat{"A > x": results.Passed, "A > y": results.Failed}

	require.True(t, s.MergeDay("firefox", 3, run(flat)))

	first, err := json.Marshal(s.Document())
	require.NoError(t, err)

	assert.False(t, s.MergeDay("firefox", 3, run(flat)))
	assert.False(t, s.MergeDay("firefox", 3, run(results.Flat{"A > x": results.Failed})))

	second, err := json.Marshal(s.Document())
	require.NoError(t, err)

	assert.JSONEq(t, string(first), string(second))
	assert.Equal(t, results.Passed, s.ResultAt("A > x", "firefox", 3))
}

func TestMergeDay_KeepsOtherDaysAndBrowsers(t *testing.T) {
	t.Parallel()

	s := timeseries.NewStore(epoch)

	require.True(t, s.MergeDay("firefox", 5, run(results.Flat{"A > x": results.Failed})))
	require.True(t, s.MergeDay("firefox", 2, run(results.Flat{"A > x": results.Passed})))
	require.True(t, s.MergeDay("chrome", 5, run(results.Flat{"A > x": results.Skipped, "B > z": results.Passed})))

	assert.Equal(t, results.Series{results.None, results.None, results.Passed, results.None, results.None, results.Failed},
		s.History("A > x", "firefox"))
	assert.Equal(t, results.Skipped, s.ResultAt("A > x", "chrome", 5))
	assert.Equal(t, results.None, s.ResultAt("A > x", "chrome", 2))
	assert.Equal(t, results.None, s.ResultAt("missing > spec", "chrome", 5))
	assert.Equal(t, []int{2, 5}, s.Days("firefox"))
	assert.Equal(t, []int{5}, s.Days("chrome"))
	assert.Equal(t, []string{"A > x", "B > z"}, s.SpecPaths())
	assert.Equal(t, []string{"A", "B"}, s.Suites())
	assert.Equal(t, []string{"chrome", "firefox"}, s.Browsers())
	assert.Equal(t, 5, s.LastDayIndex())

	counts, ok := s.Counts("chrome", 5)
	require.True(t, ok)
	assert.Equal(t, 2, counts.Total)
	assert.Equal(t, results.Counters{Passing: 1}, counts.BySuite["B"])
}

func TestMergeDay_Rejects(t *testing.T) {
	t.Parallel()

	s := timeseries.NewStore(epoch)

	assert.False(t, s.MergeDay("firefox", -1, run(results.Flat{"A > x": results.Passed})))
	assert.False(t, s.MergeDay(timeseries.PullRequestsKey, 1, run(results.Flat{"A > x": results.Passed})))
	assert.Equal(t, -1, s.LastDayIndex())
}

func TestMergeDay_EmptyRunStillMarksSlot(t *testing.T) {
	t.Parallel()

	s := timeseries.NewStore(epoch)
	empty := &results.Run{Suites: map[string]results.Counters{"A": {}}, Flat: results.Flat{}}

	require.True(t, s.MergeDay("firefox", 4, empty))

	assert.True(t, s.HasDay("firefox", 4))
	assert.False(t, s.HasDay("chrome", 4))
	assert.Equal(t, 4, s.LastDayIndex())
}

func TestMergePullRequest_Replaces(t *testing.T) {
	t.Parallel()

	s := timeseries.NewStore(epoch)
	require.True(t, s.MergeDay("firefox", 1, run(results.Flat{"A > x": results.Passed})))

	s.MergePullRequest("firefox", 42, run(results.Flat{"A > x": results.Failed, "A > y": results.Failed}),
		timeseries.PullRequestMeta{Title: "First try", Date: epoch.Add(48 * time.Hour)})
	s.MergePullRequest("chrome", 42, run(results.Flat{"A > y": results.Failed}),
		timeseries.PullRequestMeta{Date: epoch})
	s.MergePullRequest("firefox", 42, run(results.Flat{"A > x": results.Passed}),
		timeseries.PullRequestMeta{Title: "Second try", Date: epoch.Add(72 * time.Hour)})

	assert.Equal(t, results.Flat{"A > x": results.Passed}, s.PullRequestSnapshot("firefox", 42))
	assert.Equal(t, results.None, s.PullRequestResult("A > y", "firefox", 42))
	assert.Equal(t, results.Failed, s.PullRequestResult("A > y", "chrome", 42))

	assert.Equal(t, results.Flat{"A > x": results.Passed}, s.Snapshot("firefox", 1))
	assert.Equal(t, 1, s.LastDayIndex())

	pr, ok := s.PullRequest(42)
	require.True(t, ok)
	assert.Equal(t, "Second try", pr.Title)
	assert.Equal(t, []string{"chrome", "firefox"}, pr.Browsers())
	assert.True(t, pr.Runs["firefox"].Date.Equal(epoch.Add(72*time.Hour)))
}

func TestPullRequestNumbers_Descending(t *testing.T) {
	t.Parallel()

	s := timeseries.NewStore(epoch)

	for _, n := range []int{7, 130, 12} {
		s.MergePullRequest("firefox", n, run(results.Flat{}), timeseries.PullRequestMeta{})
	}

	assert.Equal(t, []int{130, 12, 7}, s.PullRequestNumbers())
}

func TestDigest(t *testing.T) {
	t.Parallel()

	s := timeseries.NewStore(epoch)
	require.True(t, s.MergeDay("firefox", 0, run(results.Flat{
		"A > b":         results.Failed,
		"A > a":         results.TimedOut,
		"A > inner > c": results.Skipped,
		"B > ok":        results.Passed,
	})))

	digest := s.Digest("firefox", 0)

	assert.Equal(t, timeseries.Digest{
		"A": {Failing: []string{"a", "b"}, Skipped: []string{"inner > c"}},
	}, digest)

	failing, skipped := digest.Count()
	assert.Equal(t, 2, failing)
	assert.Equal(t, 1, skipped)

	data, err := json.Marshal(s.Digest("chrome", 0))
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(data))
}
