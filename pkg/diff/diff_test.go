package diff_test

import (
	"encoding/json"
	"testing"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/bidiboard/pkg/diff"
	"github.com/Sumatoshi-tech/bidiboard/pkg/results"
)

func TestDiff_Example(t *testing.T) {
	t.Parallel()

	before := results.Flat{"A > x": results.Passed}
	after := results.Flat{"A > x": results.Failed, "A > y": results.Passed}

	entries := diff.Diff(before, after)

	assert.Equal(t, diff.Entries{
		"A > x": {Previous: results.Passed, Current: results.Failed},
		"A > y": {Previous: results.None, Current: results.Passed},
	}, entries)

	data, err := json.Marshal(entries)
	require.NoError(t, err)
	assert.JSONEq(t, `{"A > x": {"previous": 0, "current": 2}, "A > y": {"current": 0}}`, string(data))
}

func TestDiff_SelfIsEmpty(t *testing.T) {
	t.Parallel()

	snapshot := results.Flat{"A > x": results.Passed, "A > y": results.TimedOut, "B > z": results.Skipped}

	assert.Empty(t, diff.Diff(snapshot, snapshot))
	assert.Empty(t, diff.Diff(results.Flat{}, results.Flat{}))
}

func TestDiff_SwapIsAntiSymmetric(t *testing.T) {
	t.Parallel()

	before := results.Flat{"A > x": results.Passed, "A > gone": results.Failed, "A > same": results.Skipped}
	after := results.Flat{"A > x": results.TimedOut, "A > new": results.Passed, "A > same": results.Skipped}

	forward := diff.Diff(before, after)
	backward := diff.Diff(after, before)

	assert.Equal(t, forward.Paths(), backward.Paths())
	assert.Equal(t, forward.Swap(), backward)
	assert.Equal(t, []string{"A > gone", "A > new", "A > x"}, forward.Paths())
}

func TestDiff_TimedOutAndFailedDiffer(t *testing.T) {
	t.Parallel()

	entries := diff.Diff(results.Flat{"A > x": results.Failed}, results.Flat{"A > x": results.TimedOut})

	assert.Len(t, entries, 1)
}

func TestEntry_UnmarshalMissingSides(t *testing.T) {
	t.Parallel()

	var entries diff.Entries

	require.NoError(t, json.Unmarshal([]byte(`{"A > y": {"current": 0}, "A > z": {"previous": 2, "current": null}}`), &entries))

	assert.True(t, entries["A > y"].Added())
	assert.True(t, entries["A > z"].Removed())
	assert.Equal(t, results.Failed, entries["A > z"].Previous)
}

func TestEntries_Summarize(t *testing.T) {
	t.Parallel()

	entries := diff.Diff(
		results.Flat{"A > fix": results.Failed, "A > reg": results.Passed, "A > gone": results.Passed, "A > skip": results.Passed},
		results.Flat{"A > fix": results.Passed, "A > reg": results.TimedOut, "A > new": results.Failed, "A > skip": results.Skipped},
	)

	assert.Equal(t, diff.Summary{Added: 1, Removed: 1, Fixed: 1, Regressed: 1, Other: 1}, entries.Summarize())
}

func TestRenameCandidates(t *testing.T) {
	t.Parallel()

	entries := diff.Diff(
		results.Flat{
			"A > navigate to url": results.Passed,
			"A > close tab":       results.Passed,
			"B > reload":          results.Passed,
		},
		results.Flat{
			"A > navigate to URL":            results.Passed,
			"A > something entirely unlike": results.Passed,
			"C > reload":                     results.Passed,
		},
	)

	renames := diff.RenameCandidates(entries, diff.DefaultRenameDistance)

	require.Len(t, renames, 1)
	assert.Equal(t, "A > navigate to url", renames[0].From)
	assert.Equal(t, "A > navigate to URL", renames[0].To)
	assert.Equal(t, 3, renames[0].Distance)

	var changed int

	for _, d := range renames[0].Diffs() {
		if d.Type != diffmatchpatch.DiffEqual {
			changed++
		}
	}

	assert.Positive(t, changed)
	assert.Nil(t, diff.RenameCandidates(entries, 0))
}
