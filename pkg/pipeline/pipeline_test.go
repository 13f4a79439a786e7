package pipeline_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/bidiboard/pkg/config"
	"github.com/Sumatoshi-tech/bidiboard/pkg/diff"
	"github.com/Sumatoshi-tech/bidiboard/pkg/pipeline"
	"github.com/Sumatoshi-tech/bidiboard/pkg/results"
	"github.com/Sumatoshi-tech/bidiboard/pkg/timeseries"
)

const (
	artifactsDir = "artifacts"
	outputDir    = "site"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.ArtifactsDir = artifactsDir
	cfg.OutputDir = outputDir

	return cfg
}

// reportJSON builds a one-suite report with the given spec statuses.
func reportJSON(prTitle, startTime string, statuses map[string]string) string {
	specs := make([]map[string]any, 0, len(statuses))

	for title, status := range statuses {
		specs = append(specs, map[string]any{
			"title": title,
			"tests": []map[string]any{{"results": []map[string]any{{"status": status}}}},
		})
	}

	doc := map[string]any{
		"suites": []map[string]any{{"title": "session", "specs": specs}},
	}

	if prTitle != "" {
		doc["config"] = map[string]any{"metadata": map[string]any{"ci": map[string]any{"prTitle": prTitle}}}
	}

	if startTime != "" {
		doc["stats"] = map[string]any{"startTime": startTime}
	}

	data, err := json.Marshal(doc)
	if err != nil {
		panic(err)
	}

	return string(data)
}

func writeArtifact(t *testing.T, fs afero.Fs, name, body string) {
	t.Helper()

	require.NoError(t, afero.WriteFile(fs, artifactsDir+"/"+name, []byte(body), 0o644))
}

func loadDocument(t *testing.T, fs afero.Fs) map[string]any {
	t.Helper()

	data, err := afero.ReadFile(fs, outputDir+"/data.json")
	require.NoError(t, err)

	var doc map[string]any

	require.NoError(t, json.Unmarshal(data, &doc))

	return doc
}

func TestRun_EmptyArtifactDir(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll(artifactsDir, 0o755))

	summary, err := pipeline.NewProcessor(fs, testConfig()).Run(context.Background())
	require.NoError(t, err)
	assert.False(t, summary.Changed())

	data, err := afero.ReadFile(fs, outputDir+"/data.json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"days":[],"results":{},"pullRequests":{}}`, string(data))
}

func TestRun_MergesDaysAndWritesOutputs(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	writeArtifact(t, fs, "firefox-2024-05-01.json", reportJSON("", "", map[string]string{
		"new": "passed", "close": "failed",
	}))
	writeArtifact(t, fs, "firefox-2024-05-02.json", reportJSON("", "", map[string]string{
		"new": "passed", "close": "passed", "end": "skipped",
	}))
	writeArtifact(t, fs, "chrome-2024-05-02.json", reportJSON("", "", map[string]string{
		"new": "timedOut",
	}))
	writeArtifact(t, fs, "notes.txt", "ignored")

	summary, err := pipeline.NewProcessor(fs, testConfig()).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, summary.DaysMerged)
	assert.Equal(t, 0, summary.DaysSkipped)
	assert.Equal(t, 1, summary.DiffsWritten)
	assert.Equal(t, 2, summary.DigestsWritten)

	store, found, err := pipeline.LoadStore(fs, testConfig())
	require.NoError(t, err)
	require.True(t, found)

	assert.Equal(t, results.Failed, store.ResultAt("session > close", "firefox", 121))
	assert.Equal(t, results.Passed, store.ResultAt("session > close", "firefox", 122))
	assert.Equal(t, results.TimedOut, store.ResultAt("session > new", "chrome", 122))
	assert.Equal(t, 122, store.LastDayIndex())

	diffData, err := afero.ReadFile(fs, outputDir+"/diff/2024-05-02-firefox.json")
	require.NoError(t, err)

	var entries diff.Entries

	require.NoError(t, json.Unmarshal(diffData, &entries))
	assert.Equal(t, diff.Entry{Previous: results.Failed, Current: results.Passed}, entries["session > close"])
	assert.Equal(t, diff.Entry{Previous: results.None, Current: results.Skipped}, entries["session > end"])
	assert.NotContains(t, entries, "session > new")

	digestData, err := afero.ReadFile(fs, outputDir+"/chrome-failing.json")
	require.NoError(t, err)

	var digest timeseries.Digest

	require.NoError(t, json.Unmarshal(digestData, &digest))
	assert.Equal(t, []string{"new"}, digest["session"].Failing)

	exists, err := afero.Exists(fs, outputDir+"/data.json.lz4")
	require.NoError(t, err)
	assert.False(t, exists, "no backup without a previous document")
}

func TestRun_SecondRunIsNoOp(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	writeArtifact(t, fs, "firefox-2024-05-01.json", reportJSON("", "", map[string]string{"a": "passed"}))
	writeArtifact(t, fs, "firefox-2024-05-02.json", reportJSON("", "", map[string]string{"a": "failed"}))
	writeArtifact(t, fs, "firefox-pr-7.json", reportJSON("Fix it", "2024-05-03T08:00:00Z",
		map[string]string{"a": "passed"}))

	cfg := testConfig()

	first, err := pipeline.NewProcessor(fs, cfg).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, first.DaysMerged)
	assert.Equal(t, 1, first.PullRequestsMerged)

	before := loadDocument(t, fs)

	second, err := pipeline.NewProcessor(fs, cfg).Run(context.Background())
	require.NoError(t, err)
	assert.False(t, second.Changed())
	assert.Equal(t, 2, second.DaysSkipped)
	assert.Equal(t, 1, second.PullRequestsSkipped)
	assert.Equal(t, 0, second.DiffsWritten)

	assert.Equal(t, before, loadDocument(t, fs))

	exists, err := afero.Exists(fs, pipeline.BackupPath(cfg))
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestRun_PullRequestReplacesPreviousResults(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	cfg := testConfig()

	writeArtifact(t, fs, "firefox-pr-42.json", reportJSON("First title", "2024-05-03T08:00:00Z",
		map[string]string{"a": "failed", "b": "passed"}))

	_, err := pipeline.NewProcessor(fs, cfg).Run(context.Background())
	require.NoError(t, err)

	writeArtifact(t, fs, "firefox-pr-42.json", reportJSON("", "2024-05-04T08:00:00Z",
		map[string]string{"a": "passed"}))

	summary, err := pipeline.NewProcessor(fs, cfg).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.PullRequestsMerged)

	store, _, err := pipeline.LoadStore(fs, cfg)
	require.NoError(t, err)

	assert.Equal(t, results.Passed, store.PullRequestResult("session > a", "firefox", 42))
	assert.Equal(t, results.None, store.PullRequestResult("session > b", "firefox", 42))

	record, ok := store.PullRequest(42)
	require.True(t, ok)
	assert.Equal(t, "First title", record.Title)
	assert.Equal(t, time.Date(2024, 5, 4, 8, 0, 0, 0, time.UTC), record.Runs["firefox"].Date)
}

func TestRun_PullRequestWithoutStartTimeUsesClock(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	writeArtifact(t, fs, "chrome-pr-5.json", reportJSON("Title", "", map[string]string{"a": "passed"}))

	_, err := pipeline.NewProcessor(fs, testConfig(),
		pipeline.WithClock(func() time.Time { return now })).Run(context.Background())
	require.NoError(t, err)

	store, _, err := pipeline.LoadStore(fs, testConfig())
	require.NoError(t, err)

	record, ok := store.PullRequest(5)
	require.True(t, ok)
	assert.Equal(t, now, record.Runs["chrome"].Date)
}

func TestRun_MalformedReportAborts(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	writeArtifact(t, fs, "firefox-2024-05-01.json", reportJSON("", "", map[string]string{"a": "passed"}))
	writeArtifact(t, fs, "firefox-2024-05-02.json", `{"suites": [`)

	_, err := pipeline.NewProcessor(fs, testConfig()).Run(context.Background())
	require.Error(t, err)
	assert.True(t, pipeline.IsMalformed(err))

	exists, err := afero.Exists(fs, outputDir+"/data.json")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRun_SkipsUnconfiguredBrowsersAndEarlyDays(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	writeArtifact(t, fs, "safari-2024-05-01.json", reportJSON("", "", map[string]string{"a": "passed"}))
	writeArtifact(t, fs, "firefox-2023-12-31.json", reportJSON("", "", map[string]string{"a": "passed"}))

	summary, err := pipeline.NewProcessor(fs, testConfig()).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Ignored)
	assert.Equal(t, 1, summary.DaysSkipped)
	assert.Equal(t, 0, summary.DaysMerged)
}

func TestRun_InvalidStoreIsRejected(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, outputDir+"/data.json", []byte(`{"days": 3}`), 0o644))

	_, err := pipeline.NewProcessor(fs, testConfig()).Run(context.Background())
	require.ErrorIs(t, err, pipeline.ErrInvalidStore)
}

func TestRun_ExistingDiffIsKept(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	writeArtifact(t, fs, "firefox-2024-05-01.json", reportJSON("", "", map[string]string{"a": "passed"}))
	writeArtifact(t, fs, "firefox-2024-05-02.json", reportJSON("", "", map[string]string{"a": "failed"}))
	require.NoError(t, afero.WriteFile(fs, outputDir+"/diff/2024-05-02-firefox.json", []byte(`{}`), 0o644))

	summary, err := pipeline.NewProcessor(fs, testConfig()).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, summary.DiffsWritten)

	data, err := afero.ReadFile(fs, outputDir+"/diff/2024-05-02-firefox.json")
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))
}

func TestRun_Cancelled(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	writeArtifact(t, fs, "firefox-2024-05-01.json", reportJSON("", "", map[string]string{"a": "passed"}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := pipeline.NewProcessor(fs, testConfig()).Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestDiffFilename(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "2024-05-02-chrome", pipeline.DiffFilename("2024-05-02", "chrome"))
	assert.Equal(t, fmt.Sprintf("%s/%s", outputDir, "data.json"), pipeline.StorePath(testConfig()))
}
