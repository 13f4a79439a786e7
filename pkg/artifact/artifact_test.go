package artifact_test

import (
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/bidiboard/pkg/artifact"
)

func TestParseFilename(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		ok      bool
		kind    artifact.Kind
		browser string
		date    string
		pr      int
		ext     string
	}{
		{name: "firefox-2024-05-01.zip", ok: true, kind: artifact.KindDay, browser: "firefox", date: "2024-05-01", ext: ".zip"},
		{name: "chrome-2024-12-31.json.lz4", ok: true, kind: artifact.KindDay, browser: "chrome", date: "2024-12-31", ext: ".json.lz4"},
		{name: "chrome-2024-01-02.json", ok: true, kind: artifact.KindDay, browser: "chrome", date: "2024-01-02", ext: ".json"},
		{name: "chrome-pr-123.zip", ok: true, kind: artifact.KindPullRequest, browser: "chrome", pr: 123, ext: ".zip"},
		{name: "firefox-2024-5.zip"},
		{name: "firefox-2024-02-30.zip"},
		{name: "notes.txt"},
		{name: "firefox-pr-.zip"},
		{name: "firefox-pr-0.zip"},
		{name: "Firefox-2024-05-01.zip"},
		{name: "firefox-2024-05-01.tar.gz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := artifact.ParseFilename(tt.name)

			require.Equal(t, tt.ok, ok)

			if !ok {
				return
			}

			assert.Equal(t, tt.kind, got.Kind)
			assert.Equal(t, tt.browser, got.Browser)
			assert.Equal(t, tt.pr, got.PullRequest)
			assert.Equal(t, tt.ext, got.Ext)

			if tt.date != "" {
				assert.Equal(t, tt.date, got.Date.Format(artifact.DateLayout))
			}
		})
	}
}

func TestFilenamesRoundTrip(t *testing.T) {
	t.Parallel()

	date := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)

	day, ok := artifact.ParseFilename(artifact.DayFilename("firefox", date))
	require.True(t, ok)
	assert.True(t, day.Date.Equal(date))

	pr, ok := artifact.ParseFilename(artifact.PullRequestFilename("chrome", 42))
	require.True(t, ok)
	assert.Equal(t, 42, pr.PullRequest)
	assert.Equal(t, "chrome PR #42", pr.String())
}

func TestScan_OrdersAndFilters(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()

	for _, name := range []string{
		"firefox-pr-7.zip",
		"firefox-2024-05-02.zip",
		"chrome-2024-05-01.zip",
		"chrome-pr-3.zip",
		"firefox-2024-05-01.zip",
		"firefox-2024-05-01.json",
		"README.md",
	} {
		require.NoError(t, afero.WriteFile(fs, "artifacts/"+name, []byte("{}"), 0o644))
	}

	require.NoError(t, fs.MkdirAll("artifacts/chrome-2024-05-03.zip", 0o750))

	got, err := artifact.Scan(fs, "artifacts")
	require.NoError(t, err)

	names := make([]string, 0, len(got))
	for _, a := range got {
		names = append(names, a.Name)
	}

	assert.Equal(t, []string{
		"chrome-2024-05-01.zip",
		"firefox-2024-05-01.json",
		"firefox-2024-05-02.zip",
		"chrome-pr-3.zip",
		"firefox-pr-7.zip",
	}, names)
	assert.Equal(t, "artifacts/chrome-2024-05-01.zip", got[0].Path)
}

func TestScan_MissingDir(t *testing.T) {
	t.Parallel()

	_, err := artifact.Scan(afero.NewMemMapFs(), "nope")

	assert.Error(t, err)
}
