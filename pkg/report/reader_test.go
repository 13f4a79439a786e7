package report_test

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/pierrec/lz4/v4"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/bidiboard/pkg/report"
)

const sampleReport = `{
  "config": {"metadata": {"ci": {"prTitle": "Fix focus handling"}}},
  "stats": {"startTime": "2024-05-02T10:00:00.000Z", "duration": 1200.5, "expected": 1},
  "suites": [{
    "title": "browsingContext",
    "specs": [{"title": "navigate", "ok": true,
               "tests": [{"projectName": "firefox", "results": [{"status": "passed", "retry": 0}]}]}],
    "suites": [{"title": "nested", "specs": []}]
  }]
}`

func zipBytes(t *testing.T, name, body string) []byte {
	t.Helper()

	var buf bytes.Buffer

	zw := zip.NewWriter(&buf)

	w, err := zw.Create(name)
	require.NoError(t, err)

	_, err = w.Write([]byte(body))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	return buf.Bytes()
}

func lz4Bytes(t *testing.T, body string) []byte {
	t.Helper()

	var buf bytes.Buffer

	zw := lz4.NewWriter(&buf)

	_, err := zw.Write([]byte(body))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	return buf.Bytes()
}

func TestDecode(t *testing.T) {
	t.Parallel()

	rep, err := report.Decode(strings.NewReader(sampleReport))
	require.NoError(t, err)

	require.Len(t, rep.Suites, 1)
	assert.Equal(t, "browsingContext", rep.Suites[0].Title)
	assert.Equal(t, "Fix focus handling", rep.PullRequestTitle())
	assert.Equal(t, time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC), rep.StartTime())

	status, ok := rep.Suites[0].Specs[0].FirstStatus()
	assert.True(t, ok)
	assert.Equal(t, "passed", status)
}

func TestDecode_Malformed(t *testing.T) {
	t.Parallel()

	_, err := report.Decode(strings.NewReader(`{"suites": [`))

	require.ErrorIs(t, err, report.ErrMalformedReport)
}

func TestNilAccessors(t *testing.T) {
	t.Parallel()

	var (
		rep  *report.Report
		spec *report.Spec
	)

	assert.Empty(t, rep.PullRequestTitle())
	assert.True(t, rep.StartTime().IsZero())

	_, ok := spec.FirstStatus()
	assert.False(t, ok)
}

func TestReadFile(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()

	require.NoError(t, afero.WriteFile(fs, "in/firefox-2024-05-01.zip", zipBytes(t, "report.json", sampleReport), 0o644))
	require.NoError(t, afero.WriteFile(fs, "in/chrome-2024-05-01.json.lz4", lz4Bytes(t, sampleReport), 0o644))
	require.NoError(t, afero.WriteFile(fs, "in/chrome-2024-05-02.json", []byte(sampleReport), 0o644))

	for _, name := range []string{"firefox-2024-05-01.zip", "chrome-2024-05-01.json.lz4", "chrome-2024-05-02.json"} {
		rep, err := report.ReadFile(fs, "in/"+name, "")
		require.NoError(t, err, name)
		require.Len(t, rep.Suites, 1, name)
	}
}

func TestReadFile_ZipErrors(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()

	require.NoError(t, afero.WriteFile(fs, "other.zip", zipBytes(t, "results.xml", "<xml/>"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "broken.zip", zipBytes(t, "report.json", "not json"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "notes.txt", []byte("hi"), 0o644))

	_, err := report.ReadFile(fs, "other.zip", "")
	require.ErrorIs(t, err, report.ErrEntryNotFound)

	_, err = report.ReadFile(fs, "other.zip", "results.xml")
	require.ErrorIs(t, err, report.ErrMalformedReport)

	_, err = report.ReadFile(fs, "broken.zip", "")
	require.ErrorIs(t, err, report.ErrMalformedReport)

	_, err = report.ReadFile(fs, "notes.txt", "")
	require.ErrorIs(t, err, report.ErrUnsupportedArchive)

	_, err = report.ReadFile(fs, "missing.zip", "")
	require.Error(t, err)
}
