package plotpage_test

import (
	"bytes"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/bidiboard/pkg/plotpage"
	"github.com/Sumatoshi-tech/bidiboard/pkg/results"
)

func render(t *testing.T, r plotpage.Renderable) string {
	t.Helper()

	var buf bytes.Buffer

	require.NoError(t, r.Render(&buf))

	return buf.String()
}

func TestPageRender_Light(t *testing.T) {
	t.Parallel()

	page := plotpage.NewPage("Test run", "firefox on 2024-05-01")
	page.WithNav(plotpage.NavLink{Label: "Dashboard", Href: "../index.html"}, plotpage.NavLink{Label: "Next day"})
	page.Add(plotpage.Section{
		Title:    "Suites",
		Subtitle: "Sorted by passing share",
		Hint:     plotpage.Hint{Title: "How to read", Items: []string{"<b>red</b> means failing"}},
		Content:  plotpage.NewAlert("", "no suites", plotpage.BadgeInfo),
	})

	html := render(t, page)

	assert.Contains(t, html, "<!DOCTYPE html>")
	assert.Contains(t, html, "echarts.min.js")
	assert.Contains(t, html, "cdn.tailwindcss.com")
	assert.NotContains(t, html, `class="dark"`)
	assert.Contains(t, html, "Test run")
	assert.Contains(t, html, "firefox on 2024-05-01")
	assert.Contains(t, html, `href="../index.html"`)
	assert.Contains(t, html, "Next day")
	assert.Contains(t, html, "&lt;b&gt;red&lt;/b&gt;")
	assert.Contains(t, html, "no suites")
	assert.Contains(t, html, plotpage.GetThemeConfig(plotpage.ThemeLight).Background)
}

func TestPageRender_Dark(t *testing.T) {
	t.Parallel()

	page := plotpage.NewPage("Dashboard", "")
	page.Theme = plotpage.ThemeDark

	html := render(t, page)

	assert.Contains(t, html, `class="dark"`)
	assert.Contains(t, html, plotpage.GetThemeConfig(plotpage.ThemeDark).Background)
}

func TestParseTheme(t *testing.T) {
	t.Parallel()

	theme, err := plotpage.ParseTheme("dark")
	require.NoError(t, err)
	assert.Equal(t, plotpage.ThemeDark, theme)

	_, err = plotpage.ParseTheme("neon")
	assert.Error(t, err)
}

func TestThemeConfig_ResultColor(t *testing.T) {
	t.Parallel()

	theme := plotpage.GetThemeConfig(plotpage.ThemeLight)

	assert.Equal(t, theme.Pass, theme.ResultColor(results.Passed))
	assert.Equal(t, theme.Fail, theme.ResultColor(results.Failed))
	assert.Equal(t, theme.Fail, theme.ResultColor(results.TimedOut))
	assert.Equal(t, theme.Skip, theme.ResultColor(results.Skipped))
	assert.Equal(t, theme.Missing, theme.ResultColor(results.None))
	assert.NotEqual(t, theme.Pass, plotpage.GetThemeConfig(plotpage.ThemeDark).Pass)
}

func TestBrowserPalette_Cycles(t *testing.T) {
	t.Parallel()

	colors := plotpage.BrowserPalette(plotpage.ThemeLight, 7)

	require.Len(t, colors, 7)
	assert.Equal(t, colors[0], colors[5])
	assert.NotEqual(t, colors[0], colors[1])
}

func TestWrapChart_StripsPage(t *testing.T) {
	t.Parallel()

	chart := plotpage.BuildBarChart(nil, []string{"2024-05-01"},
		[]plotpage.BarSeries{{Name: "firefox", Data: []plotpage.SeriesData{97.5}}},
		plotpage.BarChartConfig{Percent: true})

	html := render(t, plotpage.WrapChart(chart))

	assert.NotContains(t, html, "<!DOCTYPE")
	assert.NotContains(t, html, "<style>")
	assert.Contains(t, html, `class="echart-box"`)
	assert.Contains(t, html, "echarts.init")
}

func TestWrapChart_Nil(t *testing.T) {
	t.Parallel()

	assert.Empty(t, render(t, plotpage.WrapChart(nil)))
}

func TestSite_Write(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	site := &plotpage.Site{FS: fs, Dir: "site", ProjectName: "BiDi", Theme: plotpage.ThemeDark}

	require.NoError(t, site.Write("testrun/firefox-2024-05-01.html", plotpage.NewPage("Run", "")))

	data, err := afero.ReadFile(fs, "site/testrun/firefox-2024-05-01.html")
	require.NoError(t, err)
	assert.Contains(t, string(data), "BiDi")
	assert.Contains(t, string(data), `class="dark"`)
}

func TestRel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "index.html", plotpage.Rel("changes.html", "index.html"))
	assert.Equal(t, "../index.html", plotpage.Rel("testrun/firefox-2024-05-01.html", "index.html"))
	assert.Equal(t, "../diff/2024-05-01-firefox.html",
		plotpage.Rel("testrun/firefox-2024-05-01.html", "diff/2024-05-01-firefox.html"))
}
