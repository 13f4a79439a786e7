package dashboard

import (
	"sort"
	"strconv"

	"github.com/Sumatoshi-tech/bidiboard/pkg/plotpage"
	"github.com/Sumatoshi-tech/bidiboard/pkg/results"
	"github.com/Sumatoshi-tech/bidiboard/pkg/timeseries"
)

func (r *Renderer) indexPage(store *timeseries.Store) *plotpage.Page {
	page := r.newPage(IndexPage, r.cfg.Dashboard.Title, "Share of passing tests per day")

	entries := store.AllDays()
	if len(entries) == 0 {
		page.Add(plotpage.Section{
			Content: plotpage.NewAlert("No test runs yet", "Process report artifacts to populate the dashboard.",
				plotpage.BadgeInfo),
		})

		return page
	}

	page.Add(r.latestSection(store), r.passRateSection(entries), r.totalsSection(entries), r.suitesSection(store))

	return page
}

// passRateSection charts the passing share of enabled suites per day and
// browser. Days a browser did not run are gaps.
func (r *Renderer) passRateSection(entries []timeseries.DayEntry) plotpage.Section {
	labels := make([]string, len(entries))
	colors := plotpage.BrowserPalette(r.theme, len(r.cfg.Browsers))
	series := make([]plotpage.BarSeries, len(r.cfg.Browsers))

	for i, browser := range r.cfg.Browsers {
		series[i] = plotpage.BarSeries{
			Name:  "% tests passed (" + capitalize(browser) + ")",
			Data:  make([]plotpage.SeriesData, len(entries)),
			Color: colors[i],
		}
	}

	for d, entry := range entries {
		labels[d] = entry.Date

		for i, browser := range r.cfg.Browsers {
			counts, ok := entry.Counts[browser]
			if !ok {
				continue
			}

			filtered := counts.Filtered(r.cfg.SuiteEnabled)
			if filtered.Total() > 0 {
				series[i].Data[d] = percent(filtered.PassingShare())
			}
		}
	}

	chart := plotpage.BuildBarChart(plotpage.NewChartOpts(r.theme), labels, series, plotpage.BarChartConfig{
		YAxisLabel: "% passed",
		Percent:    true,
		Legend:     r.cfg.Dashboard.Legend,
	})

	section := plotpage.Section{
		ID:       "pass-rate",
		Title:    "Tests passed",
		Subtitle: "Share of passing tests per day",
		Content:  plotpage.WrapChart(chart),
	}

	if len(r.cfg.Dashboard.DisabledSuites) > 0 {
		section.Hint = plotpage.Hint{
			Title: "Excluded suites",
			Items: append([]string(nil), r.cfg.Dashboard.DisabledSuites...),
		}
	}

	return section
}

func (r *Renderer) totalsSection(entries []timeseries.DayEntry) plotpage.Section {
	labels := make([]string, len(entries))
	colors := plotpage.BrowserPalette(r.theme, len(r.cfg.Browsers))
	series := make([]plotpage.LineSeries, len(r.cfg.Browsers))

	for i, browser := range r.cfg.Browsers {
		series[i] = plotpage.LineSeries{
			Name:  capitalize(browser),
			Data:  make([]plotpage.SeriesData, len(entries)),
			Color: colors[i],
		}
	}

	for d, entry := range entries {
		labels[d] = entry.Date

		for i, browser := range r.cfg.Browsers {
			if counts, ok := entry.Counts[browser]; ok {
				series[i].Data[d] = counts.Total
			}
		}
	}

	return plotpage.Section{
		ID:       "totals",
		Title:    "Tests run",
		Subtitle: "Number of specs with a result per day",
		Content:  plotpage.WrapChart(plotpage.BuildLineChart(plotpage.NewChartOpts(r.theme), labels, series, "specs")),
	}
}

// latestSection shows, per browser, the failing and skipped count of its
// latest run.
func (r *Renderer) latestSection(store *timeseries.Store) plotpage.Section {
	items := make([]plotpage.Renderable, 0, len(r.cfg.Browsers))

	for _, browser := range r.cfg.Browsers {
		day, ok := store.LastDay(browser)
		if !ok {
			items = append(items, plotpage.NewStat(capitalize(browser), "-").WithTrend("no runs", plotpage.BadgeDefault))

			continue
		}

		counts, _ := store.Counts(browser, day)
		filtered := counts.Filtered(r.cfg.SuiteEnabled)
		date := store.DayLabel(day)

		color := plotpage.BadgeSuccess
		if filtered.Failing > 0 {
			color = plotpage.BadgeError
		}

		items = append(items, plotpage.NewStat(capitalize(browser)+" failing or skipped",
			strconv.Itoa(filtered.Failing+filtered.Skipping)).
			WithTrend("on "+date, color).
			WithHref(TestRunPath(browser, date)))
	}

	return plotpage.Section{
		ID:      "latest",
		Content: plotpage.NewGrid(len(items), items...),
	}
}

// suitesSection tabulates the latest passing ratio of every suite.
func (r *Renderer) suitesSection(store *timeseries.Store) plotpage.Section {
	latest := make(map[string]timeseries.BrowserCounts, len(r.cfg.Browsers))
	suiteSet := make(map[string]bool)

	for _, browser := range r.cfg.Browsers {
		day, ok := store.LastDay(browser)
		if !ok {
			continue
		}

		counts, _ := store.Counts(browser, day)
		latest[browser] = counts

		for suite := range counts.BySuite {
			suiteSet[suite] = true
		}
	}

	suites := make([]string, 0, len(suiteSet))
	for suite := range suiteSet {
		suites = append(suites, suite)
	}

	sort.Strings(suites)

	headers := []string{"Suite"}
	for _, browser := range r.cfg.Browsers {
		headers = append(headers, capitalize(browser))
	}

	table := plotpage.NewTable(headers...)

	for _, suite := range suites {
		row := []string{r.suiteCell(suite)}

		for _, browser := range r.cfg.Browsers {
			var counts results.Counters

			if bc, ok := latest[browser]; ok {
				counts = bc.BySuite[suite]
			}

			row = append(row, formatShare(counts))
		}

		table.AddRow(row...)
	}

	return plotpage.Section{
		ID:       "suites",
		Title:    "Suites",
		Subtitle: "Passing specs on each browser's latest run",
		Content:  table,
	}
}

func (r *Renderer) suiteCell(suite string) string {
	cell := plotpage.Escape(suite)

	if !r.cfg.SuiteEnabled(suite) {
		cell += " " + mustString(plotpage.NewBadge("excluded"))
	}

	for _, label := range r.cfg.LabelsFor(suite) {
		cell += " " + mustString(plotpage.NewBadge(label.Name).WithCustomColor(label.Color))
	}

	return cell
}
