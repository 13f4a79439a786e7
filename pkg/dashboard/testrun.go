package dashboard

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/Sumatoshi-tech/bidiboard/pkg/changes"
	"github.com/Sumatoshi-tech/bidiboard/pkg/diff"
	"github.com/Sumatoshi-tech/bidiboard/pkg/plotpage"
	"github.com/Sumatoshi-tech/bidiboard/pkg/results"
	"github.com/Sumatoshi-tech/bidiboard/pkg/timeseries"
)

const timeLayout = "2006-01-02 15:04 UTC"

// testRunPage shows browser's run on days[i]: suites from least to most
// passing and the failing specs.
func (r *Renderer) testRunPage(store *timeseries.Store, browser string, days []int, i int) *plotpage.Page {
	day := days[i]
	date := store.DayLabel(day)
	rel := TestRunPath(browser, date)

	var nav []plotpage.NavLink

	if i > 0 {
		prev := store.DayLabel(days[i-1])
		nav = append(nav,
			plotpage.NavLink{Label: "Previous: " + prev, Href: plotpage.Rel(rel, TestRunPath(browser, prev))},
			plotpage.NavLink{Label: "Changes since " + prev, Href: plotpage.Rel(rel, DiffPath(date, browser))})
	}

	if i+1 < len(days) {
		next := store.DayLabel(days[i+1])
		nav = append(nav, plotpage.NavLink{Label: "Next: " + next, Href: plotpage.Rel(rel, TestRunPath(browser, next))})
	}

	for _, other := range r.cfg.Browsers {
		if other == browser {
			continue
		}

		link := plotpage.NavLink{Label: capitalize(other)}
		if _, ok := store.Counts(other, day); ok {
			link.Href = plotpage.Rel(rel, TestRunPath(other, date))
		}

		nav = append(nav, link)
	}

	page := r.newPage(rel, capitalize(browser)+" test results on "+date, "", nav...)

	counts, _ := store.Counts(browser, day)
	page.Add(
		countersSection(counts.Filtered(r.cfg.SuiteEnabled)),
		r.suiteShareSection(counts),
		r.failingSection(store, browser, day, store.Snapshot(browser, day)),
	)

	return page
}

func countersSection(c results.Counters) plotpage.Section {
	return plotpage.Section{
		Content: plotpage.NewGrid(4, //nolint:mnd // one column per counter.
			plotpage.NewStat("Total", strconv.Itoa(c.Total())),
			plotpage.NewStat("Passing", strconv.Itoa(c.Passing)).
				WithTrend(fmt.Sprintf("%.1f%%", c.PassingShare()*percentScale), plotpage.BadgeSuccess),
			plotpage.NewStat("Failing", strconv.Itoa(c.Failing)).WithTrend("failed or timed out", plotpage.BadgeError),
			plotpage.NewStat("Skipping", strconv.Itoa(c.Skipping)).WithTrend("skipped", plotpage.BadgeWarning),
		),
	}
}

// suiteShareSection lists enabled suites by ascending passing share.
func (r *Renderer) suiteShareSection(counts timeseries.BrowserCounts) plotpage.Section {
	type row struct {
		suite  string
		counts results.Counters
	}

	rows := make([]row, 0, len(counts.BySuite))

	for suite, c := range counts.BySuite {
		if r.cfg.SuiteEnabled(suite) {
			rows = append(rows, row{suite: suite, counts: c})
		}
	}

	sort.Slice(rows, func(i, j int) bool {
		si, sj := rows[i].counts.PassingShare(), rows[j].counts.PassingShare()
		if si != sj {
			return si < sj
		}

		return rows[i].suite < rows[j].suite
	})

	table := plotpage.NewTable("Suite", "Passing", "Failing", "Skipping", "Total", "Passing share")

	for _, row := range rows {
		table.AddRow(
			r.suiteCell(row.suite),
			strconv.Itoa(row.counts.Passing),
			strconv.Itoa(row.counts.Failing),
			strconv.Itoa(row.counts.Skipping),
			strconv.Itoa(row.counts.Total()),
			fmt.Sprintf("%.1f%%", row.counts.PassingShare()*percentScale),
		)
	}

	return plotpage.Section{
		ID:       "suites",
		Title:    "Suites",
		Subtitle: "Least passing first",
		Content:  table,
	}
}

// failingSection lists the failing specs of flat. Specs are marked
// intermittent from their day history on browser.
func (r *Renderer) failingSection(store *timeseries.Store, browser string, day int, flat results.Flat) plotpage.Section {
	table := plotpage.NewTable("Spec", "Result")

	for _, path := range flat.Paths() {
		code := flat[path]
		suite, _ := results.SplitPath(path)

		if results.Normalize(code) != results.OutcomeFailing || !r.cfg.SuiteEnabled(suite) {
			continue
		}

		intermittent := changes.IsIntermittentAt(store.History(path, browser), day)
		table.AddRow(r.specCell(path, intermittent), badge(code))
	}

	section := plotpage.Section{
		ID:       "failing",
		Title:    "Failing specs",
		Subtitle: strconv.Itoa(table.Len()) + " failed or timed out",
		Content:  table,
		Hint: plotpage.Hint{
			Title: "Intermittent specs",
			Items: []string{fmt.Sprintf("A spec is intermittent when its status flipped at least %d times in the %d days before.",
				changes.IntermittentMinChanges, changes.IntermittentWindow)},
		},
	}

	if table.Len() == 0 {
		section.Content = plotpage.NewAlert("", "No failing specs.", plotpage.BadgeSuccess)
	}

	return section
}

// pullRequestPage shows a pull request's run on browser compared to the
// browser's latest day.
func (r *Renderer) pullRequestPage(store *timeseries.Store, browser string, number int) *plotpage.Page {
	rel := PullRequestPath(browser, number)
	record, _ := store.PullRequest(number)

	nav := []plotpage.NavLink{{Label: "#" + strconv.Itoa(number), Href: r.pullRequestURL(number)}}

	for _, other := range r.cfg.Browsers {
		if other == browser {
			continue
		}

		link := plotpage.NavLink{Label: capitalize(other)}
		if _, ran := record.Runs[other]; ran {
			link.Href = plotpage.Rel(rel, PullRequestPath(other, number))
		}

		nav = append(nav, link)
	}

	description := record.Title
	if run, ok := record.Runs[browser]; ok && !run.Date.IsZero() {
		description += " (run " + run.Date.UTC().Format(timeLayout) + ")"
	}

	page := r.newPage(rel, fmt.Sprintf("%s results of pull request #%d", capitalize(browser), number), description, nav...)

	flat := store.PullRequestSnapshot(browser, number)
	page.Add(countersSection(flat.Counters()))

	day, ok := store.LastDay(browser)
	if !ok {
		page.Add(plotpage.Section{
			Title:   "Compared to the latest run",
			Content: plotpage.NewAlert("", "No day runs of "+capitalize(browser)+" to compare with.", plotpage.BadgeInfo),
		})
	} else {
		entries := diff.Diff(store.Snapshot(browser, day), flat)
		page.Add(r.diffSection("Compared to "+store.DayLabel(day), entries, true))
	}

	page.Add(r.failingSection(store, browser, store.LastDayIndex(), flat))

	return page
}

func (r *Renderer) pullRequestURL(number int) string {
	if r.cfg.Dashboard.PullRequestURL == "" {
		return ""
	}

	return r.cfg.Dashboard.PullRequestURL + strconv.Itoa(number)
}
